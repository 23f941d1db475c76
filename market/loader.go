package market

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Loader reads candle files laid out as <dir>/<class>/<SYMBOL>-daily.json.
// Bad rows are skipped and counted rather than failing the whole file; a
// missing or unreadable file is an error the caller decides how to handle.
type Loader struct {
	Dir string
	Log *logrus.Logger
}

// LoadStats counts what a load pass skipped.
type LoadStats struct {
	Rows       int
	BadRows    int
	Duplicates int
}

type candleFile struct {
	Candles []candleRow `json:"candles"`
}

type candleRow struct {
	Date  string  `json:"date"`
	Open  float64 `json:"o"`
	High  float64 `json:"h"`
	Low   float64 `json:"l"`
	Close float64 `json:"c"`
}

// NewLoader returns a Loader rooted at dir. A nil logger falls back to the
// logrus standard logger.
func NewLoader(dir string, log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{Dir: dir, Log: log}
}

// Path returns the candle file path for a class/symbol pair.
func (l *Loader) Path(class, symbol string) string {
	return filepath.Join(l.Dir, class, symbol+"-daily.json")
}

// Load reads and validates one symbol's daily history.
func (l *Loader) Load(class, symbol string) (*History, error) {
	h, _, err := l.LoadWithStats(class, symbol)
	return h, err
}

// LoadWithStats reads one symbol's daily history and reports how many rows
// were dropped on the way in. Rows with impossible prices or unparseable
// dates are skipped; duplicate dates keep the first occurrence.
func (l *Loader) LoadWithStats(class, symbol string) (*History, LoadStats, error) {
	var stats LoadStats

	path := l.Path(class, symbol)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, stats, fmt.Errorf("load %s/%s: %w", class, symbol, err)
	}

	var file candleFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, stats, fmt.Errorf("load %s/%s: parse %s: %w", class, symbol, path, err)
	}

	seen := make(map[time.Time]bool, len(file.Candles))
	candles := make([]Candle, 0, len(file.Candles))
	for i, row := range file.Candles {
		stats.Rows++
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			stats.BadRows++
			l.Log.WithFields(logrus.Fields{
				"symbol": symbol,
				"row":    i,
				"date":   row.Date,
			}).Warn("skipping candle with bad date")
			continue
		}
		c := Candle{Date: Day(date), Open: row.Open, High: row.High, Low: row.Low, Close: row.Close}
		if err := c.Validate(); err != nil {
			stats.BadRows++
			l.Log.WithFields(logrus.Fields{
				"symbol": symbol,
				"row":    i,
			}).Warnf("skipping candle: %v", err)
			continue
		}
		if seen[c.Date] {
			stats.Duplicates++
			continue
		}
		seen[c.Date] = true
		candles = append(candles, c)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Date.Before(candles[j].Date) })

	h, err := NewHistory(symbol, candles)
	if err != nil {
		return nil, stats, err
	}
	if stats.BadRows > 0 || stats.Duplicates > 0 {
		l.Log.WithFields(logrus.Fields{
			"symbol":     symbol,
			"rows":       stats.Rows,
			"bad":        stats.BadRows,
			"duplicates": stats.Duplicates,
		}).Warn("candle file loaded with skips")
	}
	return h, stats, nil
}
