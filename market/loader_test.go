package market

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func writeCandleFile(t *testing.T, dir, class, symbol, body string) {
	t.Helper()
	full := filepath.Join(dir, class)
	require.NoError(t, os.MkdirAll(full, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(full, symbol+"-daily.json"), []byte(body), 0o644))
}

func TestLoaderReadsDailyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCandleFile(t, dir, "forex", "EURUSD", `{
		"candles": [
			{"date": "2024-01-02", "o": 1.10, "h": 1.11, "l": 1.09, "c": 1.105},
			{"date": "2024-01-03", "o": 1.105, "h": 1.12, "l": 1.10, "c": 1.115}
		]
	}`)

	l := NewLoader(dir, quietLogger())
	h, stats, err := l.LoadWithStats("forex", "EURUSD")
	require.NoError(t, err)
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 0, stats.BadRows)
	assert.Equal(t, "EURUSD", h.Symbol)
}

func TestLoaderSkipsBadRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCandleFile(t, dir, "forex", "EURUSD", `{
		"candles": [
			{"date": "2024-01-02", "o": 1.10, "h": 1.11, "l": 1.09, "c": 1.105},
			{"date": "not-a-date", "o": 1.10, "h": 1.11, "l": 1.09, "c": 1.105},
			{"date": "2024-01-03", "o": 0, "h": 1.11, "l": 1.09, "c": 1.105},
			{"date": "2024-01-04", "o": 1.10, "h": 1.05, "l": 1.00, "c": 1.10},
			{"date": "2024-01-02", "o": 9.99, "h": 9.99, "l": 9.99, "c": 9.99},
			{"date": "2024-01-05", "o": 1.11, "h": 1.12, "l": 1.10, "c": 1.115}
		]
	}`)

	l := NewLoader(dir, quietLogger())
	h, stats, err := l.LoadWithStats("forex", "EURUSD")
	require.NoError(t, err)

	// bad date, zero open, high below body dropped; duplicate keeps the first
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 3, stats.BadRows)
	assert.Equal(t, 1, stats.Duplicates)

	c, ok := h.At(d("2024-01-02"))
	require.True(t, ok)
	assert.InDelta(t, 1.10, c.Open, 1e-9)
}

func TestLoaderMissingFile(t *testing.T) {
	t.Parallel()

	l := NewLoader(t.TempDir(), quietLogger())
	_, err := l.Load("forex", "EURUSD")
	assert.Error(t, err)
}

func TestLoaderMalformedJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCandleFile(t, dir, "crypto", "BTCUSD", `{"candles": [`)

	l := NewLoader(dir, quietLogger())
	_, err := l.Load("crypto", "BTCUSD")
	assert.Error(t, err)
}

func TestLoaderSortsRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCandleFile(t, dir, "stocks", "AAPL", `{
		"candles": [
			{"date": "2024-01-03", "o": 185, "h": 186, "l": 184, "c": 185.5},
			{"date": "2024-01-02", "o": 184, "h": 185, "l": 183, "c": 184.5}
		]
	}`)

	l := NewLoader(dir, quietLogger())
	h, err := l.Load("stocks", "AAPL")
	require.NoError(t, err)
	require.Equal(t, 2, h.Len())
	assert.Equal(t, d("2024-01-02"), h.Candles[0].Date)
	assert.Equal(t, d("2024-01-03"), h.Candles[1].Date)
}
