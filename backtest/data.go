package backtest

import (
	"errors"
	"io/fs"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/market"
)

// LoadData reads daily candles for every universe entry through the
// loader. A symbol without a candle file is skipped with a warning so
// one absent download does not sink a multi-asset run; any other read
// error is fatal. The result may still be empty, the engine reports
// ErrNoData when nothing falls in range.
func LoadData(l *market.Loader, u *config.Universe) (Data, error) {
	data := make(Data, u.Len())
	for _, e := range u.All() {
		h, err := l.Load(e.Class, e.Instrument.Symbol)
		if errors.Is(err, fs.ErrNotExist) {
			l.Log.WithFields(logrus.Fields{
				"class":  e.Class,
				"symbol": e.Instrument.Symbol,
				"path":   l.Path(e.Class, e.Instrument.Symbol),
			}).Warn("no candle file, skipping symbol")
			continue
		}
		if err != nil {
			return nil, err
		}
		data[Key{Class: e.Class, Symbol: e.Instrument.Symbol}] = h
	}
	return data, nil
}
