package backtest

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/market"
)

func TestLoadData(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, config.ClassForex), 0o755))
	body := `{"candles": [
		{"date": "2024-01-02", "o": 1.10, "h": 1.11, "l": 1.09, "c": 1.105},
		{"date": "2024-01-03", "o": 1.105, "h": 1.12, "l": 1.10, "c": 1.118}
	]}`
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, config.ClassForex, "EURUSD-daily.json"), []byte(body), 0o644))

	log := logrus.New()
	log.SetOutput(io.Discard)
	loader := market.NewLoader(dir, log)

	// GBPUSD has no candle file and must be skipped, not fail the load
	u := &config.Universe{Forex: []config.Instrument{
		{Symbol: "EURUSD"}, {Symbol: "GBPUSD"},
	}}
	data, err := LoadData(loader, u)
	require.NoError(t, err)
	require.Len(t, data, 1)

	h := data[Key{Class: config.ClassForex, Symbol: "EURUSD"}]
	require.NotNil(t, h)
	assert.Len(t, h.Candles, 2)
}

func TestLoadDataBadFileIsFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, config.ClassForex), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, config.ClassForex, "EURUSD-daily.json"), []byte("{not json"), 0o644))

	log := logrus.New()
	log.SetOutput(io.Discard)
	loader := market.NewLoader(dir, log)

	u := &config.Universe{Forex: []config.Instrument{{Symbol: "EURUSD"}}}
	_, err := LoadData(loader, u)
	assert.Error(t, err)
}
