package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkCandles(dates ...string) []Candle {
	out := make([]Candle, 0, len(dates))
	for i, s := range dates {
		p := 1.0 + float64(i)*0.01
		out = append(out, Candle{Date: d(s), Open: p, High: p + 0.005, Low: p - 0.005, Close: p + 0.002})
	}
	return out
}

func TestNewHistoryOrdering(t *testing.T) {
	t.Parallel()

	h, err := NewHistory("EURUSD", mkCandles("2024-01-02", "2024-01-03", "2024-01-05"))
	require.NoError(t, err)
	assert.Equal(t, 3, h.Len())

	_, err = NewHistory("EURUSD", mkCandles("2024-01-03", "2024-01-02"))
	assert.Error(t, err)

	_, err = NewHistory("EURUSD", mkCandles("2024-01-02", "2024-01-02"))
	assert.Error(t, err)
}

func TestHistoryLookups(t *testing.T) {
	t.Parallel()

	h, err := NewHistory("EURUSD", mkCandles("2024-01-02", "2024-01-03", "2024-01-05"))
	require.NoError(t, err)

	i, ok := h.IndexOf(d("2024-01-03"))
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = h.IndexOf(d("2024-01-04"))
	assert.False(t, ok)

	c, ok := h.At(d("2024-01-05"))
	require.True(t, ok)
	assert.Equal(t, d("2024-01-05"), c.Date)

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, d("2024-01-05"), last.Date)

	first, ok := h.First()
	require.True(t, ok)
	assert.Equal(t, d("2024-01-02"), first.Date)
}

func TestHistoryUpTo(t *testing.T) {
	t.Parallel()

	h, err := NewHistory("EURUSD", mkCandles("2024-01-02", "2024-01-03", "2024-01-05"))
	require.NoError(t, err)

	assert.Nil(t, h.UpTo(-1))
	assert.Len(t, h.UpTo(0), 1)
	assert.Len(t, h.UpTo(1), 2)
	// clamped to the end of the series
	assert.Len(t, h.UpTo(99), 3)

	window := h.UpTo(1)
	assert.Equal(t, d("2024-01-03"), window[len(window)-1].Date)
}

func TestHistoryLastAtOrBefore(t *testing.T) {
	t.Parallel()

	h, err := NewHistory("EURUSD", mkCandles("2024-01-02", "2024-01-03", "2024-01-05"))
	require.NoError(t, err)

	c, ok := h.LastAtOrBefore(d("2024-01-04"))
	require.True(t, ok)
	assert.Equal(t, d("2024-01-03"), c.Date)

	c, ok = h.LastAtOrBefore(d("2024-01-05"))
	require.True(t, ok)
	assert.Equal(t, d("2024-01-05"), c.Date)

	c, ok = h.LastAtOrBefore(d("2025-01-01"))
	require.True(t, ok)
	assert.Equal(t, d("2024-01-05"), c.Date)

	_, ok = h.LastAtOrBefore(d("2024-01-01"))
	assert.False(t, ok)
}

func TestEmptyHistory(t *testing.T) {
	t.Parallel()

	h, err := NewHistory("EURUSD", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())

	_, ok := h.Last()
	assert.False(t, ok)
	_, ok = h.First()
	assert.False(t, ok)
}
