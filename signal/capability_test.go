package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilitySets(t *testing.T) {
	t.Parallel()

	all := AllCapabilities()
	assert.Len(t, all, 11)
	assert.True(t, all.Has(CapCandlesticks))
	assert.True(t, all.Has(CapPivotPoints))

	none := NoCapabilities()
	assert.False(t, none.Has(CapCandlesticks))
	assert.Empty(t, none.Names())
}

func TestParseCapabilities(t *testing.T) {
	t.Parallel()

	assert.Len(t, ParseCapabilities("all"), 11)
	assert.Len(t, ParseCapabilities(""), 11)
	assert.Len(t, ParseCapabilities("ALL"), 11)
	assert.Empty(t, ParseCapabilities("none"))

	s := ParseCapabilities("Japanese Candlesticks, Moving Averages")
	assert.Len(t, s, 2)
	assert.True(t, s.Has(CapCandlesticks))
	assert.True(t, s.Has(CapMovingAverages))
	assert.False(t, s.Has(CapSupportResistance))
}

func TestCapabilityNamesSorted(t *testing.T) {
	t.Parallel()

	s := CapabilitySet{CapMovingAverages: true, CapCandlesticks: true, CapFibonacci: false}
	names := s.Names()
	assert.Equal(t, []string{CapCandlesticks, CapMovingAverages}, names)
}
