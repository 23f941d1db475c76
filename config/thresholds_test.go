package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultThresholds(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()
	assert.Equal(t, 200, th.MinTrades)
	assert.Equal(t, 1.0, th.MinSharpe)
	assert.Equal(t, 1.3, th.MinProfitFactor)
	assert.Equal(t, 0.30, th.MaxDrawdown)
	assert.Equal(t, 0.35, th.MinWinRate)
	assert.Equal(t, 0.0, th.MinExpectancy)
	assert.Equal(t, 0.05, th.MaxRuinProb)
	assert.Equal(t, 40, th.MaxConsecLosses)
}

func TestThresholdsOrDefaults(t *testing.T) {
	t.Parallel()

	partial := Thresholds{MinTrades: 50, MaxDrawdown: 0.5}
	th := partial.OrDefaults()

	assert.Equal(t, 50, th.MinTrades, "explicit override survives")
	assert.Equal(t, 0.5, th.MaxDrawdown, "explicit override survives")
	assert.Equal(t, 1.0, th.MinSharpe, "zero field filled from default")
	assert.Equal(t, 40, th.MaxConsecLosses, "zero field filled from default")
	assert.Equal(t, 0.0, th.MinExpectancy)

	assert.Equal(t, DefaultThresholds(), Thresholds{}.OrDefaults())
}
