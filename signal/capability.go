// Package signal turns candle history into trade signals. What the rules
// are allowed to look at is controlled by a capability set, so the same
// analyzer can run fully equipped or stripped down to bare trend reading.
package signal

import (
	"sort"
	"strings"
)

// Capability names. Each one unlocks an analysis technique.
const (
	CapCandlesticks      = "Japanese Candlesticks"
	CapFibonacci         = "Fibonacci"
	CapMovingAverages    = "Moving Averages"
	CapSupportResistance = "Support and Resistance Levels"
	CapChartIndicators   = "Popular Chart Indicators"
	CapOscillators       = "Oscillators and Momentum Indicators"
	CapChartPatterns     = "Important Chart Patterns"
	CapPivotPoints       = "Pivot Points"
	CapDivergences       = "Trading Divergences"
	CapRiskManagement    = "Risk Management"
	CapPositionSizing    = "Position Sizing"
)

var allCapabilities = []string{
	CapCandlesticks,
	CapFibonacci,
	CapMovingAverages,
	CapSupportResistance,
	CapChartIndicators,
	CapOscillators,
	CapChartPatterns,
	CapPivotPoints,
	CapDivergences,
	CapRiskManagement,
	CapPositionSizing,
}

// CapabilitySet is the set of unlocked analysis techniques.
type CapabilitySet map[string]bool

// Has reports whether a capability is unlocked.
func (s CapabilitySet) Has(name string) bool { return s[name] }

// Names returns the unlocked capabilities, sorted.
func (s CapabilitySet) Names() []string {
	out := make([]string, 0, len(s))
	for name, on := range s {
		if on {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// AllCapabilities returns the full set.
func AllCapabilities() CapabilitySet {
	s := make(CapabilitySet, len(allCapabilities))
	for _, name := range allCapabilities {
		s[name] = true
	}
	return s
}

// NoCapabilities returns the empty set: bare trend trading only.
func NoCapabilities() CapabilitySet { return CapabilitySet{} }

// ParseCapabilities reads a capability spec: "all", "none", or a
// comma-separated list of capability names.
func ParseCapabilities(spec string) CapabilitySet {
	switch strings.ToLower(strings.TrimSpace(spec)) {
	case "", "all":
		return AllCapabilities()
	case "none":
		return NoCapabilities()
	}
	s := make(CapabilitySet)
	for _, part := range strings.Split(spec, ",") {
		if name := strings.TrimSpace(part); name != "" {
			s[name] = true
		}
	}
	return s
}
