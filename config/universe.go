package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Asset class names used for file layout, position caps and handler lookup.
const (
	ClassForex  = "forex"
	ClassStocks = "stocks"
	ClassCrypto = "crypto"
)

// Classes lists the supported asset classes in watchlist order.
var Classes = []string{ClassForex, ClassStocks, ClassCrypto}

// Instrument describes one tradeable symbol. Forex pairs carry their pip
// size and currency legs; stocks may carry a correlation group.
type Instrument struct {
	Symbol  string  `json:"symbol" yaml:"symbol"`
	PipSize float64 `json:"pip_size,omitempty" yaml:"pip_size,omitempty"`
	Base    string  `json:"from,omitempty" yaml:"from,omitempty"`
	Quote   string  `json:"to,omitempty" yaml:"to,omitempty"`
	Group   string  `json:"group,omitempty" yaml:"group,omitempty"`
}

// Universe is the watchlist: the instruments to trade per asset class plus
// the rules that apply to every run over them.
type Universe struct {
	Forex  []Instrument `json:"forex,omitempty" yaml:"forex,omitempty"`
	Stocks []Instrument `json:"stocks,omitempty" yaml:"stocks,omitempty"`
	Crypto []Instrument `json:"crypto,omitempty" yaml:"crypto,omitempty"`
	Rules  Rules        `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Entry pairs an instrument with its asset class.
type Entry struct {
	Class      string
	Instrument Instrument
}

// All returns every instrument with its class, in watchlist order
// (forex, then stocks, then crypto). Entry order decides which symbols get
// first crack at scarce position slots, so it is part of the contract.
func (u *Universe) All() []Entry {
	out := make([]Entry, 0, len(u.Forex)+len(u.Stocks)+len(u.Crypto))
	for _, inst := range u.Forex {
		out = append(out, Entry{Class: ClassForex, Instrument: inst})
	}
	for _, inst := range u.Stocks {
		out = append(out, Entry{Class: ClassStocks, Instrument: inst})
	}
	for _, inst := range u.Crypto {
		out = append(out, Entry{Class: ClassCrypto, Instrument: inst})
	}
	return out
}

// Len returns the total instrument count.
func (u *Universe) Len() int {
	return len(u.Forex) + len(u.Stocks) + len(u.Crypto)
}

// LoadUniverse loads a watchlist from a file (YAML or JSON).
func LoadUniverse(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	u := &Universe{}
	err = yaml.Unmarshal(data, u)
	if err != nil {
		err = json.Unmarshal(data, u)
		if err != nil {
			return nil, fmt.Errorf("parse watchlist (tried YAML and JSON): %w", err)
		}
	}

	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("invalid watchlist: %w", err)
	}
	return u, nil
}

// Filter returns a copy reduced to the one named symbol, keeping the
// rules. An unknown symbol is an error rather than an empty universe.
func (u *Universe) Filter(symbol string) (*Universe, error) {
	out := &Universe{Rules: u.Rules}
	for _, e := range u.All() {
		if e.Instrument.Symbol != symbol {
			continue
		}
		switch e.Class {
		case ClassForex:
			out.Forex = append(out.Forex, e.Instrument)
		case ClassStocks:
			out.Stocks = append(out.Stocks, e.Instrument)
		case ClassCrypto:
			out.Crypto = append(out.Crypto, e.Instrument)
		}
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("symbol %s not in watchlist", symbol)
	}
	return out, nil
}

// Validate checks every instrument has a symbol and none repeats.
func (u *Universe) Validate() error {
	if u.Len() == 0 {
		return fmt.Errorf("watchlist has no instruments")
	}
	seen := make(map[string]string, u.Len())
	for _, e := range u.All() {
		if e.Instrument.Symbol == "" {
			return fmt.Errorf("%s instrument with empty symbol", e.Class)
		}
		if prev, dup := seen[e.Instrument.Symbol]; dup {
			return fmt.Errorf("symbol %s listed under both %s and %s",
				e.Instrument.Symbol, prev, e.Class)
		}
		seen[e.Instrument.Symbol] = e.Class
	}
	return nil
}
