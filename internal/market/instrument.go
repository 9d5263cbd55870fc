package market

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Instrument is one tradable symbol from the static seed list. Instances are
// immutable after startup.
type Instrument struct {
	Symbol     string  `yaml:"symbol" json:"symbol"`
	Name       string  `yaml:"name" json:"name"`
	Sector     string  `yaml:"sector" json:"sector"`
	BasePrice  float64 `yaml:"base_price" json:"base_price"`
	Drift      float64 `yaml:"drift" json:"drift"`
	Volatility float64 `yaml:"volatility" json:"volatility"`
}

type instrumentFile struct {
	Instruments []Instrument `yaml:"instruments"`
}

// LoadInstruments reads the YAML seed list and normalizes it. Symbols are
// upper-cased and must be unique; base prices must be positive.
func LoadInstruments(path string) ([]Instrument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instrument list failed: %w", err)
	}
	var file instrumentFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing instrument list failed: %w", err)
	}
	return NormalizeInstruments(file.Instruments)
}

// NormalizeInstruments validates and normalizes a seed list in place of a
// file, which the test harnesses use directly.
func NormalizeInstruments(list []Instrument) ([]Instrument, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("instrument list is empty")
	}
	seen := make(map[string]bool, len(list))
	out := make([]Instrument, 0, len(list))
	for _, inst := range list {
		inst.Symbol = strings.ToUpper(strings.TrimSpace(inst.Symbol))
		if inst.Symbol == "" {
			return nil, fmt.Errorf("instrument with empty symbol")
		}
		if seen[inst.Symbol] {
			return nil, fmt.Errorf("duplicate instrument symbol %s", inst.Symbol)
		}
		seen[inst.Symbol] = true
		if inst.BasePrice <= 0 {
			return nil, fmt.Errorf("instrument %s: base_price must be positive", inst.Symbol)
		}
		if inst.Volatility <= 0 {
			inst.Volatility = 0.01
		}
		out = append(out, inst)
	}
	return out, nil
}

// Registry is the symbol-keyed instrument lookup, preserving seed order.
type Registry struct {
	order []string
	byKey map[string]Instrument
}

func NewRegistry(list []Instrument) *Registry {
	r := &Registry{byKey: make(map[string]Instrument, len(list))}
	for _, inst := range list {
		r.order = append(r.order, inst.Symbol)
		r.byKey[inst.Symbol] = inst
	}
	return r
}

func (r *Registry) Get(symbol string) (Instrument, bool) {
	inst, ok := r.byKey[strings.ToUpper(strings.TrimSpace(symbol))]
	return inst, ok
}

// List returns instruments in seed order.
func (r *Registry) List() []Instrument {
	out := make([]Instrument, 0, len(r.order))
	for _, sym := range r.order {
		out = append(out, r.byKey[sym])
	}
	return out
}

func (r *Registry) Symbols() []string {
	return append([]string(nil), r.order...)
}
