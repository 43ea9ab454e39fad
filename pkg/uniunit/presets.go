package uniunit

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/uniunit/pkg/errors"
	"github.com/ajitpratap0/uniunit/pkg/logger"
	"github.com/ajitpratap0/uniunit/pkg/metrics"
	"github.com/ajitpratap0/uniunit/pkg/units"
)

// Preset is a named conversion specification.
type Preset struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Units       map[string]string `yaml:"units" json:"units"`
}

// BuiltinPresets are the unit systems every default preset registry starts with.
var BuiltinPresets = []Preset{
	{
		Name:        "SI",
		Description: "International System of Units",
		Units: map[string]string{
			"kilogram": "kilogram", "meter": "meter", "second": "second",
			"ampere": "ampere", "kelvin": "kelvin", "mole": "mole", "candela": "candela",
		},
	},
	{
		Name:        "MKS",
		Description: "Meter-Kilogram-Second",
		Units:       map[string]string{"kilogram": "kilogram", "meter": "meter", "second": "second"},
	},
	{
		Name:        "CGS",
		Description: "Centimeter-Gram-Second",
		Units:       map[string]string{"kilogram": "gram", "meter": "centimeter", "second": "second"},
	},
	{
		Name:        "mmkgms",
		Description: "Millimeter-Kilogram-Millisecond",
		Units:       map[string]string{"kilogram": "kilogram", "meter": "millimeter", "second": "millisecond"},
	},
	{
		Name:        "mmgms",
		Description: "Millimeter-Gram-Millisecond",
		Units:       map[string]string{"kilogram": "gram", "meter": "millimeter", "second": "millisecond"},
	},
	{
		Name:        "nm_ug_ps",
		Description: "Nanometer-Microgram-Picosecond (nano-science)",
		Units: map[string]string{
			"kilogram": "microgram", "meter": "nanometer", "second": "picosecond",
			"ampere": "nanoampere", "kelvin": "kelvin", "mole": "nanomole", "candela": "candela",
		},
	},
	{
		Name:        "Imperial",
		Description: "Imperial units",
		Units:       map[string]string{"kilogram": "pound", "meter": "inch", "second": "second"},
	},
	{
		Name:        "FPS",
		Description: "Foot-Pound-Second",
		Units:       map[string]string{"kilogram": "pound", "meter": "foot", "second": "second"},
	},
	{
		Name:        "British",
		Description: "British units (pound-inch-minute)",
		Units:       map[string]string{"kilogram": "pound", "meter": "inch", "second": "minute"},
	},
}

// Presets is a registry of named unit systems. It is safe for concurrent
// use; names are listed in the order they were first registered.
type Presets struct {
	reg    *units.Registry
	mu     sync.RWMutex
	order  []string
	items  map[string]Preset
	logger *zap.Logger
}

// NewPresets creates an empty preset registry whose systems parse units with reg.
func NewPresets(reg *units.Registry) *Presets {
	return &Presets{
		reg:    reg,
		items:  make(map[string]Preset),
		logger: logger.Get().With(zap.String("component", "presets")),
	}
}

// NewDefaultPresets creates a preset registry seeded with BuiltinPresets.
func NewDefaultPresets(reg *units.Registry) *Presets {
	p := NewPresets(reg)
	p.SeedBuiltins()
	return p
}

// SeedBuiltins registers every entry of BuiltinPresets.
func (p *Presets) SeedBuiltins() {
	for _, preset := range BuiltinPresets {
		p.Register(preset.Name, preset.Units, preset.Description)
	}
}

// Register adds or replaces the preset called name.
func (p *Presets) Register(name string, spec map[string]string, description string) {
	p.mu.Lock()
	if _, exists := p.items[name]; !exists {
		p.order = append(p.order, name)
	} else {
		p.logger.Debug("preset replaced", zap.String("preset", name))
	}
	p.items[name] = Preset{Name: name, Description: description, Units: copySpec(spec)}
	count := len(p.order)
	p.mu.Unlock()

	metrics.PresetsRegistered.Set(float64(count))
}

// Get returns a new unit system for the preset called name. A missing preset
// fails with a not_found error that lists the available names.
func (p *Presets) Get(name string) (*UnitSystem, error) {
	p.mu.RLock()
	preset, ok := p.items[name]
	available := append([]string(nil), p.order...)
	p.mu.RUnlock()

	if !ok {
		list := "none"
		if len(available) > 0 {
			list = strings.Join(available, ", ")
		}
		return nil, errors.New(errors.ErrorTypeNotFound, fmt.Sprintf("Preset '%s' not found. Available: %s", name, list)).
			WithDetail("preset", name).
			WithDetail("available", available)
	}
	return NewUnitSystem(p.reg, preset.Name, preset.Units, preset.Description), nil
}

// Lookup returns the stored preset definition.
func (p *Presets) Lookup(name string) (Preset, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	preset, ok := p.items[name]
	if !ok {
		return Preset{}, false
	}
	preset.Units = copySpec(preset.Units)
	return preset, true
}

// List returns the preset names in registration order.
func (p *Presets) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.order...)
}

// Details returns every preset's specification keyed by name.
func (p *Presets) Details() map[string]map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]map[string]string, len(p.items))
	for name, preset := range p.items {
		out[name] = copySpec(preset.Units)
	}
	return out
}

// Registry returns the unit registry the presets are bound to.
func (p *Presets) Registry() *units.Registry {
	return p.reg
}
