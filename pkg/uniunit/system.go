package uniunit

import (
	"github.com/ajitpratap0/uniunit/pkg/units"
)

// UnitSystem is a named, described conversion specification.
type UnitSystem struct {
	Name        string
	Description string
	// Units is the specification as given, before key normalization.
	Units map[string]string

	converter *Remapper
}

// NewUnitSystem creates a unit system over reg.
func NewUnitSystem(reg *units.Registry, name string, spec map[string]string, description string) *UnitSystem {
	return &UnitSystem{
		Name:        name,
		Description: description,
		Units:       copySpec(spec),
		converter:   NewRemapper(reg, spec),
	}
}

// Convert converts v into this system.
func (s *UnitSystem) Convert(v Value) (Value, error) {
	return s.converter.Convert(v)
}

// ConvertQuantity converts q into this system.
func (s *UnitSystem) ConvertQuantity(q units.Quantity) (units.Quantity, error) {
	return s.converter.ConvertQuantity(q)
}

// NewUnit returns the unit u is expressed in under this system.
func (s *UnitSystem) NewUnit(u units.Unit) (units.Unit, error) {
	return s.converter.NewUnit(u)
}

// ConvertFrom converts v into source first and the result into s. The
// physical quantity is unchanged by the intermediate step, so the result
// equals s.Convert(v).
func (s *UnitSystem) ConvertFrom(v Value, source *UnitSystem) (Value, error) {
	intermediate, err := source.Convert(v)
	if err != nil {
		return Value{}, err
	}
	return s.Convert(intermediate)
}

func (s *UnitSystem) String() string {
	return "UnitSystem: " + s.Name
}

func copySpec(spec map[string]string) map[string]string {
	out := make(map[string]string, len(spec))
	for k, v := range spec {
		out[k] = v
	}
	return out
}
