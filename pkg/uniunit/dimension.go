package uniunit

import (
	"strings"

	"github.com/ajitpratap0/uniunit/pkg/units"
)

// DimensionToBaseUnit maps each base dimension to its SI base unit.
var DimensionToBaseUnit = map[units.Dimension]string{
	units.Mass:        "kilogram",
	units.Length:      "meter",
	units.Time:        "second",
	units.Current:     "ampere",
	units.Temperature: "kelvin",
	units.Amount:      "mole",
	units.Luminosity:  "candela",
}

// BaseUnitToDimension is the inverse of DimensionToBaseUnit.
var BaseUnitToDimension = func() map[string]units.Dimension {
	out := make(map[string]units.Dimension, len(DimensionToBaseUnit))
	for dim, name := range DimensionToBaseUnit {
		out[name] = dim
	}
	return out
}()

// ShortToDimension resolves the keys accepted in a conversion specification:
// conventional unit symbols and the long names of the base units.
var ShortToDimension = map[string]units.Dimension{
	"kg": units.Mass,
	"g":  units.Mass,
	"mg": units.Mass,
	"ug": units.Mass,

	"m":  units.Length,
	"cm": units.Length,
	"mm": units.Length,
	"um": units.Length,
	"nm": units.Length,
	"pm": units.Length,
	"fm": units.Length,
	"km": units.Length,
	"dm": units.Length,

	"s":  units.Time,
	"ms": units.Time,
	"us": units.Time,
	"ns": units.Time,
	"ps": units.Time,

	"A":  units.Current,
	"mA": units.Current,
	"uA": units.Current,
	"nA": units.Current,

	"K": units.Temperature,

	"mol":  units.Amount,
	"mmol": units.Amount,
	"kmol": units.Amount,

	"cd": units.Luminosity,

	"kilogram":   units.Mass,
	"gram":       units.Mass,
	"meter":      units.Length,
	"centimeter": units.Length,
	"millimeter": units.Length,
	"second":     units.Time,
	"ampere":     units.Current,
	"kelvin":     units.Temperature,
	"mole":       units.Amount,
	"candela":    units.Luminosity,
}

// DimensionToShort gives the default target unit for a dimension the
// conversion specification leaves out.
var DimensionToShort = map[units.Dimension]string{
	units.Mass:        "kg",
	units.Length:      "m",
	units.Time:        "s",
	units.Current:     "A",
	units.Temperature: "K",
	units.Amount:      "mol",
	units.Luminosity:  "cd",
}

// NormalizeKey resolves a specification key to its canonical dimension.
// Known symbols and base-unit names go through ShortToDimension, bare
// dimension names such as "mass" get their brackets, and anything else is
// taken to already be a dimension identifier.
func NormalizeKey(key string) units.Dimension {
	if dim, ok := ShortToDimension[key]; ok {
		return dim
	}
	dim := units.Dimension(key)
	if dim.IsBracketed() {
		return dim
	}
	bracketed := units.Dimension("[" + strings.ToLower(key) + "]")
	if _, ok := DimensionToShort[bracketed]; ok {
		return bracketed
	}
	return dim
}

// fallbackUnit is the unit used for a dimension with no specification entry.
func fallbackUnit(dim units.Dimension) string {
	if name, ok := DimensionToShort[dim]; ok {
		return name
	}
	return dim.Bare()
}
