package uniunit

import (
	"fmt"
	"math"

	"github.com/ajitpratap0/uniunit/pkg/errors"
	"github.com/ajitpratap0/uniunit/pkg/metrics"
	"github.com/ajitpratap0/uniunit/pkg/units"
)

// BaseUnit returns the base-dimension signature of u, e.g.
// {[mass]: 1, [length]: -1, [time]: -2} for pascal.
func BaseUnit(reg *units.Registry, u units.Unit) (units.Dimensionality, error) {
	return reg.Dimensionality(u)
}

// BaseUnitWithValue returns the magnitude and base-dimension signature of q.
func BaseUnitWithValue(reg *units.Registry, q units.Quantity) (float64, units.Dimensionality, error) {
	dims, err := reg.Dimensionality(q.Unit)
	if err != nil {
		return 0, nil, err
	}
	return q.Magnitude, dims, nil
}

// CheckCompatibility reports whether two unit or quantity expressions can be
// converted into each other.
func CheckCompatibility(reg *units.Registry, a, b string) (bool, error) {
	qa, err := reg.Parse(a)
	if err != nil {
		return false, err
	}
	qb, err := reg.Parse(b)
	if err != nil {
		return false, err
	}
	return reg.IsCompatible(qa.Unit, qb.Unit), nil
}

// ConvertValue converts value from one unit expression into another and
// returns the new magnitude. from may carry its own factor ("15 * minute").
func ConvertValue(reg *units.Registry, value float64, from, to string) (float64, error) {
	timer := metrics.NewTimer("convert")
	result, err := convertValue(reg, value, from, to)
	timer.ObserveConversion(err)
	return result, err
}

func convertValue(reg *units.Registry, value float64, from, to string) (float64, error) {
	source, err := reg.Parse(from)
	if err != nil {
		return 0, err
	}
	target, err := reg.ParseUnit(to)
	if err != nil {
		return 0, err
	}
	converted, err := reg.Convert(source.Scale(value), target)
	if err != nil {
		return 0, err
	}
	return converted.Magnitude, nil
}

// QuickConvert converts v from the preset called from into the preset called to.
func QuickConvert(presets *Presets, v Value, from, to string) (Value, error) {
	timer := metrics.NewTimer("quick_convert")
	result, err := quickConvert(presets, v, from, to)
	timer.ObserveConversion(err)
	return result, err
}

func quickConvert(presets *Presets, v Value, from, to string) (Value, error) {
	source, err := presets.Get(from)
	if err != nil {
		return Value{}, err
	}
	target, err := presets.Get(to)
	if err != nil {
		return Value{}, err
	}
	return target.ConvertFrom(v, source)
}

// QuickConvertString parses expr ("100 kg") and converts it between presets.
func QuickConvertString(presets *Presets, expr, from, to string) (Value, error) {
	q, err := presets.Registry().Parse(expr)
	if err != nil {
		return Value{}, err
	}
	return QuickConvert(presets, FromQuantity(q), from, to)
}

// Info describes a quantity.
type Info struct {
	Magnitude       float64            `json:"magnitude"`
	Units           string             `json:"units"`
	BaseUnits       map[string]float64 `json:"base_units"`
	Dimensionality  string             `json:"dimensionality"`
	IsDimensionless bool               `json:"is_dimensionless"`
}

// UnitInfo reports the magnitude, unit, and dimensional makeup of q.
func UnitInfo(reg *units.Registry, q units.Quantity) (Info, error) {
	dims, err := reg.Dimensionality(q.Unit)
	if err != nil {
		return Info{}, err
	}
	base := make(map[string]float64, len(dims))
	for dim, exp := range dims {
		base[string(dim)] = exp
	}
	return Info{
		Magnitude:       q.Magnitude,
		Units:           q.Unit.String(),
		BaseUnits:       base,
		Dimensionality:  dims.String(),
		IsDimensionless: dims.IsDimensionless(),
	}, nil
}

// ToUnit converts v with a one-off specification.
func ToUnit(reg *units.Registry, v Value, spec map[string]string) (Value, error) {
	return NewRemapper(reg, spec).Convert(v)
}

// CreateCustomUnit defines name as expr ("1000 * km", "20") and returns the
// new unit. When name is already taken the existing unit is returned.
func CreateCustomUnit(reg *units.Registry, name, expr string) (units.Unit, error) {
	err := reg.Define(fmt.Sprintf("%s = %s", name, expr))
	if err != nil && !errors.IsType(err, errors.ErrorTypeConflict) {
		return units.Unit{}, err
	}
	return reg.ParseUnit(name)
}

// FormatQuantity renders q with 8 significant digits for very small or large
// magnitudes and 5 otherwise.
func FormatQuantity(q units.Quantity) string {
	mag := math.Abs(q.Magnitude)
	if mag < 0.001 || mag > 10000 {
		return q.Format(8)
	}
	return q.Format(5)
}

// FormatValue applies FormatQuantity to quantities and sequences of them.
func FormatValue(v Value) string {
	switch v.kind {
	case KindQuantity:
		return FormatQuantity(v.quantity)
	case KindSequence:
		out := "["
		for i, item := range v.items {
			if i > 0 {
				out += ", "
			}
			out += FormatValue(item)
		}
		return out + "]"
	default:
		return v.String()
	}
}
