package units

import (
	"math"
	"strconv"
)

type term struct {
	name string
	exp  float64
}

// Unit is an immutable product of named units raised to exponents, e.g.
// gram * millimeter ** 2 / second ** 2. Term order is the order in which the
// terms were first multiplied in, which keeps String deterministic.
//
// The zero value is the dimensionless unit.
type Unit struct {
	terms []term
}

// Dimensionless is the unit with no terms.
var Dimensionless = Unit{}

func unitOf(name string, exp float64) Unit {
	return Unit{terms: []term{{name: name, exp: exp}}}
}

// Len returns the number of terms.
func (u Unit) Len() int {
	return len(u.terms)
}

// IsDimensionless reports whether u has no terms. Note that a unit like
// meter / kilometer has terms and is therefore not reported as dimensionless
// here; use Registry.Dimensionality for the physical answer.
func (u Unit) IsDimensionless() bool {
	return len(u.terms) == 0
}

// Mul returns u * other.
func (u Unit) Mul(other Unit) Unit {
	return u.combine(other, 1)
}

// Div returns u / other.
func (u Unit) Div(other Unit) Unit {
	return u.combine(other, -1)
}

// Pow returns u ** exp.
func (u Unit) Pow(exp float64) Unit {
	if exp == 0 {
		return Dimensionless
	}
	out := make([]term, len(u.terms))
	for i, t := range u.terms {
		out[i] = term{name: t.name, exp: t.exp * exp}
	}
	return Unit{terms: out}
}

func (u Unit) combine(other Unit, sign float64) Unit {
	out := make([]term, len(u.terms), len(u.terms)+len(other.terms))
	copy(out, u.terms)
	for _, o := range other.terms {
		merged := false
		for i := range out {
			if out[i].name == o.name {
				out[i].exp += sign * o.exp
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, term{name: o.name, exp: sign * o.exp})
		}
	}

	n := 0
	for _, t := range out {
		if !isZero(t.exp) {
			out[n] = t
			n++
		}
	}
	if n == 0 {
		return Dimensionless
	}
	return Unit{terms: out[:n]}
}

// Equal reports whether u and other have the same terms in the same order.
func (u Unit) Equal(other Unit) bool {
	if len(u.terms) != len(other.terms) {
		return false
	}
	for i := range u.terms {
		if u.terms[i].name != other.terms[i].name || !isZero(u.terms[i].exp-other.terms[i].exp) {
			return false
		}
	}
	return true
}

// String renders the unit as "kilogram * meter ** 2 / second ** 2".
func (u Unit) String() string {
	if len(u.terms) == 0 {
		return "dimensionless"
	}
	return formatTerms(u.terms)
}

// Quantity is a magnitude paired with a unit. Quantities are values; every
// operation returns a new one.
type Quantity struct {
	Magnitude float64
	Unit      Unit
}

// Q builds a quantity from a magnitude and an already parsed unit.
func Q(magnitude float64, unit Unit) Quantity {
	return Quantity{Magnitude: magnitude, Unit: unit}
}

// Mul returns q * other.
func (q Quantity) Mul(other Quantity) Quantity {
	return Quantity{Magnitude: q.Magnitude * other.Magnitude, Unit: q.Unit.Mul(other.Unit)}
}

// Div returns q / other.
func (q Quantity) Div(other Quantity) Quantity {
	return Quantity{Magnitude: q.Magnitude / other.Magnitude, Unit: q.Unit.Div(other.Unit)}
}

// Pow returns q ** exp.
func (q Quantity) Pow(exp float64) Quantity {
	return Quantity{Magnitude: math.Pow(q.Magnitude, exp), Unit: q.Unit.Pow(exp)}
}

// Scale returns q with its magnitude multiplied by f.
func (q Quantity) Scale(f float64) Quantity {
	return Quantity{Magnitude: q.Magnitude * f, Unit: q.Unit}
}

// String renders the quantity as "100000 gram".
func (q Quantity) String() string {
	return strconv.FormatFloat(q.Magnitude, 'g', -1, 64) + " " + q.Unit.String()
}

// Format renders the quantity with the given number of significant digits.
func (q Quantity) Format(precision int) string {
	return strconv.FormatFloat(q.Magnitude, 'g', precision, 64) + " " + q.Unit.String()
}
