package units

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Dimension identifies a base physical dimension such as "[mass]".
// The seven SI base dimensions are predeclared; definitions of the form
// "name = [something]" introduce additional ones.
type Dimension string

const (
	Mass        Dimension = "[mass]"
	Length      Dimension = "[length]"
	Time        Dimension = "[time]"
	Current     Dimension = "[current]"
	Temperature Dimension = "[temperature]"
	Amount      Dimension = "[amount]"
	Luminosity  Dimension = "[luminosity]"
)

// BaseDimensions lists the seven SI base dimensions in canonical order.
var BaseDimensions = []Dimension{Mass, Length, Time, Current, Temperature, Amount, Luminosity}

// Bare returns the dimension name without brackets ("[mass]" -> "mass").
func (d Dimension) Bare() string {
	return strings.Trim(string(d), "[]")
}

// IsBracketed reports whether d uses the "[name]" notation.
func (d Dimension) IsBracketed() bool {
	s := string(d)
	return len(s) > 2 && strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
}

// DimensionPower is a single (dimension, exponent) pair of a dimension signature.
type DimensionPower struct {
	Dimension Dimension
	Exponent  float64
}

// Dimensionality maps base dimensions to their exponents. Zero exponents are
// never stored.
type Dimensionality map[Dimension]float64

func (d Dimensionality) add(other Dimensionality, times float64) {
	for dim, exp := range other {
		v := d[dim] + exp*times
		if isZero(v) {
			delete(d, dim)
			continue
		}
		d[dim] = v
	}
}

// IsDimensionless reports whether d has no dimension at all.
func (d Dimensionality) IsDimensionless() bool {
	return len(d) == 0
}

// Equal reports whether d and other describe the same physical kind.
func (d Dimensionality) Equal(other Dimensionality) bool {
	if len(d) != len(other) {
		return false
	}
	for dim, exp := range d {
		if o, ok := other[dim]; !ok || !isZero(o-exp) {
			return false
		}
	}
	return true
}

// Sorted returns the signature ordered by dimension identifier.
func (d Dimensionality) Sorted() []DimensionPower {
	out := make([]DimensionPower, 0, len(d))
	for dim, exp := range d {
		out = append(out, DimensionPower{Dimension: dim, Exponent: exp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dimension < out[j].Dimension })
	return out
}

// String renders d as "[mass] / [length] / [time] ** 2".
func (d Dimensionality) String() string {
	if len(d) == 0 {
		return "dimensionless"
	}
	terms := make([]term, 0, len(d))
	for _, p := range d.Sorted() {
		terms = append(terms, term{name: string(p.Dimension), exp: p.Exponent})
	}
	return formatTerms(terms)
}

// isZero treats accumulated float noise around zero as zero.
func isZero(v float64) bool {
	return math.Abs(v) < 1e-12
}

func formatExponent(exp float64) string {
	if exp == math.Trunc(exp) {
		return strconv.FormatInt(int64(exp), 10)
	}
	return strconv.FormatFloat(exp, 'g', -1, 64)
}

// formatTerms renders a product of powers the way the registry prints units:
// numerator terms joined by " * ", each denominator term prefixed by " / ".
func formatTerms(terms []term) string {
	var num, den []string
	for _, t := range terms {
		switch {
		case t.exp > 0:
			if t.exp == 1 {
				num = append(num, t.name)
			} else {
				num = append(num, t.name+" ** "+formatExponent(t.exp))
			}
		case t.exp < 0:
			if t.exp == -1 {
				den = append(den, t.name)
			} else {
				den = append(den, t.name+" ** "+formatExponent(-t.exp))
			}
		}
	}

	var b strings.Builder
	if len(num) == 0 {
		b.WriteString("1")
	} else {
		b.WriteString(strings.Join(num, " * "))
	}
	for _, d := range den {
		b.WriteString(" / ")
		b.WriteString(d)
	}
	return b.String()
}
