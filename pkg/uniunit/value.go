package uniunit

import (
	"strconv"
	"strings"

	"github.com/ajitpratap0/uniunit/pkg/units"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	// KindNumber is a bare dimensionless number.
	KindNumber Kind = iota
	// KindQuantity is a magnitude with a unit.
	KindQuantity
	// KindSequence is an ordered list of values.
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindQuantity:
		return "quantity"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Value is the input and output of a conversion: a number, a quantity, or a
// sequence of values. The zero value is the number 0.
type Value struct {
	kind     Kind
	number   float64
	quantity units.Quantity
	items    []Value
}

// Number wraps a bare number.
func Number(x float64) Value {
	return Value{kind: KindNumber, number: x}
}

// FromQuantity wraps a quantity.
func FromQuantity(q units.Quantity) Value {
	return Value{kind: KindQuantity, quantity: q}
}

// Sequence wraps values into a sequence. A nil or empty argument list yields
// an empty, non-nil sequence.
func Sequence(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: KindSequence, items: out}
}

// Quantities is a convenience for a sequence of quantities.
func Quantities(qs ...units.Quantity) Value {
	items := make([]Value, len(qs))
	for i, q := range qs {
		items[i] = FromQuantity(q)
	}
	return Value{kind: KindSequence, items: items}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Number returns the bare number and whether v holds one.
func (v Value) Number() (float64, bool) {
	return v.number, v.kind == KindNumber
}

// Quantity returns the quantity and whether v holds one.
func (v Value) Quantity() (units.Quantity, bool) {
	return v.quantity, v.kind == KindQuantity
}

// Items returns a copy of the sequence elements and whether v is a sequence.
func (v Value) Items() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	out := make([]Value, len(v.items))
	copy(out, v.items)
	return out, true
}

// Len is the number of elements of a sequence, and 1 otherwise.
func (v Value) Len() int {
	if v.kind == KindSequence {
		return len(v.items)
	}
	return 1
}

func (v Value) String() string {
	switch v.kind {
	case KindQuantity:
		return v.quantity.String()
	case KindSequence:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	}
}
