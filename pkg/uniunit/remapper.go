package uniunit

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/uniunit/pkg/errors"
	"github.com/ajitpratap0/uniunit/pkg/logger"
	"github.com/ajitpratap0/uniunit/pkg/metrics"
	"github.com/ajitpratap0/uniunit/pkg/units"
)

// Remapper re-expresses quantities using a fixed mapping from base dimension
// to target unit. A quantity of pressure under {mass: gram, length:
// millimeter, time: second} comes back in gram / millimeter / second ** 2.
//
// The mapping never changes after construction. Synthesized target units are
// memoized per instance; the cache is safe for concurrent use and two
// goroutines racing to fill the same entry compute the same unit.
type Remapper struct {
	reg    *units.Registry
	spec   map[units.Dimension]string
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]units.Unit
}

// NewRemapper builds a remapper from a specification whose keys may be unit
// symbols ("kg"), base-unit names ("kilogram"), bare dimension names
// ("mass") or dimension identifiers ("[mass]"). Dimensions left out fall back
// to their SI base unit when needed.
func NewRemapper(reg *units.Registry, spec map[string]string) *Remapper {
	normalized := make(map[units.Dimension]string, len(spec))
	for key, target := range spec {
		normalized[NormalizeKey(key)] = target
	}
	return &Remapper{
		reg:    reg,
		spec:   normalized,
		logger: logger.Get().With(zap.String("component", "remapper")),
		cache:  make(map[string]units.Unit),
	}
}

// Registry returns the unit registry the remapper parses target units with.
func (r *Remapper) Registry() *units.Registry {
	return r.reg
}

// Spec returns a copy of the normalized specification keyed by dimension
// identifier.
func (r *Remapper) Spec() map[string]string {
	out := make(map[string]string, len(r.spec))
	for dim, target := range r.spec {
		out[string(dim)] = target
	}
	return out
}

// TargetFor returns the unit name used for dim: the specification entry, the
// default symbol for a base dimension, or the bare dimension name.
func (r *Remapper) TargetFor(dim units.Dimension) string {
	if target, ok := r.spec[dim]; ok {
		return target
	}
	return fallbackUnit(dim)
}

// TargetUnit synthesizes the composite unit for a dimension signature. The
// signature is processed in dimension order, so equal signatures always give
// an equal unit regardless of input order. Registry failures are returned
// as is.
func (r *Remapper) TargetUnit(signature []units.DimensionPower) (units.Unit, error) {
	sorted := make([]units.DimensionPower, len(signature))
	copy(sorted, signature)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Dimension < sorted[j].Dimension })

	key := signatureKey(sorted)

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		metrics.TargetUnitCache.WithLabelValues(metrics.CacheHit).Inc()
		return cached, nil
	}
	metrics.TargetUnitCache.WithLabelValues(metrics.CacheMiss).Inc()

	result := units.Dimensionless
	for _, p := range sorted {
		u, err := r.reg.ParseUnit(r.TargetFor(p.Dimension))
		if err != nil {
			return units.Unit{}, err
		}
		result = result.Mul(u.Pow(p.Exponent))
	}

	r.mu.Lock()
	r.cache[key] = result
	r.mu.Unlock()

	r.logger.Debug("target unit synthesized",
		zap.String("signature", key),
		zap.Stringer("unit", result))
	return result, nil
}

// NewUnit returns the unit u is expressed in under this specification.
func (r *Remapper) NewUnit(u units.Unit) (units.Unit, error) {
	dims, err := r.reg.Dimensionality(u)
	if err != nil {
		return units.Unit{}, err
	}
	return r.TargetUnit(dims.Sorted())
}

// ConvertQuantity re-expresses q in the units of this specification.
func (r *Remapper) ConvertQuantity(q units.Quantity) (units.Quantity, error) {
	target, err := r.NewUnit(q.Unit)
	if err != nil {
		return units.Quantity{}, err
	}
	return r.reg.Convert(q, target)
}

// Convert converts a value. Numbers come back unchanged, quantities are
// re-expressed, and sequences are converted element by element into a new
// sequence of the same length and order. The first failing element aborts
// the conversion.
func (r *Remapper) Convert(v Value) (Value, error) {
	switch v.kind {
	case KindNumber:
		return v, nil
	case KindQuantity:
		q, err := r.ConvertQuantity(v.quantity)
		if err != nil {
			return Value{}, err
		}
		return FromQuantity(q), nil
	case KindSequence:
		out := make([]Value, len(v.items))
		for i, item := range v.items {
			converted, err := r.Convert(item)
			if err != nil {
				return Value{}, err
			}
			out[i] = converted
		}
		return Value{kind: KindSequence, items: out}, nil
	default:
		return Value{}, errors.Newf(errors.ErrorTypeValidation, "unsupported value kind %s", v.kind)
	}
}

// ConversionFactor returns how many target units one SI base unit of the
// dimension named by key is worth, e.g. 1000 for "kilogram" when mass maps
// to gram. Dimensions the specification does not map return 1.
func (r *Remapper) ConversionFactor(key string) (float64, error) {
	dim := NormalizeKey(key)
	target, ok := r.spec[dim]
	if !ok {
		return 1, nil
	}
	base, ok := DimensionToBaseUnit[dim]
	if !ok {
		return 0, errors.Newf(errors.ErrorTypeNotFound, "dimension %s has no SI base unit", dim).
			WithDetail("dimension", string(dim))
	}

	q, err := r.reg.NewQuantity(1, base)
	if err != nil {
		return 0, err
	}
	converted, err := r.reg.ConvertTo(q, target)
	if err != nil {
		return 0, err
	}
	return converted.Magnitude, nil
}

// String renders the specification as "Remapper([length]: millimeter, [mass]: gram)".
func (r *Remapper) String() string {
	dims := make([]string, 0, len(r.spec))
	for dim := range r.spec {
		dims = append(dims, string(dim))
	}
	sort.Strings(dims)

	parts := make([]string, len(dims))
	for i, dim := range dims {
		parts[i] = dim + ": " + r.spec[units.Dimension(dim)]
	}
	return "Remapper(" + strings.Join(parts, ", ") + ")"
}

func signatureKey(sorted []units.DimensionPower) string {
	var b strings.Builder
	for i, p := range sorted {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(string(p.Dimension))
		b.WriteByte('^')
		b.WriteString(strconv.FormatFloat(p.Exponent, 'g', -1, 64))
	}
	return b.String()
}
