// Package units implements the unit registry that backs uniunit: it parses
// unit and quantity expressions, reports the base-dimension signature of any
// unit, and converts quantities between dimensionally compatible units,
// including the affine temperature scales.
//
// Units are described with a small definition language:
//
//	meter = [length] = m = metre
//	pound = 0.45359237 * kilogram = lb
//	degree_Celsius = kelvin; offset: 273.15 = degC
//
// Every unit may be combined with an SI prefix by name ("kilometer") or by
// symbol ("km"), and plural forms ("meters", "inches") are accepted.
package units

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/uniunit/pkg/errors"
	"github.com/ajitpratap0/uniunit/pkg/logger"
)

// definition is a resolved unit: the factor converting one of it into the
// registry's reference units, an additive offset for affine scales, and its
// dimensionality.
type definition struct {
	name    string
	symbol  string
	aliases []string
	factor  float64
	offset  float64
	dims    Dimensionality
	derived bool
}

type prefix struct {
	name    string
	symbols []string
	factor  float64
}

// Registry holds unit definitions. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	defs     map[string]*definition
	index    map[string]string
	prefixes []prefix
	logger   *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for definition events.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithoutDefaults creates a registry that only knows the SI prefixes and
// dimensionless quantities. Mostly useful for tests.
func WithoutDefaults() Option {
	return func(r *Registry) {
		r.defs = nil
	}
}

// NewRegistry creates a registry seeded with the default definitions.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		defs:   make(map[string]*definition),
		index:  make(map[string]string),
		logger: logger.Get().With(zap.String("component", "unit_registry")),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.prefixes = append(r.prefixes, defaultPrefixes...)
	// longest symbols first so "da" wins over "d"
	sort.SliceStable(r.prefixes, func(i, j int) bool {
		return longestSymbol(r.prefixes[i]) > longestSymbol(r.prefixes[j])
	})

	if r.defs == nil {
		r.defs = make(map[string]*definition)
		return r, nil
	}

	for _, line := range defaultDefinitions {
		if err := r.Define(line); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("invalid default definition %q", line))
		}
	}
	r.logger.Debug("unit registry initialized", zap.Int("definitions", len(r.defs)))
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(opts ...Option) *Registry {
	r, err := NewRegistry(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func longestSymbol(p prefix) int {
	n := 0
	for _, s := range p.symbols {
		if len(s) > n {
			n = len(s)
		}
	}
	return n
}

// Define adds a definition to the registry. Supported forms:
//
//	name = [dimension] = symbol = alias...
//	name = expression = symbol = alias...
//	name = expression; offset: 273.15 = symbol = alias...
//
// A symbol of "_" means the unit has no symbol. Reusing a name, symbol or
// alias that is already defined fails with a conflict error.
func (r *Registry) Define(definitionText string) error {
	parts := strings.Split(definitionText, "=")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return errors.Newf(errors.ErrorTypeSyntax, "invalid definition %q: expected 'name = expression'", definitionText)
	}

	name := parts[0]
	exprText := parts[1]
	offset := 0.0
	if idx := strings.Index(exprText, ";"); idx >= 0 {
		modifier := strings.TrimSpace(exprText[idx+1:])
		exprText = strings.TrimSpace(exprText[:idx])
		value, ok := strings.CutPrefix(modifier, "offset:")
		if !ok {
			return errors.Newf(errors.ErrorTypeSyntax, "invalid definition %q: unknown modifier %q", definitionText, modifier)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return errors.Newf(errors.ErrorTypeSyntax, "invalid definition %q: bad offset %q", definitionText, value)
		}
		offset = v
	}

	def := &definition{name: name, offset: offset}
	if len(parts) > 2 && parts[2] != "_" {
		def.symbol = parts[2]
	}
	if len(parts) > 3 {
		def.aliases = append(def.aliases, parts[3:]...)
	}

	if strings.HasPrefix(exprText, "[") {
		dim := Dimension(exprText)
		if !dim.IsBracketed() {
			return errors.Newf(errors.ErrorTypeSyntax, "invalid definition %q: bad dimension %q", definitionText, exprText)
		}
		def.factor = 1
		def.dims = Dimensionality{dim: 1}
	} else {
		q, err := parseExpression(exprText, r.lookup)
		if err != nil {
			return err
		}
		factor, dims, err := r.reduce(q.Unit)
		if err != nil {
			return err
		}
		def.factor = q.Magnitude * factor
		def.dims = dims
		// plain aliases of an affine unit keep its offset
		if offset == 0 && q.Magnitude == 1 && q.Unit.Len() == 1 && q.Unit.terms[0].exp == 1 {
			if target := r.definitionFor(q.Unit.terms[0].name); target != nil {
				def.offset = target.offset
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{def.name}, def.aliases...)
	if def.symbol != "" {
		keys = append(keys, def.symbol)
	}
	for _, k := range keys {
		if existing, ok := r.index[k]; ok {
			return errors.Newf(errors.ErrorTypeConflict, "cannot define %q: %q is already defined as %q", def.name, k, existing).
				WithDetail("name", k)
		}
	}

	r.defs[def.name] = def
	for _, k := range keys {
		r.index[k] = def.name
	}

	r.logger.Debug("unit defined", zap.String("name", def.name), zap.String("dimensionality", def.dims.String()))
	return nil
}

// Parse evaluates a quantity expression such as "100 kg" or "9.81 m/s**2".
func (r *Registry) Parse(expr string) (Quantity, error) {
	return parseExpression(expr, r.lookup)
}

// ParseUnit evaluates a unit expression such as "kg*m/s**2". Expressions that
// carry a magnitude other than one are rejected.
func (r *Registry) ParseUnit(expr string) (Unit, error) {
	q, err := r.Parse(expr)
	if err != nil {
		return Unit{}, err
	}
	if q.Magnitude != 1 {
		return Unit{}, errors.Newf(errors.ErrorTypeSyntax, "%q is a quantity, not a unit", expr)
	}
	return q.Unit, nil
}

// NewQuantity parses unitExpr and pairs it with magnitude.
func (r *Registry) NewQuantity(magnitude float64, unitExpr string) (Quantity, error) {
	u, err := r.ParseUnit(unitExpr)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: magnitude, Unit: u}, nil
}

// Dimensionality returns the base-dimension signature of u.
func (r *Registry) Dimensionality(u Unit) (Dimensionality, error) {
	_, dims, err := r.reduce(u)
	return dims, err
}

// IsCompatible reports whether a and b share the same dimensionality.
func (r *Registry) IsCompatible(a, b Unit) bool {
	da, err := r.Dimensionality(a)
	if err != nil {
		return false
	}
	db, err := r.Dimensionality(b)
	if err != nil {
		return false
	}
	return da.Equal(db)
}

// Convert re-expresses q in the unit to. Affine offsets are applied when
// either side is a single offset unit such as degC.
func (r *Registry) Convert(q Quantity, to Unit) (Quantity, error) {
	srcFactor, srcOffset, srcDims, err := r.scale(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	dstFactor, dstOffset, dstDims, err := r.scale(to)
	if err != nil {
		return Quantity{}, err
	}

	if !srcDims.Equal(dstDims) {
		return Quantity{}, errors.Newf(errors.ErrorTypeDimensionality,
			"Cannot convert from '%s' (%s) to '%s' (%s)", q.Unit, srcDims, to, dstDims).
			WithDetail("from", q.Unit.String()).
			WithDetail("to", to.String())
	}

	reference := q.Magnitude*srcFactor + srcOffset
	return Quantity{Magnitude: (reference - dstOffset) / dstFactor, Unit: to}, nil
}

// ConvertTo parses unitExpr and converts q into it.
func (r *Registry) ConvertTo(q Quantity, unitExpr string) (Quantity, error) {
	to, err := r.ParseUnit(unitExpr)
	if err != nil {
		return Quantity{}, err
	}
	return r.Convert(q, to)
}

// Units returns the names of all explicitly defined units, sorted.
func (r *Registry) Units() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for name, def := range r.defs {
		if !def.derived {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IsDefined reports whether name resolves to a unit.
func (r *Registry) IsDefined(name string) bool {
	_, err := r.lookup(name)
	return err == nil
}

// scale returns the factor, offset and dimensionality used for conversion.
func (r *Registry) scale(u Unit) (float64, float64, Dimensionality, error) {
	if u.Len() == 1 && u.terms[0].exp == 1 {
		def := r.definitionFor(u.terms[0].name)
		if def == nil {
			return 0, 0, nil, undefinedUnit(u.terms[0].name)
		}
		return def.factor, def.offset, def.dims, nil
	}

	for _, t := range u.terms {
		if def := r.definitionFor(t.name); def != nil && def.offset != 0 {
			return 0, 0, nil, errors.Newf(errors.ErrorTypeOffsetUnit,
				"Ambiguous operation with offset unit (%s) in '%s'", t.name, u).
				WithDetail("unit", t.name)
		}
	}
	factor, dims, err := r.reduce(u)
	return factor, 0, dims, err
}

// reduce folds u into a single factor and dimensionality, ignoring offsets.
func (r *Registry) reduce(u Unit) (float64, Dimensionality, error) {
	factor := 1.0
	dims := Dimensionality{}
	for _, t := range u.terms {
		def := r.definitionFor(t.name)
		if def == nil {
			return 0, nil, undefinedUnit(t.name)
		}
		factor *= math.Pow(def.factor, t.exp)
		dims.add(def.dims, t.exp)
	}
	return factor, dims, nil
}

func (r *Registry) definitionFor(name string) *definition {
	r.mu.RLock()
	def := r.defs[name]
	r.mu.RUnlock()
	if def != nil {
		return def
	}
	u, err := r.lookup(name)
	if err != nil || u.Len() != 1 || u.terms[0].exp != 1 {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defs[u.terms[0].name]
}

// lookup resolves an identifier to a unit: exact names, symbols and aliases
// first, then SI prefixes, then "square_"/"cubic_" forms, then plurals.
func (r *Registry) lookup(name string) (Unit, error) {
	if name == "dimensionless" {
		return Dimensionless, nil
	}

	r.mu.RLock()
	canonical, ok := r.index[name]
	r.mu.RUnlock()
	if ok {
		return unitOf(canonical, 1), nil
	}

	if canonical, ok := r.lookupPrefixed(name); ok {
		return unitOf(canonical, 1), nil
	}

	for power, exp := range map[string]float64{"square_": 2, "cubic_": 3} {
		if rest, ok := strings.CutPrefix(name, power); ok && rest != "" {
			u, err := r.lookup(rest)
			if err != nil {
				return Unit{}, err
			}
			return u.Pow(exp), nil
		}
	}

	if len(name) > 2 && strings.HasSuffix(name, "s") {
		for _, singular := range []string{name[:len(name)-1], strings.TrimSuffix(name, "es")} {
			if singular == name {
				continue
			}
			r.mu.RLock()
			canonical, ok := r.index[singular]
			r.mu.RUnlock()
			if ok {
				return unitOf(canonical, 1), nil
			}
			if canonical, ok := r.lookupPrefixed(singular); ok {
				return unitOf(canonical, 1), nil
			}
		}
	}

	return Unit{}, undefinedUnit(name)
}

// lookupPrefixed resolves "kilometer" and "km" style names, caching the
// derived definition under its full name.
func (r *Registry) lookupPrefixed(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.prefixes {
		if rest, ok := strings.CutPrefix(name, p.name); ok && rest != "" {
			if base := r.baseForPrefix(rest, false); base != nil {
				return r.derive(p, base), true
			}
		}
		for _, sym := range p.symbols {
			if rest, ok := strings.CutPrefix(name, sym); ok && rest != "" {
				if base := r.baseForPrefix(rest, true); base != nil {
					return r.derive(p, base), true
				}
			}
		}
	}
	return "", false
}

// baseForPrefix finds the unprefixed definition a prefix may attach to.
// Prefix symbols combine with unit symbols and aliases ("ms", "msec"),
// prefix names with unit names and aliases ("millisecond"). Mixing a prefix
// symbol with a full unit name ("kmeter") or the reverse is rejected.
// Caller holds at least the read lock.
func (r *Registry) baseForPrefix(rest string, symbol bool) *definition {
	canonical, ok := r.index[rest]
	if !ok {
		return nil
	}
	def := r.defs[canonical]
	if def == nil || def.derived || def.offset != 0 {
		return nil
	}
	if symbol {
		if def.name == rest {
			return nil
		}
	} else if def.symbol == rest {
		return nil
	}
	return def
}

// derive registers prefix+base under the prefixed full name. Caller holds
// the read lock; it is released while the write lock is taken.
func (r *Registry) derive(p prefix, base *definition) string {
	full := p.name + base.name
	if _, ok := r.defs[full]; ok {
		return full
	}

	r.mu.RUnlock()
	r.mu.Lock()
	if _, ok := r.defs[full]; !ok {
		r.defs[full] = &definition{
			name:    full,
			factor:  p.factor * base.factor,
			dims:    base.dims,
			derived: true,
		}
		if _, taken := r.index[full]; !taken {
			r.index[full] = full
		}
	}
	r.mu.Unlock()
	r.mu.RLock()
	return full
}

func undefinedUnit(name string) error {
	return errors.Newf(errors.ErrorTypeUndefinedUnit, "'%s' is not defined in the unit registry", name).
		WithDetail("unit", name)
}
