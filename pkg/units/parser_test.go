package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeExpression(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "m²", want: "m**2"},
		{in: "s⁻¹", want: "s**-1"},
		{in: "kg·m/s²", want: "kg*m/s**2"},
		{in: "N×m", want: "N*m"},
		{in: "J÷s", want: "J/s"},
		{in: "１００ ｋｇ", want: "100 kg"},
		{in: "10 m", want: "10 m"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeExpression(tt.in))
		})
	}
}

func TestTokenize(t *testing.T) {
	tokens, err := tokenize("1.5e3 kg*m**2/(s^2)")
	require.NoError(t, err)

	kinds := make([]tokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.kind
	}
	assert.Equal(t, []tokenKind{
		tokNumber, tokIdent, tokMul, tokIdent, tokPow, tokNumber, tokDiv,
		tokLParen, tokIdent, tokPow, tokNumber, tokRParen, tokEOF,
	}, kinds)
	assert.Equal(t, 1500.0, tokens[0].num)
	assert.Equal(t, "kg", tokens[1].text)
}

func TestTokenize_IdentifiersWithDigitsAndCJK(t *testing.T) {
	tokens, err := tokenize("g_0 千瓦时")
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "g_0", tokens[0].text)
	assert.Equal(t, "千瓦时", tokens[1].text)
}

func TestParseExpression_Precedence(t *testing.T) {
	lookup := func(name string) (Unit, error) {
		return unitOf(name, 1), nil
	}

	tests := []struct {
		expr      string
		magnitude float64
		unit      string
	}{
		{expr: "2 * 3", magnitude: 6, unit: "dimensionless"},
		{expr: "10 / 4", magnitude: 2.5, unit: "dimensionless"},
		{expr: "a / b * c", magnitude: 1, unit: "a * c / b"},
		{expr: "a / (b * c)", magnitude: 1, unit: "a / b / c"},
		{expr: "2 a ** 3", magnitude: 2, unit: "a ** 3"},
		{expr: "(2 a) ** 2", magnitude: 4, unit: "a ** 2"},
		{expr: "a ** -1", magnitude: 1, unit: "1 / a"},
		{expr: "a ** (1/2)", magnitude: 1, unit: "a ** 0.5"},
		{expr: "-3 a", magnitude: -3, unit: "a"},
		{expr: "a / a", magnitude: 1, unit: "dimensionless"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			q, err := parseExpression(tt.expr, lookup)
			require.NoError(t, err)
			assert.InDelta(t, tt.magnitude, q.Magnitude, 1e-12)
			assert.Equal(t, tt.unit, q.Unit.String())
		})
	}
}

func TestParseExpression_ExponentMustBeNumber(t *testing.T) {
	lookup := func(name string) (Unit, error) {
		return unitOf(name, 1), nil
	}

	_, err := parseExpression("a ** (b)", lookup)
	assert.Error(t, err)

	_, err = parseExpression("a ** b", lookup)
	assert.Error(t, err)
}
