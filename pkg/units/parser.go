package units

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ajitpratap0/uniunit/pkg/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokMul
	tokDiv
	tokPow
	tokLParen
	tokRParen
	tokPlus
	tokMinus
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return strconv.Quote(t.text)
}

var superscripts = map[rune]rune{
	'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
	'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9',
	'⁻': '-',
}

// normalizeExpression rewrites typographic notation into the plain grammar:
// superscript exponents become "**n", multiplication dots become "*", and the
// result is NFKC-normalized so full-width input parses like ASCII.
func normalizeExpression(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	inSuper := false
	for _, r := range s {
		if sub, ok := superscripts[r]; ok {
			if !inSuper {
				b.WriteString("**")
				inSuper = true
			}
			b.WriteRune(sub)
			continue
		}
		inSuper = false
		switch r {
		case '·', '⋅', '×':
			b.WriteRune('*')
		case '÷':
			b.WriteRune('/')
		default:
			b.WriteRune(r)
		}
	}
	return norm.NFKC.String(b.String())
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '°'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func tokenize(expr string) ([]token, error) {
	runes := []rune(expr)
	var tokens []token
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			// exponent part only when followed by digits, so "1eV" stays 1 * eV
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					for j < len(runes) && unicode.IsDigit(runes[j]) {
						j++
					}
					i = j
				}
			}
			text := string(runes[start:i])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, errors.Newf(errors.ErrorTypeSyntax, "invalid number %q in %q", text, expr)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, num: v, pos: start})
		case isIdentStart(r):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		case r == '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				tokens = append(tokens, token{kind: tokPow, text: "**", pos: i})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokMul, text: "*", pos: i})
				i++
			}
		case r == '^':
			tokens = append(tokens, token{kind: tokPow, text: "^", pos: i})
			i++
		case r == '/':
			tokens = append(tokens, token{kind: tokDiv, text: "/", pos: i})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '+':
			tokens = append(tokens, token{kind: tokPlus, text: "+", pos: i})
			i++
		case r == '-':
			tokens = append(tokens, token{kind: tokMinus, text: "-", pos: i})
			i++
		default:
			return nil, errors.Newf(errors.ErrorTypeSyntax, "unexpected character %q at position %d in %q", r, i, expr)
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(runes)}), nil
}

// resolver maps an identifier to a unit.
type resolver func(name string) (Unit, error)

type parser struct {
	expr    string
	tokens  []token
	pos     int
	resolve resolver
}

// parseExpression evaluates expr into a quantity. Identifiers are looked up
// through resolve; a lookup failure is returned unchanged.
func parseExpression(expr string, resolve resolver) (Quantity, error) {
	expr = normalizeExpression(expr)
	if strings.TrimSpace(expr) == "" {
		return Quantity{}, errors.New(errors.ErrorTypeSyntax, "empty unit expression")
	}

	tokens, err := tokenize(expr)
	if err != nil {
		return Quantity{}, err
	}

	p := &parser{expr: expr, tokens: tokens, resolve: resolve}
	q, err := p.parseProduct()
	if err != nil {
		return Quantity{}, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return Quantity{}, p.unexpected(tok)
	}
	return q, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) unexpected(tok token) error {
	return errors.Newf(errors.ErrorTypeSyntax, "invalid expression %q: unexpected %s at position %d", p.expr, tok.describe(), tok.pos)
}

// parseProduct handles "*", "/" and juxtaposition, all left-associative.
func (p *parser) parseProduct() (Quantity, error) {
	left, err := p.parseUnary()
	if err != nil {
		return Quantity{}, err
	}

	for {
		switch p.peek().kind {
		case tokMul:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return Quantity{}, err
			}
			left = left.Mul(right)
		case tokDiv:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return Quantity{}, err
			}
			left = left.Div(right)
		case tokNumber, tokIdent, tokLParen:
			right, err := p.parseUnary()
			if err != nil {
				return Quantity{}, err
			}
			left = left.Mul(right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Quantity, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		q, err := p.parseUnary()
		if err != nil {
			return Quantity{}, err
		}
		return q.Scale(-1), nil
	case tokPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Quantity, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return Quantity{}, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	p.next()
	exp, err := p.parseExponent()
	if err != nil {
		return Quantity{}, err
	}
	return base.Pow(exp), nil
}

func (p *parser) parseExponent() (float64, error) {
	sign := 1.0
	for {
		switch p.peek().kind {
		case tokMinus:
			p.next()
			sign = -sign
			continue
		case tokPlus:
			p.next()
			continue
		}
		break
	}

	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return sign * tok.num, nil
	case tokLParen:
		q, err := p.parseProduct()
		if err != nil {
			return 0, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return 0, p.unexpected(closing)
		}
		if !q.Unit.IsDimensionless() {
			return 0, errors.Newf(errors.ErrorTypeSyntax, "invalid expression %q: exponent must be a plain number", p.expr)
		}
		return sign * q.Magnitude, nil
	default:
		return 0, p.unexpected(tok)
	}
}

func (p *parser) parsePrimary() (Quantity, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return Quantity{Magnitude: tok.num}, nil
	case tokIdent:
		u, err := p.resolve(tok.text)
		if err != nil {
			return Quantity{}, err
		}
		return Quantity{Magnitude: 1, Unit: u}, nil
	case tokLParen:
		q, err := p.parseProduct()
		if err != nil {
			return Quantity{}, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return Quantity{}, p.unexpected(closing)
		}
		return q, nil
	default:
		return Quantity{}, p.unexpected(tok)
	}
}
