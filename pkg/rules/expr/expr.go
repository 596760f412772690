// Package expr is the default rules.Evaluator: a small expression language
// over form data.
//
// Supported syntax:
//   - truthiness: `newsletter`, `!newsletter`
//   - equality: `country == "NZ"`, `age != 0`, `email == null`
//   - ordering against numbers: `age >= 18`, `people.0.age < 65`
//   - composition: `a && (b || !c)`
//
// Identifiers are dot paths into the form data. Numeric segments index
// repeatable panels. Inside a repeatable instance, names resolve against the
// instance first. The `extras.` prefix reads rules.Context.Extras.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formruntime/pkg/rules"
)

// Evaluator parses and evaluates rules. Parsed rules are not cached; rules are
// short and evaluated against a handful of items per change.
type Evaluator struct{}

var (
	_ rules.Evaluator = (*Evaluator)(nil)
	_ rules.Compiler  = (*Evaluator)(nil)
)

// New returns an Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Eval evaluates rule against ctx. An empty rule holds.
func (e *Evaluator) Eval(fieldPath, rule string, ctx rules.Context) (bool, error) {
	node, err := compile(rule)
	if err != nil {
		return false, fmt.Errorf("%s: %w", fieldPath, err)
	}
	if node == nil {
		return true, nil
	}
	return node.eval(ctx)
}

// Compile reports syntax errors and literal/operator mismatches in rule.
func (e *Evaluator) Compile(rule string) error {
	_, err := compile(rule)
	return err
}

func compile(rule string) (node, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return nil, nil
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	n, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("rules/expr: unexpected token %q", p.tokens[p.pos].raw)
	}
	return n, nil
}

type kind int

const (
	kindIdent kind = iota
	kindString
	kindNumber
	kindBool
	kindNull
	kindEq
	kindNeq
	kindLt
	kindLte
	kindGt
	kindGte
	kindAnd
	kindOr
	kindNot
	kindLParen
	kindRParen
)

type token struct {
	kind kind
	raw  string
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	return isSpace(c) || strings.IndexByte("()!=&|<>", c) >= 0
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		c := input[i]
		if isSpace(c) {
			i++
			continue
		}

		// two character operators first
		if i+1 < len(input) {
			switch input[i : i+2] {
			case "==":
				tokens = append(tokens, token{kindEq, "=="})
				i += 2
				continue
			case "!=":
				tokens = append(tokens, token{kindNeq, "!="})
				i += 2
				continue
			case "<=":
				tokens = append(tokens, token{kindLte, "<="})
				i += 2
				continue
			case ">=":
				tokens = append(tokens, token{kindGte, ">="})
				i += 2
				continue
			case "&&":
				tokens = append(tokens, token{kindAnd, "&&"})
				i += 2
				continue
			case "||":
				tokens = append(tokens, token{kindOr, "||"})
				i += 2
				continue
			}
		}

		switch c {
		case '(':
			tokens = append(tokens, token{kindLParen, "("})
			i++
		case ')':
			tokens = append(tokens, token{kindRParen, ")"})
			i++
		case '!':
			tokens = append(tokens, token{kindNot, "!"})
			i++
		case '<':
			tokens = append(tokens, token{kindLt, "<"})
			i++
		case '>':
			tokens = append(tokens, token{kindGt, ">"})
			i++
		case '=':
			return nil, errors.New("rules/expr: unexpected '='; use '=='")
		case '&':
			return nil, errors.New("rules/expr: unexpected '&'; use '&&'")
		case '|':
			return nil, errors.New("rules/expr: unexpected '|'; use '||'")
		case '"', '\'':
			end := i + 1
			for ; end < len(input); end++ {
				if input[end] == '\\' {
					end++
					continue
				}
				if input[end] == c {
					break
				}
			}
			if end >= len(input) {
				return nil, errors.New("rules/expr: unterminated string literal")
			}
			body := input[i+1 : end]
			if c == '\'' {
				// strconv.Unquote only accepts single characters in single quotes
				body = doubleQuoted(body)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return nil, fmt.Errorf("rules/expr: invalid string literal: %w", err)
			}
			tokens = append(tokens, token{kindString, value})
			i = end + 1
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			tokens = append(tokens, word(input[start:i]))
		}
	}
	return tokens, nil
}

func word(raw string) token {
	switch strings.ToLower(raw) {
	case "true", "false":
		return token{kindBool, strings.ToLower(raw)}
	case "null", "nil":
		return token{kindNull, "null"}
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return token{kindNumber, raw}
	}
	return token{kindIdent, raw}
}

type node interface {
	eval(ctx rules.Context) (bool, error)
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx rules.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx rules.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

type notNode struct{ inner node }

func (n notNode) eval(ctx rules.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	return !ok, err
}

type truthyNode struct{ path string }

func (n truthyNode) eval(ctx rules.Context) (bool, error) {
	value, _ := resolve(ctx, n.path)
	return truthy(value), nil
}

type compareNode struct {
	path string
	op   kind
	lit  token
	num  float64
}

func (n compareNode) eval(ctx rules.Context) (bool, error) {
	value, found := resolve(ctx, n.path)

	switch n.lit.kind {
	case kindNull:
		isNull := !found || value == nil
		return isNull == (n.op == kindEq), nil
	case kindBool:
		got := truthy(value)
		return (got == (n.lit.raw == "true")) == (n.op == kindEq), nil
	case kindNumber:
		got, ok := toNumber(value)
		switch n.op {
		case kindEq:
			return ok && got == n.num, nil
		case kindNeq:
			return !ok || got != n.num, nil
		}
		if !ok {
			// missing or non numeric values never satisfy an ordering
			return false, nil
		}
		switch n.op {
		case kindLt:
			return got < n.num, nil
		case kindLte:
			return got <= n.num, nil
		case kindGt:
			return got > n.num, nil
		default:
			return got >= n.num, nil
		}
	default:
		got := toString(value)
		return (got == n.lit.raw) == (n.op == kindEq), nil
	}
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) accept(k kind) bool {
	if tok, ok := p.peek(); ok && tok.kind == k {
		p.pos++
		return true
	}
	return false
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept(kindOr) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.accept(kindAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.accept(kindNot) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if p.accept(kindLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(kindRParen) {
			return nil, errors.New("rules/expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := p.peek()
	if !ok {
		return nil, errors.New("rules/expr: empty expression")
	}
	if ident.kind != kindIdent {
		return nil, fmt.Errorf("rules/expr: expected identifier, got %q", ident.raw)
	}
	p.pos++

	op, ok := p.peek()
	if !ok || op.kind < kindEq || op.kind > kindGte {
		return truthyNode{path: ident.raw}, nil
	}
	p.pos++

	lit, ok := p.peek()
	if !ok {
		return nil, errors.New("rules/expr: missing literal")
	}
	p.pos++
	switch lit.kind {
	case kindIdent:
		// bare words compare as strings
		lit.kind = kindString
	case kindString, kindNumber, kindBool, kindNull:
	default:
		return nil, fmt.Errorf("rules/expr: expected literal, got %q", lit.raw)
	}

	n := compareNode{path: ident.raw, op: op.kind, lit: lit}
	if op.kind != kindEq && op.kind != kindNeq {
		if lit.kind != kindNumber {
			return nil, fmt.Errorf("rules/expr: operator %q needs a number, got %q", op.raw, lit.raw)
		}
	}
	if lit.kind == kindNumber {
		n.num, _ = strconv.ParseFloat(lit.raw, 64)
	}
	return n, nil
}

func resolve(ctx rules.Context, path string) (any, bool) {
	if rest, ok := strings.CutPrefix(path, "extras."); ok {
		return lookup(ctx.Extras, rest)
	}
	if value, ok := lookup(ctx.Scope, path); ok {
		return value, true
	}
	return lookup(ctx.Values, path)
}

func lookup(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if value, ok := values[path]; ok {
		return value, true
	}

	var current any = values
	for _, segment := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, false
			}
			current = typed[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
		return trimmed != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		if n, ok := toNumber(v); ok {
			return n != 0
		}
		return true
	}
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// doubleQuoted rewrites the body of a single quoted literal so it reads the
// same between double quotes: \' loses its backslash, bare " gains one and
// every other escape is kept as written.
func doubleQuoted(body string) string {
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		switch {
		case body[i] == '\\' && i+1 < len(body):
			i++
			if body[i] != '\'' {
				b.WriteByte('\\')
			}
			b.WriteByte(body[i])
		case body[i] == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
