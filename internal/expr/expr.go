// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

// Package expr parses and evaluates the bounded integer expressions used by
// range constraints, e.g. "3 * N + 1" or "min(N, M) - 1".
//
// Grammar:
//
//	expression := term  (('+' | '-') term)*
//	term       := unary (('*' | '/' | '%') unary)*
//	unary      := '-' unary | power
//	power      := primary ('^' unary)?          // right associative
//	primary    := integer | identifier | call | '(' expression ')'
//	call       := ('min' | 'max') '(' expression ',' expression ')'
//
// All arithmetic is checked 64-bit signed; overflow, division by zero and
// unknown identifiers are evaluation errors. The set of referenced
// identifiers is recoverable without evaluating.
package expr

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/moriarty-project/moriarty/common"
)

// Expression is a parsed integer expression. Expressions are immutable and
// safe for concurrent evaluation.
type Expression struct {
	src    string
	root   node
	idents []string // sorted, deduplicated
}

// The same bound text is parsed over and over as ranges are copied and
// intersected, so parsed trees are cached. Expressions are immutable, making
// cache hits safe to share.
var parseCache, _ = lru.New[string, *Expression](1024)

// Parse parses src into an Expression.
func Parse(src string) (*Expression, error) {
	if cached, ok := parseCache.Get(src); ok {
		return cached, nil
	}

	p := parser{input: src}
	root, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("%w: unexpected trailing input %q in expression %q",
			common.ErrInvalidArgument, p.input[p.pos:], src)
	}

	seen := map[string]struct{}{}
	collectIdentifiers(root, seen)
	idents := make([]string, 0, len(seen))
	for name := range seen {
		idents = append(idents, name)
	}
	sort.Strings(idents)

	e := &Expression{src: src, root: root, idents: idents}
	parseCache.Add(src, e)
	return e, nil
}

// String returns the original expression text.
func (e *Expression) String() string {
	return e.src
}

// Identifiers returns the sorted names of all variables the expression
// references.
func (e *Expression) Identifiers() []string {
	return e.idents
}

// Eval evaluates the expression against the given variable values.
func (e *Expression) Eval(env map[string]int64) (int64, error) {
	return e.root.eval(env)
}

// -----------------------------------------------------------------------------
// Nodes

type node interface {
	eval(env map[string]int64) (int64, error)
}

type literal int64

func (l literal) eval(map[string]int64) (int64, error) {
	return int64(l), nil
}

type identifier string

func (id identifier) eval(env map[string]int64) (int64, error) {
	value, ok := env[string(id)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown identifier %q",
			common.ErrInvalidArgument, string(id))
	}
	return value, nil
}

type unary struct {
	operand node
}

func (u unary) eval(env map[string]int64) (int64, error) {
	value, err := u.operand.eval(env)
	if err != nil {
		return 0, err
	}
	if value == math.MinInt64 {
		return 0, overflowErr("-", value, 0)
	}
	return -value, nil
}

type binary struct {
	op          byte // one of + - * / % ^
	left, right node
}

func (b binary) eval(env map[string]int64) (int64, error) {
	lhs, err := b.left.eval(env)
	if err != nil {
		return 0, err
	}
	rhs, err := b.right.eval(env)
	if err != nil {
		return 0, err
	}
	switch b.op {
	case '+':
		return checkedAdd(lhs, rhs)
	case '-':
		return checkedSub(lhs, rhs)
	case '*':
		return checkedMul(lhs, rhs)
	case '/':
		if rhs == 0 {
			return 0, fmt.Errorf("%w: division by zero", common.ErrInvalidArgument)
		}
		if lhs == math.MinInt64 && rhs == -1 {
			return 0, overflowErr("/", lhs, rhs)
		}
		return lhs / rhs, nil
	case '%':
		if rhs == 0 {
			return 0, fmt.Errorf("%w: modulo by zero", common.ErrInvalidArgument)
		}
		if lhs == math.MinInt64 && rhs == -1 {
			return 0, overflowErr("%", lhs, rhs)
		}
		return lhs % rhs, nil
	case '^':
		return checkedPow(lhs, rhs)
	}
	return 0, fmt.Errorf("%w: unknown operator %q", common.ErrInternal, string(b.op))
}

type call struct {
	name     string // "min" or "max"
	lhs, rhs node
}

func (c call) eval(env map[string]int64) (int64, error) {
	lhs, err := c.lhs.eval(env)
	if err != nil {
		return 0, err
	}
	rhs, err := c.rhs.eval(env)
	if err != nil {
		return 0, err
	}
	if c.name == "min" {
		return min(lhs, rhs), nil
	}
	return max(lhs, rhs), nil
}

func collectIdentifiers(n node, into map[string]struct{}) {
	switch t := n.(type) {
	case identifier:
		into[string(t)] = struct{}{}
	case unary:
		collectIdentifiers(t.operand, into)
	case binary:
		collectIdentifiers(t.left, into)
		collectIdentifiers(t.right, into)
	case call:
		collectIdentifiers(t.lhs, into)
		collectIdentifiers(t.rhs, into)
	}
}

// -----------------------------------------------------------------------------
// Checked arithmetic

func overflowErr(op string, lhs, rhs int64) error {
	return fmt.Errorf("%w: overflow evaluating %d %s %d",
		common.ErrInvalidArgument, lhs, op, rhs)
}

func checkedAdd(a, b int64) (int64, error) {
	sum := a + b
	if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0) {
		return 0, overflowErr("+", a, b)
	}
	return sum, nil
}

func checkedSub(a, b int64) (int64, error) {
	diff := a - b
	if (a >= 0 && b < 0 && diff < 0) || (a < 0 && b > 0 && diff > 0) {
		return 0, overflowErr("-", a, b)
	}
	return diff, nil
}

func checkedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/b != a || (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		return 0, overflowErr("*", a, b)
	}
	return product, nil
}

// checkedPow computes base^exponent by repeated squaring. Negative
// exponents are invalid; 0^0 is 1.
func checkedPow(base, exponent int64) (int64, error) {
	if exponent < 0 {
		return 0, fmt.Errorf("%w: negative exponent %d",
			common.ErrInvalidArgument, exponent)
	}
	result := int64(1)
	factor := base
	for exponent > 0 {
		var err error
		if exponent&1 == 1 {
			if result, err = checkedMul(result, factor); err != nil {
				return 0, err
			}
		}
		exponent >>= 1
		if exponent > 0 {
			if factor, err = checkedMul(factor, factor); err != nil {
				return 0, err
			}
		}
	}
	return result, nil
}

// -----------------------------------------------------------------------------
// Parser

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) consume(c byte) bool {
	p.skipSpace()
	if p.peek() == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%w: %s at offset %d of expression %q",
		common.ErrInvalidArgument, msg, p.pos, p.input)
}

func (p *parser) parseExpression() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' && op != '%' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if p.consume('-') {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unary{operand: operand}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != '^' {
		return base, nil
	}
	p.pos++
	exponent, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return binary{op: '^', left: base, right: exponent}, nil
}

func (p *parser) parsePrimary() (node, error) {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.consume(')') {
			return nil, p.errorf("expected ')'")
		}
		return inner, nil
	case c >= '0' && c <= '9':
		return p.parseLiteral()
	case isIdentStart(c):
		return p.parseIdentifierOrCall()
	}
	return nil, p.errorf("expected a value")
}

func (p *parser) parseLiteral() (node, error) {
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	value, err := strconv.ParseInt(p.input[start:p.pos], 10, 64)
	if err != nil {
		return nil, p.errorf("integer literal %q out of range", p.input[start:p.pos])
	}
	return literal(value), nil
}

func (p *parser) parseIdentifierOrCall() (node, error) {
	start := p.pos
	for p.pos < len(p.input) && isIdentPart(p.input[p.pos]) {
		p.pos++
	}
	name := p.input[start:p.pos]

	if !p.consume('(') {
		if name == "min" || name == "max" {
			return nil, p.errorf("%s requires arguments", name)
		}
		return identifier(name), nil
	}

	if name != "min" && name != "max" {
		return nil, p.errorf("unknown function %q", name)
	}
	lhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.consume(',') {
		return nil, p.errorf("expected ',' in %s()", name)
	}
	rhs, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.consume(')') {
		return nil, p.errorf("expected ')' closing %s()", name)
	}
	return call{name: name, lhs: lhs, rhs: rhs}, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}
