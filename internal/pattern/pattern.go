// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

// Package pattern implements a restricted, regex-like string pattern.
//
// A Pattern is *not* a regular expression, even though it borrows the
// syntax. Matching is greedy and never backtracks: each atom consumes as
// many characters as it can before the rest of the pattern runs. As a
// consequence some patterns never match anything — "a*a" is the canonical
// example, since "a*" swallows every 'a' and the trailing 'a' finds none.
//
// Supported syntax, after whitespace stripping and escape resolution
// ("\\" → '\', "\ " → ' ', all other spaces removed):
//
//   - single characters, except the specials \()[]{}^?*+-| and space
//   - character classes "[abc]", with '^' negation in first position,
//     same-case ranges "a-z" / "A-Z" / "0-9", and '-' as a literal only in
//     last position; no duplicates; if both '[' and ']' are members, '['
//     must come first
//   - repetitions "?", "+", "*", "{n}", "{n,}", "{,m}", "{n,m}"
//   - concatenation, alternation with '|', grouping with "(...)"; groups
//     cannot carry repetitions
package pattern

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/moriarty-project/moriarty/common"
	"github.com/moriarty-project/moriarty/internal/random"
)

// Pattern is a parsed simple pattern.
type Pattern struct {
	pattern string
	root    node
}

// node matches in two stages: first the repeated character set, then the
// subpatterns. allOf concatenates every subpattern left to right; anyOf
// takes the first subpattern that matches.
type node struct {
	chars CharSet

	anyOf bool
	subs  []node

	// The slice of the sanitized pattern this node was parsed from.
	pattern string
}

const specialCharacters = `\()[]{}^?*+-|`

func isSpecial(c byte) bool {
	return strings.IndexByte(specialCharacters, c) >= 0
}

func validCharRange(s string) bool {
	if len(s) != 3 || s[1] != '-' {
		return false
	}
	a, b := s[0], s[2]
	lower := func(c byte) bool { return 'a' <= c && c <= 'z' }
	upper := func(c byte) bool { return 'A' <= c && c <= 'Z' }
	digit := func(c byte) bool { return '0' <= c && c <= '9' }
	return a <= b && ((lower(a) && lower(b)) || (upper(a) && upper(b)) || (digit(a) && digit(b)))
}

// sanitize resolves "\\" and "\ " and strips unescaped spaces. Other
// whitespace characters are kept as-is (and rejected later as invalid
// pattern characters).
func sanitize(pattern string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '\\' {
			if i+1 == len(pattern) {
				return "", fmt.Errorf("%w: unescaped '\\' at end of pattern",
					common.ErrInvalidArgument)
			}
			if pattern[i+1] != '\\' && pattern[i+1] != ' ' {
				return "", fmt.Errorf("%w: invalid escape '\\%c' in pattern",
					common.ErrInvalidArgument, pattern[i+1])
			}
			sb.WriteByte(pattern[i+1])
			i++
			continue
		}
		if pattern[i] != ' ' {
			sb.WriteByte(pattern[i])
		}
	}
	return sb.String(), nil
}

// charSetPrefixLength returns the length of the pattern prefix forming one
// character set (a single character or a bracketed class). The content of
// the class is not validated here.
func charSetPrefixLength(pattern string) (int, error) {
	if len(pattern) == 0 {
		return 0, fmt.Errorf("%w: empty pattern", common.ErrInvalidArgument)
	}
	if pattern[0] != '[' {
		// sanitize leaves a '\' only where the input had "\\", so it is a
		// literal backslash here.
		if isSpecial(pattern[0]) && pattern[0] != '\\' {
			return 0, fmt.Errorf("%w: invalid character %q starting a character set",
				common.ErrInvalidArgument, pattern[0])
		}
		return 1, nil
	}

	// The closing bracket is the first or the second ']' seen: since no
	// character may repeat inside a class, it cannot be any later one. It is
	// the second only if no '[' occurs between the first and the second.
	close := -1
	for i := 1; i < len(pattern); i++ {
		if pattern[i] == ']' {
			if close >= 0 {
				close = i
				break
			}
			close = i
		} else if pattern[i] == '[' {
			if close >= 0 {
				break
			}
		}
	}
	if close < 0 {
		return 0, fmt.Errorf("%w: no ']' found to end character set",
			common.ErrInvalidArgument)
	}
	return close + 1, nil
}

// parseCharSetBody parses the inside of a character class (without the
// surrounding brackets) and returns it with repetition [1, 1].
func parseCharSetBody(chars string) (CharSet, error) {
	var set CharSet
	if len(chars) == 0 {
		return set, fmt.Errorf("%w: empty character set", common.ErrInvalidArgument)
	}
	if err := set.SetRange(1, 1); err != nil {
		return set, err
	}

	negate := false
	if chars[0] == '^' {
		chars = chars[1:]
		if len(chars) == 0 {
			// A lone '^' is the literal caret.
			err := set.Add('^')
			return set, err
		}
		negate = true
	}

	if chars[len(chars)-1] == '-' {
		if err := set.Add('-'); err != nil {
			return set, err
		}
		chars = chars[:len(chars)-1]
	}

	if open, close := strings.IndexByte(chars, '['), strings.IndexByte(chars, ']'); open >= 0 && close >= 0 && open > close {
		return set, fmt.Errorf("%w: '[' cannot come after ']' inside a character set",
			common.ErrInvalidArgument)
	}

	for i := 0; i < len(chars); i++ {
		if i+3 <= len(chars) && validCharRange(chars[i:i+3]) {
			for c := chars[i]; c <= chars[i+2]; c++ {
				if err := set.Add(c); err != nil {
					return set, err
				}
			}
			i += 2
			continue
		}
		if chars[i] == '-' {
			return set, fmt.Errorf("%w: invalid '-' in character set",
				common.ErrInvalidArgument)
		}
		if err := set.Add(chars[i]); err != nil {
			return set, err
		}
	}

	if negate {
		set.Flip()
	}
	return set, nil
}

// repetitionPrefixLength returns the length of the pattern prefix forming a
// repetition suffix, zero if there is none.
func repetitionPrefixLength(pattern string) (int, error) {
	if len(pattern) == 0 {
		return 0, nil
	}
	switch pattern[0] {
	case '?', '+', '*':
		return 1, nil
	case '{':
		idx := strings.IndexByte(pattern, '}')
		if idx < 0 {
			return 0, fmt.Errorf("%w: no '}' found to end repetition block",
				common.ErrInvalidArgument)
		}
		return idx + 1, nil
	}
	return 0, nil
}

// parseRepetitionBody parses "", "?", "+", "*" or "{…}" into a repetition
// interval.
func parseRepetitionBody(repetition string) (min, max int64, err error) {
	if repetition == "" {
		return 1, 1, nil
	}
	if len(repetition) == 1 {
		switch repetition[0] {
		case '?':
			return 0, 1, nil
		case '+':
			return 1, math.MaxInt64, nil
		case '*':
			return 0, math.MaxInt64, nil
		}
		return 0, 0, fmt.Errorf("%w: invalid repetition block %q",
			common.ErrInvalidArgument, repetition)
	}

	if repetition[0] != '{' || repetition[len(repetition)-1] != '}' {
		return 0, 0, fmt.Errorf("%w: invalid repetition block %q",
			common.ErrInvalidArgument, repetition)
	}
	body := repetition[1 : len(repetition)-1]

	minStr, maxStr := body, body
	if comma := strings.IndexByte(body, ','); comma >= 0 {
		minStr, maxStr = body[:comma], body[comma+1:]
	}

	min, max = 0, math.MaxInt64
	if minStr != "" {
		if min, err = strconv.ParseInt(minStr, 10, 64); err != nil {
			return 0, 0, fmt.Errorf("%w: invalid minimum in repetition %q",
				common.ErrInvalidArgument, repetition)
		}
	}
	if maxStr != "" {
		if max, err = strconv.ParseInt(maxStr, 10, 64); err != nil {
			return 0, 0, fmt.Errorf("%w: invalid maximum in repetition %q",
				common.ErrInvalidArgument, repetition)
		}
	}
	return min, max, nil
}

// parseRepeatedCharSetPrefix parses one character set plus its optional
// repetition suffix from the front of pattern.
func parseRepeatedCharSetPrefix(pattern string) (node, error) {
	setLen, err := charSetPrefixLength(pattern)
	if err != nil {
		return node{}, err
	}
	chars := pattern[:setLen]
	if len(chars) >= 2 && chars[0] == '[' && chars[len(chars)-1] == ']' {
		chars = chars[1 : len(chars)-1]
	}
	set, err := parseCharSetBody(chars)
	if err != nil {
		return node{}, err
	}

	repLen, err := repetitionPrefixLength(pattern[setLen:])
	if err != nil {
		return node{}, err
	}
	min, max, err := parseRepetitionBody(pattern[setLen : setLen+repLen])
	if err != nil {
		return node{}, err
	}
	if err := set.SetRange(min, max); err != nil {
		return node{}, err
	}

	return node{chars: set, pattern: pattern[:setLen+repLen]}, nil
}

// parseAllOfPrefix parses the concatenation elements of one alternative,
// stopping at '|', ')' or end of input. E.g. "a*(b|c)d" yields a node with
// three subpatterns: "a*", "(b|c)" and "d".
func parseAllOfPrefix(pattern string) (node, error) {
	allOf := node{}

	idx := 0
	for idx < len(pattern) && pattern[idx] != '|' && pattern[idx] != ')' {
		if pattern[idx] != '(' {
			sub, err := parseRepeatedCharSetPrefix(pattern[idx:])
			if err != nil {
				return node{}, err
			}
			allOf.subs = append(allOf.subs, sub)
			idx += len(sub.pattern)
			continue
		}

		inner, err := parseScopePrefix(pattern[idx+1:])
		if err != nil {
			return node{}, err
		}
		innerLen := len(inner.pattern)
		if idx+1+innerLen >= len(pattern) || pattern[idx+1+innerLen] != ')' {
			return node{}, fmt.Errorf("%w: invalid end of scope, expected ')'",
				common.ErrInvalidArgument)
		}
		inner.pattern = pattern[idx : idx+innerLen+2]
		allOf.subs = append(allOf.subs, inner)
		idx += innerLen + 2
	}

	allOf.pattern = pattern[:idx]
	return allOf, nil
}

// parseScopePrefix parses a full scope: alternatives separated by '|',
// terminated by an unmatched ')' or the end of input. Single-alternative
// scopes collapse to the alternative itself.
func parseScopePrefix(pattern string) (node, error) {
	if len(pattern) == 0 || pattern[0] == ')' {
		return node{}, fmt.Errorf("%w: empty scope", common.ErrInvalidArgument)
	}

	anyOf := node{anyOf: true}

	idx := 0
	for idx < len(pattern) && pattern[idx] != ')' {
		if pattern[idx] == '|' {
			if idx == 0 || idx+1 >= len(pattern) || pattern[idx+1] == '|' {
				return node{}, fmt.Errorf("%w: empty or-block not allowed",
					common.ErrInvalidArgument)
			}
			idx++
		}
		alternative, err := parseAllOfPrefix(pattern[idx:])
		if err != nil {
			return node{}, err
		}
		idx += len(alternative.pattern)
		anyOf.subs = append(anyOf.subs, alternative)
	}

	if len(anyOf.subs) == 1 {
		return anyOf.subs[0], nil
	}
	anyOf.pattern = pattern[:idx]
	return anyOf, nil
}

// Parse parses pattern into a Pattern.
func Parse(pattern string) (*Pattern, error) {
	sanitized, err := sanitize(pattern)
	if err != nil {
		return nil, err
	}
	if sanitized == "" {
		return nil, fmt.Errorf("%w: empty pattern", common.ErrInvalidArgument)
	}

	root, err := parseScopePrefix(sanitized)
	if err != nil {
		return nil, err
	}
	if root.pattern != sanitized {
		return nil, fmt.Errorf("%w: invalid pattern, extra characters found",
			common.ErrInvalidArgument)
	}
	return &Pattern{pattern: sanitized, root: root}, nil
}

// String returns the sanitized pattern text.
func (p *Pattern) String() string {
	return p.pattern
}

// matchesPrefixLength returns how many characters of str the node consumes,
// matching greedily.
func matchesPrefixLength(n *node, str string) (int64, error) {
	length, err := n.chars.LongestValidPrefix(str)
	if err != nil {
		return 0, err
	}
	str = str[length:]

	for i := range n.subs {
		subLength, err := matchesPrefixLength(&n.subs[i], str)
		if err != nil {
			if !n.anyOf {
				return 0, fmt.Errorf("%w: subpattern mismatch", common.ErrInvalidArgument)
			}
			continue // anyOf: this alternative is allowed to fail
		}

		length += subLength
		if n.anyOf {
			return length, nil
		}
		str = str[subLength:]
	}

	if n.anyOf {
		return 0, fmt.Errorf("%w: no alternative matched", common.ErrInvalidArgument)
	}
	return length, nil
}

// Matches reports whether str matches the pattern. Matching is greedy
// without backtracking; alternatives are tried left to right and the first
// success wins.
func (p *Pattern) Matches(str string) bool {
	length, err := matchesPrefixLength(&p.root, str)
	return err == nil && length == int64(len(str))
}

// Generate produces a string matching the pattern, drawing all randomness
// from engine. Patterns with unbounded repetitions cannot be generated.
func (p *Pattern) Generate(engine *random.Engine) (string, error) {
	return p.GenerateRestricted(engine, nil)
}

// GenerateRestricted is Generate with the output restricted to characters of
// alphabet (nil means unrestricted). Generation fails when a node with a
// positive minimum repetition has no characters left after restriction.
//
// No particular distribution is guaranteed beyond each repetition count
// being drawn uniformly from its interval.
func (p *Pattern) GenerateRestricted(engine *random.Engine, alphabet []byte) (string, error) {
	return generateNode(&p.root, alphabet, engine)
}

func generateCharSet(set *CharSet, alphabet []byte, engine *random.Engine) (string, error) {
	if set.Unbounded() {
		return "", fmt.Errorf("%w: cannot generate with '*' or '+' or unbounded lengths",
			common.ErrInvalidArgument)
	}
	length, err := engine.Int(set.MinLength(), set.MaxLength())
	if err != nil {
		return "", err
	}

	var allowed CharSet
	if alphabet != nil {
		for _, c := range alphabet {
			if err := allowed.Add(c); err != nil {
				return "", err
			}
		}
	} else {
		allowed.Flip() // all characters
	}
	var valid []byte
	for _, c := range set.ValidCharacters() {
		if allowed.IsValidCharacter(c) {
			valid = append(valid, c)
		}
	}

	if len(valid) == 0 {
		// Only the empty string is producible here.
		if set.MinLength() <= 0 {
			return "", nil
		}
		return "", fmt.Errorf("%w: no valid characters for generation, but the empty string is not allowed",
			common.ErrInvalidArgument)
	}

	chars, err := random.ElementsWithReplacement(engine, valid, int(length))
	if err != nil {
		return "", err
	}
	return string(chars), nil
}

func generateNode(n *node, alphabet []byte, engine *random.Engine) (string, error) {
	result, err := generateCharSet(&n.chars, alphabet, engine)
	if err != nil {
		return "", err
	}
	if len(n.subs) == 0 {
		return result, nil
	}

	if n.anyOf {
		idx, err := engine.Below(int64(len(n.subs)))
		if err != nil {
			return "", err
		}
		sub, err := generateNode(&n.subs[idx], alphabet, engine)
		if err != nil {
			return "", err
		}
		return result + sub, nil
	}

	var sb strings.Builder
	sb.WriteString(result)
	for i := range n.subs {
		sub, err := generateNode(&n.subs[i], alphabet, engine)
		if err != nil {
			return "", err
		}
		sb.WriteString(sub)
	}
	return sb.String(), nil
}
