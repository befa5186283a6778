// Copyright (c) 2026 The Moriarty Project Authors
//
// Use of this software is governed by the MIT license included
// in the LICENSE file.

package engine

import (
	"bufio"
	"fmt"
	"io"

	"github.com/moriarty-project/moriarty/common"
)

// Whitespace enumerates the separator characters used between tokens.
type Whitespace int

const (
	Space Whitespace = iota
	Tab
	Newline
)

func (w Whitespace) byte() byte {
	switch w {
	case Tab:
		return '\t'
	case Newline:
		return '\n'
	}
	return ' '
}

func (w Whitespace) String() string {
	switch w {
	case Tab:
		return "tab"
	case Newline:
		return "newline"
	}
	return "space"
}

// WhitespacePolicy controls tokenization strictness on reads.
type WhitespacePolicy int

const (
	// Exact requires every whitespace character to be read explicitly;
	// ReadToken fails when the next character is whitespace.
	Exact WhitespacePolicy = iota
	// IgnoreWhitespace skips leading whitespace before tokens and turns
	// ReadWhitespace into a no-op.
	IgnoreWhitespace
)

// IO is the token-level input/output collaborator the engine consumes. The
// buffering and whitespace details live behind this interface.
type IO interface {
	// ReadToken reads the next token. Under the Exact policy it fails when
	// the next character is whitespace; under IgnoreWhitespace leading
	// whitespace is skipped.
	ReadToken() (string, error)

	// ReadWhitespace reads one whitespace character of the given kind. A
	// no-op under IgnoreWhitespace.
	ReadWhitespace(kind Whitespace) error

	// PrintToken writes a single token.
	PrintToken(token string) error

	// PrintWhitespace writes one whitespace character of the given kind.
	PrintWhitespace(kind Whitespace) error

	// Policy returns the whitespace policy in effect.
	Policy() WhitespacePolicy
}

// StreamIO implements IO over a reader/writer pair.
type StreamIO struct {
	policy WhitespacePolicy
	in     *bufio.Reader
	out    io.Writer
}

// NewStreamIO returns a StreamIO with the Exact policy. Either side may be
// nil when only one direction is used.
func NewStreamIO(in io.Reader, out io.Writer) *StreamIO {
	s := &StreamIO{out: out}
	if in != nil {
		s.in = bufio.NewReader(in)
	}
	return s
}

// SetWhitespacePolicy sets the tokenization policy and returns the receiver
// for chaining.
func (s *StreamIO) SetWhitespacePolicy(policy WhitespacePolicy) *StreamIO {
	s.policy = policy
	return s
}

// Policy returns the whitespace policy in effect.
func (s *StreamIO) Policy() WhitespacePolicy {
	return s.policy
}

func isWhitespaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// ReadToken reads the next run of non-whitespace characters.
func (s *StreamIO) ReadToken() (string, error) {
	if s.in == nil {
		return "", misconfigured("ReadToken", "input stream")
	}

	if s.policy == IgnoreWhitespace {
		for {
			b, err := s.in.ReadByte()
			if err != nil {
				return "", fmt.Errorf("%w: unexpected end of input",
					common.ErrInvalidArgument)
			}
			if !isWhitespaceByte(b) {
				if err := s.in.UnreadByte(); err != nil {
					return "", err
				}
				break
			}
		}
	}

	var token []byte
	for {
		b, err := s.in.ReadByte()
		if err != nil {
			break
		}
		if isWhitespaceByte(b) {
			if len(token) == 0 {
				return "", fmt.Errorf(
					"%w: expected a token, found whitespace %q",
					common.ErrInvalidArgument, b)
			}
			if err := s.in.UnreadByte(); err != nil {
				return "", err
			}
			break
		}
		token = append(token, b)
	}
	if len(token) == 0 {
		return "", fmt.Errorf("%w: unexpected end of input",
			common.ErrInvalidArgument)
	}
	return string(token), nil
}

// ReadWhitespace reads exactly one whitespace character of the given kind.
func (s *StreamIO) ReadWhitespace(kind Whitespace) error {
	if s.policy == IgnoreWhitespace {
		return nil
	}
	if s.in == nil {
		return misconfigured("ReadWhitespace", "input stream")
	}
	b, err := s.in.ReadByte()
	if err != nil {
		return fmt.Errorf("%w: unexpected end of input, expected %s",
			common.ErrInvalidArgument, kind)
	}
	if b != kind.byte() {
		return fmt.Errorf("%w: expected %s, found %q",
			common.ErrInvalidArgument, kind, b)
	}
	return nil
}

// PrintToken writes token to the output stream.
func (s *StreamIO) PrintToken(token string) error {
	if s.out == nil {
		return misconfigured("PrintToken", "output stream")
	}
	_, err := io.WriteString(s.out, token)
	return err
}

// PrintWhitespace writes one whitespace character to the output stream.
func (s *StreamIO) PrintWhitespace(kind Whitespace) error {
	if s.out == nil {
		return misconfigured("PrintWhitespace", "output stream")
	}
	_, err := s.out.Write([]byte{kind.byte()})
	return err
}
