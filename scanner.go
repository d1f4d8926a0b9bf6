// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mdparse

import (
	"strings"
	"unicode/utf8"
)

// EndOfInput is returned by [*Scanner.Peek] and [*Scanner.PeekPrevious]
// when there are no more characters in that direction.
const EndOfInput rune = -1

// Position is a location inside the lines of a [Scanner].
// Positions are values: advancing a scanner never changes
// a Position obtained from it earlier.
type Position struct {
	line  int
	index int
}

// Line returns the zero-based index of the line the position is on.
func (pos Position) Line() int {
	return pos.line
}

// Index returns the byte offset of the position within its line.
func (pos Position) Index() int {
	return pos.index
}

// A Scanner is a cursor over a sequence of lines.
// Line boundaries are reported as '\n' characters,
// even though the lines themselves do not contain line terminators.
type Scanner struct {
	lines     []string
	lineIndex int
	index     int
	line      string
}

// NewScanner returns a new scanner positioned at the start of lines.
func NewScanner(lines []string) *Scanner {
	s := &Scanner{lines: lines}
	if len(lines) > 0 {
		s.line = lines[0]
	}
	return s
}

// Peek returns the character at the scanner's position without advancing.
// At the end of a line that is followed by another line, Peek returns '\n'.
// At the end of the input, Peek returns [EndOfInput].
func (s *Scanner) Peek() rune {
	if s.index < len(s.line) {
		if c := s.line[s.index]; c < utf8.RuneSelf {
			return rune(c)
		}
		r, _ := utf8.DecodeRuneInString(s.line[s.index:])
		return r
	}
	if s.lineIndex < len(s.lines)-1 {
		return '\n'
	}
	return EndOfInput
}

// PeekPrevious returns the character immediately before the scanner's position.
func (s *Scanner) PeekPrevious() rune {
	if s.index > 0 {
		if c := s.line[s.index-1]; c < utf8.RuneSelf {
			return rune(c)
		}
		r, _ := utf8.DecodeLastRuneInString(s.line[:s.index])
		return r
	}
	if s.lineIndex > 0 {
		return '\n'
	}
	return EndOfInput
}

// HasNext reports whether there is at least one more character to consume.
func (s *Scanner) HasNext() bool {
	return s.index < len(s.line) || s.lineIndex < len(s.lines)-1
}

// Next advances the scanner by one character.
// Calling Next at the end of the input does nothing.
func (s *Scanner) Next() {
	switch {
	case s.index < len(s.line):
		if s.line[s.index] < utf8.RuneSelf {
			s.index++
		} else {
			_, n := utf8.DecodeRuneInString(s.line[s.index:])
			s.index += n
		}
	case s.lineIndex < len(s.lines)-1:
		s.lineIndex++
		s.line = s.lines[s.lineIndex]
		s.index = 0
	}
}

// NextIf advances the scanner by one character if the next character is c.
// It reports whether the scanner advanced.
func (s *Scanner) NextIf(c rune) bool {
	if s.Peek() != c {
		return false
	}
	s.Next()
	return true
}

// MatchMultiple consumes a run of c characters
// and returns the number of characters consumed.
func (s *Scanner) MatchMultiple(c rune) int {
	n := 0
	for s.Peek() == c {
		s.Next()
		n++
	}
	return n
}

// Whitespace consumes spaces, tabs, and line endings
// and returns the number of characters consumed.
func (s *Scanner) Whitespace() int {
	n := 0
	for {
		switch s.Peek() {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			s.Next()
			n++
		default:
			return n
		}
	}
}

// Find advances the scanner until the next character is c
// and returns the number of characters skipped.
// If c does not occur in the rest of the input,
// Find leaves the scanner at the end of the input and returns -1.
func (s *Scanner) Find(c rune) int {
	n := 0
	for {
		switch s.Peek() {
		case EndOfInput:
			return -1
		case c:
			return n
		}
		s.Next()
		n++
	}
}

// Position returns the scanner's current position.
func (s *Scanner) Position() Position {
	return Position{line: s.lineIndex, index: s.index}
}

// SetPosition moves the scanner to a position
// previously returned by [*Scanner.Position].
func (s *Scanner) SetPosition(pos Position) {
	s.lineIndex = pos.line
	s.index = pos.index
	if pos.line < len(s.lines) {
		s.line = s.lines[pos.line]
	} else {
		s.line = ""
	}
}

// Source returns the text between two positions.
// Line boundaries inside the range are returned as '\n'.
func (s *Scanner) Source(begin, end Position) string {
	if begin.line == end.line {
		if begin.line >= len(s.lines) {
			return ""
		}
		return s.lines[begin.line][begin.index:end.index]
	}
	sb := new(strings.Builder)
	sb.WriteString(s.lines[begin.line][begin.index:])
	for i := begin.line + 1; i < end.line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(s.lines[i])
	}
	sb.WriteByte('\n')
	sb.WriteString(s.lines[end.line][:end.index])
	return sb.String()
}

// restOfLine returns the unconsumed part of the current line.
func (s *Scanner) restOfLine() string {
	return s.line[s.index:]
}

// skipBytes advances the scanner by n bytes on the current line.
func (s *Scanner) skipBytes(n int) {
	if s.index+n > len(s.line) {
		panic("skip past end of line")
	}
	s.index += n
}
