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
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// maxLinkLabelLength is the maximum number of characters
// allowed between the brackets of a [link label].
//
// [link label]: https://spec.commonmark.org/0.31.2/#link-label
const maxLinkLabelLength = 999

// maxLinkDestinationParens is the maximum nesting depth
// of parentheses in an unbracketed link destination.
const maxLinkDestinationParens = 32

// parseLinkReferenceDefinition parses a [link reference definition]
// at the start of lines.
// It returns the number of lines the definition occupies,
// or zero if lines do not start with a definition.
//
// [link reference definition]: https://spec.commonmark.org/0.31.2/#link-reference-definitions
func parseLinkReferenceDefinition(lines []string) (_ LinkDefinition, n int) {
	s := NewScanner(lines)
	label, ok := parseLinkLabel(s)
	if !ok || NormalizeLabel(label) == "" || !s.NextIf(':') {
		return LinkDefinition{}, 0
	}
	s.Whitespace()
	dest, ok := parseLinkDestination(s)
	if !ok {
		return LinkDefinition{}, 0
	}
	def := LinkDefinition{
		Label:       label,
		Destination: dest,
	}
	afterDest := s.Position()
	if s.Whitespace() > 0 {
		if title, ok := parseLinkTitle(s); ok && skipToLineEnd(s) {
			def.Title = title
			def.TitlePresent = true
			return def, s.Position().Line() + 1
		}
	}
	s.SetPosition(afterDest)
	if !skipToLineEnd(s) {
		return LinkDefinition{}, 0
	}
	return def, afterDest.Line() + 1
}

// skipToLineEnd consumes spaces and tabs
// and reports whether the scanner reached the end of a line.
func skipToLineEnd(s *Scanner) bool {
	for {
		switch s.Peek() {
		case ' ', '\t':
			s.Next()
		case '\n', EndOfInput:
			return true
		default:
			return false
		}
	}
}

// parseLinkLabel parses a [link label] and returns its raw content.
//
// [link label]: https://spec.commonmark.org/0.31.2/#link-label
func parseLinkLabel(s *Scanner) (string, bool) {
	if !s.NextIf('[') {
		return "", false
	}
	start := s.Position()
	for n := 0; n <= maxLinkLabelLength; n++ {
		switch s.Peek() {
		case EndOfInput, '[':
			return "", false
		case ']':
			end := s.Position()
			s.Next()
			return s.Source(start, end), true
		case '\\':
			s.Next()
			if isEscapable(s.Peek()) {
				s.Next()
				n++
			}
		default:
			s.Next()
		}
	}
	return "", false
}

// parseLinkDestination parses a [link destination]
// and returns it with escapes and entities resolved.
// An unbracketed destination must have balanced parentheses.
//
// [link destination]: https://spec.commonmark.org/0.31.2/#link-destination
func parseLinkDestination(s *Scanner) (string, bool) {
	if s.NextIf('<') {
		start := s.Position()
		for {
			switch s.Peek() {
			case '>':
				end := s.Position()
				s.Next()
				return unescapeString(s.Source(start, end)), true
			case '<', '\n', EndOfInput:
				return "", false
			case '\\':
				s.Next()
				if isEscapable(s.Peek()) {
					s.Next()
				}
			default:
				s.Next()
			}
		}
	}

	start := s.Position()
	parens := 0
loop:
	for {
		switch c := s.Peek(); {
		case c == '\\':
			s.Next()
			if isEscapable(s.Peek()) {
				s.Next()
			}
		case c == '(':
			parens++
			if parens > maxLinkDestinationParens {
				return "", false
			}
			s.Next()
		case c == ')':
			if parens == 0 {
				break loop
			}
			parens--
			s.Next()
		case c == ' ' || c < 0x20 || c == 0x7f:
			break loop
		default:
			s.Next()
		}
	}
	end := s.Position()
	if parens != 0 {
		return "", false
	}
	if start == end && s.Peek() != ')' {
		return "", false
	}
	return unescapeString(s.Source(start, end)), true
}

// parseLinkTitle parses a [link title]
// and returns it with escapes and entities resolved.
//
// [link title]: https://spec.commonmark.org/0.31.2/#link-title
func parseLinkTitle(s *Scanner) (string, bool) {
	opener := s.Peek()
	var closer rune
	switch opener {
	case '"', '\'':
		closer = opener
	case '(':
		closer = ')'
	default:
		return "", false
	}
	s.Next()
	start := s.Position()
	for {
		switch c := s.Peek(); {
		case c == closer:
			end := s.Position()
			s.Next()
			return unescapeString(s.Source(start, end)), true
		case c == EndOfInput:
			return "", false
		case c == '(' && opener == '(':
			return "", false
		case c == '\\':
			s.Next()
			if isEscapable(s.Peek()) {
				s.Next()
			}
		default:
			s.Next()
		}
	}
}

// parseInlineDestinationTitle parses the parenthesized part of an [inline link]
// after the opening parenthesis.
//
// [inline link]: https://spec.commonmark.org/0.31.2/#inline-link
func parseInlineDestinationTitle(s *Scanner) (dest, title string, titlePresent, ok bool) {
	s.Whitespace()
	dest, ok = parseLinkDestination(s)
	if !ok {
		return "", "", false, false
	}
	if s.Whitespace() > 0 {
		beforeTitle := s.Position()
		if t, ok := parseLinkTitle(s); ok {
			title = t
			titlePresent = true
			s.Whitespace()
		} else {
			s.SetPosition(beforeTitle)
		}
	}
	if !s.NextIf(')') {
		return "", "", false, false
	}
	return dest, title, titlePresent, true
}

// isEscapable reports whether c is an ASCII punctuation character,
// which may be [backslash escaped].
//
// [backslash escaped]: https://spec.commonmark.org/0.31.2/#backslash-escapes
func isEscapable(c rune) bool {
	return 0 <= c && c < utf8.RuneSelf &&
		strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", byte(c)) >= 0
}

// unescapeString resolves backslash escapes and entity references in s.
func unescapeString(s string) string {
	if strings.IndexByte(s, '\\') < 0 && strings.IndexByte(s, '&') < 0 {
		return s
	}
	sb := new(strings.Builder)
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		switch s[i] {
		case '\\':
			if i+1 < len(s) && isEscapable(rune(s[i+1])) {
				sb.WriteByte(s[i+1])
				i += 2
				continue
			}
		case '&':
			if n, text := matchEntity(s[i:]); n > 0 {
				sb.WriteString(text)
				i += n
				continue
			}
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

var entityRE = regexp.MustCompile(`^&(?:#[xX][0-9a-fA-F]{1,6}|#[0-9]{1,7}|[A-Za-z][A-Za-z0-9]{1,31});`)

// matchEntity matches an [entity or numeric character reference]
// at the start of s.
// It returns the length of the reference and its decoded text,
// or zero if s does not start with a valid reference.
//
// [entity or numeric character reference]: https://spec.commonmark.org/0.31.2/#entity-and-numeric-character-references
func matchEntity(s string) (n int, text string) {
	ref := entityRE.FindString(s)
	if ref == "" {
		return 0, ""
	}
	if ref[1] == '#' {
		var x int64
		var err error
		if ref[2] == 'x' || ref[2] == 'X' {
			x, err = strconv.ParseInt(ref[3:len(ref)-1], 16, 32)
		} else {
			x, err = strconv.ParseInt(ref[2:len(ref)-1], 10, 32)
		}
		r := rune(x)
		if err != nil || r == 0 || !utf8.ValidRune(r) {
			r = utf8.RuneError
		}
		return len(ref), string(r)
	}
	text = html.UnescapeString(ref)
	// UnescapeString also accepts a known entity name
	// followed by other characters (like "&copycat;"),
	// which CommonMark does not.
	if text == ref || (strings.HasSuffix(text, ";") && text != ";") {
		return 0, ""
	}
	return len(ref), text
}
