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

	"golang.org/x/net/html/atom"
)

// parseRawHTML parses [raw HTML] at the scanner's position,
// which must be at a '<'.
// On success, parseRawHTML leaves the scanner after the construct
// and returns true.
// On failure, the scanner's position is unspecified.
//
// [raw HTML]: https://spec.commonmark.org/0.31.2/#raw-html
func parseRawHTML(s *Scanner) bool {
	const (
		cdataPrefix = "[CDATA["
		cdataSuffix = "]]>"
	)

	if !s.NextIf('<') {
		return false
	}
	switch s.Peek() {
	case '?':
		// Processing instruction.
		s.Next()
		return skipPast(s, "?>")
	case '!':
		s.Next()
		rest := s.restOfLine()
		switch {
		case strings.HasPrefix(rest, "--"):
			// Comment. "<!-->" and "<!--->" are complete comments.
			s.skipBytes(2)
			if s.NextIf('>') {
				return true
			}
			if strings.HasPrefix(s.restOfLine(), "->") {
				s.skipBytes(2)
				return true
			}
			return skipPast(s, "-->")
		case strings.HasPrefix(rest, cdataPrefix):
			s.skipBytes(len(cdataPrefix))
			return skipPast(s, cdataSuffix)
		case len(rest) > 0 && isASCIILetter(rest[0]):
			// Declaration.
			if s.Find('>') < 0 {
				return false
			}
			s.Next()
			return true
		default:
			return false
		}
	case '/':
		return parseHTMLClosingTag(s)
	default:
		return parseHTMLOpenTag(s)
	}
}

// skipPast advances the scanner past the next occurrence of end,
// which must not contain a line ending.
func skipPast(s *Scanner, end string) bool {
	for {
		if strings.HasPrefix(s.restOfLine(), end) {
			s.skipBytes(len(end))
			return true
		}
		if !s.HasNext() {
			return false
		}
		s.Next()
	}
}

// parseHTMLOpenTag parses an [open tag] sans the leading '<'.
//
// [open tag]: https://spec.commonmark.org/0.31.2/#open-tag
func parseHTMLOpenTag(s *Scanner) bool {
	if !parseHTMLTagName(s) {
		return false
	}
	for {
		spaces := s.Whitespace()
		switch s.Peek() {
		case '/':
			s.Next()
			return s.NextIf('>')
		case '>':
			s.Next()
			return true
		}
		if spaces == 0 || !parseHTMLAttribute(s) {
			return false
		}
	}
}

// parseHTMLClosingTag parses a [closing tag] sans the leading '<'.
//
// [closing tag]: https://spec.commonmark.org/0.31.2/#closing-tag
func parseHTMLClosingTag(s *Scanner) bool {
	if !s.NextIf('/') || !parseHTMLTagName(s) {
		return false
	}
	s.Whitespace()
	return s.NextIf('>')
}

func parseHTMLTagName(s *Scanner) bool {
	if c := s.Peek(); c >= 0x80 || c < 0 || !isASCIILetter(byte(c)) {
		return false
	}
	s.Next()
	for {
		c := s.Peek()
		if c < 0 || c >= 0x80 || !(isASCIILetter(byte(c)) || isASCIIDigit(byte(c)) || c == '-') {
			return true
		}
		s.Next()
	}
}

func parseHTMLAttribute(s *Scanner) bool {
	// Attribute name.
	if c := s.Peek(); !(c >= 0 && c < 0x80 && isASCIILetter(byte(c))) && c != '_' && c != ':' {
		return false
	}
	s.Next()
	for {
		c := s.Peek()
		if c < 0 || c >= 0x80 || !(isASCIILetter(byte(c)) || isASCIIDigit(byte(c)) || strings.IndexByte("_.:-", byte(c)) >= 0) {
			break
		}
		s.Next()
	}

	// Attribute value specification.
	// Don't consume space unless it is followed by an equal sign,
	// since it will cause future attributes to fail.
	afterName := s.Position()
	s.Whitespace()
	if !s.NextIf('=') {
		s.SetPosition(afterName)
		return true
	}
	s.Whitespace()
	switch c := s.Peek(); {
	case c == '\'' || c == '"':
		s.Next()
		if s.Find(c) < 0 {
			return false
		}
		s.Next()
		return true
	case isUnquotedAttributeValueChar(c):
		for isUnquotedAttributeValueChar(s.Peek()) {
			s.Next()
		}
		return true
	default:
		return false
	}
}

func isUnquotedAttributeValueChar(c rune) bool {
	switch c {
	case EndOfInput, ' ', '\t', '\n', '\v', '\f', '\r', '"', '\'', '=', '<', '>', '`':
		return false
	default:
		return true
	}
}

// htmlBlockConditions is the set of [HTML block] start and end conditions.
// Each line passed to the conditions starts at the block's first non-space character.
//
// [HTML block]: https://spec.commonmark.org/0.31.2/#html-blocks
var htmlBlockConditions = []struct {
	startCondition func(line string) bool
	// endCondition is nil if the block ends at a blank line.
	endCondition          func(line string) bool
	canInterruptParagraph bool
}{
	{
		startCondition: func(line string) bool {
			for _, starter := range htmlBlockStarters1 {
				if hasCaseInsensitivePrefix(line, starter) {
					rest := line[len(starter):]
					if rest == "" || isSpaceOrTab(rest[0]) || rest[0] == '>' {
						return true
					}
				}
			}
			return false
		},
		endCondition: func(line string) bool {
			lower := strings.ToLower(line)
			for _, ender := range htmlBlockEnders1 {
				if strings.Contains(lower, ender) {
					return true
				}
			}
			return false
		},
		canInterruptParagraph: true,
	},
	{
		startCondition: func(line string) bool {
			return strings.HasPrefix(line, "<!--")
		},
		endCondition: func(line string) bool {
			return strings.Contains(line, "-->")
		},
		canInterruptParagraph: true,
	},
	{
		startCondition: func(line string) bool {
			return strings.HasPrefix(line, "<?")
		},
		endCondition: func(line string) bool {
			return strings.Contains(line, "?>")
		},
		canInterruptParagraph: true,
	},
	{
		startCondition: func(line string) bool {
			return len(line) >= 3 && strings.HasPrefix(line, "<!") && isASCIILetter(line[2])
		},
		endCondition: func(line string) bool {
			return strings.Contains(line, ">")
		},
		canInterruptParagraph: true,
	},
	{
		startCondition: func(line string) bool {
			return strings.HasPrefix(line, "<![CDATA[")
		},
		endCondition: func(line string) bool {
			return strings.Contains(line, "]]>")
		},
		canInterruptParagraph: true,
	},
	{
		startCondition: func(line string) bool {
			switch {
			case strings.HasPrefix(line, "</"):
				line = line[2:]
			case strings.HasPrefix(line, "<"):
				line = line[1:]
			default:
				return false
			}
			n := 0
			for n < len(line) && (isASCIILetter(line[n]) || isASCIIDigit(line[n])) {
				n++
			}
			if n == 0 || !htmlBlockStarters6[strings.ToLower(line[:n])] {
				return false
			}
			rest := line[n:]
			return rest == "" || isSpaceOrTab(rest[0]) || rest[0] == '>' || strings.HasPrefix(rest, "/>")
		},
		canInterruptParagraph: true,
	},
	{
		startCondition: func(line string) bool {
			s := NewScanner([]string{line})
			isClosing := strings.HasPrefix(line, "</")
			var ok bool
			if isClosing {
				s.Next()
				ok = parseHTMLClosingTag(s)
			} else {
				ok = parseRawHTMLTag(s)
			}
			if !ok || !isBlankLine(s.restOfLine()) {
				return false
			}
			// Tags that start a type 1 block are excluded.
			name := line[1:]
			if isClosing {
				name = line[2:]
			}
			for _, starter := range htmlBlockStarters1 {
				tag := starter[1:]
				if hasCaseInsensitivePrefix(name, tag) &&
					(len(name) == len(tag) || !(isASCIILetter(name[len(tag)]) || isASCIIDigit(name[len(tag)]) || name[len(tag)] == '-')) {
					return false
				}
			}
			return true
		},
		canInterruptParagraph: false,
	},
}

// parseRawHTMLTag parses an open tag including its leading '<'.
func parseRawHTMLTag(s *Scanner) bool {
	return s.NextIf('<') && parseHTMLOpenTag(s)
}

func hasCaseInsensitivePrefix(s string, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

var (
	htmlBlockStarters1 = []string{
		"<pre",
		"<script",
		"<style",
		"<textarea",
	}
	htmlBlockEnders1 = []string{
		"</pre>",
		"</script>",
		"</style>",
		"</textarea>",
	}

	htmlBlockStarters6 = map[string]bool{
		atom.Address.String():    true,
		atom.Article.String():    true,
		atom.Aside.String():      true,
		atom.Base.String():       true,
		atom.Basefont.String():   true,
		atom.Blockquote.String(): true,
		atom.Body.String():       true,
		atom.Caption.String():    true,
		atom.Center.String():     true,
		atom.Col.String():        true,
		atom.Colgroup.String():   true,
		atom.Dd.String():         true,
		atom.Details.String():    true,
		atom.Dialog.String():     true,
		atom.Dir.String():        true,
		atom.Div.String():        true,
		atom.Dl.String():         true,
		atom.Dt.String():         true,
		atom.Fieldset.String():   true,
		atom.Figcaption.String(): true,
		atom.Figure.String():     true,
		atom.Footer.String():     true,
		atom.Form.String():       true,
		atom.Frame.String():      true,
		atom.Frameset.String():   true,
		atom.H1.String():         true,
		atom.H2.String():         true,
		atom.H3.String():         true,
		atom.H4.String():         true,
		atom.H5.String():         true,
		atom.H6.String():         true,
		atom.Head.String():       true,
		atom.Header.String():     true,
		atom.Hr.String():         true,
		atom.Html.String():       true,
		atom.Iframe.String():     true,
		atom.Legend.String():     true,
		atom.Li.String():         true,
		atom.Link.String():       true,
		atom.Main.String():       true,
		atom.Menu.String():       true,
		atom.Menuitem.String():   true,
		atom.Nav.String():        true,
		atom.Noframes.String():   true,
		atom.Ol.String():         true,
		atom.Optgroup.String():   true,
		atom.Option.String():     true,
		atom.P.String():          true,
		atom.Param.String():      true,
		"search":                 true,
		atom.Section.String():    true,
		atom.Summary.String():    true,
		atom.Table.String():      true,
		atom.Tbody.String():      true,
		atom.Td.String():         true,
		atom.Tfoot.String():      true,
		atom.Th.String():         true,
		atom.Thead.String():      true,
		atom.Title.String():      true,
		atom.Tr.String():         true,
		atom.Track.String():      true,
		atom.Ul.String():         true,
	}
)
