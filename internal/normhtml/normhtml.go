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

// Package normhtml normalizes HTML
// so that rendered Markdown can be compared
// while ignoring insignificant output differences,
// based on the [CommonMark spec test normalization].
//
// [CommonMark spec test normalization]: https://github.com/commonmark/commonmark-spec/blob/0.31.2/test/normalize.py
package normhtml

import (
	"bytes"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// Equal reports whether two HTML fragments are the same after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Normalize strips insignificant output differences from an HTML fragment.
// Whitespace runs outside of pre elements collapse to a single space,
// whitespace around block-level tags is removed,
// attributes are sorted by name,
// and character references are replaced by the characters they encode.
func Normalize(s string) string {
	n := &normalizer{
		tok:  html.NewTokenizerFragment(strings.NewReader(s), "div"),
		last: html.StartTagToken,
	}
	for n.next() {
	}
	return string(n.output)
}

type normalizer struct {
	tok     *html.Tokenizer
	output  []byte
	last    html.TokenType
	lastTag string
	inPre   bool
}

func (n *normalizer) next() bool {
	tt := n.tok.Next()
	switch tt {
	case html.ErrorToken:
		return false
	case html.TextToken:
		n.text(n.tok.Text())
	case html.EndTagToken:
		tagBytes, _ := n.tok.TagName()
		tag := string(tagBytes)
		if tag == "pre" {
			n.inPre = false
		} else if isBlockTag(tag) {
			n.output = bytes.TrimRightFunc(n.output, unicode.IsSpace)
		}
		n.output = append(n.output, "</"...)
		n.output = append(n.output, tag...)
		n.output = append(n.output, ">"...)
		n.lastTag = tag
	case html.StartTagToken, html.SelfClosingTagToken:
		n.startTag()
	case html.CommentToken:
		n.output = append(n.output, n.tok.Raw()...)
	}

	n.last = tt
	if tt == html.SelfClosingTagToken {
		n.last = html.EndTagToken
	}
	return true
}

func (n *normalizer) text(data []byte) {
	afterTag := n.last == html.EndTagToken || n.last == html.StartTagToken
	afterBlockTag := afterTag && isBlockTag(n.lastTag)
	if afterTag && n.lastTag == "br" {
		data = bytes.TrimLeft(data, "\n")
	}
	if !n.inPre {
		data = whitespaceRE.ReplaceAll(data, []byte(" "))
	}
	if afterBlockTag && !n.inPre {
		if n.last == html.StartTagToken {
			data = bytes.TrimLeftFunc(data, unicode.IsSpace)
		} else if n.last == html.EndTagToken {
			data = bytes.TrimSpace(data)
		}
	}
	n.output = append(n.output, htmlEscaper.Replace(bytes.Clone(data))...)
}

func (n *normalizer) startTag() {
	type attribute struct {
		key   string
		value string
	}

	tagBytes, hasAttr := n.tok.TagName()
	tag := string(tagBytes)
	if tag == "pre" {
		n.inPre = true
	}
	if isBlockTag(tag) {
		n.output = bytes.TrimRightFunc(n.output, unicode.IsSpace)
	}
	n.output = append(n.output, "<"...)
	n.output = append(n.output, tag...)
	var attrs []attribute
	for more := hasAttr; more; {
		var k, v []byte
		k, v, more = n.tok.TagAttr()
		attrs = append(attrs, attribute{string(k), string(v)})
	}
	slices.SortFunc(attrs, func(a, b attribute) int {
		return strings.Compare(a.key, b.key)
	})
	for _, attr := range attrs {
		n.output = append(n.output, " "...)
		n.output = append(n.output, attr.key...)
		if attr.value != "" {
			n.output = append(n.output, `="`...)
			n.output = append(n.output, html.EscapeString(attr.value)...)
			n.output = append(n.output, `"`...)
		}
	}
	n.output = append(n.output, ">"...)
	n.lastTag = tag
}

var blockTags = map[atom.Atom]struct{}{
	atom.Article:    {},
	atom.Header:     {},
	atom.Aside:      {},
	atom.Hgroup:     {},
	atom.Blockquote: {},
	atom.Hr:         {},
	atom.Iframe:     {},
	atom.Body:       {},
	atom.Li:         {},
	atom.Map:        {},
	atom.Button:     {},
	atom.Object:     {},
	atom.Canvas:     {},
	atom.Ol:         {},
	atom.Caption:    {},
	atom.Output:     {},
	atom.Col:        {},
	atom.P:          {},
	atom.Colgroup:   {},
	atom.Pre:        {},
	atom.Dd:         {},
	atom.Progress:   {},
	atom.Div:        {},
	atom.Section:    {},
	atom.Dl:         {},
	atom.Table:      {},
	atom.Td:         {},
	atom.Dt:         {},
	atom.Tbody:      {},
	atom.Embed:      {},
	atom.Textarea:   {},
	atom.Fieldset:   {},
	atom.Tfoot:      {},
	atom.Figcaption: {},
	atom.Th:         {},
	atom.Figure:     {},
	atom.Thead:      {},
	atom.Footer:     {},
	atom.Tr:         {},
	atom.Form:       {},
	atom.Ul:         {},
	atom.H1:         {},
	atom.H2:         {},
	atom.H3:         {},
	atom.H4:         {},
	atom.H5:         {},
	atom.H6:         {},
	atom.Video:      {},
	atom.Script:     {},
	atom.Style:      {},
}

func isBlockTag(tag string) bool {
	_, ok := blockTags[atom.Lookup([]byte(tag))]
	return ok
}
