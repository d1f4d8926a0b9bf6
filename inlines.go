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
	"strings"
	"unicode"
	"unicode/utf8"
)

// An InlineParser converts the pending text of paragraphs and headings
// into inline trees.
type InlineParser struct {
	// Delimiters is the set of delimiter processors to use.
	// If nil, CommonMark emphasis is used.
	Delimiters *DelimiterTable
}

// Rewrite parses the pending text of every block in doc.
// Blocks that have already been parsed are left untouched,
// so calling Rewrite more than once has no further effect.
func (p *InlineParser) Rewrite(doc *Document) {
	delims := p.Delimiters
	if delims == nil {
		delims = defaultDelimiterTable
	}
	stack := []*Block{&doc.Block}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if curr.source != nil {
			curr.inlineChildren = parseInlines(curr.source, delims, doc.ReferenceMap)
			curr.source = nil
		}
		for i := len(curr.children) - 1; i >= 0; i-- {
			stack = append(stack, curr.children[i])
		}
	}
}

// delimiter is an entry in the delimiter stack.
// prev and next are indices into [inlineState.delimiters] or -1.
type delimiter struct {
	// nodes holds one single-character text node
	// for each character of the run not yet consumed.
	nodes          []*Inline
	char           byte
	originalLength int
	canOpen        bool
	canClose       bool
	prev, next     int
}

func (d *delimiter) run() DelimiterRun {
	return DelimiterRun{
		Char:           d.char,
		Length:         len(d.nodes),
		OriginalLength: d.originalLength,
		CanOpen:        d.canOpen,
		CanClose:       d.canClose,
	}
}

// bracket is an entry in the bracket stack:
// a "[" or "![" that may start a link or image.
type bracket struct {
	// node is the text node holding the bracket marker.
	node *Inline
	// contentPos is the position just after the marker.
	contentPos Position
	image      bool
	prev       int
	// prevDelimiter is the top of the delimiter stack
	// when the bracket was scanned.
	prevDelimiter int
	// allowed is false once a link has been formed inside the bracket.
	// Links may not contain other links.
	allowed bool
	// bracketAfter is set if another bracket was scanned after this one.
	// Such a bracket cannot form a shortcut reference.
	bracketAfter bool
}

type inlineState struct {
	s      *Scanner
	delims *DelimiterTable
	refs   ReferenceMap

	// Parsed nodes form a doubly-linked list during parsing.
	head, tail *Inline

	delimiters    []delimiter
	lastDelimiter int
	brackets      []bracket
	lastBracket   int

	// trailingSpaces is the number of spaces
	// stripped before a line ending.
	trailingSpaces int
}

func parseInlines(lines []string, delims *DelimiterTable, refs ReferenceMap) []*Inline {
	state := &inlineState{
		s:             NewScanner(lines),
		delims:        delims,
		refs:          refs,
		lastDelimiter: -1,
		lastBracket:   -1,
	}
	for state.parseInline() {
	}
	state.processDelimiters(-1)
	nodes := state.unlinkAfter(nil)
	return mergeText(nodes)
}

// parseInline parses the next inline element.
// It returns false at the end of the input.
func (state *inlineState) parseInline() bool {
	c := state.s.Peek()
	switch c {
	case EndOfInput:
		return false
	case '\n':
		state.parseLineBreak()
		return true
	}
	state.trailingSpaces = 0
	switch c {
	case '\\':
		state.parseBackslash()
	case '`':
		state.parseBackticks()
	case '[':
		state.parseOpenBracket()
	case '!':
		state.parseBang()
	case ']':
		state.parseCloseBracket()
	case '<':
		state.parseAngleBracket()
	case '&':
		state.parseEntity()
	default:
		if c >= utf8.RuneSelf || !state.delims.has(byte(c)) || !state.parseDelimiters(byte(c)) {
			state.parseText()
		}
	}
	return true
}

func (state *inlineState) isSpecial(c rune) bool {
	switch c {
	case '\n', '\\', '`', '[', '!', ']', '<', '&':
		return true
	}
	return c < utf8.RuneSelf && state.delims.has(byte(c))
}

func (state *inlineState) parseText() {
	s := state.s
	start := s.Position()
	s.Next()
	c := s.Peek()
	for c != EndOfInput && !state.isSpecial(c) {
		s.Next()
		c = s.Peek()
	}
	text := s.Source(start, s.Position())
	switch c {
	case '\n':
		// Spaces at the end of a line are not part of the text.
		trimmed := strings.TrimRight(text, " ")
		state.trailingSpaces = len(text) - len(trimmed)
		text = trimmed
	case EndOfInput:
		text = strings.TrimRight(text, " \t")
	}
	if text != "" {
		state.appendText(text)
	}
}

func (state *inlineState) parseLineBreak() {
	state.s.Next()
	if state.trailingSpaces >= 2 {
		state.append(&Inline{kind: HardLineBreakKind})
	} else {
		state.append(&Inline{kind: SoftLineBreakKind})
	}
	state.trailingSpaces = 0
}

// parseBackslash parses a [backslash escape] or a [hard line break].
//
// [backslash escape]: https://spec.commonmark.org/0.31.2/#backslash-escapes
// [hard line break]: https://spec.commonmark.org/0.31.2/#hard-line-breaks
func (state *inlineState) parseBackslash() {
	s := state.s
	s.Next()
	switch c := s.Peek(); {
	case c == '\n':
		s.Next()
		state.append(&Inline{kind: HardLineBreakKind})
	case isEscapable(c):
		s.Next()
		state.appendText(string(c))
	default:
		state.appendText(`\`)
	}
}

// parseBackticks parses a [code span]
// or a literal backtick string if the span is never closed.
//
// [code span]: https://spec.commonmark.org/0.31.2/#code-spans
func (state *inlineState) parseBackticks() {
	s := state.s
	start := s.Position()
	n := s.MatchMultiple('`')
	afterOpening := s.Position()
	for s.Find('`') >= 0 {
		beforeClosing := s.Position()
		if s.MatchMultiple('`') != n {
			continue
		}
		content := strings.ReplaceAll(s.Source(afterOpening, beforeClosing), "\n", " ")
		if len(content) >= 3 &&
			content[0] == ' ' &&
			content[len(content)-1] == ' ' &&
			strings.Trim(content, " ") != "" {
			content = content[1 : len(content)-1]
		}
		state.append(&Inline{kind: CodeSpanKind, text: content})
		return
	}
	s.SetPosition(afterOpening)
	state.appendText(s.Source(start, afterOpening))
}

func (state *inlineState) parseEntity() {
	s := state.s
	if n, text := matchEntity(s.restOfLine()); n > 0 {
		s.skipBytes(n)
		state.appendText(text)
		return
	}
	s.Next()
	state.appendText("&")
}

var (
	autolinkURIRE   = regexp.MustCompile(`^<([A-Za-z][A-Za-z0-9.+-]{1,31}:[^<>\x00-\x20]*)>`)
	autolinkEmailRE = regexp.MustCompile(`^<([a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*)>`)
)

// parseAngleBracket parses an [autolink] or [raw HTML].
//
// [autolink]: https://spec.commonmark.org/0.31.2/#autolinks
// [raw HTML]: https://spec.commonmark.org/0.31.2/#raw-html
func (state *inlineState) parseAngleBracket() {
	s := state.s
	rest := s.restOfLine()
	if m := autolinkURIRE.FindStringSubmatch(rest); m != nil {
		s.skipBytes(len(m[0]))
		state.append(&Inline{kind: AutolinkKind, text: m[1], destination: m[1]})
		return
	}
	if m := autolinkEmailRE.FindStringSubmatch(rest); m != nil {
		s.skipBytes(len(m[0]))
		state.append(&Inline{kind: AutolinkKind, text: m[1], destination: "mailto:" + m[1]})
		return
	}

	start := s.Position()
	if parseRawHTML(s) {
		state.append(&Inline{kind: RawHTMLKind, text: s.Source(start, s.Position())})
		return
	}
	s.SetPosition(start)
	s.Next()
	state.appendText("<")
}

// parseDelimiters scans a run of c characters and pushes it onto the delimiter stack.
// It returns false if the run is too short for any processor.
func (state *inlineState) parseDelimiters(c byte) bool {
	s := state.s
	start := s.Position()
	before := s.PeekPrevious()
	n := s.MatchMultiple(rune(c))
	if n < state.delims.minLength(c) {
		s.SetPosition(start)
		return false
	}
	after := s.Peek()

	beforeIsPunct := isUnicodePunctuation(before)
	beforeIsSpace := isUnicodeWhitespace(before)
	afterIsPunct := isUnicodePunctuation(after)
	afterIsSpace := isUnicodeWhitespace(after)
	leftFlanking := !afterIsSpace && (!afterIsPunct || beforeIsSpace || beforeIsPunct)
	rightFlanking := !beforeIsSpace && (!beforeIsPunct || afterIsSpace || afterIsPunct)

	var canOpen, canClose bool
	if c == '_' {
		canOpen = leftFlanking && (!rightFlanking || beforeIsPunct)
		canClose = rightFlanking && (!leftFlanking || afterIsPunct)
	} else {
		open, close := state.delims.delimiters(c)
		canOpen = leftFlanking && c == open
		canClose = rightFlanking && c == close
	}

	d := delimiter{
		nodes:          make([]*Inline, n),
		char:           c,
		originalLength: n,
		canOpen:        canOpen,
		canClose:       canClose,
		prev:           state.lastDelimiter,
		next:           -1,
	}
	for i := range d.nodes {
		d.nodes[i] = state.appendText(string(rune(c)))
	}
	i := len(state.delimiters)
	state.delimiters = append(state.delimiters, d)
	if d.prev >= 0 {
		state.delimiters[d.prev].next = i
	}
	state.lastDelimiter = i
	return true
}

func (state *inlineState) parseOpenBracket() {
	s := state.s
	s.Next()
	node := state.appendText("[")
	state.pushBracket(node, false)
}

func (state *inlineState) parseBang() {
	s := state.s
	s.Next()
	if !s.NextIf('[') {
		state.appendText("!")
		return
	}
	node := state.appendText("![")
	state.pushBracket(node, true)
}

func (state *inlineState) pushBracket(node *Inline, image bool) {
	if state.lastBracket >= 0 {
		state.brackets[state.lastBracket].bracketAfter = true
	}
	state.brackets = append(state.brackets, bracket{
		node:          node,
		contentPos:    state.s.Position(),
		image:         image,
		prev:          state.lastBracket,
		prevDelimiter: state.lastDelimiter,
		allowed:       true,
	})
	state.lastBracket = len(state.brackets) - 1
}

func (state *inlineState) popBracket() {
	state.lastBracket = state.brackets[state.lastBracket].prev
}

// parseCloseBracket handles a "]",
// which may complete a link or image started by the innermost bracket.
func (state *inlineState) parseCloseBracket() {
	s := state.s
	beforeClose := s.Position()
	s.Next()
	afterClose := s.Position()
	if state.lastBracket < 0 {
		state.appendText("]")
		return
	}
	if !state.brackets[state.lastBracket].allowed {
		state.popBracket()
		state.appendText("]")
		return
	}
	if state.parseLinkOrImage(beforeClose, afterClose) {
		return
	}
	s.SetPosition(afterClose)
	state.popBracket()
	state.appendText("]")
}

func (state *inlineState) parseLinkOrImage(beforeClose, afterClose Position) bool {
	s := state.s
	b := state.brackets[state.lastBracket]
	link := &Inline{kind: LinkKind}
	if b.image {
		link.kind = ImageKind
	}

	found := false
	if s.NextIf('(') {
		link.destination, link.title, link.hasTitle, found = parseInlineDestinationTitle(s)
		if !found {
			s.SetPosition(afterClose)
		}
	}
	if !found {
		label, ok := parseLinkLabel(s)
		if !ok {
			s.SetPosition(afterClose)
		}
		if (!ok || label == "") && !b.bracketAfter {
			// Collapsed or shortcut reference: the link text is the label.
			label = s.Source(b.contentPos, beforeClose)
			ok = utf8.RuneCountInString(label) <= maxLinkLabelLength
		}
		if !ok {
			return false
		}
		def, defined := state.refs.Get(label)
		if !defined {
			return false
		}
		link.destination = def.Destination
		link.title = def.Title
		link.hasTitle = def.TitlePresent
	}

	// Emphasis inside the link text must be resolved
	// before its nodes move under the link.
	state.processDelimiters(b.prevDelimiter)
	link.children = state.unlinkAfter(b.node)
	state.unlink(b.node)
	state.append(link)
	state.popBracket()

	if !b.image {
		for i := state.lastBracket; i >= 0; i = state.brackets[i].prev {
			if !state.brackets[i].image {
				state.brackets[i].allowed = false
			}
		}
	}
	return true
}

// processDelimiters implements the [process emphasis procedure]
// for the delimiters above stackBottom.
// Every delimiter above stackBottom is removed from the stack when it returns.
//
// [process emphasis procedure]: https://spec.commonmark.org/0.31.2/#process-emphasis
func (state *inlineState) processDelimiters(stackBottom int) {
	if state.lastDelimiter == stackBottom {
		return
	}
	// openersBottom records, per closing character,
	// the delimiter below which no opener can be found.
	openersBottom := make(map[byte]int)

	closer := state.lastDelimiter
	for closer >= 0 && state.delimiters[closer].prev != stackBottom {
		closer = state.delimiters[closer].prev
	}
	for closer >= 0 {
		cd := &state.delimiters[closer]
		c := cd.char
		openChar, closeChar := state.delims.delimiters(c)
		if !cd.canClose || c != closeChar {
			closer = cd.next
			continue
		}

		bottom, ok := openersBottom[c]
		if !ok {
			bottom = stackBottom
		}
		var n int
		var container *Inline
		openerFound := false
		potentialOpenerFound := false
		opener := cd.prev
		for opener >= 0 && opener != stackBottom && opener != bottom {
			od := &state.delimiters[opener]
			if od.canOpen && od.char == openChar {
				potentialOpenerFound = true
				if p := state.delims.Processor(openChar, len(od.nodes)); p != nil {
					n, container = p.Process(od.run(), cd.run())
				}
				if n > 0 {
					openerFound = true
					break
				}
			}
			opener = od.prev
		}

		if !openerFound {
			next := cd.next
			if !potentialOpenerFound {
				// No opener for this character can exist below here.
				openersBottom[c] = cd.prev
				if !cd.canOpen {
					state.removeDelimiter(closer)
				}
			}
			closer = next
			continue
		}

		state.wrap(opener, closer, n, container)
		for d := state.delimiters[closer].prev; d != opener; {
			prev := state.delimiters[d].prev
			state.removeDelimiter(d)
			d = prev
		}
		if len(state.delimiters[opener].nodes) == 0 {
			state.removeDelimiter(opener)
		}
		if cd := &state.delimiters[closer]; len(cd.nodes) == 0 {
			next := cd.next
			state.removeDelimiter(closer)
			closer = next
		}
	}

	for state.lastDelimiter >= 0 && state.lastDelimiter != stackBottom {
		state.removeDelimiter(state.lastDelimiter)
	}
}

// wrap consumes n characters from the inner ends of the opener and closer runs
// and moves the nodes between them into container.
func (state *inlineState) wrap(opener, closer int, n int, container *Inline) {
	od := &state.delimiters[opener]
	cd := &state.delimiters[closer]
	n = min(n, len(od.nodes), len(cd.nodes))
	openerNode := od.nodes[len(od.nodes)-1]
	closerNode := cd.nodes[0]
	if container != nil {
		if container.delim == 0 {
			container.delim = od.char
		}
		container.children = state.unlinkBetween(openerNode, closerNode)
		state.insertAfter(openerNode, container)
	}
	for _, node := range od.nodes[len(od.nodes)-n:] {
		state.unlink(node)
	}
	od.nodes = od.nodes[:len(od.nodes)-n]
	for _, node := range cd.nodes[:n] {
		state.unlink(node)
	}
	cd.nodes = cd.nodes[n:]
}

func (state *inlineState) removeDelimiter(i int) {
	d := &state.delimiters[i]
	if d.prev >= 0 {
		state.delimiters[d.prev].next = d.next
	}
	if d.next >= 0 {
		state.delimiters[d.next].prev = d.prev
	} else {
		state.lastDelimiter = d.prev
	}
}

func (state *inlineState) appendText(text string) *Inline {
	node := &Inline{kind: TextKind, text: text}
	state.append(node)
	return node
}

func (state *inlineState) append(node *Inline) {
	node.prev = state.tail
	node.next = nil
	if state.tail != nil {
		state.tail.next = node
	} else {
		state.head = node
	}
	state.tail = node
}

func (state *inlineState) insertAfter(ref, node *Inline) {
	node.prev = ref
	node.next = ref.next
	if ref.next != nil {
		ref.next.prev = node
	} else {
		state.tail = node
	}
	ref.next = node
}

func (state *inlineState) unlink(node *Inline) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		state.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		state.tail = node.prev
	}
	node.prev = nil
	node.next = nil
}

// unlinkBetween removes the nodes strictly between start and end
// from the list and returns them in order.
func (state *inlineState) unlinkBetween(start, end *Inline) []*Inline {
	var nodes []*Inline
	for node := start.next; node != nil && node != end; {
		next := node.next
		state.unlink(node)
		nodes = append(nodes, node)
		node = next
	}
	return nodes
}

// unlinkAfter removes every node after start from the list.
// If start is nil, the whole list is removed.
func (state *inlineState) unlinkAfter(start *Inline) []*Inline {
	node := state.head
	if start != nil {
		node = start.next
	}
	var nodes []*Inline
	for node != nil {
		next := node.next
		state.unlink(node)
		nodes = append(nodes, node)
		node = next
	}
	return nodes
}

// mergeText joins adjacent text nodes and drops empty ones,
// recursing into children.
func mergeText(nodes []*Inline) []*Inline {
	result := nodes[:0]
	var sb strings.Builder
	runStart := -1
	flush := func() {
		if runStart >= 0 && sb.Len() > len(result[runStart].text) {
			result[runStart].text = sb.String()
		}
		sb.Reset()
		runStart = -1
	}
	for _, node := range nodes {
		if len(node.children) > 0 {
			node.children = mergeText(node.children)
		}
		if node.kind != TextKind {
			flush()
			result = append(result, node)
			continue
		}
		if node.text == "" {
			continue
		}
		if runStart < 0 {
			runStart = len(result)
			result = append(result, node)
		}
		sb.WriteString(node.text)
	}
	flush()
	return result
}

// isUnicodeWhitespace reports whether c is a [Unicode whitespace character].
// The start and end of the input count as whitespace.
//
// [Unicode whitespace character]: https://spec.commonmark.org/0.31.2/#unicode-whitespace-character
func isUnicodeWhitespace(c rune) bool {
	switch c {
	case EndOfInput, '\t', '\n', '\f', '\r':
		return true
	}
	return unicode.Is(unicode.Zs, c)
}

// isUnicodePunctuation reports whether c is a [Unicode punctuation character].
//
// [Unicode punctuation character]: https://spec.commonmark.org/0.31.2/#unicode-punctuation-character
func isUnicodePunctuation(c rune) bool {
	return c >= 0 && (unicode.IsPunct(c) || unicode.IsSymbol(c))
}
