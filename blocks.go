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
	"strconv"
	"strings"
)

// blockStarts is the list of built-in block starts in order of precedence.
var blockStarts = []BlockStartFactory{
	BlockStartFunc(startBlockQuote),
	BlockStartFunc(startHeading),
	BlockStartFunc(startFencedCodeBlock),
	BlockStartFunc(startHTMLBlock),
	BlockStartFunc(startThematicBreak),
	BlockStartFunc(startListItem),
	BlockStartFunc(startIndentedCodeBlock),
}

// leafParser holds the methods shared by block parsers
// whose blocks cannot contain other blocks.
type leafParser struct {
	block *Block
}

func (lp *leafParser) Block() *Block                      { return lp.block }
func (lp *leafParser) IsContainer() bool                  { return false }
func (lp *leafParser) CanHaveLazyContinuationLines() bool { return false }
func (lp *leafParser) CanContain(child *Block) bool       { return false }
func (lp *leafParser) AddLine(line string)                {}
func (lp *leafParser) Close()                             {}

type documentBlockParser struct {
	block *Block
}

func (dp *documentBlockParser) Block() *Block                      { return dp.block }
func (dp *documentBlockParser) IsContainer() bool                  { return true }
func (dp *documentBlockParser) CanHaveLazyContinuationLines() bool { return false }
func (dp *documentBlockParser) CanContain(child *Block) bool       { return child.Kind() != ListItemKind }
func (dp *documentBlockParser) AddLine(line string)                {}
func (dp *documentBlockParser) Close()                             {}

func (dp *documentBlockParser) TryContinue(state ParserState) Continue {
	return ContinueAtIndex(state.Index())
}

// paragraphParser collects the lines of a [paragraph].
// Link reference definitions at the start of the paragraph
// are split off when they are complete.
//
// [paragraph]: https://spec.commonmark.org/0.31.2/#paragraphs
type paragraphParser struct {
	block *Block
	lines []string
	defs  []*Block
}

func newParagraphParser() *paragraphParser {
	return &paragraphParser{block: &Block{kind: ParagraphKind}}
}

func (pp *paragraphParser) Block() *Block                      { return pp.block }
func (pp *paragraphParser) IsContainer() bool                  { return false }
func (pp *paragraphParser) CanHaveLazyContinuationLines() bool { return true }
func (pp *paragraphParser) CanContain(child *Block) bool       { return false }

func (pp *paragraphParser) TryContinue(state ParserState) Continue {
	if state.IsBlank() {
		return ContinueNone()
	}
	return ContinueAtIndex(state.Index())
}

func (pp *paragraphParser) AddLine(line string) {
	pp.lines = append(pp.lines, strings.TrimLeft(line, " \t"))
}

func (pp *paragraphParser) Close() {
	pp.parseDefinitions()
	if len(pp.lines) > 0 {
		pp.block.source = pp.lines
	}
}

// paragraphLines returns the lines of the paragraph
// that do not belong to a link reference definition.
func (pp *paragraphParser) paragraphLines() []string {
	pp.parseDefinitions()
	return pp.lines
}

// takeDefinitions returns the link reference definition blocks
// found at the start of the paragraph so far
// and forgets about them.
func (pp *paragraphParser) takeDefinitions() []*Block {
	pp.parseDefinitions()
	defs := pp.defs
	pp.defs = nil
	return defs
}

func (pp *paragraphParser) parseDefinitions() {
	for len(pp.lines) > 0 {
		def, n := parseLinkReferenceDefinition(pp.lines)
		if n == 0 {
			return
		}
		pp.defs = append(pp.defs, &Block{
			kind:      LinkReferenceDefinitionKind,
			def:       def,
			startLine: pp.block.startLine,
			endLine:   pp.block.startLine + n - 1,
		})
		pp.lines = pp.lines[n:]
		pp.block.startLine += n
	}
}

// blockQuoteParser parses a [block quote].
//
// [block quote]: https://spec.commonmark.org/0.31.2/#block-quotes
type blockQuoteParser struct {
	block *Block
}

func (bq *blockQuoteParser) Block() *Block                      { return bq.block }
func (bq *blockQuoteParser) IsContainer() bool                  { return true }
func (bq *blockQuoteParser) CanHaveLazyContinuationLines() bool { return false }
func (bq *blockQuoteParser) CanContain(child *Block) bool       { return child.Kind() != ListItemKind }
func (bq *blockQuoteParser) AddLine(line string)                {}
func (bq *blockQuoteParser) Close()                             {}

func (bq *blockQuoteParser) TryContinue(state ParserState) Continue {
	if !isBlockQuoteMarker(state) {
		return ContinueNone()
	}
	return ContinueAtColumn(blockQuoteContentColumn(state))
}

func startBlockQuote(state ParserState, matched MatchedBlockParser) *BlockStart {
	if !isBlockQuoteMarker(state) {
		return nil
	}
	bq := &blockQuoteParser{block: &Block{kind: BlockQuoteKind}}
	return StartWith(bq).AtColumn(blockQuoteContentColumn(state))
}

func isBlockQuoteMarker(state ParserState) bool {
	line := state.Line()
	i := state.NextNonSpaceIndex()
	return state.Indent() < codeBlockIndentLimit && i < len(line) && line[i] == '>'
}

// blockQuoteContentColumn returns the column after a block quote marker
// and its optional following space.
func blockQuoteContentColumn(state ParserState) int {
	line := state.Line()
	column := state.Column() + state.Indent() + 1
	if i := state.NextNonSpaceIndex() + 1; i < len(line) && isSpaceOrTab(line[i]) {
		column++
	}
	return column
}

// headingParser parses ATX and setext headings.
// Both occupy their final line completely.
type headingParser struct {
	leafParser
}

func (hp *headingParser) TryContinue(state ParserState) Continue {
	return ContinueNone()
}

func newHeadingParser(level int, content []string) *headingParser {
	b := &Block{kind: HeadingKind, level: level}
	if len(content) > 0 {
		b.source = content
	}
	return &headingParser{leafParser{block: b}}
}

func startHeading(state ParserState, matched MatchedBlockParser) *BlockStart {
	if state.Indent() >= codeBlockIndentLimit {
		return nil
	}
	line := state.Line()
	i := state.NextNonSpaceIndex()
	if line[i] == '#' {
		if level, content, ok := parseATXHeading(line[i:]); ok {
			var source []string
			if content != "" {
				source = []string{content}
			}
			return StartWith(newHeadingParser(level, source)).AtIndex(len(line))
		}
	}
	if level := setextHeadingLevel(line[i:]); level > 0 {
		if paragraph := matched.ParagraphLines(); len(paragraph) > 0 {
			content := make([]string, len(paragraph))
			copy(content, paragraph)
			return StartWith(newHeadingParser(level, content)).
				AtIndex(len(line)).
				ReplaceActiveBlockParser()
		}
	}
	return nil
}

// parseATXHeading parses an [ATX heading] without leading indentation
// and returns its level and content.
//
// [ATX heading]: https://spec.commonmark.org/0.31.2/#atx-headings
func parseATXHeading(line string) (level int, content string, ok bool) {
	s := NewScanner([]string{line})
	level = s.MatchMultiple('#')
	if level == 0 || level > 6 {
		return 0, "", false
	}
	if !s.HasNext() {
		return level, "", true
	}
	if c := s.Peek(); c != ' ' && c != '\t' {
		return 0, "", false
	}
	s.Whitespace()
	start := s.Position()
	end := start
	hashCanEnd := true
	for s.HasNext() {
		switch s.Peek() {
		case '#':
			if !hashCanEnd {
				s.Next()
				end = s.Position()
				continue
			}
			s.MatchMultiple('#')
			ws := s.Whitespace()
			if s.HasNext() {
				end = s.Position()
			}
			hashCanEnd = ws > 0
		case ' ', '\t':
			hashCanEnd = true
			s.Next()
		default:
			hashCanEnd = false
			s.Next()
			end = s.Position()
		}
	}
	return level, s.Source(start, end), true
}

// setextHeadingLevel returns the level of a [setext heading underline]
// without leading indentation, or zero if line is not an underline.
//
// [setext heading underline]: https://spec.commonmark.org/0.31.2/#setext-heading-underline
func setextHeadingLevel(line string) int {
	if line == "" {
		return 0
	}
	var level int
	switch line[0] {
	case '=':
		level = 1
	case '-':
		level = 2
	default:
		return 0
	}
	rest := strings.TrimLeft(line, line[:1])
	if !isBlankLine(rest) {
		return 0
	}
	return level
}

type thematicBreakParser struct {
	leafParser
}

func (tp *thematicBreakParser) TryContinue(state ParserState) Continue {
	return ContinueNone()
}

func startThematicBreak(state ParserState, matched MatchedBlockParser) *BlockStart {
	if state.Indent() >= codeBlockIndentLimit {
		return nil
	}
	line := state.Line()
	if !isThematicBreak(line[state.NextNonSpaceIndex():]) {
		return nil
	}
	tp := &thematicBreakParser{leafParser{block: &Block{kind: ThematicBreakKind}}}
	return StartWith(tp).AtIndex(len(line))
}

// isThematicBreak reports whether line is a [thematic break]
// without leading indentation.
//
// [thematic break]: https://spec.commonmark.org/0.31.2/#thematic-breaks
func isThematicBreak(line string) bool {
	var marker byte
	n := 0
	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case '-', '_', '*':
			if marker != 0 && c != marker {
				return false
			}
			marker = c
			n++
		case ' ', '\t':
		default:
			return false
		}
	}
	return n >= 3
}

// fencedCodeParser parses a [fenced code block].
// The first line it receives is the rest of the opening fence line,
// which holds the info string.
//
// [fenced code block]: https://spec.commonmark.org/0.31.2/#fenced-code-blocks
type fencedCodeParser struct {
	leafParser
	sawInfo bool
	content strings.Builder
}

func (fp *fencedCodeParser) TryContinue(state ParserState) Continue {
	line := state.Line()
	i := state.NextNonSpaceIndex()
	if state.Indent() < codeBlockIndentLimit && i < len(line) && fp.isClosingFence(line[i:]) {
		return ContinueFinished()
	}
	// Skip up to the opening fence's indentation.
	newIndex := state.Index()
	for n := fp.block.fenceIndent; n > 0 && newIndex < len(line) && line[newIndex] == ' '; n-- {
		newIndex++
	}
	return ContinueAtIndex(newIndex)
}

func (fp *fencedCodeParser) isClosingFence(line string) bool {
	n := 0
	for n < len(line) && line[n] == fp.block.fenceChar {
		n++
	}
	return n >= fp.block.fenceLength && isBlankLine(line[n:])
}

func (fp *fencedCodeParser) AddLine(line string) {
	if !fp.sawInfo {
		fp.sawInfo = true
		fp.block.info = unescapeString(strings.Trim(line, " \t"))
		return
	}
	fp.content.WriteString(line)
	fp.content.WriteByte('\n')
}

func (fp *fencedCodeParser) Close() {
	fp.block.literal = fp.content.String()
}

func startFencedCodeBlock(state ParserState, matched MatchedBlockParser) *BlockStart {
	if state.Indent() >= codeBlockIndentLimit {
		return nil
	}
	line := state.Line()
	i := state.NextNonSpaceIndex()
	c := line[i]
	if c != '`' && c != '~' {
		return nil
	}
	n := 0
	for i+n < len(line) && line[i+n] == c {
		n++
	}
	if n < 3 {
		return nil
	}
	if c == '`' && strings.IndexByte(line[i+n:], '`') >= 0 {
		return nil
	}
	fp := &fencedCodeParser{leafParser: leafParser{block: &Block{
		kind:        FencedCodeBlockKind,
		fenceChar:   c,
		fenceLength: n,
		fenceIndent: state.Indent(),
	}}}
	return StartWith(fp).AtIndex(i + n)
}

// indentedCodeParser parses an [indented code block].
//
// [indented code block]: https://spec.commonmark.org/0.31.2/#indented-code-blocks
type indentedCodeParser struct {
	leafParser
	lines []string
}

func (ip *indentedCodeParser) TryContinue(state ParserState) Continue {
	switch {
	case state.Indent() >= codeBlockIndentLimit:
		return ContinueAtColumn(state.Column() + codeBlockIndentLimit)
	case state.IsBlank():
		return ContinueAtIndex(state.NextNonSpaceIndex())
	default:
		return ContinueNone()
	}
}

func (ip *indentedCodeParser) AddLine(line string) {
	ip.lines = append(ip.lines, line)
}

func (ip *indentedCodeParser) Close() {
	lines := ip.lines
	for len(lines) > 0 && isBlankLine(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	// Trailing blank lines are not part of the block.
	ip.block.endLine -= len(ip.lines) - len(lines)
	sb := new(strings.Builder)
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	ip.block.literal = sb.String()
}

func startIndentedCodeBlock(state ParserState, matched MatchedBlockParser) *BlockStart {
	// An indented code block cannot interrupt a paragraph.
	if state.Indent() < codeBlockIndentLimit || state.IsBlank() ||
		state.ActiveBlockParser().Block().Kind() == ParagraphKind {
		return nil
	}
	ip := &indentedCodeParser{leafParser: leafParser{block: &Block{kind: IndentedCodeBlockKind}}}
	return StartWith(ip).AtColumn(state.Column() + codeBlockIndentLimit)
}

// htmlBlockParser parses an [HTML block].
//
// [HTML block]: https://spec.commonmark.org/0.31.2/#html-blocks
type htmlBlockParser struct {
	leafParser
	// endCondition is nil for blocks that end at a blank line.
	endCondition func(line string) bool
	finished     bool
	content      strings.Builder
}

func (hp *htmlBlockParser) TryContinue(state ParserState) Continue {
	if hp.finished || (state.IsBlank() && hp.endCondition == nil) {
		return ContinueNone()
	}
	return ContinueAtIndex(state.Index())
}

func (hp *htmlBlockParser) AddLine(line string) {
	hp.content.WriteString(line)
	hp.content.WriteByte('\n')
	if hp.endCondition != nil && hp.endCondition(line) {
		hp.finished = true
	}
}

func (hp *htmlBlockParser) Close() {
	hp.block.literal = hp.content.String()
}

func startHTMLBlock(state ParserState, matched MatchedBlockParser) *BlockStart {
	line := state.Line()
	i := state.NextNonSpaceIndex()
	if state.Indent() >= codeBlockIndentLimit || line[i] != '<' {
		return nil
	}
	for _, cond := range htmlBlockConditions {
		if !cond.canInterruptParagraph &&
			(matched.Matched().Block().Kind() == ParagraphKind ||
				state.ActiveBlockParser().CanHaveLazyContinuationLines()) {
			continue
		}
		if cond.startCondition(line[i:]) {
			hp := &htmlBlockParser{
				leafParser:   leafParser{block: &Block{kind: HTMLBlockKind}},
				endCondition: cond.endCondition,
			}
			return StartWith(hp).AtIndex(state.Index())
		}
	}
	return nil
}

// listParser parses a [list].
// Lists have no markers of their own: they continue as long as
// the parser can stay inside them.
//
// [list]: https://spec.commonmark.org/0.31.2/#lists
type listParser struct {
	block           *Block
	hadBlankLine    bool
	linesAfterBlank int
}

func (lp *listParser) Block() *Block                      { return lp.block }
func (lp *listParser) IsContainer() bool                  { return true }
func (lp *listParser) CanHaveLazyContinuationLines() bool { return false }
func (lp *listParser) AddLine(line string)                {}
func (lp *listParser) Close()                             {}

func (lp *listParser) CanContain(child *Block) bool {
	if child.Kind() != ListItemKind {
		return false
	}
	// A blank line between items makes the list loose.
	if lp.hadBlankLine && lp.linesAfterBlank == 1 {
		lp.block.tight = false
		lp.hadBlankLine = false
	}
	return true
}

func (lp *listParser) TryContinue(state ParserState) Continue {
	if state.IsBlank() {
		lp.hadBlankLine = true
		lp.linesAfterBlank = 0
	} else if lp.hadBlankLine {
		lp.linesAfterBlank++
	}
	return ContinueAtIndex(state.Index())
}

// listItemParser parses a [list item].
//
// [list item]: https://spec.commonmark.org/0.31.2/#list-items
type listItemParser struct {
	block         *Block
	list          *Block
	contentIndent int
	hadBlankLine  bool
}

func (li *listItemParser) Block() *Block                      { return li.block }
func (li *listItemParser) IsContainer() bool                  { return true }
func (li *listItemParser) CanHaveLazyContinuationLines() bool { return false }
func (li *listItemParser) AddLine(line string)                {}
func (li *listItemParser) Close()                             {}

func (li *listItemParser) CanContain(child *Block) bool {
	if li.hadBlankLine && li.list != nil {
		// Two block-level children separated by a blank line.
		li.list.tight = false
	}
	return child.Kind() != ListItemKind
}

func (li *listItemParser) TryContinue(state ParserState) Continue {
	if state.IsBlank() {
		if len(li.block.children) == 0 {
			// An item can begin with at most one blank line.
			return ContinueNone()
		}
		// Blank lines inside code blocks do not make the list loose.
		switch state.ActiveBlockParser().Block().Kind() {
		case ParagraphKind, ListItemKind:
			li.hadBlankLine = true
		default:
			li.hadBlankLine = false
		}
		return ContinueAtIndex(state.NextNonSpaceIndex())
	}
	if state.Indent() >= li.contentIndent {
		return ContinueAtColumn(state.Column() + li.contentIndent)
	}
	return ContinueNone()
}

// listMarker is the result of parsing a [list marker].
//
// [list marker]: https://spec.commonmark.org/0.31.2/#list-marker
type listMarker struct {
	ordered bool
	char    byte
	start   int
	// end is the byte offset just past the marker.
	end int
}

func startListItem(state ParserState, matched MatchedBlockParser) *BlockStart {
	if state.Indent() >= codeBlockIndentLimit {
		return nil
	}
	line := state.Line()
	markerIndex := state.NextNonSpaceIndex()
	markerColumn := state.Column() + state.Indent()
	marker, ok := parseListMarker(line, markerIndex)
	if !ok {
		return nil
	}

	columnAfterMarker := markerColumn + (marker.end - markerIndex)
	contentColumn := columnAfterMarker
	hasContent := false
	for i := marker.end; i < len(line); i++ {
		c := line[i]
		if c == '\t' {
			contentColumn += tabStopSize - contentColumn%tabStopSize
		} else if c == ' ' {
			contentColumn++
		} else {
			hasContent = true
			break
		}
	}
	if len(matched.ParagraphLines()) > 0 {
		// Interrupting a paragraph requires content
		// and, for ordered lists, a start of 1.
		if !hasContent || (marker.ordered && marker.start != 1) {
			return nil
		}
	}
	if !hasContent || contentColumn-columnAfterMarker > codeBlockIndentLimit {
		contentColumn = columnAfterMarker + 1
	}

	item := &listItemParser{
		block: &Block{
			kind:       ListItemKind,
			ordered:    marker.ordered,
			listMarker: marker.char,
			listStart:  marker.start,
		},
		contentIndent: contentColumn - state.Column(),
	}
	if lp, ok := matched.Matched().(*listParser); ok && listsMatch(lp.block, marker) {
		item.list = lp.block
		return StartWith(item).AtColumn(contentColumn)
	}
	lp := &listParser{block: &Block{
		kind:       ListKind,
		ordered:    marker.ordered,
		listMarker: marker.char,
		listStart:  marker.start,
		tight:      true,
	}}
	item.list = lp.block
	return StartWith(lp, item).AtColumn(contentColumn)
}

func parseListMarker(line string, i int) (_ listMarker, ok bool) {
	switch c := line[i]; c {
	case '-', '+', '*':
		if i+1 < len(line) && !isSpaceOrTab(line[i+1]) {
			return listMarker{}, false
		}
		return listMarker{char: c, end: i + 1}, true
	}
	digits := 0
	for j := i; j < len(line); j++ {
		switch c := line[j]; {
		case isASCIIDigit(c):
			digits++
			if digits > 9 {
				return listMarker{}, false
			}
		case c == '.' || c == ')':
			if digits == 0 || (j+1 < len(line) && !isSpaceOrTab(line[j+1])) {
				return listMarker{}, false
			}
			start, err := strconv.Atoi(line[i:j])
			if err != nil {
				return listMarker{}, false
			}
			return listMarker{ordered: true, char: c, start: start, end: j + 1}, true
		default:
			return listMarker{}, false
		}
	}
	return listMarker{}, false
}

func listsMatch(list *Block, marker listMarker) bool {
	return list.ordered == marker.ordered && list.listMarker == marker.char
}
