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

// Package mdparse provides a [CommonMark] parser.
//
// Parsing happens in two phases.
// The block phase consumes the input one line at a time
// and builds the tree of blocks,
// collecting [link reference definitions] along the way.
// The inline phase then replaces the raw text of every paragraph and heading
// with inline nodes such as emphasis and links.
//
// [CommonMark]: https://commonmark.org/
// [link reference definitions]: https://spec.commonmark.org/0.31.2/#link-reference-definitions
package mdparse

import (
	"bytes"
	"strings"
)

// tabStopSize is the multiple of columns that a [tab] advances to.
//
// [tab]: https://spec.commonmark.org/0.31.2/#tabs
const tabStopSize = 4

// codeBlockIndentLimit is the column width of an indent
// required to start an indented code block.
const codeBlockIndentLimit = 4

// A Parser converts lines of Markdown into a [Document].
// The zero value parses CommonMark.
// A Parser must not be modified once it has been used,
// but it may be used from multiple goroutines at once.
type Parser struct {
	// BlockStarts is a list of additional block starts
	// that are consulted after the built-in ones, in order.
	BlockStarts []BlockStartFactory
	// Delimiters determines the characters that form emphasis-like runs.
	// If nil, [DefaultDelimiterTable] is used.
	Delimiters *DelimiterTable
}

var defaultDelimiterTable = DefaultDelimiterTable()

// Parse parses a complete Markdown document
// using the default [Parser] options.
func Parse(source []byte) *Document {
	return new(Parser).Parse(SplitLines(source))
}

// SplitLines splits source into lines,
// recognizing "\n", "\r\n", and "\r" as line endings.
// A line ending at the end of source does not produce an empty line.
func SplitLines(source []byte) []string {
	var lines []string
	for len(source) > 0 {
		i := bytes.IndexAny(source, "\r\n")
		if i < 0 {
			lines = append(lines, string(source))
			break
		}
		lines = append(lines, string(source[:i]))
		if source[i] == '\r' && i+1 < len(source) && source[i+1] == '\n' {
			i++
		}
		source = source[i+1:]
	}
	return lines
}

// Parse parses a sequence of lines into a [Document].
// Lines must not contain line endings.
// Parse never fails: any input produces a document.
func (p *Parser) Parse(lines []string) *Document {
	doc := &Document{
		Block:        Block{kind: DocumentKind, endLine: len(lines) - 1},
		ReferenceMap: make(ReferenceMap),
	}
	if len(lines) == 0 {
		doc.endLine = 0
	}
	dp := &documentParser{
		doc:        doc,
		starts:     blockStarts,
		lineNumber: -1,
		open:       []BlockParser{&documentBlockParser{block: &doc.Block}},
	}
	if len(p.BlockStarts) > 0 {
		dp.starts = make([]BlockStartFactory, 0, len(blockStarts)+len(p.BlockStarts))
		dp.starts = append(dp.starts, blockStarts...)
		dp.starts = append(dp.starts, p.BlockStarts...)
	}
	for _, line := range lines {
		dp.parseLine(line)
	}
	dp.closeBlockParsers(len(dp.open) - 1)

	delims := p.Delimiters
	if delims == nil {
		delims = defaultDelimiterTable
	}
	(&InlineParser{Delimiters: delims}).Rewrite(doc)
	return doc
}

// ParserState is the state of the block phase for the line being parsed.
// It is passed to [BlockParser.TryContinue] and [BlockStartFactory.TryStart].
type ParserState interface {
	// Line returns the entire current line.
	Line() string
	// Index returns the byte offset within the line
	// up to which the line has been consumed.
	Index() int
	// NextNonSpaceIndex returns the byte offset
	// of the first character at or after Index that is not a space or tab.
	NextNonSpaceIndex() int
	// Column returns the column that corresponds to Index,
	// taking tab stops into account.
	Column() int
	// Indent returns the number of columns
	// between Column and the column of NextNonSpaceIndex.
	Indent() int
	// IsBlank reports whether the rest of the line
	// contains only spaces and tabs.
	IsBlank() bool
	// ActiveBlockParser returns the deepest open block parser.
	ActiveBlockParser() BlockParser
}

// MatchedBlockParser is the deepest block parser
// that accepted the current line in [BlockParser.TryContinue].
type MatchedBlockParser interface {
	Matched() BlockParser
	// ParagraphLines returns the content of the matched paragraph
	// not claimed by link reference definitions,
	// or nil if the matched block is not a paragraph.
	ParagraphLines() []string
}

// A BlockParser builds a single block while it is open.
type BlockParser interface {
	// Block returns the block being built.
	Block() *Block
	// IsContainer reports whether the block can contain other blocks.
	IsContainer() bool
	// CanHaveLazyContinuationLines reports whether
	// a line that does not match any open container
	// may still be added to this block.
	CanHaveLazyContinuationLines() bool
	// CanContain reports whether child may be added as a child block.
	CanContain(child *Block) bool
	// TryContinue reports whether the current line continues the block.
	TryContinue(state ParserState) Continue
	// AddLine adds the rest of the current line to the block.
	AddLine(line string)
	// Close is called once when the block ends.
	Close()
}

type continueKind int8

const (
	continueNone continueKind = iota
	continueAtIndex
	continueAtColumn
	continueFinished
)

// Continue is the result of [BlockParser.TryContinue].
// The zero value is equivalent to [ContinueNone].
type Continue struct {
	kind  continueKind
	value int
}

// ContinueNone signals that the block does not continue on the current line.
func ContinueNone() Continue {
	return Continue{}
}

// ContinueAtIndex signals that the block continues
// and that parsing resumes at the given byte offset of the line.
func ContinueAtIndex(index int) Continue {
	return Continue{kind: continueAtIndex, value: index}
}

// ContinueAtColumn signals that the block continues
// and that parsing resumes at the given column of the line.
// The column may fall inside a tab.
func ContinueAtColumn(column int) Continue {
	return Continue{kind: continueAtColumn, value: column}
}

// ContinueFinished signals that the current line completes the block
// and that nothing else may use it.
func ContinueFinished() Continue {
	return Continue{kind: continueFinished}
}

// A BlockStartFactory recognizes the start of a block.
type BlockStartFactory interface {
	// TryStart returns nil if the rest of the line does not start a block.
	TryStart(state ParserState, matched MatchedBlockParser) *BlockStart
}

// BlockStartFunc is a function that implements [BlockStartFactory].
type BlockStartFunc func(state ParserState, matched MatchedBlockParser) *BlockStart

// TryStart calls f.
func (f BlockStartFunc) TryStart(state ParserState, matched MatchedBlockParser) *BlockStart {
	return f(state, matched)
}

// BlockStart is the result of a successful [BlockStartFactory.TryStart].
type BlockStart struct {
	parsers       []BlockParser
	newIndex      int
	newColumn     int
	replaceActive bool
}

// StartWith returns a [BlockStart] that opens the given parsers.
// Each parser becomes a child of the previous one.
func StartWith(parsers ...BlockParser) *BlockStart {
	if len(parsers) == 0 {
		panic("StartWith called without parsers")
	}
	return &BlockStart{
		parsers:   parsers,
		newIndex:  -1,
		newColumn: -1,
	}
}

// AtIndex sets the byte offset at which parsing resumes.
func (bs *BlockStart) AtIndex(index int) *BlockStart {
	bs.newIndex = index
	return bs
}

// AtColumn sets the column at which parsing resumes.
func (bs *BlockStart) AtColumn(column int) *BlockStart {
	bs.newColumn = column
	return bs
}

// ReplaceActiveBlockParser requests that the active block parser,
// usually a paragraph, be removed from the tree in favor of the new block.
func (bs *BlockStart) ReplaceActiveBlockParser() *BlockStart {
	bs.replaceActive = true
	return bs
}

// documentParser drives the block phase.
// It implements [ParserState].
type documentParser struct {
	doc    *Document
	starts []BlockStartFactory

	lineNumber         int
	line               string
	index              int
	column             int
	columnIsInTab      bool
	nextNonSpace       int
	nextNonSpaceColumn int
	indent             int
	blank              bool

	// open is the chain of open block parsers.
	// open[0] is always the document.
	open []BlockParser
}

func (p *documentParser) Line() string                   { return p.line }
func (p *documentParser) Index() int                     { return p.index }
func (p *documentParser) NextNonSpaceIndex() int         { return p.nextNonSpace }
func (p *documentParser) Column() int                    { return p.column }
func (p *documentParser) Indent() int                    { return p.indent }
func (p *documentParser) IsBlank() bool                  { return p.blank }
func (p *documentParser) ActiveBlockParser() BlockParser { return p.open[len(p.open)-1] }

func (p *documentParser) parseLine(line string) {
	p.setLine(line)

	// Give each open block a chance to accept the line.
	matches := 1
	for i := 1; i < len(p.open); i++ {
		bp := p.open[i]
		p.findNextNonSpace()
		result := bp.TryContinue(p)
		if result.kind == continueNone {
			break
		}
		bp.Block().endLine = p.lineNumber
		switch result.kind {
		case continueFinished:
			p.closeBlockParsers(len(p.open) - i)
			return
		case continueAtIndex:
			p.setNewIndex(result.value)
		case continueAtColumn:
			p.setNewColumn(result.value)
		}
		matches++
	}

	unmatched := len(p.open) - matches
	bp := p.open[matches-1]
	startedNewBlock := false
	tryBlockStarts := bp.Block().Kind() == ParagraphKind || bp.IsContainer()
	for tryBlockStarts {
		p.findNextNonSpace()
		if p.blank || (p.indent < codeBlockIndentLimit &&
			len(p.starts) == len(blockStarts) &&
			isASCIILetter(p.line[p.nextNonSpace])) {
			// No built-in block starts with a letter.
			p.setNewIndex(p.nextNonSpace)
			break
		}
		start := p.findBlockStart(bp)
		if start == nil {
			p.setNewIndex(p.nextNonSpace)
			break
		}

		startedNewBlock = true
		if unmatched > 0 {
			p.closeBlockParsers(unmatched)
			unmatched = 0
		}
		switch {
		case start.newIndex >= 0:
			p.setNewIndex(start.newIndex)
		case start.newColumn >= 0:
			p.setNewColumn(start.newColumn)
		}
		replacedStart := -1
		if start.replaceActive {
			replacedStart = p.replaceActiveBlockParser()
		}
		for _, newParser := range start.parsers {
			p.addChild(newParser)
			if replacedStart >= 0 {
				newParser.Block().startLine = replacedStart
			}
			bp = newParser
			tryBlockStarts = newParser.IsContainer()
		}
	}

	if !startedNewBlock && !p.blank && p.ActiveBlockParser().CanHaveLazyContinuationLines() {
		// Lazy continuation line.
		for _, open := range p.open {
			open.Block().endLine = p.lineNumber
		}
		p.addLine()
		return
	}
	if unmatched > 0 {
		p.closeBlockParsers(unmatched)
	}
	switch {
	case !bp.IsContainer():
		p.addLine()
	case !p.blank:
		p.addChild(newParagraphParser())
		p.addLine()
	}
}

func (p *documentParser) setLine(line string) {
	p.lineNumber++
	if strings.IndexByte(line, 0) >= 0 {
		line = strings.ReplaceAll(line, "\x00", "\uFFFD")
	}
	p.line = line
	p.index = 0
	p.column = 0
	p.columnIsInTab = false
	p.nextNonSpace = 0
	p.nextNonSpaceColumn = 0
	p.indent = 0
	p.blank = false
}

func (p *documentParser) findNextNonSpace() {
	i := p.index
	cols := p.column
	p.blank = true
loop:
	for i < len(p.line) {
		switch p.line[i] {
		case ' ':
			i++
			cols++
		case '\t':
			i++
			cols += tabStopSize - cols%tabStopSize
		default:
			p.blank = false
			break loop
		}
	}
	p.nextNonSpace = i
	p.nextNonSpaceColumn = cols
	p.indent = cols - p.column
}

func (p *documentParser) setNewIndex(newIndex int) {
	if newIndex >= p.nextNonSpace {
		p.index = p.nextNonSpace
		p.column = p.nextNonSpaceColumn
	}
	for p.index < newIndex && p.index < len(p.line) {
		p.advance()
	}
	p.columnIsInTab = false
}

func (p *documentParser) setNewColumn(newColumn int) {
	if newColumn >= p.nextNonSpaceColumn {
		p.index = p.nextNonSpace
		p.column = p.nextNonSpaceColumn
	}
	for p.column < newColumn && p.index < len(p.line) {
		p.advance()
	}
	if p.column > newColumn {
		// The last character was a tab and only part of it was consumed.
		p.index--
		p.column = newColumn
		p.columnIsInTab = true
	} else {
		p.columnIsInTab = false
	}
}

func (p *documentParser) advance() {
	c := p.line[p.index]
	p.index++
	if c == '\t' {
		p.column += tabStopSize - p.column%tabStopSize
	} else {
		p.column++
	}
}

// addLine hands the rest of the line to the active block parser.
func (p *documentParser) addLine() {
	var content string
	if p.columnIsInTab {
		// Expand the unconsumed part of the tab to spaces.
		spaces := tabStopSize - p.column%tabStopSize
		content = strings.Repeat(" ", spaces) + p.line[p.index+1:]
	} else {
		content = p.line[p.index:]
	}
	bp := p.ActiveBlockParser()
	bp.AddLine(content)
	bp.Block().endLine = p.lineNumber
}

func (p *documentParser) findBlockStart(bp BlockParser) *BlockStart {
	matched := &matchedBlockParser{bp: bp}
	for _, f := range p.starts {
		if start := f.TryStart(p, matched); start != nil {
			return start
		}
	}
	return nil
}

// addChild adds a new block as a child of the active block,
// closing blocks until one is found that can contain it.
func (p *documentParser) addChild(bp BlockParser) {
	for !p.ActiveBlockParser().CanContain(bp.Block()) {
		p.closeBlockParsers(1)
	}
	parent := p.ActiveBlockParser().Block()
	b := bp.Block()
	b.startLine = p.lineNumber
	b.endLine = p.lineNumber
	parent.children = append(parent.children, b)
	p.open = append(p.open, bp)
}

// replaceActiveBlockParser closes the active block parser
// and removes its block from the tree.
// Link reference definitions at the start of a paragraph are kept.
// It returns the first line of the removed content.
func (p *documentParser) replaceActiveBlockParser() int {
	old := p.open[len(p.open)-1]
	p.open = p.open[:len(p.open)-1]
	parent := p.ActiveBlockParser().Block()
	if pp, ok := old.(*paragraphParser); ok {
		p.addDefinitionsFrom(pp, parent)
	}
	old.Close()
	b := old.Block()
	removeChild(parent, b)
	return b.startLine
}

// closeBlockParsers closes the n deepest open block parsers.
func (p *documentParser) closeBlockParsers(n int) {
	for ; n > 0; n-- {
		bp := p.open[len(p.open)-1]
		p.open = p.open[:len(p.open)-1]
		parent := p.ActiveBlockParser().Block()
		if pp, ok := bp.(*paragraphParser); ok {
			p.addDefinitionsFrom(pp, parent)
			bp.Close()
			if len(pp.lines) == 0 {
				removeChild(parent, pp.block)
			}
			continue
		}
		bp.Close()
	}
}

// addDefinitionsFrom inserts the link reference definitions
// at the start of a paragraph before the paragraph
// and records them in the document's reference map.
func (p *documentParser) addDefinitionsFrom(pp *paragraphParser, parent *Block) {
	defs := pp.takeDefinitions()
	if len(defs) == 0 {
		return
	}
	i := indexOfChild(parent, pp.block)
	if i < 0 {
		return
	}
	children := make([]*Block, 0, len(parent.children)+len(defs))
	children = append(children, parent.children[:i]...)
	children = append(children, defs...)
	children = append(children, parent.children[i:]...)
	parent.children = children
	for _, def := range defs {
		p.doc.ReferenceMap.Add(def.def.Label, def.def)
	}
}

func indexOfChild(parent, child *Block) int {
	for i := len(parent.children) - 1; i >= 0; i-- {
		if parent.children[i] == child {
			return i
		}
	}
	return -1
}

func removeChild(parent, child *Block) {
	if i := indexOfChild(parent, child); i >= 0 {
		parent.children = append(parent.children[:i], parent.children[i+1:]...)
	}
}

type matchedBlockParser struct {
	bp BlockParser
}

func (m *matchedBlockParser) Matched() BlockParser {
	return m.bp
}

func (m *matchedBlockParser) ParagraphLines() []string {
	pp, ok := m.bp.(*paragraphParser)
	if !ok {
		return nil
	}
	return pp.paragraphLines()
}

// isBlankLine reports whether line consists only of spaces and tabs.
func isBlankLine(line string) bool {
	for i := 0; i < len(line); i++ {
		if c := line[i]; c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isSpaceOrTab(c byte) bool {
	return c == ' ' || c == '\t'
}
