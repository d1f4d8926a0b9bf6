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

import "strconv"

// A Document is the result of parsing Markdown.
// Its embedded [Block] has kind [DocumentKind].
type Document struct {
	Block
	// ReferenceMap holds the link reference definitions of the document.
	ReferenceMap ReferenceMap
}

// A Block is a structural element in a Markdown document.
// Container blocks have block children,
// while leaf blocks have inline children or a literal.
type Block struct {
	kind           BlockKind
	children       []*Block
	inlineChildren []*Inline

	// source holds the raw lines of a paragraph or heading
	// until the inline parser replaces them with inlineChildren.
	source []string

	literal string
	info    string
	level   int

	ordered    bool
	listMarker byte
	listStart  int
	tight      bool

	fenceChar   byte
	fenceLength int
	fenceIndent int

	def LinkDefinition

	startLine int
	endLine   int
}

// NewBlock returns a new empty block of the given kind.
// It is intended for [BlockParser] implementations
// that produce blocks of a custom kind.
func NewBlock(kind BlockKind) *Block {
	return &Block{kind: kind}
}

// Kind returns the type of block node
// or zero if the block is nil.
func (b *Block) Kind() BlockKind {
	if b == nil {
		return 0
	}
	return b.kind
}

// ChildCount returns the number of children the block has.
// Calling ChildCount on nil returns 0.
func (b *Block) ChildCount() int {
	if b == nil {
		return 0
	}
	return len(b.children) + len(b.inlineChildren)
}

// Child returns the i'th child of the block.
// Block children precede inline children,
// but no built-in block has both.
func (b *Block) Child(i int) Node {
	if i < len(b.children) {
		return b.children[i].AsNode()
	}
	return b.inlineChildren[i-len(b.children)].AsNode()
}

// InlineChildCount returns the number of inline children the block has.
func (b *Block) InlineChildCount() int {
	if b == nil {
		return 0
	}
	return len(b.inlineChildren)
}

// InlineChild returns the i'th inline child of the block.
func (b *Block) InlineChild(i int) *Inline {
	return b.inlineChildren[i]
}

// HeadingLevel returns the 1-based level for a [HeadingKind] block
// or zero for any other kind.
func (b *Block) HeadingLevel() int {
	if b.Kind() != HeadingKind {
		return 0
	}
	return b.level
}

// Literal returns the content of a code block or HTML block.
// Each line of the content is terminated by a newline.
func (b *Block) Literal() string {
	if b == nil {
		return ""
	}
	return b.literal
}

// SetLiteral sets the block's literal content.
// It is intended for [BlockParser] implementations of custom kinds
// and should only be called from [BlockParser.Close].
func (b *Block) SetLiteral(s string) {
	b.literal = s
}

// Info returns the [info string] of a fenced code block
// with backslash escapes and entity references resolved.
//
// [info string]: https://spec.commonmark.org/0.31.2/#info-string
func (b *Block) Info() string {
	if b.Kind() != FencedCodeBlockKind {
		return ""
	}
	return b.info
}

// FenceChar returns the character used in a fenced code block's fence
// ('`' or '~') or zero for any other kind of block.
func (b *Block) FenceChar() byte {
	if b.Kind() != FencedCodeBlockKind {
		return 0
	}
	return b.fenceChar
}

// FenceLength returns the number of characters in the opening fence
// of a fenced code block.
func (b *Block) FenceLength() int {
	if b.Kind() != FencedCodeBlockKind {
		return 0
	}
	return b.fenceLength
}

// FenceIndent returns the indentation of the opening fence
// of a fenced code block.
func (b *Block) FenceIndent() int {
	if b.Kind() != FencedCodeBlockKind {
		return 0
	}
	return b.fenceIndent
}

// IsOrderedList reports whether the block is an ordered list
// or an item of an ordered list.
func (b *Block) IsOrderedList() bool {
	k := b.Kind()
	return (k == ListKind || k == ListItemKind) && b.ordered
}

// ListMarker returns the bullet character ('-', '+', or '*')
// of a bullet list or list item,
// or the delimiter ('.' or ')') following the number of an ordered one.
func (b *Block) ListMarker() byte {
	switch b.Kind() {
	case ListKind, ListItemKind:
		return b.listMarker
	default:
		return 0
	}
}

// ListStart returns the number of the first item of an ordered list,
// or the number of an ordered list item.
// It returns -1 for anything else.
func (b *Block) ListStart() int {
	if !b.IsOrderedList() {
		return -1
	}
	return b.listStart
}

// IsTightList reports whether the block is a [tight] list.
//
// [tight]: https://spec.commonmark.org/0.31.2/#tight
func (b *Block) IsTightList() bool {
	return b.Kind() == ListKind && b.tight
}

// LinkDefinition returns the definition
// of a [LinkReferenceDefinitionKind] block.
func (b *Block) LinkDefinition() LinkDefinition {
	if b.Kind() != LinkReferenceDefinitionKind {
		return LinkDefinition{}
	}
	return b.def
}

// StartLine returns the zero-based index of the first line of the block.
func (b *Block) StartLine() int {
	if b == nil {
		return -1
	}
	return b.startLine
}

// EndLine returns the zero-based index of the last line of the block.
func (b *Block) EndLine() int {
	if b == nil {
		return -1
	}
	return b.endLine
}

// BlockKind is an enumeration of values returned by [*Block.Kind].
type BlockKind uint16

const (
	DocumentKind BlockKind = 1 + iota
	ParagraphKind
	HeadingKind
	ThematicBreakKind
	IndentedCodeBlockKind
	FencedCodeBlockKind
	HTMLBlockKind
	LinkReferenceDefinitionKind
	BlockQuoteKind
	ListKind
	ListItemKind
)

// FirstCustomBlockKind is the smallest kind value
// reserved for blocks produced by custom block parsers.
const FirstCustomBlockKind BlockKind = 0x100

func (kind BlockKind) String() string {
	switch kind {
	case DocumentKind:
		return "Document"
	case ParagraphKind:
		return "Paragraph"
	case HeadingKind:
		return "Heading"
	case ThematicBreakKind:
		return "ThematicBreak"
	case IndentedCodeBlockKind:
		return "IndentedCodeBlock"
	case FencedCodeBlockKind:
		return "FencedCodeBlock"
	case HTMLBlockKind:
		return "HTMLBlock"
	case LinkReferenceDefinitionKind:
		return "LinkReferenceDefinition"
	case BlockQuoteKind:
		return "BlockQuote"
	case ListKind:
		return "List"
	case ListItemKind:
		return "ListItem"
	}
	if kind >= FirstCustomBlockKind {
		return "CustomBlock(" + strconv.Itoa(int(kind)) + ")"
	}
	return "BlockKind(" + strconv.Itoa(int(kind)) + ")"
}

// Inline represents Markdown content elements like text, links, or emphasis.
type Inline struct {
	kind        InlineKind
	text        string
	destination string
	title       string
	hasTitle    bool
	delim       byte
	children    []*Inline

	// prev and next link the top-level nodes of a block
	// while the inline parser is running.
	prev *Inline
	next *Inline
}

// NewInline returns a new empty inline node of the given kind.
// It is intended for [DelimiterProcessor] implementations
// that produce nodes of a custom kind.
func NewInline(kind InlineKind) *Inline {
	return &Inline{kind: kind}
}

// Kind returns the type of inline node
// or zero if the node is nil.
func (inline *Inline) Kind() InlineKind {
	if inline == nil {
		return 0
	}
	return inline.kind
}

// Text returns the literal content of a
// [TextKind], [CodeSpanKind], [RawHTMLKind], or [AutolinkKind] node.
func (inline *Inline) Text() string {
	if inline == nil {
		return ""
	}
	return inline.text
}

// Destination returns the destination of a link, image, or autolink.
func (inline *Inline) Destination() string {
	if inline == nil {
		return ""
	}
	return inline.destination
}

// Title returns the title of a link or image.
func (inline *Inline) Title() string {
	if inline == nil {
		return ""
	}
	return inline.title
}

// TitlePresent reports whether the link or image had a title,
// which may be empty.
func (inline *Inline) TitlePresent() bool {
	return inline != nil && inline.hasTitle
}

// Delimiter returns the character that produced an emphasis node
// (or a node from a custom delimiter processor).
func (inline *Inline) Delimiter() byte {
	if inline == nil {
		return 0
	}
	return inline.delim
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on nil returns 0.
func (inline *Inline) ChildCount() int {
	if inline == nil {
		return 0
	}
	return len(inline.children)
}

// Child returns the i'th child of the node.
func (inline *Inline) Child(i int) *Inline {
	return inline.children[i]
}

// InlineKind is an enumeration of values returned by [*Inline.Kind].
type InlineKind uint16

const (
	TextKind InlineKind = 1 + iota
	SoftLineBreakKind
	HardLineBreakKind
	EmphasisKind
	StrongKind
	CodeSpanKind
	LinkKind
	ImageKind
	AutolinkKind
	RawHTMLKind
)

// FirstCustomInlineKind is the smallest kind value
// reserved for nodes produced by custom delimiter processors.
const FirstCustomInlineKind InlineKind = 0x100

func (kind InlineKind) String() string {
	switch kind {
	case TextKind:
		return "Text"
	case SoftLineBreakKind:
		return "SoftLineBreak"
	case HardLineBreakKind:
		return "HardLineBreak"
	case EmphasisKind:
		return "Emphasis"
	case StrongKind:
		return "Strong"
	case CodeSpanKind:
		return "CodeSpan"
	case LinkKind:
		return "Link"
	case ImageKind:
		return "Image"
	case AutolinkKind:
		return "Autolink"
	case RawHTMLKind:
		return "RawHTML"
	}
	if kind >= FirstCustomInlineKind {
		return "CustomInline(" + strconv.Itoa(int(kind)) + ")"
	}
	return "InlineKind(" + strconv.Itoa(int(kind)) + ")"
}
