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
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"go4.org/bytereplacer"
	"golang.org/x/net/html/atom"
)

// An HTMLRenderer converts parsed documents into HTML.
// The output follows the layout of the CommonMark reference renderer.
//
// # Security considerations
//
// CommonMark permits the use of [raw HTML], which can introduce
// [Cross-Site Scripting (XSS)] vulnerabilities and [HTML parse errors]
// when used with untrusted inputs.
// There are a few options to mitigate this risk:
//
//   - The resulting HTML can be sent through an HTML sanitizer.
//     This is highly recommended.
//   - Set IgnoreRaw to prevent inclusion of raw HTML.
//     This eliminates any raw HTML usage,
//     so the output is guaranteed to use a fixed set of elements
//     and avoid parse errors.
//     However, this can lead to content being omitted from the document entirely,
//     which may be surprising to end-users for legitimate use cases.
//   - FilterTag can be used to prevent some tags from being used
//     while still showing the source text.
//     Note that this does not prevent parse errors.
//     For untrusted inputs, this technique should be combined with sanitization.
//
// [Cross-Site Scripting (XSS)]: https://owasp.org/www-community/attacks/xss/
// [HTML parse errors]: https://html.spec.whatwg.org/multipage/parsing.html#parse-errors
// [raw HTML]: https://spec.commonmark.org/0.31.2/#raw-html
type HTMLRenderer struct {
	// SoftBreakBehavior determines how soft line breaks are rendered.
	SoftBreakBehavior SoftBreakBehavior
	// If IgnoreRaw is true, the renderer skips any HTML blocks or raw HTML.
	IgnoreRaw bool
	// FilterTag is a predicate function
	// that reports whether an element with the given lowercased tag name
	// should have its leading angle bracket escaped.
	// If FilterTag is nil, then no filtering will occur.
	//
	// FilterTag functions must not modify the byte slice
	// nor retain the slice after the function returns.
	FilterTag func(tag []byte) bool
}

// RenderHTML writes a parsed document to the given writer as HTML
// using the default options for [HTMLRenderer].
func RenderHTML(w io.Writer, doc *Document) error {
	return new(HTMLRenderer).Render(w, doc)
}

// Render writes a parsed document to the given writer as HTML.
func (r *HTMLRenderer) Render(w io.Writer, doc *Document) error {
	if _, err := w.Write(r.AppendBlock(nil, &doc.Block)); err != nil {
		return fmt.Errorf("render markdown to html: %w", err)
	}
	return nil
}

// AppendBlock appends the rendered HTML of a parsed block to dst
// and returns the resulting byte slice.
// Blocks of custom kinds render as their children.
func (r *HTMLRenderer) AppendBlock(dst []byte, block *Block) []byte {
	state := &renderState{
		HTMLRenderer: r,
		dst:          dst,
		start:        len(dst),
	}
	state.block(block, false)
	return state.dst
}

type renderState struct {
	*HTMLRenderer
	dst      []byte
	start    int
	lowerBuf []byte
}

// cr starts a new line unless the output is already at the start of one.
func (r *renderState) cr() {
	if len(r.dst) > r.start && r.dst[len(r.dst)-1] != '\n' {
		r.dst = append(r.dst, '\n')
	}
}

func (r *renderState) openTagAttr(name atom.Atom) {
	start := len(r.dst)
	r.dst = append(r.dst, '<')
	r.dst = append(r.dst, name.String()...)
	if r.FilterTag != nil && r.FilterTag(r.dst[start+1:]) {
		r.dst = r.dst[:start]
		r.dst = append(r.dst, "&lt;"...)
		r.dst = append(r.dst, name.String()...)
	}
}

func (r *renderState) openTag(name atom.Atom) {
	r.openTagAttr(name)
	r.dst = append(r.dst, '>')
}

func (r *renderState) closeTag(name atom.Atom) {
	start := len(r.dst)
	r.dst = append(r.dst, "</"...)
	r.dst = append(r.dst, name.String()...)
	if r.FilterTag != nil && r.FilterTag(r.dst[start+2:]) {
		r.dst = r.dst[:start]
		r.dst = append(r.dst, "&lt;/"...)
		r.dst = append(r.dst, name.String()...)
	}
	r.dst = append(r.dst, '>')
}

func (r *renderState) attr(name, value string) {
	r.dst = append(r.dst, ' ')
	r.dst = append(r.dst, name...)
	r.dst = append(r.dst, `="`...)
	r.dst = appendEscaped(r.dst, value)
	r.dst = append(r.dst, '"')
}

func (r *renderState) block(block *Block, tight bool) {
	switch block.Kind() {
	case ParagraphKind:
		if tight {
			r.inlines(block.inlineChildren)
			return
		}
		r.cr()
		r.openTag(atom.P)
		r.inlines(block.inlineChildren)
		r.closeTag(atom.P)
		r.cr()
	case ThematicBreakKind:
		r.cr()
		r.openTagAttr(atom.Hr)
		r.dst = append(r.dst, " />"...)
		r.cr()
	case HeadingKind:
		tagName := headingTags[min(max(block.HeadingLevel(), 1), len(headingTags))-1]
		r.cr()
		r.openTag(tagName)
		r.inlines(block.inlineChildren)
		r.closeTag(tagName)
		r.cr()
	case IndentedCodeBlockKind, FencedCodeBlockKind:
		r.cr()
		r.openTag(atom.Pre)
		r.openTagAttr(atom.Code)
		if words := strings.Fields(block.Info()); len(words) > 0 {
			r.attr("class", "language-"+words[0])
		}
		r.dst = append(r.dst, '>')
		r.dst = appendEscaped(r.dst, block.Literal())
		r.closeTag(atom.Code)
		r.closeTag(atom.Pre)
		r.cr()
	case HTMLBlockKind:
		if r.IgnoreRaw {
			return
		}
		r.cr()
		r.raw(block.Literal())
		r.cr()
	case BlockQuoteKind:
		r.cr()
		r.openTag(atom.Blockquote)
		r.cr()
		r.blocks(block.children, false)
		r.cr()
		r.closeTag(atom.Blockquote)
		r.cr()
	case ListKind:
		tagName := atom.Ul
		if block.IsOrderedList() {
			tagName = atom.Ol
		}
		r.cr()
		r.openTagAttr(tagName)
		if n := block.ListStart(); block.IsOrderedList() && n != 1 {
			r.dst = append(r.dst, ` start="`...)
			r.dst = strconv.AppendInt(r.dst, int64(n), 10)
			r.dst = append(r.dst, '"')
		}
		r.dst = append(r.dst, '>')
		r.cr()
		r.blocks(block.children, block.IsTightList())
		r.cr()
		r.closeTag(tagName)
		r.cr()
	case ListItemKind:
		r.openTag(atom.Li)
		r.blocks(block.children, tight)
		r.closeTag(atom.Li)
		r.cr()
	case LinkReferenceDefinitionKind:
		// Definitions produce no output.
	default:
		r.blocks(block.children, tight)
		r.inlines(block.inlineChildren)
	}
}

func (r *renderState) blocks(blocks []*Block, tight bool) {
	for _, b := range blocks {
		r.block(b, tight)
	}
}

var headingTags = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func (r *renderState) inlines(inlines []*Inline) {
	for _, inline := range inlines {
		r.inline(inline)
	}
}

func (r *renderState) inline(inline *Inline) {
	const hardLineBreak = "<br />\n"
	switch inline.Kind() {
	case TextKind:
		r.dst = appendEscaped(r.dst, inline.Text())
	case RawHTMLKind:
		if !r.IgnoreRaw {
			r.raw(inline.Text())
		}
	case SoftLineBreakKind:
		switch r.SoftBreakBehavior {
		case SoftBreakHarden:
			r.dst = append(r.dst, hardLineBreak...)
		case SoftBreakSpace:
			r.dst = append(r.dst, ' ')
		default:
			r.dst = append(r.dst, '\n')
		}
	case HardLineBreakKind:
		r.dst = append(r.dst, hardLineBreak...)
	case EmphasisKind:
		r.openTag(atom.Em)
		r.inlines(inline.children)
		r.closeTag(atom.Em)
	case StrongKind:
		r.openTag(atom.Strong)
		r.inlines(inline.children)
		r.closeTag(atom.Strong)
	case CodeSpanKind:
		r.openTag(atom.Code)
		r.dst = appendEscaped(r.dst, inline.Text())
		r.closeTag(atom.Code)
	case LinkKind:
		r.openTagAttr(atom.A)
		r.attr("href", NormalizeURI(inline.Destination()))
		if inline.TitlePresent() {
			r.attr("title", inline.Title())
		}
		r.dst = append(r.dst, '>')
		r.inlines(inline.children)
		r.closeTag(atom.A)
	case ImageKind:
		r.openTagAttr(atom.Img)
		r.attr("src", NormalizeURI(inline.Destination()))
		r.attr("alt", altText(inline))
		if inline.TitlePresent() {
			r.attr("title", inline.Title())
		}
		r.dst = append(r.dst, " />"...)
	case AutolinkKind:
		r.openTagAttr(atom.A)
		r.attr("href", NormalizeURI(inline.Destination()))
		r.dst = append(r.dst, '>')
		r.dst = appendEscaped(r.dst, inline.Text())
		r.closeTag(atom.A)
	default:
		r.inlines(inline.children)
	}
}

func (r *renderState) raw(s string) {
	if r.FilterTag == nil {
		r.dst = append(r.dst, s...)
	} else {
		r.filterRaw(s)
	}
}

// filterRaw performs the tag filtering
// described in https://github.github.com/gfm/#disallowed-raw-html-extension-.
//
// It cannot use a conventional HTML parser,
// since raw HTML in Markdown may be incomplete or start in the middle of a tag.
func (r *renderState) filterRaw(rawHTML string) {
	const (
		copyState = iota
		commentState
		piState
		declState
		cdataState
	)
	state := copyState
	copyStart := 0
	for i := 0; i < len(rawHTML); {
		switch state {
		case copyState:
			if rawHTML[i] != '<' {
				i++
				continue
			}
			rest := rawHTML[i:]
			switch {
			case strings.HasPrefix(rest, "<![CDATA["):
				state = cdataState
				i += len("<![CDATA[")
			case strings.HasPrefix(rest, "<!--"):
				state = commentState
				i += len("<!--")
			case strings.HasPrefix(rest, "<?"):
				state = piState
				i += len("<?")
			case len(rest) >= 3 && rest[1] == '!' && isASCIILetter(rest[2]):
				state = declState
				i += len("<!x")
			default:
				tagNameStart := i + 1
				if tagNameStart < len(rawHTML) && rawHTML[tagNameStart] == '/' {
					tagNameStart++
				}
				tagNameEnd := tagNameStart
				for tagNameEnd < len(rawHTML) && (isASCIILetter(rawHTML[tagNameEnd]) || isASCIIDigit(rawHTML[tagNameEnd]) || rawHTML[tagNameEnd] == '-') {
					tagNameEnd++
				}
				tagName := maybeLower(rawHTML[tagNameStart:tagNameEnd], &r.lowerBuf)
				if len(tagName) > 0 && r.FilterTag(tagName) {
					r.dst = append(r.dst, rawHTML[copyStart:i]...)
					r.dst = append(r.dst, "&lt;"...)
					copyStart = i + 1
				}
				i = max(tagNameEnd, i+1)
			}
		case commentState:
			if strings.HasPrefix(rawHTML[i:], "-->") {
				state = copyState
				i += len("-->")
			} else {
				i++
			}
		case piState:
			if strings.HasPrefix(rawHTML[i:], "?>") {
				state = copyState
				i += len("?>")
			} else {
				i++
			}
		case declState:
			if rawHTML[i] == '>' {
				state = copyState
			}
			i++
		case cdataState:
			if strings.HasPrefix(rawHTML[i:], "]]>") {
				state = copyState
				i += len("]]>")
			} else {
				i++
			}
		default:
			panic("unreachable")
		}
	}
	r.dst = append(r.dst, rawHTML[copyStart:]...)
}

// altText returns the plain text content of an image description.
func altText(parent *Inline) string {
	sb := new(strings.Builder)
	stack := []*Inline{parent}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch curr.Kind() {
		case TextKind, CodeSpanKind:
			sb.WriteString(curr.Text())
		case AutolinkKind:
			sb.WriteString(curr.Text())
		case SoftLineBreakKind, HardLineBreakKind:
			sb.WriteByte(' ')
		case RawHTMLKind:
			// Ignore.
		default:
			for i := len(curr.children) - 1; i >= 0; i-- {
				stack = append(stack, curr.children[i])
			}
		}
	}
	return sb.String()
}

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// appendEscaped appends the HTML-escaped version of s to dst.
func appendEscaped(dst []byte, s string) []byte {
	if !strings.ContainsAny(s, `&<>"`) {
		return append(dst, s...)
	}
	return append(dst, htmlEscaper.Replace([]byte(s))...)
}

func maybeLower(x string, buf *[]byte) []byte {
	*buf = append((*buf)[:0], x...)
	for i, b := range *buf {
		if 'A' <= b && b <= 'Z' {
			(*buf)[i] = b - 'A' + 'a'
		}
	}
	return *buf
}

// FilterTagGFM performs the same tag filtering as the
// GitHub Flavored Markdown [tagfilter extension].
// It is suitable for use as the FilterTag field in [HTMLRenderer].
//
// [tagfilter extension]: https://github.github.com/gfm/#disallowed-raw-html-extension-
func FilterTagGFM(tag []byte) bool {
	switch atom.Lookup(tag) {
	case atom.Title, atom.Textarea, atom.Style, atom.Xmp, atom.Iframe,
		atom.Noembed, atom.Noframes, atom.Script, atom.Plaintext:
		return true
	default:
		return false
	}
}

// SoftBreakBehavior is an enumeration of rendering styles for [soft line breaks].
//
// [soft line breaks]: https://spec.commonmark.org/0.31.2/#soft-line-breaks
type SoftBreakBehavior int

const (
	// SoftBreakPreserve indicates that a soft line break should be rendered as-is.
	SoftBreakPreserve SoftBreakBehavior = iota
	// SoftBreakSpace indicates that a soft line break should be rendered as a space.
	SoftBreakSpace
	// SoftBreakHarden indicates that a soft line break should be rendered as a hard line break.
	SoftBreakHarden
)

// String returns the name of the behavior as used in configuration files.
func (b SoftBreakBehavior) String() string {
	switch b {
	case SoftBreakPreserve:
		return "preserve"
	case SoftBreakSpace:
		return "space"
	case SoftBreakHarden:
		return "harden"
	default:
		return "SoftBreakBehavior(" + strconv.Itoa(int(b)) + ")"
	}
}

// NormalizeURI percent-encodes any characters in a string
// that are not reserved or unreserved URI characters.
// This is commonly used for transforming CommonMark link destinations
// into strings suitable for href or src attributes.
func NormalizeURI(s string) string {
	// RFC 3986 reserved and unreserved characters.
	const safeSet = `;/?:@&=+$,-_.!~*'()#`

	sb := new(strings.Builder)
	sb.Grow(len(s))
	skip := 0
	var buf [utf8.UTFMax]byte
	for i, c := range s {
		if skip > 0 {
			skip--
			sb.WriteRune(c)
			continue
		}
		switch {
		case c == '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				skip = 2
				sb.WriteByte('%')
			} else {
				sb.WriteString("%25")
			}
		case (c < 0x80 && (isASCIILetter(byte(c)) || isASCIIDigit(byte(c)))) || strings.ContainsRune(safeSet, c):
			sb.WriteRune(c)
		default:
			n := utf8.EncodeRune(buf[:], c)
			for _, b := range buf[:n] {
				sb.WriteByte('%')
				sb.WriteByte(urlHexDigit(b >> 4))
				sb.WriteByte(urlHexDigit(b & 0x0f))
			}
		}
	}
	return sb.String()
}

func isHex(c byte) bool {
	return 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F' || isASCIIDigit(c)
}

func urlHexDigit(x byte) byte {
	switch {
	case x < 0xa:
		return '0' + x
	case x < 0x10:
		return 'A' + x - 0xa
	default:
		panic("out of bounds")
	}
}
