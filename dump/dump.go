// Copyright 2024 Ross Light
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

// Package dump provides a function to write a parsed Markdown document
// as an indented tree, one node per line.
// The output is deterministic and intended for tests and debugging.
package dump

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"zombiezen.com/go/mdparse"
)

// Options is the set of parameters to [Options.Tree].
type Options struct {
	// If Lines is true, each block is annotated with its line range
	// as "[start-end]" using zero-based line indices.
	Lines bool
}

// Tree writes the given document to w as an indented tree
// using the default options.
func Tree(w io.Writer, doc *mdparse.Document) error {
	return new(Options).Tree(w, doc)
}

// Tree writes the given document to w as an indented tree.
// Every node appears on its own line,
// indented by two spaces for each level of nesting.
func (opts *Options) Tree(w io.Writer, doc *mdparse.Document) error {
	ww := &errWriter{w: w}
	mdparse.Walk(doc.AsNode(), &mdparse.WalkOptions{
		Pre: func(c *mdparse.Cursor) bool {
			ww.WriteString(strings.Repeat("  ", c.Depth()))
			if b := c.Node().Block(); b != nil {
				opts.writeBlock(ww, b)
			} else {
				writeInline(ww, c.Node().Inline())
			}
			ww.WriteString("\n")
			return ww.err == nil
		},
	})
	if ww.err != nil {
		return fmt.Errorf("dump markdown tree: %w", ww.err)
	}
	return nil
}

func (opts *Options) writeBlock(w *errWriter, b *mdparse.Block) {
	w.WriteString(b.Kind().String())
	if opts.Lines {
		w.WriteString(" [")
		w.WriteString(strconv.Itoa(b.StartLine()))
		w.WriteString("-")
		w.WriteString(strconv.Itoa(b.EndLine()))
		w.WriteString("]")
	}
	switch b.Kind() {
	case mdparse.HeadingKind:
		w.WriteString(" level=")
		w.WriteString(strconv.Itoa(b.HeadingLevel()))
	case mdparse.FencedCodeBlockKind:
		if info := b.Info(); info != "" {
			w.WriteString(" info=")
			w.WriteString(strconv.Quote(info))
		}
		w.WriteString(" ")
		w.WriteString(strconv.Quote(b.Literal()))
	case mdparse.IndentedCodeBlockKind, mdparse.HTMLBlockKind:
		w.WriteString(" ")
		w.WriteString(strconv.Quote(b.Literal()))
	case mdparse.ListKind:
		if b.IsOrderedList() {
			w.WriteString(" ordered start=")
			w.WriteString(strconv.Itoa(b.ListStart()))
		} else {
			w.WriteString(" bullet")
		}
		w.WriteString(" marker=")
		w.WriteString(strconv.QuoteRune(rune(b.ListMarker())))
		if b.IsTightList() {
			w.WriteString(" tight")
		} else {
			w.WriteString(" loose")
		}
	case mdparse.LinkReferenceDefinitionKind:
		def := b.LinkDefinition()
		w.WriteString(" label=")
		w.WriteString(strconv.Quote(def.Label))
		writeDestination(w, def.Destination, def.Title, def.TitlePresent)
	}
}

func writeInline(w *errWriter, inline *mdparse.Inline) {
	w.WriteString(inline.Kind().String())
	switch inline.Kind() {
	case mdparse.TextKind, mdparse.CodeSpanKind, mdparse.RawHTMLKind:
		w.WriteString(" ")
		w.WriteString(strconv.Quote(inline.Text()))
	case mdparse.EmphasisKind, mdparse.StrongKind:
		w.WriteString(" ")
		w.WriteString(strconv.QuoteRune(rune(inline.Delimiter())))
	case mdparse.LinkKind, mdparse.ImageKind:
		writeDestination(w, inline.Destination(), inline.Title(), inline.TitlePresent())
	case mdparse.AutolinkKind:
		writeDestination(w, inline.Destination(), "", false)
	}
}

func writeDestination(w *errWriter, dest, title string, titlePresent bool) {
	w.WriteString(" destination=")
	w.WriteString(strconv.Quote(dest))
	if titlePresent {
		w.WriteString(" title=")
		w.WriteString(strconv.Quote(title))
	}
}

type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) WriteString(s string) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = io.WriteString(w.w, s)
	return n, w.err
}
