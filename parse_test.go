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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInsecureCharacters(t *testing.T) {
	const input = "Hello,\x00World"
	const want = "Hello,�World"

	doc := Parse([]byte(input))
	if got := doc.ChildCount(); got != 1 {
		t.Fatalf("doc.ChildCount() = %d; want 1", got)
	}
	para := doc.Child(0).Block()
	if got := para.Kind(); got != ParagraphKind {
		t.Fatalf("doc.Child(0).Kind() = %v; want %v", got, ParagraphKind)
	}
	if got := para.InlineChildCount(); got != 1 {
		t.Fatalf("para.InlineChildCount() = %d; want 1", got)
	}
	inline := para.InlineChild(0)
	if got := inline.Kind(); got != TextKind {
		t.Fatalf("para.InlineChild(0).Kind() = %v; want %v", got, TextKind)
	}
	if got := inline.Text(); got != want {
		t.Errorf("para.InlineChild(0).Text() = %q; want %q", got, want)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		source string
		want   []string
	}{
		{"", nil},
		{"\n", []string{""}},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\nb", []string{"a", "b"}},
		{"a\r\nb\rc\n\nd", []string{"a", "b", "c", "", "d"}},
		{"a\n\r\n", []string{"a", ""}},
	}
	for _, test := range tests {
		got := SplitLines([]byte(test.source))
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("SplitLines(%q) (-want +got):\n%s", test.source, diff)
		}
	}
}

func TestEmptyDocument(t *testing.T) {
	for _, input := range []string{"", "\n\n", "   \t\n"} {
		doc := Parse([]byte(input))
		if got := doc.Kind(); got != DocumentKind {
			t.Errorf("Parse(%q).Kind() = %v; want %v", input, got, DocumentKind)
		}
		if got := doc.ChildCount(); got != 0 {
			t.Errorf("Parse(%q).ChildCount() = %d; want 0", input, got)
		}
		if got := doc.ReferenceMap.Len(); got != 0 {
			t.Errorf("Parse(%q).ReferenceMap.Len() = %d; want 0", input, got)
		}
	}
}

func FuzzBlockParsing(f *testing.F) {
	for _, test := range loadTestSuite(f) {
		f.Add(test.Markdown)
	}

	f.Fuzz(func(t *testing.T, markdown string) {
		lines := SplitLines([]byte(markdown))
		doc := new(Parser).Parse(lines)
		verifyLineRanges(t, &doc.Block, 0, max(len(lines)-1, 0))
		for _, block := range doc.children {
			if block.source != nil {
				t.Errorf("%v block at line %d has unparsed source after Parse", block.Kind(), block.StartLine())
			}
		}
	})
}

// verifyLineRanges checks that every block's lines
// fall inside its parent's lines.
func verifyLineRanges(tb testing.TB, b *Block, parentStart, parentEnd int) {
	tb.Helper()

	start, end := b.StartLine(), b.EndLine()
	if start > end {
		tb.Errorf("%v block: StartLine() = %d > EndLine() = %d", b.Kind(), start, end)
	}
	if start < parentStart || end > parentEnd {
		tb.Errorf("%v block lines [%d, %d] exceed parent lines [%d, %d]", b.Kind(), start, end, parentStart, parentEnd)
	}
	for _, child := range b.children {
		verifyLineRanges(tb, child, start, end)
	}
}

func TestLazyContinuationLineRanges(t *testing.T) {
	doc := Parse([]byte(strings.Join([]string{
		"> a",
		"b",
		"",
		"- c",
		"d",
	}, "\n")))
	if got := doc.ChildCount(); got != 2 {
		t.Fatalf("doc.ChildCount() = %d; want 2", got)
	}
	type lineRange struct{ Start, End int }
	var got []lineRange
	for i := 0; i < doc.ChildCount(); i++ {
		b := doc.Child(i).Block()
		got = append(got, lineRange{b.StartLine(), b.EndLine()})
	}
	want := []lineRange{{0, 1}, {3, 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("block line ranges (-want +got):\n%s", diff)
	}
}
