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
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestSoftBreakBehavior(t *testing.T) {
	tests := []struct {
		name     string
		behavior SoftBreakBehavior
		input    string
		want     string
	}{
		{
			name:     "Preserve",
			behavior: SoftBreakPreserve,
			input:    "Hello\nWorld!",
			want:     "<p>Hello\nWorld!</p>\n",
		},
		{
			name:     "PreserveCRLF",
			behavior: SoftBreakPreserve,
			input:    "Hello\r\nWorld!",
			want:     "<p>Hello\nWorld!</p>\n",
		},
		{
			name:     "Space",
			behavior: SoftBreakSpace,
			input:    "Hello\r\nWorld!",
			want:     "<p>Hello World!</p>\n",
		},
		{
			name:     "Harden",
			behavior: SoftBreakHarden,
			input:    "Hello\r\nWorld!",
			want:     "<p>Hello<br />\nWorld!</p>\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse([]byte(test.input))
			r := &HTMLRenderer{
				SoftBreakBehavior: test.behavior,
			}
			buf := new(bytes.Buffer)
			if err := r.Render(buf, doc); err != nil {
				t.Error("Render:", err)
			}
			if got := buf.String(); got != test.want {
				t.Errorf("output = %q; want %q", got, test.want)
			}
		})
	}
}

func TestSoftBreakBehaviorString(t *testing.T) {
	tests := []struct {
		b    SoftBreakBehavior
		want string
	}{
		{SoftBreakPreserve, "preserve"},
		{SoftBreakSpace, "space"},
		{SoftBreakHarden, "harden"},
		{SoftBreakBehavior(42), "SoftBreakBehavior(42)"},
	}
	for _, test := range tests {
		if got := test.b.String(); got != test.want {
			t.Errorf("SoftBreakBehavior(%d).String() = %q; want %q", int(test.b), got, test.want)
		}
	}
}

func TestHTMLRendererIgnoreRaw(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "NoRaw",
			input: "Hello World!",
			want:  "<p>Hello World!</p>\n",
		},
		{
			name:  "MarkdownStrong",
			input: "Hello **World**!",
			want:  "<p>Hello <strong>World</strong>!</p>\n",
		},
		{
			name:  "HTMLStrong",
			input: "Hello <strong>World</strong>!",
			want:  "<p>Hello World!</p>\n",
		},
		{
			name:  "HTMLBlock",
			input: "<table>\n<tr><td>Hello</td></tr>\n</table>",
			want:  "",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse([]byte(test.input))
			r := &HTMLRenderer{
				IgnoreRaw: true,
			}
			buf := new(bytes.Buffer)
			if err := r.Render(buf, doc); err != nil {
				t.Error("Render:", err)
			}
			if got := buf.String(); got != test.want {
				t.Errorf("output = %q; want %q", got, test.want)
			}
		})
	}
}

func TestHTMLRendererFilter(t *testing.T) {
	const gfmExample = "<strong> <title> <style> <em>\n\n" +
		"<blockquote>\n" +
		"  <xmp> is disallowed.  <XMP> is also disallowed.\n" +
		"</blockquote>\n"

	tests := []struct {
		name      string
		input     string
		filterTag func(tag []byte) bool
		want      string
	}{
		{
			name:      "GFMExample/Default",
			input:     gfmExample,
			filterTag: FilterTagGFM,
			want: "<p><strong> &lt;title> &lt;style> <em></p>\n" +
				"<blockquote>\n" +
				"  &lt;xmp> is disallowed.  &lt;XMP> is also disallowed.\n" +
				"</blockquote>\n",
		},
		{
			name:  "GFMExample/NoFilter",
			input: gfmExample,
			want: "<p><strong> <title> <style> <em></p>\n" +
				"<blockquote>\n" +
				"  <xmp> is disallowed.  <XMP> is also disallowed.\n" +
				"</blockquote>\n",
		},
		{
			name:      "GFMExample/AllowAll",
			input:     gfmExample,
			filterTag: func(tag []byte) bool { return false },
			want: "<p><strong> <title> <style> <em></p>\n" +
				"<blockquote>\n" +
				"  <xmp> is disallowed.  <XMP> is also disallowed.\n" +
				"</blockquote>\n",
		},
		{
			name:      "GFMExample/BlockAll",
			input:     gfmExample,
			filterTag: func(tag []byte) bool { return true },
			want: "&lt;p>&lt;strong> &lt;title> &lt;style> &lt;em>&lt;/p>\n" +
				"&lt;blockquote>\n" +
				"  &lt;xmp> is disallowed.  &lt;XMP> is also disallowed.\n" +
				"&lt;/blockquote>\n",
		},
		{
			name:      "CommentsAreNotFiltered",
			input:     "a <!-- <title> --> <?x <style> ?>",
			filterTag: FilterTagGFM,
			want:      "<p>a <!-- <title> --> <?x <style> ?></p>\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse([]byte(test.input))
			r := &HTMLRenderer{
				FilterTag: test.filterTag,
			}
			buf := new(bytes.Buffer)
			if err := r.Render(buf, doc); err != nil {
				t.Error("Render:", err)
			}
			if got := buf.String(); got != test.want {
				t.Errorf("output = %q; want %q", got, test.want)
			}
		})
	}
}

func TestAppendBlock(t *testing.T) {
	doc := Parse([]byte("# Title\n\n- a\n- b\n"))
	r := new(HTMLRenderer)
	got := string(r.AppendBlock([]byte("x"), doc.Child(1).Block()))
	const want = "x<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n"
	if got != want {
		t.Errorf("AppendBlock(\"x\", list) = %q; want %q", got, want)
	}
}

type failWriter struct{}

var errWriteFailed = errors.New("write failed")

func (failWriter) Write(p []byte) (int, error) {
	return 0, errWriteFailed
}

func TestRenderWriteError(t *testing.T) {
	err := RenderHTML(failWriter{}, Parse([]byte("hi")))
	if !errors.Is(err, errWriteFailed) {
		t.Errorf("RenderHTML(failWriter{}, ...) = %v; want %v", err, errWriteFailed)
	}
}

func TestNormalizeURI(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"", ""},
		{"http://example.com/a?b=c&d#e", "http://example.com/a?b=c&d#e"},
		{"/a b", "/a%20b"},
		{"%41%4f%4F", "%41%4f%4F"},
		{"%zz", "%25zz"},
		{"100%", "100%25"},
		{"ä", "%C3%A4"},
		{"a[b]", "a%5Bb%5D"},
		{"\\", "%5C"},
		{"`", "%60"},
	}
	for _, test := range tests {
		if got := NormalizeURI(test.s); got != test.want {
			t.Errorf("NormalizeURI(%q) = %q; want %q", test.s, got, test.want)
		}
	}
}

func BenchmarkRenderHTML(b *testing.B) {
	input := new(bytes.Buffer)
	testsuite := loadTestSuite(b)
	for i, test := range testsuite {
		if i > 0 {
			input.WriteString("\n\n")
		}
		input.WriteString(test.Markdown)
	}
	doc := Parse(input.Bytes())
	b.ResetTimer()
	b.SetBytes(int64(input.Len()))
	b.ReportMetric(float64(len(testsuite)), "examples/op")

	for i := 0; i < b.N; i++ {
		RenderHTML(io.Discard, doc)
	}
}

func BenchmarkParse(b *testing.B) {
	input := new(bytes.Buffer)
	for i, test := range loadTestSuite(b) {
		if i > 0 {
			input.WriteString("\n\n")
		}
		input.WriteString(test.Markdown)
	}
	b.ResetTimer()
	b.SetBytes(int64(input.Len()))

	for i := 0; i < b.N; i++ {
		Parse(input.Bytes())
	}
}
