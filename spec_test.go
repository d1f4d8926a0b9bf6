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
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"zombiezen.com/go/mdparse/internal/normhtml"
	"zombiezen.com/go/mdparse/internal/spec"
)

func TestSpec(t *testing.T) {
	for _, test := range loadTestSuite(t) {
		t.Run(fmt.Sprintf("Example%d", test.Example), func(t *testing.T) {
			got := renderToString(t, test.Markdown)
			want := normhtml.Normalize(test.HTML)
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Section %s\nInput:\n%s\nOutput (-want +got):\n%s", test.Section, test.Markdown, diff)
			}
		})
	}
}

// TestGoldmark checks that the corpus agrees with goldmark,
// so that the expected HTML in the corpus cannot drift from CommonMark.
func TestGoldmark(t *testing.T) {
	for _, test := range loadTestSuite(t) {
		t.Run(fmt.Sprintf("Example%d", test.Example), func(t *testing.T) {
			got := renderGoldmark(t, test.Markdown)
			want := normhtml.Normalize(test.HTML)
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Section %s\nInput:\n%s\nOutput (-want +got):\n%s", test.Section, test.Markdown, diff)
			}
		})
	}
}

func FuzzParse(f *testing.F) {
	for _, test := range loadTestSuite(f) {
		f.Add(test.Markdown)
	}
	f.Add("")
	f.Add("\x00")
	f.Add("[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[[")
	f.Add(strings.Repeat("*a_", 100))
	f.Add(strings.Repeat("> ", 200) + "x")
	f.Add(strings.Repeat("- ", 200) + "x")

	f.Fuzz(func(t *testing.T, markdown string) {
		doc := Parse([]byte(markdown))
		if doc == nil {
			t.Fatal("Parse returned nil")
		}
		first := new(bytes.Buffer)
		if err := RenderHTML(first, doc); err != nil {
			t.Fatal("RenderHTML:", err)
		}

		(&InlineParser{}).Rewrite(doc)
		second := new(bytes.Buffer)
		if err := RenderHTML(second, doc); err != nil {
			t.Fatal("RenderHTML:", err)
		}
		if diff := cmp.Diff(first.String(), second.String()); diff != "" {
			t.Errorf("Rewrite changed parsed document (-before +after):\n%s", diff)
		}
	})
}

func FuzzGoldmark(f *testing.F) {
	if testing.Short() {
		f.Skip("Skipping due to -short")
	}
	for _, test := range loadTestSuite(f) {
		f.Add(test.Markdown)
	}

	f.Fuzz(func(t *testing.T, markdown string) {
		if !utf8.ValidString(markdown) {
			t.Skip("Invalid UTF-8")
		}
		got := renderToString(t, markdown)
		want := renderGoldmark(t, markdown)
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Input:\n%s\nOutput (-goldmark +mdparse):\n%s", markdown, diff)
		}
	})
}

func FuzzCommonMarkJS(f *testing.F) {
	if testing.Short() {
		f.Skip("Skipping due to -short")
	}

	commonmarkExe, err := exec.LookPath("commonmark")
	if err != nil {
		f.Skip(err)
	}
	for _, test := range loadTestSuite(f) {
		f.Add(test.Markdown)
	}

	f.Fuzz(func(t *testing.T, markdown string) {
		if !utf8.ValidString(markdown) {
			t.Skip("Invalid UTF-8")
		}
		got := renderToString(t, markdown)

		c := exec.Command(commonmarkExe)
		c.Stdin = strings.NewReader(markdown)
		c.Stderr = os.Stderr
		rawWant, err := c.Output()
		if err != nil {
			t.Fatal(err)
		}
		want := normhtml.Normalize(string(rawWant))

		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Input:\n%s\nOutput (-want +got):\n%s", markdown, diff)
		}
	})
}

func renderToString(tb testing.TB, markdown string) string {
	tb.Helper()
	doc := Parse([]byte(markdown))
	buf := new(bytes.Buffer)
	if err := RenderHTML(buf, doc); err != nil {
		tb.Error("RenderHTML:", err)
	}
	return normhtml.Normalize(buf.String())
}

func renderGoldmark(tb testing.TB, markdown string) string {
	tb.Helper()
	md := goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	buf := new(bytes.Buffer)
	if err := md.Convert([]byte(markdown), buf); err != nil {
		tb.Fatal("goldmark:", err)
	}
	return normhtml.Normalize(buf.String())
}

func loadTestSuite(tb testing.TB) []spec.Example {
	tb.Helper()
	examples, err := spec.Load()
	if err != nil {
		tb.Fatal(err)
	}
	return examples
}
