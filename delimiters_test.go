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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const (
	testSingleTildeKind = FirstCustomInlineKind + iota
	testDoubleTildeKind
	testBraceKind
)

// tildeProcessor handles runs of '~' that are at least minLength long.
type tildeProcessor struct {
	minLength int
	kind      InlineKind
}

func (p tildeProcessor) Delimiters() (open, close byte) { return '~', '~' }
func (p tildeProcessor) MinLength() int                 { return p.minLength }

func (p tildeProcessor) Process(opener, closer DelimiterRun) (int, *Inline) {
	if opener.Length < p.minLength || closer.Length < p.minLength {
		return 0, nil
	}
	return p.minLength, NewInline(p.kind)
}

type braceProcessor struct{}

func (braceProcessor) Delimiters() (open, close byte) { return '{', '}' }
func (braceProcessor) MinLength() int                 { return 1 }

func (braceProcessor) Process(opener, closer DelimiterRun) (int, *Inline) {
	return 1, NewInline(testBraceKind)
}

func TestDelimiterTableRegister(t *testing.T) {
	t.Run("DuplicateMinLength", func(t *testing.T) {
		table := new(DelimiterTable)
		if err := table.Register(tildeProcessor{1, testSingleTildeKind}); err != nil {
			t.Fatal(err)
		}
		err := table.Register(tildeProcessor{1, testDoubleTildeKind})
		if !errors.Is(err, ErrDelimiterConflict) {
			t.Errorf("second Register(...) = %v; want %v", err, ErrDelimiterConflict)
		}
		if got := table.Processor('~', 1).(tildeProcessor).kind; got != testSingleTildeKind {
			t.Errorf("Processor('~', 1) kind = %v after failed Register; want %v", got, testSingleTildeKind)
		}
	})

	t.Run("EmphasisConflict", func(t *testing.T) {
		_, err := NewDelimiterTable(EmphasisProcessor('*'), EmphasisProcessor('*'))
		if !errors.Is(err, ErrDelimiterConflict) {
			t.Errorf("NewDelimiterTable(*, *) error = %v; want %v", err, ErrDelimiterConflict)
		}
	})

	t.Run("AsymmetricSharesCharacter", func(t *testing.T) {
		table, err := NewDelimiterTable(braceProcessor{})
		if err != nil {
			t.Fatal(err)
		}
		if err := table.Register(EmphasisProcessor('}')); !errors.Is(err, ErrDelimiterConflict) {
			t.Errorf("Register(EmphasisProcessor('}')) = %v; want %v", err, ErrDelimiterConflict)
		}
		if err := table.Register(braceProcessor{}); !errors.Is(err, ErrDelimiterConflict) {
			t.Errorf("Register(braceProcessor{}) again = %v; want %v", err, ErrDelimiterConflict)
		}
	})

	t.Run("SymmetricAfterAsymmetric", func(t *testing.T) {
		table, err := NewDelimiterTable(EmphasisProcessor('{'))
		if err != nil {
			t.Fatal(err)
		}
		if err := table.Register(braceProcessor{}); !errors.Is(err, ErrDelimiterConflict) {
			t.Errorf("Register(braceProcessor{}) = %v; want %v", err, ErrDelimiterConflict)
		}
	})
}

func TestDelimiterTableProcessor(t *testing.T) {
	table, err := NewDelimiterTable(
		tildeProcessor{3, testBraceKind},
		tildeProcessor{1, testSingleTildeKind},
		tildeProcessor{2, testDoubleTildeKind},
	)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		length  int
		wantMin int
	}{
		{1, 1},
		{2, 2},
		{3, 3},
		{10, 3},
	}
	for _, test := range tests {
		p := table.Processor('~', test.length)
		if p == nil {
			t.Errorf("Processor('~', %d) = nil", test.length)
			continue
		}
		if got := p.MinLength(); got != test.wantMin {
			t.Errorf("Processor('~', %d).MinLength() = %d; want %d", test.length, got, test.wantMin)
		}
	}
	if p := table.Processor('*', 1); p != nil {
		t.Errorf("Processor('*', 1) = %v; want nil", p)
	}

	// With only longer processors registered,
	// the processor with the largest minimum length is the fallback.
	table, err = NewDelimiterTable(tildeProcessor{2, testDoubleTildeKind}, tildeProcessor{3, testBraceKind})
	if err != nil {
		t.Fatal(err)
	}
	if got := table.Processor('~', 1).MinLength(); got != 3 {
		t.Errorf("Processor('~', 1).MinLength() = %d; want 3", got)
	}
}

func TestStaggeredDelimiters(t *testing.T) {
	table, err := NewDelimiterTable(
		EmphasisProcessor('*'),
		tildeProcessor{1, testSingleTildeKind},
		tildeProcessor{2, testDoubleTildeKind},
		braceProcessor{},
	)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		line string
		want string
	}{
		{"~a~", `CustomInline(256)('~')[Text("a")]`},
		{"~~a~~", `CustomInline(257)('~')[Text("a")]`},
		{"~~a~", `Text("~~a~")`},
		{"{a} *b*", `CustomInline(258)('{')[Text("a")] Text(" ") Emphasis('*')[Text("b")]`},
		{"_a_", `Text("_a_")`},
	}
	for _, test := range tests {
		got := formatInlines(parseInlines([]string{test.line}, table, nil))
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("parseInlines(%q) (-want +got):\n%s", test.line, diff)
		}
	}
}

func TestMinimumRunLength(t *testing.T) {
	table, err := NewDelimiterTable(tildeProcessor{2, testDoubleTildeKind})
	if err != nil {
		t.Fatal(err)
	}
	got := formatInlines(parseInlines([]string{"~a~ ~~b~~"}, table, nil))
	want := `Text("~a~ ") CustomInline(257)('~')[Text("b")]`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
