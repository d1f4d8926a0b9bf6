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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"", ""},
		{" \t\n", ""},
		{"foo", "foo"},
		{"FOO", "foo"},
		{"  Foo \n\t bar  ", "foo bar"},
		{"ΑΓΩ", "αγω"},
		{"ẞ", "ss"},
		{"Straße", "strasse"},
		{" x", " x"},
	}
	for _, test := range tests {
		if got := NormalizeLabel(test.label); got != test.want {
			t.Errorf("NormalizeLabel(%q) = %q; want %q", test.label, got, test.want)
		}
	}
}

func TestReferenceMap(t *testing.T) {
	m := make(ReferenceMap)
	first := LinkDefinition{Label: "Foo", Destination: "/first"}
	second := LinkDefinition{Label: "FOO", Destination: "/second", Title: "x", TitlePresent: true}

	if !m.Add(first.Label, first) {
		t.Errorf("Add(%q, ...) = false; want true", first.Label)
	}
	if m.Add(second.Label, second) {
		t.Errorf("Add(%q, ...) = true; want false (already defined)", second.Label)
	}
	if m.Add(" \n", LinkDefinition{Destination: "/blank"}) {
		t.Error("Add with blank label = true; want false")
	}
	if got, want := m.Len(), 1; got != want {
		t.Errorf("Len() = %d; want %d", got, want)
	}

	for _, label := range []string{"foo", "FOO", " foo ", "fOo"} {
		got, ok := m.Get(label)
		if !ok {
			t.Errorf("Get(%q) not found", label)
			continue
		}
		if diff := cmp.Diff(first, got); diff != "" {
			t.Errorf("Get(%q) (-want +got):\n%s", label, diff)
		}
	}
	if _, ok := m.Get("bar"); ok {
		t.Error("Get(\"bar\") found a definition")
	}
	if _, ok := m.Get(""); ok {
		t.Error("Get(\"\") found a definition")
	}
}

func TestReferenceMapCaseFolding(t *testing.T) {
	m := make(ReferenceMap)
	m.Add("ẞ", LinkDefinition{Destination: "/url"})
	for _, label := range []string{"SS", "ss", "ß"} {
		if _, ok := m.Get(label); !ok {
			t.Errorf("Get(%q) not found after Add(\"ẞ\")", label)
		}
	}
}
