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

	"golang.org/x/text/cases"
)

// LinkDefinition is the data of a [link reference definition].
//
// [link reference definition]: https://spec.commonmark.org/0.31.2/#link-reference-definition
type LinkDefinition struct {
	// Label is the label as it appeared in the source,
	// without the surrounding brackets.
	Label        string
	Destination  string
	Title        string
	TitlePresent bool
}

// ReferenceMap is a mapping of [normalized labels] to link definitions.
// The zero value is not usable for [ReferenceMap.Add];
// use make to create one.
//
// [normalized labels]: https://spec.commonmark.org/0.31.2/#matches
type ReferenceMap map[string]LinkDefinition

// Add stores def under the normalized form of label.
// If a definition is already stored under the same normalized label,
// Add keeps the existing definition and returns false:
// the first definition in document order wins.
// Labels that normalize to the empty string are ignored.
func (m ReferenceMap) Add(label string, def LinkDefinition) bool {
	key := NormalizeLabel(label)
	if key == "" {
		return false
	}
	if _, exists := m[key]; exists {
		return false
	}
	m[key] = def
	return true
}

// Get returns the definition whose label matches label.
func (m ReferenceMap) Get(label string) (_ LinkDefinition, ok bool) {
	key := NormalizeLabel(label)
	if key == "" {
		return LinkDefinition{}, false
	}
	def, ok := m[key]
	return def, ok
}

// Len returns the number of definitions in the map.
func (m ReferenceMap) Len() int {
	return len(m)
}

// NormalizeLabel returns the canonical form of a link label:
// surrounding whitespace is trimmed,
// runs of internal whitespace become a single space,
// and the result is Unicode case folded.
func NormalizeLabel(label string) string {
	fields := strings.FieldsFunc(label, isLabelSpace)
	if len(fields) == 0 {
		return ""
	}
	return cases.Fold().String(strings.Join(fields, " "))
}

func isLabelSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
