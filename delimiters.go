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
	"fmt"
	"sort"
)

// ErrDelimiterConflict is returned (wrapped) by [*DelimiterTable.Register]
// when a processor cannot be added without ambiguity.
var ErrDelimiterConflict = errors.New("delimiter processor conflict")

// DelimiterRun describes a run of delimiter characters
// at the time a [DelimiterProcessor] is consulted.
type DelimiterRun struct {
	// Char is the delimiter character.
	Char byte
	// Length is the number of characters not yet consumed by earlier matches.
	Length int
	// OriginalLength is the number of characters in the run when it was scanned.
	OriginalLength int
	// CanOpen and CanClose report the run's flanking classification.
	CanOpen  bool
	CanClose bool
}

// A DelimiterProcessor turns matched delimiter runs into inline nodes.
// Processors are shared between concurrent parses
// and must not modify their own state in Process.
type DelimiterProcessor interface {
	// Delimiters returns the opening and closing characters.
	// They may be equal.
	Delimiters() (open, close byte)
	// MinLength returns the minimum length of a run
	// that this processor handles.
	MinLength() int
	// Process inspects an opening and a closing run.
	// It returns the number of characters to consume from each run
	// and the node that will contain the inlines between the runs.
	// Returning zero rejects the match.
	Process(opener, closer DelimiterRun) (n int, container *Inline)
}

// A DelimiterTable maps delimiter characters to [DelimiterProcessor] values.
// A table must not be modified once it is used by a [Parser].
// The zero value is an empty table.
type DelimiterTable struct {
	// processors holds every processor for a character
	// in order of decreasing minimum length.
	processors map[byte][]DelimiterProcessor
}

// NewDelimiterTable returns a table with the given processors registered.
func NewDelimiterTable(processors ...DelimiterProcessor) (*DelimiterTable, error) {
	t := new(DelimiterTable)
	for _, p := range processors {
		if err := t.Register(p); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// DefaultDelimiterTable returns a new table
// with CommonMark emphasis registered for '*' and '_'.
func DefaultDelimiterTable() *DelimiterTable {
	t, err := NewDelimiterTable(EmphasisProcessor('*'), EmphasisProcessor('_'))
	if err != nil {
		panic(err)
	}
	return t
}

// Register adds a processor to the table.
//
// Several processors may share a character
// as long as each declares a different minimum length
// and both of its delimiters are the same character.
// A processor with distinct opening and closing characters
// must be the only processor for each of them.
// Register returns an error wrapping [ErrDelimiterConflict]
// and leaves the table unchanged if these rules would be broken.
func (t *DelimiterTable) Register(p DelimiterProcessor) error {
	open, close := p.Delimiters()
	if open != close {
		for _, c := range []byte{open, close} {
			if len(t.processors[c]) > 0 {
				return fmt.Errorf("register processor for %q: character already in use: %w", c, ErrDelimiterConflict)
			}
		}
		t.put(open, []DelimiterProcessor{p})
		t.put(close, []DelimiterProcessor{p})
		return nil
	}

	existing := t.processors[open]
	if len(existing) > 0 {
		if o, c := existing[0].Delimiters(); o != c {
			return fmt.Errorf("register processor for %q: character used by %q...%q processor: %w", open, o, c, ErrDelimiterConflict)
		}
	}
	minLength := p.MinLength()
	for _, q := range existing {
		if q.MinLength() == minLength {
			return fmt.Errorf("register processor for %q with minimum length %d: %w", open, minLength, ErrDelimiterConflict)
		}
	}
	list := make([]DelimiterProcessor, 0, len(existing)+1)
	list = append(list, existing...)
	list = append(list, p)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].MinLength() > list[j].MinLength()
	})
	t.put(open, list)
	return nil
}

func (t *DelimiterTable) put(c byte, list []DelimiterProcessor) {
	if t.processors == nil {
		t.processors = make(map[byte][]DelimiterProcessor)
	}
	t.processors[c] = list
}

// Processor returns the processor that handles a run of length characters c.
// It picks the processor with the largest minimum length
// that does not exceed length.
// If every processor requires a longer run,
// the processor with the largest minimum length is returned.
// Processor returns nil if no processor is registered for c.
func (t *DelimiterTable) Processor(c byte, length int) DelimiterProcessor {
	if t == nil {
		return nil
	}
	list := t.processors[c]
	if len(list) == 0 {
		return nil
	}
	for _, p := range list {
		if p.MinLength() <= length {
			return p
		}
	}
	return list[0]
}

// has reports whether c has any registered processors.
func (t *DelimiterTable) has(c byte) bool {
	return t != nil && len(t.processors[c]) > 0
}

// minLength returns the smallest run length that any processor for c accepts.
func (t *DelimiterTable) minLength(c byte) int {
	list := t.processors[c]
	return list[len(list)-1].MinLength()
}

// delimiters returns the opening and closing characters
// of the processors registered for c.
func (t *DelimiterTable) delimiters(c byte) (open, close byte) {
	return t.processors[c][0].Delimiters()
}

// EmphasisProcessor is a [DelimiterProcessor]
// that implements CommonMark [emphasis and strong emphasis]
// for a single character, usually '*' or '_'.
//
// [emphasis and strong emphasis]: https://spec.commonmark.org/0.31.2/#emphasis-and-strong-emphasis
type EmphasisProcessor byte

// Delimiters returns the processor's character as both delimiters.
func (p EmphasisProcessor) Delimiters() (open, close byte) {
	return byte(p), byte(p)
}

// MinLength returns 1.
func (p EmphasisProcessor) MinLength() int {
	return 1
}

// Process matches two characters as strong emphasis
// when both runs have at least two left, and one character as emphasis otherwise.
func (p EmphasisProcessor) Process(opener, closer DelimiterRun) (n int, container *Inline) {
	// Rule 9 and 10: if either run can both open and close,
	// the sum of the original lengths must not be a multiple of 3
	// unless both lengths are.
	if (opener.CanClose || closer.CanOpen) &&
		closer.OriginalLength%3 != 0 &&
		(opener.OriginalLength+closer.OriginalLength)%3 == 0 {
		return 0, nil
	}
	if opener.Length >= 2 && closer.Length >= 2 {
		return 2, &Inline{kind: StrongKind, delim: byte(p)}
	}
	return 1, &Inline{kind: EmphasisKind, delim: byte(p)}
}
