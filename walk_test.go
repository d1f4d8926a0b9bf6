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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWalk(t *testing.T) {
	doc := Parse([]byte("> *a*\n\nb\n"))
	var got []string
	Walk(doc.AsNode(), &WalkOptions{
		Pre: func(c *Cursor) bool {
			got = append(got, fmt.Sprintf("pre %s depth=%d index=%d parent=%v", nodeKind(c.Node()), c.Depth(), c.Index(), c.ParentBlock().Kind()))
			return true
		},
		Post: func(c *Cursor) bool {
			got = append(got, "post "+nodeKind(c.Node()))
			return true
		},
	})
	want := []string{
		"pre Document depth=0 index=-1 parent=BlockKind(0)",
		"pre BlockQuote depth=1 index=0 parent=Document",
		"pre Paragraph depth=2 index=0 parent=BlockQuote",
		"pre Emphasis depth=3 index=0 parent=Paragraph",
		"pre Text depth=4 index=0 parent=Paragraph",
		"post Text",
		"post Emphasis",
		"post Paragraph",
		"post BlockQuote",
		"pre Paragraph depth=1 index=1 parent=Document",
		"pre Text depth=2 index=0 parent=Paragraph",
		"post Text",
		"post Paragraph",
		"post Document",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("visits (-want +got):\n%s", diff)
	}
}

func TestWalkSkipAndStop(t *testing.T) {
	doc := Parse([]byte("> a\n\nb\n\nc\n"))

	var pre []string
	Walk(doc.AsNode(), &WalkOptions{
		Pre: func(c *Cursor) bool {
			pre = append(pre, nodeKind(c.Node()))
			// Skip the contents of block quotes.
			return c.Node().Block().Kind() != BlockQuoteKind
		},
	})
	want := []string{"Document", "BlockQuote", "Paragraph", "Text", "Paragraph", "Text"}
	if diff := cmp.Diff(want, pre); diff != "" {
		t.Errorf("Pre visits with skip (-want +got):\n%s", diff)
	}

	var post []string
	Walk(doc.AsNode(), &WalkOptions{
		Post: func(c *Cursor) bool {
			post = append(post, nodeKind(c.Node()))
			// Stop after the first paragraph outside the block quote.
			return !(c.Node().Block().Kind() == ParagraphKind && c.Depth() == 1)
		},
	})
	want = []string{"Text", "Paragraph", "BlockQuote", "Text", "Paragraph"}
	if diff := cmp.Diff(want, post); diff != "" {
		t.Errorf("Post visits with stop (-want +got):\n%s", diff)
	}
}

func nodeKind(n Node) string {
	if b := n.Block(); b != nil {
		return b.Kind().String()
	}
	return n.Inline().Kind().String()
}
