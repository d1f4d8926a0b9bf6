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

// Package spec provides a corpus of CommonMark examples
// with the HTML that the reference implementation renders for them.
package spec

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Example is a single Markdown input and its expected HTML rendering.
type Example struct {
	Markdown string `yaml:"markdown"`
	HTML     string `yaml:"html"`
	// Example is the 1-based index of the example in the corpus.
	Example int    `yaml:"-"`
	Section string `yaml:"section"`
}

//go:embed examples.yaml
var examplesData []byte

// Load returns the examples in the corpus.
func Load() ([]Example, error) {
	var examples []Example
	if err := yaml.Unmarshal(examplesData, &examples); err != nil {
		return nil, fmt.Errorf("load examples: %w", err)
	}
	for i := range examples {
		examples[i].Example = i + 1
	}
	return examples, nil
}
