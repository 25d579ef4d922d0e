/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package replace holds the manual replacement dictionary translators maintain
// for names, symbols and punctuation the machine translation gets wrong.
package replace

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the dictionary's conventional name inside the Utils folder.
const FileName = "manual_replacements_dict.yaml"

// Pair is one literal replacement.
type Pair struct {
	Old string
	New string
}

// Dictionary is an ordered list of replacements. Order matters: a replacement
// can create text that a later one matches. The zero value replaces nothing.
type Dictionary struct {
	pairs []Pair
}

// New builds a dictionary from pairs in order; empty Old strings are dropped.
func New(pairs ...Pair) Dictionary {
	d := Dictionary{}
	for _, p := range pairs {
		if p.Old != "" {
			d.pairs = append(d.pairs, p)
		}
	}
	return d
}

// Len returns the number of replacements.
func (d Dictionary) Len() int { return len(d.pairs) }

// Pairs returns a copy of the replacements in application order.
func (d Dictionary) Pairs() []Pair { return append([]Pair(nil), d.pairs...) }

// Apply performs every replacement in order, literally and case-sensitively.
func (d Dictionary) Apply(s string) string {
	for _, p := range d.pairs {
		s = strings.ReplaceAll(s, p.Old, p.New)
	}
	return s
}

// Parse decodes an `old: new` mapping, keeping document order.
func Parse(data []byte) (Dictionary, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Dictionary{}, fmt.Errorf("parse replacements: %w", err)
	}
	if len(doc.Content) == 0 {
		return Dictionary{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Dictionary{}, errors.New("parse replacements: top level is not a mapping")
	}
	var pairs []Pair
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return Dictionary{}, fmt.Errorf("parse replacements: line %d: entries must be scalar", k.Line)
		}
		pairs = append(pairs, Pair{Old: k.Value, New: v.Value})
	}
	return New(pairs...), nil
}

// Load reads a dictionary file. A missing file yields an empty dictionary.
func Load(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Dictionary{}, nil
	}
	if err != nil {
		return Dictionary{}, err
	}
	d, err := Parse(data)
	if err != nil {
		return Dictionary{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
