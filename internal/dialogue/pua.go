/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dialogue

import (
	"errors"
	"os"
	"sort"
	"strings"
)

// PUAMap maps private-use glyph runs found in scripts to the text sent to translators.
type PUAMap map[string]string

// ParsePUAMap reads `key=value` lines; lines without '=' are ignored and only the
// first '=' separates key from value.
func ParsePUAMap(text string) PUAMap {
	m := PUAMap{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}

// LoadPUAMap reads a PUA map file. A missing file yields an empty map.
func LoadPUAMap(path string) (PUAMap, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return PUAMap{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ParsePUAMap(string(data)), nil
}

// Reverse inverts m and lays overrides on top, giving the map from translator
// text back to the glyphs the script expects.
func (m PUAMap) Reverse(overrides PUAMap) PUAMap {
	out := make(PUAMap, len(m)+len(overrides))
	for k, v := range m {
		out[v] = k
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Apply replaces every key of m in text, longest keys first.
func (m PUAMap) Apply(text string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		text = strings.ReplaceAll(text, k, m[k])
	}
	return text
}

// TranslationInput rebuilds the text a chunk was submitted to the translator as:
// PUA runs substituted and, for interactive providers, the speaker on its own line.
func TranslationInput(speaker, text string, pua PUAMap, withSpeaker bool) string {
	text = pua.Apply(text)
	if withSpeaker {
		return speaker + ":\n" + text
	}
	return text
}
