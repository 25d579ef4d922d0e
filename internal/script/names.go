/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"eushlator/internal/domain"

	"gopkg.in/yaml.v3"
)

// Name is one entry of the speaker name table.
type Name struct {
	JP string `yaml:"jp"`
	EN string `yaml:"en"`
}

// NameTable maps numeric speaker ids to names. A nil table resolves everything to the narrator.
type NameTable map[int64]Name

// Resolve returns the source-language name for id, or domain.Narrator when unknown.
func (t NameTable) Resolve(id int64) string {
	if n, ok := t[id]; ok && n.JP != "" {
		return n.JP
	}
	return domain.Narrator
}

// ParseNames decodes a name table document of the form `<id>: {jp: ..., en: ...}`.
// Keys are decimal ids; quoted keys are accepted.
func ParseNames(data []byte) (NameTable, error) {
	var raw map[string]Name
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse name table: %w", err)
	}
	t := make(NameTable, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse name table: key %q is not an integer id", k)
		}
		t[id] = v
	}
	return t, nil
}

// LoadNames reads a name table file.
func LoadNames(path string) (NameTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseNames(data)
}
