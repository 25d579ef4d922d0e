/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dialogue

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"eushlator/internal/domain"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed translations.schema.json
var translationsSchema []byte

var translationsSchemaLoader = gojsonschema.NewBytesLoader(translationsSchema)

// TranslationSet is the translation stage output for one scene.
type TranslationSet struct {
	Translations []domain.TranslatedChunk `yaml:"translations"`
}

// ByID indexes the set by chunk id. Duplicate ids are an error.
func (s TranslationSet) ByID() (map[int]domain.TranslatedChunk, error) {
	out := make(map[int]domain.TranslatedChunk, len(s.Translations))
	for _, t := range s.Translations {
		if _, dup := out[t.ID]; dup {
			return nil, fmt.Errorf("duplicate translation id %d", t.ID)
		}
		out[t.ID] = t
	}
	return out, nil
}

// ValidateTranslations checks a translation document against the translation schema.
func ValidateTranslations(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse translations: %w", err)
	}
	if doc == nil {
		return errors.New("translations document is empty")
	}
	result, err := gojsonschema.Validate(translationsSchemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate translations: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("translations do not match schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// ParseTranslations validates and decodes a translation document.
func ParseTranslations(data []byte) (TranslationSet, error) {
	if err := ValidateTranslations(data); err != nil {
		return TranslationSet{}, err
	}
	var s TranslationSet
	if err := yaml.Unmarshal(data, &s); err != nil {
		return TranslationSet{}, fmt.Errorf("parse translations: %w", err)
	}
	return s, nil
}

// LoadTranslations reads a per-scene translation file.
func LoadTranslations(path string) (TranslationSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TranslationSet{}, err
	}
	s, err := ParseTranslations(data)
	if err != nil {
		return TranslationSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// MarshalTranslations encodes a set with literal block text, in the same layout it is read.
func MarshalTranslations(s TranslationSet) ([]byte, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, t := range s.Translations {
		item := &yaml.Node{Kind: yaml.MappingNode}
		item.Content = append(item.Content, strNode("id"), intNode(t.ID))
		if t.Source != "" {
			item.Content = append(item.Content, strNode("input"), literalNode(t.Source))
		}
		item.Content = append(item.Content, strNode("text"), literalNode(t.Text))
		seq.Content = append(seq.Content, item)
	}
	root := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{strNode("translations"), seq}}
	return encode(root)
}
