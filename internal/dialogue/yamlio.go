/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dialogue

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"eushlator/internal/domain"

	"gopkg.in/yaml.v3"
)

// FullScriptFile is the name of the chunk document covering every scene.
const FullScriptFile = "$$full_script.yaml"

// MarshalBoxes encodes a scene's boxes as an ordered mapping
// `index -> {text, speaker, offset}`.
func MarshalBoxes(boxes []domain.Box) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, b := range boxes {
		val := &yaml.Node{Kind: yaml.MappingNode}
		val.Content = append(val.Content,
			strNode("text"), strNode(b.Text),
			strNode("speaker"), strNode(b.Speaker),
			strNode("offset"), intNode(b.Offset),
		)
		root.Content = append(root.Content, intNode(b.Index), val)
	}
	return encode(root)
}

// UnmarshalBoxes decodes a box document. Entries are ordered by their numeric key,
// whatever order they appear in.
func UnmarshalBoxes(data []byte) ([]domain.Box, error) {
	var raw map[string]domain.Box
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse boxes: %w", err)
	}
	boxes := make([]domain.Box, 0, len(raw))
	for k, b := range raw {
		idx, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("parse boxes: key %q is not a box index", k)
		}
		if b.Offset < 0 {
			return nil, fmt.Errorf("parse boxes: box %d has negative offset %d", idx, b.Offset)
		}
		b.Index = idx
		boxes = append(boxes, b)
	}
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].Index < boxes[j].Index })
	return boxes, nil
}

// LoadBoxes reads a per-scene box file.
func LoadBoxes(path string) ([]domain.Box, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	boxes, err := UnmarshalBoxes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return boxes, nil
}

// FullScript holds the chunks of every scene in document order.
type FullScript struct {
	Scenes []string
	Chunks map[string][]domain.Chunk
}

// Add appends a scene; scenes without chunks are skipped.
func (f *FullScript) Add(scene string, chunks []domain.Chunk) {
	if len(chunks) == 0 {
		return
	}
	if f.Chunks == nil {
		f.Chunks = map[string][]domain.Chunk{}
	}
	if _, ok := f.Chunks[scene]; !ok {
		f.Scenes = append(f.Scenes, scene)
	}
	f.Chunks[scene] = chunks
}

// Scene returns the chunks recorded for scene, if any.
func (f FullScript) Scene(scene string) ([]domain.Chunk, bool) {
	c, ok := f.Chunks[scene]
	return c, ok
}

// MarshalFullScript encodes `scene -> [{speaker, text, id}]` with text in literal block style.
func MarshalFullScript(f FullScript) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, scene := range f.Scenes {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range f.Chunks[scene] {
			item := &yaml.Node{Kind: yaml.MappingNode}
			item.Content = append(item.Content,
				strNode("speaker"), literalNode(c.Speaker),
				strNode("text"), literalNode(c.Text),
				strNode("id"), intNode(c.ID),
			)
			seq.Content = append(seq.Content, item)
		}
		root.Content = append(root.Content, strNode(scene), seq)
	}
	return encode(root)
}

// UnmarshalFullScript decodes a chunk document, keeping scene order.
func UnmarshalFullScript(data []byte) (FullScript, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return FullScript{}, fmt.Errorf("parse full script: %w", err)
	}
	var f FullScript
	if len(doc.Content) == 0 {
		return f, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return f, fmt.Errorf("parse full script: top level is not a mapping")
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		scene := root.Content[i].Value
		var chunks []domain.Chunk
		if err := root.Content[i+1].Decode(&chunks); err != nil {
			return FullScript{}, fmt.Errorf("parse full script: scene %s: %w", scene, err)
		}
		f.Add(scene, chunks)
	}
	return f, nil
}

// LoadFullScript reads the full chunk document.
func LoadFullScript(path string) (FullScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FullScript{}, err
	}
	f, err := UnmarshalFullScript(data)
	if err != nil {
		return FullScript{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intNode(n int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(n)}
}

// literalNode emits s as a `|` block with every physical line trimmed.
func literalNode(s string) *yaml.Node {
	if strings.Contains(s, "\n") {
		parts := strings.Split(s, "\n")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		s = strings.Join(parts, "\n")
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.LiteralStyle, Value: s}
}

func encode(n *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
