/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the data model shared by the reconstruction packages.
// Boxes and chunks are derived once per scene and treated as read-only;
// containers and instruction blocks only live for one reinsertion pass.

// Narrator is the speaker name used when no speaker id could be resolved.
const Narrator = "Narrator"

// Box is one source-language dialogue box detected in a decompiled scene script.
type Box struct {
	Index   int      `yaml:"-"`       // 1-based position within the scene
	Speaker string   `yaml:"speaker"` // resolved display name or Narrator
	Offset  int      `yaml:"offset"`  // lines from the end of the previous box to this box's marker
	Text    string   `yaml:"text"`    // rendered display text
	Raw     []string `yaml:"-"`       // verbatim lines, marker first
}

// Chunk is a maximal run of consecutive boxes sharing one speaker.
// Text is the newline join of the member boxes' text.
type Chunk struct {
	ID      int    `yaml:"id"`
	Speaker string `yaml:"speaker"`
	Text    string `yaml:"text"`
	Boxes   []Box  `yaml:"-"`
}

// BoxTexts returns the text of every member box in order.
func (c Chunk) BoxTexts() []string {
	out := make([]string, len(c.Boxes))
	for i, b := range c.Boxes {
		out[i] = b.Text
	}
	return out
}

// TranslatedChunk is the translation stage's output for one chunk.
// Source, when present, is the text the translator was asked to translate.
type TranslatedChunk struct {
	ID     int    `yaml:"id"`
	Source string `yaml:"input,omitempty"`
	Text   string `yaml:"text"`
}

// Container holds the wrapped sub-boxes generated for one original box.
// Each sub-box is a newline-joined group of at most maxLines display lines.
type Container []string

// InstructionBlock is the replacement body for one original box.
type InstructionBlock []string
