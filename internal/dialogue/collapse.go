/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package dialogue groups detected boxes into speaker chunks and reads and
// writes the YAML documents exchanged with the translation stage.
package dialogue

import (
	"strings"

	"eushlator/internal/domain"
)

// Collapse merges maximal runs of consecutive boxes with the same speaker.
// Chunk ids are 1-based in scene order; a chunk's text is the newline join of its boxes.
func Collapse(boxes []domain.Box) []domain.Chunk {
	if len(boxes) == 0 {
		return nil
	}
	var chunks []domain.Chunk
	run := []domain.Box{boxes[0]}
	flush := func() {
		members := make([]domain.Box, len(run))
		copy(members, run)
		c := domain.Chunk{ID: len(chunks) + 1, Speaker: run[0].Speaker, Boxes: members}
		c.Text = strings.Join(c.BoxTexts(), "\n")
		chunks = append(chunks, c)
	}
	for _, b := range boxes[1:] {
		if b.Speaker == run[0].Speaker {
			run = append(run, b)
			continue
		}
		flush()
		run = []domain.Box{b}
	}
	flush()
	return chunks
}
