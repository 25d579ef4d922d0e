/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package splice rewrites dialogue boxes inside a working scene script.
//
// Box offsets are relative to the end of the previous box. The splicer keeps a
// cursor at the last line of the most recent replacement, so each offset is
// resolved against the script as it stands after every earlier splice.
package splice

import (
	"errors"
	"fmt"

	"eushlator/internal/domain"
	"eushlator/internal/script"
)

var (
	// ErrSlotOutOfRange is returned when a box cannot be found at its offset.
	ErrSlotOutOfRange = errors.New("box slot out of range")
	// ErrOverlayLength is returned when an edited script does not line up with the working script.
	ErrOverlayLength = errors.New("edited script line count differs from working script")
)

// Slot is the location of one box in the working script. The start marker is
// at Start and the body spans [Start+1, End).
type Slot struct {
	Start int
	End   int
}

// BodyLen is the number of body lines in the slot.
func (s Slot) BodyLen() int { return s.End - s.Start - 1 }

// Splicer owns the working copy of one scene script.
type Splicer struct {
	scene string
	lines []string
}

// New returns a splicer over a private copy of lines.
func New(scene string, lines []string) *Splicer {
	return &Splicer{scene: scene, lines: script.Clone(lines)}
}

// Lines returns the current working script. The slice is owned by the splicer
// and changes with the next splice.
func (s *Splicer) Lines() []string { return s.lines }

// Scene returns the scene id the splicer was created for.
func (s *Splicer) Scene() string { return s.scene }

// Locate finds the slot of box relative to cursor.
func (s *Splicer) Locate(cursor int, box domain.Box) (Slot, error) {
	start := cursor + box.Offset
	if start < 0 || start >= len(s.lines) {
		return Slot{}, fmt.Errorf("%w: box %d at line %d of %d", ErrSlotOutOfRange, box.Index, start, len(s.lines))
	}
	if !script.IsBoxStart(s.lines[start], s.scene) {
		return Slot{}, fmt.Errorf("%w: box %d expected marker at line %d, found %q",
			ErrSlotOutOfRange, box.Index, start, s.lines[start])
	}
	end := start + 1
	for end < len(s.lines) && script.IsTextLine(s.lines[end]) {
		end++
	}
	return Slot{Start: start, End: end}, nil
}

// Replace swaps the body of slot for block and returns the new cursor, which
// is the index of the last line of block (the marker when block is empty).
func (s *Splicer) Replace(slot Slot, block domain.InstructionBlock) int {
	out := make([]string, 0, len(s.lines)-slot.BodyLen()+len(block))
	out = append(out, s.lines[:slot.Start+1]...)
	out = append(out, block...)
	out = append(out, s.lines[slot.End:]...)
	s.lines = out
	return slot.Start + len(block)
}

// BuildFunc produces the replacement for box i once its slot is known. It
// sees the working script before that box is replaced.
type BuildFunc func(i int, box domain.Box, slot Slot) (domain.InstructionBlock, error)

// ApplyFunc replaces boxes in order starting at cursor and returns the cursor
// after the last replacement.
func (s *Splicer) ApplyFunc(boxes []domain.Box, cursor int, build BuildFunc) (int, error) {
	for i, box := range boxes {
		slot, err := s.Locate(cursor, box)
		if err != nil {
			return cursor, err
		}
		block, err := build(i, box, slot)
		if err != nil {
			return cursor, err
		}
		cursor = s.Replace(slot, block)
	}
	return cursor, nil
}

// Apply replaces boxes with prebuilt blocks, one per box.
func (s *Splicer) Apply(boxes []domain.Box, blocks []domain.InstructionBlock, cursor int) (int, error) {
	if len(blocks) != len(boxes) {
		return cursor, fmt.Errorf("splice: %d blocks for %d boxes", len(blocks), len(boxes))
	}
	return s.ApplyFunc(boxes, cursor, func(i int, _ domain.Box, _ Slot) (domain.InstructionBlock, error) {
		return blocks[i], nil
	})
}
