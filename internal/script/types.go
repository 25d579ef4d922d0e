/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "strings"

// A decompiled scene script is handled as a plain []string: the index of a line
// is its only identity, and every offset in the pipeline is a distance between
// indices. Line pairs an index with its text for reporting.

type Line struct {
	Pos  int
	Text string
}

// TextCommands are the instruction prefixes that make up the body of a dialogue box.
// A trimmed line starting with any of them is box content.
var TextCommands = []string{
	"show-text 0",
	"display-furigana 0",
	"wait-for-input 0",
	"end-text-line 0",
	"concat",
}

// IsTextLine reports whether the line is dialogue box content.
func IsTextLine(line string) bool {
	st := strings.TrimSpace(line)
	for _, cmd := range TextCommands {
		if strings.HasPrefix(st, cmd) {
			return true
		}
	}
	return false
}

// Box start markers.
const (
	MarkerBox       = "u00416120"
	MarkerBoxAlt    = "304"
	MarkerBoxSG     = "call label_00004c70" // only in SG scenes
	showTextCommand = "show-text"
)

// IsSGScene reports whether the scene uses the alternate SG box layout.
func IsSGScene(scene string) bool { return strings.Contains(scene, "SG") }

// IsBoxStart reports whether line is a box start marker in the given scene.
func IsBoxStart(line, scene string) bool { return isBoxStart(strings.TrimSpace(line), scene) }

// isBoxStart reports whether a trimmed line opens a dialogue box in the given scene.
func isBoxStart(st, scene string) bool {
	return st == MarkerBox || st == MarkerBoxAlt || (IsSGScene(scene) && st == MarkerBoxSG)
}

// SplitLines splits script text into lines. A trailing newline does not
// produce an empty last line and CRLF endings are accepted.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// JoinLines is the inverse of SplitLines; the result has no trailing newline.
func JoinLines(lines []string) string { return strings.Join(lines, "\n") }

// Clone returns an independent copy of a script.
func Clone(lines []string) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}
