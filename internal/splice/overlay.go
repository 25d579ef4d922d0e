/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package splice

import (
	"fmt"
	"strings"

	"eushlator/internal/replace"
	"eushlator/internal/script"
)

const setString = "set-string"

// Overlay takes the set-string lines that differ in edited and copies them
// into a new working script, applying rep to their quoted payload. Both
// scripts must have the same number of lines. The changed lines are returned
// with their positions.
func Overlay(working, edited []string, rep replace.Dictionary) ([]string, []script.Line, error) {
	if len(working) != len(edited) {
		return nil, nil, fmt.Errorf("%w: %d vs %d lines", ErrOverlayLength, len(working), len(edited))
	}
	out := script.Clone(working)
	var changed []script.Line
	for i, e := range edited {
		if e == working[i] || !strings.HasPrefix(strings.TrimSpace(e), setString) {
			continue
		}
		out[i], _ = CorrectString(e, rep)
		changed = append(changed, script.Line{Pos: i, Text: out[i]})
	}
	return out, changed, nil
}

// CorrectString applies rep to the last quoted payload of a set-string line.
// Other lines are returned unchanged. The bool reports whether the payload
// changed.
func CorrectString(line string, rep replace.Dictionary) (string, bool) {
	if !strings.HasPrefix(strings.TrimSpace(line), setString) || strings.Count(line, `"`) < 2 {
		return line, false
	}
	parts := strings.Split(line, `"`)
	payload := parts[len(parts)-2]
	fixed := rep.Apply(payload)
	if fixed == payload {
		return line, false
	}
	parts[len(parts)-2] = fixed
	return strings.Join(parts, `"`), true
}

// CorrectStrings runs CorrectString over a whole script and returns the
// corrected copy and the positions that changed.
func CorrectStrings(lines []string, rep replace.Dictionary) ([]string, []script.Line) {
	out := script.Clone(lines)
	var changed []script.Line
	for i, l := range lines {
		if fixed, ok := CorrectString(l, rep); ok {
			out[i] = fixed
			changed = append(changed, script.Line{Pos: i, Text: fixed})
		}
	}
	return out, changed
}
