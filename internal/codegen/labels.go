/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package codegen builds the instruction sequences that display translated
// text in place of the original dialogue boxes.
package codegen

// Instruction sequences that follow the routines opening a new box. The line
// right before each is the routine's label, which the bridge between two
// generated boxes has to call.
var (
	CharacterBoxTemplate = []string{"add (local-int 0) 2 (global-int 6625)"}
	NarratorBoxTemplate  = []string{"u004160D0", "mov (global-int 6622) 1"}
)

// Labels are the per-scene box routine labels. An empty label means the
// routine could not be located unambiguously and the call is left out.
type Labels struct {
	Character string
	Narrator  string
}

// ScoutLabels locates both box routines in a scene script.
func ScoutLabels(script []string) Labels {
	return Labels{
		Character: FindLabelBefore(script, CharacterBoxTemplate),
		Narrator:  FindLabelBefore(script, NarratorBoxTemplate),
	}
}

// FindLabelBefore returns the line immediately before the only occurrence of
// template in script. It returns "" when the template occurs zero or several
// times, or only at the very first line.
func FindLabelBefore(script, template []string) string {
	if len(template) == 0 {
		return ""
	}
	match, count := -1, 0
	for i := 0; i+len(template) <= len(script); i++ {
		if equalAt(script, i, template) {
			match = i
			count++
			if count > 1 {
				return ""
			}
		}
	}
	if count != 1 || match == 0 {
		return ""
	}
	return script[match-1]
}

func equalAt(script []string, at int, template []string) bool {
	for j, t := range template {
		if script[at+j] != t {
			return false
		}
	}
	return true
}
