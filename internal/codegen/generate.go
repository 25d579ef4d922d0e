/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package codegen

import (
	"strings"
	"unicode"

	"eushlator/internal/domain"
	"eushlator/internal/script"
)

// Mode selects the instruction layout for a box.
type Mode int

const (
	ModeStandard  Mode = iota // show-text lines, wait for input, bridges between sub-boxes
	ModeConcat                // text also appended to the accumulated string buffer
	ModeAlternate             // SG scenes: a single plain sub-box
)

func (m Mode) String() string {
	switch m {
	case ModeConcat:
		return "concat"
	case ModeAlternate:
		return "alternate"
	default:
		return "standard"
	}
}

const (
	showText    = "show-text 0"
	endTextLine = "end-text-line 0"
	waitInput   = "wait-for-input 0"
	concatBBB   = "concat (global-string bbb) (global-string bbb)"
)

// SelectMode decides the layout for the box whose start marker sits at start.
// SG scenes always use the alternate layout. A box is concatenated when the
// slot being replaced already appends to the string buffer right after its
// first show-text, or when an earlier box of the same chunk was concatenated.
func SelectMode(scene string, lines []string, start int, concatInChunk bool) Mode {
	if script.IsSGScene(scene) {
		return ModeAlternate
	}
	if concatInChunk {
		return ModeConcat
	}
	if at := start + 2; at >= 0 && at < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[at]), "concat") {
		return ModeConcat
	}
	return ModeStandard
}

// Generator emits instruction blocks for one scene.
type Generator struct {
	Labels Labels
}

// Generate returns the block replacing the body of one original box.
func (g Generator) Generate(c domain.Container, speaker string, mode Mode) domain.InstructionBlock {
	switch mode {
	case ModeConcat:
		return generateConcat(c)
	case ModeAlternate:
		return generateAlternate(c)
	default:
		return g.generateStandard(c, speaker)
	}
}

func (g Generator) generateStandard(c domain.Container, speaker string) domain.InstructionBlock {
	var out domain.InstructionBlock
	for i, sub := range c {
		out = append(out, "")
		for _, l := range strings.Split(sub, "\n") {
			out = append(out, quoted(showText, l), endTextLine)
		}
		// the last line waits for input before ending
		out = out[:len(out)-1]
		out = append(out, waitInput, endTextLine, "")

		if i == len(c)-1 {
			continue
		}
		out = append(out,
			`comment "Extra Textbox `+speaker+`"`,
			"u004213E0 0",
			"u0041A7B0 2",
			"u0041A7B0 1",
		)
		if speaker == domain.Narrator {
			if g.Labels.Narrator != "" {
				out = append(out, "call "+strings.TrimRightFunc(g.Labels.Narrator, unicode.IsSpace))
			}
			out = append(out, "u004160D0")
		} else {
			out = append(out, "u004160D0")
			if g.Labels.Character != "" {
				out = append(out, "call "+strings.TrimRightFunc(g.Labels.Character, unicode.IsSpace))
			}
		}
		out = append(out, "308 1", "u004213E0 1", script.MarkerBox)
	}
	return out
}

func generateConcat(c domain.Container) domain.InstructionBlock {
	var out domain.InstructionBlock
	for i, sub := range c {
		out = append(out, "")
		for _, l := range strings.Split(sub, "\n") {
			out = append(out, quoted(showText, l), quoted(concatBBB, l), endTextLine)
		}
		out = out[:len(out)-1]
		if i != len(c)-1 {
			out = append(out, endTextLine)
		} else {
			out = append(out, "")
		}
	}
	return out
}

func generateAlternate(c domain.Container) domain.InstructionBlock {
	if len(c) == 0 {
		return nil
	}
	out := domain.InstructionBlock{""}
	for _, l := range strings.Split(c[0], "\n") {
		out = append(out, quoted(showText, l), endTextLine)
	}
	return append(out, "")
}

// quoted formats `cmd "payload"`; double quotes in the payload become single
// quotes since the script format has no escape for them inside generated text.
func quoted(cmd, payload string) string {
	return cmd + ` "` + strings.ReplaceAll(payload, `"`, `'`) + `"`
}
