/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"strings"

	"eushlator/internal/replace"
)

var enclosingPairs = [][2]string{{`"`, `"`}, {"[", "]"}, {"「", "」"}}

// Refine cleans raw translator output before layout: doubled newlines are
// collapsed, each line is trimmed and loses one enclosing pair of quotes or
// brackets, and the replacement dictionary is applied last.
func Refine(text string, rep replace.Dictionary) (string, []Warning) {
	var warns []Warning
	out := text
	if strings.Contains(out, "\n\n") {
		warns = append(warns, Warning{Kind: WarnBlankLines, Detail: "empty lines collapsed"})
		out = strings.ReplaceAll(out, "\n\n", "\n")
	}
	if ContainsJapanese(text) {
		warns = append(warns, Warning{Kind: WarnJapanese, Detail: "translation still contains Japanese text"})
	}

	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = stripEnclosing(strings.TrimSpace(l))
	}
	out = strings.TrimSpace(strings.Join(lines, "\n"))
	return rep.Apply(out), warns
}

func stripEnclosing(l string) string {
	for _, p := range enclosingPairs {
		if !strings.HasPrefix(l, p[0]) || !strings.HasSuffix(l, p[1]) {
			continue
		}
		// a lone quote opens and closes at once and leaves nothing
		if len(l) < len(p[0])+len(p[1]) {
			return ""
		}
		return l[len(p[0]) : len(l)-len(p[1])]
	}
	return l
}
