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

	"eushlator/internal/domain"
)

// Wrap breaks text into sub-boxes of at most maxLines lines, each line at most
// maxChars columns wide. Lines break only at single spaces; a word is kept whole
// unless it is wider than maxChars by itself, in which case it is cut at rune
// boundaries. When a box has no room for another line the box is closed and the
// word opens the next one.
func Wrap(text string, maxLines, maxChars int) domain.Container {
	if maxLines < 1 {
		maxLines = 1
	}
	var (
		boxes domain.Container
		lines []string
	)
	flush := func() {
		if len(lines) > 0 {
			boxes = append(boxes, strings.Join(lines, "\n"))
		}
		lines = nil
	}
	for _, word := range splitWords(text, maxChars) {
		if len(lines) == 0 {
			lines = []string{word}
			continue
		}
		candidate := lines[len(lines)-1] + " " + word
		switch {
		case Width(candidate) <= maxChars:
			lines[len(lines)-1] = candidate
		case len(lines) < maxLines:
			lines = append(lines, word)
		default:
			flush()
			lines = []string{word}
		}
	}
	flush()
	return boxes
}

// splitWords splits on single spaces and cuts words wider than maxChars.
func splitWords(text string, maxChars int) []string {
	words := strings.Split(text, " ")
	if maxChars < 1 {
		return words
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		if Width(w) <= maxChars {
			out = append(out, w)
			continue
		}
		out = append(out, cutWord(w, maxChars)...)
	}
	return out
}

// cutWord splits w into pieces of at most maxChars columns. A single rune wider
// than maxChars still forms a piece of its own.
func cutWord(w string, maxChars int) []string {
	var (
		pieces []string
		cur    strings.Builder
		width  int
	)
	for _, r := range w {
		rw := 1
		if IsWide(r) {
			rw = 2
		}
		if width > 0 && width+rw > maxChars {
			pieces = append(pieces, cur.String())
			cur.Reset()
			width = 0
		}
		cur.WriteRune(r)
		width += rw
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}

// Reconcile makes the number of containers equal boxCount.
//
// With too few containers, sub-boxes are split off the end of the last container
// when it has more sub-boxes than are missing; otherwise every sub-box is
// flattened and dealt out again, the first containers taking one extra, and
// containers left empty get a single "" placeholder. The flattening drops the
// original line boundaries, which is accepted as an approximation.
// With too many containers, the extra ones are appended to the last kept container.
//
// The input is not modified.
func Reconcile(boxCount int, containers []domain.Container) []domain.Container {
	out := make([]domain.Container, len(containers))
	for i, c := range containers {
		out[i] = append(domain.Container(nil), c...)
	}
	if boxCount < 1 {
		return out
	}
	if len(out) == 0 {
		out = []domain.Container{{""}}
	}

	switch {
	case boxCount > len(out):
		need := boxCount - len(out)
		last := out[len(out)-1]
		if len(last) > need {
			keep := len(last) - need
			out[len(out)-1] = last[:keep:keep]
			for _, sub := range last[keep:] {
				out = append(out, domain.Container{sub})
			}
			return out
		}
		var flat []string
		for _, c := range out {
			flat = append(flat, c...)
		}
		div, rem := len(flat)/boxCount, len(flat)%boxCount
		res := make([]domain.Container, boxCount)
		idx := 0
		for i := range res {
			size := div
			if i < rem {
				size++
			}
			res[i] = append(domain.Container(nil), flat[idx:idx+size]...)
			idx += size
			if len(res[i]) == 0 {
				res[i] = domain.Container{""}
			}
		}
		return res
	case boxCount < len(out):
		res := out[:boxCount]
		for _, extra := range out[boxCount:] {
			res[boxCount-1] = append(res[boxCount-1], extra...)
		}
		return res
	}
	return out
}
