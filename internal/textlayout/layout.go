/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout fits translated text into the game's fixed-size dialogue boxes.
//
// Everything is measured in monospace columns: the game font draws kana, kanji,
// full-width forms and private-use glyphs in double-width cells and everything
// else in single cells. A box holds a fixed number of lines of a fixed number of
// columns; text that does not fit spills into additional boxes.
package textlayout

import (
	"fmt"
	"strings"

	"eushlator/internal/domain"
)

// Config is the box geometry.
type Config struct {
	MaxLines int // lines per box
	MaxChars int // columns per line
}

// WarningKind classifies a non-fatal layout finding.
type WarningKind string

const (
	WarnLineMismatch WarningKind = "line-mismatch"     // translated and source line counts differ
	WarnShortfall    WarningKind = "layout-shortfall"  // placeholders were needed to fill every box
	WarnBlankLines   WarningKind = "blank-lines"       // translator output had empty lines
	WarnJapanese     WarningKind = "residual-japanese" // translator output still has source text
)

// Warning is a non-fatal finding for manual review.
type Warning struct {
	Kind   WarningKind
	Detail string
}

func (w Warning) String() string { return string(w.Kind) + ": " + w.Detail }

// Result is the layout of one chunk: one container per source box.
type Result struct {
	Containers []domain.Container
	Warnings   []Warning
}

// LayoutChunk wraps each translated line and reconciles the result against the
// source box count. source is the chunk's original text (one line per box).
// It never fails; anything unusual is reported as a warning.
func LayoutChunk(source, translated string, cfg Config) Result {
	srcLines := strings.Split(source, "\n")
	dstLines := strings.Split(translated, "\n")

	var res Result
	if len(srcLines) != len(dstLines) {
		res.Warnings = append(res.Warnings, Warning{
			Kind:   WarnLineMismatch,
			Detail: fmt.Sprintf("%d source boxes, %d translated lines", len(srcLines), len(dstLines)),
		})
	}

	wrapped := make([]domain.Container, len(dstLines))
	for i, l := range dstLines {
		wrapped[i] = Wrap(l, cfg.MaxLines, cfg.MaxChars)
	}
	res.Containers = Reconcile(len(srcLines), wrapped)

	placeholders := 0
	for i, c := range res.Containers {
		if len(c) == 1 && c[0] == "" && (i >= len(wrapped) || !isBlank(wrapped[i])) {
			placeholders++
		}
	}
	if placeholders > 0 {
		res.Warnings = append(res.Warnings, Warning{
			Kind:   WarnShortfall,
			Detail: fmt.Sprintf("%d of %d boxes left empty", placeholders, len(srcLines)),
		})
	}
	return res
}

func isBlank(c domain.Container) bool { return len(c) == 1 && c[0] == "" }
