/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package reinsert rebuilds translated scene scripts.
//
// Each scene is handled by its own SceneContext: the detected boxes are
// collapsed into chunks, checked against the translation set, laid out,
// turned into instruction blocks and spliced into a working copy of the
// script chunk by chunk. Scenes share nothing mutable and run in parallel.
package reinsert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"eushlator/internal/codegen"
	"eushlator/internal/dialogue"
	"eushlator/internal/domain"
	applog "eushlator/internal/log"
	"eushlator/internal/replace"
	"eushlator/internal/script"
	"eushlator/internal/splice"
	"eushlator/internal/textlayout"
)

// ErrMisaligned reports that chunks and translations do not line up.
var ErrMisaligned = errors.New("chunks and translations are misaligned")

// MisalignmentError names the scene and chunk where alignment broke.
type MisalignmentError struct {
	Scene   string
	ChunkID int
	Reason  string
}

func (e *MisalignmentError) Error() string {
	return fmt.Sprintf("%s chunk %d: %s: %s", e.Scene, e.ChunkID, ErrMisaligned, e.Reason)
}

func (e *MisalignmentError) Unwrap() error { return ErrMisaligned }

// Options are the per-run settings shared by every scene.
type Options struct {
	Layout       textlayout.Config
	Replacements replace.Dictionary
	Names        script.NameTable

	// PUA is the forward glyph map, used to rebuild what the translator saw.
	PUA dialogue.PUAMap
	// ReversePUA maps translator text back to glyphs. It is only applied
	// when RestorePUA is set.
	ReversePUA dialogue.PUAMap
	RestorePUA bool

	// StrictSource rejects translations whose recorded input differs from
	// the chunk text, ignoring periods and ellipses.
	StrictSource bool
	// WithSpeaker is whether the translator input carried the speaker line.
	WithSpeaker bool
}

// SceneInput is everything read from disk for one scene.
type SceneInput struct {
	Scene  string
	Script []string
	// Boxes from the extracted box file; nil means detect them from Script.
	Boxes []domain.Box
	// Reference chunks from the full script file; nil skips the cross-check.
	Reference    []domain.Chunk
	Translations dialogue.TranslationSet
	// Edited is an optional hand-edited script with the same line count.
	Edited []string
}

// Warning is a non-fatal finding for one chunk.
type Warning struct {
	ChunkID int
	textlayout.Warning
}

func (w Warning) String() string { return fmt.Sprintf("chunk %d: %s", w.ChunkID, w.Warning) }

// SceneContext is the state of one scene while it is rebuilt.
type SceneContext struct {
	Scene    string
	Splicer  *splice.Splicer
	Boxes    []domain.Box
	Chunks   []domain.Chunk
	Labels   codegen.Labels
	Overlaid []script.Line
	Warnings []Warning

	opts Options
	log  *slog.Logger
}

// NewSceneContext prepares a scene: the edited overlay is applied, labels are
// scouted and boxes are collapsed into chunks. Nothing is spliced yet.
func NewSceneContext(in SceneInput, opts Options) (*SceneContext, error) {
	working := in.Script
	var overlaid []script.Line
	if in.Edited != nil {
		var err error
		working, overlaid, err = splice.Overlay(in.Script, in.Edited, opts.Replacements)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Scene, err)
		}
	}
	boxes := in.Boxes
	if boxes == nil {
		boxes = script.Detect(in.Script, in.Scene, opts.Names)
	}
	return &SceneContext{
		Scene:    in.Scene,
		Splicer:  splice.New(in.Scene, working),
		Boxes:    boxes,
		Chunks:   dialogue.Collapse(boxes),
		Labels:   codegen.ScoutLabels(working),
		Overlaid: overlaid,
		opts:     opts,
		log:      applog.WithScene(applog.WithComponent("reinsert"), in.Scene),
	}, nil
}

// CheckReference compares the collapsed chunks with the full script chunks.
func (sc *SceneContext) CheckReference(ref []domain.Chunk) error {
	if len(ref) != len(sc.Chunks) {
		id := min(len(ref), len(sc.Chunks)) + 1
		return sc.misaligned(id, fmt.Sprintf("%d chunks in full script, %d from boxes", len(ref), len(sc.Chunks)))
	}
	for i, c := range sc.Chunks {
		r := ref[i]
		if r.Speaker != c.Speaker {
			return sc.misaligned(c.ID, fmt.Sprintf("speaker %q, full script has %q", c.Speaker, r.Speaker))
		}
		if strings.TrimSpace(r.Text) != strings.TrimSpace(c.Text) {
			return sc.misaligned(c.ID, "text differs from full script")
		}
	}
	return nil
}

// Align pairs every chunk with its translation by id.
func (sc *SceneContext) Align(set dialogue.TranslationSet) ([]domain.TranslatedChunk, error) {
	byID, err := set.ByID()
	if err != nil {
		return nil, sc.misaligned(0, err.Error())
	}
	out := make([]domain.TranslatedChunk, len(sc.Chunks))
	for i, c := range sc.Chunks {
		tr, ok := byID[c.ID]
		if !ok {
			return nil, sc.misaligned(c.ID, "no translation")
		}
		if sc.opts.StrictSource {
			want := dialogue.TranslationInput(c.Speaker, c.Text, sc.opts.PUA, sc.opts.WithSpeaker)
			if looseText(want) != looseText(tr.Source) {
				return nil, sc.misaligned(c.ID, "translation input does not match chunk text")
			}
		}
		out[i] = tr
		delete(byID, c.ID)
	}
	for id := range byID {
		sc.warn(id, textlayout.Warning{Kind: WarnUnusedTranslation, Detail: "translation has no matching chunk"})
	}
	return out, nil
}

const (
	// WarnUnusedTranslation marks a translation id that no chunk asked for.
	WarnUnusedTranslation textlayout.WarningKind = "unused-translation"
	// WarnDroppedBoxes marks text lost because the alternate layout keeps
	// only the first sub-box.
	WarnDroppedBoxes textlayout.WarningKind = "dropped-sub-boxes"
)

func looseText(s string) string {
	return strings.NewReplacer(".", "", "⋯", "").Replace(strings.TrimSpace(s))
}

// Splice lays out and splices every chunk in order, carrying the cursor from
// chunk to chunk. It stops between chunks when ctx is done.
func (sc *SceneContext) Splice(ctx context.Context, translations []domain.TranslatedChunk) error {
	gen := codegen.Generator{Labels: sc.Labels}
	cursor := 0
	for i, c := range sc.Chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, warns := textlayout.Refine(translations[i].Text, sc.opts.Replacements)
		if sc.opts.RestorePUA {
			text = sc.opts.ReversePUA.Apply(text)
		}
		res := textlayout.LayoutChunk(c.Text, text, sc.opts.Layout)
		for _, w := range append(warns, res.Warnings...) {
			sc.warn(c.ID, w)
		}
		containers := res.Containers
		if len(containers) != len(c.Boxes) {
			containers = textlayout.Reconcile(len(c.Boxes), containers)
		}

		concat := false
		var err error
		cursor, err = sc.Splicer.ApplyFunc(c.Boxes, cursor, func(j int, box domain.Box, slot splice.Slot) (domain.InstructionBlock, error) {
			mode := codegen.SelectMode(sc.Scene, sc.Splicer.Lines(), slot.Start, concat)
			concat = mode == codegen.ModeConcat
			if mode == codegen.ModeAlternate && len(containers[j]) > 1 {
				sc.warn(c.ID, textlayout.Warning{
					Kind:   WarnDroppedBoxes,
					Detail: fmt.Sprintf("box %d: %d overflow sub-box(es) dropped", box.Index, len(containers[j])-1),
				})
			}
			return gen.Generate(containers[j], box.Speaker, mode), nil
		})
		if err != nil {
			return fmt.Errorf("%s chunk %d: %w", sc.Scene, c.ID, err)
		}
	}
	return nil
}

func (sc *SceneContext) warn(chunk int, w textlayout.Warning) {
	sc.Warnings = append(sc.Warnings, Warning{ChunkID: chunk, Warning: w})
	sc.log.Warn(string(w.Kind), slog.Int("chunk", chunk), slog.String("detail", w.Detail))
}

func (sc *SceneContext) misaligned(chunk int, reason string) error {
	return &MisalignmentError{Scene: sc.Scene, ChunkID: chunk, Reason: reason}
}

// Reconstruct rebuilds one scene in memory and returns the new script lines.
func Reconstruct(ctx context.Context, in SceneInput, opts Options) ([]string, *SceneContext, error) {
	sc, err := NewSceneContext(in, opts)
	if err != nil {
		return nil, nil, err
	}
	if in.Reference != nil {
		if err := sc.CheckReference(in.Reference); err != nil {
			return nil, sc, err
		}
	}
	translations, err := sc.Align(in.Translations)
	if err != nil {
		return nil, sc, err
	}
	if err := sc.Splice(ctx, translations); err != nil {
		return nil, sc, err
	}
	return sc.Splicer.Lines(), sc, nil
}
