/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package reinsert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"eushlator/internal/config"
	"eushlator/internal/dialogue"
	"eushlator/internal/domain"
	applog "eushlator/internal/log"
	"eushlator/internal/replace"
	"eushlator/internal/script"
	"eushlator/internal/storage"
	"eushlator/internal/textlayout"
)

// SceneResult is the outcome of one scene. Err is nil on success, and Output
// is only set when the rebuilt script was written.
type SceneResult struct {
	Scene    string
	Output   string
	Boxes    int
	Chunks   int
	Overlaid int
	Warnings []Warning
	Err      error
	Elapsed  time.Duration
}

// Runner rebuilds the scenes of one translation run inside a workspace.
type Runner struct {
	Workspace *storage.Workspace
	RunTag    string
	Encoding  string
	Workers   int
	Options   Options
	// FullScript holds the reference chunks; scenes missing from it skip the cross-check.
	FullScript dialogue.FullScript
	// Index, when set, receives one run record per scene.
	Index *sql.DB
}

// NewRunner loads the shared workspace assets for a run: name table, full
// script, PUA maps and the manual replacement dictionary. Missing optional
// files are treated as empty.
func NewRunner(ws *storage.Workspace, cfg config.AppConfig) (*Runner, error) {
	names, err := script.LoadNames(ws.Path(storage.UtilsDir, storage.NamesFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	full, err := dialogue.LoadFullScript(ws.Path(storage.DialogueDir, dialogue.FullScriptFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	pua, err := dialogue.LoadPUAMap(ws.Path(storage.UtilsDir, storage.PUAFile))
	if err != nil {
		return nil, fmt.Errorf("load pua map: %w", err)
	}
	overrides, err := dialogue.LoadPUAMap(ws.Path(storage.UtilsDir, storage.ReversePUAFile))
	if err != nil {
		return nil, fmt.Errorf("load reverse pua map: %w", err)
	}
	rep, err := replace.Load(ws.Path(storage.UtilsDir, replace.FileName))
	if err != nil {
		return nil, err
	}
	return &Runner{
		Workspace:  ws,
		RunTag:     cfg.Pipeline.RunTag,
		Encoding:   cfg.Script.Encoding,
		Workers:    cfg.Pipeline.Workers,
		FullScript: full,
		Options: Options{
			Layout:       textlayout.Config{MaxLines: cfg.Layout.TextLines, MaxChars: cfg.Layout.LineLength},
			Replacements: rep,
			Names:        names,
			PUA:          pua,
			ReversePUA:   pua.Reverse(overrides),
			WithSpeaker:  !strings.HasSuffix(strings.ToLower(cfg.Provider.Name), "-batch"),
		},
	}, nil
}

// Scenes lists the scenes that have a translation file for the run, in play order.
func (r *Runner) Scenes() ([]string, error) {
	dir := r.Workspace.Path(storage.MachineTranslationsDir, r.RunTag)
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	var ids []string
	for _, e := range ents {
		if e.IsDir() || !script.IsSceneFile(e.Name()) || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		ids = append(ids, script.SceneID(e.Name()))
	}
	script.SortScenes(ids)
	return ids, nil
}

// Run rebuilds scenes in parallel, at most Workers at a time. A failing scene
// never stops the others; results come back in the order of scenes. Once ctx
// is done no further scenes are started.
func (r *Runner) Run(ctx context.Context, scenes []string) []SceneResult {
	results := make([]SceneResult, len(scenes))
	var g errgroup.Group
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, scene := range scenes {
		if err := ctx.Err(); err != nil {
			results[i] = SceneResult{Scene: scene, Err: err}
			continue
		}
		g.Go(func() error {
			results[i] = r.RunScene(ctx, scene)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// RunScene loads, rebuilds and writes one scene.
func (r *Runner) RunScene(ctx context.Context, scene string) (res SceneResult) {
	start := time.Now()
	l := applog.WithScene(applog.WithComponent("reinsert"), scene)
	res.Scene = scene
	defer func() {
		res.Elapsed = time.Since(start)
		r.record(ctx, res)
		if res.Err != nil {
			l.Error("scene failed", slog.Any("err", res.Err))
			return
		}
		l.Info("scene rebuilt", slog.Int("chunks", res.Chunks), slog.Int("warnings", len(res.Warnings)), slog.Duration("elapsed", res.Elapsed))
	}()

	in, err := r.LoadScene(scene)
	if err != nil {
		res.Err = err
		return res
	}
	lines, sc, err := Reconstruct(ctx, in, r.Options)
	if sc != nil {
		res.Boxes, res.Chunks, res.Overlaid, res.Warnings = len(sc.Boxes), len(sc.Chunks), len(sc.Overlaid), sc.Warnings
	}
	if err != nil {
		res.Err = err
		return res
	}
	out := r.Workspace.Path(storage.InsertedDir, r.RunTag, scene+".txt")
	if err := storage.WriteFileAtomic(out, []byte(script.JoinLines(lines)), r.Workspace.BackupsDir()); err != nil {
		res.Err = fmt.Errorf("%s: write output: %w", scene, err)
		return res
	}
	res.Output = out
	return res
}

// LoadScene reads the inputs of one scene from the workspace.
func (r *Runner) LoadScene(scene string) (SceneInput, error) {
	ws := r.Workspace
	in := SceneInput{Scene: scene}

	lines, err := script.Load(ws.Path(storage.DecompiledDir, scene+".txt"), r.Encoding)
	if err != nil {
		return in, fmt.Errorf("%s: load script: %w", scene, err)
	}
	in.Script = lines

	boxes, err := dialogue.LoadBoxes(ws.Path(storage.DialogueDir, scene+".yaml"))
	switch {
	case errors.Is(err, os.ErrNotExist):
		// detected from the script
	case err != nil:
		return in, fmt.Errorf("%s: load boxes: %w", scene, err)
	default:
		if boxes == nil {
			boxes = []domain.Box{}
		}
		in.Boxes = boxes
	}

	if ref, ok := r.FullScript.Scene(scene); ok {
		in.Reference = ref
	}

	set, err := dialogue.LoadTranslations(ws.Path(storage.MachineTranslationsDir, r.RunTag, scene+".yaml"))
	if err != nil {
		return in, fmt.Errorf("%s: load translations: %w", scene, err)
	}
	in.Translations = set

	edited, err := script.Load(ws.Path(storage.EditedTranslationsDir, scene+".txt"), r.Encoding)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return in, fmt.Errorf("%s: load edited script: %w", scene, err)
	default:
		if edited == nil {
			edited = []string{}
		}
		in.Edited = edited
	}
	return in, nil
}

func (r *Runner) record(ctx context.Context, res SceneResult) {
	if r.Index == nil {
		return
	}
	rec := storage.RunRecord{
		RunTag:   r.RunTag,
		Scene:    res.Scene,
		Status:   storage.RunOK,
		Boxes:    res.Boxes,
		Warnings: len(res.Warnings),
	}
	if res.Err != nil {
		rec.Status = storage.RunFailed
		rec.Error = res.Err.Error()
	}
	// the record is kept even when the run was cancelled
	if err := storage.RecordRun(context.WithoutCancel(ctx), r.Index, rec); err != nil {
		applog.WithComponent("reinsert").Warn("record run failed", slog.String("scene", res.Scene), slog.Any("err", err))
	}
}

// Failed returns the results that carry an error.
func Failed(results []SceneResult) []SceneResult {
	var out []SceneResult
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
