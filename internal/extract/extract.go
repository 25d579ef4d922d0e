/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package extract prepares a workspace for translation: it detects the dialogue
// boxes of every decompiled scene, collapses them into the full script and
// collects the private-use glyph runs the scripts contain.
package extract

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"eushlator/internal/dialogue"
	applog "eushlator/internal/log"
	"eushlator/internal/script"
	"eushlator/internal/storage"
)

// Options control a folder extraction.
type Options struct {
	Encoding string
	Workers  int
	// Force re-extracts scenes whose box file already exists.
	Force bool
	// Index, when set, receives the boxes and chunks of every extracted scene.
	Index *sql.DB
}

// SceneError is a scene that could not be extracted.
type SceneError struct {
	Scene string
	Err   error
}

func (e SceneError) Error() string { return e.Scene + ": " + e.Err.Error() }

func (e SceneError) Unwrap() error { return e.Err }

// Summary counts the outcome of a folder extraction.
type Summary struct {
	Extracted int
	Skipped   int
	Failed    []SceneError
}

// Scenes lists the scene scripts in the decompiled folder, in play order.
func Scenes(ws *storage.Workspace) ([]string, error) {
	return listScenes(ws.Path(storage.DecompiledDir), ".txt")
}

func listScenes(dir, ext string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range ents {
		if e.IsDir() || filepath.Ext(e.Name()) != ext || !script.IsSceneFile(e.Name()) {
			continue
		}
		ids = append(ids, script.SceneID(e.Name()))
	}
	script.SortScenes(ids)
	return ids, nil
}

// Folder detects the boxes of every scene script and writes one box file per
// scene into the dialogue folder. Scenes that already have a box file are
// skipped unless Force is set. A scene that fails does not stop the others.
func Folder(ctx context.Context, ws *storage.Workspace, opts Options) (Summary, error) {
	l := applog.WithOperation(applog.WithComponent("extract"), "folder")
	names, err := script.LoadNames(ws.Path(storage.UtilsDir, storage.NamesFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
		l.Warn("no name table, every speaker resolves to the narrator", slog.String("file", storage.NamesFile))
	case err != nil:
		return Summary{}, err
	}
	scenes, err := Scenes(ws)
	if err != nil {
		return Summary{}, fmt.Errorf("list scenes: %w", err)
	}

	var (
		mu  sync.Mutex
		sum Summary
		g   errgroup.Group
	)
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for _, scene := range scenes {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		out := ws.Path(storage.DialogueDir, scene+".yaml")
		if !opts.Force {
			if _, err := os.Stat(out); err == nil {
				mu.Lock()
				sum.Skipped++
				mu.Unlock()
				continue
			}
		}
		g.Go(func() error {
			err := extractScene(ctx, ws, scene, out, names, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				sum.Failed = append(sum.Failed, SceneError{Scene: scene, Err: err})
				l.Error("scene failed", slog.String("scene", scene), slog.Any("err", err))
				return nil
			}
			sum.Extracted++
			return nil
		})
	}
	_ = g.Wait()
	l.Info("extraction done", slog.Int("extracted", sum.Extracted), slog.Int("skipped", sum.Skipped), slog.Int("failed", len(sum.Failed)))
	return sum, ctx.Err()
}

func extractScene(ctx context.Context, ws *storage.Workspace, scene, out string, names script.NameTable, opts Options) error {
	lines, err := script.Load(ws.Path(storage.DecompiledDir, scene+".txt"), opts.Encoding)
	if err != nil {
		return err
	}
	boxes := script.Detect(lines, scene, names)
	data, err := dialogue.MarshalBoxes(boxes)
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(out, data, ""); err != nil {
		return err
	}
	if opts.Index != nil {
		if err := storage.IndexScene(ctx, opts.Index, scene, boxes, dialogue.Collapse(boxes)); err != nil {
			return fmt.Errorf("index: %w", err)
		}
	}
	return nil
}

// IndexFolder indexes every box file already present in the dialogue folder and
// returns the number of scenes indexed.
func IndexFolder(ctx context.Context, ws *storage.Workspace, db *sql.DB) (int, error) {
	scenes, err := listScenes(ws.Path(storage.DialogueDir), ".yaml")
	if err != nil {
		return 0, fmt.Errorf("list box files: %w", err)
	}
	n := 0
	for _, scene := range scenes {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		boxes, err := dialogue.LoadBoxes(ws.Path(storage.DialogueDir, scene+".yaml"))
		if err != nil {
			return n, err
		}
		if err := storage.IndexScene(ctx, db, scene, boxes, dialogue.Collapse(boxes)); err != nil {
			return n, fmt.Errorf("%s: index: %w", scene, err)
		}
		n++
	}
	return n, nil
}
