/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package extract

import (
	"fmt"
	"log/slog"
	"os"

	"eushlator/internal/dialogue"
	applog "eushlator/internal/log"
	"eushlator/internal/storage"
)

// Refine collapses the boxes of every extracted scene into chunks and writes
// them to the full script file in the dialogue folder. An existing full script
// is left alone and reported as not written. Scenes without dialogue are
// omitted, and nothing is written when no scene has any.
func Refine(ws *storage.Workspace) (written bool, err error) {
	l := applog.WithOperation(applog.WithComponent("extract"), "refine")
	out := ws.Path(storage.DialogueDir, dialogue.FullScriptFile)
	if _, err := os.Stat(out); err == nil {
		l.Info("full script exists, skipping", slog.String("file", out))
		return false, nil
	}

	scenes, err := listScenes(ws.Path(storage.DialogueDir), ".yaml")
	if err != nil {
		return false, fmt.Errorf("list box files: %w", err)
	}
	var full dialogue.FullScript
	for _, scene := range scenes {
		boxes, err := dialogue.LoadBoxes(ws.Path(storage.DialogueDir, scene+".yaml"))
		if err != nil {
			return false, err
		}
		full.Add(scene, dialogue.Collapse(boxes))
	}
	if len(full.Scenes) == 0 {
		l.Warn("no dialogue found")
		return false, nil
	}

	data, err := dialogue.MarshalFullScript(full)
	if err != nil {
		return false, err
	}
	if err := storage.WriteFileAtomic(out, data, ""); err != nil {
		return false, err
	}
	l.Info("full script written", slog.String("file", out), slog.Int("scenes", len(full.Scenes)))
	return true, nil
}
