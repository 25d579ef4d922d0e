/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package reinsert

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	applog "eushlator/internal/log"
	"eushlator/internal/replace"
	"eushlator/internal/script"
	"eushlator/internal/splice"
	"eushlator/internal/storage"
)

// InitScriptSuffix marks the non-scene scripts that hold global set-string tables.
const InitScriptSuffix = "INIT.txt"

// Correction is the outcome for one corrected script.
type Correction struct {
	File    string
	Source  string
	Changed []script.Line
}

// CorrectInitScripts applies the manual replacements to the set-string payloads
// of every init script in the decompiled folder. A script already present in
// the edited folder is corrected from there, so repeated runs build on earlier
// edits. Output is written to the edited folder only when something changed.
func CorrectInitScripts(ws *storage.Workspace, encoding string, rep replace.Dictionary) ([]Correction, error) {
	l := applog.WithOperation(applog.WithComponent("reinsert"), "correct")
	ents, err := os.ReadDir(ws.Path(storage.DecompiledDir))
	if err != nil {
		return nil, fmt.Errorf("list decompiled scripts: %w", err)
	}
	var out []Correction
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), InitScriptSuffix) {
			continue
		}
		name := e.Name()
		dst := ws.Path(storage.EditedTranslationsDir, name)
		src := dst
		if _, err := os.Stat(dst); errors.Is(err, os.ErrNotExist) {
			src = ws.Path(storage.DecompiledDir, name)
		}
		lines, err := script.Load(src, encoding)
		if err != nil {
			return out, fmt.Errorf("%s: %w", name, err)
		}
		fixed, changed := splice.CorrectStrings(lines, rep)
		c := Correction{File: name, Source: src, Changed: changed}
		out = append(out, c)
		if len(changed) == 0 {
			continue
		}
		if err := storage.WriteFileAtomic(dst, []byte(script.JoinLines(fixed)+"\n"), ws.BackupsDir()); err != nil {
			return out, err
		}
		l.Info("corrected", slog.String("file", name), slog.Int("lines", len(changed)))
	}
	return out, nil
}
