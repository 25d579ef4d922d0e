/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package extract

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	applog "eushlator/internal/log"
	"eushlator/internal/script"
	"eushlator/internal/storage"
	"eushlator/internal/textlayout"
)

// PUARuns returns the distinct runs of consecutive private-use characters in
// text, sorted by first code point, then length, then value.
func PUARuns(text string) []string {
	seen := map[string]struct{}{}
	collectRuns(text, seen)
	return sortedRuns(seen)
}

func collectRuns(text string, seen map[string]struct{}) {
	start := -1
	for i, r := range text {
		if textlayout.IsPrivateUse(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			seen[text[start:i]] = struct{}{}
			start = -1
		}
	}
	if start >= 0 {
		seen[text[start:]] = struct{}{}
	}
}

func sortedRuns(seen map[string]struct{}) []string {
	runs := make([]string, 0, len(seen))
	for r := range seen {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		a, _ := utf8.DecodeRuneInString(runs[i])
		b, _ := utf8.DecodeRuneInString(runs[j])
		if a != b {
			return a < b
		}
		if la, lb := utf8.RuneCountInString(runs[i]), utf8.RuneCountInString(runs[j]); la != lb {
			return la < lb
		}
		return runs[i] < runs[j]
	})
	return runs
}

// CollectPUA scans every .txt file under the decompiled folder for private-use
// runs and writes them, one per line, to the PUA file in Utils. The file is
// meant to be completed by hand with `=replacement` suffixes, so an existing
// one is never overwritten. Unreadable files are logged and skipped.
func CollectPUA(ws *storage.Workspace, encoding string) (runs []string, written bool, err error) {
	l := applog.WithOperation(applog.WithComponent("extract"), "pua")
	out := ws.Path(storage.UtilsDir, storage.PUAFile)
	if _, err := os.Stat(out); err == nil {
		l.Info("pua file exists, skipping", slog.String("file", out))
		return nil, false, nil
	}

	seen := map[string]struct{}{}
	root := ws.Path(storage.DecompiledDir)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}
		lines, lerr := script.Load(path, encoding)
		if lerr != nil {
			l.Warn("read failed", slog.String("file", path), slog.Any("err", lerr))
			return nil
		}
		for _, ln := range lines {
			collectRuns(ln, seen)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	runs = sortedRuns(seen)
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	if err := storage.WriteFileAtomic(out, []byte(b.String()), ""); err != nil {
		return nil, false, err
	}
	l.Info("pua runs written", slog.String("file", out), slog.Int("runs", len(runs)))
	return runs, true, nil
}
