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
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"eushlator/internal/config"
	"eushlator/internal/dialogue"
	"eushlator/internal/domain"
	"eushlator/internal/script"
	"eushlator/internal/splice"
	"eushlator/internal/storage"
	"eushlator/internal/textlayout"
)

const sceneText = `comment "scene"
lookup-array (local-ptr 0) (global-int 6623) 1
mov (local-ptr 0) 1A
u00416120
show-text 0 "こんにちは"
wait-for-input 0
end-text-line 0
lookup-array (local-ptr 0) (global-int 6623) 1
mov (local-ptr 0) 1A
u00416120
show-text 0 "元気？"
wait-for-input 0
end-text-line 0
set-string (global-string 2) "水"
304
show-text 0 "雨だ"
concat (global-string bbb) (global-string bbb) "雨だ"
end-text-line 0
label_00000100:
u004160D0
mov (global-int 6622) 1
ret
label_00000200:
add (local-int 0) 2 (global-int 6625)
ret
`

const goodTranslations = `translations:
  - id: 1
    input: "太郎:\nこんにちは\n元気？"
    text: "\"Hello there, my good friend.\"\nHow are you?"
  - id: 2
    text: It's raining.
`

var wantScene = []string{
	`comment "scene"`,
	"lookup-array (local-ptr 0) (global-int 6623) 1",
	"mov (local-ptr 0) 1A",
	"u00416120",
	"",
	`show-text 0 "Hello there, my good"`,
	"wait-for-input 0",
	"end-text-line 0",
	"",
	`comment "Extra Textbox 太郎"`,
	"u004213E0 0",
	"u0041A7B0 2",
	"u0041A7B0 1",
	"u004160D0",
	"call label_00000200:",
	"308 1",
	"u004213E0 1",
	"u00416120",
	"",
	`show-text 0 "friend."`,
	"wait-for-input 0",
	"end-text-line 0",
	"",
	"lookup-array (local-ptr 0) (global-int 6623) 1",
	"mov (local-ptr 0) 1A",
	"u00416120",
	"",
	`show-text 0 "How are you?"`,
	"wait-for-input 0",
	"end-text-line 0",
	"",
	`set-string (global-string 2) "水"`,
	"304",
	"",
	`show-text 0 "It's raining."`,
	`concat (global-string bbb) (global-string bbb) "It's raining."`,
	"",
	"label_00000100:",
	"u004160D0",
	"mov (global-int 6622) 1",
	"ret",
	"label_00000200:",
	"add (local-int 0) 2 (global-int 6625)",
	"ret",
}

func testNames(t *testing.T) script.NameTable {
	t.Helper()
	names, err := script.ParseNames([]byte("26: {jp: 太郎, en: Taro}\n"))
	if err != nil {
		t.Fatalf("ParseNames: %v", err)
	}
	return names
}

func testOptions(t *testing.T) Options {
	return Options{
		Layout:      textlayout.Config{MaxLines: 1, MaxChars: 20},
		Names:       testNames(t),
		WithSpeaker: true,
	}
}

func testInput(t *testing.T, translations string) SceneInput {
	t.Helper()
	set, err := dialogue.ParseTranslations([]byte(translations))
	if err != nil {
		t.Fatalf("ParseTranslations: %v", err)
	}
	return SceneInput{Scene: "SC0001", Script: script.SplitLines(sceneText), Translations: set}
}

func TestReconstructScene(t *testing.T) {
	in := testInput(t, goodTranslations)
	got, sc, err := Reconstruct(context.Background(), in, testOptions(t))
	if err != nil {
		t.Fatalf("Reconstruct error: %v", err)
	}
	if !reflect.DeepEqual(got, wantScene) {
		t.Fatalf("Reconstruct() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(wantScene, "\n"))
	}
	if len(sc.Chunks) != 2 || len(sc.Chunks[0].Boxes) != 2 || sc.Chunks[0].Speaker != "太郎" {
		t.Fatalf("unexpected chunks: %+v", sc.Chunks)
	}
	if sc.Labels.Narrator != "label_00000100:" || sc.Labels.Character != "label_00000200:" {
		t.Fatalf("labels = %+v", sc.Labels)
	}
	if len(sc.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", sc.Warnings)
	}
	// the original script is untouched
	if in.Script[4] != `show-text 0 "こんにちは"` {
		t.Fatalf("input script modified")
	}
}

func TestReconstructSGScene(t *testing.T) {
	set, err := dialogue.ParseTranslations([]byte("translations:\n  - id: 1\n    text: It is night. The stars are out.\n"))
	if err != nil {
		t.Fatalf("ParseTranslations: %v", err)
	}
	in := SceneInput{
		Scene:        "SG0001",
		Script:       []string{"call label_00004c70", `show-text 0 "夜だ"`, "end-text-line 0", "ret"},
		Translations: set,
	}
	got, sc, err := Reconstruct(context.Background(), in, testOptions(t))
	if err != nil {
		t.Fatalf("Reconstruct error: %v", err)
	}
	want := []string{"call label_00004c70", "", `show-text 0 "It is night. The"`, "end-text-line 0", "", "ret"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Reconstruct() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	if len(sc.Warnings) != 1 || sc.Warnings[0].Kind != WarnDroppedBoxes || sc.Warnings[0].ChunkID != 1 {
		t.Fatalf("expected one dropped-sub-boxes warning, got %v", sc.Warnings)
	}

	// a box that fits loses nothing and warns about nothing
	in.Translations.Translations[0].Text = "Night."
	if _, sc, err = Reconstruct(context.Background(), in, testOptions(t)); err != nil {
		t.Fatalf("short SG box: %v", err)
	}
	if len(sc.Warnings) != 0 {
		t.Fatalf("short SG box warnings: %v", sc.Warnings)
	}
}

func TestReconstructStrictSource(t *testing.T) {
	opts := testOptions(t)
	opts.StrictSource = true
	in := testInput(t, goodTranslations)
	// chunk 2 has no recorded input
	_, _, err := Reconstruct(context.Background(), in, opts)
	var me *MisalignmentError
	if !errors.As(err, &me) || me.ChunkID != 2 {
		t.Fatalf("expected misalignment at chunk 2, got %v", err)
	}

	in.Translations.Translations[1].Source = "Narrator:\n雨だ..."
	if _, _, err := Reconstruct(context.Background(), in, opts); err != nil {
		t.Fatalf("periods should be ignored, got %v", err)
	}
}

func TestReconstructMisalignment(t *testing.T) {
	in := testInput(t, "translations:\n  - id: 1\n    text: only one\n  - id: 7\n    text: stray\n")
	_, _, err := Reconstruct(context.Background(), in, testOptions(t))
	if !errors.Is(err, ErrMisaligned) {
		t.Fatalf("expected ErrMisaligned, got %v", err)
	}
	var me *MisalignmentError
	if !errors.As(err, &me) || me.Scene != "SC0001" || me.ChunkID != 2 {
		t.Fatalf("unexpected misalignment error: %#v", err)
	}

	in = testInput(t, goodTranslations)
	in.Reference = []domain.Chunk{{ID: 1, Speaker: "花子", Text: "こんにちは\n元気？"}, {ID: 2, Speaker: domain.Narrator, Text: "雨だ"}}
	_, _, err = Reconstruct(context.Background(), in, testOptions(t))
	if !errors.As(err, &me) || me.ChunkID != 1 {
		t.Fatalf("expected speaker mismatch at chunk 1, got %v", err)
	}

	in.Reference = []domain.Chunk{{ID: 1, Speaker: "太郎", Text: " こんにちは\n元気？\n"}, {ID: 2, Speaker: domain.Narrator, Text: "雨だ"}}
	if _, _, err := Reconstruct(context.Background(), in, testOptions(t)); err != nil {
		t.Fatalf("surrounding whitespace should be ignored, got %v", err)
	}
}

func TestReconstructWarnings(t *testing.T) {
	in := testInput(t, "translations:\n  - id: 1\n    text: \"Hi.\"\n  - id: 2\n    text: \"雨だ\\n\\nyes\"\n  - id: 3\n    text: extra\n")
	_, sc, err := Reconstruct(context.Background(), in, testOptions(t))
	if err != nil {
		t.Fatalf("Reconstruct error: %v", err)
	}
	kinds := map[textlayout.WarningKind]int{}
	for _, w := range sc.Warnings {
		kinds[w.Kind]++
	}
	for _, k := range []textlayout.WarningKind{textlayout.WarnLineMismatch, textlayout.WarnShortfall, textlayout.WarnJapanese, textlayout.WarnBlankLines, WarnUnusedTranslation} {
		if kinds[k] == 0 {
			t.Fatalf("missing %s warning in %v", k, sc.Warnings)
		}
	}
}

func TestReconstructOverlay(t *testing.T) {
	in := testInput(t, goodTranslations)
	edited := script.SplitLines(sceneText)
	edited[13] = `set-string (global-string 2) "Water"`
	in.Edited = edited
	got, sc, err := Reconstruct(context.Background(), in, testOptions(t))
	if err != nil {
		t.Fatalf("Reconstruct error: %v", err)
	}
	if len(sc.Overlaid) != 1 || got[31] != `set-string (global-string 2) "Water"` {
		t.Fatalf("overlay not applied: %q", got[31])
	}

	in.Edited = edited[:10]
	if _, _, err := Reconstruct(context.Background(), in, testOptions(t)); !errors.Is(err, splice.ErrOverlayLength) {
		t.Fatalf("expected ErrOverlayLength, got %v", err)
	}
}

func TestReconstructStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Reconstruct(ctx, testInput(t, goodTranslations), testOptions(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRunnerIsolatesFailingScenes(t *testing.T) {
	ws, err := storage.InitWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("InitWorkspace: %v", err)
	}
	for _, s := range []string{"SC0001", "SC0002", "SN0001"} {
		writeFile(t, ws.Path(storage.DecompiledDir, s+".txt"), sceneText)
	}
	writeFile(t, ws.Path(storage.UtilsDir, storage.NamesFile), "26: {jp: 太郎, en: Taro}\n")
	writeFile(t, ws.Path(storage.MachineTranslationsDir, "run", "SC0001.yaml"), goodTranslations)
	writeFile(t, ws.Path(storage.MachineTranslationsDir, "run", "SN0001.yaml"), goodTranslations)
	// SC0002 lacks chunk 2
	writeFile(t, ws.Path(storage.MachineTranslationsDir, "run", "SC0002.yaml"), "translations:\n  - id: 1\n    text: Hi.\n")

	cfg := config.Defaults()
	cfg.Layout = config.LayoutConfig{TextLines: 1, LineLength: 20}
	cfg.Pipeline = config.PipelineConfig{Workers: 2, RunTag: "run"}
	r, err := NewRunner(ws, cfg)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	db, err := storage.InitOrOpenIndex(ws.Root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer db.Close()
	r.Index = db

	scenes, err := r.Scenes()
	if err != nil {
		t.Fatalf("Scenes: %v", err)
	}
	if !reflect.DeepEqual(scenes, []string{"SN0001", "SC0001", "SC0002"}) {
		t.Fatalf("Scenes() = %v", scenes)
	}

	results := r.Run(context.Background(), scenes)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, res := range results[:2] {
		if res.Err != nil {
			t.Fatalf("%s failed: %v", res.Scene, res.Err)
		}
		data, err := os.ReadFile(res.Output)
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		if string(data) != strings.Join(wantScene, "\n") {
			t.Fatalf("%s output mismatch:\n%s", res.Scene, data)
		}
	}
	bad := results[2]
	if bad.Scene != "SC0002" || !errors.Is(bad.Err, ErrMisaligned) || bad.Output != "" {
		t.Fatalf("unexpected SC0002 result: %+v", bad)
	}
	if _, err := os.Stat(ws.Path(storage.InsertedDir, "run", "SC0002.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("no output expected for a failed scene, stat err %v", err)
	}
	if f := Failed(results); len(f) != 1 || f[0].Scene != "SC0002" {
		t.Fatalf("Failed() = %+v", f)
	}

	runs, err := storage.LatestRuns(context.Background(), db, "run")
	if err != nil || len(runs) != 3 {
		t.Fatalf("LatestRuns = %+v, err %v", runs, err)
	}
	for _, rr := range runs {
		want := storage.RunOK
		if rr.Scene == "SC0002" {
			want = storage.RunFailed
		}
		if rr.Status != want {
			t.Fatalf("run %s status %s, want %s", rr.Scene, rr.Status, want)
		}
	}
}

func TestRunnerCancelledBeforeStart(t *testing.T) {
	ws, err := storage.InitWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("InitWorkspace: %v", err)
	}
	r := &Runner{Workspace: ws, RunTag: "run", Workers: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := r.Run(ctx, []string{"SC0001", "SC0002"})
	for _, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Fatalf("%s: expected context.Canceled, got %v", res.Scene, res.Err)
		}
	}
}
