/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package extract

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"eushlator/internal/dialogue"
	"eushlator/internal/storage"
)

const (
	sceneSC = `comment "start"
lookup-array (local-ptr 0) (global-int 6623) 1
mov (local-ptr 0) 1A
u00416120
show-text 0 "「こんにちは」"
wait-for-input 0
end-text-line 0
set-string (global-string 2) "x"
304
show-text 0 "次"
display-furigana 0 "漢字" "かんじ"
wait-for-input 0
jump label_00001234`

	sceneSN = `u00416120
show-text 0 "始まり"
wait-for-input 0
end-text-line 0`

	sceneSP = `comment "no dialogue"`
)

func newWorkspace(t *testing.T, files map[string]string) *storage.Workspace {
	t.Helper()
	ws, err := storage.InitWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("InitWorkspace: %v", err)
	}
	if err := os.WriteFile(ws.Path(storage.UtilsDir, storage.NamesFile), []byte("26: {jp: 太郎, en: Taro}\n"), 0o644); err != nil {
		t.Fatalf("write names: %v", err)
	}
	for name, body := range files {
		if err := os.WriteFile(ws.Path(storage.DecompiledDir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return ws
}

func TestFolderExtractsAndSkips(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"SC0001.txt": sceneSC,
		"SN0001.txt": sceneSN,
		"SP0001.txt": sceneSP,
		"notes.txt":  "not a scene",
	})
	db, err := storage.InitOrOpenIndex(ws.Root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	sum, err := Folder(ctx, ws, Options{Workers: 2, Index: db})
	if err != nil {
		t.Fatalf("Folder: %v", err)
	}
	if sum.Extracted != 3 || sum.Skipped != 0 || len(sum.Failed) != 0 {
		t.Fatalf("first run summary = %+v", sum)
	}
	if _, err := os.Stat(ws.Path(storage.DialogueDir, "notes.yaml")); !os.IsNotExist(err) {
		t.Fatalf("non-scene file must not be extracted")
	}

	boxes, err := dialogue.LoadBoxes(ws.Path(storage.DialogueDir, "SC0001.yaml"))
	if err != nil {
		t.Fatalf("LoadBoxes: %v", err)
	}
	if len(boxes) != 2 || boxes[0].Speaker != "太郎" || boxes[0].Offset != 3 || boxes[1].Text != "次漢字(かんじ)" {
		t.Fatalf("unexpected boxes: %+v", boxes)
	}

	res, err := storage.SearchDB(ctx, db, storage.SearchQuery{Scene: "SC0001"})
	if err != nil || len(res) != 4 {
		t.Fatalf("indexed rows for SC0001 = %d, err %v", len(res), err)
	}

	sum, err = Folder(ctx, ws, Options{})
	if err != nil || sum.Extracted != 0 || sum.Skipped != 3 {
		t.Fatalf("second run summary = %+v, err %v", sum, err)
	}
	sum, err = Folder(ctx, ws, Options{Force: true})
	if err != nil || sum.Extracted != 3 {
		t.Fatalf("forced run summary = %+v, err %v", sum, err)
	}
}

func TestFolderIsolatesFailingScene(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"SC0001.txt": sceneSC,
		"SC0002.txt": "show-text 0 \"\xff\xfe\"",
	})
	sum, err := Folder(context.Background(), ws, Options{Encoding: "utf-8"})
	if err != nil {
		t.Fatalf("Folder: %v", err)
	}
	if sum.Extracted != 1 || len(sum.Failed) != 1 || sum.Failed[0].Scene != "SC0002" {
		t.Fatalf("summary = %+v", sum)
	}
	if _, err := os.Stat(ws.Path(storage.DialogueDir, "SC0002.yaml")); !os.IsNotExist(err) {
		t.Fatalf("failed scene must not leave a box file")
	}
}

func TestFolderStopsWhenCancelled(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"SC0001.txt": sceneSC})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := Folder(ctx, ws, Options{})
	if err == nil || sum.Extracted != 0 {
		t.Fatalf("expected cancellation, got %+v err %v", sum, err)
	}
}

func TestRefineWritesFullScriptOnce(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"SC0001.txt": sceneSC,
		"SN0001.txt": sceneSN,
		"SP0001.txt": sceneSP,
	})
	if _, err := Folder(context.Background(), ws, Options{}); err != nil {
		t.Fatalf("Folder: %v", err)
	}
	written, err := Refine(ws)
	if err != nil || !written {
		t.Fatalf("Refine: written=%v err=%v", written, err)
	}
	full, err := dialogue.LoadFullScript(ws.Path(storage.DialogueDir, dialogue.FullScriptFile))
	if err != nil {
		t.Fatalf("LoadFullScript: %v", err)
	}
	if !reflect.DeepEqual(full.Scenes, []string{"SN0001", "SC0001"}) {
		t.Fatalf("scenes = %v", full.Scenes)
	}
	chunks, _ := full.Scene("SC0001")
	if len(chunks) != 2 || chunks[0].Speaker != "太郎" || chunks[1].ID != 2 {
		t.Fatalf("SC0001 chunks = %+v", chunks)
	}

	written, err = Refine(ws)
	if err != nil || written {
		t.Fatalf("second Refine: written=%v err=%v", written, err)
	}
}

func TestRefineWithoutDialogueWritesNothing(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"SP0001.txt": sceneSP})
	if _, err := Folder(context.Background(), ws, Options{}); err != nil {
		t.Fatalf("Folder: %v", err)
	}
	written, err := Refine(ws)
	if err != nil || written {
		t.Fatalf("Refine: written=%v err=%v", written, err)
	}
	if _, err := os.Stat(ws.Path(storage.DialogueDir, dialogue.FullScriptFile)); !os.IsNotExist(err) {
		t.Fatalf("no full script expected")
	}
}

func TestIndexFolderReadsBoxFiles(t *testing.T) {
	ws := newWorkspace(t, map[string]string{"SC0001.txt": sceneSC, "SN0001.txt": sceneSN})
	ctx := context.Background()
	if _, err := Folder(ctx, ws, Options{}); err != nil {
		t.Fatalf("Folder: %v", err)
	}
	db, err := storage.InitOrOpenIndex(ws.Root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer db.Close()
	n, err := IndexFolder(ctx, ws, db)
	if err != nil || n != 2 {
		t.Fatalf("IndexFolder: n=%d err=%v", n, err)
	}
	res, err := storage.SearchDB(ctx, db, storage.SearchQuery{Text: "始まり"})
	if err != nil || len(res) != 2 || res[0].Scene != "SN0001" {
		t.Fatalf("search after index: %+v err %v", res, err)
	}
}

func TestPUARunsOrder(t *testing.T) {
	got := PUARuns("a\uE001b\uE000\uE001c\uE000d\U000F0001")
	want := []string{"\uE000", "\uE000\uE001", "\uE001", "\U000F0001"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PUARuns = %q, want %q", got, want)
	}
}

func TestCollectPUAIsIdempotent(t *testing.T) {
	ws := newWorkspace(t, map[string]string{
		"SC0001.txt": "show-text 0 \"\uE000\uE001です\"",
	})
	sub := ws.Path(storage.DecompiledDir, "extra")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "note.TXT"), []byte("\U000F0001 and \uE000\uE001"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	runs, written, err := CollectPUA(ws, "auto")
	if err != nil || !written {
		t.Fatalf("CollectPUA: written=%v err=%v", written, err)
	}
	if want := []string{"\uE000\uE001", "\U000F0001"}; !reflect.DeepEqual(runs, want) {
		t.Fatalf("runs = %q, want %q", runs, want)
	}
	data, err := os.ReadFile(ws.Path(storage.UtilsDir, storage.PUAFile))
	if err != nil || string(data) != "\uE000\uE001\n\U000F0001\n" {
		t.Fatalf("pua file = %q, err %v", data, err)
	}

	if err := os.WriteFile(ws.Path(storage.UtilsDir, storage.PUAFile), []byte("\uE000\uE001=[heart]\n"), 0o644); err != nil {
		t.Fatalf("edit pua file: %v", err)
	}
	_, written, err = CollectPUA(ws, "auto")
	if err != nil || written {
		t.Fatalf("second CollectPUA: written=%v err=%v", written, err)
	}
	m, err := dialogue.LoadPUAMap(ws.Path(storage.UtilsDir, storage.PUAFile))
	if err != nil || m["\uE000\uE001"] != "[heart]" {
		t.Fatalf("hand edits lost: %v err %v", m, err)
	}
}
