/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dialogue

import (
	"reflect"
	"strings"
	"testing"

	"eushlator/internal/domain"
)

func box(idx int, speaker, text string, offset int) domain.Box {
	return domain.Box{Index: idx, Speaker: speaker, Text: text, Offset: offset}
}

func TestCollapseMergesRuns(t *testing.T) {
	boxes := []domain.Box{
		box(1, "A", "a1", 3),
		box(2, "A", "a2", 1),
		box(3, "Narrator", "n1", 0),
		box(4, "A", "a3", 2),
		box(5, "A", "a4", 2),
	}
	chunks := Collapse(boxes)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantText := []string{"a1\na2", "n1", "a3\na4"}
	wantSpeaker := []string{"A", "Narrator", "A"}
	for i, c := range chunks {
		if c.ID != i+1 || c.Text != wantText[i] || c.Speaker != wantSpeaker[i] {
			t.Fatalf("chunk %d = %+v", i, c)
		}
		if strings.Join(c.BoxTexts(), "\n") != c.Text {
			t.Fatalf("chunk %d text is not the join of its boxes", i)
		}
	}
	// flattening the chunks gives the boxes back
	var flat []domain.Box
	for _, c := range chunks {
		flat = append(flat, c.Boxes...)
	}
	if !reflect.DeepEqual(flat, boxes) {
		t.Fatalf("boxes not preserved through collapse")
	}
	if Collapse(nil) != nil {
		t.Fatalf("no boxes should give no chunks")
	}
}

func TestBoxesRoundTrip(t *testing.T) {
	boxes := []domain.Box{
		box(1, "太郎", "「こんにちは」", 12),
		box(2, "Narrator", "123", 0),
		box(3, "花子", "quote: \"x\"", 4),
	}
	data, err := MarshalBoxes(boxes)
	if err != nil {
		t.Fatalf("MarshalBoxes() error: %v", err)
	}
	if !strings.HasPrefix(string(data), "1:\n") {
		t.Fatalf("expected index keys first, got:\n%s", data)
	}
	got, err := UnmarshalBoxes(data)
	if err != nil {
		t.Fatalf("UnmarshalBoxes() error: %v", err)
	}
	if !reflect.DeepEqual(got, boxes) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, boxes)
	}
}

func TestUnmarshalBoxesSortsNumerically(t *testing.T) {
	doc := "10: {text: j, speaker: A, offset: 1}\n2: {text: b, speaker: A, offset: 1}\n1: {text: a, speaker: A, offset: 0}\n"
	got, err := UnmarshalBoxes([]byte(doc))
	if err != nil {
		t.Fatalf("UnmarshalBoxes() error: %v", err)
	}
	if got[0].Index != 1 || got[1].Index != 2 || got[2].Index != 10 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if _, err := UnmarshalBoxes([]byte("1: {text: a, speaker: A, offset: -1}\n")); err == nil {
		t.Fatalf("expected error for negative offset")
	}
}

func TestFullScriptRoundTrip(t *testing.T) {
	var f FullScript
	f.Add("SC0002", []domain.Chunk{{ID: 1, Speaker: "A", Text: "one\n  two  "}})
	f.Add("SC0001", []domain.Chunk{{ID: 1, Speaker: "B", Text: "three"}, {ID: 2, Speaker: "A", Text: "four"}})
	f.Add("SC0003", nil)

	data, err := MarshalFullScript(f)
	if err != nil {
		t.Fatalf("MarshalFullScript() error: %v", err)
	}
	if !strings.Contains(string(data), "text: |-\n") {
		t.Fatalf("expected literal block text:\n%s", data)
	}
	got, err := UnmarshalFullScript(data)
	if err != nil {
		t.Fatalf("UnmarshalFullScript() error: %v", err)
	}
	if !reflect.DeepEqual(got.Scenes, []string{"SC0002", "SC0001"}) {
		t.Fatalf("scene order = %v", got.Scenes)
	}
	c, ok := got.Scene("SC0002")
	if !ok || c[0].Text != "one\ntwo" {
		t.Fatalf("lines should be trimmed in literal blocks: %+v", c)
	}
	c, _ = got.Scene("SC0001")
	if len(c) != 2 || c[1].ID != 2 || c[1].Speaker != "A" {
		t.Fatalf("SC0001 chunks = %+v", c)
	}
}

func TestTranslationsParseAndValidate(t *testing.T) {
	doc := `translations:
  - id: 1
    input: |-
      A:
      こんにちは
    text: |-
      Hello there.
  - id: 2
    text: Second
`
	set, err := ParseTranslations([]byte(doc))
	if err != nil {
		t.Fatalf("ParseTranslations() error: %v", err)
	}
	byID, err := set.ByID()
	if err != nil {
		t.Fatalf("ByID() error: %v", err)
	}
	if byID[1].Text != "Hello there." || byID[1].Source != "A:\nこんにちは" || byID[2].Text != "Second" {
		t.Fatalf("unexpected translations: %+v", byID)
	}

	out, err := MarshalTranslations(set)
	if err != nil {
		t.Fatalf("MarshalTranslations() error: %v", err)
	}
	again, err := ParseTranslations(out)
	if err != nil || !reflect.DeepEqual(again, set) {
		t.Fatalf("translation round trip mismatch: %+v, %v", again, err)
	}
}

func TestTranslationsSchemaRejects(t *testing.T) {
	bad := []string{
		"",
		"items: []\n",
		"translations:\n  - text: missing id\n",
		"translations:\n  - id: 0\n    text: zero id\n",
		"translations:\n  - id: one\n    text: x\n",
	}
	for _, doc := range bad {
		if _, err := ParseTranslations([]byte(doc)); err == nil {
			t.Fatalf("expected schema error for %q", doc)
		}
	}
	dup := TranslationSet{Translations: []domain.TranslatedChunk{{ID: 1}, {ID: 1}}}
	if _, err := dup.ByID(); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestPUAMap(t *testing.T) {
	fwd := ParsePUAMap("\ue000=...\n\ue001\ue002=--\nno separator\nk=v=w\r\n")
	if len(fwd) != 3 || fwd["k"] != "v=w" || fwd["\ue001\ue002"] != "--" {
		t.Fatalf("ParsePUAMap() = %q", fwd)
	}
	rev := fwd.Reverse(PUAMap{"...": "\ue005"})
	if rev["--"] != "\ue001\ue002" || rev["..."] != "\ue005" {
		t.Fatalf("Reverse() = %q", rev)
	}
	in := TranslationInput("太郎", "\ue001\ue002\ue000", fwd, true)
	if in != "太郎:\n--..." {
		t.Fatalf("TranslationInput() = %q", in)
	}
	if got := TranslationInput("太郎", "x", fwd, false); got != "x" {
		t.Fatalf("TranslationInput() without speaker = %q", got)
	}
}
