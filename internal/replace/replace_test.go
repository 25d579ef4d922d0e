/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package replace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseKeepsOrder(t *testing.T) {
	doc := "Infected Undine: Corrupted Undine\nUndine: Undina\n\"...\": \"…\"\n"
	d, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if d.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", d.Len())
	}
	// the longer key runs first, so the shorter one only sees what is left
	got := d.Apply("Infected Undine meets Undine...")
	want := "Corrupted Undina meets Undina…"
	if got != want {
		t.Fatalf("Apply() = %q, want %q", got, want)
	}
}

func TestApplyIsCaseSensitiveAndLiteral(t *testing.T) {
	d := New(Pair{Old: "a.c", New: "X"}, Pair{Old: "", New: "ignored"})
	if d.Len() != 1 {
		t.Fatalf("empty keys should be dropped")
	}
	if got := d.Apply("abc a.c A.C"); got != "abc X A.C" {
		t.Fatalf("Apply() = %q", got)
	}
	var zero Dictionary
	if zero.Apply("same") != "same" {
		t.Fatalf("zero dictionary must not change text")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	d, err := Load(filepath.Join(dir, FileName))
	if err != nil || d.Len() != 0 {
		t.Fatalf("missing file should give empty dictionary: %v", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("- not\n- a mapping\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for sequence document")
	}
	if err := os.WriteFile(path, []byte("k:\n  nested: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for nested value")
	}
}
