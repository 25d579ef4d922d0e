/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eushlator/internal/storage"
)

// quietRecover stubs the exit and stderr for the duration of the test and
// returns a pointer to the exit code Recover asked for.
func quietRecover(t *testing.T) *int {
	t.Helper()
	code := new(int)
	oldExit := exitFn
	exitFn = func(c int) { *code = c }

	oldStderr := os.Stderr
	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open %s: %v", os.DevNull, err)
	}
	os.Stderr = devnull
	t.Cleanup(func() {
		exitFn = oldExit
		os.Stderr = oldStderr
		_ = devnull.Close()
	})
	return code
}

// crashReports returns the crash report files in dir.
func crashReports(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read %s: %v", dir, err)
	}
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "crash-") && strings.HasSuffix(e.Name(), ".log") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}

func TestRecoverWritesReportAndExits(t *testing.T) {
	code := quietRecover(t)
	ws := &storage.Workspace{Root: t.TempDir()}

	func() {
		defer Recover(ws)
		panic("boom")
	}()

	if *code != 2 {
		t.Fatalf("exit code = %d, want 2", *code)
	}
	reports := crashReports(t, ws.Path(storage.UtilsDir))
	if len(reports) != 1 {
		t.Fatalf("expected one crash report under Utils, got %v", reports)
	}
	b, err := os.ReadFile(reports[0])
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "Panic: boom") {
		t.Fatalf("report does not contain panic: %s", b)
	}
}

func TestRecoverUsesWorkspaceOpenedAfterDefer(t *testing.T) {
	code := quietRecover(t)
	root := t.TempDir()

	// the workspace is unknown when the handler is deferred and is filled in
	// by the command that opens it
	ws := &storage.Workspace{}
	func() {
		defer Recover(ws)
		*ws = storage.Workspace{Root: root}
		panic("late workspace")
	}()

	if *code != 2 {
		t.Fatalf("exit code = %d, want 2", *code)
	}
	reports := crashReports(t, filepath.Join(root, storage.UtilsDir))
	if len(reports) != 1 {
		t.Fatalf("report not written to the late workspace: %v", reports)
	}
	b, err := os.ReadFile(reports[0])
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if s := string(b); !strings.Contains(s, "Workspace: "+root) || !strings.Contains(s, "Panic: late workspace") {
		t.Fatalf("unexpected report: %s", s)
	}
}

func TestRecoverWithoutPanicDoesNothing(t *testing.T) {
	code := quietRecover(t)
	ws := &storage.Workspace{Root: t.TempDir()}

	func() {
		defer Recover(ws)
	}()

	if *code != 0 {
		t.Fatalf("exit called with %d without a panic", *code)
	}
	if reports := crashReports(t, ws.Path(storage.UtilsDir)); len(reports) != 0 {
		t.Fatalf("unexpected reports: %v", reports)
	}
}
