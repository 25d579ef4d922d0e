/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Workspace folders, in pipeline order.
const (
	ExtractedDir           = "1_Extracted"
	DecompiledDir          = "2_Decompiled"
	DialogueDir            = "3_ExtractedDialogue"
	MachineTranslationsDir = "4_MachineTranslations"
	EditedTranslationsDir  = "4ex_Translations"
	InsertedDir            = "5_Inserted"
	RecompiledDir          = "6_Recompiled"
	UtilsDir               = "Utils"

	BackupsDirName = "backups"
)

// Well-known files in the Utils folder.
const (
	NamesFile      = "names.yaml"
	PUAFile        = "pua.txt"
	ReversePUAFile = "reverse_pua.txt"
)

var standardSubDirs = []string{
	ExtractedDir,
	DecompiledDir,
	DialogueDir,
	MachineTranslationsDir,
	EditedTranslationsDir,
	InsertedDir,
	RecompiledDir,
	UtilsDir,
	filepath.Join(UtilsDir, BackupsDirName),
}

// Workspace is the root of one translation project.
type Workspace struct {
	Root string
}

// InitWorkspace creates root if needed and scaffolds the standard folders.
// Existing folders and files are left alone.
func InitWorkspace(root string) (*Workspace, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("workspace root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return &Workspace{Root: root}, nil
}

// OpenWorkspace returns the workspace at root, which must already contain the
// decompiled scripts folder.
func OpenWorkspace(root string) (*Workspace, error) {
	st, err := os.Stat(filepath.Join(root, DecompiledDir))
	if err != nil {
		return nil, fmt.Errorf("open workspace %s: %w", root, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("open workspace %s: %s is not a directory", root, DecompiledDir)
	}
	return &Workspace{Root: root}, nil
}

// Path joins elem onto the workspace folder dir.
func (w *Workspace) Path(dir string, elem ...string) string {
	return filepath.Join(append([]string{w.Root, dir}, elem...)...)
}

// BackupsDir is where replaced outputs are kept.
func (w *Workspace) BackupsDir() string { return w.Path(UtilsDir, BackupsDirName) }

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place. When path already exists and backupDir is not empty, the old file is
// first copied to a timestamped backup there.
func WriteFileAtomic(path string, data []byte, backupDir string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	name := filepath.Base(path)
	if backupDir != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			stamp := time.Now().Format("20060102-150405")
			bpath := filepath.Join(backupDir, fmt.Sprintf("%s.%s.bak", name, stamp))
			if cerr := copyFile(path, bpath); cerr != nil {
				return fmt.Errorf("backup %s: %w", name, cerr)
			}
		}
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", name, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp %s: %w", name, werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", name, rerr)
	}
	return nil
}

// LatestBackup returns the newest backup of the file called name in backupDir.
func LatestBackup(backupDir, name string) (string, error) {
	ents, err := os.ReadDir(backupDir)
	if err != nil {
		return "", fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		n := e.Name()
		if strings.HasPrefix(n, name+".") && strings.HasSuffix(n, ".bak") {
			candidates = append(candidates, filepath.Join(backupDir, n))
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no backups of %s found", name)
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	return candidates[len(candidates)-1], nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
