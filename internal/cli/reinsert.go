/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"eushlator/internal/reinsert"
	"eushlator/internal/replace"
	"eushlator/internal/script"
	"eushlator/internal/splice"
	"eushlator/internal/storage"
)

func newReinsertCmd(a *app) *cobra.Command {
	var (
		runTag     string
		strict     bool
		restorePUA bool
		noIndex    bool
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "reinsert [scene...]",
		Short: "Splice translated chunks back into the scene scripts",
		Long: `Rebuild every scene that has a translation file in
4_MachineTranslations/<run tag>, or only the scenes named, and write the
results to 5_Inserted/<run tag>. A scene whose chunks and translations do not
line up fails on its own; the others are still written. The exit code is
non-zero when any scene failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			cfg := a.cfg
			if runTag != "" {
				cfg.Pipeline.RunTag = runTag
			}
			r, err := reinsert.NewRunner(ws, cfg)
			if err != nil {
				return err
			}
			r.Options.StrictSource = strict
			r.Options.RestorePUA = restorePUA
			if !noIndex {
				db, err := storage.InitOrOpenIndex(ws.Root)
				if err != nil {
					return err
				}
				defer db.Close()
				r.Index = db
			}

			scenes := args
			if len(scenes) == 0 {
				if scenes, err = r.Scenes(); err != nil {
					return err
				}
			}
			results := r.Run(cmd.Context(), scenes)

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(results))
			for _, res := range results {
				detail := ""
				if res.Err != nil {
					detail = res.Err.Error()
				}
				rows = append(rows, []string{
					res.Scene, status(res.Err),
					strconv.Itoa(res.Boxes), strconv.Itoa(res.Chunks), strconv.Itoa(len(res.Warnings)),
					detail,
				})
			}
			printTable(out, []column{
				{Title: "SCENE", Width: 14},
				{Title: "STATUS", Width: 10, Status: true},
				{Title: "BOXES", Width: 8, Right: true},
				{Title: "CHUNKS", Width: 8, Right: true},
				{Title: "WARN", Width: 7, Right: true},
				{Title: "ERROR", Width: 50},
			}, rows)
			if verbose {
				for _, res := range results {
					for _, w := range res.Warnings {
						fmt.Fprintf(out, "%s %s\n", res.Scene, w)
					}
				}
			}
			failed := reinsert.Failed(results)
			printSummary(out, "Rebuilt %d of %d scene(s) for run %q", len(results)-len(failed), len(results), cfg.Pipeline.RunTag)
			if len(failed) > 0 {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&runTag, "run-tag", "", "translation run to rebuild (overrides the config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject translations whose recorded input differs from the chunk text")
	cmd.Flags().BoolVar(&restorePUA, "restore-pua", false, "map translator text back to private-use glyphs")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "do not record the run in the index")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every warning")
	return cmd
}

func newOverlayCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overlay-check <scene>",
		Short: "Show which set-string lines a hand-edited script would contribute",
		Long: `Compare 4ex_Translations/<scene>.txt with the decompiled scene and list the
set-string lines that reinsert would take from the edited copy. Fails when the
two scripts do not have the same number of lines.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			scene := args[0]
			working, err := script.Load(ws.Path(storage.DecompiledDir, scene+".txt"), a.cfg.Script.Encoding)
			if err != nil {
				return err
			}
			edited, err := script.Load(ws.Path(storage.EditedTranslationsDir, scene+".txt"), a.cfg.Script.Encoding)
			if err != nil {
				return err
			}
			rep, err := replace.Load(ws.Path(storage.UtilsDir, replace.FileName))
			if err != nil {
				return err
			}
			_, changed, err := splice.Overlay(working, edited, rep)
			if err != nil {
				return fmt.Errorf("%s: %w", scene, err)
			}
			out := cmd.OutOrStdout()
			printLines(out, changed)
			printSummary(out, "%d line(s) would be taken from the edited script", len(changed))
			return nil
		},
	}
}

func newCorrectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "correct",
		Short: "Apply manual replacements to the set-string tables of init scripts",
		Long: `Apply Utils/manual_replacements_dict.yaml to the quoted payload of every
set-string line in the *INIT.txt scripts of 2_Decompiled. Corrected scripts
are written to 4ex_Translations; a script already there is corrected in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			rep, err := replace.Load(ws.Path(storage.UtilsDir, replace.FileName))
			if err != nil {
				return err
			}
			res, err := reinsert.CorrectInitScripts(ws, a.cfg.Script.Encoding, rep)
			if err != nil {
				return err
			}
			rows := make([][]string, len(res))
			total := 0
			for i, c := range res {
				rows[i] = []string{c.File, strconv.Itoa(len(c.Changed))}
				total += len(c.Changed)
			}
			out := cmd.OutOrStdout()
			printTable(out, []column{{Title: "FILE", Width: 24}, {Title: "LINES", Width: 8, Right: true}}, rows)
			printSummary(out, "Corrected %d line(s) in %d script(s)", total, len(res))
			return nil
		},
	}
}

func printLines(out io.Writer, lines []script.Line) {
	rows := make([][]string, len(lines))
	for i, l := range lines {
		rows[i] = []string{strconv.Itoa(l.Pos + 1), l.Text}
	}
	printTable(out, []column{{Title: "LINE", Width: 8, Right: true}, {Title: "TEXT", Width: 70}}, rows)
}
