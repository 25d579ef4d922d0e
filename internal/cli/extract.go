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

	"github.com/spf13/cobra"

	"eushlator/internal/dialogue"
	"eushlator/internal/extract"
	"eushlator/internal/storage"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		force   bool
		noIndex bool
		noPUA   bool
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Detect dialogue boxes in every decompiled scene",
		Long: `Detect the dialogue boxes of every scene script in 2_Decompiled and write one
box file per scene to 3_ExtractedDialogue. Scenes that were extracted before
are skipped unless --force is given. Extracted scenes are added to the search
index, and private-use glyph runs are collected into Utils/pua.txt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			opts := extract.Options{Encoding: a.cfg.Script.Encoding, Workers: a.cfg.Pipeline.Workers, Force: force}
			if !noIndex {
				db, err := storage.InitOrOpenIndex(ws.Root)
				if err != nil {
					return err
				}
				defer db.Close()
				opts.Index = db
			}
			sum, err := extract.Folder(cmd.Context(), ws, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sum.Failed) > 0 {
				rows := make([][]string, len(sum.Failed))
				for i, f := range sum.Failed {
					rows[i] = []string{f.Scene, statusFailed, f.Err.Error()}
				}
				printTable(out, []column{{Title: "SCENE", Width: 14}, {Title: "STATUS", Width: 10, Status: true}, {Title: "ERROR", Width: 60}}, rows)
			}
			printSummary(out, "Extracted %d scene(s), skipped %d, failed %d", sum.Extracted, sum.Skipped, len(sum.Failed))

			if !noPUA {
				runs, written, err := extract.CollectPUA(ws, a.cfg.Script.Encoding)
				if err != nil {
					return err
				}
				if written {
					fmt.Fprintf(out, "Found %d private-use run(s), written to %s\n", len(runs), ws.Path(storage.UtilsDir, storage.PUAFile))
				}
			}
			if len(sum.Failed) > 0 {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-extract scenes that already have a box file")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "do not update the search index")
	cmd.Flags().BoolVar(&noPUA, "no-pua", false, "do not collect private-use glyph runs")
	return cmd
}

func newRefineCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refine",
		Short: "Collapse extracted boxes into the full script",
		Long: `Collapse consecutive boxes of the same speaker into chunks for every extracted
scene and write them to 3_ExtractedDialogue/$$full_script.yaml. An existing
full script is never overwritten; delete it to refine again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			written, err := extract.Refine(ws)
			if err != nil {
				return err
			}
			path := ws.Path(storage.DialogueDir, dialogue.FullScriptFile)
			if written {
				fmt.Fprintln(cmd.OutOrStdout(), "Full script written to", path)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing written:", path, "exists or no dialogue was found")
			}
			return nil
		},
	}
}
