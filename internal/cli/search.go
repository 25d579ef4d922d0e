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
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"eushlator/internal/extract"
	"eushlator/internal/storage"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		q       storage.SearchQuery
		types   string
		reindex bool
	)
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Look up extracted dialogue",
		Long: `Search the dialogue index for boxes and chunks containing text, optionally
filtered by speaker, scene and document type. Without text every document
matching the filters is listed. --reindex rebuilds the index from the box
files in 3_ExtractedDialogue first.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := storage.DetectAndRebuildIndex(ctx, ws.Root); err != nil {
				return err
			}
			db, err := storage.InitOrOpenIndex(ws.Root)
			if err != nil {
				return err
			}
			defer db.Close()
			if reindex {
				n, err := extract.IndexFolder(ctx, ws, db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d scene(s)\n", n)
			}

			q.Text = strings.Join(args, " ")
			if types != "" {
				q.Types = strings.Split(types, ",")
			}
			res, err := storage.SearchDB(ctx, db, q)
			if err != nil {
				return err
			}
			rows := make([][]string, len(res))
			for i, r := range res {
				rows[i] = []string{r.Scene, r.Type, strconv.Itoa(r.Ref), r.Speaker, r.Snippet}
			}
			out := cmd.OutOrStdout()
			printTable(out, []column{
				{Title: "SCENE", Width: 14},
				{Title: "TYPE", Width: 7},
				{Title: "REF", Width: 6, Right: true},
				{Title: "SPEAKER", Width: 12},
				{Title: "TEXT", Width: 60},
			}, rows)
			printSummary(out, "%d match(es)", len(res))
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Speaker, "speaker", "", "only this speaker")
	cmd.Flags().StringVar(&q.Scene, "scene", "", "only this scene")
	cmd.Flags().StringVar(&types, "type", "", "comma-separated document types: box, chunk")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "maximum number of results")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "number of results to skip")
	cmd.Flags().BoolVar(&reindex, "reindex", false, "rebuild the index from the extracted box files first")
	return cmd
}

func newRunsCmd(a *app) *cobra.Command {
	var runTag string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show the latest reinsert outcome of every scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			if runTag == "" {
				runTag = a.cfg.Pipeline.RunTag
			}
			db, err := storage.InitOrOpenIndex(ws.Root)
			if err != nil {
				return err
			}
			defer db.Close()
			runs, err := storage.LatestRuns(cmd.Context(), db, runTag)
			if err != nil {
				return err
			}
			rows := make([][]string, len(runs))
			failed := 0
			for i, r := range runs {
				if r.Status == storage.RunFailed {
					failed++
				}
				rows[i] = []string{r.Scene, r.Status, strconv.Itoa(r.Boxes), strconv.Itoa(r.Warnings), r.FinishedAt.Local().Format(time.DateTime), r.Error}
			}
			out := cmd.OutOrStdout()
			printTable(out, []column{
				{Title: "SCENE", Width: 14},
				{Title: "STATUS", Width: 10, Status: true},
				{Title: "BOXES", Width: 8, Right: true},
				{Title: "WARN", Width: 7, Right: true},
				{Title: "FINISHED", Width: 21},
				{Title: "ERROR", Width: 40},
			}, rows)
			printSummary(out, "%d scene(s) in run %q, %d failed", len(runs), runTag, failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&runTag, "run-tag", "", "translation run (default from the config)")
	return cmd
}
