/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"eushlator/internal/domain"
	"eushlator/internal/reinsert"
	"eushlator/internal/storage"
	"eushlator/internal/textlayout"
)

func newPreviewCmd(a *app) *cobra.Command {
	var (
		out   string
		scene string
		chunk int
	)
	cmd := &cobra.Command{
		Use:   "preview [text]",
		Short: "Render wrapped text boxes to a PNG",
		Long: `Wrap text with the configured box geometry and render the resulting boxes to
a PNG so the fit can be checked by eye. With --scene and --chunk the
translated chunk of the current run is laid out the way reinsert would lay it
out. Boxes whose text overflows are framed in red.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := textlayout.Config{MaxLines: a.cfg.Layout.TextLines, MaxChars: a.cfg.Layout.LineLength}
			var c domain.Container
			switch {
			case scene != "":
				var err error
				if c, err = a.chunkLayout(scene, chunk); err != nil {
					return err
				}
			case len(args) > 0:
				c = textlayout.Wrap(strings.Join(args, " "), cfg.MaxLines, cfg.MaxChars)
			default:
				return errors.New("give text to wrap or --scene and --chunk")
			}

			var buf bytes.Buffer
			over, err := textlayout.RenderPreview(&buf, c, cfg)
			if err != nil {
				return err
			}
			if err := storage.WriteFileAtomic(out, buf.Bytes(), ""); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, sub := range c {
				fmt.Fprintf(w, "box %d:\n%s\n", i+1, sub)
			}
			printSummary(w, "%d box(es), %d overflowing, written to %s", len(c), over, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "preview.png", "output PNG file")
	cmd.Flags().StringVar(&scene, "scene", "", "scene of the chunk to preview")
	cmd.Flags().IntVar(&chunk, "chunk", 1, "chunk id within the scene")
	return cmd
}

// chunkLayout lays out one translated chunk and returns its sub-boxes in order.
func (a *app) chunkLayout(scene string, id int) (domain.Container, error) {
	ws, err := a.openWorkspace()
	if err != nil {
		return nil, err
	}
	r, err := reinsert.NewRunner(ws, a.cfg)
	if err != nil {
		return nil, err
	}
	in, err := r.LoadScene(scene)
	if err != nil {
		return nil, err
	}
	sc, err := reinsert.NewSceneContext(in, r.Options)
	if err != nil {
		return nil, err
	}
	if id < 1 || id > len(sc.Chunks) {
		return nil, fmt.Errorf("%s has %d chunk(s), no chunk %d", scene, len(sc.Chunks), id)
	}
	byID, err := in.Translations.ByID()
	if err != nil {
		return nil, err
	}
	tr, ok := byID[id]
	if !ok {
		return nil, fmt.Errorf("%s chunk %d has no translation", scene, id)
	}
	text, _ := textlayout.Refine(tr.Text, r.Options.Replacements)
	res := textlayout.LayoutChunk(sc.Chunks[id-1].Text, text, r.Options.Layout)
	var all domain.Container
	for _, c := range res.Containers {
		all = append(all, c...)
	}
	return all, nil
}
