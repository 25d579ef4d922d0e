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
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	headerColor  = lipgloss.Color("#F780FF")
	cellColor    = lipgloss.Color("#E9E9F4")
	borderColor  = lipgloss.Color("#6272A4")
	okColor      = lipgloss.Color("#50FA7B")
	failColor    = lipgloss.Color("#FF5555")
	summaryColor = lipgloss.Color("#8BE9FD")

	headerStyle  = lipgloss.NewStyle().Foreground(headerColor).Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Foreground(cellColor).Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(borderColor)
	okStyle      = lipgloss.NewStyle().Foreground(okColor)
	failStyle    = lipgloss.NewStyle().Foreground(failColor).Bold(true)
	summaryStyle = lipgloss.NewStyle().Foreground(summaryColor).Italic(true)
)

// column is one table column. Right aligns numbers; Status colors ok and failed cells.
type column struct {
	Title  string
	Width  int
	Right  bool
	Status bool
}

// printTable writes a header, a separator and one line per row. Cells wider
// than their column are cut with an ellipsis.
func printTable(w io.Writer, cols []column, rows [][]string) {
	sep := borderStyle.Render("│")
	head := make([]string, len(cols))
	rule := make([]string, len(cols))
	for i, c := range cols {
		head[i] = headerStyle.Width(c.Width).Render(runewidth.Truncate(c.Title, c.Width-2, "…"))
		rule[i] = strings.Repeat("─", c.Width)
	}
	fmt.Fprintln(w, strings.Join(head, sep))
	fmt.Fprintln(w, borderStyle.Render(strings.Join(rule, "┼")))
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			st := cellStyle.Width(c.Width)
			if c.Right {
				st = st.Align(lipgloss.Right)
			}
			if c.Status {
				st = statusStyle(v).Padding(0, 1).Width(c.Width)
			}
			cells[i] = st.Render(runewidth.Truncate(singleLine(v), c.Width-2, "…"))
		}
		fmt.Fprintln(w, strings.Join(cells, sep))
	}
}

func printSummary(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, summaryStyle.Render(fmt.Sprintf(format, args...)))
}

func status(err error) string {
	if err != nil {
		return statusFailed
	}
	return statusOK
}

const (
	statusOK     = "ok"
	statusFailed = "failed"
)

func statusStyle(v string) lipgloss.Style {
	if v == statusFailed {
		return failStyle
	}
	return okStyle
}

func singleLine(s string) string { return strings.ReplaceAll(s, "\n", " ⏎ ") }
