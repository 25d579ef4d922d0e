/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"eushlator/internal/domain"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Preview cell geometry follows basicfont.Face7x13: one column is 7 px, one line 13 px.
const (
	cellW     = 7
	cellH     = 13
	boxPad    = 4
	boxGap    = 6
	outerPad  = 4
	wideGlyph = '?' // stand-in for glyphs the bitmap font does not have
)

var (
	previewBG       = color.RGBA{R: 32, G: 32, B: 48, A: 255}
	previewBox      = color.RGBA{R: 16, G: 16, B: 24, A: 255}
	previewBorder   = color.RGBA{R: 200, G: 200, B: 220, A: 255}
	previewText     = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	previewOverflow = color.RGBA{R: 230, G: 60, B: 60, A: 255}
)

// RenderPreview draws the sub-boxes of a container stacked vertically, each in a
// frame of cfg.MaxLines by cfg.MaxChars cells, and writes the image as PNG.
// Double-width runes take two cells. Frames whose content overflows the box
// geometry get a red border. It returns the number of overflowing sub-boxes.
func RenderPreview(w io.Writer, c domain.Container, cfg Config) (int, error) {
	cols, rows := cfg.MaxChars, cfg.MaxLines
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	n := len(c)
	if n == 0 {
		n = 1
	}
	boxW := cols*cellW + 2*boxPad
	boxH := rows*cellH + 2*boxPad
	img := image.NewRGBA(image.Rect(0, 0, boxW+2*outerPad, n*boxH+(n-1)*boxGap+2*outerPad))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: previewBG}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	overflows := 0
	for i, sub := range c {
		x0 := outerPad
		y0 := outerPad + i*(boxH+boxGap)
		frame := image.Rect(x0, y0, x0+boxW, y0+boxH)
		draw.Draw(img, frame, &image.Uniform{C: previewBox}, image.Point{}, draw.Src)

		lines := strings.Split(sub, "\n")
		over := len(lines) > rows
		d := &font.Drawer{Dst: img, Src: image.NewUniform(previewText), Face: face}
		for li, line := range lines {
			if Width(line) > cols {
				over = true
			}
			if li >= rows {
				continue
			}
			col := 0
			baseline := y0 + boxPad + li*cellH + face.Ascent
			for _, r := range line {
				glyph, span := r, 1
				if IsWide(r) {
					glyph, span = wideGlyph, 2
				}
				if col+span > cols {
					break
				}
				d.Dot = fixed.P(x0+boxPad+col*cellW, baseline)
				d.DrawString(string(glyph))
				col += span
			}
		}
		border := previewBorder
		if over {
			border = previewOverflow
			overflows++
		}
		strokeRect(img, frame, border)
	}
	return overflows, png.Encode(w, img)
}

func strokeRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}
