/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"regexp"
	"strconv"
	"strings"

	"eushlator/internal/domain"
)

var (
	reSpeakerLookup = regexp.MustCompile(`^lookup-array\s+\(local-ptr 0\)\s+\(global-int 6623`)
	reSpeakerMov    = regexp.MustCompile(`^mov\s+\(local-ptr 0\)\s+([0-9a-fA-F]+)`)
	reShowText      = regexp.MustCompile(`show-text 0\s+"(.*)"`)
	reFurigana      = regexp.MustCompile(`display-furigana 0\s+"([^"]+)"\s+"([^"]+)"`)
)

type speakerState int

const (
	speakerIdle speakerState = iota
	speakerAwaitMov
)

type boxState int

const (
	boxIdle boxState = iota
	boxPendingStart
	boxInBox
)

// Detect scans a decompiled scene script once and returns its dialogue boxes in order.
//
// Two trackers advance on every line. The speaker tracker arms on a speaker
// table lookup and takes the id from the following mov; the id stays pending
// until the next box closes. The box tracker opens a box on a start marker
// whose next line is a show-text, confirms it on the first text command and
// closes it on the first line that is not a text command. An open box at the
// end of input is closed there.
//
// Offsets count lines from the end of the previous box (from 0 for the first)
// to the start marker, which is what the splicer needs to find the box again
// after earlier boxes changed length.
func Detect(lines []string, scene string, names NameTable) []domain.Box {
	d := &detector{lines: lines, scene: scene, names: names, start: -1}
	for idx, ln := range lines {
		d.step(idx, ln)
	}
	d.close(len(lines) - 1)
	return d.boxes
}

type detector struct {
	lines []string
	scene string
	names NameTable

	speaker    speakerState
	pending    int64
	hasPending bool

	state   boxState
	buf     []string
	start   int
	lastEnd int

	boxes []domain.Box
}

func (d *detector) step(idx int, ln string) {
	st := strings.TrimSpace(ln)
	d.trackSpeaker(st)

	switch d.state {
	case boxInBox:
		if IsTextLine(st) {
			d.buf = append(d.buf, ln)
			return
		}
		d.close(idx - 1)
		d.tryStart(idx, st, ln)
	case boxPendingStart:
		if d.tryStart(idx, st, ln) {
			return
		}
		if IsTextLine(st) {
			d.state = boxInBox
			d.buf = append(d.buf, ln)
			return
		}
		d.state = boxIdle
		d.buf = nil
	default:
		d.tryStart(idx, st, ln)
	}
}

func (d *detector) trackSpeaker(st string) {
	if reSpeakerLookup.MatchString(st) {
		d.speaker = speakerAwaitMov
		return
	}
	if d.speaker != speakerAwaitMov {
		return
	}
	d.speaker = speakerIdle
	if m := reSpeakerMov.FindStringSubmatch(st); m != nil {
		if id, err := strconv.ParseInt(m[1], 16, 64); err == nil {
			d.pending, d.hasPending = id, true
		}
	}
}

// tryStart opens a pending box when st is a start marker followed by a show-text line.
func (d *detector) tryStart(idx int, st, ln string) bool {
	if !isBoxStart(st, d.scene) {
		return false
	}
	if idx+1 >= len(d.lines) || !strings.HasPrefix(strings.TrimSpace(d.lines[idx+1]), showTextCommand) {
		return false
	}
	d.state = boxPendingStart
	d.buf = []string{ln}
	d.start = idx
	return true
}

func (d *detector) close(end int) {
	if d.state == boxInBox && len(d.buf) > 0 {
		speaker := domain.Narrator
		if d.hasPending {
			speaker = d.names.Resolve(d.pending)
		}
		raw := make([]string, len(d.buf))
		copy(raw, d.buf)
		d.boxes = append(d.boxes, domain.Box{
			Index:   len(d.boxes) + 1,
			Speaker: speaker,
			Offset:  d.start - d.lastEnd,
			Text:    RenderText(raw[1:]),
			Raw:     raw,
		})
		d.lastEnd = end
	}
	d.state = boxIdle
	d.buf = nil
	d.start = -1
	d.hasPending = false
}

// RenderText turns box body lines into display text. show-text payloads are
// concatenated, furigana is rendered as 漢字(かな) and other commands contribute nothing.
func RenderText(lines []string) string {
	var b strings.Builder
	for _, ln := range lines {
		ls := strings.TrimLeft(ln, " \t")
		switch {
		case strings.HasPrefix(ls, "show-text 0"):
			if m := reShowText.FindStringSubmatch(ln); m != nil {
				b.WriteString(unescape(m[1]))
			}
		case strings.HasPrefix(ls, "display-furigana 0"):
			if m := reFurigana.FindStringSubmatch(ln); m != nil {
				b.WriteString(m[1])
				b.WriteString("(")
				b.WriteString(m[2])
				b.WriteString(")")
			}
		}
	}
	return b.String()
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\\`, `\`)
}
