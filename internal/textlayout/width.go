/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "unicode"

// wideRanges are the code point ranges the game font draws in a double-width cell.
var wideRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2014, Hi: 0x2015, Stride: 1}, // em dash, horizontal bar
		{Lo: 0x3000, Hi: 0x30FF, Stride: 1}, // CJK punctuation, hiragana, katakana (includes U+301C)
		{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1},
		{Lo: 0xE000, Hi: 0xF8FF, Stride: 1}, // BMP private use
		{Lo: 0xF900, Hi: 0xFAFF, Stride: 1},
		{Lo: 0xFF01, Hi: 0xFF60, Stride: 1},
		{Lo: 0xFFE0, Hi: 0xFFE6, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0xF0000, Hi: 0xFFFFD, Stride: 1},
		{Lo: 0x100000, Hi: 0x10FFFD, Stride: 1},
	},
}

var privateUse = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0xE000, Hi: 0xF8FF, Stride: 1}},
	R32: []unicode.Range32{
		{Lo: 0xF0000, Hi: 0xFFFFD, Stride: 1},
		{Lo: 0x100000, Hi: 0x10FFFD, Stride: 1},
	},
}

// IsPrivateUse reports whether r lies in one of the Unicode private use areas.
func IsPrivateUse(r rune) bool { return unicode.Is(privateUse, r) }

// IsWide reports whether r occupies two columns.
func IsWide(r rune) bool { return unicode.Is(wideRanges, r) }

// Width returns the display width of s in columns.
func Width(s string) int {
	n := 0
	for _, r := range s {
		if IsWide(r) {
			n += 2
		} else {
			n++
		}
	}
	return n
}

var japaneseRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3040, Hi: 0x30FF, Stride: 1},
		{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1},
		{Lo: 0xFF66, Hi: 0xFF9F, Stride: 1}, // half-width katakana
	},
}

// ContainsJapanese reports whether s has any kana or kanji left in it.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if unicode.Is(japaneseRanges, r) {
			return true
		}
	}
	return false
}
