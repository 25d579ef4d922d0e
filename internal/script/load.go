/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw script bytes to text. encoding is "utf-8", "shift-jis"
// or "auto"; auto keeps valid UTF-8 as is and decodes anything else as Shift-JIS,
// which is what the decompiler emits for untouched game scripts.
func Decode(data []byte, encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "auto":
		if utf8.Valid(data) {
			return string(bytes.TrimPrefix(data, utf8BOM)), nil
		}
		return decodeShiftJIS(data)
	case "utf-8", "utf8":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("script is not valid UTF-8")
		}
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	case "shift-jis", "sjis", "shift_jis":
		return decodeShiftJIS(data)
	default:
		return "", fmt.Errorf("unsupported script encoding %q", encoding)
	}
}

func decodeShiftJIS(data []byte) (string, error) {
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode shift-jis: %w", err)
	}
	return string(out), nil
}

// Load reads a scene script and splits it into lines.
func Load(path, encoding string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := Decode(data, encoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return SplitLines(text), nil
}
