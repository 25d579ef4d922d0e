/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Scene files are named <kind><4 digits> with kind one of SN, SC, SP, SG, optionally
// prefixed by $<n>$ for content appended by later patches.
var (
	reSceneFile = regexp.MustCompile(`(?i)^(?:\$\d{1,2}\$)?(SC|SN|SP|SG)\d{4}\.(txt|yaml)$`)
	reSceneID   = regexp.MustCompile(`^(?:\$\d{1,2}\$)?(SN|SC|SP|SG)(\d{4})`)
)

var sceneKindRank = map[string]int{"SN": 0, "SC": 1, "SP": 2, "SG": 3}

// IsSceneFile reports whether a file name (not a path) is a scene script or scene YAML.
func IsSceneFile(name string) bool { return reSceneFile.MatchString(name) }

// SceneID returns the scene id of a file path, i.e. its base name without extension.
func SceneID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SceneSortKey orders scenes SN < SC < SP < SG, then by number, with $-prefixed
// variants after every base scene of the same kind. ok is false for names that
// are not scene ids.
func SceneSortKey(id string) (rank, num int, ok bool) {
	m := reSceneID.FindStringSubmatch(id)
	if m == nil {
		return 0, 0, false
	}
	n, _ := strconv.Atoi(m[2])
	if strings.HasPrefix(id, "$") {
		n += 10000
	}
	return sceneKindRank[m[1]], n, true
}

// SortScenes sorts scene ids in place by SceneSortKey. Non-scene names go last, by name.
func SortScenes(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		ri, ni, oki := SceneSortKey(ids[i])
		rj, nj, okj := SceneSortKey(ids[j])
		switch {
		case oki != okj:
			return oki
		case !oki:
			return ids[i] < ids[j]
		case ri != rj:
			return ri < rj
		case ni != nj:
			return ni < nj
		default:
			return ids[i] < ids[j]
		}
	})
}
