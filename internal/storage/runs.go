/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Run statuses.
const (
	RunOK     = "ok"
	RunFailed = "failed"
)

// RunRecord is the outcome of reinserting one scene.
type RunRecord struct {
	RunTag     string
	Scene      string
	Status     string
	Boxes      int
	Warnings   int
	Error      string
	FinishedAt time.Time
}

// RecordRun appends r to the run history. A zero FinishedAt is set to now.
func RecordRun(ctx context.Context, db *sql.DB, r RunRecord) error {
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	var errText sql.NullString
	if r.Error != "" {
		errText = sql.NullString{String: r.Error, Valid: true}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO runs(run_tag, scene, status, boxes, warnings, error, finished_at) VALUES(?,?,?,?,?,?,?)`,
		r.RunTag, r.Scene, r.Status, r.Boxes, r.Warnings, errText, r.FinishedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record run %s/%s: %w", r.RunTag, r.Scene, err)
	}
	return nil
}

// LatestRuns returns the most recent record of every scene for runTag,
// ordered by scene.
func LatestRuns(ctx context.Context, db *sql.DB, runTag string) ([]RunRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.run_tag, r.scene, r.status, r.boxes, r.warnings, COALESCE(r.error,''), r.finished_at
		FROM runs r
		WHERE r.run_tag = ? AND r.id = (SELECT MAX(id) FROM runs WHERE run_tag = r.run_tag AND scene = r.scene)
		ORDER BY r.scene`, runTag)
	if err != nil {
		return nil, fmt.Errorf("latest runs: %w", err)
	}
	defer rows.Close()
	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var ts string
		if err := rows.Scan(&r.RunTag, &r.Scene, &r.Status, &r.Boxes, &r.Warnings, &r.Error, &ts); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339Nano, ts); perr == nil {
			r.FinishedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
