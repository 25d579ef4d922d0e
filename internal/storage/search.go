/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// SearchQuery describes a dialogue lookup.
// Text is matched literally as a substring. Three or more characters use the
// trigram FTS index; shorter text falls back to a LIKE scan.
// Speaker and Scene filter exactly (case-insensitive); Types restricts to box or chunk.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text    string
	Speaker string
	Scene   string
	Types   []string
	Limit   int
	Offset  int
}

// SearchResult represents a single match row.
// Snippet is a highlighted excerpt using [ ] markers when the FTS index was used,
// and the full text otherwise.
type SearchResult struct {
	DocID   int64
	Type    string
	Scene   string
	Ref     int
	Speaker string
	Snippet string
}

// Search runs q against the workspace's dialogue index.
func Search(ctx context.Context, root string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("workspace root is required")
	}
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return SearchDB(ctx, db, q)
}

// SearchDB is Search over an already open index.
func SearchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	text := strings.TrimSpace(q.Text)
	useFTS := utf8.RuneCountInString(text) >= 3
	switch {
	case useFTS:
		sb.WriteString("SELECT d.doc_id, d.type, d.scene, d.ref, COALESCE(d.speaker,''), snippet(fts_documents, 0, '[', ']', '…', 12)\n")
		sb.WriteString("FROM fts_documents JOIN documents d ON fts_documents.rowid = d.doc_id\n")
		sb.WriteString("WHERE fts_documents MATCH ?\n")
		args = append(args, ftsPhrase(text))
	default:
		sb.WriteString("SELECT d.doc_id, d.type, d.scene, d.ref, COALESCE(d.speaker,''), COALESCE(d.text,'')\n")
		sb.WriteString("FROM documents d\nWHERE 1=1\n")
		if text != "" {
			sb.WriteString(" AND d.text LIKE ? ESCAPE '\\'\n")
			args = append(args, likeContains(escapeLike(text)))
		}
	}
	if len(q.Types) > 0 {
		sb.WriteString(" AND d.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	if s := strings.TrimSpace(q.Speaker); s != "" {
		sb.WriteString(" AND lower(d.speaker) = lower(?)\n")
		args = append(args, s)
	}
	if s := strings.TrimSpace(q.Scene); s != "" {
		sb.WriteString(" AND lower(d.scene) = lower(?)\n")
		args = append(args, s)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY d.scene, d.type, d.ref\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var sn sql.NullString
		if err := rows.Scan(&r.DocID, &r.Type, &r.Scene, &r.Ref, &r.Speaker, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if sn.Valid {
			r.Snippet = sn.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ftsPhrase quotes text as a single FTS5 phrase so punctuation is literal.
func ftsPhrase(text string) string {
	return `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func likeContains(s string) string { return "%" + s + "%" }

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
