// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openkpis/sheetsync/pkg/types"
)

// QueryOptions holds parameters for catalog searches.
type QueryOptions struct {
	// Query is matched as a case-insensitive substring of the id, title,
	// description and tags.
	Query string

	// Section restricts results to one index artifact (kpis, events, ...).
	Section string

	// Tags filters by one or more tags with AND semantics.
	Tags []string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Section == "" && len(q.Tags) == 0
}

// SearchResult is an index record together with the section it was loaded
// from.
type SearchResult struct {
	Section string `json:"section" yaml:"section"`

	types.IndexRecord `yaml:",inline"`
}

// Search queries the catalog. Title matches rank ahead of other matches;
// ties are ordered by section and id.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]SearchResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT section, id, title, description, slug, tags, category, industry, featured, added
		FROM records r
		WHERE 1=1`)

	pattern := ""
	if opts.Query != "" {
		pattern = "%" + escapeLike(strings.ToLower(opts.Query)) + "%"
		qb.WriteString(` AND (lower(r.id) LIKE ? ESCAPE '\'
			OR lower(r.title) LIKE ? ESCAPE '\'
			OR lower(r.description) LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM json_each(r.tags) WHERE lower(value) LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern, pattern, pattern)
	}

	if opts.Section != "" {
		qb.WriteString(` AND r.section = ?`)
		args = append(args, opts.Section)
	}

	for _, tag := range opts.Tags {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(r.tags) WHERE value = ?)`)
		args = append(args, tag)
	}

	if pattern != "" {
		qb.WriteString(` ORDER BY CASE WHEN lower(r.title) LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, r.section, r.id`)
		args = append(args, pattern)
	} else {
		qb.WriteString(` ORDER BY r.section, r.id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			sr                SearchResult
			title, desc, slug sql.NullString
			tagsJSON          sql.NullString
			categoryJSON      sql.NullString
			industryJSON      sql.NullString
			featuredJSON      sql.NullString
			addedJSON         sql.NullString
		)

		if err := rows.Scan(
			&sr.Section, &sr.ID, &title, &desc, &slug,
			&tagsJSON, &categoryJSON, &industryJSON, &featuredJSON, &addedJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		sr.Title = title.String
		sr.Description = desc.String
		sr.Slug = slug.String
		sr.Tags = []string{}
		if tagsJSON.Valid {
			json.Unmarshal([]byte(tagsJSON.String), &sr.Tags)
		}
		sr.Category = decodeJSON(categoryJSON)
		sr.Industry = decodeJSON(industryJSON)
		sr.Featured = decodeJSON(featuredJSON)
		sr.Added = decodeJSON(addedJSON)

		results = append(results, sr)
	}

	return results, rows.Err()
}

// Count returns the number of records loaded per section.
func (s *Store) Count(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT section, COUNT(*) FROM records GROUP BY section`)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var section string
		var n int
		if err := rows.Scan(&section, &n); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		counts[section] = n
	}
	return counts, rows.Err()
}

func decodeJSON(ns sql.NullString) any {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(ns.String), &v); err != nil {
		return ns.String
	}
	return v
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
