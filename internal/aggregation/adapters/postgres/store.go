package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
	"github.com/superhyuk/statics-mc/internal/aggregation/core/ports"

	"github.com/lib/pq"
)

// Row names in count_documents.
const (
	CountsName    = "data_counts"
	WatermarkName = "last_processed"
)

// Store keeps both documents as JSONB rows of one table.
type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

var _ ports.StateStorePort = (*Store)(nil)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS count_documents (
    name       TEXT PRIMARY KEY,
    body       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const selectDocumentsSQL = `
SELECT name, body
FROM count_documents
WHERE name = ANY($1)
`

// One statement for both rows, so they are replaced together.
const upsertBothSQL = `
INSERT INTO count_documents (name, body, updated_at)
VALUES
    ($1, $2::jsonb, now()),
    ($3, $4::jsonb, now())
ON CONFLICT (name) DO UPDATE
SET body = EXCLUDED.body,
    updated_at = EXCLUDED.updated_at;
`

const upsertOneSQL = `
INSERT INTO count_documents (name, body, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (name) DO UPDATE
SET body = EXCLUDED.body,
    updated_at = EXCLUDED.updated_at;
`

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create count_documents: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (*ports.State, error) {
	rows, err := s.db.QueryContext(ctx, selectDocumentsSQL, pq.Array([]string{CountsName, WatermarkName}))
	if err != nil {
		return nil, fmt.Errorf("select count_documents: %w", err)
	}
	defer rows.Close()

	bodies := map[string][]byte{}
	for rows.Next() {
		var name string
		var body []byte
		if err := rows.Scan(&name, &body); err != nil {
			return nil, fmt.Errorf("scan count_documents: %w", err)
		}
		bodies[name] = body
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select count_documents: %w", err)
	}

	counts, hasCounts := bodies[CountsName]
	wm, hasWM := bodies[WatermarkName]
	switch {
	case !hasCounts && !hasWM:
		return nil, ports.ErrStateNotFound
	case !hasCounts:
		return nil, fmt.Errorf("%w: %s row exists without %s", ports.ErrStateCorrupt, WatermarkName, CountsName)
	}

	st := &ports.State{Counts: domain.NewDocument()}
	if err := json.Unmarshal(counts, st.Counts); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrStateCorrupt, CountsName, err)
	}
	if hasWM {
		if err := json.Unmarshal(wm, &st.Watermark); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ports.ErrStateCorrupt, WatermarkName, err)
		}
	}
	st.Counts.Normalize()
	return st, nil
}

func (s *Store) Save(ctx context.Context, st *ports.State) error {
	counts, err := json.Marshal(st.Counts)
	if err != nil {
		return fmt.Errorf("encode %s: %w", CountsName, err)
	}
	wm, err := json.Marshal(st.Watermark)
	if err != nil {
		return fmt.Errorf("encode %s: %w", WatermarkName, err)
	}
	if _, err := s.db.ExecContext(ctx, upsertBothSQL, CountsName, string(counts), WatermarkName, string(wm)); err != nil {
		return fmt.Errorf("upsert count_documents: %w", err)
	}
	return nil
}

func (s *Store) SaveCounts(ctx context.Context, doc *domain.Document) error {
	counts, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", CountsName, err)
	}
	if _, err := s.db.ExecContext(ctx, upsertOneSQL, CountsName, string(counts)); err != nil {
		return fmt.Errorf("upsert count_documents: %w", err)
	}
	return nil
}
