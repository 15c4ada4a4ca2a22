package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
	"github.com/superhyuk/statics-mc/internal/aggregation/core/ports"
)

const (
	CountsFile    = "data_counts.json"
	WatermarkFile = "last_processed.json"
)

// Store keeps the counts document and the watermark as two JSON files in
// one directory. Each file is replaced by writing a temp file and renaming
// it over the old one.
type Store struct {
	dir string
	mu  sync.Mutex
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

var _ ports.StateStorePort = (*Store)(nil)

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) Load(ctx context.Context) (*ports.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts, countsErr := os.ReadFile(s.path(CountsFile))
	wm, wmErr := os.ReadFile(s.path(WatermarkFile))
	countsMissing := errors.Is(countsErr, fs.ErrNotExist)
	wmMissing := errors.Is(wmErr, fs.ErrNotExist)

	switch {
	case countsErr != nil && !countsMissing:
		return nil, fmt.Errorf("read %s: %w", CountsFile, countsErr)
	case wmErr != nil && !wmMissing:
		return nil, fmt.Errorf("read %s: %w", WatermarkFile, wmErr)
	case countsMissing && wmMissing:
		return nil, ports.ErrStateNotFound
	case countsMissing:
		// A watermark without counts would skip every record it covers.
		return nil, fmt.Errorf("%w: %s exists without %s", ports.ErrStateCorrupt, WatermarkFile, CountsFile)
	}

	st := &ports.State{Counts: domain.NewDocument()}
	if err := json.Unmarshal(counts, st.Counts); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrStateCorrupt, CountsFile, err)
	}
	if !wmMissing {
		if err := json.Unmarshal(wm, &st.Watermark); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ports.ErrStateCorrupt, WatermarkFile, err)
		}
	}
	st.Counts.Normalize()
	return st, nil
}

// Save writes the counts first and the watermark second. A crash between
// the two renames leaves new counts behind an old watermark.
func (s *Store) Save(ctx context.Context, st *ports.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeJSON(CountsFile, st.Counts); err != nil {
		return err
	}
	return s.writeJSON(WatermarkFile, st.Watermark)
}

func (s *Store) SaveCounts(ctx context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(CountsFile, doc)
}

func (s *Store) writeJSON(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
