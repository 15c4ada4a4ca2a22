package ports

import (
	"context"
	"errors"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
)

var (
	// ErrStateNotFound: no documents have been persisted yet.
	ErrStateNotFound = errors.New("aggregation state not found")
	// ErrStateCorrupt: documents exist but cannot be decoded.
	ErrStateCorrupt = errors.New("aggregation state corrupt")
)

type State struct {
	Counts    *domain.Document
	Watermark domain.Watermark
}

type StateStorePort interface {
	// Load:
	//   state, nil              -> both documents (watermark may be empty)
	//   nil, ErrStateNotFound   -> first run
	//   nil, ErrStateCorrupt    -> unreadable documents
	Load(ctx context.Context) (*State, error)

	// Save replaces the counts document and the watermark as a whole.
	Save(ctx context.Context, s *State) error

	// SaveCounts replaces only the counts document.
	SaveCounts(ctx context.Context, doc *domain.Document) error
}
