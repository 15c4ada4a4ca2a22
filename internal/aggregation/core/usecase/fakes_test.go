package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
	"github.com/superhyuk/statics-mc/internal/aggregation/core/ports"
)

// fakeLister serves a fixed key set by prefix, paginated by pageSize.
type fakeLister struct {
	mu       sync.Mutex
	keys     []string
	pageSize int
	ListFn   func(ctx context.Context, prefix, token string) (ports.ListPage, error)
	prefixes []string
}

func newFakeLister(keys ...string) *fakeLister {
	f := &fakeLister{pageSize: 2}
	f.add(keys...)
	return f
}

func (f *fakeLister) add(keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, keys...)
	sort.Strings(f.keys)
}

func (f *fakeLister) List(ctx context.Context, prefix, token string) (ports.ListPage, error) {
	f.mu.Lock()
	f.prefixes = append(f.prefixes, prefix)
	fn := f.ListFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, prefix, token)
	}
	return f.page(prefix, token)
}

func (f *fakeLister) page(prefix, token string) (ports.ListPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []string
	for _, k := range f.keys {
		if strings.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	start := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil {
			return ports.ListPage{}, fmt.Errorf("bad token %q", token)
		}
		start = n
	}
	size := f.pageSize
	if size <= 0 {
		size = 1000
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	page := ports.ListPage{Keys: append([]string(nil), matched[start:end]...)}
	if end < len(matched) {
		page.IsTruncated = true
		page.NextToken = strconv.Itoa(end)
	}
	return page, nil
}

func (f *fakeLister) listed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prefixes...)
}

// fakeStore keeps documents as JSON so every Load returns a fresh copy.
type fakeStore struct {
	counts     []byte
	watermark  []byte
	LoadErr    error
	SaveErr    error
	saves      int
	countSaves int
}

func (s *fakeStore) Load(ctx context.Context) (*ports.State, error) {
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.counts == nil && s.watermark == nil {
		return nil, ports.ErrStateNotFound
	}
	st := &ports.State{Counts: domain.NewDocument()}
	if s.counts != nil {
		if err := json.Unmarshal(s.counts, st.Counts); err != nil {
			return nil, fmt.Errorf("%w: %v", ports.ErrStateCorrupt, err)
		}
	}
	if s.watermark != nil {
		if err := json.Unmarshal(s.watermark, &st.Watermark); err != nil {
			return nil, fmt.Errorf("%w: %v", ports.ErrStateCorrupt, err)
		}
	}
	return st, nil
}

func (s *fakeStore) Save(ctx context.Context, st *ports.State) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.saves++
	s.counts = mustJSON(st.Counts)
	s.watermark = mustJSON(st.Watermark)
	return nil
}

func (s *fakeStore) SaveCounts(ctx context.Context, doc *domain.Document) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.countSaves++
	s.counts = mustJSON(doc)
	return nil
}

func (s *fakeStore) seed(t *testing.T, doc *domain.Document, watermark string) {
	t.Helper()
	s.counts = mustJSON(doc)
	s.watermark = mustJSON(domain.Watermark{LastProcessedTime: watermark})
}

func (s *fakeStore) doc(t *testing.T) *domain.Document {
	t.Helper()
	st, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load stored state: %v", err)
	}
	return st.Counts
}

func (s *fakeStore) lastWatermark(t *testing.T) string {
	t.Helper()
	st, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load stored state: %v", err)
	}
	return st.Watermark.LastProcessedTime
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// captureKey builds a key in the bucket layout, e.g.
// MACHINE2/result_MIC/processed/20250101_090000_D01_MIC.wav
func captureKey(machine string, ch domain.Channel, st domain.Status, ts string) string {
	return fmt.Sprintf("%s/result_%s/%s/%s_D01_%s.wav", machine, ch, st, ts, ch)
}

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation(domain.TimestampLayout, s, time.UTC)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}
