package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
	"github.com/superhyuk/statics-mc/internal/aggregation/core/ports"

	"golang.org/x/sync/errgroup"
)

// drainPrefix pages through prefix until the listing is no longer truncated.
func drainPrefix(ctx context.Context, lister ports.ObjectListerPort, prefix string, fn func(key string)) error {
	token := ""
	for {
		page, err := lister.List(ctx, prefix, token)
		if err != nil {
			return fmt.Errorf("list %q: %w", prefix, err)
		}
		for _, key := range page.Keys {
			fn(key)
		}
		if !page.IsTruncated {
			return nil
		}
		if page.NextToken == "" {
			return fmt.Errorf("list %q: %w", prefix, ErrBadPagination)
		}
		token = page.NextToken
	}
}

type ScanResult struct {
	Tally        *Tally
	Listed       int
	Accepted     int
	Skipped      int
	Stale        int
	Inconsistent int
	// MaxTimestamp is the newest accepted record; zero if none.
	MaxTimestamp time.Time
}

func (r *ScanResult) merge(o *ScanResult) {
	r.Tally.Merge(o.Tally)
	r.Listed += o.Listed
	r.Accepted += o.Accepted
	r.Skipped += o.Skipped
	r.Stale += o.Stale
	r.Inconsistent += o.Inconsistent
	r.MaxTimestamp = Advance(r.MaxTimestamp, o.MaxTimestamp)
}

// Scanner runs the per-stream listing passes on a bounded pool.
type Scanner struct {
	lister  ports.ObjectListerPort
	loc     *time.Location
	workers int
	log     *slog.Logger
}

func NewScanner(lister ports.ObjectListerPort, loc *time.Location, workers int, log *slog.Logger) *Scanner {
	if workers <= 0 {
		workers = 1
	}
	return &Scanner{lister: lister, loc: loc, workers: workers, log: log}
}

// Scan lists every stream, filters with policy and folds accepted records
// into private tallies that are summed once all workers finish. The first
// listing error cancels the remaining streams.
func (s *Scanner) Scan(ctx context.Context, streams []domain.Stream, policy WatermarkPolicy, newTally func() *Tally) (*ScanResult, error) {
	results := make([]*ScanResult, len(streams))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, st := range streams {
		g.Go(func() error {
			res, err := s.scanStream(gctx, st, policy, newTally())
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &ScanResult{Tally: newTally()}
	for _, r := range results {
		total.merge(r)
	}
	return total, nil
}

func (s *Scanner) scanStream(ctx context.Context, st domain.Stream, policy WatermarkPolicy, tally *Tally) (*ScanResult, error) {
	res := &ScanResult{Tally: tally}
	err := drainPrefix(ctx, s.lister, st.Prefix(), func(key string) {
		res.Listed++
		rec, ok := Extract(key, st, s.loc)
		if !ok {
			res.Skipped++
			s.log.Debug("scan_key_skipped", "key", key)
			return
		}
		if !policy.Accept(rec) {
			res.Stale++
			return
		}
		if err := tally.Apply(rec); err != nil {
			res.Inconsistent++
			level := slog.LevelWarn
			if errors.Is(err, ErrAnchorMissing) {
				level = slog.LevelError
			}
			s.log.Log(ctx, level, "scan_record_rejected", "key", key, "err", err)
			return
		}
		res.Accepted++
		res.MaxTimestamp = Advance(res.MaxTimestamp, rec.Timestamp)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("scan_stream_done",
		"prefix", st.Prefix(),
		"listed", res.Listed,
		"accepted", res.Accepted,
		"stale", res.Stale,
	)
	return res, nil
}
