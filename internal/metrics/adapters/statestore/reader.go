package statestore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	aggdomain "github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
	aggports "github.com/superhyuk/statics-mc/internal/aggregation/core/ports"
	"github.com/superhyuk/statics-mc/internal/metrics/core/domain"
	"github.com/superhyuk/statics-mc/internal/metrics/core/ports"
)

// Reader answers count queries from the persisted aggregation state.
type Reader struct {
	store aggports.StateStorePort
}

func NewReader(store aggports.StateStorePort) *Reader {
	return &Reader{store: store}
}

var _ ports.CountsReaderPort = (*Reader)(nil)

func (r *Reader) load(ctx context.Context) (*aggports.State, error) {
	st, err := r.store.Load(ctx)
	if errors.Is(err, aggports.ErrStateNotFound) {
		return nil, ports.ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return st, nil
}

func (r *Reader) QueryCounts(ctx context.Context, f ports.CountsFilter) (*domain.CountsSeries, error) {
	g, ok := aggdomain.ParseGranularity(f.Granularity)
	if !ok {
		return nil, fmt.Errorf("unsupported granularity: %s", f.Granularity)
	}

	st, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	doc := st.Counts

	res := &domain.CountsSeries{
		Granularity: string(g),
		From:        f.From,
		To:          f.To,
		FirstDate:   doc.FirstDate,
		UpdatedAt:   doc.UpdatedAt,
		Buckets:     []domain.BucketCounts{},
	}
	if f.MachineID != nil {
		res.MachineID = *f.MachineID
	}

	buckets := doc.Buckets(g)
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		if f.From != "" && aggdomain.CompareBucketKeys(g, key, f.From) < 0 {
			continue
		}
		if f.To != "" && aggdomain.CompareBucketKeys(g, key, f.To) > 0 {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return aggdomain.CompareBucketKeys(g, keys[i], keys[j]) < 0
	})

	for _, key := range keys {
		b := domain.BucketCounts{Key: key}
		for id, e := range buckets[key] {
			if f.MachineID != nil && id != *f.MachineID {
				continue
			}
			mc := domain.MachineCounts{
				MachineID:   id,
				DisplayName: displayName(doc, id, e),
				Counts: domain.Counts{
					MICAnomaly:   e.MICAnomaly,
					MICProcessed: e.MICProcessed,
					ACCAnomaly:   e.ACCAnomaly,
					ACCProcessed: e.ACCProcessed,
				},
			}
			b.Machines = append(b.Machines, mc)
			res.Totals.Add(mc.Counts)
		}
		if len(b.Machines) == 0 {
			continue
		}
		sort.Slice(b.Machines, func(i, j int) bool {
			return b.Machines[i].MachineID < b.Machines[j].MachineID
		})
		res.Buckets = append(res.Buckets, b)
	}

	return res, nil
}

// displayName prefers the current registry name over the one frozen into
// the entry when it was first counted.
func displayName(doc *aggdomain.Document, id string, e *aggdomain.CounterEntry) string {
	if info, ok := doc.MachineInfo[id]; ok && info.DisplayName != "" {
		return info.DisplayName
	}
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return id
}

func (r *Reader) ReadWatermark(ctx context.Context) (*domain.WatermarkView, error) {
	st, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.WatermarkView{
		LastProcessedTime: st.Watermark.LastProcessedTime,
		UpdatedAt:         st.Counts.UpdatedAt,
	}, nil
}
