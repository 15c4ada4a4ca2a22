package usecase

import (
	"fmt"
	"time"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
)

// ResolveWeek returns the week index of t relative to anchor.
// Records dated before the anchor are reported with ErrBeforeAnchor.
func ResolveWeek(anchor, t time.Time) (int, error) {
	if anchor.IsZero() {
		return 0, ErrAnchorMissing
	}
	n := domain.WeekIndex(anchor, t)
	if n < 1 {
		return n, fmt.Errorf("%w: week index %d for %s", ErrBeforeAnchor, n, t.Format(domain.TimestampLayout))
	}
	return n, nil
}

// Tally holds the per-granularity counts folded from a set of records.
// Each scan worker owns a private Tally; tallies are merged afterwards.
type Tally struct {
	anchor   time.Time
	today    string // YYYYMMDD of the processing day; empty disables minute buckets
	registry *domain.MachineRegistry
	buckets  map[domain.Granularity]domain.BucketMap
}

func NewTally(anchor time.Time, today string, registry *domain.MachineRegistry) *Tally {
	t := &Tally{
		anchor:   anchor,
		today:    today,
		registry: registry,
		buckets:  make(map[domain.Granularity]domain.BucketMap, len(domain.Granularities)),
	}
	for _, g := range domain.Granularities {
		t.buckets[g] = domain.BucketMap{}
	}
	return t
}

func (t *Tally) Buckets(g domain.Granularity) domain.BucketMap {
	return t.buckets[g]
}

func (t *Tally) newEntry(machineID string) func() *domain.CounterEntry {
	return func() *domain.CounterEntry {
		return domain.NewCounterEntry(t.registry.DisplayName(machineID))
	}
}

// bucketKeys computes every key of rec before anything is touched, so a
// failing record leaves all granularities unchanged.
func (t *Tally) bucketKeys(rec domain.EventRecord) (map[domain.Granularity]string, error) {
	if rec.MachineID == "" {
		return nil, ErrUnknownMachine
	}
	if !rec.Channel.Valid() || !rec.Status.Valid() {
		return nil, fmt.Errorf("%w: %s/%s", ErrInvalidRecord, rec.Channel, rec.Status)
	}
	week, err := ResolveWeek(t.anchor, rec.Timestamp)
	if err != nil {
		return nil, err
	}
	keys := map[domain.Granularity]string{
		domain.Hour:  domain.HourKey(rec.Timestamp),
		domain.Day:   domain.DayKey(rec.Timestamp),
		domain.Week:  domain.WeekKey(week),
		domain.Month: domain.MonthKey(rec.Timestamp),
	}
	if t.today != "" && rec.Timestamp.Format("20060102") == t.today {
		keys[domain.Minute] = domain.MinuteKey(rec.Timestamp)
	}
	return keys, nil
}

// Apply folds one record into every active granularity, or into none.
func (t *Tally) Apply(rec domain.EventRecord) error {
	keys, err := t.bucketKeys(rec)
	if err != nil {
		return err
	}
	for g, key := range keys {
		t.buckets[g].Entry(key, rec.MachineID, t.newEntry(rec.MachineID)).Add(rec.Channel, rec.Status, 1)
	}
	return nil
}

// Merge sums other into t.
func (t *Tally) Merge(other *Tally) {
	for g, src := range other.buckets {
		mergeBuckets(t.buckets[g], src, t.newEntry)
	}
}

// AddTo sums the tally into the document's count maps.
func (t *Tally) AddTo(doc *domain.Document) {
	for g, src := range t.buckets {
		mergeBuckets(doc.Buckets(g), src, t.newEntry)
	}
}

func mergeBuckets(dst, src domain.BucketMap, newEntry func(string) func() *domain.CounterEntry) {
	for key, machines := range src {
		for id, e := range machines {
			dst.Entry(key, id, newEntry(id)).AddAll(e)
		}
	}
}

// Aggregator prepares the counts document for one pass.
type Aggregator struct {
	registry *domain.MachineRegistry
	opts     Options
}

func NewAggregator(registry *domain.MachineRegistry, opts Options) *Aggregator {
	return &Aggregator{registry: registry, opts: opts.withDefaults()}
}

// Today returns the minute-bucket day for now, or "" when minute buckets are off.
func (a *Aggregator) Today(now time.Time) string {
	if !a.opts.EnableMinuteBuckets {
		return ""
	}
	return now.In(a.opts.Location).Format("20060102")
}

// PrepareDocument zeroes all counters in full-rescan mode and drops minute
// buckets that do not belong to the current processing day.
func (a *Aggregator) PrepareDocument(doc *domain.Document, now time.Time) {
	doc.Normalize()
	if a.opts.Mode == RescanFull {
		doc.ResetCounts()
	}
	today := a.Today(now)
	for key := range doc.MinuteData {
		if today == "" || domain.MinuteKeyDate(key) != today {
			delete(doc.MinuteData, key)
		}
	}
	doc.MachineInfo = a.registry.Info()
}

// NewTally returns an empty tally bound to anchor and the processing day of now.
func (a *Aggregator) NewTally(anchor, now time.Time) *Tally {
	return NewTally(anchor, a.Today(now), a.registry)
}
