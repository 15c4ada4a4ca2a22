package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
	"github.com/superhyuk/statics-mc/internal/aggregation/core/ports"
)

// Window is one completed day or week bucket; End is exclusive.
type Window struct {
	Granularity domain.Granularity
	Key         string
	Start       time.Time
	End         time.Time
}

func (w Window) contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// days lists the midnight of every date inside the window.
func (w Window) days() []time.Time {
	var out []time.Time
	for d := w.Start; d.Before(w.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

type ReconcileReport struct {
	Probed int
	Fixed  int
	Empty  int
	Failed int
	// MaxTimestamp is the newest record written into a fixed window; zero if
	// nothing was fixed. The watermark advances past it so the next
	// incremental scan does not count those records again.
	MaxTimestamp time.Time
}

// Reconciler re-derives completed windows whose stored counts for a
// machine+channel are zero or absent. A window that is truly empty is
// probed again on every run; negatives are never cached.
type Reconciler struct {
	lister   ports.ObjectListerPort
	registry *domain.MachineRegistry
	opts     Options
	log      *slog.Logger
}

func NewReconciler(lister ports.ObjectListerPort, registry *domain.MachineRegistry, opts Options, log *slog.Logger) *Reconciler {
	return &Reconciler{lister: lister, registry: registry, opts: opts.withDefaults(), log: log}
}

// Windows returns the completed day windows of the last ReconcileDays days
// and the completed week windows of the last ReconcileWeeks weeks, never
// reaching before the anchor.
func (r *Reconciler) Windows(anchor, now time.Time) []Window {
	loc := r.opts.Location
	today := domain.StartOfDay(now, loc)
	anchorDay := domain.StartOfDay(anchor, loc)

	var out []Window

	first := today.AddDate(0, 0, -r.opts.ReconcileDays)
	if first.Before(anchorDay) {
		first = anchorDay
	}
	for d := first; d.Before(today); d = d.AddDate(0, 0, 1) {
		out = append(out, Window{
			Granularity: domain.Day,
			Key:         domain.DayKey(d),
			Start:       d,
			End:         d.AddDate(0, 0, 1),
		})
	}

	current := domain.WeekIndex(anchor.In(loc), today)
	firstWeek := current - r.opts.ReconcileWeeks
	if firstWeek < 1 {
		firstWeek = 1
	}
	for n := firstWeek; n < current; n++ {
		start := domain.WeekStart(anchor, n, loc)
		out = append(out, Window{
			Granularity: domain.Week,
			Key:         domain.WeekKey(n),
			Start:       start,
			End:         start.AddDate(0, 0, 7),
		})
	}
	return out
}

// Reconcile probes every window in Windows for every machine and channel.
// A failed probe leaves the window as-is; only cancellation aborts.
func (r *Reconciler) Reconcile(ctx context.Context, doc *domain.Document, anchor, now time.Time) (ReconcileReport, error) {
	var rep ReconcileReport
	for _, w := range r.Windows(anchor, now) {
		buckets := doc.Buckets(w.Granularity)
		for _, machineID := range r.registry.IDs() {
			for _, ch := range domain.Channels {
				if e, ok := buckets.Lookup(w.Key, machineID); ok && e.ChannelTotal(ch) > 0 {
					continue
				}
				rep.Probed++
				counts, newest, err := r.probe(ctx, w, machineID, ch)
				if err != nil {
					if ctx.Err() != nil {
						return rep, ctx.Err()
					}
					rep.Failed++
					r.log.Warn("reconcile_window_failed",
						"window", w.Key, "machine_id", machineID, "channel", ch, "err", err)
					continue
				}
				if counts[domain.StatusAnomaly]+counts[domain.StatusProcessed] == 0 {
					rep.Empty++
					continue
				}
				e := buckets.Entry(w.Key, machineID, func() *domain.CounterEntry {
					return domain.NewCounterEntry(r.registry.DisplayName(machineID))
				})
				for _, st := range domain.Statuses {
					e.Set(ch, st, counts[st])
				}
				rep.Fixed++
				rep.MaxTimestamp = Advance(rep.MaxTimestamp, newest)
				r.log.Info("reconcile_window_fixed",
					"window", w.Key,
					"machine_id", machineID,
					"channel", ch,
					"anomaly", counts[domain.StatusAnomaly],
					"processed", counts[domain.StatusProcessed],
				)
			}
		}
	}
	return rep, nil
}

// probe recounts one machine+channel inside w straight from the source and
// reports the newest timestamp it counted.
func (r *Reconciler) probe(ctx context.Context, w Window, machineID string, ch domain.Channel) (map[domain.Status]int64, time.Time, error) {
	counts := make(map[domain.Status]int64, len(domain.Statuses))
	var newest time.Time
	for _, st := range domain.Statuses {
		stream := domain.Stream{MachineID: machineID, Channel: ch, Status: st}
		for _, prefix := range r.prefixes(stream, w) {
			listed := 0
			err := drainPrefix(ctx, r.lister, prefix, func(key string) {
				listed++
				rec, ok := Extract(key, stream, r.opts.Location)
				if !ok || !w.contains(rec.Timestamp) {
					return
				}
				counts[st]++
				newest = Advance(newest, rec.Timestamp)
			})
			if err != nil {
				return nil, time.Time{}, err
			}
			// Keys that do not start with YYYYMMDD never match a date prefix.
			if listed == 0 && r.opts.DatePrefixedKeys {
				r.log.Debug("reconcile_prefix_empty", "prefix", prefix, "window", w.Key)
			}
		}
	}
	return counts, newest, nil
}

// prefixes narrows the listing to the window's dates when keys start with
// YYYYMMDD; otherwise the whole stream is listed and filtered by time.
func (r *Reconciler) prefixes(stream domain.Stream, w Window) []string {
	if !r.opts.DatePrefixedKeys {
		return []string{stream.Prefix()}
	}
	days := w.days()
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, stream.Prefix()+d.Format("20060102"))
	}
	return out
}
