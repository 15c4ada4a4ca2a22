package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
	"github.com/superhyuk/statics-mc/internal/aggregation/core/ports"
)

// AnchorResolver finds the earliest capture across the full listing of all
// machines. It is a one-time scan; the result is persisted by the caller.
type AnchorResolver struct {
	lister ports.ObjectListerPort
	loc    *time.Location
	log    *slog.Logger
}

func NewAnchorResolver(lister ports.ObjectListerPort, loc *time.Location, log *slog.Logger) *AnchorResolver {
	return &AnchorResolver{lister: lister, loc: loc, log: log}
}

// Resolve returns the minimum record timestamp; ok is false when the listing
// holds no records.
func (r *AnchorResolver) Resolve(ctx context.Context, machineIDs []string) (anchor time.Time, ok bool, err error) {
	for _, st := range domain.StreamsFor(machineIDs) {
		err := drainPrefix(ctx, r.lister, st.Prefix(), func(key string) {
			rec, matched := Extract(key, st, r.loc)
			if !matched {
				return
			}
			if !ok || rec.Timestamp.Before(anchor) {
				anchor, ok = rec.Timestamp, true
			}
		})
		if err != nil {
			return time.Time{}, false, err
		}
	}
	if ok {
		r.log.Info("anchor_resolved", "first_date", anchor.Format(domain.TimestampLayout))
	}
	return anchor, ok, nil
}
