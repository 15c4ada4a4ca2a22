package usecase

import (
	"time"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
)

// WatermarkPolicy decides whether a record still has to be counted.
type WatermarkPolicy struct {
	Mode      RescanMode
	Watermark time.Time
}

// Accept is pure; the watermark moves only at the end of a run.
func (p WatermarkPolicy) Accept(rec domain.EventRecord) bool {
	if p.Mode == RescanFull {
		return true
	}
	return rec.Timestamp.After(p.Watermark)
}

func ParseWatermark(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(domain.TimestampLayout, s, loc)
}

func FormatWatermark(t time.Time) string {
	return t.Format(domain.TimestampLayout)
}

// Advance returns max(current, seen).
func Advance(current, seen time.Time) time.Time {
	if seen.After(current) {
		return seen
	}
	return current
}
