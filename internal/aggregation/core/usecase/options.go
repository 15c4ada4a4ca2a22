package usecase

import (
	"errors"
	"time"
)

var (
	ErrBeforeAnchor   = errors.New("record is dated before the anchor")
	ErrAnchorMissing  = errors.New("counts document has no anchor date")
	ErrUnknownMachine = errors.New("record has no machine id")
	ErrInvalidRecord  = errors.New("record has an unknown channel or status")
	ErrBadPagination  = errors.New("listing is truncated but has no continuation token")
)

type RescanMode string

const (
	// RescanIncremental counts only records newer than the watermark.
	RescanIncremental RescanMode = "incremental"
	// RescanFull zeroes every counter and recounts the whole listing.
	RescanFull RescanMode = "full"
)

type AnchorPolicy string

const (
	// AnchorFirstRun computes the anchor only when no state exists at all.
	AnchorFirstRun AnchorPolicy = "first_run"
	// AnchorWhenMissing computes the anchor whenever first_date is empty.
	AnchorWhenMissing AnchorPolicy = "when_missing"
)

type CorruptStatePolicy string

const (
	CorruptStateFail  CorruptStatePolicy = "fail"
	CorruptStateReset CorruptStatePolicy = "reset"
)

// Options are the named behaviour flags of one aggregation pipeline.
type Options struct {
	Mode                RescanMode
	EnableMinuteBuckets bool
	Location            *time.Location
	AnchorPolicy        AnchorPolicy
	OnCorruptState      CorruptStatePolicy
	Workers             int
	ReconcileDays       int
	ReconcileWeeks      int
	DatePrefixedKeys    bool
	InitialWatermark    time.Time
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = RescanIncremental
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.AnchorPolicy == "" {
		o.AnchorPolicy = AnchorWhenMissing
	}
	if o.OnCorruptState == "" {
		o.OnCorruptState = CorruptStateFail
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return o
}
