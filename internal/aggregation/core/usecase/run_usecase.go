package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
	"github.com/superhyuk/statics-mc/internal/aggregation/core/ports"

	"github.com/google/uuid"
)

type RunState string

const (
	StateLoad      RunState = "LOAD"
	StateScan      RunState = "SCAN"
	StateReconcile RunState = "RECONCILE"
	StatePersist   RunState = "PERSIST"
	StateDone      RunState = "DONE"
	StateFailed    RunState = "FAILED"
)

type RunReport struct {
	RunID string
	Mode  RescanMode
	// State is DONE, or FAILED together with FailedIn.
	State    RunState
	FailedIn RunState

	Listed       int
	Accepted     int
	Skipped      int
	Stale        int
	Inconsistent int

	Reconcile ReconcileReport

	PrevWatermark string
	Watermark     string
	WatermarkTime time.Time
	Duration      time.Duration
}

// RunObserver receives the report of every finished run.
type RunObserver interface {
	ObserveRun(rep RunReport, err error)
}

// RunUseCase sequences LOAD -> SCAN -> RECONCILE -> PERSIST for one
// invocation. Persisted state is written only when every earlier step
// succeeded; a failed run leaves the previous documents in place.
type RunUseCase struct {
	store    ports.StateStorePort
	lister   ports.ObjectListerPort
	registry *domain.MachineRegistry
	opts     Options
	log      *slog.Logger

	aggregator *Aggregator
	scanner    *Scanner
	reconciler *Reconciler
	anchors    *AnchorResolver

	now      func() time.Time
	observer RunObserver
}

func NewRunUseCase(store ports.StateStorePort, lister ports.ObjectListerPort, registry *domain.MachineRegistry, opts Options, log *slog.Logger) *RunUseCase {
	opts = opts.withDefaults()
	return &RunUseCase{
		store:      store,
		lister:     lister,
		registry:   registry,
		opts:       opts,
		log:        log,
		aggregator: NewAggregator(registry, opts),
		scanner:    NewScanner(lister, opts.Location, opts.Workers, log),
		reconciler: NewReconciler(lister, registry, opts, log),
		anchors:    NewAnchorResolver(lister, opts.Location, log),
		now:        time.Now,
	}
}

// WithClock replaces the wall clock; used by tests.
func (uc *RunUseCase) WithClock(now func() time.Time) *RunUseCase {
	uc.now = now
	return uc
}

func (uc *RunUseCase) WithObserver(o RunObserver) *RunUseCase {
	uc.observer = o
	return uc
}

func (uc *RunUseCase) Execute(ctx context.Context) (RunReport, error) {
	start := time.Now()
	rep := RunReport{RunID: uuid.NewString(), Mode: uc.opts.Mode, State: StateLoad}
	log := uc.log.With("run_id", rep.RunID)
	log.Info("run_start", "mode", uc.opts.Mode, "machines", len(uc.registry.IDs()))

	err := uc.execute(ctx, log, &rep)
	rep.Duration = time.Since(start)
	if err != nil {
		rep.FailedIn = rep.State
		rep.State = StateFailed
		log.Error("run_failed", "state", rep.FailedIn, "err", err)
	} else {
		rep.State = StateDone
		log.Info("run_done",
			"listed", rep.Listed,
			"accepted", rep.Accepted,
			"skipped", rep.Skipped,
			"stale", rep.Stale,
			"inconsistent", rep.Inconsistent,
			"reconcile_probed", rep.Reconcile.Probed,
			"reconcile_fixed", rep.Reconcile.Fixed,
			"reconcile_failed", rep.Reconcile.Failed,
			"watermark", rep.Watermark,
			"duration_ms", rep.Duration.Milliseconds(),
		)
	}
	if uc.observer != nil {
		uc.observer.ObserveRun(rep, err)
	}
	return rep, err
}

func (uc *RunUseCase) execute(ctx context.Context, log *slog.Logger, rep *RunReport) error {
	now := uc.now().In(uc.opts.Location)

	doc, watermark, origin, err := uc.load(ctx, log)
	if err != nil {
		return err
	}
	rep.PrevWatermark = FormatWatermark(watermark)

	anchor, hasAnchor, err := uc.ensureAnchor(ctx, log, doc, origin)
	if err != nil {
		return err
	}

	rep.State = StateScan
	uc.aggregator.PrepareDocument(doc, now)
	policy := WatermarkPolicy{Mode: uc.opts.Mode, Watermark: watermark}
	newTally := func() *Tally { return uc.aggregator.NewTally(anchor, now) }

	res, err := uc.scanner.Scan(ctx, domain.StreamsFor(uc.registry.IDs()), policy, newTally)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	res.Tally.AddTo(doc)
	rep.Listed, rep.Accepted, rep.Skipped = res.Listed, res.Accepted, res.Skipped
	rep.Stale, rep.Inconsistent = res.Stale, res.Inconsistent

	rep.State = StateReconcile
	if hasAnchor {
		rep.Reconcile, err = uc.reconciler.Reconcile(ctx, doc, anchor, now)
		if err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
	}

	rep.State = StatePersist
	if err := ctx.Err(); err != nil {
		return err
	}
	next := Advance(Advance(watermark, res.MaxTimestamp), rep.Reconcile.MaxTimestamp)
	rep.Watermark = FormatWatermark(next)
	rep.WatermarkTime = next
	doc.UpdatedAt = now.Format(domain.UpdatedAtLayout)

	state := &ports.State{
		Counts:    doc,
		Watermark: domain.Watermark{LastProcessedTime: rep.Watermark},
	}
	if err := uc.store.Save(ctx, state); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

// stateOrigin tells where the documents a run starts from came from.
type stateOrigin int

const (
	originStored stateOrigin = iota
	originEmpty
	// originDiscarded is empty state standing in for a corrupt one that is
	// still on disk; nothing may be written before the final save.
	originDiscarded
)

func (o stateOrigin) fresh() bool { return o != originStored }

// load reads the prior documents. A corrupt state is either surfaced or, under
// CorruptStateReset, replaced in memory by empty state.
func (uc *RunUseCase) load(ctx context.Context, log *slog.Logger) (doc *domain.Document, watermark time.Time, origin stateOrigin, err error) {
	st, err := uc.store.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ports.ErrStateNotFound):
		log.Info("state_not_found", "initial_watermark", FormatWatermark(uc.opts.InitialWatermark))
		return domain.NewDocument(), uc.opts.InitialWatermark, originEmpty, nil
	case errors.Is(err, ports.ErrStateCorrupt):
		return uc.discardCorrupt(log, err)
	default:
		return nil, time.Time{}, originStored, fmt.Errorf("load state: %w", err)
	}

	doc = st.Counts
	if doc == nil {
		doc = domain.NewDocument()
	}
	doc.Normalize()

	watermark = uc.opts.InitialWatermark
	if s := st.Watermark.LastProcessedTime; s != "" {
		watermark, err = ParseWatermark(s, uc.opts.Location)
		if err != nil {
			return uc.discardCorrupt(log, fmt.Errorf("%w: watermark %q: %v", ports.ErrStateCorrupt, s, err))
		}
	}
	return doc, watermark, originStored, nil
}

func (uc *RunUseCase) discardCorrupt(log *slog.Logger, cause error) (*domain.Document, time.Time, stateOrigin, error) {
	if uc.opts.OnCorruptState != CorruptStateReset {
		return nil, time.Time{}, originStored, fmt.Errorf("load state: %w", cause)
	}
	log.Error("state_corrupt_discarded", "err", cause)
	return domain.NewDocument(), uc.opts.InitialWatermark, originDiscarded, nil
}

// ensureAnchor returns the stored anchor, computing it first when the policy
// allows. An anchor, once stored, is never recomputed. A new anchor is
// persisted right away, except over a discarded corrupt state: there the old
// watermark is still stored and empty counts next to it would lose history if
// the run failed, so the anchor waits for the final save.
func (uc *RunUseCase) ensureAnchor(ctx context.Context, log *slog.Logger, doc *domain.Document, origin stateOrigin) (time.Time, bool, error) {
	anchor, ok, err := doc.Anchor(uc.opts.Location)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: first_date %q: %v", ports.ErrStateCorrupt, doc.FirstDate, err)
	}
	if ok {
		return anchor, true, nil
	}
	if uc.opts.AnchorPolicy == AnchorFirstRun && !origin.fresh() {
		return time.Time{}, false, ErrAnchorMissing
	}

	anchor, ok, err = uc.anchors.Resolve(ctx, uc.registry.IDs())
	if err != nil {
		return time.Time{}, false, fmt.Errorf("resolve anchor: %w", err)
	}
	if !ok {
		log.Info("anchor_pending", "reason", "no records listed")
		return time.Time{}, false, nil
	}
	doc.FirstDate = anchor.Format(domain.TimestampLayout)
	if origin == originDiscarded {
		return anchor, true, nil
	}
	if err := uc.store.SaveCounts(ctx, doc); err != nil {
		return time.Time{}, false, fmt.Errorf("persist anchor: %w", err)
	}
	return anchor, true, nil
}
