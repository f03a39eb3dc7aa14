package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"nyc-trip-loader/internal/model"
	"nyc-trip-loader/pkg/utils"
)

// TripStore is the destination table of the loader.
type TripStore interface {
	// ResetTrips empties the table and reports whether it existed.
	ResetTrips(ctx context.Context) (bool, error)
	// AppendTrips writes a batch atomically and returns the rows written.
	AppendTrips(ctx context.Context, trips []model.TripRecord) (int64, error)
}

// Dependencies are the resources a Loader works with. Ledger, Metrics and
// Logger are optional.
type Dependencies struct {
	Transport Transport
	Store     TripStore
	Ledger    RunLedger
	Metrics   *Metrics
	Logger    *log.Logger
}

// Loader runs the monthly ingestion loop for one year.
type Loader struct {
	spec    model.JobSpec
	deps    Dependencies
	scratch *utils.ScratchSpace
	log     *log.Logger
}

func NewLoader(spec model.JobSpec, deps Dependencies) *Loader {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{
		spec:    spec,
		deps:    deps,
		scratch: utils.NewScratchSpace(spec.ScratchDir),
		log:     logger,
	}
}

// ------------------- Loader Runner -------------------

// Run resets the destination table and then processes every configured month
// in order. No month failure stops the run; cancelling ctx does, before the
// next month, and the run is recorded as interrupted.
func (l *Loader) Run(ctx context.Context) model.RunSummary {
	start := time.Now()
	summary := model.RunSummary{
		ID:        uuid.New().String(),
		Year:      l.spec.Year,
		SampleCap: l.spec.SampleCap,
		Seed:      l.spec.Seed,
		Status:    model.RunStatusRunning,
		StartedAt: start.UTC(),
	}

	l.log.Printf("🔥 Starting trip load %s: year %s, %d months, sample size %d",
		summary.ID, l.spec.Year, len(l.spec.Months), l.spec.SampleCap)
	l.log.Printf("🎯 Destination table: %s", l.spec.Database.Table)

	// --- RESET ---
	l.log.Println("🧹 Clearing destination table...")
	existed, err := l.deps.Store.ResetTrips(ctx)
	summary.TableExisted = existed
	switch {
	case err != nil:
		summary.ResetError = err.Error()
		l.log.Printf("⚠️ Could not clear table: %v (continuing...)", err)
	case !existed:
		l.log.Println("   (new or empty table, continuing...)")
	}

	if err := l.scratch.Ensure(); err != nil {
		l.log.Printf("⚠️ %v", err)
	}

	// The ledger must still record the outcome once ctx is cancelled.
	ledgerCtx := context.WithoutCancel(ctx)
	if l.deps.Ledger != nil {
		if err := l.deps.Ledger.StartRun(ledgerCtx, &summary); err != nil {
			l.log.Printf("⚠️ Run ledger unavailable: %v", err)
		}
	}

	// --- MONTHS ---
	summary.Status = model.RunStatusCompleted
	for _, month := range l.spec.Months {
		if ctx.Err() != nil {
			summary.Status = model.RunStatusInterrupted
			break
		}
		res := l.ProcessMonth(ctx, month)
		summary.Add(res)
		l.deps.Metrics.Observe(res)
		if l.deps.Ledger != nil {
			if err := l.deps.Ledger.RecordMonth(ledgerCtx, summary.ID, res); err != nil {
				l.log.Printf("⚠️ [%s] Could not record month: %v", month, err)
			}
		}
	}
	if ctx.Err() != nil {
		summary.Status = model.RunStatusInterrupted
	}

	finished := time.Now().UTC()
	summary.FinishedAt = &finished
	if l.deps.Ledger != nil {
		if err := l.deps.Ledger.FinishRun(ledgerCtx, summary); err != nil {
			l.log.Printf("⚠️ Could not finish run in ledger: %v", err)
		}
	}

	if summary.Status == model.RunStatusInterrupted {
		l.log.Printf("🛑 Load interrupted after %v: %d of %d months processed, %d loaded, %d rows appended",
			time.Since(start).Round(time.Millisecond), len(summary.Months), len(l.spec.Months),
			summary.MonthsLoaded, summary.RowsAppended)
		return summary
	}
	l.log.Printf("✅ Load complete in %v: %d months loaded, %d skipped, %d rows appended",
		time.Since(start).Round(time.Millisecond), summary.MonthsLoaded, summary.MonthsSkipped, summary.RowsAppended)
	return summary
}

// ProcessMonth takes one month from download to cleanup. Every path ends in
// the cleaned state with the scratch file removed.
func (l *Loader) ProcessMonth(ctx context.Context, month string) (res model.MonthResult) {
	start := time.Now()
	res = model.MonthResult{Month: month, Seed: l.spec.SeedFor(month)}
	res.Advance(model.StatePending)

	path := l.scratch.Path(l.spec.FileName(month))
	defer func() {
		if r := recover(); r != nil {
			l.log.Printf("❌ [%s] Unexpected failure: %v", month, r)
			res.Skip(failureReason(res.State), fmt.Errorf("panic: %v", r))
		}
		l.reclaim(month, path)
		res.Advance(model.StateCleaned)
		res.Duration = time.Since(start)
	}()

	l.log.Printf("📅 Processing %s-%s", l.spec.Year, month)

	// --- FETCH ---
	url := l.spec.SourceURL(month)
	l.log.Printf("⬇️ [%s] Downloading %s", month, url)
	if err := l.fetch(ctx, url, path); err != nil {
		l.log.Printf("❌ [%s] Download failed, skipping month: %v", month, err)
		res.Skip(model.ReasonFetchFailed, err)
		return res
	}
	res.Advance(model.StateFetched)

	// --- DECODE & FILTER, feeding the sample ---
	l.log.Printf("📖 [%s] Reading and cleaning rows...", month)
	sample := NewReservoir(l.spec.SampleCap, res.Seed)
	decoded, err := decodeTrips(path, func(t *model.TripRecord) {
		if Qualifies(t) {
			sample.Offer(*t)
		}
	})
	res.Decoded = decoded.Rows
	res.MissingColumns = decoded.Missing
	res.AdditionalColumns = decoded.Additional
	if err != nil {
		l.log.Printf("❌ [%s] Decode failed, skipping month: %v", month, err)
		res.Skip(model.ReasonDecodeFailed, err)
		return res
	}
	if len(decoded.Missing) > 0 {
		l.log.Printf("⚠️ [%s] File has no %s column(s), loading them as NULL", month, strings.Join(decoded.Missing, ", "))
	}
	if len(decoded.Additional) > 0 {
		l.log.Printf("➕ [%s] Carrying extra column(s) %s", month, strings.Join(decoded.Additional, ", "))
	}
	if len(decoded.Ignored) > 0 {
		l.log.Printf("⚠️ [%s] Ignoring nested or duplicate column(s) %s", month, strings.Join(decoded.Ignored, ", "))
	}
	res.Qualifying = sample.Seen()
	res.Advance(model.StateFiltered)

	// --- SUBSAMPLE ---
	trips := sample.Trips()
	res.Kept = int64(len(trips))
	res.FullSetKept = sample.Complete()
	if res.FullSetKept {
		l.log.Printf("⚠️ [%s] %d qualifying rows (cap %d), full set kept", month, res.Qualifying, l.spec.SampleCap)
	} else {
		l.log.Printf("✂️ [%s] Sampled %d of %d qualifying rows (seed %d)", month, res.Kept, res.Qualifying, res.Seed)
	}
	res.Advance(model.StateSampled)

	// --- PERSIST ---
	l.log.Printf("🚀 [%s] Appending %d rows...", month, res.Kept)
	n, err := l.deps.Store.AppendTrips(ctx, trips)
	if err != nil {
		l.log.Printf("❌ [%s] Append failed, skipping month: %v", month, err)
		res.Skip(model.ReasonPersistFailed, err)
		return res
	}
	res.Appended = n
	res.Outcome = model.OutcomeLoaded
	res.Advance(model.StatePersisted)
	l.log.Printf("✅ [%s] Month loaded: %d rows appended", month, n)
	return res
}

func (l *Loader) fetch(ctx context.Context, url, path string) error {
	if err := l.deps.Transport.Fetch(ctx, url, path); err != nil {
		return err
	}
	if !l.scratch.Exists(path) {
		return fmt.Errorf("%w: %s", ErrScratchMissing, path)
	}
	return nil
}

// reclaim removes the scratch file. Failing to remove it only logs.
func (l *Loader) reclaim(month, path string) {
	removed, err := l.scratch.Remove(path)
	switch {
	case err != nil:
		l.log.Printf("⚠️ [%s] %v", month, err)
	case removed:
		l.log.Printf("🗑️ [%s] Removed %s", month, path)
	}
}

// failureReason maps the last state reached to the step that failed after it.
func failureReason(s model.MonthState) model.SkipReason {
	switch s {
	case model.StatePending:
		return model.ReasonFetchFailed
	case model.StateFetched:
		return model.ReasonDecodeFailed
	default:
		return model.ReasonPersistFailed
	}
}
