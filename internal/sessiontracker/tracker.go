// Package sessiontracker coordinates store mutations around one review
// request per spec.md §4.7: preflight activates the caller-supplied
// session (if any) before the reviewer turn runs; record_success/
// record_failure flip that same session's status afterward, even when the
// reviewer itself resumed or started a different underlying thread.
// Storage failures are logged and swallowed rather than turned into
// request failures, the same "log but don't fail" idiom the teacher's
// orchestrator.go uses around every Store call.
package sessiontracker

import (
	"time"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
	"github.com/reviewbridge/reviewbridge/internal/domain"
	"github.com/reviewbridge/reviewbridge/internal/obslog"
)

// Store is the subset of reviewstore.Store the tracker needs.
type Store interface {
	GetOrCreate(id string, kind domain.ReviewKind, threadID, reviewerSDK string, now time.Time) (*domain.Session, error)
	Activate(id string, now time.Time) error
	MarkCompleted(id string, now time.Time) error
	MarkFailed(id string, now time.Time, code, message string) error
	AppendLog(entry domain.ReviewLogEntry) error
}

// NowFunc returns the current time; overridable in tests.
type NowFunc func() time.Time

// IDFunc generates a fresh id for review log entries; overridable in tests.
type IDFunc func() string

// Tracker is constructed fresh per request (spec.md §5: no shared mutable
// in-process caches). A nil store makes every method a no-op, matching
// spec.md §4.7 ("Construction with a null store yields a no-op tracker").
type Tracker struct {
	store  Store
	logger obslog.Logger
	now    NowFunc
	nextID IDFunc

	// preflightID is the caller-supplied session id Preflight activated,
	// empty when the caller supplied none or activation itself failed
	// (spec.md §4.7: "Failure... does not set preflight_id").
	preflightID string
}

// New builds a Tracker.
func New(store Store, logger obslog.Logger, now NowFunc, nextID IDFunc) *Tracker {
	return &Tracker{store: store, logger: logger, now: now, nextID: nextID}
}

// Preflight activates callerSessionID (upserting it to in_progress) when
// non-empty. A blank callerSessionID is a deliberate no-op: spec.md §4.7
// says so explicitly, since a brand-new review has no session row until
// the reviewer turn returns one.
func (t *Tracker) Preflight(callerSessionID string, kind domain.ReviewKind) {
	if t.store == nil || callerSessionID == "" {
		return
	}

	now := t.now()
	if err := t.store.Activate(callerSessionID, now); err != nil {
		t.logger.LogWarning("preflight activation failed", map[string]any{
			"session_id": callerSessionID,
			"error":      err.Error(),
		})
		return
	}
	t.preflightID = callerSessionID
}

// RecordSuccess marks the review successful. resultSessionID is the
// session id the reviewer turn actually produced; when no preflight id was
// established, the session row is created lazily against resultSessionID
// (spec.md §4.7: "if no preflight_id, get_or_create(result_id)"). The
// session flipped to completed is always the preflight id when one
// exists, even if it differs from resultSessionID — per spec.md §4.7's
// rationale, the caller's observable session must be the one that
// resolves. verdict is recorded in the review log only, never back onto
// the session row.
func (t *Tracker) RecordSuccess(kind domain.ReviewKind, resultSessionID, verdict, summary string) {
	if t.store == nil {
		return
	}
	now := t.now()

	if t.preflightID == "" {
		if _, err := t.store.GetOrCreate(resultSessionID, kind, "", "", now); err != nil {
			t.logger.LogWarning("failed to create session for successful review", map[string]any{
				"session_id": resultSessionID,
				"error":      err.Error(),
			})
		}
	}

	entry := domain.ReviewLogEntry{
		ID:        t.nextID(),
		SessionID: resultSessionID,
		Kind:      kind,
		Verdict:   verdict,
		Success:   true,
		Summary:   summary,
		CreatedAt: now,
	}
	if err := t.store.AppendLog(entry); err != nil {
		t.logger.LogWarning("failed to append review log entry", map[string]any{
			"session_id": entry.SessionID,
			"error":      err.Error(),
		})
	}

	completeID := resultSessionID
	if t.preflightID != "" {
		completeID = t.preflightID
	}
	if err := t.store.MarkCompleted(completeID, now); err != nil {
		t.logger.LogWarning("failed to mark session completed", map[string]any{
			"session_id": completeID,
			"error":      err.Error(),
		})
	}
}

// RecordFailure marks the preflight session failed. A no-op when Preflight
// never established an id — spec.md §4.7's "avoids thrashing a row the
// caller no longer owns". Unlike RecordSuccess, it never appends a review
// log entry: a failed turn leaves no reviews row behind, only the
// session's mark_failed status.
func (t *Tracker) RecordFailure(kind domain.ReviewKind, bridgeErr *bridgeerr.Error) error {
	if t.store == nil || t.preflightID == "" {
		return nil
	}
	now := t.now()
	return t.store.MarkFailed(t.preflightID, now, string(bridgeErr.Code), bridgeErr.Message)
}

// RecordFailureBestEffort is RecordFailure with storage errors logged and
// swallowed; intended for the outermost catch clause per spec.md §4.7.
func (t *Tracker) RecordFailureBestEffort(kind domain.ReviewKind, bridgeErr *bridgeerr.Error) {
	if err := t.RecordFailure(kind, bridgeErr); err != nil {
		t.logger.LogWarning("failed to record review failure", map[string]any{
			"session_id": t.preflightID,
			"error":      err.Error(),
		})
	}
}

// PreflightID returns the session id Preflight activated, or "" if the
// caller supplied none.
func (t *Tracker) PreflightID() string {
	return t.preflightID
}
