// Package reviewhandlers implements the request handlers of spec.md
// §4.8/§4.9: plan/code/precommit review requests, and status/history
// lookups, wiring together the prompt builder, reviewer client, session
// tracker, redaction pass, and diff resolver behind one entry point shared
// by both the MCP tool-call surface and the CLI.
package reviewhandlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
	"github.com/reviewbridge/reviewbridge/internal/config"
	"github.com/reviewbridge/reviewbridge/internal/domain"
	"github.com/reviewbridge/reviewbridge/internal/gitresolve"
	"github.com/reviewbridge/reviewbridge/internal/obslog"
	"github.com/reviewbridge/reviewbridge/internal/promptbuild"
	"github.com/reviewbridge/reviewbridge/internal/redact"
	"github.com/reviewbridge/reviewbridge/internal/reviewerclient"
	"github.com/reviewbridge/reviewbridge/internal/reviewstore"
	"github.com/reviewbridge/reviewbridge/internal/sessiontracker"
)

// Handlers is the shared implementation behind every external surface.
type Handlers struct {
	cfg         config.Config
	builder     *promptbuild.Builder
	client      *reviewerclient.Client
	store       *reviewstore.Store
	redactor    *redact.Engine
	gitResolver *gitresolve.Resolver
	logger      obslog.Logger
	reviewerSDK string
}

// New builds a Handlers value from its collaborators.
func New(cfg config.Config, builder *promptbuild.Builder, client *reviewerclient.Client, store *reviewstore.Store, redactor *redact.Engine, gitResolver *gitresolve.Resolver, logger obslog.Logger, reviewerSDK string) *Handlers {
	return &Handlers{
		cfg: cfg, builder: builder, client: client, store: store,
		redactor: redactor, gitResolver: gitResolver, logger: logger, reviewerSDK: reviewerSDK,
	}
}

func (h *Handlers) newTracker() *sessiontracker.Tracker {
	return sessiontracker.New(h.store, h.logger, time.Now, func() string { return uuid.NewString() })
}

// PlanRequest carries the optional fields review_plan / review-plan accept
// beyond the plan body itself (spec.md §6).
type PlanRequest struct {
	SessionID string
	Context   string
	Focus     []string
	Depth     string
}

// ReviewPlan runs a plan review: §4.8.
func (h *Handlers) ReviewPlan(ctx context.Context, req PlanRequest, plan string) (*domain.PlanResult, error) {
	tracker := h.newTracker()
	tracker.Preflight(req.SessionID, domain.KindPlan)

	prompt, err := h.builder.Build(domain.KindPlan, promptbuild.Options{
		Instructions: h.cfg.Instructions,
		Context:      req.Context,
		Focus:        req.Focus,
		Depth:        req.Depth,
		Plan:         plan,
	})
	if err != nil {
		berr := bridgeerr.New(bridgeerr.CodeUnknownError, "%v", err)
		tracker.RecordFailureBestEffort(domain.KindPlan, berr)
		return nil, berr
	}
	prompt = h.redactor.Redact(prompt)

	result, berr := h.client.ReviewPlan(ctx, req.SessionID, prompt)
	if berr != nil {
		tracker.RecordFailureBestEffort(domain.KindPlan, berr)
		return nil, berr
	}

	tracker.RecordSuccess(domain.KindPlan, result.SessionID, string(result.Verdict), result.Summary)
	return result, nil
}

// CodeRequest carries the optional fields review_code / review-code accept
// beyond the diff itself (spec.md §6).
type CodeRequest struct {
	SessionID string
	Context   string
	Criteria  []string
}

// ReviewCode runs a code review, chunking the diff as needed: §4.8.
func (h *Handlers) ReviewCode(ctx context.Context, req CodeRequest, diff string) (*domain.CodeResult, error) {
	tracker := h.newTracker()
	tracker.Preflight(req.SessionID, domain.KindCode)

	buildPrompt := func(chunkDiff string, chunkIndex, totalChunks int) (string, error) {
		prompt, err := h.builder.Build(domain.KindCode, promptbuild.Options{
			Instructions: h.cfg.Instructions,
			Context:      req.Context,
			Criteria:     req.Criteria,
			Diff:         chunkDiff,
			ChunkHeader:  chunkHeader(chunkIndex, totalChunks),
		})
		if err != nil {
			return "", err
		}
		return h.redactor.Redact(prompt), nil
	}

	result, berr := h.client.ReviewCode(ctx, req.SessionID, diff, h.cfg.MaxChunkSize, buildPrompt)
	if berr != nil {
		tracker.RecordFailureBestEffort(domain.KindCode, berr)
		return nil, berr
	}

	tracker.RecordSuccess(domain.KindCode, result.SessionID, string(result.Verdict), result.Summary)
	return result, nil
}

// PrecommitRequest carries the optional fields review_precommit /
// review-precommit accept: an explicit diff, or auto_diff resolution of the
// currently staged changes (spec.md §6).
type PrecommitRequest struct {
	SessionID string
	AutoDiff  bool
}

// ReviewPrecommit runs a precommit review. diff is the explicit diff to
// review, taking precedence even when empty; otherwise, when AutoDiff is
// set, the staged diff is resolved via the git collaborator.
func (h *Handlers) ReviewPrecommit(ctx context.Context, req PrecommitRequest, diff string) (*domain.PrecommitResult, error) {
	if diff == "" && req.AutoDiff {
		if h.gitResolver == nil {
			return nil, bridgeerr.New(bridgeerr.CodeGitError, "auto_diff disabled and no diff provided")
		}
		staged, err := h.gitResolver.StagedDiff(ctx)
		if err != nil {
			return nil, err
		}
		if staged == "" {
			return nil, bridgeerr.New(bridgeerr.CodeNoStagedChanges, "No staged changes found")
		}
		diff = staged
	}

	tracker := h.newTracker()
	tracker.Preflight(req.SessionID, domain.KindPrecommit)

	buildPrompt := func(chunkDiff string, chunkIndex, totalChunks int) (string, error) {
		prompt, err := h.builder.Build(domain.KindPrecommit, promptbuild.Options{
			Instructions: h.cfg.Instructions,
			Diff:         chunkDiff,
			BlockOn:      h.cfg.Precommit.BlockOn,
			ChunkHeader:  chunkHeader(chunkIndex, totalChunks),
		})
		if err != nil {
			return "", err
		}
		return h.redactor.Redact(prompt), nil
	}

	result, berr := h.client.ReviewPrecommit(ctx, req.SessionID, diff, h.cfg.MaxChunkSize, buildPrompt)
	if berr != nil {
		tracker.RecordFailureBestEffort(domain.KindPrecommit, berr)
		return nil, berr
	}

	summary := "ready"
	verdict := "ready_to_commit"
	if !result.ReadyToCommit {
		summary = "blocked"
		verdict = "blocked"
	}
	tracker.RecordSuccess(domain.KindPrecommit, result.SessionID, verdict, summary)
	return result, nil
}

// chunkHeader renders the optional chunk-progress header (spec.md §4.1(e)),
// omitted entirely on a single-chunk review.
func chunkHeader(chunkIndex, totalChunks int) string {
	if totalChunks <= 1 {
		return ""
	}
	return fmt.Sprintf("Chunk %d of %d: reviewing the following files only.", chunkIndex, totalChunks)
}

// Status returns the session identified by sessionID: §4.9.
func (h *Handlers) Status(sessionID string) (*domain.Session, error) {
	return h.store.Get(sessionID)
}

// History returns the append-only review log for sessionID: §4.9. An
// unknown sessionID yields an empty list, never an error — history is a
// log query, not a session lookup.
func (h *Handlers) History(sessionID string) ([]domain.ReviewLogEntry, error) {
	return h.store.History(sessionID)
}

// defaultRecentLimit is the last_n used by Recent when the caller omits
// one (spec.md §4.9: "recent(last_n ?? 10)").
const defaultRecentLimit = 10

// Recent returns the most recent review log entries across every session,
// for the session_id-absent review_history branch: §4.6/§4.9. lastN <= 0
// falls back to defaultRecentLimit.
func (h *Handlers) Recent(lastN int) ([]domain.ReviewLogEntry, error) {
	if lastN <= 0 {
		lastN = defaultRecentLimit
	}
	return h.store.Recent(lastN)
}

// IsBlocked reports whether a precommit result should block a commit: any
// non-empty Blockers list means the reviewer already partitioned the issue
// into the blocking bucket using the configured block_on threshold, so no
// further severity check is needed here (spec.md §6, CLI exit code 2).
func IsBlocked(cfg config.Config, result *domain.PrecommitResult) bool {
	return !result.ReadyToCommit || len(result.Blockers) > 0
}
