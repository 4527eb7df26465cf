package reviewerclient

import (
	"context"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
	"github.com/reviewbridge/reviewbridge/internal/diffchunk"
	"github.com/reviewbridge/reviewbridge/internal/domain"
	"github.com/reviewbridge/reviewbridge/internal/reviewschema"
)

// Client drives single and chunked turns against a ThreadSDK, owning the
// "retry once on malformed JSON" discipline spec.md §4.4 requires at this
// layer (distinct from transport-level retry inside the SDK adapter).
type Client struct {
	sdk            ThreadSDK
	timeoutSeconds int
}

// New builds a Client. timeoutSeconds is the per-turn deadline (spec.md §9
// chose a per-turn cap over a global one).
func New(sdk ThreadSDK, timeoutSeconds int) *Client {
	return &Client{sdk: sdk, timeoutSeconds: timeoutSeconds}
}

// acquireThread resumes callerSessionID when the caller supplied one
// (spec.md §4.7: continuing a prior review reuses its reviewer thread
// rather than starting a fresh one), otherwise starts a brand-new thread.
func (c *Client) acquireThread(ctx context.Context, callerSessionID string) (string, *bridgeerr.Error) {
	if callerSessionID != "" {
		if err := c.sdk.ResumeThread(ctx, callerSessionID); err != nil {
			return "", c.classify(err)
		}
		return callerSessionID, nil
	}
	threadID, err := c.sdk.StartThread(ctx)
	if err != nil {
		return "", c.classify(err)
	}
	return threadID, nil
}

// classify wraps bridgeerr.Classify, rewriting a timeout's message to name
// the configured deadline (spec.md scenario S7: "review timed out after
// 300s") instead of the vendor SDK's raw deadline-exceeded wording.
func (c *Client) classify(err error) *bridgeerr.Error {
	be := bridgeerr.Classify("anthropic", err)
	if be.Code == bridgeerr.CodeTimeout {
		return bridgeerr.New(bridgeerr.CodeTimeout, "review timed out after %ds", c.timeoutSeconds)
	}
	return be
}

// runTurn executes prompt against threadID, retrying exactly once if the
// model's reply fails to parse as JSON.
func (c *Client) runTurn(ctx context.Context, threadID, prompt string, parse func(string) *bridgeerr.Error) (string, string, *bridgeerr.Error) {
	opts := TurnOptions{Deadline: c.timeoutSeconds}

	result, err := c.sdk.Run(ctx, threadID, prompt, opts)
	if err != nil {
		return "", "", c.classify(err)
	}

	if parseErr := parse(result.Text); parseErr != nil {
		// Single retry on malformed JSON, resuming the same thread.
		result, err = c.sdk.Run(ctx, result.ThreadID, prompt, opts)
		if err != nil {
			return "", "", c.classify(err)
		}
		if parseErr := parse(result.Text); parseErr != nil {
			return "", "", parseErr
		}
	}

	return result.Text, result.ThreadID, nil
}

// ReviewPlan runs a single plan-review turn, resuming callerSessionID's
// thread when non-empty or starting a fresh one otherwise.
func (c *Client) ReviewPlan(ctx context.Context, callerSessionID, prompt string) (*domain.PlanResult, *bridgeerr.Error) {
	threadID, perr := c.acquireThread(ctx, callerSessionID)
	if perr != nil {
		return nil, perr
	}

	var parsed *domain.PlanResult
	_, finalThreadID, rerr := c.runTurn(ctx, threadID, prompt, func(raw string) *bridgeerr.Error {
		p, e := reviewschema.ValidatePlan(raw)
		if e == nil {
			parsed = p
		}
		return e
	})
	if rerr != nil {
		return nil, rerr
	}

	parsed.SessionID = finalThreadID
	return parsed, nil
}

// PromptFunc renders the prompt for one chunk of a chunked review.
// chunkIndex and totalChunks are 1-based/total so the builder can render a
// chunk-progress header when totalChunks > 1; callers pass a closure so
// this package stays agnostic of promptbuild's template set.
type PromptFunc func(diff string, chunkIndex, totalChunks int) (string, error)

// ReviewCode runs a sequential, same-thread turn per chunk of diff,
// resuming chunk i+1's turn on the thread id chunk i returned, then merges
// the per-chunk results per spec.md §4.4. callerSessionID, when non-empty,
// resumes a prior review's thread instead of starting a new one.
func (c *Client) ReviewCode(ctx context.Context, callerSessionID, diff string, maxChunkSize int, buildPrompt PromptFunc) (*domain.CodeResult, *bridgeerr.Error) {
	chunks := diffchunk.ChunkDiff(diff, maxChunkSize)
	if len(chunks) == 0 {
		return &domain.CodeResult{Verdict: domain.VerdictApprove, Summary: "No changes to review.", Findings: []domain.Finding{}, SessionID: callerSessionID}, nil
	}

	threadID, perr := c.acquireThread(ctx, callerSessionID)
	if perr != nil {
		return nil, perr
	}

	var results []*domain.CodeResult
	for i, chunk := range chunks {
		prompt, err := buildPrompt(diffchunk.ChunkToDiff(chunk), i+1, len(chunks))
		if err != nil {
			return nil, bridgeerr.New(bridgeerr.CodeUnknownError, "%s", err.Error())
		}

		var parsed *domain.CodeResult
		_, nextThreadID, cerr := c.runTurn(ctx, threadID, prompt, func(raw string) *bridgeerr.Error {
			p, e := reviewschema.ValidateCode(raw)
			if e == nil {
				parsed = p
			}
			return e
		})
		if cerr != nil {
			return nil, cerr
		}

		threadID = nextThreadID
		results = append(results, parsed)
	}

	merged := MergeCode(results)
	if len(chunks) > 1 {
		merged.ChunksReviewed = intPtr(len(chunks))
	}
	merged.SessionID = threadID
	return merged, nil
}

// ReviewPrecommit runs a sequential, same-thread turn per chunk of diff and
// merges per spec.md §4.4's precommit rules (AND over ready_to_commit).
func (c *Client) ReviewPrecommit(ctx context.Context, callerSessionID, diff string, maxChunkSize int, buildPrompt PromptFunc) (*domain.PrecommitResult, *bridgeerr.Error) {
	chunks := diffchunk.ChunkDiff(diff, maxChunkSize)
	if len(chunks) == 0 {
		return &domain.PrecommitResult{ReadyToCommit: true, Blockers: []string{}, Warnings: []string{}, SessionID: callerSessionID}, nil
	}

	threadID, perr := c.acquireThread(ctx, callerSessionID)
	if perr != nil {
		return nil, perr
	}

	var results []*domain.PrecommitResult
	for i, chunk := range chunks {
		prompt, err := buildPrompt(diffchunk.ChunkToDiff(chunk), i+1, len(chunks))
		if err != nil {
			return nil, bridgeerr.New(bridgeerr.CodeUnknownError, "%s", err.Error())
		}

		var parsed *domain.PrecommitResult
		_, nextThreadID, cerr := c.runTurn(ctx, threadID, prompt, func(raw string) *bridgeerr.Error {
			p, e := reviewschema.ValidatePrecommit(raw)
			if e == nil {
				parsed = p
			}
			return e
		})
		if cerr != nil {
			return nil, cerr
		}

		threadID = nextThreadID
		results = append(results, parsed)
	}

	merged := MergePrecommit(results)
	if len(chunks) > 1 {
		merged.ChunksReviewed = intPtr(len(chunks))
	}
	merged.SessionID = threadID
	return merged, nil
}
