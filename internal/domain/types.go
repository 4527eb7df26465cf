// Package domain holds the plain data types shared across reviewbridge:
// configuration, the three review kinds, findings, sessions, and review log
// entries. Nothing here depends on any adapter package.
package domain

import "time"

// ReviewKind identifies which of the three review operations a request is
// for; it also names the finding severities and schema each kind expects.
type ReviewKind string

const (
	KindPlan      ReviewKind = "plan"
	KindCode      ReviewKind = "code"
	KindPrecommit ReviewKind = "precommit"
)

// Severity is a finding's severity level. The allowed set differs by
// review kind (spec.md §3): plan findings use critical/major/minor/
// suggestion, code findings use critical/major/minor/nitpick. Keeping one
// Go type but two validity sets (see reviewschema) mirrors spec.md §9's
// instruction to "keep finding-severity enums distinct per kind" without
// forking the Finding struct itself.
type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeverityMajor      Severity = "major"
	SeverityMinor      Severity = "minor"
	SeveritySuggestion Severity = "suggestion" // plan-only
	SeverityNitpick    Severity = "nitpick"    // code-only
)

// PlanSeverities is the closed set of severities a plan-review finding may
// carry.
var PlanSeverities = map[Severity]bool{
	SeverityCritical: true, SeverityMajor: true, SeverityMinor: true, SeveritySuggestion: true,
}

// CodeSeverities is the closed set of severities a code-review finding may
// carry.
var CodeSeverities = map[Severity]bool{
	SeverityCritical: true, SeverityMajor: true, SeverityMinor: true, SeverityNitpick: true,
}

// codeSeverityRank orders code-review severities from least to most
// severe, used to pick a winner among deduplicated findings (spec.md §4.4,
// invariant 6).
var codeSeverityRank = map[Severity]int{
	SeverityNitpick:  0,
	SeverityMinor:    1,
	SeverityMajor:    2,
	SeverityCritical: 3,
}

// StricterSeverity returns whichever of a, b ranks higher under the
// code-review severity order. Unranked values rank below every known
// severity.
func StricterSeverity(a, b Severity) Severity {
	if codeSeverityRank[b] > codeSeverityRank[a] {
		return b
	}
	return a
}

// Finding is a single reviewer-reported issue against a plan or diff. File
// and Line are nil when the finding isn't anchored to a specific location;
// Suggestion is nil when the reviewer offered none.
type Finding struct {
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	File        *string  `json:"file,omitempty"`
	Line        *int     `json:"line,omitempty"`
	Suggestion  *string  `json:"suggestion,omitempty"`
}

// Verdict is the overall judgment of a plan or code review. Plan reviews
// use Approve/Revise/Reject; code reviews use Approve/RequestChanges/
// Reject. The two enums share the Verdict type but never mix at the
// schema-validation layer (reviewschema rejects cross-kind values).
type Verdict string

const (
	VerdictApprove        Verdict = "approve"
	VerdictRevise         Verdict = "revise"          // plan-only
	VerdictRequestChanges Verdict = "request_changes" // code-only
	VerdictReject         Verdict = "reject"
)

// PlanVerdicts is the closed set of verdicts a plan review may return.
var PlanVerdicts = map[Verdict]bool{
	VerdictApprove: true, VerdictRevise: true, VerdictReject: true,
}

// CodeVerdicts is the closed set of verdicts a code review may return.
var CodeVerdicts = map[Verdict]bool{
	VerdictApprove: true, VerdictRequestChanges: true, VerdictReject: true,
}

// codeVerdictRank orders code-review verdicts from least to most severe
// (spec.md §4.4: "approve < request_changes < reject").
var codeVerdictRank = map[Verdict]int{
	VerdictApprove:        0,
	VerdictRequestChanges: 1,
	VerdictReject:         2,
}

// StricterVerdict returns whichever of a, b ranks higher in severity under
// the code-review verdict order. Unrecognized verdicts rank below
// VerdictApprove so a well-formed verdict always wins over a malformed
// one.
func StricterVerdict(a, b Verdict) Verdict {
	if codeVerdictRank[b] > codeVerdictRank[a] {
		return b
	}
	return a
}

// PlanResult is the structured outcome of a plan review.
type PlanResult struct {
	Verdict   Verdict   `json:"verdict"`
	Summary   string    `json:"summary"`
	Findings  []Finding `json:"findings"`
	SessionID string    `json:"session_id"`
}

// CodeResult is the structured outcome of a code review, possibly merged
// from several chunks. ChunksReviewed is nil on the single-chunk path
// (spec.md invariant 13: "must not emit chunks_reviewed") and set to the
// chunk count on the multi-chunk path.
type CodeResult struct {
	Verdict        Verdict   `json:"verdict"`
	Summary        string    `json:"summary"`
	Findings       []Finding `json:"findings"`
	SessionID      string    `json:"session_id"`
	ChunksReviewed *int      `json:"chunks_reviewed,omitempty"`
}

// PrecommitResult is the structured outcome of a precommit review.
// Blockers and Warnings are plain description strings per spec.md §3's
// data model ("blockers: string[], warnings: string[]"), partitioned from
// the reviewer's findings by the configured block-on severity threshold
// (spec.md §4.2).
type PrecommitResult struct {
	ReadyToCommit  bool     `json:"ready_to_commit"`
	Blockers       []string `json:"blockers"`
	Warnings       []string `json:"warnings"`
	SessionID      string   `json:"session_id"`
	ChunksReviewed *int     `json:"chunks_reviewed,omitempty"`
}

// SessionStatus is the lifecycle state of a persisted session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionFailed     SessionStatus = "failed"
)

// Session is a persisted review session, one per reviewer thread.
type Session struct {
	ID           string        `json:"id"`
	Kind         ReviewKind    `json:"kind"`
	Status       SessionStatus `json:"status"`
	ThreadID     string        `json:"thread_id,omitempty"`
	ReviewerSDK  string        `json:"reviewer_sdk,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	ErrorCode    string        `json:"error_code,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// ReviewLogEntry is one append-only row in the review log, recorded once
// per completed or failed review attempt against a session.
type ReviewLogEntry struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Kind      ReviewKind `json:"kind"`
	Verdict   string     `json:"verdict,omitempty"`
	Success   bool       `json:"success"`
	ErrorCode string     `json:"error_code,omitempty"`
	Summary   string     `json:"summary,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
