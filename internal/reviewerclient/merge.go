package reviewerclient

import (
	"fmt"
	"strings"

	"github.com/reviewbridge/reviewbridge/internal/domain"
)

func dedupKey(f domain.Finding) string {
	return *f.File + "|" + fmt.Sprintf("%d", *f.Line) + "|" + f.Category
}

// dedupFindings collapses findings sharing a (file, line, category) key,
// keeping whichever has the highest code-review severity, per spec.md
// §4.4, invariant 6. Findings with a nil File or nil Line have no key to
// dedup by and are always preserved, appended after the deduped set in
// their original order.
func dedupFindings(all []domain.Finding) []domain.Finding {
	best := make(map[string]domain.Finding)
	var order []string
	var unkeyed []domain.Finding

	for _, f := range all {
		if f.File == nil || f.Line == nil {
			unkeyed = append(unkeyed, f)
			continue
		}
		key := dedupKey(f)
		existing, ok := best[key]
		if !ok {
			best[key] = f
			order = append(order, key)
			continue
		}
		best[key] = existing
		if domain.StricterSeverity(existing.Severity, f.Severity) == f.Severity {
			best[key] = f
		}
	}

	out := make([]domain.Finding, 0, len(order)+len(unkeyed))
	for _, key := range order {
		out = append(out, best[key])
	}
	out = append(out, unkeyed...)
	return out
}

// intPtr is a small helper so literal chunk counts can satisfy the
// *int-when-multi-chunk contract without a named local everywhere.
func intPtr(n int) *int { return &n }

// MergeCode combines one CodeResult per chunk into a single result: the
// strictest verdict wins, summaries concatenate, findings dedup by
// (file, line, category) keeping the highest severity. ChunksReviewed and
// SessionID are left for the caller to set, since only the caller (Client)
// knows the true chunk count and final thread id.
func MergeCode(results []*domain.CodeResult) *domain.CodeResult {
	if len(results) == 0 {
		return &domain.CodeResult{Verdict: domain.VerdictApprove, Summary: "No changes to review.", Findings: []domain.Finding{}}
	}
	if len(results) == 1 {
		out := *results[0]
		out.ChunksReviewed = nil
		return &out
	}

	verdict := domain.VerdictApprove
	var summaries []string
	var allFindings []domain.Finding

	for _, r := range results {
		verdict = domain.StricterVerdict(verdict, r.Verdict)
		summaries = append(summaries, r.Summary)
		allFindings = append(allFindings, r.Findings...)
	}

	return &domain.CodeResult{
		Verdict:        verdict,
		Summary:        strings.Join(summaries, " "),
		Findings:       dedupFindings(allFindings),
		ChunksReviewed: intPtr(len(results)),
	}
}

// MergePrecommit combines one PrecommitResult per chunk: ready_to_commit is
// the AND of every chunk's value, blockers and warnings simply concatenate
// — they are plain description strings per spec.md §3's data model, so
// there is no (file, line, category) key left to dedup by.
func MergePrecommit(results []*domain.PrecommitResult) *domain.PrecommitResult {
	if len(results) == 0 {
		return &domain.PrecommitResult{ReadyToCommit: true, Blockers: []string{}, Warnings: []string{}}
	}
	if len(results) == 1 {
		out := *results[0]
		out.ChunksReviewed = nil
		return &out
	}

	ready := true
	var blockers, warnings []string
	for _, r := range results {
		ready = ready && r.ReadyToCommit
		blockers = append(blockers, r.Blockers...)
		warnings = append(warnings, r.Warnings...)
	}

	return &domain.PrecommitResult{
		ReadyToCommit:  ready,
		Blockers:       blockers,
		Warnings:       warnings,
		ChunksReviewed: intPtr(len(results)),
	}
}
