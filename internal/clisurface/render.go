package clisurface

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/reviewbridge/reviewbridge/internal/domain"
)

// renderJSON writes v as an indented JSON document, the --json output mode
// shared by all three subcommands (spec.md §6).
func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderFinding(w io.Writer, c colorizer, f domain.Finding) {
	label := string(f.Severity)
	switch f.Severity {
	case domain.SeverityCritical:
		label = c.red(c.bold(strings.ToUpper(label)))
	case domain.SeverityMajor:
		label = c.yellow(strings.ToUpper(label))
	default:
		label = strings.ToUpper(label)
	}

	location := ""
	if f.File != nil {
		location = " " + *f.File
		if f.Line != nil {
			location += fmt.Sprintf(":%d", *f.Line)
		}
	}

	fmt.Fprintf(w, "  [%s]%s (%s): %s\n", label, location, f.Category, f.Description)
	if f.Suggestion != nil && *f.Suggestion != "" {
		fmt.Fprintf(w, "    suggestion: %s\n", *f.Suggestion)
	}
}

// renderPlan writes a plan-review result in human-readable form.
func renderPlan(w io.Writer, c colorizer, result *domain.PlanResult) {
	renderVerdictHeader(w, c, string(result.Verdict), result.Verdict == domain.VerdictApprove)
	fmt.Fprintf(w, "%s\n\n", result.Summary)
	renderFindings(w, c, result.Findings)
	fmt.Fprintf(w, "\nsession: %s\n", result.SessionID)
}

// renderCode writes a code-review result in human-readable form.
func renderCode(w io.Writer, c colorizer, result *domain.CodeResult) {
	renderVerdictHeader(w, c, string(result.Verdict), result.Verdict == domain.VerdictApprove)
	fmt.Fprintf(w, "%s\n\n", result.Summary)
	renderFindings(w, c, result.Findings)
	if result.ChunksReviewed != nil {
		fmt.Fprintf(w, "\nchunks reviewed: %d\n", *result.ChunksReviewed)
	}
	fmt.Fprintf(w, "session: %s\n", result.SessionID)
}

// renderPrecommit writes a precommit-review result in human-readable form,
// including the "COMMIT BLOCKED" banner spec.md scenario S5 names.
func renderPrecommit(w io.Writer, c colorizer, result *domain.PrecommitResult) {
	if result.ReadyToCommit {
		fmt.Fprintln(w, c.green(c.bold("READY TO COMMIT")))
	} else {
		fmt.Fprintln(w, c.red(c.bold("COMMIT BLOCKED")))
	}

	if len(result.Blockers) > 0 {
		fmt.Fprintln(w, "\nblockers:")
		for _, b := range result.Blockers {
			fmt.Fprintf(w, "  - %s\n", c.red(b))
		}
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\nwarnings:")
		for _, wmsg := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", c.yellow(wmsg))
		}
	}
	if result.ChunksReviewed != nil {
		fmt.Fprintf(w, "\nchunks reviewed: %d\n", *result.ChunksReviewed)
	}
	fmt.Fprintf(w, "session: %s\n", result.SessionID)
}

func renderVerdictHeader(w io.Writer, c colorizer, verdict string, approved bool) {
	label := strings.ToUpper(verdict)
	if approved {
		fmt.Fprintln(w, c.green(c.bold(label)))
	} else {
		fmt.Fprintln(w, c.red(c.bold(label)))
	}
}

func renderFindings(w io.Writer, c colorizer, findings []domain.Finding) {
	if len(findings) == 0 {
		fmt.Fprintln(w, "no findings")
		return
	}
	fmt.Fprintln(w, "findings:")
	for _, f := range findings {
		renderFinding(w, c, f)
	}
}
