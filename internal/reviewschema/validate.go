// Package reviewschema decodes and validates the JSON a reviewer turn
// returns, per review kind. A cheap tidwall/gjson pre-check rejects
// obviously malformed payloads before paying for a full encoding/json
// unmarshal into the kind-specific struct. Finding-severity and verdict
// enums differ between plan and code/precommit kinds (spec.md §3, §9);
// validation rejects a well-formed payload carrying the wrong kind's enum
// values rather than silently accepting it.
package reviewschema

import (
	"encoding/json"
	"fmt"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
	"github.com/reviewbridge/reviewbridge/internal/domain"
	"github.com/tidwall/gjson"
)

func parseError(kind domain.ReviewKind, detail string) *bridgeerr.Error {
	return bridgeerr.New(bridgeerr.CodeParseError, "%s response: %s", kind, detail)
}

func precheck(kind domain.ReviewKind, raw string) *bridgeerr.Error {
	if !gjson.Valid(raw) {
		return parseError(kind, "not valid JSON")
	}
	result := gjson.Parse(raw)
	if !result.IsObject() {
		return parseError(kind, "top-level value is not a JSON object")
	}
	return nil
}

func validateFindings(kind domain.ReviewKind, findings []domain.Finding, allowed map[domain.Severity]bool) *bridgeerr.Error {
	for i, f := range findings {
		if !allowed[f.Severity] {
			return parseError(kind, fmt.Sprintf("finding[%d]: invalid severity %q for %s review", i, f.Severity, kind))
		}
	}
	return nil
}

// ValidatePlan decodes and validates a plan-review payload. Plan findings
// are restricted to domain.PlanSeverities; a code-only severity such as
// "nitpick" is rejected.
func ValidatePlan(raw string) (*domain.PlanResult, *bridgeerr.Error) {
	if err := precheck(domain.KindPlan, raw); err != nil {
		return nil, err
	}

	var out domain.PlanResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, parseError(domain.KindPlan, err.Error())
	}
	if out.Summary == "" {
		return nil, parseError(domain.KindPlan, "summary must be a non-empty string")
	}
	if !domain.PlanVerdicts[out.Verdict] {
		return nil, parseError(domain.KindPlan, fmt.Sprintf("invalid verdict %q", out.Verdict))
	}
	if out.Findings == nil {
		out.Findings = []domain.Finding{}
	}
	if err := validateFindings(domain.KindPlan, out.Findings, domain.PlanSeverities); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateCode decodes and validates a code-review payload. Code findings
// are restricted to domain.CodeSeverities; a plan-only severity such as
// "suggestion" is rejected.
func ValidateCode(raw string) (*domain.CodeResult, *bridgeerr.Error) {
	if err := precheck(domain.KindCode, raw); err != nil {
		return nil, err
	}

	var out domain.CodeResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, parseError(domain.KindCode, err.Error())
	}
	if !domain.CodeVerdicts[out.Verdict] {
		return nil, parseError(domain.KindCode, fmt.Sprintf("invalid verdict %q", out.Verdict))
	}
	if out.Findings == nil {
		out.Findings = []domain.Finding{}
	}
	if err := validateFindings(domain.KindCode, out.Findings, domain.CodeSeverities); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidatePrecommit decodes and validates a precommit-review payload.
// Blockers and warnings are plain strings (spec.md §3), already
// partitioned by the reviewer per the prompt's block-on instructions, so
// there is no per-finding severity to validate here.
func ValidatePrecommit(raw string) (*domain.PrecommitResult, *bridgeerr.Error) {
	if err := precheck(domain.KindPrecommit, raw); err != nil {
		return nil, err
	}

	var out domain.PrecommitResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, parseError(domain.KindPrecommit, err.Error())
	}
	if out.Blockers == nil {
		out.Blockers = []string{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	return &out, nil
}
