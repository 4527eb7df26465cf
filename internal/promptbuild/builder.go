// Package promptbuild assembles the prompt text sent to the reviewer
// client, one template per review kind. It is built with text/template the
// way the teacher's internal/usecase/review.EnhancedPromptBuilder renders
// its per-provider templates, adapted here to render per review kind
// instead of per LLM provider.
package promptbuild

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"text/template"

	"github.com/reviewbridge/reviewbridge/internal/domain"
)

// Options carries every per-request knob spec.md §4.2 names for prompt
// assembly. Fields not meaningful to a given kind are simply ignored by
// that kind's template (e.g. Depth only appears in the plan template).
type Options struct {
	// Instructions is the caller's standing project background, loaded
	// from config (spec.md §4.2(b)).
	Instructions string
	// Context is per-request context supplied with this one call,
	// distinct from the standing project Instructions.
	Context string
	Diff    string
	Plan    string

	// Focus narrows a plan review to specific concerns.
	Focus []string
	// Criteria narrows a code or precommit review to specific concerns.
	Criteria []string
	// Depth is a plan-review-only hint ("quick" or "thorough").
	Depth string
	// BlockOn is the precommit severity threshold, always non-empty when
	// the kind is precommit.
	BlockOn []string

	// ChunkHeader, when non-empty, is rendered verbatim just above the
	// delimited payload — e.g. "Chunk 2 of 3: reviewing the following
	// files only." (spec.md §4.1(e)).
	ChunkHeader string
}

// templateData is Options plus the delimiter tags wrapping each payload;
// kept separate from Options so callers never need to know about tags.
type templateData struct {
	Options
	DiffOpenTag  string
	DiffCloseTag string
	PlanOpenTag  string
	PlanCloseTag string
}

// Builder renders a prompt for a given review kind.
type Builder struct {
	templates map[domain.ReviewKind]*template.Template
}

// NewBuilder compiles the fixed set of per-kind templates.
func NewBuilder() (*Builder, error) {
	b := &Builder{templates: make(map[domain.ReviewKind]*template.Template)}
	specs := map[domain.ReviewKind]string{
		domain.KindPlan:      planTemplate,
		domain.KindCode:      codeTemplate,
		domain.KindPrecommit: precommitTemplate,
	}
	for kind, raw := range specs {
		tmpl, err := template.New(string(kind)).Funcs(template.FuncMap{
			"join": strings.Join,
		}).Parse(raw)
		if err != nil {
			return nil, err
		}
		b.templates[kind] = tmpl
	}
	return b, nil
}

// randomSuffix returns a collision-resistant string to disambiguate a
// delimiter tag that would otherwise collide with payload content.
func randomSuffix() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// maxTagRetries bounds the randomize-and-retry loop below; in practice a
// single retry always clears a collision since the suffix is fresh random
// bytes each attempt.
const maxTagRetries = 10

// resolveTags picks the open/close delimiter pair wrapping payload. It
// defaults to the literal "<<<base>>>"/"<<<END_base>>>" markers so that, for
// a payload free of marker collisions, repeated calls with the same inputs
// produce byte-identical prompts. Only when payload actually contains one of
// those literal marker strings does it fall back to a random-suffixed pair,
// retrying until the chosen pair no longer collides with payload.
func resolveTags(base, payload string) (open, close string, err error) {
	open = "<<<" + base + ">>>"
	close = "<<<END_" + base + ">>>"
	if !strings.Contains(payload, open) && !strings.Contains(payload, close) {
		return open, close, nil
	}

	for i := 0; i < maxTagRetries; i++ {
		suffix, serr := randomSuffix()
		if serr != nil {
			return "", "", serr
		}
		candidateOpen := "<<<" + base + "_" + suffix + ">>>"
		candidateClose := "<<<END_" + base + "_" + suffix + ">>>"
		if !strings.Contains(payload, candidateOpen) && !strings.Contains(payload, candidateClose) {
			return candidateOpen, candidateClose, nil
		}
	}
	return "", "", errMarkerCollision(base)
}

// Build renders the prompt for kind. Delimiter markers default to the
// literal "<<<DIFF>>>"/"<<<END_DIFF>>>" (and PLAN equivalents) so the same
// inputs yield the same prompt byte-for-byte; they are only randomized, and
// retried, when the payload itself contains marker-shaped text.
func (b *Builder) Build(kind domain.ReviewKind, opts Options) (string, error) {
	tmpl, ok := b.templates[kind]
	if !ok {
		return "", errUnknownKind(kind)
	}

	diffOpen, diffClose, err := resolveTags("DIFF", opts.Diff)
	if err != nil {
		return "", err
	}
	planOpen, planClose, err := resolveTags("PLAN", opts.Plan)
	if err != nil {
		return "", err
	}

	data := templateData{
		Options:      opts,
		DiffOpenTag:  diffOpen,
		DiffCloseTag: diffClose,
		PlanOpenTag:  planOpen,
		PlanCloseTag: planClose,
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}

type errUnknownKind domain.ReviewKind

func (e errUnknownKind) Error() string {
	return "promptbuild: unknown review kind: " + string(e)
}

type errMarkerCollision string

func (e errMarkerCollision) Error() string {
	return "promptbuild: could not find a non-colliding " + string(e) + " delimiter after " +
		"multiple attempts"
}
