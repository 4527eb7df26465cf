package promptbuild

import (
	"strings"
	"testing"

	"github.com/reviewbridge/reviewbridge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build_Code(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	prompt, err := b.Build(domain.KindCode, Options{
		Instructions: "use Go idioms",
		Diff:         "diff --git a/x b/x\n+hi\n",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "use Go idioms")
	assert.Contains(t, prompt, "diff --git a/x b/x")
	assert.Contains(t, prompt, "verdict")
}

func TestBuilder_Build_Code_IncludesSeverityRubricAndChecklist(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	prompt, err := b.Build(domain.KindCode, Options{Diff: "diff --git a/x b/x\n+hi\n"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "nitpick")
	assert.Contains(t, prompt, "Checklist of concerns")
	assert.NotContains(t, prompt, "suggestion\"", "code template must not leak the plan-only severity")
}

func TestBuilder_Build_Code_CriteriaAndContext(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	prompt, err := b.Build(domain.KindCode, Options{
		Diff:     "diff --git a/x b/x\n+hi\n",
		Context:  "this PR touches the billing module",
		Criteria: []string{"security", "performance"},
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "billing module")
	assert.Contains(t, prompt, "security, performance")
}

func TestBuilder_Build_Code_ChunkHeader(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	prompt, err := b.Build(domain.KindCode, Options{
		Diff:        "diff --git a/x b/x\n+hi\n",
		ChunkHeader: "Chunk 2 of 3: reviewing the following files only.",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Chunk 2 of 3: reviewing the following files only.")
}

func TestBuilder_Build_Plan_DepthAndFocus(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	prompt, err := b.Build(domain.KindPlan, Options{
		Plan:  "my plan",
		Depth: "thorough",
		Focus: []string{"scalability"},
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "thorough")
	assert.Contains(t, prompt, "scalability")
	assert.Contains(t, prompt, "revise")
}

func TestBuilder_Build_Precommit_BlockOn(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	prompt, err := b.Build(domain.KindPrecommit, Options{
		Diff:    "diff --git a/x b/x\n+hi\n",
		BlockOn: []string{"critical", "major"},
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "critical, major")
	assert.Contains(t, prompt, "ready_to_commit")
}

func TestBuilder_Build_UnknownKind(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	_, err = b.Build(domain.ReviewKind("bogus"), Options{})
	assert.Error(t, err)
}

func TestBuilder_Build_DeterministicForNonCollidingPayload(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	p1, err := b.Build(domain.KindPlan, Options{Plan: "my plan"})
	require.NoError(t, err)
	p2, err := b.Build(domain.KindPlan, Options{Plan: "my plan"})
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Contains(t, p1, "<<<PLAN>>>")
	assert.Contains(t, p1, "<<<END_PLAN>>>")
}

func TestBuilder_Build_UsesLiteralDiffMarkersByDefault(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	prompt, err := b.Build(domain.KindCode, Options{Diff: "diff --git a/x b/x\n+hi\n"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "<<<DIFF>>>")
	assert.Contains(t, prompt, "<<<END_DIFF>>>")
}

func TestBuilder_Build_RandomizesMarkerOnCollision(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	collidingDiff := "here is some context mentioning <<<DIFF>>> literally\n+hi\n"
	prompt, err := b.Build(domain.KindCode, Options{Diff: collidingDiff})
	require.NoError(t, err)

	// The literal "<<<DIFF>>>" marker would be ambiguous with the payload's
	// own text, so it must not be used as the real delimiter; only the one
	// instance inside the payload itself should remain.
	assert.Equal(t, 1, strings.Count(prompt, "<<<DIFF>>>"))
	assert.True(t, strings.Contains(prompt, "<<<DIFF_") && strings.Contains(prompt, "<<<END_DIFF_"))
}
