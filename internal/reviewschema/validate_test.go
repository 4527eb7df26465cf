package reviewschema

import (
	"testing"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePlan_OK(t *testing.T) {
	raw := `{"verdict":"approve","summary":"looks fine","findings":[{"severity":"suggestion","category":"style","description":"rename this"}]}`
	out, err := ValidatePlan(raw)
	require.Nil(t, err)
	assert.Equal(t, "looks fine", out.Summary)
	assert.Equal(t, "approve", string(out.Verdict))
	assert.Len(t, out.Findings, 1)
}

func TestValidatePlan_NotJSON(t *testing.T) {
	_, err := ValidatePlan("not json at all")
	require.NotNil(t, err)
	assert.Equal(t, bridgeerr.CodeParseError, err.Code)
}

func TestValidatePlan_MissingSummary(t *testing.T) {
	_, err := ValidatePlan(`{"verdict":"approve","findings":[]}`)
	require.NotNil(t, err)
	assert.Equal(t, bridgeerr.CodeParseError, err.Code)
}

func TestValidatePlan_InvalidVerdict(t *testing.T) {
	_, err := ValidatePlan(`{"verdict":"request_changes","summary":"x","findings":[]}`)
	require.NotNil(t, err, "request_changes is a code-only verdict")
}

func TestValidatePlan_RejectsCodeOnlySeverity(t *testing.T) {
	raw := `{"verdict":"approve","summary":"x","findings":[{"severity":"nitpick","category":"c","description":"d"}]}`
	_, err := ValidatePlan(raw)
	require.NotNil(t, err, "nitpick is a code-only severity")
}

func TestValidateCode_OK(t *testing.T) {
	raw := `{"verdict":"approve","summary":"lgtm","findings":[]}`
	out, err := ValidateCode(raw)
	require.Nil(t, err)
	assert.Equal(t, "approve", string(out.Verdict))
}

func TestValidateCode_InvalidVerdict(t *testing.T) {
	_, err := ValidateCode(`{"verdict":"maybe","summary":"x","findings":[]}`)
	require.NotNil(t, err)
	assert.Equal(t, bridgeerr.CodeParseError, err.Code)
}

func TestValidateCode_InvalidSeverity(t *testing.T) {
	raw := `{"verdict":"approve","summary":"x","findings":[{"severity":"catastrophic","category":"c","description":"d"}]}`
	_, err := ValidateCode(raw)
	require.NotNil(t, err)
}

func TestValidateCode_RejectsPlanOnlySeverity(t *testing.T) {
	raw := `{"verdict":"approve","summary":"x","findings":[{"severity":"suggestion","category":"c","description":"d"}]}`
	_, err := ValidateCode(raw)
	require.NotNil(t, err, "suggestion is a plan-only severity")
}

func TestValidatePrecommit_OK(t *testing.T) {
	raw := `{"ready_to_commit":false,"blockers":["missing error handling"],"warnings":[]}`
	out, err := ValidatePrecommit(raw)
	require.Nil(t, err)
	assert.False(t, out.ReadyToCommit)
	assert.Len(t, out.Blockers, 1)
}

func TestValidatePrecommit_NotObject(t *testing.T) {
	_, err := ValidatePrecommit(`[1,2,3]`)
	require.NotNil(t, err)
}
