package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
	"github.com/reviewbridge/reviewbridge/internal/config"
	"github.com/reviewbridge/reviewbridge/internal/obslog"
	"github.com/reviewbridge/reviewbridge/internal/promptbuild"
	"github.com/reviewbridge/reviewbridge/internal/redact"
	"github.com/reviewbridge/reviewbridge/internal/reviewerclient"
	"github.com/reviewbridge/reviewbridge/internal/reviewhandlers"
	"github.com/reviewbridge/reviewbridge/internal/reviewstore"
)

type fakeSDK struct {
	responses []string
	calls     int
}

func (f *fakeSDK) StartThread(ctx context.Context) (string, error) { return uuid.NewString(), nil }
func (f *fakeSDK) ResumeThread(ctx context.Context, threadID string) error { return nil }
func (f *fakeSDK) Run(ctx context.Context, threadID, prompt string, opts reviewerclient.TurnOptions) (reviewerclient.TurnResult, error) {
	text := f.responses[f.calls]
	f.calls++
	return reviewerclient.TurnResult{Text: text, ThreadID: threadID}, nil
}

func newTestHandlers(t *testing.T, responses []string) *reviewhandlers.Handlers {
	t.Helper()
	store, err := reviewstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	builder, err := promptbuild.NewBuilder()
	require.NoError(t, err)

	client := reviewerclient.New(&fakeSDK{responses: responses}, 30)
	return reviewhandlers.New(config.DefaultConfig(), builder, client, store, redact.NewEngine(), nil, obslog.NewStdLogger(), "anthropic")
}

func textContentOf(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return ""
	}
	return tc.Text
}

func TestNewRegistersAllFiveTools(t *testing.T) {
	h := newTestHandlers(t, nil)
	server := New(h, "test")
	require.NotNil(t, server)
}

func TestReviewPlanHandler_Success(t *testing.T) {
	h := newTestHandlers(t, []string{`{"verdict":"approve","summary":"fine","findings":[]}`})
	handler := reviewPlanHandler(h)

	result, out, err := handler(context.Background(), nil, planInput{Plan: "do the thing"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.NotNil(t, out)
	assert.Contains(t, textContentOf(result), "fine")
}

func TestReviewPrecommitHandler_NoResolverIsAnErrorResult(t *testing.T) {
	h := newTestHandlers(t, nil)
	handler := reviewPrecommitHandler(h)

	result, out, err := handler(context.Background(), nil, precommitInput{AutoDiff: true})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Nil(t, out)
}

func TestReviewHistoryHandler_UnknownSessionIsEmptyNotError(t *testing.T) {
	h := newTestHandlers(t, nil)
	handler := reviewHistoryHandler(h)

	result, out, err := handler(context.Background(), nil, historyInput{SessionID: "nope"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "[]", textContentOf(result))
	assert.Nil(t, out)
}

func TestReviewHistoryHandler_NoSessionIDListsRecentAcrossSessions(t *testing.T) {
	h := newTestHandlers(t, []string{`{"verdict":"approve","summary":"fine","findings":[]}`})

	_, err := h.ReviewPlan(context.Background(), reviewhandlers.PlanRequest{}, "do the thing")
	require.NoError(t, err)

	handler := reviewHistoryHandler(h)
	result, out, err := handler(context.Background(), nil, historyInput{})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.NotNil(t, out)
	assert.Contains(t, textContentOf(result), "fine")
}

func TestErrorResult_ContainsClassifiedCode(t *testing.T) {
	result := errorResult(bridgeerr.New(bridgeerr.CodeSessionNotFound, "session abc missing"))
	require.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.True(t, strings.Contains(textContentOf(result), string(bridgeerr.CodeSessionNotFound)))
}
