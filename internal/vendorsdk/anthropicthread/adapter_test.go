package anthropicthread

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
	"github.com/reviewbridge/reviewbridge/internal/reviewerclient"
)

func TestNew_DefaultsModelWhenEmpty(t *testing.T) {
	a := New("test-key", "")
	assert.Equal(t, DefaultModel, a.model)
}

func TestNew_KeepsExplicitModel(t *testing.T) {
	a := New("test-key", "claude-3-5-haiku-20241022")
	assert.Equal(t, "claude-3-5-haiku-20241022", a.model)
}

func TestStartThread_AllocatesUsableID(t *testing.T) {
	a := New("test-key", "")
	id, err := a.StartThread(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.NoError(t, a.ResumeThread(context.Background(), id))
}

func TestResumeThread_UnknownIDIsSessionNotFound(t *testing.T) {
	a := New("test-key", "")
	err := a.ResumeThread(context.Background(), "does-not-exist")
	require.Error(t, err)

	var be *bridgeerr.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, bridgeerr.CodeSessionNotFound, be.Code)
}

func TestRun_UnknownThreadIDIsSessionNotFound(t *testing.T) {
	a := New("test-key", "")
	_, err := a.Run(context.Background(), "does-not-exist", "review this", reviewerclient.TurnOptions{})
	require.Error(t, err)

	var be *bridgeerr.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, bridgeerr.CodeSessionNotFound, be.Code)
}

var _ reviewerclient.ThreadSDK = (*Adapter)(nil)
