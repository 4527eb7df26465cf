package gitresolve

import (
	"context"
	"testing"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagedDiff_NotAGitRepository(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir)

	_, err := r.StagedDiff(context.Background())
	require.Error(t, err)
	be, ok := err.(*bridgeerr.Error)
	require.True(t, ok)
	assert.Equal(t, bridgeerr.CodeGitError, be.Code)
}
