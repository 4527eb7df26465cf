package sessiontracker

import (
	"testing"
	"time"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
	"github.com/reviewbridge/reviewbridge/internal/domain"
	"github.com/reviewbridge/reviewbridge/internal/obslog"
	"github.com/reviewbridge/reviewbridge/internal/reviewstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) (*Tracker, *reviewstore.Store) {
	t.Helper()
	store, err := reviewstore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	counter := 0
	nextID := func() string {
		counter++
		return "id-" + string(rune('a'+counter))
	}
	now := func() time.Time { return time.Unix(1700000000, 0) }

	tr := New(store, obslog.NewStdLogger(), now, nextID)
	return tr, store
}

func TestTracker_NoPreflightID_CreatesSessionFromResult(t *testing.T) {
	tr, store := newTestTracker(t)

	tr.Preflight("", domain.KindCode)
	assert.Empty(t, tr.PreflightID())

	tr.RecordSuccess(domain.KindCode, "thread-1", "approve", "all good")

	got, err := store.Get("thread-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, got.Status)
}

func TestTracker_PreflightActivatesCallerSession(t *testing.T) {
	tr, store := newTestTracker(t)

	tr.Preflight("fixed-id", domain.KindCode)
	assert.Equal(t, "fixed-id", tr.PreflightID())

	sess, err := store.Get("fixed-id")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionInProgress, sess.Status)

	tr.RecordFailure(domain.KindCode, bridgeerr.New(bridgeerr.CodeTimeout, "slow"))

	tr.Preflight("fixed-id", domain.KindCode)
	sess, err = store.Get("fixed-id")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionInProgress, sess.Status)

	history, err := store.History("fixed-id")
	require.NoError(t, err)
	assert.Empty(t, history, "a failed turn writes no reviews row, only mark_failed")
}

func TestTracker_RecordSuccess_CompletesPreflightIDEvenWhenResultDiffers(t *testing.T) {
	tr, store := newTestTracker(t)

	tr.Preflight("caller-session", domain.KindPlan)
	tr.RecordSuccess(domain.KindPlan, "different-thread-id", "approve", "looks fine")

	sess, err := store.Get("caller-session")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, sess.Status, "caller's observable session must be the one that resolves")
}

func TestTracker_RecordFailure_NoOpWithoutPreflightID(t *testing.T) {
	tr, _ := newTestTracker(t)
	err := tr.RecordFailure(domain.KindPlan, bridgeerr.New(bridgeerr.CodeModelError, "boom"))
	require.NoError(t, err)
}

func TestTracker_RecordFailureBestEffort_NeverPanics(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.Preflight("s1", domain.KindPlan)

	assert.NotPanics(t, func() {
		tr.RecordFailureBestEffort(domain.KindPlan, bridgeerr.New(bridgeerr.CodeModelError, "boom"))
	})
}

func TestTracker_NilStoreIsNoOp(t *testing.T) {
	tr := New(nil, obslog.NewStdLogger(), time.Now, func() string { return "x" })

	assert.NotPanics(t, func() {
		tr.Preflight("s1", domain.KindPlan)
		tr.RecordSuccess(domain.KindPlan, "s1", "approve", "ok")
		tr.RecordFailureBestEffort(domain.KindPlan, bridgeerr.New(bridgeerr.CodeModelError, "boom"))
	})
}
