package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

func registryFactory(backend Backend) func() *Controller {
	return func() *Controller {
		return NewController(backend, utils.NewDevelopmentLogger(), 7,
			WithQuietPeriod(time.Hour),
			WithTickInterval(time.Hour))
	}
}

func TestRegistryReusesLiveSession(t *testing.T) {
	backend := newFakeBackend(300)
	r := NewRegistry(utils.NewDevelopmentLogger())

	first, err := r.Acquire(context.Background(), 1, 7, registryFactory(backend))
	require.NoError(t, err)
	t.Cleanup(func() { r.Release(1, 7) })

	second, err := r.Acquire(context.Background(), 1, 7, registryFactory(backend))
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, r.Len())
}

func TestRegistryKeysByUserAndTest(t *testing.T) {
	backend := newFakeBackend(300)
	r := NewRegistry(utils.NewDevelopmentLogger())

	mine, err := r.Acquire(context.Background(), 1, 7, registryFactory(backend))
	require.NoError(t, err)
	theirs, err := r.Acquire(context.Background(), 2, 7, registryFactory(backend))
	require.NoError(t, err)
	t.Cleanup(func() {
		r.Release(1, 7)
		r.Release(2, 7)
	})

	require.NotSame(t, mine, theirs)
	require.Equal(t, 2, r.Len())
	require.Same(t, mine, r.Get(1, 7))
	require.Same(t, theirs, r.Get(2, 7))
}

func TestRegistryDoesNotRetainFailedStart(t *testing.T) {
	backend := newFakeBackend(300)
	backend.testErr = errors.New("backend unreachable")
	r := NewRegistry(utils.NewDevelopmentLogger())

	_, err := r.Acquire(context.Background(), 1, 7, registryFactory(backend))
	require.ErrorIs(t, err, ErrInitializationFailed)
	require.Zero(t, r.Len())
	require.Nil(t, r.Get(1, 7))
}

func TestRegistryEvictsSettledSession(t *testing.T) {
	backend := newFakeBackend(300)
	r := NewRegistry(utils.NewDevelopmentLogger())

	ctrl, err := r.Acquire(context.Background(), 1, 7, registryFactory(backend))
	require.NoError(t, err)

	ctrl.RequestSubmit()
	require.NoError(t, ctrl.ConfirmSubmit(context.Background()))

	// a settled session is evicted on the next lookup, freeing the slot
	require.Nil(t, r.Get(1, 7))
	require.Zero(t, r.Len())

	replacement, err := r.Acquire(context.Background(), 1, 7, registryFactory(backend))
	require.NoError(t, err)
	require.NotSame(t, ctrl, replacement)
	r.Release(1, 7)
}

func TestRegistryReleaseClosesController(t *testing.T) {
	backend := newFakeBackend(300)
	r := NewRegistry(utils.NewDevelopmentLogger())

	ctrl, err := r.Acquire(context.Background(), 1, 7, registryFactory(backend))
	require.NoError(t, err)

	r.Release(1, 7)
	require.Nil(t, r.Get(1, 7))

	// edits after release never reach the backend
	ctrl.SetAnswer(1, float64(11))
	time.Sleep(3 * testQuiet)
	require.Zero(t, backend.progressCount())
}
