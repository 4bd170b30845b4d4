package usecase

import (
	"context"
	"testing"
	"time"

	"linktrack/internal/conf"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T, repo *fakeClickRepo, c *conf.Tracking) *Dispatcher {
	t.Helper()
	tracker, m := newTestTrackingService(t, repo)
	return NewDispatcher(tracker, c, m, testLogger)
}

func validInput() ClickInput {
	return ClickInput{
		ShortURL:      testShortURL(),
		URLType:       URLTypePrimary,
		RedirectedURL: "https://example.com/a",
	}
}

func TestDispatcher_SubmitBeforeStart(t *testing.T) {
	d := newTestDispatcher(t, newFakeClickRepo(), nil)
	assert.ErrorIs(t, d.Submit(validInput()), ErrDispatcherStopped)
}

func TestDispatcher_TracksQueuedClicksAndDrainsOnStop(t *testing.T) {
	repo := newFakeClickRepo()
	d := newTestDispatcher(t, repo, &conf.Tracking{QueueSize: 16, Workers: 2})

	require.NoError(t, d.Start(context.Background()))
	for i := 0; i < 10; i++ {
		require.NoError(t, d.Submit(validInput()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	assert.Len(t, repo.insertedEvents(), 10)
	assert.Equal(t, 10.0, testutil.ToFloat64(d.metrics.DispatchTotal.WithLabelValues("queued")))
	assert.ErrorIs(t, d.Submit(validInput()), ErrDispatcherStopped)
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	repo := newFakeClickRepo()
	repo.insertHook = func(ctx context.Context) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
	}
	d := newTestDispatcher(t, repo, &conf.Tracking{QueueSize: 1, Workers: 1})
	require.NoError(t, d.Start(context.Background()))

	require.NoError(t, d.Submit(validInput()))
	<-entered // the only worker is now busy

	require.NoError(t, d.Submit(validInput()))
	assert.ErrorIs(t, d.Submit(validInput()), ErrQueueFull)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.metrics.DispatchTotal.WithLabelValues("dropped")))

	close(release)
	require.NoError(t, d.Stop(context.Background()))
	assert.Len(t, repo.insertedEvents(), 2)
}

func TestDispatcher_StopHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	repo := newFakeClickRepo()
	repo.insertHook = func(ctx context.Context) { <-release }
	d := newTestDispatcher(t, repo, &conf.Tracking{QueueSize: 4, Workers: 1, EventTimeout: &conf.Duration{Duration: time.Minute}})
	require.NoError(t, d.Start(context.Background()))
	require.NoError(t, d.Submit(validInput()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := d.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDispatcher_InvalidClickDoesNotStopWorker(t *testing.T) {
	repo := newFakeClickRepo()
	d := newTestDispatcher(t, repo, &conf.Tracking{QueueSize: 4, Workers: 1})
	require.NoError(t, d.Start(context.Background()))

	bad := validInput()
	bad.URLType = "url3"
	require.NoError(t, d.Submit(bad))
	require.NoError(t, d.Submit(validInput()))
	require.NoError(t, d.Stop(context.Background()))

	assert.Len(t, repo.insertedEvents(), 1)
}

func TestDispatcher_StartTwice(t *testing.T) {
	d := newTestDispatcher(t, newFakeClickRepo(), nil)
	require.NoError(t, d.Start(context.Background()))
	assert.Error(t, d.Start(context.Background()))
	require.NoError(t, d.Stop(context.Background()))
}
