package cleanup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"captain-smart/internal/expiry"
	"captain-smart/internal/models"
	"captain-smart/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExposeStore struct {
	mu      sync.Mutex
	exposes map[string]*models.Expose
	findErr error
	delErr  error
}

func newFakeExposeStore() *fakeExposeStore {
	return &fakeExposeStore{exposes: make(map[string]*models.Expose)}
}

func (f *fakeExposeStore) add(e *models.Expose) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exposes[e.ID] = e
}

func (f *fakeExposeStore) FindExpiredExposes(_ context.Context, now time.Time) ([]*models.Expose, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired []*models.Expose
	for _, e := range f.exposes {
		if expiry.IsExpired(e.ExpiresAt, now) {
			expired = append(expired, e)
		}
	}
	return expired, nil
}

func (f *fakeExposeStore) DeleteExpiredExposes(_ context.Context, now time.Time) (int64, error) {
	if f.delErr != nil {
		return 0, f.delErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, e := range f.exposes {
		if expiry.IsExpired(e.ExpiresAt, now) {
			delete(f.exposes, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeMediaStore struct {
	mu       sync.Mutex
	deleted  []string
	failURLs map[string]bool
	entered  chan struct{} // signaled when a delete begins
	block    chan struct{} // when set, DeleteFile waits until closed
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{failURLs: make(map[string]bool)}
}

func (f *fakeMediaStore) DeleteFile(_ context.Context, fileURL string) error {
	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failURLs[fileURL] {
		return errors.New("storage unavailable")
	}
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func expiredExpose(id string, now time.Time, files ...string) *models.Expose {
	return &models.Expose{
		ID:        id,
		CreatedAt: now.Add(-49 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
		ImageURLs: files,
	}
}

func liveExpose(id string, now time.Time) *models.Expose {
	return &models.Expose{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(48 * time.Hour),
	}
}

func TestRunDeletesOnlyExpired(t *testing.T) {
	now := time.Now()
	store := newFakeExposeStore()
	store.add(expiredExpose("expose_old1", now, "https://cdn/x/a.jpg"))
	store.add(expiredExpose("expose_old2", now))
	store.add(liveExpose("expose_fresh", now))

	svc := NewService(store, newFakeMediaStore(), utils.NewMetricsCollector())
	result, err := svc.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.CleanedCount)
	assert.Equal(t, 1, result.FilesDeleted)

	_, stillThere := store.exposes["expose_fresh"]
	assert.True(t, stillThere)
	assert.Equal(t, 1, len(store.exposes))
}

func TestRunNothingExpired(t *testing.T) {
	now := time.Now()
	store := newFakeExposeStore()
	store.add(liveExpose("expose_fresh", now))

	svc := NewService(store, newFakeMediaStore(), nil)
	result, err := svc.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.CleanedCount)
	assert.Equal(t, 0, result.FilesDeleted)
}

// A single failing media file must not stop the record cleanup, including
// the record the failed file belonged to.
func TestRunMediaFailureDoesNotAbort(t *testing.T) {
	now := time.Now()
	store := newFakeExposeStore()
	store.add(expiredExpose("expose_a", now, "https://cdn/x/ok.jpg"))
	store.add(expiredExpose("expose_b", now, "https://cdn/x/bad.jpg", "https://cdn/x/ok2.jpg"))

	media := newFakeMediaStore()
	media.failURLs["https://cdn/x/bad.jpg"] = true

	svc := NewService(store, media, nil)
	result, err := svc.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.CleanedCount)
	assert.Equal(t, 2, result.FilesDeleted)
	assert.Equal(t, 1, result.FilesFailed)
	assert.Equal(t, 0, len(store.exposes))
}

func TestRunAudioIncludedInMediaSweep(t *testing.T) {
	now := time.Now()
	store := newFakeExposeStore()
	e := expiredExpose("expose_a", now, "https://cdn/x/a.jpg")
	e.AudioURL = "https://cdn/x/clip.mp3"
	store.add(e)

	media := newFakeMediaStore()
	svc := NewService(store, media, nil)
	result, err := svc.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesDeleted)
	assert.ElementsMatch(t,
		[]string{"https://cdn/x/a.jpg", "https://cdn/x/clip.mp3"},
		media.deleted)
}

func TestRunStoreErrorIsFatal(t *testing.T) {
	store := newFakeExposeStore()
	store.findErr = utils.NewAppError(utils.ErrDatabase, "connection refused", nil)

	svc := NewService(store, newFakeMediaStore(), nil)
	result, err := svc.Run(context.Background(), time.Now())

	assert.Nil(t, result)
	assert.True(t, utils.IsErrorCode(err, utils.ErrDatabase))
}

func TestRunSerializesConcurrentPasses(t *testing.T) {
	now := time.Now()
	store := newFakeExposeStore()
	store.add(expiredExpose("expose_a", now, "https://cdn/x/a.jpg"))

	media := newFakeMediaStore()
	media.entered = make(chan struct{}, 1)
	media.block = make(chan struct{})

	svc := NewService(store, media, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background(), now)
		firstDone <- err
	}()

	// Wait until the first pass is parked inside the media fan-out, then a
	// second pass must be rejected rather than queued.
	<-media.entered
	_, err := svc.Run(context.Background(), now)
	assert.True(t, utils.IsErrorCode(err, utils.ErrCleanupInProgress))

	close(media.block)
	require.NoError(t, <-firstDone)

	// With the first pass settled, a new pass runs fine.
	_, err = svc.Run(context.Background(), now)
	assert.NoError(t, err)
}

func TestSchedulerStartStop(t *testing.T) {
	store := newFakeExposeStore()
	svc := NewService(store, newFakeMediaStore(), nil)

	sched := NewScheduler(svc, time.Hour, 6*time.Hour)
	require.NoError(t, sched.Start())
	assert.Error(t, sched.Start(), "second Start must be rejected")
	sched.Stop()
	sched.Stop() // idempotent
}

func TestSchedulerFiresOnTick(t *testing.T) {
	now := time.Now()
	store := newFakeExposeStore()
	store.add(expiredExpose("expose_a", now))

	svc := NewService(store, newFakeMediaStore(), nil)
	sched := NewScheduler(svc, 10*time.Millisecond, time.Hour)
	require.NoError(t, sched.Start())
	defer sched.Stop()

	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.exposes) == 0
	}, time.Second, 5*time.Millisecond)
}
