// internal/cleanup/cleanup.go
package cleanup

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"captain-smart/internal/models"
	"captain-smart/internal/utils"
)

// ExposeStore is the slice of the database the cleanup job needs.
type ExposeStore interface {
	FindExpiredExposes(ctx context.Context, now time.Time) ([]*models.Expose, error)
	DeleteExpiredExposes(ctx context.Context, now time.Time) (int64, error)
}

// MediaStore deletes a single media file; failures are per-call.
type MediaStore interface {
	DeleteFile(ctx context.Context, fileURL string) error
}

// Result reports what a cleanup pass accomplished.
type Result struct {
	CleanedCount int64 `json:"cleanedCount"`
	FilesDeleted int   `json:"filesDeleted"`
	FilesFailed  int   `json:"filesFailed"`
}

// Service removes expired exposes and their media. A pass is triggered by
// the Scheduler's tickers or on demand through the admin endpoint; an
// in-flight guard serializes overlapping passes so media deletions are not
// attempted twice for the same file.
type Service struct {
	store    ExposeStore
	media    MediaStore
	metrics  *utils.MetricsCollector
	inFlight atomic.Bool
}

func NewService(store ExposeStore, media MediaStore, metrics *utils.MetricsCollector) *Service {
	return &Service{
		store:   store,
		media:   media,
		metrics: metrics,
	}
}

// Run executes one cleanup pass against the expiry predicate at now.
//
// Media deletion is best effort: every file of every expired expose gets an
// independent deletion attempt, all attempts are awaited regardless of
// individual outcome, and failures are logged and counted but never abort
// the pass. Only the database itself being unreachable is fatal. The record
// bulk delete runs after the media fan-out settles and reuses the same
// predicate the find used.
func (s *Service) Run(ctx context.Context, now time.Time) (*Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, utils.NewAppError(utils.ErrCleanupInProgress, "a cleanup pass is already running", nil)
	}
	defer s.inFlight.Store(false)

	startTime := time.Now()

	expired, err := s.store.FindExpiredExposes(ctx, now)
	if err != nil {
		return nil, err
	}

	if len(expired) == 0 {
		// Nothing to do is a normal outcome, not an error.
		return &Result{}, nil
	}

	log.Printf("CleanupService: found %d expired exposes", len(expired))

	var (
		mu           sync.Mutex
		filesDeleted int
		filesFailed  int
		wg           sync.WaitGroup
	)

	for _, expose := range expired {
		for _, fileURL := range expose.MediaURLs() {
			wg.Add(1)
			go func(exposeID, fileURL string) {
				defer wg.Done()
				err := s.media.DeleteFile(ctx, fileURL)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					filesFailed++
					log.Printf("CleanupService: failed to delete media for %s: %v", exposeID, err)
					return
				}
				filesDeleted++
			}(expose.ID, fileURL)
		}
	}

	// Wait for every deletion attempt to settle, success or failure alike.
	wg.Wait()

	cleaned, err := s.store.DeleteExpiredExposes(ctx, now)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AddOperationLatency("cleanup_pass", time.Since(startTime))
	}

	log.Printf("CleanupService: deleted %d exposes, %d media files (%d media failures)",
		cleaned, filesDeleted, filesFailed)

	return &Result{
		CleanedCount: cleaned,
		FilesDeleted: filesDeleted,
		FilesFailed:  filesFailed,
	}, nil
}
