// internal/cleanup/scheduler.go
package cleanup

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"captain-smart/internal/utils"
)

// Scheduler triggers cleanup passes on two independent cadences: a primary
// interval and a slower backup interval that catches anything a failed
// primary pass left behind. It is an explicit service with a start/stop
// lifecycle owned by the composition root, not package-level state.
type Scheduler struct {
	service  *Service
	primary  time.Duration
	backup   time.Duration
	started  atomic.Bool
	stopOnce atomic.Bool
	stop     chan struct{}
	done     chan struct{}
}

func NewScheduler(service *Service, primary, backup time.Duration) *Scheduler {
	return &Scheduler{
		service: service,
		primary: primary,
		backup:  backup,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the timer loop. Calling Start twice is a programming error
// and is rejected rather than silently spawning a second loop.
func (s *Scheduler) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("cleanup scheduler already started")
	}

	go s.run()
	log.Printf("CleanupScheduler: started (primary %s, backup %s)", s.primary, s.backup)
	return nil
}

// Stop terminates the timer loop and waits for it to exit. Safe to call
// once; a Stop without a prior Start is a no-op.
func (s *Scheduler) Stop() {
	if !s.started.Load() {
		return
	}
	if !s.stopOnce.CompareAndSwap(false, true) {
		return
	}
	close(s.stop)
	<-s.done
	log.Printf("CleanupScheduler: stopped")
}

func (s *Scheduler) run() {
	defer close(s.done)

	primaryTicker := time.NewTicker(s.primary)
	defer primaryTicker.Stop()

	backupTicker := time.NewTicker(s.backup)
	defer backupTicker.Stop()

	for {
		select {
		case <-primaryTicker.C:
			s.fire("primary")
		case <-backupTicker.C:
			s.fire("backup")
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) fire(cadence string) {
	result, err := s.service.Run(context.Background(), time.Now())
	if err != nil {
		// Two cadences plus the admin trigger can race; losing the
		// in-flight guard just means another pass is already covering us.
		if utils.IsErrorCode(err, utils.ErrCleanupInProgress) {
			log.Printf("CleanupScheduler: %s tick skipped, pass already running", cadence)
			return
		}
		log.Printf("CleanupScheduler: %s pass failed: %v", cadence, err)
		return
	}

	if result.CleanedCount > 0 || result.FilesFailed > 0 {
		log.Printf("CleanupScheduler: %s pass cleaned %d exposes (%d files deleted, %d failed)",
			cadence, result.CleanedCount, result.FilesDeleted, result.FilesFailed)
	}
}
