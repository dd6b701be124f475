package hubclient

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSyncInterval is how often the background syncer pushes
// snapshots while running.
const DefaultSyncInterval = 30 * time.Second

// Syncer keeps the local draft store and the server in step. Failures
// are logged and retried on the next tick; the draft store is never
// blocked on the network.
type Syncer struct {
	client   *Client
	store    *DraftStore
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	syncing bool
}

// NewSyncer creates a syncer and installs the step hook so every step
// change pushes a snapshot immediately.
func NewSyncer(client *Client, store *DraftStore, logger *zap.Logger) *Syncer {
	s := &Syncer{
		client:   client,
		store:    store,
		interval: DefaultSyncInterval,
		logger:   logger.Named("sync"),
	}

	store.SetStepHook(func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		if err := s.SyncToServer(ctx); err != nil {
			s.logger.Warn("Step sync failed", zap.Error(err))
		}
	})

	return s
}

// SyncToServer pushes the current snapshot to the server.
func (s *Syncer) SyncToServer(ctx context.Context) error {
	_, err := s.client.SaveSession(ctx, s.store.Snapshot())
	return err
}

// RestoreState pulls the server snapshot and overwrites the draft
// store with it. Returns false when the server has no snapshot; the
// store is left untouched in that case.
func (s *Syncer) RestoreState(ctx context.Context) (bool, error) {
	aggregate, err := s.client.GetState(ctx)
	if err != nil {
		return false, err
	}
	if aggregate.State == nil {
		return false, nil
	}

	s.store.Overwrite(aggregate.State, aggregate.Profile)
	return true, nil
}

// Run pushes snapshots on a fixed interval until ctx is cancelled,
// then makes one final best-effort flush. Timer ticks that land while
// a sync is still in flight are skipped.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.beginSync() {
				continue
			}
			if err := s.SyncToServer(ctx); err != nil {
				s.logger.Warn("Background sync failed", zap.Error(err))
			}
			s.endSync()
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.SyncToServer(flushCtx); err != nil {
				s.logger.Warn("Final sync flush failed", zap.Error(err))
			}
			cancel()
			return
		}
	}
}

func (s *Syncer) beginSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncing {
		return false
	}
	s.syncing = true
	return true
}

func (s *Syncer) endSync() {
	s.mu.Lock()
	s.syncing = false
	s.mu.Unlock()
}
