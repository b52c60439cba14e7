package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ikkim/tableqr-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
)

type countingSyncer struct {
	calls atomic.Int32
	err   error
}

func (s *countingSyncer) SyncCatalog(ctx context.Context) (*service.SyncResult, error) {
	s.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("sync must run with a deadline")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &service.SyncResult{Created: 1}, nil
}

func TestRestaurantSyncScheduler_InvalidSchedule(t *testing.T) {
	s := NewRestaurantSyncScheduler(&countingSyncer{}, "not a schedule")
	assert.Error(t, s.Start())
}

func TestRestaurantSyncScheduler_StartStop(t *testing.T) {
	s := NewRestaurantSyncScheduler(&countingSyncer{}, "0 4 * * *")
	assert.NoError(t, s.Start())
	s.Stop()
}

func TestRestaurantSyncScheduler_RunOnce(t *testing.T) {
	syncer := &countingSyncer{}
	s := NewRestaurantSyncScheduler(syncer, "0 4 * * *")

	s.RunOnce()
	assert.Equal(t, int32(1), syncer.calls.Load())

	syncer.err = service.ErrCatalogSyncInProgress
	s.RunOnce()
	assert.Equal(t, int32(2), syncer.calls.Load())
}
