package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/tableqr-backend/internal/app/service"
	"github.com/ikkim/tableqr-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const syncTimeout = 10 * time.Minute

// CatalogSyncer 카탈로그 동기화를 수행하는 서비스
type CatalogSyncer interface {
	SyncCatalog(ctx context.Context) (*service.SyncResult, error)
}

// RestaurantSyncScheduler 외부 매장 카탈로그 정기 동기화 스케줄러
type RestaurantSyncScheduler struct {
	cron     *cron.Cron
	syncer   CatalogSyncer
	schedule string
}

// NewRestaurantSyncScheduler 스케줄러 생성. schedule은 5필드 cron 표현식
func NewRestaurantSyncScheduler(syncer CatalogSyncer, schedule string) *RestaurantSyncScheduler {
	return &RestaurantSyncScheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		syncer:   syncer,
		schedule: schedule,
	}
}

// Start 스케줄러 시작
func (s *RestaurantSyncScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for restaurant sync", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Restaurant sync scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// RunOnce 한 번 동기화 실행 (cron job 본체)
func (s *RestaurantSyncScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	logger.Info("Starting scheduled restaurant sync")
	result, err := s.syncer.SyncCatalog(ctx)
	if errors.Is(err, service.ErrCatalogSyncInProgress) {
		logger.Warn("Restaurant sync skipped, previous run still in progress")
		return
	}
	if err != nil {
		logger.Error("Failed to sync restaurants from scheduler", err)
		return
	}

	logger.Info("Scheduled restaurant sync finished", map[string]interface{}{
		"created": result.Created,
		"updated": result.Updated,
		"errors":  len(result.Errors),
	})
}

// Stop 스케줄러 중지. 실행 중인 작업이 끝날 때까지 기다린다
func (s *RestaurantSyncScheduler) Stop() {
	logger.Info("Stopping restaurant sync scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Restaurant sync scheduler stopped")
}
