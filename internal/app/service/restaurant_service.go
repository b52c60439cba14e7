package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ikkim/tableqr-backend/internal/app/model"
	"github.com/ikkim/tableqr-backend/internal/app/repository"
	"github.com/ikkim/tableqr-backend/pkg/catalog"
	"github.com/ikkim/tableqr-backend/pkg/logger"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrRestaurantNotFound    = errors.New("restaurant not found")
	ErrCatalogNotConfigured  = errors.New("restaurant catalog is not configured")
	ErrCatalogSyncInProgress = errors.New("restaurant catalog sync already running")
)

const defaultCatalogSyncParallel = 4

// RestaurantCatalog 외부 매장 카탈로그
type RestaurantCatalog interface {
	FetchRestaurants(ctx context.Context) ([]catalog.Restaurant, error)
}

// SyncError 동기화 중 실패한 항목
type SyncError struct {
	ExternalID string `json:"externalId"`
	Message    string `json:"message"`
}

// SyncResult 카탈로그 동기화 결과
type SyncResult struct {
	Fetched int         `json:"fetched"`
	Created int         `json:"created"`
	Updated int         `json:"updated"`
	Errors  []SyncError `json:"errors"`
}

// RestaurantService 매장 서비스 인터페이스
type RestaurantService interface {
	// List ids가 nil이면 전체 매장
	List(ids []uint) ([]model.Restaurant, error)
	Get(id uint) (*model.Restaurant, error)
	SyncCatalog(ctx context.Context) (*SyncResult, error)
}

type restaurantService struct {
	repo        repository.RestaurantRepository
	catalog     RestaurantCatalog
	concurrency int

	syncMu sync.Mutex
}

// NewRestaurantService 매장 서비스 생성. catalog가 nil이면 동기화 비활성화
func NewRestaurantService(repo repository.RestaurantRepository, catalog RestaurantCatalog, concurrency int) RestaurantService {
	if concurrency <= 0 {
		concurrency = defaultCatalogSyncParallel
	}
	return &restaurantService{
		repo:        repo,
		catalog:     catalog,
		concurrency: concurrency,
	}
}

func (s *restaurantService) List(ids []uint) ([]model.Restaurant, error) {
	return s.repo.FindAll(ids)
}

func (s *restaurantService) Get(id uint) (*model.Restaurant, error) {
	restaurant, err := s.repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRestaurantNotFound
	}
	return restaurant, err
}

// SyncCatalog 외부 카탈로그를 받아 external_id 기준으로 생성/갱신.
// 항목별 실패는 결과에 모으고 전체 동기화는 계속 진행한다.
func (s *restaurantService) SyncCatalog(ctx context.Context) (*SyncResult, error) {
	if s.catalog == nil {
		return nil, ErrCatalogNotConfigured
	}
	if !s.syncMu.TryLock() {
		return nil, ErrCatalogSyncInProgress
	}
	defer s.syncMu.Unlock()

	entries, err := s.catalog.FetchRestaurants(ctx)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Fetched: len(entries), Errors: []SyncError{}}
	var mu sync.Mutex
	fail := func(externalID, message string) {
		mu.Lock()
		result.Errors = append(result.Errors, SyncError{ExternalID: externalID, Message: message})
		mu.Unlock()
	}

	seen := make(map[string]bool, len(entries))
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, entry := range entries {
		entry := entry
		id := strings.TrimSpace(entry.ExternalID)
		switch {
		case id == "":
			fail("", fmt.Sprintf("missing external id for %q", entry.Name))
			continue
		case seen[id]:
			fail(id, "duplicate external id in catalog")
			continue
		}
		seen[id] = true

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				fail(id, err.Error())
				return nil
			}
			created, err := s.upsert(id, entry)
			if err != nil {
				fail(id, err.Error())
				return nil
			}
			mu.Lock()
			if created {
				result.Created++
			} else {
				result.Updated++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].ExternalID < result.Errors[j].ExternalID
	})

	logger.Info("Restaurant catalog synced", map[string]interface{}{
		"fetched": result.Fetched,
		"created": result.Created,
		"updated": result.Updated,
		"errors":  len(result.Errors),
	})
	return result, nil
}

func (s *restaurantService) upsert(externalID string, entry catalog.Restaurant) (bool, error) {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return false, errors.New("restaurant name is required")
	}

	now := time.Now()
	existing, err := s.repo.FindByExternalID(externalID)
	if err != nil {
		return false, err
	}

	if existing == nil {
		id := externalID
		return true, s.repo.Create(&model.Restaurant{
			ExternalID:  &id,
			Name:        name,
			Address:     entry.Address,
			PhoneNumber: entry.Phone,
			Cuisines:    pq.StringArray(entry.Cuisines),
			IsActive:    entry.Active,
			SyncedAt:    &now,
		})
	}

	existing.Name = name
	existing.Address = entry.Address
	existing.PhoneNumber = entry.Phone
	existing.Cuisines = pq.StringArray(entry.Cuisines)
	existing.IsActive = entry.Active
	existing.SyncedAt = &now
	return false, s.repo.Update(existing)
}

// ensureRestaurant 매장 존재 확인 (없으면 ErrRestaurantNotFound)
func ensureRestaurant(repo repository.RestaurantRepository, restaurantID uint) error {
	exists, err := repo.Exists(restaurantID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRestaurantNotFound
	}
	return nil
}
