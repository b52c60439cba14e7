package repository

import (
	"errors"

	"github.com/ikkim/tableqr-backend/internal/app/model"
	"gorm.io/gorm"
)

// RestaurantRepository 매장 저장소 인터페이스
type RestaurantRepository interface {
	Create(restaurant *model.Restaurant) error
	FindByID(id uint) (*model.Restaurant, error)
	FindByExternalID(externalID string) (*model.Restaurant, error)
	FindAll(ids []uint) ([]model.Restaurant, error)
	Exists(id uint) (bool, error)
	Update(restaurant *model.Restaurant) error
}

type restaurantRepository struct {
	db *gorm.DB
}

// NewRestaurantRepository 매장 저장소 생성자
func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) Create(restaurant *model.Restaurant) error {
	return r.db.Create(restaurant).Error
}

// FindByID 매장 ID로 조회 (없으면 gorm.ErrRecordNotFound)
func (r *restaurantRepository) FindByID(id uint) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := r.db.First(&restaurant, id).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// FindByExternalID 외부 카탈로그 ID로 조회. 없으면 nil, nil
func (r *restaurantRepository) FindByExternalID(externalID string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	err := r.db.Where("external_id = ?", externalID).First(&restaurant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// FindAll 매장 목록 조회. ids가 nil이면 전체, 비어 있으면 빈 목록
func (r *restaurantRepository) FindAll(ids []uint) ([]model.Restaurant, error) {
	var restaurants []model.Restaurant
	if ids != nil && len(ids) == 0 {
		return restaurants, nil
	}

	query := r.db.Model(&model.Restaurant{}).Order("name ASC")
	if ids != nil {
		query = query.Where("id IN ?", ids)
	}
	if err := query.Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

// Exists 매장 존재 여부
func (r *restaurantRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Restaurant{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *restaurantRepository) Update(restaurant *model.Restaurant) error {
	return r.db.Save(restaurant).Error
}
