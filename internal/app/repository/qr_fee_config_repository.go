package repository

import (
	"errors"

	"github.com/ikkim/tableqr-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QRFeeConfigRepository QR 수수료 설정 저장소 인터페이스
type QRFeeConfigRepository interface {
	// FindByRestaurant 저장된 설정이 없으면 nil, nil. 기본값 생성 여부는 호출자가 결정한다.
	FindByRestaurant(restaurantID uint) (*model.QRFeeConfiguration, error)
	// Upsert restaurant_id 기준으로 생성하거나 덮어쓴다 (이력 없음)
	Upsert(config *model.QRFeeConfiguration) error
}

type qrFeeConfigRepository struct {
	db *gorm.DB
}

// NewQRFeeConfigRepository QR 수수료 설정 저장소 생성자
func NewQRFeeConfigRepository(db *gorm.DB) QRFeeConfigRepository {
	return &qrFeeConfigRepository{db: db}
}

func (r *qrFeeConfigRepository) FindByRestaurant(restaurantID uint) (*model.QRFeeConfiguration, error) {
	var config model.QRFeeConfiguration
	err := r.db.Where("restaurant_id = ?", restaurantID).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *qrFeeConfigRepository) Upsert(config *model.QRFeeConfiguration) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "restaurant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"fee_type", "fee_amount", "is_active", "updated_at"}),
	}).Create(config).Error
	if err != nil {
		return err
	}

	// ON CONFLICT 경로에서는 드라이버마다 반환 ID가 달라 다시 읽는다
	stored, err := r.FindByRestaurant(config.RestaurantID)
	if err != nil {
		return err
	}
	if stored != nil {
		*config = *stored
	}
	return nil
}
