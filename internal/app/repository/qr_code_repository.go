package repository

import (
	"github.com/ikkim/tableqr-backend/internal/app/model"
	"gorm.io/gorm"
)

// QRCodeRepository QR 코드 저장소 인터페이스
type QRCodeRepository interface {
	Create(qr *model.QRCode) error
	FindByID(id string) (*model.QRCode, error)
	FindByRestaurantAndID(restaurantID uint, id string) (*model.QRCode, error)
	FindByRestaurant(restaurantID uint) ([]model.QRCode, error)
	IncrementScanCount(id string) (int64, error)
	Delete(restaurantID uint, id string) (bool, error)
	UpdateAssetURL(id, assetURL string) error
}

type qrCodeRepository struct {
	db *gorm.DB
}

// NewQRCodeRepository QR 코드 저장소 생성자
func NewQRCodeRepository(db *gorm.DB) QRCodeRepository {
	return &qrCodeRepository{db: db}
}

func (r *qrCodeRepository) Create(qr *model.QRCode) error {
	return r.db.Create(qr).Error
}

// FindByID 공개 스캔 경로용 조회 (매장 범위 없음)
func (r *qrCodeRepository) FindByID(id string) (*model.QRCode, error) {
	var qr model.QRCode
	if err := r.db.Where("id = ?", id).First(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}

// FindByRestaurantAndID 매장 범위로 조회. 다른 매장의 QR은 존재하지 않는 것과 동일하게 ErrRecordNotFound
func (r *qrCodeRepository) FindByRestaurantAndID(restaurantID uint, id string) (*model.QRCode, error) {
	var qr model.QRCode
	if err := r.db.Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}

// FindByRestaurant 매장의 QR 코드 목록 (최신순)
func (r *qrCodeRepository) FindByRestaurant(restaurantID uint) ([]model.QRCode, error) {
	var qrs []model.QRCode
	err := r.db.Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&qrs).Error
	return qrs, err
}

// IncrementScanCount 스캔 카운트를 DB에서 원자적으로 1 증가시키고 증가 후 값을 반환
func (r *qrCodeRepository) IncrementScanCount(id string) (int64, error) {
	var scanCount int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.QRCode{}).
			Where("id = ?", id).
			Update("scan_count", gorm.Expr("scan_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&model.QRCode{}).
			Where("id = ?", id).
			Select("scan_count").
			Scan(&scanCount).Error
	})
	return scanCount, err
}

// Delete 소프트 삭제. 대상이 없으면 false
func (r *qrCodeRepository) Delete(restaurantID uint, id string) (bool, error) {
	result := r.db.Where("id = ? AND restaurant_id = ?", id, restaurantID).Delete(&model.QRCode{})
	return result.RowsAffected > 0, result.Error
}

func (r *qrCodeRepository) UpdateAssetURL(id, assetURL string) error {
	return r.db.Model(&model.QRCode{}).Where("id = ?", id).Update("asset_url", assetURL).Error
}
