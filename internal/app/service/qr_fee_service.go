package service

import (
	"errors"
	"math"

	"github.com/ikkim/tableqr-backend/internal/app/model"
	"github.com/ikkim/tableqr-backend/internal/app/repository"
	"github.com/ikkim/tableqr-backend/pkg/logger"
)

var (
	ErrInvalidFeeType     = errors.New("invalid fee type: must be none, fixed or percentage")
	ErrFeeAmountRequired  = errors.New("fee amount is required when fee type is fixed or percentage")
	ErrInvalidFeeAmount   = errors.New("fee amount must be zero or positive, and at most 100 for percentage")
	ErrInvalidFeeSubtotal = errors.New("subtotal must be zero or positive")
)

// UpsertQRFeeConfigInput 수수료 설정 저장 요청
type UpsertQRFeeConfigInput struct {
	FeeType   string   `json:"feeType" binding:"required"`
	FeeAmount *float64 `json:"feeAmount"`
	IsActive  *bool    `json:"isActive"`
}

// FeeQuote 주문 금액에 대한 QR 수수료 계산 결과
type FeeQuote struct {
	FeeType   model.QRFeeType `json:"feeType"`
	Applied   bool            `json:"applied"`
	Subtotal  float64         `json:"subtotal"`
	Surcharge float64         `json:"surcharge"`
	Total     float64         `json:"total"`
}

// QRFeeService QR 수수료 설정 서비스 인터페이스
type QRFeeService interface {
	GetConfig(restaurantID uint) (*model.QRFeeConfiguration, error)
	UpsertConfig(restaurantID uint, input UpsertQRFeeConfigInput) (*model.QRFeeConfiguration, error)
	QuoteFee(restaurantID uint, subtotal float64) (*FeeQuote, error)
}

type qrFeeService struct {
	repo           repository.QRFeeConfigRepository
	restaurantRepo repository.RestaurantRepository
}

// NewQRFeeService QR 수수료 설정 서비스 생성
func NewQRFeeService(repo repository.QRFeeConfigRepository, restaurantRepo repository.RestaurantRepository) QRFeeService {
	return &qrFeeService{
		repo:           repo,
		restaurantRepo: restaurantRepo,
	}
}

// GetConfig 저장된 설정 반환. 없으면 저장하지 않은 기본값 {none, active}
func (s *qrFeeService) GetConfig(restaurantID uint) (*model.QRFeeConfiguration, error) {
	if err := ensureRestaurant(s.restaurantRepo, restaurantID); err != nil {
		return nil, err
	}

	config, err := s.repo.FindByRestaurant(restaurantID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &model.QRFeeConfiguration{
			RestaurantID: restaurantID,
			FeeType:      model.QRFeeTypeNone,
			IsActive:     true,
		}
	}
	return config, nil
}

// UpsertConfig 매장당 1건으로 생성 또는 덮어쓰기 (이력 없음)
func (s *qrFeeService) UpsertConfig(restaurantID uint, input UpsertQRFeeConfigInput) (*model.QRFeeConfiguration, error) {
	if err := ensureRestaurant(s.restaurantRepo, restaurantID); err != nil {
		return nil, err
	}

	feeType, ok := model.ParseQRFeeType(input.FeeType)
	if !ok {
		return nil, ErrInvalidFeeType
	}

	if feeType != model.QRFeeTypeNone {
		if input.FeeAmount == nil {
			return nil, ErrFeeAmountRequired
		}
		amount := *input.FeeAmount
		if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return nil, ErrInvalidFeeAmount
		}
		if feeType == model.QRFeeTypePercentage && amount > 100 {
			return nil, ErrInvalidFeeAmount
		}
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	} else {
		existing, err := s.repo.FindByRestaurant(restaurantID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			isActive = existing.IsActive
		}
	}

	config := &model.QRFeeConfiguration{
		RestaurantID: restaurantID,
		FeeType:      feeType,
		FeeAmount:    input.FeeAmount,
		IsActive:     isActive,
	}
	if err := s.repo.Upsert(config); err != nil {
		return nil, err
	}

	logger.Info("QR fee configuration saved", map[string]interface{}{
		"restaurant_id": restaurantID,
		"fee_type":      config.FeeType,
		"is_active":     config.IsActive,
	})
	return config, nil
}

// QuoteFee 수수료 계산. none이거나 비활성이면 0
func (s *qrFeeService) QuoteFee(restaurantID uint, subtotal float64) (*FeeQuote, error) {
	if subtotal < 0 || math.IsNaN(subtotal) || math.IsInf(subtotal, 0) {
		return nil, ErrInvalidFeeSubtotal
	}

	config, err := s.GetConfig(restaurantID)
	if err != nil {
		return nil, err
	}

	quote := &FeeQuote{
		FeeType:  config.FeeType,
		Subtotal: subtotal,
		Total:    subtotal,
	}
	if !config.IsActive || config.FeeType == model.QRFeeTypeNone || config.FeeAmount == nil {
		return quote, nil
	}

	switch config.FeeType {
	case model.QRFeeTypeFixed:
		quote.Surcharge = *config.FeeAmount
	case model.QRFeeTypePercentage:
		quote.Surcharge = roundCents(subtotal * *config.FeeAmount / 100)
	}
	quote.Applied = true
	quote.Total = roundCents(subtotal + quote.Surcharge)
	return quote, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
