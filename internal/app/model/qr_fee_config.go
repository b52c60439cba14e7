package model

import (
	"strings"
	"time"
)

type QRFeeType string // QR 주문 수수료 방식

const (
	QRFeeTypeNone       QRFeeType = "none"
	QRFeeTypeFixed      QRFeeType = "fixed"
	QRFeeTypePercentage QRFeeType = "percentage"
)

// ParseQRFeeType accepts any casing ("PERCENTAGE", "percentage")
func ParseQRFeeType(s string) (QRFeeType, bool) {
	t := QRFeeType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case QRFeeTypeNone, QRFeeTypeFixed, QRFeeTypePercentage:
		return t, true
	}
	return "", false
}

// QRFeeConfiguration 매장별 QR 주문 수수료 정책 (매장당 최대 1건)
type QRFeeConfiguration struct {
	ID           uint      `gorm:"primarykey" json:"id,omitempty"`
	RestaurantID uint      `gorm:"not null;uniqueIndex" json:"restaurantId"`
	FeeType      QRFeeType `gorm:"type:varchar(20);not null" json:"feeType"`
	FeeAmount    *float64  `gorm:"type:decimal(10,2)" json:"feeAmount"` // NONE이면 무시
	IsActive     bool      `gorm:"not null" json:"isActive"`            // false면 설정이 있어도 부과하지 않음
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (QRFeeConfiguration) TableName() string {
	return "qr_fee_configurations"
}

// Persisted reports whether the configuration came from the database
// rather than being the read-through default.
func (c *QRFeeConfiguration) Persisted() bool {
	return c.ID != 0
}
