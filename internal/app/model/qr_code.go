package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QRCodeType string // QR 코드 용도

const (
	QRCodeTypeTable   QRCodeType = "TABLE"   // 테이블 주문용
	QRCodeTypeTakeout QRCodeType = "TAKEOUT" // 포장 주문용
	QRCodeTypeSpecial QRCodeType = "SPECIAL" // 이벤트/프로모션용
)

// IsValid reports whether t is one of the known code types
func (t QRCodeType) IsValid() bool {
	switch t {
	case QRCodeTypeTable, QRCodeTypeTakeout, QRCodeTypeSpecial:
		return true
	}
	return false
}

type QRTargetKind string // 스캔 시 열리는 대상 분류

const (
	QRTargetMenu      QRTargetKind = "MENU"
	QRTargetCustomURL QRTargetKind = "CUSTOM_URL"
	QRTargetFallback  QRTargetKind = "FALLBACK"
)

// QRStyle 사용자가 고른 QR 스타일 (qr_codes 테이블에 style_ 접두사로 임베드)
type QRStyle struct {
	Design               string `gorm:"type:varchar(20);not null" json:"design"`
	PrimaryColor         string `gorm:"type:varchar(20);not null" json:"primaryColor"`
	BackgroundColor      string `gorm:"type:varchar(20);not null" json:"backgroundColor"`
	Size                 string `gorm:"type:varchar(10);not null" json:"size"`
	ErrorCorrectionLevel string `gorm:"type:varchar(1);not null" json:"errorCorrectionLevel"`
	HasLogo              bool   `gorm:"not null" json:"hasLogo"`
	CustomText           string `gorm:"type:text" json:"customText"`
}

// QRCode 생성된 QR 코드 메타데이터.
// SVG가 재생성의 원본이며, QRURL이 남아 있으면 PNG는 URL에서 새로 인코딩한다.
type QRCode struct {
	ID           string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID uint         `gorm:"not null;index:idx_qr_codes_restaurant_created,priority:1" json:"restaurantId"`
	Restaurant   *Restaurant  `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	TargetKind   QRTargetKind `gorm:"type:varchar(20);not null" json:"targetKind"`
	TargetRef    string       `gorm:"type:text" json:"targetRef"`
	Style        QRStyle      `gorm:"embedded;embeddedPrefix:style_" json:"style"`

	SVG      string  `gorm:"column:svg;type:text;not null" json:"svgString"` // 렌더링된 SVG (원본)
	QRURL    *string `gorm:"column:qr_url;type:text" json:"qrUrl,omitempty"` // 인코딩된 URL 캐시
	AssetURL string  `gorm:"type:text" json:"assetUrl,omitempty"`            // 오브젝트 스토리지 사본 URL

	CodeType    QRCodeType `gorm:"type:varchar(20);not null;index" json:"codeType"`
	TableNumber *int       `json:"tableNumber,omitempty"` // TABLE 타입에서만 사용

	ScanCount int64 `gorm:"not null;default:0" json:"scanCount"` // 다운로드/리다이렉트마다 1 증가

	CreatedAt time.Time      `gorm:"index:idx_qr_codes_restaurant_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (QRCode) TableName() string {
	return "qr_codes"
}

// BeforeCreate assigns an opaque id when none was provided
func (q *QRCode) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
