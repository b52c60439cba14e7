package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Restaurant 테넌트(매장) 모델. QR 코드와 수수료 설정은 모두 restaurant_id로 귀속된다.
type Restaurant struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                     // 매장 ID
	ExternalID  *string        `gorm:"type:varchar(100);uniqueIndex" json:"externalId,omitempty"` // 외부 카탈로그 ID (동기화 키)
	Name        string         `gorm:"not null" json:"name"`                                     // 매장명
	Address     string         `gorm:"type:text" json:"address"`                                 // 주소
	PhoneNumber string         `gorm:"type:varchar(30)" json:"phoneNumber"`                      // 연락처
	Cuisines    pq.StringArray `gorm:"type:text[]" json:"cuisines"`                              // 음식 종류 (예: ["korean", "bbq"])
	IsActive    bool           `gorm:"not null" json:"isActive"`                                 // 운영 여부
	SyncedAt    *time.Time     `json:"syncedAt,omitempty"`                                       // 마지막 카탈로그 동기화 시각
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}
