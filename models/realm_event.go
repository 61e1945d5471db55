package models

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RealmEvent is the realm's audit feed; turn resolution writes one row
// per processed member.
type RealmEvent struct {
	BaseModel

	GUID    uuid.UUID `gorm:"size:36" json:"guid"`
	RealmID uint      `gorm:"index" json:"realm_id"`
	UserID  uint      `json:"user_id"`
	Turn    uint      `json:"turn"`
	Message string    `gorm:"size:255" json:"message"`
}

func (event *RealmEvent) BeforeCreate(tx *gorm.DB) (err error) {
	event.GUID = uuid.New()
	return
}

func LoadRealmEvents(ctx context.Context, db *gorm.DB, realmID uint, page int) ([]*RealmEvent, error) {
	perPage := 20
	if page < 1 {
		page = 1
	}

	var events []*RealmEvent
	err := db.WithContext(ctx).
		Where("realm_id = ?", realmID).
		Order("id desc").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}
