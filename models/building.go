package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheFirstHero6/noah-game-sub000/rules"
)

// Building belongs to a city. Its kind and tier fix its per-turn yield
// through the rules tables.
type Building struct {
	BaseModel

	GUID   uuid.UUID          `gorm:"size:36" json:"guid"`
	CityID uint               `gorm:"index" json:"city_id"`
	Kind   rules.BuildingKind `gorm:"size:32" json:"name"`
	Tier   int                `gorm:"default:1" json:"tier"`
}

func (building *Building) BeforeCreate(tx *gorm.DB) (err error) {
	building.GUID = uuid.New()
	return
}

func (building *Building) Yield() rules.Yield {
	return rules.BuildingYield(building.Kind, building.Tier)
}
