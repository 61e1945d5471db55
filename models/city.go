package models

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/TheFirstHero6/noah-game-sub000/rules"
)

// City accumulates local wealth each turn; the tax rate converts part
// of it into the owner's currency.
type City struct {
	BaseModel

	GUID    uuid.UUID `gorm:"size:36" json:"guid"`
	RealmID uint      `gorm:"index" json:"realm_id"`
	UserID  uint      `gorm:"index" json:"user_id"`
	Name    string    `gorm:"size:64" json:"name"`
	Tier    int       `gorm:"default:1" json:"tier"`
	Wealth  float64   `gorm:"default:0" json:"wealth"`
	TaxRate uint      `gorm:"default:10" json:"tax_rate"`

	Buildings []*Building `gorm:"foreignKey:CityID" json:"buildings,omitempty"`
}

func (city *City) BeforeCreate(tx *gorm.DB) (err error) {
	city.GUID = uuid.New()
	return
}

func LoadCity(ctx context.Context, db *gorm.DB, id uint) (*City, error) {
	var city City
	err := db.WithContext(ctx).Preload("Buildings").First(&city, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCityNotFound
	}
	if err != nil {
		return nil, err
	}

	return &city, nil
}

func CitiesForUser(ctx context.Context, db *gorm.DB, realmID, userID uint) ([]*City, error) {
	var cities []*City
	err := db.WithContext(ctx).
		Preload("Buildings").
		Where("realm_id = ? AND user_id = ?", realmID, userID).
		Order("id asc").
		Find(&cities).Error
	if err != nil {
		return nil, err
	}

	return cities, nil
}

// FoundCity creates a tier-1 city for a realm member, deducting the
// founding cost in one transaction.
func FoundCity(ctx context.Context, db *gorm.DB, realmID uint, user *User, name string) (*City, error) {
	ctx, sp := Tracer.Start(ctx, "found-city")
	defer sp.End()

	if name == "" {
		return nil, GameError("city-name-required")
	}

	if _, err := MembershipFor(ctx, db, realmID, user.ID); err != nil {
		return nil, err
	}

	city := &City{RealmID: realmID, UserID: user.ID, Name: name, Tier: rules.MinCityTier}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resource, err := lockResources(ctx, tx, realmID, user.ID)
		if err != nil {
			return err
		}

		cost := rules.CityFoundingCost()
		if err := resource.CanAfford(cost); err != nil {
			return err
		}

		resource.TakeCost(cost)
		if err := tx.Save(resource).Error; err != nil {
			return err
		}

		return tx.Create(city).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("realm", realmID).Uint("user", user.ID).Msg("Founded city " + city.Name)
	return city, nil
}

// Construct validates the building kind and tier, deducts the cost and
// inserts the building row, all inside one transaction.
func (city *City) Construct(ctx context.Context, db *gorm.DB, kindName string, tier int) (*Building, error) {
	ctx, sp := Tracer.Start(ctx, "construct-building")
	defer sp.End()

	kind, err := rules.ParseBuildingKind(kindName)
	if err != nil {
		return nil, GameError(err.Error())
	}

	if tier < rules.MinBuildingTier || tier > rules.MaxBuildingTier {
		return nil, GameError("invalid-building-tier")
	}

	building := &Building{CityID: city.ID, Kind: kind, Tier: tier}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resource, err := lockResources(ctx, tx, city.RealmID, city.UserID)
		if err != nil {
			return err
		}

		cost := rules.BuildingCost(kind, tier)
		if err := resource.CanAfford(cost); err != nil {
			return err
		}

		resource.TakeCost(cost)
		if err := tx.Save(resource).Error; err != nil {
			return err
		}

		return tx.Create(building).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("city", city.ID).Int("tier", tier).Msg("Constructed " + string(kind))
	return building, nil
}

// Upgrade raises the city tier. Only the next tier is reachable, and
// the upgrade costs currency, wood and stone.
func (city *City) Upgrade(ctx context.Context, db *gorm.DB, targetTier int) error {
	ctx, sp := Tracer.Start(ctx, "upgrade-city")
	defer sp.End()

	if targetTier > rules.MaxCityTier {
		return GameError("city-tier-maxed")
	}
	if targetTier != city.Tier+1 {
		return GameError("upgrade-not-sequential")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resource, err := lockResources(ctx, tx, city.RealmID, city.UserID)
		if err != nil {
			return err
		}

		cost := rules.CityUpgradeCost(targetTier)
		if err := resource.CanAfford(cost); err != nil {
			return err
		}

		resource.TakeCost(cost)
		if err := tx.Save(resource).Error; err != nil {
			return err
		}

		city.Tier = targetTier
		return tx.Save(city).Error
	})
}

func (city *City) SetTaxRate(ctx context.Context, db *gorm.DB, rate uint) error {
	if rate > 100 {
		return GameError("invalid-tax-rate")
	}

	city.TaxRate = rate
	return db.WithContext(ctx).Save(city).Error
}
