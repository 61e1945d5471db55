package models

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/TheFirstHero6/noah-game-sub000/rules"
)

type Army struct {
	BaseModel

	GUID    uuid.UUID `gorm:"size:36" json:"guid"`
	RealmID uint      `gorm:"index" json:"realm_id"`
	UserID  uint      `gorm:"index" json:"user_id"`
	Name    string    `gorm:"size:64" json:"name"`

	Units []*ArmyUnit `gorm:"foreignKey:ArmyID" json:"units,omitempty"`
}

func (army *Army) BeforeCreate(tx *gorm.DB) (err error) {
	army.GUID = uuid.New()
	return
}

type ArmyUnit struct {
	BaseModel

	ArmyID   uint           `gorm:"uniqueIndex:idx_army_unit" json:"army_id"`
	Kind     rules.UnitKind `gorm:"size:32;uniqueIndex:idx_army_unit" json:"unit_type"`
	Quantity uint           `gorm:"default:0" json:"quantity"`
}

func LoadArmy(ctx context.Context, db *gorm.DB, id uint) (*Army, error) {
	var army Army
	err := db.WithContext(ctx).Preload("Units").First(&army, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArmyNotFound
	}
	if err != nil {
		return nil, err
	}

	return &army, nil
}

func ArmiesForUser(ctx context.Context, db *gorm.DB, realmID, userID uint) ([]*Army, error) {
	var armies []*Army
	err := db.WithContext(ctx).
		Preload("Units").
		Where("realm_id = ? AND user_id = ?", realmID, userID).
		Order("id asc").
		Find(&armies).Error
	if err != nil {
		return nil, err
	}

	return armies, nil
}

func CreateArmy(ctx context.Context, db *gorm.DB, realmID uint, user *User, name string) (*Army, error) {
	ctx, sp := Tracer.Start(ctx, "create-army")
	defer sp.End()

	if name == "" {
		return nil, GameError("army-name-required")
	}

	if _, err := MembershipFor(ctx, db, realmID, user.ID); err != nil {
		return nil, err
	}

	army := &Army{RealmID: realmID, UserID: user.ID, Name: name}
	if err := db.WithContext(ctx).Create(army).Error; err != nil {
		return nil, err
	}

	return army, nil
}

// TotalUnits counts every unit across all of a user's armies in a
// realm.
func TotalUnits(ctx context.Context, db *gorm.DB, realmID, userID uint) (uint, error) {
	var total int64
	err := db.WithContext(ctx).Model(&ArmyUnit{}).
		Joins("JOIN armies ON armies.id = army_units.army_id AND armies.deleted_at IS NULL").
		Where("armies.realm_id = ? AND armies.user_id = ?", realmID, userID).
		Select("COALESCE(SUM(army_units.quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return uint(total), nil
}

// PopulationCap sums the per-city caps over the user's cities in the
// realm.
func PopulationCap(ctx context.Context, db *gorm.DB, realmID, userID uint) (uint, error) {
	var cities []*City
	err := db.WithContext(ctx).
		Where("realm_id = ? AND user_id = ?", realmID, userID).
		Find(&cities).Error
	if err != nil {
		return 0, err
	}

	var total uint
	for _, city := range cities {
		total += rules.CityPopulationCap(city.Tier)
	}

	return total, nil
}

// Recruit adds units to the army: population cap first, then all six
// scaled costs, then the deduction and the unit upsert, in one
// transaction.
func (army *Army) Recruit(ctx context.Context, db *gorm.DB, kindName string, quantity uint) error {
	ctx, sp := Tracer.Start(ctx, "recruit-units")
	defer sp.End()

	kind, err := rules.ParseUnitKind(kindName)
	if err != nil {
		return GameError(err.Error())
	}

	if quantity == 0 {
		return GameError("recruit-invalid-quantity")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The ledger lock serializes concurrent recruits for the same
		// member, so the cap check must come after it.
		resource, err := lockResources(ctx, tx, army.RealmID, army.UserID)
		if err != nil {
			return err
		}

		existing, err := TotalUnits(ctx, tx, army.RealmID, army.UserID)
		if err != nil {
			return err
		}

		cap, err := PopulationCap(ctx, tx, army.RealmID, army.UserID)
		if err != nil {
			return err
		}

		if existing+quantity > cap {
			return GameError("recruit-over-population-cap")
		}

		cost := rules.Yield{}
		for resourceKind, amount := range rules.UnitCost(kind) {
			cost[resourceKind] = amount * float64(quantity)
		}

		if err := resource.CanAfford(cost); err != nil {
			return err
		}

		resource.TakeCost(cost)
		if err := tx.Save(resource).Error; err != nil {
			return err
		}

		var unit ArmyUnit
		err = tx.Where(ArmyUnit{ArmyID: army.ID, Kind: kind}).FirstOrCreate(&unit).Error
		if err != nil {
			return err
		}

		unit.Quantity += quantity
		if err := tx.Save(&unit).Error; err != nil {
			return err
		}

		log.Info().Uint("army", army.ID).Uint("quantity", quantity).Msg("Recruited " + string(kind))
		return nil
	})
}
