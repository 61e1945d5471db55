package models

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TheFirstHero6/noah-game-sub000/rules"
	"github.com/TheFirstHero6/noah-game-sub000/utilities"
)

// Resource is the per-(realm, user) ledger row. Counters never go
// negative through a validated mutation.
type Resource struct {
	BaseModel

	GUID    uuid.UUID `gorm:"size:36" json:"guid"`
	RealmID uint      `gorm:"uniqueIndex:idx_realm_user_resource" json:"realm_id"`
	UserID  uint      `gorm:"uniqueIndex:idx_realm_user_resource" json:"user_id"`

	Currency  float64 `gorm:"default:0" json:"currency"`
	Food      float64 `gorm:"default:0" json:"food"`
	Wood      float64 `gorm:"default:0" json:"wood"`
	Stone     float64 `gorm:"default:0" json:"stone"`
	Metal     float64 `gorm:"default:0" json:"metal"`
	Livestock float64 `gorm:"default:0" json:"livestock"`
}

func (resource *Resource) BeforeCreate(tx *gorm.DB) (err error) {
	resource.GUID = uuid.New()
	return
}

func (resource *Resource) Amount(kind rules.ResourceKind) float64 {
	switch kind {
	case rules.ResourceCurrency:
		return resource.Currency
	case rules.ResourceFood:
		return resource.Food
	case rules.ResourceWood:
		return resource.Wood
	case rules.ResourceStone:
		return resource.Stone
	case rules.ResourceMetal:
		return resource.Metal
	case rules.ResourceLivestock:
		return resource.Livestock
	}

	return 0
}

func (resource *Resource) Add(kind rules.ResourceKind, amount float64) {
	switch kind {
	case rules.ResourceCurrency:
		resource.Currency = utilities.RoundFloat(resource.Currency+amount, 2)
	case rules.ResourceFood:
		resource.Food = utilities.RoundFloat(resource.Food+amount, 2)
	case rules.ResourceWood:
		resource.Wood = utilities.RoundFloat(resource.Wood+amount, 2)
	case rules.ResourceStone:
		resource.Stone = utilities.RoundFloat(resource.Stone+amount, 2)
	case rules.ResourceMetal:
		resource.Metal = utilities.RoundFloat(resource.Metal+amount, 2)
	case rules.ResourceLivestock:
		resource.Livestock = utilities.RoundFloat(resource.Livestock+amount, 2)
	}
}

// Apply merges a yield into the ledger.
func (resource *Resource) Apply(yield rules.Yield) {
	for kind, amount := range yield {
		resource.Add(kind, amount)
	}
}

// CanAfford reports the first resource the ledger is short on.
func (resource *Resource) CanAfford(cost rules.Yield) error {
	for _, kind := range rules.ResourceKinds {
		if amount, ok := cost[kind]; ok && resource.Amount(kind) < amount {
			return GameError("not-enough-" + string(kind))
		}
	}

	return nil
}

func (resource *Resource) TakeCost(cost rules.Yield) {
	for kind, amount := range cost {
		if amount > 0 {
			resource.Add(kind, -amount)
		}
	}
}

// EnsureResources fetches the ledger row, creating it zero-valued when
// absent.
func EnsureResources(ctx context.Context, db *gorm.DB, realmID, userID uint) (*Resource, error) {
	var resource Resource
	err := db.WithContext(ctx).
		Where(Resource{RealmID: realmID, UserID: userID}).
		FirstOrCreate(&resource).Error
	if err != nil {
		return nil, err
	}

	return &resource, nil
}

// lockResources loads the ledger row FOR UPDATE inside a transaction.
func lockResources(ctx context.Context, tx *gorm.DB, realmID, userID uint) (*Resource, error) {
	var resource Resource
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(Resource{RealmID: realmID, UserID: userID}).
		FirstOrCreate(&resource).Error
	if err != nil {
		return nil, err
	}

	return &resource, nil
}

// TransferResource moves an amount of one resource between two members
// of a realm. The whole sequence is one transaction: sender balance and
// receiver membership are re-validated after the rows are locked, and
// nothing is written on failure.
func TransferResource(ctx context.Context, db *gorm.DB, realmID, fromUserID, toUserID uint, kind rules.ResourceKind, amount float64) error {
	ctx, sp := Tracer.Start(ctx, "transfer-resource")
	defer sp.End()

	if amount <= 0 {
		return GameError("transfer-invalid-amount")
	}
	if fromUserID == toUserID {
		return GameError("transfer-to-self")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := MembershipFor(ctx, tx, realmID, toUserID); err != nil {
			return GameError("transfer-receiver-not-member")
		}

		sender, err := lockResources(ctx, tx, realmID, fromUserID)
		if err != nil {
			return err
		}

		if sender.Amount(kind) < amount {
			return GameError("transfer-insufficient-" + string(kind))
		}

		receiver, err := lockResources(ctx, tx, realmID, toUserID)
		if err != nil {
			return err
		}

		sender.Add(kind, -amount)
		receiver.Add(kind, amount)

		if err := tx.Save(sender).Error; err != nil {
			return err
		}
		if err := tx.Save(receiver).Error; err != nil {
			return err
		}

		log.Info().
			Uint("realm", realmID).
			Uint("from", fromUserID).
			Uint("to", toUserID).
			Msg("Transferred " + string(kind))

		return nil
	})
}
