package models

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/TheFirstHero6/noah-game-sub000/rules"
)

// Realm is an isolated game instance. Everything a player owns hangs
// off a (realm, user) pair.
type Realm struct {
	BaseModel

	GUID        uuid.UUID `gorm:"uniqueIndex,size:36" json:"guid"`
	Name        string    `gorm:"size:64" json:"name"`
	JoinCode    string    `gorm:"uniqueIndex;size:12" json:"join_code"`
	OwnerID     uint      `json:"owner_id"`
	Turn        uint      `gorm:"default:0" json:"turn"`
	AutoAdvance bool      `gorm:"default:false" json:"auto_advance"`
}

func (realm *Realm) BeforeCreate(tx *gorm.DB) (err error) {
	realm.GUID = uuid.New()
	return
}

const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateJoinCode() string {
	code := make([]byte, 8)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(joinCodeAlphabet))))
		if err != nil {
			panic(err)
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}

	return string(code)
}

func LoadRealm(ctx context.Context, db *gorm.DB, id uint) (*Realm, error) {
	var realm Realm
	err := db.WithContext(ctx).First(&realm, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRealmNotFound
	}
	if err != nil {
		return nil, err
	}

	return &realm, nil
}

// CreateRealm creates a realm with the caller as OWNER, seeding their
// starting ledger.
func CreateRealm(ctx context.Context, db *gorm.DB, owner *User, name string) (*Realm, error) {
	ctx, sp := Tracer.Start(ctx, "create-realm")
	defer sp.End()

	if name == "" {
		return nil, GameError("realm-name-required")
	}

	realm := &Realm{Name: name, JoinCode: generateJoinCode(), OwnerID: owner.ID}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(realm).Error; err != nil {
			return err
		}

		if err := tx.Create(&Membership{RealmID: realm.ID, UserID: owner.ID, Role: RoleOwner}).Error; err != nil {
			return err
		}

		return grantStartingResources(ctx, tx, realm.ID, owner.ID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("realm", realm.ID).Msg("Created realm " + realm.Name)
	return realm, nil
}

func grantStartingResources(ctx context.Context, tx *gorm.DB, realmID, userID uint) error {
	resource, err := EnsureResources(ctx, tx, realmID, userID)
	if err != nil {
		return err
	}

	resource.Apply(rules.StartingResources())
	return tx.Save(resource).Error
}

// JoinRealmByCode adds the caller as a BASIC member.
func JoinRealmByCode(ctx context.Context, db *gorm.DB, user *User, code string) (*Realm, error) {
	ctx, sp := Tracer.Start(ctx, "join-realm")
	defer sp.End()

	var realm Realm
	err := db.WithContext(ctx).Where("join_code = ?", code).First(&realm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRealmNotFound
	}
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Membership
		err := tx.Where("realm_id = ? AND user_id = ?", realm.ID, user.ID).First(&existing).Error
		if err == nil {
			return GameError("already-a-member")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&Membership{RealmID: realm.ID, UserID: user.ID, Role: RoleBasic}).Error; err != nil {
			return err
		}

		return grantStartingResources(ctx, tx, realm.ID, user.ID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("realm", realm.ID).Uint("user", user.ID).Msg("User joined realm")
	return &realm, nil
}

// RealmsForUser lists every realm the user belongs to.
func RealmsForUser(ctx context.Context, db *gorm.DB, user *User) ([]*Realm, error) {
	var realms []*Realm
	err := db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.realm_id = realms.id AND memberships.deleted_at IS NULL").
		Where("memberships.user_id = ?", user.ID).
		Find(&realms).Error
	if err != nil {
		return nil, err
	}

	return realms, nil
}

// Members lists the realm's memberships with their users attached.
func (realm *Realm) Members(ctx context.Context, db *gorm.DB) ([]*Membership, error) {
	var members []*Membership
	err := db.WithContext(ctx).
		Preload("User").
		Where("realm_id = ?", realm.ID).
		Order("id asc").
		Find(&members).Error
	if err != nil {
		return nil, err
	}

	return members, nil
}

// SetMemberRole changes a member's role. Only the owner may do this,
// and the owner's own OWNER row is immutable.
func (realm *Realm) SetMemberRole(ctx context.Context, db *gorm.DB, caller *User, targetUserID uint, role Role) error {
	ctx, sp := Tracer.Start(ctx, "set-member-role")
	defer sp.End()

	if caller.ID != realm.OwnerID {
		return ErrForbidden
	}
	if targetUserID == realm.OwnerID {
		return GameError("cannot-change-owner-role")
	}
	if role == RoleOwner {
		return GameError("cannot-grant-owner")
	}

	membership, err := MembershipFor(ctx, db, realm.ID, targetUserID)
	if err != nil {
		return err
	}

	membership.Role = role
	return db.WithContext(ctx).Save(membership).Error
}

// RemoveMember deletes a membership and everything the member owns in
// the realm: ledger, cities (with buildings), armies (with units).
// Admins may remove BASIC members; the owner may remove anyone but
// themselves.
func (realm *Realm) RemoveMember(ctx context.Context, db *gorm.DB, caller *User, targetUserID uint) error {
	ctx, sp := Tracer.Start(ctx, "remove-member")
	defer sp.End()

	if targetUserID == realm.OwnerID {
		return GameError("cannot-remove-owner")
	}

	target, err := MembershipFor(ctx, db, realm.ID, targetUserID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return GameError("not-a-member")
		}
		return err
	}

	if caller.ID != realm.OwnerID {
		callerMembership, err := MembershipFor(ctx, db, realm.ID, caller.ID)
		if err != nil {
			return err
		}
		if !callerMembership.Role.AtLeast(RoleAdmin) {
			return ErrForbidden
		}
		if target.Role.AtLeast(RoleAdmin) && caller.ID != targetUserID {
			return ErrForbidden
		}
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cityIDs []uint
		if err := tx.Model(&City{}).
			Where("realm_id = ? AND user_id = ?", realm.ID, targetUserID).
			Pluck("id", &cityIDs).Error; err != nil {
			return err
		}

		if len(cityIDs) > 0 {
			if err := tx.Unscoped().Where("city_id IN ?", cityIDs).Delete(&Building{}).Error; err != nil {
				return err
			}
		}

		var armyIDs []uint
		if err := tx.Model(&Army{}).
			Where("realm_id = ? AND user_id = ?", realm.ID, targetUserID).
			Pluck("id", &armyIDs).Error; err != nil {
			return err
		}

		if len(armyIDs) > 0 {
			if err := tx.Unscoped().Where("army_id IN ?", armyIDs).Delete(&ArmyUnit{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("realm_id = ? AND user_id = ?", realm.ID, targetUserID).Delete(&City{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("realm_id = ? AND user_id = ?", realm.ID, targetUserID).Delete(&Army{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("realm_id = ? AND user_id = ?", realm.ID, targetUserID).Delete(&Resource{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(target).Error
	})
}
