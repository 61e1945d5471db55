package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleBasic Role = "BASIC"
)

func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleOwner, RoleAdmin, RoleBasic:
		return Role(name), nil
	}

	return "", GameError("unknown-role")
}

// rank orders roles for minimum-role checks.
func (role Role) rank() int {
	switch role {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleBasic:
		return 1
	}

	return 0
}

func (role Role) AtLeast(min Role) bool {
	return role.rank() >= min.rank()
}

type Membership struct {
	BaseModel

	RealmID uint `gorm:"uniqueIndex:idx_realm_member" json:"realm_id"`
	UserID  uint `gorm:"uniqueIndex:idx_realm_member" json:"user_id"`
	Role    Role `gorm:"size:16" json:"role"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// MembershipFor returns the caller's membership in a realm, or
// ErrForbidden when they are not a member.
func MembershipFor(ctx context.Context, db *gorm.DB, realmID, userID uint) (*Membership, error) {
	var membership Membership
	err := db.WithContext(ctx).
		Where("realm_id = ? AND user_id = ?", realmID, userID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	return &membership, nil
}

// RequireRole loads a realm and authorizes the caller against a minimum
// role. The realm owner always passes.
func RequireRole(ctx context.Context, db *gorm.DB, realmID, userID uint, min Role) (*Realm, error) {
	ctx, sp := Tracer.Start(ctx, "require-role")
	defer sp.End()

	realm, err := LoadRealm(ctx, db, realmID)
	if err != nil {
		return nil, err
	}

	if realm.OwnerID == userID {
		return realm, nil
	}

	membership, err := MembershipFor(ctx, db, realmID, userID)
	if err != nil {
		return nil, err
	}

	if !membership.Role.AtLeast(min) {
		return nil, ErrForbidden
	}

	return realm, nil
}
