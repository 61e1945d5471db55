package models

import (
	"context"
	"errors"
	"testing"

	"github.com/TheFirstHero6/noah-game-sub000/rules"
)

func TestCreateRealmSeedsOwnerMembershipAndLedger(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)

	if realm.JoinCode == "" {
		t.Fatalf("expected a join code")
	}

	membership, err := MembershipFor(ctx, db, realm.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner membership: %v", err)
	}
	if membership.Role != RoleOwner {
		t.Fatalf("expected OWNER role, got %s", membership.Role)
	}

	resource, err := EnsureResources(ctx, db, realm.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner ledger: %v", err)
	}
	if resource.Currency != rules.StartingResources()[rules.ResourceCurrency] {
		t.Fatalf("expected starting currency, got %f", resource.Currency)
	}
}

func TestJoinRealmByCode(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	joiner := newTestUser(t, db, "joiner")
	realm := newTestRealm(t, db, owner)

	joined, err := JoinRealmByCode(ctx, db, joiner, realm.JoinCode)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.ID != realm.ID {
		t.Fatalf("joined wrong realm")
	}

	membership, err := MembershipFor(ctx, db, realm.ID, joiner.ID)
	if err != nil {
		t.Fatalf("joiner membership: %v", err)
	}
	if membership.Role != RoleBasic {
		t.Fatalf("expected BASIC role, got %s", membership.Role)
	}

	if _, err := JoinRealmByCode(ctx, db, joiner, realm.JoinCode); err == nil {
		t.Fatalf("expected rejoining to fail")
	}

	if _, err := JoinRealmByCode(ctx, db, joiner, "NOPE1234"); !errors.Is(err, ErrRealmNotFound) {
		t.Fatalf("expected realm-not-found, got %v", err)
	}
}

func TestSetMemberRole(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	member := newTestUser(t, db, "member")
	realm := newTestRealm(t, db, owner)

	if _, err := JoinRealmByCode(ctx, db, member, realm.JoinCode); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := realm.SetMemberRole(ctx, db, owner, member.ID, RoleAdmin); err != nil {
		t.Fatalf("promote: %v", err)
	}

	membership, _ := MembershipFor(ctx, db, realm.ID, member.ID)
	if membership.Role != RoleAdmin {
		t.Fatalf("expected ADMIN, got %s", membership.Role)
	}

	// Non-owners cannot change roles, not even admins
	if err := realm.SetMemberRole(ctx, db, member, owner.ID, RoleBasic); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if err := realm.SetMemberRole(ctx, db, owner, member.ID, RoleOwner); err == nil {
		t.Fatalf("expected granting OWNER to fail")
	}
}

func TestRemoveMemberCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	member := newTestUser(t, db, "member")
	realm := newTestRealm(t, db, owner)

	if _, err := JoinRealmByCode(ctx, db, member, realm.JoinCode); err != nil {
		t.Fatalf("join: %v", err)
	}

	city, err := FoundCity(ctx, db, realm.ID, member, "Potsdam")
	if err != nil {
		t.Fatalf("found city: %v", err)
	}
	if _, err := city.Construct(ctx, db, string(rules.BuildingFarm), 1); err != nil {
		t.Fatalf("construct: %v", err)
	}
	army, err := CreateArmy(ctx, db, realm.ID, member, "First Army")
	if err != nil {
		t.Fatalf("create army: %v", err)
	}
	if err := army.Recruit(ctx, db, string(rules.UnitMilitia), 3); err != nil {
		t.Fatalf("recruit: %v", err)
	}

	if err := realm.RemoveMember(ctx, db, owner, member.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}

	if _, err := MembershipFor(ctx, db, realm.ID, member.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected membership gone, got %v", err)
	}

	var count int64
	db.Model(&City{}).Where("realm_id = ? AND user_id = ?", realm.ID, member.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected cities removed, found %d", count)
	}

	db.Model(&Building{}).Where("city_id = ?", city.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected buildings removed, found %d", count)
	}

	db.Model(&ArmyUnit{}).Where("army_id = ?", army.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected units removed, found %d", count)
	}

	// Rejoining after removal starts fresh
	if _, err := JoinRealmByCode(ctx, db, member, realm.JoinCode); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
}

func TestRemoveOwnerRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)

	if err := realm.RemoveMember(ctx, db, owner, owner.ID); err == nil {
		t.Fatalf("expected removing the owner to fail")
	}
}
