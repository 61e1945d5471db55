package models

import (
	"context"
	"errors"
	"testing"

	"github.com/TheFirstHero6/noah-game-sub000/rules"
)

func TestRecruitDeductsScaledCost(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)
	if _, err := FoundCity(ctx, db, realm.ID, owner, "Berlin"); err != nil {
		t.Fatalf("found city: %v", err)
	}

	army, err := CreateArmy(ctx, db, realm.ID, owner, "First Army")
	if err != nil {
		t.Fatalf("create army: %v", err)
	}

	before, _ := EnsureResources(ctx, db, realm.ID, owner.ID)

	if err := army.Recruit(ctx, db, string(rules.UnitMilitia), 4); err != nil {
		t.Fatalf("recruit: %v", err)
	}

	after, _ := EnsureResources(ctx, db, realm.ID, owner.ID)
	unitCost := rules.UnitCost(rules.UnitMilitia)
	if after.Currency != before.Currency-4*unitCost[rules.ResourceCurrency] {
		t.Fatalf("currency not deducted: %f -> %f", before.Currency, after.Currency)
	}
	if after.Food != before.Food-4*unitCost[rules.ResourceFood] {
		t.Fatalf("food not deducted: %f -> %f", before.Food, after.Food)
	}

	loaded, _ := LoadArmy(ctx, db, army.ID)
	if len(loaded.Units) != 1 || loaded.Units[0].Quantity != 4 {
		t.Fatalf("unexpected units: %+v", loaded.Units)
	}

	// Recruiting the same kind again tops up the existing row
	if err := army.Recruit(ctx, db, string(rules.UnitMilitia), 2); err != nil {
		t.Fatalf("second recruit: %v", err)
	}
	loaded, _ = LoadArmy(ctx, db, army.ID)
	if len(loaded.Units) != 1 || loaded.Units[0].Quantity != 6 {
		t.Fatalf("expected topped-up quantity 6, got %+v", loaded.Units)
	}
}

func TestRecruitEnforcesPopulationCap(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)

	army, err := CreateArmy(ctx, db, realm.ID, owner, "First Army")
	if err != nil {
		t.Fatalf("create army: %v", err)
	}

	// No cities yet, so the cap is zero
	err = army.Recruit(ctx, db, string(rules.UnitMilitia), 1)
	if err == nil {
		t.Fatalf("expected recruit without cities to fail")
	}
	var gameErr GameError
	if !errors.As(err, &gameErr) || gameErr != GameError("recruit-over-population-cap") {
		t.Fatalf("expected population cap error, got %v", err)
	}

	if _, err := FoundCity(ctx, db, realm.ID, owner, "Berlin"); err != nil {
		t.Fatalf("found city: %v", err)
	}

	cap, err := PopulationCap(ctx, db, realm.ID, owner.ID)
	if err != nil {
		t.Fatalf("population cap: %v", err)
	}
	if cap != rules.CityPopulationCap(1) {
		t.Fatalf("expected tier-1 cap, got %d", cap)
	}

	if err := army.Recruit(ctx, db, string(rules.UnitMilitia), cap+1); err == nil {
		t.Fatalf("expected over-cap recruit to fail")
	}
}

func TestRecruitInsufficientResources(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)
	if _, err := FoundCity(ctx, db, realm.ID, owner, "Berlin"); err != nil {
		t.Fatalf("found city: %v", err)
	}

	army, _ := CreateArmy(ctx, db, realm.ID, owner, "First Army")

	resource, _ := EnsureResources(ctx, db, realm.ID, owner.ID)
	resource.Currency = 0
	if err := db.Save(resource).Error; err != nil {
		t.Fatalf("drain ledger: %v", err)
	}

	err := army.Recruit(ctx, db, string(rules.UnitCavalry), 1)
	if err == nil {
		t.Fatalf("expected recruit to fail")
	}

	loaded, _ := LoadArmy(ctx, db, army.ID)
	if len(loaded.Units) != 0 {
		t.Fatalf("units inserted on failed recruit")
	}
}

func TestRecruitValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)
	if _, err := FoundCity(ctx, db, realm.ID, owner, "Berlin"); err != nil {
		t.Fatalf("found city: %v", err)
	}
	army, _ := CreateArmy(ctx, db, realm.ID, owner, "First Army")

	if err := army.Recruit(ctx, db, "dragoon", 1); err == nil {
		t.Fatalf("expected unknown unit kind to fail")
	}
	if err := army.Recruit(ctx, db, string(rules.UnitMilitia), 0); err == nil {
		t.Fatalf("expected zero quantity to fail")
	}
}

func TestTotalUnitsSpansArmies(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)
	if _, err := FoundCity(ctx, db, realm.ID, owner, "Berlin"); err != nil {
		t.Fatalf("found city: %v", err)
	}

	first, _ := CreateArmy(ctx, db, realm.ID, owner, "First Army")
	second, _ := CreateArmy(ctx, db, realm.ID, owner, "Second Army")

	if err := first.Recruit(ctx, db, string(rules.UnitMilitia), 3); err != nil {
		t.Fatalf("recruit: %v", err)
	}
	if err := second.Recruit(ctx, db, string(rules.UnitPikeman), 2); err != nil {
		t.Fatalf("recruit: %v", err)
	}

	total, err := TotalUnits(ctx, db, realm.ID, owner.ID)
	if err != nil {
		t.Fatalf("total units: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected 5 units, got %d", total)
	}
}
