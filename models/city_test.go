package models

import (
	"context"
	"errors"
	"testing"

	"github.com/TheFirstHero6/noah-game-sub000/rules"
)

func TestFoundCityDeductsCost(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)

	before, _ := EnsureResources(ctx, db, realm.ID, owner.ID)

	city, err := FoundCity(ctx, db, realm.ID, owner, "Berlin")
	if err != nil {
		t.Fatalf("found city: %v", err)
	}
	if city.Tier != rules.MinCityTier {
		t.Fatalf("expected tier 1 city, got %d", city.Tier)
	}

	after, _ := EnsureResources(ctx, db, realm.ID, owner.ID)
	cost := rules.CityFoundingCost()
	if after.Currency != before.Currency-cost[rules.ResourceCurrency] {
		t.Fatalf("currency not deducted: %f -> %f", before.Currency, after.Currency)
	}
	if after.Wood != before.Wood-cost[rules.ResourceWood] {
		t.Fatalf("wood not deducted: %f -> %f", before.Wood, after.Wood)
	}
}

func TestFoundCityRequiresMembership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	outsider := newTestUser(t, db, "outsider")
	realm := newTestRealm(t, db, owner)

	if _, err := FoundCity(ctx, db, realm.ID, outsider, "Nope"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestConstructDeductsCostAndInsertsBuilding(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)
	city, err := FoundCity(ctx, db, realm.ID, owner, "Berlin")
	if err != nil {
		t.Fatalf("found city: %v", err)
	}

	// Founding drains the stone the sawmill needs; top the ledger up
	fund(t, db, realm.ID, owner.ID, rules.Yield{rules.ResourceStone: 100})

	before, _ := EnsureResources(ctx, db, realm.ID, owner.ID)

	building, err := city.Construct(ctx, db, string(rules.BuildingSawmill), 1)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	if building.Kind != rules.BuildingSawmill || building.Tier != 1 {
		t.Fatalf("unexpected building: %+v", building)
	}

	after, _ := EnsureResources(ctx, db, realm.ID, owner.ID)
	cost := rules.BuildingCost(rules.BuildingSawmill, 1)
	if after.Currency != before.Currency-cost[rules.ResourceCurrency] {
		t.Fatalf("currency not deducted")
	}

	loaded, err := LoadCity(ctx, db, city.ID)
	if err != nil {
		t.Fatalf("load city: %v", err)
	}
	if len(loaded.Buildings) != 1 {
		t.Fatalf("expected 1 building, got %d", len(loaded.Buildings))
	}
}

func TestConstructValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)
	city, _ := FoundCity(ctx, db, realm.ID, owner, "Berlin")

	if _, err := city.Construct(ctx, db, "castle", 1); err == nil {
		t.Fatalf("expected unknown building kind to fail")
	}
	if _, err := city.Construct(ctx, db, string(rules.BuildingFarm), 4); err == nil {
		t.Fatalf("expected out-of-range tier to fail")
	}
}

func TestConstructInsufficientResourcesLeavesLedgerUntouched(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)
	city, _ := FoundCity(ctx, db, realm.ID, owner, "Berlin")

	resource, _ := EnsureResources(ctx, db, realm.ID, owner.ID)
	resource.Currency = 1
	if err := db.Save(resource).Error; err != nil {
		t.Fatalf("drain ledger: %v", err)
	}

	_, err := city.Construct(ctx, db, string(rules.BuildingMarket), 1)
	if err == nil {
		t.Fatalf("expected construct to fail")
	}

	var gameErr GameError
	if !errors.As(err, &gameErr) {
		t.Fatalf("expected a validation error, got %v", err)
	}

	after, _ := EnsureResources(ctx, db, realm.ID, owner.ID)
	if after.Currency != 1 {
		t.Fatalf("ledger mutated on failed construct: %f", after.Currency)
	}

	var count int64
	db.Model(&Building{}).Where("city_id = ?", city.ID).Count(&count)
	if count != 0 {
		t.Fatalf("building inserted on failed construct")
	}
}

func TestUpgradeSequentialOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)
	city, _ := FoundCity(ctx, db, realm.ID, owner, "Berlin")

	if err := city.Upgrade(ctx, db, 3); err == nil {
		t.Fatalf("expected skipping a tier to fail")
	}
	if err := city.Upgrade(ctx, db, 1); err == nil {
		t.Fatalf("expected same-tier upgrade to fail")
	}

	fund(t, db, realm.ID, owner.ID, rules.Yield{
		rules.ResourceCurrency: 500,
		rules.ResourceWood:     200,
		rules.ResourceStone:    200,
	})

	before, _ := EnsureResources(ctx, db, realm.ID, owner.ID)
	if err := city.Upgrade(ctx, db, 2); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if city.Tier != 2 {
		t.Fatalf("expected tier 2, got %d", city.Tier)
	}

	after, _ := EnsureResources(ctx, db, realm.ID, owner.ID)
	cost := rules.CityUpgradeCost(2)
	if after.Currency != before.Currency-cost[rules.ResourceCurrency] {
		t.Fatalf("upgrade cost not deducted")
	}
}

func TestSetTaxRateBounds(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	realm := newTestRealm(t, db, owner)
	city, _ := FoundCity(ctx, db, realm.ID, owner, "Berlin")

	if err := city.SetTaxRate(ctx, db, 101); err == nil {
		t.Fatalf("expected tax rate over 100 to fail")
	}
	if err := city.SetTaxRate(ctx, db, 0); err != nil {
		t.Fatalf("zero tax rate: %v", err)
	}
	if err := city.SetTaxRate(ctx, db, 35); err != nil {
		t.Fatalf("set tax rate: %v", err)
	}

	loaded, _ := LoadCity(ctx, db, city.ID)
	if loaded.TaxRate != 35 {
		t.Fatalf("expected tax rate 35, got %d", loaded.TaxRate)
	}
}
