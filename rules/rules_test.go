package rules

import "testing"

func TestBuildingYieldFallsBackToTierOne(t *testing.T) {
	if got := BuildingYield(BuildingSawmill, 2)[ResourceWood]; got != 2 {
		t.Fatalf("tier-2 sawmill wood: got %f", got)
	}

	// Out-of-range tiers fall back to the tier-1 row
	if got := BuildingYield(BuildingSawmill, 9)[ResourceWood]; got != 1 {
		t.Fatalf("fallback sawmill wood: got %f", got)
	}

	if got := BuildingYield("castle", 1); len(got) != 0 {
		t.Fatalf("unknown building should yield nothing, got %v", got)
	}
}

func TestEveryBuildingHasThreeTiers(t *testing.T) {
	for _, kind := range BuildingKinds {
		for tier := MinBuildingTier; tier <= MaxBuildingTier; tier++ {
			if len(BuildingYield(kind, tier)) == 0 {
				t.Fatalf("%s tier %d has no yield", kind, tier)
			}
			if len(BuildingCost(kind, tier)) == 0 {
				t.Fatalf("%s tier %d has no cost", kind, tier)
			}
		}
	}
}

func TestBuildingCostScalesWithTier(t *testing.T) {
	base := BuildingCost(BuildingFarm, 1)
	tier3 := BuildingCost(BuildingFarm, 3)

	if tier3[ResourceCurrency] != base[ResourceCurrency]*3 {
		t.Fatalf("expected tier-3 cost to triple, got %f", tier3[ResourceCurrency])
	}
}

func TestCityTables(t *testing.T) {
	if CityIncome(2) != 15 {
		t.Fatalf("tier-2 income must be 15, got %f", CityIncome(2))
	}
	if CityIncome(9) != CityIncome(MinCityTier) {
		t.Fatalf("out-of-range income should fall back to tier 1")
	}

	last := uint(0)
	for tier := MinCityTier; tier <= MaxCityTier; tier++ {
		cap := CityPopulationCap(tier)
		if cap <= last {
			t.Fatalf("population cap not increasing at tier %d", tier)
		}
		last = cap
	}
}

func TestParseKinds(t *testing.T) {
	if _, err := ParseResourceKind("wood"); err != nil {
		t.Fatalf("parse wood: %v", err)
	}
	if _, err := ParseResourceKind("gold"); err == nil {
		t.Fatalf("expected unknown resource to fail")
	}

	if _, err := ParseBuildingKind("mine"); err != nil {
		t.Fatalf("parse mine: %v", err)
	}
	if _, err := ParseUnitKind("cannon"); err != nil {
		t.Fatalf("parse cannon: %v", err)
	}
	if _, err := ParseUnitKind("dragoon"); err == nil {
		t.Fatalf("expected unknown unit to fail")
	}
}

func TestEveryUnitCostsCurrency(t *testing.T) {
	for _, kind := range UnitKinds {
		if UnitCost(kind)[ResourceCurrency] <= 0 {
			t.Fatalf("%s has no currency cost", kind)
		}
	}
}
