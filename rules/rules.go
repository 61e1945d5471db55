package rules

import "errors"

// ResourceKind names one of the six ledger counters.
type ResourceKind string

const (
	ResourceCurrency  ResourceKind = "currency"
	ResourceFood      ResourceKind = "food"
	ResourceWood      ResourceKind = "wood"
	ResourceStone     ResourceKind = "stone"
	ResourceMetal     ResourceKind = "metal"
	ResourceLivestock ResourceKind = "livestock"
)

var ResourceKinds = []ResourceKind{
	ResourceCurrency,
	ResourceFood,
	ResourceWood,
	ResourceStone,
	ResourceMetal,
	ResourceLivestock,
}

func ParseResourceKind(name string) (ResourceKind, error) {
	for _, kind := range ResourceKinds {
		if string(kind) == name {
			return kind, nil
		}
	}

	return "", errors.New("unknown-resource")
}

// Yield is a per-turn resource delta.
type Yield map[ResourceKind]float64

type BuildingKind string

const (
	BuildingFarm    BuildingKind = "farm"
	BuildingSawmill BuildingKind = "sawmill"
	BuildingQuarry  BuildingKind = "quarry"
	BuildingMine    BuildingKind = "mine"
	BuildingPasture BuildingKind = "pasture"
	BuildingMarket  BuildingKind = "market"
)

var BuildingKinds = []BuildingKind{
	BuildingFarm,
	BuildingSawmill,
	BuildingQuarry,
	BuildingMine,
	BuildingPasture,
	BuildingMarket,
}

func ParseBuildingKind(name string) (BuildingKind, error) {
	for _, kind := range BuildingKinds {
		if string(kind) == name {
			return kind, nil
		}
	}

	return "", errors.New("unknown-building")
}

const (
	MinBuildingTier = 1
	MaxBuildingTier = 3

	MinCityTier = 1
	MaxCityTier = 5
)

// buildingYields holds the fixed per-turn production of each building
// by tier. Tiers missing from a row fall back to tier 1.
var buildingYields = map[BuildingKind]map[int]Yield{
	BuildingFarm: {
		1: {ResourceFood: 2},
		2: {ResourceFood: 4},
		3: {ResourceFood: 7},
	},
	BuildingSawmill: {
		1: {ResourceWood: 1},
		2: {ResourceWood: 2},
		3: {ResourceWood: 4},
	},
	BuildingQuarry: {
		1: {ResourceStone: 1},
		2: {ResourceStone: 2},
		3: {ResourceStone: 4},
	},
	BuildingMine: {
		1: {ResourceMetal: 1},
		2: {ResourceMetal: 2},
		3: {ResourceMetal: 3},
	},
	BuildingPasture: {
		1: {ResourceLivestock: 1},
		2: {ResourceLivestock: 2},
		3: {ResourceLivestock: 3},
	},
	BuildingMarket: {
		1: {ResourceCurrency: 2},
		2: {ResourceCurrency: 4},
		3: {ResourceCurrency: 7},
	},
}

func BuildingYield(kind BuildingKind, tier int) Yield {
	tiers, ok := buildingYields[kind]
	if !ok {
		return Yield{}
	}

	if yield, ok := tiers[tier]; ok {
		return yield
	}

	return tiers[MinBuildingTier]
}

// buildingBaseCosts is the tier-1 construction cost; higher tiers cost
// a multiple of the base.
var buildingBaseCosts = map[BuildingKind]Yield{
	BuildingFarm:    {ResourceCurrency: 40, ResourceWood: 20},
	BuildingSawmill: {ResourceCurrency: 50, ResourceWood: 10, ResourceStone: 10},
	BuildingQuarry:  {ResourceCurrency: 50, ResourceWood: 20},
	BuildingMine:    {ResourceCurrency: 80, ResourceWood: 30, ResourceStone: 20},
	BuildingPasture: {ResourceCurrency: 60, ResourceFood: 20, ResourceWood: 15},
	BuildingMarket:  {ResourceCurrency: 100, ResourceWood: 25, ResourceStone: 25},
}

func BuildingCost(kind BuildingKind, tier int) Yield {
	base, ok := buildingBaseCosts[kind]
	if !ok {
		return Yield{}
	}

	if tier < MinBuildingTier || tier > MaxBuildingTier {
		tier = MinBuildingTier
	}

	cost := Yield{}
	for resource, amount := range base {
		cost[resource] = amount * float64(tier)
	}

	return cost
}

// cityIncome is the local wealth gained by a city each turn. The tier-2
// value is load-bearing for the taxation math and must stay at 15.
var cityIncome = map[int]float64{
	1: 10,
	2: 15,
	3: 25,
	4: 40,
	5: 60,
}

func CityIncome(tier int) float64 {
	if income, ok := cityIncome[tier]; ok {
		return income
	}

	return cityIncome[MinCityTier]
}

// cityPopulationCap is each city's contribution to its owner's total
// army-unit cap.
var cityPopulationCap = map[int]uint{
	1: 25,
	2: 50,
	3: 100,
	4: 175,
	5: 275,
}

func CityPopulationCap(tier int) uint {
	if cap, ok := cityPopulationCap[tier]; ok {
		return cap
	}

	return cityPopulationCap[MinCityTier]
}

// CityUpgradeCost is the price of upgrading a city to targetTier.
// Upgrades are sequential, so the cost is keyed off the target alone.
func CityUpgradeCost(targetTier int) Yield {
	scale := float64(targetTier)

	return Yield{
		ResourceCurrency: 150 * scale,
		ResourceWood:     60 * scale,
		ResourceStone:    60 * scale,
	}
}

// CityFoundingCost is the price of founding a new tier-1 city.
func CityFoundingCost() Yield {
	return Yield{
		ResourceCurrency: 250,
		ResourceWood:     100,
		ResourceStone:    100,
	}
}

type UnitKind string

const (
	UnitMilitia   UnitKind = "militia"
	UnitPikeman   UnitKind = "pikeman"
	UnitMusketeer UnitKind = "musketeer"
	UnitCavalry   UnitKind = "cavalry"
	UnitCannon    UnitKind = "cannon"
)

var UnitKinds = []UnitKind{
	UnitMilitia,
	UnitPikeman,
	UnitMusketeer,
	UnitCavalry,
	UnitCannon,
}

func ParseUnitKind(name string) (UnitKind, error) {
	for _, kind := range UnitKinds {
		if string(kind) == name {
			return kind, nil
		}
	}

	return "", errors.New("unknown-unit")
}

var unitCosts = map[UnitKind]Yield{
	UnitMilitia:   {ResourceCurrency: 10, ResourceFood: 5},
	UnitPikeman:   {ResourceCurrency: 20, ResourceFood: 10, ResourceWood: 5},
	UnitMusketeer: {ResourceCurrency: 40, ResourceFood: 10, ResourceMetal: 10},
	UnitCavalry:   {ResourceCurrency: 60, ResourceFood: 20, ResourceLivestock: 5},
	UnitCannon:    {ResourceCurrency: 120, ResourceWood: 30, ResourceMetal: 40},
}

func UnitCost(kind UnitKind) Yield {
	cost, ok := unitCosts[kind]
	if !ok {
		return Yield{}
	}

	return cost
}

// UnitUpkeepFood is the flat per-unit food upkeep charged every turn.
const UnitUpkeepFood = 2.0

// StartingResources is the ledger granted when a user joins a realm.
func StartingResources() Yield {
	return Yield{
		ResourceCurrency:  500,
		ResourceFood:      200,
		ResourceWood:      150,
		ResourceStone:     100,
		ResourceMetal:     50,
		ResourceLivestock: 25,
	}
}
