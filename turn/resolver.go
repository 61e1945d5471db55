package turn

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/TheFirstHero6/noah-game-sub000/models"
	"github.com/TheFirstHero6/noah-game-sub000/rules"
	"github.com/TheFirstHero6/noah-game-sub000/utilities"
)

var tracer trace.Tracer = otel.Tracer("elector-turn")

// EventChannel is the redis pub/sub channel turn results are announced
// on; the live feed fans it out to websocket subscribers.
const EventChannel = "turn-events"

type TurnEvent struct {
	RealmID   uint `json:"realm_id"`
	Turn      uint `json:"turn"`
	Processed int  `json:"processed"`
}

func (event TurnEvent) MarshalBinary() ([]byte, error) {
	return json.Marshal(event)
}

// Resolver advances realm turns. The whole member batch runs in one
// database transaction, and a per-realm lock keeps two admins from
// advancing the same realm at once.
type Resolver struct {
	db      *gorm.DB
	redis   *redis.Client
	locks   locker
	lockTTL time.Duration
}

func NewResolver(db *gorm.DB, rdb *redis.Client, lockTTL time.Duration) *Resolver {
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}

	var locks locker = newMemoryLocker()
	if rdb != nil {
		locks = &redisLocker{client: rdb}
	}

	return &Resolver{db: db, redis: rdb, locks: locks, lockTTL: lockTTL}
}

// Advance authorizes the caller (owner or ADMIN) and resolves one turn.
// Returns the number of members processed.
func (resolver *Resolver) Advance(ctx context.Context, realmID uint, caller *models.User) (int, error) {
	ctx, sp := tracer.Start(ctx, "advance-turn")
	defer sp.End()

	realm, err := models.RequireRole(ctx, resolver.db, realmID, caller.ID, models.RoleAdmin)
	if err != nil {
		return 0, err
	}

	return resolver.AdvanceRealm(ctx, realm)
}

// AdvanceRealm resolves one turn without an authorization check; the
// cron sweep uses it directly.
func (resolver *Resolver) AdvanceRealm(ctx context.Context, realm *models.Realm) (int, error) {
	unlock, err := resolver.locks.acquire(ctx, lockKey(realm), resolver.lockTTL)
	if err != nil {
		return 0, err
	}
	defer unlock()

	var processed int
	err = resolver.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members, err := realm.Members(ctx, tx)
		if err != nil {
			return err
		}

		for _, member := range members {
			if err := resolver.resolveMember(ctx, tx, realm, member.UserID); err != nil {
				return err
			}
			processed++
		}

		realm.Turn++
		return tx.Save(realm).Error
	})
	if err != nil {
		return 0, err
	}

	resolver.publish(ctx, realm, processed)

	log.Info().
		Uint("realm", realm.ID).
		Uint("turn", realm.Turn).
		Int("processed", processed).
		Msg("Advanced turn")

	return processed, nil
}

// resolveMember applies one member's economy: building production,
// city taxation, unit upkeep.
func (resolver *Resolver) resolveMember(ctx context.Context, tx *gorm.DB, realm *models.Realm, userID uint) error {
	cities, err := models.CitiesForUser(ctx, tx, realm.ID, userID)
	if err != nil {
		return err
	}

	gains := rules.Yield{}
	for _, city := range cities {
		for _, building := range city.Buildings {
			for kind, amount := range building.Yield() {
				gains[kind] += amount
			}
		}

		income := rules.CityIncome(city.Tier)
		tax := utilities.RoundFloat(float64(city.TaxRate)/100*(city.Wealth+income), 2)
		city.Wealth = utilities.RoundFloat(city.Wealth+income-tax, 2)
		gains[rules.ResourceCurrency] += tax

		if err := tx.Save(city).Error; err != nil {
			return err
		}
	}

	units, err := models.TotalUnits(ctx, tx, realm.ID, userID)
	if err != nil {
		return err
	}
	gains[rules.ResourceFood] -= rules.UnitUpkeepFood * float64(units)

	resource, err := models.EnsureResources(ctx, tx, realm.ID, userID)
	if err != nil {
		return err
	}

	resource.Apply(gains)
	if err := tx.Save(resource).Error; err != nil {
		return err
	}

	event := &models.RealmEvent{
		RealmID: realm.ID,
		UserID:  userID,
		Turn:    realm.Turn + 1,
		Message: fmt.Sprintf("Turn resolved: %d cities, %d units", len(cities), units),
	}

	return tx.Create(event).Error
}

func lockKey(realm *models.Realm) string {
	return "realm:" + realm.GUID.String() + ":advance"
}

// publish refreshes the realm ranking ZSET and announces the turn on
// the event channel. Best effort; the turn is already committed.
func (resolver *Resolver) publish(ctx context.Context, realm *models.Realm, processed int) {
	if resolver.redis == nil {
		return
	}

	var resources []*models.Resource
	err := resolver.db.WithContext(ctx).
		Where("realm_id = ?", realm.ID).
		Find(&resources).Error
	if err != nil {
		log.Warn().Err(err).Msg("Error loading ledgers for rankings")
	} else {
		key := RankingsKey(realm.ID)
		for _, resource := range resources {
			resolver.redis.ZAdd(ctx, key, redis.Z{
				Score:  resource.Currency,
				Member: fmt.Sprint(resource.UserID),
			})
		}
	}

	err = resolver.redis.Publish(ctx, EventChannel, TurnEvent{
		RealmID:   realm.ID,
		Turn:      realm.Turn,
		Processed: processed,
	}).Err()
	if err != nil {
		log.Warn().Err(err).Msg("Error publishing turn event")
	}
}

func RankingsKey(realmID uint) string {
	return fmt.Sprintf("realm-%d-rankings", realmID)
}
