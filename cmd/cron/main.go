package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/TheFirstHero6/noah-game-sub000/config"
	"github.com/TheFirstHero6/noah-game-sub000/models"
	electorRedis "github.com/TheFirstHero6/noah-game-sub000/redis"
	"github.com/TheFirstHero6/noah-game-sub000/turn"
)

var resolver *turn.Resolver

// advanceRealms resolves a turn for every realm flagged auto_advance.
// A realm failing does not stop the sweep.
func advanceRealms() {
	ctx := context.Background()

	db, err := models.Database(false)
	if err != nil {
		log.Error().Err(err).Msg("Error getting database")
		return
	}

	var realms []*models.Realm
	if err := db.WithContext(ctx).Where("auto_advance = ?", true).Find(&realms).Error; err != nil {
		log.Error().Err(err).Msg("Error loading auto-advance realms")
		return
	}

	log.Info().Int("realms", len(realms)).Msg("Auto-advance sweep")

	for _, realm := range realms {
		processed, err := resolver.AdvanceRealm(ctx, realm)
		if err != nil {
			log.Warn().Err(err).Uint("realm", realm.ID).Msg("Error advancing realm")
			continue
		}

		log.Info().Uint("realm", realm.ID).Int("processed", processed).Msg("Advanced realm")
	}
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(".env"); err != nil {
		log.Info().Msg("No .env file found, using system environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Panic().Err(err).Msg("Error loading config")
	}

	redisClient, err := electorRedis.Instance(nil)
	if err != nil {
		log.Warn().Err(err).Msg("Continuing without redis")
		redisClient = nil
	}

	db, err := models.Database(false)
	if err != nil {
		log.Panic().Err(err).Msg("Error connecting to database")
	}
	if err := models.RunMigrations(db); err != nil {
		log.Panic().Err(err).Msg("Error running migrations")
	}

	resolver = turn.NewResolver(db, redisClient, time.Duration(cfg.Game.AdvanceLockSeconds)*time.Second)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		panic("Error creating crons")
	}
	defer func() { _ = scheduler.Shutdown() }()

	_, err = scheduler.NewJob(
		gocron.CronJob(
			fmt.Sprintf("*/%d * * * *", cfg.Game.AdvanceIntervalMinutes),
			false,
		),
		gocron.NewTask(
			advanceRealms,
		),
	)
	if err != nil {
		log.Panic().Err(err).Msg("Error scheduling advance job")
	}

	log.Info().Msg("Starting up...")
	scheduler.Start()

	select {}
}
