package models

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel"
	provider "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/TheFirstHero6/noah-game-sub000/utilities"
)

var db *gorm.DB
var Tracer trace.Tracer = otel.Tracer("elector-models")

func SetTracerProvider(t *provider.TracerProvider) {
	log.Info().Msg("SetTracerProvider")
	Tracer = t.Tracer("elector-models")
}

func Database(retry bool) (*gorm.DB, error) {
	// Use cached value if we can
	if db != nil {
		return db, nil
	}

	_, sp := Tracer.Start(context.Background(), "setup-database")
	defer sp.End()

	DB_HOST := utilities.GetEnv("DB_HOST", "127.0.0.1")
	DB_PORT := utilities.GetEnv("DB_PORT", "3306")
	DB_USER := utilities.GetEnv("DB_USER", "elector")
	DB_PASSWORD := utilities.GetEnv("DB_PASSWORD", "")
	DB_NAME := utilities.GetEnv("DB_NAME", "elector")

	dsn := DB_USER + ":" + DB_PASSWORD + "@tcp(" + DB_HOST + ":" + DB_PORT + ")/" + DB_NAME + "?charset=utf8mb4&parseTime=True&loc=Local"
	dbase, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		if retry {
			log.Panic().Err(err).Msg("Failed to connect to database @ " + DB_HOST + ":" + DB_PORT)
		} else {
			time.Sleep(3 * time.Second)
			return Database(true)
		}
	}

	// Cache this to re-use next time
	db = dbase

	if err := dbase.Use(otelgorm.NewPlugin()); err != nil {
		panic(err)
	}

	sql, err := dbase.DB()
	if err != nil {
		panic(err)
	}

	sql.SetMaxOpenConns(10)
	sql.SetMaxIdleConns(3)
	sql.SetConnMaxIdleTime(5 * time.Minute)

	return dbase, err
}

func RunMigrations(db *gorm.DB) error {
	ctx, sp := Tracer.Start(context.Background(), "run-migrations")
	defer sp.End()

	err := db.WithContext(ctx).AutoMigrate(
		&User{},
		&Realm{},
		&Membership{},
		&Resource{},
		&City{},
		&Building{},
		&Army{},
		&ArmyUnit{},
		&RealmEvent{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Error running migrations")
		return err
	}

	log.Info().Msg("Ran Migrations")
	return nil
}
