package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/TheFirstHero6/noah-game-sub000/admin"
	"github.com/TheFirstHero6/noah-game-sub000/army"
	"github.com/TheFirstHero6/noah-game-sub000/auth"
	"github.com/TheFirstHero6/noah-game-sub000/city"
	"github.com/TheFirstHero6/noah-game-sub000/config"
	"github.com/TheFirstHero6/noah-game-sub000/dashboard"
	"github.com/TheFirstHero6/noah-game-sub000/live"
	"github.com/TheFirstHero6/noah-game-sub000/models"
	"github.com/TheFirstHero6/noah-game-sub000/realm"
	electorRedis "github.com/TheFirstHero6/noah-game-sub000/redis"
	"github.com/TheFirstHero6/noah-game-sub000/server"
	"github.com/TheFirstHero6/noah-game-sub000/turn"
)

var traceProvider *trace.TracerProvider

func main() {
	setupLogs()

	if err := godotenv.Load(".env"); err != nil {
		log.Info().Msg("No .env file found, using system environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Panic().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt)
	defer func() {
		signal.Stop(signalChan)
		cancel()
	}()

	//==============================//
	//	Setup Telemetry							//
	//==============================//
	otelShutdown, tp, err := setupOTelSDK(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error setting up telemetry")
		return
	}
	defer func() {
		err = errors.Join(err, otelShutdown(context.Background()))
	}()
	models.SetTracerProvider(tp)
	traceProvider = tp

	//==============================//
	//	Setup Redis									//
	//==============================//
	redisClient, err := electorRedis.Instance(tp)
	if err != nil {
		log.Warn().Err(err).Msg("Continuing without redis")
		redisClient = nil
	}

	//==============================//
	//	Database + migrations				//
	//==============================//
	db, err := models.Database(false)
	if err != nil {
		log.Panic().Err(err).Msg("Error connecting to database")
	}
	if err := models.RunMigrations(db); err != nil {
		log.Panic().Err(err).Msg("Error running migrations")
	}

	resolver := turn.NewResolver(db, redisClient, time.Duration(cfg.Game.AdvanceLockSeconds)*time.Second)

	auth.Initialize(db)
	realm.Initialize(db)
	city.Initialize(db)
	army.Initialize(db)
	dashboard.Initialize(db, redisClient)
	admin.Initialize(resolver)
	live.Initialize(db, redisClient)

	go func() {
		<-signalChan

		if sql, err := db.DB(); err == nil {
			sql.Close()
		}

		cancel()
		os.Exit(1)
	}()

	//==============================//
	//	Setup HTTP Server						//
	//==============================//
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server.SetupRoutes(r)

	log.Info().Msg("Server started on " + cfg.Server.Address)
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Panic().Err(err).Msg("Failed to start server")
	}
}
