package electorRedis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/TheFirstHero6/noah-game-sub000/utilities"
)

var rdb *redis.Client

func Instance(tp *trace.TracerProvider) (*redis.Client, error) {
	log.Trace().Msg("electorRedis: Instance")

	// Use cached value if we can
	if rdb != nil {
		return rdb, nil
	}

	if tp != nil {
		_, sp := tp.Tracer("elector-redis").Start(context.Background(), "setup-redis")
		defer sp.End()
	}

	REDIS_HOST := utilities.GetEnv("REDIS_HOST", "127.0.0.1")
	REDIS_PORT := utilities.GetEnv("REDIS_PORT", "6379")

	log.Info().Msg("Redis @ " + REDIS_HOST + ":" + REDIS_PORT)
	rdb = redis.NewClient(&redis.Options{
		Addr:     REDIS_HOST + ":" + REDIS_PORT,
		Password: utilities.GetEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis ping failed")
	}

	return rdb, nil
}
