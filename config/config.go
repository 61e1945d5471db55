package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Cfg holds the loaded application configuration.
var Cfg *Config

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Game   GameConfig   `mapstructure:"game"`
}

type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// GameConfig carries tunables that are not part of the static rule tables.
type GameConfig struct {
	// Cron interval, in minutes, between auto-advance sweeps
	AdvanceIntervalMinutes int `mapstructure:"advanceIntervalMinutes"`
	// TTL, in seconds, of the per-realm advance lock in redis
	AdvanceLockSeconds int `mapstructure:"advanceLockSeconds"`
}

// LoadConfig reads config.yaml, allowing environment variables to
// override any key (SERVER_ADDRESS, GAME_ADVANCEINTERVALMINUTES, ...).
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("game.advanceIntervalMinutes", 30)
	v.SetDefault("game.advanceLockSeconds", 60)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}
