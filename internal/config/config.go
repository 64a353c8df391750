package config

import (
	"github.com/spf13/viper"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// Config holds the main configuration for the receiver.
type Config struct {
	Server    Server         `mapstructure:"server"`
	Notify    Notify         `mapstructure:"notify"`
	Discovery Discovery      `mapstructure:"discovery"`
	Retry     retry.Strategy `mapstructure:"retry"`
	Workers   struct {
		Count int `mapstructure:"count"` // number of dispatch worker goroutines
	} `mapstructure:"workers"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	HTTPPort     string `mapstructure:"http_port"`      // HTTP port to listen on
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"` // request body cap, applied uniformly
}

// Notify holds notification surface configuration.
type Notify struct {
	AppName string `mapstructure:"app_name"` // application name shown by the surface
}

// Discovery holds mDNS advertisement configuration.
type Discovery struct {
	Service string `mapstructure:"service"` // service type, e.g. _photosync._tcp
	Port    int    `mapstructure:"port"`    // advertised port
}

// mustBindEnv binds environment variable overrides to Viper keys.
//
// It panics if any environment variable cannot be bound.
func mustBindEnv() {
	bindings := map[string]string{
		"server.http_port": "FASTSYNC_HTTP_PORT",
		"discovery.port":   "FASTSYNC_DISCOVERY_PORT",
		"workers.count":    "FASTSYNC_WORKERS",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			zlog.Logger.Panic().Err(err).Msgf("failed to bind env %s", env)
		}
	}
}

// Must loads and validates the configuration from file and environment variables.
//
// It panics if configuration cannot be read or unmarshalled.
func Must() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to read config")
	}

	mustBindEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		zlog.Logger.Panic().Err(err).Msgf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
