package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type config struct {
	Address        string   `mapstructure:"address"`
	OriginPatterns []string `mapstructure:"origin_patterns"`

	Postgres struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"postgres"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Auth struct {
		Issuer        string            `mapstructure:"issuer"`
		KeyID         string            `mapstructure:"key_id"`
		HMACKeys      map[string]string `mapstructure:"hmac_keys"`
		AccessExpiry  time.Duration     `mapstructure:"access_expiry"`
		RefreshExpiry time.Duration     `mapstructure:"refresh_expiry"`
	} `mapstructure:"auth"`

	RateLimit struct {
		Limit  int           `mapstructure:"limit"`
		Window time.Duration `mapstructure:"window"`
	} `mapstructure:"rate_limit"`

	Stream struct {
		Keepalive time.Duration `mapstructure:"keepalive"`
		QueueSize int           `mapstructure:"queue_size"`
	} `mapstructure:"stream"`
}

func initConfig(_ context.Context, cfgFile string) config {
	if env := os.Getenv("BLOG_CONFIG"); env != "" {
		cfgFile = env
	}

	viper.SetConfigType("yaml")
	viper.SetDefault("address", "localhost:8000")
	viper.SetDefault("auth.issuer", "blog-api")
	viper.SetDefault("auth.access_expiry", 15*time.Minute)
	viper.SetDefault("auth.refresh_expiry", 7*24*time.Hour)
	viper.SetDefault("rate_limit.limit", 10)
	viper.SetDefault("rate_limit.window", time.Minute)
	viper.SetDefault("stream.keepalive", 30*time.Second)
	viper.SetDefault("stream.queue_size", 32)
	viper.SetDefault("origin_patterns", []string{"*"})

	f, err := os.Open(cfgFile)
	if err != nil {
		log.Panic().Msgf("failed to open config %v", cfgFile)
	}
	defer f.Close()

	log.Info().Msgf("reading config: %v", cfgFile)
	if err := viper.ReadConfig(f); err != nil {
		log.Panic().Msgf("failed to read config %v %v", cfgFile, err)
	}

	var c config
	if err := viper.Unmarshal(&c); err != nil {
		log.Panic().Msgf("failed to unmarshal config %v %v", cfgFile, err)
	}

	if c.Auth.KeyID == "" || c.Auth.HMACKeys[c.Auth.KeyID] == "" {
		log.Panic().Msgf("auth.key_id must name an entry in auth.hmac_keys")
	}

	return c
}
