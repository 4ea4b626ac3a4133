package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode             string        `mapstructure:"mode"`
	APIPort          int           `mapstructure:"api_port"`
	RelayURL         string        `mapstructure:"relay_url"`
	SearchingTimeout time.Duration `mapstructure:"searching_timeout"`
	SignalingTimeout time.Duration `mapstructure:"signaling_timeout"`
	STUNURLs         []string      `mapstructure:"stun_urls"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("api_port", 3000)
	v.SetDefault("relay_url", "ws://localhost:8080/ws")
	// Searching is short: the user can simply retry. Signaling is long: once
	// two peers are paired a full offer/answer round trip deserves more time.
	v.SetDefault("searching_timeout", "30s")
	v.SetDefault("signaling_timeout", "60s")
	v.SetDefault("stun_urls", []string{"stun:stun.l.google.com:19302"})

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
