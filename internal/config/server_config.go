package config

import (
	"fmt"
	"strings"
)

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

func (config TelegramConfig) validate() error {
	return nil
}

func (config TelegramConfig) bindEnvironmentVariables() error {
	return bindAll([2]string{"telegram.token", "TG_TOKEN"})
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

func (config RedisConfig) validate() error {
	if config.URL != "" && !strings.HasPrefix(config.URL, "redis://") && !strings.HasPrefix(config.URL, "rediss://") {
		return fmt.Errorf("redis url must start with redis:// or rediss://")
	}
	return nil
}

func (config RedisConfig) bindEnvironmentVariables() error {
	return bindAll([2]string{"redis.url", "REDIS_URL"})
}

type APIConfig struct {
	Address string `mapstructure:"address"`
}

func (config APIConfig) validate() error {
	if config.Address == "" {
		return fmt.Errorf("missing variable: address")
	}
	return nil
}

func (config APIConfig) bindEnvironmentVariables() error {
	return bindAll([2]string{"api.address", "API_ADDRESS"})
}
