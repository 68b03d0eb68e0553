package config

import (
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	DB        DBConfig        `mapstructure:"db"`
	Ingestion IngestionConfig `mapstructure:"ingestion"`
	AI        AIConfig        `mapstructure:"ai"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Redis     RedisConfig     `mapstructure:"redis"`
	API       APIConfig       `mapstructure:"api"`
	Retention RetentionConfig `mapstructure:"retention"`
}

type section interface {
	validate() error
	bindEnvironmentVariables() error
}

var defaultConfigFile = "./configs/config.yaml"

func Get() *Config {
	config, err := Load("")
	if err != nil {
		log.Fatal(err)
	}
	return config
}

// Load reads configuration from file. An empty file falls back to CONFIG_PATH
// and then to the default location.
func Load(file string) (*Config, error) {
	if file == "" {
		file = defaultConfigFile
		if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
			file = value
		}
	}
	return loadConfig(file)
}

func loadConfig(file string) (*Config, error) {

	viper.SetConfigFile(file)
	viper.AutomaticEnv()
	setDefaults()

	err := bindEnvironmentVariables()
	if err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("db.type", string(DBTypeSQLite))
	viper.SetDefault("ingestion.interval", "300s")
	viper.SetDefault("ingestion.initial_delay", "5s")
	viper.SetDefault("ingestion.fetch_timeout", "30s")
	viper.SetDefault("ingestion.small_fetch_timeout", "10s")
	viper.SetDefault("ingestion.description_limit", 5000)
	viper.SetDefault("ingestion.remotive_limit", 50)
	viper.SetDefault("ingestion.hn_max_comments", 100)
	viper.SetDefault("ai.provider", string(ProviderNone))
	viper.SetDefault("ai.timeout", "30s")
	viper.SetDefault("ai.cache_ttl", "24h")
	viper.SetDefault("matching.candidate_limit", 20)
	viper.SetDefault("matching.max_scored", 5)
	viper.SetDefault("matching.notify_threshold", 80)
	viper.SetDefault("api.address", ":8080")
}

func (config Config) sections() map[string]section {
	return map[string]section{
		"LoggerConfig":    config.Logger,
		"DBConfig":        config.DB,
		"IngestionConfig": config.Ingestion,
		"AIConfig":        config.AI,
		"MatchingConfig":  config.Matching,
		"TelegramConfig":  config.Telegram,
		"RedisConfig":     config.Redis,
		"APIConfig":       config.API,
		"RetentionConfig": config.Retention,
	}
}

func bindEnvironmentVariables() error {
	var errs []error

	for name, s := range (Config{}).sections() {
		if err := s.bindEnvironmentVariables(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	for name, s := range config.sections() {
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func bindAll(pairs ...[2]string) error {
	var errs []error
	for _, pair := range pairs {
		if err := viper.BindEnv(pair[0], pair[1]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
