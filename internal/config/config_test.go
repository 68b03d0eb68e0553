package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"testing"
	"time"
)

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {
	t.Setenv("CONFIG_PATH", "../../configs/config.yaml")

	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_CONNECTION_STRING", "host=db user=jobs dbname=jobs")
	t.Setenv("INGESTION_INTERVAL", "10m")
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("AI_KEY", "overrideKey")
	t.Setenv("AI_MODEL", "super_duper_model")
	t.Setenv("AI_MAX_REQUESTS_PER_MINUTE", "88")
	t.Setenv("TG_TOKEN", "overrideToken")
	t.Setenv("MATCH_NOTIFY_THRESHOLD", "75")
	t.Setenv("POSTING_RETENTION_DAYS", "30")

	cfg, err := loadConfig(os.Getenv("CONFIG_PATH"))
	require.NoError(t, err)

	assert.Equal(t, DBTypePostgres, cfg.DB.Type)
	assert.Equal(t, "host=db user=jobs dbname=jobs", cfg.DB.ConnectionString)
	assert.Equal(t, 10*time.Minute, cfg.Ingestion.Interval)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "overrideKey", cfg.AI.APIKey)
	assert.Equal(t, "super_duper_model", cfg.AI.Model)
	assert.Equal(t, float32(88), cfg.AI.MaxRequestsPerMinute)
	assert.Equal(t, "overrideToken", cfg.Telegram.Token)
	assert.Equal(t, 75, cfg.Matching.NotifyThreshold)
	assert.Equal(t, 30, cfg.Retention.PostingDays)
}

func Test_Config_DefaultsFromFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "../../configs/config.yaml")

	cfg := Get()

	assert.Equal(t, 5*time.Second, cfg.Ingestion.InitialDelay)
	assert.Equal(t, 30*time.Second, cfg.Ingestion.FetchTimeout)
	assert.Equal(t, 5000, cfg.Ingestion.DescriptionLimit)
	assert.Len(t, cfg.Ingestion.SearchKeywords, 3)
	assert.Equal(t, 20, cfg.Matching.CandidateLimit)
	assert.Equal(t, 5, cfg.Matching.MaxScored)
}

func Test_Config_Validation(t *testing.T) {
	cfg := Config{
		Logger:    LoggerConfig{LogLevel: LevelInfo, OutputFile: "x.log"},
		DB:        DBConfig{Type: "mongo", ConnectionString: "x"},
		Ingestion: IngestionConfig{Interval: time.Minute, FetchTimeout: time.Second, DescriptionLimit: 10},
		AI:        AIConfig{Provider: ProviderGemini, Model: "m"},
		Matching:  MatchingConfig{CandidateLimit: 20, MaxScored: 5, NotifyThreshold: 180},
		API:       APIConfig{Address: ":8080"},
		Redis:     RedisConfig{URL: "localhost:6379"},
	}

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported db type")
	assert.Contains(t, err.Error(), "api_key")
	assert.Contains(t, err.Error(), "notify_threshold")
	assert.Contains(t, err.Error(), "redis url")
}
