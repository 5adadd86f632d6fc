package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    host: localhost
    database: collabquest
    user: app
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "collabquest", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, BackendPostgres, cfg.UserStore.Backend)
	assert.Equal(t, SessionStoreMemory, cfg.Verification.SessionStore)
	assert.Equal(t, 30*time.Minute, GetDuration(cfg.Verification.SessionTTL))
	assert.Equal(t, 10, cfg.Verification.QuestionCount)
	assert.Equal(t, 60.0, cfg.Verification.PassThreshold)
	assert.Equal(t, "gemini", cfg.APIs.GenAI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.APIs.GenAI.Model)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("CQ_TEST_PG_PASSWORD", "s3cret")
	path := writeConfig(t, `
database:
  postgres:
    host: localhost
    database: collabquest
    user: app
    password: ${CQ_TEST_PG_PASSWORD}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

func TestLoadFromFile_WorkerDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    host: localhost
    database: collabquest
    user: app
workers:
  compute-compatibility:
    enabled: true
  start-skill-verification:
    enabled: false
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	w := GetWorkerConfig(cfg, "compute-compatibility")
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "start-skill-verification"))
	assert.True(t, IsWorkerEnabled(cfg, "not-configured"))
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Database.Postgres = PostgresConfig{Host: "h", Database: "d", User: "u"}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"camunda enabled without broker", func(c *Config) { c.Camunda.Enabled = true }, "camunda.broker_address"},
		{"postgres without host", func(c *Config) { c.Database.Postgres.Host = "" }, "database.postgres.host"},
		{"elasticsearch without addresses", func(c *Config) { c.UserStore.Backend = BackendElasticsearch }, "database.elasticsearch"},
		{"unknown backend", func(c *Config) { c.UserStore.Backend = "mongo" }, "user_store.backend"},
		{"redis sessions without address", func(c *Config) { c.Verification.SessionStore = SessionStoreRedis }, "database.redis.address"},
		{"threshold out of range", func(c *Config) { c.Verification.PassThreshold = 120 }, "pass_threshold"},
		{"http provider without base url", func(c *Config) { c.APIs.GenAI.Provider = "http" }, "apis.genai.base_url"},
		{"unknown provider", func(c *Config) { c.APIs.GenAI.Provider = "cohere" }, "not supported"},
		{"events without topic", func(c *Config) { c.Notifications.Events.Enabled = true }, "topic_arn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestElasticsearchConfig_GetAddresses(t *testing.T) {
	assert.Equal(t, []string{"http://a:9200"}, ElasticsearchConfig{URL: "http://a:9200"}.GetAddresses())
	assert.Equal(t, []string{"http://b:9200"}, ElasticsearchConfig{
		URL:       "http://a:9200",
		Addresses: []string{"http://b:9200"},
	}.GetAddresses())
	assert.Nil(t, ElasticsearchConfig{}.GetAddresses())
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	dsn := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "cq", SSLMode: "disable"}.GetDSN()
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=cq sslmode=disable", dsn)
}
