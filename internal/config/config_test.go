package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, SourceFile, cfg.Dataset.Source)
	assert.Equal(t, "attractions.json", cfg.Dataset.Path)
	assert.Equal(t, 19, cfg.Map.MaxZoom)
	assert.Contains(t, cfg.Map.Attribution, "OpenStreetMap")
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "attractions", cfg.Postgres.Table)
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	dir := t.TempDir()
	body := `{
		"logLevel": "debug",
		"http": { "addr": ":9090" },
		"dataset": { "source": "http", "baseUrl": "http://data.local/" },
		"kafka": { "enabled": true, "topic": "diag" }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(body), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, SourceHTTP, cfg.Dataset.Source)
	assert.Equal(t, "http://data.local/", cfg.Dataset.BaseURL)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "diag", cfg.Kafka.Topic)
	assert.Equal(t, "localhost:9092", cfg.Kafka.Broker)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("ATTRACTIONS_HTTP_ADDR", ":7070")
	t.Setenv("ATTRACTIONS_DATASET_PATH", "/srv/data.json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "/srv/data.json", cfg.Dataset.Path)
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(`{not json`), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"file ok", Config{Dataset: DatasetConfig{Source: SourceFile, Path: "a.json"}}, false},
		{"file without path", Config{Dataset: DatasetConfig{Source: SourceFile}}, true},
		{"http without base", Config{Dataset: DatasetConfig{Source: SourceHTTP}}, true},
		{"s3 missing credentials", Config{Dataset: DatasetConfig{Source: SourceS3}, S3: S3Config{Endpoint: "minio:9000"}}, true},
		{"s3 ok", Config{Dataset: DatasetConfig{Source: SourceS3}, S3: S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b"}}, false},
		{"postgres without dsn", Config{Dataset: DatasetConfig{Source: SourcePostgres}}, true},
		{"unknown source", Config{Dataset: DatasetConfig{Source: "ftp"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
