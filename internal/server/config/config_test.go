package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withArgs(t *testing.T, args []string) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"server"}, args...)
	t.Cleanup(func() { os.Args = saved })
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenValidityDuration)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, BlobBackendFS, cfg.BlobBackend)
}

func TestParseFlags(t *testing.T) {
	withArgs(t, []string{"-a", ":9090", "-d", "postgres://u:p@host/db", "-s", "key1", "-t", "12", "-k", "s3", "-b", "pics"})

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddr)
	assert.Equal(t, "postgres://u:p@host/db", cfg.DatabaseDSN)
	assert.Equal(t, "key1", cfg.SecretKey)
	assert.Equal(t, 12*time.Hour, cfg.TokenValidityDuration)
	assert.Equal(t, BlobBackendS3, cfg.BlobBackend)
	assert.Equal(t, "pics", cfg.S3Bucket)
}

func TestParseFlagsIgnoresUnknown(t *testing.T) {
	withArgs(t, []string{"-a", ":9090", "-x", "noise"})

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddr)
}

func TestParseJson(t *testing.T) {
	content := `{
		"endpoint_addr": ":9191",
		"database_dsn": "postgres://u:p@host/db",
		"secret_key": "fromjson",
		"token_validity_duration": "24h",
		"upload_dir": "blobs",
		"blob_backend": "s3",
		"s3_user": "minio",
		"s3_password": "miniopw",
		"s3_bucket": "pics",
		"s3_region": "eu-north-1",
		"s3_base_endpoint": "http://127.0.0.1:9000/"
	}`
	file := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	withArgs(t, []string{"-c", file})

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":9191", cfg.EndpointAddr)
	assert.Equal(t, "fromjson", cfg.SecretKey)
	assert.Equal(t, 24*time.Hour, cfg.TokenValidityDuration)
	assert.Equal(t, "blobs", cfg.UploadDir)
	assert.Equal(t, "eu-north-1", cfg.S3Region)
}

func TestLoadConfigFlagOverridesJson(t *testing.T) {
	content := `{"endpoint_addr": ":9191", "token_validity_duration": "24h"}`
	file := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	withArgs(t, []string{"-c", file, "-a", ":7070"})

	cfg := LoadConfig()

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenValidityDuration)
}
