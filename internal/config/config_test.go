package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(Options{Getenv: mapEnv(nil)})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr = ":9000"
max_text_size = 128

[source]
kind = "redis"

[redis]
addr = "cache:6379"
ttl = "1h"
lock = true

[cache]
size = 64
ttl = "30s"
`), 0o644))

	cfg, err := Load(Options{File: path, Getenv: mapEnv(map[string]string{
		"CANOPY_ADDR":       ":7000",
		"CANOPY_REDIS_DB":   "3",
		"CANOPY_CACHE_TTL":  "2m",
		"CANOPY_LOG_FORMAT": "json",
	})})
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr, "env beats file")
	assert.Equal(t, 128, cfg.MaxTextSize)
	assert.Equal(t, SourceRedis, cfg.Source.Kind)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Redis.TTL.Duration)
	assert.True(t, cfg.Redis.Lock)
	assert.Equal(t, 64, cfg.Cache.Size)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL.Duration)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level, "defaults survive")
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DefaultFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(DefaultFile, []byte("[source]\nkind = \"bolt\"\n"), 0o644))
	require.NoError(t, os.WriteFile(".env", []byte("CANOPY_BOLT_PATH=screens.db\n"), 0o644))
	t.Setenv("CANOPY_BOLT_PATH", "")
	os.Unsetenv("CANOPY_BOLT_PATH")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, SourceBolt, cfg.Source.Kind)
	assert.Equal(t, "screens.db", cfg.Bolt.Path)
}

func TestLoad_EnvErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(Options{Getenv: mapEnv(map[string]string{
		"CANOPY_CACHE_SIZE": "lots",
		"CANOPY_REDIS_TTL":  "soon",
	})})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "CANOPY_CACHE_SIZE")
	assert.Contains(t, err.Error(), "CANOPY_REDIS_TTL")

	_, err = Load(Options{File: "does-not-exist.toml", Getenv: mapEnv(nil)})
	assert.Error(t, err)
}

func TestLoad_MinioFallbackCredentials(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(Options{Getenv: mapEnv(map[string]string{
		"MINIO_ROOT_USER":     "minio",
		"MINIO_ROOT_PASSWORD": "secret",
		"CANOPY_S3_ACCESS_KEY": "explicit",
	})})
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.S3.AccessKey)
	assert.Equal(t, "secret", cfg.S3.SecretKey)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Config)
		ok     bool
	}{
		"defaults":         {func(*Config) {}, true},
		"unknown kind":     {func(c *Config) { c.Source.Kind = "ftp" }, false},
		"remote needs url": {func(c *Config) { c.Source.Kind = SourceRemote }, false},
		"remote with url":  {func(c *Config) { c.Source.Kind = SourceRemote; c.Remote.URL = "https://x" }, true},
		"s3 needs endpoint": {func(c *Config) { c.Source.Kind = SourceS3 }, false},
		"negative cache":   {func(c *Config) { c.Cache.Size = -1 }, false},
		"memory":           {func(c *Config) { c.Source.Kind = SourceMemory }, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestWritable(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Writable())
	cfg.Source.Kind = SourceLoam
	assert.False(t, cfg.Writable())
}
