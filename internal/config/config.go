// Package config resolves runtime settings for the canopy binary.
//
// Precedence, lowest first: built-in defaults, the TOML file, a .env file,
// CANOPY_* environment variables, and finally command line flags (applied by
// the caller).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultFile is read when no file is named and it exists in the working directory.
const DefaultFile = "canopy.toml"

// Source kinds.
const (
	SourceDir    = "dir"
	SourceLoam   = "loam"
	SourceMemory = "memory"
	SourceRedis  = "redis"
	SourceBolt   = "bolt"
	SourceS3     = "s3"
	SourceRemote = "remote"
)

var kinds = []string{SourceDir, SourceLoam, SourceMemory, SourceRedis, SourceBolt, SourceS3, SourceRemote}

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Addr        string `toml:"addr"`
	ReadOnly    bool   `toml:"read_only"`
	MaxTextSize int    `toml:"max_text_size"`

	Source SourceConfig `toml:"source"`
	Redis  RedisConfig  `toml:"redis"`
	Bolt   BoltConfig   `toml:"bolt"`
	S3     S3Config     `toml:"s3"`
	Remote RemoteConfig `toml:"remote"`
	Cache  CacheConfig  `toml:"cache"`
	Crypto CryptoConfig `toml:"crypto"`
	Log    LogConfig    `toml:"log"`
}

type SourceConfig struct {
	Kind string `toml:"kind"`
	Dir  string `toml:"dir"`
}

type RedisConfig struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
	// Lock serialises patches across replicas with a Redis lock.
	Lock bool `toml:"lock"`
}

type BoltConfig struct {
	Path   string `toml:"path"`
	Bucket string `toml:"bucket"`
}

type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	UseSSL    bool   `toml:"use_ssl"`
}

type RemoteConfig struct {
	URL     string   `toml:"url"`
	Token   string   `toml:"token"`
	Suffix  string   `toml:"suffix"`
	Timeout Duration `toml:"timeout"`
}

// CacheConfig enables the read-through cache when Size is positive.
type CacheConfig struct {
	Size int      `toml:"size"`
	TTL  Duration `toml:"ttl"`
}

// CryptoConfig holds base64 AES-256 keys. Stores are encrypted when Key is set.
type CryptoConfig struct {
	Key          string   `toml:"key"`
	FallbackKeys []string `toml:"fallback_keys"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration lets TOML files write "30s" or "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Addr:   ":8080",
		Source: SourceConfig{Kind: SourceDir, Dir: "."},
		Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "canopy:"},
		Bolt:   BoltConfig{Path: "canopy.db"},
		S3:     S3Config{Region: "us-east-1", Bucket: "canopy-screens", UseSSL: true},
		Remote: RemoteConfig{Suffix: ".json", Timeout: Duration{10 * time.Second}},
		Cache:  CacheConfig{TTL: Duration{time.Minute}},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Options controls where Load looks.
type Options struct {
	// File is the TOML file. Empty means DefaultFile, if present.
	File string
	// EnvFiles are loaded with godotenv. Empty means ".env", if present.
	EnvFiles []string
	// Getenv overrides os.Getenv, for tests.
	Getenv func(string) string
}

// Load resolves the configuration from defaults, file and environment.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	file := opts.File
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		if _, err := toml.DecodeFile(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	if len(opts.EnvFiles) > 0 {
		if err := godotenv.Load(opts.EnvFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	} else {
		// A missing .env is fine.
		_ = godotenv.Load()
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	env := func(key string) string { return strings.TrimSpace(getenv("CANOPY_" + key)) }

	cfg.Addr = firstNonEmpty(env("ADDR"), cfg.Addr)
	cfg.Source.Kind = firstNonEmpty(env("SOURCE"), cfg.Source.Kind)
	cfg.Source.Dir = firstNonEmpty(env("DIR"), cfg.Source.Dir)

	cfg.Redis.Addr = firstNonEmpty(env("REDIS_ADDR"), cfg.Redis.Addr)
	cfg.Redis.Password = firstNonEmpty(env("REDIS_PASSWORD"), cfg.Redis.Password)
	cfg.Redis.Prefix = firstNonEmpty(env("REDIS_PREFIX"), cfg.Redis.Prefix)

	cfg.Bolt.Path = firstNonEmpty(env("BOLT_PATH"), cfg.Bolt.Path)
	cfg.Bolt.Bucket = firstNonEmpty(env("BOLT_BUCKET"), cfg.Bolt.Bucket)

	cfg.S3.Endpoint = firstNonEmpty(env("S3_ENDPOINT"), cfg.S3.Endpoint)
	cfg.S3.Region = firstNonEmpty(env("S3_REGION"), cfg.S3.Region)
	cfg.S3.AccessKey = firstNonEmpty(env("S3_ACCESS_KEY"), strings.TrimSpace(getenv("MINIO_ROOT_USER")), cfg.S3.AccessKey)
	cfg.S3.SecretKey = firstNonEmpty(env("S3_SECRET_KEY"), strings.TrimSpace(getenv("MINIO_ROOT_PASSWORD")), cfg.S3.SecretKey)
	cfg.S3.Bucket = firstNonEmpty(env("S3_BUCKET"), cfg.S3.Bucket)
	cfg.S3.Prefix = firstNonEmpty(env("S3_PREFIX"), cfg.S3.Prefix)

	cfg.Remote.URL = firstNonEmpty(env("REMOTE_URL"), cfg.Remote.URL)
	cfg.Remote.Token = firstNonEmpty(env("REMOTE_TOKEN"), cfg.Remote.Token)
	cfg.Remote.Suffix = firstNonEmpty(env("REMOTE_SUFFIX"), cfg.Remote.Suffix)

	cfg.Crypto.Key = firstNonEmpty(env("ENCRYPTION_KEY"), cfg.Crypto.Key)
	if v := env("ENCRYPTION_FALLBACK_KEYS"); v != "" {
		cfg.Crypto.FallbackKeys = splitList(v)
	}

	cfg.Log.Level = firstNonEmpty(env("LOG_LEVEL"), cfg.Log.Level)
	cfg.Log.Format = firstNonEmpty(env("LOG_FORMAT"), cfg.Log.Format)

	var errs []error
	setInt := func(key string, dst *int) {
		if v := env(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("CANOPY_%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v := env(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("CANOPY_%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	setDuration := func(key string, dst *Duration) {
		if v := env(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("CANOPY_%s: %w", key, err))
				return
			}
			dst.Duration = d
		}
	}

	setInt("MAX_TEXT_SIZE", &cfg.MaxTextSize)
	setInt("REDIS_DB", &cfg.Redis.DB)
	setInt("CACHE_SIZE", &cfg.Cache.Size)
	setBool("READ_ONLY", &cfg.ReadOnly)
	setBool("REDIS_LOCK", &cfg.Redis.Lock)
	setBool("S3_USE_SSL", &cfg.S3.UseSSL)
	setDuration("REDIS_TTL", &cfg.Redis.TTL)
	setDuration("CACHE_TTL", &cfg.Cache.TTL)
	setDuration("REMOTE_TIMEOUT", &cfg.Remote.Timeout)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Validate checks that the selected source has what it needs.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceDir, SourceLoam:
		if c.Source.Dir == "" {
			return fmt.Errorf("%w: source %s needs a directory", ErrInvalid, c.Source.Kind)
		}
	case SourceMemory:
	case SourceRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: redis address is required", ErrInvalid)
		}
	case SourceBolt:
		if c.Bolt.Path == "" {
			return fmt.Errorf("%w: bolt path is required", ErrInvalid)
		}
	case SourceS3:
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return fmt.Errorf("%w: s3 endpoint and bucket are required", ErrInvalid)
		}
	case SourceRemote:
		if c.Remote.URL == "" {
			return fmt.Errorf("%w: remote url is required", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown source kind %q (want one of %s)", ErrInvalid, c.Source.Kind, strings.Join(kinds, ", "))
	}
	if c.Redis.Lock && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis lock needs a redis address", ErrInvalid)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("%w: cache size must not be negative", ErrInvalid)
	}
	return nil
}

// Writable reports whether the configured source can store screens.
func (c *Config) Writable() bool {
	return c.Source.Kind != SourceLoam && c.Source.Kind != SourceRemote
}

// Kinds lists the accepted source kinds.
func Kinds() []string {
	return append([]string(nil), kinds...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
