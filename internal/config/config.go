package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the environment variables read by Load.
const EnvPrefix = "ANIMALSQUAD_"

// Config holds application level configuration.
type Config struct {
	ServerPort string `koanf:"server_port"`
	AppEnv     string `koanf:"app_env"`
	LogLevel   string `koanf:"log_level"`

	MySQLDSN  string `koanf:"mysql_dsn"`
	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`
	RedisPass string `koanf:"redis_password"`

	JWTSecret       string        `koanf:"jwt_secret"`
	AccessTokenTTL  time.Duration `koanf:"access_token_ttl"`
	RefreshTokenTTL time.Duration `koanf:"refresh_token_ttl"`

	// BucketURL is a gocloud.dev blob URL, e.g. s3://animal-squad?region=ap-northeast-2.
	BucketURL      string `koanf:"bucket_url"`
	PublicImageURL string `koanf:"public_image_url"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`

	AdminCode   string `koanf:"admin_code"`
	SwaggerHost string `koanf:"swagger_host"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		ServerPort:      "8080",
		AppEnv:          "development",
		LogLevel:        "info",
		MySQLDSN:        "user:password@tcp(localhost:3306)/animalsquad?charset=utf8mb4&parseTime=True&loc=Local",
		RedisAddr:       "localhost:6379",
		JWTSecret:       "change-me",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BucketURL:       "file:///tmp/animal-squad",
		PublicImageURL:  "https://animal-squad.s3.ap-northeast-2.amazonaws.com",
		MaxUploadBytes:  5 << 20,
		AdminCode:       "동물특공대",
	}
}

// Load builds Config from defaults, an optional YAML file named by
// CONFIG_FILE, and ANIMALSQUAD_* environment variables, in that order.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom is Load with an explicit YAML path; an empty path skips the file.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return envKey(key), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load env variables: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps ANIMALSQUAD_REDIS_ADDR to redis_addr.
func envKey(raw string) string {
	return strings.ToLower(strings.TrimPrefix(raw, EnvPrefix))
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must be provided")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.BucketURL == "" {
		return fmt.Errorf("bucket_url must be provided")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
