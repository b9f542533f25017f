package config

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// ServerConfig represents HTTP listener configuration
type ServerConfig struct {
	Address   string `json:"address" mapstructure:"address"`
	HTTPPort  int    `json:"http_port" mapstructure:"http_port"`
	EnableH2C bool   `json:"enable_h2c" mapstructure:"enable_h2c"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // console, json
}

// CacheConfig represents encrypt result cache configuration
type CacheConfig struct {
	Enable     bool `json:"enable" mapstructure:"enable"`
	Expiration int  `json:"expiration" mapstructure:"expiration"` // minutes
	MaxSize    int  `json:"max_size" mapstructure:"max_size"`
}

// CryptoConfig selects the token suite
type CryptoConfig struct {
	Compression string `json:"compression" mapstructure:"compression"`
	VerifyFiles bool   `json:"verify_files" mapstructure:"verify_files"`
}

// Config represents the main configuration
type Config struct {
	Server    ServerConfig `json:"server" mapstructure:"server"`
	Log       LogConfig    `json:"log" mapstructure:"log"`
	Cache     CacheConfig  `json:"cache" mapstructure:"cache"`
	Crypto    CryptoConfig `json:"crypto" mapstructure:"crypto"`
	DataDir   string       `json:"data_dir" mapstructure:"data_dir"`
	JWTSecret string       `json:"jwt_secret" mapstructure:"jwt_secret"`
	JWTExpire int          `json:"jwt_expire" mapstructure:"jwt_expire"` // hours
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", 5380)
	v.SetDefault("server.enable_h2c", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.expiration", 10)
	v.SetDefault("cache.max_size", 1024)

	v.SetDefault("crypto.compression", "gzip")
	v.SetDefault("crypto.verify_files", true)

	v.SetDefault("data_dir", "./data")
	v.SetDefault("jwt_secret", "tokencrypt-secret-change-me")
	v.SetDefault("jwt_expire", 24)
}

// Load reads configuration from path, or from config.json in the search
// paths when path is empty. A missing file falls back to defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.tokencrypt")
	}

	v.SetEnvPrefix("TOKENCRYPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Info().Msg("Config file not found, using defaults")
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks values viper cannot type-check
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log.format: %q", c.Log.Format)
	}
	if c.Cache.Enable && c.Cache.MaxSize <= 0 {
		return fmt.Errorf("invalid cache.max_size: %d", c.Cache.MaxSize)
	}
	return nil
}

// GetHTTPAddr returns the HTTP listen address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.HTTPPort)
}

// IsH2CEnabled returns whether HTTP/2 cleartext is enabled
func (c *Config) IsH2CEnabled() bool {
	return c.Server.EnableH2C
}

// CacheTTL returns the encrypt cache expiration
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.Expiration) * time.Minute
}

// JWTExpiration returns the login token lifetime, 48h when unset
func (c *Config) JWTExpiration() time.Duration {
	if c.JWTExpire <= 0 {
		return 48 * time.Hour
	}
	return time.Duration(c.JWTExpire) * time.Hour
}
