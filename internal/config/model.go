package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/westmarch-io/westmarch/internal/common"
	"github.com/westmarch-io/westmarch/internal/storage"
)

// Config represents the application configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

type StorageConfig struct {
	Backend string      `mapstructure:"backend"`
	Path    string      `mapstructure:"path"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c *Config) GetAPIBaseURL() string {
	return strings.TrimSuffix(strings.TrimSpace(c.API.BaseURL), "/")
}

// SetAPIBaseURL overrides the configured API endpoint, usually from a flag.
func (c *Config) SetAPIBaseURL(baseURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return err
	}
	if len(parsed.Scheme) == 0 || len(parsed.Host) == 0 {
		return &url.Error{Op: "parse", URL: baseURL, Err: errMissingHost}
	}
	c.API.BaseURL = parsed.String()
	return nil
}

// APIHostname returns the API host without scheme or port. Sessions are
// stored per hostname so two servers never share credentials.
func (c *Config) APIHostname() string {
	parsed, err := url.Parse(c.GetAPIBaseURL())
	if err != nil || len(parsed.Hostname()) == 0 {
		return "localhost"
	}
	return parsed.Hostname()
}

func (c *Config) GetTimeout() time.Duration {
	if len(c.API.Timeout) == 0 {
		return defaultTimeout
	}
	timeout, err := common.ParseDuration(c.API.Timeout)
	if err != nil || timeout <= 0 {
		logrus.WithFields(logrus.Fields{
			"timeout": c.API.Timeout,
		}).Warnln("Invalid API timeout, using default")
		return defaultTimeout
	}
	return timeout
}

func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:       c.Storage.Backend,
		Namespace:     c.APIHostname(),
		Path:          c.Storage.Path,
		RedisAddr:     c.Storage.Redis.Addr,
		RedisPassword: c.Storage.Redis.Password,
		RedisDB:       c.Storage.Redis.DB,
	}
}
