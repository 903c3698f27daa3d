// Package config loads client settings from config files, .env and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"github.com/westmarch-io/westmarch/internal/storage"
)

const (
	DefaultAPIBaseURL = "http://localhost:8000"
	EnvPrefix         = "WESTMARCH"

	defaultTimeout = 15 * time.Second
)

var errMissingHost = errors.New("url must include a scheme and host")

func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		// Defaults are static, this cannot fail at runtime.
		panic(fmt.Sprintf("error unmarshaling default config: %v", err))
	}

	return &config
}

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	loadEnvFile()

	v := viper.New()

	setupViperConfig(v, configFile)
	bindEnvironmentVariables(v)

	config, err := readAndUnmarshalConfig(v)
	if err != nil {
		return nil, err
	}

	if err := SetupLogging(config); err != nil {
		return nil, err
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		for key, value := range v.AllSettings() {
			if strings.Contains(key, "password") {
				continue
			}
			logrus.Debugf("Config '%s': %v", key, value)
		}
	}

	return config, nil
}

// loadEnvFile loads the .env file if it exists
func loadEnvFile() {
	if err := gotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}
}

func setupViperConfig(v *viper.Viper, configFile string) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "westmarch"))
	}

	if len(configFile) > 0 {
		v.SetConfigFile(configFile)
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// bindEnvironmentVariables binds the variables that do not follow the
// WESTMARCH_<SECTION>_<KEY> pattern.
func bindEnvironmentVariables(v *viper.Viper) {
	// The web frontend reads NEXT_PUBLIC_API_URL, so a shared .env works
	// for both.
	v.BindEnv("api.base_url", "WESTMARCH_API_URL", "WESTMARCH_API_BASE_URL", "NEXT_PUBLIC_API_URL")
	v.BindEnv("api.timeout", "WESTMARCH_API_TIMEOUT")

	v.BindEnv("storage.backend", "WESTMARCH_STORAGE_BACKEND")
	v.BindEnv("storage.path", "WESTMARCH_STORAGE_PATH")
	v.BindEnv("storage.redis.addr", "WESTMARCH_STORAGE_REDIS_ADDR", "WESTMARCH_REDIS_ADDR")
	v.BindEnv("storage.redis.password", "WESTMARCH_STORAGE_REDIS_PASSWORD", "WESTMARCH_REDIS_PASSWORD")
	v.BindEnv("storage.redis.db", "WESTMARCH_STORAGE_REDIS_DB", "WESTMARCH_REDIS_DB")

	v.BindEnv("logging.level", "WESTMARCH_LOGGING_LEVEL", "WESTMARCH_LOG_LEVEL")
	v.BindEnv("logging.format", "WESTMARCH_LOGGING_FORMAT")
}

func readAndUnmarshalConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and environment only.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// SetupLogging applies the configured level and format to logrus.
func SetupLogging(config *Config) error {
	level, err := logrus.ParseLevel(config.Logging.Level)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}

	logrus.SetLevel(level)
	installDiagnostics()

	switch strings.ToLower(config.Logging.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	default:
		logrus.WithFields(logrus.Fields{
			"format": config.Logging.Format,
		}).Warn("Unknown log format")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultAPIBaseURL)
	v.SetDefault("api.timeout", defaultTimeout.String())

	v.SetDefault("storage.backend", storage.BackendFile)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)

	// Warnings about degraded storage should reach the user.
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
}
