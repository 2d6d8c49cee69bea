// Package config resolves client settings from ~/.ibuy/config.toml, an
// optional .env file and IBUY_* environment variables, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "IBUY"
	homeDir    = ".ibuy"

	KeyHome           = "home"
	KeyAPIURL         = "api_url"
	KeyWSURL          = "ws_url"
	KeyRequestTimeout = "request_timeout"
	KeyLogLevel       = "log.level"
	KeyLogFile        = "log.file"
	KeyCookiesPath    = "cookies.path"

	DefaultAPIURL         = "http://localhost:8080/"
	DefaultWSURL          = "ws://localhost:8080/ws?user_id="
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)

type Config struct {
	Home           string
	APIURL         string
	WSURL          string
	RequestTimeout time.Duration
	LogLevel       string
	LogFile        string
	CookiesPath    string
}

type LoadOptions struct {
	// EnvFile is loaded before the environment is read. Missing files are
	// ignored. Empty means ".env" in the working directory.
	EnvFile string
}

// Load fills v from the config file and environment and returns the resolved
// settings. v keeps the resolved values so adapters can read their own keys.
func Load(v *viper.Viper, opts LoadOptions) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	home := v.GetString(KeyHome)
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		home = filepath.Join(userHome, homeDir)
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(home)
	v.SetDefault(KeyHome, home)
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyWSURL, DefaultWSURL)
	v.SetDefault(KeyRequestTimeout, DefaultRequestTimeout)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFile, filepath.Join(home, "ibuy.log"))
	v.SetDefault(KeyCookiesPath, filepath.Join(home, "cookies.toml"))

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Home:           home,
		APIURL:         v.GetString(KeyAPIURL),
		WSURL:          v.GetString(KeyWSURL),
		RequestTimeout: v.GetDuration(KeyRequestTimeout),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFile:        v.GetString(KeyLogFile),
		CookiesPath:    v.GetString(KeyCookiesPath),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validateURL(c.APIURL, "http", "https"); err != nil {
		return fmt.Errorf("%s: %w", KeyAPIURL, err)
	}
	if err := validateURL(c.WSURL, "ws", "wss"); err != nil {
		return fmt.Errorf("%s: %w", KeyWSURL, err)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s must be > 0", KeyRequestTimeout)
	}
	if c.CookiesPath == "" {
		return fmt.Errorf("%s cannot be empty", KeyCookiesPath)
	}
	return nil
}

func validateURL(raw string, schemes ...string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, scheme := range schemes {
		if parsed.Scheme == scheme && parsed.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%q must be an absolute %s url", raw, strings.Join(schemes, "/"))
}
