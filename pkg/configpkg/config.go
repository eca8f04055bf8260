// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Application modes.
const (
	ModeConsole = "console"
	ModeDesk    = "desk"
)

// EnvDevelopment turns on human readable trace logging.
const EnvDevelopment = "development"

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddress    string `mapstructure:"SERVER_ADDRESS"`
	Environment      string `mapstructure:"GO_ENV"`
	Mode             string `mapstructure:"APP_MODE"`
	MetricsNamespace string `mapstructure:"METRICS_NAMESPACE"`
}

// ErrUnknownMode indicates an APP_MODE value other than console or desk.
var ErrUnknownMode = errors.New("unknown app mode")

// Load reads configuration from file or environment variables.
// A missing app.env is not an error, defaults and environment still apply.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("GO_ENV", "production")
	v.SetDefault("APP_MODE", "")
	v.SetDefault("METRICS_NAMESPACE", "petledger")

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))

	switch c.Mode {
	case "", ModeConsole, ModeDesk:
	default:
		return c, fmt.Errorf("%w: %q", ErrUnknownMode, c.Mode)
	}

	return c, nil
}

// IsDevelopment reports whether the app runs in development environment.
func (c Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}
