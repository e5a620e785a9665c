package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Database DatabaseConfig
	Web      WebConfig
	Defaults DefaultsConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL for the palette store
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type WebConfig struct {
	Host          string
	Port          int
	SessionSecret string // Secret for signing session cookies
}

// DefaultsConfig carries the built-in select settings and named color table.
type DefaultsConfig struct {
	Select SelectDefaults    `yaml:"select"`
	Colors map[string]string `yaml:"colors"`
}

type SelectDefaults struct {
	Threshold  float64 `yaml:"threshold"`
	MatchMode  string  `yaml:"match_mode"`
	SelectMode string  `yaml:"select_mode"`
	Reduction  string  `yaml:"reduction"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var defaults DefaultsConfig
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// Embedded file, cannot fail once the build is correct.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Web: WebConfig{
			Host:          envString("WEB_HOST", "0.0.0.0"),
			Port:          envInt("WEB_PORT", 8080),
			SessionSecret: os.Getenv("WEB_SESSION_SECRET"),
		},
		Defaults: defaults,
	}
}

// NamedColor resolves a color name from the embedded table. The second
// return reports whether the name exists.
func (c *Config) NamedColor(name string) (string, bool) {
	hex, ok := c.Defaults.Colors[name]
	return hex, ok
}
