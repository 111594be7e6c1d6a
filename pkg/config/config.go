package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// Config groups the application configuration read from env vars and optional files
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	MRP     MRPConfig
	Routing RoutingConfig
}

// AppConfig general application settings
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig settings of the HTTP server
type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr returns the listen address (host:port)
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MRPConfig policies of the materials side
type MRPConfig struct {
	CyclePolicy          string // truncate, fail
	UnknownArticlePolicy string // skip, strict
}

// RoutingConfig settings of the distance oracle and the route builder
type RoutingConfig struct {
	Oracle                string // haversine, road
	ProviderURL           string
	ProviderProfile       string
	ProviderTimeout       time.Duration
	ProviderMaxConcurrent int
	Fallback              bool
	SpeedKmh              float64
	Improve               string // none, 2opt, relocate, all
}

// Load reads the configuration. Env vars win over .env and config.env files.
// Expected names: APP_ENV, LOG_LEVEL, HTTP_PORT, MRP_CYCLE_POLICY, ROUTING_PROVIDER_URL, etc.
func Load() (*Config, error) {
	_ = godotenv.Load() // a missing .env is fine

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // optional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "supplyplan"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host:         getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:         getInt(v, "HTTP_PORT", 8080),
			ReadTimeout:  getDuration(v, "HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration(v, "HTTP_WRITE_TIMEOUT", 10*time.Second),
		},
		MRP: MRPConfig{
			CyclePolicy:          strings.ToLower(getString(v, "MRP_CYCLE_POLICY", "truncate")),
			UnknownArticlePolicy: strings.ToLower(getString(v, "MRP_UNKNOWN_ARTICLE_POLICY", "skip")),
		},
		Routing: RoutingConfig{
			Oracle:                strings.ToLower(getString(v, "ROUTING_ORACLE", "haversine")),
			ProviderURL:           getString(v, "ROUTING_PROVIDER_URL", ""),
			ProviderProfile:       getString(v, "ROUTING_PROVIDER_PROFILE", "driving"),
			ProviderTimeout:       getDuration(v, "ROUTING_PROVIDER_TIMEOUT", 20*time.Second),
			ProviderMaxConcurrent: getInt(v, "ROUTING_PROVIDER_MAX_CONCURRENT", 4),
			Fallback:              getBool(v, "ROUTING_FALLBACK", true),
			SpeedKmh:              getFloat(v, "ROUTING_SPEED_KMH", 50),
			Improve:               strings.ToLower(getString(v, "ROUTING_IMPROVE", "none")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown policy names and unusable provider settings
func (c *Config) Validate() error {
	switch c.MRP.CyclePolicy {
	case "truncate", "fail":
	default:
		return entities.NewConfigurationError("MRP_CYCLE_POLICY", "unknown cycle policy %q", c.MRP.CyclePolicy)
	}
	switch c.MRP.UnknownArticlePolicy {
	case "skip", "strict":
	default:
		return entities.NewConfigurationError("MRP_UNKNOWN_ARTICLE_POLICY", "unknown article policy %q", c.MRP.UnknownArticlePolicy)
	}
	switch c.Routing.Oracle {
	case "haversine":
	case "road":
		if c.Routing.ProviderURL == "" && !c.Routing.Fallback {
			return entities.NewConfigurationError("ROUTING_PROVIDER_URL", "road oracle requires a provider url when fallback is disabled")
		}
	default:
		return entities.NewConfigurationError("ROUTING_ORACLE", "unknown oracle %q", c.Routing.Oracle)
	}
	switch c.Routing.Improve {
	case "none", "2opt", "relocate", "all":
	default:
		return entities.NewConfigurationError("ROUTING_IMPROVE", "unknown improvement mode %q", c.Routing.Improve)
	}
	if c.Routing.ProviderTimeout <= 0 {
		return entities.NewConfigurationError("ROUTING_PROVIDER_TIMEOUT", "timeout must be positive, got %s", c.Routing.ProviderTimeout)
	}
	if c.Routing.ProviderMaxConcurrent <= 0 {
		return entities.NewConfigurationError("ROUTING_PROVIDER_MAX_CONCURRENT", "must be positive, got %d", c.Routing.ProviderMaxConcurrent)
	}
	if c.Routing.SpeedKmh < 0 {
		return entities.NewConfigurationError("ROUTING_SPEED_KMH", "speed cannot be negative, got %v", c.Routing.SpeedKmh)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return entities.NewConfigurationError("HTTP_PORT", "port out of range, got %d", c.HTTP.Port)
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	switch v.Get(key).(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return n
	default:
		return v.GetInt(key)
	}
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if !v.IsSet(key) {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
	if err != nil {
		return def
	}
	return f
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(v.GetString(key))
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
