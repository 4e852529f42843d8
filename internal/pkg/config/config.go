package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/samirrijal/derniermetro/internal/core/arrivals"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Service   ServiceConfig   `mapstructure:"service"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  int `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout int `mapstructure:"write_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	Host       string `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port       int    `mapstructure:"port" validate:"min=1,max=65535"`
	User       string `mapstructure:"user" validate:"required_if=Driver postgres"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname" validate:"required_if=Driver postgres"`
	SSLMode    string `mapstructure:"sslmode"`
	MaxConns   int32  `mapstructure:"max_conns" validate:"gt=0"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// ServiceConfig configures the daily service window. The 05:30 start is fixed.
type ServiceConfig struct {
	End             string `mapstructure:"end" validate:"required,clock"`
	LastWindowStart string `mapstructure:"last_window_start" validate:"required,clock"`
	Timezone        string `mapstructure:"timezone" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// legacyEnv maps config keys to the unprefixed variable names the service also honours.
var legacyEnv = map[string]string{
	"server.port":               "PORT",
	"service.end":               "SERVICE_END",
	"service.last_window_start": "LAST_WINDOW_START",
	"database.host":             "DB_HOST",
	"database.port":             "DB_PORT",
	"database.dbname":           "DB_NAME",
	"database.user":             "DB_USER",
	"database.password":         "DB_PASSWORD",
	"log.level":                 "LOG_LEVEL",
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "metro")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "dernier_metro")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.sqlite_path", "data/dernier_metro.db")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("service.end", "01:15")
	v.SetDefault("service.last_window_start", "00:45")
	v.SetDefault("service.timezone", "Europe/Paris")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: DERNIERMETRO_SERVICE_END → service.end
	v.SetEnvPrefix("DERNIERMETRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := "DERNIERMETRO_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		return name
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := arrivals.ParseClock(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	var verrs validator.ValidationErrors
	if err := validate.Struct(c); err != nil {
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, describe(fe))
		}
	}

	if c.Service.Timezone != "" {
		if _, err := time.LoadLocation(c.Service.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("service.timezone %q: %v", c.Service.Timezone, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "clock":
		return fmt.Sprintf("%s must be HH:MM, got %q", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s must be 1-65535, got %v", field, fe.Value())
	case "gt":
		return field + " must be positive"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// Window builds the immutable service window from the configuration.
func (c *Config) Window() (arrivals.Window, error) {
	end, err := arrivals.ParseClock(c.Service.End)
	if err != nil {
		return arrivals.Window{}, fmt.Errorf("service.end: %w", err)
	}
	last, err := arrivals.ParseClock(c.Service.LastWindowStart)
	if err != nil {
		return arrivals.Window{}, fmt.Errorf("service.last_window_start: %w", err)
	}
	loc, err := time.LoadLocation(c.Service.Timezone)
	if err != nil {
		return arrivals.Window{}, fmt.Errorf("service.timezone: %w", err)
	}
	return arrivals.Window{
		Start:           arrivals.DailyStart,
		End:             end,
		LastWindowStart: last,
		Location:        loc,
		Timezone:        c.Service.Timezone,
	}, nil
}
