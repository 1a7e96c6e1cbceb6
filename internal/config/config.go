package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendLocal = "local"
	BackendSQL   = "sql"
	BackendAPI   = "api"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Local     LocalConfig
	Database  DatabaseConfig
	API       APIConfig
	JWT       JWTConfig
	Log       LogConfig
	Redis     RedisConfig
	Analytics AnalyticsConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Timezone string
}

// BackendConfig picks the storage behind the repository: local, sql or api
type BackendConfig struct {
	Kind string
}

type LocalConfig struct {
	DataFile        string
	CredentialsFile string // defaults to credentials.json next to DataFile
	Seed            bool
}

// DatabaseConfig holds database connection settings. URL wins over the discrete fields.
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	AutoMigrate     bool
}

// APIConfig points the api backend at another instance of this service
type APIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Channel  string
}

type AnalyticsConfig struct {
	DefaultMonths     int
	LowStockThreshold int
}

// Load reads .env (if any), then config.yaml, then WDA_ prefixed env vars.
// Priority (highest to lowest):
// 1. Environment variables (WDA_DATABASE_URL, plus the legacy PORT, DATABASE_URL, JWT_SECRET)
// 2. config.yaml
// 3. Built-in defaults
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("WDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// legacy names from the .env of earlier deployments
	_ = v.BindEnv("app.port", "WDA_APP_PORT", "PORT")
	_ = v.BindEnv("database.url", "WDA_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("jwt.secret", "WDA_JWT_SECRET", "JWT_SECRET")

	v.SetDefault("local.seed", true)
	v.SetDefault("database.auto_migrate", true)

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			Env:      v.GetString("app.env"),
			Port:     v.GetString("app.port"),
			Timezone: v.GetString("app.timezone"),
		},
		Backend: BackendConfig{
			Kind: strings.ToLower(v.GetString("backend.kind")),
		},
		Local: LocalConfig{
			DataFile:        v.GetString("local.data_file"),
			CredentialsFile: v.GetString("local.credentials_file"),
			Seed:            v.GetBool("local.seed"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("database.driver")),
			URL:             v.GetString("database.url"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		API: APIConfig{
			BaseURL: v.GetString("api.base_url"),
			Token:   v.GetString("api.token"),
			Timeout: v.GetDuration("api.timeout"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("jwt.secret"),
			ExpirationHours: v.GetInt("jwt.expiration_hours"),
			Issuer:          v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Channel:  v.GetString("redis.channel"),
		},
		Analytics: AnalyticsConfig{
			DefaultMonths:     v.GetInt("analytics.default_months"),
			LowStockThreshold: v.GetInt("analytics.low_stock_threshold"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "walldecor-admin"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "3000"
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "Asia/Jakarta"
	}
	if cfg.Backend.Kind == "" {
		cfg.Backend.Kind = BackendLocal
	}
	if cfg.Local.DataFile == "" {
		cfg.Local.DataFile = "data/app-data.json"
	}
	if cfg.Local.CredentialsFile == "" {
		cfg.Local.CredentialsFile = filepath.Join(filepath.Dir(cfg.Local.DataFile), "credentials.json")
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "walldecor"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/walldecor.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 100
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "your-super-secret-key-change-in-production"
	}
	if cfg.JWT.ExpirationHours == 0 {
		cfg.JWT.ExpirationHours = 24
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "walldecor-admin"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "walldecor:data_changed"
	}
	if cfg.Analytics.DefaultMonths == 0 {
		cfg.Analytics.DefaultMonths = 12
	}
	if cfg.Analytics.LowStockThreshold == 0 {
		cfg.Analytics.LowStockThreshold = 5
	}
}

func (c *Config) validate() error {
	switch c.Backend.Kind {
	case BackendLocal, BackendSQL:
	case BackendAPI:
		if c.API.BaseURL == "" {
			return fmt.Errorf("api.base_url is required for the api backend")
		}
		if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
			return fmt.Errorf("api.base_url is invalid: %w", err)
		}
	default:
		return fmt.Errorf("backend.kind must be one of local, sql, api (got %q)", c.Backend.Kind)
	}

	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be postgres or sqlite (got %q)", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Analytics.DefaultMonths < 1 || c.Analytics.DefaultMonths > 120 {
		return fmt.Errorf("analytics.default_months must be between 1 and 120")
	}
	if c.Analytics.LowStockThreshold < 0 {
		return fmt.Errorf("analytics.low_stock_threshold cannot be negative")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "your-super-secret-key-change-in-production" || len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be set to at least 32 characters in production")
		}
	}
	return nil
}

// Location resolves App.Timezone, falling back to WIB when tzdata is missing
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.FixedZone("WIB", 7*3600)
	}
	return loc
}

// DSN returns the postgres connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	q.Set("TimeZone", "Asia/Jakarta")
	u.RawQuery = q.Encode()
	return u.String()
}
