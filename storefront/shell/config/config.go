package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite  = "sqlite"
	DriverPGXPool = "pgxpool"
	DriverSQLDB   = "sqldb"
	DriverSQLX    = "sqlx"

	MetricsBackendPrometheus = "prometheus"
	MetricsBackendOTel       = "otel"
	MetricsBackendNone       = "none"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete service configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Database      DatabaseConfig      `yaml:"database"`
	Auth          AuthConfig          `yaml:"auth"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Invoices      InvoicesConfig      `yaml:"invoices"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	SQLitePath      string        `yaml:"sqlite_path"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	Migrate         bool          `yaml:"migrate"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type NotificationsConfig struct {
	KafkaBrokers  []string      `yaml:"kafka_brokers"`
	Topic         string        `yaml:"topic"`
	AdminEmail    string        `yaml:"admin_email"`
	RelayInterval time.Duration `yaml:"relay_interval"`
	BatchSize     int           `yaml:"batch_size"`
	MaxAttempts   int           `yaml:"max_attempts"`
}

type InvoicesConfig struct {
	Directory     string `yaml:"directory"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type CatalogConfig struct {
	// DSN of the catalog PostgreSQL database read through GORM. Empty means SeedFile is used.
	DSN      string `yaml:"dsn"`
	SeedFile string `yaml:"seed_file"`
}

type ObservabilityConfig struct {
	ServiceName    string `yaml:"service_name"`
	LogLevel       string `yaml:"log_level"`
	MetricsBackend string `yaml:"metrics_backend"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
}

// Default returns the configuration used when neither a file nor environment variables set a value.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  10 << 20,
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			SQLitePath:      "storefront.db",
			MaxConns:        8,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 5 * time.Minute,
			ConnectTimeout:  5 * time.Second,
			Migrate:         true,
		},
		Notifications: NotificationsConfig{
			Topic:         "storefront.order-notifications",
			RelayInterval: 2 * time.Second,
			BatchSize:     50,
			MaxAttempts:   8,
		},
		Invoices: InvoicesConfig{
			Directory:     "invoices",
			PublicBaseURL: "/factures",
		},
		Observability: ObservabilityConfig{
			ServiceName:    "storefront-orders",
			LogLevel:       "info",
			MetricsBackend: MetricsBackendPrometheus,
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty) on top of Default,
// then applies the environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("opening config file: %w", err)
		}
		defer func() { _ = file.Close() }()

		if err = Decode(file, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Decode reads YAML into cfg; keys missing from the document keep their current values.
func Decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(ErrInvalidConfig, fmt.Errorf("decoding yaml: %w", err))
	}

	return nil
}

// ApplyEnv overrides cfg with the STOREFRONT_* variables found through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	stringVars := map[string]*string{
		"STOREFRONT_HTTP_ADDR":           &cfg.HTTP.Addr,
		"STOREFRONT_DATABASE_DRIVER":     &cfg.Database.Driver,
		"STOREFRONT_DATABASE_DSN":        &cfg.Database.DSN,
		"STOREFRONT_SQLITE_PATH":         &cfg.Database.SQLitePath,
		"STOREFRONT_JWT_SECRET":          &cfg.Auth.JWTSecret,
		"STOREFRONT_JWT_ISSUER":          &cfg.Auth.Issuer,
		"STOREFRONT_NOTIFICATIONS_TOPIC": &cfg.Notifications.Topic,
		"STOREFRONT_ADMIN_EMAIL":         &cfg.Notifications.AdminEmail,
		"STOREFRONT_INVOICES_DIR":        &cfg.Invoices.Directory,
		"STOREFRONT_INVOICES_BASE_URL":   &cfg.Invoices.PublicBaseURL,
		"STOREFRONT_CATALOG_DSN":         &cfg.Catalog.DSN,
		"STOREFRONT_CATALOG_SEED_FILE":   &cfg.Catalog.SeedFile,
		"STOREFRONT_LOG_LEVEL":           &cfg.Observability.LogLevel,
		"STOREFRONT_METRICS_BACKEND":     &cfg.Observability.MetricsBackend,
		"STOREFRONT_OTLP_ENDPOINT":       &cfg.Observability.OTLPEndpoint,
	}

	for name, target := range stringVars {
		if v, ok := lookup(name); ok {
			*target = v
		}
	}

	if v, ok := lookup("STOREFRONT_KAFKA_BROKERS"); ok {
		cfg.Notifications.KafkaBrokers = splitList(v)
	}

	if v, ok := lookup("STOREFRONT_DATABASE_MIGRATE"); ok {
		migrate, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Join(ErrInvalidConfig, fmt.Errorf("STOREFRONT_DATABASE_MIGRATE: %w", err))
		}

		cfg.Database.Migrate = migrate
	}

	if v, ok := lookup("STOREFRONT_RELAY_INTERVAL"); ok {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return errors.Join(ErrInvalidConfig, fmt.Errorf("STOREFRONT_RELAY_INTERVAL: %w", err))
		}

		cfg.Notifications.RelayInterval = interval
	}

	return nil
}

// Validate checks the combinations the service cannot start without.
func (c Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("database.sqlite_path is required for the sqlite driver"))
		}
	case DriverPGXPool, DriverSQLDB, DriverSQLX:
		if c.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("database.dsn is required for the %s driver", c.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}

	if c.Notifications.AdminEmail == "" {
		errs = append(errs, errors.New("notifications.admin_email is required"))
	}

	if c.Notifications.BatchSize < 1 || c.Notifications.MaxAttempts < 1 || c.Notifications.RelayInterval <= 0 {
		errs = append(errs, errors.New("notifications batch_size, max_attempts, and relay_interval must be positive"))
	}

	switch c.Observability.MetricsBackend {
	case MetricsBackendPrometheus, MetricsBackendOTel, MetricsBackendNone:
	default:
		errs = append(errs, fmt.Errorf("unsupported observability.metrics_backend %q", c.Observability.MetricsBackend))
	}

	if c.Observability.MetricsBackend == MetricsBackendOTel && c.Observability.OTLPEndpoint == "" {
		errs = append(errs, errors.New("observability.otlp_endpoint is required for the otel metrics backend"))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}

	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}

	return result
}
