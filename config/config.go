package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Host     HostConfig     `mapstructure:"host"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Events   EventsConfig   `mapstructure:"events"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// MigrateURL returns the connection string in the form expected by the
// golang-migrate pgx/v5 driver.
func (d DatabaseConfig) MigrateURL() string {
	return "pgx5" + strings.TrimPrefix(d.DSN(), "postgres")
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	// KeyPrefix namespaces every key the ledger writes, so several ledgers
	// can share one Redis database.
	KeyPrefix string `mapstructure:"key_prefix"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// LedgerConfig configures the multisender ledger itself.
type LedgerConfig struct {
	// SelfAccount is the ledger's own account id. Completion callbacks are
	// only honoured when invoked by this account.
	SelfAccount string `mapstructure:"self_account"`
	// CombinedLogThreshold is the batch size from which transfer log lines
	// are accumulated into a single message.
	CombinedLogThreshold int `mapstructure:"combined_log_threshold"`
	// CallbackSecret signs completion callbacks posted by an external host.
	CallbackSecret string        `mapstructure:"callback_secret"`
	LockExpiry     time.Duration `mapstructure:"lock_expiry"`
	LockTries      int           `mapstructure:"lock_tries"`
}

// HostConfig configures the transfer execution host.
type HostConfig struct {
	Mode         string        `mapstructure:"mode"` // simulated, http
	Workers      int           `mapstructure:"workers"`
	PayoutURL    string        `mapstructure:"payout_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	// FailRecipients makes the simulated host fail transfers to these accounts.
	FailRecipients []string      `mapstructure:"fail_recipients"`
	PollTimeout    time.Duration `mapstructure:"poll_timeout"`
	// ReconcileAttempts bounds how often a completion is handed to the
	// reconciler after transient failures before it is dead-lettered.
	ReconcileAttempts int           `mapstructure:"reconcile_attempts"`
	ReconcileBackoff  time.Duration `mapstructure:"reconcile_backoff"`
}

// StorageConfig selects the adapters behind the ledger ports.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // memory, postgres
	Queue  string `mapstructure:"queue"`  // memory, redis
}

type EventsConfig struct {
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: MSL_ (MultiSender Ledger).
// Nested keys use underscore: MSL_DATABASE_HOST, MSL_LEDGER_SELF_ACCOUNT, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "multisender")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 0)
	v.SetDefault("redis.key_prefix", "msl")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "pooled-multisender")
	v.SetDefault("ledger.self_account", "multisender.near")
	v.SetDefault("ledger.combined_log_threshold", 100)
	v.SetDefault("ledger.callback_secret", "")
	v.SetDefault("ledger.lock_expiry", "30s")
	v.SetDefault("ledger.lock_tries", 32)
	v.SetDefault("host.mode", "simulated")
	v.SetDefault("host.workers", 8)
	v.SetDefault("host.payout_url", "")
	v.SetDefault("host.timeout", "10s")
	v.SetDefault("host.retry_backoff", "500ms")
	v.SetDefault("host.max_attempts", 3)
	v.SetDefault("host.fail_recipients", []string{})
	v.SetDefault("host.poll_timeout", "2s")
	v.SetDefault("host.reconcile_attempts", 5)
	v.SetDefault("host.reconcile_backoff", "1s")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.queue", "memory")
	v.SetDefault("events.kafka.enabled", false)
	v.SetDefault("events.kafka.brokers", "localhost:9092")
	v.SetDefault("events.kafka.topic", "multisender.transfers")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: MSL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("MSL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	switch c.Storage.Queue {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported queue backend %q", c.Storage.Queue)
	}
	switch c.Host.Mode {
	case "simulated":
	case "http":
		if c.Host.PayoutURL == "" {
			return fmt.Errorf("host.payout_url is required in http mode")
		}
	default:
		return fmt.Errorf("unsupported host mode %q", c.Host.Mode)
	}
	if c.Ledger.SelfAccount == "" {
		return fmt.Errorf("ledger.self_account is required")
	}
	if c.Ledger.CombinedLogThreshold <= 0 {
		return fmt.Errorf("ledger.combined_log_threshold must be positive")
	}
	return nil
}
