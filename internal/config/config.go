package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Argon2   Argon2Config
	Vault    VaultConfig
	Locale   LocaleConfig
	Static   StaticConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrateOnStart  bool
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Host       string
	Port       string
	Password   string
	DB         int
	SummaryTTL time.Duration
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	SecretKey    string
	ExpiryHours  int
	CookieName   string
	SecureCookie bool
}

// Argon2Config holds password hashing parameters
type Argon2Config struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength int
}

type VaultConfig struct {
	MasterKey string
	Salt      string
}

// LocaleConfig controls how balances are rendered in user-facing messages
type LocaleConfig struct {
	Language string
	Currency string
}

type StaticConfig struct {
	LogoDir string
}

var envBindings = map[string]string{
	"server.port":               "PORT",
	"server.allowed_origins":    "ALLOWED_ORIGINS",
	"database.host":             "DATABASE_HOST",
	"database.port":             "DATABASE_PORT",
	"database.user":             "DATABASE_USER",
	"database.password":         "DATABASE_PASSWORD",
	"database.name":             "DATABASE_NAME",
	"database.ssl_mode":         "DATABASE_SSL_MODE",
	"database.migrate_on_start": "DATABASE_MIGRATE",
	"redis.host":                "REDIS_HOST",
	"redis.port":                "REDIS_PORT",
	"redis.password":            "REDIS_PASSWORD",
	"redis.db":                  "REDIS_DB",
	"redis.summary_ttl":         "REDIS_SUMMARY_TTL",
	"jwt.secret_key":            "JWT_SECRET_KEY",
	"jwt.expiry_hours":          "JWT_EXPIRY_HOURS",
	"jwt.cookie_name":           "JWT_COOKIE_NAME",
	"jwt.secure_cookie":         "JWT_SECURE_COOKIE",
	"vault.master_key":          "VAULT_MASTER_KEY",
	"vault.salt":                "VAULT_SALT",
	"locale.language":           "LOCALE_LANGUAGE",
	"locale.currency":           "LOCALE_CURRENCY",
	"static.logo_dir":           "STATIC_LOGO_DIR",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", "http://localhost:3000")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "card_ledger")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrate_on_start", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.summary_ttl", 10*time.Minute)

	v.SetDefault("jwt.expiry_hours", 24*7)
	v.SetDefault("jwt.cookie_name", "token")
	v.SetDefault("jwt.secure_cookie", false)

	v.SetDefault("argon2.time", 1)
	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.threads", 4)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("argon2.salt_length", 16)

	v.SetDefault("vault.salt", "card-ledger-vault")

	v.SetDefault("locale.language", "fa-IR")
	v.SetDefault("locale.currency", "Rial")

	v.SetDefault("static.logo_dir", "./static/logos")
}

// Load reads configuration from the .env file and the environment.
// A missing .env file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig() // .env is optional, the environment wins anyway

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			IdleTimeout:    v.GetDuration("server.idle_timeout"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			AllowedOrigins: splitList(v.GetString("server.allowed_origins")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			MigrateOnStart:  v.GetBool("database.migrate_on_start"),
		},
		Redis: RedisConfig{
			Host:       v.GetString("redis.host"),
			Port:       v.GetString("redis.port"),
			Password:   v.GetString("redis.password"),
			DB:         v.GetInt("redis.db"),
			SummaryTTL: v.GetDuration("redis.summary_ttl"),
		},
		JWT: JWTConfig{
			SecretKey:    v.GetString("jwt.secret_key"),
			ExpiryHours:  v.GetInt("jwt.expiry_hours"),
			CookieName:   v.GetString("jwt.cookie_name"),
			SecureCookie: v.GetBool("jwt.secure_cookie"),
		},
		Argon2: Argon2Config{
			Time:       v.GetUint32("argon2.time"),
			Memory:     v.GetUint32("argon2.memory"),
			Threads:    uint8(v.GetUint("argon2.threads")),
			KeyLength:  v.GetUint32("argon2.key_length"),
			SaltLength: v.GetInt("argon2.salt_length"),
		},
		Vault: VaultConfig{
			MasterKey: v.GetString("vault.master_key"),
			Salt:      v.GetString("vault.salt"),
		},
		Locale: LocaleConfig{
			Language: v.GetString("locale.language"),
			Currency: v.GetString("locale.currency"),
		},
		Static: StaticConfig{
			LogoDir: v.GetString("static.logo_dir"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return errors.New("JWT_SECRET_KEY environment variable is required")
	}
	if c.Vault.MasterKey == "" {
		return errors.New("VAULT_MASTER_KEY environment variable is required")
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("jwt expiry must be positive, got %d hours", c.JWT.ExpiryHours)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// TokenTTL is the lifetime of an issued session token
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpiryHours) * time.Hour
}
