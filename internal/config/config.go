package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	CORS     CORSConfig     `mapstructure:"cors"`
	TAXII    TAXIIConfig    `mapstructure:"taxii"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	VersionFile string `mapstructure:"version_file"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// TAXIIConfig configures the persistence backend: which service definitions
// to load, which community and publish channel inbound pushes land in, and
// the submitter blacklist applied on poll.
type TAXIIConfig struct {
	ServicesFile  string   `mapstructure:"services_file"`
	Community     string   `mapstructure:"community"`
	Publisher     string   `mapstructure:"publisher"`
	BlackAccounts []string `mapstructure:"black_accounts"`
	StagingDir    string   `mapstructure:"staging_dir"`
}

type IngestConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/stip-taxii")
	}

	v.SetEnvPrefix("STIP_TAXII")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("database.host", "STIP_TAXII_DATABASE_HOST")
	v.BindEnv("database.port", "STIP_TAXII_DATABASE_PORT")
	v.BindEnv("database.user", "STIP_TAXII_DATABASE_USER")
	v.BindEnv("database.password", "STIP_TAXII_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "STIP_TAXII_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "STIP_TAXII_DATABASE_SSLMODE")
	v.BindEnv("redis.host", "STIP_TAXII_REDIS_HOST")
	v.BindEnv("redis.port", "STIP_TAXII_REDIS_PORT")
	v.BindEnv("redis.password", "STIP_TAXII_REDIS_PASSWORD")
	v.BindEnv("taxii.community", "STIP_TAXII_TAXII_COMMUNITY")
	v.BindEnv("taxii.publisher", "STIP_TAXII_TAXII_PUBLISHER")
	v.BindEnv("ingest.url", "STIP_TAXII_INGEST_URL")
	v.BindEnv("ingest.api_key", "STIP_TAXII_INGEST_API_KEY")
	v.BindEnv("app.environment", "STIP_TAXII_APP_ENVIRONMENT")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

// Validate enforces the settings the backend cannot start without. A
// missing community or publish channel would silently misroute every
// inbound push, so both are fatal here rather than at first use.
func (c *Config) Validate() error {
	var errs []error
	if c.TAXII.ServicesFile == "" {
		errs = append(errs, errors.New("taxii.services_file is required"))
	}
	if c.TAXII.Community == "" {
		errs = append(errs, errors.New("taxii.community is required"))
	}
	if c.TAXII.Publisher == "" {
		errs = append(errs, errors.New("taxii.publisher is required"))
	}
	if c.Ingest.URL == "" {
		errs = append(errs, errors.New("ingest.url is required"))
	}
	return errors.Join(errs...)
}
