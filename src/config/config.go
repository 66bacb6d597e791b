package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Auth            AuthConfig           `mapstructure:"auth"`
	AWS             AWSConfig            `mapstructure:"aws"`
	Worker          WorkerConfig         `mapstructure:"worker"`
	Logging         LoggingConfig        `mapstructure:"logging"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type ServiceConfig struct {
	Type           ServiceType   `mapstructure:"type"`
	Port           string        `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
	AllowedOrigins []string      `mapstructure:"allowedOrigins"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Driver           string `mapstructure:"driver"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
	MaxConns         int32  `mapstructure:"maxConns"`
	MinConns         int32  `mapstructure:"minConns"`
}

// DSN returns the connection string, building one from the discrete fields
// when none is configured.
func (c SQLConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.Username, c.Password, c.Database, c.Port)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	TLS      bool   `mapstructure:"tls"`
}

type ExternalClientConfig struct {
	CoinGecko CoinGeckoConfig `mapstructure:"coingecko"`
}

type CoinGeckoConfig struct {
	BaseURL          string        `mapstructure:"baseUrl"`
	APIKey           string        `mapstructure:"apiKey"`
	Timeout          time.Duration `mapstructure:"timeout"`
	CacheTTL         time.Duration `mapstructure:"cacheTtl"`
	BreakerThreshold int           `mapstructure:"breakerThreshold"`
	BreakerReset     time.Duration `mapstructure:"breakerReset"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwtSecret"`
	TokenTTL  time.Duration `mapstructure:"tokenTtl"`
	// GoogleClientID is the expected audience of Google ID tokens.
	GoogleClientID string `mapstructure:"googleClientId"`
}

type AWSConfig struct {
	Region   string `mapstructure:"region"`
	SecretID string `mapstructure:"secretId"`
	Endpoint string `mapstructure:"endpoint"`
}

type WorkerConfig struct {
	PriceRefreshCron string `mapstructure:"priceRefreshCron"`
	ImportCount      int    `mapstructure:"importCount"`
	BatchSize        int    `mapstructure:"batchSize"`
	Concurrency      int    `mapstructure:"concurrency"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	ToFile   bool   `mapstructure:"toFile"`
	FilePath string `mapstructure:"filePath"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.type", string(API))
	v.SetDefault("service.port", "8000")
	v.SetDefault("service.requestTimeout", "30s")
	v.SetDefault("databases.sql.maxConns", 10)
	v.SetDefault("databases.sql.minConns", 1)
	v.SetDefault("externalClients.coingecko.baseUrl", "https://api.coingecko.com/api/v3")
	v.SetDefault("externalClients.coingecko.timeout", "10s")
	v.SetDefault("externalClients.coingecko.cacheTtl", "60s")
	v.SetDefault("externalClients.coingecko.breakerThreshold", 5)
	v.SetDefault("externalClients.coingecko.breakerReset", "30s")
	v.SetDefault("auth.tokenTtl", "24h")
	v.SetDefault("worker.priceRefreshCron", "*/5 * * * *")
	v.SetDefault("worker.importCount", 100)
	v.SetDefault("worker.batchSize", 250)
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("logging.level", "info")
}

// LoadConfig reads appsettings.yaml from path and, when env is not empty,
// merges appsettings.<env>.yaml on top of it. Environment variables such as
// DATABASES_SQL_HOST override both files.
func LoadConfig(path string, env string) (*Config, error) {
	var cfg Config

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("appsettings")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	if env != "" {
		v.SetConfigName("appsettings." + env)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings a running service cannot do without.
func (c *Config) Validate() error {
	if c.Service.Type != API && c.Service.Type != WORKER {
		return fmt.Errorf("unknown service type %q", c.Service.Type)
	}
	if c.Service.Type == API && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required for the API service")
	}
	if c.ExternalClients.CoinGecko.BaseURL == "" {
		return errors.New("externalClients.coingecko.baseUrl is required")
	}
	return nil
}
