package config

import (
	"context"
	"encoding/json"
	"fmt"
)

// SecretFetcher returns the raw string value stored under a secret id.
type SecretFetcher interface {
	GetSecretValue(ctx context.Context, secretID string) (string, error)
}

// Secrets is the JSON document expected in the configured secret.
type Secrets struct {
	DBPassword      string `json:"db_password"`
	DBConnection    string `json:"db_connection_string"`
	JWTSecret       string `json:"jwt_secret"`
	RedisPassword   string `json:"redis_password"`
	CoinGeckoAPIKey string `json:"coingecko_api_key"`
}

// ApplySecrets overrides credentials in cfg with the values found in the
// secret named by cfg.AWS.SecretID. Empty values in the secret are ignored.
func ApplySecrets(ctx context.Context, cfg *Config, fetcher SecretFetcher) error {
	if cfg.AWS.SecretID == "" {
		return nil
	}
	raw, err := fetcher.GetSecretValue(ctx, cfg.AWS.SecretID)
	if err != nil {
		return fmt.Errorf("failed to fetch secret %s: %w", cfg.AWS.SecretID, err)
	}

	var secrets Secrets
	if err := json.Unmarshal([]byte(raw), &secrets); err != nil {
		return fmt.Errorf("failed to decode secret %s: %w", cfg.AWS.SecretID, err)
	}

	if secrets.DBPassword != "" {
		cfg.Databases.SQL.Password = secrets.DBPassword
	}
	if secrets.DBConnection != "" {
		cfg.Databases.SQL.ConnectionString = secrets.DBConnection
	}
	if secrets.JWTSecret != "" {
		cfg.Auth.JWTSecret = secrets.JWTSecret
	}
	if secrets.RedisPassword != "" {
		cfg.Databases.Redis.Password = secrets.RedisPassword
	}
	if secrets.CoinGeckoAPIKey != "" {
		cfg.ExternalClients.CoinGecko.APIKey = secrets.CoinGeckoAPIKey
	}
	return nil
}
