package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/stellar/go/network"
	"github.com/subosito/gotenv"

	"github.com/daccred/warupay/handlers"
)

var config *viper.Viper

// Init is an exported method that takes the environment, starts viper
// (external lib) and keeps the merged configuration for GetConfig.
func Init(env string) {
	var err error
	config, err = Load(env, "config/")
	if err != nil {
		log.Fatal(err)
	}
}

// Load reads default.yaml from dir, merges the file for env on top of it
// and binds the environment variables holding secrets. Local environments
// also read a .env file from the working directory when one exists.
func Load(env, dir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("default")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error on parsing default configuration file: %w", err)
	}

	// Map environment names to config files
	configName := env
	switch env {
	case "development":
		configName = "testnet"
	case "production":
		configName = "mainnet"
	// Keep other environments as-is (e.g., "test")
	}

	envConfig := viper.New()
	envConfig.SetConfigType("yaml")
	envConfig.AddConfigPath(dir)
	envConfig.SetConfigName(configName)
	if err := envConfig.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error on parsing %s configuration file: %w", configName, err)
	}
	if err := v.MergeConfigMap(envConfig.AllSettings()); err != nil {
		return nil, fmt.Errorf("error on merging %s configuration: %w", configName, err)
	}

	if env != "production" {
		if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error on reading .env: %w", err)
		}
	}
	bindEnv(v)
	return v, nil
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("stellar.issuing_secret_key", "STELLAR_ISSUER_SECRET")
	v.BindEnv("stellar.distributing_secret_key", "STELLAR_DISTRIBUTOR_SECRET")
	v.BindEnv("stellar.issuing_public_key", "STELLAR_ISSUER_PUBLIC")
	v.BindEnv("stellar.horizon_url", "STELLAR_HORIZON_URL")
	v.BindEnv("stellar.network", "STELLAR_NETWORK")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("log.level", "LOG_LEVEL")
}

func GetConfig() *viper.Viper {
	return config
}

// NetworkPassphrase resolves the passphrase for a network kind. The kind is
// configured explicitly and never inferred from the Horizon URL.
func NetworkPassphrase(kind string) (string, error) {
	switch strings.ToLower(kind) {
	case "testnet", "test":
		return network.TestNetworkPassphrase, nil
	case "public", "mainnet", "pubnet":
		return network.PublicNetworkPassphrase, nil
	case "futurenet":
		return network.FutureNetworkPassphrase, nil
	}
	return "", fmt.Errorf("unknown stellar network %q", kind)
}

// ServiceConfig builds the handlers configuration from v. Missing secrets
// are not an error here: each operation checks the authorities it needs.
func ServiceConfig(v *viper.Viper) (*handlers.Config, error) {
	if v.GetString("stellar.horizon_url") == "" {
		return nil, errors.New("stellar.horizon_url is not configured")
	}

	kind := strings.ToLower(v.GetString("stellar.network"))
	passphrase := v.GetString("stellar.network_passphrase")
	if passphrase == "" {
		var err error
		if passphrase, err = NetworkPassphrase(kind); err != nil {
			return nil, err
		}
	}
	if kind == "mainnet" || kind == "pubnet" {
		kind = "public"
	}

	return &handlers.Config{
		NetworkKind:           kind,
		NetworkPassphrase:     passphrase,
		AssetCode:             v.GetString("stellar.asset_code"),
		IssuingSecretKey:      strings.TrimSpace(v.GetString("stellar.issuing_secret_key")),
		DistributingSecretKey: strings.TrimSpace(v.GetString("stellar.distributing_secret_key")),
		IssuingPublicKey:      strings.TrimSpace(v.GetString("stellar.issuing_public_key")),
		TxTimeoutSeconds:      v.GetInt64("stellar.tx_timeout_seconds"),
		ExplorerURL:           v.GetString("stellar.explorer_url"),
		Retry: handlers.RetryPolicy{
			MaxAttempts: v.GetInt("retry.max_attempts"),
			Backoff:     time.Duration(v.GetInt64("retry.backoff_ms")) * time.Millisecond,
		},
		LogLevel: v.GetString("log.level"),
	}, nil
}
