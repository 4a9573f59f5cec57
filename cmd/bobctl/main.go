package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/daccred/warupay/config"
	"github.com/daccred/warupay/handlers"
	"github.com/daccred/warupay/ledger"
)

var (
	environment string
	configDir   string
)

var rootCmd = &cobra.Command{
	Use:   "bobctl",
	Short: "Operator tool for the BOB asset",
	Long: `bobctl runs the administrative operations of the asset service that are
not exposed over HTTP: checking the configured accounts, issuing supply to
the distributor and opening trustlines.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&environment, "env", "e", "development", "configuration environment (development, production, test)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "config/", "directory holding the yaml configuration files")
}

// newService loads the configuration for the selected environment and builds
// the asset service on top of a Horizon client.
func newService() (*handlers.Service, ledger.Client, *logrus.Entry) {
	logger := logrus.WithField("service", "bobctl")

	v, err := config.Load(environment, configDir)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	cfg, err := config.ServiceConfig(v)
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	client := ledger.NewHorizon(v.GetString("stellar.horizon_url"), logger.WithField("component", "horizon"))
	svc, err := handlers.NewService(cfg, client, logger)
	if err != nil {
		logger.Fatalf("Failed to create asset service: %v", err)
	}
	return svc, client, logger
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
