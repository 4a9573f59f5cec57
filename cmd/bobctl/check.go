package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/daccred/warupay/handlers"
	"github.com/daccred/warupay/ledger"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the ledger endpoint and the configured accounts",
	Long: `Check pings the Horizon endpoint, then loads the issuing account and the
distributing account and verifies the distributor trusts the asset. It exits
with a non-zero status on the first failure.`,
	Run: func(cmd *cobra.Command, args []string) {
		svc, client, logger := newService()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		logger.Info("Testing ledger endpoint...")
		if err := svc.Ping(ctx); err != nil {
			logger.Fatalf("failed to reach ledger endpoint: %v", err)
		}
		logger.Info("Ledger endpoint reachable")

		info := svc.AssetInfo()
		if info.Issuer == "" {
			logger.Fatal("no issuing identity configured")
		}
		issuer, err := client.LoadAccount(ctx, info.Issuer)
		if err != nil {
			logger.Fatalf("failed to load issuing account %s: %v", info.Issuer, err)
		}
		logger.WithField("sequence", issuer.Sequence).Infof("Issuing account %s exists", issuer.ID)

		if info.Distributor == "" {
			logger.Warn("No distributing secret configured, skipping distributor checks")
			return
		}
		verifier := handlers.NewAccountVerifier(client)
		status, err := verifier.VerifyAccountReady(ctx, info.Distributor, ledger.Asset{Code: info.Code, Issuer: info.Issuer})
		if err != nil {
			logger.Fatalf("distributing account %s is not ready: %v", info.Distributor, err)
		}
		logger.WithField("balance", status.Balance.String()).
			Infof("Distributing account %s trusts %s", info.Distributor, info.Code)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
