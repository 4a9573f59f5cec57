package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/stellar/go/keypair"
)

var trustSecret string

var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Open a trustline to the asset for an account",
	Long: `Trust opens a trustline from the account owning the given secret key to
the configured asset. The secret can also be passed in the
BOB_HOLDER_SECRET environment variable. Nothing is submitted when the
trustline already exists.`,
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, logger := newService()

		secret := trustSecret
		if secret == "" {
			secret = os.Getenv("BOB_HOLDER_SECRET")
		}
		if secret == "" {
			logger.Fatal("a holder secret key is required (--secret or BOB_HOLDER_SECRET)")
		}
		holder, err := keypair.ParseFull(secret)
		if err != nil {
			logger.Fatal("holder secret key is malformed")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		res, err := svc.OpenTrustline(ctx, holder)
		if err != nil {
			logger.Fatalf("trustline failed: %v", err)
		}
		fmt.Println(res.Message)
		if res.TransactionID != "" {
			fmt.Printf("Transaction: %s\nExplorer: %s\n", res.TransactionID, res.ExplorerURL)
		}
	},
}

func init() {
	trustCmd.Flags().StringVarP(&trustSecret, "secret", "s", "", "secret key of the account opening the trustline")
	rootCmd.AddCommand(trustCmd)
}
