package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/daccred/warupay/models"
)

var issueAmount string

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue new supply to the distributing account",
	Long: `Issue mints the given amount from the issuing account into the
distributing account. The distributor's trustline is opened first when it
does not exist yet. Both secret keys must be configured.`,
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, logger := newService()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		res, err := svc.Issue(ctx, models.IssueRequest{Amount: issueAmount})
		if err != nil {
			logger.Fatalf("issue failed: %v", err)
		}
		fmt.Printf("%s\nTransaction: %s\nExplorer: %s\n", res.Message, res.TransactionID, res.ExplorerURL)
	},
}

func init() {
	issueCmd.Flags().StringVarP(&issueAmount, "amount", "a", "", "amount to issue, up to 7 decimal places")
	issueCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(issueCmd)
}
