package handlers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/daccred/warupay/ledger"
)

// AccountStatus is the read-only view of an account relative to one asset.
type AccountStatus struct {
	Exists       bool
	HasTrustline bool
	Balance      decimal.Decimal
	Account      *ledger.Account
}

// AccountVerifier checks that an account can receive an asset before any
// transaction is built for it.
type AccountVerifier struct {
	client ledger.Client
}

func NewAccountVerifier(client ledger.Client) *AccountVerifier {
	return &AccountVerifier{client: client}
}

// VerifyAccountReady loads accountID once and fails with AccountNotFound or
// MissingTrustline when it cannot hold asset.
func (v *AccountVerifier) VerifyAccountReady(ctx context.Context, accountID string, asset ledger.Asset) (*AccountStatus, error) {
	account, err := v.client.LoadAccount(ctx, accountID)
	if err != nil {
		return nil, classifyLedgerError("verify account", err)
	}

	status := &AccountStatus{Exists: true, Account: account, Balance: decimal.Zero}
	balance, ok := account.Balance(asset)
	if !ok {
		if asset.IsNative() {
			status.HasTrustline = true
			return status, nil
		}
		return status, newError(MissingTrustline, "verify account",
			fmt.Sprintf("account %s has no trustline for %s", accountID, asset.Code), nil)
	}
	status.HasTrustline = true
	if status.Balance, err = decimal.NewFromString(balance.Amount); err != nil {
		return nil, newError(KindUnknown, "verify account", "ledger returned a malformed balance", err)
	}
	return status, nil
}
