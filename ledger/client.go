package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/stellar/go/txnbuild"
)

// ErrAccountNotFound is returned by LoadAccount when the ledger has no record
// of the address.
var ErrAccountNotFound = errors.New("account not found")

// Client is the subset of the remote ledger API this service depends on.
type Client interface {
	LoadAccount(ctx context.Context, accountID string) (*Account, error)
	FetchBaseFee(ctx context.Context) (int64, error)
	SubmitTransaction(ctx context.Context, tx *txnbuild.Transaction) (*SubmitResult, error)
}

// Asset identifies a ledger asset by code and issuer. The zero value is the
// native currency.
type Asset struct {
	Code   string `json:"code"`
	Issuer string `json:"issuer,omitempty"`
}

var Native = Asset{}

func (a Asset) IsNative() bool { return a.Code == "" && a.Issuer == "" }

func (a Asset) String() string {
	if a.IsNative() {
		return "native"
	}
	return a.Code + ":" + a.Issuer
}

// ToTxnbuild converts the asset into its txnbuild representation.
func (a Asset) ToTxnbuild() txnbuild.Asset {
	if a.IsNative() {
		return txnbuild.NativeAsset{}
	}
	return txnbuild.CreditAsset{Code: a.Code, Issuer: a.Issuer}
}

type Balance struct {
	AssetType string `json:"asset_type"`
	Code      string `json:"asset_code,omitempty"`
	Issuer    string `json:"asset_issuer,omitempty"`
	Amount    string `json:"balance"`
}

func (b Balance) IsNative() bool { return b.AssetType == "native" }

// Matches reports whether the balance entry holds exactly the given asset.
// Code alone is never enough.
func (b Balance) Matches(a Asset) bool {
	if a.IsNative() {
		return b.IsNative()
	}
	return !b.IsNative() && b.Code == a.Code && b.Issuer == a.Issuer
}

type Account struct {
	ID       string    `json:"account_id"`
	Sequence int64     `json:"sequence"`
	Balances []Balance `json:"balances"`
}

// Balance returns the balance entry for the asset, if the account holds one.
func (a *Account) Balance(asset Asset) (Balance, bool) {
	for _, b := range a.Balances {
		if b.Matches(asset) {
			return b, true
		}
	}
	return Balance{}, false
}

type SubmitResult struct {
	Hash       string `json:"hash"`
	Ledger     int32  `json:"ledger"`
	Successful bool   `json:"successful"`
}

// ResultCodes carries the ledger-specific failure codes of a rejected
// transaction.
type ResultCodes struct {
	TransactionCode      string   `json:"transaction"`
	InnerTransactionCode string   `json:"inner_transaction,omitempty"`
	OperationCodes       []string `json:"operations,omitempty"`
}

// Has reports whether code appears as the transaction or any operation code.
func (rc *ResultCodes) Has(code string) bool {
	if rc == nil {
		return false
	}
	if rc.TransactionCode == code || rc.InnerTransactionCode == code {
		return true
	}
	for _, op := range rc.OperationCodes {
		if op == code {
			return true
		}
	}
	return false
}

// SubmitError is a structured submission failure reported by the ledger.
type SubmitError struct {
	Status      int
	Title       string
	ResultCodes *ResultCodes
	Err         error
}

func (e *SubmitError) Error() string {
	if e.ResultCodes != nil {
		return fmt.Sprintf("transaction submission failed (status %d): %s %v",
			e.Status, e.ResultCodes.TransactionCode, e.ResultCodes.OperationCodes)
	}
	return fmt.Sprintf("transaction submission failed (status %d): %s", e.Status, e.Title)
}

func (e *SubmitError) Unwrap() error { return e.Err }
