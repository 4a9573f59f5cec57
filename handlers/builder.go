package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/amount"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"

	"github.com/daccred/warupay/ledger"
)

const DefaultTxTimeoutSeconds int64 = 30

var plainDecimal = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Operation is one step of a transaction built by TxBuilder.
type Operation interface {
	toTxnbuild() (txnbuild.Operation, error)
}

// EstablishTrust opens a trustline from the source account to Asset.
type EstablishTrust struct {
	Asset ledger.Asset
}

func (o EstablishTrust) toTxnbuild() (txnbuild.Operation, error) {
	if o.Asset.IsNative() {
		return nil, fmt.Errorf("cannot establish trust to the native asset")
	}
	line, err := txnbuild.CreditAsset{Code: o.Asset.Code, Issuer: o.Asset.Issuer}.ToChangeTrustAsset()
	if err != nil {
		return nil, fmt.Errorf("invalid trustline asset %s: %w", o.Asset, err)
	}
	return &txnbuild.ChangeTrust{Line: line, Limit: txnbuild.MaxTrustlineLimit}, nil
}

// Pay moves Amount of Asset from the source account to Destination. Amount is
// a decimal string and is never converted through floating point.
type Pay struct {
	Destination string
	Asset       ledger.Asset
	Amount      string
}

func (o Pay) toTxnbuild() (txnbuild.Operation, error) {
	if !strkey.IsValidEd25519PublicKey(o.Destination) {
		return nil, fmt.Errorf("invalid destination %q", o.Destination)
	}
	normalized, err := ParseAmount(o.Amount)
	if err != nil {
		return nil, err
	}
	return &txnbuild.Payment{Destination: o.Destination, Amount: normalized, Asset: o.Asset.ToTxnbuild()}, nil
}

// ParseAmount validates a positive decimal amount representable with the
// ledger's seven digits of precision and returns it trimmed of whitespace.
func ParseAmount(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !plainDecimal.MatchString(s) {
		return "", fmt.Errorf("amount %q is not a plain decimal number", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("amount %q is not a decimal number", s)
	}
	if !d.IsPositive() {
		return "", fmt.Errorf("amount must be positive, got %s", s)
	}
	if _, err := amount.Parse(s); err != nil {
		return "", fmt.Errorf("amount %q exceeds ledger precision or range: %w", s, err)
	}
	return s, nil
}

// TxBuilder assembles transactions against a source account's current
// sequence number and the network's current base fee.
type TxBuilder struct {
	client            ledger.Client
	networkPassphrase string
	timeoutSeconds    int64
}

func NewTxBuilder(client ledger.Client, networkPassphrase string, timeoutSeconds int64) *TxBuilder {
	if timeoutSeconds <= 0 {
		timeoutSeconds = DefaultTxTimeoutSeconds
	}
	return &TxBuilder{client: client, networkPassphrase: networkPassphrase, timeoutSeconds: timeoutSeconds}
}

// Build returns an unsigned transaction consuming the next sequence number
// of source. The fee is fetched on every call.
func (b *TxBuilder) Build(ctx context.Context, source *ledger.Account, ops []Operation) (*txnbuild.Transaction, error) {
	if source == nil {
		return nil, newError(InvalidArgument, "build", "source account is required", nil)
	}
	if len(ops) == 0 {
		return nil, newError(InvalidArgument, "build", "transaction needs at least one operation", nil)
	}

	txOps := make([]txnbuild.Operation, 0, len(ops))
	for _, op := range ops {
		txOp, err := op.toTxnbuild()
		if err != nil {
			return nil, newError(InvalidArgument, "build", "invalid operation", err)
		}
		txOps = append(txOps, txOp)
	}

	fee, err := b.client.FetchBaseFee(ctx)
	if err != nil {
		return nil, classifyLedgerError("build", err)
	}
	if fee < txnbuild.MinBaseFee {
		fee = txnbuild.MinBaseFee
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: source.ID, Sequence: source.Sequence},
		IncrementSequenceNum: true,
		Operations:           txOps,
		BaseFee:              fee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(b.timeoutSeconds)},
	})
	if err != nil {
		return nil, newError(InvalidArgument, "build", "failed to build transaction", err)
	}
	return tx, nil
}

// Sign signs tx for the configured network. Whether the signer set satisfies
// the source account's thresholds is decided by the ledger at submission.
func (b *TxBuilder) Sign(tx *txnbuild.Transaction, signers ...*keypair.Full) (*txnbuild.Transaction, error) {
	signed, err := tx.Sign(b.networkPassphrase, signers...)
	if err != nil {
		return nil, newError(ConfigurationError, "sign", "failed to sign transaction", err)
	}
	return signed, nil
}

// Hash returns the hex hash of tx on the configured network.
func (b *TxBuilder) Hash(tx *txnbuild.Transaction) (string, error) {
	return tx.HashHex(b.networkPassphrase)
}
