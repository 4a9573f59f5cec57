package ledger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/txnbuild"
)

// Horizon adapts a Horizon client to the Client interface.
type Horizon struct {
	client horizonclient.ClientInterface
	logger *logrus.Entry
}

// NewHorizon builds an adapter talking to the Horizon server at url.
func NewHorizon(url string, logger *logrus.Entry) *Horizon {
	return NewHorizonWithClient(&horizonclient.Client{
		HorizonURL: url,
		HTTP:       &http.Client{Timeout: 60 * time.Second},
	}, logger)
}

func NewHorizonWithClient(client horizonclient.ClientInterface, logger *logrus.Entry) *Horizon {
	return &Horizon{client: client, logger: logger}
}

func (h *Horizon) LoadAccount(ctx context.Context, accountID string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acc, err := h.client.AccountDetail(horizonclient.AccountRequest{AccountID: accountID})
	if err != nil {
		if hErr := horizonclient.GetError(err); hErr != nil && hErr.Problem.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", accountID, ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}

	account := &Account{ID: acc.AccountID, Sequence: acc.Sequence}
	for _, b := range acc.Balances {
		account.Balances = append(account.Balances, Balance{
			AssetType: b.Asset.Type,
			Code:      b.Asset.Code,
			Issuer:    b.Asset.Issuer,
			Amount:    b.Balance,
		})
	}
	h.logger.Debugf("Loaded account %s at sequence %d", account.ID, account.Sequence)
	return account, nil
}

// FetchBaseFee returns the base fee of the last closed ledger, in stroops.
func (h *Horizon) FetchBaseFee(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	stats, err := h.client.FeeStats()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch fee stats: %w", err)
	}
	return stats.LastLedgerBaseFee, nil
}

func (h *Horizon) SubmitTransaction(ctx context.Context, tx *txnbuild.Transaction) (*SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := h.client.SubmitTransactionWithOptions(tx, horizonclient.SubmitTxOpts{SkipMemoRequiredCheck: true})
	if err != nil {
		hErr := horizonclient.GetError(err)
		if hErr == nil {
			return nil, fmt.Errorf("failed to submit transaction: %w", err)
		}
		submitErr := &SubmitError{Status: hErr.Problem.Status, Title: hErr.Problem.Title, Err: err}
		if codes, cErr := hErr.ResultCodes(); cErr == nil && codes != nil {
			submitErr.ResultCodes = &ResultCodes{
				TransactionCode:      codes.TransactionCode,
				InnerTransactionCode: codes.InnerTransactionCode,
				OperationCodes:       codes.OperationCodes,
			}
		}
		return nil, submitErr
	}
	return &SubmitResult{Hash: resp.Hash, Ledger: resp.Ledger, Successful: resp.Successful}, nil
}
