package handlers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/daccred/warupay/ledger"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) LoadAccount(ctx context.Context, accountID string) (*ledger.Account, error) {
	args := m.Called(accountID)
	account, _ := args.Get(0).(*ledger.Account)
	return account, args.Error(1)
}

func (m *mockLedger) FetchBaseFee(ctx context.Context) (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedger) SubmitTransaction(ctx context.Context, tx *txnbuild.Transaction) (*ledger.SubmitResult, error) {
	args := m.Called(tx)
	res, _ := args.Get(0).(*ledger.SubmitResult)
	return res, args.Error(1)
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

type fixture struct {
	issuer      *keypair.Full
	distributor *keypair.Full
	client      *mockLedger
	svc         *Service
}

func testConfig(issuer, distributor *keypair.Full) *Config {
	return &Config{
		NetworkKind:           "testnet",
		NetworkPassphrase:     network.TestNetworkPassphrase,
		AssetCode:             "BOB",
		IssuingSecretKey:      issuer.Seed(),
		DistributingSecretKey: distributor.Seed(),
		IssuingPublicKey:      issuer.Address(),
		TxTimeoutSeconds:      30,
		Retry:                 RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond},
	}
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, func(*Config) {})
}

func newFixtureWith(t *testing.T, tweak func(*Config)) *fixture {
	issuer := keypair.MustRandom()
	distributor := keypair.MustRandom()
	cfg := testConfig(issuer, distributor)
	tweak(cfg)

	client := &mockLedger{}
	svc, err := NewService(cfg, client, testLogger())
	require.NoError(t, err)
	return &fixture{issuer: issuer, distributor: distributor, client: client, svc: svc}
}

func (f *fixture) bob() ledger.Asset {
	return ledger.Asset{Code: "BOB", Issuer: f.issuer.Address()}
}

func testAccount(id string, seq int64, balances ...ledger.Balance) *ledger.Account {
	return &ledger.Account{ID: id, Sequence: seq, Balances: balances}
}

func nativeBalance(amount string) ledger.Balance {
	return ledger.Balance{AssetType: "native", Amount: amount}
}

func creditBalance(asset ledger.Asset, amount string) ledger.Balance {
	return ledger.Balance{AssetType: "credit_alphanum4", Code: asset.Code, Issuer: asset.Issuer, Amount: amount}
}
