package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daccred/warupay/ledger"
)

func TestTxBuilderBuild(t *testing.T) {
	source := keypair.MustRandom()
	dest := keypair.MustRandom().Address()
	bob := ledger.Asset{Code: "BOB", Issuer: keypair.MustRandom().Address()}

	t.Run("Payment against current sequence and fee", func(t *testing.T) {
		client := &mockLedger{}
		client.On("FetchBaseFee").Return(int64(500), nil).Once()
		b := NewTxBuilder(client, network.TestNetworkPassphrase, 30)

		tx, err := b.Build(context.Background(), testAccount(source.Address(), 41), []Operation{
			Pay{Destination: dest, Asset: bob, Amount: "100"},
		})
		require.NoError(t, err)

		assert.Equal(t, source.Address(), tx.SourceAccount().AccountID)
		assert.Equal(t, int64(42), tx.SequenceNumber())
		assert.Equal(t, int64(500), tx.BaseFee())
		assert.Empty(t, tx.Signatures())

		now := time.Now().Unix()
		tb := tx.Timebounds()
		assert.InDelta(t, now+30, tb.MaxTime, 2)

		require.Len(t, tx.Operations(), 1)
		payment, ok := tx.Operations()[0].(*txnbuild.Payment)
		require.True(t, ok)
		assert.Equal(t, dest, payment.Destination)
		assert.Equal(t, "100", payment.Amount)
		assert.Equal(t, txnbuild.CreditAsset{Code: "BOB", Issuer: bob.Issuer}, payment.Asset)
		client.AssertExpectations(t)
	})

	t.Run("Fee below the network minimum is raised", func(t *testing.T) {
		client := &mockLedger{}
		client.On("FetchBaseFee").Return(int64(10), nil).Once()
		b := NewTxBuilder(client, network.TestNetworkPassphrase, 0)

		tx, err := b.Build(context.Background(), testAccount(source.Address(), 1), []Operation{EstablishTrust{Asset: bob}})
		require.NoError(t, err)
		assert.Equal(t, int64(txnbuild.MinBaseFee), tx.BaseFee())
		assert.InDelta(t, time.Now().Unix()+DefaultTxTimeoutSeconds, tx.Timebounds().MaxTime, 2)

		changeTrust, ok := tx.Operations()[0].(*txnbuild.ChangeTrust)
		require.True(t, ok)
		assert.Equal(t, txnbuild.MaxTrustlineLimit, changeTrust.Limit)
	})

	t.Run("Invalid operations fail before the fee is fetched", func(t *testing.T) {
		tests := []struct {
			name string
			ops  []Operation
		}{
			{name: "No operations", ops: nil},
			{name: "Trust native", ops: []Operation{EstablishTrust{Asset: ledger.Native}}},
			{name: "Bad destination", ops: []Operation{Pay{Destination: "GABC", Asset: bob, Amount: "1"}}},
			{name: "Float-like amount", ops: []Operation{Pay{Destination: dest, Asset: bob, Amount: "1e3"}}},
			{name: "Too precise", ops: []Operation{Pay{Destination: dest, Asset: bob, Amount: "0.12345678"}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				client := &mockLedger{}
				b := NewTxBuilder(client, network.TestNetworkPassphrase, 30)
				_, err := b.Build(context.Background(), testAccount(source.Address(), 1), tt.ops)
				assert.Equal(t, InvalidArgument, KindOf(err))
				client.AssertNotCalled(t, "FetchBaseFee")
			})
		}
	})

	t.Run("Fee lookup failure is transient", func(t *testing.T) {
		client := &mockLedger{}
		client.On("FetchBaseFee").Return(int64(0), errors.New("timeout")).Once()
		b := NewTxBuilder(client, network.TestNetworkPassphrase, 30)
		_, err := b.Build(context.Background(), testAccount(source.Address(), 1), []Operation{EstablishTrust{Asset: bob}})
		assert.Equal(t, TransientLedgerFailure, KindOf(err))
	})
}

func TestTxBuilderSign(t *testing.T) {
	source := keypair.MustRandom()
	bob := ledger.Asset{Code: "BOB", Issuer: keypair.MustRandom().Address()}

	build := func(passphrase string) (*TxBuilder, *txnbuild.Transaction) {
		client := &mockLedger{}
		client.On("FetchBaseFee").Return(int64(100), nil)
		b := NewTxBuilder(client, passphrase, 30)
		tx, err := b.Build(context.Background(), testAccount(source.Address(), 7), []Operation{EstablishTrust{Asset: bob}})
		require.NoError(t, err)
		return b, tx
	}

	b, tx := build(network.TestNetworkPassphrase)
	signed, err := b.Sign(tx, source)
	require.NoError(t, err)
	require.Len(t, signed.Signatures(), 1)
	assert.Equal(t, xdr.SignatureHint(source.Hint()), signed.Signatures()[0].Hint)
	assert.Empty(t, tx.Signatures(), "signing returns a new transaction")

	hash, err := signed.Hash(network.TestNetworkPassphrase)
	require.NoError(t, err)
	assert.NoError(t, source.Verify(hash[:], signed.Signatures()[0].Signature))

	t.Run("Network passphrase changes the signed payload", func(t *testing.T) {
		testHash, err := b.Hash(tx)
		require.NoError(t, err)
		pb, ptx := build(network.PublicNetworkPassphrase)
		publicHash, err := pb.Hash(ptx)
		require.NoError(t, err)
		assert.NotEqual(t, testHash, publicHash)
	})

	t.Run("Unsigned transactions are not rejected locally", func(t *testing.T) {
		unsigned, err := b.Sign(tx)
		require.NoError(t, err)
		assert.Empty(t, unsigned.Signatures())
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "100", want: "100"},
		{in: " 12.5 ", want: "12.5"},
		{in: "0.0000001", want: "0.0000001"},
		{in: "0", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "0.00000001", wantErr: true},
		{in: "922337203686", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
