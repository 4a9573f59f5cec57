package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"

	"github.com/daccred/warupay/ledger"
	"github.com/daccred/warupay/models"
)

const DefaultAssetCode = "BOB"

// Config holds everything the Service needs, resolved once at process start.
type Config struct {
	NetworkKind           string // "testnet" or "public", used for explorer links
	NetworkPassphrase     string
	AssetCode             string
	IssuingSecretKey      string
	DistributingSecretKey string
	IssuingPublicKey      string
	TxTimeoutSeconds      int64
	ExplorerURL           string
	Retry                 RetryPolicy
	LogLevel              string
}

// Service implements the public asset operations on top of a ledger client.
type Service struct {
	config   *Config
	client   ledger.Client
	verifier *AccountVerifier
	builder  *TxBuilder
	logger   *logrus.Entry

	assetCode    string
	issuerPublic string
	issuer       *keypair.Full
	distributor  *keypair.Full

	mu    sync.RWMutex
	stats models.Stats
}

func NewService(cfg *Config, client ledger.Client, logger *logrus.Entry) (*Service, error) {
	if cfg.LogLevel != "" {
		if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logger.Logger.SetLevel(level)
		}
	}
	if cfg.NetworkPassphrase == "" {
		return nil, newError(ConfigurationError, "configure", "network passphrase is not set", nil)
	}

	s := &Service{
		config:    cfg,
		client:    client,
		verifier:  NewAccountVerifier(client),
		builder:   NewTxBuilder(client, cfg.NetworkPassphrase, cfg.TxTimeoutSeconds),
		logger:    logger,
		assetCode: cfg.AssetCode,
		stats:     models.Stats{StartTime: time.Now()},
	}
	if s.assetCode == "" {
		s.assetCode = DefaultAssetCode
	}

	var err error
	if cfg.IssuingSecretKey != "" {
		if s.issuer, err = keypair.ParseFull(cfg.IssuingSecretKey); err != nil {
			return nil, newError(ConfigurationError, "configure", "issuing secret key is malformed", nil)
		}
	}
	if cfg.DistributingSecretKey != "" {
		if s.distributor, err = keypair.ParseFull(cfg.DistributingSecretKey); err != nil {
			return nil, newError(ConfigurationError, "configure", "distributing secret key is malformed", nil)
		}
	}
	if cfg.IssuingPublicKey != "" {
		if !strkey.IsValidEd25519PublicKey(cfg.IssuingPublicKey) {
			return nil, newError(ConfigurationError, "configure", "issuing public key is malformed", nil)
		}
		if s.issuer != nil && s.issuer.Address() != cfg.IssuingPublicKey {
			return nil, newError(ConfigurationError, "configure", "issuing public key does not match the issuing secret key", nil)
		}
		s.issuerPublic = cfg.IssuingPublicKey
	} else if s.issuer != nil {
		s.issuerPublic = s.issuer.Address()
	}
	return s, nil
}

// Stats returns a snapshot of the operation counters.
func (s *Service) Stats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := s.stats
	stats.LastUpdateTime = time.Now()
	return stats
}

// AssetInfo describes the configured asset. Issuer is empty when no issuing
// identity is configured.
func (s *Service) AssetInfo() models.AssetInfo {
	info := models.AssetInfo{Code: s.assetCode, Issuer: s.issuerPublic, Network: s.config.NetworkKind}
	if s.distributor != nil {
		info.Distributor = s.distributor.Address()
	}
	return info
}

// Fund credits destination with newly on-ramped asset from the distributing
// authority. It needs the issuing secret to identify the asset.
func (s *Service) Fund(ctx context.Context, req models.FundRequest) (*models.OperationResult, error) {
	const op = "fund"
	res, err := func() (*models.OperationResult, error) {
		dest, amt, err := validatePayment(op, req.DestinationAccountID, req.Amount)
		if err != nil {
			return nil, err
		}
		if s.issuer == nil || s.distributor == nil {
			return nil, newError(ConfigurationError, op, "issuing and distributing secret keys are required", nil)
		}
		return s.pay(ctx, op, dest, amt, ledger.Asset{Code: s.assetCode, Issuer: s.issuer.Address()})
	}()
	s.record(op, err)
	return res, err
}

// Transfer moves asset from the distributing authority to destination. The
// asset is identified by the issuer's public key only.
func (s *Service) Transfer(ctx context.Context, req models.TransferRequest) (*models.OperationResult, error) {
	const op = "transfer"
	res, err := func() (*models.OperationResult, error) {
		dest, amt, err := validatePayment(op, req.DestinationAccountID, req.Amount)
		if err != nil {
			return nil, err
		}
		if s.distributor == nil || s.issuerPublic == "" {
			return nil, newError(ConfigurationError, op, "distributing secret key and issuing public key are required", nil)
		}
		return s.pay(ctx, op, dest, amt, ledger.Asset{Code: s.assetCode, Issuer: s.issuerPublic})
	}()
	s.record(op, err)
	return res, err
}

// BalanceQuery reads the asset and native balances of an account. A missing
// asset balance is reported as "0". Reads are never retried.
func (s *Service) BalanceQuery(ctx context.Context, req models.BalanceRequest) (*models.BalanceResult, error) {
	const op = "balance"
	res, err := func() (*models.BalanceResult, error) {
		accountID := strings.TrimSpace(req.AccountID)
		if !strkey.IsValidEd25519PublicKey(accountID) {
			return nil, newError(InvalidArgument, op, "accountId must be a valid public account address", nil)
		}
		if s.issuerPublic == "" {
			return nil, newError(ConfigurationError, op, "issuing public key is required", nil)
		}
		account, err := s.client.LoadAccount(ctx, accountID)
		if err != nil {
			return nil, classifyLedgerError(op, err)
		}

		asset := ledger.Asset{Code: s.assetCode, Issuer: s.issuerPublic}
		result := &models.BalanceResult{
			Success:       true,
			AccountID:     accountID,
			AssetCode:     asset.Code,
			AssetIssuer:   asset.Issuer,
			Balance:       "0",
			NativeBalance: "0",
		}
		if b, ok := account.Balance(asset); ok {
			result.Balance = b.Amount
		}
		if b, ok := account.Balance(ledger.Native); ok {
			result.NativeBalance = b.Amount
		}
		return result, nil
	}()
	s.record(op, err)
	return res, err
}

// OpenTrustline makes holder trust the configured asset, signed by holder.
// Nothing is submitted when the trustline already exists.
func (s *Service) OpenTrustline(ctx context.Context, holder *keypair.Full) (*models.OperationResult, error) {
	const op = "trustline"
	res, err := s.openTrustline(ctx, op, holder)
	s.record(op, err)
	return res, err
}

func (s *Service) openTrustline(ctx context.Context, op string, holder *keypair.Full) (*models.OperationResult, error) {
	if holder == nil {
		return nil, newError(InvalidArgument, op, "holder keypair is required", nil)
	}
	if s.issuerPublic == "" {
		return nil, newError(ConfigurationError, op, "issuing public key is required", nil)
	}
	if holder.Address() == s.issuerPublic {
		return nil, newError(InvalidArgument, op, "the issuing account cannot trust its own asset", nil)
	}

	asset := ledger.Asset{Code: s.assetCode, Issuer: s.issuerPublic}
	_, err := s.verifier.VerifyAccountReady(ctx, holder.Address(), asset)
	switch {
	case err == nil:
		return &models.OperationResult{
			Success: true,
			Message: fmt.Sprintf("%s already trusts %s", holder.Address(), asset.Code),
		}, nil
	case KindOf(err) != MissingTrustline:
		return nil, withOp(op, err)
	}

	res, err := s.submit(ctx, op, holder, EstablishTrust{Asset: asset})
	if err != nil {
		return nil, err
	}
	return s.result(fmt.Sprintf("trustline for %s opened by %s", asset.Code, holder.Address()), res.Hash), nil
}

// Issue mints amount from the issuing authority into the distributor,
// opening the distributor's trustline first if needed.
func (s *Service) Issue(ctx context.Context, req models.IssueRequest) (*models.OperationResult, error) {
	const op = "issue"
	res, err := func() (*models.OperationResult, error) {
		amt, err := ParseAmount(req.Amount)
		if err != nil {
			return nil, newError(InvalidArgument, op, "invalid amount", err)
		}
		if s.issuer == nil || s.distributor == nil {
			return nil, newError(ConfigurationError, op, "issuing and distributing secret keys are required", nil)
		}
		if _, err := s.openTrustline(ctx, op, s.distributor); err != nil {
			return nil, err
		}

		asset := ledger.Asset{Code: s.assetCode, Issuer: s.issuer.Address()}
		sub, err := s.submit(ctx, op, s.issuer, Pay{Destination: s.distributor.Address(), Asset: asset, Amount: amt})
		if err != nil {
			return nil, err
		}
		return s.result(fmt.Sprintf("%s %s issued to %s", amt, asset.Code, s.distributor.Address()), sub.Hash), nil
	}()
	s.record(op, err)
	return res, err
}

func (s *Service) pay(ctx context.Context, op, dest, amt string, asset ledger.Asset) (*models.OperationResult, error) {
	if _, err := s.verifier.VerifyAccountReady(ctx, dest, asset); err != nil {
		return nil, withOp(op, err)
	}
	res, err := s.submit(ctx, op, s.distributor, Pay{Destination: dest, Asset: asset, Amount: amt})
	if err != nil {
		return nil, err
	}
	return s.result(fmt.Sprintf("%s %s sent to %s", amt, asset.Code, dest), res.Hash), nil
}

// submit runs load-build-sign-submit as one retried unit, so every attempt
// spends the signer's current sequence number with the current fee.
func (s *Service) submit(ctx context.Context, op string, signer *keypair.Full, ops ...Operation) (*ledger.SubmitResult, error) {
	policy := s.config.Retry
	policy.Logger = s.logger.WithField("operation", op)

	res, err := WithRetry(ctx, policy, func() (*ledger.SubmitResult, error) {
		source, err := s.client.LoadAccount(ctx, signer.Address())
		if err != nil {
			return nil, classifyLedgerError(op, err)
		}
		tx, err := s.builder.Build(ctx, source, ops)
		if err != nil {
			return nil, err
		}
		signed, err := s.builder.Sign(tx, signer)
		if err != nil {
			return nil, err
		}

		s.incrementSubmissions()
		res, err := s.client.SubmitTransaction(ctx, signed)
		if err != nil {
			return nil, classifyLedgerError(op, err)
		}
		return res, nil
	})
	if err != nil {
		return nil, withOp(op, err)
	}
	return res, nil
}

func (s *Service) result(message, hash string) *models.OperationResult {
	return &models.OperationResult{
		Success:       true,
		Message:       message,
		TransactionID: hash,
		ExplorerURL:   ExplorerURL(s.config.ExplorerURL, s.config.NetworkKind, hash),
	}
}

func validatePayment(op, destination, amt string) (string, string, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" || amt == "" {
		return "", "", newError(InvalidArgument, op, "destinationAccountId and amount are required", nil)
	}
	if !strkey.IsValidEd25519PublicKey(destination) {
		return "", "", newError(InvalidArgument, op, "destinationAccountId must be a valid public account address", nil)
	}
	normalized, err := ParseAmount(amt)
	if err != nil {
		return "", "", newError(InvalidArgument, op, "invalid amount", err)
	}
	return destination, normalized, nil
}

func (s *Service) record(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(KindOf(err).String())
	}
	operationsTotal.WithLabelValues(op, outcome).Inc()

	s.mu.Lock()
	switch {
	case err != nil:
		s.stats.FailureCount++
	case op == "fund":
		s.stats.FundCount++
	case op == "transfer":
		s.stats.TransferCount++
	case op == "issue":
		s.stats.IssueCount++
	case op == "trustline":
		s.stats.TrustlineCount++
	case op == "balance":
		s.stats.BalanceQueries++
	}
	s.mu.Unlock()

	if err == nil {
		return
	}
	entry := s.logger.WithFields(logrus.Fields{"operation": op, "kind": KindOf(err).String()})
	var tagged *Error
	if errors.As(err, &tagged) && tagged.ResultCodes != nil {
		entry = entry.WithField("result_codes", tagged.ResultCodes)
	}
	if KindOf(err) == ConfigurationError || KindOf(err) == KindUnknown {
		entry.Errorf("Operation failed: %v", err)
		return
	}
	entry.Warnf("Operation failed: %v", err)
}

func (s *Service) incrementSubmissions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Submissions++
	submissionsTotal.Inc()
}

// Ping checks that the ledger endpoint answers.
func (s *Service) Ping(ctx context.Context) error {
	if _, err := s.client.FetchBaseFee(ctx); err != nil {
		return classifyLedgerError("ping", err)
	}
	return nil
}
