package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/daccred/warupay/ledger"
)

// Kind categorizes a failure so callers can decide whether to retry it and
// how to report it.
type Kind int

const (
	KindUnknown Kind = iota
	InvalidArgument
	ConfigurationError
	AccountNotFound
	MissingTrustline
	TransientLedgerFailure
	LedgerRejection
)

var kindCodes = map[Kind]string{
	KindUnknown:            "INTERNAL",
	InvalidArgument:        "INVALID_ARGUMENT",
	ConfigurationError:     "CONFIGURATION_ERROR",
	AccountNotFound:        "ACCOUNT_NOT_FOUND",
	MissingTrustline:       "MISSING_TRUSTLINE",
	TransientLedgerFailure: "TRANSIENT_LEDGER_FAILURE",
	LedgerRejection:        "LEDGER_REJECTION",
}

func (k Kind) String() string { return kindCodes[k] }

// Retryable reports whether repeating the unit of work can succeed.
func (k Kind) Retryable() bool {
	return k == TransientLedgerFailure || k == KindUnknown
}

// Error is the tagged error returned by every Service operation.
type Error struct {
	Kind        Kind
	Op          string
	Message     string
	ResultCodes *ledger.ResultCodes
	Err         error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf extracts the Kind of err; errors not produced by this package are
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// transient submission result codes: rebuilding the transaction from fresh
// account state can succeed.
var transientResultCodes = []string{"tx_bad_seq", "tx_insufficient_fee", "tx_too_late"}

// classifyLedgerError maps a ledger client failure into the error taxonomy.
func classifyLedgerError(op string, err error) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return newError(AccountNotFound, op, "account does not exist on the ledger", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newError(TransientLedgerFailure, op, "request cancelled", err)
	}

	var submitErr *ledger.SubmitError
	if errors.As(err, &submitErr) {
		for _, code := range transientResultCodes {
			if submitErr.ResultCodes.Has(code) {
				e := newError(TransientLedgerFailure, op, "transaction not applied, retry with fresh state", err)
				e.ResultCodes = submitErr.ResultCodes
				return e
			}
		}
		switch {
		case submitErr.Status == http.StatusTooManyRequests,
			submitErr.Status >= http.StatusInternalServerError:
			return newError(TransientLedgerFailure, op, "ledger temporarily unavailable", err)
		}
		e := newError(LedgerRejection, op, "transaction rejected by the ledger", err)
		e.ResultCodes = submitErr.ResultCodes
		return e
	}

	// Transport failures, throttling and timeouts.
	return newError(TransientLedgerFailure, op, "ledger request failed", err)
}

// withOp re-labels a tagged error with the public operation it surfaced from.
func withOp(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		c := *e
		c.Op = op
		return &c
	}
	return err
}
