// Package views holds the state and behaviour of each screen, independent of
// how it is rendered. The web server and the terminal client drive the same
// views.
//
// Every view catches failures at its boundary: the user sees a fixed message
// from this package, the detail goes to the log.
package views

import (
	"context"

	"finclient/internal/core"
)

// User-facing messages.
const (
	MsgLoginFailed        = "Login failed. Please check your credentials."
	MsgRegisterFailed     = "Registration failed."
	MsgMissingCredentials = "Username and password are required."

	MsgNoTransactions     = "No transactions available."
	MsgTransactionsFailed = "Transactions could not be loaded. Please try again."
	MsgInvalidTransaction = "Please fill in title, amount, date, category and payment method."
	MsgCreateTxFailed     = "The transaction could not be created."

	MsgNoPaymentMethods     = "No payment methods available."
	MsgPaymentMethodsFailed = "Payment methods could not be loaded. Please try again."
	MsgInvalidPaymentMethod = "A name is required and the last digits are at most 4 characters."
	MsgCreatePMFailed       = "The payment method could not be added."
	MsgDeletePMFailed       = "The payment method could not be deleted."

	MsgConfirmDelete = "Are you sure you want to delete this payment method?"
)

// Status is the submission state shared by every view.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSubmitting:
		return "submitting"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State moves idle -> submitting -> idle or error. Only a new submission
// clears an error.
type State struct {
	Status Status
	Error  string
}

func (s *State) begin() {
	s.Status = StatusSubmitting
	s.Error = ""
}

func (s *State) succeed() {
	s.Status = StatusIdle
}

func (s *State) fail(msg string) {
	s.Status = StatusError
	s.Error = msg
}

// abandon returns to idle without a message, for results that arrive after
// the caller stopped waiting.
func (s *State) abandon() {
	s.Status = StatusIdle
}

func (s State) Submitting() bool { return s.Status == StatusSubmitting }
func (s State) Failed() bool     { return s.Status == StatusError }

// ListStatus tells an empty list apart from one that failed to load.
type ListStatus int

const (
	ListUnloaded ListStatus = iota
	ListLoaded
	ListEmpty
	ListFailed
)

func listStatusOf(n int) ListStatus {
	if n == 0 {
		return ListEmpty
	}
	return ListLoaded
}

func (s ListStatus) String() string {
	switch s {
	case ListLoaded:
		return "loaded"
	case ListEmpty:
		return "empty"
	case ListFailed:
		return "failed"
	default:
		return "unloaded"
	}
}

// Session is the part of the session store the views use.
type Session interface {
	Login(ctx context.Context, username, password string, remember bool) bool
	Register(ctx context.Context, username, password string) bool
	Current() *core.Identity
}

type TransactionService interface {
	List(ctx context.Context, id *core.Identity) ([]core.Transaction, error)
	Create(ctx context.Context, id *core.Identity, in core.TransactionInput) (core.Transaction, error)
}

type CategoryService interface {
	List(ctx context.Context, id *core.Identity) ([]core.Category, error)
}

type PaymentMethodService interface {
	List(ctx context.Context, id *core.Identity) ([]core.PaymentMethod, error)
	Create(ctx context.Context, id *core.Identity, in core.PaymentMethodInput) (core.PaymentMethod, error)
	Delete(ctx context.Context, id *core.Identity, pmID core.ID) error
}

// stale reports whether the caller is gone, in which case a result must not
// be applied.
func stale(ctx context.Context) bool {
	return ctx.Err() != nil
}
