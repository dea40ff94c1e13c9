package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DayLayout is the calendar-day layout used by the backend date fields.
const DayLayout = "2006-01-02"

// MaxLastDigits bounds the informational card suffix of a payment method.
const MaxLastDigits = 4

type (
	// ID is a server-assigned identifier. The backend may encode it as a JSON
	// number or a JSON string; both decode to the same textual form.
	ID string

	// Identity holds the claims decoded from a bearer token together with the
	// raw token they came from.
	Identity struct {
		Token     string
		Subject   string
		Username  string
		IssuedAt  time.Time
		ExpiresAt time.Time
		Claims    map[string]any
	}

	Transaction struct {
		ID              ID              `json:"id,omitempty"`
		Title           string          `json:"title"`
		Description     string          `json:"description,omitempty"`
		Amount          decimal.Decimal `json:"amount"`
		Date            string          `json:"date"`
		CategoryID      ID              `json:"categoryId"`
		PaymentMethodID ID              `json:"paymentMethodId"`
	}

	// TransactionInput is the payload of a transaction creation.
	TransactionInput struct {
		Title           string          `json:"title"`
		Description     string          `json:"description"`
		Amount          decimal.Decimal `json:"amount"`
		Date            string          `json:"date"`
		CategoryID      ID              `json:"categoryId"`
		PaymentMethodID ID              `json:"paymentMethodId"`
	}

	Category struct {
		ID    ID     `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	PaymentMethod struct {
		ID         ID     `json:"id"`
		Name       string `json:"name"`
		LastDigits string `json:"lastDigits"`
	}

	// PaymentMethodInput is the payload of a payment method creation.
	PaymentMethodInput struct {
		Name       string `json:"name"`
		LastDigits string `json:"lastDigits"`
	}
)

// ValidationError reports a form field that does not satisfy its constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts both string and numeric identifiers.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

// Day returns the calendar-day bucket of the transaction: the first ten
// characters of its date, ignoring any time of day.
func (t Transaction) Day() string {
	if len(t.Date) < len(DayLayout) {
		return t.Date
	}
	return t.Date[:len(DayLayout)]
}

// Masked returns the card-style display of the payment method digits.
func (p PaymentMethod) Masked() string {
	return "**** **** **** " + p.LastDigits
}

// Validate mirrors the constraints of the creation form: every field but the
// description is required.
func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if strings.TrimSpace(in.Date) == "" {
		return &ValidationError{Field: "date", Reason: "required"}
	}
	if _, err := time.Parse(DayLayout, in.Date); err != nil {
		return &ValidationError{Field: "date", Reason: ErrInvalidDate.Error()}
	}
	if in.CategoryID == "" {
		return &ValidationError{Field: "categoryId", Reason: "required"}
	}
	if in.PaymentMethodID == "" {
		return &ValidationError{Field: "paymentMethodId", Reason: "required"}
	}
	return nil
}

// Validate mirrors the constraints of the payment method form.
func (in PaymentMethodInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if len([]rune(in.LastDigits)) > MaxLastDigits {
		return &ValidationError{Field: "lastDigits", Reason: fmt.Sprintf("at most %d characters", MaxLastDigits)}
	}
	return nil
}

// Today returns the current calendar day in the backend layout.
func Today() string {
	return time.Now().Format(DayLayout)
}
