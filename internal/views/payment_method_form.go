package views

import (
	"context"
	"strings"

	"finclient/internal/core"
	"finclient/internal/log"
)

// PaymentMethodForm creates a payment method. It is used on its own page and
// nested in the transaction form.
type PaymentMethodForm struct {
	service  PaymentMethodService
	identity *core.Identity
	logger   *log.Logger

	Name       string
	LastDigits string
	State
}

func NewPaymentMethodForm(service PaymentMethodService, identity *core.Identity, logger *log.Logger) *PaymentMethodForm {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentViews)
	}
	return &PaymentMethodForm{service: service, identity: identity, logger: logger.WithComponent(log.ComponentViews)}
}

// Input validates the fields.
func (f *PaymentMethodForm) Input() (core.PaymentMethodInput, error) {
	in := core.PaymentMethodInput{
		Name:       strings.TrimSpace(f.Name),
		LastDigits: strings.TrimSpace(f.LastDigits),
	}
	return in, in.Validate()
}

// Submit creates the payment method and clears the fields on success.
func (f *PaymentMethodForm) Submit(ctx context.Context) (core.PaymentMethod, bool) {
	f.begin()
	in, err := f.Input()
	if err != nil {
		f.fail(MsgInvalidPaymentMethod)
		return core.PaymentMethod{}, false
	}

	pm, err := f.service.Create(ctx, f.identity, in)
	if stale(ctx) {
		f.abandon()
		return core.PaymentMethod{}, false
	}
	if err != nil {
		f.logger.ErrorContext(ctx, "Failed to add payment method", log.FieldError, err, log.FieldOperation, log.OpCreate)
		f.fail(MsgCreatePMFailed)
		return core.PaymentMethod{}, false
	}

	f.Name, f.LastDigits = "", ""
	f.succeed()
	return pm, true
}
