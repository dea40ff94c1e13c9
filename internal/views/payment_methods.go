package views

import (
	"context"
	"net/http"

	"finclient/internal/api"
	"finclient/internal/core"
	"finclient/internal/log"
)

// PaymentMethodListView lists, adds and deletes payment methods.
type PaymentMethodListView struct {
	identity *core.Identity
	service  PaymentMethodService
	logger   *log.Logger

	PaymentMethods []core.PaymentMethod
	List           ListStatus
	ShowForm       bool
	Form           *PaymentMethodForm
	State
}

func NewPaymentMethodListView(identity *core.Identity, service PaymentMethodService, logger *log.Logger) *PaymentMethodListView {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentViews)
	}
	logger = logger.WithComponent(log.ComponentViews)
	return &PaymentMethodListView{
		identity: identity,
		service:  service,
		logger:   logger,
		Form:     NewPaymentMethodForm(service, identity, logger),
	}
}

func (v *PaymentMethodListView) Load(ctx context.Context) {
	pms, err := v.service.List(ctx, v.identity)
	if stale(ctx) {
		return
	}
	if err != nil {
		v.logger.ErrorContext(ctx, "Failed to load payment methods", log.FieldError, err, log.FieldOperation, log.OpList)
		v.List = ListFailed
		return
	}
	v.PaymentMethods = pms
	v.List = listStatusOf(len(pms))
}

func (v *PaymentMethodListView) EmptyMessage() string {
	switch v.List {
	case ListEmpty:
		return MsgNoPaymentMethods
	case ListFailed:
		return MsgPaymentMethodsFailed
	}
	return ""
}

// Find returns the listed payment method with the given id.
func (v *PaymentMethodListView) Find(id core.ID) (core.PaymentMethod, bool) {
	for _, pm := range v.PaymentMethods {
		if pm.ID == id {
			return pm, true
		}
	}
	return core.PaymentMethod{}, false
}

// Delete removes the payment method once confirmed. Without confirmation it
// does nothing. A payment method the backend no longer knows is treated as
// deleted.
func (v *PaymentMethodListView) Delete(ctx context.Context, id core.ID, confirmed bool) bool {
	if !confirmed {
		return false
	}
	v.begin()
	err := v.service.Delete(ctx, v.identity, id)
	if stale(ctx) {
		v.abandon()
		return false
	}
	if err != nil && !api.IsStatus(err, http.StatusNotFound) {
		v.logger.ErrorContext(ctx, "Failed to delete payment method",
			log.FieldError, err, log.FieldOperation, log.OpDelete, log.FieldMethodID, id.String())
		v.fail(MsgDeletePMFailed)
		return false
	}
	if err != nil {
		v.logger.InfoContext(ctx, "Payment method already gone", log.FieldMethodID, id.String())
	}

	kept := v.PaymentMethods[:0:0]
	for _, pm := range v.PaymentMethods {
		if pm.ID != id {
			kept = append(kept, pm)
		}
	}
	v.PaymentMethods = kept
	if v.List != ListFailed {
		v.List = listStatusOf(len(kept))
	}
	v.succeed()
	return true
}

// Add submits the creation form and reloads the list after it completes.
func (v *PaymentMethodListView) Add(ctx context.Context) bool {
	if _, ok := v.Form.Submit(ctx); !ok {
		return false
	}
	v.ShowForm = false
	v.Load(ctx)
	return true
}
