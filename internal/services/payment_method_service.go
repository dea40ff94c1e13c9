package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"finclient/internal/core"
)

// PaymentMethodService lists, creates and deletes payment methods.
type PaymentMethodService struct {
	api Requester
}

func NewPaymentMethodService(api Requester) *PaymentMethodService {
	return &PaymentMethodService{api: api}
}

func (s *PaymentMethodService) List(ctx context.Context, id *core.Identity) ([]core.PaymentMethod, error) {
	token, err := tokenOf(id)
	if err != nil {
		return nil, err
	}
	var methods []core.PaymentMethod
	if err := s.api.Do(ctx, http.MethodGet, "/payment-methods", nil, token, &methods); err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	return methods, nil
}

func (s *PaymentMethodService) Create(ctx context.Context, id *core.Identity, in core.PaymentMethodInput) (core.PaymentMethod, error) {
	token, err := tokenOf(id)
	if err != nil {
		return core.PaymentMethod{}, err
	}
	var pm core.PaymentMethod
	if err := s.api.Do(ctx, http.MethodPost, "/payment-methods", in, token, &pm); err != nil {
		return core.PaymentMethod{}, fmt.Errorf("create payment method: %w", err)
	}
	return pm, nil
}

func (s *PaymentMethodService) Delete(ctx context.Context, id *core.Identity, pmID core.ID) error {
	token, err := tokenOf(id)
	if err != nil {
		return err
	}
	endpoint := "/payment-methods/" + url.PathEscape(pmID.String())
	if err := s.api.Do(ctx, http.MethodDelete, endpoint, nil, token, nil); err != nil {
		return fmt.Errorf("delete payment method %s: %w", pmID, err)
	}
	return nil
}
