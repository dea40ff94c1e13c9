package services

import (
	"context"
	"fmt"
	"net/http"

	"finclient/internal/core"
)

// TransactionService lists and creates transactions.
type TransactionService struct {
	api Requester
}

func NewTransactionService(api Requester) *TransactionService {
	return &TransactionService{api: api}
}

// List returns the transactions visible to the identity, in server order.
func (s *TransactionService) List(ctx context.Context, id *core.Identity) ([]core.Transaction, error) {
	token, err := tokenOf(id)
	if err != nil {
		return nil, err
	}
	var txs []core.Transaction
	if err := s.api.Do(ctx, http.MethodGet, "/transactions", nil, token, &txs); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Create submits a new transaction and returns it as stored by the backend.
func (s *TransactionService) Create(ctx context.Context, id *core.Identity, in core.TransactionInput) (core.Transaction, error) {
	token, err := tokenOf(id)
	if err != nil {
		return core.Transaction{}, err
	}
	var tx core.Transaction
	if err := s.api.Do(ctx, http.MethodPost, "/transactions", in, token, &tx); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}
