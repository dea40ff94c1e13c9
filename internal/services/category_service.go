package services

import (
	"context"
	"fmt"
	"net/http"

	"finclient/internal/core"
)

// CategoryService reads the categories. Categories are read-only here.
type CategoryService struct {
	api Requester
}

func NewCategoryService(api Requester) *CategoryService {
	return &CategoryService{api: api}
}

func (s *CategoryService) List(ctx context.Context, id *core.Identity) ([]core.Category, error) {
	token, err := tokenOf(id)
	if err != nil {
		return nil, err
	}
	var cats []core.Category
	if err := s.api.Do(ctx, http.MethodGet, "/categories", nil, token, &cats); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}
