package services

import (
	"context"
	"fmt"
	"net/http"
)

// Credentials is the body of the login and register calls.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the body returned by the login and register calls.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// AuthService exchanges credentials for an access token.
type AuthService struct {
	api Requester
}

func NewAuthService(api Requester) *AuthService {
	return &AuthService{api: api}
}

// Login returns the raw access token issued for the credentials. The token
// may be empty when the backend answers without one; callers decide what
// that means.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	return s.exchange(ctx, "/login", username, password)
}

// Register creates the account and returns its first access token.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	return s.exchange(ctx, "/register", username, password)
}

func (s *AuthService) exchange(ctx context.Context, endpoint, username, password string) (string, error) {
	var resp TokenResponse
	err := s.api.Do(ctx, http.MethodPost, endpoint, Credentials{Username: username, Password: password}, "", &resp)
	if err != nil {
		return "", fmt.Errorf("%s: %w", endpoint, err)
	}
	return resp.AccessToken, nil
}
