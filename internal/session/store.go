// Package session holds the authenticated identity of a profile and persists
// its token in one of two tiers: an ephemeral one that ends with the browser
// or process session, and a durable one that survives restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"finclient/internal/core"
)

// TokenKey is the tier key under which the token is kept.
const TokenKey = "jwtToken"

// Authenticator exchanges credentials for a raw access token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) (string, error)
}

// Failure reasons carried by the logs.
const (
	reasonNetwork   = "network"
	reasonMissing   = "missing_credential"
	reasonMalformed = "malformed_credential"
	reasonPersist   = "persist"
)

// Config wires a Store.
type Config struct {
	Profile   string
	Auth      Authenticator
	Ephemeral Tier
	Durable   Tier
	Logger    *slog.Logger
}

// Store is the session of one profile. The zero identity means logged out.
type Store struct {
	profile   string
	auth      Authenticator
	ephemeral Tier
	durable   Tier
	logger    *slog.Logger

	mu       sync.RWMutex
	identity *core.Identity
}

func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		profile:   cfg.Profile,
		auth:      cfg.Auth,
		ephemeral: cfg.Ephemeral,
		durable:   cfg.Durable,
		logger:    logger.With("component", "session", "profile", cfg.Profile),
	}
}

func (s *Store) key() string {
	return TokenKey + ":" + s.profile
}

// Profile returns the id the store is namespaced by.
func (s *Store) Profile() string { return s.profile }

// Current returns the identity, or nil when logged out.
func (s *Store) Current() *core.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Restore looks for a token left by a previous session, ephemeral tier first.
// An undecodable token is removed from the tier that held it and the next
// tier is probed. A failed lookup is returned so the caller can retry later.
func (s *Store) Restore(ctx context.Context) error {
	for _, tier := range []Tier{s.ephemeral, s.durable} {
		token, ok, err := tier.Get(ctx, s.key())
		if err != nil {
			s.logger.WarnContext(ctx, "Token lookup failed", "error", err)
			return fmt.Errorf("restore session: %w", err)
		}
		if !ok {
			continue
		}

		id, err := DecodeToken(token)
		if err != nil {
			s.logger.WarnContext(ctx, "Discarding stored token", "reason", reasonMalformed, "error", err)
			if err := tier.Delete(ctx, s.key()); err != nil {
				s.logger.WarnContext(ctx, "Token removal failed", "error", err)
			}
			continue
		}
		s.setIdentity(id)
		s.logger.DebugContext(ctx, "Session restored", "username", id.Username)
		return nil
	}
	return nil
}

// Login authenticates and, on success, stores the token in the durable tier
// when remember is set and in the ephemeral tier otherwise. Failures leave
// the identity unchanged.
func (s *Store) Login(ctx context.Context, username, password string, remember bool) bool {
	token, err := s.auth.Login(ctx, username, password)
	if err != nil {
		s.logger.WarnContext(ctx, "Login failed", "reason", reasonNetwork, "username", username, "error", err)
		return false
	}
	return s.accept(ctx, "Login", token, remember)
}

// Register creates the account and logs it in for the current session only.
func (s *Store) Register(ctx context.Context, username, password string) bool {
	token, err := s.auth.Register(ctx, username, password)
	if err != nil {
		s.logger.WarnContext(ctx, "Registration failed", "reason", reasonNetwork, "username", username, "error", err)
		return false
	}
	return s.accept(ctx, "Registration", token, false)
}

func (s *Store) accept(ctx context.Context, op, token string, remember bool) bool {
	id, err := DecodeToken(token)
	if err != nil {
		reason := reasonMalformed
		if errors.Is(err, ErrMissingCredential) {
			reason = reasonMissing
		}
		s.logger.WarnContext(ctx, op+" failed", "reason", reason, "error", err)
		return false
	}

	if err := s.persist(ctx, token, remember); err != nil {
		s.logger.ErrorContext(ctx, op+" failed", "reason", reasonPersist, "error", err)
		return false
	}

	s.setIdentity(id)
	s.logger.InfoContext(ctx, op+" succeeded", "username", id.Username, "remember", remember)
	return true
}

func (s *Store) persist(ctx context.Context, token string, remember bool) error {
	target, other := s.ephemeral, s.durable
	if remember {
		target, other = s.durable, s.ephemeral
	}
	if err := target.Set(ctx, s.key(), token); err != nil {
		return err
	}
	if err := other.Delete(ctx, s.key()); err != nil {
		if rbErr := target.Delete(ctx, s.key()); rbErr != nil {
			s.logger.WarnContext(ctx, "Rollback of stored token failed", "error", rbErr)
		}
		return err
	}
	return nil
}

// Logout clears the identity and the token from both tiers. Calling it while
// logged out is harmless.
func (s *Store) Logout(ctx context.Context) {
	s.setIdentity(nil)
	s.clearTiers(ctx)
	s.logger.InfoContext(ctx, "Logged out")
}

func (s *Store) clearTiers(ctx context.Context) {
	for _, tier := range []Tier{s.ephemeral, s.durable} {
		if err := tier.Delete(ctx, s.key()); err != nil {
			s.logger.WarnContext(ctx, "Token removal failed", "error", err)
		}
	}
}

func (s *Store) setIdentity(id *core.Identity) {
	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()
}
