package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"finclient/internal/core"
)

var (
	ErrMissingCredential   = errors.New("no access token received")
	ErrMalformedCredential = errors.New("access token cannot be decoded")
)

// DecodeToken reads the claims of a bearer token. The signature is not
// verified: only the backend can do that, and it does on every call.
func DecodeToken(token string) (*core.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingCredential
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	id := &core.Identity{
		Token:     token,
		IssuedAt:  claimTime(claims["iat"]),
		ExpiresAt: claimTime(claims["exp"]),
		Claims:    map[string]any(claims),
	}
	id.Subject, _ = claims["sub"].(string)
	id.Username, _ = claims["username"].(string)
	if id.Username == "" {
		id.Username = id.Subject
	}
	return id, nil
}

func claimTime(v any) time.Time {
	switch n := v.(type) {
	case float64:
		return time.Unix(int64(n), 0)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return time.Unix(i, 0)
		}
	}
	return time.Time{}
}
