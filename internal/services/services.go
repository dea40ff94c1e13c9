// Package services maps each backend resource to typed calls on the API
// client. Services hold no state and perform no caching.
package services

import (
	"context"
	"errors"

	"finclient/internal/core"
)

// ErrNoIdentity is returned when a call is made without an authenticated
// identity. No request is sent in that case.
var ErrNoIdentity = errors.New("no authenticated identity")

// Requester is the subset of api.Client the services depend on.
type Requester interface {
	Do(ctx context.Context, method, endpoint string, body any, token string, out any) error
}

func tokenOf(id *core.Identity) (string, error) {
	if id == nil {
		return "", ErrNoIdentity
	}
	return id.Token, nil
}
