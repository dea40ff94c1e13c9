package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"finclient/internal/core"
	"finclient/internal/session"
)

// ProfileCookie names the cookie holding the browser profile id. Without
// Max-Age it ends with the browser session, like the ephemeral tier.
const ProfileCookie = "finclient_profile"

type sessionKey struct{}

// profileOf returns the profile id of the browser, issuing a new one when
// the cookie is missing or not an id this server hands out.
func (s *Server) profileOf(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(ProfileCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	profile := uuid.NewString()
	setProfileCookie(w, r, profile, 0)
	return profile
}

// setProfileCookie writes the cookie. maxAge 0 makes it a session cookie,
// a negative one deletes it.
func setProfileCookie(w http.ResponseWriter, r *http.Request, profile string, maxAge time.Duration) {
	c := &http.Cookie{
		Name:     ProfileCookie,
		Value:    profile,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	switch {
	case maxAge > 0:
		c.MaxAge = int(maxAge.Seconds())
		c.Expires = time.Now().Add(maxAge)
	case maxAge < 0:
		c.MaxAge = -1
		c.Value = ""
	}
	http.SetCookie(w, c)
}

// sessionOf returns the session store of the requesting browser.
func (s *Server) sessionOf(w http.ResponseWriter, r *http.Request) *session.Store {
	if st, ok := r.Context().Value(sessionKey{}).(*session.Store); ok {
		return st
	}
	return s.deps.Sessions.Get(r.Context(), s.profileOf(w, r))
}

// requireIdentity sends visitors without an identity to the login page.
func (s *Server) requireIdentity(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := s.sessionOf(w, r)
		if st.Current() == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, st)
		next(w, r.WithContext(ctx))
	})
}

func identityOf(r *http.Request) *core.Identity {
	if st, ok := r.Context().Value(sessionKey{}).(*session.Store); ok {
		return st.Current()
	}
	return nil
}

// sanitizeInput trims whitespace and drops control characters except tab
// and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// safeNext accepts only same-site absolute paths as redirect targets.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
