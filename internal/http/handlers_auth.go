package http

import (
	"net/http"
	"time"

	"finclient/internal/log"
	"finclient/internal/views"
)

type loginPage struct {
	View *views.LoginView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.sessionOf(w, r).Current() != nil {
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	st := s.sessionOf(w, r)
	if st.Current() != nil {
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}
	view := views.NewLoginView(st, s.logger)
	view.Register = r.URL.Query().Get("mode") == "register"
	s.render(w, r, http.StatusOK, "login.html", loginPage{View: view})
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	profile := s.profileOf(w, r)
	st := s.deps.Sessions.Get(r.Context(), profile)
	view := views.NewLoginView(st, log.FromContext(r.Context()))

	form, msg := ParseForm(r)
	if msg != "" {
		view.Status, view.Error = views.StatusError, msg
		s.render(w, r, http.StatusBadRequest, "login.html", loginPage{View: view})
		return
	}
	ParseLoginForm(form, view)

	if !view.Submit(r.Context()) {
		status := http.StatusUnauthorized
		if view.Error == views.MsgMissingCredentials {
			status = http.StatusUnprocessableEntity
		}
		s.render(w, r, status, "login.html", loginPage{View: view})
		return
	}

	// The cookie lives as long as the tier holding the token.
	var maxAge time.Duration
	if view.Remember && !view.Register {
		maxAge = s.deps.RememberFor
	}
	setProfileCookie(w, r, profile, maxAge)
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(ProfileCookie); err == nil && c.Value != "" {
		s.deps.Sessions.Get(r.Context(), c.Value).Logout(r.Context())
		s.deps.Sessions.Forget(c.Value)
	}
	setProfileCookie(w, r, "", -1)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
