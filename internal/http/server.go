// Package http serves the web client: server-rendered pages driving the
// views of one session per browser profile.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finclient/internal/core"
	"finclient/internal/log"
	"finclient/internal/middleware/ratelimit"
	"finclient/internal/middleware/security"
	"finclient/internal/middleware/trace"
	"finclient/internal/session"
	"finclient/internal/views"
	appweb "finclient/web"
)

// Deps are the collaborators of the server.
type Deps struct {
	Sessions       *session.Registry
	Transactions   views.TransactionService
	Categories     views.CategoryService
	PaymentMethods views.PaymentMethodService

	// Ready reports whether the durable session tier answers.
	Ready func(ctx context.Context) error

	Logger *log.Logger

	// LoginRateLimit is the number of login attempts per client per minute.
	LoginRateLimit int
	// RememberFor is how long a remembered profile cookie lives.
	RememberFor time.Duration
}

type Server struct {
	http.Server
	templates *template.Template
	deps      Deps
	logger    *log.Logger
	detector  *security.Detector
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware

	shutdownOnce sync.Once
}

var templateFuncs = template.FuncMap{
	"amount": func(d decimal.Decimal) string { return core.FormatAmount(d) },
	"negative": func(d decimal.Decimal) bool { return d.IsNegative() },
}

// NewServer parses the templates and wires routes and middleware.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}
	logger := deps.Logger.WithComponent(log.ComponentHTTP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates: t,
		deps:      deps,
		logger:    logger,
		detector:  security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerWindow: deps.LoginRateLimit,
			Window:            time.Minute,
		}),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, deps.Logger)

	mux := http.NewServeMux()

	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	pages := http.NewServeMux()
	pages.HandleFunc("GET /{$}", s.handleIndex)
	pages.HandleFunc("GET /login", s.handleLoginPage)
	pages.Handle("POST /login", s.limiter.Middleware(s.detector.ExtractClientIP, s.renderRateLimited)(http.HandlerFunc(s.handleLoginSubmit)))
	pages.HandleFunc("POST /logout", s.handleLogout)
	pages.Handle("GET /transactions", s.requireIdentity(s.handleTransactions))
	pages.Handle("POST /transactions", s.requireIdentity(s.handleTransactionSubmit))
	pages.Handle("GET /payment-methods", s.requireIdentity(s.handlePaymentMethods))
	pages.Handle("POST /payment-methods", s.requireIdentity(s.handlePaymentMethodSubmit))
	pages.Handle("GET /payment-methods/{id}/delete", s.requireIdentity(s.handleConfirmDelete))
	pages.Handle("POST /payment-methods/{id}/delete", s.requireIdentity(s.handleDelete))
	mux.Handle("/", security.NoStore(pages))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = s.detector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = log.RequestIDMiddleware(trace.RequestIDFrom)(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(deps.Logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Shutdown stops the login limiter and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type readiness struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	body := readiness{Status: "ready"}
	code := http.StatusOK
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			body = readiness{Status: "unavailable", Error: err.Error()}
			code = http.StatusServiceUnavailable
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// render executes a page into a buffer so a template failure never leaves a
// half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		fields := log.NewFields()
		fields[log.FieldTemplate] = name
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Template execution failed", err, log.OpRender, fields)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
		"Login rate limit exceeded", log.FieldClientIP, s.detector.ExtractClientIP(r))
	view := views.NewLoginView(nil, nil)
	view.Register = r.URL.Query().Get("mode") == "register"
	view.Status = views.StatusError
	view.Error = "Too many attempts. Please try again later."
	s.render(w, r, http.StatusTooManyRequests, "login.html", loginPage{View: view})
}

// Metrics gathers the counters of the middleware.
type Metrics struct {
	Requests           int64
	SuspiciousRequests int64
	RateLimited        int64
	LoadedSessions     int
}

func (s *Server) Metrics() Metrics {
	return Metrics{
		Requests:           s.tracer.GetMetrics().TotalRequests,
		SuspiciousRequests: s.detector.GetMetrics().SuspiciousRequests,
		RateLimited:        s.limiter.GetMetrics().TotalHits,
		LoadedSessions:     s.deps.Sessions.Len(),
	}
}
