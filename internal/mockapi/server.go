// Package mockapi is an in-memory implementation of the finance backend REST
// API, used for local development and by the client tests.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"finclient/internal/core"
)

type contextKey string

const userContextKey contextKey = "username"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidLogin = errors.New("invalid username or password")
)

// DefaultCategories seeds a server built without explicit categories.
var DefaultCategories = []core.Category{
	{ID: "1", Name: "Food", Color: "#e57373"},
	{ID: "2", Name: "Transport", Color: "#64b5f6"},
	{ID: "3", Name: "Housing", Color: "#81c784"},
	{ID: "4", Name: "Leisure", Color: "#ffb74d"},
	{ID: "5", Name: "Health", Color: "#ba68c8"},
}

// Config holds the mock backend settings.
type Config struct {
	Secret     []byte
	TokenTTL   time.Duration
	Categories []core.Category
	Logger     *slog.Logger
}

// Server keeps users, payment methods and transactions in memory. Payment
// methods and transactions are scoped to the user that created them.
type Server struct {
	mu         sync.Mutex
	users      map[string][]byte
	methods    map[string][]core.PaymentMethod
	txs        map[string][]core.Transaction
	categories []core.Category

	secret []byte
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
	router *mux.Router
}

// New builds a mock backend with its routes.
func New(cfg Config) *Server {
	if len(cfg.Secret) == 0 {
		cfg.Secret = []byte("dev-secret")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.Categories == nil {
		cfg.Categories = DefaultCategories
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		users:      make(map[string][]byte),
		methods:    make(map[string][]core.PaymentMethod),
		txs:        make(map[string][]core.Transaction),
		categories: append([]core.Category(nil), cfg.Categories...),
		secret:     cfg.Secret,
		ttl:        cfg.TokenTTL,
		logger:     cfg.Logger,
		now:        time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	api.HandleFunc("/payment-methods", s.handleListPaymentMethods).Methods(http.MethodGet)
	api.HandleFunc("/payment-methods", s.handleCreatePaymentMethod).Methods(http.MethodPost)
	api.HandleFunc("/payment-methods/{id}", s.handleDeletePaymentMethod).Methods(http.MethodDelete)
	s.router = r
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler { return s.router }

// AddUser registers an account directly, bypassing HTTP.
func (s *Server) AddUser(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}
	s.users[username] = hash
	return nil
}

// IssueToken signs an access token for username.
func (s *Server) IssueToken(username string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      username,
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) checkPassword(username, password string) error {
	s.mu.Lock()
	hash, ok := s.users[username]
	s.mu.Unlock()
	if !ok {
		return ErrInvalidLogin
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidLogin
	}
	return nil
}

// authenticate verifies the bearer token and stores its subject in the
// request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			s.logger.WarnContext(r.Context(), "Rejected bearer token", "error", err)
			http.Error(w, "invalid bearer token", http.StatusUnauthorized)
			return
		}
		claims, _ := token.Claims.(jwt.MapClaims)
		sub, _ := claims["sub"].(string)
		if sub == "" {
			http.Error(w, "invalid bearer token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(r *http.Request) string {
	u, _ := r.Context().Value(userContextKey).(string)
	return u
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func newID() core.ID {
	return core.ID(uuid.NewString())
}
