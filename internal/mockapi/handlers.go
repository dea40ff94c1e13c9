package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"finclient/internal/core"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeCredentials(r *http.Request) (credentials, bool) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return c, false
	}
	c.Username = strings.TrimSpace(c.Username)
	return c, c.Username != "" && c.Password != ""
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCredentials(r)
	if !ok {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}
	if err := s.checkPassword(c.Username, c.Password); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	s.respondToken(w, r, http.StatusOK, c.Username)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCredentials(r)
	if !ok {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}
	if err := s.AddUser(c.Username, c.Password); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrUserExists) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	s.logger.InfoContext(r.Context(), "User registered", "username", c.Username)
	s.respondToken(w, r, http.StatusCreated, c.Username)
}

func (s *Server) respondToken(w http.ResponseWriter, r *http.Request, status int, username string) {
	token, err := s.IssueToken(username)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Token signing failed", "error", err)
		http.Error(w, "token signing failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, map[string]string{"accessToken": token})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	txs := append([]core.Transaction{}, s.txs[userFrom(r)]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid transaction payload", http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user := userFrom(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !hasCategory(s.categories, in.CategoryID) {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}
	if !hasMethod(s.methods[user], in.PaymentMethodID) {
		http.Error(w, "unknown payment method", http.StatusBadRequest)
		return
	}
	tx := core.Transaction{
		ID:              newID(),
		Title:           in.Title,
		Description:     in.Description,
		Amount:          in.Amount,
		Date:            in.Date,
		CategoryID:      in.CategoryID,
		PaymentMethodID: in.PaymentMethodID,
	}
	s.txs[user] = append(s.txs[user], tx)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cats := append([]core.Category{}, s.categories...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	methods := append([]core.PaymentMethod{}, s.methods[userFrom(r)]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, methods)
}

func (s *Server) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var in core.PaymentMethodInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid payment method payload", http.StatusBadRequest)
		return
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pm := core.PaymentMethod{ID: newID(), Name: strings.TrimSpace(in.Name), LastDigits: in.LastDigits}

	user := userFrom(r)
	s.mu.Lock()
	s.methods[user] = append(s.methods[user], pm)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, pm)
}

func (s *Server) handleDeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id := core.ID(mux.Vars(r)["id"])
	user := userFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	methods := s.methods[user]
	for i, pm := range methods {
		if pm.ID == id {
			s.methods[user] = append(methods[:i:i], methods[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "payment method not found", http.StatusNotFound)
}

func hasCategory(cats []core.Category, id core.ID) bool {
	for _, c := range cats {
		if c.ID == id {
			return true
		}
	}
	return false
}

func hasMethod(methods []core.PaymentMethod, id core.ID) bool {
	for _, pm := range methods {
		if pm.ID == id {
			return true
		}
	}
	return false
}
