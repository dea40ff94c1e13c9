package http

import (
	"net/http"

	"finclient/internal/core"
	"finclient/internal/log"
	"finclient/internal/views"
)

type transactionsPage struct {
	Username string
	View     *views.TransactionListView
}

func (s *Server) newTransactionListView(r *http.Request) *views.TransactionListView {
	return views.NewTransactionListView(identityOf(r),
		s.deps.Transactions, s.deps.Categories, s.deps.PaymentMethods,
		log.FromContext(r.Context()))
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	view := s.newTransactionListView(r)
	view.Load(r.Context())

	q := r.URL.Query()
	if q.Get("new") == "1" {
		view.OpenForm()
		if pm := q.Get("method"); pm != "" {
			view.Form.PaymentMethodID = core.ID(pm)
		}
	}
	s.render(w, r, http.StatusOK, "transactions.html", transactionsPage{
		Username: identityOf(r).Username,
		View:     view,
	})
}

// handleTransactionSubmit creates a transaction, or with action
// "add-payment-method" adds a payment method from the nested form and keeps
// the transaction form open with the new method selected.
func (s *Server) handleTransactionSubmit(w http.ResponseWriter, r *http.Request) {
	view := s.newTransactionListView(r)
	page := transactionsPage{Username: identityOf(r).Username, View: view}

	form, msg := ParseForm(r)
	if msg != "" {
		view.Load(r.Context())
		view.Status, view.Error = views.StatusError, msg
		s.render(w, r, http.StatusBadRequest, "transactions.html", page)
		return
	}

	view.Load(r.Context())
	view.OpenForm()
	view.Form = ParseTransactionForm(form)

	if form.Get("action") == "add-payment-method" {
		view.ShowPaymentMethodForm = true
		ParsePaymentMethodForm(form, "pm_", view.PaymentMethodForm)
		status := http.StatusOK
		if !view.AddPaymentMethod(r.Context()) {
			status = http.StatusUnprocessableEntity
		}
		s.render(w, r, status, "transactions.html", page)
		return
	}

	if !view.Submit(r.Context()) {
		status := http.StatusBadGateway
		if view.Error == views.MsgInvalidTransaction {
			status = http.StatusUnprocessableEntity
		}
		s.render(w, r, status, "transactions.html", page)
		return
	}
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}
