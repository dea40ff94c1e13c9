package http

import (
	"net/http"

	"finclient/internal/core"
	"finclient/internal/log"
	"finclient/internal/views"
)

type paymentMethodsPage struct {
	Username string
	Next     string
	View     *views.PaymentMethodListView
}

type confirmDeletePage struct {
	Username string
	Message  string
	Method   core.PaymentMethod
}

func (s *Server) newPaymentMethodListView(r *http.Request) *views.PaymentMethodListView {
	return views.NewPaymentMethodListView(identityOf(r), s.deps.PaymentMethods, log.FromContext(r.Context()))
}

func (s *Server) handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	view := s.newPaymentMethodListView(r)
	view.Load(r.Context())
	view.ShowForm = r.URL.Query().Get("new") == "1"
	s.render(w, r, http.StatusOK, "payment_methods.html", paymentMethodsPage{
		Username: identityOf(r).Username,
		Next:     safeNext(r.URL.Query().Get("next")),
		View:     view,
	})
}

func (s *Server) handlePaymentMethodSubmit(w http.ResponseWriter, r *http.Request) {
	view := s.newPaymentMethodListView(r)
	page := paymentMethodsPage{Username: identityOf(r).Username, View: view}

	form, msg := ParseForm(r)
	if msg != "" {
		view.Load(r.Context())
		view.Status, view.Error = views.StatusError, msg
		s.render(w, r, http.StatusBadRequest, "payment_methods.html", page)
		return
	}
	page.Next = safeNext(form.Get("next"))
	ParsePaymentMethodForm(form, "", view.Form)

	if !view.Add(r.Context()) {
		view.Load(r.Context())
		view.ShowForm = true
		status := http.StatusBadGateway
		if view.Form.Error == views.MsgInvalidPaymentMethod {
			status = http.StatusUnprocessableEntity
		}
		s.render(w, r, status, "payment_methods.html", page)
		return
	}

	target := "/payment-methods"
	if page.Next != "" {
		target = page.Next
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleConfirmDelete asks before deleting.
func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	view := s.newPaymentMethodListView(r)
	view.Load(r.Context())
	pm, ok := view.Find(core.ID(r.PathValue("id")))
	if !ok {
		http.Redirect(w, r, "/payment-methods", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "confirm_delete.html", confirmDeletePage{
		Username: identityOf(r).Username,
		Message:  views.MsgConfirmDelete,
		Method:   pm,
	})
}

// handleDelete deletes only when the confirmation was accepted; any other
// answer leaves the list as it was.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	form, msg := ParseForm(r)
	confirmed := msg == "" && form.Get("confirm") == "yes"

	view := s.newPaymentMethodListView(r)
	view.Load(r.Context())
	if !confirmed {
		http.Redirect(w, r, "/payment-methods", http.StatusSeeOther)
		return
	}

	if !view.Delete(r.Context(), core.ID(r.PathValue("id")), true) {
		s.render(w, r, http.StatusBadGateway, "payment_methods.html", paymentMethodsPage{
			Username: identityOf(r).Username,
			View:     view,
		})
		return
	}
	http.Redirect(w, r, "/payment-methods", http.StatusSeeOther)
}
