// Package http provides the web client handlers.
//
// This file maps submitted forms onto view fields.

package http

import (
	"net/http"
	"net/url"

	"finclient/internal/core"
	"finclient/internal/views"
)

// ParseForm parses the request form, returning a user-facing error
// message on failure.
func ParseForm(r *http.Request) (url.Values, string) {
	if err := r.ParseForm(); err != nil {
		return nil, "Invalid request format"
	}
	return r.PostForm, ""
}

// ParseLoginForm fills the login view from the submitted form.
func ParseLoginForm(form url.Values, v *views.LoginView) {
	v.Register = form.Get("mode") == "register"
	v.Username = sanitizeInput(form.Get("username"))
	v.Password = form.Get("password")
	v.Remember = isChecked(form.Get("remember"))
}

// ParseTransactionForm reads the transaction creation fields.
func ParseTransactionForm(form url.Values) views.TransactionForm {
	return views.TransactionForm{
		Title:           sanitizeInput(form.Get("title")),
		Description:     sanitizeInput(form.Get("description")),
		Amount:          sanitizeInput(form.Get("amount")),
		Date:            sanitizeInput(form.Get("date")),
		CategoryID:      core.ID(sanitizeInput(form.Get("categoryId"))),
		PaymentMethodID: core.ID(sanitizeInput(form.Get("paymentMethodId"))),
	}
}

// ParsePaymentMethodForm fills a payment method form. The nested form on
// the transactions page prefixes its fields with "pm_".
func ParsePaymentMethodForm(form url.Values, prefix string, f *views.PaymentMethodForm) {
	f.Name = sanitizeInput(form.Get(prefix + "name"))
	f.LastDigits = sanitizeInput(form.Get(prefix + "lastDigits"))
}

func isChecked(v string) bool {
	switch v {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
