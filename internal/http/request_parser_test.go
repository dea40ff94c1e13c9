package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"finclient/internal/views"
)

func TestParseLoginForm(t *testing.T) {
	tests := []struct {
		name         string
		form         url.Values
		wantUser     string
		wantRegister bool
		wantRemember bool
	}{
		{
			name:     "plain login",
			form:     url.Values{"username": {" alice "}, "password": {"pw"}},
			wantUser: "alice",
		},
		{
			name:         "remember checkbox",
			form:         url.Values{"username": {"alice"}, "password": {"pw"}, "remember": {"on"}},
			wantUser:     "alice",
			wantRemember: true,
		},
		{
			name:         "register mode",
			form:         url.Values{"username": {"bob"}, "password": {"pw"}, "mode": {"register"}},
			wantUser:     "bob",
			wantRegister: true,
		},
		{
			name:     "control characters dropped",
			form:     url.Values{"username": {"al\x00ice"}},
			wantUser: "alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := views.NewLoginView(nil, nil)
			ParseLoginForm(tt.form, v)
			if v.Username != tt.wantUser {
				t.Errorf("Username = %q, want %q", v.Username, tt.wantUser)
			}
			if v.Register != tt.wantRegister {
				t.Errorf("Register = %v, want %v", v.Register, tt.wantRegister)
			}
			if v.Remember != tt.wantRemember {
				t.Errorf("Remember = %v, want %v", v.Remember, tt.wantRemember)
			}
		})
	}
}

func TestParseTransactionForm(t *testing.T) {
	form := url.Values{
		"title":           {"  Groceries "},
		"description":     {"weekly"},
		"amount":          {"-20,00"},
		"date":            {"2024-05-02"},
		"categoryId":      {"1"},
		"paymentMethodId": {"abc"},
	}
	f := ParseTransactionForm(form)
	if f.Title != "Groceries" {
		t.Errorf("Title = %q", f.Title)
	}
	if f.CategoryID != "1" || f.PaymentMethodID != "abc" {
		t.Errorf("ids = %q/%q", f.CategoryID, f.PaymentMethodID)
	}
	in, err := f.Input()
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if in.Amount.String() != "-20" {
		t.Errorf("Amount = %s, want -20", in.Amount)
	}
}

func TestParsePaymentMethodFormPrefix(t *testing.T) {
	form := url.Values{"pm_name": {"Visa"}, "pm_lastDigits": {"1234"}, "name": {"ignored"}}
	f := views.NewPaymentMethodForm(nil, nil, nil)
	ParsePaymentMethodForm(form, "pm_", f)
	if f.Name != "Visa" || f.LastDigits != "1234" {
		t.Errorf("got %q/%q", f.Name, f.LastDigits)
	}
}

func TestParseFormRejectsBadBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if _, msg := ParseForm(req); msg == "" {
		t.Error("expected a parse error message")
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"/transactions?new=1": "/transactions?new=1",
		"":                    "",
		"//evil.example":      "",
		"/\\evil.example":     "",
		"https://evil":        "",
		"transactions":        "",
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Errorf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}
