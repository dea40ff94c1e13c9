package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finclient/internal/api"
	"finclient/internal/core"
	"finclient/internal/log"
	"finclient/internal/mockapi"
	"finclient/internal/services"
	"finclient/internal/session"
	"finclient/internal/views"
)

// env is one machine: a backend and a durable tier shared by every run,
// while each run gets a fresh process-lifetime tier.
type env struct {
	t       *testing.T
	backend *mockapi.Server
	client  *api.Client
	durable *session.MemoryTier
}

type result struct {
	code   subcommands.ExitStatus
	stdout string
	stderr string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	backend := mockapi.New(mockapi.Config{})
	require.NoError(t, backend.AddUser("alice", "pw"))
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return &env{t: t, backend: backend, client: api.NewClient(srv.URL), durable: session.NewMemoryTier(10, 0)}
}

func (e *env) run(stdin string, args ...string) result {
	e.t.Helper()
	ctx := context.Background()
	st := session.New(session.Config{
		Profile:   "default",
		Auth:      services.NewAuthService(e.client),
		Ephemeral: session.NewMemoryTier(1, 0),
		Durable:   e.durable,
	})
	require.NoError(e.t, st.Restore(ctx))

	var out, errb bytes.Buffer
	app := &App{
		Session:        st,
		Transactions:   services.NewTransactionService(e.client),
		Categories:     services.NewCategoryService(e.client),
		PaymentMethods: services.NewPaymentMethodService(e.client),
		Logger:         log.Discard(),
		Stdin:          strings.NewReader(stdin),
		Stdout:         &out,
		Stderr:         &errb,
	}
	code := Run(ctx, app, "finclient", args)
	return result{code: code, stdout: out.String(), stderr: errb.String()}
}

func (e *env) methods() []core.PaymentMethod {
	e.t.Helper()
	token, err := e.backend.IssueToken("alice")
	require.NoError(e.t, err)
	pms, err := services.NewPaymentMethodService(e.client).List(context.Background(), &core.Identity{Token: token})
	require.NoError(e.t, err)
	return pms
}

func TestLoginWithoutRememberEndsWithCommand(t *testing.T) {
	e := newEnv(t)

	r := e.run("pw\n", "login", "-u", "alice")
	require.Equal(t, subcommands.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Logged in as alice for this command only.")

	r = e.run("", "whoami")
	assert.Equal(t, subcommands.ExitFailure, r.code)
	assert.Contains(t, r.stderr, "Not logged in")
}

func TestRememberedLoginPersists(t *testing.T) {
	e := newEnv(t)

	r := e.run("pw\n", "login", "-u", "alice", "-remember")
	require.Equal(t, subcommands.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "The session is remembered.")

	r = e.run("", "whoami")
	require.Equal(t, subcommands.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "alice")
	assert.Contains(t, r.stdout, "**Expires:**")

	r = e.run("", "logout")
	assert.Equal(t, subcommands.ExitSuccess, r.code)
	r = e.run("", "whoami")
	assert.Equal(t, subcommands.ExitFailure, r.code)
}

func TestLoginPromptsAndRejects(t *testing.T) {
	e := newEnv(t)

	r := e.run("alice\npw\n", "login")
	assert.Equal(t, subcommands.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stderr, "Username: ")

	r = e.run("nope\n", "login", "-u", "alice")
	assert.Equal(t, subcommands.ExitFailure, r.code)
	assert.Contains(t, r.stderr, views.MsgLoginFailed)

	r = e.run("", "login", "-u", "alice")
	assert.Equal(t, subcommands.ExitFailure, r.code)
	assert.Contains(t, r.stderr, views.MsgMissingCredentials)
}

func TestRegister(t *testing.T) {
	e := newEnv(t)

	r := e.run("pw\n", "register", "-u", "bob")
	require.Equal(t, subcommands.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Registered as bob.")

	r = e.run("pw\n", "register", "-u", "bob")
	assert.Equal(t, subcommands.ExitFailure, r.code)
	assert.Contains(t, r.stderr, views.MsgRegisterFailed)

	r = e.run("pw\n", "login", "-u", "bob")
	assert.Equal(t, subcommands.ExitSuccess, r.code)
}

func TestCommandsNeedIdentity(t *testing.T) {
	e := newEnv(t)
	for _, cmd := range []string{"transactions", "categories", "payment-methods", "add-transaction", "add-payment-method"} {
		r := e.run("", cmd)
		assert.Equal(t, subcommands.ExitFailure, r.code, cmd)
		assert.Contains(t, r.stderr, "Not logged in", cmd)
	}
}

func TestTransactionWorkflow(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, subcommands.ExitSuccess, e.run("pw\n", "login", "-u", "alice", "-remember").code)

	r := e.run("", "transactions")
	require.Equal(t, subcommands.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, views.MsgNoTransactions)

	r = e.run("", "categories")
	require.Equal(t, subcommands.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "| 1 | Food | #e57373 |")

	r = e.run("", "add-payment-method", "-name", "Visa", "-digits", "12345")
	assert.Equal(t, subcommands.ExitFailure, r.code)
	assert.Contains(t, r.stderr, views.MsgInvalidPaymentMethod)

	r = e.run("", "add-payment-method", "-name", "Visa", "-digits", "1234")
	require.Equal(t, subcommands.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Payment method added.")
	assert.Contains(t, r.stdout, `\*\*\*\* 1234`)
	pms := e.methods()
	require.Len(t, pms, 1)

	r = e.run("", "add-transaction", "-title", "Groceries", "-amount=-12,5",
		"-date", "2024-05-02", "-category", "1", "-method", pms[0].ID.String())
	require.Equal(t, subcommands.ExitSuccess, r.code, r.stderr)

	r = e.run("", "add-transaction", "-title", "Broken", "-amount", "abc", "-category", "1", "-method", pms[0].ID.String())
	assert.Equal(t, subcommands.ExitFailure, r.code)
	assert.Contains(t, r.stderr, views.MsgInvalidTransaction)

	r = e.run("", "transactions")
	require.Equal(t, subcommands.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "## 2024-05-02")
	assert.Contains(t, r.stdout, "| Food | Groceries |  | -12.50€ |")
}

func TestDeletePaymentMethodAsksFirst(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, subcommands.ExitSuccess, e.run("pw\n", "login", "-u", "alice", "-remember").code)
	require.Equal(t, subcommands.ExitSuccess, e.run("", "add-payment-method", "-name", "Cash").code)
	id := e.methods()[0].ID.String()

	r := e.run("", "delete-payment-method")
	assert.Equal(t, subcommands.ExitUsageError, r.code)

	r = e.run("n\n", "delete-payment-method", id)
	assert.Equal(t, subcommands.ExitSuccess, r.code)
	assert.Contains(t, r.stderr, views.MsgConfirmDelete)
	assert.Contains(t, r.stdout, "Nothing deleted.")
	assert.Len(t, e.methods(), 1)

	r = e.run("", "delete-payment-method", id)
	assert.Contains(t, r.stdout, "Nothing deleted.", "no answer declines")

	r = e.run("y\n", "delete-payment-method", id)
	assert.Equal(t, subcommands.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Payment method deleted.")
	assert.Empty(t, e.methods())

	// Gone already counts as deleted.
	r = e.run("", "delete-payment-method", "-yes", id)
	assert.Equal(t, subcommands.ExitSuccess, r.code, r.stderr)

	r = e.run("", "payment-methods")
	assert.Contains(t, r.stdout, views.MsgNoPaymentMethods)
}

func TestMarkdownEscaping(t *testing.T) {
	assert.Equal(t, `a\|b\*c\_d`, mdCell("a|b*c_d"))
	assert.Equal(t, "two lines", mdCell("two\nlines"))
}

func TestPrettyOutput(t *testing.T) {
	var out bytes.Buffer
	app := &App{Stdout: &out, Logger: log.Discard(), Pretty: true}
	app.print("# Transactions\n\nNo transactions available.\n")
	assert.Contains(t, out.String(), "Transactions")
	assert.Contains(t, out.String(), "available")
}
