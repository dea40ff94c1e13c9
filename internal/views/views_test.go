package views

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finclient/internal/api"
	"finclient/internal/core"
	"finclient/internal/log"
	"finclient/internal/mockapi"
	"finclient/internal/services"
	"finclient/internal/session"
)

type fakeSession struct {
	ok       bool
	calls    int
	remember bool
	register bool
	id       *core.Identity
}

func (f *fakeSession) Login(_ context.Context, _, _ string, remember bool) bool {
	f.calls++
	f.remember = remember
	return f.ok
}

func (f *fakeSession) Register(context.Context, string, string) bool {
	f.calls++
	f.register = true
	return f.ok
}

func (f *fakeSession) Current() *core.Identity { return f.id }

type backend struct {
	server   *mockapi.Server
	identity *core.Identity
	txs      *services.TransactionService
	cats     *services.CategoryService
	pms      *services.PaymentMethodService
	auth     *services.AuthService
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	srv := mockapi.New(mockapi.Config{})
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	client := api.NewClient(hs.URL)
	token, err := srv.IssueToken("alice")
	require.NoError(t, err)
	id, err := session.DecodeToken(token)
	require.NoError(t, err)

	return &backend{
		server:   srv,
		identity: id,
		txs:      services.NewTransactionService(client),
		cats:     services.NewCategoryService(client),
		pms:      services.NewPaymentMethodService(client),
		auth:     services.NewAuthService(client),
	}
}

func TestLoginViewValidation(t *testing.T) {
	s := &fakeSession{ok: true}
	v := NewLoginView(s, log.Discard())

	v.Username = "  "
	v.Password = "pw"
	assert.False(t, v.Submit(context.Background()))
	assert.Equal(t, MsgMissingCredentials, v.Error)
	assert.Equal(t, StatusError, v.Status)
	assert.Zero(t, s.calls, "validation failures never reach the session")
}

func TestLoginViewMessagesPerMode(t *testing.T) {
	s := &fakeSession{ok: false}
	v := NewLoginView(s, log.Discard())
	v.Username, v.Password, v.Remember = "alice", "bad", true

	assert.False(t, v.Submit(context.Background()))
	assert.Equal(t, MsgLoginFailed, v.Error)
	assert.True(t, s.remember)

	v.ToggleMode()
	assert.Equal(t, MsgLoginFailed, v.Error, "toggling keeps the error")
	assert.Equal(t, "Register", v.Title())
	assert.Equal(t, "Already have an account?", v.ToggleLabel())

	assert.False(t, v.Submit(context.Background()))
	assert.Equal(t, MsgRegisterFailed, v.Error)
	assert.True(t, s.register)

	s.ok = true
	assert.True(t, v.Submit(context.Background()))
	assert.Empty(t, v.Error)
	assert.Equal(t, StatusIdle, v.Status)
	assert.Empty(t, v.Password)
}

func TestLoginViewDiscardsStaleResult(t *testing.T) {
	s := &fakeSession{ok: false}
	v := NewLoginView(s, log.Discard())
	v.Username, v.Password = "alice", "pw"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, v.Submit(ctx))
	assert.Empty(t, v.Error)
	assert.Equal(t, StatusIdle, v.Status)
}

func TestLoginViewAgainstSessionStore(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, b.server.AddUser("carol", "pw"))
	store := session.New(session.Config{
		Profile: "p", Auth: b.auth,
		Ephemeral: session.NewMemoryTier(10, 0), Durable: session.NewMemoryTier(10, 0),
	})

	v := NewLoginView(store, log.Discard())
	v.Username, v.Password = "carol", "pw"
	require.True(t, v.Submit(context.Background()))
	require.NotNil(t, store.Current())
	assert.Equal(t, "carol", store.Current().Username)
}

func TestTransactionFormInput(t *testing.T) {
	f := NewTransactionForm()
	assert.Equal(t, core.Today(), f.Date)

	f.Title, f.Amount, f.CategoryID, f.PaymentMethodID = "Lunch", "12,5", "1", "pm"
	in, err := f.Input()
	require.NoError(t, err)
	assert.Equal(t, "12.5", in.Amount.String())

	f.Amount = "abc"
	_, err = f.Input()
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)

	f.Amount, f.Title = "1", ""
	_, err = f.Input()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
}

func TestTransactionListLoadAndGroup(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	pm, err := b.pms.Create(ctx, b.identity, core.PaymentMethodInput{Name: "Cash"})
	require.NoError(t, err)

	v := NewTransactionListView(b.identity, b.txs, b.cats, b.pms, log.Discard())
	v.Load(ctx)
	assert.Equal(t, ListEmpty, v.List)
	assert.Equal(t, MsgNoTransactions, v.EmptyMessage())
	assert.Len(t, v.Categories, len(mockapi.DefaultCategories))
	require.Len(t, v.PaymentMethods, 1)

	for _, f := range []TransactionForm{
		{Title: "Coffee", Amount: "2.20", Date: "2024-01-02", CategoryID: "1", PaymentMethodID: pm.ID},
		{Title: "Train", Amount: "15", Date: "2024-01-03", CategoryID: "2", PaymentMethodID: pm.ID},
		{Title: "Dinner", Amount: "30", Date: "2024-01-02", CategoryID: "1", PaymentMethodID: pm.ID},
	} {
		v.OpenForm()
		v.Form = f
		require.True(t, v.Submit(ctx), v.Error)
		assert.False(t, v.ShowForm)
		assert.Equal(t, core.Today(), v.Form.Date)
		assert.Empty(t, v.Form.Title)
	}

	assert.Equal(t, ListLoaded, v.List)
	groups := v.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "2024-01-03", groups[0].Day)
	assert.Equal(t, "2024-01-02", groups[1].Day)
	require.Len(t, groups[1].Transactions, 2)
	assert.Equal(t, "Coffee", groups[1].Transactions[0].Title)
	assert.Equal(t, "Dinner", groups[1].Transactions[1].Title)

	assert.Equal(t, mockapi.DefaultCategories[0].Color, v.CategoryColor("1"))
	assert.Equal(t, core.PlaceholderColor, v.CategoryColor("nope"))
}

func TestTransactionSubmitFailures(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	v := NewTransactionListView(b.identity, b.txs, b.cats, b.pms, log.Discard())
	v.Load(ctx)

	v.OpenForm()
	v.Form.Title = "No amount"
	assert.False(t, v.Submit(ctx))
	assert.Equal(t, MsgInvalidTransaction, v.Error)
	assert.True(t, v.ShowForm)

	// Unknown payment method: the backend refuses it.
	v.Form = TransactionForm{Title: "x", Amount: "1", Date: "2024-01-01", CategoryID: "1", PaymentMethodID: "missing"}
	assert.False(t, v.Submit(ctx))
	assert.Equal(t, MsgCreateTxFailed, v.Error)
	assert.Equal(t, "x", v.Form.Title, "failed submission keeps the fields")
	assert.Equal(t, ListEmpty, v.List)
}

func TestTransactionListAddPaymentMethod(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	v := NewTransactionListView(b.identity, b.txs, b.cats, b.pms, log.Discard())
	v.Load(ctx)
	v.OpenForm()
	v.ShowPaymentMethodForm = true

	v.PaymentMethodForm.Name = "Visa"
	v.PaymentMethodForm.LastDigits = "12345"
	assert.False(t, v.AddPaymentMethod(ctx))
	assert.Equal(t, MsgInvalidPaymentMethod, v.PaymentMethodForm.Error)

	v.PaymentMethodForm.LastDigits = "1234"
	require.True(t, v.AddPaymentMethod(ctx))
	require.Len(t, v.PaymentMethods, 1)
	assert.Equal(t, v.PaymentMethods[0].ID, v.Form.PaymentMethodID)
	assert.False(t, v.ShowPaymentMethodForm)
	assert.True(t, v.ShowForm)
	assert.Empty(t, v.PaymentMethodForm.Name)
}

type unlistableMethods struct{ *services.PaymentMethodService }

func (unlistableMethods) List(context.Context, *core.Identity) ([]core.PaymentMethod, error) {
	return nil, errors.New("boom")
}

func TestAddPaymentMethodFallbackLeavesOldSliceAlone(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	v := NewTransactionListView(b.identity, b.txs, b.cats, unlistableMethods{b.pms}, log.Discard())

	old := make([]core.PaymentMethod, 1, 4)
	old[0] = core.PaymentMethod{ID: "cash", Name: "Cash"}
	v.PaymentMethods = old
	v.ShowPaymentMethodForm = true
	v.PaymentMethodForm.Name = "Visa"
	v.PaymentMethodForm.LastDigits = "1234"

	require.True(t, v.AddPaymentMethod(ctx))
	require.Len(t, v.PaymentMethods, 2)
	assert.Equal(t, "Visa", v.PaymentMethods[1].Name)
	assert.Equal(t, v.PaymentMethods[1].ID, v.Form.PaymentMethodID)
	assert.Empty(t, old[:2][1].ID, "the previous backing array must not be written")
}

type failingTransactions struct{ calls atomic.Int32 }

func (f *failingTransactions) List(context.Context, *core.Identity) ([]core.Transaction, error) {
	f.calls.Add(1)
	return nil, errors.New("boom")
}

func (f *failingTransactions) Create(context.Context, *core.Identity, core.TransactionInput) (core.Transaction, error) {
	return core.Transaction{}, errors.New("boom")
}

func TestLoadIsAllOrNothing(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	txs := &failingTransactions{}

	v := NewTransactionListView(b.identity, txs, b.cats, b.pms, log.Discard())
	v.Load(ctx)
	assert.Equal(t, ListFailed, v.List)
	assert.Equal(t, MsgTransactionsFailed, v.EmptyMessage())
	assert.Empty(t, v.Categories)
	assert.Empty(t, v.PaymentMethods)
}

type slowTransactions struct{ failingTransactions }

func (s *slowTransactions) List(ctx context.Context, _ *core.Identity) ([]core.Transaction, error) {
	<-ctx.Done()
	return []core.Transaction{{Title: "late"}}, nil
}

func TestLoadDiscardsStaleResult(t *testing.T) {
	b := newBackend(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	v := NewTransactionListView(b.identity, &slowTransactions{}, b.cats, b.pms, log.Discard())
	v.Load(ctx)
	assert.Equal(t, ListUnloaded, v.List)
	assert.Empty(t, v.Transactions)
}

func TestPaymentMethodEndToEnd(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	v := NewPaymentMethodListView(b.identity, b.pms, log.Discard())
	v.Load(ctx)
	assert.Equal(t, ListEmpty, v.List)
	assert.Equal(t, MsgNoPaymentMethods, v.EmptyMessage())

	v.ShowForm = true
	v.Form.Name, v.Form.LastDigits = "Visa", "1234"
	require.True(t, v.Add(ctx))
	assert.False(t, v.ShowForm)
	require.Len(t, v.PaymentMethods, 1)
	pm := v.PaymentMethods[0]
	assert.Equal(t, "**** **** **** 1234", pm.Masked())

	// Declined confirmation is a no-op.
	assert.False(t, v.Delete(ctx, pm.ID, false))
	assert.Len(t, v.PaymentMethods, 1)

	require.True(t, v.Delete(ctx, pm.ID, true))
	assert.Empty(t, v.PaymentMethods)
	assert.Equal(t, ListEmpty, v.List)

	// Deleting again: the backend answers 404, the view treats it as gone.
	v.PaymentMethods = []core.PaymentMethod{pm}
	assert.True(t, v.Delete(ctx, pm.ID, true))
	assert.Empty(t, v.PaymentMethods)
	assert.Empty(t, v.Error)

	v.Load(ctx)
	assert.Empty(t, v.PaymentMethods)
}

type brokenDelete struct{ *services.PaymentMethodService }

func (brokenDelete) Delete(context.Context, *core.Identity, core.ID) error {
	return &api.RequestError{StatusCode: http.StatusInternalServerError, StatusText: "Internal Server Error"}
}

func TestPaymentMethodDeleteFailureKeepsEntry(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	pm, err := b.pms.Create(ctx, b.identity, core.PaymentMethodInput{Name: "Visa", LastDigits: "1"})
	require.NoError(t, err)

	v := NewPaymentMethodListView(b.identity, brokenDelete{b.pms}, log.Discard())
	v.Load(ctx)
	assert.False(t, v.Delete(ctx, pm.ID, true))
	assert.Equal(t, MsgDeletePMFailed, v.Error)
	assert.Len(t, v.PaymentMethods, 1)
}

func TestPaymentMethodLoadFailureIsDistinctFromEmpty(t *testing.T) {
	b := newBackend(t)
	expired := &core.Identity{Token: "expired"}
	v := NewPaymentMethodListView(expired, b.pms, log.Discard())
	v.Load(context.Background())
	assert.Equal(t, ListFailed, v.List)
	assert.Equal(t, MsgPaymentMethodsFailed, v.EmptyMessage())
}
