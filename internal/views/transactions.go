package views

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"finclient/internal/core"
	"finclient/internal/log"
)

// TransactionForm holds the raw fields of the creation form.
type TransactionForm struct {
	Title           string
	Description     string
	Amount          string
	Date            string
	CategoryID      core.ID
	PaymentMethodID core.ID
}

// NewTransactionForm returns an empty form dated today.
func NewTransactionForm() TransactionForm {
	return TransactionForm{Date: core.Today()}
}

// Input parses and validates the fields.
func (f TransactionForm) Input() (core.TransactionInput, error) {
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.TransactionInput{}, &core.ValidationError{Field: "amount", Reason: err.Error()}
	}
	in := core.TransactionInput{
		Title:           strings.TrimSpace(f.Title),
		Description:     strings.TrimSpace(f.Description),
		Amount:          amount,
		Date:            strings.TrimSpace(f.Date),
		CategoryID:      f.CategoryID,
		PaymentMethodID: f.PaymentMethodID,
	}
	return in, in.Validate()
}

// TransactionListView lists transactions grouped by day and creates new
// ones, optionally adding a payment method on the way.
type TransactionListView struct {
	identity     *core.Identity
	transactions TransactionService
	categories   CategoryService
	methods      PaymentMethodService
	logger       *log.Logger

	Transactions   []core.Transaction
	Categories     []core.Category
	PaymentMethods []core.PaymentMethod
	List           ListStatus

	ShowForm              bool
	Form                  TransactionForm
	ShowPaymentMethodForm bool
	PaymentMethodForm     *PaymentMethodForm
	State
}

func NewTransactionListView(identity *core.Identity, txs TransactionService, cats CategoryService, pms PaymentMethodService, logger *log.Logger) *TransactionListView {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentViews)
	}
	logger = logger.WithComponent(log.ComponentViews)
	return &TransactionListView{
		identity:          identity,
		transactions:      txs,
		categories:        cats,
		methods:           pms,
		logger:            logger,
		Form:              NewTransactionForm(),
		PaymentMethodForm: NewPaymentMethodForm(pms, identity, logger),
	}
}

// Load fetches transactions, categories and payment methods together. Either
// all three lists are applied or none.
func (v *TransactionListView) Load(ctx context.Context) {
	var (
		txs  []core.Transaction
		cats []core.Category
		pms  []core.PaymentMethod
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, err = v.transactions.List(gctx, v.identity)
		return err
	})
	g.Go(func() (err error) {
		cats, err = v.categories.List(gctx, v.identity)
		return err
	})
	g.Go(func() (err error) {
		pms, err = v.methods.List(gctx, v.identity)
		return err
	})
	err := g.Wait()
	if stale(ctx) {
		return
	}
	if err != nil {
		v.logger.ErrorContext(ctx, "Failed to load transactions", log.FieldError, err, log.FieldOperation, log.OpList)
		v.List = ListFailed
		return
	}

	v.Transactions, v.Categories, v.PaymentMethods = txs, cats, pms
	v.List = listStatusOf(len(txs))
}

// Groups buckets the transactions by day, newest day first.
func (v *TransactionListView) Groups() []core.DayGroup {
	groups := core.GroupByDay(v.Transactions)
	core.SortDaysDescending(groups)
	return groups
}

func (v *TransactionListView) CategoryColor(id core.ID) string {
	return core.CategoryColor(v.Categories, id)
}

func (v *TransactionListView) CategoryName(id core.ID) string {
	return core.CategoryName(v.Categories, id)
}

// EmptyMessage is what to show instead of the list, or "" when there is a
// list to show.
func (v *TransactionListView) EmptyMessage() string {
	switch v.List {
	case ListEmpty:
		return MsgNoTransactions
	case ListFailed:
		return MsgTransactionsFailed
	}
	return ""
}

// OpenForm shows a fresh creation form.
func (v *TransactionListView) OpenForm() {
	v.ShowForm = true
}

// Submit creates the transaction from the form, then reloads the list. The
// reload starts only once the creation has completed.
func (v *TransactionListView) Submit(ctx context.Context) bool {
	v.begin()
	in, err := v.Form.Input()
	if err != nil {
		v.logger.DebugContext(ctx, "Transaction form rejected", log.FieldError, err, log.FieldOperation, log.OpValidate)
		v.fail(MsgInvalidTransaction)
		return false
	}

	tx, err := v.transactions.Create(ctx, v.identity, in)
	if stale(ctx) {
		v.abandon()
		return false
	}
	if err != nil {
		v.logger.ErrorContext(ctx, "Failed to create transaction", log.FieldError, err, log.FieldOperation, log.OpCreate)
		v.fail(MsgCreateTxFailed)
		return false
	}
	var username string
	if v.identity != nil {
		username = v.identity.Username
	}
	log.NewStructuredLogger(v.logger).LogTransactionCreated(ctx, username, tx.Title, core.FormatAmount(tx.Amount), tx.Day())

	txs, err := v.transactions.List(ctx, v.identity)
	if stale(ctx) {
		v.abandon()
		return false
	}
	if err != nil {
		v.logger.ErrorContext(ctx, "Failed to reload transactions", log.FieldError, err, log.FieldOperation, log.OpList)
		v.List = ListFailed
	} else {
		v.Transactions = txs
		v.List = listStatusOf(len(txs))
	}

	v.ShowForm = false
	v.Form = NewTransactionForm()
	v.succeed()
	return true
}

// AddPaymentMethod submits the nested payment method form, reloads the
// payment methods and selects the new one in the transaction form.
func (v *TransactionListView) AddPaymentMethod(ctx context.Context) bool {
	pm, ok := v.PaymentMethodForm.Submit(ctx)
	if !ok {
		return false
	}

	pms, err := v.methods.List(ctx, v.identity)
	if stale(ctx) {
		return false
	}
	if err != nil {
		v.logger.ErrorContext(ctx, "Failed to reload payment methods", log.FieldError, err, log.FieldOperation, log.OpList)
		pms = append(slices.Clone(v.PaymentMethods), pm)
	}
	v.PaymentMethods = pms
	v.Form.PaymentMethodID = pm.ID
	v.ShowPaymentMethodForm = false
	return true
}
