package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"finclient/internal/core"
	"finclient/internal/log"
	"finclient/internal/views"
)

type transactionsCmd struct{}

func (*transactionsCmd) Name() string           { return "transactions" }
func (*transactionsCmd) Synopsis() string       { return "list transactions grouped by day" }
func (*transactionsCmd) Usage() string          { return "transactions\n" }
func (*transactionsCmd) SetFlags(*flag.FlagSet) {}

func (*transactionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appOf(args)
	id := app.identity()
	if id == nil {
		return subcommands.ExitFailure
	}
	view := views.NewTransactionListView(id, app.Transactions, app.Categories, app.PaymentMethods, app.Logger)
	view.Load(ctx)
	if view.List == views.ListFailed {
		return app.fail(view.EmptyMessage())
	}
	app.print(transactionsMarkdown(view))
	return subcommands.ExitSuccess
}

func transactionsMarkdown(view *views.TransactionListView) string {
	var b strings.Builder
	b.WriteString("# Transactions\n\n")
	if msg := view.EmptyMessage(); msg != "" {
		b.WriteString(msg + "\n")
		return b.String()
	}
	for _, g := range view.Groups() {
		fmt.Fprintf(&b, "## %s\n\n", g.Day)
		b.WriteString("| Category | Title | Description | Amount |\n|---|---|---|---:|\n")
		for _, tx := range g.Transactions {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				mdCell(view.CategoryName(tx.CategoryID)), mdCell(tx.Title), mdCell(tx.Description), core.FormatAmount(tx.Amount))
		}
		b.WriteString("\n")
	}
	return b.String()
}

type addTransactionCmd struct {
	title, description, amount, date string
	category, method                 string
}

func (*addTransactionCmd) Name() string     { return "add-transaction" }
func (*addTransactionCmd) Synopsis() string { return "create a transaction" }
func (*addTransactionCmd) Usage() string {
	return `add-transaction -title <title> -amount <amount> -category <id> -method <id> [-date YYYY-MM-DD] [-description <text>]

  Creates a transaction. The date defaults to today; amounts accept a dot or
  a comma as decimal separator. See the categories and payment-methods
  commands for ids.
`
}

func (c *addTransactionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.title, "title", "", "Title.")
	f.StringVar(&c.description, "description", "", "Optional description.")
	f.StringVar(&c.amount, "amount", "", "Amount, negative for expenses.")
	f.StringVar(&c.date, "date", core.Today(), "Day of the transaction.")
	f.StringVar(&c.category, "category", "", "Category id.")
	f.StringVar(&c.method, "method", "", "Payment method id.")
}

func (c *addTransactionCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appOf(args)
	id := app.identity()
	if id == nil {
		return subcommands.ExitFailure
	}
	view := views.NewTransactionListView(id, app.Transactions, app.Categories, app.PaymentMethods, app.Logger)
	view.OpenForm()
	view.Form = views.TransactionForm{
		Title:           c.title,
		Description:     c.description,
		Amount:          c.amount,
		Date:            c.date,
		CategoryID:      core.ID(c.category),
		PaymentMethodID: core.ID(c.method),
	}
	if !view.Submit(ctx) {
		return app.fail(view.Error)
	}
	fmt.Fprintln(app.Stdout, "Transaction created.")
	return subcommands.ExitSuccess
}

type categoriesCmd struct{}

func (*categoriesCmd) Name() string           { return "categories" }
func (*categoriesCmd) Synopsis() string       { return "list transaction categories" }
func (*categoriesCmd) Usage() string          { return "categories\n" }
func (*categoriesCmd) SetFlags(*flag.FlagSet) {}

func (*categoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appOf(args)
	id := app.identity()
	if id == nil {
		return subcommands.ExitFailure
	}
	cats, err := app.Categories.List(ctx, id)
	if err != nil {
		app.Logger.ErrorContext(ctx, "Failed to load categories", log.FieldError, err, log.FieldOperation, log.OpList)
		return app.fail("Categories could not be loaded. Please try again.")
	}
	app.print(categoriesMarkdown(cats))
	return subcommands.ExitSuccess
}

func categoriesMarkdown(cats []core.Category) string {
	var b strings.Builder
	b.WriteString("# Categories\n\n")
	if len(cats) == 0 {
		b.WriteString("No categories available.\n")
		return b.String()
	}
	b.WriteString("| ID | Name | Color |\n|---|---|---|\n")
	for _, c := range cats {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", mdCell(c.ID.String()), mdCell(c.Name), mdCell(c.Color))
	}
	return b.String()
}

// mdCell escapes text for a Markdown table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(mdText(s), "|", `\|`)
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}

// mdText escapes Markdown emphasis and code markers in plain text.
func mdText(s string) string {
	return strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`").Replace(s)
}
