package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"finclient/internal/core"
	"finclient/internal/views"
)

type paymentMethodsCmd struct{}

func (*paymentMethodsCmd) Name() string           { return "payment-methods" }
func (*paymentMethodsCmd) Synopsis() string       { return "list payment methods" }
func (*paymentMethodsCmd) Usage() string          { return "payment-methods\n" }
func (*paymentMethodsCmd) SetFlags(*flag.FlagSet) {}

func (*paymentMethodsCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appOf(args)
	id := app.identity()
	if id == nil {
		return subcommands.ExitFailure
	}
	view := views.NewPaymentMethodListView(id, app.PaymentMethods, app.Logger)
	view.Load(ctx)
	if view.List == views.ListFailed {
		return app.fail(view.EmptyMessage())
	}
	app.print(paymentMethodsMarkdown(view))
	return subcommands.ExitSuccess
}

func paymentMethodsMarkdown(view *views.PaymentMethodListView) string {
	var b strings.Builder
	b.WriteString("# Payment methods\n\n")
	if msg := view.EmptyMessage(); msg != "" {
		b.WriteString(msg + "\n")
		return b.String()
	}
	b.WriteString("| ID | Name | Card |\n|---|---|---|\n")
	for _, pm := range view.PaymentMethods {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", mdCell(pm.ID.String()), mdCell(pm.Name), mdCell(pm.Masked()))
	}
	return b.String()
}

type addPaymentMethodCmd struct {
	name, digits string
}

func (*addPaymentMethodCmd) Name() string     { return "add-payment-method" }
func (*addPaymentMethodCmd) Synopsis() string { return "add a payment method" }
func (*addPaymentMethodCmd) Usage() string {
	return `add-payment-method -name <name> [-digits <last digits>]
`
}

func (c *addPaymentMethodCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Name of the payment method.")
	f.StringVar(&c.digits, "digits", "", "Up to 4 trailing card digits, informational.")
}

func (c *addPaymentMethodCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appOf(args)
	id := app.identity()
	if id == nil {
		return subcommands.ExitFailure
	}
	view := views.NewPaymentMethodListView(id, app.PaymentMethods, app.Logger)
	view.ShowForm = true
	view.Form.Name = c.name
	view.Form.LastDigits = c.digits
	if !view.Add(ctx) {
		return app.fail(view.Form.Error)
	}
	fmt.Fprintln(app.Stdout, "Payment method added.")
	app.print(paymentMethodsMarkdown(view))
	return subcommands.ExitSuccess
}

type deletePaymentMethodCmd struct {
	yes bool
}

func (*deletePaymentMethodCmd) Name() string     { return "delete-payment-method" }
func (*deletePaymentMethodCmd) Synopsis() string { return "delete a payment method" }
func (*deletePaymentMethodCmd) Usage() string {
	return `delete-payment-method [-yes] <id>

  Deletes a payment method after asking for confirmation.
`
}

func (c *deletePaymentMethodCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Do not ask for confirmation.")
}

func (c *deletePaymentMethodCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appOf(args)
	if f.NArg() != 1 {
		fmt.Fprint(app.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	id := app.identity()
	if id == nil {
		return subcommands.ExitFailure
	}
	pmID := core.ID(f.Arg(0))

	view := views.NewPaymentMethodListView(id, app.PaymentMethods, app.Logger)
	view.Load(ctx)
	if pm, ok := view.Find(pmID); ok {
		fmt.Fprintf(app.Stdout, "%s %s\n", pm.Name, pm.Masked())
	}

	confirmed := c.yes || app.confirm(views.MsgConfirmDelete)
	if !confirmed {
		fmt.Fprintln(app.Stdout, "Nothing deleted.")
		return subcommands.ExitSuccess
	}
	if !view.Delete(ctx, pmID, true) {
		return app.fail(view.Error)
	}
	fmt.Fprintln(app.Stdout, "Payment method deleted.")
	return subcommands.ExitSuccess
}
