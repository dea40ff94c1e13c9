// Package commands is the terminal client: one subcommand per screen action,
// driving the same views as the web client.
package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"golang.org/x/term"

	"finclient/internal/core"
	"finclient/internal/log"
	"finclient/internal/views"
)

// Session is the part of the session store the commands use.
type Session interface {
	views.Session
	Logout(ctx context.Context)
}

// App carries what every command needs. It is passed to Execute as the
// first extra argument.
type App struct {
	Session        Session
	Transactions   views.TransactionService
	Categories     views.CategoryService
	PaymentMethods views.PaymentMethodService
	Logger         *log.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Pretty renders Markdown output through glamour.
	Pretty bool

	in *bufio.Reader
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Commands lists the subcommands of the client.
func Commands() []subcommands.Command {
	return []subcommands.Command{
		&loginCmd{},
		&registerCmd{},
		&logoutCmd{},
		&whoamiCmd{},
		&transactionsCmd{},
		&addTransactionCmd{},
		&categoriesCmd{},
		&paymentMethodsCmd{},
		&addPaymentMethodCmd{},
		&deletePaymentMethodCmd{},
	}
}

// Run parses args and executes the selected subcommand.
func Run(ctx context.Context, app *App, name string, args []string) subcommands.ExitStatus {
	if app.Logger == nil {
		app.Logger = log.Discard()
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(app.Stderr)

	commander := subcommands.NewCommander(fs, name)
	commander.Output = app.Stdout
	commander.Error = app.Stderr
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range Commands() {
		commander.Register(c, "")
	}

	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return commander.Execute(ctx, app)
}

func appOf(args []interface{}) *App {
	return args[0].(*App)
}

// print writes Markdown to stdout.
func (a *App) print(md string) {
	if a.Pretty {
		out, err := renderMarkdown(md)
		if err == nil {
			fmt.Fprint(a.Stdout, out)
			return
		}
		a.Logger.Debug("Markdown rendering failed, printing raw", log.FieldError, err)
	}
	fmt.Fprint(a.Stdout, md)
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// fail reports a user-facing message on stderr.
func (a *App) fail(msg string) subcommands.ExitStatus {
	fmt.Fprintln(a.Stderr, "Error: "+msg)
	return subcommands.ExitFailure
}

// identity returns the logged in identity, or nil after telling the user to
// log in.
func (a *App) identity() *core.Identity {
	id := a.Session.Current()
	if id == nil {
		fmt.Fprintln(a.Stderr, "Not logged in. Run the login command first.")
	}
	return id
}

func (a *App) reader() *bufio.Reader {
	if a.in == nil {
		a.in = bufio.NewReader(a.Stdin)
	}
	return a.in
}

// prompt asks for one line of input.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.Stderr, label)
	line, err := a.reader().ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo on a terminal, or a plain line otherwise.
func (a *App) readPassword(label string) (string, error) {
	if f, ok := a.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.Stderr, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return a.prompt(label)
}

// confirm asks a yes/no question; anything but yes declines.
func (a *App) confirm(question string) bool {
	answer, err := a.prompt(question + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
