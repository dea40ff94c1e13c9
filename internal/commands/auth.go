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

type loginCmd struct {
	username string
	remember bool
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in to the finance backend" }
func (*loginCmd) Usage() string {
	return `login [-u <username>] [-remember]

  Logs in, prompting for what is not given. Without -remember the session
  ends with this command.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "Username.")
	f.BoolVar(&c.remember, "remember", false, "Keep the session across runs.")
}

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return authenticate(ctx, appOf(args), c.username, false, c.remember)
}

type registerCmd struct {
	username string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create an account" }
func (*registerCmd) Usage() string {
	return `register [-u <username>]

  Creates an account and logs in for this command only.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "Username.")
}

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return authenticate(ctx, appOf(args), c.username, true, false)
}

func authenticate(ctx context.Context, app *App, username string, register, remember bool) subcommands.ExitStatus {
	var err error
	if username == "" {
		if username, err = app.prompt("Username: "); err != nil {
			return app.fail(views.MsgMissingCredentials)
		}
	}
	password, err := app.readPassword("Password: ")
	if err != nil {
		return app.fail(views.MsgMissingCredentials)
	}

	view := views.NewLoginView(app.Session, app.Logger)
	view.Register = register
	view.Username = username
	view.Password = password
	view.Remember = remember
	if !view.Submit(ctx) {
		return app.fail(view.Error)
	}

	name := view.Username
	if id := app.Session.Current(); id != nil && id.Username != "" {
		name = id.Username
	}
	switch {
	case register:
		fmt.Fprintf(app.Stdout, "Registered as %s. Run login -remember to stay logged in.\n", name)
	case remember:
		fmt.Fprintf(app.Stdout, "Logged in as %s. The session is remembered.\n", name)
	default:
		fmt.Fprintf(app.Stdout, "Logged in as %s for this command only.\n", name)
	}
	return subcommands.ExitSuccess
}

type logoutCmd struct{}

func (*logoutCmd) Name() string           { return "logout" }
func (*logoutCmd) Synopsis() string       { return "forget the stored session" }
func (*logoutCmd) Usage() string          { return "logout\n" }
func (*logoutCmd) SetFlags(*flag.FlagSet) {}

func (*logoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appOf(args)
	app.Session.Logout(ctx)
	fmt.Fprintln(app.Stdout, "Logged out.")
	return subcommands.ExitSuccess
}

type whoamiCmd struct{}

func (*whoamiCmd) Name() string           { return "whoami" }
func (*whoamiCmd) Synopsis() string       { return "show the logged in user" }
func (*whoamiCmd) Usage() string          { return "whoami\n" }
func (*whoamiCmd) SetFlags(*flag.FlagSet) {}

func (*whoamiCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appOf(args)
	id := app.identity()
	if id == nil {
		return subcommands.ExitFailure
	}
	app.print(identityMarkdown(id))
	return subcommands.ExitSuccess
}

func identityMarkdown(id *core.Identity) string {
	var b strings.Builder
	b.WriteString("# Session\n\n")
	fmt.Fprintf(&b, "- **User:** %s\n", mdText(id.Username))
	if id.Subject != "" && id.Subject != id.Username {
		fmt.Fprintf(&b, "- **Subject:** %s\n", mdText(id.Subject))
	}
	if !id.IssuedAt.IsZero() {
		fmt.Fprintf(&b, "- **Issued:** %s\n", id.IssuedAt.Format("2006-01-02 15:04"))
	}
	if !id.ExpiresAt.IsZero() {
		fmt.Fprintf(&b, "- **Expires:** %s\n", id.ExpiresAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}
