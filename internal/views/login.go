package views

import (
	"context"
	"strings"

	"finclient/internal/log"
)

// LoginView is the login screen. It toggles between logging in and
// registering.
type LoginView struct {
	session Session
	logger  *log.Logger

	Register bool
	Username string
	Password string
	Remember bool
	State
}

func NewLoginView(session Session, logger *log.Logger) *LoginView {
	if logger == nil {
		logger = log.Wrap(nil, log.ComponentViews)
	}
	return &LoginView{session: session, logger: logger.WithComponent(log.ComponentViews)}
}

// ToggleMode flips between login and register. The error stays.
func (v *LoginView) ToggleMode() {
	v.Register = !v.Register
}

func (v *LoginView) Title() string {
	if v.Register {
		return "Register"
	}
	return "Login"
}

func (v *LoginView) ToggleLabel() string {
	if v.Register {
		return "Already have an account?"
	}
	return "Need to register?"
}

// Submit logs in or registers with the current fields and reports success.
func (v *LoginView) Submit(ctx context.Context) bool {
	v.begin()
	v.Username = strings.TrimSpace(v.Username)
	if v.Username == "" || v.Password == "" {
		v.fail(MsgMissingCredentials)
		return false
	}

	var ok bool
	if v.Register {
		ok = v.session.Register(ctx, v.Username, v.Password)
	} else {
		ok = v.session.Login(ctx, v.Username, v.Password, v.Remember)
	}
	if stale(ctx) {
		v.abandon()
		return false
	}
	if !ok {
		msg := MsgLoginFailed
		if v.Register {
			msg = MsgRegisterFailed
		}
		v.logger.InfoContext(ctx, "Authentication rejected", log.FieldUsername, v.Username, log.FieldOperation, v.op())
		v.fail(msg)
		return false
	}

	v.Password = ""
	v.succeed()
	return true
}

func (v *LoginView) op() string {
	if v.Register {
		return log.OpRegister
	}
	return log.OpLogin
}
