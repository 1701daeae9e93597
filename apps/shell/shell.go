package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/records"
	"github.com/trezcool/rollbook/core/user"
	"github.com/trezcool/rollbook/core/workflow"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	newSessionID     = func() string { return uuid.New().String() }

	errQuit = errors.New("quit")
)

// sessionLogger is implemented by loggers that can tag entries with a session id.
type sessionLogger interface {
	WithSession(id string) core.Logger
}

// Shell is the interactive numbered-menu session.
type Shell struct {
	svc    *workflow.Service
	logger core.Logger
	in     *bufio.Scanner
	out    io.Writer
	termFd int // -1 when passwords are read as plain lines
}

func New(svc *workflow.Service, logger core.Logger, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		svc:    svc,
		logger: logger,
		in:     bufio.NewScanner(in),
		out:    out,
		termFd: -1,
	}
}

// WithTerminal makes the shell read passwords from the terminal `fd` without echo.
func (sh *Shell) WithTerminal(fd int) *Shell {
	sh.termFd = fd
	return sh
}

// Run loops on the main menu until exit or end of input.
// Only unrecoverable errors (failing to save the records) are returned.
func (sh *Shell) Run(ctx context.Context) error {
	sh.println("=== Student Management System ===")
	for {
		sh.println("\n1. Log in")
		sh.println("2. Exit")
		choice, err := sh.prompt("Choose: ")
		if err != nil {
			return sh.quit(err)
		}
		switch choice {
		case "1":
			if err := sh.login(ctx); err != nil {
				return sh.quit(err)
			}
		case "2":
			sh.println("Goodbye.")
			return nil
		default:
			sh.println("Invalid selection.")
		}
	}
}

func (sh *Shell) quit(err error) error {
	if err == errQuit {
		sh.println("\nGoodbye.")
		return nil
	}
	return err
}

func (sh *Shell) login(ctx context.Context) error {
	uname, err := sh.prompt("Username: ")
	if err != nil {
		return err
	}
	pwd, err := sh.readPassword("Password: ")
	if err != nil {
		return err
	}

	p, usr, err := sh.svc.Login(uname, pwd)
	if err != nil {
		if err == user.ErrAuthFailed {
			sh.println("Invalid username or password.")
			return nil
		}
		return err
	}

	sess := &session{Shell: sh, principal: p, svc: sh.svc, logger: sh.logger}
	if sl, ok := sh.logger.(sessionLogger); ok {
		sess.logger = sl.WithSession(newSessionID())
		sess.svc = sh.svc.WithLogger(sess.logger)
	}
	sess.logger.Info("logged in", usr)
	defer sess.logger.Info("logged out", usr)

	sh.printf("Logged in as: %s\n", p.Role)
	switch p.Role {
	case user.RoleStudent:
		return sess.studentMenu(ctx)
	case user.RoleInstructor:
		return sess.instructorMenu(ctx)
	case user.RoleAdmin:
		return sess.adminMenu(ctx)
	default:
		sh.println("Invalid role.")
		return nil
	}
}

// session is the LoggedInAs(role) state: menus act as `principal`.
type session struct {
	*Shell
	principal workflow.Principal
	svc       *workflow.Service
	logger    core.Logger
}

// menu loops over `options` until "0" is chosen. Options are keyed by their selection.
func (sess *session) menu(title, back string, options []option) error {
	for {
		sess.printf("\n--- %s ---\n", title)
		for _, o := range options {
			sess.printf("%s. %s\n", o.key, o.label)
		}
		sess.printf("0. %s\n", back)
		choice, err := sess.prompt("Choose: ")
		if err != nil {
			return err
		}
		if choice == "0" {
			return nil
		}

		var picked *option
		for i := range options {
			if options[i].key == choice {
				picked = &options[i]
				break
			}
		}
		if picked == nil {
			sess.println("Invalid selection.")
			continue
		}
		if err := sess.report(picked.run()); err != nil {
			return err
		}
	}
}

type option struct {
	key   string
	label string
	run   func() error
}

// report prints a recoverable error and returns nil; anything else is returned as is.
func (sh *Shell) report(err error) error {
	switch {
	case err == nil:
		return nil
	case err == errQuit, records.IsPersist(err):
		return err
	case core.IsValidation(err):
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			sh.println(sentence(verr.Reason()))
		}
	case workflow.IsForbidden(err):
		sh.println("You are not allowed to do this.")
	default:
		sh.println(sentence(err.Error()))
	}
	return nil
}

// I/O helpers

func (sh *Shell) println(a ...interface{}) {
	_, _ = fmt.Fprintln(sh.out, a...)
}

func (sh *Shell) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(sh.out, format, a...)
}

// prompt reads one trimmed line; end of input is errQuit.
func (sh *Shell) prompt(label string) (string, error) {
	sh.printf("%s", label)
	if !sh.in.Scan() {
		if err := sh.in.Err(); err != nil {
			return "", errors.Wrap(err, "reading input")
		}
		return "", errQuit
	}
	return strings.TrimSpace(sh.in.Text()), nil
}

func (sh *Shell) readPassword(label string) (string, error) {
	if sh.termFd < 0 {
		return sh.prompt(label)
	}
	sh.printf("%s", label)
	pwd, err := readPasswordFunc(sh.termFd)
	sh.println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return strings.TrimSpace(string(pwd)), nil
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "?") && !strings.HasSuffix(s, ")") {
		s += "."
	}
	return s
}

func formatGrade(g *float64, none string) string {
	if g == nil {
		return none
	}
	return strconv.FormatFloat(*g, 'f', -1, 64)
}
