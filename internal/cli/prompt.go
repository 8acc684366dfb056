package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jrsteele09/regulus-console/internal/errors"
	"golang.org/x/term"
)

// prompt reads one line from stdin after writing label to stderr.
func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.stderr, label)
	line, err := a.lines.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.Wrapf(errors.ErrInvalidInput, "no input for %q", strings.TrimSuffix(label, ": "))
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptSecret reads a line without echo when stdin is a terminal.
func (a *App) promptSecret(label string) (string, error) {
	f, ok := a.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return a.prompt(label)
	}
	fmt.Fprint(a.stderr, label)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.stderr)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", strings.TrimSuffix(label, ": "))
	}
	return string(secret), nil
}
