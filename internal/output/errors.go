package output

import (
	"fmt"

	"github.com/jrsteele09/regulus-console/api"
	"github.com/jrsteele09/regulus-console/internal/errors"
)

const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitUnauthorized = 3
	ExitUnavailable  = 4
)

// CLIError is an operator facing failure with a hint and an exit code.
type CLIError struct {
	Summary    string
	Detail     string
	Suggestion string
	ExitCode   int
	cause      error
}

func (e *CLIError) Error() string {
	if e.Detail != "" {
		return e.Summary + ": " + e.Detail
	}
	return e.Summary
}

func (e *CLIError) Unwrap() error {
	return e.cause
}

// Classify maps a failure from the console layers onto a CLIError.
func Classify(err error) *CLIError {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Unauthorized() {
			return &CLIError{
				Summary:    reqErr.Message,
				Detail:     codeDetail(reqErr),
				Suggestion: "Run 'regulus login' to sign in again.",
				ExitCode:   ExitUnauthorized,
				cause:      err,
			}
		}
		return &CLIError{Summary: reqErr.Message, Detail: codeDetail(reqErr), ExitCode: ExitFailure, cause: err}
	}

	switch {
	case errors.Is(err, errors.ErrNoCredential):
		return &CLIError{
			Summary:    "not signed in",
			Suggestion: "Run 'regulus login' first.",
			ExitCode:   ExitUnauthorized,
			cause:      err,
		}
	case errors.Is(err, errors.ErrNetworkUnavailable):
		return &CLIError{
			Summary:    "the monitoring API is unreachable",
			Detail:     err.Error(),
			Suggestion: "Check api_base_url with 'regulus config show'.",
			ExitCode:   ExitUnavailable,
			cause:      err,
		}
	case errors.Is(err, errors.ErrInvalidStoredKey):
		return &CLIError{
			Summary:    "the session store key is invalid",
			Detail:     err.Error(),
			Suggestion: "Set REGULUS_STORE_KEY to 64 hex characters or remove store_key from the config file.",
			ExitCode:   ExitUsage,
			cause:      err,
		}
	case errors.Is(err, errors.ErrInvalidInput):
		return &CLIError{Summary: err.Error(), ExitCode: ExitUsage, cause: err}
	}
	return &CLIError{Summary: err.Error(), ExitCode: ExitFailure, cause: err}
}

func codeDetail(e *api.RequestError) string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d, %s", e.Status, e.Code)
}

// FormatError writes a classified error to stderr.
func (p *Printer) FormatError(e *CLIError) {
	if e == nil {
		return
	}
	p.Error("%s", e.Summary)
	hint := p.Dim(e.Suggestion)

	p.mu.Lock()
	defer p.mu.Unlock()
	if e.Detail != "" {
		fmt.Fprintf(p.err, "  %s\n", e.Detail)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(p.err, "\nHint: %s\n", hint)
	}
}
