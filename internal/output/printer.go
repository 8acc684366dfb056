// Package output formats console output for operators.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ColorMode selects when to colour output.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors decides whether to colour. Auto honours NO_COLOR, a dumb
// terminal and whether stdout is a terminal at all.
func ResolveColors(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		return !color.NoColor
	}
}

// Printer writes operator facing messages. Results go to out; notices and
// errors go to err. Methods are safe for concurrent use.
type Printer struct {
	mu        sync.Mutex
	out       io.Writer
	err       io.Writer
	useColors bool
}

func NewPrinter(out, err io.Writer, useColors bool) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if err == nil {
		err = os.Stderr
	}
	return &Printer{out: out, err: err, useColors: useColors}
}

func (p *Printer) Out() io.Writer {
	return p.out
}

func (p *Printer) Print(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Info(format string, args ...any) {
	p.styled(p.out, color.New(color.FgCyan), "", format, args...)
}

func (p *Printer) Success(format string, args ...any) {
	p.styled(p.out, color.New(color.FgGreen), "[OK] ", format, args...)
}

func (p *Printer) Warning(format string, args ...any) {
	p.styled(p.err, color.New(color.FgYellow), "[WARN] ", format, args...)
}

func (p *Printer) Error(format string, args ...any) {
	p.styled(p.err, color.New(color.FgRed), "[ERROR] ", format, args...)
}

// SessionExpired tells the operator to sign in again.
func (p *Printer) SessionExpired() {
	p.styled(p.err, color.New(color.FgYellow, color.Bold), "", "Session expired. Please sign in again.")
}

func (p *Printer) styled(w io.Writer, c *color.Color, plainPrefix, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.useColors {
		c.EnableColor()
		c.Fprintf(w, format+"\n", args...)
		return
	}
	fmt.Fprintf(w, plainPrefix+format+"\n", args...)
}

func (p *Printer) Header(title string) {
	underline := strings.Repeat("-", len(title))
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.useColors {
		bold := color.New(color.Bold)
		bold.EnableColor()
		bold.Fprintf(p.out, "\n%s\n", title)
		fmt.Fprintf(p.out, "%s\n", underline)
		return
	}
	fmt.Fprintf(p.out, "\n%s\n%s\n", title, underline)
}

// Severity renders an alert severity.
func (p *Printer) Severity(severity string) string {
	switch strings.ToLower(severity) {
	case "high":
		return p.paint(severity, color.FgRed, color.Bold)
	case "medium":
		return p.paint(severity, color.FgYellow)
	case "low":
		return p.paint(severity, color.FgGreen)
	default:
		return severity
	}
}

// Status renders a case or transaction status.
func (p *Printer) Status(status string) string {
	switch strings.ToUpper(status) {
	case "OPEN", "PENDING", "HELD":
		return p.paint(status, color.FgCyan)
	case "ACCEPTED", "COMPLETED":
		return p.paint(status, color.FgGreen)
	case "CLOSE":
		return p.paint(status, color.Faint)
	default:
		return status
	}
}

// Score renders a percentage, highlighting high confidence and likely false positives.
func (p *Printer) Score(score float64, high, low float64) string {
	text := fmt.Sprintf("%.0f%%", score)
	switch {
	case score >= high:
		return p.paint(text, color.FgRed, color.Bold)
	case score < low:
		return p.paint(text, color.Faint)
	default:
		return text
	}
}

func (p *Printer) Bold(text string) string {
	return p.paint(text, color.Bold)
}

func (p *Printer) Dim(text string) string {
	return p.paint(text, color.Faint)
}

func (p *Printer) paint(text string, attrs ...color.Attribute) string {
	if !p.useColors {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}
