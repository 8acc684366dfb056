package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/regulus-console/api"
	"github.com/jrsteele09/regulus-console/internal/output"
)

const timeLayout = "2006-01-02 15:04"

func (a *App) printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	a.printer.Print("%s", encoded)
	return nil
}

func (a *App) table(headers ...string) *output.Table {
	return output.NewTable(a.printer.Out(), headers...)
}

func (a *App) pageFooter(page, totalPages, total int) {
	if totalPages < 1 {
		totalPages = 1
	}
	a.printer.Print("%s", a.printer.Dim(fmt.Sprintf("Page %d of %d (%d total)", max(page, 1), totalPages, total)))
}

func formatTime(ts api.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(timeLayout)
}

func formatClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timeLayout)
}

func formatAmount(amount float64, currency string) string {
	return strings.TrimSpace(fmt.Sprintf("%.2f %s", amount, currency))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
