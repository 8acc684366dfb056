package cli

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/regulus-console/aml"
	"github.com/jrsteele09/regulus-console/events"
	"github.com/jrsteele09/regulus-console/internal/errors"
	"github.com/jrsteele09/regulus-console/resource"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// The dashboard always reads the first hundred rows of each listing.
const dashboardPageSize = 100

var dashboardPage = aml.Pagination{Page: 1, PageSize: dashboardPageSize}

func (a *App) dashboardCommand() *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show today's activity and the seven day trend",
		Long: `Show today's transactions and alerts, likely false positives, high
confidence cases and a seven day trend.

With --watch the figures refresh every --interval until interrupted or the
session expires.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !watch {
				return a.dashboardOnce(cmd.Context())
			}
			if interval <= 0 {
				interval = a.cfg.GetRefreshInterval()
			}
			return a.watchDashboard(cmd.Context(), interval)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep refreshing until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 0, "refresh interval (default from config)")
	return cmd
}

func (a *App) dashboardOnce(ctx context.Context) error {
	var (
		txs    *aml.Page[aml.Transaction]
		alerts *aml.Page[aml.Alert]
		cases  *aml.Page[aml.CaseListItem]
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, err = a.aml.ListTransactions(ctx, aml.TransactionFilter{Pagination: dashboardPage})
		return err
	})
	g.Go(func() (err error) {
		alerts, err = a.aml.ListAlerts(ctx, aml.AlertFilter{Pagination: dashboardPage})
		return err
	})
	g.Go(func() (err error) {
		cases, err = a.aml.ListCases(ctx, aml.CaseFilter{Pagination: dashboardPage})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return a.renderSummary(aml.Summarize(a.now(), txs.Items, alerts.Items, cases.Items))
}

func (a *App) renderSummary(s aml.Summary) error {
	if a.jsonOutput {
		return a.printJSON(s)
	}

	a.printer.Header("Dashboard " + a.now().Format(timeLayout))
	kpis := a.table("Metric", "Value")
	kpis.AddRow("Transactions today", fmt.Sprint(s.TransactionsToday))
	kpis.AddRow("Alerts today", fmt.Sprint(s.AlertsToday))
	kpis.AddRow("False positives", fmt.Sprintf("%d (score < %.0f%%)", s.FalsePositives, aml.FalsePositiveThreshold))
	kpis.AddRow("High confidence", fmt.Sprintf("%d (score >= %.0f%%)", s.HighConfidence, aml.HighConfidenceThreshold))
	if err := kpis.Render(); err != nil {
		return err
	}

	a.printer.Header("Last 7 days")
	trend := a.table("Day", "Transactions", "Alerts", "Cases")
	for _, day := range s.Trend {
		trend.AddRow(day.Day.Format("Mon 02 Jan"), fmt.Sprint(day.Transactions), fmt.Sprint(day.Alerts), fmt.Sprint(day.Cases))
	}
	return trend.Render()
}

// board collects the three listings the watch view summarizes.
type board struct {
	mu     sync.Mutex
	txs    *aml.Page[aml.Transaction]
	alerts *aml.Page[aml.Alert]
	cases  *aml.Page[aml.CaseListItem]
	errs   map[string]string
	last   *aml.Summary
}

func (a *App) watchDashboard(ctx context.Context, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var expired atomic.Bool
	stop := a.bus.Subscribe(events.SessionExpired, func(events.Signal) {
		expired.Store(true)
		cancel()
	})
	defer stop()

	b := &board{errs: make(map[string]string)}
	options := []resource.Option{resource.WithInterval(interval)}

	txs := resource.New(func(ctx context.Context) (aml.Page[aml.Transaction], error) {
		return deref(a.aml.ListTransactions(ctx, aml.TransactionFilter{Pagination: dashboardPage}))
	}, append(options, resource.WithKey("transactions"))...)
	alerts := resource.New(func(ctx context.Context) (aml.Page[aml.Alert], error) {
		return deref(a.aml.ListAlerts(ctx, aml.AlertFilter{Pagination: dashboardPage}))
	}, append(options, resource.WithKey("alerts"))...)
	cases := resource.New(func(ctx context.Context) (aml.Page[aml.CaseListItem], error) {
		return deref(a.aml.ListCases(ctx, aml.CaseFilter{Pagination: dashboardPage}))
	}, append(options, resource.WithKey("cases"))...)

	defer func() {
		txs.Unsubscribe()
		alerts.Unsubscribe()
		cases.Unsubscribe()
		txs.Wait()
		alerts.Wait()
		cases.Wait()
	}()

	if err := txs.Subscribe(ctx, track(a, b, "transactions", func(p *aml.Page[aml.Transaction]) { b.txs = p })); err != nil {
		return err
	}
	if err := alerts.Subscribe(ctx, track(a, b, "alerts", func(p *aml.Page[aml.Alert]) { b.alerts = p })); err != nil {
		return err
	}
	if err := cases.Subscribe(ctx, track(a, b, "cases", func(p *aml.Page[aml.CaseListItem]) { b.cases = p })); err != nil {
		return err
	}

	log.Debug().Dur("interval", interval).Msg("Watching dashboard")
	<-ctx.Done()

	if expired.Load() {
		return errors.Wrapf(errors.ErrNoCredential, "dashboard stopped")
	}
	return nil
}

func deref[T any](v *T, err error) (T, error) {
	if err != nil || v == nil {
		var zero T
		return zero, err
	}
	return *v, nil
}

// track returns the callback for one listing. Settled data is stored with set
// and the summary is redrawn when it changes.
func track[T any](a *App, b *board, name string, set func(*T)) resource.Callback[T] {
	return func(state resource.State[T]) {
		if state.Loading {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()

		if state.Error != b.errs[name] {
			b.errs[name] = state.Error
			if state.Error != "" {
				a.printer.Warning("%s: %s", name, state.Error)
			}
		}
		if state.Data != nil {
			set(state.Data)
		}
		if b.txs == nil || b.alerts == nil || b.cases == nil {
			return
		}

		summary := aml.Summarize(a.now(), b.txs.Items, b.alerts.Items, b.cases.Items)
		if b.last != nil && reflect.DeepEqual(*b.last, summary) {
			return
		}
		b.last = &summary
		if err := a.renderSummary(summary); err != nil {
			log.Error().Err(err).Msg("Dashboard render failed")
		}
	}
}
