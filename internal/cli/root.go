// Package cli contains the regulus operator console commands.
package cli

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jrsteele09/regulus-console/aml"
	"github.com/jrsteele09/regulus-console/api"
	"github.com/jrsteele09/regulus-console/auth"
	"github.com/jrsteele09/regulus-console/events"
	"github.com/jrsteele09/regulus-console/internal/config"
	"github.com/jrsteele09/regulus-console/internal/errors"
	"github.com/jrsteele09/regulus-console/internal/logging"
	"github.com/jrsteele09/regulus-console/internal/output"
	"github.com/jrsteele09/regulus-console/session"
	"github.com/jrsteele09/regulus-console/session/repofile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// App holds the flags and the components a command runs against. Components
// are built once per invocation, after flags are parsed.
type App struct {
	configPath  string
	verbose     bool
	colorMode   string
	jsonOutput  bool
	metricsAddr string
	version     string

	stdin  io.Reader
	lines  *bufio.Reader
	stdout io.Writer
	stderr io.Writer

	cfg        config.Config
	repo       session.Repo
	httpClient *http.Client
	now        func() time.Time

	printer  *output.Printer
	registry *prometheus.Registry
	bus      *events.Bus
	store    *session.Store
	client   *api.Client
	auth     *auth.Service
	aml      *aml.Service
	metrics  *http.Server

	stopExpiredBanner func()
}

type Option func(*App)

// WithConfig skips loading the config file.
func WithConfig(cfg config.Config) Option {
	return func(a *App) {
		a.cfg = cfg
	}
}

// WithRepo replaces the credential file in the data folder.
func WithRepo(repo session.Repo) Option {
	return func(a *App) {
		a.repo = repo
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(a *App) {
		a.httpClient = client
	}
}

func WithStreams(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.stdin = in
		a.stdout = out
		a.stderr = errOut
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

func WithVersion(version string) Option {
	return func(a *App) {
		a.version = version
	}
}

func newApp(options ...Option) *App {
	a := &App{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		now:     time.Now,
		version: "dev",
	}
	for _, opt := range options {
		opt(a)
	}
	a.lines = bufio.NewReader(a.stdin)
	return a
}

// Execute runs the console with args and returns the process exit code.
func Execute(ctx context.Context, args []string, options ...Option) int {
	a := newApp(options...)
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	a.close()
	if err == nil {
		return output.ExitOK
	}

	printer := a.printer
	if printer == nil {
		printer = output.NewPrinter(a.stdout, a.stderr, false)
	}
	cliErr := output.Classify(err)
	printer.FormatError(cliErr)
	return cliErr.ExitCode
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "regulus",
		Short: "Operator console for the AML transaction monitoring service",
		Long: `regulus is the operator console for the AML transaction monitoring service.

It signs operators in, lists transactions, alerts and cases, records case
decisions, downloads SAR documents and shows a live dashboard.

Example usage:
  regulus login -u analyst          # Sign in and keep the session
  regulus alerts --severity high    # List high severity alerts
  regulus cases show CASE-0001      # Show a case with its agent scores
  regulus dashboard --watch         # Refresh the dashboard until interrupted`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printBanner()
			return cmd.Help()
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrapf(errors.ErrInvalidInput, "%s", err.Error())
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default is $REGULUS_CONFIG or ~/.regulus/config.toml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	flags.StringVar(&a.colorMode, "color", "auto", "colour output: auto, always or never")
	flags.BoolVar(&a.jsonOutput, "json", false, "print results as JSON")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.signupCommand(),
		a.alertsCommand(),
		a.casesCommand(),
		a.transactionsCommand(),
		a.customersCommand(),
		a.accountsCommand(),
		a.scenariosCommand(),
		a.simulateCommand(),
		a.dashboardCommand(),
		a.configCommand(),
		a.versionCommand(),
	)
	return root
}

// loadConfig resolves configuration, logging and the printer. It is all the
// config and version commands need.
func (a *App) loadConfig() error {
	if a.cfg == nil {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	level := a.cfg.GetLogLevel()
	if a.verbose {
		level = "debug"
	}
	logging.SetupWriter(a.stderr, level, a.cfg.GetEnv())

	mode, err := output.ParseColorMode(a.colorMode)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "%s", err.Error())
	}
	a.printer = output.NewPrinter(a.stdout, a.stderr, output.ResolveColors(mode))
	return nil
}

// setup builds the session store, the request pipeline and the services.
func (a *App) setup(ctx context.Context) error {
	if err := a.loadConfig(); err != nil {
		return err
	}

	if a.repo == nil {
		repo, err := repofile.New(a.cfg.GetDataFolder(), repofile.WithHexKey(a.cfg.GetStoreKey()))
		if err != nil {
			return err
		}
		a.repo = repo
	}

	a.registry = prometheus.NewRegistry()
	a.bus = events.NewBus(events.WithRegisterer(a.registry))
	a.stopExpiredBanner = a.bus.Subscribe(events.SessionExpired, func(events.Signal) {
		a.printer.SessionExpired()
	})

	store, err := a.openStore()
	if err != nil {
		return err
	}
	a.store = store

	options := []api.Option{
		api.WithDeviceID(a.cfg.GetDeviceID()),
		api.WithForwardedFor(a.cfg.GetForwardedFor()),
		api.WithRateLimit(a.cfg.GetRateLimit(), 1),
		api.WithRegisterer(a.registry),
	}
	if a.httpClient != nil {
		options = append(options, api.WithHTTPClient(a.httpClient))
	}
	a.client = api.New(a.cfg.GetAPIBaseURL(), a.store, options...)

	if a.auth, err = auth.NewService(a.store, a.client); err != nil {
		return err
	}
	a.aml = aml.NewService(a.client)

	if a.metricsAddr != "" {
		a.serveMetrics(ctx)
	}

	log.Debug().
		Str("api_base_url", a.client.BaseURL()).
		Str("data_folder", a.cfg.GetDataFolder()).
		Msg("Console ready")
	return nil
}

// openStore restores the session. A credential file that cannot be opened,
// usually because the store key changed, is discarded and the operator has to
// sign in again.
func (a *App) openStore() (*session.Store, error) {
	store, err := session.NewStore(a.repo, a.bus, session.WithNowFunc(a.now))
	if err == nil || !errors.Is(err, errors.ErrInvalidStoredKey) {
		return store, err
	}
	resetter, ok := a.repo.(interface{ Reset() error })
	if !ok {
		return nil, err
	}
	log.Warn().Err(err).Msg("Discarding unreadable credential file")
	if err := resetter.Reset(); err != nil {
		return nil, err
	}
	a.printer.Warning("The stored session could not be read and was discarded")
	return session.NewStore(a.repo, a.bus, session.WithNowFunc(a.now))
}

// close waits for pending signal deliveries so banners are written before exit.
func (a *App) close() {
	if a.bus != nil {
		a.bus.Wait()
	}
	if a.stopExpiredBanner != nil {
		a.stopExpiredBanner()
	}
	a.shutdownMetrics()
}
