package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"moneytracker/internal/amqp"
	"moneytracker/internal/api"
	"moneytracker/internal/config"
	applog "moneytracker/internal/log"
	"moneytracker/internal/refresh"
	"moneytracker/internal/sheets"
	"moneytracker/internal/sheets/google"
	"moneytracker/internal/state"
	"moneytracker/internal/store"
)

// EventSource delivers transaction mutation events.
type EventSource interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error
	Close() error
}

// Options wires the collaborators of the CLI. Zero values select the
// production implementations.
type Options struct {
	Version    string
	HTTPClient *http.Client
	// LogOutput receives log records; defaults to the command's stderr.
	LogOutput   io.Writer
	NewExporter func(ctx context.Context, cfg *config.Config, logger *applog.Logger) (sheets.StatsExporter, error)
	NewEvents   func(cfg *config.Config, logger *applog.Logger) (EventSource, error)
	Now         func() time.Time
}

type app struct {
	opts Options

	configPath string
	apiURL     string
	logLevel   string
	output     string

	cfg    *config.Config
	logger *applog.Logger
	client *api.Client
	store  *store.TransactionStore
	state  *state.AppState
	coord  *refresh.Coordinator
}

// NewRoot builds the moneytracker command tree.
func NewRoot(opts Options) *cobra.Command {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewExporter == nil {
		opts.NewExporter = newGoogleExporter
	}
	if opts.NewEvents == nil {
		opts.NewEvents = newAMQPEvents
	}

	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "moneytracker",
		Short:         "Personal income and expense tracker",
		Long:          "moneytracker shows the dashboard, lists and charts of your transactions kept by the moneytracker backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: ./moneytracker.yaml or ~/.config/moneytracker/moneytracker.yaml)")
	flags.StringVar(&a.apiURL, "api-url", "", "backend base URL, overrides API_BASE_URL")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVarP(&a.output, "output", "o", outputText, "output format: text or json")

	root.AddCommand(
		newDashboardCmd(a),
		newListCmd(a),
		newChartsCmd(a),
		newCategoriesCmd(a),
		newAddCmd(a),
		newDeleteCmd(a),
		newWatchCmd(a),
		newExportCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.output != outputText && a.output != outputJSON {
		return fmt.Errorf("invalid output %q: must be %q or %q", a.output, outputText, outputJSON)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.apiURL != "" {
		cfg.APIBaseURL = a.apiURL
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out := a.opts.LogOutput
	if out == nil {
		out = cmd.ErrOrStderr()
	}
	level, err := applog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = applog.New(applog.Config{
		Level:     level,
		Component: applog.ComponentCLI,
		Format:    cfg.LogFormat,
		Output:    out,
	})

	client, err := api.NewClient(a.opts.HTTPClient, cfg.APIBaseURL, cfg.APITimeout)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.client = client
	a.store = store.New()
	a.state = state.New()
	a.coord = refresh.NewCoordinator(client, a.store, a.state, a.logger)
	return nil
}

func (a *app) render(cmd *cobra.Command) *renderer {
	return newRenderer(cmd.OutOrStdout())
}

// load performs a full reload and waits for the current month summary.
func (a *app) load(ctx context.Context) refresh.Report {
	report := a.coord.Reload(ctx)
	a.coord.Wait()
	return report
}

func newGoogleExporter(ctx context.Context, cfg *config.Config, logger *applog.Logger) (sheets.StatsExporter, error) {
	return google.New(ctx, google.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
}

func newAMQPEvents(cfg *config.Config, logger *applog.Logger) (EventSource, error) {
	if cfg.AMQPURL == "" {
		return nil, fmt.Errorf("AMQP_URL is required to watch events")
	}
	return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
}
