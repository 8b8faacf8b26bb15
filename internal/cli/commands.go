package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"moneytracker/internal/amqp"
	"moneytracker/internal/api"
	"moneytracker/internal/core"
	"moneytracker/internal/filter"
	applog "moneytracker/internal/log"
	"moneytracker/internal/present"
	"moneytracker/internal/state"
)

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the current month, recent transactions and monthly stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = a.state.SetView(state.ViewDashboard)
			a.load(cmd.Context())

			snap := a.store.Snapshot()
			d := present.BuildDashboard(snap.Summary, snap.Transactions, snap.MonthlyStats)
			r := a.render(cmd)
			if a.output == outputJSON {
				return r.json(d)
			}
			r.dashboard(present.CurrentMonthTitle(a.opts.Now()), d)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	f := filter.Default()
	var remote bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions matching a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = a.state.SetView(state.ViewTransactions)
			if err := a.state.SetFilter(f); err != nil {
				return err
			}

			var txs []core.Transaction
			if remote {
				var err error
				txs, err = a.client.ListTransactions(cmd.Context(), a.state.Filter().Query())
				if err != nil {
					return fmt.Errorf("list transactions: %w", err)
				}
			} else {
				report := a.coord.Reload(cmd.Context())
				if err := report.Transactions.Err(); err != nil {
					return fmt.Errorf("list transactions: %w", err)
				}
				txs = filter.Apply(a.store.Transactions(), a.state.Filter())
			}

			l := present.BuildTransactionList(txs)
			r := a.render(cmd)
			if a.output == outputJSON {
				return r.json(l)
			}
			r.transactionList(l)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Type, "type", filter.All, "income, expense or all")
	cmd.Flags().StringVar(&f.Month, "month", "", "month as YYYY-MM")
	cmd.Flags().StringVar(&f.Category, "category", filter.All, "category key or all")
	cmd.Flags().BoolVar(&remote, "remote", false, "filter on the backend instead of locally")
	return cmd
}

func newChartsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "charts",
		Short: "Show chart series and the category distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = a.state.SetView(state.ViewCharts)
			a.load(cmd.Context())

			snap := a.store.Snapshot()
			c := present.BuildCharts(snap.Transactions, snap.MonthlyStats)
			r := a.render(cmd)
			if a.output == outputJSON {
				return r.json(c)
			}
			r.charts(c)
			return nil
		},
	}
}

func newCategoriesCmd(a *app) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the category catalog",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := core.TransactionType(typ)
			if typ != "" && !t.IsValid() {
				return fmt.Errorf("%w: %q", core.ErrInvalidType, typ)
			}
			r := a.render(cmd)
			if a.output == outputJSON {
				return r.json(core.Categories(t))
			}
			r.categories(t)
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "only show income or expense categories")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var (
		title, description string
		amount, typ        string
		category, date     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := buildDraft(a, title, description, amount, typ, category, date)
			if err != nil {
				return err
			}

			res := a.coord.Create(cmd.Context(), draft)
			if !res.OK() {
				return describeFailure(res.Err())
			}
			tx, _ := res.Value()

			r := a.render(cmd)
			if a.output == outputJSON {
				return r.json(tx)
			}
			row := present.NewTransactionRow(tx)
			r.println(fmt.Sprintf("Transacción creada %s  %s  %s  %s", row.ID, row.Date, row.Title, row.Amount))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "title (required)")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&amount, "amount", "", "positive amount, e.g. 1500000 or 12.50 (required)")
	cmd.Flags().StringVar(&typ, "type", string(core.Expense), "income or expense")
	cmd.Flags().StringVar(&category, "category", "", "category key (default depends on --type)")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func buildDraft(a *app, title, description, amount, typ, category, date string) (core.TransactionDraft, error) {
	t := core.TransactionType(strings.TrimSpace(typ))
	if !t.IsValid() {
		return core.TransactionDraft{}, fmt.Errorf("%w: %q", core.ErrInvalidType, typ)
	}
	value, err := core.ParseAmount(amount)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	if category == "" {
		category = core.DefaultCategory(t)
	}
	d := core.DateOf(a.opts.Now())
	if date != "" {
		if d, err = core.ParseDate(date); err != nil {
			return core.TransactionDraft{}, err
		}
	}
	return core.TransactionDraft{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Amount:      value,
		Type:        t,
		Category:    category,
		Date:        d,
	}, nil
}

// describeFailure folds the backend's per-field messages into the error.
func describeFailure(err error) error {
	var se *api.StatusError
	if !errors.As(err, &se) || len(se.Fields) == 0 {
		return err
	}
	parts := make([]string, 0, len(se.Fields))
	for _, field := range slices.Sorted(maps.Keys(se.Fields)) {
		parts = append(parts, field+": "+se.Fields[field])
	}
	return fmt.Errorf("%w (%s)", err, strings.Join(parts, "; "))
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.coord.Delete(cmd.Context(), args[0])
			if !res.OK() {
				if api.IsNotFound(res.Err()) {
					return fmt.Errorf("transaction %s not found", args[0])
				}
				return fmt.Errorf("delete transaction: %w", res.Err())
			}
			r := a.render(cmd)
			if a.output == outputJSON {
				return r.json(map[string]string{"deleted": args[0]})
			}
			r.println("Transacción eliminada " + args[0])
			return nil
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload and show the current month on every transaction event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, err := a.opts.NewEvents(a.cfg, a.logger)
			if err != nil {
				return fmt.Errorf("connect events: %w", err)
			}
			defer events.Close()

			r := a.render(cmd)
			show := func() {
				a.load(ctx)
				summary := present.NewMonthRow(a.store.Summary())
				if a.output == outputJSON {
					_ = r.json(summary)
					return
				}
				r.println(r.monthCard(present.CurrentMonthTitle(a.opts.Now()), summary))
			}
			show()

			err = events.ConsumeTransactionEvents(ctx, func(ctx context.Context, e *amqp.TransactionEvent) error {
				a.logger.InfoContext(ctx, "Transaction event received",
					applog.FieldTransactionID, e.ID,
					"kind", string(e.Kind),
					applog.FieldMonth, e.Month)
				if a.output == outputText {
					r.println(r.muted(fmt.Sprintf("%s %s (%s)", e.Kind, e.ID, present.MonthLabel(e.Month))))
				}
				show()
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var spreadsheet, sheet string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export monthly stats to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if spreadsheet != "" {
				a.cfg.GoogleSpreadsheetID = spreadsheet
			}
			if sheet != "" {
				a.cfg.GoogleSheetName = sheet
			}
			if err := a.cfg.ValidateExport(); err != nil {
				return err
			}

			ctx := cmd.Context()
			exporter, err := a.opts.NewExporter(ctx, a.cfg, a.logger)
			if err != nil {
				return fmt.Errorf("create exporter: %w", err)
			}

			report := a.coord.Reload(ctx)
			if err := report.MonthlyStats.Err(); err != nil {
				return fmt.Errorf("fetch monthly stats: %w", err)
			}
			stats := a.store.MonthlyStats()
			ref, err := exporter.ExportMonthlyStats(ctx, stats)
			if err != nil {
				return fmt.Errorf("export monthly stats: %w", err)
			}

			r := a.render(cmd)
			if a.output == outputJSON {
				return r.json(map[string]any{"range": ref, "months": len(stats)})
			}
			r.println(fmt.Sprintf("Exportados %d meses a %s", len(stats), ref))
			return nil
		},
	}
	cmd.Flags().StringVar(&spreadsheet, "spreadsheet", "", "spreadsheet id, overrides GOOGLE_SPREADSHEET_ID")
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet name, overrides GOOGLE_SHEET_NAME")
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "moneytracker %s\n", a.opts.Version)
		},
	}
}
