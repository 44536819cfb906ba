package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mushfiqur07/roadeside-sub002/internal/history"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/internal/ui"
)

type historyFlags struct {
	page, limit          int
	status, method       string
	startDate, endDate   string
	minAmount, maxAmount float64
}

func (f *historyFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.limit, "limit", models.DefaultPageSize, "page size (1-100)")
	cmd.Flags().StringVar(&f.status, "status", "", "filter by status")
	cmd.Flags().StringVar(&f.method, "method", "", "filter by payment method")
	cmd.Flags().StringVar(&f.startDate, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.endDate, "to", "", "end date YYYY-MM-DD")
	cmd.Flags().Float64Var(&f.minAmount, "min", 0, "minimum amount")
	cmd.Flags().Float64Var(&f.maxAmount, "max", 0, "maximum amount")
}

func (f *historyFlags) filter() *models.HistoryFilter {
	filter := &models.HistoryFilter{
		Status:    models.RequestStatus(f.status),
		Method:    models.PaymentMethod(f.method),
		StartDate: f.startDate,
		EndDate:   f.endDate,
	}
	if f.minAmount > 0 {
		filter.MinAmount = &f.minAmount
	}
	if f.maxAmount > 0 {
		filter.MaxAmount = &f.maxAmount
	}
	return filter
}

func (a *app) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse history, analytics and invoices",
	}

	cmd.AddCommand(
		a.historyRequestsCmd(),
		a.historyPaymentsCmd(),
		a.historyExportCmd(),
		a.historyInvoiceCmd(),
		a.historyAnalyticsCmd(),
		a.historyRatingsCmd(),
		a.historySummaryCmd(),
		a.historyPaymentStatsCmd(),
	)
	return cmd
}

func (a *app) historyPaymentStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payment-stats",
		Short: "Payment totals broken down by method",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			stats, err := a.client.Payments.Stats(cmd.Context())
			if err != nil {
				return err
			}
			ui.RenderSummary(os.Stdout, [][2]string{
				{"Payments", strconv.Itoa(stats.TotalPayments)},
				{"Total", ui.Money(a.cfg.App.CurrencySymbol, stats.TotalAmount)},
			})
			for method, amount := range stats.ByMethod {
				fmt.Printf("  %s: %s\n", method, ui.Money(a.cfg.App.CurrencySymbol, amount))
			}
			return nil
		},
	}
}

func (a *app) historyRequestsCmd() *cobra.Command {
	flags := &historyFlags{}

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Request history (role-aware)",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireAuth(cmd.Context())
			if err != nil {
				return err
			}

			view := a.views.UserRequests
			if user.Role == models.RoleMechanic {
				view = a.views.MechanicRequests
			}
			view.SetFilter(flags.filter())
			view.SetPage(flags.page)
			view.SetLimit(flags.limit)

			state, err := view.Load(cmd.Context())
			if err != nil {
				return err
			}
			renderHistoryItems(a, state)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func (a *app) historyPaymentsCmd() *cobra.Command {
	flags := &historyFlags{}

	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Payment history (role-aware)",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireAuth(cmd.Context())
			if err != nil {
				return err
			}

			view := a.views.UserPayments
			if user.Role == models.RoleMechanic {
				view = a.views.MechanicPayments
			}
			view.SetFilter(flags.filter())
			view.SetPage(flags.page)
			view.SetLimit(flags.limit)

			state, err := view.Load(cmd.Context())
			if err != nil {
				return err
			}

			if len(state.Items) == 0 {
				fmt.Println("No payments yet")
				return nil
			}
			rows := make([][]string, 0, len(state.Items))
			for _, p := range state.Items {
				rows = append(rows, []string{
					p.ID,
					p.TransactionID,
					string(p.Method),
					ui.Money(a.cfg.App.CurrencySymbol, p.Amount),
					ui.Money(a.cfg.App.CurrencySymbol, p.NetToMechanic),
					string(p.Status),
				})
			}
			ui.RenderTable(os.Stdout, []string{"ID", "TXN", "METHOD", "AMOUNT", "NET", "STATUS"}, rows)
			fmt.Printf("page %d/%d (%d total)\n", state.Pagination.Current, state.Pagination.Pages, state.Pagination.Total)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func renderHistoryItems(a *app, state history.State[models.HistoryItem]) {
	if len(state.Items) == 0 {
		fmt.Println("No requests yet")
		return
	}
	rows := make([][]string, 0, len(state.Items))
	for _, item := range state.Items {
		counterpart := item.MechanicName
		if counterpart == "" {
			counterpart = item.UserName
		}
		cost := item.EstimatedCost
		if item.ActualCost != nil {
			cost = *item.ActualCost
		}
		rows = append(rows, []string{
			item.ID,
			string(item.Status),
			item.ProblemType,
			counterpart,
			ui.Money(a.cfg.App.CurrencySymbol, cost),
		})
	}
	ui.RenderTable(os.Stdout, []string{"ID", "STATUS", "PROBLEM", "WITH", "COST"}, rows)
	fmt.Printf("page %d/%d (%d total)\n", state.Pagination.Current, state.Pagination.Pages, state.Pagination.Total)
}

func (a *app) historyExportCmd() *cobra.Command {
	var out string
	flags := &historyFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export request history as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			a.views.UserRequests.SetFilter(flags.filter())

			blob, _, err := a.views.ExportCSV(cmd.Context())
			if err != nil {
				return err
			}
			if err := ui.SaveBlob(out, blob); err != nil {
				return err
			}
			fmt.Printf("Exported to %s\n", out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&out, "out", "history.csv", "output file")
	return cmd
}

func (a *app) historyInvoiceCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "invoice <payment-id>",
		Short: "Download a payment invoice PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			blob, _, err := a.views.Invoice(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = "invoice-" + args[0] + ".pdf"
			}
			if err := ui.SaveBlob(out, blob); err != nil {
				return err
			}
			fmt.Printf("Invoice saved to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output file")
	return cmd
}

func (a *app) historyAnalyticsCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Summary counters and period series",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			analytics, err := a.views.Analytics(cmd.Context(), models.AnalyticsPeriod(period))
			if err != nil {
				return err
			}

			ui.RenderSummary(os.Stdout, [][2]string{
				{"Period", string(analytics.Period)},
				{"Requests", strconv.Itoa(analytics.TotalRequests)},
				{"Completed", strconv.Itoa(analytics.CompletedRequests)},
				{"Cancelled", strconv.Itoa(analytics.CancelledRequests)},
				{"Spent", ui.Money(a.cfg.App.CurrencySymbol, analytics.TotalSpent)},
				{"Avg rating", fmt.Sprintf("%.1f", analytics.AverageRating)},
			})
			for _, point := range analytics.Series {
				fmt.Printf("  %s: %d requests, %s\n", point.Label, point.Requests,
					ui.Money(a.cfg.App.CurrencySymbol, point.Spent))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "1month", "1month, 3months, 6months or 12months")
	return cmd
}

func (a *app) historyRatingsCmd() *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "ratings",
		Short: "Ratings you have given",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			result, err := a.views.Ratings(cmd.Context(), models.PageQuery{Page: page, Limit: limit})
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(result.Items))
			for _, entry := range result.Items {
				rows = append(rows, []string{
					entry.RequestID,
					entry.MechanicName,
					fmt.Sprintf("%.1f", entry.Rating),
					entry.Comment,
				})
			}
			ui.RenderTable(os.Stdout, []string{"REQUEST", "MECHANIC", "RATING", "COMMENT"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", models.DefaultPageSize, "page size")
	return cmd
}

func (a *app) historySummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Mechanic earnings summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			summary, err := a.views.MechanicSummary(cmd.Context())
			if err != nil {
				return err
			}
			ui.RenderSummary(os.Stdout, [][2]string{
				{"Jobs", strconv.Itoa(summary.TotalJobs)},
				{"Completed", strconv.Itoa(summary.CompletedJobs)},
				{"Cancelled", strconv.Itoa(summary.CancelledJobs)},
				{"Gross", ui.Money(a.cfg.App.CurrencySymbol, summary.GrossEarnings)},
				{"Commission", ui.Money(a.cfg.App.CurrencySymbol, summary.Commission)},
				{"Net", ui.Money(a.cfg.App.CurrencySymbol, summary.NetEarnings)},
				{"Rating", fmt.Sprintf("%.1f", summary.AverageRating)},
			})
			return nil
		},
	}
}
