package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mushfiqur07/roadeside-sub002/internal/api"
	"github.com/Mushfiqur07/roadeside-sub002/internal/lifecycle"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/internal/ui"
)

func (a *app) requestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Create and drive service requests",
	}

	cmd.AddCommand(
		a.requestCreateCmd(),
		a.requestShowCmd(),
		a.requestListCmd(),
		a.requestActionCmd("accept", "Accept a pending request", lifecycle.EventAccept),
		a.requestActionCmd("reject", "Reject a pending request", lifecycle.EventReject),
		a.requestActionCmd("start", "Start the journey to the pickup", lifecycle.EventStartJourney),
		a.requestActionCmd("arrived", "Mark arrival at the pickup", lifecycle.EventMarkArrived),
		a.requestActionCmd("work", "Start working on the vehicle", lifecycle.EventStartWork),
		a.requestCompleteCmd(),
		a.requestActionCmd("confirm-payment", "Confirm the payment is settled", lifecycle.EventConfirmPayment),
		a.requestRateCmd(),
		a.requestCancelCmd(),
		a.requestStatsCmd(),
	)
	return cmd
}

func (a *app) requestCreateCmd() *cobra.Command {
	var input api.CreateRequestInput
	var vehicle, address string
	var lat, lng float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a service request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			input.VehicleType = models.VehicleType(vehicle)
			input.PickupLocation = models.Location{Address: address, Latitude: lat, Longitude: lng}

			req, err := a.controller.Create(cmd.Context(), &input)
			if err != nil {
				return err
			}
			fmt.Printf("Request %s created (%s)\n", req.ID, req.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&vehicle, "vehicle", "car", "vehicle type (car, truck, bike, cng, other)")
	cmd.Flags().StringVar(&input.ProblemType, "problem", "", "problem type")
	cmd.Flags().StringVar(&input.Description, "description", "", "free-text description")
	cmd.Flags().StringVar(&address, "address", "", "pickup address")
	cmd.Flags().Float64Var(&lat, "lat", 0, "pickup latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "pickup longitude")
	cmd.Flags().Float64Var(&input.EstimatedCost, "estimate", 0, "estimated cost")
	cmd.MarkFlagRequired("problem")
	cmd.MarkFlagRequired("address")
	return cmd
}

func (a *app) requestShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a request and the actions available to you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireAuth(cmd.Context())
			if err != nil {
				return err
			}
			req, err := a.controller.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			pairs := [][2]string{
				{"ID", req.ID},
				{"Status", string(req.Status)},
				{"Vehicle", string(req.VehicleType)},
				{"Problem", req.ProblemType},
				{"Pickup", req.PickupLocation.Address},
				{"Estimated", ui.Money(a.cfg.App.CurrencySymbol, req.EstimatedCost)},
				{"Payment", string(req.PaymentStatus)},
			}
			if req.ActualCost != nil {
				pairs = append(pairs, [2]string{"Actual", ui.Money(a.cfg.App.CurrencySymbol, *req.ActualCost)})
			}
			ui.RenderSummary(os.Stdout, pairs)

			actions := lifecycle.ActionsFor(user.Role, req.Status)
			if len(actions) > 0 {
				fmt.Print("Actions:")
				for _, action := range actions {
					fmt.Printf(" %s", action)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func (a *app) requestListCmd() *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireAuth(cmd.Context())
			if err != nil {
				return err
			}

			query := models.PageQuery{Page: page, Limit: limit}
			var items []models.ServiceRequest
			var pagination models.Pagination

			if user.Role == models.RoleMechanic {
				result, err := a.client.Requests.ListForMechanic(cmd.Context(), user.ID, query)
				if err != nil {
					return err
				}
				items, pagination = result.Items, result.Pagination
			} else {
				result, err := a.client.Requests.ListForUser(cmd.Context(), query)
				if err != nil {
					return err
				}
				items, pagination = result.Items, result.Pagination
			}

			rows := make([][]string, 0, len(items))
			for _, req := range items {
				rows = append(rows, []string{
					req.ID,
					string(req.Status),
					req.ProblemType,
					ui.Money(a.cfg.App.CurrencySymbol, req.EstimatedCost),
					string(req.PaymentStatus),
				})
			}
			ui.RenderTable(os.Stdout, []string{"ID", "STATUS", "PROBLEM", "ESTIMATE", "PAYMENT"}, rows)
			fmt.Printf("page %d/%d (%d total)\n", pagination.Current, pagination.Pages, pagination.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", models.DefaultPageSize, "page size (1-100)")
	return cmd
}

func (a *app) requestActionCmd(use, short string, event lifecycle.Event) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			req, err := a.controller.Do(cmd.Context(), args[0], event, lifecycle.ActionInput{Reason: reason})
			if err != nil {
				return err
			}
			fmt.Printf("Request %s is now %s\n", req.ID, req.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "optional reason")
	return cmd
}

func (a *app) requestCompleteCmd() *cobra.Command {
	var cost float64

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete the work, recording the actual cost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			req, err := a.controller.Do(cmd.Context(), args[0], lifecycle.EventComplete, lifecycle.ActionInput{ActualCost: cost})
			if err != nil {
				return err
			}
			fmt.Printf("Request %s completed\n", req.ID)
			return nil
		},
	}

	cmd.Flags().Float64Var(&cost, "cost", 0, "actual cost")
	cmd.MarkFlagRequired("cost")
	return cmd
}

func (a *app) requestRateCmd() *cobra.Command {
	var rating float64
	var comment string

	cmd := &cobra.Command{
		Use:   "rate <id>",
		Short: "Rate a completed request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			_, err := a.controller.Do(cmd.Context(), args[0], lifecycle.EventRate, lifecycle.ActionInput{Rating: rating, Comment: comment})
			if err != nil {
				return err
			}
			fmt.Println("Thanks for the rating")
			return nil
		},
	}

	cmd.Flags().Float64Var(&rating, "rating", 0, "rating (1-5)")
	cmd.Flags().StringVar(&comment, "comment", "", "optional comment")
	cmd.MarkFlagRequired("rating")
	return cmd
}

func (a *app) requestCancelCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a request that has not started yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			req, err := a.controller.Do(cmd.Context(), args[0], lifecycle.EventCancel, lifecycle.ActionInput{Reason: reason})
			if err != nil {
				return err
			}
			fmt.Printf("Request %s cancelled\n", req.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "cancellation reason")
	return cmd
}

func (a *app) requestStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Mechanic dashboard numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			stats, err := a.client.Requests.MechanicStats(cmd.Context())
			if err != nil {
				return err
			}
			ui.RenderSummary(os.Stdout, [][2]string{
				{"Active", strconv.Itoa(stats.ActiveRequests)},
				{"Completed today", strconv.Itoa(stats.CompletedToday)},
				{"Completed total", strconv.Itoa(stats.CompletedTotal)},
				{"Earnings today", ui.Money(a.cfg.App.CurrencySymbol, stats.EarningsToday)},
				{"Earnings total", ui.Money(a.cfg.App.CurrencySymbol, stats.EarningsTotal)},
				{"Rating", fmt.Sprintf("%.1f", stats.AverageRating)},
			})
			return nil
		},
	}
}
