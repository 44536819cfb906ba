package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mushfiqur07/roadeside-sub002/internal/api"
	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/internal/nav"
	"github.com/Mushfiqur07/roadeside-sub002/internal/ui"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var req api.RegisterRequest
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (user or mechanic)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Role = models.Role(role)
			user, err := a.session.Register(cmd.Context(), &req)
			if err != nil {
				return err
			}
			fmt.Printf("Registered %s as %s\n", user.Name, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone (01XXXXXXXXX)")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", "user", "user or mechanic")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("phone")
	cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the session and the persisted token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Logout()
			fmt.Println("Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current principal",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireAuth(cmd.Context())
			if err != nil {
				return err
			}
			ui.RenderSummary(os.Stdout, [][2]string{
				{"ID", user.ID},
				{"Name", user.Name},
				{"Email", user.Email},
				{"Role", string(user.Role)},
				{"Home", user.Role.Home()},
			})
			return nil
		},
	}
}

func (a *app) routeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <path>",
		Short: "Resolve a client route through the role guard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// the guard runs with whatever session exists, if any
			_ = a.session.Restore(cmd.Context())
			outcome := a.routes.Resolve(args[0], a.session.Current().User)
			switch outcome.Decision {
			case nav.DecisionRedirect:
				fmt.Printf("redirect -> %s\n", outcome.Target)
			case nav.DecisionAllow:
				fmt.Printf("allow %s\n", outcome.Route.Pattern)
			default:
				fmt.Println("not found")
			}
			return nil
		},
	}
}
