package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mushfiqur07/roadeside-sub002/internal/models"
	"github.com/Mushfiqur07/roadeside-sub002/internal/payment"
	"github.com/Mushfiqur07/roadeside-sub002/internal/ui"
)

func (a *app) payCmd() *cobra.Command {
	var (
		amount  float64
		method  string
		details payment.Details
		invoice string
	)

	cmd := &cobra.Command{
		Use:   "pay <request-id>",
		Short: "Pay for a completed request (simulated)",
		Long: `Walks the staged payment flow: method, details, simulated
verification, record creation. Test credentials: OTP 1234, PIN 1234.
No real money moves.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}

			orchestrator, err := payment.NewOrchestrator(a.client.Payments, a.cfg.Payment, func(paymentID string) {
				a.notifier.Success("Payment " + paymentID + " recorded")
			}, a.log)
			if err != nil {
				return err
			}

			if err := orchestrator.Start(args[0], amount, nil); err != nil {
				return err
			}
			if err := orchestrator.SelectMethod(models.PaymentMethod(method)); err != nil {
				return err
			}

			created, err := orchestrator.Submit(cmd.Context(), details)
			if err != nil {
				return err
			}

			fmt.Printf("Paid %s via %s (txn %s)\n",
				ui.Money(a.cfg.App.CurrencySymbol, created.Amount), created.Method, created.TransactionID)
			fmt.Printf("Commission %s, mechanic receives %s\n",
				ui.Money(a.cfg.App.CurrencySymbol, created.CommissionAmount),
				ui.Money(a.cfg.App.CurrencySymbol, created.NetToMechanic))

			if invoice != "" {
				blob, _, err := orchestrator.Invoice(cmd.Context())
				if err != nil {
					return fmt.Errorf("download invoice: %w", err)
				}
				if err := ui.SaveBlob(invoice, blob); err != nil {
					return err
				}
				fmt.Printf("Invoice saved to %s\n", invoice)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "amount to pay")
	cmd.Flags().StringVar(&method, "method", "", "bkash, nagad, rocket, card or cash")
	cmd.Flags().StringVar(&details.PhoneNumber, "wallet-phone", "", "wallet phone (01XXXXXXXXX)")
	cmd.Flags().StringVar(&details.OTP, "otp", "", "wallet OTP")
	cmd.Flags().StringVar(&details.PIN, "pin", "", "wallet PIN")
	cmd.Flags().StringVar(&details.CardNumber, "card-number", "", "card number")
	cmd.Flags().StringVar(&details.CardholderName, "card-name", "", "cardholder name")
	cmd.Flags().StringVar(&details.ExpiryDate, "card-expiry", "", "expiry MM/YY")
	cmd.Flags().StringVar(&details.CVV, "card-cvv", "", "CVV")
	cmd.Flags().StringVar(&invoice, "invoice", "", "save the invoice PDF to this path")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("method")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <transaction-id>",
		Short: "Look a payment up by its transaction id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			p, err := a.client.Payments.Verify(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ui.RenderSummary(os.Stdout, [][2]string{
				{"Payment", p.ID},
				{"Request", p.RequestID},
				{"Transaction", p.TransactionID},
				{"Method", string(p.Method)},
				{"Amount", ui.Money(a.cfg.App.CurrencySymbol, p.Amount)},
				{"Commission", ui.Money(a.cfg.App.CurrencySymbol, p.CommissionAmount)},
				{"Net", ui.Money(a.cfg.App.CurrencySymbol, p.NetToMechanic)},
				{"Status", string(p.Status)},
			})
			return nil
		},
	}
}
