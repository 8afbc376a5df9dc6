package cli

import (
	"time"

	"hdpay/internal/application/dto"

	"github.com/spf13/cobra"
)

type createInvoiceOptions struct {
	owner   string
	coin    string
	amount  string
	kind    string
	prepaid string
	item    map[string]string
}

func newInvoiceCommand(rootOpts *RootOptions, deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Create and inspect invoices",
	}

	cmd.AddCommand(newInvoiceCreateCommand(rootOpts, deps))
	cmd.AddCommand(newInvoiceShowCommand(rootOpts, deps))
	cmd.AddCommand(newInvoiceCheckCommand(rootOpts, deps))
	cmd.AddCommand(newInvoiceCancelCommand(rootOpts, deps))

	return cmd
}

func newInvoiceCreateCommand(rootOpts *RootOptions, deps Dependencies) *cobra.Command {
	opts := &createInvoiceOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Allocate an address and open a new invoice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(rootOpts, cmd)
			item := make(map[string]any, len(opts.item))
			for key, value := range opts.item {
				item[key] = value
			}

			return withServices(cmd.Context(), deps, func(services Services) error {
				output, appErr := services.CreateInvoice.Execute(cmd.Context(), dto.CreateInvoiceCommand{
					OwnerID:            opts.owner,
					Kind:               opts.kind,
					Coin:               opts.coin,
					FiatAmount:         opts.amount,
					PrepaidFromBalance: opts.prepaid,
					Item:               item,
				})
				if appErr != nil {
					return out.appError(appErr)
				}
				return out.success(output, invoiceFields(output))
			})
		},
	}

	cmd.Flags().StringVar(&opts.owner, "owner", "", "owner id the invoice belongs to")
	cmd.Flags().StringVar(&opts.coin, "coin", "", "coin to pay with (BTC|LTC|USDT_TRX)")
	cmd.Flags().StringVar(&opts.amount, "amount", "", "fiat amount in EUR")
	cmd.Flags().StringVar(&opts.kind, "kind", "top_up", "invoice kind (top_up|purchase)")
	cmd.Flags().StringVar(&opts.prepaid, "prepaid", "", "EUR taken from the owner's balance for a purchase")
	cmd.Flags().StringToStringVar(&opts.item, "item", nil, "purchase item details as key=value pairs")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("coin")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newInvoiceShowCommand(rootOpts *RootOptions, deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "show <transaction_id>",
		Short: "Show the current state of an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withServices(cmd.Context(), deps, func(services Services) error {
				output, appErr := services.GetInvoice.Execute(cmd.Context(), dto.GetInvoiceQuery{TransactionID: args[0]})
				if appErr != nil {
					return out.appError(appErr)
				}
				return out.success(output, invoiceFields(output))
			})
		},
	}
}

func newInvoiceCheckCommand(rootOpts *RootOptions, deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "check <transaction_id>",
		Short: "Query the chain for an invoice's payment now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withServices(cmd.Context(), deps, func(services Services) error {
				output, appErr := services.CheckInvoice.Execute(cmd.Context(), dto.CheckInvoiceCommand{TransactionID: args[0]})
				if appErr != nil {
					return out.appError(appErr)
				}
				return out.success(output, []field{
					{"transaction_id", output.TransactionID},
					{"status", output.Status},
					{"newly_confirmed", output.NewlyConfirmed},
					{"message", output.Message},
				})
			})
		},
	}
}

func newInvoiceCancelCommand(rootOpts *RootOptions, deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <transaction_id>",
		Short: "Cancel an invoice that is still awaiting payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withServices(cmd.Context(), deps, func(services Services) error {
				output, appErr := services.CancelInvoice.Execute(cmd.Context(), dto.CancelInvoiceCommand{TransactionID: args[0]})
				if appErr != nil {
					return out.appError(appErr)
				}
				return out.success(output, []field{
					{"transaction_id", output.TransactionID},
					{"status", output.Status},
				})
			})
		},
	}
}

func invoiceFields(output dto.InvoiceOutput) []field {
	fields := []field{
		{"transaction_id", output.TransactionID},
		{"invoice_id", output.InvoiceID},
		{"kind", output.Kind},
		{"coin", output.Coin},
		{"address", output.Address},
		{"expected_amount", output.ExpectedAmount},
		{"fiat_amount_due", output.FiatAmountDue},
		{"payment_uri", output.PaymentURI},
		{"status", output.Status},
		{"transaction_status", output.TransactionStatus},
		{"confirmations", output.Confirmations},
		{"expires_at", output.ExpiresAt.Format(time.RFC3339)},
	}
	if output.BlockchainTxID != nil {
		fields = append(fields, field{"blockchain_tx_id", *output.BlockchainTxID})
	}
	return fields
}

func newFormatter(rootOpts *RootOptions, cmd *cobra.Command) outputFormatter {
	return outputFormatter{format: rootOpts.Format, writer: cmd.OutOrStdout()}
}
