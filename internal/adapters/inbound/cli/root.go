package cli

import (
	"context"
	"fmt"
	"slices"

	portsin "hdpay/internal/application/ports/in"
	portsout "hdpay/internal/application/ports/out"
	apperrors "hdpay/internal/shared_kernel/errors"

	"github.com/spf13/cobra"
)

var ValidFormats = []string{"text", "json"}

type RootOptions struct {
	Format string
}

// Sweeper runs one cycle of a background job on demand.
type Sweeper interface {
	RunOnce(ctx context.Context) (string, *apperrors.AppError)
}

// Services are the use cases behind the database-backed commands.
type Services struct {
	CreateInvoice portsin.CreateInvoiceUseCase
	GetInvoice    portsin.GetInvoiceUseCase
	CheckInvoice  portsin.CheckInvoiceUseCase
	CancelInvoice portsin.CancelInvoiceUseCase
	PaymentCheck  Sweeper
	Finalize      Sweeper
	Expire        Sweeper
}

// Dependencies are resolved lazily so that address and seed commands work
// without a database.
type Dependencies struct {
	LoadServices func(ctx context.Context) (Services, func(), error)
	LoadDeriver  func() (portsout.AddressDeriver, error)
}

func NewRootCommand(deps Dependencies) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "hdpayctl",
		Short:         "Operate the hdpay invoice service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newInvoiceCommand(opts, deps))
	cmd.AddCommand(newSweepCommand(opts, deps))
	cmd.AddCommand(newAddressCommand(opts, deps))
	cmd.AddCommand(newSeedCommand(opts, deps))

	return cmd
}

func withServices(ctx context.Context, deps Dependencies, fn func(Services) error) error {
	if deps.LoadServices == nil {
		return NewExitError(ExitCommandError, "database-backed commands are not available")
	}
	services, closeFn, err := deps.LoadServices(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start services", err)
	}
	if closeFn != nil {
		defer closeFn()
	}
	return fn(services)
}
