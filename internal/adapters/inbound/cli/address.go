package cli

import (
	"strings"

	portsout "hdpay/internal/application/ports/out"
	valueobjects "hdpay/internal/domain/value_objects"

	"github.com/spf13/cobra"
)

type deriveResult struct {
	Coin            string `json:"coin"`
	Index           int64  `json:"index"`
	Address         string `json:"address"`
	ExpectedAddress string `json:"expected_address,omitempty"`
	Match           *bool  `json:"match,omitempty"`
}

func newAddressCommand(rootOpts *RootOptions, deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Inspect deterministic deposit addresses",
	}

	var (
		coin   string
		index  int64
		expect string
	)
	derive := &cobra.Command{
		Use:   "derive",
		Short: "Derive the address at an index without touching the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(rootOpts, cmd)

			parsedCoin, appErr := valueobjects.ParseCoin(coin)
			if appErr != nil {
				return out.appError(appErr)
			}
			deriver, err := loadDeriver(deps)
			if err != nil {
				return err
			}
			address, appErr := deriver.DeriveAddress(parsedCoin, index)
			if appErr != nil {
				return out.appError(appErr)
			}

			result := deriveResult{Coin: parsedCoin.String(), Index: index, Address: address}
			fields := []field{{"coin", result.Coin}, {"index", index}, {"address", address}}
			expected := strings.TrimSpace(expect)
			if expected != "" {
				match := expected == address
				result.ExpectedAddress = expected
				result.Match = &match
				fields = append(fields, field{"expected_address", expected}, field{"match", match})
			}
			if err := out.success(result, fields); err != nil {
				return err
			}
			if result.Match != nil && !*result.Match {
				return NewExitError(ExitMismatch, "derived address does not match expected address")
			}
			return nil
		},
	}
	derive.Flags().StringVar(&coin, "coin", "", "coin (BTC|LTC|USDT_TRX)")
	derive.Flags().Int64Var(&index, "index", 0, "address index on the external chain")
	derive.Flags().StringVar(&expect, "expect", "", "fail with exit code 3 unless the derived address equals this one")
	_ = derive.MarkFlagRequired("coin")

	cmd.AddCommand(derive)
	return cmd
}

func newSeedCommand(rootOpts *RootOptions, deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Check the configured wallet seed",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate SEED_PHRASE and print the index-0 address of every coin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newFormatter(rootOpts, cmd)
			deriver, err := loadDeriver(deps)
			if err != nil {
				return err
			}

			fingerprints := map[string]string{}
			fields := []field{{"valid", true}}
			for _, coin := range valueobjects.SupportedCoins() {
				address, appErr := deriver.DeriveAddress(coin, 0)
				if appErr != nil {
					return out.appError(appErr)
				}
				fingerprints[coin.String()] = address
				fields = append(fields, field{strings.ToLower(coin.String()) + "_index0", address})
			}
			return out.success(map[string]any{"valid": true, "index0_addresses": fingerprints}, fields)
		},
	})

	return cmd
}

func loadDeriver(deps Dependencies) (portsout.AddressDeriver, error) {
	if deps.LoadDeriver == nil {
		return nil, NewExitError(ExitCommandError, "address derivation is not available")
	}
	deriver, err := deps.LoadDeriver()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "seed phrase rejected", err)
	}
	return deriver, nil
}
