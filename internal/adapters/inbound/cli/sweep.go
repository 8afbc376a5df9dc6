package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

type sweepResult struct {
	Worker  string `json:"worker"`
	Summary string `json:"summary"`
}

func newSweepCommand(rootOpts *RootOptions, deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one cycle of a background worker",
	}

	jobs := []struct {
		use   string
		short string
		pick  func(Services) Sweeper
	}{
		{"monitor", "Check monitoring invoices against the chain", func(s Services) Sweeper { return s.PaymentCheck }},
		{"finalize", "Apply balance effects for confirmed payments", func(s Services) Sweeper { return s.Finalize }},
		{"expire", "Expire invoices whose payment window has passed", func(s Services) Sweeper { return s.Expire }},
	}
	for _, job := range jobs {
		cmd.AddCommand(&cobra.Command{
			Use:   job.use,
			Short: job.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				out := newFormatter(rootOpts, cmd)
				return withServices(cmd.Context(), deps, func(services Services) error {
					sweeper := job.pick(services)
					if sweeper == nil {
						return NewExitError(ExitCommandError, job.use+" worker is not configured")
					}
					summary, appErr := sweeper.RunOnce(cmd.Context())
					if appErr != nil {
						return out.appError(appErr)
					}
					fields := []field{{"worker", job.use}}
					for _, pair := range strings.Fields(summary) {
						key, value, _ := strings.Cut(pair, "=")
						fields = append(fields, field{key, value})
					}
					return out.success(sweepResult{Worker: job.use, Summary: summary}, fields)
				})
			},
		})
	}

	return cmd
}
