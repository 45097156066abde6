// Package sync provides the command that runs one reconciliation pass.
package sync

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/careroster"
	"github.com/agentstation/careroster/internal/cmd/application"
	"github.com/agentstation/careroster/internal/cmd/output"
	"github.com/agentstation/careroster/internal/metrics"
	"github.com/agentstation/careroster/pkg/clients"
)

// NewCommand creates the sync command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		dryRun         bool
		metricsFile    string
		provenanceFile string
	)

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Reconcile source extracts into the client registry",
		Long: `Sync runs one reconciliation pass: it fetches the configured source
extracts, resolves every row onto a client, normalizes and infers values,
deduplicates change events and merges everything with the human edit overlay.
The registry is replaced atomically, and only when something changed.`,
		Example: `  careroster sync                              # Reconcile and write the registry
  careroster sync --dry-run -o json            # Report what would change
  careroster sync --metrics-file run.prom      # Also write Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []careroster.Option{careroster.WithDryRun(dryRun)}
			if provenanceFile != "" {
				opts = append(opts, careroster.WithProvenanceFile(provenanceFile))
			}
			if metricsFile == "" {
				metricsFile = app.MetricsFile()
			}
			return run(cmd, app, metricsFile, opts)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run every stage but skip the registry write")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics in Prometheus textfile format")
	cmd.Flags().StringVar(&provenanceFile, "provenance-file", "", "write field provenance after a successful write")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, metricsFile string, opts []careroster.Option) error {
	ctx := cmd.Context()
	logger := app.Logger()

	p, err := app.Pipeline(ctx, opts...)
	if err != nil {
		return err
	}
	p.OnClientCreated(func(c clients.Client) {
		logger.Info().Str("client", c.ID).Msg("client created")
	})
	p.OnClientUpdated(func(_, c clients.Client) {
		logger.Debug().Str("client", c.ID).Msg("client updated")
	})

	report, runErr := p.Run(ctx)

	if metricsFile != "" {
		rec := metrics.New()
		rec.Observe(report)
		if err := rec.WriteTextfile(metricsFile); err != nil {
			logger.Warn().Err(err).Msg("failed to write metrics")
		}
	}

	if report != nil {
		if err := render(cmd, app, report); err != nil {
			return err
		}
	}

	status := output.NewPrinter(cmd.ErrOrStderr(), app.NoColor())
	if runErr != nil {
		status.Failure("sync failed: %v", runErr)
		return runErr
	}
	for _, w := range report.Warnings {
		status.Warning("%s", w)
	}
	if n := len(report.Errors); n > 0 {
		status.Muted("%d recovered errors (first: %s)", report.Recovered, report.Errors[0])
	}
	status.Success("%s", report.Summary())
	return nil
}

func render(cmd *cobra.Command, app application.Application, report *careroster.Report) error {
	format := output.DetectFormat(app.OutputFormat())
	formatter := output.NewFormatter(format)

	var data any = report
	if format == output.FormatTable {
		data = output.ReportTable(report)
	}
	return formatter.Format(cmd.OutOrStdout(), data)
}
