// Package inspect provides the command that shows registry clients.
package inspect

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/careroster/internal/cmd/application"
	"github.com/agentstation/careroster/internal/cmd/filter"
	"github.com/agentstation/careroster/internal/cmd/output"
	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
)

// NewCommand creates the inspect command.
func NewCommand(app application.Application) *cobra.Command {
	f := &filter.ClientFilter{}

	cmd := &cobra.Command{
		Use:     "inspect [client-id]",
		GroupID: "core",
		Short:   "Show clients from the registry",
		Aliases: []string{"list", "ls"},
		Args:    cobra.MaximumNArgs(1),
		Example: `  careroster inspect                           # List all clients
  careroster inspect AZ-1000                   # Show one client with its events
  careroster inspect --status 施設入居中        # Clients living in a facility
  careroster inspect --search ｻﾄｳ --limit 5    # Search by name or kana`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load(cmd, app)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return showClient(cmd, app, reg, args[0])
			}
			return listClients(cmd, app, f.Apply(reg.List()))
		},
	}

	cmd.Flags().StringVar(&f.Status, "status", "", "filter by current status (在宅, 入院中, 施設入居中)")
	cmd.Flags().StringVar(&f.CareLevel, "care-level", "", "filter by care level (e.g. 要介護2)")
	cmd.Flags().StringVar(&f.Facility, "facility", "", "filter by facility name")
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "search ID, name and kana")
	cmd.Flags().IntVarP(&f.Limit, "limit", "l", 0, "maximum number of clients to show")

	return cmd
}

func load(cmd *cobra.Command, app application.Application) (*clients.Registry, error) {
	store, err := app.Registry(cmd.Context())
	if err != nil {
		return nil, err
	}
	return store.Load(cmd.Context())
}

func listClients(cmd *cobra.Command, app application.Application, list []clients.Client) error {
	format := output.DetectFormat(app.OutputFormat())

	var data any = list
	if format == output.FormatTable {
		data = output.ClientsTable(list)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Found %d clients\n", len(list))
	return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
}

func showClient(cmd *cobra.Command, app application.Application, reg *clients.Registry, id string) error {
	c, ok := reg.Get(id)
	if !ok {
		return errors.NewNotFoundError("client", id)
	}

	format := output.DetectFormat(app.OutputFormat())
	formatter := output.NewFormatter(format)
	if format != output.FormatTable {
		return formatter.Format(cmd.OutOrStdout(), c)
	}

	w := cmd.OutOrStdout()
	if err := formatter.Format(w, output.ClientDetail(c)); err != nil {
		return err
	}
	if len(c.ChangeEvents) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	return formatter.Format(w, output.EventsTable(c.ChangeEvents))
}
