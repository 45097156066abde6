// Package overlay provides commands to read and edit the human edit overlay.
package overlay

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/careroster/internal/cmd/application"
	"github.com/agentstation/careroster/internal/cmd/output"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/overlay"
)

// NewCommand creates the overlay command and its subcommands.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "overlay",
		GroupID: "management",
		Short:   "Show and edit human overrides",
		Long: `Overlay manages the human edits that always win over automated imports.

Every field set here is final: later syncs never change it, and inference
never fires on it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newShowCommand(app))
	cmd.AddCommand(newSetCommand(app))
	cmd.AddCommand(newDeleteCommand(app))
	return cmd
}

func newShowCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "show [client-id]",
		Short: "Show overlays",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Overlay(cmd.Context())
			if err != nil {
				return err
			}

			var list []overlay.Overlay
			if len(args) == 1 {
				o, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				list = []overlay.Overlay{*o}
			} else if list, err = store.List(cmd.Context()); err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			var data any = list
			if format == output.FormatTable {
				data = overlaysTable(list)
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
		},
	}
}

func newSetCommand(app application.Application) *cobra.Command {
	var (
		editedBy string
		removed  []string
	)

	cmd := &cobra.Command{
		Use:   "set <client-id> [field=value...]",
		Short: "Set override fields for a client",
		Example: `  careroster overlay set AZ-1000 gender=男性
  careroster overlay set AZ-1001 care_level=介護3 current_status=入院中 --edited-by yamada
  careroster overlay set AZ-1001 --remove evt-3f2a`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if len(args) == 1 && len(removed) == 0 {
				return errors.NewValidationError("assignment", nil, "nothing to set")
			}

			store, err := app.Overlay(cmd.Context())
			if err != nil {
				return err
			}
			o, err := store.Get(cmd.Context(), id)
			switch {
			case errors.IsNotFound(err):
				o = &overlay.Overlay{ClientID: id}
			case err != nil:
				return err
			}

			for _, arg := range args[1:] {
				f, v, err := parseAssignment(arg)
				if err != nil {
					return err
				}
				if err := o.Fields.Set(f, v); err != nil {
					return errors.WrapValidation(f.String(), err)
				}
			}
			for _, key := range removed {
				if !slices.Contains(o.Removed, key) {
					o.Removed = append(o.Removed, key)
				}
			}
			o.EditedBy = editedBy
			o.EditedAt = time.Now().UTC()

			if err := store.Put(cmd.Context(), *o); err != nil {
				return err
			}
			app.Logger().Info().Str("client", id).Str("edited_by", editedBy).Msg("overlay updated")
			output.NewPrinter(cmd.ErrOrStderr(), app.NoColor()).Success("overlay for %s saved", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&editedBy, "edited-by", os.Getenv("USER"), "who made the edit")
	cmd.Flags().StringSliceVar(&removed, "remove", nil, "tombstone a collection item by key")
	return cmd
}

func newDeleteCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <client-id>",
		Aliases: []string{"rm"},
		Short:   "Delete every override for a client",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Overlay(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			output.NewPrinter(cmd.ErrOrStderr(), app.NoColor()).Success("overlay for %s deleted", args[0])
			return nil
		},
	}
}

func overlaysTable(list []overlay.Overlay) output.Data {
	data := output.Data{Headers: []string{"Client", "Fields", "Items", "Removed", "Edited By", "Edited At"}}
	for _, o := range list {
		var fields []string
		for _, f := range o.Fields.Fields() {
			v, _ := o.Fields.Get(f)
			fields = append(fields, fmt.Sprintf("%s=%v", f, v))
		}
		items := len(o.Meetings) + len(o.ChangeEvents) + len(o.PlannedEquipment) +
			len(o.SelectedEquipment) + len(o.SalesRecords)

		editedAt := ""
		if !o.EditedAt.IsZero() {
			editedAt = o.EditedAt.Format(time.RFC3339)
		}
		data.Rows = append(data.Rows, []string{
			o.ClientID,
			strings.Join(fields, "\n"),
			strconv.Itoa(items),
			strings.Join(o.Removed, ", "),
			o.EditedBy,
			editedAt,
		})
	}
	return data
}
