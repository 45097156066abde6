// Package validate provides the command that checks the registry and the
// edit overlay without running a sync.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/careroster/internal/cmd/application"
	"github.com/agentstation/careroster/internal/cmd/output"
	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/overlay"
)

// NewCommand creates the validate command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		GroupID: "management",
		Short:   "Check the registry and edit overlay",
		Long: `Validate loads the registry and every overlay and checks that each record
satisfies the client invariants. An overlay holding a value outside a closed
enumeration would fail the next sync, so it is reported here first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := output.NewPrinter(cmd.ErrOrStderr(), app.NoColor())
			problems := 0

			store, err := app.Registry(cmd.Context())
			if err != nil {
				return err
			}
			reg, err := store.Load(cmd.Context())
			if err != nil {
				status.Failure("registry %s: %v", store.Location(), err)
				return err
			}
			status.Success("registry %s: %d clients", store.Location(), reg.Len())

			edits, err := app.Overlay(cmd.Context())
			if err != nil {
				return err
			}
			list, err := edits.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, o := range list {
				if err := checkOverlay(reg, o); err != nil {
					problems++
					status.Failure("overlay %s: %v", o.ClientID, err)
				}
			}
			if problems > 0 {
				return errors.NewValidationError("overlay", problems, fmt.Sprintf("%d invalid overlays", problems))
			}
			status.Success("overlay: %d entries valid", len(list))
			return nil
		},
	}
}

// checkOverlay applies the overlay fields to the current record, or to a
// blank one, and validates the result.
func checkOverlay(reg *clients.Registry, o overlay.Overlay) error {
	c, ok := reg.Get(o.ClientID)
	if !ok {
		c = clients.New(o.ClientID)
	}
	for _, f := range o.Fields.Fields() {
		v, _ := o.Fields.Get(f)
		if err := c.Set(f, v); err != nil {
			return err
		}
	}
	return c.Validate()
}
