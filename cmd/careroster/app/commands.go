package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/careroster/cmd/careroster/cmd/inspect"
	"github.com/agentstation/careroster/cmd/careroster/cmd/overlay"
	synccmd "github.com/agentstation/careroster/cmd/careroster/cmd/sync"
	"github.com/agentstation/careroster/cmd/careroster/cmd/validate"
	"github.com/agentstation/careroster/cmd/careroster/cmd/version"
)

func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(synccmd.NewCommand(a))
	rootCmd.AddCommand(inspect.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(validate.NewCommand(a))
	rootCmd.AddCommand(overlay.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}
