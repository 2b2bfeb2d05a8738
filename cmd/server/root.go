package main

import (
	"github.com/spf13/cobra"

	"github.com/mmynk/dinnerpicker/internal/config"
	"github.com/mmynk/dinnerpicker/pkg/logging"
)

// app carries state shared by subcommands once the root has loaded config.
type app struct {
	load func() (*config.Config, error)
	cfg  *config.Config
}

// newRootCmd creates the top-level command. load supplies configuration so
// tests can bypass the process environment.
func newRootCmd(load func() (*config.Config, error)) *cobra.Command {
	a := &app{load: load}

	root := &cobra.Command{
		Use:           "dinnerpicker",
		Short:         "Household dinner selection server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			logging.Setup(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newSummaryCmd(a),
		newResetCmd(a),
		newMenuCmd(a),
	)

	return root
}
