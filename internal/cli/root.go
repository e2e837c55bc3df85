// Package cli defines the yatube command line: the web server and the
// out-of-band maintenance commands.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diakonovmakar/yatube-final/internal/bootstrap"
	"github.com/diakonovmakar/yatube-final/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
}

// NewRootCommand creates the root command for the yatube CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "yatube",
		Short:         "Yatube - a small blogging platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "configs/config.yaml", "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded before the environment")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewGroupCommand(opts))

	return cmd
}

func (o *RootOptions) load() (*config.Config, zerolog.Logger, error) {
	return bootstrap.LoadConfigAndSetupLogger(o.ConfigPath, o.EnvFile)
}
