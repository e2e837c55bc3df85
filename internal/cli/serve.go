package cli

import (
	"github.com/spf13/cobra"

	"github.com/diakonovmakar/yatube-final/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := rootOpts.load()
			if err != nil {
				return err
			}

			srv, err := server.NewServer(cmd.Context(), cfg, lgr)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
}
