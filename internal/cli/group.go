package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diakonovmakar/yatube-final/internal/app/services"
	"github.com/diakonovmakar/yatube-final/internal/bootstrap"
)

// GroupOptions holds flags for the group create command.
type GroupOptions struct {
	*RootOptions
	Title       string
	Slug        string
	Description string
}

// NewGroupCommand creates the group command and its subcommands.
func NewGroupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage post groups",
	}
	cmd.AddCommand(newGroupCreateCommand(&GroupOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newGroupListCommand(rootOpts))
	return cmd
}

func newGroupCreateCommand(opts *GroupOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		Long: `Create a group that posts can be filed under.

Example:
  yatube group create --title "Leo Tolstoy" --slug leo
  yatube group create --title "Cats"          # slug derived: cats`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroups(cmd, opts.RootOptions, func(groups *services.GroupService) error {
				group, err := groups.Create(cmd.Context(), opts.Title, opts.Slug, opts.Description)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created group %q (/group/%s/)\n", group.Title, group.Slug)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "group title (required)")
	cmd.Flags().StringVar(&opts.Slug, "slug", "", "URL slug; derived from the title when empty")
	cmd.Flags().StringVar(&opts.Description, "description", "", "group description")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newGroupListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroups(cmd, rootOpts, func(groups *services.GroupService) error {
				all, err := groups.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, g := range all {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", g.Slug, g.Title)
				}
				return nil
			})
		},
	}
}

// withGroups opens the configured store for the duration of fn.
func withGroups(cmd *cobra.Command, rootOpts *RootOptions, fn func(*services.GroupService) error) error {
	cfg, lgr, err := rootOpts.load()
	if err != nil {
		return err
	}

	stores, closeStores, err := bootstrap.SetupStores(cmd.Context(), cfg, lgr)
	if err != nil {
		return err
	}
	defer closeStores()

	return fn(services.NewGroupService(stores.Groups, lgr))
}
