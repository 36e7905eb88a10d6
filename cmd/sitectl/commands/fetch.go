package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// fetch <slug>: the published configuration behind a tenant slug.
func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <slug>",
		Short: "Fetch the published configuration of a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := api.Tenant(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cfg)
		},
	}
}

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the template catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := api.Templates(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-16s %s\n", t.ID, t.Name, t.Description)
			}
			return nil
		},
	}
}

// create -f site.toml|site.json: upload a draft configuration.
func createCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft configuration from a JSON or TOML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfiguration(file)
			if err != nil {
				return err
			}
			created, err := api.CreateConfiguration(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "configuration document (.json or .toml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
