package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func menuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Export or import a configuration's menu as a spreadsheet",
	}

	var out string
	export := &cobra.Command{
		Use:   "export <configuration-id>",
		Short: "Download the menu as XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := api.ExportMenu(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("menu-%s.xlsx", args[0])
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "", "output file (default menu-<id>.xlsx)")

	importCmd := &cobra.Command{
		Use:   "import <configuration-id> <file.xlsx>",
		Short: "Replace the menu items from an XLSX file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}
			n, err := api.ImportMenu(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d items\n", n)
			return nil
		},
	}

	cmd.AddCommand(export, importCmd)
	return cmd
}
