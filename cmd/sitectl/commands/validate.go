package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// validate <name>: check whether a subdomain can be claimed.
func validateCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "validate <name>",
		Short: "Check whether an address is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := api.ValidateAddress(cmd.Context(), args[0], owner)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Available {
				fmt.Fprintf(out, "available: %s\n", res.FullAddress)
				return nil
			}
			fmt.Fprintf(out, "unavailable (%s): %s\n", res.Reason, res.Error)
			if len(res.Suggestions) > 0 {
				fmt.Fprintf(out, "try: %s\n", strings.Join(res.Suggestions, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id; names it holds count as available only when --token belongs to it")
	return cmd
}
