package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/deploy"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/service"
)

// publish <configuration-id> <name>: start a publish and follow its stages.
func publishCmd() *cobra.Command {
	var (
		detach   bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "publish <configuration-id> <name>",
		Short: "Publish a configuration under an address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("owner token required (--token or SITED_TOKEN)")
			}
			ctx := cmd.Context()
			id, err := api.StartPublish(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "attempt %s\n", id)
			if detach {
				return nil
			}
			st, err := api.WaitPublish(ctx, id, interval, func(stage deploy.Stage, msg string) {
				fmt.Fprintf(out, "  %-20s %s\n", stage, msg)
			})
			if err != nil {
				return err
			}
			return reportOutcome(cmd, st)
		},
	}
	cmd.Flags().BoolVar(&detach, "detach", false, "print the attempt id and return")
	cmd.Flags().DurationVar(&interval, "interval", 250*time.Millisecond, "status poll interval")
	return cmd
}

// status <attempt-id>
func statusCmd() *cobra.Command {
	var abandon bool
	cmd := &cobra.Command{
		Use:   "status <attempt-id>",
		Short: "Show (or abandon) a publish attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if abandon {
				if err := api.AbandonPublish(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "abandon requested")
				return nil
			}
			st, err := api.PublishStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().BoolVar(&abandon, "abandon", false, "abandon the attempt")
	return cmd
}

func reportOutcome(cmd *cobra.Command, st *service.PublishStatus) error {
	out := cmd.OutOrStdout()
	if st.Result != nil {
		fmt.Fprintf(out, "published: %s\npreview:   %s\n", st.Result.PublishedURL, st.Result.PreviewURL)
		return nil
	}
	if st.Error != nil {
		for _, s := range st.Error.Suggestions {
			fmt.Fprintf(out, "  suggestion: %s\n", s)
		}
		return st.Error
	}
	return fmt.Errorf("publish ended without a result")
}
