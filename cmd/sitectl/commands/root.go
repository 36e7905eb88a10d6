// Package commands implements the sitectl operator CLI.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/common/logger"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/client"
)

var (
	serverURL string
	token     string
	verbose   bool

	log *zap.Logger
	api *client.Client
)

func Execute() error {
	root := &cobra.Command{
		Use:           "sitectl",
		Short:         "Operate a sited site rendering and publishing service",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if verbose {
				level = "debug"
			}
			l, err := logger.New(logger.Options{Level: level, Format: "console", Service: "sitectl", Stderr: true})
			if err != nil {
				return err
			}
			log = l
			api = client.New(serverURL, token, log)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&serverURL, "server", envOr("SITED_URL", "http://localhost:8080"), "sited base URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("SITED_TOKEN"), "owner token (env SITED_TOKEN)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		validateCmd(),
		publishCmd(),
		statusCmd(),
		fetchCmd(),
		templatesCmd(),
		createCmd(),
		menuCmd(),
		migrateCmd(),
		ownerCmd(),
		routesCmd(),
	)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return root.ExecuteContext(ctx)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
