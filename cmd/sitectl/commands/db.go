package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/common/database"
	commonredis "github.com/synca-ui/builder-quantum-landing-sub001/common/redis"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/auth"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/config"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/repository"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/store"
)

// 以下命令直连数据库 / Redis，连接参数与 sited 相同（DB_* / REDIS_* 环境变量）

func openDB(ctx context.Context) (*sql.DB, error) {
	cfg := config.Load()
	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}
	return db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			applied, err := repository.Migrate(cmd.Context(), db, log)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied: %s\n", strings.Join(applied, ", "))
			return nil
		},
	}
}

func ownerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "owner",
		Short: "Manage configuration owners",
	}
	var name string
	add := &cobra.Command{
		Use:   "add <owner-id>",
		Short: "Create an owner (or rotate its token) and print the token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			tokens := auth.NewTokens(repository.NewPostgresOwnersRepository(db), 0, log)
			tok, err := tokens.Issue(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "display name")
	cmd.AddCommand(add)
	return cmd
}

func openRedis(ctx context.Context) (*redis.Client, error) {
	return commonredis.Connect(ctx, &config.Load().Redis)
}

func routesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Inspect the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openRedis(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			list, err := store.NewRouteTable(store.NewRedisKV(c), nil, log).List(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%-7s %-40s %s\n", r.Kind, r.Host, r.ConfigurationID)
			}
			return nil
		},
	}

	var group string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Follow route table changes from the Redis stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openRedis(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			stream := config.Load().RouteStream.Name
			if err := commonredis.CreateConsumerGroup(ctx, c, stream, group); err != nil {
				return err
			}
			host, _ := os.Hostname()
			consumer := fmt.Sprintf("sitectl-%s-%d", host, os.Getpid())
			for {
				msgs, err := commonredis.ReadFromStream(ctx, c, stream, group, consumer, 50, 5*time.Second)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					log.Warn("Failed to read route stream", zap.Error(err))
					time.Sleep(time.Second)
					continue
				}
				ids := make([]string, 0, len(msgs))
				for _, m := range msgs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", m.ID, m.At.Format(time.RFC3339), m.Data)
					ids = append(ids, m.ID)
				}
				if err := commonredis.AckStream(ctx, c, stream, group, ids...); err != nil {
					log.Warn("Failed to ack route events", zap.Error(err))
				}
			}
		},
	}
	tail.Flags().StringVar(&group, "group", "sitectl", "consumer group")
	cmd.AddCommand(tail)
	return cmd
}
