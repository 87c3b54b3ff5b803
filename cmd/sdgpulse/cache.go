package main

import (
	"context"
	"fmt"

	"github.com/kapu/sdg-pulse/internal/app"
	"github.com/kapu/sdg-pulse/internal/pipeline"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the Redis completion cache",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Delete every cached completion so the next run asks the model again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, app.Needs{Cache: true}, func(ctx context.Context, c *app.Container, _ *pipeline.Runner) error {
			deleted, err := c.Cache.Flush(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Flushed %d cached completions\n", deleted)
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheFlushCmd)
	rootCmd.AddCommand(cacheCmd)
}
