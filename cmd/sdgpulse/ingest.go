package main

import (
	"context"
	"fmt"

	"github.com/kapu/sdg-pulse/internal/app"
	"github.com/kapu/sdg-pulse/internal/pipeline"
	"github.com/spf13/cobra"
)

var fetchTrendsCmd = &cobra.Command{
	Use:   "fetch-trends [url-or-file]",
	Short: "Scrape trend titles from an HTML trend page",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := cfg.Scraper.URL
		if len(args) == 1 {
			source = args[0]
		}
		if source == "" {
			return fmt.Errorf("no trend page given; pass a URL or file or set TRENDS_URL")
		}
		if sel, _ := cmd.Flags().GetString("selector"); sel != "" {
			cfg.Scraper.Selector = sel
		}
		out := pathFlag(cmd, "out", cfg.Paths.TrendTitles)

		return withContainer(cmd, app.Needs{}, func(ctx context.Context, c *app.Container, r *pipeline.Runner) error {
			return r.FetchTrends(ctx, c.Scraper(), source, out)
		})
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Clean a CSV of raw posts and assign each post a trend",
	RunE: func(cmd *cobra.Command, args []string) error {
		csvPath := pathFlag(cmd, "csv", cfg.Paths.RawCSV)
		column := pathFlag(cmd, "column", cfg.Paths.CSVTextColumn)
		trendList := pathFlag(cmd, "trends", cfg.Paths.TrendTitles)
		out := pathFlag(cmd, "out", cfg.Paths.CSVPosts)

		return withContainer(cmd, app.Needs{}, func(ctx context.Context, c *app.Container, r *pipeline.Runner) error {
			return r.FetchCSV(csvPath, column, trendList, out)
		})
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic posts for every trend title",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := pathFlag(cmd, "in", cfg.Paths.TrendTitles)
		out := pathFlag(cmd, "out", cfg.Paths.GeneratedPosts)
		if n, _ := cmd.Flags().GetInt("per-trend"); n > 0 {
			cfg.Generation.PostsPerTrend = n
		}

		return withContainer(cmd, app.Needs{LLM: true}, func(ctx context.Context, c *app.Container, r *pipeline.Runner) error {
			return r.Generate(ctx, c.PostGenerator(), in, out)
		})
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean [generated.json...]",
	Short: "Merge, clean and de-duplicate generated posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs := args
		if len(inputs) == 0 {
			inputs = []string{cfg.Paths.GeneratedPosts}
		}
		out := pathFlag(cmd, "out", cfg.Paths.CleanedPosts)

		return withContainer(cmd, app.Needs{}, func(ctx context.Context, c *app.Container, r *pipeline.Runner) error {
			return r.Clean(inputs, out)
		})
	},
}

func init() {
	fetchTrendsCmd.Flags().String("selector", "", "CSS selector of trend title elements (default TRENDS_SELECTOR)")
	fetchTrendsCmd.Flags().String("out", "", "output JSON file (default TREND_TITLES_PATH)")

	fetchCmd.Flags().String("csv", "", "input CSV file (default RAW_CSV_PATH)")
	fetchCmd.Flags().String("column", "", "CSV column holding post text (default CSV_TEXT_COLUMN)")
	fetchCmd.Flags().String("trends", "", "trend list JSON file (default TREND_TITLES_PATH)")
	fetchCmd.Flags().String("out", "", "output JSON file (default CSV_POSTS_PATH)")

	generateCmd.Flags().String("in", "", "trend titles JSON file (default TREND_TITLES_PATH)")
	generateCmd.Flags().String("out", "", "output JSON file (default GENERATED_POSTS_PATH)")
	generateCmd.Flags().Int("per-trend", 0, "posts to request per trend (default POSTS_PER_TREND)")

	cleanCmd.Flags().String("out", "", "output JSON file (default CLEANED_POSTS_PATH)")

	rootCmd.AddCommand(fetchTrendsCmd, fetchCmd, generateCmd, cleanCmd)
}
