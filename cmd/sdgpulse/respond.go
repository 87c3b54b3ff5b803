package main

import (
	"context"

	"github.com/kapu/sdg-pulse/internal/app"
	"github.com/kapu/sdg-pulse/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var respondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Write a supportive response per trend and top SDG",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := pathFlag(cmd, "in", cfg.Paths.EmotionOutput)
		out := pathFlag(cmd, "out", cfg.Paths.Responses)

		opts := pipeline.RespondOptions{
			TrendListPath: pathFlag(cmd, "trend-list", cfg.Response.TrendList),
			TopKSDGs:      cfg.Response.TopKSDGs,
			UseLLM:        cfg.Response.UseLLM,
		}
		if k, _ := cmd.Flags().GetInt("top-k"); k > 0 {
			opts.TopKSDGs = k
		}
		if cmd.Flags().Changed("template") {
			tmpl, _ := cmd.Flags().GetBool("template")
			opts.UseLLM = !tmpl
		}

		return withContainer(cmd, app.Needs{LLM: opts.UseLLM}, func(ctx context.Context, c *app.Container, r *pipeline.Runner) error {
			_, err := r.Respond(ctx, c.Responder(), in, out, opts)
			return err
		})
	},
}

var distributionCmd = &cobra.Command{
	Use:   "distribution",
	Short: "Count SDG tags over emotion-annotated posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := pathFlag(cmd, "in", cfg.Paths.EmotionOutput)
		out := pathFlag(cmd, "out", cfg.Paths.Distribution)

		return withContainer(cmd, app.Needs{}, func(ctx context.Context, c *app.Container, r *pipeline.Runner) error {
			_, err := r.Distribution(in, out)
			return err
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Store the response file in PostgreSQL under a new run id",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := pathFlag(cmd, "in", cfg.Paths.Responses)

		return withContainer(cmd, app.Needs{Postgres: true}, func(ctx context.Context, c *app.Container, r *pipeline.Runner) error {
			runID, err := r.Export(ctx, c.Responses, in)
			if err != nil {
				return err
			}
			logger.Info("Export finished", zap.String("run_id", runID.String()))
			return nil
		})
	},
}

func init() {
	respondCmd.Flags().String("in", "", "annotated posts JSON file (default EMOTION_OUTPUT_PATH)")
	respondCmd.Flags().String("out", "", "responses JSON file (default RESPONSES_PATH)")
	respondCmd.Flags().String("trend-list", "", "only answer trends listed in this JSON file (default RESPONSE_TREND_LIST)")
	respondCmd.Flags().Int("top-k", 0, "SDGs to answer per trend (default TOP_K_SDGS)")
	respondCmd.Flags().Bool("template", false, "use tone templates instead of the model")

	distributionCmd.Flags().String("in", "", "annotated posts JSON file (default EMOTION_OUTPUT_PATH)")
	distributionCmd.Flags().String("out", "", "distribution JSON file (default DISTRIBUTION_PATH)")

	exportCmd.Flags().String("in", "", "responses JSON file (default RESPONSES_PATH)")

	rootCmd.AddCommand(respondCmd, distributionCmd, exportCmd)
}
