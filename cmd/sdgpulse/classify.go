package main

import (
	"context"

	"github.com/kapu/sdg-pulse/internal/app"
	"github.com/kapu/sdg-pulse/internal/pipeline"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Tag each cleaned post with up to two SDGs",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := pathFlag(cmd, "in", cfg.Paths.CleanedPosts)
		out := pathFlag(cmd, "out", cfg.Paths.SDGOutput)
		failed := pathFlag(cmd, "failed", cfg.Paths.SDGFailed)

		return withContainer(cmd, app.Needs{LLM: true}, func(ctx context.Context, c *app.Container, r *pipeline.Runner) error {
			return r.Classify(ctx, c.SDGClassifier(), in, out, failed)
		})
	},
}

var emotionCmd = &cobra.Command{
	Use:   "emotion",
	Short: "Detect the dominant emotion of each SDG-tagged post",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := pathFlag(cmd, "in", cfg.Paths.SDGOutput)
		out := pathFlag(cmd, "out", cfg.Paths.EmotionOutput)
		failed := pathFlag(cmd, "failed", cfg.Paths.EmotionFailed)

		return withContainer(cmd, app.Needs{LLM: true}, func(ctx context.Context, c *app.Container, r *pipeline.Runner) error {
			return r.DetectEmotions(ctx, c.EmotionDetector(), in, out, failed)
		})
	},
}

func init() {
	classifyCmd.Flags().String("in", "", "cleaned posts JSON file (default CLEANED_POSTS_PATH)")
	classifyCmd.Flags().String("out", "", "classified posts JSON file (default SDG_OUTPUT_PATH)")
	classifyCmd.Flags().String("failed", "", "failed posts JSON file (default SDG_FAILED_PATH)")

	emotionCmd.Flags().String("in", "", "classified posts JSON file (default SDG_OUTPUT_PATH)")
	emotionCmd.Flags().String("out", "", "annotated posts JSON file (default EMOTION_OUTPUT_PATH)")
	emotionCmd.Flags().String("failed", "", "failed posts JSON file (default EMOTION_FAILED_PATH)")

	rootCmd.AddCommand(classifyCmd, emotionCmd)
}
