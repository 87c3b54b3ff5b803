package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/sdg-pulse/internal/app"
	"github.com/kapu/sdg-pulse/internal/pipeline"
	"github.com/kapu/sdg-pulse/internal/service/ai"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe [prompt]",
	Short: "Send one prompt for a task and print how the reply was interpreted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskName, _ := cmd.Flags().GetString("task")
		model, _ := cmd.Flags().GetString("model")
		prompt := "Reply with a JSON object {\"status\": \"ok\"}."
		if len(args) == 1 {
			prompt = args[0]
		}

		return withContainer(cmd, app.Needs{LLM: true}, func(_ context.Context, c *app.Container, r *pipeline.Runner) error {
			task, err := c.Client.Registry().Resolve(taskName)
			if err != nil {
				return err
			}
			if model != "" {
				task.Model = model
			}

			reply, err := c.Client.CallSync(ai.Request{Model: task.Model, Prompt: prompt, Overrides: task.Params})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "task:     %s\n", task.Name)
			fmt.Fprintf(out, "model:    %s\n", reply.Metadata.Model)
			fmt.Fprintf(out, "provider: %s (fallback=%t, cached=%t)\n", reply.Metadata.Provider, reply.Metadata.UsedFallback, reply.Metadata.Cached)
			fmt.Fprintf(out, "shape:    %s\n", reply.Shape)
			status := c.Client.CircuitStatus()
			fmt.Fprintf(out, "circuit:  %s (failures=%d)\n", status.State, status.FailureCount)
			fmt.Fprintf(out, "reply:\n%s\n", reply.Text)
			return nil
		})
	},
}

func init() {
	probeCmd.Flags().String("task", ai.TaskTest, "task whose model and params to use ("+strings.Join(knownTasks(), ", ")+")")
	probeCmd.Flags().String("model", "", "override the task's model")
	rootCmd.AddCommand(probeCmd)
}

func knownTasks() []string {
	return []string{
		ai.TaskGeneration,
		ai.TaskSDGClassification,
		ai.TaskClassification,
		ai.TaskEmotionDetection,
		ai.TaskSupport,
		ai.TaskResponseGeneration,
		ai.TaskTest,
	}
}
