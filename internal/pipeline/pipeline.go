// Package pipeline runs the batch stages: each reads one JSON file, does its
// work, writes its outputs and prints a short summary.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/kapu/sdg-pulse/internal/domain"
	"github.com/kapu/sdg-pulse/internal/service/classifier"
	"github.com/kapu/sdg-pulse/internal/service/database"
	"github.com/kapu/sdg-pulse/internal/service/generator"
	"github.com/kapu/sdg-pulse/internal/service/responder"
	"github.com/kapu/sdg-pulse/internal/service/trends"
	"github.com/kapu/sdg-pulse/internal/store"
	"go.uber.org/zap"
)

type Runner struct {
	Out         io.Writer
	Concurrency int
	Logger      *zap.Logger
}

func NewRunner(out io.Writer, concurrency int, logger *zap.Logger) *Runner {
	return &Runner{Out: out, Concurrency: concurrency, Logger: logger}
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.Out, format, args...)
}

// FetchTrends scrapes trend titles from source into outPath.
func (r *Runner) FetchTrends(ctx context.Context, scraper *trends.Scraper, source, outPath string) error {
	titles, err := scraper.FetchTitles(ctx, source)
	if err != nil {
		return err
	}
	if err := store.WriteJSON(outPath, titles); err != nil {
		return err
	}
	r.printf("Fetched %d trend titles\nOutput saved to: %s\n", len(titles), outPath)
	return nil
}

// FetchCSV turns a CSV column of raw posts into trend-assigned cleaned posts.
func (r *Runner) FetchCSV(csvPath, column, trendListPath, outPath string) error {
	trendList, err := trends.ParseTrendList(trendListPath)
	if err != nil {
		return err
	}
	if len(trendList) == 0 {
		return fmt.Errorf("no trend titles found in %s; cannot assign trends", trendListPath)
	}

	texts, err := trends.ReadColumn(csvPath, column)
	if err != nil {
		return err
	}

	posts := trends.PostsFromTexts(texts, trendList)
	if err := store.WriteJSON(outPath, posts); err != nil {
		return err
	}
	r.printf("Processed %d posts\nOutput saved to: %s\n", len(posts), outPath)
	return nil
}

// Generate asks the model for synthetic posts for every trend title.
func (r *Runner) Generate(ctx context.Context, gen *generator.PostGenerator, trendsPath, outPath string) error {
	titles, err := store.ReadJSON[[]string](trendsPath)
	if err != nil {
		return err
	}

	cleaned := make([]string, 0, len(titles))
	for _, t := range titles {
		if c := trends.CleanText(t); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return fmt.Errorf("no trend titles found in %s", trendsPath)
	}

	posts, failed := gen.GenerateAll(ctx, cleaned, r.Concurrency)
	for _, trend := range failed {
		r.printf("Failed to generate posts for trend: %s\n", trend)
	}
	if err := store.WriteJSON(outPath, posts); err != nil {
		return err
	}
	r.printf("Generated %d posts across %d trends\nOutput saved to: %s\n", len(posts), len(cleaned), outPath)
	return nil
}

// Clean merges generated post files into one de-duplicated cleaned file.
func (r *Runner) Clean(inputs []string, outPath string) error {
	raw, err := store.ReadJSONArrays[domain.GeneratedPost](inputs...)
	if err != nil {
		return err
	}

	cleaned := trends.CleanPosts(raw)
	if err := store.WriteJSON(outPath, cleaned); err != nil {
		return err
	}
	r.printf("Cleaned %d of %d posts\nOutput saved to: %s\n", len(cleaned), len(raw), outPath)
	return nil
}

// Classify tags every post with SDGs.
func (r *Runner) Classify(ctx context.Context, c *classifier.SDGClassifier, inPath, outPath, failedPath string) error {
	posts, err := store.ReadJSON[[]domain.Post](inPath)
	if err != nil {
		return err
	}
	r.printf("Loaded %d posts for classification\n", len(posts))

	ok, failed := c.ClassifyAll(ctx, posts, r.Concurrency)
	if err := r.writePair(outPath, ok, failedPath, failed); err != nil {
		return err
	}
	r.printf("%d classified, %d failed\nOutput saved to: %s\nFailures saved to: %s\n", len(ok), len(failed), outPath, failedPath)
	return nil
}

// DetectEmotions adds the dominant emotion to every SDG-tagged post.
func (r *Runner) DetectEmotions(ctx context.Context, d *classifier.EmotionDetector, inPath, outPath, failedPath string) error {
	posts, err := store.ReadJSON[[]domain.Post](inPath)
	if err != nil {
		return err
	}
	r.printf("Processing %d posts for emotion detection\n", len(posts))

	ok, failed := d.DetectAll(ctx, posts, r.Concurrency)
	if err := r.writePair(outPath, ok, failedPath, failed); err != nil {
		return err
	}
	r.printf("%d emotions detected, %d posts failed\nOutput saved to: %s\nFailures saved to: %s\n", len(ok), len(failed), outPath, failedPath)
	return nil
}

func (r *Runner) writePair(okPath string, ok any, failedPath string, failed any) error {
	if err := store.WriteJSON(okPath, ok); err != nil {
		return err
	}
	return store.WriteJSON(failedPath, failed)
}

// RespondOptions configures the response stage.
type RespondOptions struct {
	TrendListPath string
	TopKSDGs      int
	UseLLM        bool
}

// Respond writes one supportive response per (trend, top SDG).
func (r *Runner) Respond(ctx context.Context, resp *responder.Responder, inPath, outPath string, opts RespondOptions) ([]domain.ResponseForTrend, error) {
	posts, err := store.ReadJSON[[]domain.Post](inPath)
	if err != nil {
		return nil, err
	}

	if opts.TrendListPath != "" {
		trendList, err := trends.ParseTrendList(opts.TrendListPath)
		if err != nil {
			return nil, err
		}
		before := len(posts)
		posts = trends.FilterByTrends(posts, trendList)
		r.printf("Trend filter kept %d of %d posts\n", len(posts), before)
	}

	r.printf("Generating responses for each trend with top %d SDGs\n", opts.TopKSDGs)
	responses := resp.GenerateBatch(ctx, posts, responder.Options{TopKSDGs: opts.TopKSDGs, UseLLM: opts.UseLLM})
	if err := store.WriteJSON(outPath, responses); err != nil {
		return nil, err
	}
	r.printf("%d responses saved to: %s\n", len(responses), outPath)
	return responses, nil
}

// Distribution counts SDG tags over emotion-annotated posts.
func (r *Runner) Distribution(inPath, outPath string) ([]domain.SDGCount, error) {
	posts, err := store.ReadJSON[[]domain.Post](inPath)
	if err != nil {
		return nil, err
	}

	counts := trends.CountSDGs(posts)

	r.printf("\nSDG Category Frequency:\n\n")
	tw := tabwriter.NewWriter(r.Out, 0, 0, 2, ' ', 0)
	for _, c := range counts {
		fmt.Fprintf(tw, "  %s\t: %d\n", c.SDG, c.Count)
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}

	if err := store.WriteJSON(outPath, counts); err != nil {
		return nil, err
	}
	r.printf("\nSDG distribution saved to %s\n", outPath)
	return counts, nil
}

// Export stores the response file in Postgres under a fresh run id.
func (r *Runner) Export(ctx context.Context, repo *database.ResponseRepository, inPath string) (uuid.UUID, error) {
	responses, err := store.ReadJSON[[]domain.ResponseForTrend](inPath)
	if err != nil {
		return uuid.Nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		return uuid.Nil, err
	}

	runID := uuid.New()
	n, err := repo.InsertResponses(ctx, runID, responses)
	if err != nil {
		return uuid.Nil, err
	}
	r.printf("Exported %d responses (run %s)\n", n, runID)
	return runID, nil
}
