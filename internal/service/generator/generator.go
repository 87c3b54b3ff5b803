package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/sdg-pulse/internal/constants"
	"github.com/kapu/sdg-pulse/internal/domain"
	"github.com/kapu/sdg-pulse/internal/prompt"
	"github.com/kapu/sdg-pulse/internal/service/ai"
	"github.com/kapu/sdg-pulse/internal/service/batch"
	"github.com/kapu/sdg-pulse/internal/util"
	"go.uber.org/zap"
)

type Completer interface {
	CallTask(ctx context.Context, task string, prompt string, extra ai.Params) (*ai.Reply, error)
}

// PostGenerator asks the generation model for synthetic posts about trend titles.
type PostGenerator struct {
	client   Completer
	perTrend int
	logger   *zap.Logger
}

func NewPostGenerator(client Completer, perTrend int, logger *zap.Logger) *PostGenerator {
	if perTrend < 1 {
		perTrend = 10
	}
	return &PostGenerator{client: client, perTrend: perTrend, logger: logger}
}

func (g *PostGenerator) GenerateForTrend(ctx context.Context, trend string) ([]domain.GeneratedPost, error) {
	reply, err := g.client.CallTask(ctx, ai.TaskGeneration, prompt.PostGeneration(trend, g.perTrend), nil)
	if err != nil {
		return nil, err
	}

	texts, err := postsFromReply(reply)
	if err != nil {
		g.logger.Warn("Unexpected generation output",
			zap.String("trend", trend),
			zap.String("shape", reply.Shape.String()),
			zap.String("raw", util.TruncateString(reply.Text, constants.TextLimits.RawPreviewLength)),
		)
		ai.ForgetRejected(ctx, g.client, reply)
		return nil, err
	}

	posts := make([]domain.GeneratedPost, 0, len(texts))
	for _, text := range texts {
		posts = append(posts, domain.GeneratedPost{Trend: trend, Text: text})
	}
	return posts, nil
}

func postsFromReply(reply *ai.Reply) ([]string, error) {
	switch reply.Shape {
	case ai.ShapeArray:
		items, _ := reply.Strings()
		return items, nil
	case ai.ShapeText:
		return SplitLines(reply.Text), nil
	default:
		return nil, fmt.Errorf("unexpected %s reply for post generation", reply.Shape)
	}
}

// SplitLines turns a prose list into posts: one per line, bullets trimmed, short lines dropped.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(line, "-•\n ")
		if len([]rune(line)) >= constants.TextLimits.MinGeneratedLineLength {
			out = append(out, line)
		}
	}
	return out
}

// GenerateAll runs GenerateForTrend for every trend. A failed trend is reported
// and contributes no posts.
func (g *PostGenerator) GenerateAll(ctx context.Context, trends []string, concurrency int) ([]domain.GeneratedPost, []string) {
	results := batch.Run(ctx, trends, batch.Options{Concurrency: concurrency, Name: "generate", Logger: g.logger},
		g.GenerateForTrend)

	perTrend, failed := batch.Partition(results)
	var posts []domain.GeneratedPost
	for _, p := range perTrend {
		posts = append(posts, p...)
	}
	if posts == nil {
		posts = []domain.GeneratedPost{}
	}
	return posts, failed
}
