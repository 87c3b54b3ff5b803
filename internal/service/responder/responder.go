// Package responder turns classified posts into one supportive message per
// (trend, SDG) pair.
package responder

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kapu/sdg-pulse/internal/constants"
	"github.com/kapu/sdg-pulse/internal/domain"
	"github.com/kapu/sdg-pulse/internal/prompt"
	"github.com/kapu/sdg-pulse/internal/service/ai"
	"github.com/kapu/sdg-pulse/internal/util"
	"go.uber.org/zap"
)

type Completer interface {
	CallTask(ctx context.Context, task string, prompt string, extra ai.Params) (*ai.Reply, error)
}

type Options struct {
	// Trends restricts and orders the trends to answer. Empty means every trend seen in the posts.
	Trends   []string
	TopKSDGs int
	UseLLM   bool
}

type Responder struct {
	client Completer
	logger *zap.Logger
}

// NewResponder builds a responder. client may be nil when only template mode is used.
func NewResponder(client Completer, logger *zap.Logger) *Responder {
	return &Responder{client: client, logger: logger}
}

// GenerateBatch answers each trend's top SDGs with the dominant emotion of the
// posts tagged with that SDG. Pairs without any emotion are skipped.
func (r *Responder) GenerateBatch(ctx context.Context, posts []domain.Post, opts Options) []domain.ResponseForTrend {
	topK := opts.TopKSDGs
	if topK < 1 {
		topK = 1
	}

	trends := opts.Trends
	if len(trends) == 0 {
		trends = ExtractTrends(posts)
	}

	out := make([]domain.ResponseForTrend, 0)
	for _, trend := range trends {
		key := domain.NormalizeTrend(trend)
		trendPosts := filter(posts, func(p domain.Post) bool { return p.NormalizedTrend() == key })
		if len(trendPosts) == 0 {
			continue
		}

		for _, sdg := range TopKSDGs(trendPosts, topK) {
			emotion, ok := DominantEmotion(filter(trendPosts, func(p domain.Post) bool { return p.HasSDG(sdg) }))
			if !ok {
				continue
			}

			out = append(out, domain.ResponseForTrend{
				Trend:    key,
				SDG:      sdg,
				Emotion:  emotion,
				// one trend per pair; Synthesize names at most two when given more
				Response: r.Synthesize(ctx, sdg, emotion, []string{key}, opts.UseLLM),
			})
		}
	}

	r.logger.Info("Responses generated",
		zap.Int("trends", len(trends)),
		zap.Int("responses", len(out)),
		zap.Bool("llm", opts.UseLLM),
	)
	return out
}

// Synthesize writes one supportive message. In LLM mode any failure yields the
// fixed apology text rather than an error.
func (r *Responder) Synthesize(ctx context.Context, sdg domain.SDG, emotion domain.Emotion, trends []string, useLLM bool) domain.Response {
	trendText := util.JoinFirst(trends, 2, ", ", constants.TextLimits.DefaultTrendPlaceholder)

	var message string
	if useLLM && r.client != nil {
		message = r.llmMessage(ctx, sdg, emotion, trendText)
	} else {
		message = TemplateMessage(sdg, emotion, trendText)
	}

	return domain.Response{
		Message: message,
		Type:    domain.ResponseTypeFor(emotion),
		SDGLink: sdg.Link(),
	}
}

func (r *Responder) llmMessage(ctx context.Context, sdg domain.SDG, emotion domain.Emotion, trendText string) string {
	p := prompt.SupportiveResponse(prompt.SupportPromptData{
		Emotion: strings.ToLower(emotion.String()),
		Trends:  trendText,
		SDG:     sdg,
	})

	reply, err := r.client.CallTask(ctx, ai.TaskResponseGeneration, p, nil)
	if err != nil {
		r.logger.Warn("Response generation failed",
			zap.String("sdg", sdg.String()),
			zap.String("emotion", emotion.String()),
			zap.Error(err),
		)
		return constants.TextLimits.ApologyMessage
	}

	message := reply.Message()
	if message == "" {
		ai.ForgetRejected(ctx, r.client, reply)
		return constants.TextLimits.ApologyMessage
	}
	return message
}

// TemplateMessage builds the offline message from the emotion's tone line.
func TemplateMessage(sdg domain.SDG, emotion domain.Emotion, trendText string) string {
	tone, ok := emotion.Template()
	if !ok {
		tone = domain.GenericReassurance
	}
	link := domain.SDGPortalURL
	if l := sdg.Link(); l != nil {
		link = *l
	}
	return fmt.Sprintf("%s Topics like %s reflect the challenges connected to '%s'. Explore ways to contribute or learn more here: %s",
		tone, trendText, sdg, link)
}

// ExtractTrends lists distinct normalized trends in first-seen order.
func ExtractTrends(posts []domain.Post) []string {
	seen := make(map[string]struct{})
	trends := make([]string, 0)
	for _, p := range posts {
		key := p.NormalizedTrend()
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		trends = append(trends, key)
	}
	return trends
}

// TopKSDGs returns the k most frequent goals. Equal counts keep first-seen order.
func TopKSDGs(posts []domain.Post, k int) []domain.SDG {
	var order []domain.SDG
	counts := make(map[domain.SDG]int)
	for _, p := range posts {
		for _, s := range p.SDG {
			if _, ok := counts[s]; !ok {
				order = append(order, s)
			}
			counts[s]++
		}
	}

	ranked := stableByCount(order, counts)
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// DominantEmotion returns the most frequent emotion, first-seen on ties.
func DominantEmotion(posts []domain.Post) (domain.Emotion, bool) {
	var order []domain.Emotion
	counts := make(map[domain.Emotion]int)
	for _, p := range posts {
		if p.Emotion == nil || *p.Emotion == "" {
			continue
		}
		e := *p.Emotion
		if _, ok := counts[e]; !ok {
			order = append(order, e)
		}
		counts[e]++
	}
	if len(order) == 0 {
		return "", false
	}

	ranked := stableByCount(order, counts)
	return ranked[0], true
}

func stableByCount[K comparable](order []K, counts map[K]int) []K {
	ranked := slices.Clone(order)
	slices.SortStableFunc(ranked, func(a, b K) int {
		return counts[b] - counts[a]
	})
	return ranked
}

func filter(posts []domain.Post, keep func(domain.Post) bool) []domain.Post {
	var out []domain.Post
	for _, p := range posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
