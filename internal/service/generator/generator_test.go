package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/kapu/sdg-pulse/internal/domain"
	"github.com/kapu/sdg-pulse/internal/service/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompleter struct {
	respond func(prompt string) (string, error)
}

func (f fakeCompleter) CallTask(_ context.Context, task string, prompt string, _ ai.Params) (*ai.Reply, error) {
	if task != ai.TaskGeneration {
		return nil, ai.ErrNoResult
	}
	text, err := f.respond(prompt)
	if err != nil {
		return nil, err
	}
	return ai.NewReply(text), nil
}

func TestGenerateForTrendArray(t *testing.T) {
	fc := fakeCompleter{respond: func(string) (string, error) {
		return `["it is so hot today", "cannot sleep in this heat"]`, nil
	}}
	g := NewPostGenerator(fc, 2, zap.NewNop())

	posts, err := g.GenerateForTrend(context.Background(), "heatwave")
	require.NoError(t, err)
	assert.Equal(t, []domain.GeneratedPost{
		{Trend: "heatwave", Text: "it is so hot today"},
		{Trend: "heatwave", Text: "cannot sleep in this heat"},
	}, posts)
}

func TestGenerateForTrendText(t *testing.T) {
	fc := fakeCompleter{respond: func(string) (string, error) {
		return "Here you go:\n- first generated post here\n• second generated post\n-short\n", nil
	}}
	posts, err := NewPostGenerator(fc, 3, zap.NewNop()).GenerateForTrend(context.Background(), "rent")

	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "Here you go:", posts[0].Text)
	assert.Equal(t, "first generated post here", posts[1].Text)
	assert.Equal(t, "second generated post", posts[2].Text)
}

func TestGenerateForTrendObjectRejected(t *testing.T) {
	fc := fakeCompleter{respond: func(string) (string, error) { return `{"posts": []}`, nil }}
	posts, err := NewPostGenerator(fc, 3, zap.NewNop()).GenerateForTrend(context.Background(), "rent")

	assert.Error(t, err)
	assert.Nil(t, posts)
}

type forgettingCompleter struct {
	fakeCompleter
	forgotten []string
}

func (f *forgettingCompleter) Forget(_ context.Context, reply *ai.Reply) {
	f.forgotten = append(f.forgotten, reply.Text)
}

func TestGenerateForTrendForgetsRejectedReply(t *testing.T) {
	fc := &forgettingCompleter{fakeCompleter: fakeCompleter{respond: func(string) (string, error) { return `{"posts": []}`, nil }}}
	_, err := NewPostGenerator(fc, 3, zap.NewNop()).GenerateForTrend(context.Background(), "rent")

	require.Error(t, err)
	assert.Equal(t, []string{`{"posts": []}`}, fc.forgotten)
}

func TestSplitLines(t *testing.T) {
	assert.Empty(t, SplitLines("a\nb\n- tiny"))
	assert.Equal(t, []string{"exactly 11c"}, SplitLines("exactly 11c\n0123456789"))
}

func TestGenerateAllSkipsFailedTrend(t *testing.T) {
	fc := fakeCompleter{respond: func(p string) (string, error) {
		if strings.Contains(p, "Trend: broken") {
			return "", ai.ErrNoResult
		}
		return `["one post about this trend"]`, nil
	}}

	posts, failed := NewPostGenerator(fc, 1, zap.NewNop()).GenerateAll(context.Background(), []string{"heatwave", "broken", "rent"}, 2)

	assert.Len(t, posts, 2)
	assert.Equal(t, []string{"broken"}, failed)
}
