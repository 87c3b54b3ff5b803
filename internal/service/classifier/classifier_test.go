package classifier

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/kapu/sdg-pulse/internal/domain"
	"github.com/kapu/sdg-pulse/internal/service/ai"
	apperrors "github.com/kapu/sdg-pulse/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompleter struct {
	mu      sync.Mutex
	tasks   []string
	respond func(prompt string) (string, error)
}

func (f *fakeCompleter) CallTask(_ context.Context, task string, prompt string, _ ai.Params) (*ai.Reply, error) {
	f.mu.Lock()
	f.tasks = append(f.tasks, task)
	f.mu.Unlock()

	text, err := f.respond(prompt)
	if err != nil {
		return nil, err
	}
	return ai.NewReply(text), nil
}

// cachingCompleter records which replies the drivers rejected.
type cachingCompleter struct {
	fakeCompleter
	forgotten []string
}

func (c *cachingCompleter) Forget(_ context.Context, reply *ai.Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forgotten = append(c.forgotten, reply.Text)
}

func constant(text string) func(string) (string, error) {
	return func(string) (string, error) { return text, nil }
}

func TestSDGClassify(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    []domain.SDG
		wantErr bool
	}{
		{name: "exact", reply: `{"sdg": ["Climate Action"]}`, want: []domain.SDG{domain.SDGClimateAction}},
		{name: "fenced", reply: "```json\n{\"sdg\": [\"Life Below Water\", \"Climate Action\"]}\n```", want: []domain.SDG{domain.SDGLifeBelowWater, domain.SDGClimateAction}},
		{name: "prose", reply: `Sure! {"sdg": ["Quality Education"]} hope that helps`, want: []domain.SDG{domain.SDGQualityEducation}},
		{name: "empty list", reply: `{"sdg": []}`, want: []domain.SDG{}},
		{name: "missing field", reply: `{}`, want: []domain.SDG{}},
		{name: "too many", reply: `{"sdg": ["No Poverty", "Zero Hunger", "Climate Action"]}`, wantErr: true},
		{name: "unknown goal", reply: `{"sdg": ["World Peace"]}`, wantErr: true},
		{name: "no json", reply: `I cannot classify this`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeCompleter{respond: constant(tt.reply)}
			c := NewSDGClassifier(fc, zap.NewNop())

			res, err := c.Classify(context.Background(), "plastic in the ocean")
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, res)
				var perr *apperrors.ParseError
				assert.ErrorAs(t, err, &perr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.SDG)
			assert.Equal(t, []string{ai.TaskSDGClassification}, fc.tasks)
		})
	}
}

func TestSDGClassifyTransportError(t *testing.T) {
	fc := &fakeCompleter{respond: func(string) (string, error) {
		return "", fmt.Errorf("%w: boom", ai.ErrNoResult)
	}}
	res, err := NewSDGClassifier(fc, zap.NewNop()).Classify(context.Background(), "x")

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ai.ErrNoResult)
}

func TestEmotionDetect(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    domain.Emotion
		wantErr bool
	}{
		{name: "object", reply: `{"emotion": "Fear"}`, want: domain.EmotionFear},
		{name: "prose wrapped", reply: `The tone is {"emotion": "Hope"}.`, want: domain.EmotionHope},
		{name: "unknown emotion", reply: `{"emotion": "Bored"}`, wantErr: true},
		{name: "missing emotion", reply: `{"mood": "Joy"}`, wantErr: true},
		{name: "array", reply: `["Joy"]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeCompleter{respond: constant(tt.reply)}
			d := NewEmotionDetector(fc, zap.NewNop())

			res, err := d.Detect(context.Background(), "the heat is unbearable")
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Emotion)
			assert.Equal(t, []string{ai.TaskClassification}, fc.tasks)
		})
	}
}

func TestRejectedRepliesAreForgotten(t *testing.T) {
	ctx := context.Background()

	cc := &cachingCompleter{fakeCompleter: fakeCompleter{respond: constant("Sorry, I think it's about hunger")}}
	_, err := NewSDGClassifier(cc, zap.NewNop()).Classify(ctx, "x")
	require.Error(t, err)
	assert.Equal(t, []string{"Sorry, I think it's about hunger"}, cc.forgotten)

	cc = &cachingCompleter{fakeCompleter: fakeCompleter{respond: constant(`{"emotion": "Bored"}`)}}
	_, err = NewEmotionDetector(cc, zap.NewNop()).Detect(ctx, "x")
	require.Error(t, err)
	assert.Len(t, cc.forgotten, 1)

	cc = &cachingCompleter{fakeCompleter: fakeCompleter{respond: constant(`{"sdg": ["Zero Hunger"]}`)}}
	_, err = NewSDGClassifier(cc, zap.NewNop()).Classify(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, cc.forgotten)
}

func TestClassifyAllPartitions(t *testing.T) {
	posts := []domain.Post{
		{Trend: "heatwave", Text: "record heat again"},
		{Trend: "heatwave", Text: "FAIL this one"},
		{Trend: "rent", Text: "rent is insane"},
	}
	fc := &fakeCompleter{respond: func(p string) (string, error) {
		if strings.Contains(p, "FAIL") {
			return "nonsense", nil
		}
		return `{"sdg": ["Climate Action"]}`, nil
	}}

	ok, failed := NewSDGClassifier(fc, zap.NewNop()).ClassifyAll(context.Background(), posts, 2)

	require.Len(t, ok, 2)
	require.Len(t, failed, 1)
	assert.Equal(t, domain.SDGFailure{Trend: "heatwave", Text: "FAIL this one"}, failed[0])
	assert.Nil(t, failed[0].SDG)
	for _, p := range ok {
		assert.Equal(t, []domain.SDG{domain.SDGClimateAction}, p.SDG)
	}
}

func TestDetectAllKeepsSDG(t *testing.T) {
	posts := []domain.Post{
		{Trend: "heatwave", Text: "scared of the heat", SDG: []domain.SDG{domain.SDGClimateAction}},
		{Trend: "heatwave", Text: "FAIL", SDG: []domain.SDG{domain.SDGClimateAction}},
	}
	fc := &fakeCompleter{respond: func(p string) (string, error) {
		if strings.Contains(p, "Post: FAIL") {
			return "", ai.ErrNoResult
		}
		return `{"emotion": "Fear"}`, nil
	}}

	ok, failed := NewEmotionDetector(fc, zap.NewNop()).DetectAll(context.Background(), posts, 5)

	require.Len(t, ok, 1)
	require.Len(t, failed, 1)
	require.NotNil(t, ok[0].Emotion)
	assert.Equal(t, domain.EmotionFear, *ok[0].Emotion)
	assert.Equal(t, []domain.SDG{domain.SDGClimateAction}, ok[0].SDG)
	assert.Nil(t, failed[0].Emotion)
	assert.Equal(t, "FAIL", failed[0].Text)
}
