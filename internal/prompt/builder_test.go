package prompt

import (
	"strings"
	"testing"

	"github.com/kapu/sdg-pulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllTemplatesRender(t *testing.T) {
	cases := map[TemplateName]any{
		TemplateSDGClassification:  SDGPromptData{Text: "x", Goals: domain.AllSDGs(), MaxGoals: 2},
		TemplateEmotionDetection:   EmotionPromptData{Text: "x", Emotions: []string{"Joy"}},
		TemplateSupportiveResponse: SupportPromptData{Emotion: "fear", Trends: "heatwave", SDG: domain.SDGClimateAction},
		TemplatePostGeneration:     PostGenerationData{Trend: "heatwave", Count: 3},
	}

	for name, data := range cases {
		out, err := Render(name, data)
		require.NoError(t, err, name)
		assert.NotEmpty(t, out, name)
	}
}

func TestSDGClassificationPrompt(t *testing.T) {
	out := SDGClassification("The river near my town is full of plastic")

	for _, g := range domain.AllSDGs() {
		assert.Contains(t, out, "- "+g.String())
	}
	assert.Contains(t, out, "(maximum 2)")
	assert.Contains(t, out, `Post: "The river near my town is full of plastic"`)
	assert.True(t, strings.HasSuffix(out, `{"sdg": ["SDG Title"]}`))
}

func TestEmotionDetectionPrompt(t *testing.T) {
	out := EmotionDetection("so tired of these blackouts")

	assert.Contains(t, out, "Joy, Sadness, Anger, Fear, Disgust, Anxiety, Frustration, Hope, Confusion")
	assert.Contains(t, out, "Post: so tired of these blackouts")
	assert.Contains(t, out, `{"emotion": "YourChosenEmotion"}`)
}

func TestSupportiveResponsePrompt(t *testing.T) {
	out := SupportiveResponse(SupportPromptData{Emotion: "fear", Trends: "heatwave, drought", SDG: domain.SDGClimateAction})

	assert.Contains(t, out, "Users are feeling fear in response to topics like: heatwave, drought.")
	assert.Contains(t, out, "Sustainable Development Goal: 'Climate Action'")
}

func TestPostGenerationPrompt(t *testing.T) {
	out := PostGeneration("rising rent", 10)

	assert.Contains(t, out, "Generate 10 realistic")
	assert.Contains(t, out, "Trend: rising rent")
	assert.Contains(t, out, "JSON list of strings")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render(TemplateName("missing.tmpl"), nil)
	assert.Error(t, err)
}

func TestFallbacksMatchIntent(t *testing.T) {
	out := FallbackSDGPrompt(SDGPromptData{Text: "t", Goals: domain.AllSDGs(), MaxGoals: 2})
	assert.Contains(t, out, "- Partnerships for the Goals")

	out = FallbackEmotionPrompt(EmotionPromptData{Text: "t", Emotions: []string{"Joy", "Hope"}})
	assert.Contains(t, out, "Joy, Hope")
}
