package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSDGVocabulary(t *testing.T) {
	all := AllSDGs()
	require.Len(t, all, 17)

	for i, s := range all {
		assert.True(t, s.IsValid())
		assert.Equal(t, i+1, s.Number())
	}

	assert.False(t, SDG("Space Exploration").IsValid())
	assert.False(t, SDG("climate action").IsValid())
}

func TestSDGLink(t *testing.T) {
	link := SDGClimateAction.Link()
	require.NotNil(t, link)
	assert.Equal(t, "https://sdgs.un.org/goals/goal13", *link)

	assert.Nil(t, SDG("Unknown").Link())
}

func TestEmotionTemplates(t *testing.T) {
	for _, e := range AllEmotions() {
		tmpl, ok := e.Template()
		assert.True(t, ok, "missing template for %s", e)
		assert.NotEmpty(t, tmpl)
	}

	_, ok := Emotion("Boredom").Template()
	assert.False(t, ok)
}

func TestResponseTypeFor(t *testing.T) {
	support := []Emotion{EmotionFear, EmotionAnxiety, EmotionSadness, EmotionConfusion}
	for _, e := range support {
		assert.Equal(t, ResponseEmotionalSupport, ResponseTypeFor(e), e.String())
	}

	motivate := []Emotion{EmotionJoy, EmotionAnger, EmotionDisgust, EmotionFrustration, EmotionHope}
	for _, e := range motivate {
		assert.Equal(t, ResponseMotivational, ResponseTypeFor(e), e.String())
	}
}

func TestResponseForTrendRoundTrip(t *testing.T) {
	original := ResponseForTrend{
		Trend:   "heatwave",
		SDG:     SDGClimateAction,
		Emotion: EmotionFear,
		Response: Response{
			Message: "It's okay to feel afraid. Topics like heatwave reflect the challenges connected to 'Climate Action'.",
			Type:    ResponseEmotionalSupport,
			SDGLink: SDGClimateAction.Link(),
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ResponseForTrend
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestResponseForTrendNullLink(t *testing.T) {
	original := ResponseForTrend{
		Trend:    "unknown",
		SDG:      SDG("Unlisted"),
		Emotion:  EmotionHope,
		Response: Response{Message: "hold on", Type: ResponseMotivational},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sdg_link":null`)

	var decoded ResponseForTrend
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestPostHelpers(t *testing.T) {
	p := Post{Text: "flooded again", Trend: "  Monsoon Floods ", SDG: []SDG{SDGClimateAction}}

	assert.Equal(t, "monsoon floods", p.NormalizedTrend())
	assert.True(t, p.HasSDG(SDGClimateAction))
	assert.False(t, p.HasSDG(SDGZeroHunger))
}
