package prompt

import (
	"github.com/kapu/sdg-pulse/internal/domain"
)

type SDGPromptData struct {
	Text     string
	Goals    []domain.SDG
	MaxGoals int
}

type EmotionPromptData struct {
	Text     string
	Emotions []string
}

// SupportPromptData fills the supportive-response prompt. Emotion is expected
// lower-cased and Trends already joined for display.
type SupportPromptData struct {
	Emotion string
	Trends  string
	SDG     domain.SDG
}

type PostGenerationData struct {
	Trend string
	Count int
}

// SDGClassification renders the SDG classification prompt for one post.
func SDGClassification(text string) string {
	data := SDGPromptData{Text: text, Goals: domain.AllSDGs(), MaxGoals: domain.MaxSDGsPerPost}
	if out, err := Render(TemplateSDGClassification, data); err == nil {
		return out
	}
	return FallbackSDGPrompt(data)
}

// EmotionDetection renders the emotion detection prompt for one post.
func EmotionDetection(text string) string {
	emotions := domain.AllEmotions()
	names := make([]string, len(emotions))
	for i, e := range emotions {
		names[i] = e.String()
	}
	data := EmotionPromptData{Text: text, Emotions: names}
	if out, err := Render(TemplateEmotionDetection, data); err == nil {
		return out
	}
	return FallbackEmotionPrompt(data)
}

func SupportiveResponse(data SupportPromptData) string {
	if out, err := Render(TemplateSupportiveResponse, data); err == nil {
		return out
	}
	return FallbackSupportPrompt(data)
}

func PostGeneration(trend string, count int) string {
	data := PostGenerationData{Trend: trend, Count: count}
	if out, err := Render(TemplatePostGeneration, data); err == nil {
		return out
	}
	return FallbackPostGenerationPrompt(data)
}
