package prompt

import (
	"fmt"
	"strings"
)

// Fallback prompts are used only if an embedded template fails to render.

func FallbackSDGPrompt(data SDGPromptData) string {
	goals := make([]string, len(data.Goals))
	for i, g := range data.Goals {
		goals[i] = "- " + g.String()
	}

	return fmt.Sprintf(`You are an expert analyst specializing in UN Sustainable Development Goals (SDGs).
Classify the social media post below according to the 17 SDGs.
Return ONLY a valid JSON object. Choose only from this list:
%s

One post can map to at most %d SDGs.

Post: "%s"

Required output format:
{"sdg": ["SDG Title"]}`, strings.Join(goals, "\n"), data.MaxGoals, data.Text)
}

func FallbackEmotionPrompt(data EmotionPromptData) string {
	return fmt.Sprintf(`Analyze the emotional tone of the following social media post and respond with a single JSON object that includes only one of these emotions:

%s

Post: %s

Return only this format:
{"emotion": "YourChosenEmotion"}`, strings.Join(data.Emotions, ", "), data.Text)
}

func FallbackSupportPrompt(data SupportPromptData) string {
	return fmt.Sprintf(`You are a supportive assistant helping users cope with emotional reactions to social trends.
Users are feeling %s in response to topics like: %s.
The context is related to the Sustainable Development Goal: '%s'.
Write a short, kind, empathetic message for someone experiencing %s.`, data.Emotion, data.Trends, data.SDG, data.Emotion)
}

func FallbackPostGenerationPrompt(data PostGenerationData) string {
	return fmt.Sprintf(`Generate %d realistic, diverse social media posts about the trend "%s".
Keep each post under 280 characters and do not number them.
Return the result as a JSON list of strings.`, data.Count, data.Trend)
}
