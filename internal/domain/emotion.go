package domain

// Emotion is the dominant emotional tone of a post.
type Emotion string

const (
	EmotionJoy         Emotion = "Joy"
	EmotionSadness     Emotion = "Sadness"
	EmotionAnger       Emotion = "Anger"
	EmotionFear        Emotion = "Fear"
	EmotionDisgust     Emotion = "Disgust"
	EmotionAnxiety     Emotion = "Anxiety"
	EmotionFrustration Emotion = "Frustration"
	EmotionHope        Emotion = "Hope"
	EmotionConfusion   Emotion = "Confusion"
)

// GenericReassurance is the tone used for emotions without a dedicated template.
const GenericReassurance = "Your feelings are valid, and you're not alone."

var allEmotions = []Emotion{
	EmotionJoy,
	EmotionSadness,
	EmotionAnger,
	EmotionFear,
	EmotionDisgust,
	EmotionAnxiety,
	EmotionFrustration,
	EmotionHope,
	EmotionConfusion,
}

var toneTemplates = map[Emotion]string{
	EmotionFear:        "It's okay to feel afraid. You're not alone, and small steps make a difference.",
	EmotionAnxiety:     "Anxiety is a natural response to uncertainty. You're seen, and you're safe here.",
	EmotionFrustration: "Your frustration is valid. Change begins with awareness and small actions.",
	EmotionSadness:     "It’s okay to feel sad. You’re not alone in this. Healing takes time.",
	EmotionJoy:         "Your joy matters. Let it inspire others and fuel positive change.",
	EmotionHope:        "Hold on to hope. Even small actions toward progress matter.",
	EmotionConfusion:   "It’s natural to feel confused. Let’s find clarity and support together.",
	EmotionAnger:       "Your anger shows you care. Let’s channel it into action for impact.",
	EmotionDisgust:     "It’s tough to see injustice. Your voice matters in building better systems.",
}

// AllEmotions returns the emotion vocabulary. The slice is a copy.
func AllEmotions() []Emotion {
	out := make([]Emotion, len(allEmotions))
	copy(out, allEmotions)
	return out
}

func (e Emotion) String() string {
	return string(e)
}

func (e Emotion) IsValid() bool {
	for _, v := range allEmotions {
		if v == e {
			return true
		}
	}
	return false
}

// Template returns the tone sentence for the emotion and whether one exists.
func (e Emotion) Template() (string, bool) {
	t, ok := toneTemplates[e]
	return t, ok
}

// NeedsSupport reports whether responses to this emotion should be emotional support
// rather than motivation.
func (e Emotion) NeedsSupport() bool {
	switch e {
	case EmotionFear, EmotionAnxiety, EmotionSadness, EmotionConfusion:
		return true
	default:
		return false
	}
}
