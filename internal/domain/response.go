package domain

// ResponseType is the intent of a supportive message.
type ResponseType string

const (
	ResponseEmotionalSupport ResponseType = "emotional_support"
	ResponseInformative      ResponseType = "informative"
	ResponseMotivational     ResponseType = "motivational"
)

// ResponseTypeFor picks the response type for a dominant emotion.
func ResponseTypeFor(emotion Emotion) ResponseType {
	if emotion.NeedsSupport() {
		return ResponseEmotionalSupport
	}
	return ResponseMotivational
}

type Response struct {
	Message string       `json:"message"`
	Type    ResponseType `json:"type"`
	SDGLink *string      `json:"sdg_link"`
}

// ResponseForTrend is one line of final output: a response for a (trend, SDG) pair.
type ResponseForTrend struct {
	Trend    string   `json:"trend"`
	SDG      SDG      `json:"sdg"`
	Emotion  Emotion  `json:"emotion"`
	Response Response `json:"response"`
}
