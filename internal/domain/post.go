package domain

import "strings"

// Post is a social media post moving through the pipeline. Classification stages
// only ever add SDG and Emotion; Text and Trend are never rewritten after ingest.
type Post struct {
	Text    string   `json:"text"`
	Trend   string   `json:"trend"`
	SDG     []SDG    `json:"sdg"`
	Emotion *Emotion `json:"emotion,omitempty"`
}

// NormalizedTrend is the case-insensitive grouping key for the post's trend.
func (p Post) NormalizedTrend() string {
	return NormalizeTrend(p.Trend)
}

// HasSDG reports whether the post was tagged with the given goal.
func (p Post) HasSDG(sdg SDG) bool {
	for _, s := range p.SDG {
		if s == sdg {
			return true
		}
	}
	return false
}

func NormalizeTrend(trend string) string {
	return strings.ToLower(strings.TrimSpace(trend))
}

// SDGResult is the validated output of one SDG classification call.
type SDGResult struct {
	SDG []SDG `json:"sdg" validate:"max=2,dive,sdg"`
}

// EmotionResult is the validated output of one emotion detection call.
type EmotionResult struct {
	Emotion Emotion `json:"emotion" validate:"required,emotion"`
}

// SDGFailure is written for posts whose SDG classification produced no result.
type SDGFailure struct {
	Trend string `json:"trend"`
	Text  string `json:"text"`
	SDG   []SDG  `json:"sdg"`
}

// EmotionFailure is written for posts whose emotion detection produced no result.
type EmotionFailure struct {
	Trend   string   `json:"trend"`
	Text    string   `json:"text"`
	Emotion *Emotion `json:"emotion"`
}

// CleanedPost is a raw post after text normalization and de-duplication.
type CleanedPost struct {
	Trend string `json:"trend"`
	Text  string `json:"text"`
}

// GeneratedPost is a synthetic post produced for a trend title.
type GeneratedPost struct {
	Trend string `json:"trend"`
	Text  string `json:"text"`
}

// SDGCount is one row of the SDG frequency report.
type SDGCount struct {
	SDG   SDG `json:"sdg"`
	Count int `json:"count"`
}
