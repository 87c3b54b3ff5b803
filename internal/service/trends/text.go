package trends

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/kapu/sdg-pulse/internal/constants"
)

var (
	urlPattern      = regexp.MustCompile(`http\S+|www\S+`)
	mentionPattern  = regexp.MustCompile(`@\w+`)
	hashtagPattern  = regexp.MustCompile(`#(\w+)`)
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9\s]`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// CleanText lower-cases a post and strips URLs, mentions, hashtag marks and
// anything that is not an ASCII letter, digit or space.
func CleanText(text string) string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = hashtagPattern.ReplaceAllString(text, "$1")
	text = nonAlnumPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// AssignTrend picks the trend sharing the most distinct tokens with text.
// The first trend reaching the best count wins; no overlap gives "unknown".
func AssignTrend(text string, trends []string) string {
	tokens := tokenSet(text)
	best := constants.TextLimits.UnknownTrend
	bestMatches := 0
	for _, trend := range trends {
		matches := 0
		for tok := range tokenSet(trend) {
			if _, ok := tokens[tok]; ok {
				matches++
			}
		}
		if matches > bestMatches {
			best = trend
			bestMatches = matches
		}
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

// ParseTrendList reads a JSON array of trend titles, lower-cased. A file that
// is not a valid JSON array is read line by line, keeping double-quoted entries.
func ParseTrendList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trend list: %w", err)
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err == nil {
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, strings.ToLower(s))
			}
		}
		return out, nil
	}

	out := make([]string, 0)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(strings.TrimSpace(line), ",")
		if len(line) < 2 || !strings.HasPrefix(line, `"`) || !strings.HasSuffix(line, `"`) {
			continue
		}
		if candidate := strings.TrimSpace(line[1 : len(line)-1]); candidate != "" {
			out = append(out, strings.ToLower(candidate))
		}
	}
	return out, nil
}
