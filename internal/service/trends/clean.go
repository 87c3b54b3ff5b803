package trends

import (
	"slices"
	"strings"

	"github.com/kapu/sdg-pulse/internal/constants"
	"github.com/kapu/sdg-pulse/internal/domain"
)

// CleanPosts normalizes generated posts and drops empty, short and duplicate ones.
// Duplicates are judged on the lower-cased trend and the cleaned text.
func CleanPosts(raw []domain.GeneratedPost) []domain.CleanedPost {
	type key struct{ trend, text string }

	seen := make(map[key]struct{})
	out := make([]domain.CleanedPost, 0, len(raw))
	for _, p := range raw {
		trend := strings.TrimSpace(p.Trend)
		text := CleanText(strings.TrimSpace(p.Text))
		if trend == "" || text == "" || len(text) < constants.TextLimits.MinCleanedPostLength {
			continue
		}

		k := key{strings.ToLower(trend), text}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, domain.CleanedPost{Trend: trend, Text: text})
	}
	return out
}

// CountSDGs tallies goal tags across posts, most frequent first. Equal counts
// keep the order in which the goal was first seen.
func CountSDGs(posts []domain.Post) []domain.SDGCount {
	index := make(map[domain.SDG]int)
	counts := make([]domain.SDGCount, 0)
	for _, p := range posts {
		for _, s := range p.SDG {
			i, ok := index[s]
			if !ok {
				i = len(counts)
				index[s] = i
				counts = append(counts, domain.SDGCount{SDG: s})
			}
			counts[i].Count++
		}
	}

	slices.SortStableFunc(counts, func(a, b domain.SDGCount) int {
		return b.Count - a.Count
	})
	return counts
}

// FilterByTrends keeps posts whose trend is in the list, case-insensitively.
// An empty list keeps everything.
func FilterByTrends(posts []domain.Post, trendList []string) []domain.Post {
	if len(trendList) == 0 {
		return posts
	}
	allowed := make(map[string]struct{}, len(trendList))
	for _, t := range trendList {
		allowed[domain.NormalizeTrend(t)] = struct{}{}
	}

	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := allowed[p.NormalizedTrend()]; ok {
			out = append(out, p)
		}
	}
	return out
}
