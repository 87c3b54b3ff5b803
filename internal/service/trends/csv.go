package trends

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kapu/sdg-pulse/internal/domain"
)

// ReadColumn returns every value of the named column. Empty cells are skipped.
func ReadColumn(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	return readColumn(f, column)
}

func readColumn(r io.Reader, column string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := -1
	for i, h := range headers {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("CSV is missing expected text column %q (available: %s)", column, strings.Join(headers, ", "))
	}

	var values []string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if idx >= len(rec) || strings.TrimSpace(rec[idx]) == "" {
			continue
		}
		values = append(values, rec[idx])
	}
	return values, nil
}

// PostsFromTexts cleans raw texts and assigns each one a trend.
func PostsFromTexts(texts, trendList []string) []domain.CleanedPost {
	posts := make([]domain.CleanedPost, 0, len(texts))
	for _, raw := range texts {
		cleaned := CleanText(raw)
		posts = append(posts, domain.CleanedPost{Trend: AssignTrend(cleaned, trendList), Text: cleaned})
	}
	return posts
}
