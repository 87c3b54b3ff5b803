package trends

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/sdg-pulse/internal/constants"
	"go.uber.org/zap"
)

// Scraper pulls trend titles out of an HTML trend page.
type Scraper struct {
	httpClient *http.Client
	selector   string
	logger     *zap.Logger
}

func NewScraper(selector string, timeout time.Duration, logger *zap.Logger) *Scraper {
	if timeout <= 0 {
		timeout = constants.ScraperConfig.Timeout
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		selector:   selector,
		logger:     logger,
	}
}

// FetchTitles reads source (an http(s) URL or a local file) and returns the
// distinct non-empty texts of the elements matching the selector, in page order.
func (s *Scraper) FetchTitles(ctx context.Context, source string) ([]string, error) {
	body, err := s.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	titles := ExtractTitles(doc, s.selector)
	s.logger.Info("Trend titles scraped",
		zap.String("source", source),
		zap.String("selector", s.selector),
		zap.Int("count", len(titles)),
	)
	return titles, nil
}

func (s *Scraper) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open trend page: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", constants.ScraperConfig.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trend page: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("trend page returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// ExtractTitles collects trimmed, de-duplicated element texts.
func ExtractTitles(doc *goquery.Document, selector string) []string {
	seen := make(map[string]struct{})
	titles := make([]string, 0)
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		title := strings.Join(strings.Fields(sel.Text()), " ")
		if title == "" {
			return
		}
		key := strings.ToLower(title)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		titles = append(titles, title)
	})
	return titles
}
