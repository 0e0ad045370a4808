package preview

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-news-sender/internal/domain"
	"github.com/samvad-hq/samvad-news-sender/internal/logger"
	"github.com/samvad-hq/samvad-news-sender/pkg/httpclient"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	fetchTimeout     = 15 * time.Second
)

var defaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (compatible; samvad-news-sender/1.0)",
	"Accept":     "text/html,application/xhtml+xml",
}

// Scraper fetches article outlinks and extracts link-preview metadata from OG tags.
type Scraper struct {
	client httpclient.Client
}

// NewScraper constructs a scraper with the provided HTTP client (or default).
func NewScraper(client httpclient.Client) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(fetchTimeout)
	}
	return &Scraper{client: client}
}

// FromOutlinks fetches the first outlink that yields metadata and returns the
// extracted preview. Failures are logged and reported as a nil preview; the
// dispatch proceeds without one.
func (s *Scraper) FromOutlinks(ctx context.Context, outlinks []string) *domain.Preview {
	for _, link := range outlinks {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if strings.TrimSpace(link) == "" {
			continue
		}

		meta, err := s.fetchAndParse(ctx, link)
		if err != nil {
			logger.WarnObj("outlink preview fetch failed", "preview_error", map[string]any{
				"url":   link,
				"error": err.Error(),
			})
			continue
		}
		if meta != nil {
			return meta
		}
	}
	return nil
}

func (s *Scraper) fetchAndParse(ctx context.Context, link string) (*domain.Preview, error) {
	resp, err := s.client.Get(ctx, link, defaultHeaders)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("status %d", resp.StatusCode())
	}

	contentType := resp.Header("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return nil, err
	}
	if meta.Title == "" && meta.Description == "" && meta.ImageURL == "" {
		return nil, nil
	}
	return &meta, nil
}

func parseMeta(body []byte) (domain.Preview, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.Preview{}, fmt.Errorf("parse html: %w", err)
	}

	pm := domain.Preview{}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	pm.Title = firstNonEmpty(
		extract(`meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	pm.Description = firstNonEmpty(
		extract(`meta[property="og:description"]`),
		extract(`meta[name="description"]`),
	)
	pm.ImageURL = extract(`meta[property="og:image"]`)

	return pm, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
