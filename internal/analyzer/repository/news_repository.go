package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang-stock-analyzer/internal/analyzer/config"
	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
)

const defaultNewsFeedURL = "https://news.google.com/rss"

// newsRepository retrieves recent articles for a subject from the
// Google News RSS feed.
type newsRepository struct {
	cfg     *config.Config
	logger  *logger.Logger
	client  *http.Client
	feedURL string
}

// NewNewsRepository creates a new instance of NewsRepository.
func NewNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	feedURL := cfg.MarketData.NewsFeedURL
	if feedURL == "" {
		feedURL = defaultNewsFeedURL
	}
	return &newsRepository{
		cfg:     cfg,
		logger:  log,
		client:  &http.Client{Timeout: 20 * time.Second},
		feedURL: strings.TrimRight(feedURL, "/"),
	}
}

// FetchNews returns up to MaxNewsCount articles published within the
// news window, newest first. Article bodies are fetched best effort;
// an item without extractable content still counts toward the result
// with its headline only.
func (r *newsRepository) FetchNews(ctx context.Context, subject dto.SubjectKey, name string) ([]dto.NewsItem, error) {
	query := newsQuery(subject, name)
	feedURL := fmt.Sprintf("%s/search?q=%s&hl=en-US&gl=US&ceid=US:en", r.feedURL, url.QueryEscape(query))

	r.logger.Debug("Processing RSS feed", logger.StringField("url", feedURL))

	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	sort.Slice(feed.Items, func(i, j int) bool {
		if feed.Items[i].PublishedParsed == nil || feed.Items[j].PublishedParsed == nil {
			return false
		}
		return feed.Items[i].PublishedParsed.After(*feed.Items[j].PublishedParsed)
	})

	cutoff := time.Now().AddDate(0, 0, -r.cfg.Analyzer.NewsWindow)

	var items []dto.NewsItem
	for _, item := range feed.Items {
		if len(items) >= r.cfg.Analyzer.MaxNewsCount {
			break
		}
		if item.PublishedParsed == nil || item.PublishedParsed.Before(cutoff) {
			continue
		}

		news := dto.NewsItem{
			Title:       item.Title,
			Link:        item.Link,
			PublishedAt: *item.PublishedParsed,
		}
		if parsedURL, err := url.Parse(item.Link); err == nil {
			news.Source = parsedURL.Hostname()
		}

		content, err := r.extractContent(ctx, item.Link)
		if err != nil {
			r.logger.Debug("Failed to extract article content",
				logger.ErrorField(err), logger.StringField("link", item.Link))
		} else {
			news.Content = content
		}

		items = append(items, news)
	}

	r.logger.Debug("Fetched news",
		logger.StringField("subject", subject.String()),
		logger.IntField("count", len(items)),
	)
	return items, nil
}

func (r *newsRepository) extractContent(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for news item: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch news content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch news content, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse news content: %w", err)
	}
	docHTML, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(doc.Content())))
	if err != nil {
		return "", fmt.Errorf("failed to parse news content: %w", err)
	}

	content := strings.TrimSpace(docHTML.Text())
	content = strings.ReplaceAll(content, "\n", " ")
	content = strings.ReplaceAll(content, "\t", " ")
	content = strings.ReplaceAll(content, "\r", " ")
	return strings.Join(strings.Fields(content), " "), nil
}

// newsQuery builds the search query for a subject. The company name
// retrieved with the price data beats a bare ticker when available.
func newsQuery(subject dto.SubjectKey, name string) string {
	if name != "" && name != subject.Symbol {
		return fmt.Sprintf("%s stock", name)
	}
	switch subject.Market {
	case dto.MarketHKStock:
		return fmt.Sprintf("%s.HK stock", strings.TrimLeft(subject.Symbol, "0"))
	default:
		return fmt.Sprintf("%s stock", subject.Symbol)
	}
}
