package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"newsbrief/internal/domain"
)

const DefaultFeedURL = "https://news.google.com/rss"

// Lister returns the current top headlines for a language.
type Lister interface {
	List(ctx context.Context, language string, count int) ([]domain.Headline, error)
}

// GoogleLister reads the Google News top stories RSS feed.
type GoogleLister struct {
	feedURL string
	country string
	parser  *gofeed.Parser
	log     *slog.Logger
}

func NewGoogleLister(
	feedURL string,
	country string,
	client *http.Client,
	userAgent string,
	log *slog.Logger,
) *GoogleLister {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	if feedURL == "" {
		feedURL = DefaultFeedURL
	}

	return &GoogleLister{
		feedURL: feedURL,
		country: strings.ToUpper(strings.TrimSpace(country)),
		parser:  parser,
		log:     log,
	}
}

func (l *GoogleLister) List(
	ctx context.Context,
	language string,
	count int,
) ([]domain.Headline, error) {
	feedURL, err := l.buildURL(language)
	if err != nil {
		return nil, fmt.Errorf("%w: build feed url: %w", domain.ErrSource, err)
	}

	feed, err := l.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed %s: %w", domain.ErrSource, feedURL, err)
	}

	headlines := make([]domain.Headline, 0, min(count, len(feed.Items)))
	for _, item := range feed.Items {
		if len(headlines) == count {
			break
		}
		if item == nil {
			continue
		}

		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		headlines = append(headlines, domain.Headline{
			URL:   link,
			Title: strings.TrimSpace(item.Title),
		})
	}

	l.log.DebugContext(ctx, "Listed headlines",
		"language", language,
		"requested", count,
		"listed", len(headlines),
		"feedItems", len(feed.Items))

	return headlines, nil
}

func (l *GoogleLister) buildURL(language string) (string, error) {
	u, err := url.Parse(l.feedURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	language = strings.ToLower(strings.TrimSpace(language))
	country := l.country
	if country == "" {
		country = strings.ToUpper(language)
	}

	q := u.Query()
	q.Set("hl", language)
	q.Set("gl", country)
	q.Set("ceid", country+":"+language)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
