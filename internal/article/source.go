package article

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"newsbrief/internal/domain"
	"newsbrief/internal/fetch"
)

const maxDocumentBytes = 10 << 20

var errNoContent = errors.New("no article content found")

//nolint:gochecknoglobals // read-only selector list
var fallbackContainers = []string{
	"article",
	"main",
	"[itemprop='articleBody']",
	".article-body",
	".post-content",
	".entry-content",
	".story-body",
	".content",
}

// Source fetches a document by URL.
type Source interface {
	Fetch(ctx context.Context, rawURL string) (domain.Document, error)
}

// WebSource downloads a page and extracts its readable text, falling back to
// common article containers when readability finds nothing.
type WebSource struct {
	client *fetch.Client
	log    *slog.Logger
}

func NewWebSource(client *fetch.Client, log *slog.Logger) *WebSource {
	return &WebSource{client: client, log: log}
}

func (s *WebSource) Fetch(ctx context.Context, rawURL string) (domain.Document, error) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: parse URL: %w", domain.ErrSource, err)
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" {
		return domain.Document{}, fmt.Errorf("%w: unsupported scheme %q", domain.ErrSource, pageURL.Scheme)
	}

	resp, err := s.client.Get(ctx, pageURL.String())
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %w", domain.ErrSource, err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			s.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL,
				"operation", "WebSource.Fetch")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return domain.Document{}, fmt.Errorf("%w: unexpected status: %d", domain.ErrSource, resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: read body: %w", domain.ErrSource, err)
	}

	// Redirects may have moved the page; relative links resolve against
	// the final location.
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}

	doc, err := extract(page, pageURL)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %w", domain.ErrSource, err)
	}

	return doc, nil
}

func extract(page []byte, pageURL *url.URL) (domain.Document, error) {
	var doc domain.Document

	parsed, readabilityErr := readability.FromReader(bytes.NewReader(page), pageURL)
	if readabilityErr == nil {
		doc.Title = strings.TrimSpace(parsed.Title)
		doc.Body = normalizeText(parsed.TextContent)
	}

	if doc.Title != "" && doc.Body != "" {
		return doc, nil
	}

	html, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return domain.Document{}, fmt.Errorf("create document from reader: %w", err)
	}

	if doc.Title == "" {
		doc.Title = pageTitle(html)
	}
	if doc.Body == "" {
		doc.Body = containerText(html)
	}

	if doc.Body == "" {
		if readabilityErr != nil {
			return domain.Document{}, fmt.Errorf("%w: %w", errNoContent, readabilityErr)
		}
		return domain.Document{}, errNoContent
	}

	return doc, nil
}

func pageTitle(html *goquery.Document) string {
	if content, ok := html.Find("meta[property='og:title']").Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}

	return strings.TrimSpace(html.Find("title").First().Text())
}

func containerText(html *goquery.Document) string {
	for _, sel := range fallbackContainers {
		container := html.Find(sel).First()
		if container.Length() == 0 {
			continue
		}

		container.Find("script, style, iframe, nav, aside, .ad, .advertisement, .share, .related").Remove()

		var textBuilder strings.Builder
		container.Find("p, h2, h3, li").Each(func(_ int, s *goquery.Selection) {
			fragment := strings.TrimSpace(s.Text())
			if fragment == "" {
				return
			}
			if textBuilder.Len() > 0 {
				textBuilder.WriteString("\n\n")
			}
			textBuilder.WriteString(fragment)
		})

		text := textBuilder.String()
		if text == "" {
			text = container.Text()
		}

		if text = normalizeText(text); text != "" {
			return text
		}
	}

	return ""
}

// normalizeText trims every line and collapses runs of blank lines.
func normalizeText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var b strings.Builder
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = b.Len() > 0
			continue
		}
		if b.Len() > 0 {
			if blank {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(line)
		blank = false
	}

	return b.String()
}
