package article

import (
	"context"
	"log/slog"
	"strings"

	"newsbrief/internal/cache"
	"newsbrief/internal/domain"
	"newsbrief/internal/summarizer"
)

// Pipeline resolves one URL into an article: the document comes from the
// document tier, the content optionally from the summary tier. Both tiers are
// keyed by the literal URL.
type Pipeline struct {
	source     Source
	summarizer summarizer.Summarizer
	documents  *cache.Tier[string, domain.Document]
	summaries  *cache.Tier[string, string]
	log        *slog.Logger
}

func NewPipeline(
	source Source,
	s summarizer.Summarizer,
	documents *cache.Tier[string, domain.Document],
	summaries *cache.Tier[string, string],
	log *slog.Logger,
) *Pipeline {
	return &Pipeline{
		source:     source,
		summarizer: s,
		documents:  documents,
		summaries:  summaries,
		log:        log,
	}
}

// Document returns the raw document for rawURL, from cache when possible.
func (p *Pipeline) Document(ctx context.Context, rawURL string) (domain.Document, error) {
	return p.documents.Get(ctx, rawURL, func(ctx context.Context) (domain.Document, error) {
		p.log.DebugContext(ctx, "Fetching document",
			"url", rawURL)

		return p.source.Fetch(ctx, rawURL)
	})
}

// Fetch never fails: a document failure yields an empty article and a
// summary failure yields the raw document body.
func (p *Pipeline) Fetch(
	ctx context.Context,
	rawURL string,
	opts domain.SummaryOptions,
) domain.Article {
	doc, err := p.Document(ctx, rawURL)
	if err != nil {
		p.log.WarnContext(ctx, "Failed to fetch document",
			"error", err,
			"url", rawURL)

		return domain.Article{}
	}

	article := domain.Article{Title: doc.Title, Content: doc.Body}

	if !opts.Enabled() || p.summarizer == nil {
		return article
	}

	summary, err := p.summaries.Get(ctx, rawURL, func(ctx context.Context) (string, error) {
		return p.summarizer.Summarize(ctx, summarizer.Input{
			Text:      doc.Body,
			SourceURL: rawURL,
			Provider:  opts.Provider,
			Model:     opts.Model,
			APIKey:    opts.APIKey,
		})
	})
	if err != nil {
		p.log.WarnContext(ctx, "Failed to summarize document so raw text will be used",
			"error", err,
			"url", rawURL,
			"provider", opts.Provider,
			"model", opts.Model,
			"textLen", len(doc.Body))

		return article
	}

	if summary = strings.TrimSpace(summary); summary != "" {
		article.Content = summary
	}

	return article
}

func (p *Pipeline) CachedDocuments() int {
	return p.documents.Len()
}

func (p *Pipeline) CachedSummaries() int {
	return p.summaries.Len()
}
