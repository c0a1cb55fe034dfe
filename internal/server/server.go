package server

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"regexp"

	"mvdan.cc/xurls/v2"

	"newsbrief/internal/domain"
)

// Articles resolves single URLs through the document and summary caches.
type Articles interface {
	Document(ctx context.Context, rawURL string) (domain.Document, error)
	Fetch(ctx context.Context, rawURL string, opts domain.SummaryOptions) domain.Article
	CachedDocuments() int
	CachedSummaries() int
}

// Batches resolves many URLs at once, either streamed or buffered.
type Batches interface {
	Stream(ctx context.Context, urls []string, opts domain.SummaryOptions) iter.Seq[[]byte]
	Collect(ctx context.Context, urls []string, opts domain.SummaryOptions) ([]domain.Article, error)
}

// Headlines serves the cached news listing.
type Headlines interface {
	Get(ctx context.Context, language string, count int) ([]domain.Headline, error)
	Len() int
}

type Options struct {
	Articles    int
	MinArticles int
	MaxArticles int
	Language    string
	Summary     domain.SummaryOptions
	CORSOrigins []string
}

type Server struct {
	opts      Options
	articles  Articles
	batches   Batches
	headlines Headlines
	urlRe     *regexp.Regexp
	mux       *http.ServeMux
	log       *slog.Logger
}

func New(
	opts Options,
	articles Articles,
	batches Batches,
	headlines Headlines,
	log *slog.Logger,
) (*Server, error) {
	urlRe, err := xurls.StrictMatchingScheme("https?://")
	if err != nil {
		return nil, fmt.Errorf("create regexp: %w", err)
	}

	s := &Server{
		opts:      opts,
		articles:  articles,
		batches:   batches,
		headlines: headlines,
		urlRe:     urlRe,
		mux:       http.NewServeMux(),
		log:       log,
	}

	s.registerRoutes()

	return s, nil
}

// Handler is the mux wrapped with request logging and CORS.
func (s *Server) Handler() http.Handler {
	return s.withRequestLog(s.withCORS(s.mux))
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleStatus)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /article", s.handleGetArticle)
	s.mux.HandleFunc("POST /article", s.handlePostArticle)
	s.mux.HandleFunc("POST /news", s.handleNews)
	s.mux.HandleFunc("POST /headlines", s.handleHeadlines)
}
