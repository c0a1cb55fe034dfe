package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsbrief/internal/domain"
)

const maxBodyBytes = 1 << 20

type articleRequest struct {
	URL   string `json:"url"`
	AI    string `json:"ai"`
	Model string `json:"model"`
	AIKey string `json:"aikey"`
}

type newsRequest struct {
	Num      *int   `json:"num"`
	Language string `json:"language"`
	AI       string `json:"ai"`
	Model    string `json:"model"`
	AIKey    string `json:"aikey"`
	Stream   *bool  `json:"stream"`
}

type getArticleResponse struct {
	ArticleTitle string `json:"article_title"`
	ArticleText  string `json:"article_text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.articles.CachedDocuments(),
		"summaries": s.articles.CachedSummaries(),
		"headlines": s.headlines.Len(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleGetArticle answers with the raw document, or an empty object when
// anything goes wrong.
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))

	if err := s.validateURL(rawURL); err != nil {
		s.log.WarnContext(ctx, "Rejected article url",
			"error", err,
			"url", rawURL)
		s.writeJSON(w, r, http.StatusOK, struct{}{})

		return
	}

	doc, err := s.articles.Document(ctx, rawURL)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to fetch article",
			"error", err,
			"url", rawURL)
		s.writeJSON(w, r, http.StatusOK, struct{}{})

		return
	}

	s.writeJSON(w, r, http.StatusOK, getArticleResponse{
		ArticleTitle: doc.Title,
		ArticleText:  doc.Body,
	})
}

func (s *Server) handlePostArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		s.writeError(w, r, fmt.Errorf("%w: Article URL is required", domain.ErrValidation))
		return
	}
	if err := s.validateURL(rawURL); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := domain.SummaryOptions{
		Provider: req.AI,
		Model:    req.Model,
		APIKey:   req.AIKey,
	}.WithDefaults(s.opts.Summary)

	s.writeJSON(w, r, http.StatusOK, s.articles.Fetch(r.Context(), rawURL, opts))
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req newsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	count, err := s.articleCount(req.Num)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	headlines, err := s.headlines.Get(ctx, s.language(req.Language), count)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	urls := make([]string, len(headlines))
	for i, h := range headlines {
		urls[i] = h.URL
	}

	opts := domain.SummaryOptions{
		Provider: req.AI,
		Model:    req.Model,
		APIKey:   req.AIKey,
	}.WithDefaults(s.opts.Summary)

	if req.Stream != nil && !*req.Stream {
		articles, collectErr := s.batches.Collect(ctx, urls, opts)
		if collectErr != nil {
			s.log.InfoContext(ctx, "Client left before articles were collected",
				"error", collectErr,
				"urlCount", len(urls))
			return
		}

		s.writeJSON(w, r, http.StatusOK, articles)

		return
	}

	s.streamArticles(w, r, urls, opts)
}

// streamArticles writes the array as items complete. Items arrive in
// completion order, not in listing order.
func (s *Server) streamArticles(
	w http.ResponseWriter,
	r *http.Request,
	urls []string,
	opts domain.SummaryOptions,
) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	for chunk := range s.batches.Stream(ctx, urls, opts) {
		if _, err := w.Write(chunk); err != nil {
			s.log.InfoContext(ctx, "Stopped streaming articles",
				"error", err,
				"urlCount", len(urls))
			return
		}

		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			s.log.InfoContext(ctx, "Stopped streaming articles",
				"error", err,
				"urlCount", len(urls))
			return
		}
	}
}

func (s *Server) handleHeadlines(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	count, err := s.articleCount(req.Num)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	headlines, err := s.headlines.Get(r.Context(), s.language(req.Language), count)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, headlines)
}

func (s *Server) articleCount(num *int) (int, error) {
	if num == nil {
		return s.opts.Articles, nil
	}

	if *num < s.opts.MinArticles || *num > s.opts.MaxArticles {
		return 0, fmt.Errorf("%w: num must be between %d and %d (got %d)",
			domain.ErrValidation, s.opts.MinArticles, s.opts.MaxArticles, *num)
	}

	return *num, nil
}

func (s *Server) language(requested string) string {
	if lang := strings.TrimSpace(requested); lang != "" {
		return lang
	}

	return s.opts.Language
}

func (s *Server) validateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: url is empty", domain.ErrValidation)
	}

	if match := s.urlRe.FindString(rawURL); match != rawURL {
		return fmt.Errorf("%w: %q is not an http(s) url", domain.ErrValidation, rawURL)
	}

	return nil
}

// decodeBody accepts an empty body as a request with every field omitted.
func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", domain.ErrValidation, err)
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}

	if err = json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decode body: %w", domain.ErrValidation, err)
	}

	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "An error occurred while fetching the article content"

	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		message = strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	case errors.Is(err, domain.ErrSource):
		status = http.StatusBadGateway
		message = "Failed to list news"
	}

	s.log.WarnContext(r.Context(), "Request failed",
		"error", err,
		"status", status,
		"path", r.URL.Path)

	s.writeJSON(w, r, status, errorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to encode response",
			"error", err,
			"path", r.URL.Path)
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err = w.Write(body); err != nil {
		s.log.InfoContext(r.Context(), "Failed to write response",
			"error", err,
			"path", r.URL.Path)
	}
}
