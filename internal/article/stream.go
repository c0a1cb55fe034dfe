package article

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/mailru/easyjson"
	"golang.org/x/sync/semaphore"

	"newsbrief/internal/domain"
)

var (
	arrayOpen  = []byte{'['}
	arrayClose = []byte{']'}
	emptyItem  = []byte(`{"title":"","content":""}`)
)

// Fetcher resolves a single URL into an article without failing.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts domain.SummaryOptions) domain.Article
}

// Streamer fans a list of URLs out to a Fetcher with at most workers
// concurrent fetches.
type Streamer struct {
	fetcher Fetcher
	workers int
	log     *slog.Logger
}

func NewStreamer(fetcher Fetcher, workers int, log *slog.Logger) *Streamer {
	return &Streamer{
		fetcher: fetcher,
		workers: max(workers, 1),
		log:     log,
	}
}

// Stream returns the articles for urls as JSON chunks whose concatenation is
// one JSON array with exactly len(urls) objects. Items come in completion
// order, not in the order of urls. Work starts when iteration starts and the
// sequence can be consumed once; a second range yields nothing.
//
// Stopping early, or cancelling ctx, ends the sequence but not the fetches:
// they run to completion and fill the caches.
func (s *Streamer) Stream(
	ctx context.Context,
	urls []string,
	opts domain.SummaryOptions,
) iter.Seq[[]byte] {
	urls = slices.Clone(urls)
	var consumed atomic.Bool

	return func(yield func([]byte) bool) {
		if !consumed.CompareAndSwap(false, true) {
			return
		}

		results := s.start(ctx, urls, opts)

		if !yield(arrayOpen) {
			return
		}

		for i := range len(urls) {
			var item indexedArticle
			select {
			case item = <-results:
			case <-ctx.Done():
				s.log.InfoContext(ctx, "Stream context is done",
					"error", ctx.Err(),
					"emitted", i,
					"total", len(urls))
				return
			}

			chunk := s.encode(ctx, item)
			if i > 0 {
				chunk = append([]byte{','}, chunk...)
			}

			if !yield(chunk) {
				s.log.DebugContext(ctx, "Stream consumer stopped early",
					"emitted", i+1,
					"total", len(urls))
				return
			}
		}

		yield(arrayClose)
	}
}

// Collect waits for every article and returns them in the order of urls.
func (s *Streamer) Collect(
	ctx context.Context,
	urls []string,
	opts domain.SummaryOptions,
) ([]domain.Article, error) {
	results := s.start(ctx, urls, opts)
	articles := make([]domain.Article, len(urls))

	for range len(urls) {
		select {
		case item := <-results:
			articles[item.index] = item.article
		case <-ctx.Done():
			return nil, fmt.Errorf("collect articles: %w", ctx.Err())
		}
	}

	return articles, nil
}

type indexedArticle struct {
	index   int
	url     string
	article domain.Article
}

func (s *Streamer) start(
	ctx context.Context,
	urls []string,
	opts domain.SummaryOptions,
) <-chan indexedArticle {
	// Buffered for every item so workers never block on a consumer that
	// went away.
	results := make(chan indexedArticle, len(urls))
	if len(urls) == 0 {
		return results
	}

	workCtx := context.WithoutCancel(ctx)
	sem := semaphore.NewWeighted(int64(min(len(urls), s.workers)))

	for i, u := range urls {
		go func() {
			item := indexedArticle{index: i, url: u}
			defer func() {
				if r := recover(); r != nil {
					s.log.ErrorContext(workCtx, "Recovered from panic while fetching article",
						"panic", fmt.Sprint(r),
						"url", u)
				}
				results <- item
			}()

			if err := sem.Acquire(workCtx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			item.article = s.fetcher.Fetch(workCtx, u, opts)
		}()
	}

	return results
}

func (s *Streamer) encode(ctx context.Context, item indexedArticle) []byte {
	chunk, err := easyjson.Marshal(item.article)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to encode article",
			"error", err,
			"url", item.url)

		return emptyItem
	}

	return chunk
}
