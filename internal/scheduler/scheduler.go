package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"newsbrief/internal/domain"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	warmUpTimeout         = 10 * time.Minute
)

// Listings refreshes the cached headline listing.
type Listings interface {
	Refresh(ctx context.Context, language string) ([]domain.Headline, error)
}

// Collector resolves a batch of URLs through the article caches.
type Collector interface {
	Collect(ctx context.Context, urls []string, opts domain.SummaryOptions) ([]domain.Article, error)
}

// Scheduler periodically refreshes the listing and prefetches its articles
// so the first request after a quiet period is served from the caches.
type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	spec      string
	language  string
	count     int
	summary   domain.SummaryOptions
	listings  Listings
	collector Collector
	log       *slog.Logger
}

type Options struct {
	Spec     string
	Language string
	Count    int
	Summary  domain.SummaryOptions
}

func New(
	ctx context.Context,
	opts Options,
	listings Listings,
	collector Collector,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:       ctx,
		cron:      c,
		spec:      opts.Spec,
		language:  opts.Language,
		count:     opts.Count,
		summary:   opts.Summary,
		listings:  listings,
		collector: collector,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.WarmUp); err != nil {
		return fmt.Errorf("add warm-up job %q: %w", s.spec, err)
	}

	s.cron.Start()

	return nil
}

// Stop stops scheduling and waits for a running warm-up to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) WarmUp() {
	ctx, cancel := context.WithTimeout(s.ctx, warmUpTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	started := time.Now()

	headlines, err := s.listings.Refresh(ctx, s.language)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to refresh listing",
			"error", err,
			"language", s.language)
		return
	}

	urls := make([]string, 0, min(s.count, len(headlines)))
	for _, h := range headlines[:min(s.count, len(headlines))] {
		urls = append(urls, h.URL)
	}

	articles, err := s.collector.Collect(ctx, urls, s.summary)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to prefetch articles",
			"error", err,
			"language", s.language,
			"urlCount", len(urls))
		return
	}

	var empty int
	for _, a := range articles {
		if a == (domain.Article{}) {
			empty++
		}
	}

	s.log.InfoContext(ctx, "Warmed up caches",
		"language", s.language,
		"urlCount", len(urls),
		"emptyArticles", empty,
		"summaries", s.summary.Enabled(),
		"duration", time.Since(started))
}
