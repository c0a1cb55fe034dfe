package scheduler_test

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"newsbrief/internal/domain"
	"newsbrief/internal/scheduler"
)

type stubListings struct {
	headlines []domain.Headline
	err       error
	languages []string
}

func (s *stubListings) Refresh(_ context.Context, language string) ([]domain.Headline, error) {
	s.languages = append(s.languages, language)

	return s.headlines, s.err
}

type stubCollector struct {
	mu   sync.Mutex
	urls [][]string
	opts []domain.SummaryOptions
}

func (s *stubCollector) Collect(
	_ context.Context,
	urls []string,
	opts domain.SummaryOptions,
) ([]domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.urls = append(s.urls, urls)
	s.opts = append(s.opts, opts)

	articles := make([]domain.Article, len(urls))
	for i, u := range urls {
		articles[i] = domain.Article{Title: u, Content: "content"}
	}

	return articles, nil
}

func TestWarmUpPrefetchesListedArticles(t *testing.T) {
	listings := &stubListings{headlines: []domain.Headline{
		{URL: "https://example.com/1", Title: "one"},
		{URL: "https://example.com/2", Title: "two"},
		{URL: "https://example.com/3", Title: "three"},
	}}
	collector := &stubCollector{}
	summary := domain.SummaryOptions{Provider: "openai", APIKey: "sk-test"}

	s := scheduler.New(context.Background(), scheduler.Options{
		Spec:     "@every 1h",
		Language: "it",
		Count:    2,
		Summary:  summary,
	}, listings, collector, slog.Default())

	s.WarmUp()

	if !slices.Equal(listings.languages, []string{"it"}) {
		t.Fatalf("unexpected refresh languages: %v", listings.languages)
	}
	if len(collector.urls) != 1 {
		t.Fatalf("expected one prefetch, got %d", len(collector.urls))
	}
	if want := []string{"https://example.com/1", "https://example.com/2"}; !slices.Equal(collector.urls[0], want) {
		t.Fatalf("expected %v, got %v", want, collector.urls[0])
	}
	if collector.opts[0] != summary {
		t.Fatalf("unexpected summary options: %+v", collector.opts[0])
	}
}

func TestWarmUpSkipsPrefetchWhenListingFails(t *testing.T) {
	listings := &stubListings{err: domain.ErrSource}
	collector := &stubCollector{}

	s := scheduler.New(context.Background(), scheduler.Options{
		Spec:     "@every 1h",
		Language: "it",
		Count:    5,
	}, listings, collector, slog.Default())

	s.WarmUp()

	if len(collector.urls) != 0 {
		t.Fatalf("expected no prefetch after a failed refresh")
	}
}

func TestWarmUpSkipsWhenContextIsDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	listings := &stubListings{}
	s := scheduler.New(ctx, scheduler.Options{Spec: "@every 1h", Language: "it", Count: 5},
		listings, &stubCollector{}, slog.Default())

	s.WarmUp()

	if len(listings.languages) != 0 {
		t.Fatalf("expected no refresh with a cancelled context")
	}
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := scheduler.New(context.Background(), scheduler.Options{Spec: "not a schedule"},
		&stubListings{}, &stubCollector{}, slog.Default())

	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatalf("expected an error for an invalid schedule")
	}
}
