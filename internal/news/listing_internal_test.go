package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"newsbrief/internal/domain"
)

type stubLister struct {
	mu     sync.Mutex
	calls  int
	sizes  []int
	delay  time.Duration
	err    error
	stored int
}

func (s *stubLister) List(_ context.Context, language string, count int) ([]domain.Headline, error) {
	s.mu.Lock()
	s.calls++
	s.sizes = append(s.sizes, count)
	delay, err, stored := s.delay, s.err, s.stored
	s.mu.Unlock()

	time.Sleep(delay)

	if err != nil {
		return nil, err
	}

	headlines := make([]domain.Headline, min(count, stored))
	for i := range headlines {
		headlines[i] = domain.Headline{
			URL:   fmt.Sprintf("https://example.com/%s/%d", language, i),
			Title: fmt.Sprintf("headline %d", i),
		}
	}

	return headlines, nil
}

func (s *stubLister) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestListingCache(lister Lister, clock *fakeClock, fetchSize int) *ListingCache {
	c := NewListingCache(lister, 5*time.Minute, time.Second, fetchSize, slog.Default())
	c.now = clock.Now

	return c
}

func TestListingCacheServesSlicesFromSlot(t *testing.T) {
	lister := &stubLister{stored: 20}
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := newTestListingCache(lister, clock, 10)
	ctx := context.Background()

	first, err := c.Get(ctx, "it", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 5 {
		t.Fatalf("expected 5 headlines, got %d", len(first))
	}

	second, err := c.Get(ctx, "it", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 3 || second[0] != first[0] {
		t.Fatalf("expected a prefix of the cached listing, got %+v", second)
	}

	if lister.callCount() != 1 {
		t.Fatalf("expected one refresh, got %d", lister.callCount())
	}
	if lister.sizes[0] != 10 {
		t.Fatalf("expected refresh to ask for fetch size, got %d", lister.sizes[0])
	}
	if c.Len() != 10 {
		t.Fatalf("expected slot to hold 10 headlines, got %d", c.Len())
	}
}

func TestListingCacheRefreshesWhenUndersized(t *testing.T) {
	lister := &stubLister{stored: 20}
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := newTestListingCache(lister, clock, 5)
	ctx := context.Background()

	if _, err := c.Get(ctx, "it", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := c.Get(ctx, "it", 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 12 || lister.callCount() != 2 {
		t.Fatalf("expected a second refresh for a larger count, got %d headlines after %d calls", len(got), lister.callCount())
	}
}

func TestListingCacheRefreshesWhenExpired(t *testing.T) {
	lister := &stubLister{stored: 20}
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := newTestListingCache(lister, clock, 5)
	ctx := context.Background()

	if _, err := c.Get(ctx, "it", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.Advance(5*time.Minute - time.Nanosecond)
	if _, err := c.Get(ctx, "it", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.callCount() != 1 {
		t.Fatalf("expected slot to be fresh before expiry, got %d calls", lister.callCount())
	}

	clock.Advance(time.Nanosecond)
	if _, err := c.Get(ctx, "it", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.callCount() != 2 {
		t.Fatalf("expected refresh at expiry, got %d calls", lister.callCount())
	}
}

func TestListingCacheRefreshesForOtherLanguage(t *testing.T) {
	lister := &stubLister{stored: 20}
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := newTestListingCache(lister, clock, 5)
	ctx := context.Background()

	if _, err := c.Get(ctx, "it", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := c.Get(ctx, "EN", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got[0].URL != "https://example.com/en/0" || lister.callCount() != 2 {
		t.Fatalf("expected listing for en, got %+v after %d calls", got, lister.callCount())
	}
}

func TestListingCacheKeepsSlotOnFailure(t *testing.T) {
	lister := &stubLister{stored: 20}
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := newTestListingCache(lister, clock, 5)
	ctx := context.Background()

	if _, err := c.Get(ctx, "it", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lister.mu.Lock()
	lister.err = domain.ErrSource
	lister.mu.Unlock()

	if _, err := c.Refresh(ctx, "it"); !errors.Is(err, domain.ErrSource) {
		t.Fatalf("expected source failure, got %v", err)
	}

	got, err := c.Get(ctx, "it", 5)
	if err != nil || len(got) != 5 {
		t.Fatalf("expected previous listing to survive, got %+v, %v", got, err)
	}
}

func TestListingCacheCollapsesConcurrentRefreshes(t *testing.T) {
	lister := &stubLister{stored: 20, delay: 30 * time.Millisecond}
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := newTestListingCache(lister, clock, 10)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			if got, err := c.Get(context.Background(), "it", 5); err != nil || len(got) != 5 {
				t.Errorf("unexpected result: %d headlines, %v", len(got), err)
			}
		})
	}
	wg.Wait()

	if lister.callCount() != 1 {
		t.Fatalf("expected one refresh, got %d", lister.callCount())
	}
}

func TestListingCacheRejectsNonPositiveCount(t *testing.T) {
	lister := &stubLister{stored: 20}
	c := newTestListingCache(lister, &fakeClock{}, 5)

	if _, err := c.Get(context.Background(), "it", 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if lister.callCount() != 0 {
		t.Fatalf("expected no refresh")
	}
}

func TestListingCacheJoinedCallerGetsItsOwnCount(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	stale := base.Add(time.Hour)

	headlines := make([]domain.Headline, 15)
	for i := range headlines {
		headlines[i] = domain.Headline{URL: fmt.Sprintf("https://example.com/it/%d", i)}
	}

	lister := &stubLister{stored: 20}
	c := NewListingCache(lister, 5*time.Minute, time.Second, 15, slog.Default())
	c.slot = &listingSlot{language: "it", headlines: headlines, expiresAt: base.Add(5 * time.Minute)}

	inFlight := make(chan struct{})
	release := make(chan struct{})

	var (
		mu    sync.Mutex
		reads int
	)
	// The first caller misses, then pauses on its in-flight re-check until the
	// second caller has missed too and joined the same flight.
	c.now = func() time.Time {
		mu.Lock()
		reads++
		n := reads
		mu.Unlock()

		switch n {
		case 1, 3:
			return stale
		case 2:
			close(inFlight)
			<-release
		}

		return base
	}

	results := make([][]domain.Headline, 2)
	var wg sync.WaitGroup

	wg.Go(func() {
		results[0], _ = c.Get(context.Background(), "it", 3)
	})
	<-inFlight

	wg.Go(func() {
		results[1], _ = c.Get(context.Background(), "it", 10)
	})
	time.Sleep(30 * time.Millisecond)
	close(release)
	wg.Wait()

	if len(results[0]) != 3 {
		t.Fatalf("expected 3 headlines for the first caller, got %d", len(results[0]))
	}
	if len(results[1]) != 10 {
		t.Fatalf("expected 10 headlines for the joined caller, got %d", len(results[1]))
	}
	if lister.callCount() != 0 {
		t.Fatalf("expected the fresh slot to be reused, got %d refreshes", lister.callCount())
	}
}
