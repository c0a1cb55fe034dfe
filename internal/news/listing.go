package news

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"newsbrief/internal/cache"
	"newsbrief/internal/domain"
)

type listingSlot struct {
	language  string
	headlines []domain.Headline
	expiresAt time.Time
}

// ListingCache keeps the most recent listing in a single slot. The slot is
// replaced as a whole and refreshed when it is empty, expired, shorter than
// the requested count, or was listed for another language.
type ListingCache struct {
	lister    Lister
	ttl       time.Duration
	timeout   time.Duration
	fetchSize int
	flight    cache.Flight[string, []domain.Headline]
	log       *slog.Logger

	mu   sync.RWMutex
	slot *listingSlot
	now  func() time.Time
}

// NewListingCache refreshes through lister, asking for at least fetchSize
// headlines so that smaller requests are served from the same slot. Each
// refresh is bounded by timeout; zero means unbounded.
func NewListingCache(
	lister Lister,
	ttl time.Duration,
	timeout time.Duration,
	fetchSize int,
	log *slog.Logger,
) *ListingCache {
	return &ListingCache{
		lister:    lister,
		ttl:       ttl,
		timeout:   timeout,
		fetchSize: fetchSize,
		log:       log,
		now:       time.Now,
	}
}

// Get returns up to count headlines for language. The returned slice is a
// copy and may be shorter than count when the lister has fewer items.
func (c *ListingCache) Get(
	ctx context.Context,
	language string,
	count int,
) ([]domain.Headline, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count must be positive (got %d)", domain.ErrValidation, count)
	}

	language = strings.ToLower(strings.TrimSpace(language))

	if headlines, ok := c.lookup(language, count); ok {
		return headlines, nil
	}

	size := max(count, c.fetchSize)
	workCtx := context.WithoutCancel(ctx)

	// Callers joining this flight may ask for more than count, so the flight
	// hands back the whole slot and each caller clips its own share.
	headlines, _, err := c.flight.Do(ctx, language, func() ([]domain.Headline, error) {
		if cached, ok := c.lookupSlot(language, count); ok {
			return cached, nil
		}

		return c.refresh(workCtx, language, size)
	})
	if err != nil {
		return nil, fmt.Errorf("refresh listing: %w", err)
	}

	return clip(headlines, count), nil
}

// Refresh replaces the slot unconditionally.
func (c *ListingCache) Refresh(ctx context.Context, language string) ([]domain.Headline, error) {
	language = strings.ToLower(strings.TrimSpace(language))

	headlines, _, err := c.flight.Do(ctx, language, func() ([]domain.Headline, error) {
		return c.refresh(context.WithoutCancel(ctx), language, c.fetchSize)
	})
	if err != nil {
		return nil, fmt.Errorf("refresh listing: %w", err)
	}

	return slices.Clone(headlines), nil
}

// Len is the number of headlines in the slot, expired or not.
func (c *ListingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.slot == nil {
		return 0
	}

	return len(c.slot.headlines)
}

func (c *ListingCache) lookup(language string, count int) ([]domain.Headline, bool) {
	headlines, ok := c.lookupSlot(language, count)
	if !ok {
		return nil, false
	}

	return headlines[:count], true
}

// lookupSlot returns a copy of the whole slot when it is fresh, in language
// and holds at least minCount headlines.
func (c *ListingCache) lookupSlot(language string, minCount int) ([]domain.Headline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	slot := c.slot
	switch {
	case slot == nil:
		return nil, false
	case slot.language != language:
		return nil, false
	case !c.now().Before(slot.expiresAt):
		return nil, false
	case len(slot.headlines) < minCount:
		return nil, false
	}

	return slices.Clone(slot.headlines), true
}

func (c *ListingCache) refresh(
	ctx context.Context,
	language string,
	size int,
) ([]domain.Headline, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	headlines, err := c.lister.List(ctx, language, size)
	if err != nil {
		c.log.WarnContext(ctx, "Failed to refresh listing",
			"error", err,
			"language", language,
			"size", size)

		return nil, err
	}

	c.mu.Lock()
	c.slot = &listingSlot{
		language:  language,
		headlines: headlines,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()

	c.log.InfoContext(ctx, "Refreshed listing",
		"language", language,
		"size", size,
		"headlines", len(headlines))

	return headlines, nil
}

func clip(headlines []domain.Headline, count int) []domain.Headline {
	return slices.Clone(headlines[:min(count, len(headlines))])
}
