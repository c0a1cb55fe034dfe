package news_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"newsbrief/internal/domain"
	"newsbrief/internal/news"
)

const topStories = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Top stories - Google News</title>
	<link>https://news.google.com/</link>
	<item>
		<title>Rome marathon breaks records - Example News</title>
		<link>https://news.example.com/rome-marathon</link>
	</item>
	<item>
		<title>Parliament approves budget - Example Daily</title>
		<link>https://daily.example.com/budget</link>
	</item>
	<item>
		<title>No link here</title>
	</item>
	<item>
		<title>Heatwave expected this weekend - Example Weather</title>
		<link>https://weather.example.com/heatwave</link>
	</item>
</channel>
</rss>`

type feedServer struct {
	mu      sync.Mutex
	queries []string
	agents  []string
}

func (f *feedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queries = append(f.queries, r.URL.RawQuery)
	f.agents = append(f.agents, r.UserAgent())
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/rss+xml")
	_, _ = io.WriteString(w, topStories)
}

func TestGoogleListerListsHeadlines(t *testing.T) {
	feed := &feedServer{}
	srv := httptest.NewServer(feed)
	defer srv.Close()

	lister := news.NewGoogleLister(srv.URL+"/rss", "it", srv.Client(), "newsbrief-test", slog.Default())

	headlines, err := lister.List(context.Background(), "IT", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.Headline{
		{URL: "https://news.example.com/rome-marathon", Title: "Rome marathon breaks records - Example News"},
		{URL: "https://daily.example.com/budget", Title: "Parliament approves budget - Example Daily"},
		{URL: "https://weather.example.com/heatwave", Title: "Heatwave expected this weekend - Example Weather"},
	}
	if len(headlines) != len(want) {
		t.Fatalf("expected %d headlines, got %+v", len(want), headlines)
	}
	for i := range want {
		if headlines[i] != want[i] {
			t.Fatalf("headline %d: expected %+v, got %+v", i, want[i], headlines[i])
		}
	}

	if feed.queries[0] != "ceid=IT%3Ait&gl=IT&hl=it" {
		t.Fatalf("unexpected query: %s", feed.queries[0])
	}
	if feed.agents[0] != "newsbrief-test" {
		t.Fatalf("unexpected user agent: %s", feed.agents[0])
	}
}

func TestGoogleListerTruncatesToCount(t *testing.T) {
	srv := httptest.NewServer(&feedServer{})
	defer srv.Close()

	lister := news.NewGoogleLister(srv.URL, "", srv.Client(), "", slog.Default())

	headlines, err := lister.List(context.Background(), "en", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(headlines) != 2 || headlines[1].URL != "https://daily.example.com/budget" {
		t.Fatalf("unexpected headlines: %+v", headlines)
	}
}

func TestGoogleListerReportsSourceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	lister := news.NewGoogleLister(srv.URL, "IT", srv.Client(), "", slog.Default())

	if _, err := lister.List(context.Background(), "it", 5); !errors.Is(err, domain.ErrSource) {
		t.Fatalf("expected source failure, got %v", err)
	}
}
