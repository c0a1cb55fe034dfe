package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"newsbrief/internal/article"
	"newsbrief/internal/cache"
	"newsbrief/internal/config"
	"newsbrief/internal/domain"
	"newsbrief/internal/fetch"
	"newsbrief/internal/logging"
	"newsbrief/internal/news"
	"newsbrief/internal/scheduler"
	"newsbrief/internal/server"
	"newsbrief/internal/summarizer"
)

const readHeaderTimeout = 10 * time.Second

func main() {
	log := logging.New(os.Stdout, slog.LevelInfo)
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	log = logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	client := fetch.NewClient(fetch.Options{
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.UserAgent,
		RetryMax:  cfg.HTTPRetryMax,
	}, log)

	documents := cache.NewTier[string, domain.Document](cfg.DocumentCacheTTL, cfg.FetchTimeout)
	defer documents.Close()
	summaries := cache.NewTier[string, string](cfg.SummaryCacheTTL, cfg.SummaryTimeout)
	defer summaries.Close()

	pipeline := article.NewPipeline(
		article.NewWebSource(client, log),
		initSummarizer(ctx, cfg, log),
		documents,
		summaries,
		log,
	)
	streamer := article.NewStreamer(pipeline, cfg.StreamWorkers, log)

	lister := news.NewGoogleLister(news.DefaultFeedURL, cfg.Country, client.StandardClient(), cfg.UserAgent, log)
	listings := news.NewListingCache(lister, cfg.ListingCacheTTL, cfg.FetchTimeout, cfg.MaxArticles, log)

	if cfg.WarmupSchedule != "" {
		sched := scheduler.New(ctx, scheduler.Options{
			Spec:     cfg.WarmupSchedule,
			Language: cfg.Language,
			Count:    cfg.Articles,
			Summary:  cfg.SummaryDefaults(),
		}, listings, streamer, log)

		if err = sched.Start(); err != nil {
			log.ErrorContext(ctx, "Failed to start scheduler",
				"error", err,
				"spec", cfg.WarmupSchedule)

			return
		}
		defer sched.Stop()
		log.InfoContext(ctx, "Scheduler is started",
			"spec", cfg.WarmupSchedule,
			"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String())
	}

	srv, err := server.New(server.Options{
		Articles:    cfg.Articles,
		MinArticles: cfg.MinArticles,
		MaxArticles: cfg.MaxArticles,
		Language:    cfg.Language,
		Summary:     cfg.SummaryDefaults(),
		CORSOrigins: cfg.CORSOrigins,
	}, pipeline, streamer, listings, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize server",
			"error", err)

		return
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()
	log.InfoContext(ctx, "Server is started",
		"addr", httpServer.Addr,
		"language", cfg.Language,
		"summaries", cfg.SummaryDefaults().Enabled())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Server failed",
				"error", err,
				"addr", httpServer.Addr)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "Failed to shut down server",
			"error", err,
			"timeout", cfg.ShutdownTimeout)
	}
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds(),
		"cachedDocuments", pipeline.CachedDocuments(),
		"cachedSummaries", pipeline.CachedSummaries())
}

func initSummarizer(ctx context.Context, cfg config.Config, log *slog.Logger) summarizer.Summarizer {
	s, err := summarizer.NewOpenAISummarizer(summarizer.OpenAIConfig{Prompt: cfg.Prompt})
	if err != nil {
		log.ErrorContext(ctx, "Failed to create summarizer so raw text will be used",
			"error", err)

		return nil
	}

	defaults := cfg.SummaryDefaults()
	if !defaults.Enabled() {
		log.InfoContext(ctx, "AI or AI_KEY is missing so only requests naming a backend are summarized",
			"envVars", []string{"AI", "AI_KEY"})
	} else {
		log.InfoContext(ctx, "Summarizer is initialized",
			"provider", defaults.Provider,
			"model", defaults.Model)
	}

	return s
}
