package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"metapanel/internal/feed"
	"metapanel/internal/panel"
	"metapanel/internal/platform/config"
	"metapanel/internal/platform/httpserver"
	"metapanel/internal/platform/logger"
	platformmetrics "metapanel/internal/platform/metrics"
	platformredis "metapanel/internal/platform/redis"
	"metapanel/internal/ratelimit"
	"metapanel/internal/session/handler"
	sessionmetrics "metapanel/internal/session/metrics"
	"metapanel/internal/session/service"
	"metapanel/internal/session/store"
)

// main wires the feed, the session service and the HTTP router, and keeps
// the process lifecycle small.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdin, os.Stderr); err != nil {
		if errors.Is(err, config.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "metapanel: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stderr io.Writer) error {
	cfg, err := config.Load("metapanel", args, getenv)
	if err != nil {
		return err
	}
	log, err := logger.New(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	registry, err := panelRegistry(cfg.Panels)
	if err != nil {
		return err
	}

	httpMetrics := platformmetrics.New()
	sessions := service.New(store.NewInMemory(),
		service.WithLogger(log.With("component", "sessions")),
		service.WithMetrics(sessionmetrics.New()),
		service.WithRegistry(registry),
		service.WithStreamBuffer(cfg.Server.StreamBuffer),
	)

	source, closeSource, health, err := newSource(ctx, cfg, stdin, log.With("component", "feed"))
	if err != nil {
		return err
	}
	defer closeSource()

	var checks []httpserver.HealthCheck
	if health != nil {
		checks = append(checks, health)
	}

	var handlerOpts []handler.Option
	if cfg.Server.MetadataLimit > 0 {
		limiter := ratelimit.NewWindow(cfg.Server.MetadataLimit, time.Duration(cfg.Server.MetadataWindow))
		handlerOpts = append(handlerOpts, handler.WithRateLimit(limiter))
	}
	router := httpserver.NewRouter(log, httpMetrics, checks...)
	handler.New(sessions, log.With("component", "http"), handlerOpts...).Register(router)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting metapanel", "addr", cfg.Server.Addr, "feed", cfg.Feed.Kind, "panels", registry.Tags())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if source != nil {
		g.Go(func() error {
			err := source.Run(gctx, func(ev panel.Event) {
				httpMetrics.IncrementFeedEvents(cfg.Feed.Kind)
				if _, err := sessions.Broadcast(gctx, ev); err != nil && gctx.Err() == nil {
					log.Warn("broadcast failed", "error", err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("feed %s: %w", cfg.Feed.Kind, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout))
		defer cancel()
		sessions.Close(shutdownCtx)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("metapanel stopped")
		return nil
	})
	return g.Wait()
}

func panelRegistry(tags []string) (panel.Registry, error) {
	registry := panel.DefaultRegistry()
	if len(tags) == 0 {
		return registry, nil
	}
	for _, tag := range tags {
		if _, ok := registry[tag]; !ok {
			return nil, fmt.Errorf("unknown panel %q (known: %v)", tag, registry.Tags())
		}
	}
	return registry.Only(tags...), nil
}

// newSource opens the configured feed. The returned source is nil for the
// "none" feed; close is always safe to call. health is nil for feeds with no
// broker to check.
func newSource(ctx context.Context, cfg config.Config, stdin io.Reader, log *slog.Logger) (feed.Source, func(), httpserver.HealthCheck, error) {
	noop := func() {}
	switch cfg.Feed.Kind {
	case config.FeedStdin:
		return feed.NewReaderSource(stdin, feed.WithName("stdin"), feed.WithReaderLogger(log)), noop, nil, nil
	case config.FeedFile:
		f, err := os.Open(cfg.Feed.File)
		if err != nil {
			return nil, noop, nil, fmt.Errorf("open feed file: %w", err)
		}
		src := feed.NewReaderSource(f, feed.WithName(cfg.Feed.File), feed.WithReaderLogger(log))
		return src, func() { _ = f.Close() }, nil, nil
	case config.FeedRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, nil, err
		}
		src, err := feed.NewRedisSource(client.Client, cfg.Redis.Channel, feed.WithRedisLogger(log))
		if err != nil {
			_ = client.Close()
			return nil, noop, nil, err
		}
		return src, func() { _ = client.Close() }, client.Health, nil
	case config.FeedKafka:
		src, err := feed.NewKafkaSource(feed.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			Group:   cfg.Kafka.Group,
		}, feed.WithKafkaLogger(log))
		if err != nil {
			return nil, noop, nil, err
		}
		return src, src.Close, src.Ping, nil
	default:
		return nil, noop, nil, nil
	}
}
