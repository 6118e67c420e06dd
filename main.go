package main

import (
	"context"
	"errors"
	"flag"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noxouille/fps-monitor-overlay/config"
	"github.com/noxouille/fps-monitor-overlay/handlers"
	"github.com/noxouille/fps-monitor-overlay/logger"
	"github.com/noxouille/fps-monitor-overlay/metrics"
	"github.com/noxouille/fps-monitor-overlay/monitor"
	"github.com/noxouille/fps-monitor-overlay/notify"
	"github.com/noxouille/fps-monitor-overlay/source"
	"github.com/noxouille/fps-monitor-overlay/stream"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		stdlog.Fatalf("error loading config: %v", err)
	}

	log := logger.New(cfg.Log.Level)

	log.Info().
		Str("config", *configPath).
		Int("history_size", cfg.History.Size).
		Float64("drop_threshold", cfg.Detection.ThresholdPercent).
		Str("source", cfg.Source.Mode).
		Msg("Starting fps-monitor-overlay")

	mon := monitor.New(monitor.Config{
		HistorySize:   cfg.History.Size,
		StatsInterval: cfg.Stats.UpdateInterval,
		DropThreshold: cfg.Detection.ThresholdPercent,
	})

	fan := notify.NewFanout(notify.NewLogSink(log), metrics.DropSink{})

	if cfg.Notify.WebhookURL != "" {
		webhook := notify.NewWebhookSink(cfg.Notify.WebhookURL, log)
		defer webhook.Close()
		fan.Add(webhook)
		log.Info().Str("url", cfg.Notify.WebhookURL).Msg("Posting drop events to webhook")
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		sink := notify.NewRedisSink(rdb, cfg.Redis.Channel, log)
		defer sink.Close()
		fan.Add(sink)
		log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Redis.Channel).Msg("Publishing drop events to Redis")
	}

	mon.Detector().SetCallback(fan.Notify)

	cfg.Watch(func(fresh *config.Config) {
		mon.Detector().SetThreshold(fresh.Detection.ThresholdPercent)
		log.Info().Float64("drop_threshold", mon.Detector().Threshold()).Msg("Config reloaded")
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := stream.NewHub(log)
	api := handlers.New(mon, log)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/ws", hub)
	mux.HandleFunc("/api/snapshot", api.Snapshot)
	mux.HandleFunc("/api/drops", api.Drops)
	mux.HandleFunc("/api/reset", api.Reset)
	mux.HandleFunc("/healthz", api.Healthz)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		publish(ctx, cfg, mon, hub)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	// The source may block forever on a quiet stdin, so it is not part of
	// the shutdown wait.
	go func() {
		src := buildSource(cfg, log)
		if err := src.Run(ctx, mon.Update); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Frame source stopped")
			return
		}
		log.Info().Msg("Frame source finished")
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}

	wg.Wait()

	snap := mon.Snapshot()
	log.Info().
		Float64("average_fps", snap.Average).
		Float64("p1_low", snap.Stats.Percentile1).
		Int("drops", snap.DropCount).
		Msg("Final session stats")
}

func buildSource(cfg *config.Config, log zerolog.Logger) source.Source {
	switch cfg.Source.Mode {
	case "stdin":
		return source.NewReader(os.Stdin, log)
	case "loop", "":
		return source.NewLoop(cfg.Source.TargetRate, log)
	default:
		log.Warn().Str("mode", cfg.Source.Mode).Msg("Unknown source mode, falling back to loop")
		return source.NewLoop(cfg.Source.TargetRate, log)
	}
}

// publish pushes snapshots to the stream hub and the Prometheus gauges on
// their own cadences.
func publish(ctx context.Context, cfg *config.Config, mon *monitor.Monitor, hub *stream.Hub) {
	streamInterval := cfg.Server.StreamInterval
	if streamInterval <= 0 {
		streamInterval = 500 * time.Millisecond
	}
	metricsInterval := cfg.Server.MetricsInterval
	if metricsInterval <= 0 {
		metricsInterval = time.Second
	}

	streamTick := time.NewTicker(streamInterval)
	metricsTick := time.NewTicker(metricsInterval)
	defer streamTick.Stop()
	defer metricsTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-streamTick.C:
			if hub.ClientCount() > 0 {
				hub.Broadcast(mon.Snapshot())
			}
		case <-metricsTick.C:
			metrics.Publish(mon.Snapshot())
		}
	}
}
