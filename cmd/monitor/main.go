package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/aareguru-monitor/internal/adapter/aareguru"
	httpadapter "github.com/couchcryptid/aareguru-monitor/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/aareguru-monitor/internal/adapter/kafka"
	mqttadapter "github.com/couchcryptid/aareguru-monitor/internal/adapter/mqtt"
	"github.com/couchcryptid/aareguru-monitor/internal/config"
	"github.com/couchcryptid/aareguru-monitor/internal/domain"
	"github.com/couchcryptid/aareguru-monitor/internal/observability"
	"github.com/couchcryptid/aareguru-monitor/internal/pipeline"
	"github.com/couchcryptid/aareguru-monitor/internal/render"
	"github.com/couchcryptid/aareguru-monitor/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store := settings.NewMemoryStore(initialPollConfig(cfg), logger)
	if cfg.SettingsFile != "" {
		if err := settings.Reload(store, cfg.SettingsFile); err != nil {
			logger.Error("failed to load settings file", "path", cfg.SettingsFile, "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := aareguru.NewClient(aareguru.Options{
		BaseURL: cfg.APIBaseURL,
		App:     cfg.APIApp,
		Version: cfg.APIVersion,
		Timeout: cfg.APITimeout,
	}, metrics, logger)

	targets := []render.Target{{Name: "log", Renderer: render.NewLogRenderer(logger)}}

	// Optional sinks (feature-flagged via KAFKA_ENABLED / MQTT_ENABLED).
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		targets = append(targets, render.Target{Name: "kafka", Renderer: writer})
		logger.Info("kafka display sink enabled", "topic", cfg.KafkaDisplayTopic)
	}

	var publisher *mqttadapter.Publisher
	if cfg.MQTTEnabled {
		publisher = mqttadapter.NewPublisher(cfg, logger)
		targets = append(targets, render.Target{Name: "mqtt", Renderer: publisher})
		logger.Info("mqtt display sink enabled", "broker", cfg.MQTTBroker, "topic", cfg.MQTTTopic)

		// Renders fail with ErrNotConnected until the broker answers.
		go func() {
			if err := publisher.Connect(ctx); err != nil && ctx.Err() == nil {
				logger.Error("mqtt connect failed", "error", err)
			}
		}()
	}

	projector := domain.NewProjector(domain.NewDecorator(cfg.Decoration))
	p := pipeline.New(client, render.NewFanout(metrics, targets...), store, projector, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if cfg.SettingsFile != "" {
		go reloadOnHangup(ctx, store, cfg.SettingsFile, logger)
	}

	// Start poller.
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		if err := p.Run(ctx); err != nil {
			logger.Error("poller error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-pollerDone:
	case <-shutdownCtx.Done():
		logger.Warn("poller did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if publisher != nil {
		publisher.Disconnect()
	}

	logger.Info("shutdown complete")
}

func initialPollConfig(cfg *config.Config) domain.PollConfig {
	visible := domain.NewSectionSet()
	for sec, on := range map[domain.Section]bool{
		domain.SectionWater:   cfg.ShowWater,
		domain.SectionFlow:    cfg.ShowFlow,
		domain.SectionChannel: cfg.ShowChannel,
		domain.SectionWeather: cfg.ShowWeather,
	} {
		if on {
			visible[sec] = true
		}
	}
	return domain.PollConfig{
		LocationID:   cfg.City,
		PollInterval: cfg.UpdateInterval(),
		Visible:      visible,
	}
}

// reloadOnHangup re-applies the settings file on every SIGHUP. A bad file is
// logged and the previous settings stay in effect.
func reloadOnHangup(ctx context.Context, store *settings.MemoryStore, path string, logger *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := settings.Reload(store, path); err != nil {
				logger.Error("settings reload failed", "path", path, "error", err)
				continue
			}
			logger.Info("settings reloaded", "path", path)
		}
	}
}
