// Package render fans display states out to the configured surfaces.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/aareguru-monitor/internal/domain"
	"github.com/couchcryptid/aareguru-monitor/internal/observability"
)

// Renderer is one output surface.
type Renderer interface {
	Render(ctx context.Context, locationID string, state domain.DisplayState) error
}

// Target names a Renderer for logs and metrics.
type Target struct {
	Name     string
	Renderer Renderer
}

// Fanout renders every state to each target in order. A failing target does
// not stop the others.
type Fanout struct {
	targets []Target
	metrics *observability.Metrics
}

// NewFanout creates a Fanout over targets.
func NewFanout(metrics *observability.Metrics, targets ...Target) *Fanout {
	return &Fanout{targets: targets, metrics: metrics}
}

// Render implements pipeline.Renderer. The returned error joins every target
// failure.
func (f *Fanout) Render(ctx context.Context, locationID string, state domain.DisplayState) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.Renderer.Render(ctx, locationID, state); err != nil {
			f.metrics.RenderFailures.WithLabelValues(t.Name).Inc()
			errs = append(errs, fmt.Errorf("render %s: %w", t.Name, err))
		}
	}
	return errors.Join(errs...)
}

// LogRenderer writes each state as one structured log line.
type LogRenderer struct {
	logger *slog.Logger
}

// NewLogRenderer creates a LogRenderer.
func NewLogRenderer(logger *slog.Logger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

// Render implements Renderer.
func (r *LogRenderer) Render(ctx context.Context, locationID string, state domain.DisplayState) error {
	fields := make([]any, 0, len(state))
	for _, k := range state.Keys() {
		fields = append(fields, slog.String(string(k), state[k]))
	}
	level := slog.LevelInfo
	if state.IsError() {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "display updated",
		"location_id", locationID,
		"panel", state[domain.FieldPanel],
		"status", state[domain.FieldStatus],
		slog.Group("fields", fields...),
	)
	return nil
}
