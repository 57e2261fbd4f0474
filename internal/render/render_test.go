package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aareguru-monitor/internal/domain"
	"github.com/couchcryptid/aareguru-monitor/internal/observability"
)

type recordingRenderer struct {
	got       []domain.DisplayState
	locations []string
	err       error
}

func (r *recordingRenderer) Render(_ context.Context, locationID string, state domain.DisplayState) error {
	r.got = append(r.got, state)
	r.locations = append(r.locations, locationID)
	return r.err
}

var testState = domain.DisplayState{
	domain.FieldPanel:     "18.4°C",
	domain.FieldPanelBand: "cool",
	domain.FieldStatus:    domain.StatusOK,
	domain.FieldLocation:  "Bern",
}

func TestFanout_RendersAllTargets(t *testing.T) {
	a, b := &recordingRenderer{}, &recordingRenderer{}
	f := NewFanout(observability.NewMetricsForTesting(), Target{"a", a}, Target{"b", b})

	require.NoError(t, f.Render(context.Background(), "bern", testState))
	assert.Equal(t, []domain.DisplayState{testState}, a.got)
	assert.Equal(t, []domain.DisplayState{testState}, b.got)
	assert.Equal(t, []string{"bern"}, b.locations)
}

func TestFanout_FailureDoesNotStopOthers(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	broken := &recordingRenderer{err: errors.New("broker down")}
	ok := &recordingRenderer{}
	f := NewFanout(metrics, Target{"kafka", broken}, Target{"log", ok})

	err := f.Render(context.Background(), "bern", testState)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render kafka: broker down")
	assert.Len(t, ok.got, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RenderFailures.WithLabelValues("kafka")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.RenderFailures.WithLabelValues("log")))
}

func TestFanout_NoTargets(t *testing.T) {
	f := NewFanout(observability.NewMetricsForTesting())
	assert.NoError(t, f.Render(context.Background(), "bern", testState))
}

func TestLogRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogRenderer(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, r.Render(context.Background(), "bern", testState))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "display updated", entry["msg"])
	assert.Equal(t, "18.4°C", entry["panel"])
	assert.Equal(t, "bern", entry["location_id"])
	fields, ok := entry["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Bern", fields["location"])
	assert.Equal(t, "cool", fields["panel_band"])
}

func TestLogRenderer_ErrorStateLogsWarn(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogRenderer(slog.New(slog.NewJSONHandler(&buf, nil)))

	state := domain.NewProjector(nil).Project(domain.Snapshot{}, domain.NewConfigError("location is empty"), domain.AllVisible())
	require.NoError(t, r.Render(context.Background(), "bern", state))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, domain.PanelError, entry["panel"])
}
