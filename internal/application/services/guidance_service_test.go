package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjwitcher/obd2-explorer/backend/internal/application/services"
	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/providers"
)

type stubCompleter struct {
	output string
	err    error
	calls  int
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

type stubCache struct {
	entries map[string][]byte
	sets    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]byte)}
}

func (s *stubCache) Get(ctx context.Context, key string) ([]byte, error) {
	if value, ok := s.entries[key]; ok {
		return value, nil
	}
	return nil, providers.ErrCacheMiss
}

func (s *stubCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.entries[key] = value
	s.sets++
	return nil
}

func (s *stubCache) Delete(ctx context.Context, key string) error {
	delete(s.entries, key)
	return nil
}

// parseGuidance asserts the guidance contract and returns the bare steps.
func parseGuidance(t *testing.T, text string) []string {
	t.Helper()

	require.True(t, strings.HasSuffix(text, services.Disclaimer), "disclaimer must be the suffix")
	require.Equal(t, 1, strings.Count(text, services.Disclaimer), "disclaimer must appear exactly once")

	pool := make(map[string]struct{}, len(services.ChecklistPool))
	for _, step := range services.ChecklistPool {
		pool[step] = struct{}{}
	}

	body := strings.TrimSuffix(text, services.Disclaimer)
	lines := strings.Split(body, "\n")
	require.Len(t, lines, 5)

	seen := make(map[string]struct{})
	steps := make([]string, 0, 5)
	for _, line := range lines {
		require.True(t, strings.HasPrefix(line, "• "), "line %q must be a bullet", line)
		step := strings.TrimPrefix(line, "• ")
		_, inPool := pool[step]
		require.True(t, inPool, "step %q must come from the checklist pool", step)
		_, dup := seen[step]
		require.False(t, dup, "step %q must not repeat", step)
		seen[step] = struct{}{}
		steps = append(steps, step)
	}
	return steps
}

func TestGuidanceService_Generate_SelectsBackendMatches(t *testing.T) {
	completer := &stubCompleter{output: strings.Join([]string{
		"• Check engine oil level and condition",
		"- Inspect ignition coils and wiring",
		"Verify wiring continuity with a multimeter",
		"Test battery voltage and charging system",
		"Inspect spark plug wires for damage",
	}, "\n")}
	service := services.NewGuidanceService(newStubCache(), completer, 7*24*time.Hour, nil)

	text := service.Generate(context.Background(), "Cylinder 1 misfire detected")

	steps := parseGuidance(t, text)
	assert.Equal(t, []string{
		"Check engine oil level and condition",
		"Inspect ignition coils and wiring",
		"Verify wiring continuity with a multimeter",
		"Test battery voltage and charging system",
		"Inspect spark plug wires for damage",
	}, steps)
	assert.Equal(t, 1, completer.calls)
}

func TestGuidanceService_Generate_PadsShortSelection(t *testing.T) {
	completer := &stubCompleter{output: "• Check engine oil level and condition"}
	service := services.NewGuidanceService(newStubCache(), completer, 7*24*time.Hour, nil)

	text := service.Generate(context.Background(), "overheating after long drives")

	steps := parseGuidance(t, text)
	assert.Equal(t, "Check engine oil level and condition", steps[0])
}

func TestGuidanceService_Generate_DeduplicatesMatches(t *testing.T) {
	completer := &stubCompleter{output: strings.Join([]string{
		"• Check engine oil level and condition",
		"• Check engine oil level and condition",
		"- Inspect ignition coils and wiring",
		"Inspect ignition coils and wiring",
		"Verify wiring continuity with a multimeter",
		"Test battery voltage and charging system",
		"Inspect spark plug wires for damage",
	}, "\n")}
	service := services.NewGuidanceService(newStubCache(), completer, 7*24*time.Hour, nil)

	text := service.Generate(context.Background(), "rough idle")

	steps := parseGuidance(t, text)
	assert.Equal(t, "Check engine oil level and condition", steps[0])
	assert.Equal(t, "Inspect ignition coils and wiring", steps[1])
}

func TestGuidanceService_Generate_FallbackOnUnparseableOutput(t *testing.T) {
	completer := &stubCompleter{output: "I am sorry, I cannot help with vehicles."}
	service := services.NewGuidanceService(newStubCache(), completer, 7*24*time.Hour, nil)

	text := service.Generate(context.Background(), "evap system leak detected")

	parseGuidance(t, text)
}

func TestGuidanceService_Generate_FallbackOnBackendError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("model load failed")}
	cache := newStubCache()
	service := services.NewGuidanceService(cache, completer, 7*24*time.Hour, nil)

	text := service.Generate(context.Background(), "catalyst efficiency below threshold")

	parseGuidance(t, text)
	// Fallback output is cached too, so the failing backend is not retried
	// for the same description within the cache window.
	assert.Equal(t, 1, cache.sets)
}

func TestGuidanceService_Generate_SecondCallServedFromCache(t *testing.T) {
	completer := &stubCompleter{output: "• Check engine oil level and condition"}
	service := services.NewGuidanceService(newStubCache(), completer, 7*24*time.Hour, nil)

	first := service.Generate(context.Background(), "misfire under load")
	second := service.Generate(context.Background(), "misfire under load")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, completer.calls)
}

func TestGuidanceService_Generate_NoBackendConfigured(t *testing.T) {
	service := services.NewGuidanceService(newStubCache(), nil, 7*24*time.Hour, nil)

	text := service.Generate(context.Background(), "sensor circuit malfunction")

	parseGuidance(t, text)
}

func TestGuidanceService_Generate_NoCacheConfigured(t *testing.T) {
	completer := &stubCompleter{output: "• Check engine oil level and condition"}
	service := services.NewGuidanceService(nil, completer, 7*24*time.Hour, nil)

	first := service.Generate(context.Background(), "lean condition bank 1")
	second := service.Generate(context.Background(), "lean condition bank 1")

	parseGuidance(t, first)
	parseGuidance(t, second)
	assert.Equal(t, 2, completer.calls)
}
