package services

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/providers"
	"github.com/sjwitcher/obd2-explorer/backend/internal/infrastructure/observability"
)

const guidanceKeyPrefix = "guidance:"
const guidanceStepCount = 5

// GuidanceService selects troubleshooting steps for a code description. It
// never fails: backend errors and unparseable output degrade to a random
// selection from the checklist pool, and both paths are cached so the same
// description does not hit the backend again within the cache window.
type GuidanceService struct {
	cache     providers.CacheProvider
	completer providers.CompletionProvider
	cacheTTL  time.Duration
	metrics   *observability.Metrics
}

// NewGuidanceService creates a new guidance service. The persistent cache
// and the completion backend may each be nil; the service then falls back to
// generation on every call, or to random selection, respectively.
func NewGuidanceService(
	cache providers.CacheProvider,
	completer providers.CompletionProvider,
	cacheTTL time.Duration,
	metrics *observability.Metrics,
) *GuidanceService {
	return &GuidanceService{
		cache:     cache,
		completer: completer,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
	}
}

// Generate returns formatted guidance for the description: five distinct
// checklist steps as a bullet list with the disclaimer appended exactly once.
func (s *GuidanceService) Generate(ctx context.Context, description string) string {
	key := guidanceKeyPrefix + description

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			observability.RecordCacheHit(ctx, s.metrics, "guidance")
			return string(cached)
		}
		observability.RecordCacheMiss(ctx, s.metrics, "guidance")
	}

	steps := s.selectSteps(ctx, description)
	text := formatGuidance(steps)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, []byte(text), s.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache guidance text")
		}
	}

	return text
}

// selectSteps asks the backend to pick steps from the pool and matches its
// free-form answer back against the pool. Any backend failure or a fully
// unparseable answer yields a uniform random selection instead.
func (s *GuidanceService) selectSteps(ctx context.Context, description string) []string {
	if s.completer == nil {
		return randomSteps(guidanceStepCount, nil)
	}

	prompt := buildSelectionPrompt(description, ChecklistPool)
	output, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("completion backend failed, using random fallback")
		return randomSteps(guidanceStepCount, nil)
	}

	selected := matchPoolSteps(output)
	if len(selected) == 0 {
		log.Warn().Msg("no valid matches in backend output, using random fallback")
		return randomSteps(guidanceStepCount, nil)
	}
	if len(selected) < guidanceStepCount {
		selected = append(selected, randomSteps(guidanceStepCount-len(selected), selected)...)
	}
	return selected
}

// matchPoolSteps parses backend output line by line, matching each cleaned
// line as a case-insensitive substring of pool entries. Matches are
// deduplicated in first-seen order and capped at the step count.
func matchPoolSteps(output string) []string {
	var selected []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(output, "\n") {
		clean := strings.TrimSpace(strings.Trim(line, "•-* \t"))
		if clean == "" {
			continue
		}
		lower := strings.ToLower(clean)
		for _, step := range ChecklistPool {
			if !strings.Contains(strings.ToLower(step), lower) {
				continue
			}
			if _, ok := seen[step]; ok {
				continue
			}
			seen[step] = struct{}{}
			selected = append(selected, step)
			if len(selected) == guidanceStepCount {
				return selected
			}
		}
	}
	return selected
}

// randomSteps picks n distinct pool entries uniformly at random, excluding
// any already selected.
func randomSteps(n int, exclude []string) []string {
	excluded := make(map[string]struct{}, len(exclude))
	for _, step := range exclude {
		excluded[step] = struct{}{}
	}

	steps := make([]string, 0, n)
	for _, idx := range rand.Perm(len(ChecklistPool)) {
		step := ChecklistPool[idx]
		if _, ok := excluded[step]; ok {
			continue
		}
		steps = append(steps, step)
		if len(steps) == n {
			break
		}
	}
	return steps
}

func formatGuidance(steps []string) string {
	var b strings.Builder
	for i, step := range steps {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• ")
		b.WriteString(step)
	}
	b.WriteString(Disclaimer)
	return b.String()
}
