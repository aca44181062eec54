package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sjwitcher/obd2-explorer/backend/internal/adapters/cache"
	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/entities"
	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/repositories"
	"github.com/sjwitcher/obd2-explorer/backend/internal/infrastructure/observability"
	apperrors "github.com/sjwitcher/obd2-explorer/backend/pkg/errors"
)

// placeholderValues are stored diy_checks values that mean "no real guidance
// yet"; matched case-insensitively after trimming.
var placeholderValues = map[string]struct{}{
	"":         {},
	"n/a":      {},
	"none":     {},
	"diy tips": {},
}

// GuidanceGenerator defines the orchestrator's dependency on guidance
// generation. It always returns usable formatted text.
type GuidanceGenerator interface {
	Generate(ctx context.Context, description string) string
}

// LookupService orchestrates a code lookup: memory cache, record store,
// freshness policy, regeneration and response assembly.
type LookupService struct {
	repo          repositories.CodeRecordRepository
	guidance      GuidanceGenerator
	memory        *cache.MemoryCache
	refreshWindow time.Duration
	metrics       *observability.Metrics
}

// NewLookupService creates a new lookup service.
func NewLookupService(
	repo repositories.CodeRecordRepository,
	guidance GuidanceGenerator,
	memory *cache.MemoryCache,
	refreshWindow time.Duration,
	metrics *observability.Metrics,
) *LookupService {
	return &LookupService{
		repo:          repo,
		guidance:      guidance,
		memory:        memory,
		refreshWindow: refreshWindow,
		metrics:       metrics,
	}
}

// Lookup resolves a diagnostic code into a guidance payload. Unknown codes
// return a synthesized not-found result rather than an error; only input
// validation and genuinely unexpected failures are returned as errors.
func (s *LookupService) Lookup(ctx context.Context, rawCode string) (*entities.LookupResult, error) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	if code == "" {
		return nil, apperrors.NewValidationError("No code provided.")
	}

	if result, ok := s.memory.Get(code); ok {
		observability.RecordCacheHit(ctx, s.metrics, "lookup")
		return result, nil
	}
	observability.RecordCacheMiss(ctx, s.metrics, "lookup")

	record, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeNotFound {
			// Cache the miss too, so repeated lookups of junk codes do
			// not hammer the store.
			result := entities.NewNotFoundResult(code)
			s.memory.Set(code, result)
			return result, nil
		}
		return nil, err
	}

	summary := strings.TrimSpace(record.Summary)
	summaryDerived := false
	if summary == "" {
		summary = entities.Summarize(record.Description)
		summaryDerived = true
	}

	var recommendation string
	if s.needsRegeneration(record) {
		log.Info().Str("code", code).Msg("regenerating DIY guidance")

		recommendation = s.guidance.Generate(ctx, record.Description)
		now := time.Now().UTC()
		update := repositories.GuidanceUpdate{
			DiyChecks:     recommendation,
			AILastUpdated: now,
		}
		if summaryDerived {
			update.Summary = summary
		}
		if err := s.repo.UpdateGuidance(ctx, code, update); err != nil {
			return nil, err
		}
		record.AILastUpdated = &now
	} else {
		recommendation = record.DiyChecks
		if !strings.Contains(recommendation, Disclaimer) {
			recommendation += Disclaimer
		}
	}

	source := strings.TrimSpace(record.Source)
	if source == "" {
		source = entities.DefaultSource
	}

	var aiLastUpdated string
	if record.AILastUpdated != nil {
		aiLastUpdated = record.AILastUpdated.UTC().Format(time.RFC3339)
	}

	result := &entities.LookupResult{
		Code:           record.Code,
		Summary:        summary,
		Description:    record.Description,
		Recommendation: strings.TrimSpace(recommendation),
		Source:         source,
		AILastUpdated:  aiLastUpdated,
	}
	s.memory.Set(code, result)
	return result, nil
}

// needsRegeneration applies the freshness policy: blank or placeholder
// guidance, a missing generation timestamp, or a timestamp older than the
// refresh window all force regeneration.
func (s *LookupService) needsRegeneration(record *entities.CodeRecord) bool {
	diy := strings.ToLower(strings.TrimSpace(record.DiyChecks))
	if _, ok := placeholderValues[diy]; ok {
		return true
	}
	if record.AILastUpdated == nil {
		return true
	}
	return time.Since(*record.AILastUpdated) > s.refreshWindow
}
