package repositories

import (
	"context"
	"time"

	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/entities"
)

// GuidanceUpdate carries the fields written together when guidance is
// regenerated. Summary is persisted only when it was derived during the same
// lookup; an empty Summary leaves the stored value untouched.
type GuidanceUpdate struct {
	DiyChecks     string
	Summary       string
	AILastUpdated time.Time
}

// CodeRecordRepository defines the interface for diagnostic code storage.
type CodeRecordRepository interface {
	GetByCode(ctx context.Context, code string) (*entities.CodeRecord, error)
	UpdateGuidance(ctx context.Context, code string, update GuidanceUpdate) error
	Upsert(ctx context.Context, record *entities.CodeRecord) error
}
