package ports

import (
	"context"

	"github.com/99minutos/member-system/internal/core/domain"
)

// EventRepository persists the member audit trail.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.MemberEvent) error
}
