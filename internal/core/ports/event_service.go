package ports

import (
	"context"

	"github.com/99minutos/member-system/internal/core/domain"
)

// EventService processes audit events pulled off the dispatcher.
type EventService interface {
	Process(ctx context.Context, event domain.MemberEvent) error
}

// EventPublisher accepts audit events without blocking the caller.
type EventPublisher interface {
	Publish(event domain.MemberEvent)
}
