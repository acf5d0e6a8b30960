package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/member-system/internal/core/domain"
	"github.com/99minutos/member-system/internal/core/ports"
)

type eventService struct {
	eventRepo ports.EventRepository
	log       zerolog.Logger
}

// NewEventService returns an EventService that persists audit events.
func NewEventService(eventRepo ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{eventRepo: eventRepo, log: log}
}

// Process writes a single audit event to the audit trail.
func (s *eventService) Process(ctx context.Context, event domain.MemberEvent) error {
	if event.Type == "" {
		return fmt.Errorf("process event: %w: missing type", domain.ErrInvalidInput)
	}

	if err := s.eventRepo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("process event: insert: %w", err)
	}

	s.log.Debug().
		Str("type", string(event.Type)).
		Str("member_id", event.MemberID).
		Str("actor_id", event.ActorID).
		Msg("audit event recorded")

	return nil
}
