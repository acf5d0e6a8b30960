package ports

import (
	"context"

	"github.com/99minutos/member-system/internal/core/domain"
)

// MemberRepository defines persistence operations for members.
type MemberRepository interface {
	// Create inserts m and returns it with the store-assigned ID.
	Create(ctx context.Context, m *domain.Member) (*domain.Member, error)
	FindByID(ctx context.Context, id string) (*domain.Member, error)
	FindByUsername(ctx context.Context, username string) (*domain.Member, error)
	// List returns every member projected to its public fields.
	List(ctx context.Context) ([]domain.MemberSummary, error)
	DeleteByID(ctx context.Context, id string) error
}
