package ports

import (
	"context"

	"github.com/99minutos/member-system/internal/core/domain"
)

// CreateMemberInput is the DTO passed from the transport layer to MemberService.
type CreateMemberInput struct {
	Username    string
	Password    string
	Nickname    string
	Authorities []string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token  string
	Member *domain.Member
}

// MemberService defines the member use cases.
type MemberService interface {
	List(ctx context.Context) ([]domain.MemberSummary, error)
	Create(ctx context.Context, input CreateMemberInput) (*domain.Member, error)
	Delete(ctx context.Context, id string) error
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}
