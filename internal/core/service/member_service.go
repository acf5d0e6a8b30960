package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/member-system/internal/core/domain"
	"github.com/99minutos/member-system/internal/core/ports"
)

// MemberService implements registration, listing, deletion and login.
type MemberService struct {
	repo     ports.MemberRepository
	tokens   ports.TokenService
	revoker  ports.TokenRevoker
	events   ports.EventPublisher
	hashCost int
	now      func() time.Time
	log      zerolog.Logger
}

// MemberOption customises a MemberService.
type MemberOption func(*MemberService)

// WithRevoker records a revocation marker for every deleted member.
func WithRevoker(r ports.TokenRevoker) MemberOption {
	return func(s *MemberService) { s.revoker = r }
}

// WithEventPublisher sends audit events for every state change and login.
func WithEventPublisher(p ports.EventPublisher) MemberOption {
	return func(s *MemberService) { s.events = p }
}

// WithHashCost overrides the bcrypt cost (tests use bcrypt.MinCost).
func WithHashCost(cost int) MemberOption {
	return func(s *MemberService) { s.hashCost = cost }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemberOption {
	return func(s *MemberService) { s.now = now }
}

func NewMemberService(repo ports.MemberRepository, tokens ports.TokenService, log zerolog.Logger, opts ...MemberOption) *MemberService {
	s := &MemberService{
		repo:     repo,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemberService) List(ctx context.Context) ([]domain.MemberSummary, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// Create registers a new member. Checks run in a fixed order: required
// fields, username availability, then authority values.
func (s *MemberService) Create(ctx context.Context, in ports.CreateMemberInput) (*domain.Member, error) {
	if err := requireCreateFields(in); err != nil {
		return nil, err
	}

	_, err := s.repo.FindByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, domain.ErrMemberExists
	case !errors.Is(err, domain.ErrMemberNotFound):
		return nil, fmt.Errorf("check username: %w", err)
	}

	authorities, err := domain.ParseAuthorities(in.Authorities)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password must be at most 72 bytes", domain.ErrInvalidInput)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.Member{
		Username:     in.Username,
		PasswordHash: string(hash),
		Nickname:     in.Nickname,
		Authorities:  authorities,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrMemberExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create member: %w", err)
	}

	s.publish(ctx, domain.EventMemberCreated, created.ID, created.Username)
	s.log.Info().Str("member_id", created.ID).Str("username", created.Username).Msg("member created")
	return created, nil
}

// Delete removes the member with id. Tokens already issued to it are revoked
// when a revoker is configured.
func (s *MemberService) Delete(ctx context.Context, id string) error {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return err
		}
		return fmt.Errorf("find member: %w", err)
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}

	if s.revoker != nil {
		if err := s.revoker.RevokeMember(ctx, id, s.now()); err != nil {
			s.log.Warn().Err(err).Str("member_id", id).Msg("failed to revoke tokens of deleted member")
		}
	}

	s.publish(ctx, domain.EventMemberDeleted, id, member.Username)
	s.log.Info().Str("member_id", id).Str("username", member.Username).Msg("member deleted")
	return nil
}

// Login verifies the credentials and issues a token for the member.
func (s *MemberService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	member, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			s.publish(ctx, domain.EventLoginFailed, "", username)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find member: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)) != nil {
		s.publish(ctx, domain.EventLoginFailed, member.ID, username)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(member.Identity())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.publish(ctx, domain.EventLoginSucceeded, member.ID, username)
	return &ports.LoginResult{Token: token, Member: member}, nil
}

func (s *MemberService) publish(ctx context.Context, typ domain.MemberEventType, memberID, username string) {
	if s.events == nil {
		return
	}
	actor, _ := domain.IdentityFromContext(ctx)
	s.events.Publish(domain.MemberEvent{
		Type:       typ,
		MemberID:   memberID,
		Username:   username,
		ActorID:    actor.ID,
		OccurredAt: s.now().UTC(),
	})
}

func requireCreateFields(in ports.CreateMemberInput) error {
	var missing []string
	if in.Username == "" {
		missing = append(missing, "username")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if in.Nickname == "" {
		missing = append(missing, "nickname")
	}
	if len(in.Authorities) == 0 {
		missing = append(missing, "authorities")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s must be provided and non-empty", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}
