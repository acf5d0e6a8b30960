package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records the moment a member's outstanding tokens stopped
// being valid.
// Key format: revoked:member:<member_id> = <unix_seconds>
type RevocationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRevocationStore creates a RevocationStore. ttl should match the token
// lifetime: once it elapses every token issued before the marker has expired
// on its own.
func NewRevocationStore(client *redis.Client, ttl time.Duration) *RevocationStore {
	return &RevocationStore{client: client, ttl: ttl}
}

// RevokeMember marks every token issued to memberID up to at as revoked.
func (s *RevocationStore) RevokeMember(ctx context.Context, memberID string, at time.Time) error {
	if err := s.client.Set(ctx, revocationKey(memberID), at.Unix(), s.ttl).Err(); err != nil {
		return fmt.Errorf("revoke member: %w", err)
	}
	return nil
}

// RevokedAt returns the revocation time for memberID, if one is recorded.
func (s *RevocationStore) RevokedAt(ctx context.Context, memberID string) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, revocationKey(memberID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("revocation lookup: %w", err)
	}
	return parseRevocation(raw)
}

func parseRevocation(raw string) (time.Time, bool, error) {
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("revocation lookup: bad marker %q: %w", raw, err)
	}
	return time.Unix(sec, 0).UTC(), true, nil
}

func revocationKey(memberID string) string {
	return "revoked:member:" + memberID
}
