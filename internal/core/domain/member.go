package domain

import "time"

// Member is a registered account. Members are created and deleted, never edited.
type Member struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	Nickname     string      `json:"nickname"`
	Authorities  []Authority `json:"authorities"`
	CreatedAt    time.Time   `json:"created_at"`
}

// MemberSummary is the public projection used by listings.
type MemberSummary struct {
	ID       string
	Username string
	Nickname string
}

// Identity returns the token-facing view of the member.
func (m *Member) Identity() Identity {
	return Identity{
		ID:          m.ID,
		Username:    m.Username,
		Nickname:    m.Nickname,
		Authorities: append([]Authority(nil), m.Authorities...),
	}
}
