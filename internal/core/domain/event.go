package domain

import "time"

// MemberEventType names an entry in the member audit trail.
type MemberEventType string

const (
	EventMemberCreated  MemberEventType = "member_created"
	EventMemberDeleted  MemberEventType = "member_deleted"
	EventLoginSucceeded MemberEventType = "login_succeeded"
	EventLoginFailed    MemberEventType = "login_failed"
)

// MemberEvent records something that happened to a member account.
type MemberEvent struct {
	Type       MemberEventType
	MemberID   string // empty for failed logins against unknown usernames
	Username   string
	ActorID    string // caller identity, empty for anonymous operations
	OccurredAt time.Time
}
