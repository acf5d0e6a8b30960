package domain

import (
	"fmt"
)

// Authority is a coarse permission tag attached to a member.
type Authority string

const (
	AuthorityUser  Authority = "USER"
	AuthorityAdmin Authority = "ADMIN"
)

var knownAuthorities = map[Authority]struct{}{
	AuthorityUser:  {},
	AuthorityAdmin: {},
}

// UnknownAuthorityError is returned when a string does not name a known authority.
// It matches ErrInvalidInput under errors.Is.
type UnknownAuthorityError struct {
	Value string
}

func (e *UnknownAuthorityError) Error() string {
	return fmt.Sprintf("unknown authority %q", e.Value)
}

func (e *UnknownAuthorityError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ParseAuthority converts s into an Authority. Matching is exact (case-sensitive).
func ParseAuthority(s string) (Authority, error) {
	a := Authority(s)
	if _, ok := knownAuthorities[a]; !ok {
		return "", &UnknownAuthorityError{Value: s}
	}
	return a, nil
}

// ParseAuthorities converts every value, failing on the first unknown one.
func ParseAuthorities(values []string) ([]Authority, error) {
	out := make([]Authority, 0, len(values))
	for _, v := range values {
		a, err := ParseAuthority(v)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// AuthorityStrings is the inverse of ParseAuthorities.
func AuthorityStrings(authorities []Authority) []string {
	out := make([]string, len(authorities))
	for i, a := range authorities {
		out[i] = string(a)
	}
	return out
}
