package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/99minutos/member-system/internal/core/domain"
)

func TestMe_Anonymous(t *testing.T) {
	e := newTestEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/me", nil), rec)

	if err := Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "You are not valid" {
		t.Fatalf("error = %q", got)
	}
}

func TestMe_FormatsIdentity(t *testing.T) {
	e := newTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(domain.ContextWithIdentity(req.Context(), domain.Identity{
		ID:          "65f0a1b2c3d4e5f601234567",
		Username:    "root",
		Nickname:    "Boss",
		Authorities: []domain.Authority{domain.AuthorityUser, domain.AuthorityAdmin},
	}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	want := "Your ID: 65f0a1b2c3d4e5f601234567\nAccount: root\nNickName: Boss\nAuthority: [USER, ADMIN]"
	if rec.Body.String() != want {
		t.Fatalf("body = %q\nwant   %q", rec.Body.String(), want)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("héllo wörld", 5); got != "héllo..." {
		t.Errorf("truncate = %q", got)
	}
}
