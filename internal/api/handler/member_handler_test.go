package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/member-system/internal/core/domain"
	"github.com/99minutos/member-system/internal/core/ports"
)

const validCreateBody = `{"username":"alice","password":"pw1","nickname":"Al","authorities":["USER"]}`

func TestMemberHandler_List(t *testing.T) {
	e := newTestEcho()
	stub := &stubMemberService{
		listFn: func(context.Context) ([]domain.MemberSummary, error) {
			return []domain.MemberSummary{
				{ID: "1", Username: "alice", Nickname: "Al"},
				{ID: "2", Username: "bob", Nickname: "Bo"},
			}, nil
		},
	}
	h := NewMemberHandler(stub, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users", nil), rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 members, got %d", len(resp))
	}
	for _, m := range resp {
		if len(m) != 3 {
			t.Errorf("expected exactly id, username, nickname; got %v", m)
		}
	}
	if resp[0]["username"] != "alice" || resp[1]["nickname"] != "Bo" {
		t.Errorf("unexpected payload: %v", resp)
	}
}

func TestMemberHandler_List_EmptyIsArray(t *testing.T) {
	e := newTestEcho()
	stub := &stubMemberService{
		listFn: func(context.Context) ([]domain.MemberSummary, error) { return nil, nil },
	}
	h := NewMemberHandler(stub, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users", nil), rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("body = %q, want []", got)
	}
}

func TestMemberHandler_List_ErrorIsTruncated(t *testing.T) {
	e := newTestEcho()
	long := strings.Repeat("x", 500)
	stub := &stubMemberService{
		listFn: func(context.Context) ([]domain.MemberSummary, error) {
			return nil, errors.New(long)
		},
	}
	h := NewMemberHandler(stub, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users", nil), rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	msg := decodeError(t, rec)
	if !strings.HasPrefix(msg, "Error fetching users: ") {
		t.Fatalf("error = %q", msg)
	}
	if strings.Contains(msg, long) {
		t.Fatal("cause should be truncated")
	}
}

func TestMemberHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubMemberService{
		createFn: func(_ context.Context, in ports.CreateMemberInput) (*domain.Member, error) {
			if in.Username != "alice" || in.Password != "pw1" || in.Nickname != "Al" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if len(in.Authorities) != 1 || in.Authorities[0] != "USER" {
				t.Fatalf("unexpected authorities: %v", in.Authorities)
			}
			return &domain.Member{ID: "65f0a1b2c3d4e5f601234567", Username: in.Username}, nil
		},
	}
	h := NewMemberHandler(stub, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/users", validCreateBody), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp createMemberResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "65f0a1b2c3d4e5f601234567" || resp.Username != "alice" || resp.Message != "User created successfully" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestMemberHandler_Create_MissingFields(t *testing.T) {
	bodies := []string{
		`{"password":"pw1","nickname":"Al","authorities":["USER"]}`,
		`{"username":"alice","nickname":"Al","authorities":["USER"]}`,
		`{"username":"alice","password":"pw1","authorities":["USER"]}`,
		`{"username":"alice","password":"pw1","nickname":"Al"}`,
		`{"username":"alice","password":"pw1","nickname":"Al","authorities":[]}`,
		`{"username":"","password":"pw1","nickname":"Al","authorities":["USER"]}`,
	}

	for i, body := range bodies {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			e := newTestEcho()
			stub := &stubMemberService{
				createFn: func(context.Context, ports.CreateMemberInput) (*domain.Member, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			}
			h := NewMemberHandler(stub, zerolog.Nop())

			rec := httptest.NewRecorder()
			c := e.NewContext(jsonRequest(http.MethodPost, "/users", body), rec)

			if err := h.Create(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if got := decodeError(t, rec); got != msgFieldsRequired {
				t.Fatalf("error = %q", got)
			}
		})
	}
}

func TestMemberHandler_Create_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"username taken", domain.ErrMemberExists, http.StatusConflict, "Username already exists"},
		{"unknown authority", &domain.UnknownAuthorityError{Value: "ROOT"}, http.StatusBadRequest, "Invalid authority value provided."},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError, "Error creating user: connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubMemberService{
				createFn: func(context.Context, ports.CreateMemberInput) (*domain.Member, error) {
					return nil, tt.err
				},
			}
			h := NewMemberHandler(stub, zerolog.Nop())

			rec := httptest.NewRecorder()
			c := e.NewContext(jsonRequest(http.MethodPost, "/users", validCreateBody), rec)

			if err := h.Create(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if got := decodeError(t, rec); got != tt.wantMsg {
				t.Fatalf("error = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func deleteContext(e *echo.Echo, id string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/users/"+id, nil), rec)
	c.SetPath("/users/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestMemberHandler_Delete(t *testing.T) {
	e := newTestEcho()
	var gotID string
	stub := &stubMemberService{
		deleteFn: func(_ context.Context, id string) error {
			gotID = id
			return nil
		},
	}
	h := NewMemberHandler(stub, zerolog.Nop())

	c, rec := deleteContext(e, "65f0a1b2c3d4e5f601234567")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "User deleted successfully" {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if gotID != "65f0a1b2c3d4e5f601234567" {
		t.Fatalf("service got id %q", gotID)
	}
}

func TestMemberHandler_Delete_NotFound(t *testing.T) {
	e := newTestEcho()
	stub := &stubMemberService{
		deleteFn: func(context.Context, string) error { return domain.ErrMemberNotFound },
	}
	h := NewMemberHandler(stub, zerolog.Nop())

	c, rec := deleteContext(e, "missing")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "User not found" {
		t.Fatalf("error = %q", got)
	}
}

func TestMemberHandler_Delete_UnexpectedError(t *testing.T) {
	e := newTestEcho()
	stub := &stubMemberService{
		deleteFn: func(context.Context, string) error { return errors.New("write concern timeout") },
	}
	h := NewMemberHandler(stub, zerolog.Nop())

	c, rec := deleteContext(e, "65f0a1b2c3d4e5f601234567")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "Error deleting user: write concern timeout" {
		t.Fatalf("error = %q", got)
	}
}

func TestMemberHandler_Create_BlankAuthorityIsInvalidAuthority(t *testing.T) {
	e := newTestEcho()
	called := false
	stub := &stubMemberService{
		createFn: func(_ context.Context, in ports.CreateMemberInput) (*domain.Member, error) {
			called = true
			if _, err := domain.ParseAuthorities(in.Authorities); err != nil {
				return nil, err
			}
			return &domain.Member{ID: "x", Username: in.Username}, nil
		},
	}
	h := NewMemberHandler(stub, zerolog.Nop())

	rec := httptest.NewRecorder()
	body := `{"username":"alice","password":"pw1","nickname":"Al","authorities":[""]}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/users", body), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("blank authority should reach the service")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got != msgInvalidAuthority {
		t.Fatalf("error = %q, want %q", got, msgInvalidAuthority)
	}
}
