package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/member-system/internal/api/metrics"
	"github.com/99minutos/member-system/internal/core/domain"
	"github.com/99minutos/member-system/internal/core/ports"
)

const (
	msgFieldsRequired   = "All fields (username, password, nickname, authorities) must be provided and non-empty"
	msgUsernameTaken    = "Username already exists"
	msgInvalidAuthority = "Invalid authority value provided."
	msgMemberCreated    = "User created successfully"
	msgMemberNotFound   = "User not found"
	msgMemberDeleted    = "User deleted successfully"
)

// MemberHandler handles HTTP requests for member registration, listing and
// deletion.
type MemberHandler struct {
	service ports.MemberService
	log     zerolog.Logger
}

func NewMemberHandler(service ports.MemberService, log zerolog.Logger) *MemberHandler {
	return &MemberHandler{service: service, log: log}
}

// List handles GET /users.
//
// @Summary      List members
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   memberResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users [get]
func (h *MemberHandler) List(c echo.Context) error {
	members, err := h.service.List(c.Request().Context())
	if err != nil {
		return internalError(c, h.log, "Error fetching users", err)
	}
	return c.JSON(http.StatusOK, toMemberResponses(members))
}

// Create handles POST /users.
//
// @Summary      Register a member
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createMemberRequest  true  "Member details"
// @Success      201   {object}  createMemberResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users [post]
func (h *MemberHandler) Create(c echo.Context) error {
	var req createMemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		ev := h.log.Debug().Err(err)
		var re *requestError
		if errors.As(err, &re) {
			ev = ev.Strs("fields", re.Fields())
		}
		ev.Msg("member registration rejected")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgFieldsRequired})
	}

	member, err := h.service.Create(c.Request().Context(), ports.CreateMemberInput{
		Username:    req.Username,
		Password:    req.Password,
		Nickname:    req.Nickname,
		Authorities: req.Authorities,
	})
	if err != nil {
		var unknown *domain.UnknownAuthorityError
		switch {
		case errors.Is(err, domain.ErrMemberExists):
			return c.JSON(http.StatusConflict, errorResponse{Error: msgUsernameTaken})
		case errors.As(err, &unknown):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidAuthority})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return internalError(c, h.log, "Error creating user", err)
	}

	metrics.MembersCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, createMemberResponse{
		ID:       member.ID,
		Username: member.Username,
		Message:  msgMemberCreated,
	})
}

// Delete handles DELETE /users/:id.
//
// @Summary      Delete a member
// @Tags         users
// @Produce      plain
// @Security     BearerAuth
// @Param        id   path      string  true  "Member ID"
// @Success      200  {string}  string
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *MemberHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: msgMemberNotFound})
		}
		return internalError(c, h.log, "Error deleting user", err)
	}

	metrics.MembersDeletedTotal.Inc()
	return c.String(http.StatusOK, msgMemberDeleted)
}
