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

type AuthHandler struct {
	service ports.MemberService
	log     zerolog.Logger
}

func NewAuthHandler(service ports.MemberService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{service: service, log: log}
}

// Login authenticates a member and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	res, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Invalid credentials"})
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return internalError(c, h.log, "Error during login", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		Token:       res.Token,
		ID:          res.Member.ID,
		Username:    res.Member.Username,
		Nickname:    res.Member.Nickname,
		Authorities: domain.AuthorityStrings(res.Member.Authorities),
	})
}
