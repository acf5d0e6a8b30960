package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/member-system/internal/core/domain"
)

// Me handles GET /me. The answer is built from the token claims only; the
// store is never consulted.
//
// @Summary      Describe the caller
// @Tags         auth
// @Produce      plain
// @Security     BearerAuth
// @Success      200  {string}  string
// @Failure      401  {object}  errorResponse
// @Router       /me [get]
func Me(c echo.Context) error {
	id, ok := currentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "You are not valid"})
	}

	return c.String(http.StatusOK, fmt.Sprintf(
		"Your ID: %s\nAccount: %s\nNickName: %s\nAuthority: [%s]",
		id.ID, id.Username, id.Nickname,
		strings.Join(domain.AuthorityStrings(id.Authorities), ", "),
	))
}
