package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/member-system/internal/core/domain"
)

// maxCauseLen bounds how much of an unexpected error reaches the client.
const maxCauseLen = 120

// currentIdentity returns the identity established by the authentication
// gate, if any.
func currentIdentity(c echo.Context) (domain.Identity, bool) {
	return domain.IdentityFromContext(c.Request().Context())
}

// internalError logs err in full and answers 500 with "<action>: <cause>",
// the cause cut to maxCauseLen runes.
func internalError(c echo.Context, log zerolog.Logger, action string, err error) error {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg(action)

	return c.JSON(http.StatusInternalServerError, errorResponse{Error: action + ": " + truncate(err.Error(), maxCauseLen)})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
