package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/member-system/internal/api/metrics"
	"github.com/99minutos/member-system/internal/core/domain"
	"github.com/99minutos/member-system/internal/core/ports"
)

const (
	msgTokenExpired = "JWT token is expired"
	msgTokenInvalid = "Invalid JWT token"
)

// Authenticate resolves the bearer token, when present, into the request's
// identity. Requests without an Authorization header continue anonymously;
// whether that is allowed is decided later by Authorize. revoker may be nil.
func Authenticate(tokens ports.TokenService, revoker ports.TokenRevoker, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return reject(c, "invalid")
			}

			parsed, err := tokens.Parse(parts[1])
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					return reject(c, "expired")
				}
				log.Debug().Err(err).Msg("bearer token rejected")
				return reject(c, "invalid")
			}

			if revoker != nil {
				ctx := c.Request().Context()
				revokedAt, ok, err := revoker.RevokedAt(ctx, parsed.Identity.ID)
				switch {
				case err != nil:
					log.Warn().Err(err).Str("member_id", parsed.Identity.ID).Msg("revocation check failed, continuing")
				case ok && !parsed.IssuedAt.After(revokedAt):
					return reject(c, "revoked")
				}
			}

			req := c.Request()
			c.SetRequest(req.WithContext(domain.ContextWithIdentity(req.Context(), parsed.Identity)))
			return next(c)
		}
	}
}

func reject(c echo.Context, reason string) error {
	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	msg := msgTokenInvalid
	if reason == "expired" {
		msg = msgTokenExpired
	}
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg})
}
