package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/member-system/internal/api/metrics"
	"github.com/99minutos/member-system/internal/core/domain"
)

// Requirement is what a rule demands of the caller.
type Requirement int

const (
	Authenticated Requirement = iota
	Public
	RequireAuthority
)

// Rule binds a method and path pattern to a requirement. Patterns use echo's
// route syntax: ":name" matches exactly one non-empty segment and a trailing
// "*" matches any remainder. Authorize evaluates rules against the route
// template echo matched, so patterns must be spelled like the registered
// routes.
type Rule struct {
	Method      string
	Pattern     string
	Requirement Requirement
	Authority   domain.Authority
}

// Decision is the outcome of evaluating the policy for a request.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

// DefaultRules is the access policy of the member API. Order matters: the
// first matching rule wins and unmatched requests require authentication.
func DefaultRules() []Rule {
	return []Rule{
		{Method: http.MethodPost, Pattern: "/users", Requirement: Public},
		{Method: http.MethodPost, Pattern: "/auth/login", Requirement: Public},
		{Method: http.MethodGet, Pattern: "/me", Requirement: Authenticated},
		{Method: http.MethodGet, Pattern: "/users", Requirement: Authenticated},
		{Method: http.MethodDelete, Pattern: "/users/:id", Requirement: RequireAuthority, Authority: domain.AuthorityAdmin},
		{Method: http.MethodGet, Pattern: "/health", Requirement: Public},
		{Method: http.MethodGet, Pattern: "/health/ready", Requirement: Public},
		{Method: http.MethodGet, Pattern: "/metrics", Requirement: Public},
		{Method: http.MethodGet, Pattern: "/swagger/*", Requirement: Public},
	}
}

// Evaluate applies rules to a request. identity is nil for anonymous callers.
func Evaluate(rules []Rule, method, path string, identity *domain.Identity) Decision {
	req := Authenticated
	var authority domain.Authority
	for _, r := range rules {
		if r.Method == method && matchPattern(r.Pattern, path) {
			req, authority = r.Requirement, r.Authority
			break
		}
	}

	switch req {
	case Public:
		return Allow
	case RequireAuthority:
		if identity == nil {
			return DenyUnauthenticated
		}
		if !identity.HasAuthority(authority) {
			return DenyForbidden
		}
		return Allow
	default:
		if identity == nil {
			return DenyUnauthenticated
		}
		return Allow
	}
}

func matchPattern(pattern, path string) bool {
	pp := splitPath(pattern)
	sp := splitPath(path)

	for i, seg := range pp {
		if seg == "*" && i == len(pp)-1 {
			return true
		}
		if i >= len(sp) {
			return false
		}
		if strings.HasPrefix(seg, ":") {
			if sp[i] == "" {
				return false
			}
			continue
		}
		if seg != sp[i] {
			return false
		}
	}
	return len(pp) == len(sp)
}

func splitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// routePath is the route template echo dispatched the request to (for example
// "/users/:id"). Encoded slashes and trailing slashes in a parameter do not
// change it. Requests no route matched fall back to the raw request path.
func routePath(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return echo.GetPath(c.Request())
}

// Authorize enforces rules for every request. It must run after Authenticate.
func Authorize(rules []Rule) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			var identity *domain.Identity
			if id, ok := domain.IdentityFromContext(req.Context()); ok {
				identity = &id
			}

			switch Evaluate(rules, req.Method, routePath(c), identity) {
			case DenyUnauthenticated:
				metrics.AuthorizationDenialsTotal.WithLabelValues(strconv.Itoa(http.StatusUnauthorized)).Inc()
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			case DenyForbidden:
				metrics.AuthorizationDenialsTotal.WithLabelValues(strconv.Itoa(http.StatusForbidden)).Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
			}
			return next(c)
		}
	}
}
