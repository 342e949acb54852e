package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"campushub/internal/domain"
	"campushub/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookie holds the signed session token.
	SessionCookie = "campushub_session"
	// AdminKeyHeader carries the shared admin key.
	AdminKeyHeader = "X-Admin-Key"

	principalKey = "principal"
	agentIDKey   = "agentID"
	businessKey  = "businessID"
)

// Authenticator resolves a session token to its principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

// SessionToken reads the cookie first, then an Authorization bearer header.
func SessionToken(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       code,
		"request_id": GetRequestID(c),
	})
}

func requireSubject(auth Authenticator, want domain.SubjectType, idKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := auth.Authenticate(c.Request.Context(), SessionToken(c))
		if err != nil {
			if !domain.IsUnauthorized(err) {
				utils.LogError(GetRequestID(c), "auth", "authenticate", err)
			}
			abort(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if p.SubjectType != want {
			abort(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		c.Set(principalKey, p)
		c.Set(idKey, p.SubjectID)
		c.Next()
	}
}

// RequireAgent admits requests carrying a live agent session and stores the agent id.
func RequireAgent(auth Authenticator) gin.HandlerFunc {
	return requireSubject(auth, domain.SubjectAgent, agentIDKey)
}

// RequireBusiness admits requests carrying a live business session.
func RequireBusiness(auth Authenticator) gin.HandlerFunc {
	return requireSubject(auth, domain.SubjectBusiness, businessKey)
}

// RequireAdmin compares the admin header with the configured key in constant time.
// Without a configured key every admin request is refused.
func RequireAdmin(adminKey string) gin.HandlerFunc {
	key := []byte(strings.TrimSpace(adminKey))
	return func(c *gin.Context) {
		if len(key) == 0 {
			abort(c, http.StatusForbidden, "forbidden", "admin access is not configured")
			return
		}
		got := []byte(c.GetHeader(AdminKeyHeader))
		if len(got) == 0 {
			abort(c, http.StatusUnauthorized, "unauthorized", "admin key required")
			return
		}
		if subtle.ConstantTimeCompare(got, key) != 1 {
			abort(c, http.StatusForbidden, "forbidden", "invalid admin key")
			return
		}
		c.Next()
	}
}

// AgentID returns the authenticated agent id set by RequireAgent.
func AgentID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(agentIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// BusinessID returns the authenticated business id set by RequireBusiness.
func BusinessID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(businessKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// CurrentPrincipal returns the principal set by RequireAgent or RequireBusiness.
func CurrentPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}
