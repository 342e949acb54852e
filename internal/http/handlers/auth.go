package handlers

import (
	"net/http"
	"time"

	"campushub/internal/http/middleware"
	"campushub/internal/services"

	"github.com/gin-gonic/gin"
)

// SessionConfig carries what the login handlers need to issue cookies.
type SessionConfig struct {
	Secret       []byte
	TTL          time.Duration
	CookieSecure bool
}

func (cfg SessionConfig) service(c *gin.Context) services.AuthService {
	return services.AuthService{
		Secret:    cfg.Secret,
		TTL:       cfg.TTL,
		RequestID: middleware.GetRequestID(c),
	}
}

// Authenticator is the session verifier used by the auth middleware.
func (cfg SessionConfig) Authenticator() middleware.Authenticator {
	return services.AuthService{Secret: cfg.Secret, TTL: cfg.TTL}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (cfg SessionConfig) setCookie(c *gin.Context, s services.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, s.Token, maxAge, "/", "", cfg.CookieSecure, true)
}

func (cfg SessionConfig) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", cfg.CookieSecure, true)
}

func AgentLogin(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !BindJSONOrError(c, &req) {
			return
		}
		session, agent, err := cfg.service(c).LoginAgent(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		cfg.setCookie(c, session)
		c.JSON(http.StatusOK, gin.H{
			"agent":      agent,
			"token":      session.Token,
			"expires_at": session.ExpiresAt,
		})
	}
}

func BusinessLogin(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !BindJSONOrError(c, &req) {
			return
		}
		session, business, err := cfg.service(c).LoginBusiness(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		cfg.setCookie(c, session)
		c.JSON(http.StatusOK, gin.H{
			"business":   business,
			"token":      session.Token,
			"expires_at": session.ExpiresAt,
		})
	}
}

// Logout drops the server-side session and clears the cookie. It always succeeds
// for the caller, even when the token was already invalid.
func Logout(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := middleware.SessionToken(c); token != "" {
			if err := cfg.service(c).Logout(c.Request.Context(), token); err != nil {
				RespondDomainError(c, err)
				return
			}
		}
		cfg.clearCookie(c)
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

func AgentMe(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := agentID(c)
		if !ok {
			return
		}
		agent, err := cfg.service(c).Agent(c.Request.Context(), id)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"agent": agent})
	}
}
