package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campushub/internal/domain"
	"campushub/internal/domain/models"
	"campushub/internal/repositories"
	"campushub/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is lowered by tests.
var bcryptCost = bcrypt.DefaultCost

const defaultSessionTTL = 24 * time.Hour

// HashPassword returns a bcrypt hash for a non-empty password.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", domain.ValidationError{Field: "password", Msg: "must not be empty"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", domain.ValidationError{Field: "password", Msg: "cannot be hashed", Err: err}
	}
	return string(hash), nil
}

type sessionClaims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies sessions for agents and businesses.
// The cookie token is a signed JWT whose ID points at a sessions row, so
// logout takes effect before the token expires.
type AuthService struct {
	Agents     repositories.AgentRepository
	Businesses repositories.BusinessRepository
	Sessions   repositories.SessionRepository
	Secret     []byte
	TTL        time.Duration
	RequestID  string
	Now        func() time.Time
}

// Session is an issued token with its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal domain.Principal
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return defaultSessionTTL
}

var errBadCredentials = domain.UnauthorizedError{Msg: "invalid email or password"}

func (s AuthService) LoginAgent(ctx context.Context, email, password string) (Session, models.Agent, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, models.Agent{}, domain.ValidationError{Msg: "email and password are required"}
	}
	agent, err := s.Agents.FindByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, models.Agent{}, errBadCredentials
	}
	if err != nil {
		return Session{}, models.Agent{}, domain.InternalError{Msg: "load agent", Err: err}
	}
	if bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(password)) != nil {
		utils.LogEvent(s.RequestID, "auth", "agent_login_rejected", fmt.Sprintf("agent_id=%d", agent.ID))
		return Session{}, models.Agent{}, errBadCredentials
	}
	sess, err := s.issue(ctx, domain.SubjectAgent, agent.ID)
	if err != nil {
		return Session{}, models.Agent{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "agent_login", fmt.Sprintf("agent_id=%d", agent.ID))
	return sess, agent, nil
}

// LoginBusiness only admits businesses that have a password set.
func (s AuthService) LoginBusiness(ctx context.Context, email, password string) (Session, models.Business, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, models.Business{}, domain.ValidationError{Msg: "email and password are required"}
	}
	b, err := s.Businesses.FindCredentials(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, models.Business{}, errBadCredentials
	}
	if err != nil {
		return Session{}, models.Business{}, domain.InternalError{Msg: "load business", Err: err}
	}
	if b.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(b.PasswordHash), []byte(password)) != nil {
		utils.LogEvent(s.RequestID, "auth", "business_login_rejected", fmt.Sprintf("business_id=%d", b.ID))
		return Session{}, models.Business{}, errBadCredentials
	}
	sess, err := s.issue(ctx, domain.SubjectBusiness, b.ID)
	if err != nil {
		return Session{}, models.Business{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "business_login", fmt.Sprintf("business_id=%d", b.ID))
	return sess, b, nil
}

func (s AuthService) issue(ctx context.Context, kind domain.SubjectType, subjectID int64) (Session, error) {
	if len(s.Secret) == 0 {
		return Session{}, domain.InternalError{Msg: "session secret not configured"}
	}
	now := s.now()
	p := domain.Principal{SessionID: uuid.NewString(), SubjectType: kind, SubjectID: subjectID}
	exp := now.Add(s.ttl())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Kind: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        p.SessionID,
			Subject:   fmt.Sprintf("%d", subjectID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return Session{}, domain.InternalError{Msg: "sign session", Err: err}
	}
	if err := s.Sessions.Create(ctx, p, exp); err != nil {
		return Session{}, domain.InternalError{Msg: "store session", Err: err}
	}
	return Session{Token: signed, ExpiresAt: exp, Principal: p}, nil
}

// Authenticate verifies the token and that its session row is still live.
func (s AuthService) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	claims, err := s.parse(token)
	if err != nil {
		return domain.Principal{}, err
	}
	p, err := s.Sessions.GetValid(ctx, claims.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Principal{}, domain.UnauthorizedError{Msg: "session expired"}
	}
	if err != nil {
		return domain.Principal{}, domain.InternalError{Msg: "load session", Err: err}
	}
	if string(p.SubjectType) != claims.Kind || fmt.Sprintf("%d", p.SubjectID) != claims.Subject {
		return domain.Principal{}, domain.UnauthorizedError{Msg: "invalid session"}
	}
	return p, nil
}

func (s AuthService) parse(token string) (sessionClaims, error) {
	var claims sessionClaims
	if strings.TrimSpace(token) == "" {
		return claims, domain.UnauthorizedError{Msg: "authentication required"}
	}
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now))
	if err != nil || claims.ID == "" {
		return claims, domain.UnauthorizedError{Msg: "invalid session", Err: err}
	}
	return claims, nil
}

// Logout removes the session row. Unknown or expired tokens are ignored.
func (s AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if err := s.Sessions.Delete(ctx, claims.ID); err != nil {
		return domain.InternalError{Msg: "delete session", Err: err}
	}
	return nil
}

func (s AuthService) Agent(ctx context.Context, id int64) (models.Agent, error) {
	a, err := s.Agents.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return a, domain.NotFoundError{Resource: "agent", Err: err}
	}
	if err != nil {
		return a, domain.InternalError{Msg: "load agent", Err: err}
	}
	return a, nil
}

// BootstrapAgent makes sure the configured default agent exists and owns
// every bus and trip that has no owner yet.
func (s AuthService) BootstrapAgent(ctx context.Context, email, password, name, phone string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if name == "" {
		name = "Default Agent"
	}
	created, err := s.Agents.CreateIfAbsent(ctx, models.Agent{Email: email, PasswordHash: hash, Name: name, Phone: phone})
	if err != nil {
		return fmt.Errorf("create bootstrap agent: %w", err)
	}
	agent, err := s.Agents.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("load bootstrap agent: %w", err)
	}
	buses, trips, err := s.Agents.AssignOrphans(ctx, agent.ID)
	if err != nil {
		return fmt.Errorf("assign orphans: %w", err)
	}
	utils.LogEvent(s.RequestID, "auth", "bootstrap_agent",
		fmt.Sprintf("agent_id=%d created=%t buses=%d trips=%d", agent.ID, created, buses, trips))
	return nil
}

// PurgeExpiredSessions deletes session rows past their expiry.
func (s AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.Sessions.DeleteExpired(ctx)
}
