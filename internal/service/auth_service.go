package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/internal/upstream"
	"github.com/magnet-school/marks-console/pkg/config"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
)

// AuthBackend is the subset of the school backend client used for login.
type AuthBackend interface {
	Login(ctx context.Context, id, pass string) (*upstream.LoginReply, error)
}

// SessionStore abstracts console session persistence.
type SessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuditRecorder records audit-trail rows. A nil recorder disables auditing.
type AuditRecorder interface {
	Insert(ctx context.Context, entry *models.MarkAudit) error
	InsertBatch(ctx context.Context, entries []*models.MarkAudit) error
}

// RequestMeta carries the client network context for audit rows.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuthService authenticates operators against the school backend and issues
// console access tokens. The upstream token never leaves the server; the
// browser only ever holds the console JWT.
type AuthService struct {
	backend   AuthBackend
	sessions  SessionStore
	audit     AuditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    config.JWTConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(backend AuthBackend, sessions SessionStore, audit AuditRecorder, validate *validator.Validate, logger *zap.Logger, cfg config.JWTConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{backend: backend, sessions: sessions, audit: audit, validator: validate, logger: logger, config: cfg}
}

// Login exchanges credentials for a console session and access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, meta RequestMeta) (*models.LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	reply, err := s.backend.Login(ctx, req.ID, req.Pass)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:            uuid.NewString(),
		UserID:        reply.UserID,
		UpstreamToken: reply.Token,
		EditMode:      models.EditModeBulk,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	token, expiresAt, err := s.generateAccessToken(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.record(ctx, &models.MarkAudit{
		UserID:    session.UserID,
		Action:    models.AuditActionLogin,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	})

	return &models.LoginResult{
		Token:     token,
		UserID:    session.UserID,
		EditMode:  session.EditMode,
		ExpiresAt: expiresAt,
	}, nil
}

// Logout ends the session everywhere.
func (s *AuthService) Logout(ctx context.Context, claims *models.JWTClaims, meta RequestMeta) error {
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}

	s.record(ctx, &models.MarkAudit{
		UserID:    claims.UserID,
		Action:    models.AuditActionLogout,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	})
	return nil
}

// Session loads the persisted session for the given claims.
func (s *AuthService) Session(ctx context.Context, claims *models.JWTClaims) (*models.Session, error) {
	return s.sessions.Find(ctx, claims.SessionID)
}

// SetEditMode persists the user's edit-mode preference on the session.
func (s *AuthService) SetEditMode(ctx context.Context, claims *models.JWTClaims, mode models.EditMode) (*models.Session, error) {
	if !models.ValidEditMode(mode) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown edit mode %q", mode))
	}
	session, err := s.sessions.Find(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.EditMode == mode {
		return session, nil
	}
	session.EditMode = mode
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist edit mode")
	}
	return session, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(session *models.Session) (string, time.Time, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiration)
	claims := &models.JWTClaims{
		UserID:    session.UserID,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   session.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) record(ctx context.Context, entry *models.MarkAudit) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit entry", zap.String("action", entry.Action), zap.Error(err))
	}
}
