package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/magnet-school/marks-console/internal/models"
	"github.com/magnet-school/marks-console/internal/upstream"
	"github.com/magnet-school/marks-console/pkg/config"
	appErrors "github.com/magnet-school/marks-console/pkg/errors"
)

type stubAuthBackend struct {
	reply *upstream.LoginReply
	err   error
}

func (b *stubAuthBackend) Login(ctx context.Context, id, pass string) (*upstream.LoginReply, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.reply, nil
}

type memSessionStore struct {
	sessions map[string]models.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]models.Session)}
}

func (m *memSessionStore) Save(ctx context.Context, session *models.Session) error {
	m.sessions[session.ID] = *session
	return nil
}

func (m *memSessionStore) Find(ctx context.Context, id string) (*models.Session, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, appErrors.ErrSessionExpired
	}
	return &session, nil
}

func (m *memSessionStore) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func newTestAuthService(backend *stubAuthBackend, store *memSessionStore) *AuthService {
	cfg := config.JWTConfig{Secret: "test_secret", Expiration: time.Hour, Issuer: "marks-console"}
	return NewAuthService(backend, store, nil, nil, zap.NewNop(), cfg)
}

func TestLoginIssuesTokenAndSession(t *testing.T) {
	store := newMemSessionStore()
	svc := newTestAuthService(&stubAuthBackend{reply: &upstream.LoginReply{Token: "up-tok", UserID: "teacher-7"}}, store)

	result, err := svc.Login(context.Background(), models.LoginRequest{ID: "teacher-7", Pass: "secret"}, RequestMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "teacher-7", result.UserID)
	assert.Equal(t, models.EditModeBulk, result.EditMode)

	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "teacher-7", claims.UserID)

	session, err := svc.Session(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "up-tok", session.UpstreamToken)
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc := newTestAuthService(&stubAuthBackend{}, newMemSessionStore())

	_, err := svc.Login(context.Background(), models.LoginRequest{ID: "teacher-7"}, RequestMeta{})
	require.Error(t, err)
}

func TestLoginRejectedUpstream(t *testing.T) {
	svc := newTestAuthService(&stubAuthBackend{err: appErrors.ErrInvalidCredentials}, newMemSessionStore())

	_, err := svc.Login(context.Background(), models.LoginRequest{ID: "x", Pass: "y"}, RequestMeta{})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	store := newMemSessionStore()
	svc := newTestAuthService(&stubAuthBackend{reply: &upstream.LoginReply{Token: "up", UserID: "u"}}, store)

	result, err := svc.Login(context.Background(), models.LoginRequest{ID: "u", Pass: "p"}, RequestMeta{})
	require.NoError(t, err)

	other := NewAuthService(nil, store, nil, nil, zap.NewNop(), config.JWTConfig{Secret: "different", Expiration: time.Hour})
	_, err = other.ValidateToken(result.Token)
	require.Error(t, err)
}

func TestLogoutDeletesSession(t *testing.T) {
	store := newMemSessionStore()
	svc := newTestAuthService(&stubAuthBackend{reply: &upstream.LoginReply{Token: "up", UserID: "u"}}, store)

	result, err := svc.Login(context.Background(), models.LoginRequest{ID: "u", Pass: "p"}, RequestMeta{})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims, RequestMeta{}))

	_, err = svc.Session(context.Background(), claims)
	require.ErrorIs(t, err, appErrors.ErrSessionExpired)
}

func TestSetEditMode(t *testing.T) {
	store := newMemSessionStore()
	svc := newTestAuthService(&stubAuthBackend{reply: &upstream.LoginReply{Token: "up", UserID: "u"}}, store)

	result, err := svc.Login(context.Background(), models.LoginRequest{ID: "u", Pass: "p"}, RequestMeta{})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)

	session, err := svc.SetEditMode(context.Background(), claims, models.EditModeSingle)
	require.NoError(t, err)
	assert.Equal(t, models.EditModeSingle, session.EditMode)

	reloaded, err := svc.Session(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, models.EditModeSingle, reloaded.EditMode)

	_, err = svc.SetEditMode(context.Background(), claims, models.EditMode("inline"))
	require.Error(t, err)
}
