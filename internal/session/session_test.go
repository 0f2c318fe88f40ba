package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/loankeeper/internal/common"
	"github.com/dmitrijs2005/loankeeper/internal/logging"
	"github.com/dmitrijs2005/loankeeper/internal/models"
)

var testSecret = []byte("test-secret")

func newManager(t *testing.T, validity time.Duration) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session")
	return NewManager(path, testSecret, validity, logging.NewNopLogger())
}

func TestGenerateAndParseToken(t *testing.T) {
	sess := &models.Session{UserID: "u1", Email: "a@b.c", DisplayName: "A", EmailVerified: true}

	token, err := GenerateToken(sess, testSecret, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(&models.Session{UserID: "u1"}, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("other"))
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken(&models.Session{UserID: "u1"}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestManager_SignInPersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session")

	m1 := NewManager(path, testSecret, time.Hour, logging.NewNopLogger())
	require.NoError(t, m1.SignIn(ctx, &models.Session{UserID: "u1", Email: "a@b.c"}))

	m2 := NewManager(path, testSecret, time.Hour, logging.NewNopLogger())
	require.Nil(t, m2.CurrentUser())
	m2.Restore(ctx)
	require.NotNil(t, m2.CurrentUser())
	assert.Equal(t, "u1", m2.CurrentUser().UserID)
}

func TestManager_RestoreRejectsExpired(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session")

	m1 := NewManager(path, testSecret, -time.Minute, logging.NewNopLogger())
	require.NoError(t, m1.SignIn(ctx, &models.Session{UserID: "u1"}))

	m2 := NewManager(path, testSecret, time.Hour, logging.NewNopLogger())
	m2.Restore(ctx)
	assert.Nil(t, m2.CurrentUser())
}

func TestManager_OnChange(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, time.Hour)

	var seen []*models.Session
	cancel := m.OnChange(func(s *models.Session) { seen = append(seen, s) })
	defer cancel()

	// fires immediately with the signed-out state
	require.Len(t, seen, 1)
	assert.Nil(t, seen[0])

	require.NoError(t, m.SignIn(ctx, &models.Session{UserID: "u1"}))
	require.Len(t, seen, 2)
	assert.Equal(t, "u1", seen[1].UserID)

	require.NoError(t, m.SignOut(ctx))
	require.Len(t, seen, 3)
	assert.Nil(t, seen[2])

	cancel()
	require.NoError(t, m.SignIn(ctx, &models.Session{UserID: "u2"}))
	assert.Len(t, seen, 3)
}
