package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/loankeeper/internal/docstore"
	"github.com/dmitrijs2005/loankeeper/internal/logging"
	"github.com/dmitrijs2005/loankeeper/internal/models"
	"github.com/dmitrijs2005/loankeeper/internal/session"
)

type fixture struct {
	store    *docstore.LocalStore
	sessions *session.Manager
	auth     *AuthService
	lenders  *LenderService
	loans    *LoanService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	logger := logging.NewNopLogger()

	store := docstore.NewLocalStore(filepath.Join(dir, "data.json"), logger)
	sessions := session.NewManager(filepath.Join(dir, "session"), []byte("test-secret"), time.Hour, logger)

	return &fixture{
		store:    store,
		sessions: sessions,
		auth:     NewAuthService(store, sessions, 15*time.Minute, logger),
		lenders:  NewLenderService(store, logger),
		loans:    NewLoanService(store, logger),
	}
}

// registerUser creates an account and returns its user id.
func (f *fixture) registerUser(t *testing.T, email string) string {
	t.Helper()
	sess, err := f.auth.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: "secret-pin",
	})
	require.NoError(t, err)
	return sess.UserID
}

// addLender creates a lender for the user and returns it.
func (f *fixture) addLender(t *testing.T, userID, name string) *models.Lender {
	t.Helper()
	lender, err := f.lenders.Create(context.Background(), userID, LenderInput{
		Name: name,
		Type: models.LenderTypeBank,
	})
	require.NoError(t, err)
	return lender
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
