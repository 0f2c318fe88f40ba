package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/loankeeper/internal/blobstore"
	"github.com/dmitrijs2005/loankeeper/internal/config"
	"github.com/dmitrijs2005/loankeeper/internal/docstore"
	"github.com/dmitrijs2005/loankeeper/internal/logging"
	"github.com/dmitrijs2005/loankeeper/internal/report"
	"github.com/dmitrijs2005/loankeeper/internal/services"
	"github.com/dmitrijs2005/loankeeper/internal/session"
)

// newTestApp builds an App over the local backends with scripted input.
func newTestApp(t *testing.T, script string) (*App, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	logger := logging.NewNopLogger()

	store := docstore.NewLocalStore(filepath.Join(dir, "data.json"), logger)
	blobs, err := blobstore.NewLocalStore(filepath.Join(dir, "attachments"))
	require.NoError(t, err)
	sessions := session.NewManager(filepath.Join(dir, "session"), []byte("test-secret"), time.Hour, logger)

	c := &config.Config{}
	c.LoadDefaults()

	out := &bytes.Buffer{}
	return &App{
		config:   c,
		logger:   logger,
		store:    store,
		blobs:    blobs,
		sessions: sessions,
		auth:     services.NewAuthService(store, sessions, 15*time.Minute, logger),
		lenders:  services.NewLenderService(store, logger),
		loans:    services.NewLoanService(store, logger),
		reports:  report.NewService(store, logger),
		Mode:     ModeLocal,
		in:       bufio.NewReader(strings.NewReader(script)),
		out:      out,
	}, out
}

// feed replaces the app's input with a fresh script.
func feed(a *App, script string) {
	a.in = bufio.NewReader(strings.NewReader(script))
}

// stubPassword makes every password prompt return pw.
func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	t.Cleanup(func() { getPassword = old })
	getPassword = func(w io.Writer, prompt string) ([]byte, error) {
		return []byte(pw), nil
	}
}

// signIn registers an account directly through the auth service.
func signIn(t *testing.T, a *App, email string) string {
	t.Helper()
	sess, err := a.auth.Register(context.Background(), services.RegisterInput{
		Email:    email,
		Password: "secret-pin",
	})
	require.NoError(t, err)
	return sess.UserID
}
