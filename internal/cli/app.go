package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/loankeeper/internal/blobstore"
	"github.com/dmitrijs2005/loankeeper/internal/config"
	"github.com/dmitrijs2005/loankeeper/internal/docstore"
	"github.com/dmitrijs2005/loankeeper/internal/logging"
	"github.com/dmitrijs2005/loankeeper/internal/report"
	"github.com/dmitrijs2005/loankeeper/internal/services"
	"github.com/dmitrijs2005/loankeeper/internal/session"
)

// Mode names which persistence backend the app runs against.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    docstore.Store
	blobs    blobstore.Store
	sessions *session.Manager
	auth     *services.AuthService
	lenders  *services.LenderService
	loans    *services.LoanService
	reports  *report.Service
	Mode     Mode
	in       *bufio.Reader
	out      io.Writer
}

// NewApp wires the application for the backend the config selects: the
// shared Postgres store when a DSN is configured, the single-file local
// store otherwise. The choice is made once; there is no runtime switch.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	var (
		store docstore.Store
		mode  Mode
		err   error
	)
	if c.RemoteEnabled() {
		store, err = docstore.NewPostgresStore(ctx, c.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		mode = ModeRemote
	} else {
		store = docstore.NewLocalStore(c.DataFile, logger)
		mode = ModeLocal
	}

	var blobs blobstore.Store
	if c.S3Enabled() {
		blobs, err = blobstore.NewS3Store(ctx, blobstore.S3Config{
			Region:       c.S3Region,
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	} else {
		blobs, err = blobstore.NewLocalStore(c.AttachmentsDir)
	}
	if err != nil {
		store.Close(ctx)
		return nil, err
	}

	sessions := session.NewManager(c.SessionFile, []byte(c.SecretKey), c.SessionValidity, logger)
	sessions.Restore(ctx)

	return &App{
		config:   c,
		logger:   logger,
		store:    store,
		blobs:    blobs,
		sessions: sessions,
		auth:     services.NewAuthService(store, sessions, c.ResetCodeValidity, logger),
		lenders:  services.NewLenderService(store, logger),
		loans:    services.NewLoanService(store, logger),
		reports:  report.NewService(store, logger),
		Mode:     mode,
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.store.Close(ctx)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.sessions.CurrentUser() != nil
}

func (a *App) userID() string {
	if sess := a.sessions.CurrentUser(); sess != nil {
		return sess.UserID
	}
	return ""
}
