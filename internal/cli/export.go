package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/loankeeper/internal/report"
)

func (a *App) exportReport(ctx context.Context, args []string) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}

	path := report.ReportFileName(time.Now())
	if len(args) > 0 {
		path = args[0]
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.reports.CSV(ctx, f, userID); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Report written to %s\n", path)
	return nil
}

func (a *App) exportBackup(ctx context.Context, args []string) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	path := report.BackupFileName(time.Now())
	if len(args) > 0 {
		path = args[0]
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.reports.Backup(ctx, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Backup written to %s\n", path)
	return nil
}
