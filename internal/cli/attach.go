package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/loankeeper/internal/blobstore"
	"github.com/dmitrijs2005/loankeeper/internal/models"
)

// attach uploads a file as the loan's agreement document and records
// its storage key on the loan.
func (a *App) attach(ctx context.Context, args []string) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: attach <loan id> <file path>")
	}
	loanID, path := args[0], args[1]

	if _, err := a.loans.GetLoan(ctx, userID, loanID); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	key := blobstore.RandomKey()
	if err := a.blobs.Put(ctx, key, f); err != nil {
		return err
	}
	if err := a.store.Update(ctx, models.CollectionLoans, loanID, map[string]any{"documentKey": key}); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Attached as %s\n", key)
	return nil
}

// share prints a temporary URL for the loan's attachment.
func (a *App) share(ctx context.Context, args []string) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: share <loan id>")
	}

	loan, err := a.loans.GetLoan(ctx, userID, args[0])
	if err != nil {
		return err
	}
	if loan.DocumentKey == "" {
		return fmt.Errorf("loan has no attachment, use 'attach'")
	}

	url, err := a.blobs.ShareURL(ctx, loan.DocumentKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, url)
	return nil
}
