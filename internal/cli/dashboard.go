package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/loankeeper/internal/docstore"
	"github.com/dmitrijs2005/loankeeper/internal/models"
	"github.com/dmitrijs2005/loankeeper/internal/services"
)

func (a *App) printSummary(s services.Summary) {
	fmt.Fprintf(a.out, "Borrowed %s  Paid %s  Pending %s  Active loans %d\n",
		s.TotalBorrowed, s.TotalPaid, s.TotalPending, s.ActiveLoans)
	for _, l := range s.PerLender {
		fmt.Fprintf(a.out, "  owed to %-20s %s\n", l.Name, l.Outstanding)
	}
	if len(s.RecentLoans) > 0 {
		fmt.Fprintln(a.out, "Recent loans:")
		for _, l := range s.RecentLoans {
			fmt.Fprintf(a.out, "  %s  %-20s total %s  due %s\n", l.Date, l.LenderName, l.TotalAmount, l.Remaining())
		}
	}
	if len(s.RecentPayments) > 0 {
		fmt.Fprintln(a.out, "Recent payments:")
		for _, p := range s.RecentPayments {
			fmt.Fprintf(a.out, "  %s  %-20s %s\n", p.Date, p.LenderName, p.Amount)
		}
	}
}

func (a *App) dashboard(ctx context.Context) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}

	summary, err := a.loans.Summary(ctx, userID)
	if err != nil {
		return err
	}
	a.printSummary(summary)
	return nil
}

// watch keeps the dashboard live: it subscribes to the user's loans and
// payments and reprints the summary on every change, until the user
// presses Enter.
func (a *App) watch(ctx context.Context) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}

	var (
		mu       sync.Mutex
		loans    []models.Loan
		payments []models.Payment
	)
	reprint := func() {
		a.printSummary(services.BuildSummary(loans, payments))
	}

	cancelLoans, err := a.store.Subscribe(ctx,
		docstore.C(models.CollectionLoans).Where(docstore.Eq("userId", userID)),
		func(docs []docstore.Document) {
			decoded, err := docstore.DecodeAll[models.Loan](docs)
			if err != nil {
				a.logger.Error(ctx, "decode loans", "error", err)
				return
			}
			mu.Lock()
			loans = decoded
			reprint()
			mu.Unlock()
		})
	if err != nil {
		return err
	}
	defer cancelLoans()

	cancelPayments, err := a.store.Subscribe(ctx,
		docstore.C(models.CollectionPayments).Where(docstore.Eq("userId", userID)),
		func(docs []docstore.Document) {
			decoded, err := docstore.DecodeAll[models.Payment](docs)
			if err != nil {
				a.logger.Error(ctx, "decode payments", "error", err)
				return
			}
			mu.Lock()
			payments = decoded
			reprint()
			mu.Unlock()
		})
	if err != nil {
		return err
	}
	defer cancelPayments()

	fmt.Fprintln(a.out, "Watching, press Enter to stop")
	_, _ = a.in.ReadString('\n')
	return nil
}

func (a *App) reconcile(ctx context.Context) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}

	fixed, err := a.loans.Reconcile(ctx, userID)
	if err != nil {
		return err
	}
	if fixed == 0 {
		fmt.Fprintln(a.out, "All paid amounts consistent")
	} else {
		fmt.Fprintf(a.out, "Fixed %d loan(s)\n", fixed)
	}
	return nil
}
