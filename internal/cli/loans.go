package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/loankeeper/internal/services"
)

func (a *App) listLoans(ctx context.Context) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}

	loans, err := a.loans.ListLoans(ctx, userID)
	if err != nil {
		return err
	}
	if len(loans) == 0 {
		fmt.Fprintln(a.out, "No loans yet, use 'addloan'")
		return nil
	}
	for _, l := range loans {
		fmt.Fprintf(a.out, "%s  %s  %-20s total %s  paid %s  due %s\n",
			l.ID, l.Date, l.LenderName, l.TotalAmount, l.PaidAmount, l.Remaining())
	}
	return nil
}

func (a *App) addLoan(ctx context.Context) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}

	lenderID, err := getSimpleText(a.in, "Enter lender id (see 'lenders')", a.out)
	if err != nil {
		return err
	}
	total, err := GetAmount(a.in, "Enter total amount", a.out)
	if err != nil {
		return err
	}
	upfront, err := GetAmount(a.in, "Enter upfront payment (optional)", a.out)
	if err != nil {
		return err
	}
	date, err := getSimpleText(a.in, "Enter date YYYY-MM-DD (empty for today)", a.out)
	if err != nil {
		return err
	}
	dueDate, err := getSimpleText(a.in, "Enter due date YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return err
	}
	notes, err := getSimpleText(a.in, "Enter notes (optional)", a.out)
	if err != nil {
		return err
	}

	loan, err := a.loans.CreateLoan(ctx, userID, services.CreateLoanInput{
		LenderID:      lenderID,
		Date:          date,
		DueDate:       dueDate,
		TotalAmount:   total,
		UpfrontAmount: upfront,
		Notes:         notes,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Loan %s created, remaining %s\n", loan.ID, loan.Remaining())
	return nil
}

func (a *App) editLoan(ctx context.Context, args []string) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: editloan <id>")
	}

	loan, err := a.loans.GetLoan(ctx, userID, args[0])
	if err != nil {
		return err
	}
	in := services.UpdateLoanInput{
		Date:        loan.Date,
		DueDate:     loan.DueDate,
		TotalAmount: loan.TotalAmount,
		PaidAmount:  loan.PaidAmount,
		Notes:       loan.Notes,
		DocumentKey: loan.DocumentKey,
	}

	total, err := GetAmount(a.in, fmt.Sprintf("Enter total amount (current %s, empty to keep)", loan.TotalAmount), a.out)
	if err != nil {
		return err
	}
	if !total.IsZero() {
		in.TotalAmount = total
	}
	date, err := getSimpleText(a.in, "Enter date YYYY-MM-DD (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if date != "" {
		in.Date = date
	}
	dueDate, err := getSimpleText(a.in, "Enter due date YYYY-MM-DD (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if dueDate != "" {
		in.DueDate = dueDate
	}
	notes, err := getSimpleText(a.in, "Enter notes (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if notes != "" {
		in.Notes = notes
	}

	if err := a.loans.UpdateLoan(ctx, userID, args[0], in); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Loan updated")
	return nil
}

func (a *App) deleteLoan(ctx context.Context, args []string) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: delloan <id>")
	}
	if err := a.loans.DeleteLoan(ctx, userID, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Loan deleted")
	return nil
}

func (a *App) showLoan(ctx context.Context, args []string) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: show <loan id>")
	}

	loan, err := a.loans.GetLoan(ctx, userID, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Loan %s from %s (%s)\n", loan.ID, loan.LenderName, loan.Type)
	fmt.Fprintf(a.out, "  date %s  due %s\n", loan.Date, loan.DueDate)
	fmt.Fprintf(a.out, "  total %s  paid %s  remaining %s\n",
		loan.TotalAmount, loan.PaidAmount, loan.Remaining())
	if loan.Notes != "" {
		fmt.Fprintf(a.out, "  notes: %s\n", loan.Notes)
	}
	if loan.DocumentKey != "" {
		fmt.Fprintf(a.out, "  attachment: %s\n", loan.DocumentKey)
	}

	payments, err := a.loans.LoanPayments(ctx, userID, loan.ID)
	if err != nil {
		return err
	}
	for _, p := range payments {
		marker := ""
		if p.Upfront {
			marker = " (upfront)"
		}
		fmt.Fprintf(a.out, "  %s  %s  %s%s  %s\n", p.ID, p.Date, p.Amount, marker, p.Note)
	}
	return nil
}
