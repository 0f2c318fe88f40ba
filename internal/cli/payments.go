package cli

import (
	"context"
	"fmt"
)

func (a *App) addPayment(ctx context.Context, args []string) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: pay <loan id>")
	}

	amount, err := GetAmount(a.in, "Enter amount", a.out)
	if err != nil {
		return err
	}
	date, err := getSimpleText(a.in, "Enter date YYYY-MM-DD (empty for today)", a.out)
	if err != nil {
		return err
	}
	note, err := getSimpleText(a.in, "Enter note (optional)", a.out)
	if err != nil {
		return err
	}

	payment, err := a.loans.AddPayment(ctx, userID, args[0], amount, date, note)
	if err != nil {
		return err
	}

	loan, err := a.loans.GetLoan(ctx, userID, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Payment %s recorded, remaining %s\n", payment.ID, loan.Remaining())
	return nil
}

func (a *App) editPayment(ctx context.Context, args []string) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: editpay <payment id>")
	}

	amount, err := GetAmount(a.in, "Enter new amount", a.out)
	if err != nil {
		return err
	}
	date, err := getSimpleText(a.in, "Enter date YYYY-MM-DD (empty to keep)", a.out)
	if err != nil {
		return err
	}
	note, err := getSimpleText(a.in, "Enter note", a.out)
	if err != nil {
		return err
	}

	if err := a.loans.EditPayment(ctx, userID, args[0], amount, date, note); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Payment updated")
	return nil
}

func (a *App) deletePayment(ctx context.Context, args []string) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: delpay <payment id>")
	}
	if err := a.loans.DeletePayment(ctx, userID, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Payment deleted")
	return nil
}

func (a *App) listPayments(ctx context.Context) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}

	payments, err := a.loans.ListPayments(ctx, userID)
	if err != nil {
		return err
	}
	if len(payments) == 0 {
		fmt.Fprintln(a.out, "No payments yet")
		return nil
	}
	for _, p := range payments {
		fmt.Fprintf(a.out, "%s  %s  %-20s %s  %s\n", p.ID, p.Date, p.LenderName, p.Amount, p.Note)
	}
	return nil
}
