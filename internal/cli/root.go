package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	s := string(a.Mode)
	if sess := a.sessions.CurrentUser(); sess != nil {
		s = sess.Email + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

// Root runs the read-eval-print loop. It reads a line, parses the first
// token as the command, and dispatches. Unknown commands are reported
// back to the user; handler errors are printed and the loop continues.
// The loop exits on EOF or when the user types "exit" or "quit".
//
// Lines are read straight from a.in, the same reader the interactive
// handlers prompt on, so no input is buffered away between commands.
func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to LoanKeeper CLI (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "lk %s> ", a.getStatus())
		line, readErr := a.in.ReadString('\n')
		if readErr != nil && line == "" {
			break
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, "Available commands: dashboard, lenders, addlender, editlender, dellender,")
				fmt.Fprintln(a.out, "  loans, addloan, editloan, delloan, show, pay, editpay, delpay, payments,")
				fmt.Fprintln(a.out, "  attach, share, export, backup, reconcile, watch, profile, passwd, logout, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: register, login, reset, exit")
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "reset":
			err = a.ResetPassword(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "profile":
			err = a.Profile(ctx)
		case "passwd":
			err = a.ChangePassword(ctx)

		case "lenders":
			err = a.listLenders(ctx)
		case "addlender":
			err = a.addLender(ctx)
		case "editlender":
			err = a.editLender(ctx, args)
		case "dellender":
			err = a.deleteLender(ctx, args)

		case "loans":
			err = a.listLoans(ctx)
		case "addloan":
			err = a.addLoan(ctx)
		case "editloan":
			err = a.editLoan(ctx, args)
		case "delloan":
			err = a.deleteLoan(ctx, args)
		case "show":
			err = a.showLoan(ctx, args)

		case "pay":
			err = a.addPayment(ctx, args)
		case "editpay":
			err = a.editPayment(ctx, args)
		case "delpay":
			err = a.deletePayment(ctx, args)
		case "payments":
			err = a.listPayments(ctx)

		case "dashboard":
			err = a.dashboard(ctx)
		case "watch":
			err = a.watch(ctx)
		case "reconcile":
			err = a.reconcile(ctx)

		case "export":
			err = a.exportReport(ctx, args)
		case "backup":
			err = a.exportBackup(ctx, args)

		case "attach":
			err = a.attach(ctx, args)
		case "share":
			err = a.share(ctx, args)

		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return

		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(a.out, "Error:", err)
		}
	}
}

// requireLogin returns the current user id or an error for handlers
// that only make sense signed in.
func (a *App) requireLogin() (string, error) {
	id := a.userID()
	if id == "" {
		return "", fmt.Errorf("not signed in, use 'login' or 'register'")
	}
	return id, nil
}
