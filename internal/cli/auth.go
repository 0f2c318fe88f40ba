package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/loankeeper/internal/common"
	"github.com/dmitrijs2005/loankeeper/internal/services"
)

// getSimpleText and getPassword are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped
// in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the new account's details and creates it. The
// account is signed in right away on success.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.in, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.in, "Enter display name", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.in, "Enter phone (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.auth.Register(ctx, services.RegisterInput{
		Email:       email,
		Password:    string(password),
		DisplayName: name,
		Phone:       phone,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", sess.Email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.in, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s\n", sess.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

// ResetPassword runs the two-step recovery flow in one sitting: a code
// is issued and shown, then verified together with the new password.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.in, "Enter email", a.out)
	if err != nil {
		return err
	}

	code, err := a.auth.RequestPasswordReset(ctx, email)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Your reset code: %s\n", code)

	entered, err := getSimpleText(a.in, "Enter reset code", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.ConfirmPasswordReset(ctx, email, entered, string(password)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated")
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	name, err := getSimpleText(a.in, "Enter display name", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.in, "Enter phone (optional)", a.out)
	if err != nil {
		return err
	}

	sess, err := a.auth.UpdateProfile(ctx, services.ProfileInput{
		DisplayName: name,
		Phone:       phone,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile updated for %s\n", sess.Email)
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}

	current, err := getPassword(a.out, "Enter current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	updated, err := getPassword(a.out, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(updated)

	if err := a.auth.ChangePassword(ctx, string(current), string(updated)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated")
	return nil
}
