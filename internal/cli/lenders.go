package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/loankeeper/internal/models"
	"github.com/dmitrijs2005/loankeeper/internal/services"
)

func (a *App) listLenders(ctx context.Context) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}

	lenders, err := a.lenders.List(ctx, userID)
	if err != nil {
		return err
	}
	if len(lenders) == 0 {
		fmt.Fprintln(a.out, "No lenders yet, use 'addlender'")
		return nil
	}
	for _, l := range lenders {
		fmt.Fprintf(a.out, "%s  %-20s %-10s %s\n", l.ID, l.Name, l.Type, l.Phone)
	}
	return nil
}

func (a *App) promptLender(current *models.Lender) (services.LenderInput, error) {
	in := services.LenderInput{}
	if current != nil {
		in = services.LenderInput{
			Name: current.Name, Phone: current.Phone,
			Address: current.Address, Type: current.Type,
		}
	}

	name, err := getSimpleText(a.in, "Enter lender name", a.out)
	if err != nil {
		return in, err
	}
	if name != "" {
		in.Name = name
	}

	kind, err := getSimpleText(a.in, "Bank or Individual? (default Individual)", a.out)
	if err != nil {
		return in, err
	}
	if kind != "" {
		in.Type = models.LenderType(kind)
	}

	phone, err := getSimpleText(a.in, "Enter phone (optional)", a.out)
	if err != nil {
		return in, err
	}
	if phone != "" {
		in.Phone = phone
	}

	address, err := getSimpleText(a.in, "Enter address (optional)", a.out)
	if err != nil {
		return in, err
	}
	if address != "" {
		in.Address = address
	}

	return in, nil
}

func (a *App) addLender(ctx context.Context) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}

	in, err := a.promptLender(nil)
	if err != nil {
		return err
	}
	lender, err := a.lenders.Create(ctx, userID, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Lender %s created (%s)\n", lender.Name, lender.ID)
	return nil
}

func (a *App) editLender(ctx context.Context, args []string) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: editlender <id>")
	}

	current, err := a.lenders.Get(ctx, userID, args[0])
	if err != nil {
		return err
	}
	in, err := a.promptLender(current)
	if err != nil {
		return err
	}
	if err := a.lenders.Update(ctx, userID, args[0], in); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Lender updated")
	return nil
}

func (a *App) deleteLender(ctx context.Context, args []string) error {
	userID, err := a.requireLogin()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: dellender <id>")
	}
	if err := a.lenders.Delete(ctx, userID, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Lender deleted; its loans keep their records")
	return nil
}
