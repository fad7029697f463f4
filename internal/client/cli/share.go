package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
)

var grantableRoles = map[models.Role]bool{
	models.RoleReader:        true,
	models.RoleEditor:        true,
	models.RoleAdministrator: true,
	models.RoleOwner:         true,
}

func (a *App) Shares(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("shares <item-id>")
	}
	accesses, err := a.driver.GetItemAccesses(ctx, args[0])
	if err != nil {
		return err
	}
	invitations, err := a.driver.GetItemInvitations(ctx, args[0])
	if err != nil {
		return err
	}

	if len(accesses) == 0 && len(invitations) == 0 {
		fmt.Fprintln(a.out, "Not shared.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, acc := range accesses {
		who := acc.Team
		if acc.User != nil {
			who = acc.User.Email
		}
		fmt.Fprintf(tw, "access\t%s\t%s\n", who, acc.Role)
	}
	for _, inv := range invitations {
		fmt.Fprintf(tw, "invited\t%s\t%s\n", inv.Email, inv.Role)
	}
	return tw.Flush()
}

func (a *App) Invite(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usageError("invite <item-id> <email> <reader|editor|administrator|owner>")
	}
	role := models.Role(args[2])
	if !grantableRoles[role] {
		return usageError("invite <item-id> <email> <reader|editor|administrator|owner>")
	}
	inv, err := a.driver.CreateInvitation(ctx, args[0], models.CreateInvitationRequest{Email: args[1], Role: role})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Invited %s as %s.\n", inv.Email, inv.Role)
	return nil
}
