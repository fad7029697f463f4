package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
)

func (a *App) Mkdir(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("mkdir <title>")
	}
	it, err := a.driver.CreateFolder(ctx, models.CreateFolderRequest{
		ParentID: a.currentFolderID(),
		Title:    strings.Join(args, " "),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created folder %s (%s)\n", displayName(it), it.ID)
	return nil
}

func (a *App) Move(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError("mv <target-folder-id> <id>...")
	}
	if err := a.driver.MoveItems(ctx, args[1:], args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Moved %d item(s).\n", len(args)-1)
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("rm <id>...")
	}
	if err := a.driver.DeleteItems(ctx, args); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Moved %d item(s) to the trash.\n", len(args))
	return nil
}

func (a *App) Purge(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("purge <id>...")
	}
	ok, err := Confirm(a.scanner, fmt.Sprintf("Delete %d item(s) for good?", len(args)), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Nothing deleted.")
		return nil
	}
	if err := a.driver.HardDeleteItems(ctx, args); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %d item(s).\n", len(args))
	return nil
}

func (a *App) Restore(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("restore <id>...")
	}
	if err := a.driver.RestoreItems(ctx, args); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Restored %d item(s).\n", len(args))
	return nil
}

func (a *App) Star(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("star <id>")
	}
	return a.driver.CreateFavorite(ctx, args[0])
}

func (a *App) Unstar(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("unstar <id>")
	}
	return a.driver.DeleteFavorite(ctx, args[0])
}
