package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/suitenumerique/drive-sub001/internal/client/models"
	"github.com/suitenumerique/drive-sub001/internal/client/timebounds"
	"github.com/suitenumerique/drive-sub001/internal/client/transport"
	"github.com/suitenumerique/drive-sub001/internal/common"
)

func (a *App) Config(ctx context.Context, _ []string) error {
	if err := a.LoadConfig(ctx); err != nil {
		return err
	}
	cfg := a.store.Get()
	fmt.Fprintf(a.out, "Environment: %s\nLanguage:    %s\n", cfg.Environment, cfg.LanguageCode)

	bounds := timebounds.Resolve(cfg)
	ops := make([]string, 0, len(bounds))
	for op := range bounds {
		ops = append(ops, string(op))
	}
	slices.Sort(ops)
	for _, op := range ops {
		b := bounds[timebounds.Operation(op)]
		fmt.Fprintf(a.out, "  %-16s still working after %s, fails after %s\n", op, b.StillWorking, b.Fail)
	}
	return nil
}

func (a *App) Whoami(ctx context.Context, _ []string) error {
	u, err := a.driver.GetMe(ctx)
	if err != nil {
		if transport.IsRedirecting(err) {
			if back := a.nav.savedRedirect(); back != "" {
				fmt.Fprintf(a.out, "After logging in, resume at %s\n", back)
			}
		}
		return err
	}
	a.me = u
	if u.FullName != "" {
		fmt.Fprintf(a.out, "%s <%s>\n", u.FullName, u.Email)
	} else {
		fmt.Fprintln(a.out, u.Email)
	}
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	id := a.currentFolderID()
	if len(args) > 0 {
		id = args[0]
	}

	var (
		page *models.PaginatedItems
		err  error
	)
	if id == "" {
		page, err = a.driver.GetItems(ctx, models.ItemFilters{})
	} else {
		page, err = a.driver.GetChildren(ctx, id, models.ItemFilters{})
	}
	if err != nil {
		return err
	}
	printItems(a.out, page)
	return nil
}

func (a *App) Cd(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("cd <folder-id> | .. | /")
	}

	switch args[0] {
	case "/", "~":
		a.path = nil
	case "..":
		if len(a.path) > 0 {
			a.path = a.path[:len(a.path)-1]
		}
	default:
		it, err := a.driver.GetItem(ctx, args[0])
		if err != nil {
			return err
		}
		if !it.IsFolder() {
			return common.NewAppError(displayName(it)+" is not a folder", nil)
		}
		a.path = append(a.path, folder{ID: it.ID, Title: displayName(it)})
	}

	a.nav.visit(a.currentFolderID())
	return nil
}

func (a *App) Tree(ctx context.Context, args []string) error {
	id := a.currentFolderID()
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		return usageError("tree <folder-id> (or cd into a folder first)")
	}

	root, err := a.driver.GetTree(ctx, id)
	if err != nil {
		return err
	}
	printTree(a.out, root, 0)
	return nil
}

func (a *App) Breadcrumb(ctx context.Context, args []string) error {
	id := a.currentFolderID()
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		fmt.Fprintln(a.out, "/")
		return nil
	}

	crumbs, err := a.driver.GetBreadcrumb(ctx, id)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(crumbs))
	for _, c := range crumbs {
		names = append(names, displayName(c))
	}
	fmt.Fprintln(a.out, "/"+strings.Join(names, "/"))
	return nil
}

func (a *App) Trash(ctx context.Context, _ []string) error {
	return a.printPage(a.driver.GetTrashItems(ctx, models.ItemFilters{}))
}

func (a *App) Recent(ctx context.Context, _ []string) error {
	return a.printPage(a.driver.GetRecentItems(ctx, models.ItemFilters{}))
}

func (a *App) Favorites(ctx context.Context, _ []string) error {
	return a.printPage(a.driver.GetFavoriteItems(ctx, models.ItemFilters{}))
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("search <title>")
	}
	return a.printPage(a.driver.SearchItems(ctx, models.ItemFilters{Title: strings.Join(args, " ")}))
}

func (a *App) printPage(page *models.PaginatedItems, err error) error {
	if err != nil {
		return err
	}
	printItems(a.out, page)
	return nil
}
