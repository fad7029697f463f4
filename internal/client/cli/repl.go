package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. Every handler
// receives the arguments following the command name.
type execIface interface {
	Config(ctx context.Context, args []string) error
	Whoami(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Cd(ctx context.Context, args []string) error
	Tree(ctx context.Context, args []string) error
	Breadcrumb(ctx context.Context, args []string) error
	Mkdir(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Reupload(ctx context.Context, args []string) error
	Finalize(ctx context.Context, args []string) error
	Move(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Purge(ctx context.Context, args []string) error
	Restore(ctx context.Context, args []string) error
	Trash(ctx context.Context, args []string) error
	Recent(ctx context.Context, args []string) error
	Favorites(ctx context.Context, args []string) error
	Star(ctx context.Context, args []string) error
	Unstar(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Shares(ctx context.Context, args []string) error
	Invite(ctx context.Context, args []string) error
	Pick(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  config                      reload the server configuration
  whoami                      show the current user
  ls [folder-id]              list a folder (default: current)
  cd <folder-id> | .. | /     change the current folder
  tree [folder-id]            show the folder tree
  breadcrumb [item-id]        show the path to an item
  mkdir <title>               create a folder here
  upload <path>               upload a local file here
  reupload <item-id> <path>   upload again with a fresh policy
  finalize <item-id>          confirm an upload that already reached storage
  mv <target-id> <id>...      move items into a folder
  rm <id>...                  move items to the trash
  purge <id>...               delete trashed items for good
  restore <id>...             restore items from the trash
  trash | recent | favorites  list special views
  star <id> | unstar <id>     manage favorites
  search <title>              search items by title
  shares <item-id>            list accesses and invitations
  invite <item-id> <email> <role>
  pick                        select items in the browser explorer
  exit | quit`

// runREPL reads commands from scanner and dispatches them to a until EOF,
// "exit"/"quit", or ctx is cancelled.
//
// Handler errors are rendered with describeError; errors that already led
// to a redirect are not printed.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("drive %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)

		case "config":
			err = a.Config(ctx, args)

		case "whoami":
			err = a.Whoami(ctx, args)

		case "ls", "l":
			err = a.List(ctx, args)

		case "cd":
			err = a.Cd(ctx, args)

		case "tree":
			err = a.Tree(ctx, args)

		case "breadcrumb", "pwd":
			err = a.Breadcrumb(ctx, args)

		case "mkdir":
			err = a.Mkdir(ctx, args)

		case "upload", "put":
			err = a.Upload(ctx, args)

		case "reupload":
			err = a.Reupload(ctx, args)

		case "finalize":
			err = a.Finalize(ctx, args)

		case "mv":
			err = a.Move(ctx, args)

		case "rm":
			err = a.Remove(ctx, args)

		case "purge":
			err = a.Purge(ctx, args)

		case "restore":
			err = a.Restore(ctx, args)

		case "trash":
			err = a.Trash(ctx, args)

		case "recent":
			err = a.Recent(ctx, args)

		case "favorites", "favs":
			err = a.Favorites(ctx, args)

		case "star":
			err = a.Star(ctx, args)

		case "unstar":
			err = a.Unstar(ctx, args)

		case "search", "find":
			err = a.Search(ctx, args)

		case "shares":
			err = a.Shares(ctx, args)

		case "invite":
			err = a.Invite(ctx, args)

		case "pick":
			err = a.Pick(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			if msg := describeError(err); msg != "" {
				printlnFn(msg)
			}
		}
	}
}
