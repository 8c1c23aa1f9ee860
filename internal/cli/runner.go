// Package cli is the scriptable front end: one subcommand per store
// operation, rendered with Lip Gloss, reporting through the exit code.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sakif/inventory/internal/apperror"
	"github.com/sakif/inventory/internal/model"
	"github.com/sakif/inventory/internal/service"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// ItemService is the part of service.ItemService the CLI drives.
type ItemService interface {
	Create(ctx context.Context, name, description string) (*model.Item, error)
	GetByID(ctx context.Context, id string) (*model.Item, error)
	List(ctx context.Context, q service.Query) ([]model.Item, error)
	Update(ctx context.Context, id, name, description string) (*model.Item, error)
	Delete(ctx context.Context, id string) error
}

// Options tune output behavior from root flags.
type Options struct {
	Sort   service.SortOrder
	Stdout io.Writer // os.Stdout when nil
	Stderr io.Writer // os.Stderr when nil
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, svc ItemService, args []string, opt Options) int {
	p := newPrinter(opt.Stdout, opt.Stderr)

	if len(args) == 0 {
		p.help(p.err)
		return ExitUsage
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		p.help(p.out)
		return ExitOK

	case "ls":
		return doList(ctx, svc, p, strings.Join(a, " "), opt.Sort)

	case "show":
		if len(a) != 1 {
			p.fail("usage: inventory show <id>")
			return ExitUsage
		}
		return doShow(ctx, svc, p, a[0])

	case "add":
		if len(a) == 0 {
			p.fail("usage: inventory add <name> [description...]")
			return ExitUsage
		}
		return doAdd(ctx, svc, p, a[0], strings.Join(a[1:], " "))

	case "edit":
		if len(a) < 2 {
			p.fail("usage: inventory edit <id> <name> [description...]")
			return ExitUsage
		}
		return doEdit(ctx, svc, p, a[0], a[1], strings.Join(a[2:], " "))

	case "rm":
		if len(a) != 1 {
			p.fail("usage: inventory rm <id>")
			return ExitUsage
		}
		return doRemove(ctx, svc, p, a[0])
	}

	p.fail("unknown subcommand: " + cmd)
	fmt.Fprintln(p.err)
	p.help(p.err)
	return ExitUsage
}

// PrintHelp writes the subcommand overview.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, helpText)
}

const helpText = `inventory - a small local inventory

Usage:
  inventory [flags]                  Open the interactive table
  inventory [flags] <subcommand> [args]

Subcommands:
  ls [query...]                      List items, optionally filtered
  show <id>                          Show one item
  add <name> [description...]        Add an item (quote multi-word names)
  edit <id> <name> [description...]  Replace name and description
  rm <id>                            Remove an item

Flags:
  --db-path <file>                   Database file (default inventory.db)
  --sort name-asc|name-desc|newest   Order used by ls and the table
  --help                             Show all flags and environment variables

Examples:
  inventory add "Claw hammer" steel head, 450g
  inventory ls hammer
  inventory --sort=newest ls
  inventory rm 3f0c1d0e-6a55-4c1e-9a57-3f0f4d1c2b11
`

// -------------- subcommand impls ----------------

func doList(ctx context.Context, svc ItemService, p *printer, search string, sort service.SortOrder) int {
	items, err := svc.List(ctx, service.Query{Search: search, Sort: sort})
	if err != nil {
		p.fail(apperror.Describe(err))
		return ExitError
	}
	p.list(items, search, sort)
	return ExitOK
}

func doShow(ctx context.Context, svc ItemService, p *printer, id string) int {
	item, err := svc.GetByID(ctx, id)
	if err != nil {
		p.fail(apperror.Describe(err))
		return ExitError
	}
	p.item(item)
	return ExitOK
}

func doAdd(ctx context.Context, svc ItemService, p *printer, name, description string) int {
	item, err := svc.Create(ctx, name, description)
	if err != nil {
		p.fail(apperror.Describe(err))
		return ExitError
	}
	p.ok(fmt.Sprintf("added %q (%s)", item.Name, item.ID))
	return ExitOK
}

func doEdit(ctx context.Context, svc ItemService, p *printer, id, name, description string) int {
	item, err := svc.Update(ctx, id, name, description)
	if err != nil {
		p.fail(apperror.Describe(err))
		return ExitError
	}
	p.ok(fmt.Sprintf("updated %q", item.Name))
	return ExitOK
}

func doRemove(ctx context.Context, svc ItemService, p *printer, id string) int {
	if err := svc.Delete(ctx, id); err != nil {
		p.fail(apperror.Describe(err))
		if errors.Is(err, apperror.ErrNotFound) {
			p.hint("run `inventory ls` to see valid ids")
		}
		return ExitError
	}
	p.ok("removed")
	return ExitOK
}
