package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sakif/inventory/internal/model"
	"github.com/sakif/inventory/internal/service"
)

// timeLayout matches the created column of the interactive table.
const timeLayout = "02.01.2006 15:04"

const maxDescriptionWidth = 60

// printer renders to one output and one error stream. Each stream gets its
// own Lip Gloss renderer, so colour is decided per stream: piping
// `inventory ls` into a file yields plain text while errors on the terminal
// stay red.
type printer struct {
	out, err io.Writer

	title, accent, muted, success, failure lipgloss.Style
	panel                                  lipgloss.Style
}

func newPrinter(stdout, stderr io.Writer) *printer {
	stdout = writerOr(stdout, os.Stdout)
	stderr = writerOr(stderr, os.Stderr)

	ro := lipgloss.NewRenderer(stdout)
	re := lipgloss.NewRenderer(stderr)

	return &printer{
		out:     stdout,
		err:     stderr,
		title:   ro.NewStyle().Bold(true),
		accent:  ro.NewStyle().Foreground(lipgloss.Color("12")),
		muted:   ro.NewStyle().Faint(true),
		success: ro.NewStyle().Foreground(lipgloss.Color("42")),
		failure: re.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		panel: ro.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
	}
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}

func (p *printer) ok(msg string) {
	fmt.Fprintln(p.out, p.success.Render("✔ "+msg))
}

func (p *printer) fail(msg string) {
	fmt.Fprintln(p.err, p.failure.Render("✖ "+msg))
}

func (p *printer) hint(msg string) {
	fmt.Fprintln(p.err, "Hint: "+msg)
}

func (p *printer) help(w io.Writer) {
	PrintHelp(w)
}

// list prints the header line and the item table inside a panel.
func (p *printer) list(items []model.Item, search string, sort service.SortOrder) {
	if sort == "" {
		sort = service.DefaultSortOrder
	}

	header := fmt.Sprintf("%s   %s %d   %s %s",
		p.title.Render("Inventory"),
		p.accent.Render("Items"), len(items),
		p.accent.Render("Sort"), sort.Label(),
	)
	if search = strings.TrimSpace(search); search != "" {
		header += fmt.Sprintf("   %s %q", p.accent.Render("Filter"), search)
	}

	lines := []string{header, ""}
	if len(items) == 0 {
		lines = append(lines, p.muted.Render("no items"))
	} else {
		lines = append(lines, p.table(items))
	}
	lines = append(lines, "", p.muted.Render("Tip: add with `inventory add \"Claw hammer\" steel head`"))

	fmt.Fprintln(p.out, p.panel.Render(strings.Join(lines, "\n")))
}

func (p *printer) table(items []model.Item) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.muted).
		Headers("ID", "NAME", "DESCRIPTION", "CREATED")

	for _, it := range items {
		t.Row(it.ID, it.Name, truncate(it.Description, maxDescriptionWidth), it.CreatedAt.Format(timeLayout))
	}
	return t.String()
}

// item prints every field of one item.
func (p *printer) item(it *model.Item) {
	description := it.Description
	if description == "" {
		description = p.muted.Render("(none)")
	}

	label := p.accent.Width(12)
	lines := []string{
		p.title.Render(it.Name),
		"",
		label.Render("ID") + it.ID,
		label.Render("Description") + description,
		label.Render("Created") + it.CreatedAt.Format(timeLayout),
		label.Render("Updated") + it.UpdatedAt.Format(timeLayout),
	}
	fmt.Fprintln(p.out, p.panel.Render(strings.Join(lines, "\n")))
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
