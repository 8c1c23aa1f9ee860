// Package tui is the interactive front end: a Bubble Tea program showing
// the inventory as a table with live search, sorting and an add/edit form.
//
// TEA IN ONE PARAGRAPH:
// The Model is a plain value. Update receives a message (a key press, a
// window resize, or the result of a command), returns the next Model and
// optionally a tea.Cmd. Commands run on their own goroutine and report back
// with another message. All store access happens inside commands, so the UI
// never blocks on SQLite.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/inventory/internal/apperror"
	"github.com/sakif/inventory/internal/model"
	"github.com/sakif/inventory/internal/service"
)

// ItemService is the part of service.ItemService the TUI drives.
type ItemService interface {
	Create(ctx context.Context, name, description string) (*model.Item, error)
	List(ctx context.Context, q service.Query) ([]model.Item, error)
	Update(ctx context.Context, id, name, description string) (*model.Item, error)
	Delete(ctx context.Context, id string) error
}

// Options configure a new Model.
type Options struct {
	Sort service.SortOrder
}

// CreatedLayout is how the created column renders timestamps.
const CreatedLayout = "02.01.2006 15:04"

const selectFirst = "select an item first"

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeForm
	modeConfirm
)

// ------- messages -------

type itemsLoadedMsg struct {
	seq   int
	items []model.Item
	err   error
}

type itemSavedMsg struct {
	seq     int // form.seq of the form that sent it
	item    *model.Item
	created bool
	err     error
}

type itemDeletedMsg struct {
	item model.Item
	err  error
}

// Model is the Bubble Tea model of the inventory screen.
type Model struct {
	ctx context.Context
	svc ItemService

	keys     keyMap
	formKeys formKeys
	help     help.Model
	table    table.Model
	search   textinput.Model
	form     form

	mode    mode
	sort    service.SortOrder
	items   []model.Item // rows currently shown, same order as the table
	pending *model.Item  // awaiting delete confirmation

	// loadSeq numbers List requests; a result for an older request is dropped
	// so fast typing in the search box can't show stale rows.
	loadSeq int

	// formSeq numbers form openings; a save result only closes the form
	// that sent it.
	formSeq int

	status    string
	statusErr bool
}

// New builds the initial model. Init issues the first load.
func New(ctx context.Context, svc ItemService, opts Options) Model {
	sort := opts.Sort
	if sort == "" {
		sort = service.DefaultSortOrder
	}

	t := table.New(
		table.WithColumns(columns(0)),
		table.WithFocused(true),
		table.WithHeight(12),
		table.WithStyles(tableStyles()),
	)

	search := newTextInput("search name or description", 0)
	search.Prompt = "/ "

	return Model{
		ctx:      ctx,
		svc:      svc,
		keys:     defaultKeyMap(),
		formKeys: defaultFormKeys(),
		help:     help.New(),
		table:    t,
		search:   search,
		sort:     sort,
		loadSeq:  1,
	}
}

// Run starts the program on the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, svc ItemService, opts Options) error {
	p := tea.NewProgram(New(ctx, svc, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		// Interrupted by a signal: a normal way to leave.
		return nil
	}
	return err
}

// columns sizes the table for the given terminal width; 0 means unknown.
func columns(width int) []table.Column {
	desc := 40
	if width > 0 {
		// ID + name + created + cell padding + panel border.
		if d := width - (36 + 24 + 16 + 8 + 4); d > 20 {
			desc = d
		} else {
			desc = 20
		}
	}
	return []table.Column{
		{Title: "ID", Width: 36},
		{Title: "Name", Width: 24},
		{Title: "Description", Width: desc},
		{Title: "Created", Width: 16},
	}
}

func rows(items []model.Item) []table.Row {
	out := make([]table.Row, len(items))
	for i, it := range items {
		out[i] = table.Row{it.ID, it.Name, it.Description, it.CreatedAt.Format(CreatedLayout)}
	}
	return out
}

// ------- commands -------

func (m Model) fetch(seq int) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	q := service.Query{Search: m.search.Value(), Sort: m.sort}
	return func() tea.Msg {
		items, err := svc.List(ctx, q)
		return itemsLoadedMsg{seq: seq, items: items, err: err}
	}
}

// reload starts a fresh List and makes it the only one whose answer counts.
func (m *Model) reload() tea.Cmd {
	m.loadSeq++
	return m.fetch(m.loadSeq)
}

func (m Model) save(f form) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	name, description := f.values()
	target, seq := f.target, f.seq
	return func() tea.Msg {
		if target == nil {
			item, err := svc.Create(ctx, name, description)
			return itemSavedMsg{seq: seq, item: item, created: true, err: err}
		}
		item, err := svc.Update(ctx, target.ID, name, description)
		return itemSavedMsg{seq: seq, item: item, err: err}
	}
}

func (m Model) remove(item model.Item) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		return itemDeletedMsg{item: item, err: svc.Delete(ctx, item.ID)}
	}
}

// ------- tea.Model -------

func (m Model) Init() tea.Cmd {
	return m.fetch(m.loadSeq)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.table.SetColumns(columns(msg.Width))
		// title, search, status, help, panel border, table header
		if h := msg.Height - 9; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case itemsLoadedMsg:
		return m.loaded(msg), nil

	case itemSavedMsg:
		return m.saved(msg)

	case itemDeletedMsg:
		return m.deleted(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	return m, nil
}

func (m Model) loaded(msg itemsLoadedMsg) Model {
	if msg.seq != m.loadSeq {
		return m
	}
	if msg.err != nil {
		// Keep showing the last good rows; the failure goes to the status line.
		return m.fail(msg.err)
	}

	m.items = msg.items
	m.table.SetRows(rows(m.items))
	if c := m.table.Cursor(); c >= len(m.items) || c < 0 {
		m.table.SetCursor(max(len(m.items)-1, 0))
	}
	return m
}

// openForm shows a fresh form for target (nil adds a new item).
func (m *Model) openForm(target *model.Item) {
	m.formSeq++
	m.mode = modeForm
	m.form = newForm(target)
	m.form.seq = m.formSeq
}

func (m Model) saved(msg itemSavedMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeForm || msg.seq != m.form.seq {
		// The form that sent it was cancelled while the save was in flight,
		// and another one may be open by now.
		if msg.err == nil {
			cmd := m.reload()
			return m, cmd
		}
		return m, nil
	}
	m.form.saving = false

	if msg.err != nil {
		// The form stays open so nothing typed is lost.
		m.form.err = apperror.Describe(msg.err)
		return m, nil
	}

	m.mode = modeBrowse
	if msg.created {
		m = m.ok(fmt.Sprintf("added %q", msg.item.Name))
	} else {
		m = m.ok(fmt.Sprintf("updated %q", msg.item.Name))
	}
	cmd := m.reload()
	return m, cmd
}

func (m Model) deleted(msg itemDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m = m.fail(msg.err)
		cmd := m.reload()
		return m, cmd
	}

	kept := make([]model.Item, 0, len(m.items))
	for i := range m.items {
		if !m.items[i].Same(&msg.item) {
			kept = append(kept, m.items[i])
		}
	}
	m.items = kept
	m.table.SetRows(rows(m.items))

	m = m.ok(fmt.Sprintf("deleted %q", msg.item.Name))
	cmd := m.reload()
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.Focus()
		m.table.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if m.search.Value() == "" {
			return m, nil
		}
		m.search.SetValue("")
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, m.keys.Sort):
		m.sort = m.sort.Next()
		m = m.ok("sorted " + m.sort.Label())
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, m.keys.Reload):
		m.status = ""
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, m.keys.Add):
		m.openForm(nil)
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		item, ok := m.selected()
		if !ok {
			return m.warn(selectFirst), nil
		}
		m.openForm(&item)
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.selected()
		if !ok {
			return m.warn(selectFirst), nil
		}
		m.mode = modeConfirm
		m.pending = &item
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// Keep the filter, go back to the table.
		m.leaveSearch()
		return m, nil
	case "esc":
		m.leaveSearch()
		if m.search.Value() == "" {
			return m, nil
		}
		m.search.SetValue("")
		cmd := m.reload()
		return m, cmd
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	reload := m.reload()
	return m, tea.Batch(cmd, reload)
}

func (m *Model) leaveSearch() {
	m.mode = modeBrowse
	m.search.Blur()
	m.table.Focus()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.formKeys.Cancel):
		m.mode = modeBrowse
		m.form = form{}
		return m, nil

	case key.Matches(msg, m.formKeys.Save):
		if m.form.saving {
			return m, nil
		}
		m.form.saving = true
		m.form.err = ""
		return m, m.save(m.form)

	case msg.String() == "tab":
		m.form = m.form.cycle(1)
		return m, nil

	case msg.String() == "shift+tab":
		m.form = m.form.cycle(-1)
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		item := *m.pending
		m.pending = nil
		m.mode = modeBrowse
		return m, m.remove(item)

	case key.Matches(msg, m.keys.Cancel):
		m.pending = nil
		m.mode = modeBrowse
		m.status = ""
		return m, nil
	}
	return m, nil
}

// selected returns the item under the table cursor.
func (m Model) selected() (model.Item, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.items) {
		return model.Item{}, false
	}
	return m.items[c], true
}

func (m Model) ok(s string) Model {
	m.status, m.statusErr = successStyle.Render("✔ "+s), false
	return m
}

func (m Model) warn(s string) Model {
	m.status, m.statusErr = warnStyle.Render("! "+s), true
	return m
}

func (m Model) fail(err error) Model {
	m.status, m.statusErr = errorStyle.Render("✖ "+apperror.Describe(err)), true
	return m
}

func (m Model) View() string {
	var b strings.Builder

	header := fmt.Sprintf("%s   %s %d   %s %s",
		titleStyle.Render("Inventory"),
		accentStyle.Render("Items"), len(m.items),
		accentStyle.Render("Sort"), m.sort.Label(),
	)
	b.WriteString(header + "\n")

	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}

	if len(m.items) == 0 {
		b.WriteString(mutedStyle.Render("no items") + "\n")
	} else {
		b.WriteString(m.table.View() + "\n")
	}

	switch m.mode {
	case modeForm:
		b.WriteString(m.form.view() + "\n")
		b.WriteString(m.help.View(m.formKeys))
	case modeConfirm:
		b.WriteString(warnStyle.Render(fmt.Sprintf("Delete %q? (y/n)", m.pending.Name)) + "\n")
	default:
		if m.status != "" {
			b.WriteString(m.status + "\n")
		}
		b.WriteString(m.help.View(m.keys))
	}

	return panelStyle.Render(b.String())
}
