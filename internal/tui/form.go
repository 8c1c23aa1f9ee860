package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/inventory/internal/model"
)

const (
	fieldName = iota
	fieldDescription
	fieldCount
)

// form is the add/edit dialog: two text inputs, one of them focused.
//
// CharLimit stops typing at the column limits so the user rarely hits a
// validation error for length, but the service still validates on save;
// the limit is a convenience, not the rule.
type form struct {
	target *model.Item // nil when adding
	seq    int         // which opening of the form this is, see Model.formSeq
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
	saving bool
}

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 50
	// A steady cursor; blinking would schedule a tick command per keystroke.
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// newForm opens an empty form, or one prefilled from target when editing.
func newForm(target *model.Item) form {
	f := form{target: target}
	f.inputs[fieldName] = newTextInput("Name (3-50 characters)", model.MaxNameLength)
	f.inputs[fieldDescription] = newTextInput("Description (optional)", model.MaxDescriptionLength)

	if target != nil {
		f.inputs[fieldName].SetValue(target.Name)
		f.inputs[fieldDescription].SetValue(target.Description)
		for i := range f.inputs {
			f.inputs[i].CursorEnd()
		}
	}

	f.inputs[fieldName].Focus()
	return f
}

func (f form) editing() bool { return f.target != nil }

func (f form) title() string {
	if f.editing() {
		return "Edit item"
	}
	return "Add new item"
}

// values returns what the user typed, trimmed.
func (f form) values() (name, description string) {
	return strings.TrimSpace(f.inputs[fieldName].Value()),
		strings.TrimSpace(f.inputs[fieldDescription].Value())
}

// cycle moves focus forward (delta 1) or backward (delta -1).
func (f form) cycle(delta int) form {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
	return f
}

// update routes a message to the focused input.
func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) view() string {
	var b strings.Builder

	head := titleStyle.Render(f.title())
	if f.saving {
		head += " " + mutedStyle.Render("saving...")
	}
	b.WriteString(head + "\n")

	labels := [fieldCount]string{"Name", "Description"}
	for i := range f.inputs {
		label := labelStyle.Render(labels[i])
		if i == f.focus {
			label = accentStyle.Inherit(labelStyle).Render(labels[i])
		}
		b.WriteString(label + f.inputs[i].View() + "\n")
	}

	if f.err != "" {
		b.WriteString(errorStyle.Render("✖ " + f.err))
	}

	return formStyle.Render(strings.TrimRight(b.String(), "\n"))
}
