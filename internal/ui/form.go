package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"farmdash/internal/farm"
	"farmdash/internal/inventory"
)

const (
	fieldName = iota
	fieldQuantity
	fieldPrice
)

// cropForm backs both "new crop" and "edit crop". When editing, its values
// become the answers to EditCrop's prompts.
type cropForm struct {
	editID  farm.ID
	inputs  []textinput.Model
	focus   int
	err     error
	pending bool
}

func newCropForm(c *farm.Crop) cropForm {
	mk := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Prompt = "> "
		ti.CharLimit = 64
		ti.Width = 28
		return ti
	}
	f := cropForm{inputs: []textinput.Model{
		mk("crop name"),
		mk("quantity in kg"),
		mk("price per kg"),
	}}
	if c != nil {
		f.editID = c.ID
		f.inputs[fieldName].SetValue(c.Name)
		f.inputs[fieldQuantity].SetValue(strconv.FormatFloat(c.Quantity, 'f', -1, 64))
		f.inputs[fieldPrice].SetValue(strconv.FormatFloat(c.Price, 'f', -1, 64))
	}
	f.inputs[fieldName].Focus()
	return f
}

func (f cropForm) editing() bool { return f.editID != "" }

func (f cropForm) title() string {
	if f.editing() {
		return "Edit crop"
	}
	return "New crop"
}

func (f cropForm) values() (name, qty, price string) {
	return f.inputs[fieldName].Value(), f.inputs[fieldQuantity].Value(), f.inputs[fieldPrice].Value()
}

func (f cropForm) answers() inventory.Answers {
	name, qty, price := f.values()
	return inventory.Answers{Values: map[string]string{
		inventory.PromptName:     name,
		inventory.PromptQuantity: qty,
		inventory.PromptPrice:    price,
	}}
}

func (f *cropForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f cropForm) lastField() bool { return f.focus == len(f.inputs)-1 }

func (f cropForm) update(msg tea.Msg) (cropForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f cropForm) view(st styles) string {
	labels := []string{"Name", "Quantity (kg)", "Price (/kg)"}
	lines := []string{st.PaneTitle.Render(f.title()), ""}
	for i, in := range f.inputs {
		lines = append(lines, labels[i], in.View(), "")
	}
	if f.err != nil {
		lines = append(lines, st.Error.Render(f.err.Error()), "")
	}
	if f.pending {
		lines = append(lines, "Saving…")
	} else {
		lines = append(lines, st.Muted.Render("tab=next field  enter=save  esc=cancel"))
	}
	return st.Modal.Render(strings.Join(lines, "\n"))
}
