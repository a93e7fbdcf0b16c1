package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/conorfennell/nerd/internal/api"
	"github.com/conorfennell/nerd/internal/domain"
	"github.com/conorfennell/nerd/internal/fields"
)

// formInput is the editor of one visible schema field.
type formInput struct {
	field fields.Field
	line  textinput.Model
	area  textarea.Model
}

func newFormInput(f fields.Field) *formInput {
	in := &formInput{field: f}
	if f.Multiline {
		in.area = textarea.New()
		in.area.ShowLineNumbers = false
		in.area.CharLimit = 0
		in.area.SetHeight(5)
		in.area.SetWidth(72)
		in.area.Cursor.SetMode(cursor.CursorStatic)
		return in
	}
	in.line = textinput.New()
	in.line.Prompt = ""
	in.line.Width = 70
	in.line.Cursor.SetMode(cursor.CursorStatic)
	return in
}

func (in *formInput) value() string {
	if in.field.Multiline {
		return in.area.Value()
	}
	return in.line.Value()
}

func (in *formInput) setValue(v string) {
	if in.field.Multiline {
		in.area.SetValue(v)
		return
	}
	in.line.SetValue(v)
}

func (in *formInput) focus() {
	if in.field.Multiline {
		in.area.Focus()
		return
	}
	in.line.Focus()
}

func (in *formInput) blur() {
	in.area.Blur()
	in.line.Blur()
}

func (in *formInput) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if in.field.Multiline {
		in.area, cmd = in.area.Update(msg)
	} else {
		in.line, cmd = in.line.Update(msg)
	}
	return cmd
}

func (in *formInput) view() string {
	if in.field.Multiline {
		return in.area.View()
	}
	return in.line.View()
}

// cardForm edits one card. A card with an id is updated in place, a draft
// is created under its topic.
type cardForm struct {
	ctx    context.Context
	store  CardStore
	card   domain.Card
	inputs []*formInput
	focus  int
	token  int
	saving bool
}

func newCardForm(ctx context.Context, store CardStore) *cardForm {
	f := &cardForm{ctx: ctx, store: store}
	for _, field := range fields.CardSchema.Visible() {
		f.inputs = append(f.inputs, newFormInput(field))
	}
	return f
}

func (f *cardForm) mount(token int, s *Session) tea.Cmd {
	f.token = token
	f.saving = false
	f.SetData(s.Draft)
	return nil
}

func (f *cardForm) unmount() {
	for _, in := range f.inputs {
		in.blur()
	}
}

// SetData fills the inputs from card and focuses the first one.
func (f *cardForm) SetData(card domain.Card) {
	f.card = card
	values := fields.CardValues(card)
	for _, in := range f.inputs {
		in.setValue(values[in.field.Name])
	}
	f.setFocus(0)
}

// Values returns the current raw input values, including the hidden topic
// of the edited card.
func (f *cardForm) Values() map[string]string {
	values := fields.CardValues(f.card)
	for _, in := range f.inputs {
		values[in.field.Name] = in.value()
	}
	return values
}

// Submit issues exactly one request: Update when the card has an id,
// Create otherwise. A value that fails validation issues none.
func (f *cardForm) Submit() tea.Cmd {
	if f.saving {
		return nil
	}
	ctx, store, token := f.ctx, f.store, f.token
	if f.card.IsDraft() {
		p, err := fields.CardSchema.Collect(f.Values(), fields.Create)
		if err != nil {
			return notify(err.Error())
		}
		f.saving = true
		return func() tea.Msg {
			card, err := store.Create(ctx, p)
			return cardSavedMsg{token: token, card: card, err: err}
		}
	}
	p, err := fields.CardSchema.Collect(f.Values(), fields.Update)
	if err != nil {
		return notify(err.Error())
	}
	f.saving = true
	id := f.card.ID
	return func() tea.Msg {
		card, err := store.Update(ctx, id, p)
		return cardSavedMsg{token: token, card: card, err: err}
	}
}

func (f *cardForm) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case cardSavedMsg:
		f.saving = false
		if msg.err != nil {
			return notify("Saving card failed: " + api.Describe(msg.err))
		}
		return emit(showCardsMsg{})
	case tea.WindowSizeMsg:
		for _, in := range f.inputs {
			if in.field.Multiline {
				in.area.SetWidth(min(max(msg.Width-4, 20), 100))
			} else {
				in.line.Width = min(max(msg.Width-6, 20), 100)
			}
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Save):
			return f.Submit()
		case key.Matches(msg, keys.Next):
			f.setFocus((f.focus + 1) % len(f.inputs))
			return nil
		case key.Matches(msg, keys.Prev):
			f.setFocus((f.focus + len(f.inputs) - 1) % len(f.inputs))
			return nil
		case msg.Type == tea.KeyEsc:
			return emit(showCardsMsg{})
		}
		return f.inputs[f.focus].update(msg)
	}
	return nil
}

func (f *cardForm) setFocus(i int) {
	for _, in := range f.inputs {
		in.blur()
	}
	f.focus = i
	f.inputs[i].focus()
}

func (f *cardForm) capturesInput() bool {
	return true
}

func (f *cardForm) title(s *Session) string {
	if f.card.IsDraft() {
		return "Topics › " + s.Scope.Label() + " › New card"
	}
	return "Topics › " + s.Scope.Label() + " › Edit card"
}

func (f *cardForm) view(int) string {
	var b strings.Builder
	for i, in := range f.inputs {
		label := in.field.Label
		if i == f.focus {
			label = selectedStyle.Render(label)
		} else {
			label = labelStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(in.view())
		b.WriteString("\n\n")
	}
	if f.saving {
		b.WriteString(mutedStyle.Render("Saving…"))
	}
	return b.String()
}

func (f *cardForm) help() string {
	return helpLine(keys.Save, keys.Next, keys.Prev) + " • esc cancel"
}
