package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/conorfennell/nerd/internal/api"
	"github.com/conorfennell/nerd/internal/domain"
	"github.com/conorfennell/nerd/internal/fields"
)

const newTopicPrompt = "New topic: "

// topicList lists every topic and ends with an inline row for creating or
// renaming one. The row only takes keystrokes while editing is set, so an
// empty list still answers the browse keys.
type topicList struct {
	ctx      context.Context
	store    TopicStore
	rows     *RowList
	input    textinput.Model
	renaming int64
	editing  bool
	saving   bool
	token    int
	loading  bool
}

func newTopicList(ctx context.Context, store TopicStore) *topicList {
	in := textinput.New()
	in.Prompt = newTopicPrompt
	in.Placeholder = "name"
	in.CharLimit = 100
	in.Cursor.SetMode(cursor.CursorStatic)
	return &topicList{
		ctx:   ctx,
		store: store,
		rows:  NewRowList(true, "ID", "Name"),
		input: in,
	}
}

func topicRow(t domain.Topic) Row {
	return Row{ID: t.ID, Cells: []string{strconv.FormatInt(t.ID, 10), t.Name}}
}

func rowTopic(r Row) domain.Topic {
	return domain.Topic{ID: r.ID, Name: r.Cells[1]}
}

func (t *topicList) mount(token int, _ *Session) tea.Cmd {
	t.token = token
	t.loading = true
	t.saving = false
	t.cancelRename()
	t.stopEditing()
	return t.load()
}

func (t *topicList) unmount() {
	t.stopEditing()
}

func (t *topicList) load() tea.Cmd {
	ctx, store, token := t.ctx, t.store, t.token
	return func() tea.Msg {
		topics, err := store.List(ctx)
		return topicsLoadedMsg{token: token, topics: topics, err: err}
	}
}

func (t *topicList) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case topicsLoadedMsg:
		t.loading = false
		if msg.err != nil {
			return notify("Loading topics failed: " + api.Describe(msg.err))
		}
		rows := make([]Row, len(msg.topics))
		for i, topic := range msg.topics {
			rows[i] = topicRow(topic)
		}
		t.rows.Render(rows)
		if t.editing {
			t.rows.SelectSentinel()
		}
	case topicCreatedMsg:
		t.saving = false
		if msg.err != nil {
			return notify("Creating topic failed: " + api.Describe(msg.err))
		}
		t.rows.InsertRow(topicRow(msg.topic))
		if t.renaming == 0 {
			t.input.Reset()
		}
	case topicRenamedMsg:
		t.saving = false
		if msg.err != nil {
			return notify("Renaming topic failed: " + api.Describe(msg.err))
		}
		t.rows.UpdateRow(topicRow(msg.topic))
		if t.renaming == msg.topic.ID {
			t.cancelRename()
			t.input.Reset()
			t.stopEditing()
			t.rows.Select(msg.topic.ID)
		}
	case topicDeletedMsg:
		if msg.err != nil {
			return notify("Deleting topic failed: " + api.Describe(msg.err))
		}
		t.rows.RemoveRow(msg.id)
		if t.renaming == msg.id {
			t.cancelRename()
			t.input.Reset()
			t.stopEditing()
		}
	case tea.KeyMsg:
		if t.editing {
			return t.editKey(msg)
		}
		return t.browseKey(msg)
	}
	return nil
}

func (t *topicList) browseKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Up):
		t.rows.MoveUp()
	case key.Matches(msg, keys.Down):
		t.rows.MoveDown()
	case key.Matches(msg, keys.Select):
		row, ok := t.rows.Selected()
		if !ok {
			if t.rows.OnSentinel() {
				t.startEditing()
			}
			return nil
		}
		return emit(openCardsMsg{scope: domain.ScopeOf(rowTopic(row))})
	case key.Matches(msg, keys.All):
		return emit(openCardsMsg{})
	case key.Matches(msg, keys.New):
		t.startEditing()
	case key.Matches(msg, keys.Rename):
		row, ok := t.rows.Selected()
		if !ok {
			return nil
		}
		t.renaming = row.ID
		t.input.Prompt = fmt.Sprintf("Rename %d: ", row.ID)
		t.input.SetValue(rowTopic(row).Name)
		t.startEditing()
	case key.Matches(msg, keys.Delete):
		row, ok := t.rows.Selected()
		if !ok {
			return nil
		}
		return t.remove(row.ID)
	case key.Matches(msg, keys.Refresh):
		t.loading = true
		return t.load()
	}
	return nil
}

func (t *topicList) editKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyEnter:
		return t.submit()
	case msg.Type == tea.KeyEsc:
		t.cancelRename()
		t.input.Reset()
		t.stopEditing()
		return nil
	case msg.Type == tea.KeyUp:
		t.stopEditing()
		t.rows.MoveUp()
		return nil
	}
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return cmd
}

// submit creates a topic from the inline row, or renames the topic the row
// is editing. Nothing is sent while an earlier submit is unanswered.
func (t *topicList) submit() tea.Cmd {
	if t.saving {
		return nil
	}
	values := map[string]string{"name": t.input.Value()}
	ctx, store, token := t.ctx, t.store, t.token
	if t.renaming == 0 {
		p, err := fields.TopicSchema.Collect(values, fields.Create)
		if err != nil {
			return notify(err.Error())
		}
		t.saving = true
		return func() tea.Msg {
			topic, err := store.Create(ctx, p)
			return topicCreatedMsg{token: token, topic: topic, err: err}
		}
	}
	p, err := fields.TopicSchema.Collect(values, fields.Update)
	if err != nil {
		return notify(err.Error())
	}
	if len(p) == 0 {
		return notify("Name " + fields.ErrRequired.Error())
	}
	t.saving = true
	id := t.renaming
	return func() tea.Msg {
		topic, err := store.Update(ctx, id, p)
		return topicRenamedMsg{token: token, topic: topic, err: err}
	}
}

func (t *topicList) remove(id int64) tea.Cmd {
	ctx, store, token := t.ctx, t.store, t.token
	return func() tea.Msg {
		err := store.Delete(ctx, id)
		return topicDeletedMsg{token: token, id: id, err: err}
	}
}

func (t *topicList) cancelRename() {
	t.renaming = 0
	t.input.Prompt = newTopicPrompt
}

func (t *topicList) startEditing() {
	t.rows.SelectSentinel()
	t.editing = true
	t.input.Focus()
}

func (t *topicList) stopEditing() {
	t.editing = false
	t.input.Blur()
}

func (t *topicList) capturesInput() bool {
	return t.editing
}

func (t *topicList) title(*Session) string {
	return "Topics"
}

func (t *topicList) view(int) string {
	if t.loading && t.rows.Len() == 0 {
		return mutedStyle.Render("Loading topics…")
	}
	return t.rows.View(t.input.View())
}

func (t *topicList) help() string {
	if t.editing {
		return "enter save • esc cancel • ↑ back to list"
	}
	return helpLine(keys.Select, keys.All, keys.New, keys.Rename, keys.Delete, keys.Quit)
}
