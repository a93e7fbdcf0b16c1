package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/conorfennell/nerd/internal/api"
	"github.com/conorfennell/nerd/internal/domain"
)

// cardList lists the cards of the current scope.
type cardList struct {
	ctx     context.Context
	store   CardStore
	rows    *RowList
	scope   domain.Scope
	token   int
	loading bool
}

func newCardList(ctx context.Context, store CardStore) *cardList {
	return &cardList{
		ctx:   ctx,
		store: store,
		rows:  NewRowList(false, "ID", "Title"),
	}
}

func cardRow(c domain.Card) Row {
	return Row{ID: c.ID, Cells: []string{strconv.FormatInt(c.ID, 10), c.Title}}
}

func (c *cardList) mount(token int, s *Session) tea.Cmd {
	c.token = token
	c.scope = s.Scope
	c.loading = true
	c.rows.Render(nil)
	return c.load()
}

func (c *cardList) unmount() {}

func (c *cardList) load() tea.Cmd {
	ctx, store, token, scope := c.ctx, c.store, c.token, c.scope
	return func() tea.Msg {
		cards, err := store.List(ctx, scope)
		return cardsLoadedMsg{token: token, cards: cards, err: err}
	}
}

func (c *cardList) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case cardsLoadedMsg:
		c.loading = false
		if msg.err != nil {
			return notify("Loading cards failed: " + api.Describe(msg.err))
		}
		rows := make([]Row, len(msg.cards))
		for i, card := range msg.cards {
			rows[i] = cardRow(card)
		}
		c.rows.Render(rows)
	case cardFetchedMsg:
		if msg.err != nil {
			return notify("Opening card failed: " + api.Describe(msg.err))
		}
		return emit(editCardMsg{card: msg.card})
	case cardDeletedMsg:
		if msg.err != nil {
			return notify("Deleting card failed: " + api.Describe(msg.err))
		}
		c.rows.RemoveRow(msg.id)
	case tea.KeyMsg:
		return c.key(msg)
	}
	return nil
}

func (c *cardList) key(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Up):
		c.rows.MoveUp()
	case key.Matches(msg, keys.Down):
		c.rows.MoveDown()
	case key.Matches(msg, keys.Select):
		row, ok := c.rows.Selected()
		if !ok {
			return nil
		}
		return c.fetch(row.ID)
	case key.Matches(msg, keys.New):
		if c.scope.Unscoped() {
			return notify("Select a topic before adding a card")
		}
		return emit(editCardMsg{card: domain.NewCardDraft(c.scope.TopicID)})
	case key.Matches(msg, keys.Delete):
		row, ok := c.rows.Selected()
		if !ok {
			return nil
		}
		return c.remove(row.ID)
	case key.Matches(msg, keys.Refresh):
		return c.load()
	case key.Matches(msg, keys.Back):
		return emit(showTopicsMsg{})
	}
	return nil
}

func (c *cardList) fetch(id int64) tea.Cmd {
	ctx, store, token := c.ctx, c.store, c.token
	return func() tea.Msg {
		card, err := store.Get(ctx, id)
		return cardFetchedMsg{token: token, card: card, err: err}
	}
}

func (c *cardList) remove(id int64) tea.Cmd {
	ctx, store, token := c.ctx, c.store, c.token
	return func() tea.Msg {
		err := store.Delete(ctx, id)
		return cardDeletedMsg{token: token, id: id, err: err}
	}
}

func (c *cardList) capturesInput() bool {
	return false
}

func (c *cardList) title(s *Session) string {
	return "Topics › " + s.Scope.Label()
}

func (c *cardList) view(int) string {
	if c.loading {
		return mutedStyle.Render("Loading cards…")
	}
	return c.rows.View("")
}

func (c *cardList) help() string {
	return helpLine(keys.Select, keys.New, keys.Delete, keys.Refresh, keys.Back, keys.Quit)
}
