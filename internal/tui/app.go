// Package tui is the terminal client: a topic list, a card list scoped to
// one topic and a card form, switched by a single navigator.
package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/conorfennell/nerd/internal/api"
	"github.com/conorfennell/nerd/internal/domain"
)

// screen is a view controller mounted by Model. Only the mounted screen
// receives input and results.
type screen interface {
	mount(token int, s *Session) tea.Cmd
	unmount()
	update(msg tea.Msg) tea.Cmd
	capturesInput() bool
	title(s *Session) string
	view(width int) string
	help() string
}

// Model switches between the screens and owns the blocking notification.
// Each mount gets a new token; results stamped with an older token are
// dropped so a screen never sees the replies of a previous mount.
type Model struct {
	session *Session
	topics  *topicList
	cards   *cardList
	form    *cardForm
	active  screen
	mounts  int
	alert   string
	width   int
	logger  *slog.Logger
}

// New returns a navigator whose first screen is the topic list.
func New(ctx context.Context, topics TopicStore, cards CardStore, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Model{
		session: &Session{},
		topics:  newTopicList(ctx, topics),
		cards:   newCardList(ctx, cards),
		form:    newCardForm(ctx, cards),
		logger:  logger,
	}
}

// Run starts the terminal client and blocks until the user quits.
func Run(ctx context.Context, client *api.Client, logger *slog.Logger) error {
	m := New(ctx, client.Topics(), client.Cards(), logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run terminal client: %w", err)
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return m.switchTo(m.topics)
}

// Session returns the shared scope and draft.
func (m *Model) Session() Session {
	return *m.session
}

// Alert returns the pending notification, if any.
func (m *Model) Alert() string {
	return m.alert
}

func (m *Model) switchTo(s screen) tea.Cmd {
	if m.active != nil {
		m.active.unmount()
	}
	m.mounts++
	m.active = s
	return s.mount(m.mounts, m.session)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if r, ok := msg.(result); ok && r.mountToken() != m.mounts {
		m.logger.Debug("dropping stale result", "msg", fmt.Sprintf("%T", msg), "token", r.mountToken(), "mounted", m.mounts)
		if err := r.failure(); err != nil {
			m.alert = api.Describe(err)
		}
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case notifyMsg:
		m.logger.Info("notification", "text", msg.text)
		m.alert = msg.text
		return m, nil
	case openCardsMsg:
		m.session.Scope = msg.scope
		return m, m.switchTo(m.cards)
	case editCardMsg:
		m.session.Draft = msg.card
		return m, m.switchTo(m.form)
	case showCardsMsg:
		m.session.Draft = domain.Card{}
		return m, m.switchTo(m.cards)
	case showTopicsMsg:
		return m, m.switchTo(m.topics)
	case tea.KeyMsg:
		if key.Matches(msg, keys.Force) {
			return m, tea.Quit
		}
		if m.alert != "" {
			if key.Matches(msg, keys.Dismiss) {
				m.alert = ""
			}
			return m, nil
		}
		if key.Matches(msg, keys.Quit) && !m.active.capturesInput() {
			return m, tea.Quit
		}
	}
	return m, m.active.update(msg)
}

func (m *Model) View() string {
	if m.active == nil {
		return ""
	}
	body := m.active.view(m.width)
	help := m.active.help()
	if m.alert != "" {
		width := 60
		if m.width > 0 {
			width = min(width, m.width-4)
		}
		body = alertStyle.Width(width).Render(m.alert)
		help = helpLine(keys.Dismiss)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.active.title(m.session)),
		"",
		body,
		helpStyle.Render(help),
	)
}
