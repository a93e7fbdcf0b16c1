package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/conorfennell/nerd/internal/domain"
)

// result is a message carrying the outcome of a repository call. token is
// the mount that issued the call.
type result interface {
	mountToken() int
	failure() error
}

type topicsLoadedMsg struct {
	token  int
	topics []domain.Topic
	err    error
}

type topicCreatedMsg struct {
	token int
	topic domain.Topic
	err   error
}

type topicRenamedMsg struct {
	token int
	topic domain.Topic
	err   error
}

type topicDeletedMsg struct {
	token int
	id    int64
	err   error
}

type cardsLoadedMsg struct {
	token int
	cards []domain.Card
	err   error
}

type cardFetchedMsg struct {
	token int
	card  domain.Card
	err   error
}

type cardDeletedMsg struct {
	token int
	id    int64
	err   error
}

type cardSavedMsg struct {
	token int
	card  domain.Card
	err   error
}

func (m topicsLoadedMsg) mountToken() int { return m.token }
func (m topicCreatedMsg) mountToken() int { return m.token }
func (m topicRenamedMsg) mountToken() int { return m.token }
func (m topicDeletedMsg) mountToken() int { return m.token }
func (m cardsLoadedMsg) mountToken() int  { return m.token }
func (m cardFetchedMsg) mountToken() int  { return m.token }
func (m cardDeletedMsg) mountToken() int  { return m.token }
func (m cardSavedMsg) mountToken() int    { return m.token }

func (m topicsLoadedMsg) failure() error { return m.err }
func (m topicCreatedMsg) failure() error { return m.err }
func (m topicRenamedMsg) failure() error { return m.err }
func (m topicDeletedMsg) failure() error { return m.err }
func (m cardsLoadedMsg) failure() error  { return m.err }
func (m cardFetchedMsg) failure() error  { return m.err }
func (m cardDeletedMsg) failure() error  { return m.err }
func (m cardSavedMsg) failure() error    { return m.err }

// Navigation requests handled by Model.
type (
	openCardsMsg  struct{ scope domain.Scope }
	editCardMsg   struct{ card domain.Card }
	showCardsMsg  struct{}
	showTopicsMsg struct{}
	notifyMsg     struct{ text string }
)

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func notify(text string) tea.Cmd {
	return emit(notifyMsg{text: text})
}
