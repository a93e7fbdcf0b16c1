package tui

import (
	"context"

	"github.com/conorfennell/nerd/internal/domain"
	"github.com/conorfennell/nerd/internal/fields"
)

// Session is the state shared by every screen: the topic scope of the card
// list and the card handed to the form.
type Session struct {
	Scope domain.Scope
	Draft domain.Card
}

// TopicStore is the topic repository used by the topic list.
type TopicStore interface {
	List(ctx context.Context) ([]domain.Topic, error)
	Create(ctx context.Context, p fields.Payload) (domain.Topic, error)
	Update(ctx context.Context, id int64, p fields.Payload) (domain.Topic, error)
	Delete(ctx context.Context, id int64) error
}

// CardStore is the card repository used by the card list and the form.
type CardStore interface {
	List(ctx context.Context, scope domain.Scope) ([]domain.Card, error)
	Get(ctx context.Context, id int64) (domain.Card, error)
	Create(ctx context.Context, p fields.Payload) (domain.Card, error)
	Update(ctx context.Context, id int64, p fields.Payload) (domain.Card, error)
	Delete(ctx context.Context, id int64) error
}
