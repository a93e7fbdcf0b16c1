package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/conorfennell/nerd/internal/domain"
	"github.com/conorfennell/nerd/internal/fields"
)

// Repository issues CRUD requests for one resource collection.
type Repository[T any] struct {
	client   *Client
	resource string
}

// NewRepository returns a repository for /api/v1/<resource>. List responses
// are expected as {"<resource>": [...]}.
func NewRepository[T any](c *Client, resource string) *Repository[T] {
	return &Repository[T]{client: c, resource: resource}
}

// List fetches the collection in server order.
func (r *Repository[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	var envelope map[string]json.RawMessage
	if err := r.client.do(ctx, http.MethodGet, []string{r.resource}, query, nil, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope[r.resource]
	if !ok {
		return nil, &ServerError{Status: http.StatusOK, Err: fmt.Errorf("response has no %q list", r.resource)}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ServerError{Status: http.StatusOK, Err: fmt.Errorf("failed to decode %s: %w", r.resource, err)}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get fetches one entity.
func (r *Repository[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.client.do(ctx, http.MethodGet, []string{r.resource, formatID(id)}, nil, nil, &out)
	return out, err
}

// Create stores a draft and returns it with the server-assigned id. The
// response is laid over the submitted fields, so a bare {"id": N} reply
// still yields a complete entity.
func (r *Repository[T]) Create(ctx context.Context, p fields.Payload) (T, error) {
	var out T
	body := p.WithoutID()
	if err := overlay(&out, body); err != nil {
		return out, err
	}
	if err := r.client.do(ctx, http.MethodPost, []string{r.resource}, nil, body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Update sends a partial change of entity id. The id travels only in the
// path; it is removed from the body even if the caller supplied one.
func (r *Repository[T]) Update(ctx context.Context, id int64, p fields.Payload) (T, error) {
	var out T
	body := p.WithoutID()
	if err := overlay(&out, body); err != nil {
		return out, err
	}
	if err := overlay(&out, map[string]int64{fields.IDKey: id}); err != nil {
		return out, err
	}
	if err := r.client.do(ctx, http.MethodPut, []string{r.resource, formatID(id)}, nil, body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Delete removes entity id on the server.
func (r *Repository[T]) Delete(ctx context.Context, id int64) error {
	return r.client.do(ctx, http.MethodDelete, []string{r.resource, formatID(id)}, nil, nil, nil)
}

func overlay(dst any, src any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("payload does not match entity: %w", err)
	}
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// CardRepository is the repository of cards.
type CardRepository struct {
	*Repository[domain.Card]
}

// List fetches the cards of scope; an unscoped scope lists every card.
func (r *CardRepository) List(ctx context.Context, scope domain.Scope) ([]domain.Card, error) {
	var q url.Values
	if !scope.Unscoped() {
		q = url.Values{"topic_id": {formatID(scope.TopicID)}}
	}
	return r.Repository.List(ctx, q)
}

// TopicRepository is the repository of topics.
type TopicRepository struct {
	*Repository[domain.Topic]
}

// List fetches all topics.
func (r *TopicRepository) List(ctx context.Context) ([]domain.Topic, error) {
	return r.Repository.List(ctx, nil)
}

// Cards returns the card repository.
func (c *Client) Cards() *CardRepository {
	return &CardRepository{Repository: NewRepository[domain.Card](c, "cards")}
}

// Topics returns the topic repository.
func (c *Client) Topics() *TopicRepository {
	return &TopicRepository{Repository: NewRepository[domain.Topic](c, "topics")}
}
