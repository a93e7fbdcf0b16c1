// Package fields describes the editable fields of each entity and turns raw
// form values into the JSON payload sent to the API.
package fields

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/nerd/internal/domain"
)

// IDKey is the JSON key of an entity id. It is a path parameter and never
// part of a payload.
const IDKey = "id"

// Payload is the body of a create or update request.
type Payload map[string]any

// WithoutID returns a copy of p with any id key removed.
func (p Payload) WithoutID() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		if k == IDKey {
			continue
		}
		out[k] = v
	}
	return out
}

// Mode selects which fields Collect emits.
type Mode int

const (
	Create Mode = iota
	Update
)

// Field describes one editable value of an entity.
type Field struct {
	Name      string
	Label     string
	Multiline bool
	// Hidden fields are filled from context rather than typed by the user.
	Hidden bool
	// Immutable fields are only sent when creating.
	Immutable bool
	// Required fields must be non-empty when creating.
	Required bool
	// Rules is a validator tag checked against the transformed value.
	Rules     string
	Transform func(string) (any, error)
}

// Schema is the ordered field list of one entity type.
type Schema struct {
	Entity string
	Fields []Field
}

// ValidationError reports a field that could not be collected.
type ValidationError struct {
	Field string
	Label string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %v", e.Label, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var (
	// ErrRequired is wrapped by a ValidationError for a missing required field.
	ErrRequired = errors.New("is required")

	validate = validator.New()
)

// Collect builds a payload from raw form values. Empty values are omitted so
// a partial edit never overwrites stored data with blanks.
func (s Schema) Collect(values map[string]string, mode Mode) (Payload, error) {
	p := Payload{}
	for _, f := range s.Fields {
		if f.Name == IDKey {
			continue
		}
		if f.Immutable && mode == Update {
			continue
		}
		raw := strings.TrimSpace(values[f.Name])
		if raw == "" {
			if f.Required && mode == Create {
				return nil, &ValidationError{Field: f.Name, Label: f.Label, Err: ErrRequired}
			}
			continue
		}
		v, err := f.transform(raw)
		if err != nil {
			return nil, &ValidationError{Field: f.Name, Label: f.Label, Err: err}
		}
		if f.Rules != "" {
			if err := validate.Var(v, f.Rules); err != nil {
				return nil, &ValidationError{Field: f.Name, Label: f.Label, Err: ruleError(err)}
			}
		}
		p[f.Name] = v
	}
	return p, nil
}

// Visible returns the fields shown in an edit form.
func (s Schema) Visible() []Field {
	var out []Field
	for _, f := range s.Fields {
		if !f.Hidden {
			out = append(out, f)
		}
	}
	return out
}

func (f Field) transform(raw string) (any, error) {
	if f.Transform == nil {
		return raw, nil
	}
	return f.Transform(raw)
}

func ruleError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Errorf("fails %s=%s", fe.Tag(), fe.Param())
		}
		return fmt.Errorf("fails %s", fe.Tag())
	}
	return err
}

func parseID(raw string) (any, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("must be a number")
	}
	return id, nil
}

// CardSchema lists the fields of a card.
var CardSchema = Schema{
	Entity: "card",
	Fields: []Field{
		{Name: "title", Label: "Title", Required: true, Rules: "max=200"},
		{Name: "question", Label: "Question", Multiline: true, Required: true, Rules: "max=4000"},
		{Name: "answer", Label: "Answer", Multiline: true, Rules: "max=4000"},
		{Name: "topic_id", Label: "Topic", Hidden: true, Immutable: true, Required: true, Rules: "gt=0", Transform: parseID},
	},
}

// TopicSchema lists the fields of a topic.
var TopicSchema = Schema{
	Entity: "topic",
	Fields: []Field{
		{Name: "name", Label: "Name", Required: true, Rules: "max=100"},
	},
}

// CardValues returns the raw form values of c keyed by field name.
func CardValues(c domain.Card) map[string]string {
	v := map[string]string{
		"title":    c.Title,
		"question": c.Question,
		"answer":   c.Answer,
	}
	if c.TopicID > 0 {
		v["topic_id"] = strconv.FormatInt(c.TopicID, 10)
	}
	return v
}

// TopicValues returns the raw form values of t keyed by field name.
func TopicValues(t domain.Topic) map[string]string {
	return map[string]string{"name": t.Name}
}
