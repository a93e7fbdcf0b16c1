package domain

// Topic is a named grouping of cards.
type Topic struct {
	ID   int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name" yaml:"name"`
}

// IsDraft reports whether the topic has no server-assigned id.
func (t Topic) IsDraft() bool {
	return t.ID == 0
}
