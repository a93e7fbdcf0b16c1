package domain

// AllCardsLabel is shown when no topic is selected.
const AllCardsLabel = "All cards"

// Scope is the topic selection that constrains which cards are listed.
// The zero value is unscoped and lists every card.
type Scope struct {
	TopicID   int64
	TopicName string
}

// ScopeOf returns the scope selecting t.
func ScopeOf(t Topic) Scope {
	return Scope{TopicID: t.ID, TopicName: t.Name}
}

// Unscoped reports whether the scope lists all cards.
func (s Scope) Unscoped() bool {
	return s.TopicID <= 0
}

// Label is the heading used for the card list of this scope.
func (s Scope) Label() string {
	if s.Unscoped() {
		return AllCardsLabel
	}
	return s.TopicName
}
