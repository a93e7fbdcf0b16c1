package domain

// Card represents a single question-answer flashcard.
// An ID of zero marks a draft that the server has not stored yet.
type Card struct {
	ID       int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Title    string `json:"title" yaml:"title"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer,omitempty"`
	TopicID  int64  `json:"topic_id" yaml:"topic_id"`
}

// IsDraft reports whether the card has no server-assigned id.
func (c Card) IsDraft() bool {
	return c.ID == 0
}

// NewCardDraft returns an empty card that will be created under topicID.
func NewCardDraft(topicID int64) Card {
	return Card{TopicID: topicID}
}
