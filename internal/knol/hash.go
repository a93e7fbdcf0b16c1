// Package knol identifies cards by their content so the same note imported
// twice is recognised.
package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/nerd/internal/domain"
)

// Normalize concatenates the card's question and answer after cleaning each
// part. It trims whitespace, lowercases, and normalizes line endings. The
// title is not part of the content.
func Normalize(card domain.Card) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		p = strings.TrimSpace(p)
		return p
	}

	return normalizePart(card.Question) + "\n" + normalizePart(card.Answer)
}

// Hash takes a card, normalizes it, and returns its SHA-256 hash as a hex string.
func Hash(card domain.Card) string {
	normalized := Normalize(card)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}

// Index is a set of card content hashes.
type Index map[string]struct{}

// NewIndex returns the index of cards.
func NewIndex(cards []domain.Card) Index {
	idx := make(Index, len(cards))
	for _, c := range cards {
		idx.Add(c)
	}
	return idx
}

// Add records card and reports whether its content was new.
func (idx Index) Add(card domain.Card) bool {
	h := Hash(card)
	if _, ok := idx[h]; ok {
		return false
	}
	idx[h] = struct{}{}
	return true
}
