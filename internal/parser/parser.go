// Package parser extracts flashcards from Markdown notes. A card is a
// "Q:" block, an optional "A:" block and an optional "T:" title line.
// Cards end at a "---" line or at the next "Q:".
package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/nerd/internal/domain"
)

const (
	titlePrefix    = "T:"
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	separator      = "---"
)

type state int

const (
	seeking state = iota
	readingQuestion
	readingAnswer
)

// ParseFile reads a file from the given path and extracts all cards.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all cards. A card without a
// title is titled with the first line of its question.
func Parse(r io.Reader) ([]domain.Card, error) {
	scanner := bufio.NewScanner(r)
	var cards []domain.Card
	var currentCard domain.Card
	var currentBlock []string
	currentState := seeking

	flushBlock := func() {
		content := strings.TrimRight(strings.Join(currentBlock, "\n"), "\n")
		switch currentState {
		case readingQuestion:
			currentCard.Question = content
		case readingAnswer:
			currentCard.Answer = content
		}
		currentBlock = nil
	}

	finishCard := func() {
		flushBlock()
		if currentCard.Question != "" {
			if currentCard.Title == "" {
				currentCard.Title = firstLine(currentCard.Question)
			}
			cards = append(cards, currentCard)
		}
		currentCard = domain.Card{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.TrimSpace(line) == separator:
			finishCard()
		case strings.HasPrefix(line, titlePrefix):
			// A title after a complete question opens the next card.
			if currentState != seeking {
				finishCard()
			}
			currentCard.Title = strings.TrimSpace(line[len(titlePrefix):])
		case strings.HasPrefix(line, questionPrefix):
			if currentState != seeking { // a new question always starts a new card
				finishCard()
			}
			currentState = readingQuestion
			currentBlock = append(currentBlock, trimPrefix(line, questionPrefix))
		case strings.HasPrefix(line, answerPrefix):
			flushBlock()
			currentState = readingAnswer
			currentBlock = append(currentBlock, trimPrefix(line, answerPrefix))
		case currentState != seeking:
			currentBlock = append(currentBlock, line)
		}
	}

	finishCard() // the last card has no separator

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

func trimPrefix(line, prefix string) string {
	return strings.TrimPrefix(line[len(prefix):], " ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
