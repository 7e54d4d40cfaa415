package store

import (
	"time"

	"github.com/example/leitner/pkg/models"
)

// MergeResult reports what a merge added
type MergeResult struct {
	CardsAdded      int
	CardsSkipped    int
	CategoriesAdded int
	SessionsAdded   int
}

// Merge appends cards whose question is not in the store yet, unions the
// categories and appends sessions after the existing history.
func (s *Store) Merge(cards []models.Card, categories []string, sessions []models.Session, now time.Time) MergeResult {
	var result MergeResult

	questions := make(map[string]bool, len(s.cards))
	seen := make(map[string]bool, len(s.cards)+len(cards))
	for _, c := range s.cards {
		questions[c.Question] = true
		seen[c.ID] = true
	}

	for i := range cards {
		if questions[cards[i].Question] {
			result.CardsSkipped++
			continue
		}
		card := cards[i]
		s.prepare(&card, seen, now)
		questions[card.Question] = true
		s.cards = append(s.cards, &card)
		result.CardsAdded++
	}

	for _, name := range categories {
		if added, err := s.AddCategory(name); err == nil && added {
			result.CategoriesAdded++
		}
	}

	if len(sessions) > 0 {
		before := len(s.sessions)
		s.sessions = append(s.sessions, sessions...)
		if len(s.sessions) > MergedSessionLimit {
			s.sessions = s.sessions[:MergedSessionLimit]
		}
		result.SessionsAdded = max(len(s.sessions)-before, 0)
	}

	return result
}

// Replace overwrites cards, categories and sessions wholesale
func (s *Store) Replace(cards []models.Card, categories []string, sessions []models.Session, now time.Time) {
	seen := make(map[string]bool, len(cards))
	replaced := make([]*models.Card, 0, len(cards))
	for i := range cards {
		card := cards[i]
		s.prepare(&card, seen, now)
		replaced = append(replaced, &card)
	}

	s.cards = replaced
	s.categories = append([]string(nil), categories...)
	s.sessions = append([]models.Session(nil), sessions...)
}

// Snapshot copies the store's contents into an export document
func (s *Store) Snapshot(now time.Time) models.Document {
	cards := make([]models.Card, 0, len(s.cards))
	for _, c := range s.cards {
		cards = append(cards, *c)
	}
	return models.Document{
		Version:    models.DocumentVersion,
		ExportDate: now,
		Flashcards: cards,
		Categories: append([]string{}, s.categories...),
		Sessions:   append([]models.Session{}, s.sessions...),
	}
}
