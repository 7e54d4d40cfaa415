// Package store holds the card collection, the category list and the session
// history. It is the single owner of every card: decks and runners work on
// pointers handed out by the store, so a review recorded through them is a
// change to the store itself.
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/leitner/internal/spaced_repetition"
	"github.com/example/leitner/pkg/models"
)

const (
	// MaxSessions is how many recorded sessions are kept, newest first
	MaxSessions = 10
	// MergedSessionLimit caps the history after an import merge
	MergedSessionLimit = 20
)

// DefaultCategories seed a store that has never been saved
var DefaultCategories = []string{"Mathe", "Deutsch", "Englisch"}

// Store is the in-memory system of record for cards, categories and sessions
type Store struct {
	engine     *spaced_repetition.Leitner
	cards      []*models.Card
	categories []string
	sessions   []models.Session
}

// New creates a store with the default categories and no cards
func New(engine *spaced_repetition.Leitner) *Store {
	return &Store{
		engine:     engine,
		categories: append([]string(nil), DefaultCategories...),
	}
}

// Engine returns the Leitner engine the store initializes cards with
func (s *Store) Engine() *spaced_repetition.Leitner {
	return s.engine
}

// Cards returns every card. The pointers are the store's own records.
func (s *Store) Cards() []*models.Card {
	return append([]*models.Card(nil), s.cards...)
}

// Card looks a card up by id
func (s *Store) Card(id string) (*models.Card, bool) {
	for _, c := range s.cards {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// FindByQuestion returns the first card with exactly this question in the category
func (s *Store) FindByQuestion(category, question string) (*models.Card, bool) {
	for _, c := range s.cards {
		if c.Category == category && c.Question == question {
			return c, true
		}
	}
	return nil, false
}

// CardsInCategory returns the store's cards filed under category
func (s *Store) CardsInCategory(category string) []*models.Card {
	var out []*models.Card
	for _, c := range s.cards {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// AddCard creates, initializes and stores a new card
func (s *Store) AddCard(question, answer, category, topic string, now time.Time) (*models.Card, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	category = strings.TrimSpace(category)
	if question == "" || answer == "" || category == "" {
		return nil, ErrInvalidCard
	}

	card := &models.Card{
		ID:       uuid.New().String(),
		Question: question,
		Answer:   answer,
		Category: category,
		Topic:    strings.TrimSpace(topic),
	}
	s.engine.Initialize(card, now)
	s.cards = append(s.cards, card)
	return card, nil
}

// EditCard replaces the question and answer of a card
func (s *Store) EditCard(id, question, answer string) error {
	card, ok := s.Card(id)
	if !ok {
		return fmt.Errorf("edit %s: %w", id, ErrNotFound)
	}
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return ErrInvalidCard
	}
	card.Question = question
	card.Answer = answer
	return nil
}

// RemoveCard deletes a card by id
func (s *Store) RemoveCard(id string) error {
	for i, c := range s.cards {
		if c.ID == id {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove %s: %w", id, ErrNotFound)
}

// Categories returns the category list in insertion order
func (s *Store) Categories() []string {
	return append([]string(nil), s.categories...)
}

// HasCategory reports whether name is in the category list
func (s *Store) HasCategory(name string) bool {
	for _, c := range s.categories {
		if c == name {
			return true
		}
	}
	return false
}

// AddCategory appends a category; it reports false when it already exists
func (s *Store) AddCategory(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrInvalidCategory
	}
	if s.HasCategory(name) {
		return false, nil
	}
	s.categories = append(s.categories, name)
	return true, nil
}

// RemoveCategory drops a category from the list. Cards filed under it are kept.
func (s *Store) RemoveCategory(name string) bool {
	for i, c := range s.categories {
		if c == name {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return true
		}
	}
	return false
}

// Sessions returns the recorded session history, newest first
func (s *Store) Sessions() []models.Session {
	return append([]models.Session(nil), s.sessions...)
}

// RecordSession prepends a session and evicts the oldest beyond MaxSessions
func (s *Store) RecordSession(session models.Session) {
	s.sessions = append([]models.Session{session}, s.sessions...)
	if len(s.sessions) > MaxSessions {
		s.sessions = s.sessions[:MaxSessions]
	}
}

// LevelCount returns how many cards of the category sit in the given box
func (s *Store) LevelCount(category string, level int) int {
	count := 0
	for _, c := range s.cards {
		if c.Category == category && c.Level == level {
			count++
		}
	}
	return count
}

// DueCards returns the cards due at now; an empty category means all categories
func (s *Store) DueCards(category string, now time.Time) []*models.Card {
	var out []*models.Card
	for _, c := range s.cards {
		if category != "" && c.Category != category {
			continue
		}
		if s.engine.IsDue(c, now) {
			out = append(out, c)
		}
	}
	return out
}

// DueCounts returns the number of due cards per category, following the
// category list and then any category only referenced by cards.
func (s *Store) DueCounts(now time.Time) []models.DueCount {
	counts := make(map[string]int)
	for _, c := range s.DueCards("", now) {
		counts[c.Category]++
	}

	var out []models.DueCount
	for _, name := range s.categoryOrder() {
		if n := counts[name]; n > 0 {
			out = append(out, models.DueCount{Category: name, Count: n})
		}
	}
	return out
}

// Normalize initializes every card and assigns ids to cards without one.
// It returns how many cards were changed.
func (s *Store) Normalize(now time.Time) int {
	changed := 0
	seen := make(map[string]bool, len(s.cards))
	for _, c := range s.cards {
		before := *c
		s.prepare(c, seen, now)
		if !sameCard(before, *c) {
			changed++
		}
	}
	return changed
}

// prepare makes a card fit for the store: unique id and Leitner invariants
func (s *Store) prepare(c *models.Card, seen map[string]bool, now time.Time) {
	if c.ID == "" || seen[c.ID] {
		c.ID = uuid.New().String()
	}
	seen[c.ID] = true
	s.engine.Initialize(c, now)
}

// categoryOrder lists known categories first, then ones only cards mention
func (s *Store) categoryOrder() []string {
	order := s.Categories()
	known := make(map[string]bool, len(order))
	for _, name := range order {
		known[name] = true
	}
	for _, c := range s.cards {
		if !known[c.Category] {
			known[c.Category] = true
			order = append(order, c.Category)
		}
	}
	return order
}

func sameCard(a, b models.Card) bool {
	if a.ID != b.ID || a.Level != b.Level || !a.NextReview.Equal(b.NextReview) {
		return false
	}
	return true
}
