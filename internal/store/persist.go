package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/leitner/pkg/models"
)

// Load hydrates the store from storage. Missing keys keep the current value,
// so a fresh database starts with the default categories.
func (s *Store) Load(ctx context.Context, storage Storage) error {
	var cards []*models.Card
	if ok, err := loadJSON(ctx, storage, KeyFlashcards, &cards); err != nil {
		return err
	} else if ok {
		s.cards = compactCards(cards)
	}

	var categories []string
	if ok, err := loadJSON(ctx, storage, KeyCategories, &categories); err != nil {
		return err
	} else if ok {
		s.categories = categories
	}

	var sessions []models.Session
	if ok, err := loadJSON(ctx, storage, KeySessions, &sessions); err != nil {
		return err
	} else if ok {
		s.sessions = sessions
	}

	return nil
}

// Save writes all three collections. Every key is attempted even if one fails.
func (s *Store) Save(ctx context.Context, storage Storage) error {
	cards := s.cards
	if cards == nil {
		cards = []*models.Card{}
	}
	categories := s.categories
	if categories == nil {
		categories = []string{}
	}
	sessions := s.sessions
	if sessions == nil {
		sessions = []models.Session{}
	}

	return errors.Join(
		saveJSON(ctx, storage, KeyFlashcards, cards),
		saveJSON(ctx, storage, KeyCategories, categories),
		saveJSON(ctx, storage, KeySessions, sessions),
	)
}

func loadJSON(ctx context.Context, storage Storage, key string, v interface{}) (bool, error) {
	blob, ok, err := storage.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(blob, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func saveJSON(ctx context.Context, storage Storage, key string, v interface{}) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := storage.Save(ctx, key, blob); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// compactCards drops null entries a hand-edited blob may contain
func compactCards(cards []*models.Card) []*models.Card {
	out := cards[:0]
	for _, c := range cards {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
