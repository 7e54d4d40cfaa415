package session

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/example/leitner/internal/spaced_repetition"
	"github.com/example/leitner/pkg/models"
)

// Mode tells how a deck was built
type Mode string

const (
	// Weighted draws the whole category, lower boxes repeated more often
	Weighted Mode = "weighted"
	// LevelFiltered draws exactly one box of the category
	LevelFiltered Mode = "level"
)

// Deck is the ordered sequence of cards driving one study run.
// Cards point at the store's records.
type Deck struct {
	Category string
	Mode     Mode
	Level    int // only set for LevelFiltered decks
	Cards    []*models.Card
}

// Len returns the number of entries in the deck
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Cards)
}

// Sampler builds shuffled study decks
type Sampler struct {
	rnd *rand.Rand
}

// NewSampler creates a sampler seeded from the clock
func NewSampler() *Sampler {
	return NewSamplerWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewSamplerWithSource creates a sampler drawing from src
func NewSamplerWithSource(src rand.Source) *Sampler {
	return &Sampler{rnd: rand.New(src)}
}

// BuildWeightedDeck repeats every card of the category Weight(level) times and
// shuffles the result. Due dates are not consulted. The deck may be empty.
func (s *Sampler) BuildWeightedDeck(category string, cards []*models.Card) *Deck {
	deck := &Deck{Category: category, Mode: Weighted}
	for _, card := range cards {
		if card.Category != category {
			continue
		}
		for i := 0; i < spaced_repetition.Weight(card.Level); i++ {
			deck.Cards = append(deck.Cards, card)
		}
	}
	s.shuffle(deck.Cards)
	return deck
}

// BuildLevelDeck returns the cards of the category sitting in exactly the given
// box, each once, shuffled. It fails with ErrEmptyDeck when none match.
func (s *Sampler) BuildLevelDeck(category string, cards []*models.Card, level int) (*Deck, error) {
	deck := &Deck{Category: category, Mode: LevelFiltered, Level: level}
	for _, card := range cards {
		if card.Category == category && card.Level == level {
			deck.Cards = append(deck.Cards, card)
		}
	}
	if len(deck.Cards) == 0 {
		return nil, fmt.Errorf("%s level %d: %w", category, level, ErrEmptyDeck)
	}
	s.shuffle(deck.Cards)
	return deck, nil
}

// shuffle permutes cards uniformly (Fisher-Yates)
func (s *Sampler) shuffle(cards []*models.Card) {
	s.rnd.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
