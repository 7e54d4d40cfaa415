package spaced_repetition

import (
	"time"

	"github.com/example/leitner/pkg/models"
)

const (
	// MinLevel is the box every new or missed card lands in
	MinLevel = 1
	// MaxLevel is the top box; correct answers saturate here
	MaxLevel = 5
	// fallbackIntervalDays is used for levels missing from the interval table
	fallbackIntervalDays = 1
)

// Leitner implements the five-box Leitner system
type Leitner struct {
	// Review interval in days for each box
	Intervals map[int]int
}

// NewLeitner creates a Leitner engine with the default box intervals
func NewLeitner() *Leitner {
	return &Leitner{
		Intervals: map[int]int{
			1: 1,  // daily
			2: 3,  // every 3 days
			3: 7,  // weekly
			4: 14, // every 2 weeks
			5: 30, // monthly
		},
	}
}

// IntervalDays returns the review interval for a box in days
func (l *Leitner) IntervalDays(level int) int {
	if days, ok := l.Intervals[level]; ok {
		return days
	}
	return fallbackIntervalDays
}

// NextReview returns the date a card in the given box is due again
func (l *Leitner) NextReview(level int, now time.Time) time.Time {
	return now.AddDate(0, 0, l.IntervalDays(level))
}

// Initialize fills in missing Leitner data so a card satisfies the box invariants.
// Cards that are already initialized are left alone.
func (l *Leitner) Initialize(card *models.Card, now time.Time) {
	card.Level = ClampLevel(card.Level)
	if card.NextReview.IsZero() {
		card.NextReview = now
	}
}

// IsDue reports whether the card should be reviewed at now
func (l *Leitner) IsDue(card *models.Card, now time.Time) bool {
	if card.NextReview.IsZero() {
		return true
	}
	return !card.NextReview.After(now)
}

// RecordCorrect promotes the card by one box
func (l *Leitner) RecordCorrect(card *models.Card, now time.Time) {
	card.Level = min(MaxLevel, ClampLevel(card.Level)+1)
	l.reviewed(card, now)
}

// RecordIncorrect sends the card back to the first box, whatever box it was in
func (l *Leitner) RecordIncorrect(card *models.Card, now time.Time) {
	card.Level = MinLevel
	l.reviewed(card, now)
}

// Record dispatches to RecordCorrect or RecordIncorrect
func (l *Leitner) Record(card *models.Card, correct bool, now time.Time) {
	if correct {
		l.RecordCorrect(card, now)
		return
	}
	l.RecordIncorrect(card, now)
}

func (l *Leitner) reviewed(card *models.Card, now time.Time) {
	reviewedAt := now
	card.LastReviewed = &reviewedAt
	card.NextReview = l.NextReview(card.Level, now)
}

// Weight returns how many times a card of the given box is drawn into a mixed deck.
// Box 1 weighs 5, box 5 weighs 1.
func Weight(level int) int {
	return MaxLevel + 1 - ClampLevel(level)
}

// ClampLevel forces a level into [MinLevel, MaxLevel]; zero (unset) becomes MinLevel
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// IsMastered reports whether the card sits in the top box
func IsMastered(card *models.Card) bool {
	return card.Level >= MaxLevel
}
