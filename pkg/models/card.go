package models

import "time"

// Card represents a single flashcard and its Leitner box state
type Card struct {
	ID           string     `json:"id" db:"id"`
	Question     string     `json:"question" db:"question"`
	Answer       string     `json:"answer" db:"answer"`
	Category     string     `json:"category" db:"category"`
	Topic        string     `json:"topic,omitempty" db:"topic"`             // Optional sub-grouping inside a category
	Level        int        `json:"level" db:"level"`                       // Leitner box, 1 (new/missed) to 5 (mastered)
	LastReviewed *time.Time `json:"lastReviewed" db:"last_reviewed"`        // nil until the first answer
	NextReview   time.Time  `json:"nextReview" db:"next_review"`
}
