package models

import "time"

// LevelStats counts cards per Leitner box; index 0 is unused
type LevelStats [6]int

// Total returns the number of cards across all boxes
func (s LevelStats) Total() int {
	total := 0
	for level := 1; level < len(s); level++ {
		total += s[level]
	}
	return total
}

// CategoryStats summarises how far a category has progressed through the boxes
type CategoryStats struct {
	Category string  `json:"category"`
	Total    int     `json:"total"`
	AvgLevel float64 `json:"avgLevel"`
	Progress int     `json:"progress"` // AvgLevel as a percentage of the top box
}

// PeriodStats aggregates archived sessions over a time window
type PeriodStats struct {
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	Sessions       int       `json:"sessions" db:"sessions"`
	Answers        int       `json:"answers" db:"answers"`
	Correct        int       `json:"correct" db:"correct"`
	AvgSuccessRate float64   `json:"avgSuccessRate" db:"avg_success_rate"`
}

// DueCount is the number of cards due for review in one category
type DueCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
