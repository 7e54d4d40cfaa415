package models

import "time"

// Session is the recorded result of one completed study run
type Session struct {
	ID          int64     `json:"-" db:"id"`
	Date        time.Time `json:"date" db:"session_date"`
	Category    string    `json:"category" db:"category"`
	Level       int       `json:"level,omitempty" db:"level"` // 0 for weighted (mixed) runs
	Correct     int       `json:"correct" db:"correct"`
	Incorrect   int       `json:"incorrect" db:"incorrect"`
	Total       int       `json:"total" db:"total"`
	SuccessRate int       `json:"successRate" db:"success_rate"` // Percent, 0-100
}

// SuccessRate returns round(100*correct/(correct+incorrect)), or 0 when nothing was answered
func SuccessRate(correct, incorrect int) int {
	total := correct + incorrect
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}

// NewSession builds a session record from raw counters
func NewSession(date time.Time, category string, level, correct, incorrect int) Session {
	return Session{
		Date:        date,
		Category:    category,
		Level:       level,
		Correct:     correct,
		Incorrect:   incorrect,
		Total:       correct + incorrect,
		SuccessRate: SuccessRate(correct, incorrect),
	}
}
