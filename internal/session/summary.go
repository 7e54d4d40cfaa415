package session

import (
	"fmt"

	"github.com/example/leitner/pkg/models"
)

// Outcome classifies how a level-filtered run ended
type Outcome string

const (
	OutcomeMixed    Outcome = "mixed"
	OutcomePromoted Outcome = "promoted" // every answer was correct
	OutcomeDemoted  Outcome = "demoted"  // every answer was incorrect
)

// LevelReport tells whether a level-filtered run emptied its box
type LevelReport struct {
	Level     int
	Remaining int // cards of the category still in Level, counted from the store
	Cleared   bool
	Outcome   Outcome
}

// Headline returns the message shown to the learner for this report
func (lr LevelReport) Headline() string {
	if !lr.Cleared {
		if lr.Remaining == 1 {
			return fmt.Sprintf("1 card left in level %d.", lr.Level)
		}
		return fmt.Sprintf("%d cards left in level %d.", lr.Remaining, lr.Level)
	}

	switch lr.Outcome {
	case OutcomePromoted:
		return fmt.Sprintf("Level %d cleared! Every card moved up a box.", lr.Level)
	case OutcomeDemoted:
		return fmt.Sprintf("Level %d is empty, but every card went back to level 1. Keep at it!", lr.Level)
	default:
		return fmt.Sprintf("Level %d is empty. Missed cards start over in level 1.", lr.Level)
	}
}

// Summary is emitted when a run completes
type Summary struct {
	Category    string
	Mode        Mode
	Correct     int
	Incorrect   int
	Total       int
	SuccessRate int
	Missed      []*models.Card
	Level       *LevelReport // nil for weighted runs
}

func outcomeOf(correct, incorrect int) Outcome {
	switch {
	case incorrect == 0 && correct > 0:
		return OutcomePromoted
	case correct == 0 && incorrect > 0:
		return OutcomeDemoted
	default:
		return OutcomeMixed
	}
}
