package session

import (
	"fmt"
	"log"
	"time"

	"github.com/example/leitner/internal/store"
	"github.com/example/leitner/pkg/models"
)

// State of a Runner
type State int

const (
	Idle State = iota
	Running
	Completed
)

var stateNames = [...]string{Idle: "Idle", Running: "Running", Completed: "Completed"}

// String returns the name of the state
func (s State) String() string {
	if s >= Idle && s <= Completed {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// AnswerResult describes what an Answer call did
type AnswerResult struct {
	Accepted  bool         // false when the answer was a duplicate submission
	Card      *models.Card // the card that was answered
	Completed bool
	Summary   *Summary // set when this answer completed the run
}

// Option configures a Runner
type Option func(*Runner)

// WithClock overrides the time source used for reviews and session dates
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithPersist sets the hook called after every mutation of the store.
// Failures are the hook's concern; the runner never sees them.
func WithPersist(persist func()) Option {
	return func(r *Runner) { r.persist = persist }
}

// WithArchive sets the hook that receives every completed session record
func WithArchive(archive func(models.Session)) Option {
	return func(r *Runner) { r.archive = archive }
}

// Runner drives one study run over a deck.
// It is not safe for concurrent use; callers serialize access.
type Runner struct {
	store   *store.Store
	now     func() time.Time
	persist func()
	archive func(models.Session)

	state     State
	deck      *Deck
	position  int
	correct   int
	incorrect int
	missed    []*models.Card
	accepting bool
	summary   *Summary
}

// NewRunner creates an idle runner working on the given store
func NewRunner(st *store.Store, opts ...Option) *Runner {
	r := &Runner{
		store:   st,
		now:     time.Now,
		persist: func() {},
		archive: func(models.Session) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start begins a run over deck. An empty deck leaves the runner untouched.
func (r *Runner) Start(deck *Deck) error {
	if deck.Len() == 0 {
		return ErrEmptyDeck
	}

	r.deck = deck
	r.position = 0
	r.correct = 0
	r.incorrect = 0
	r.missed = nil
	r.summary = nil
	r.accepting = true
	r.state = Running

	log.Printf("Study session started: %s (%s, %d cards)", deck.Category, deck.Mode, deck.Len())
	return nil
}

// Current returns the card at the current position
func (r *Runner) Current() (*models.Card, error) {
	if r.state != Running {
		return nil, ErrNotRunning
	}
	return r.deck.Cards[r.position], nil
}

// Answer records the learner's verdict on the current card and advances.
// While the input gate is closed the call is ignored and Accepted is false.
func (r *Runner) Answer(correct bool) (AnswerResult, error) {
	if r.state != Running {
		return AnswerResult{}, ErrNotRunning
	}
	if !r.accepting {
		return AnswerResult{}, nil
	}
	r.accepting = false

	card := r.deck.Cards[r.position]
	now := r.now()
	if correct {
		r.correct++
	} else {
		r.incorrect++
		r.missed = append(r.missed, card)
	}
	r.store.Engine().Record(card, correct, now)

	result := AnswerResult{Accepted: true, Card: card}
	r.position = (r.position + 1) % len(r.deck.Cards)
	if r.position == 0 {
		r.complete(now)
		result.Completed = true
		result.Summary = r.summary
	}

	r.persist()
	return result, nil
}

// Ready reopens the input gate once the UI has moved on to the next card
func (r *Runner) Ready() {
	if r.state == Running {
		r.accepting = true
	}
}

// Accepting reports whether Answer would currently be counted
func (r *Runner) Accepting() bool {
	return r.state == Running && r.accepting
}

// Reset discards the run and returns to Idle
func (r *Runner) Reset() {
	r.state = Idle
	r.deck = nil
	r.position = 0
	r.correct = 0
	r.incorrect = 0
	r.missed = nil
	r.summary = nil
	r.accepting = false
}

// State returns the runner's state
func (r *Runner) State() State {
	return r.state
}

// Deck returns the deck of the current or last run
func (r *Runner) Deck() *Deck {
	return r.deck
}

// Progress returns the current position and the deck length
func (r *Runner) Progress() (position, total int) {
	return r.position, r.deck.Len()
}

// Counts returns the correct and incorrect answers so far
func (r *Runner) Counts() (correct, incorrect int) {
	return r.correct, r.incorrect
}

// Missed returns the cards answered incorrectly, in answer order
func (r *Runner) Missed() []*models.Card {
	return append([]*models.Card(nil), r.missed...)
}

// Summary returns the summary of a completed run
func (r *Runner) Summary() (*Summary, bool) {
	return r.summary, r.state == Completed
}

func (r *Runner) complete(now time.Time) {
	r.state = Completed
	r.accepting = false

	summary := &Summary{
		Category:    r.deck.Category,
		Mode:        r.deck.Mode,
		Correct:     r.correct,
		Incorrect:   r.incorrect,
		Total:       r.correct + r.incorrect,
		SuccessRate: models.SuccessRate(r.correct, r.incorrect),
		Missed:      r.Missed(),
	}
	if r.deck.Mode == LevelFiltered {
		remaining := r.store.LevelCount(r.deck.Category, r.deck.Level)
		summary.Level = &LevelReport{
			Level:     r.deck.Level,
			Remaining: remaining,
			Cleared:   remaining == 0,
			Outcome:   outcomeOf(r.correct, r.incorrect),
		}
	}
	r.summary = summary

	record := models.NewSession(now, r.deck.Category, r.deck.Level, r.correct, r.incorrect)
	r.store.RecordSession(record)
	r.archive(record)
	log.Printf("Study session completed: %s, %d correct, %d incorrect (%d%%)",
		summary.Category, summary.Correct, summary.Incorrect, summary.SuccessRate)
}
