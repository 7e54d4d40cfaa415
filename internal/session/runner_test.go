package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/leitner/internal/store"
	"github.com/example/leitner/pkg/models"
)

func fixedClock() func() time.Time {
	return func() time.Time { return t0 }
}

func orderedDeck(category string, cards ...*models.Card) *Deck {
	return &Deck{Category: category, Mode: Weighted, Cards: cards}
}

func newTestRunner(st *store.Store, persisted *int) *Runner {
	return NewRunner(st,
		WithClock(fixedClock()),
		WithPersist(func() { *persisted++ }),
	)
}

func TestRunnerThreeCardSession(t *testing.T) {
	st, cards := storeWithLevels(t, "Mathe", 1, 2, 3)
	persisted := 0
	r := newTestRunner(st, &persisted)

	require.NoError(t, r.Start(orderedDeck("Mathe", cards...)))
	assert.Equal(t, Running, r.State())

	answers := []bool{true, true, false}
	wantPositions := []int{1, 2, 0}
	var last AnswerResult
	for i, correct := range answers {
		current, err := r.Current()
		require.NoError(t, err)
		assert.Same(t, cards[i], current)

		last, err = r.Answer(correct)
		require.NoError(t, err)
		require.True(t, last.Accepted)
		assert.Same(t, cards[i], last.Card)

		pos, total := r.Progress()
		assert.Equal(t, wantPositions[i], pos)
		assert.Equal(t, 3, total)

		if i < len(answers)-1 {
			assert.False(t, last.Completed)
			assert.Equal(t, Running, r.State())
			r.Ready()
		}
	}

	assert.True(t, last.Completed)
	assert.Equal(t, Completed, r.State())
	require.NotNil(t, last.Summary)
	assert.Equal(t, 2, last.Summary.Correct)
	assert.Equal(t, 1, last.Summary.Incorrect)
	assert.Equal(t, 3, last.Summary.Total)
	assert.Equal(t, 67, last.Summary.SuccessRate)
	assert.Nil(t, last.Summary.Level)
	assert.Equal(t, []*models.Card{cards[2]}, last.Summary.Missed)

	// The store's own records were updated
	assert.Equal(t, 2, cards[0].Level)
	assert.Equal(t, 3, cards[1].Level)
	assert.Equal(t, 1, cards[2].Level)
	assert.Equal(t, 3, persisted)

	sessions := st.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, models.Session{
		Date: t0, Category: "Mathe", Correct: 2, Incorrect: 1, Total: 3, SuccessRate: 67,
	}, sessions[0])

	summary, done := r.Summary()
	assert.True(t, done)
	assert.Same(t, last.Summary, summary)
}

func TestRunnerArchivesCompletedSession(t *testing.T) {
	st, cards := storeWithLevels(t, "Mathe", 1)
	var archived []models.Session
	r := NewRunner(st,
		WithClock(fixedClock()),
		WithArchive(func(s models.Session) { archived = append(archived, s) }),
	)
	require.NoError(t, r.Start(orderedDeck("Mathe", cards...)))

	_, err := r.Answer(true)
	require.NoError(t, err)

	require.Len(t, archived, 1)
	assert.Equal(t, st.Sessions()[0], archived[0])
	assert.Equal(t, 100, archived[0].SuccessRate)
}

func TestRunnerIgnoresDoubleSubmission(t *testing.T) {
	st, cards := storeWithLevels(t, "Mathe", 1, 1)
	persisted := 0
	r := newTestRunner(st, &persisted)
	require.NoError(t, r.Start(orderedDeck("Mathe", cards...)))

	first, err := r.Answer(true)
	require.NoError(t, err)
	assert.True(t, first.Accepted)
	assert.False(t, r.Accepting())

	second, err := r.Answer(false)
	require.NoError(t, err)
	assert.False(t, second.Accepted)

	correct, incorrect := r.Counts()
	assert.Equal(t, 1, correct)
	assert.Equal(t, 0, incorrect)
	assert.Equal(t, 2, cards[0].Level)
	assert.Equal(t, 1, cards[1].Level, "second card must not be touched")
	assert.Empty(t, r.Missed())
	assert.Equal(t, 1, persisted)

	pos, _ := r.Progress()
	assert.Equal(t, 1, pos)

	r.Ready()
	assert.True(t, r.Accepting())
	res, err := r.Answer(false)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.True(t, res.Completed)
}

func TestRunnerStartEmptyDeck(t *testing.T) {
	st, _ := storeWithLevels(t, "Mathe")
	r := NewRunner(st)

	assert.ErrorIs(t, r.Start(&Deck{Category: "Mathe"}), ErrEmptyDeck)
	assert.ErrorIs(t, r.Start(nil), ErrEmptyDeck)
	assert.Equal(t, Idle, r.State())
}

func TestRunnerNotRunning(t *testing.T) {
	st, _ := storeWithLevels(t, "Mathe")
	r := NewRunner(st)

	_, err := r.Current()
	assert.ErrorIs(t, err, ErrNotRunning)
	_, err = r.Answer(true)
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.False(t, r.Accepting())

	r.Ready()
	assert.Equal(t, Idle, r.State())
}

func TestRunnerCompletedRejectsAnswers(t *testing.T) {
	st, cards := storeWithLevels(t, "Mathe", 1)
	r := NewRunner(st, WithClock(fixedClock()))
	require.NoError(t, r.Start(orderedDeck("Mathe", cards...)))

	res, err := r.Answer(true)
	require.NoError(t, err)
	require.True(t, res.Completed)

	r.Ready()
	assert.False(t, r.Accepting(), "gate stays closed after completion")
	_, err = r.Answer(true)
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.Len(t, st.Sessions(), 1)
}

func TestRunnerWeightedDeckRepeatsCard(t *testing.T) {
	st, cards := storeWithLevels(t, "Mathe", 1)
	r := NewRunner(st, WithClock(fixedClock()))
	require.NoError(t, r.Start(orderedDeck("Mathe", cards[0], cards[0], cards[0])))

	for _, correct := range []bool{true, false, true} {
		_, err := r.Answer(correct)
		require.NoError(t, err)
		r.Ready()
	}

	assert.Equal(t, 2, cards[0].Level, "promoted, reset, promoted")
	summary, ok := r.Summary()
	require.True(t, ok)
	assert.Equal(t, 2, summary.Correct)
	assert.Equal(t, 1, summary.Incorrect)
}

func TestRunnerReset(t *testing.T) {
	st, cards := storeWithLevels(t, "Mathe", 1, 1)
	r := NewRunner(st, WithClock(fixedClock()))
	require.NoError(t, r.Start(orderedDeck("Mathe", cards...)))
	_, err := r.Answer(false)
	require.NoError(t, err)

	r.Reset()

	assert.Equal(t, Idle, r.State())
	correct, incorrect := r.Counts()
	assert.Zero(t, correct)
	assert.Zero(t, incorrect)
	assert.Empty(t, r.Missed())
	assert.Nil(t, r.Deck())
	_, done := r.Summary()
	assert.False(t, done)
}

func TestRunnerRestartAfterCompletion(t *testing.T) {
	st, cards := storeWithLevels(t, "Mathe", 1)
	r := NewRunner(st, WithClock(fixedClock()))
	require.NoError(t, r.Start(orderedDeck("Mathe", cards...)))
	_, err := r.Answer(false)
	require.NoError(t, err)
	require.Equal(t, Completed, r.State())

	require.NoError(t, r.Start(orderedDeck("Mathe", cards...)))

	assert.Equal(t, Running, r.State())
	assert.True(t, r.Accepting())
	assert.Empty(t, r.Missed())
	correct, incorrect := r.Counts()
	assert.Zero(t, correct+incorrect)
}

func TestLevelRunAllCorrectClearsLevel(t *testing.T) {
	st, _ := storeWithLevels(t, "Mathe", 2, 2, 3)
	deck, err := seededSampler().BuildLevelDeck("Mathe", st.Cards(), 2)
	require.NoError(t, err)
	r := NewRunner(st, WithClock(fixedClock()))
	require.NoError(t, r.Start(deck))

	var res AnswerResult
	for i := 0; i < deck.Len(); i++ {
		res, err = r.Answer(true)
		require.NoError(t, err)
		r.Ready()
	}

	require.True(t, res.Completed)
	require.NotNil(t, res.Summary.Level)
	assert.Equal(t, LevelReport{Level: 2, Remaining: 0, Cleared: true, Outcome: OutcomePromoted}, *res.Summary.Level)
	assert.Contains(t, res.Summary.Level.Headline(), "Level 2 cleared")
	assert.Equal(t, 2, st.Sessions()[0].Level)
}

func TestLevelRunAllIncorrectClearsLevel(t *testing.T) {
	st, _ := storeWithLevels(t, "Mathe", 3, 3)
	deck, err := seededSampler().BuildLevelDeck("Mathe", st.Cards(), 3)
	require.NoError(t, err)
	r := NewRunner(st, WithClock(fixedClock()))
	require.NoError(t, r.Start(deck))

	var res AnswerResult
	for i := 0; i < deck.Len(); i++ {
		res, err = r.Answer(false)
		require.NoError(t, err)
		r.Ready()
	}

	assert.Equal(t, LevelReport{Level: 3, Remaining: 0, Cleared: true, Outcome: OutcomeDemoted}, *res.Summary.Level)
	assert.Equal(t, 2, st.LevelCount("Mathe", 1))
	assert.Contains(t, res.Summary.Level.Headline(), "back to level 1")
}

func TestLevelRunMixed(t *testing.T) {
	st, _ := storeWithLevels(t, "Mathe", 4, 4)
	deck, err := seededSampler().BuildLevelDeck("Mathe", st.Cards(), 4)
	require.NoError(t, err)
	r := NewRunner(st, WithClock(fixedClock()))
	require.NoError(t, r.Start(deck))

	_, err = r.Answer(true)
	require.NoError(t, err)
	r.Ready()
	res, err := r.Answer(false)
	require.NoError(t, err)

	assert.Equal(t, LevelReport{Level: 4, Remaining: 0, Cleared: true, Outcome: OutcomeMixed}, *res.Summary.Level)
	assert.Contains(t, res.Summary.Level.Headline(), "start over")
}

func TestLevelRunOnFirstBoxNeverClearsOnMisses(t *testing.T) {
	st, _ := storeWithLevels(t, "Mathe", 1, 1)
	deck, err := seededSampler().BuildLevelDeck("Mathe", st.Cards(), 1)
	require.NoError(t, err)
	r := NewRunner(st, WithClock(fixedClock()))
	require.NoError(t, r.Start(deck))

	_, err = r.Answer(false)
	require.NoError(t, err)
	r.Ready()
	res, err := r.Answer(true)
	require.NoError(t, err)

	report := res.Summary.Level
	require.NotNil(t, report)
	assert.False(t, report.Cleared)
	assert.Equal(t, 1, report.Remaining, "counted from the live store, not the deck")
	assert.Equal(t, "1 card left in level 1.", report.Headline())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "Running", Running.String())
	assert.Equal(t, "Completed", Completed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
