package backup

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/leitner/internal/spaced_repetition"
	"github.com/example/leitner/internal/store"
	"github.com/example/leitner/pkg/models"
)

var t0 = time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)

// legacyExport is shaped like a file written by the browser version of the app
const legacyExport = `{
  "version": "1.0",
  "exportDate": "2025-11-01T09:00:00.000Z",
  "flashcards": [
    {"question": "7*8", "answer": "56", "category": "Mathe", "level": 3,
     "lastReviewed": "2025-10-30T10:00:00.000Z", "nextReview": "2025-11-06T10:00:00.000Z"},
    {"question": "der Hund", "answer": "the dog", "category": "Englisch"}
  ],
  "categories": ["Mathe", "Englisch", "Latein"],
  "sessions": [
    {"date": "2025-10-30T10:05:00.000Z", "category": "Mathe", "correct": 4, "incorrect": 1, "total": 5, "successRate": 80}
  ]
}`

func newStore() *store.Store {
	return store.New(spaced_repetition.NewLeitner())
}

func TestExportDocument(t *testing.T) {
	st := newStore()
	_, err := st.AddCard("q", "a", "Mathe", "Bruchrechnen", t0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, st, t0))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	for _, key := range []string{"version", "exportDate", "flashcards", "categories", "sessions"} {
		assert.Contains(t, doc, key)
	}
	assert.JSONEq(t, `"1.0"`, string(doc["version"]))
	assert.JSONEq(t, `[]`, string(doc["sessions"]))

	var cards []map[string]interface{}
	require.NoError(t, json.Unmarshal(doc["flashcards"], &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "Bruchrechnen", cards[0]["topic"])
	assert.Nil(t, cards[0]["lastReviewed"])
	assert.EqualValues(t, 1, cards[0]["level"])
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newStore()
	card, err := src.AddCard("q", "a", "Mathe", "", t0)
	require.NoError(t, err)
	src.Engine().RecordCorrect(card, t0)
	src.RecordSession(models.NewSession(t0, "Mathe", 0, 1, 0))

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, src, t0))

	dst := newStore()
	result, err := Import(&buf, dst, Replace, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CardsAdded)

	cards := dst.Cards()
	require.Len(t, cards, 1)
	assert.Equal(t, card.ID, cards[0].ID)
	assert.Equal(t, 2, cards[0].Level)
	assert.True(t, cards[0].NextReview.Equal(card.NextReview))
	assert.Equal(t, src.Sessions(), dst.Sessions())
}

func TestDecodeLegacyExport(t *testing.T) {
	doc, err := Decode(strings.NewReader(legacyExport))
	require.NoError(t, err)

	assert.Equal(t, "1.0", doc.Version)
	require.Len(t, doc.Flashcards, 2)
	assert.Equal(t, 3, doc.Flashcards[0].Level)
	require.NotNil(t, doc.Flashcards[0].LastReviewed)
	assert.True(t, doc.Flashcards[1].NextReview.IsZero())
	require.Len(t, doc.Sessions, 1)
	assert.Equal(t, 80, doc.Sessions[0].SuccessRate)
}

func TestDecodeRejectsMissingFields(t *testing.T) {
	cases := map[string]string{
		"not json":          `{"version": `,
		"no version":        `{"flashcards": [], "categories": []}`,
		"empty version":     `{"version": "", "flashcards": [], "categories": []}`,
		"no flashcards":     `{"version": "1.0", "categories": []}`,
		"null flashcards":   `{"version": "1.0", "flashcards": null, "categories": []}`,
		"no categories":     `{"version": "1.0", "flashcards": []}`,
		"wrong field types": `{"version": "1.0", "flashcards": {}, "categories": []}`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(input))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestDecodeAllowsMissingSessions(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"version": "1.0", "flashcards": [], "categories": ["Mathe"]}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Sessions)
}

func TestImportInvalidLeavesStoreUntouched(t *testing.T) {
	st := newStore()
	existing, err := st.AddCard("q", "a", "Mathe", "", t0)
	require.NoError(t, err)

	_, err = Import(strings.NewReader(`{"flashcards": [{"question": "x"}]}`), st, Replace, t0)

	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, []*models.Card{existing}, st.Cards())
	assert.Equal(t, store.DefaultCategories, st.Categories())
}

func TestImportMerge(t *testing.T) {
	st := newStore()
	_, err := st.AddCard("7*8", "fifty-six", "Mathe", "", t0)
	require.NoError(t, err)

	result, err := Import(strings.NewReader(legacyExport), st, Merge, t0)
	require.NoError(t, err)

	assert.Equal(t, ImportResult{
		Policy:          Merge,
		CardsAdded:      1,
		CardsSkipped:    1,
		CategoriesAdded: 1,
		SessionsAdded:   1,
	}, result)

	dog, ok := st.FindByQuestion("Englisch", "der Hund")
	require.True(t, ok)
	assert.NotEmpty(t, dog.ID)
	assert.Equal(t, 1, dog.Level)
	assert.True(t, st.Engine().IsDue(dog, t0))

	kept, ok := st.FindByQuestion("Mathe", "7*8")
	require.True(t, ok)
	assert.Equal(t, "fifty-six", kept.Answer)
	assert.Contains(t, st.Categories(), "Latein")
}

func TestImportReplace(t *testing.T) {
	st := newStore()
	_, err := st.AddCard("old", "a", "Mathe", "", t0)
	require.NoError(t, err)

	result, err := Import(strings.NewReader(legacyExport), st, Replace, t0)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CardsAdded)

	cards := st.Cards()
	require.Len(t, cards, 2)
	assert.Equal(t, "7*8", cards[0].Question)
	assert.Equal(t, 3, cards[0].Level, "levels survive a replace")
	assert.Equal(t, 1, cards[1].Level)
	assert.Equal(t, []string{"Mathe", "Englisch", "Latein"}, st.Categories())
	assert.Len(t, st.Sessions(), 1)
}

func TestApplyUnknownPolicy(t *testing.T) {
	st := newStore()
	doc := &models.Document{Version: "1.0", Flashcards: []models.Card{{Question: "q"}}}

	_, err := Apply(st, doc, Policy("append"), t0)

	assert.Error(t, err)
	assert.Empty(t, st.Cards())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "karteikarten_backup_2025-11-20.json", FileName(t0))
}
