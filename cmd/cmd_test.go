package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/leitner/internal/config"
)

var envKeys = []string{
	"FLASHCARDS_DB_DRIVER", "FLASHCARDS_DB_DSN",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_OWNER_CHAT_ID", "TELEGRAM_SEND_RATE",
	"REMINDER_ENABLED", "REMINDER_AT", "REMINDER_TIMEZONE",
}

// testEnv isolates the command line from the user's home and environment
// and returns the path of a fresh sqlite database
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	return filepath.Join(dir, "cards.db")
}

func run(t *testing.T, db, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--db", db}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := run(t, db, "", args...)
	require.NoError(t, err, out)
	return out
}

func addCard(t *testing.T, db, question, answer, category string) string {
	t.Helper()
	out := mustRun(t, db, "card", "add", question, answer, "-c", category)
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Added card ") {
			return strings.Fields(line)[2]
		}
	}
	t.Fatalf("no card id in output %q", out)
	return ""
}

func TestCardLifecycle(t *testing.T) {
	db := testEnv(t)

	id := addCard(t, db, "Was ist 2+2?", "4", "Mathe")
	out := mustRun(t, db, "card", "list")
	assert.Contains(t, out, "Was ist 2+2?")
	assert.Contains(t, out, "due")

	mustRun(t, db, "card", "edit", id, "-a", "vier")
	out = mustRun(t, db, "card", "list", "-c", "Mathe")
	assert.Contains(t, out, "vier")

	out = mustRun(t, db, "card", "rm", id)
	assert.Contains(t, out, "Removed card")
	assert.Contains(t, mustRun(t, db, "card", "list"), "No cards.")
}

func TestCardAddCreatesCategory(t *testing.T) {
	db := testEnv(t)

	out := mustRun(t, db, "card", "add", "capital of France", "Paris", "-c", "Geography")
	assert.Contains(t, out, "Created category Geography")

	out = mustRun(t, db, "category", "list")
	assert.Contains(t, out, "Geography")
	assert.Contains(t, out, "Mathe")
}

func TestCardEditUnknownID(t *testing.T) {
	db := testEnv(t)

	_, err := run(t, db, "", "card", "edit", "nope", "-q", "x")
	assert.Error(t, err)
}

func TestCategoryCommands(t *testing.T) {
	db := testEnv(t)

	assert.Contains(t, mustRun(t, db, "category", "add", "Physik"), "Added category Physik")
	assert.Contains(t, mustRun(t, db, "category", "add", "Physik"), "already exists")

	addCard(t, db, "F = ?", "m*a", "Physik")
	out := mustRun(t, db, "category", "rm", "Physik")
	assert.Contains(t, out, "1 cards still reference it")

	_, err := run(t, db, "", "category", "rm", "Physik")
	assert.Error(t, err)
}

func TestStudyLevelRun(t *testing.T) {
	db := testEnv(t)
	addCard(t, db, "Hund", "dog", "Englisch")

	out, err := run(t, db, "\ny\n", "study", "Englisch", "--level", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Q: Hund")
	assert.Contains(t, out, "A: dog")
	assert.Contains(t, out, "1 correct, 0 wrong (100%)")
	assert.Contains(t, out, "Level 1 cleared!")

	out = mustRun(t, db, "card", "list")
	assert.Contains(t, out, "Englisch  2")

	out = mustRun(t, db, "history")
	assert.Contains(t, out, "Englisch")
	assert.Contains(t, out, "100%")
}

func TestStudyQuitKeepsReviews(t *testing.T) {
	db := testEnv(t)
	addCard(t, db, "Katze", "cat", "Englisch")

	out, err := run(t, db, "q\n", "study", "Englisch")
	require.NoError(t, err)
	assert.Contains(t, out, "Session stopped after 0 answers")
	assert.Contains(t, mustRun(t, db, "history"), "No sessions yet.")
}

func TestStudyEmptyLevel(t *testing.T) {
	db := testEnv(t)
	addCard(t, db, "Katze", "cat", "Englisch")

	_, err := run(t, db, "", "study", "Englisch", "--level", "3")
	assert.Error(t, err)

	_, err = run(t, db, "", "study", "Deutsch")
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := testEnv(t)
	addCard(t, src, "Baum", "tree", "Englisch")
	addCard(t, src, "3*3", "9", "Mathe")

	file := filepath.Join(t.TempDir(), "backup.json")
	assert.Contains(t, mustRun(t, src, "export", file), "Exported 2 cards")

	dst := filepath.Join(t.TempDir(), "other.db")
	out := mustRun(t, dst, "import", file)
	assert.Contains(t, out, "2 cards added")

	out = mustRun(t, dst, "import", file)
	assert.Contains(t, out, "0 cards added, 2 skipped")

	out = mustRun(t, dst, "card", "list")
	assert.Contains(t, out, "Baum")
	assert.Contains(t, out, "3*3")
}

func TestExportToStdout(t *testing.T) {
	db := testEnv(t)

	out := mustRun(t, db, "export", "-")
	assert.Contains(t, out, `"flashcards": []`)
	assert.Contains(t, out, `"version": "1.0"`)
}

func TestImportInvalidFile(t *testing.T) {
	db := testEnv(t)
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"flashcards": []}`), 0o644))

	_, err := run(t, db, "", "import", file)
	assert.Error(t, err)
}

func TestImportSheetCSV(t *testing.T) {
	db := testEnv(t)
	file := filepath.Join(t.TempDir(), "cards.csv")
	content := "Frage,Antwort,Kategorie\n" +
		"Was ist 5+5?,10,Mathe\n" +
		"ohne Antwort,,Mathe\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	out := mustRun(t, db, "import-sheet", file)
	assert.Contains(t, out, "1 created")
	assert.Contains(t, out, "1 skipped")
	assert.Contains(t, out, "Row 3:")

	assert.Contains(t, mustRun(t, db, "card", "list"), "Was ist 5+5?")
}

func TestDueAndStats(t *testing.T) {
	db := testEnv(t)
	addCard(t, db, "Haus", "house", "Englisch")

	out := mustRun(t, db, "due")
	assert.Contains(t, out, "Englisch")
	assert.Contains(t, out, "total")

	out = mustRun(t, db, "due", "--cards")
	assert.Contains(t, out, "Haus")

	out = mustRun(t, db, "stats")
	assert.Contains(t, out, "Cards: 1")
	assert.Contains(t, out, "Last 7 days: 0 sessions")
	assert.Contains(t, out, "Last saved:")
}

func TestBotRequiresToken(t *testing.T) {
	db := testEnv(t)

	_, err := run(t, db, "", "bot")
	assert.Error(t, err)
}

func TestBotLoadsConfigOnce(t *testing.T) {
	testEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_OWNER_CHAT_ID", "42")

	// a database below a regular file cannot be created, so the command
	// stops before it would contact Telegram
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	loads := 0
	root := newRootCmd(&rootOptions{load: func(path string) (*config.Config, error) {
		loads++
		return config.Load(path)
	}})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--db", filepath.Join(blocker, "cards.db"), "bot"})

	assert.Error(t, root.Execute())
	assert.Equal(t, 1, loads)
}
