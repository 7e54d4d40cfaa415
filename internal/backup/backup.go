// Package backup reads and writes the JSON export document.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/leitner/internal/store"
	"github.com/example/leitner/pkg/models"
)

// ErrInvalidInput is returned for import documents missing required fields
var ErrInvalidInput = errors.New("backup: invalid import document")

// Policy selects how an import is applied to the store
type Policy string

const (
	Merge   Policy = "merge"
	Replace Policy = "replace"
)

// ImportResult reports the effect of an import
type ImportResult struct {
	Policy          Policy
	CardsAdded      int
	CardsSkipped    int
	CategoriesAdded int
	SessionsAdded   int
}

// rawDocument mirrors models.Document with pointers so absent fields can be told apart
type rawDocument struct {
	Version    *string           `json:"version"`
	ExportDate *time.Time        `json:"exportDate"`
	Flashcards *[]models.Card    `json:"flashcards"`
	Categories *[]string         `json:"categories"`
	Sessions   *[]models.Session `json:"sessions"`
}

// Export writes the store's contents as an indented JSON document
func Export(w io.Writer, st *store.Store, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st.Snapshot(now)); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// FileName returns the default export file name for a date
func FileName(now time.Time) string {
	return fmt.Sprintf("karteikarten_backup_%s.json", now.Format("2006-01-02"))
}

// Decode parses and validates an import document. version, flashcards and
// categories are required; sessions are optional.
func Decode(r io.Reader) (*models.Document, error) {
	var raw rawDocument
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var missing []string
	if raw.Version == nil || strings.TrimSpace(*raw.Version) == "" {
		missing = append(missing, "version")
	}
	if raw.Flashcards == nil {
		missing = append(missing, "flashcards")
	}
	if raw.Categories == nil {
		missing = append(missing, "categories")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	doc := &models.Document{
		Version:    *raw.Version,
		Flashcards: *raw.Flashcards,
		Categories: *raw.Categories,
	}
	if raw.ExportDate != nil {
		doc.ExportDate = *raw.ExportDate
	}
	if raw.Sessions != nil {
		doc.Sessions = *raw.Sessions
	}
	return doc, nil
}

// Apply imports a decoded document into the store. Imported cards are
// initialized before they are stored.
func Apply(st *store.Store, doc *models.Document, policy Policy, now time.Time) (ImportResult, error) {
	result := ImportResult{Policy: policy}

	switch policy {
	case Merge:
		merged := st.Merge(doc.Flashcards, doc.Categories, doc.Sessions, now)
		result.CardsAdded = merged.CardsAdded
		result.CardsSkipped = merged.CardsSkipped
		result.CategoriesAdded = merged.CategoriesAdded
		result.SessionsAdded = merged.SessionsAdded
	case Replace:
		st.Replace(doc.Flashcards, doc.Categories, doc.Sessions, now)
		result.CardsAdded = len(doc.Flashcards)
		result.CategoriesAdded = len(doc.Categories)
		result.SessionsAdded = len(doc.Sessions)
	default:
		return result, fmt.Errorf("unknown import policy %q", policy)
	}

	return result, nil
}

// Import decodes r and applies it. A malformed document leaves the store untouched.
func Import(r io.Reader, st *store.Store, policy Policy, now time.Time) (ImportResult, error) {
	doc, err := Decode(r)
	if err != nil {
		return ImportResult{Policy: policy}, err
	}
	return Apply(st, doc, policy, now)
}
