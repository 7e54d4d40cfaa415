package models

import "time"

// DocumentVersion is written into every export
const DocumentVersion = "1.0"

// Document is the export/import file format
type Document struct {
	Version    string    `json:"version"`
	ExportDate time.Time `json:"exportDate"`
	Flashcards []Card    `json:"flashcards"`
	Categories []string  `json:"categories"`
	Sessions   []Session `json:"sessions"`
}
