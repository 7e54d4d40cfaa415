package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/leitner/internal/spaced_repetition"
	"github.com/example/leitner/internal/store"
	"github.com/example/leitner/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath        string // Path to the Excel or CSV file
	QuestionColumn  string // Column with the question
	AnswerColumn    string // Column with the answer
	CategoryColumn  string // Column with the category
	TopicColumn     string // Column with the optional topic
	LevelColumn     string // Column with the starting box for new cards
	SheetName       string // Sheet to import; empty means the first sheet
	StartRow        int    // The row to start importing from (1-based index)
	DefaultCategory string // Used when a row has no category
	Comma           rune   // CSV field separator
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		QuestionColumn: "A",
		AnswerColumn:   "B",
		CategoryColumn: "C",
		TopicColumn:    "D",
		LevelColumn:    "E",
		StartRow:       2, // skip the header
		Comma:          ',',
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed    int
	CategoriesCreated int
	Created           int
	Updated           int
	Skipped           int
	Errors            []string
}

// rowData is one card as read from a sheet or CSV row
type rowData struct {
	question string
	answer   string
	category string
	topic    string
	level    string
}

// ImportCards imports cards from an Excel or CSV file into the store
func ImportCards(st *store.Store, config ImportConfig, now time.Time) (*ImportResult, error) {
	if config.StartRow < 1 {
		config.StartRow = 1
	}

	var (
		result *ImportResult
		err    error
	)
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		result, err = importFromCSV(st, config, now)
	} else {
		result, err = importFromExcel(st, config, now)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("Imported %s: %d created, %d updated, %d skipped",
		filepath.Base(config.FilePath), result.Created, result.Updated, result.Skipped)
	return result, nil
}

// importFromExcel imports cards from an Excel workbook
func importFromExcel(st *store.Store, config ImportConfig, now time.Time) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	imp := newImporter(st, config, now)
	for i, row := range rows {
		if i < config.StartRow-1 || isBlank(row) {
			continue
		}
		imp.process(config.extract(row), i+1)
	}
	return imp.result, nil
}

// importFromCSV imports cards from a CSV file. A row with only its first
// field set is a category header that applies to the rows below it.
func importFromCSV(st *store.Store, config ImportConfig, now time.Time) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if config.Comma != 0 {
		reader.Comma = config.Comma
	}

	imp := newImporter(st, config, now)
	currentCategory := config.DefaultCategory
	rowNum := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		rowNum++
		if rowNum < config.StartRow || isBlank(row) {
			continue
		}

		if header, ok := categoryHeader(row); ok {
			currentCategory = header
			continue
		}

		data := config.extract(row)
		if data.category == "" {
			data.category = currentCategory
		}
		imp.process(data, rowNum)
	}
	return imp.result, nil
}

type importer struct {
	store  *store.Store
	config ImportConfig
	now    time.Time
	result *ImportResult
}

func newImporter(st *store.Store, config ImportConfig, now time.Time) *importer {
	return &importer{
		store:  st,
		config: config,
		now:    now,
		result: &ImportResult{Errors: make([]string, 0)},
	}
}

func (imp *importer) process(data rowData, rowNum int) {
	imp.result.TotalProcessed++
	if err := imp.processCardData(data, rowNum); err != nil {
		imp.result.Skipped++
		imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
	}
}

// processCardData creates or updates the card described by one row
func (imp *importer) processCardData(data rowData, rowNum int) error {
	question := strings.TrimSpace(data.question)
	answer := strings.TrimSpace(data.answer)
	category := strings.TrimSpace(data.category)
	if category == "" {
		category = imp.config.DefaultCategory
	}

	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if answer == "" {
		return fmt.Errorf("answer cannot be empty")
	}
	if category == "" {
		return fmt.Errorf("category cannot be empty")
	}

	category, err := imp.ensureCategory(category)
	if err != nil {
		return err
	}

	matches := imp.findByQuestion(question)
	for _, existing := range matches {
		if strings.EqualFold(existing.Category, category) {
			if err := imp.store.EditCard(existing.ID, question, answer); err != nil {
				return fmt.Errorf("failed to update card: %w", err)
			}
			if topic := strings.TrimSpace(data.topic); topic != "" {
				existing.Topic = topic
			}
			imp.result.Updated++
			return nil
		}
	}
	if len(matches) > 0 {
		return fmt.Errorf("question exists in category %s", matches[0].Category)
	}

	card, err := imp.store.AddCard(question, answer, category, data.topic, imp.now)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	card.Level = parseIntOrDefault(data.level, spaced_repetition.MinLevel, spaced_repetition.MaxLevel, spaced_repetition.MinLevel)
	imp.result.Created++
	return nil
}

// ensureCategory adds a missing category and returns the name cards are filed under.
// An existing category matching case-insensitively keeps its own spelling.
func (imp *importer) ensureCategory(name string) (string, error) {
	for _, existing := range imp.store.Categories() {
		if strings.EqualFold(existing, name) {
			return existing, nil
		}
	}
	added, err := imp.store.AddCategory(name)
	if err != nil {
		return "", fmt.Errorf("failed to create category: %w", err)
	}
	if added {
		imp.result.CategoriesCreated++
	}
	return name, nil
}

func (imp *importer) findByQuestion(question string) []*models.Card {
	var matches []*models.Card
	for _, c := range imp.store.Cards() {
		if strings.EqualFold(c.Question, question) {
			matches = append(matches, c)
		}
	}
	return matches
}

func (config ImportConfig) extract(row []string) rowData {
	return rowData{
		question: cell(row, config.QuestionColumn),
		answer:   cell(row, config.AnswerColumn),
		category: cell(row, config.CategoryColumn),
		topic:    cell(row, config.TopicColumn),
		level:    cell(row, config.LevelColumn),
	}
}

// cell returns the value in column, or "" when the column is unset or past the row's end
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}

func categoryHeader(row []string) (string, bool) {
	first := strings.Trim(strings.TrimSpace(row[0]), "\"")
	if first == "" {
		return "", false
	}
	for _, field := range row[1:] {
		if strings.TrimSpace(field) != "" {
			return "", false
		}
	}
	return first, true
}

func isBlank(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

// Helper function to parse integer with default value, clamped to [min, max]
func parseIntOrDefault(s string, min, max, defaultVal int) int {
	val, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultVal
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
