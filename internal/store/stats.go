package store

import (
	"math"

	"github.com/example/leitner/internal/spaced_repetition"
	"github.com/example/leitner/pkg/models"
)

// LevelStats counts every card per Leitner box
func (s *Store) LevelStats() models.LevelStats {
	var stats models.LevelStats
	for _, c := range s.cards {
		stats[spaced_repetition.ClampLevel(c.Level)]++
	}
	return stats
}

// CategoryLevelStats counts the cards of one category per box
func (s *Store) CategoryLevelStats(category string) models.LevelStats {
	var stats models.LevelStats
	for _, c := range s.CardsInCategory(category) {
		stats[spaced_repetition.ClampLevel(c.Level)]++
	}
	return stats
}

// CategoryStats reports size, average box and progress for every listed category
func (s *Store) CategoryStats() []models.CategoryStats {
	out := make([]models.CategoryStats, 0, len(s.categories))
	for _, name := range s.categories {
		cards := s.CardsInCategory(name)
		stat := models.CategoryStats{Category: name, Total: len(cards)}
		if len(cards) > 0 {
			sum := 0
			for _, c := range cards {
				sum += spaced_repetition.ClampLevel(c.Level)
			}
			avg := float64(sum) / float64(len(cards))
			stat.AvgLevel = math.Round(avg*10) / 10
			stat.Progress = int(math.Round(avg / spaced_repetition.MaxLevel * 100))
		}
		out = append(out, stat)
	}
	return out
}
