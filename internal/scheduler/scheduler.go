package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/leitner/pkg/models"
)

// DefaultReminderTime is when the daily reminder fires unless configured otherwise
const DefaultReminderTime = "09:00"

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    DueSource
	notifier  Notifier
	at        string
	now       func() time.Time
}

// DueSource reports how many cards are due per category
type DueSource interface {
	DueCounts(ctx context.Context, now time.Time) ([]models.DueCount, error)
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(ctx context.Context, due []models.DueCount) error
}

// New creates a new scheduler that fires daily at "HH:MM" in loc
func New(source DueSource, notifier Notifier, at string, loc *time.Location) *Scheduler {
	if at == "" {
		at = DefaultReminderTime
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		source:    source,
		notifier:  notifier,
		at:        at,
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At(s.at).Do(s.checkAndSendReminders)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder at %s: %w", s.at, err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	log.Printf("Daily reminder scheduled at %s (%s)", s.at, s.scheduler.Location())
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// NextRun returns when the reminder fires next
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

func (s *Scheduler) checkAndSendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.CheckNow(ctx); err != nil {
		log.Printf("Error sending reminder: %v", err)
	}
}

// CheckNow runs the reminder job synchronously. It reports whether a reminder was sent.
func (s *Scheduler) CheckNow(ctx context.Context) (bool, error) {
	due, err := s.source.DueCounts(ctx, s.now())
	if err != nil {
		return false, fmt.Errorf("failed to get due cards: %w", err)
	}

	total := 0
	for _, d := range due {
		total += d.Count
	}
	if total == 0 {
		log.Printf("No cards due, skipping reminder")
		return false, nil
	}

	if err := s.notifier.SendReminder(ctx, due); err != nil {
		return false, fmt.Errorf("failed to send reminder: %w", err)
	}
	log.Printf("Reminder sent for %d due cards", total)
	return true, nil
}
