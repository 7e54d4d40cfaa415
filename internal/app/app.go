// Package app wires the database, the store and the study runner together.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/leitner/internal/config"
	"github.com/example/leitner/internal/database"
	"github.com/example/leitner/internal/session"
	"github.com/example/leitner/internal/spaced_repetition"
	"github.com/example/leitner/internal/store"
	"github.com/example/leitner/pkg/models"
)

// persistTimeout bounds a single save triggered by the runner
const persistTimeout = 10 * time.Second

// App holds the open database and the hydrated store
type App struct {
	Config   *config.Config
	DB       *sqlx.DB
	Blobs    *database.BlobRepository
	Sessions *database.SessionRepository
	Store    *store.Store
	Now      func() time.Time
}

// Open connects to the configured database, applies migrations and loads the store
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		DB:       db,
		Blobs:    database.NewBlobRepository(db),
		Sessions: database.NewSessionRepository(db),
		Store:    store.New(spaced_repetition.NewLeitner()),
		Now:      time.Now,
	}

	if err := a.Store.Load(ctx, a.Blobs); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	// Cards written by older versions may lack ids or review dates
	if changed := a.Store.Normalize(a.Now()); changed > 0 {
		log.Printf("Initialized %d cards", changed)
		if err := a.Save(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	return a, nil
}

// Close closes the database connection
func (a *App) Close() error {
	return a.DB.Close()
}

// Save writes the store to the database
func (a *App) Save(ctx context.Context) error {
	if err := a.Store.Save(ctx, a.Blobs); err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	return nil
}

// Persist saves the store and logs failures instead of returning them
func (a *App) Persist(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	if err := a.Save(ctx); err != nil {
		log.Printf("Error persisting store: %v", err)
	}
}

// Archive appends a completed session to the unbounded session archive
func (a *App) Archive(ctx context.Context, s models.Session) {
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()

	if err := a.Sessions.Create(ctx, &s); err != nil {
		log.Printf("Error archiving session: %v", err)
	}
}

// NewRunner creates a runner that persists after every answer and archives completed sessions
func (a *App) NewRunner(opts ...session.Option) *session.Runner {
	defaults := []session.Option{
		session.WithClock(a.Now),
		session.WithPersist(func() { a.Persist(context.Background()) }),
		session.WithArchive(func(s models.Session) { a.Archive(context.Background(), s) }),
	}
	return session.NewRunner(a.Store, append(defaults, opts...)...)
}
