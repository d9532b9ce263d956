// Package tasks runs catalog maintenance in the background on a
// SQLite-backed backlite queue.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client owns the queue database and the backlite dispatcher.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	config  Config
	running atomic.Bool
}

// QueueDBPath places the queue next to the catalog database:
// data/catalog.db -> data/catalog-tasks.db.
func QueueDBPath(catalogDBPath string) string {
	dir, file := filepath.Split(catalogDBPath)
	ext := filepath.Ext(file)
	return filepath.Join(dir, strings.TrimSuffix(file, ext)+"-tasks"+ext)
}

// NewClient opens the queue database and installs the backlite schema. The
// queue lives in its own file so polling never blocks catalog writes.
func NewClient(catalogDBPath string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	db, err := sql.Open("sqlite3", QueueDBPath(catalogDBPath)+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open task queue database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          zeroLogger{log.With().Str("component", "tasks").Logger()},
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("set up task queue: %w", err)
	}

	return &Client{queue: queue, db: db, config: cfg}, nil
}

// Register adds queues. Call it before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// Start runs the workers until ctx is cancelled or Stop is called.
func (c *Client) Start(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	log.Info().Int("workers", c.config.Workers).Msg("Task queue started")
	c.queue.Start(ctx)
}

// Stop waits for in-flight tasks until ctx expires. It reports whether every
// worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.running.Load() {
		return true
	}
	finished := c.queue.Stop(ctx)
	if finished {
		log.Info().Msg("Task queue stopped")
	} else {
		log.Warn().Msg("Task queue stopped before every task finished")
	}
	return finished
}

// Close releases the queue database. Call it after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Enqueue persists tasks for the workers and returns their ids.
func (c *Client) Enqueue(tasks ...backlite.Task) ([]string, error) {
	ids, err := c.queue.Add(tasks...).Save()
	if err != nil {
		return nil, fmt.Errorf("enqueue %d task(s): %w", len(tasks), err)
	}
	return ids, nil
}

// Dispatch hands task to the queue, or runs process inline when there is no
// queue to hand it to.
func Dispatch[T backlite.Task](ctx context.Context, c *Client, task T, process backlite.QueueProcessor[T]) error {
	if c == nil {
		return process(ctx, task)
	}
	_, err := c.Enqueue(task)
	return err
}

// zeroLogger adapts zerolog to backlite.Logger.
type zeroLogger struct {
	logger zerolog.Logger
}

func (l zeroLogger) Info(message string, params ...any) {
	l.logger.Info().Fields(params).Msg(message)
}

func (l zeroLogger) Error(message string, params ...any) {
	l.logger.Error().Fields(params).Msg(message)
}
