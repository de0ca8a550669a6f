package domain

import (
	"context"
	"time"
)

// HistoryRecord is one query as the user typed it
type HistoryRecord struct {
	ID     int64     `yaml:"-"`
	UserID int64     `yaml:"user_id"`
	Title  string    `yaml:"title"`
	At     time.Time `yaml:"at"`
}

// StatRecord counts how often a user got a given resolved title
type StatRecord struct {
	UserID int64  `yaml:"user_id"`
	Title  string `yaml:"title"`
	Count  int    `yaml:"count"`
}

// HistoryRepo defines persistence for query history and view counters
type HistoryRepo interface {
	// RecordQuery appends the raw query to history and bumps the counter of the resolved title
	RecordQuery(ctx context.Context, userID int64, query, resolvedTitle string, at time.Time) error

	ListHistory(ctx context.Context, userID int64, limit int) ([]HistoryRecord, error)
	ClearHistory(ctx context.Context, userID int64) (int64, error)

	ListStats(ctx context.Context, userID int64, limit int) ([]StatRecord, error)
	ListAllStats(ctx context.Context, limit int) ([]StatRecord, error)
}
