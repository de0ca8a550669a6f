package database

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/varoOP/kinobot/internal/domain"
)

// HistoryRepo implements domain.HistoryRepo interface
type HistoryRepo struct {
	log zerolog.Logger
	db  *DB
}

// NewHistoryRepo creates a new history repository
func NewHistoryRepo(log zerolog.Logger, db *DB) domain.HistoryRepo {
	return &HistoryRepo{
		log: log.With().Str("repo", "history").Logger(),
		db:  db,
	}
}

// RecordQuery appends the raw query to history and increments the counter
// for the resolved title, both in one transaction
func (r *HistoryRepo) RecordQuery(ctx context.Context, userID int64, query, resolvedTitle string, at time.Time) error {
	r.db.lock.Lock()
	defer r.db.lock.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := r.db.squirrel.
		Insert("history").
		Columns("user_id", "title", "timestamp").
		Values(userID, query, at.Format(time.RFC3339))

	stmt, args, err := insert.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", stmt).Interface("args", args).Msg("RecordQuery history")

	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "error executing query")
	}

	upsert := r.db.squirrel.
		Insert("stats").
		Columns("user_id", "title", "count").
		Values(userID, resolvedTitle, 1).
		Suffix("ON CONFLICT (user_id, title) DO UPDATE SET count = count + 1")

	stmt, args, err = upsert.ToSql()
	if err != nil {
		return errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", stmt).Interface("args", args).Msg("RecordQuery stats")

	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "error executing query")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "error committing transaction")
	}

	return nil
}

// ListHistory returns the newest queries of userID first
func (r *HistoryRepo) ListHistory(ctx context.Context, userID int64, limit int) ([]domain.HistoryRecord, error) {
	queryBuilder := r.db.squirrel.
		Select("id", "user_id", "title", "timestamp").
		From("history").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id DESC").
		Limit(uint64(limit))

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("ListHistory")

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var (
			rec domain.HistoryRecord
			ts  string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &ts); err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}
		if rec.At, err = time.Parse(time.RFC3339, ts); err != nil {
			r.log.Warn().Err(err).Int64("id", rec.ID).Str("timestamp", ts).Msg("unparsable history timestamp")
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating rows")
	}

	return records, nil
}

// ClearHistory deletes every history row of userID and reports how many went.
// View counters are kept.
func (r *HistoryRepo) ClearHistory(ctx context.Context, userID int64) (int64, error) {
	queryBuilder := r.db.squirrel.
		Delete("history").
		Where(sq.Eq{"user_id": userID})

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building delete query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg("ClearHistory")

	res, err := r.db.handler.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "error executing delete query")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "error reading affected rows")
	}

	return n, nil
}

// ListStats returns the most requested titles of userID
func (r *HistoryRepo) ListStats(ctx context.Context, userID int64, limit int) ([]domain.StatRecord, error) {
	queryBuilder := r.db.squirrel.
		Select("user_id", "title", "count").
		From("stats").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("count DESC", "title ASC").
		Limit(uint64(limit))

	return r.queryStats(ctx, queryBuilder, "ListStats")
}

// ListAllStats returns counters of every user, largest first.
// A limit of zero or less returns everything.
func (r *HistoryRepo) ListAllStats(ctx context.Context, limit int) ([]domain.StatRecord, error) {
	queryBuilder := r.db.squirrel.
		Select("user_id", "title", "SUM(count) AS total").
		From("stats").
		GroupBy("user_id", "title").
		OrderBy("total DESC", "user_id ASC", "title ASC")

	if limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(limit))
	}

	return r.queryStats(ctx, queryBuilder, "ListAllStats")
}

func (r *HistoryRepo) queryStats(ctx context.Context, queryBuilder sq.SelectBuilder, op string) ([]domain.StatRecord, error) {
	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building query")
	}

	r.log.Trace().Str("query", query).Interface("args", args).Msg(op)

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing query")
	}
	defer rows.Close()

	var stats []domain.StatRecord
	for rows.Next() {
		var s domain.StatRecord
		if err := rows.Scan(&s.UserID, &s.Title, &s.Count); err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating rows")
	}

	return stats, nil
}
