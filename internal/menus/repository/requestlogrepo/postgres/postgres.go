package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/pgtools"
)

type RequestLogPostgresRepo struct {
	db pgtools.DB
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar) //nolint:gochecknoglobals

func New(db pgtools.DB) RequestLogPostgresRepo {
	return RequestLogPostgresRepo{db: db}
}

func (rr RequestLogPostgresRepo) CreateLog(ctx context.Context, l models.RequestLog) (err error) { //nolint:nonamedreturns
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create request log")
	}()

	query, args, err := psql.Insert("request_logs").
		Columns("method", "endpoint", "status_code", "user_id").
		Values(l.Method, l.Endpoint, l.StatusCode, l.UserID).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

// RecentLogs returns the newest limit entries, newest first.
func (rr RequestLogPostgresRepo) RecentLogs(ctx context.Context, //nolint:nonamedreturns
	limit int,
) (logs []models.RequestLog, err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "recent request logs")
	}()

	query, args, err := psql.Select("id", "created_at", "method", "endpoint", "status_code", "user_id").
		From("request_logs").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).ToSql() //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	logs = make([]models.RequestLog, 0, limit)

	for rows.Next() {
		var l models.RequestLog

		if err = rows.Scan(&l.ID, &l.CreatedAt, &l.Method, &l.Endpoint, &l.StatusCode, &l.UserID); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		logs = append(logs, l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return logs, nil
}

// DailyCounts groups the last days of requests by day, newest first.
func (rr RequestLogPostgresRepo) DailyCounts(ctx context.Context, //nolint:nonamedreturns
	days int,
) (counts []models.DailyCount, err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "daily request counts")
	}()

	query, args, err := psql.Select("date_trunc('day', created_at) AS day", "COUNT(*)").
		From("request_logs").
		Where("created_at >= now() - make_interval(days => ?)", days).
		GroupBy("day").
		OrderBy("day DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	counts = make([]models.DailyCount, 0, days)

	for rows.Next() {
		var c models.DailyCount

		if err = rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		counts = append(counts, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return counts, nil
}
