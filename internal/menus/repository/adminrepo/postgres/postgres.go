package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/pgtools"
)

type AdminPostgresRepo struct {
	db pgtools.DB
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar) //nolint:gochecknoglobals

func New(db pgtools.DB) AdminPostgresRepo {
	return AdminPostgresRepo{db: db}
}

// Stats counts every table in a single round trip.
func (ar AdminPostgresRepo) Stats(ctx context.Context) (s models.Stats, err error) { //nolint:nonamedreturns
	tx, err := ar.db.Begin(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "stats")
	}()

	query, args, err := psql.Select(
		"(SELECT COUNT(*) FROM users)",
		"(SELECT COUNT(*) FROM menus)",
		"(SELECT COUNT(*) FROM dishes)",
		"(SELECT COUNT(*) FROM emotions)",
		"(SELECT COUNT(*) FROM textures)",
		"(SELECT COUNT(*) FROM shapes)",
		"(SELECT COUNT(*) FROM request_logs)",
	).ToSql()
	if err != nil {
		return models.Stats{}, fmt.Errorf("to sql error: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).
		Scan(&s.Users, &s.Menus, &s.Dishes, &s.Emotions, &s.Textures, &s.Shapes, &s.Requests)
	if err != nil {
		return models.Stats{}, fmt.Errorf("scan error: %w", err)
	}

	return s, nil
}
