package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/pgtools"
)

type CatalogPostgresRepo struct {
	db pgtools.DB
}

func New(db pgtools.DB) CatalogPostgresRepo {
	return CatalogPostgresRepo{db: db}
}

func (cr CatalogPostgresRepo) List(ctx context.Context, //nolint:nonamedreturns
	kind models.AttributeKind,
) (attrs []models.Attribute, err error) {
	tx, err := cr.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list "+kind.Table())
	}()

	query, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "description").
		From(kind.Table()).
		OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	attrs = make([]models.Attribute, 0, 10) //nolint:gomnd

	for rows.Next() {
		var a models.Attribute

		if err = rows.Scan(&a.ID, &a.Description); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		attrs = append(attrs, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return attrs, nil
}
