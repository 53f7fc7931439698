package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	repo "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/menurepo"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/pkg/pgtools"
	"github.com/jackc/pgx/v5"
)

type MenusPostgresRepo struct {
	db pgtools.DB
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar) //nolint:gochecknoglobals

var dishColumns = []string{ //nolint:gochecknoglobals
	"d.id", "d.menu_id", "d.name", "d.description", "d.section",
	"d.bitter", "d.salty", "d.sour", "d.sweet", "d.umami", "d.fat", "d.piquant",
	"d.temperature", "d.color1", "d.color2", "d.color3",
}

func New(db pgtools.DB) MenusPostgresRepo {
	return MenusPostgresRepo{
		db: db,
	}
}

func (mr MenusPostgresRepo) CreateMenu(ctx context.Context, m models.Menu) (id int64, err error) { //nolint:nonamedreturns
	tx, err := mr.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create menu")
	}()

	query, args, err := psql.Insert("menus").
		Columns("owner_id", "title", "description").
		Values(m.OwnerID, m.Title, m.Description).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, writeError(err)
	}

	return id, nil
}

func (mr MenusPostgresRepo) MenuOwnership(ctx context.Context, menuID int64) (o models.Ownership, err error) { //nolint:nonamedreturns,lll
	tx, err := mr.db.Begin(ctx)
	if err != nil {
		return o, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "menu ownership")
	}()

	query, args, err := psql.Select("id", "owner_id").
		From("menus").
		Where(squirrel.Eq{"id": menuID}).ToSql()
	if err != nil {
		return o, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&o.MenuID, &o.OwnerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, repo.ErrMenuNotFound
		}

		return o, fmt.Errorf("scan error: %w", err)
	}

	return o, nil
}

func (mr MenusPostgresRepo) DishOwnership(ctx context.Context, dishID int64) (o models.Ownership, err error) { //nolint:nonamedreturns,lll
	tx, err := mr.db.Begin(ctx)
	if err != nil {
		return o, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "dish ownership")
	}()

	query, args, err := psql.Select("d.menu_id", "m.owner_id").
		From("dishes d").
		Join("menus m ON m.id = d.menu_id").
		Where(squirrel.Eq{"d.id": dishID}).ToSql()
	if err != nil {
		return o, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&o.MenuID, &o.OwnerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, repo.ErrDishNotFound
		}

		return o, fmt.Errorf("scan error: %w", err)
	}

	return o, nil
}

// ListMenusByOwner returns the owner's menus with their dish counts, oldest first.
func (mr MenusPostgresRepo) ListMenusByOwner(ctx context.Context, ownerID int64) ([]models.Menu, error) {
	return mr.listMenus(ctx, squirrel.Eq{"m.owner_id": ownerID})
}

// ListMenus returns every menu.
func (mr MenusPostgresRepo) ListMenus(ctx context.Context) ([]models.Menu, error) {
	return mr.listMenus(ctx, nil)
}

func (mr MenusPostgresRepo) listMenus(ctx context.Context, //nolint:nonamedreturns
	where squirrel.Sqlizer,
) (menus []models.Menu, err error) {
	tx, err := mr.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list menus")
	}()

	sb := psql.Select("m.id", "m.owner_id", "m.title", "m.description", "m.created_at", "m.updated_at",
		"COUNT(d.id)").
		From("menus m").
		LeftJoin("dishes d ON d.menu_id = m.id")

	if where != nil {
		sb = sb.Where(where)
	}

	query, args, err := sb.GroupBy("m.id").OrderBy("m.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	menus = make([]models.Menu, 0, 10) //nolint:gomnd

	for rows.Next() {
		var m models.Menu

		err = rows.Scan(&m.ID, &m.OwnerID, &m.Title, &m.Description, &m.CreatedAt, &m.UpdatedAt, &m.DishCount)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		menus = append(menus, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return menus, nil
}

// GetMenu loads the menu together with its dishes and their attributes.
func (mr MenusPostgresRepo) GetMenu(ctx context.Context, menuID int64) (m models.Menu, err error) { //nolint:nonamedreturns
	tx, err := mr.db.Begin(ctx)
	if err != nil {
		return m, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get menu")
	}()

	query, args, err := psql.Select("id", "owner_id", "title", "description", "created_at", "updated_at").
		From("menus").
		Where(squirrel.Eq{"id": menuID}).ToSql()
	if err != nil {
		return m, fmt.Errorf("to sql error: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&m.ID, &m.OwnerID, &m.Title, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return m, repo.ErrMenuNotFound
		}

		return m, fmt.Errorf("scan error: %w", err)
	}

	m.Dishes, err = listDishes(ctx, tx, squirrel.Eq{"d.menu_id": menuID})
	if err != nil {
		return m, err
	}

	m.DishCount = len(m.Dishes)

	return m, nil
}

// UpdateMenu locks the menu row, lets patch modify it and writes it back in
// the same transaction, so concurrent partial updates don't overwrite each other.
func (mr MenusPostgresRepo) UpdateMenu(ctx context.Context, //nolint:nonamedreturns
	menuID int64, patch func(*models.Menu),
) (err error) {
	tx, err := mr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update menu")
	}()

	query, args, err := psql.Select("id", "owner_id", "title", "description").
		From("menus").
		Where(squirrel.Eq{"id": menuID}).
		Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	var m models.Menu

	if err = tx.QueryRow(ctx, query, args...).Scan(&m.ID, &m.OwnerID, &m.Title, &m.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrMenuNotFound
		}

		return fmt.Errorf("scan error: %w", err)
	}

	patch(&m)

	query, args, err = psql.Update("menus").
		Set("title", m.Title).
		Set("description", m.Description).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": menuID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return writeError(err)
	}

	return nil
}

// DeleteMenu removes the menu; dishes and their attribute links go with it.
func (mr MenusPostgresRepo) DeleteMenu(ctx context.Context, menuID int64) error {
	return mr.delete(ctx, "menus", menuID, repo.ErrMenuNotFound)
}

func (mr MenusPostgresRepo) DeleteDish(ctx context.Context, dishID int64) error {
	return mr.delete(ctx, "dishes", dishID, repo.ErrDishNotFound)
}

func (mr MenusPostgresRepo) delete(ctx context.Context, table string, id int64, notFound error) (err error) { //nolint:nonamedreturns,lll
	tx, err := mr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete from "+table)
	}()

	query, args, err := psql.Delete(table).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return notFound
	}

	return nil
}

func (mr MenusPostgresRepo) ListDishes(ctx context.Context, menuID int64) (dishes []models.Dish, err error) { //nolint:nonamedreturns,lll
	tx, err := mr.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list dishes")
	}()

	return listDishes(ctx, tx, squirrel.Eq{"d.menu_id": menuID})
}

func (mr MenusPostgresRepo) GetDish(ctx context.Context, dishID int64) (d models.Dish, err error) { //nolint:nonamedreturns
	tx, err := mr.db.Begin(ctx)
	if err != nil {
		return d, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get dish")
	}()

	dishes, err := listDishes(ctx, tx, squirrel.Eq{"d.id": dishID})
	if err != nil {
		return d, err
	}

	if len(dishes) == 0 {
		return d, repo.ErrDishNotFound
	}

	return dishes[0], nil
}

// CreateDish inserts the dish and links it to the given catalog entries.
func (mr MenusPostgresRepo) CreateDish(ctx context.Context, //nolint:nonamedreturns
	d models.Dish, ids models.AttributeIDs,
) (id int64, err error) {
	tx, err := mr.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create dish")
	}()

	query, args, err := psql.Insert("dishes").
		Columns("menu_id", "name", "description", "section",
			"bitter", "salty", "sour", "sweet", "umami", "fat", "piquant",
			"temperature", "color1", "color2", "color3").
		Values(d.MenuID, d.Name, d.Description, d.Section,
			d.Bitter, d.Salty, d.Sour, d.Sweet, d.Umami, d.Fat, d.Piquant,
			d.Temperature, d.ColorSlots[0], d.ColorSlots[1], d.ColorSlots[2]).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, writeError(err)
	}

	if err = setAttributes(ctx, tx, id, ids, false); err != nil {
		return 0, err
	}

	return id, nil
}

// UpdateDish locks the dish row, applies patch to it and writes it back
// together with the attribute links. Each non-nil list in ids replaces the
// current links of that kind.
func (mr MenusPostgresRepo) UpdateDish(ctx context.Context, //nolint:nonamedreturns
	dishID int64, patch func(*models.Dish), ids models.AttributeIDs,
) (err error) {
	tx, err := mr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update dish")
	}()

	query, args, err := psql.Select(dishColumns...).
		From("dishes d").
		Where(squirrel.Eq{"d.id": dishID}).
		Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	d, err := scanDish(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrDishNotFound
		}

		return err
	}

	patch(&d)

	query, args, err = psql.Update("dishes").
		SetMap(map[string]interface{}{
			"name":        d.Name,
			"description": d.Description,
			"section":     d.Section,
			"bitter":      d.Bitter,
			"salty":       d.Salty,
			"sour":        d.Sour,
			"sweet":       d.Sweet,
			"umami":       d.Umami,
			"fat":         d.Fat,
			"piquant":     d.Piquant,
			"temperature": d.Temperature,
			"color1":      d.ColorSlots[0],
			"color2":      d.ColorSlots[1],
			"color3":      d.ColorSlots[2],
		}).
		Where(squirrel.Eq{"id": dishID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return writeError(err)
	}

	return setAttributes(ctx, tx, dishID, ids, true)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDish(row scanner) (models.Dish, error) {
	var d models.Dish

	err := row.Scan(&d.ID, &d.MenuID, &d.Name, &d.Description, &d.Section,
		&d.Bitter, &d.Salty, &d.Sour, &d.Sweet, &d.Umami, &d.Fat, &d.Piquant,
		&d.Temperature, &d.ColorSlots[0], &d.ColorSlots[1], &d.ColorSlots[2])
	if err != nil {
		return d, fmt.Errorf("scan error: %w", err)
	}

	d.Colors = models.CompactColors(d.ColorSlots)

	d.Emotions = []models.Attribute{}
	d.Textures = []models.Attribute{}
	d.Shapes = []models.Attribute{}

	return d, nil
}

func listDishes(ctx context.Context, tx pgx.Tx, where squirrel.Sqlizer) ([]models.Dish, error) {
	query, args, err := psql.Select(dishColumns...).
		From("dishes d").
		Where(where).
		OrderBy("d.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	dishes := make([]models.Dish, 0, 10) //nolint:gomnd

	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			rows.Close()

			return nil, err
		}

		dishes = append(dishes, d)
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if err := loadAttributes(ctx, tx, dishes); err != nil {
		return nil, err
	}

	return dishes, nil
}

func loadAttributes(ctx context.Context, tx pgx.Tx, dishes []models.Dish) error {
	if len(dishes) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(dishes))
	index := make(map[int64]int, len(dishes))

	for i, d := range dishes {
		ids = append(ids, d.ID)
		index[d.ID] = i
	}

	for _, kind := range models.AttributeKinds {
		query, args, err := psql.Select("j.dish_id", "a.id", "a.description").
			From(kind.JoinTable() + " j").
			Join(kind.Table() + " a ON a.id = j." + kind.JoinColumn()).
			Where(squirrel.Eq{"j.dish_id": ids}).
			OrderBy("a.id ASC").ToSql()
		if err != nil {
			return fmt.Errorf("to sql error: %w", err)
		}

		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query %s error: %w", kind.JoinTable(), err)
		}

		for rows.Next() {
			var (
				dishID int64
				a      models.Attribute
			)

			if err := rows.Scan(&dishID, &a.ID, &a.Description); err != nil {
				rows.Close()

				return fmt.Errorf("scan error: %w", err)
			}

			d := &dishes[index[dishID]]

			switch kind {
			case models.KindEmotion:
				d.Emotions = append(d.Emotions, a)
			case models.KindTexture:
				d.Textures = append(d.Textures, a)
			case models.KindShape:
				d.Shapes = append(d.Shapes, a)
			}
		}

		rows.Close()

		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}
	}

	return nil
}

func setAttributes(ctx context.Context, tx pgx.Tx, dishID int64, ids models.AttributeIDs, replace bool) error {
	lists := map[models.AttributeKind][]int64{
		models.KindEmotion: ids.Emotions,
		models.KindTexture: ids.Textures,
		models.KindShape:   ids.Shapes,
	}

	for _, kind := range models.AttributeKinds {
		list := lists[kind]
		if list == nil {
			continue
		}

		if replace {
			query, args, err := psql.Delete(kind.JoinTable()).
				Where(squirrel.Eq{"dish_id": dishID}).ToSql()
			if err != nil {
				return fmt.Errorf("to sql error: %w", err)
			}

			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return fmt.Errorf("exec error: %w", err)
			}
		}

		if len(list) == 0 {
			continue
		}

		ib := psql.Insert(kind.JoinTable()).Columns("dish_id", kind.JoinColumn())
		for _, id := range list {
			ib = ib.Values(dishID, id)
		}

		query, args, err := ib.Suffix("ON CONFLICT DO NOTHING").ToSql()
		if err != nil {
			return fmt.Errorf("to sql error: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return writeError(err)
		}
	}

	return nil
}

func writeError(err error) error {
	switch pgtools.ErrCode(err) {
	case pgtools.CodeForeignKeyViolation:
		return fmt.Errorf("%w: %s", repo.ErrBadReference, err.Error())
	case pgtools.CodeCheckViolation:
		return fmt.Errorf("%w: %s", repo.ErrInvalidValue, err.Error())
	default:
		return fmt.Errorf("exec error: %w", err)
	}
}
