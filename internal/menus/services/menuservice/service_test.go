package menuservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	repo "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/menurepo"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/catalogservice"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/menuservice"
	"github.com/SoundFoodPhygital/menu-server-demo/pkg/logger"
	"github.com/stretchr/testify/require"
)

type repoFake struct {
	menus  map[int64]models.Menu
	dishes map[int64]models.Dish
	ids    map[int64]models.AttributeIDs
	writes int
	nextID int64
}

func newRepoFake() *repoFake {
	return &repoFake{
		menus:  map[int64]models.Menu{},
		dishes: map[int64]models.Dish{},
		ids:    map[int64]models.AttributeIDs{},
	}
}

func (r *repoFake) CreateMenu(_ context.Context, m models.Menu) (int64, error) {
	r.writes++
	r.nextID++
	m.ID = r.nextID
	r.menus[m.ID] = m

	return m.ID, nil
}

func (r *repoFake) MenuOwnership(_ context.Context, id int64) (models.Ownership, error) {
	m, ok := r.menus[id]
	if !ok {
		return models.Ownership{}, repo.ErrMenuNotFound
	}

	return models.Ownership{MenuID: m.ID, OwnerID: m.OwnerID}, nil
}

func (r *repoFake) DishOwnership(ctx context.Context, id int64) (models.Ownership, error) {
	d, ok := r.dishes[id]
	if !ok {
		return models.Ownership{}, repo.ErrDishNotFound
	}

	return r.MenuOwnership(ctx, d.MenuID)
}

func (r *repoFake) ListMenusByOwner(_ context.Context, owner int64) ([]models.Menu, error) {
	var res []models.Menu

	for _, m := range r.menus {
		if m.OwnerID == owner {
			res = append(res, m)
		}
	}

	return res, nil
}

func (r *repoFake) ListMenus(_ context.Context) ([]models.Menu, error) {
	res := make([]models.Menu, 0, len(r.menus))
	for _, m := range r.menus {
		res = append(res, m)
	}

	return res, nil
}

func (r *repoFake) GetMenu(_ context.Context, id int64) (models.Menu, error) {
	m, ok := r.menus[id]
	if !ok {
		return models.Menu{}, repo.ErrMenuNotFound
	}

	return m, nil
}

func (r *repoFake) UpdateMenu(_ context.Context, id int64, patch func(*models.Menu)) error {
	m, ok := r.menus[id]
	if !ok {
		return repo.ErrMenuNotFound
	}

	r.writes++
	patch(&m)
	r.menus[id] = m

	return nil
}

func (r *repoFake) DeleteMenu(_ context.Context, id int64) error {
	r.writes++
	delete(r.menus, id)

	for did, d := range r.dishes {
		if d.MenuID == id {
			delete(r.dishes, did)
		}
	}

	return nil
}

func (r *repoFake) ListDishes(_ context.Context, menuID int64) ([]models.Dish, error) {
	var res []models.Dish

	for _, d := range r.dishes {
		if d.MenuID == menuID {
			res = append(res, d)
		}
	}

	return res, nil
}

func (r *repoFake) GetDish(_ context.Context, id int64) (models.Dish, error) {
	d, ok := r.dishes[id]
	if !ok {
		return models.Dish{}, repo.ErrDishNotFound
	}

	return d, nil
}

func (r *repoFake) CreateDish(_ context.Context, d models.Dish, ids models.AttributeIDs) (int64, error) {
	r.writes++
	r.nextID++
	d.ID = r.nextID
	r.dishes[d.ID] = d
	r.ids[d.ID] = ids

	return d.ID, nil
}

func (r *repoFake) UpdateDish(_ context.Context, id int64, patch func(*models.Dish), ids models.AttributeIDs) error {
	d, ok := r.dishes[id]
	if !ok {
		return repo.ErrDishNotFound
	}

	r.writes++
	patch(&d)
	r.dishes[d.ID] = d

	cur := r.ids[d.ID]
	if ids.Emotions != nil {
		cur.Emotions = ids.Emotions
	}

	if ids.Textures != nil {
		cur.Textures = ids.Textures
	}

	if ids.Shapes != nil {
		cur.Shapes = ids.Shapes
	}

	r.ids[d.ID] = cur

	return nil
}

func (r *repoFake) DeleteDish(_ context.Context, id int64) error {
	r.writes++
	delete(r.dishes, id)

	return nil
}

type catalogFake struct{}

func (catalogFake) ValidateAll(_ context.Context, ids models.AttributeIDs) error {
	for _, id := range ids.Emotions {
		if id > 9 {
			return catalogservice.ErrUnknownAttribute
		}
	}

	return nil
}

type publisherFake struct {
	events []models.MenuEvent
	err    error
}

func (p *publisherFake) Publish(_ context.Context, ev models.MenuEvent) error {
	p.events = append(p.events, ev)

	return p.err
}

var ( //nolint:gochecknoglobals
	alice = models.Identity{UserID: 1, Role: models.RoleUser}    //nolint:exhaustruct
	bob   = models.Identity{UserID: 2, Role: models.RoleUser}    //nolint:exhaustruct
	root  = models.Identity{UserID: 3, Role: models.RoleAdmin}   //nolint:exhaustruct
	boss  = models.Identity{UserID: 4, Role: models.RoleManager} //nolint:exhaustruct
)

func ptr[T any](v T) *T { return &v }

func newService() (*menuservice.MenuService, *repoFake, *publisherFake) {
	r := newRepoFake()
	p := &publisherFake{}

	return menuservice.New(r, catalogFake{}, p, logger.Nop()), r, p
}

func TestMenuLifecycle(t *testing.T) {
	ms, r, p := newService()
	ctx := context.Background()

	menuID, err := ms.CreateMenu(ctx, alice, menuservice.MenuRequest{Title: "Lunch"})
	require.NoError(t, err)

	dishID, err := ms.CreateDish(ctx, alice, menuID, menuservice.DishRequest{
		Name:       ptr("Soup"),
		Bitter:     ptr(0),
		Sweet:      ptr(5),
		Colors:     []string{"#ff0000", "rgb(0,0,0)"},
		EmotionIDs: []int64{1, 2},
	})
	require.NoError(t, err)

	d, err := ms.GetDish(ctx, alice, dishID)
	require.NoError(t, err)
	require.Equal(t, "Soup", d.Name)
	require.Equal(t, 5, *d.Sweet)
	require.Equal(t, []int64{1, 2}, r.ids[dishID].Emotions)

	require.NoError(t, ms.UpdateMenu(ctx, alice, menuID, menuservice.MenuRequest{Description: "noon"}))

	m, err := ms.GetMenu(ctx, alice, menuID)
	require.NoError(t, err)
	require.Equal(t, "Lunch", m.Title)
	require.Equal(t, "noon", m.Description)
	require.Equal(t, int64(1), m.OwnerID)

	require.NoError(t, ms.DeleteMenu(ctx, alice, menuID))

	_, err = ms.GetDish(ctx, alice, dishID)
	require.ErrorIs(t, err, models.ErrNotFound)

	types := make([]models.EventType, 0, len(p.events))
	for _, ev := range p.events {
		types = append(types, ev.Type)
	}

	require.Equal(t, []models.EventType{models.MenuCreated, models.DishCreated, models.MenuUpdated, models.MenuDeleted}, types)
}

func TestCrossUserAccess(t *testing.T) {
	ms, _, _ := newService()
	ctx := context.Background()

	menuID, err := ms.CreateMenu(ctx, alice, menuservice.MenuRequest{Title: "Lunch"})
	require.NoError(t, err)

	dishID, err := ms.CreateDish(ctx, alice, menuID, menuservice.DishRequest{Name: ptr("Soup")})
	require.NoError(t, err)

	for _, who := range []models.Identity{bob, boss} {
		_, err = ms.GetMenu(ctx, who, menuID)
		require.ErrorIs(t, err, models.ErrForbidden)

		err = ms.UpdateDish(ctx, who, dishID, menuservice.DishRequest{Name: ptr("Stew")})
		require.ErrorIs(t, err, models.ErrForbidden)

		err = ms.DeleteMenu(ctx, who, menuID)
		require.ErrorIs(t, err, models.ErrForbidden)

		_, err = ms.CreateDish(ctx, who, menuID, menuservice.DishRequest{Name: ptr("Bread")})
		require.ErrorIs(t, err, models.ErrForbidden)
	}

	menus, err := ms.ListMenus(ctx, bob)
	require.NoError(t, err)
	require.Empty(t, menus)

	_, err = ms.GetDish(ctx, root, dishID)
	require.NoError(t, err)
	require.NoError(t, ms.UpdateMenu(ctx, root, menuID, menuservice.MenuRequest{Title: "Brunch"}))

	_, err = ms.GetMenu(ctx, bob, 999)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestDishValidationHasNoPartialWrite(t *testing.T) {
	ms, r, _ := newService()
	ctx := context.Background()

	menuID, err := ms.CreateMenu(ctx, alice, menuservice.MenuRequest{Title: "Lunch"})
	require.NoError(t, err)

	writes := r.writes

	tests := []struct {
		name string
		req  menuservice.DishRequest
	}{
		{"taste above range", menuservice.DishRequest{Name: ptr("Soup"), Bitter: ptr(6)}},
		{"taste below range", menuservice.DishRequest{Name: ptr("Soup"), Piquant: ptr(-1)}},
		{"bad color", menuservice.DishRequest{Name: ptr("Soup"), Colors: []string{"nope"}}},
		{"bad color slot", menuservice.DishRequest{Name: ptr("Soup"), Color2: ptr("not-a-color")}},
		{"too many colors", menuservice.DishRequest{Name: ptr("Soup"), Colors: []string{"#fff", "#000", "#111", "#222"}}},
		{"missing name", menuservice.DishRequest{}},
		{"long name", menuservice.DishRequest{Name: ptr(string(make([]byte, 201)))}},
		{"unknown emotion", menuservice.DishRequest{Name: ptr("Soup"), EmotionIDs: []int64{42}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ms.CreateDish(ctx, alice, menuID, tc.req)
			require.ErrorIs(t, err, models.ErrBadRequest)
			require.Equal(t, writes, r.writes)
		})
	}

	_, err = ms.CreateMenu(ctx, alice, menuservice.MenuRequest{})
	require.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUpdateDishIsPartial(t *testing.T) {
	ms, r, _ := newService()
	ctx := context.Background()

	menuID, err := ms.CreateMenu(ctx, alice, menuservice.MenuRequest{Title: "Lunch"})
	require.NoError(t, err)

	dishID, err := ms.CreateDish(ctx, alice, menuID, menuservice.DishRequest{
		Name:       ptr("Soup"),
		Salty:      ptr(3),
		Colors:     []string{"#ff0000"},
		EmotionIDs: []int64{1},
		ShapeIDs:   []int64{2},
	})
	require.NoError(t, err)

	err = ms.UpdateDish(ctx, alice, dishID, menuservice.DishRequest{
		Umami:      ptr(4),
		EmotionIDs: []int64{3, 4},
	})
	require.NoError(t, err)

	d := r.dishes[dishID]
	require.Equal(t, "Soup", d.Name)
	require.Equal(t, 3, *d.Salty)
	require.Equal(t, 4, *d.Umami)
	require.Equal(t, []string{"#ff0000"}, d.Colors)
	require.Equal(t, []int64{3, 4}, r.ids[dishID].Emotions)
	require.Equal(t, []int64{2}, r.ids[dishID].Shapes)

	err = ms.UpdateDish(ctx, alice, dishID, menuservice.DishRequest{Name: ptr("")})
	require.ErrorIs(t, err, models.ErrBadRequest)
}

func TestDishColorSlots(t *testing.T) {
	ms, r, _ := newService()
	ctx := context.Background()

	menuID, err := ms.CreateMenu(ctx, alice, menuservice.MenuRequest{Title: "Lunch"})
	require.NoError(t, err)

	dishID, err := ms.CreateDish(ctx, alice, menuID, menuservice.DishRequest{
		Name:   ptr("Soup"),
		Color1: ptr("#FF0000"),
		Color3: ptr("#0000FF"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{"#FF0000", "#0000FF"}, r.dishes[dishID].Colors)

	require.NoError(t, ms.UpdateDish(ctx, alice, dishID, menuservice.DishRequest{Color2: ptr("#00FF00")}))
	require.Equal(t, [models.MaxColors]string{"#FF0000", "#00FF00", "#0000FF"}, r.dishes[dishID].ColorSlots)

	require.NoError(t, ms.UpdateDish(ctx, alice, dishID, menuservice.DishRequest{Color1: ptr("")}))
	require.Equal(t, []string{"#00FF00", "#0000FF"}, r.dishes[dishID].Colors)

	require.NoError(t, ms.UpdateDish(ctx, alice, dishID, menuservice.DishRequest{Colors: []string{"#123456"}}))
	require.Equal(t, [models.MaxColors]string{"#123456", "", ""}, r.dishes[dishID].ColorSlots)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	ms, _, p := newService()
	p.err = errors.New("broker down")

	_, err := ms.CreateMenu(context.Background(), alice, menuservice.MenuRequest{Title: "Lunch"})
	require.NoError(t, err)
	require.Len(t, p.events, 1)
}
