package menuservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	repo "github.com/SoundFoodPhygital/menu-server-demo/internal/menus/repository/menurepo"
	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/services/guard"
	"github.com/SoundFoodPhygital/menu-server-demo/pkg/logger"
)

var (
	ErrMenuNotFound  = models.NewError(models.ErrNotFound, "menu not found")
	ErrDishNotFound  = models.NewError(models.ErrNotFound, "dish not found")
	ErrEmptyTitle    = models.NewError(models.ErrBadRequest, "title is required")
	ErrEmptyName     = models.NewError(models.ErrBadRequest, "name is required")
	ErrBadReference  = models.NewError(models.ErrBadRequest, "unknown reference")
	ErrOutOfRange    = models.NewError(models.ErrBadRequest, "value out of range")
	errNothingToSave = models.NewError(models.ErrBadRequest, "empty body")
)

type MenuService struct {
	menuRepo  Repository
	catalog   Catalog
	publisher Publisher
	lg        logger.Logger
}

type Repository interface {
	CreateMenu(context.Context, models.Menu) (int64, error)
	MenuOwnership(context.Context, int64) (models.Ownership, error)
	DishOwnership(context.Context, int64) (models.Ownership, error)
	ListMenusByOwner(context.Context, int64) ([]models.Menu, error)
	ListMenus(context.Context) ([]models.Menu, error)
	GetMenu(context.Context, int64) (models.Menu, error)
	UpdateMenu(ctx context.Context, menuID int64, patch func(*models.Menu)) error
	DeleteMenu(context.Context, int64) error
	ListDishes(context.Context, int64) ([]models.Dish, error)
	GetDish(context.Context, int64) (models.Dish, error)
	CreateDish(context.Context, models.Dish, models.AttributeIDs) (int64, error)
	UpdateDish(ctx context.Context, dishID int64, patch func(*models.Dish), ids models.AttributeIDs) error
	DeleteDish(context.Context, int64) error
}

type Catalog interface {
	ValidateAll(context.Context, models.AttributeIDs) error
}

type Publisher interface {
	Publish(context.Context, models.MenuEvent) error
}

func New(menuRepo Repository, catalog Catalog, publisher Publisher, lg logger.Logger) *MenuService {
	return &MenuService{
		menuRepo:  menuRepo,
		catalog:   catalog,
		publisher: publisher,
		lg:        lg,
	}
}

// ListMenus returns the caller's own menus.
func (ms *MenuService) ListMenus(ctx context.Context, id models.Identity) ([]models.Menu, error) {
	menus, err := ms.menuRepo.ListMenusByOwner(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("list menus by owner error: %w", err)
	}

	return menus, nil
}

// ListAllMenus is used by the admin surface.
func (ms *MenuService) ListAllMenus(ctx context.Context) ([]models.Menu, error) {
	menus, err := ms.menuRepo.ListMenus(ctx)
	if err != nil {
		return nil, fmt.Errorf("list menus error: %w", err)
	}

	return menus, nil
}

func (ms *MenuService) CreateMenu(ctx context.Context, id models.Identity, req MenuRequest) (int64, error) {
	if req.Title == "" {
		return 0, ErrEmptyTitle
	}

	if err := validateStruct(req); err != nil {
		return 0, err
	}

	menuID, err := ms.menuRepo.CreateMenu(ctx, models.Menu{ //nolint:exhaustruct
		OwnerID:     id.UserID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return 0, wrap("create menu", err)
	}

	ms.publish(ctx, models.MenuCreated, menuID, 0, id.UserID)

	return menuID, nil
}

func (ms *MenuService) GetMenu(ctx context.Context, id models.Identity, menuID int64) (models.Menu, error) {
	if _, err := ms.authorizeMenu(ctx, id, menuID, guard.Read); err != nil {
		return models.Menu{}, err
	}

	m, err := ms.menuRepo.GetMenu(ctx, menuID)
	if err != nil {
		return models.Menu{}, wrap("get menu", err)
	}

	return m, nil
}

func (ms *MenuService) UpdateMenu(ctx context.Context, id models.Identity, menuID int64, req MenuRequest) error {
	if req.Title == "" && req.Description == "" {
		return errNothingToSave
	}

	if err := validateStruct(req); err != nil {
		return err
	}

	o, err := ms.authorizeMenu(ctx, id, menuID, guard.Write)
	if err != nil {
		return err
	}

	err = ms.menuRepo.UpdateMenu(ctx, menuID, func(m *models.Menu) {
		if req.Title != "" {
			m.Title = req.Title
		}

		if req.Description != "" {
			m.Description = req.Description
		}
	})
	if err != nil {
		return wrap("update menu", err)
	}

	ms.publish(ctx, models.MenuUpdated, menuID, 0, o.OwnerID)

	return nil
}

func (ms *MenuService) DeleteMenu(ctx context.Context, id models.Identity, menuID int64) error {
	o, err := ms.authorizeMenu(ctx, id, menuID, guard.Write)
	if err != nil {
		return err
	}

	if err := ms.menuRepo.DeleteMenu(ctx, menuID); err != nil {
		return wrap("delete menu", err)
	}

	ms.publish(ctx, models.MenuDeleted, menuID, 0, o.OwnerID)

	return nil
}

func (ms *MenuService) ListDishes(ctx context.Context, id models.Identity, menuID int64) ([]models.Dish, error) {
	if _, err := ms.authorizeMenu(ctx, id, menuID, guard.Read); err != nil {
		return nil, err
	}

	dishes, err := ms.menuRepo.ListDishes(ctx, menuID)
	if err != nil {
		return nil, wrap("list dishes", err)
	}

	return dishes, nil
}

// CreateDish validates the whole request before anything is written.
func (ms *MenuService) CreateDish(ctx context.Context, id models.Identity, menuID int64, req DishRequest) (int64, error) {
	if req.Name == nil || *req.Name == "" {
		return 0, ErrEmptyName
	}

	if err := ms.validateDish(ctx, req); err != nil {
		return 0, err
	}

	o, err := ms.authorizeMenu(ctx, id, menuID, guard.Write)
	if err != nil {
		return 0, err
	}

	d := models.Dish{MenuID: menuID} //nolint:exhaustruct
	req.apply(&d)

	dishID, err := ms.menuRepo.CreateDish(ctx, d, req.attributeIDs())
	if err != nil {
		return 0, wrap("create dish", err)
	}

	ms.publish(ctx, models.DishCreated, menuID, dishID, o.OwnerID)

	return dishID, nil
}

func (ms *MenuService) GetDish(ctx context.Context, id models.Identity, dishID int64) (models.Dish, error) {
	if _, err := ms.authorizeDish(ctx, id, dishID, guard.Read); err != nil {
		return models.Dish{}, err
	}

	d, err := ms.menuRepo.GetDish(ctx, dishID)
	if err != nil {
		return models.Dish{}, wrap("get dish", err)
	}

	return d, nil
}

// UpdateDish merges the present fields into the stored dish. A present
// attribute list replaces the stored set of that kind.
func (ms *MenuService) UpdateDish(ctx context.Context, id models.Identity, dishID int64, req DishRequest) error {
	if req.Name != nil && *req.Name == "" {
		return ErrEmptyName
	}

	if err := ms.validateDish(ctx, req); err != nil {
		return err
	}

	o, err := ms.authorizeDish(ctx, id, dishID, guard.Write)
	if err != nil {
		return err
	}

	if err := ms.menuRepo.UpdateDish(ctx, dishID, req.apply, req.attributeIDs()); err != nil {
		return wrap("update dish", err)
	}

	ms.publish(ctx, models.DishUpdated, o.MenuID, dishID, o.OwnerID)

	return nil
}

func (ms *MenuService) DeleteDish(ctx context.Context, id models.Identity, dishID int64) error {
	o, err := ms.authorizeDish(ctx, id, dishID, guard.Write)
	if err != nil {
		return err
	}

	if err := ms.menuRepo.DeleteDish(ctx, dishID); err != nil {
		return wrap("delete dish", err)
	}

	ms.publish(ctx, models.DishDeleted, o.MenuID, dishID, o.OwnerID)

	return nil
}

func (ms *MenuService) validateDish(ctx context.Context, req DishRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}

	return ms.catalog.ValidateAll(ctx, req.attributeIDs())
}

func (ms *MenuService) authorizeMenu(ctx context.Context,
	id models.Identity, menuID int64, action guard.Action,
) (models.Ownership, error) {
	o, err := ms.menuRepo.MenuOwnership(ctx, menuID)
	if err != nil {
		return models.Ownership{}, wrap("menu ownership", err)
	}

	return o, guard.Decide(id, o, action)
}

func (ms *MenuService) authorizeDish(ctx context.Context,
	id models.Identity, dishID int64, action guard.Action,
) (models.Ownership, error) {
	o, err := ms.menuRepo.DishOwnership(ctx, dishID)
	if err != nil {
		return models.Ownership{}, wrap("dish ownership", err)
	}

	return o, guard.Decide(id, o, action)
}

func (ms *MenuService) publish(ctx context.Context, t models.EventType, menuID, dishID, ownerID int64) {
	ev := models.MenuEvent{
		Type:       t,
		MenuID:     menuID,
		DishID:     dishID,
		OwnerID:    ownerID,
		OccurredAt: time.Now().UTC(),
	}

	if err := ms.publisher.Publish(ctx, ev); err != nil {
		ms.lg.Errorf("publish %s error: %s", t, err.Error())
	}
}

// wrap keeps classified repository errors readable for the caller.
func wrap(op string, err error) error {
	switch {
	case errors.Is(err, repo.ErrMenuNotFound):
		return ErrMenuNotFound
	case errors.Is(err, repo.ErrDishNotFound):
		return ErrDishNotFound
	case errors.Is(err, repo.ErrBadReference):
		return ErrBadReference
	case errors.Is(err, repo.ErrInvalidValue):
		return ErrOutOfRange
	default:
		return fmt.Errorf("%s error: %w", op, err)
	}
}
