package catalogservice

import (
	"context"
	"fmt"
	"slices"

	"github.com/SoundFoodPhygital/menu-server-demo/internal/menus/domain/models"
	"github.com/SoundFoodPhygital/menu-server-demo/pkg/logger"
)

var ErrUnknownAttribute = models.NewError(models.ErrBadRequest, "unknown attribute")

type CatalogService struct {
	repo  Repository
	cache Cache
	lg    logger.Logger
}

type Repository interface {
	List(context.Context, models.AttributeKind) ([]models.Attribute, error)
}

type Cache interface {
	Get(context.Context, models.AttributeKind) ([]models.Attribute, error)
	Set(context.Context, models.AttributeKind, []models.Attribute) error
}

func New(repo Repository, cache Cache, lg logger.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		lg:    lg,
	}
}

// Warm rewrites every cached list from the database.
func (cs *CatalogService) Warm(ctx context.Context) error {
	for _, kind := range models.AttributeKinds {
		attrs, err := cs.repo.List(ctx, kind)
		if err != nil {
			return fmt.Errorf("list %s error: %w", kind, err)
		}

		if err := cs.cache.Set(ctx, kind, attrs); err != nil {
			return fmt.Errorf("set %s cache error: %w", kind, err)
		}
	}

	return nil
}

func (cs *CatalogService) List(ctx context.Context, kind models.AttributeKind) ([]models.Attribute, error) {
	attrs, err := cs.cache.Get(ctx, kind)
	if err == nil {
		return attrs, nil
	}

	cs.lg.Debugf("catalog cache %s: %s", kind, err.Error())

	attrs, err = cs.repo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list error: %w", err)
	}

	if err := cs.cache.Set(ctx, kind, attrs); err != nil {
		cs.lg.Errorf("set catalog cache error: %s", err.Error())
	}

	return attrs, nil
}

// Validate reports the first id of kind that is not in the catalog.
func (cs *CatalogService) Validate(ctx context.Context, kind models.AttributeKind, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	attrs, err := cs.List(ctx, kind)
	if err != nil {
		return err
	}

	known := make([]int64, 0, len(attrs))
	for _, a := range attrs {
		known = append(known, a.ID)
	}

	for _, id := range ids {
		if !slices.Contains(known, id) {
			return fmt.Errorf("%w: %s %d", ErrUnknownAttribute, kind, id)
		}
	}

	return nil
}

// ValidateAll checks every present list of ids.
func (cs *CatalogService) ValidateAll(ctx context.Context, ids models.AttributeIDs) error {
	lists := map[models.AttributeKind][]int64{
		models.KindEmotion: ids.Emotions,
		models.KindTexture: ids.Textures,
		models.KindShape:   ids.Shapes,
	}

	for _, kind := range models.AttributeKinds {
		if err := cs.Validate(ctx, kind, lists[kind]); err != nil {
			return err
		}
	}

	return nil
}
