package repository

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/atvtrailers/shop-api/internal/model"
)

// catalogDefaults are the kind-specific values applied to absent fields
// at create time.
type catalogDefaults struct {
	category string
	itemType string
}

// CatalogItems is a kind-scoped store for catalog items. Trailers and
// components get their own instance over the same table.
type CatalogItems struct {
	db       *bun.DB
	kind     model.ItemKind
	defaults catalogDefaults
}

// NewTrailers creates the trailers repository
func NewTrailers(db *bun.DB) *CatalogItems {
	return &CatalogItems{
		db:   db,
		kind: model.KindTrailer,
		defaults: catalogDefaults{
			category: "Причепи",
			itemType: "trailer",
		},
	}
}

// NewComponents creates the components repository
func NewComponents(db *bun.DB) *CatalogItems {
	return &CatalogItems{
		db:   db,
		kind: model.KindComponent,
		defaults: catalogDefaults{
			category: "Комплектуючі",
			itemType: "component",
		},
	}
}

// Kind returns the collection this repository is scoped to
func (r *CatalogItems) Kind() model.ItemKind {
	return r.kind
}

// List returns every item of this kind
func (r *CatalogItems) List(ctx context.Context) ([]*model.CatalogItem, error) {
	var items []*model.CatalogItem
	err := r.db.NewSelect().Model(&items).
		Where("?TableAlias.kind = ?", r.kind).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list catalog items")
	}
	return items, nil
}

// GetByID returns the item with the given id
func (r *CatalogItems) GetByID(ctx context.Context, id uuid.UUID) (*model.CatalogItem, error) {
	item := &model.CatalogItem{}
	err := r.db.NewSelect().Model(item).
		Where("?TableAlias.kind = ?", r.kind).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("item")
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve catalog item")
	}
	return item, nil
}

// GetBySlug returns the item with the given slug
func (r *CatalogItems) GetBySlug(ctx context.Context, slug string) (*model.CatalogItem, error) {
	item := &model.CatalogItem{}
	err := r.db.NewSelect().Model(item).
		Where("?TableAlias.kind = ?", r.kind).
		Where("?TableAlias.slug = ?", slug).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("item")
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve catalog item")
	}
	return item, nil
}

// SlugTaken reports whether another item of this kind already holds the
// slug. Exclude is the id of the record being updated, uuid.Nil on create.
func (r *CatalogItems) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	q := r.db.NewSelect().Model((*model.CatalogItem)(nil)).
		Where("?TableAlias.kind = ?", r.kind).
		Where("?TableAlias.slug = ?", slug)
	if exclude != uuid.Nil {
		q = q.Where("?TableAlias.id != ?", exclude)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check slug uniqueness")
	}
	return exists, nil
}

// Create applies kind defaults, derives the slug, validates, and inserts.
// Slug uniqueness is pre-checked; the (kind, slug) unique index catches
// the remaining race window.
func (r *CatalogItems) Create(ctx context.Context, item *model.CatalogItem) (*model.CatalogItem, error) {
	item.Kind = r.kind
	r.applyDefaults(item)
	item.Slug = model.Slugify(item.Name)

	if err := item.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid catalog item").
			WithCode(errors.CodeBadRequest)
	}

	taken, err := r.SlugTaken(ctx, item.Slug, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	if _, err := r.db.NewInsert().Model(item).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create catalog item")
	}

	return item, nil
}

// Update re-derives the slug from the current name, validates, and
// persists the mutated record.
func (r *CatalogItems) Update(ctx context.Context, item *model.CatalogItem) (*model.CatalogItem, error) {
	item.Slug = model.Slugify(item.Name)
	item.UpdatedAt = time.Now()

	if err := item.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid catalog item").
			WithCode(errors.CodeBadRequest)
	}

	taken, err := r.SlugTaken(ctx, item.Slug, item.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	res, err := r.db.NewUpdate().Model(item).WherePK().Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update catalog item")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, notFound("item")
	}

	return item, nil
}

// Delete removes the item with the given id
func (r *CatalogItems) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().Model((*model.CatalogItem)(nil)).
		Where("kind = ?", r.kind).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete catalog item")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("item")
	}

	return nil
}

func (r *CatalogItems) applyDefaults(item *model.CatalogItem) {
	if item.Category == "" {
		item.Category = r.defaults.category
	}
	if item.Type == "" {
		item.Type = r.defaults.itemType
	}
	if item.Currency == "" {
		item.Currency = "UAH"
	}
}
