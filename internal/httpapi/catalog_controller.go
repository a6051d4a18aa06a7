package httpapi

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/atvtrailers/shop-api/internal/auth"
	"github.com/atvtrailers/shop-api/internal/model"
	"github.com/atvtrailers/shop-api/internal/repository"
)

// CatalogController serves one catalog collection. The trailers and
// components routes each get an instance bound to their kind-scoped
// repository.
type CatalogController struct {
	repo   *repository.CatalogItems
	logger auth.Logger
	noun   string
}

// NewCatalogController creates a controller for one collection; noun is
// used in user-facing messages ("trailer", "component").
func NewCatalogController(repo *repository.CatalogItems, logger auth.Logger, noun string) *CatalogController {
	return &CatalogController{repo: repo, logger: logger, noun: noun}
}

// CatalogItemPayload covers both create and partial update; absent fields
// stay untouched on update and fall back to defaults on create.
type CatalogItemPayload struct {
	Name             *string               `json:"name"`
	Description      *string               `json:"description"`
	ShortDescription *string               `json:"shortDescription"`
	SKU              *string               `json:"sku"`
	Brand            *string               `json:"brand"`
	Model            *string               `json:"model"`
	Category         *string               `json:"category"`
	SubCategory      *string               `json:"subCategory"`
	Type             *string               `json:"type"`
	Price            *float64              `json:"price"`
	Currency         *string               `json:"currency"`
	InStock          *bool                 `json:"inStock"`
	Quantity         *int                  `json:"quantity"`
	Images           []string              `json:"images"`
	Specifications   []model.Specification `json:"specifications"`
	Compatibility    []string              `json:"compatibility"`
	MetaTitle        *string               `json:"metaTitle"`
	MetaDescription  *string               `json:"metaDescription"`
	Keywords         []string              `json:"keywords"`
	IsFeatured       *bool                 `json:"isFeatured"`
}

// Validate enforces the create-time requirements; updates re-validate the
// merged record instead.
func (p CatalogItemPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Price, validation.By(requiredNumber), validation.Min(0.0)),
		validation.Field(&p.Quantity, validation.Min(0)),
	)
}

func (p CatalogItemPayload) applyTo(item *model.CatalogItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.ShortDescription != nil {
		item.ShortDescription = *p.ShortDescription
	}
	if p.SKU != nil {
		item.SKU = *p.SKU
	}
	if p.Brand != nil {
		item.Brand = *p.Brand
	}
	if p.Model != nil {
		item.Model = *p.Model
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.SubCategory != nil {
		item.SubCategory = *p.SubCategory
	}
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Currency != nil {
		item.Currency = *p.Currency
	}
	if p.InStock != nil {
		item.InStock = *p.InStock
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Images != nil {
		item.Images = p.Images
	}
	if p.Specifications != nil {
		item.Specifications = p.Specifications
	}
	if p.Compatibility != nil {
		item.Compatibility = p.Compatibility
	}
	if p.MetaTitle != nil {
		item.MetaTitle = *p.MetaTitle
	}
	if p.MetaDescription != nil {
		item.MetaDescription = *p.MetaDescription
	}
	if p.Keywords != nil {
		item.Keywords = p.Keywords
	}
	if p.IsFeatured != nil {
		item.IsFeatured = *p.IsFeatured
	}
}

// List returns every item in the collection
func (ctrl *CatalogController) List(c *fiber.Ctx) error {
	items, err := ctrl.repo.List(c.Context())
	if err != nil {
		return err
	}
	if items == nil {
		items = []*model.CatalogItem{}
	}
	return c.JSON(items)
}

// GetByID returns a single item
func (ctrl *CatalogController) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	item, err := ctrl.repo.GetByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// GetBySlug returns a single item by its derived slug
func (ctrl *CatalogController) GetBySlug(c *fiber.Ctx) error {
	item, err := ctrl.repo.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// Create adds a new item to the collection
func (ctrl *CatalogController) Create(c *fiber.Ctx) error {
	payload := new(CatalogItemPayload)
	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}
	if err := payload.Validate(); err != nil {
		return validationError(err)
	}

	item := &model.CatalogItem{InStock: true}
	payload.applyTo(item)

	item, err := ctrl.repo.Create(c.Context(), item)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// Update applies a partial update; the slug follows the name
func (ctrl *CatalogController) Update(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	payload := new(CatalogItemPayload)
	if err := c.BodyParser(payload); err != nil {
		return parseError(err)
	}

	item, err := ctrl.repo.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	payload.applyTo(item)

	item, err = ctrl.repo.Update(c.Context(), item)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// Delete removes an item from the collection
func (ctrl *CatalogController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	if err := ctrl.repo.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": ctrl.noun + " deleted"})
}
