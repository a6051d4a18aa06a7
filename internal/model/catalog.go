package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ItemKind names a catalog collection. Trailers and components share one
// shape but live in separate collections with their own defaults.
type ItemKind = string

const (
	KindTrailer   ItemKind = "trailer"
	KindComponent ItemKind = "component"
)

// Specification is a single name/value/unit triple on a catalog item
type Specification struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// CatalogItem is a sellable product: a trailer or a component. The slug
// is derived from the name and unique within its kind.
type CatalogItem struct {
	bun.BaseModel `bun:"table:catalog_items,alias:itm"`

	ID              uuid.UUID       `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Kind            ItemKind        `bun:"kind,notnull,unique:kind_slug" json:"-"`
	Name            string          `bun:"name,notnull" json:"name"`
	Slug            string          `bun:"slug,notnull,unique:kind_slug" json:"slug"`
	Description     string          `bun:"description" json:"description,omitempty"`
	ShortDescription string         `bun:"short_description" json:"shortDescription,omitempty"`
	SKU             string          `bun:"sku" json:"sku,omitempty"`
	Brand           string          `bun:"brand" json:"brand,omitempty"`
	Model           string          `bun:"model" json:"model,omitempty"`
	Category        string          `bun:"category,notnull" json:"category"`
	SubCategory     string          `bun:"sub_category" json:"subCategory,omitempty"`
	Type            string          `bun:"item_type" json:"type,omitempty"`
	Price           float64         `bun:"price,notnull" json:"price"`
	Currency        string          `bun:"currency,notnull" json:"currency"`
	InStock         bool            `bun:"in_stock" json:"inStock"`
	Quantity        int             `bun:"quantity" json:"quantity"`
	Images          []string        `bun:"images,type:jsonb" json:"images"`
	Specifications  []Specification `bun:"specifications,type:jsonb" json:"specifications"`
	Compatibility   []string        `bun:"compatibility,type:jsonb" json:"compatibility"`
	MetaTitle       string          `bun:"meta_title" json:"metaTitle,omitempty"`
	MetaDescription string          `bun:"meta_description" json:"metaDescription,omitempty"`
	Keywords        []string        `bun:"keywords,type:jsonb" json:"keywords"`
	IsFeatured      bool            `bun:"is_featured" json:"isFeatured"`
	CreatedAt       time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt       time.Time       `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}

// itemTypes lists the values the type field accepts, across both kinds.
var itemTypes = []any{"component", "spare_part", "trailer"}

// Validate checks the invariants every stored catalog item must hold
func (i CatalogItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Name, validation.Required),
		validation.Field(&i.Category, validation.Required),
		validation.Field(&i.Price, validation.Min(0.0)),
		validation.Field(&i.Quantity, validation.Min(0)),
		validation.Field(&i.Type, validation.In(itemTypes...)),
	)
}
