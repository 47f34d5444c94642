// Package catalog holds the configuration model: the parts of a product,
// their variants, which variant is selected per part, and the derived price.
package catalog

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrCatalogInvariant marks a catalog part with zero or several default
	// variants. It is fatal at startup.
	ErrCatalogInvariant = errors.New("catalog invariant violation")

	// ErrInvalidCatalog marks a structurally broken catalog (missing or
	// duplicate ids, negative prices).
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrUnknownPart is returned by SelectVariant for a part id absent from
	// the model. Callers treat it as a no-op.
	ErrUnknownPart = errors.New("unknown part")

	// ErrUnknownVariant is returned by SelectVariant for a variant id absent
	// from the part. The model is left unchanged.
	ErrUnknownVariant = errors.New("unknown variant")
)

// InvariantError reports a part whose default variant count is not one.
type InvariantError struct {
	PartID   string
	Defaults int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: part %q has %d default variants, want exactly 1", ErrCatalogInvariant, e.PartID, e.Defaults)
}

// Is matches ErrCatalogInvariant.
func (e *InvariantError) Is(target error) bool {
	return target == ErrCatalogInvariant
}

// Catalog is the static input the model is built from.
type Catalog struct {
	Parts []PartSpec `yaml:"parts" json:"parts"`
}

// PartSpec is one configurable slot of the product.
type PartSpec struct {
	ID          string        `yaml:"id" json:"id"`
	DisplayText string        `yaml:"displayText" json:"displayText"`
	Variants    []VariantSpec `yaml:"variants" json:"variants"`
}

// VariantSpec is one option for a part. Exactly one variant per part is
// flagged as the default.
type VariantSpec struct {
	ID        string          `yaml:"id" json:"id"`
	Name      string          `yaml:"name" json:"name"`
	Price     decimal.Decimal `yaml:"price" json:"price"`
	Image     string          `yaml:"image" json:"image"`
	IsDefault bool            `yaml:"isDefault" json:"isDefault"`
}

// Validate checks ids, prices and the one-default-per-part invariant.
func (c Catalog) Validate() error {
	if len(c.Parts) == 0 {
		return fmt.Errorf("%w: no parts", ErrInvalidCatalog)
	}
	seen := make(map[string]bool, len(c.Parts))
	for i, p := range c.Parts {
		if p.ID == "" {
			return fmt.Errorf("%w: part %d has no id", ErrInvalidCatalog, i)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate part id %q", ErrInvalidCatalog, p.ID)
		}
		seen[p.ID] = true

		if len(p.Variants) == 0 {
			return fmt.Errorf("%w: part %q has no variants", ErrInvalidCatalog, p.ID)
		}
		variants := make(map[string]bool, len(p.Variants))
		defaults := 0
		for j, v := range p.Variants {
			if v.ID == "" {
				return fmt.Errorf("%w: part %q variant %d has no id", ErrInvalidCatalog, p.ID, j)
			}
			if variants[v.ID] {
				return fmt.Errorf("%w: part %q has duplicate variant id %q", ErrInvalidCatalog, p.ID, v.ID)
			}
			variants[v.ID] = true
			if v.Price.IsNegative() {
				return fmt.Errorf("%w: part %q variant %q has negative price %s", ErrInvalidCatalog, p.ID, v.ID, v.Price)
			}
			if v.IsDefault {
				defaults++
			}
		}
		if defaults != 1 {
			return &InvariantError{PartID: p.ID, Defaults: defaults}
		}
	}
	return nil
}

// Default returns the built-in furniture catalog.
func Default() Catalog {
	return Catalog{Parts: []PartSpec{
		{
			ID:          "stand",
			DisplayText: "Stand",
			Variants: []VariantSpec{
				{ID: "default", Name: "Default", Price: decimal.NewFromInt(300), Image: "/stand__default.png", IsDefault: true},
			},
		},
		{
			ID:          "seat",
			DisplayText: "Seat",
			Variants: []VariantSpec{
				{ID: "default", Name: "Default", Price: decimal.NewFromInt(220), Image: "/seat__default.png", IsDefault: true},
				{ID: "ring-chair", Name: "Ring Chair", Price: decimal.NewFromInt(320), Image: "/seat__ring-chair.png"},
			},
		},
		{
			ID:          "beanbag",
			DisplayText: "Beanbag",
			Variants: []VariantSpec{
				{ID: "default", Name: "Default", Price: decimal.NewFromInt(105), Image: "/beanbag__default.png", IsDefault: true},
				{ID: "short-stool", Name: "Short Stool", Price: decimal.NewFromInt(140), Image: "/beanbag__short-stool.png"},
				{ID: "long-stool", Name: "Long Stool", Price: decimal.NewFromInt(155), Image: "/beanbag__long-stool.png"},
			},
		},
	}}
}
