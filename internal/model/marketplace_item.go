package model

import (
	"fmt"
	"time"
)

// Category is the kind of a marketplace listing.
type Category string

const (
	CategorySale   Category = "sale"
	CategoryHire   Category = "hire"
	CategoryRepair Category = "repair"
	CategoryScrap  Category = "scrap"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategorySale, CategoryHire, CategoryRepair, CategoryScrap}

// ParseCategory returns the Category for s or an error when s is not one of
// sale, hire, repair, scrap.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", s)
}

// Label is the operator-facing name of the category.
func (c Category) Label() string {
	switch c {
	case CategorySale:
		return "For Sale"
	case CategoryHire:
		return "For Hire"
	case CategoryRepair:
		return "Repair Service"
	case CategoryScrap:
		return "Scrap / Scrapping"
	}
	return string(c)
}

// MarketplaceItem is a vessel or service listing shown on the public marketplace.
type MarketplaceItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Price       string    `json:"price,omitempty"` // free text, e.g. "Contact for Price"
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// MarketplaceItemFields carries the writable fields of a listing.
type MarketplaceItemFields struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Category    Category `json:"category" validate:"required,oneof=sale hire repair scrap"`
	Price       string   `json:"price"`
	ImageURL    string   `json:"image_url"`
}
