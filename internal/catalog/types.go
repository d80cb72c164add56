package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loganlanou/merch-storefront/internal/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrVariantNotFound  = apperr.New(apperr.CodeNotFound, "variant not found")
	ErrUnknownCategory  = apperr.New(apperr.CodeNotFound, "unknown product category")
	ErrInvalidReference = apperr.New(apperr.CodeValidation, "invalid variant reference")
)

// Category tags every variant reference with the product it belongs to.
type Category string

const (
	CategoryHoodie      Category = "hoodie"
	CategoryTShirt      Category = "tshirt"
	CategoryCap         Category = "cap"
	CategoryTote        Category = "tote"
	CategoryMug         Category = "mug"
	CategoryWaterBottle Category = "water_bottle"
	CategoryMousePad    Category = "mouse_pad"
)

// Categories lists every product category in display order.
var Categories = []Category{
	CategoryHoodie,
	CategoryTShirt,
	CategoryCap,
	CategoryTote,
	CategoryMug,
	CategoryWaterBottle,
	CategoryMousePad,
}

func ParseCategory(s string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch normalized {
	case "t-shirt", "t_shirt":
		normalized = string(CategoryTShirt)
	case "totebag", "tote_bag", "tote-bag":
		normalized = string(CategoryTote)
	case "water-bottle", "waterbottle":
		normalized = string(CategoryWaterBottle)
	case "mouse-pad", "mousepad":
		normalized = string(CategoryMousePad)
	}
	for _, c := range Categories {
		if string(c) == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// IsGarment reports whether the category has DARK/LIGHT artwork and sizes.
func (c Category) IsGarment() bool {
	return c == CategoryHoodie || c == CategoryTShirt
}

// Design is the artwork bucket for garments: DARK fabric gets light print and vice versa.
type Design string

const (
	DesignDark  Design = "DARK"
	DesignLight Design = "LIGHT"
)

// DefaultDesign is used for colors the classifier has never seen.
const DefaultDesign = DesignDark

// Other returns the opposite bucket, used for the fallback lookup.
func (d Design) Other() Design {
	if d == DesignLight {
		return DesignDark
	}
	return DesignLight
}

func ParseDesign(s string) (Design, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DesignDark):
		return DesignDark, true
	case string(DesignLight):
		return DesignLight, true
	}
	return "", false
}

// Style is the single design slot of non-garment products.
type Style string

const StyleStandard Style = "STANDARD"

type Size string

const (
	SizeS       Size = "S"
	SizeM       Size = "M"
	SizeL       Size = "L"
	SizeXL      Size = "XL"
	Size2XL     Size = "2XL"
	SizeOneSize Size = "One Size"
)

// Variant is one sellable fulfillment variant.
type Variant[D ~string] struct {
	Key              string
	CatalogVariantID int64
	SyncVariantID    int64
	Price            decimal.Decimal
	Design           D
	Size             Size
	Color            string
	ColorHex         string
	ExternalID       string
	SKU              string
}

// Swatch is a color offered in the product's selector.
type Swatch[D ~string] struct {
	Name   string
	Hex    string
	Design D
}

// VariantRef names a variant unambiguously: catalog IDs are only unique within a category.
type VariantRef struct {
	Category Category `json:"category"`
	ID       int64    `json:"id"`
}

func (r VariantRef) String() string {
	return fmt.Sprintf("%s:%d", r.Category, r.ID)
}

// ParseVariantRef parses the "category:id" form produced by String.
func ParseVariantRef(s string) (VariantRef, error) {
	cat, id, ok := strings.Cut(s, ":")
	if !ok {
		return VariantRef{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
	}
	category, err := ParseCategory(cat)
	if err != nil {
		return VariantRef{}, err
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return VariantRef{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
	}
	return VariantRef{Category: category, ID: n}, nil
}

// Entry is the category-agnostic view of a variant.
type Entry struct {
	Ref         VariantRef      `json:"ref"`
	ProductName string          `json:"product_name"`
	Key         string          `json:"key"`
	Price       decimal.Decimal `json:"price"`
	Design      string          `json:"design"`
	Size        Size            `json:"size"`
	Color       string          `json:"color"`
	ColorHex    string          `json:"color_hex"`
	ExternalID  string          `json:"external_id"`
	SKU         string          `json:"sku"`
}

// ColorSwatch is the category-agnostic view of a Swatch.
type ColorSwatch struct {
	Name   string `json:"name"`
	Hex    string `json:"hex"`
	Design string `json:"design"`
	Light  bool   `json:"light"`
}
