package db

import (
	"database/sql"
	"time"
)

type Cart struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CartItem struct {
	SessionID         string         `json:"session_id"`
	ID                string         `json:"id"`
	Position          int64          `json:"position"`
	Name              string         `json:"name"`
	Price             string         `json:"price"`
	Quantity          int64          `json:"quantity"`
	Image             string         `json:"image"`
	PrintfulVariantID string         `json:"printful_variant_id"`
	ExternalID        string         `json:"external_id"`
	VariantCategory   sql.NullString `json:"variant_category"`
	VariantID         sql.NullInt64  `json:"variant_id"`
	ProductCategory   string         `json:"product_category"`
	Size              string         `json:"size"`
	Color             string         `json:"color"`
	IsPartOfBundle    bool           `json:"is_part_of_bundle"`
	BundleID          string         `json:"bundle_id"`
	BundleName        string         `json:"bundle_name"`
	IsDiscount        bool           `json:"is_discount"`
}
