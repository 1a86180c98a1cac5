package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product is a locally cached marketplace listing, keyed by the
// upstream item id.
type Product struct {
	Id            uuid.UUID
	ItemID        string
	Title         string
	Price         string
	OriginalPrice string
	Description   string
	ImageURL      string
	DetailURL     string
	Category      string
	ShopName      string
	Rating        string
	Sales         string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
