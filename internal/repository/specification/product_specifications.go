package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByItemID struct {
	ItemID string
}

func (s ByItemID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("item_id = ?", s.ItemID)
}

type TitleLike struct {
	Query string
}

func (s TitleLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title ILIKE ?", "%"+s.Query+"%")
}

// UpdatedSince keeps only rows refreshed after the cutoff, so stale
// cache entries never reach a response.
type UpdatedSince struct {
	Cutoff time.Time
}

func (s UpdatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("updated_at >= ?", s.Cutoff)
}
