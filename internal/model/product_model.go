package model

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ItemID        string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Title         string    `gorm:"type:text;not null"`
	Price         string    `gorm:"type:varchar(32)"`
	OriginalPrice string    `gorm:"type:varchar(32)"`
	Description   string    `gorm:"type:text"`
	ImageURL      string    `gorm:"type:text"`
	DetailURL     string    `gorm:"type:text"`
	Category      string    `gorm:"type:varchar(255)"`
	ShopName      string    `gorm:"type:varchar(255)"`
	Rating        string    `gorm:"type:varchar(16)"`
	Sales         string    `gorm:"type:varchar(32)"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
