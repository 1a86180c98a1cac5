package mapper

import (
	"time"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/model"
)

type ProductMapper struct{}

func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

func (m *ProductMapper) ToEntity(p *model.Product) *entity.Product {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Product{
		Id:            p.Id,
		ItemID:        p.ItemID,
		Title:         p.Title,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Description:   p.Description,
		ImageURL:      p.ImageURL,
		DetailURL:     p.DetailURL,
		Category:      p.Category,
		ShopName:      p.ShopName,
		Rating:        p.Rating,
		Sales:         p.Sales,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *ProductMapper) ToModel(p *entity.Product) *model.Product {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Product{
		Id:            p.Id,
		ItemID:        p.ItemID,
		Title:         p.Title,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Description:   p.Description,
		ImageURL:      p.ImageURL,
		DetailURL:     p.DetailURL,
		Category:      p.Category,
		ShopName:      p.ShopName,
		Rating:        p.Rating,
		Sales:         p.Sales,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *ProductMapper) ToEntities(models []*model.Product) []*entity.Product {
	entities := make([]*entity.Product, len(models))
	for i, p := range models {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
