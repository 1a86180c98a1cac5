package contract

import (
	"context"

	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/specification"
)

type ProductRepository interface {
	Upsert(ctx context.Context, product *entity.Product) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Product, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
