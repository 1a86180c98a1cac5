package service

import (
	"context"
	"log"
	"time"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/repository/specification"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/pkg/taobao"
)

// cacheMaxAge bounds how old a cached listing may be before the
// degraded search path stops serving it.
const cacheMaxAge = 24 * time.Hour

type IProductService interface {
	Search(ctx context.Context, req *dto.SearchProductsRequest) ([]*dto.ProductResponse, error)
}

// productGateway is the slice of the marketplace client the service
// needs; tests substitute a fake.
type productGateway interface {
	SearchByKeyword(ctx context.Context, query string, page, pageSize int) ([]taobao.Product, error)
}

type productService struct {
	gateway          productGateway
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewProductService(
	gateway productGateway,
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IProductService {
	return &productService{
		gateway:          gateway,
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

// Search queries the marketplace directly. When the upstream is down
// it degrades to the local product cache so the endpoint still answers
// with previously seen listings, clearly sourced from the cache.
func (ps *productService) Search(ctx context.Context, req *dto.SearchProductsRequest) ([]*dto.ProductResponse, error) {
	page := req.Page
	if page == 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = 20
	}

	products, err := ps.gateway.SearchByKeyword(ctx, req.Query, page, pageSize)
	if err != nil {
		log.Printf("[WARN] Marketplace search failed, serving from cache: %v", err)
		return ps.searchCache(ctx, req.Query, page, pageSize)
	}

	response := make([]*dto.ProductResponse, 0, len(products))
	observed := &dto.PublishProductsObservedMessage{Source: "search"}
	for _, p := range products {
		item := &dto.ProductResponse{
			ItemID:        p.ItemID,
			Title:         p.Title,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			ImageURL:      p.ImageURL,
			DetailURL:     p.DetailURL,
			Category:      p.Category,
			ShopName:      p.ShopName,
			Rating:        p.Rating,
			Sales:         p.Sales,
		}
		response = append(response, item)
		observed.Products = append(observed.Products, *item)
	}

	if ps.publisherService != nil && len(observed.Products) > 0 {
		if err := ps.publisherService.PublishProductsObserved(observed); err != nil {
			log.Printf("[WARN] Failed to publish products-observed: %v", err)
		}
	}

	return response, nil
}

func (ps *productService) searchCache(ctx context.Context, query string, page, pageSize int) ([]*dto.ProductResponse, error) {
	uow := ps.uowFactory.NewUnitOfWork(ctx)

	cached, err := uow.ProductRepository().FindAll(ctx,
		specification.TitleLike{Query: query},
		specification.UpdatedSince{Cutoff: time.Now().Add(-cacheMaxAge)},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.ProductResponse, 0, len(cached))
	for _, p := range cached {
		response = append(response, &dto.ProductResponse{
			ItemID:        p.ItemID,
			Title:         p.Title,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			ImageURL:      p.ImageURL,
			DetailURL:     p.DetailURL,
			Category:      p.Category,
			ShopName:      p.ShopName,
			Rating:        p.Rating,
			Sales:         p.Sales,
		})
	}
	return response, nil
}
