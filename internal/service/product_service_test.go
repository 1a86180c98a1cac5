package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/pkg/taobao"
)

func TestProductSearchPublishesObserved(t *testing.T) {
	factory := newFakeUowFactory()
	pub := &fakePublisher{}
	gw := &fakeShopGateway{searchProducts: []taobao.Product{
		{ItemID: "6001", Title: "Earbuds", Price: "79.00"},
		{ItemID: "6002", Title: "Pro Earbuds", Price: "199.00"},
	}}
	svc := NewProductService(gw, factory, pub)

	res, err := svc.Search(context.Background(), &dto.SearchProductsRequest{Query: "earbuds"})

	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "6001", res[0].ItemID)
	require.Len(t, pub.messages, 1)
	assert.Equal(t, "search", pub.messages[0].Source)
	assert.Len(t, pub.messages[0].Products, 2)
}

func TestProductSearchFallsBackToCache(t *testing.T) {
	factory := newFakeUowFactory()
	factory.uow.products.Upsert(context.Background(), &entity.Product{
		Id:     uuid.New(),
		ItemID: "6001",
		Title:  "Cached Earbuds",
		Price:  "79.00",
	})
	// A listing last refreshed two days ago must not be served.
	stale := time.Now().Add(-48 * time.Hour)
	factory.uow.products.products["6099"] = &entity.Product{
		Id:        uuid.New(),
		ItemID:    "6099",
		Title:     "Stale Earbuds",
		UpdatedAt: &stale,
	}
	gw := &fakeShopGateway{searchErr: taobao.ErrConnection}
	svc := NewProductService(gw, factory, &fakePublisher{})

	res, err := svc.Search(context.Background(), &dto.SearchProductsRequest{Query: "earbuds"})

	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Cached Earbuds", res[0].Title)
}

func TestConsumerUpsertsObservedProducts(t *testing.T) {
	// Exercises the cache write path the consumer performs, via the
	// same repository contract.
	factory := newFakeUowFactory()
	uow := factory.NewUnitOfWork(context.Background())

	p := &entity.Product{Id: uuid.New(), ItemID: "7001", Title: "Sneakers", Price: "299"}
	require.NoError(t, uow.ProductRepository().Upsert(context.Background(), p))

	p.Price = "249"
	require.NoError(t, uow.ProductRepository().Upsert(context.Background(), p))

	count, err := uow.ProductRepository().Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
