package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-shopassist-be/pkg/taobao"
)

type fakeGateway struct {
	searchProducts []taobao.Product
	searchErr      error
	imageProducts  []taobao.Product
	imageErr       error
	detailProduct  *taobao.Product
	detailErr      error
	order          *taobao.OrderInfo
	orderErr       error
	logistics      *taobao.LogisticsInfo
	logisticsErr   error

	lastQuery    string
	lastPage     int
	lastPageSize int
}

func (f *fakeGateway) SearchByKeyword(ctx context.Context, query string, page, pageSize int) ([]taobao.Product, error) {
	f.lastQuery = query
	f.lastPage = page
	f.lastPageSize = pageSize
	return f.searchProducts, f.searchErr
}

func (f *fakeGateway) SearchByImage(ctx context.Context, imageBase64 string) ([]taobao.Product, error) {
	return f.imageProducts, f.imageErr
}

func (f *fakeGateway) GetDetail(ctx context.Context, itemID string) (*taobao.Product, error) {
	return f.detailProduct, f.detailErr
}

func (f *fakeGateway) GetOrderInfo(ctx context.Context, orderID string) (*taobao.OrderInfo, error) {
	return f.order, f.orderErr
}

func (f *fakeGateway) GetLogisticsInfo(ctx context.Context, orderID string) (*taobao.LogisticsInfo, error) {
	return f.logistics, f.logisticsErr
}

func TestRegistryCatalogOrder(t *testing.T) {
	r := NewRegistry(&fakeGateway{})

	assert.Equal(t, []string{"product_search", "product_detail", "image_search", "order_info", "logistics_info"}, r.Names())

	_, ok := r.Lookup("product_search")
	assert.True(t, ok)
	_, ok = r.Lookup("  product_detail ")
	assert.True(t, ok)
	_, ok = r.Lookup("checkout")
	assert.False(t, ok)

	catalog := r.Catalog()
	assert.Contains(t, catalog, "- product_search:")
	assert.Contains(t, catalog, "- logistics_info:")
}

func TestProductSearchFormatsRecords(t *testing.T) {
	gw := &fakeGateway{
		searchProducts: []taobao.Product{
			{
				ItemID:        "6001",
				Title:         "Wireless Earbuds",
				Price:         "79.00",
				OriginalPrice: "158.00",
				ImageURL:      "https://img.example.com/6001_400x400.jpg",
				ShopName:      "Audio Shop",
				Sales:         "1200",
				Rating:        "4.8",
			},
		},
	}

	records := NewProductSearchTool(gw).Execute(context.Background(), " earbuds ")

	require.Len(t, records, 1)
	assert.Equal(t, "earbuds", gw.lastQuery)
	assert.Equal(t, 1, gw.lastPage)
	assert.Equal(t, 10, gw.lastPageSize)
	assert.Equal(t, "6001", records[0]["item_id"])
	assert.Equal(t, "50% off", records[0]["discount"])
	assert.False(t, IsErrorRecord(records[0]))
}

func TestProductSearchEmptyQuery(t *testing.T) {
	records := NewProductSearchTool(&fakeGateway{}).Execute(context.Background(), "   ")

	require.Len(t, records, 1)
	assert.True(t, IsErrorRecord(records[0]))
}

func TestProductSearchGatewayFailureDegrades(t *testing.T) {
	gw := &fakeGateway{searchErr: taobao.ErrTimeout}

	records := NewProductSearchTool(gw).Execute(context.Background(), "laptop")

	assert.Empty(t, records)
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		original string
		want     string
	}{
		{"half price", "50", "100", "50% off"},
		{"no original", "50", "", "no discount info"},
		{"unparseable current", "abc", "100", "no discount info"},
		{"unparseable original", "50", "abc", "no discount info"},
		{"zero original", "50", "0", "no discount info"},
		{"price went up", "120", "100", "no discount info"},
		{"same price", "100", "100", "no discount info"},
		{"rounded", "66.60", "99.90", "33% off"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateDiscount(tt.current, tt.original))
		})
	}
}

func TestProductDetailNotFound(t *testing.T) {
	gw := &fakeGateway{detailErr: taobao.ErrNotFound}

	records := NewProductDetailTool(gw).Execute(context.Background(), "9999")

	require.Len(t, records, 1)
	assert.Equal(t, "product not found", records[0]["error"])
}

func TestProductDetailSuccess(t *testing.T) {
	gw := &fakeGateway{detailProduct: &taobao.Product{
		ItemID:      "6001",
		Title:       "Wireless Earbuds",
		Price:       "79.00",
		Description: "Bluetooth 5.3, 30h battery",
		Metadata:    map[string]interface{}{"brand": "Acme"},
	}}

	records := NewProductDetailTool(gw).Execute(context.Background(), "6001")

	require.Len(t, records, 1)
	assert.Equal(t, "6001", records[0]["item_id"])
	assert.Equal(t, "Bluetooth 5.3, 30h battery", records[0]["description"])
	assert.Equal(t, map[string]interface{}{"brand": "Acme"}, records[0]["metadata"])
}

func TestImageSearchInvalidBase64(t *testing.T) {
	gw := &fakeGateway{imageErr: taobao.ErrInvalidImageData}

	records := NewImageSearchTool(gw).Execute(context.Background(), "!!not-base64!!")

	require.Len(t, records, 1)
	assert.Contains(t, records[0]["error"], "invalid image data")
}

func TestImageSearchSimilarityFromMetadata(t *testing.T) {
	gw := &fakeGateway{imageProducts: []taobao.Product{
		{ItemID: "7001", Title: "Red Sneakers", Metadata: map[string]interface{}{"similarity": "92%"}},
		{ItemID: "7002", Title: "Blue Sneakers"},
	}}

	records := NewImageSearchTool(gw).Execute(context.Background(), "aGVsbG8=")

	require.Len(t, records, 2)
	assert.Equal(t, "92%", records[0]["similarity"])
	assert.Equal(t, "unknown", records[1]["similarity"])
}

func TestOrderInfoSuccess(t *testing.T) {
	gw := &fakeGateway{order: &taobao.OrderInfo{
		OrderID: "ORD-1",
		Status:  "shipped",
		Items:   []taobao.OrderItem{{ItemID: "6001", Title: "Earbuds", Price: "79.00", Quantity: 2}},
	}}

	records := NewOrderInfoTool(gw).Execute(context.Background(), "ORD-1")

	require.Len(t, records, 1)
	assert.Equal(t, "shipped", records[0]["status"])
	items, ok := records[0]["items"].([]Record)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0]["quantity"])
}

func TestOrderInfoNotFound(t *testing.T) {
	gw := &fakeGateway{orderErr: taobao.ErrNotFound}

	records := NewOrderInfoTool(gw).Execute(context.Background(), "ORD-404")

	require.Len(t, records, 1)
	assert.Equal(t, "order ORD-404 not found", records[0]["error"])
}

func TestLogisticsInfoSuccess(t *testing.T) {
	gw := &fakeGateway{logistics: &taobao.LogisticsInfo{
		OrderID:          "ORD-1",
		LogisticsCompany: "SF Express",
		TrackingNumber:   "SF123",
		Status:           "in transit",
		Details: []taobao.LogisticsTrace{
			{Time: "2026-08-20 10:00", Description: "Picked up"},
		},
	}}

	records := NewLogisticsInfoTool(gw).Execute(context.Background(), "ORD-1")

	require.Len(t, records, 1)
	assert.Equal(t, "SF Express", records[0]["logistics_company"])
	details, ok := records[0]["details"].([]Record)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, "Picked up", details[0]["description"])
}

func TestLogisticsInfoEmptyInput(t *testing.T) {
	records := NewLogisticsInfoTool(&fakeGateway{}).Execute(context.Background(), "")

	require.Len(t, records, 1)
	assert.True(t, IsErrorRecord(records[0]))
}
