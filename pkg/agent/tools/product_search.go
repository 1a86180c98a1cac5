package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ai-shopassist-be/pkg/taobao"
)

const (
	defaultSearchPage     = 1
	defaultSearchPageSize = 10
)

// ProductSearchTool searches the marketplace catalog by keyword.
type ProductSearchTool struct {
	gateway  Gateway
	page     int
	pageSize int
}

func NewProductSearchTool(gateway Gateway) *ProductSearchTool {
	return &ProductSearchTool{
		gateway:  gateway,
		page:     defaultSearchPage,
		pageSize: defaultSearchPageSize,
	}
}

func (t *ProductSearchTool) Name() string { return "product_search" }

func (t *ProductSearchTool) Description() string {
	return "Search marketplace products by keyword and return title, price, rating and sales for each match"
}

func (t *ProductSearchTool) Execute(ctx context.Context, input string) []Record {
	query := strings.TrimSpace(input)
	if query == "" {
		return errorRecord("product search requires a non-empty query")
	}

	products, err := t.gateway.SearchByKeyword(ctx, query, t.page, t.pageSize)
	if err != nil {
		// Degrade to an empty observation: the loop can still answer
		// conversationally, and we never surface fabricated listings.
		return []Record{}
	}

	records := make([]Record, 0, len(products))
	for _, p := range products {
		records = append(records, formatSearchProduct(p))
	}
	return records
}

func formatSearchProduct(p taobao.Product) Record {
	return Record{
		"item_id":        p.ItemID,
		"title":          p.Title,
		"price":          p.Price,
		"original_price": p.OriginalPrice,
		"discount":       calculateDiscount(p.Price, p.OriginalPrice),
		"image_url":      p.ImageURL,
		"detail_url":     p.DetailURL,
		"shop_name":      p.ShopName,
		"sales":          p.Sales,
		"rating":         p.Rating,
		"category":       p.Category,
	}
}

// calculateDiscount derives a display string from the decimal-as-text
// price pair. Anything unparseable yields the no-info marker.
func calculateDiscount(currentPrice, originalPrice string) string {
	if currentPrice == "" || originalPrice == "" {
		return "no discount info"
	}

	current, err := strconv.ParseFloat(currentPrice, 64)
	if err != nil {
		return "no discount info"
	}
	original, err := strconv.ParseFloat(originalPrice, 64)
	if err != nil || original <= 0 {
		return "no discount info"
	}
	if current >= original {
		return "no discount info"
	}

	return fmt.Sprintf("%.0f%% off", (1-current/original)*100)
}
