package tools

import (
	"context"
	"errors"
	"strings"

	"ai-shopassist-be/pkg/taobao"
)

// ProductDetailTool fetches one listing by item id.
type ProductDetailTool struct {
	gateway Gateway
}

func NewProductDetailTool(gateway Gateway) *ProductDetailTool {
	return &ProductDetailTool{gateway: gateway}
}

func (t *ProductDetailTool) Name() string { return "product_detail" }

func (t *ProductDetailTool) Description() string {
	return "Get the full details of one marketplace product by its item id, including price, description and rating"
}

func (t *ProductDetailTool) Execute(ctx context.Context, input string) []Record {
	itemID := strings.TrimSpace(input)
	if itemID == "" {
		return errorRecord("product detail requires an item id")
	}

	product, err := t.gateway.GetDetail(ctx, itemID)
	if err != nil {
		if errors.Is(err, taobao.ErrNotFound) {
			return errorRecord("product not found")
		}
		return errorRecord("product detail lookup failed: %v", err)
	}

	rec := formatSearchProduct(*product)
	rec["description"] = product.Description
	rec["metadata"] = product.Metadata
	return []Record{rec}
}
