package tools

import (
	"context"
	"errors"

	"ai-shopassist-be/pkg/taobao"
)

// ImageSearchTool finds listings similar to a base64-encoded image.
type ImageSearchTool struct {
	gateway Gateway
}

func NewImageSearchTool(gateway Gateway) *ImageSearchTool {
	return &ImageSearchTool{gateway: gateway}
}

func (t *ImageSearchTool) Name() string { return "image_search" }

func (t *ImageSearchTool) Description() string {
	return "Find marketplace products similar to an uploaded image; input is the base64-encoded image data"
}

func (t *ImageSearchTool) Execute(ctx context.Context, input string) []Record {
	products, err := t.gateway.SearchByImage(ctx, input)
	if err != nil {
		if errors.Is(err, taobao.ErrInvalidImageData) {
			return errorRecord("invalid image data: payload is not valid base64")
		}
		return []Record{}
	}

	records := make([]Record, 0, len(products))
	for _, p := range products {
		similarity := "unknown"
		if p.Metadata != nil {
			if s, ok := p.Metadata["similarity"].(string); ok {
				similarity = s
			}
		}
		records = append(records, Record{
			"item_id":        p.ItemID,
			"title":          p.Title,
			"price":          p.Price,
			"original_price": p.OriginalPrice,
			"image_url":      p.ImageURL,
			"detail_url":     p.DetailURL,
			"shop_name":      p.ShopName,
			"similarity":     similarity,
			"category":       p.Category,
		})
	}
	return records
}
