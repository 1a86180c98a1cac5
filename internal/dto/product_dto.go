package dto

type SearchProductsRequest struct {
	Query    string `json:"query" query:"query" validate:"required"`
	Page     int    `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize int    `json:"page_size" query:"page_size" validate:"omitempty,min=1,max=100"`
}

type ProductResponse struct {
	ItemID        string `json:"item_id"`
	Title         string `json:"title"`
	Price         string `json:"price"`
	OriginalPrice string `json:"original_price,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	DetailURL     string `json:"detail_url,omitempty"`
	Category      string `json:"category,omitempty"`
	ShopName      string `json:"shop_name,omitempty"`
	Rating        string `json:"rating,omitempty"`
	Sales         string `json:"sales,omitempty"`
}

// PublishProductsObservedMessage is the payload sent on the in-process
// bus whenever a tool or search surfaces listings worth caching.
type PublishProductsObservedMessage struct {
	Products []ProductResponse `json:"products"`
	Source   string            `json:"source"` // "chat" | "search"
}
