package taobao

// Product is the canonical in-memory representation of one marketplace
// listing, independent of the upstream wire format. Price fields are
// decimal-as-text exactly as the provider sends them; callers must
// parse-and-guard before doing arithmetic.
type Product struct {
	ItemID        string
	Title         string
	Price         string
	OriginalPrice string
	Description   string
	ImageURL      string
	DetailURL     string
	Category      string
	ShopName      string
	Rating        string
	Sales         string
	Metadata      map[string]interface{}
}

// OrderInfo is the normalized order lookup result.
type OrderInfo struct {
	OrderID         string      `json:"order_id"`
	Status          string      `json:"status"`
	CreateTime      string      `json:"create_time"`
	PayTime         string      `json:"pay_time"`
	TotalAmount     string      `json:"total_amount"`
	ActualPayment   string      `json:"actual_payment"`
	Discount        string      `json:"discount"`
	Buyer           string      `json:"buyer"`
	Items           []OrderItem `json:"items"`
	ShippingAddress string      `json:"shipping_address"`
	LogisticsStatus string      `json:"logistics_status"`
}

type OrderItem struct {
	ItemID   string `json:"item_id"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

// LogisticsInfo is the normalized logistics lookup result.
type LogisticsInfo struct {
	OrderID          string           `json:"order_id"`
	LogisticsCompany string           `json:"logistics_company"`
	TrackingNumber   string           `json:"tracking_number"`
	Status           string           `json:"status"`
	Details          []LogisticsTrace `json:"details"`
}

type LogisticsTrace struct {
	Time        string `json:"time"`
	Description string `json:"description"`
}
