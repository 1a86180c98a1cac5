package tools

import (
	"context"
	"errors"
	"strings"

	"ai-shopassist-be/pkg/taobao"
)

// OrderInfoTool looks up one order by its order id.
type OrderInfoTool struct {
	gateway Gateway
}

func NewOrderInfoTool(gateway Gateway) *OrderInfoTool {
	return &OrderInfoTool{gateway: gateway}
}

func (t *OrderInfoTool) Name() string { return "order_info" }

func (t *OrderInfoTool) Description() string {
	return "Look up the status, payment and items of an order by its order id"
}

func (t *OrderInfoTool) Execute(ctx context.Context, input string) []Record {
	orderID := strings.TrimSpace(input)
	if orderID == "" {
		return errorRecord("order lookup requires an order id")
	}

	order, err := t.gateway.GetOrderInfo(ctx, orderID)
	if err != nil {
		if errors.Is(err, taobao.ErrNotFound) {
			return errorRecord("order %s not found", orderID)
		}
		return errorRecord("order lookup failed: %v", err)
	}

	items := make([]Record, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, Record{
			"item_id":  it.ItemID,
			"title":    it.Title,
			"price":    it.Price,
			"quantity": it.Quantity,
		})
	}

	return []Record{{
		"order_id":         order.OrderID,
		"status":           order.Status,
		"create_time":      order.CreateTime,
		"pay_time":         order.PayTime,
		"total_amount":     order.TotalAmount,
		"actual_payment":   order.ActualPayment,
		"discount":         order.Discount,
		"buyer":            order.Buyer,
		"items":            items,
		"shipping_address": order.ShippingAddress,
		"logistics_status": order.LogisticsStatus,
	}}
}
