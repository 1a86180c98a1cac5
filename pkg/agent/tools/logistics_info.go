package tools

import (
	"context"
	"errors"
	"strings"

	"ai-shopassist-be/pkg/taobao"
)

// LogisticsInfoTool traces the shipment attached to an order.
type LogisticsInfoTool struct {
	gateway Gateway
}

func NewLogisticsInfoTool(gateway Gateway) *LogisticsInfoTool {
	return &LogisticsInfoTool{gateway: gateway}
}

func (t *LogisticsInfoTool) Name() string { return "logistics_info" }

func (t *LogisticsInfoTool) Description() string {
	return "Trace the shipment of an order by its order id, returning carrier, tracking number and transit events"
}

func (t *LogisticsInfoTool) Execute(ctx context.Context, input string) []Record {
	orderID := strings.TrimSpace(input)
	if orderID == "" {
		return errorRecord("logistics trace requires an order id")
	}

	info, err := t.gateway.GetLogisticsInfo(ctx, orderID)
	if err != nil {
		if errors.Is(err, taobao.ErrNotFound) {
			return errorRecord("no shipment found for order %s", orderID)
		}
		return errorRecord("logistics trace failed: %v", err)
	}

	details := make([]Record, 0, len(info.Details))
	for _, d := range info.Details {
		details = append(details, Record{
			"time":        d.Time,
			"description": d.Description,
		})
	}

	return []Record{{
		"order_id":          info.OrderID,
		"logistics_company": info.LogisticsCompany,
		"tracking_number":   info.TrackingNumber,
		"status":            info.Status,
		"details":           details,
	}}
}
