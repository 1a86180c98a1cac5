package tools

import (
	"context"
	"fmt"
	"strings"

	"ai-shopassist-be/pkg/taobao"
)

// Gateway is the slice of the marketplace client the tool set needs.
// Declared here so tests can substitute a fake.
type Gateway interface {
	SearchByKeyword(ctx context.Context, query string, page, pageSize int) ([]taobao.Product, error)
	SearchByImage(ctx context.Context, imageBase64 string) ([]taobao.Product, error)
	GetDetail(ctx context.Context, itemID string) (*taobao.Product, error)
	GetOrderInfo(ctx context.Context, orderID string) (*taobao.OrderInfo, error)
	GetLogisticsInfo(ctx context.Context, orderID string) (*taobao.LogisticsInfo, error)
}

// Record is one flat observation row. Failed executions yield a single
// record holding only the "error" key; no tool ever returns an error
// value to the reasoning loop.
type Record = map[string]interface{}

// Tool is one named capability the orchestrator can invoke.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, input string) []Record
}

// Registry holds the closed tool set in catalog order.
type Registry struct {
	order []string
	byID  map[string]Tool
}

func NewRegistry(gateway Gateway) *Registry {
	r := &Registry{byID: make(map[string]Tool)}
	r.add(NewProductSearchTool(gateway))
	r.add(NewProductDetailTool(gateway))
	r.add(NewImageSearchTool(gateway))
	r.add(NewOrderInfoTool(gateway))
	r.add(NewLogisticsInfoTool(gateway))
	return r
}

func (r *Registry) add(t Tool) {
	r.order = append(r.order, t.Name())
	r.byID[t.Name()] = t
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byID[strings.TrimSpace(name)]
	return t, ok
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Catalog renders "name: description" lines for the planning prompt.
func (r *Registry) Catalog() string {
	var b strings.Builder
	for _, name := range r.order {
		fmt.Fprintf(&b, "- %s: %s\n", name, r.byID[name].Description())
	}
	return b.String()
}

func errorRecord(format string, args ...interface{}) []Record {
	return []Record{{"error": fmt.Sprintf(format, args...)}}
}

// IsErrorRecord reports whether a record is the error sentinel.
func IsErrorRecord(rec Record) bool {
	_, ok := rec["error"]
	return ok
}
