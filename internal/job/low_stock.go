package job

import (
	"context"
	"fmt"

	"github.com/creamcroissant/ovenboard/internal/service"
)

// LowStockJob polls the storefront product catalog and raises low-stock
// notifications.
type LowStockJob struct {
	Stock service.StockService
}

// NewLowStockJob constructs the stock watch task.
func NewLowStockJob(stock service.StockService) *LowStockJob {
	return &LowStockJob{Stock: stock}
}

// Name returns the task identifier.
func (j *LowStockJob) Name() string { return "inventory.low_stock" }

// Run checks stock levels once.
func (j *LowStockJob) Run(ctx context.Context) error {
	if j == nil || j.Stock == nil {
		return fmt.Errorf("low stock job dependencies not configured")
	}
	return j.Stock.CheckOnce(ctx)
}
