package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/creamcroissant/ovenboard/internal/notification"
	"github.com/creamcroissant/ovenboard/internal/repository"
	"github.com/creamcroissant/ovenboard/internal/storefront"
)

// ProductFetcher is the storefront capability the stock watch consumes.
type ProductFetcher interface {
	Products(ctx context.Context) ([]storefront.Product, error)
}

// StockService watches product stock and raises low-stock notifications.
// Each product alerts once per depletion: the marker clears when stock
// recovers above the threshold.
type StockService interface {
	CheckOnce(ctx context.Context) error
}

type stockService struct {
	products  ProductFetcher
	settings  repository.SettingRepository
	ledger    *notification.Ledger
	logger    *slog.Logger
	threshold int
	now       func() time.Time
}

// NewStockService constructs the low-stock watcher.
func NewStockService(products ProductFetcher, settings repository.SettingRepository, ledger *notification.Ledger, logger *slog.Logger, threshold int) StockService {
	if logger == nil {
		logger = slog.Default()
	}
	if threshold <= 0 {
		threshold = 5
	}
	return &stockService{
		products:  products,
		settings:  settings,
		ledger:    ledger,
		logger:    logger,
		threshold: threshold,
		now:       time.Now,
	}
}

func (s *stockService) CheckOnce(ctx context.Context) error {
	if s.products == nil {
		return fmt.Errorf("stock service has no product source")
	}
	products, err := s.products.Products(ctx)
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}
	for _, p := range products {
		key := alertMarkerKey(p.ID)
		if p.Stock > s.threshold {
			if err := s.settings.Delete(ctx, key); err != nil {
				s.logger.Warn("stock alert marker clear failed", "product_id", p.ID, "error", err)
			}
			continue
		}
		alerted, err := s.hasMarker(ctx, key)
		if err != nil {
			s.logger.Warn("stock alert marker lookup failed", "product_id", p.ID, "error", err)
			continue
		}
		if alerted {
			continue
		}
		s.ledger.Add(ctx, notification.LowStock(p.ID, p.Name, p.Stock))
		if err := s.setMarker(ctx, key); err != nil {
			s.logger.Warn("stock alert marker write failed", "product_id", p.ID, "error", err)
		}
	}
	return nil
}

func (s *stockService) hasMarker(ctx context.Context, key string) (bool, error) {
	if _, err := s.settings.Get(ctx, key); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *stockService) setMarker(ctx context.Context, key string) error {
	return s.settings.Upsert(ctx, &repository.Setting{
		Key:       key,
		Value:     "1",
		Category:  "stock_alerts",
		UpdatedAt: s.now().Unix(),
	})
}

func alertMarkerKey(productID int64) string {
	return "stock.alerted." + strconv.FormatInt(productID, 10)
}
