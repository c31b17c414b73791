// Package deal classifies order line items as main items or promotional
// deal/add-on items.
package deal

import (
	"log/slog"
	"math"
	"strings"

	"github.com/creamcroissant/ovenboard/internal/obs"
	"github.com/creamcroissant/ovenboard/internal/order"
)

// Deal is one promotional entry from the deals service, read-only here.
type Deal struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Price     float64 `json:"deal_price"`
	Active    bool    `json:"active"`
}

// PriceTolerance absorbs rounding drift between the deal price and the
// recorded line item price, which come from independent currency
// computations upstream.
const PriceTolerance = 0.01

// DefaultLowPriceThreshold marks items at or below one currency unit as
// promotional when nothing better is known. Introduced for the "1 ruble
// add-on" campaign; override it via config when that stops being true.
const DefaultLowPriceThreshold = 1.0

var heuristicNameMarkers = []string{"deal", "add-on", "addon"}

// Classifier decides whether a line item belongs to a promotion. It is pure:
// the same item may classify differently once the active deals snapshot
// changes, so results must not be cached keyed on the item alone.
type Classifier struct {
	logger            *slog.Logger
	dq                *obs.DataQuality
	lowPriceThreshold float64
}

// NewClassifier builds a classifier. A non-positive threshold falls back to
// the default.
func NewClassifier(logger *slog.Logger, dq *obs.DataQuality, lowPriceThreshold float64) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if dq == nil {
		dq = obs.NopDataQuality()
	}
	if lowPriceThreshold <= 0 {
		lowPriceThreshold = DefaultLowPriceThreshold
	}
	return &Classifier{logger: logger, dq: dq, lowPriceThreshold: lowPriceThreshold}
}

// IsDeal reports whether item is a deal/add-on line. An authoritative match
// against the active deals snapshot wins when the item carries numeric
// identifiers; otherwise the heuristic fallback decides. Total over any
// input.
func (c *Classifier) IsDeal(item order.LineItem, activeDeals []Deal) bool {
	if verdict, ok := c.authoritative(item, activeDeals); ok {
		return verdict
	}
	c.dq.HeuristicClassified.Inc()
	return c.heuristic(item)
}

// authoritative returns ok=false when the snapshot is empty or the item
// lacks numeric product id / price; the verdict is final otherwise.
func (c *Classifier) authoritative(item order.LineItem, activeDeals []Deal) (verdict, ok bool) {
	if len(activeDeals) == 0 {
		return false, false
	}
	productID, err := item.ProductID.Int64()
	if err != nil {
		return false, false
	}
	price, err := item.Price.Float64()
	if err != nil {
		return false, false
	}
	for _, d := range activeDeals {
		if !d.Active || d.ProductID != productID {
			continue
		}
		if math.Abs(d.Price-price) <= PriceTolerance {
			return true, true
		}
	}
	return false, true
}

func (c *Classifier) heuristic(item order.LineItem) bool {
	if item.IsDeal != nil && *item.IsDeal {
		return true
	}
	name := strings.ToLower(item.Name)
	for _, marker := range heuristicNameMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	if price, err := item.Price.Float64(); err == nil {
		if price > 0 && price <= c.lowPriceThreshold {
			return true
		}
	}
	return false
}
