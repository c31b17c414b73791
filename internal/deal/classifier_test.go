package deal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/creamcroissant/ovenboard/internal/order"
)

func item(productID, price, name string) order.LineItem {
	return order.LineItem{
		ProductID: json.Number(productID),
		Name:      name,
		Price:     json.Number(price),
	}
}

func TestIsDealAuthoritativeMatch(t *testing.T) {
	c := NewClassifier(nil, nil, 0)
	deals := []Deal{
		{ID: 1, ProductID: 7, Price: 49.0, Active: true},
	}

	// Price within tolerance of the deal price matches.
	assert.True(t, c.IsDeal(item("7", "49.005", "Croissant Box"), deals))
	// Just outside tolerance is a final no, not a fall-through to the
	// heuristic.
	assert.False(t, c.IsDeal(item("7", "49.02", "Croissant Deal Box"), deals))
	// Different product never matches.
	assert.False(t, c.IsDeal(item("8", "49.0", "Baguette"), deals))
}

func TestIsDealInactiveDealIgnored(t *testing.T) {
	c := NewClassifier(nil, nil, 0)
	deals := []Deal{
		{ID: 1, ProductID: 7, Price: 49.0, Active: false},
	}
	assert.False(t, c.IsDeal(item("7", "49.0", "Croissant Box"), deals))
}

func TestIsDealHeuristicFallback(t *testing.T) {
	c := NewClassifier(nil, nil, 0)

	// Empty snapshot pushes every item through the heuristic.
	assert.True(t, c.IsDeal(item("12", "3.50", "Birthday Candle Add-on"), nil))
	assert.True(t, c.IsDeal(item("13", "5.00", "Weekend Deal Croissant"), nil))
	assert.True(t, c.IsDeal(item("14", "0.99", "Paper Bag"), nil))
	assert.False(t, c.IsDeal(item("15", "12.00", "Sourdough Loaf"), nil))

	// Free items are not promotional, only cheap priced ones.
	assert.False(t, c.IsDeal(item("16", "0", "Loyalty Sticker"), nil))

	// An explicit flag from the storefront wins.
	flagged := item("17", "8.00", "Chocolate Tart")
	yes := true
	flagged.IsDeal = &yes
	assert.True(t, c.IsDeal(flagged, nil))
}

func TestIsDealNonNumericFieldsUseHeuristic(t *testing.T) {
	c := NewClassifier(nil, nil, 0)
	deals := []Deal{
		{ID: 1, ProductID: 7, Price: 49.0, Active: true},
	}

	// A non-numeric product id cannot match authoritatively even with a
	// populated snapshot.
	assert.True(t, c.IsDeal(item("sku-7", "5.00", "Mini Deal Box"), deals))
	assert.False(t, c.IsDeal(item("sku-7", "5.00", "Mini Box"), deals))
}

func TestIsDealCustomThreshold(t *testing.T) {
	c := NewClassifier(nil, nil, 2.5)
	assert.True(t, c.IsDeal(item("20", "2.50", "Napkins"), nil))
	assert.False(t, c.IsDeal(item("20", "2.51", "Napkins"), nil))
}
