package usecase

import (
	"time"

	"github.com/pricelens/backend/internal/domain"
)

// Cart is an ordered, session-scoped selection of products with a checklist of
// purchased flags. It is not safe for concurrent use; callers serialize access
// per session.
type Cart struct {
	items     []domain.CartItem
	purchased map[domain.PurchaseKey]bool
	now       func() time.Time
}

// NewCart creates an empty cart
func NewCart() *Cart {
	return &Cart{
		items:     make([]domain.CartItem, 0),
		purchased: make(map[domain.PurchaseKey]bool),
		now:       time.Now,
	}
}

// Add appends a copy of the product. Adding the same product twice yields two entries.
func (c *Cart) Add(product domain.ProductRecord) domain.CartItem {
	item := domain.CartItem{ProductRecord: product, AddedAt: c.now()}
	c.items = append(c.items, item)
	return item
}

// Items returns a copy of the cart items in insertion order
func (c *Cart) Items() []domain.CartItem {
	items := make([]domain.CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// Len returns the number of items in the cart
func (c *Cart) Len() int {
	return len(c.items)
}

// TotalPrice sums the price of every item, duplicates included
func (c *Cart) TotalPrice() float64 {
	total := 0.0
	for _, item := range c.items {
		total += item.Price
	}
	return total
}

// GroupByRetailerThenCategory groups items by retailer, then category. Both levels
// keep first-seen order and items keep cart order.
func (c *Cart) GroupByRetailerThenCategory() []domain.RetailerGroup {
	groups := make([]domain.RetailerGroup, 0)
	retailerIdx := make(map[string]int)
	categoryIdx := make(map[string]map[string]int)

	for _, item := range c.items {
		ri, ok := retailerIdx[item.Retailer]
		if !ok {
			ri = len(groups)
			retailerIdx[item.Retailer] = ri
			categoryIdx[item.Retailer] = make(map[string]int)
			groups = append(groups, domain.RetailerGroup{Retailer: item.Retailer})
		}

		group := &groups[ri]
		ci, ok := categoryIdx[item.Retailer][item.Category]
		if !ok {
			ci = len(group.Categories)
			categoryIdx[item.Retailer][item.Category] = ci
			group.Categories = append(group.Categories, domain.CategoryGroup{Category: item.Category})
		}
		group.Categories[ci].Items = append(group.Categories[ci].Items, item)
	}

	return groups
}

// MarkPurchased sets the checklist flag for a composite key
func (c *Cart) MarkPurchased(key domain.PurchaseKey, purchased bool) {
	c.purchased[key] = purchased
}

// IsPurchased reports the checklist flag for a composite key
func (c *Cart) IsPurchased(key domain.PurchaseKey) bool {
	return c.purchased[key]
}

// PurchasedFlags returns a copy of the checklist flags
func (c *Cart) PurchasedFlags() map[domain.PurchaseKey]bool {
	flags := make(map[domain.PurchaseKey]bool, len(c.purchased))
	for k, v := range c.purchased {
		flags[k] = v
	}
	return flags
}

// ClearPurchased resets every checklist flag
func (c *Cart) ClearPurchased() {
	c.purchased = make(map[domain.PurchaseKey]bool)
}

// RemovePurchased drops every item whose key is flagged true, then clears the
// flags. Returns the number of removed items.
func (c *Cart) RemovePurchased() int {
	kept := make([]domain.CartItem, 0, len(c.items))
	for _, item := range c.items {
		if !c.purchased[item.Key()] {
			kept = append(kept, item)
		}
	}

	removed := len(c.items) - len(kept)
	c.items = kept
	c.ClearPurchased()
	return removed
}

// Clear empties the cart and the checklist flags
func (c *Cart) Clear() {
	c.items = make([]domain.CartItem, 0)
	c.ClearPurchased()
}
