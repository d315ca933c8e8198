// Package cart implements the per-session shopping cart and its two-phase
// settlement against stock, budget and ledger.
package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/logger"
)

// Stock is the slice of the ingredient catalog settlement needs.
type Stock interface {
	domain.IngredientResolver
	Adjust(name string, delta decimal.Decimal) (decimal.Decimal, error)
}

// Till receives customer payments.
type Till interface {
	Credit(amount decimal.Decimal) error
}

// Recorder appends settled order lines.
type Recorder interface {
	Append(user, dish string, price decimal.Decimal, at time.Time) domain.Order
}

// Refresher recomputes the visible menu after stock changes.
type Refresher interface {
	Refresh(stock domain.IngredientResolver) []domain.Dish
}

// Settlement bundles the collaborators Confirm mutates. They are passed
// explicitly so the single-writer requirement is visible at the call site.
type Settlement struct {
	Stock  Stock
	Till   Till
	Ledger Recorder
	Menu   Refresher
	Now    func() time.Time
}

// Cart is a mutable collection of dish snapshots. Not safe for concurrent use.
type Cart struct {
	items []domain.CartItem
	log   *logger.Logger
}

// New creates an empty cart.
func New(log *logger.Logger) *Cart {
	return &Cart{log: log}
}

// AddDish snapshots the dish's current usages and price. A dish already in
// the cart (ignoring case) is rejected and the cart is left unchanged.
func (c *Cart) AddDish(dish domain.Dish) (domain.CartItem, error) {
	if _, ok := c.find(dish.Name); ok {
		return domain.CartItem{}, domain.Errorf(domain.KindDuplicate, dish.Name, "this dish is already in cart")
	}
	item := dish.Snapshot()
	c.items = append(c.items, item)
	c.log.Debug("added %s at %s", item.DishName, item.Price)
	return cloneItem(item), nil
}

// RemoveDish drops the matching item.
func (c *Cart) RemoveDish(name string) error {
	i, ok := c.find(name)
	if !ok {
		return domain.Errorf(domain.KindNotFound, name, "no such dish in cart")
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.log.Debug("removed %s", name)
	return nil
}

// ModifyIngredientQuantity sets a new used quantity on one cart item and
// scales that item's price by newQty / previousQty, where previousQty is the
// quantity currently stored on the item. Repeated edits compound.
func (c *Cart) ModifyIngredientQuantity(dishName, ingredient string, newQty decimal.Decimal) (domain.CartItem, error) {
	if !newQty.IsPositive() {
		return domain.CartItem{}, domain.Errorf(domain.KindValidation, "quantity", "new quantity must be positive, got %s", newQty)
	}
	i, ok := c.find(dishName)
	if !ok {
		return domain.CartItem{}, domain.Errorf(domain.KindNotFound, dishName, "no such dish in cart")
	}
	item := &c.items[i]
	for j := range item.Usages {
		u := &item.Usages[j]
		if !domain.SameName(u.Ingredient, ingredient) {
			continue
		}
		prev := u.Quantity
		u.Quantity = newQty
		item.Price = item.Price.Mul(newQty).Div(prev)
		c.log.Debug("%s/%s changed %s -> %s kg, price now %s", item.DishName, u.Ingredient, prev, newQty, item.Price)
		return cloneItem(*item), nil
	}
	return domain.CartItem{}, domain.Errorf(domain.KindNotFound, ingredient, "ingredient not found in %s", item.DishName)
}

// Total is the sum of item prices.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Price)
	}
	return total
}

// Items returns copies of the cart items in the order they were added.
func (c *Cart) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	for i, it := range c.items {
		out[i] = cloneItem(it)
	}
	return out
}

// Len returns the number of items.
func (c *Cart) Len() int { return len(c.items) }

// Clear empties the cart.
func (c *Cart) Clear() { c.items = nil }

func (c *Cart) find(name string) (int, bool) {
	for i, it := range c.items {
		if domain.SameName(it.DishName, name) {
			return i, true
		}
	}
	return 0, false
}

func cloneItem(it domain.CartItem) domain.CartItem {
	it.Usages = domain.CopyUsages(it.Usages)
	return it
}
