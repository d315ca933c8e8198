package cart

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
)

// Confirm settles the cart for user in two phases.
//
// Phase 1 only reads: every usage of every item must resolve in stock, and
// the running demand per ingredient across all items must not exceed what is
// on hand. The first violation aborts with InsufficientStock naming the
// ingredient, and nothing is mutated.
//
// Phase 2 decrements stock, credits the till with Total, refreshes the menu,
// appends one order per item at that item's current price, and clears the
// cart. Stock and till are all-or-nothing: a failure while applying restores
// the decrements already made.
func (c *Cart) Confirm(s Settlement, user string) ([]domain.Order, error) {
	if len(c.items) == 0 {
		return nil, domain.Errorf(domain.KindValidation, "cart", "cart is empty")
	}
	total := c.Total()
	if !total.IsPositive() {
		return nil, domain.Errorf(domain.KindInvalidAmount, total.String(), "cart total must be positive")
	}
	if err := c.validate(s.Stock); err != nil {
		return nil, err
	}

	applied := make([]domain.Usage, 0)
	for _, it := range c.items {
		for _, u := range it.Usages {
			if _, err := s.Stock.Adjust(u.Ingredient, u.Quantity.Neg()); err != nil {
				c.rollback(s.Stock, applied)
				return nil, fmt.Errorf("settling %s: %w", it.DishName, err)
			}
			applied = append(applied, u)
		}
	}

	if err := s.Till.Credit(total); err != nil {
		c.rollback(s.Stock, applied)
		return nil, fmt.Errorf("crediting budget: %w", err)
	}

	if s.Menu != nil {
		s.Menu.Refresh(s.Stock)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	at := now()
	orders := make([]domain.Order, 0, len(c.items))
	for _, it := range c.items {
		orders = append(orders, s.Ledger.Append(user, it.DishName, it.Price, at))
	}

	c.log.Info("settled %d item(s) for %s, total %s", len(orders), user, total.StringFixed(2))
	c.Clear()
	return orders, nil
}

// validate is phase 1. It never mutates stock.
func (c *Cart) validate(stock domain.IngredientResolver) error {
	demand := make(map[string]decimal.Decimal)
	for _, it := range c.items {
		for _, u := range it.Usages {
			ing, ok := stock.Lookup(u.Ingredient)
			if !ok {
				return domain.Errorf(domain.KindInsufficientStock, u.Ingredient, "not in stock")
			}
			k := domain.Key(u.Ingredient)
			need := demand[k].Add(u.Quantity)
			if ing.Quantity.LessThan(need) {
				return domain.Errorf(domain.KindInsufficientStock, ing.Name,
					"not enough in stock for %s: need %s kg, have %s kg", it.DishName, need, ing.Quantity)
			}
			demand[k] = need
		}
	}
	return nil
}

// rollback restores the decrements already applied. A restore that fails
// is logged; the remaining ones are still attempted.
func (c *Cart) rollback(stock Stock, applied []domain.Usage) {
	for _, u := range applied {
		if _, err := stock.Adjust(u.Ingredient, u.Quantity); err != nil {
			c.log.Error("restoring %s kg of %s: %v", u.Quantity, u.Ingredient, err)
		}
	}
}
