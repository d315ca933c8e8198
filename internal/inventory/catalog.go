// Package inventory owns the ingredient catalog.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/logger"
)

// Compile-time interface check.
var _ domain.IngredientResolver = (*Catalog)(nil)

// Catalog exclusively owns ingredient records. Lookups ignore case and
// results are copies; mutation goes through Upsert, Adjust and Increase.
// Not safe for concurrent use; callers serialise access.
type Catalog struct {
	items []domain.Ingredient
	index map[string]int
	log   *logger.Logger
}

// NewCatalog creates an empty catalog.
func NewCatalog(log *logger.Logger) *Catalog {
	return &Catalog{
		index: make(map[string]int),
		log:   log,
	}
}

// Replace swaps the catalog contents for a loaded set. Records that share a
// name are merged the same way Upsert merges them.
func (c *Catalog) Replace(items []domain.Ingredient) {
	c.items = c.items[:0]
	c.index = make(map[string]int, len(items))
	for _, ing := range items {
		if i, ok := c.index[domain.Key(ing.Name)]; ok {
			c.items[i].Quantity = c.items[i].Quantity.Add(ing.Quantity)
			continue
		}
		c.index[domain.Key(ing.Name)] = len(c.items)
		c.items = append(c.items, ing)
	}
	c.log.Debug("catalog replaced, count=%d", len(c.items))
}

// Upsert merges by case-insensitive name. An existing record gains qty and
// keeps its original price; otherwise a new record is inserted.
func (c *Catalog) Upsert(name string, price, qty decimal.Decimal) (domain.Ingredient, error) {
	ing, err := domain.NewIngredient(name, price, qty)
	if err != nil {
		return domain.Ingredient{}, err
	}

	if i, ok := c.index[domain.Key(ing.Name)]; ok {
		c.items[i].Quantity = c.items[i].Quantity.Add(qty)
		c.log.Debug("merged %s kg into %s, now %s", qty, c.items[i].Name, c.items[i].Quantity)
		return c.items[i], nil
	}

	c.index[domain.Key(ing.Name)] = len(c.items)
	c.items = append(c.items, ing)
	c.log.Debug("inserted ingredient %s (%s kg @ %s)", ing.Name, ing.Quantity, ing.PricePerUnit)
	return ing, nil
}

// Lookup returns a copy of the named ingredient.
func (c *Catalog) Lookup(name string) (domain.Ingredient, bool) {
	i, ok := c.index[domain.Key(name)]
	if !ok {
		return domain.Ingredient{}, false
	}
	return c.items[i], true
}

// Adjust applies delta to the on-hand quantity and returns the new value.
// A negative delta larger than the stock fails with InsufficientStock and
// leaves the record unchanged. A zero delta is a no-op.
func (c *Catalog) Adjust(name string, delta decimal.Decimal) (decimal.Decimal, error) {
	i, ok := c.index[domain.Key(name)]
	if !ok {
		return decimal.Zero, domain.Errorf(domain.KindNotFound, name, "no such ingredient in stock")
	}
	cur := c.items[i].Quantity
	if delta.IsNegative() && delta.Abs().GreaterThan(cur) {
		return cur, domain.Errorf(domain.KindInsufficientStock, c.items[i].Name,
			"not enough in stock: need %s kg, have %s kg", delta.Abs(), cur)
	}
	if delta.IsZero() {
		return cur, nil
	}
	c.items[i].Quantity = cur.Add(delta)
	return c.items[i].Quantity, nil
}

// Increase adds a strictly positive amount to an existing ingredient.
func (c *Catalog) Increase(name string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.Errorf(domain.KindValidation, "quantity", "increase amount must be positive, got %s", amount)
	}
	return c.Adjust(name, amount)
}

// List returns copies of every record in insertion order.
func (c *Catalog) List() []domain.Ingredient {
	out := make([]domain.Ingredient, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.items) }
