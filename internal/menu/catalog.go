// Package menu owns dish definitions and derives the purchasable menu
// from current stock.
package menu

import (
	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/logger"
)

// Catalog holds every dish the admin has defined, purchasable or not.
// Dishes leave the visible menu when unsatisfiable but stay here.
// Not safe for concurrent use; callers serialise access.
type Catalog struct {
	dishes  []domain.Dish
	visible []domain.Dish
	log     *logger.Logger
}

// NewCatalog creates an empty dish catalog.
func NewCatalog(log *logger.Logger) *Catalog {
	return &Catalog{log: log}
}

// Replace swaps the catalog contents for a loaded set. Later duplicates of a
// name are dropped.
func (c *Catalog) Replace(dishes []domain.Dish) {
	c.dishes = c.dishes[:0]
	for _, d := range dishes {
		if _, ok := c.find(d.Name); ok {
			c.log.Warn("dropping duplicate dish %q", d.Name)
			continue
		}
		c.dishes = append(c.dishes, cloneDish(d))
	}
	c.visible = nil
}

// Add validates and appends a dish. Names are unique ignoring case.
func (c *Catalog) Add(dish domain.Dish) (domain.Dish, error) {
	valid, err := domain.NewDish(dish.Name, dish.Price, dish.Info, dish.Usages)
	if err != nil {
		return domain.Dish{}, err
	}
	if _, ok := c.find(valid.Name); ok {
		return domain.Dish{}, domain.Errorf(domain.KindDuplicate, valid.Name, "dish with this name already exists")
	}
	c.dishes = append(c.dishes, valid)
	c.log.Debug("dish %s added (%d ingredients)", valid.Name, len(valid.Usages))
	return cloneDish(valid), nil
}

// Lookup returns a copy of the named dish from the full catalog.
func (c *Catalog) Lookup(name string) (domain.Dish, bool) {
	i, ok := c.find(name)
	if !ok {
		return domain.Dish{}, false
	}
	return cloneDish(c.dishes[i]), true
}

// All returns copies of every dish in insertion order.
func (c *Catalog) All() []domain.Dish {
	return cloneDishes(c.dishes)
}

// Refresh recomputes the visible menu against stock. Call it after any
// stock change: ingredient added, quantity increased, order settled.
func (c *Catalog) Refresh(stock domain.IngredientResolver) []domain.Dish {
	c.visible = Available(c.dishes, stock)
	c.log.Debug("menu refreshed: %d of %d dishes available", len(c.visible), len(c.dishes))
	return cloneDishes(c.visible)
}

// Visible returns the menu computed by the last Refresh.
func (c *Catalog) Visible() []domain.Dish {
	return cloneDishes(c.visible)
}

// VisibleDish looks a dish up on the visible menu only.
func (c *Catalog) VisibleDish(name string) (domain.Dish, bool) {
	for _, d := range c.visible {
		if domain.SameName(d.Name, name) {
			return cloneDish(d), true
		}
	}
	return domain.Dish{}, false
}

func (c *Catalog) find(name string) (int, bool) {
	for i, d := range c.dishes {
		if domain.SameName(d.Name, name) {
			return i, true
		}
	}
	return 0, false
}

func cloneDish(d domain.Dish) domain.Dish {
	d.Usages = domain.CopyUsages(d.Usages)
	return d
}

func cloneDishes(in []domain.Dish) []domain.Dish {
	out := make([]domain.Dish, len(in))
	for i, d := range in {
		out[i] = cloneDish(d)
	}
	return out
}
