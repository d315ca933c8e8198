package menu

import "github.com/hammamikhairi/ottodine/internal/domain"

// Available returns the dishes whose every usage resolves in stock with at
// least the used quantity on hand. A usage naming an ingredient the catalog
// no longer has excludes the dish silently. Order is preserved.
func Available(dishes []domain.Dish, stock domain.IngredientResolver) []domain.Dish {
	out := make([]domain.Dish, 0, len(dishes))
	for _, d := range dishes {
		if Satisfiable(d, stock) {
			out = append(out, d)
		}
	}
	return out
}

// Satisfiable reports whether stock covers every usage of d.
func Satisfiable(d domain.Dish, stock domain.IngredientResolver) bool {
	for _, u := range d.Usages {
		ing, ok := stock.Lookup(u.Ingredient)
		if !ok || ing.Quantity.LessThan(u.Quantity) {
			return false
		}
	}
	return true
}
