// Package domain defines the core types and interfaces for the restaurant.
// All other packages depend on domain; domain depends on nothing but decimal.
package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// MinInfoLength is the shortest accepted dish description.
const MinInfoLength = 5

// MinUsages is the smallest number of ingredients a dish may use.
const MinUsages = 2

// Ingredient is a stocked raw material. Quantity is in kilograms.
type Ingredient struct {
	Name         string
	PricePerUnit decimal.Decimal
	Quantity     decimal.Decimal
}

// Usage is the amount of one ingredient a dish consumes. Ingredient is a
// name resolved through the catalog at use time, never a pointer.
type Usage struct {
	Ingredient string
	Quantity   decimal.Decimal
}

// Dish is a menu definition.
type Dish struct {
	Name   string
	Price  decimal.Decimal
	Info   string
	Usages []Usage
}

// CartItem is a cart-local snapshot of a dish. Usages is a deep copy.
type CartItem struct {
	DishName  string
	BasePrice decimal.Decimal
	Price     decimal.Decimal
	Usages    []Usage
}

// Order is one settled cart line.
type Order struct {
	User     string
	Dish     string
	Price    decimal.Decimal
	PlacedAt time.Time
}

// Key normalises a name for case-insensitive comparisons.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameName reports whether two names match ignoring case.
func SameName(a, b string) bool {
	return Key(a) == Key(b)
}

// NewIngredient validates and builds an ingredient record.
func NewIngredient(name string, price, qty decimal.Decimal) (Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Ingredient{}, Errorf(KindValidation, "name", "ingredient name cannot be empty")
	}
	if !isLettersOnly(name) {
		return Ingredient{}, Errorf(KindValidation, "name", "ingredient name %q must contain only letters", name)
	}
	if !price.IsPositive() {
		return Ingredient{}, Errorf(KindValidation, "price", "price must be positive, got %s", price)
	}
	if !qty.IsPositive() {
		return Ingredient{}, Errorf(KindValidation, "quantity", "quantity must be positive, got %s", qty)
	}
	return Ingredient{Name: name, PricePerUnit: price, Quantity: qty}, nil
}

// NewDish validates and builds a dish. Usages are copied.
func NewDish(name string, price decimal.Decimal, info string, usages []Usage) (Dish, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Dish{}, Errorf(KindValidation, "name", "dish name cannot be empty")
	}
	if !price.IsPositive() {
		return Dish{}, Errorf(KindValidation, "price", "price must be positive, got %s", price)
	}
	if len([]rune(info)) < MinInfoLength {
		return Dish{}, Errorf(KindValidation, "info", "info must contain at least %d characters", MinInfoLength)
	}
	if len(usages) < MinUsages {
		return Dish{}, Errorf(KindValidation, "ingredients", "each dish must contain at least %d ingredients, got %d", MinUsages, len(usages))
	}
	seen := make(map[string]bool, len(usages))
	for _, u := range usages {
		if strings.TrimSpace(u.Ingredient) == "" {
			return Dish{}, Errorf(KindValidation, "ingredients", "ingredient name cannot be empty")
		}
		if !u.Quantity.IsPositive() {
			return Dish{}, Errorf(KindValidation, u.Ingredient, "used quantity must be positive, got %s", u.Quantity)
		}
		k := Key(u.Ingredient)
		if seen[k] {
			return Dish{}, Errorf(KindDuplicate, u.Ingredient, "ingredient is already added to this dish")
		}
		seen[k] = true
	}
	return Dish{Name: name, Price: price, Info: info, Usages: CopyUsages(usages)}, nil
}

// CopyUsages returns a deep copy of a usage list.
func CopyUsages(in []Usage) []Usage {
	out := make([]Usage, len(in))
	copy(out, in)
	return out
}

// Snapshot builds a cart item from the dish's current definition.
func (d Dish) Snapshot() CartItem {
	return CartItem{
		DishName:  d.Name,
		BasePrice: d.Price,
		Price:     d.Price,
		Usages:    CopyUsages(d.Usages),
	}
}

func isLettersOnly(s string) bool {
	for _, r := range s {
		if r != ' ' && !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
