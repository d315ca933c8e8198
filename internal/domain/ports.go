package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// IngredientResolver looks ingredients up by name, ignoring case.
type IngredientResolver interface {
	Lookup(name string) (Ingredient, bool)
}

// IngredientRepository persists the ingredient catalog.
type IngredientRepository interface {
	Load(ctx context.Context) ([]Ingredient, error)
	Save(ctx context.Context, ingredients []Ingredient) error
}

// DishRepository persists dish definitions. Load resolves usages against
// the supplied catalog and drops the ones that do not resolve.
type DishRepository interface {
	Load(ctx context.Context, catalog IngredientResolver) ([]Dish, error)
	Save(ctx context.Context, dishes []Dish) error
}

// OrderRepository is the append-only order store.
type OrderRepository interface {
	Append(ctx context.Context, order Order) error
	LoadAll(ctx context.Context) ([]Order, error)
}

// BudgetRepository persists the single balance value. Load reports
// ok=false when no balance has been stored yet.
type BudgetRepository interface {
	Load(ctx context.Context) (balance decimal.Decimal, ok bool, err error)
	Save(ctx context.Context, balance decimal.Decimal) error
}

// CustomerRepository persists registered customers.
type CustomerRepository interface {
	Load(ctx context.Context) ([]Customer, error)
	Save(ctx context.Context, customers []Customer) error
}

// CommandParser converts raw operator input into a command.
type CommandParser interface {
	Parse(ctx context.Context, input string, role Role) (*Command, error)
}

// Notifier delivers messages to the operator.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
