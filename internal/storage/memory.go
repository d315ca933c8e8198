// Package storage provides repository implementations: flat files in a data
// directory, and in-memory stores for tests and throwaway runs.
package storage

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.IngredientRepository = (*MemoryStore)(nil)
	_ domain.OrderRepository      = (*MemoryStore)(nil)
	_ domain.BudgetRepository     = (*MemoryBudget)(nil)
	_ domain.DishRepository       = (*MemoryDishes)(nil)
	_ domain.CustomerRepository   = (*MemoryCustomers)(nil)
)

// MemoryStore keeps ingredients and orders in memory. Safe for concurrent access.
// Dishes, budget and customers have their own types because their Load and
// Save signatures differ; MemoryStore hands them out.
type MemoryStore struct {
	mu          sync.RWMutex
	ingredients []domain.Ingredient
	orders      []domain.Order
	log         *logger.Logger

	dishes    *MemoryDishes
	budget    *MemoryBudget
	customers *MemoryCustomers
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		log:       log,
		dishes:    &MemoryDishes{log: log},
		budget:    &MemoryBudget{},
		customers: &MemoryCustomers{},
	}
}

// Load returns a copy of the saved ingredients.
func (s *MemoryStore) Load(ctx context.Context) ([]domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Ingredient, len(s.ingredients))
	copy(out, s.ingredients)
	s.log.Debug("loaded %d ingredients from memory", len(out))
	return out, nil
}

// Save overwrites the saved ingredients.
func (s *MemoryStore) Save(ctx context.Context, items []domain.Ingredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ingredients = make([]domain.Ingredient, len(items))
	copy(s.ingredients, items)
	s.log.Debug("saved %d ingredients to memory", len(items))
	return nil
}

// Append records one order.
func (s *MemoryStore) Append(ctx context.Context, o domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = append(s.orders, o)
	return nil
}

// LoadAll returns every order in insertion order.
func (s *MemoryStore) LoadAll(ctx context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

// Dishes returns the dish repository.
func (s *MemoryStore) Dishes() *MemoryDishes { return s.dishes }

// Budget returns the budget repository.
func (s *MemoryStore) Budget() *MemoryBudget { return s.budget }

// Customers returns the customer repository.
func (s *MemoryStore) Customers() *MemoryCustomers { return s.customers }

// MemoryDishes keeps dishes in memory and resolves them on Load the same
// way the flat file does.
type MemoryDishes struct {
	mu     sync.RWMutex
	dishes []domain.Dish
	log    *logger.Logger
}

// Load resolves the saved dishes against catalog.
func (m *MemoryDishes) Load(ctx context.Context, catalog domain.IngredientResolver) ([]domain.Dish, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Dish, 0, len(m.dishes))
	for _, d := range m.dishes {
		if resolved, ok := resolveDish(d, catalog, m.log); ok {
			out = append(out, resolved)
		}
	}
	return out, nil
}

// Save overwrites the saved dishes.
func (m *MemoryDishes) Save(ctx context.Context, dishes []domain.Dish) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dishes = make([]domain.Dish, len(dishes))
	for i, d := range dishes {
		d.Usages = domain.CopyUsages(d.Usages)
		m.dishes[i] = d
	}
	return nil
}

// MemoryBudget keeps the balance in memory.
type MemoryBudget struct {
	mu      sync.RWMutex
	balance decimal.Decimal
	set     bool
}

// Load returns the saved balance, if any.
func (m *MemoryBudget) Load(ctx context.Context) (decimal.Decimal, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balance, m.set, nil
}

// Save stores the balance.
func (m *MemoryBudget) Save(ctx context.Context, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance, m.set = balance, true
	return nil
}

// MemoryCustomers keeps registered customers in memory.
type MemoryCustomers struct {
	mu        sync.RWMutex
	customers []domain.Customer
}

// Load returns a copy of the saved customers.
func (m *MemoryCustomers) Load(ctx context.Context) ([]domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Customer, len(m.customers))
	copy(out, m.customers)
	return out, nil
}

// Save overwrites the saved customers.
func (m *MemoryCustomers) Save(ctx context.Context, customers []domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.customers = make([]domain.Customer, len(customers))
	copy(m.customers, customers)
	return nil
}
