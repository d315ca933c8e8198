// Package engine orchestrates the restaurant: stock, dishes, budget, the
// order ledger and customer carts, with persistence after every commit.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/budget"
	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/inventory"
	"github.com/hammamikhairi/ottodine/internal/ledger"
	"github.com/hammamikhairi/ottodine/internal/logger"
	"github.com/hammamikhairi/ottodine/internal/menu"
)

// ErrNotSaved marks an error from persisting a change that has already been
// applied in memory.
var ErrNotSaved = errors.New("change applied but not saved")

// Option configures the engine.
type Option func(*Engine)

// WithInitialBudget sets the balance used when no budget has been stored.
func WithInitialBudget(amount decimal.Decimal) Option {
	return func(e *Engine) {
		e.initialBudget = amount
	}
}

// WithClock overrides the time source used to stamp orders.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Repositories groups the stores the engine persists to.
type Repositories struct {
	Ingredients domain.IngredientRepository
	Dishes      domain.DishRepository
	Orders      domain.OrderRepository
	Budget      domain.BudgetRepository
}

// DishInput is what an admin supplies to define a dish.
type DishInput struct {
	Name   string
	Price  decimal.Decimal
	Info   string
	Usages []domain.Usage
}

// Engine is safe for concurrent use. One mutex serialises every mutation,
// so a checkout never interleaves with a purchase or another checkout.
type Engine struct {
	mu       sync.RWMutex
	repos    Repositories
	stock    *inventory.Catalog
	dishes   *menu.Catalog
	till     *budget.Budget
	ledger   *ledger.Ledger
	sessions map[string]*session
	log      *logger.Logger

	initialBudget decimal.Decimal
	now           func() time.Time
}

// New creates an engine with empty state. Call Load to read the stores.
func New(repos Repositories, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		repos:         repos,
		sessions:      make(map[string]*session),
		log:           log,
		initialBudget: budget.DefaultOpening,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stock = inventory.NewCatalog(log.Named("inventory"))
	e.dishes = menu.NewCatalog(log.Named("menu"))
	e.till = budget.New(e.initialBudget)
	e.ledger = ledger.New(nil)
	return e
}

// Load reads ingredients, then dishes resolved against them, then orders
// and the budget. A missing budget is initialised and saved.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.repos.Ingredients.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading ingredients: %w", err)
	}
	stock := inventory.NewCatalog(e.log.Named("inventory"))
	stock.Replace(items)

	loaded, err := e.repos.Dishes.Load(ctx, stock)
	if err != nil {
		return fmt.Errorf("loading dishes: %w", err)
	}
	dishes := menu.NewCatalog(e.log.Named("menu"))
	dishes.Replace(loaded)
	dishes.Refresh(stock)

	orders, err := e.repos.Orders.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading orders: %w", err)
	}

	balance, ok, err := e.repos.Budget.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading budget: %w", err)
	}
	if !ok {
		balance = e.initialBudget
		if err := e.repos.Budget.Save(ctx, balance); err != nil {
			return fmt.Errorf("saving initial budget: %w", err)
		}
	}

	// Nothing is swapped in until every store has loaded.
	e.stock, e.dishes = stock, dishes
	e.ledger = ledger.New(orders)
	e.till = budget.New(balance)

	e.log.Info("loaded %d ingredients, %d dishes (%d on menu), %d orders, budget %s",
		e.stock.Len(), len(e.dishes.All()), len(e.dishes.Visible()), e.ledger.Len(), balance.StringFixed(2))
	return nil
}

// AddIngredient buys a new ingredient for price×qty out of the budget.
func (e *Engine) AddIngredient(ctx context.Context, name string, price, qty decimal.Decimal) (domain.Ingredient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ing, err := domain.NewIngredient(name, price, qty)
	if err != nil {
		return domain.Ingredient{}, err
	}
	if _, ok := e.stock.Lookup(ing.Name); ok {
		return domain.Ingredient{}, domain.Errorf(domain.KindDuplicate, ing.Name,
			"ingredient already exists, use restock to increase it")
	}
	cost := price.Mul(qty)
	if err := e.till.CanDebit(cost); err != nil {
		return domain.Ingredient{}, err
	}

	ing, err = e.stock.Upsert(ing.Name, price, qty)
	if err != nil {
		return domain.Ingredient{}, err
	}
	if err := e.till.Debit(cost); err != nil {
		return domain.Ingredient{}, err
	}
	e.dishes.Refresh(e.stock)
	e.log.Info("bought %s kg of %s for %s", qty, ing.Name, cost.StringFixed(2))

	return ing, e.persistStock(ctx)
}

// IncreaseIngredient restocks an existing ingredient at its stored price.
func (e *Engine) IncreaseIngredient(ctx context.Context, name string, qty decimal.Decimal) (domain.Ingredient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ing, ok := e.stock.Lookup(name)
	if !ok {
		return domain.Ingredient{}, domain.Errorf(domain.KindNotFound, name, "no such ingredient in stock")
	}
	if !qty.IsPositive() {
		return domain.Ingredient{}, domain.Errorf(domain.KindValidation, "quantity", "quantity must be positive, got %s", qty)
	}
	cost := qty.Mul(ing.PricePerUnit)
	if err := e.till.CanDebit(cost); err != nil {
		return domain.Ingredient{}, err
	}

	if _, err := e.stock.Increase(ing.Name, qty); err != nil {
		return domain.Ingredient{}, err
	}
	if err := e.till.Debit(cost); err != nil {
		if _, rerr := e.stock.Adjust(ing.Name, qty.Neg()); rerr != nil {
			e.log.Error("undoing restock of %s: %v", ing.Name, rerr)
		}
		return domain.Ingredient{}, err
	}
	e.dishes.Refresh(e.stock)
	e.log.Info("restocked %s kg of %s for %s", qty, ing.Name, cost.StringFixed(2))

	ing, _ = e.stock.Lookup(ing.Name)
	return ing, e.persistStock(ctx)
}

// CreateDish defines a new dish. Every usage must name a stocked
// ingredient; names are stored in the catalog's casing.
func (e *Engine) CreateDish(ctx context.Context, in DishInput) (domain.Dish, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	usages := make([]domain.Usage, len(in.Usages))
	for i, u := range in.Usages {
		ing, ok := e.stock.Lookup(u.Ingredient)
		if !ok {
			return domain.Dish{}, domain.Errorf(domain.KindNotFound, u.Ingredient, "ingredient not found in stock")
		}
		usages[i] = domain.Usage{Ingredient: ing.Name, Quantity: u.Quantity}
	}

	dish, err := e.dishes.Add(domain.Dish{Name: in.Name, Price: in.Price, Info: in.Info, Usages: usages})
	if err != nil {
		return domain.Dish{}, err
	}
	e.dishes.Refresh(e.stock)
	e.log.Info("added dish %q at %s", dish.Name, dish.Price.StringFixed(2))

	if err := e.repos.Dishes.Save(ctx, e.dishes.All()); err != nil {
		e.log.Error("saving dishes: %v", err)
		return dish, fmt.Errorf("%w: saving dishes: %w", ErrNotSaved, err)
	}
	return dish, nil
}

// Stock returns every ingredient in insertion order.
func (e *Engine) Stock() []domain.Ingredient {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stock.List()
}

// Menu returns the dishes that can currently be prepared.
func (e *Engine) Menu() []domain.Dish {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dishes.Visible()
}

// Dishes returns every defined dish, purchasable or not.
func (e *Engine) Dishes() []domain.Dish {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dishes.All()
}

// Dish returns a dish from the visible menu.
func (e *Engine) Dish(name string) (domain.Dish, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, ok := e.dishes.VisibleDish(name)
	if !ok {
		return domain.Dish{}, domain.Errorf(domain.KindNotFound, name, "dish not found on the menu")
	}
	return d, nil
}

// Balance returns the current budget.
func (e *Engine) Balance() decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.till.Balance()
}

// History returns the user's orders, oldest first.
func (e *Engine) History(user string) []domain.Order {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Collect(e.ledger.QueryByUser(user))
}

// persistStock saves ingredients and budget together. Callers hold e.mu.
func (e *Engine) persistStock(ctx context.Context) error {
	return notSaved(e.saveStock(ctx))
}

// saveStock attempts both saves and joins their failures.
func (e *Engine) saveStock(ctx context.Context) error {
	var errs []error
	if err := e.repos.Ingredients.Save(ctx, e.stock.List()); err != nil {
		e.log.Error("saving ingredients: %v", err)
		errs = append(errs, fmt.Errorf("saving ingredients: %w", err))
	}
	if err := e.repos.Budget.Save(ctx, e.till.Balance()); err != nil {
		e.log.Error("saving budget: %v", err)
		errs = append(errs, fmt.Errorf("saving budget: %w", err))
	}
	return errors.Join(errs...)
}

// notSaved marks err as a persistence failure after an in-memory commit.
func notSaved(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNotSaved, err)
}
