package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/cart"
	"github.com/hammamikhairi/ottodine/internal/domain"
)

// session is one signed-in customer's cart.
type session struct {
	id   string
	user string
	cart *cart.Cart
}

// OpenSession starts an empty cart for user and returns its id.
func (e *Engine) OpenSession(user string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := &session{id: generateID(), user: user, cart: cart.New(e.log.Named("cart"))}
	e.sessions[s.id] = s
	e.log.Debug("opened session %s for %s", s.id, user)
	return s.id
}

// CloseSession discards the session and its cart.
func (e *Engine) CloseSession(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, id)
	e.log.Debug("closed session %s", id)
}

// AddToCart snapshots a dish from the visible menu into the session's cart.
func (e *Engine) AddToCart(id, dishName string) (domain.CartItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.session(id)
	if err != nil {
		return domain.CartItem{}, err
	}
	d, ok := e.dishes.VisibleDish(dishName)
	if !ok {
		return domain.CartItem{}, domain.Errorf(domain.KindNotFound, dishName, "dish not found on the menu")
	}
	return s.cart.AddDish(d)
}

// RemoveFromCart drops a dish from the session's cart.
func (e *Engine) RemoveFromCart(id, dishName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.session(id)
	if err != nil {
		return err
	}
	return s.cart.RemoveDish(dishName)
}

// ModifyIngredient changes one usage quantity of a cart item and rescales
// the item's price.
func (e *Engine) ModifyIngredient(id, dishName, ingredient string, qty decimal.Decimal) (domain.CartItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.session(id)
	if err != nil {
		return domain.CartItem{}, err
	}
	return s.cart.ModifyIngredientQuantity(dishName, ingredient, qty)
}

// Cart returns copies of the session's cart items.
func (e *Engine) Cart(id string) ([]domain.CartItem, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, err := e.session(id)
	if err != nil {
		return nil, err
	}
	return s.cart.Items(), nil
}

// CartTotal returns the sum of the session's item prices.
func (e *Engine) CartTotal(id string) (decimal.Decimal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, err := e.session(id)
	if err != nil {
		return decimal.Zero, err
	}
	return s.cart.Total(), nil
}

// Checkout settles the session's cart and persists stock, budget and the
// new orders. A persistence failure is returned after the in-memory commit.
func (e *Engine) Checkout(ctx context.Context, id string) ([]domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.session(id)
	if err != nil {
		return nil, err
	}
	orders, err := s.cart.Confirm(cart.Settlement{
		Stock:  e.stock,
		Till:   e.till,
		Ledger: e.ledger,
		Menu:   e.dishes,
		Now:    e.now,
	}, s.user)
	if err != nil {
		return nil, err
	}

	// Orders are appended even when the stock save fails.
	var errs []error
	for _, o := range orders {
		if err := e.repos.Orders.Append(ctx, o); err != nil {
			e.log.Error("appending order: %v", err)
			errs = append(errs, fmt.Errorf("appending order %s: %w", o.Dish, err))
		}
	}
	if err := e.saveStock(ctx); err != nil {
		errs = append(errs, err)
	}
	return orders, notSaved(errors.Join(errs...))
}

func (e *Engine) session(id string) (*session, error) {
	s, ok := e.sessions[id]
	if !ok {
		return nil, domain.Errorf(domain.KindNotFound, "session", "no active session %q", id)
	}
	return s, nil
}
