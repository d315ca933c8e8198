// lines.go centralises every user-facing string.
package conversation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
)

func LineWelcome() string {
	return "Welcome to the restaurant. Type 'login' or 'register' to begin, 'help' for commands."
}

func LineBye() string {
	return "Goodbye."
}

func LineUnknown(input string) string {
	return fmt.Sprintf("Unknown command %q. Type 'help' for the list.", input)
}

// ── Accounts ─────────────────────────────────────────────────────

func LineRegistered(username string) string {
	return fmt.Sprintf("Registration completed, %s. You can log in now.", username)
}

func LineAdminWelcome() string {
	return "Logged in as admin."
}

func LineCustomerWelcome(name string) string {
	return fmt.Sprintf("Welcome, %s!", name)
}

func LineLoggedOut() string {
	return "Logged out."
}

// ── Admin ────────────────────────────────────────────────────────

func LineBought(ing domain.Ingredient, cost decimal.Decimal) string {
	return fmt.Sprintf("Bought %s kg of %s for %s.", ing.Quantity, ing.Name, money(cost))
}

func LineRestocked(ing domain.Ingredient) string {
	return fmt.Sprintf("%s now has %s kg in stock.", ing.Name, ing.Quantity)
}

func LineDishAdded(d domain.Dish) string {
	return fmt.Sprintf("Dish %s added to the menu at %s.", d.Name, money(d.Price))
}

func LineEmptyStock() string {
	return "Stock is empty."
}

// ── Customer ─────────────────────────────────────────────────────

func LineEmptyMenu() string {
	return "Nothing on the menu right now."
}

func LineAddedToCart(item domain.CartItem) string {
	return fmt.Sprintf("%s added to cart (%s).", item.DishName, money(item.Price))
}

func LineRemovedFromCart(name string) string {
	return fmt.Sprintf("%s removed from cart.", name)
}

func LineModified(item domain.CartItem) string {
	return fmt.Sprintf("%s updated, new price %s.", item.DishName, money(item.Price))
}

func LineEmptyCart() string {
	return "Your cart is empty."
}

func LineOrderPlaced(orders []domain.Order) string {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Price)
	}
	return fmt.Sprintf("Order confirmed: %d dish(es), %s paid.", len(orders), money(total))
}

func LineNoHistory() string {
	return "No orders yet."
}

// LineSaveFailed is shown when a change was applied but could not be written.
func LineSaveFailed(err error) string {
	return fmt.Sprintf("Change applied but not saved: %v", err)
}

// LineError turns an operation error into an operator-facing sentence.
func LineError(err error) string {
	var de *domain.Error
	if !errors.As(err, &de) {
		return fmt.Sprintf("Something went wrong: %v", err)
	}
	switch de.Kind {
	case domain.KindInsufficientStock:
		return fmt.Sprintf("Not enough %s in stock. %s", de.Subject, capitalise(de.Message))
	case domain.KindInsufficientFunds:
		return "Not enough budget. " + capitalise(de.Message)
	case domain.KindNotFound:
		if de.Subject == "" {
			return capitalise(de.Message) + "."
		}
		return fmt.Sprintf("%s: %s.", de.Subject, de.Message)
	default:
		return capitalise(de.Error()) + "."
	}
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2) + " AZN"
}

func capitalise(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
