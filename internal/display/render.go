package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
)

// HistoryTimeLayout renders order timestamps as DD.MM.YYYY - HH:MM.
const HistoryTimeLayout = "02.01.2006 - 15:04"

var (
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e9d5ff")).Bold(true)
	moneyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#bbf7d0"))
	cellStyle  = lipgloss.NewStyle().PaddingRight(2)
)

// Money formats an amount in the restaurant currency.
func Money(v decimal.Decimal) string {
	return v.StringFixed(2) + " AZN"
}

// RenderStock lists every ingredient with its price and on-hand quantity.
func RenderStock(items []domain.Ingredient) string {
	rows := make([][]string, len(items))
	for i, ing := range items {
		rows[i] = []string{
			nameStyle.Render(ing.Name),
			moneyStyle.Render(Money(ing.PricePerUnit) + "/kg"),
			primaryStyle.Render(ing.Quantity.String() + " kg"),
		}
	}
	return section("STOCK", table(rows))
}

// RenderMenu lists dishes with their prices and ingredients.
func RenderMenu(dishes []domain.Dish) string {
	var b strings.Builder
	for i, d := range dishes {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(RenderDish(d))
	}
	return section("MENU", b.String())
}

// RenderDish shows one dish: name, price, description and usages.
func RenderDish(d domain.Dish) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n", nameStyle.Render(d.Name), moneyStyle.Render(Money(d.Price)))
	b.WriteString(secondaryStyle.Render("  "+d.Info) + "\n")
	b.WriteString(renderUsages(d.Usages))
	return b.String()
}

// RenderCart lists cart items, flags modified prices and shows the total.
func RenderCart(items []domain.CartItem, total decimal.Decimal) string {
	var b strings.Builder
	for _, it := range items {
		price := moneyStyle.Render(Money(it.Price))
		if !it.Price.Equal(it.BasePrice) {
			price += secondaryStyle.Render(" (was " + Money(it.BasePrice) + ")")
		}
		fmt.Fprintf(&b, "%s - %s\n", nameStyle.Render(it.DishName), price)
		b.WriteString(renderUsages(it.Usages))
	}
	b.WriteString(headingStyle.Render("Total: ") + moneyStyle.Render(Money(total)) + "\n")
	return section("CART", b.String())
}

// RenderHistory lists a user's orders, oldest first.
func RenderHistory(orders []domain.Order) string {
	rows := make([][]string, len(orders))
	for i, o := range orders {
		rows[i] = []string{
			secondaryStyle.Render(o.PlacedAt.Format(HistoryTimeLayout)),
			nameStyle.Render(o.Dish),
			moneyStyle.Render(Money(o.Price)),
		}
	}
	return section("ORDER HISTORY", table(rows))
}

// RenderBudget shows the restaurant balance.
func RenderBudget(balance decimal.Decimal) string {
	return headingStyle.Render("Budget: ") + moneyStyle.Render(Money(balance)) + "\n"
}

// RenderHelp shows one usage line per command.
func RenderHelp(usages []string) string {
	var b strings.Builder
	for _, u := range usages {
		b.WriteString(primaryStyle.Render("  "+u) + "\n")
	}
	return section("COMMANDS", b.String())
}

func renderUsages(usages []domain.Usage) string {
	var b strings.Builder
	for _, u := range usages {
		b.WriteString(primaryStyle.Render(fmt.Sprintf("    • %s: %s kg", u.Ingredient, u.Quantity)) + "\n")
	}
	return b.String()
}

func section(title, body string) string {
	return headingStyle.Bold(true).Render("=== "+title+" ===") + "\n" + body
}

// table aligns rows into columns sized to the widest cell.
func table(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}
	var b strings.Builder
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = cellStyle.Width(widths[i] + 2).Render(c)
		}
		b.WriteString("  " + lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n")
	}
	return b.String()
}
