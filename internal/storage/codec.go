package storage

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
	"github.com/hammamikhairi/ottodine/internal/logger"
)

// Record markers for the dish file.
const (
	usagePrefix = "ING|"
	dishEnd     = "END_DISH"
	sep         = "|"
)

// EncodeIngredients writes one name|price|quantity line per ingredient.
func EncodeIngredients(w io.Writer, items []domain.Ingredient) error {
	bw := bufio.NewWriter(w)
	for _, ing := range items {
		fmt.Fprintf(bw, "%s|%s|%s\n", ing.Name, ing.PricePerUnit, ing.Quantity)
	}
	return bw.Flush()
}

// DecodeIngredients reads ingredient lines, skipping malformed ones. A zero
// quantity is valid on load since stock can be drained.
func DecodeIngredients(r io.Reader, log *logger.Logger) ([]domain.Ingredient, error) {
	var out []domain.Ingredient
	err := eachLine(r, func(n int, line string) {
		f := strings.Split(line, sep)
		if len(f) != 3 {
			log.Warn("ingredients line %d: expected 3 fields, got %d", n, len(f))
			return
		}
		price, err1 := decimal.NewFromString(strings.TrimSpace(f[1]))
		qty, err2 := decimal.NewFromString(strings.TrimSpace(f[2]))
		name := strings.TrimSpace(f[0])
		if err1 != nil || err2 != nil || name == "" || !price.IsPositive() || qty.IsNegative() {
			log.Warn("ingredients line %d: invalid record %q", n, line)
			return
		}
		out = append(out, domain.Ingredient{Name: name, PricePerUnit: price, Quantity: qty})
	})
	return out, err
}

// EncodeDishes writes a name|price|info header, one ING line per usage and
// the END_DISH sentinel for every dish.
func EncodeDishes(w io.Writer, dishes []domain.Dish) error {
	bw := bufio.NewWriter(w)
	for _, d := range dishes {
		fmt.Fprintf(bw, "%s|%s|%s\n", d.Name, d.Price, d.Info)
		for _, u := range d.Usages {
			fmt.Fprintf(bw, "%s%s|%s\n", usagePrefix, u.Ingredient, u.Quantity)
		}
		fmt.Fprintln(bw, dishEnd)
	}
	return bw.Flush()
}

// DecodeDishes reads dish blocks and resolves every usage against catalog.
// Usages that do not resolve are dropped; a dish left with fewer than
// domain.MinUsages usages is skipped.
func DecodeDishes(r io.Reader, catalog domain.IngredientResolver, log *logger.Logger) ([]domain.Dish, error) {
	var (
		out     []domain.Dish
		current *domain.Dish
	)
	err := eachLine(r, func(n int, line string) {
		switch {
		case strings.HasPrefix(line, usagePrefix):
			if current == nil {
				log.Warn("menu line %d: usage outside a dish block", n)
				return
			}
			f := strings.Split(strings.TrimPrefix(line, usagePrefix), sep)
			if len(f) != 2 {
				log.Warn("menu line %d: malformed usage %q", n, line)
				return
			}
			qty, err := decimal.NewFromString(strings.TrimSpace(f[1]))
			if err != nil {
				log.Warn("menu line %d: bad quantity %q", n, f[1])
				return
			}
			current.Usages = append(current.Usages, domain.Usage{Ingredient: f[0], Quantity: qty})
		case line == dishEnd:
			if current != nil {
				if d, ok := resolveDish(*current, catalog, log); ok {
					out = append(out, d)
				}
			}
			current = nil
		default:
			if current != nil {
				log.Warn("menu line %d: dish %q has no %s terminator, ignored", n, current.Name, dishEnd)
				current = nil
			}
			f := strings.SplitN(line, sep, 3)
			if len(f) != 3 {
				log.Warn("menu line %d: malformed dish header %q", n, line)
				current = nil
				return
			}
			price, err := decimal.NewFromString(strings.TrimSpace(f[1]))
			if err != nil {
				log.Warn("menu line %d: bad price %q", n, f[1])
				current = nil
				return
			}
			current = &domain.Dish{Name: f[0], Price: price, Info: f[2]}
		}
	})
	if current != nil {
		log.Warn("menu: dish %q has no %s terminator, ignored", current.Name, dishEnd)
	}
	return out, err
}

// resolveDish canonicalises usage names against the catalog and validates
// what remains.
func resolveDish(raw domain.Dish, catalog domain.IngredientResolver, log *logger.Logger) (domain.Dish, bool) {
	usages := make([]domain.Usage, 0, len(raw.Usages))
	for _, u := range raw.Usages {
		ing, ok := catalog.Lookup(u.Ingredient)
		if !ok {
			log.Warn("dish %q: ingredient %q not in stock, usage dropped", raw.Name, u.Ingredient)
			continue
		}
		usages = append(usages, domain.Usage{Ingredient: ing.Name, Quantity: u.Quantity})
	}
	d, err := domain.NewDish(raw.Name, raw.Price, raw.Info, usages)
	if err != nil {
		log.Warn("dish %q skipped: %v", raw.Name, err)
		return domain.Dish{}, false
	}
	return d, true
}

// EncodeOrder formats username|dish|price|day|month|year|hour|minute.
func EncodeOrder(o domain.Order) string {
	t := o.PlacedAt
	return fmt.Sprintf("%s|%s|%s|%d|%d|%d|%d|%d",
		o.User, o.Dish, o.Price, t.Day(), int(t.Month()), t.Year(), t.Hour(), t.Minute())
}

// DecodeOrders reads order lines in file order. Timestamps are local time.
func DecodeOrders(r io.Reader, log *logger.Logger) ([]domain.Order, error) {
	var out []domain.Order
	err := eachLine(r, func(n int, line string) {
		f := strings.Split(line, sep)
		if len(f) != 8 {
			log.Warn("orders line %d: expected 8 fields, got %d", n, len(f))
			return
		}
		price, err := decimal.NewFromString(strings.TrimSpace(f[2]))
		if err != nil {
			log.Warn("orders line %d: bad price %q", n, f[2])
			return
		}
		var parts [5]int
		for i := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(f[3+i]))
			if err != nil {
				log.Warn("orders line %d: bad date field %q", n, f[3+i])
				return
			}
			parts[i] = v
		}
		at := time.Date(parts[2], time.Month(parts[1]), parts[0], parts[3], parts[4], 0, 0, time.Local)
		out = append(out, domain.Order{User: f[0], Dish: f[1], Price: price, PlacedAt: at})
	})
	return out, err
}

// EncodeCustomers writes username|passwordHash|email|name|age lines.
func EncodeCustomers(w io.Writer, customers []domain.Customer) error {
	bw := bufio.NewWriter(w)
	for _, c := range customers {
		fmt.Fprintf(bw, "%s|%s|%s|%s|%d\n", c.Username, c.PasswordHash, c.Email, c.Name, c.Age)
	}
	return bw.Flush()
}

// DecodeCustomers reads customer lines, skipping malformed ones.
func DecodeCustomers(r io.Reader, log *logger.Logger) ([]domain.Customer, error) {
	var out []domain.Customer
	err := eachLine(r, func(n int, line string) {
		f := strings.Split(line, sep)
		if len(f) != 5 {
			log.Warn("users line %d: expected 5 fields, got %d", n, len(f))
			return
		}
		age, err := strconv.Atoi(strings.TrimSpace(f[4]))
		if err != nil {
			log.Warn("users line %d: bad age %q", n, f[4])
			return
		}
		out = append(out, domain.Customer{
			Credentials: domain.Credentials{Username: f[0], PasswordHash: f[1], Email: f[2]},
			Name:        f[3],
			Age:         age,
		})
	})
	return out, err
}

// eachLine calls fn with every non-empty line, 1-based line numbers, and
// trailing carriage returns removed.
func eachLine(r io.Reader, fn func(n int, line string)) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fn(n, line)
	}
	return sc.Err()
}
