package conversation

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
)

// ParseAmount reads a decimal argument. field names the argument in the
// error.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, domain.Errorf(domain.KindValidation, field, "%q is not a number", s)
	}
	return v, nil
}

// ParseAge reads an integer age argument.
func ParseAge(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, domain.Errorf(domain.KindValidation, "age", "%q is not a whole number", s)
	}
	return v, nil
}

// ParseUsages reads "name:kg, name:kg" into usages.
func ParseUsages(s string) ([]domain.Usage, error) {
	var out []domain.Usage
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, qty, ok := strings.Cut(part, ":")
		if !ok {
			return nil, domain.Errorf(domain.KindValidation, "ingredients", "expected <ingredient>:<kg>, got %q", part)
		}
		amount, err := ParseAmount(strings.TrimSpace(name), qty)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Usage{Ingredient: strings.TrimSpace(name), Quantity: amount})
	}
	return out, nil
}
