// Package budget holds the restaurant's single running balance.
package budget

import (
	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
)

// DefaultOpening is the balance a fresh installation starts with.
var DefaultOpening = decimal.NewFromInt(15000)

// Budget is mutated only through Credit and Debit.
type Budget struct {
	balance decimal.Decimal
}

// New creates a budget with the given opening balance.
func New(opening decimal.Decimal) *Budget {
	return &Budget{balance: opening}
}

// Balance returns the current balance.
func (b *Budget) Balance() decimal.Decimal { return b.balance }

// Credit adds a strictly positive amount.
func (b *Budget) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.Errorf(domain.KindInvalidAmount, amount.String(), "amount to credit must be positive")
	}
	b.balance = b.balance.Add(amount)
	return nil
}

// Debit subtracts amount if the balance covers it.
func (b *Budget) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.Errorf(domain.KindInvalidAmount, amount.String(), "amount to debit must be positive")
	}
	if err := b.CanDebit(amount); err != nil {
		return err
	}
	b.balance = b.balance.Sub(amount)
	return nil
}

// CanDebit reports, without mutating, whether Debit(amount) would succeed
// on the funds check.
func (b *Budget) CanDebit(amount decimal.Decimal) error {
	if amount.GreaterThan(b.balance) {
		return domain.Errorf(domain.KindInsufficientFunds, amount.String(),
			"not enough funds in budget: need %s, have %s", amount.StringFixed(2), b.balance.StringFixed(2))
	}
	return nil
}
