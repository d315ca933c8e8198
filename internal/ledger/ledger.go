// Package ledger records settled order lines.
package ledger

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/ottodine/internal/domain"
)

// Ledger is append-only: records are never rewritten or removed.
type Ledger struct {
	records []domain.Order
}

// New creates a ledger seeded with previously settled orders.
func New(history []domain.Order) *Ledger {
	l := &Ledger{records: make([]domain.Order, len(history))}
	copy(l.records, history)
	return l
}

// Append records one settled line and returns it.
func (l *Ledger) Append(user, dish string, price decimal.Decimal, at time.Time) domain.Order {
	o := domain.Order{User: user, Dish: dish, Price: price, PlacedAt: at}
	l.records = append(l.records, o)
	return o
}

// Len returns the number of records.
func (l *Ledger) Len() int { return len(l.records) }

// QueryByUser yields the user's orders in insertion order, matching the
// username ignoring case. The sequence can be ranged over repeatedly; each
// pass sees the records present when it started.
func (l *Ledger) QueryByUser(user string) iter.Seq[domain.Order] {
	return func(yield func(domain.Order) bool) {
		snapshot := l.records[:len(l.records):len(l.records)]
		for _, o := range snapshot {
			if !domain.SameName(o.User, user) {
				continue
			}
			if !yield(o) {
				return
			}
		}
	}
}

// All yields every record in insertion order.
func (l *Ledger) All() iter.Seq[domain.Order] {
	return func(yield func(domain.Order) bool) {
		snapshot := l.records[:len(l.records):len(l.records)]
		for _, o := range snapshot {
			if !yield(o) {
				return
			}
		}
	}
}
