package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure so callers can branch without parsing text.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindDuplicate
	KindNotFound
	KindInsufficientStock
	KindInsufficientFunds
	KindInvalidAmount
)

// String returns the snake_case kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindInvalidAmount:
		return "invalid_amount"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per kind. Every *Error unwraps to one of these.
var (
	ErrValidation        = errors.New("validation failed")
	ErrDuplicate         = errors.New("already exists")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
)

var sentinels = map[Kind]error{
	KindValidation:        ErrValidation,
	KindDuplicate:         ErrDuplicate,
	KindNotFound:          ErrNotFound,
	KindInsufficientStock: ErrInsufficientStock,
	KindInsufficientFunds: ErrInsufficientFunds,
	KindInvalidAmount:     ErrInvalidAmount,
}

// Error carries the violated condition. Subject names the field, ingredient,
// dish or amount involved.
type Error struct {
	Kind    Kind
	Subject string
	Message string
}

func (e *Error) Error() string {
	if e.Subject == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Subject, e.Message)
}

// Unwrap exposes the kind sentinel to errors.Is.
func (e *Error) Unwrap() error {
	return sentinels[e.Kind]
}

// Errorf builds a domain error of the given kind.
func Errorf(kind Kind, subject, format string, args ...any) *Error {
	return &Error{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
