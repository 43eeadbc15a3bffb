package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation failures surface before any write; none of these leave partial
// state behind.
var (
	ErrEntityRequired             = errors.New("entity id is required")
	ErrMissingLineItems           = errors.New("transaction has no amount")
	ErrNegativeAmount             = errors.New("amount cannot be negative")
	ErrAlreadyPosted              = errors.New("transaction is already posted")
	ErrPostedTransaction          = errors.New("posted transactions can only change narration and reference")
	ErrUnpostedTransaction        = errors.New("transaction must be posted first")
	ErrInvalidAccountClassBalance = errors.New("income statement accounts cannot have opening balances")
	ErrClosedReportingPeriod      = errors.New("reporting period is closed")
	ErrUnclearableTransaction     = errors.New("transaction type cannot be cleared")
	ErrUnassignableTransaction    = errors.New("transaction type cannot clear other transactions")
	ErrSelfClearance              = errors.New("transaction cannot clear itself")
	ErrMissingExchangeRate        = errors.New("no exchange rate found for the transaction date")
)

// MissingAccountError reports a required account reference that is absent.
type MissingAccountError struct {
	Operation string
}

func (e MissingAccountError) Error() string {
	return e.Operation + " requires an account"
}

// InvalidAccountTypeError reports an account whose type is outside the
// operation's allowed set.
type InvalidAccountTypeError struct {
	Allowed []AccountType
}

func (e InvalidAccountTypeError) Error() string {
	return "account type must be one of: " + joinAccountTypes(e.Allowed)
}

// MainAccountError reports a transaction whose main account fails the
// variant's required type.
type MainAccountError struct {
	TransactionType TransactionType
	Required        []AccountType
}

func (e MainAccountError) Error() string {
	return string(e.TransactionType) + " transaction main account must be of type " + joinAccountTypes(e.Required)
}

// LineItemAccountError reports a line item account outside the variant's
// allowed set. The whole post aborts on the first violation.
type LineItemAccountError struct {
	TransactionType TransactionType
	Allowed         []AccountType
}

func (e LineItemAccountError) Error() string {
	return string(e.TransactionType) + " transaction line item accounts must be of type " + joinAccountTypes(e.Allowed)
}

// OverAssignmentError rejects an assignment that exceeds the cleared
// transaction's outstanding remainder.
type OverAssignmentError struct {
	Outstanding decimal.Decimal
}

func (e OverAssignmentError) Error() string {
	return fmt.Sprintf("assignment amount exceeds the outstanding balance of %s", e.Outstanding.StringFixed(4))
}

// InsufficientCapacityError rejects an assignment larger than the clearing
// transaction's remaining unassigned amount.
type InsufficientCapacityError struct {
	Available decimal.Decimal
}

func (e InsufficientCapacityError) Error() string {
	return fmt.Sprintf("clearing transaction has only %s left to assign", e.Available.StringFixed(4))
}

func joinAccountTypes(types []AccountType) string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
