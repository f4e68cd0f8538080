package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// LimitDecision is the outcome of a credit-limit check
type LimitDecision struct {
	Allowed        bool
	WouldBeBalance decimal.Decimal
	Ceiling        decimal.Decimal
}

// CheckLimit decides whether adding proposed to current keeps a party within
// ceiling. A party already at or above the ceiling is refused, and so is any
// proposal that would take the balance past it; landing exactly on the
// ceiling from below is allowed.
func CheckLimit(current, proposed, ceiling decimal.Decimal) LimitDecision {
	wouldBe := current.Add(proposed)
	allowed := current.LessThan(ceiling) && wouldBe.LessThanOrEqual(ceiling)
	return LimitDecision{
		Allowed:        allowed,
		WouldBeBalance: wouldBe,
		Ceiling:        ceiling,
	}
}

// Err returns a CREDIT_LIMIT_EXCEEDED error for refused decisions, nil otherwise
func (d LimitDecision) Err() error {
	if d.Allowed {
		return nil
	}
	return shared.NewDomainError(shared.CodeCreditLimitExceeded,
		fmt.Sprintf("Credit limit exceeded: balance would be %s against a limit of %s",
			d.WouldBeBalance.StringFixed(2), d.Ceiling.StringFixed(2)))
}

// ErrCreditLimitExceeded matches any refused decision with errors.Is
var ErrCreditLimitExceeded = shared.NewDomainError(shared.CodeCreditLimitExceeded, "Credit limit exceeded")
