package domain

import "time"

// ActivityKind is derived from which sides of an activity are present.
type ActivityKind string

const (
	ActivityKindDeposit    ActivityKind = "deposit"
	ActivityKindWithdrawal ActivityKind = "withdrawal"
	ActivityKindTransfer   ActivityKind = "transfer"
)

// Activity is a single immutable ledger movement. A zero source means a
// deposit, a zero target means a withdrawal, both present means a transfer.
type Activity struct {
	source    AccountID
	target    AccountID
	amount    Money
	timestamp time.Time
}

// NewDeposit records money entering target.
func NewDeposit(target AccountID, amount Money) Activity {
	return Activity{target: target, amount: amount, timestamp: time.Now()}
}

// NewWithdrawal records money leaving source.
func NewWithdrawal(source AccountID, amount Money) Activity {
	return Activity{source: source, amount: amount, timestamp: time.Now()}
}

// NewTransfer records money moving from source to target.
func NewTransfer(source, target AccountID, amount Money) Activity {
	return Activity{source: source, target: target, amount: amount, timestamp: time.Now()}
}

// RestoreActivity rebuilds a stored activity. Nil sides are absent.
func RestoreActivity(source, target *AccountID, at time.Time, amount Money) (Activity, error) {
	a := Activity{amount: amount, timestamp: at}
	if source != nil {
		a.source = *source
	}
	if target != nil {
		a.target = *target
	}
	if a.source.IsZero() && a.target.IsZero() {
		return Activity{}, ErrInvalidActivity
	}
	return a, nil
}

func (a Activity) at(t time.Time) Activity {
	a.timestamp = t
	return a
}

// Source returns the debited account, if any.
func (a Activity) Source() (AccountID, bool) {
	return a.source, !a.source.IsZero()
}

// Target returns the credited account, if any.
func (a Activity) Target() (AccountID, bool) {
	return a.target, !a.target.IsZero()
}

func (a Activity) Amount() Money {
	return a.amount
}

func (a Activity) Timestamp() time.Time {
	return a.timestamp
}

// Kind classifies the activity.
func (a Activity) Kind() ActivityKind {
	_, hasSource := a.Source()
	_, hasTarget := a.Target()
	switch {
	case hasSource && hasTarget:
		return ActivityKindTransfer
	case hasSource:
		return ActivityKindWithdrawal
	default:
		return ActivityKindDeposit
	}
}

// IsDepositInto reports whether the activity credits id.
// A transfer credits its target.
func (a Activity) IsDepositInto(id AccountID) bool {
	return !id.IsZero() && a.target == id
}

// IsWithdrawalFrom reports whether the activity debits id.
// A transfer debits its source.
func (a Activity) IsWithdrawalFrom(id AccountID) bool {
	return !id.IsZero() && a.source == id
}

// Involves reports whether id is either side of the activity.
func (a Activity) Involves(id AccountID) bool {
	return a.IsDepositInto(id) || a.IsWithdrawalFrom(id)
}

// Equal compares activities field by field.
func (a Activity) Equal(other Activity) bool {
	return a.source == other.source &&
		a.target == other.target &&
		a.timestamp.Equal(other.timestamp) &&
		a.amount.Equal(other.amount)
}

// NotBefore reports whether the activity happened at or after t.
func (a Activity) NotBefore(t time.Time) bool {
	return !a.timestamp.Before(t)
}
