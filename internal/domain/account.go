package domain

import (
	"fmt"
	"iter"
	"time"
)

// Account is a ledger account whose balance is always derived from a
// baseline and its activity window, never stored.
type Account struct {
	id       AccountID
	baseline Money
	window   *ActivityWindow
}

// OpenAccount creates an account with no activity.
func OpenAccount(id AccountID, startingBalance Money) *Account {
	return &Account{id: id, baseline: startingBalance, window: NewActivityWindow()}
}

// ReconstructAccount rebuilds an account from its stored baseline and window.
func ReconstructAccount(id AccountID, baseline Money, window *ActivityWindow) *Account {
	if window == nil {
		window = NewActivityWindow()
	}
	return &Account{id: id, baseline: baseline, window: window}
}

// LoadAccount rebuilds an account from its starting balance and full stored
// history. The history is folded into the baseline and kept in a window
// loaded now, so only activities appended afterwards count as unsaved. When a
// stored timestamp is not before now, the load time moves just past the
// newest one.
func LoadAccount(id AccountID, startingBalance Money, history []Activity) *Account {
	loadedAt := time.Now()
	for _, a := range history {
		if a.NotBefore(loadedAt) {
			loadedAt = a.Timestamp().Add(time.Nanosecond)
		}
	}

	window := ReconstructActivityWindow(loadedAt, history)
	baseline := startingBalance.
		Plus(window.DepositedInto(id, time.Time{})).
		Minus(window.WithdrawnFrom(id, time.Time{}))

	return &Account{id: id, baseline: baseline, window: window}
}

func (a *Account) ID() AccountID {
	return a.id
}

// Baseline returns the balance as of the window's load time.
func (a *Account) Baseline() Money {
	return a.baseline
}

func (a *Account) Window() *ActivityWindow {
	return a.window
}

// Balance returns baseline + deposited - withdrawn since load.
func (a *Account) Balance() Money {
	return a.baseline.
		Plus(a.window.DepositedSinceLoad(a.id)).
		Minus(a.window.WithdrawnSinceLoad(a.id))
}

// Deposit appends a deposit activity.
func (a *Account) Deposit(amount Money) (Activity, error) {
	if !amount.IsPositive() {
		return Activity{}, fmt.Errorf("%w: deposit of %s", ErrInvalidAmount, amount)
	}

	activity := NewDeposit(a.id, amount).at(a.window.now())
	if err := a.window.AddActivity(activity); err != nil {
		return Activity{}, err
	}

	return activity, nil
}

// Withdraw appends a withdrawal activity if funds allow.
func (a *Account) Withdraw(amount Money) (Activity, error) {
	if err := a.canWithdraw(amount); err != nil {
		return Activity{}, err
	}

	activity := NewWithdrawal(a.id, amount).at(a.window.now())
	if err := a.window.AddActivity(activity); err != nil {
		return Activity{}, err
	}

	return activity, nil
}

// Transfer appends a transfer to target on this account's window only.
// The target picks the activity up the next time it is loaded.
func (a *Account) Transfer(target AccountID, amount Money) (Activity, error) {
	if target == a.id {
		return Activity{}, ErrSameAccount
	}
	if err := a.canWithdraw(amount); err != nil {
		return Activity{}, err
	}

	activity := NewTransfer(a.id, target, amount).at(a.window.now())
	if err := a.window.AddActivity(activity); err != nil {
		return Activity{}, err
	}

	return activity, nil
}

// ActivitiesSince yields activities at or after t.
func (a *Account) ActivitiesSince(t time.Time) iter.Seq[Activity] {
	return a.window.Since(t)
}

// AllActivities yields every activity in the window.
func (a *Account) AllActivities() iter.Seq[Activity] {
	return a.window.All()
}

// UnsavedActivities yields activities appended after the window was loaded.
func (a *Account) UnsavedActivities() iter.Seq[Activity] {
	return a.window.AddedAfterLoad()
}

func (a *Account) canWithdraw(amount Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: withdrawal of %s", ErrInvalidAmount, amount)
	}
	if !a.Balance().Minus(amount).IsNonNegative() {
		return fmt.Errorf("%w: account %s cannot cover %s", ErrInsufficientFunds, a.id, amount)
	}
	return nil
}

// LedgerTotals are ledger-wide sums used to cross-check derived balances.
type LedgerTotals struct {
	StartingBalances Money
	Deposits         Money
	Withdrawals      Money
	Accounts         int64
}

// ExpectedBalance is the sum every account balance must add up to.
// Transfers cancel out because they count once on each side.
func (t LedgerTotals) ExpectedBalance() Money {
	return t.StartingBalances.Plus(t.Deposits).Minus(t.Withdrawals)
}
