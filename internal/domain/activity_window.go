package domain

import (
	"iter"
	"time"
)

// ActivityWindow holds the activities known for one or more accounts as of
// the moment it was loaded. Only activities at or after loadedAt take part
// in balance derivation; older ones are already folded into the baseline.
//
// A window is owned by the call that built it and is not safe for
// concurrent use.
type ActivityWindow struct {
	loadedAt   time.Time
	activities []Activity
	frozen     bool
}

// NewActivityWindow returns an empty mutable window loaded now.
func NewActivityWindow() *ActivityWindow {
	return &ActivityWindow{loadedAt: time.Now()}
}

// ReconstructActivityWindow returns a mutable window pre-populated with
// activities read from storage.
func ReconstructActivityWindow(loadedAt time.Time, activities []Activity) *ActivityWindow {
	w := &ActivityWindow{loadedAt: loadedAt}
	w.activities = append(w.activities, activities...)
	return w
}

// FreezeActivityWindow returns a read-only window loaded now.
func FreezeActivityWindow(activities []Activity) *ActivityWindow {
	w := ReconstructActivityWindow(time.Now(), activities)
	w.frozen = true
	return w
}

// AddActivity appends an activity.
func (w *ActivityWindow) AddActivity(a Activity) error {
	if w.frozen {
		return ErrWindowReadOnly
	}
	w.activities = append(w.activities, a)
	return nil
}

// DepositedInto sums activities crediting id at or after since.
// A zero since covers the whole window.
func (w *ActivityWindow) DepositedInto(id AccountID, since time.Time) Money {
	total := ZeroMoney()
	for _, a := range w.activities {
		if a.IsDepositInto(id) && a.NotBefore(since) {
			total = total.Plus(a.Amount())
		}
	}
	return total
}

// WithdrawnFrom sums activities debiting id at or after since.
// A zero since covers the whole window.
func (w *ActivityWindow) WithdrawnFrom(id AccountID, since time.Time) Money {
	total := ZeroMoney()
	for _, a := range w.activities {
		if a.IsWithdrawalFrom(id) && a.NotBefore(since) {
			total = total.Plus(a.Amount())
		}
	}
	return total
}

// DepositedSinceLoad is DepositedInto with the load time as cutoff.
func (w *ActivityWindow) DepositedSinceLoad(id AccountID) Money {
	return w.DepositedInto(id, w.loadedAt)
}

// WithdrawnSinceLoad is WithdrawnFrom with the load time as cutoff.
func (w *ActivityWindow) WithdrawnSinceLoad(id AccountID) Money {
	return w.WithdrawnFrom(id, w.loadedAt)
}

// All yields every activity in insertion order.
func (w *ActivityWindow) All() iter.Seq[Activity] {
	return w.filter(func(Activity) bool { return true })
}

// Since yields activities at or after t.
func (w *ActivityWindow) Since(t time.Time) iter.Seq[Activity] {
	return w.filter(func(a Activity) bool { return a.NotBefore(t) })
}

// AddedAfterLoad yields activities not yet persisted.
func (w *ActivityWindow) AddedAfterLoad() iter.Seq[Activity] {
	return w.Since(w.loadedAt)
}

// now is the timestamp for a new activity: the current time, or the load
// time if the clock is behind it.
func (w *ActivityWindow) now() time.Time {
	if now := time.Now(); now.After(w.loadedAt) {
		return now
	}
	return w.loadedAt
}

// LoadedAt returns the window's baseline timestamp.
func (w *ActivityWindow) LoadedAt() time.Time {
	return w.loadedAt
}

// Frozen reports whether the window rejects additions.
func (w *ActivityWindow) Frozen() bool {
	return w.frozen
}

// Len returns the number of activities held.
func (w *ActivityWindow) Len() int {
	return len(w.activities)
}

// filter captures the current slice so later appends do not leak into an
// iteration that has already been handed out.
func (w *ActivityWindow) filter(keep func(Activity) bool) iter.Seq[Activity] {
	snapshot := w.activities[:len(w.activities):len(w.activities)]
	return func(yield func(Activity) bool) {
		for _, a := range snapshot {
			if keep(a) && !yield(a) {
				return
			}
		}
	}
}
