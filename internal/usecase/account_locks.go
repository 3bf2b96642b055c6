package usecase

import (
	"fmt"
	"slices"
	"sync"

	"github.com/iho/ledgerlock/internal/domain"
)

// AccountLocks is the process-wide registry of accounts with an operation in
// flight. Create one per process and share it between every component that
// mutates accounts.
type AccountLocks struct {
	mu     sync.Mutex
	locked map[domain.AccountID]struct{}
}

// NewAccountLocks creates an empty registry.
func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locked: make(map[domain.AccountID]struct{})}
}

// TryLock acquires every id as one unit or none of them. It never waits: if
// any id is already held it returns domain.ErrConcurrentOperation. The
// returned release func is safe to call more than once.
func (l *AccountLocks) TryLock(ids ...domain.AccountID) (func(), error) {
	ids = sortedUnique(ids)

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range ids {
		if _, busy := l.locked[id]; busy {
			return nil, fmt.Errorf("%w: %s", domain.ErrConcurrentOperation, id)
		}
	}

	for _, id := range ids {
		l.locked[id] = struct{}{}
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.unlock(ids) })
	}, nil
}

// IsLocked reports whether id is currently held.
func (l *AccountLocks) IsLocked(id domain.AccountID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, busy := l.locked[id]
	return busy
}

// Len returns the number of ids currently held.
func (l *AccountLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.locked)
}

func (l *AccountLocks) unlock(ids []domain.AccountID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range ids {
		delete(l.locked, id)
	}
}

// sortedUnique returns ids in a deterministic order without duplicates or
// zero values.
func sortedUnique(ids []domain.AccountID) []domain.AccountID {
	out := make([]domain.AccountID, 0, len(ids))
	for _, id := range ids {
		if !id.IsZero() {
			out = append(out, id)
		}
	}

	slices.SortFunc(out, domain.AccountID.Compare)

	return slices.Compact(out)
}
