package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/iho/ledgerlock/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when derived balances disagree with
	// the stored totals or an account went negative.
	ErrInconsistentLedger = errors.New("ledger is inconsistent")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{ledgerRepo: ledgerRepo}
}

// ConsistencyReport is the outcome of a consistency check.
type ConsistencyReport struct {
	Accounts         int64
	ExpectedTotal    domain.Money
	DerivedTotal     domain.Money
	NegativeAccounts []domain.AccountID
}

// Consistent reports whether both checks passed.
func (r *ConsistencyReport) Consistent() bool {
	return r.ExpectedTotal.Equal(r.DerivedTotal) && len(r.NegativeAccounts) == 0
}

// CheckConsistency verifies that the derived balances of all accounts add up
// to the stored totals and that none is negative. Both sides come from one
// ledger snapshot, so mutations committed meanwhile cannot skew the result.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	report := &ConsistencyReport{DerivedTotal: domain.ZeroMoney()}

	totals, err := uc.ledgerRepo.Snapshot(ctx, func(account *domain.Account) error {
		balance := account.Balance()
		report.Accounts++
		report.DerivedTotal = report.DerivedTotal.Plus(balance)
		if !balance.IsNonNegative() {
			report.NegativeAccounts = append(report.NegativeAccounts, account.ID())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.ExpectedTotal = totals.ExpectedBalance()

	if !report.Consistent() {
		return report, fmt.Errorf("%w: expected total %s, derived %s, %d negative accounts",
			ErrInconsistentLedger, report.ExpectedTotal, report.DerivedTotal, len(report.NegativeAccounts))
	}

	return report, nil
}
