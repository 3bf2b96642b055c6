package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/ledgerlock/internal/domain"
	"github.com/iho/ledgerlock/internal/usecase"
	"github.com/iho/ledgerlock/internal/usecase/mocks"
)

type sendMoneyFixture struct {
	locks    *usecase.AccountLocks
	repo     *mocks.FakeAccountRepository
	cache    *mocks.FakeBalanceCache
	observer *mocks.FakeOperationObserver
	uc       *usecase.SendMoneyUseCase
}

func newSendMoneyFixture() *sendMoneyFixture {
	f := &sendMoneyFixture{
		locks:    usecase.NewAccountLocks(),
		repo:     mocks.NewFakeAccountRepository(),
		cache:    mocks.NewFakeBalanceCache(),
		observer: mocks.NewFakeOperationObserver(),
	}
	f.uc = usecase.NewSendMoneyUseCase(f.locks, f.repo, f.repo,
		usecase.WithBalanceCache(f.cache),
		usecase.WithOperationObserver(f.observer),
	)
	return f
}

func (f *sendMoneyFixture) balance(t *testing.T, id domain.AccountID) domain.Money {
	t.Helper()
	account, err := f.repo.ByID(context.Background(), id)
	require.NoError(t, err)
	return account.Balance()
}

func TestSendMoneyUseCase_Withdraw(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		wantErr     error
		wantBalance int64
		wantOutcome string
	}{
		{name: "within balance", amount: 300, wantBalance: 700, wantOutcome: usecase.OutcomeSuccess},
		{name: "exactly balance", amount: 1000, wantBalance: 0, wantOutcome: usecase.OutcomeSuccess},
		{name: "overdraw", amount: 1001, wantErr: domain.ErrInsufficientFunds, wantBalance: 1000, wantOutcome: usecase.OutcomeInsufficientFunds},
		{name: "zero amount", amount: 0, wantErr: domain.ErrInvalidAmount, wantBalance: 1000, wantOutcome: usecase.OutcomeInvalid},
		{name: "negative amount", amount: -5, wantErr: domain.ErrInvalidAmount, wantBalance: 1000, wantOutcome: usecase.OutcomeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSendMoneyFixture()
			id := domain.NewAccountID()
			f.repo.Seed(id, domain.MoneyOf(1000))

			result, err := f.uc.Withdraw(context.Background(), id, domain.MoneyOf(tt.amount))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				assert.Empty(t, f.repo.Activities())
			} else {
				require.NoError(t, err)
				assert.True(t, result.Balance.Equal(domain.MoneyOf(tt.wantBalance)))
				assert.Equal(t, domain.ActivityKindWithdrawal, result.Activity.Kind())
				assert.Equal(t, []domain.AccountID{id}, f.cache.Invalidated)
			}

			assert.True(t, f.balance(t, id).Equal(domain.MoneyOf(tt.wantBalance)))
			assert.Equal(t, []string{tt.wantOutcome}, f.observer.Outcomes(usecase.OperationWithdraw))
			assert.False(t, f.locks.IsLocked(id))
		})
	}
}

func TestSendMoneyUseCase_Deposit(t *testing.T) {
	f := newSendMoneyFixture()
	id := domain.NewAccountID()
	f.repo.Seed(id, domain.MoneyOf(10))

	result, err := f.uc.Deposit(context.Background(), id, domain.MoneyOf(15))
	require.NoError(t, err)
	assert.True(t, result.Balance.Equal(domain.MoneyOf(25)))
	assert.True(t, f.balance(t, id).Equal(domain.MoneyOf(25)))

	_, err = f.uc.Deposit(context.Background(), domain.NewAccountID(), domain.MoneyOf(15))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Equal(t,
		[]string{usecase.OutcomeSuccess, usecase.OutcomeNotFound},
		f.observer.Outcomes(usecase.OperationDeposit))
}

func TestSendMoneyUseCase_SendMoney(t *testing.T) {
	f := newSendMoneyFixture()
	source, target := domain.NewAccountID(), domain.NewAccountID()
	f.repo.Seed(source, domain.MoneyOf(500))
	f.repo.Seed(target, domain.MoneyOf(100))

	result, err := f.uc.SendMoney(context.Background(), source, target, domain.MoneyOf(200))
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityKindTransfer, result.Activity.Kind())
	assert.True(t, result.Balance.Equal(domain.MoneyOf(300)))

	assert.True(t, f.balance(t, source).Equal(domain.MoneyOf(300)))
	assert.True(t, f.balance(t, target).Equal(domain.MoneyOf(300)))
	assert.Len(t, f.repo.Activities(), 1, "a transfer is stored once")
	assert.ElementsMatch(t, []domain.AccountID{source, target}, f.cache.Invalidated)
}

func TestSendMoneyUseCase_SendMoneyRejections(t *testing.T) {
	f := newSendMoneyFixture()
	source, target := domain.NewAccountID(), domain.NewAccountID()
	f.repo.Seed(source, domain.MoneyOf(50))
	f.repo.Seed(target, domain.ZeroMoney())

	_, err := f.uc.SendMoney(context.Background(), source, source, domain.MoneyOf(10))
	require.ErrorIs(t, err, domain.ErrSameAccount)

	_, err = f.uc.SendMoney(context.Background(), source, target, domain.MoneyOf(51))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, err = f.uc.SendMoney(context.Background(), source, domain.NewAccountID(), domain.MoneyOf(10))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	assert.Empty(t, f.repo.Activities())
	assert.Equal(t, 0, f.locks.Len())
}

func TestSendMoneyUseCase_BusyAccountIsRejected(t *testing.T) {
	f := newSendMoneyFixture()
	source, target := domain.NewAccountID(), domain.NewAccountID()
	f.repo.Seed(source, domain.MoneyOf(100))
	f.repo.Seed(target, domain.MoneyOf(100))

	release, err := f.locks.TryLock(target)
	require.NoError(t, err)

	_, err = f.uc.SendMoney(context.Background(), source, target, domain.MoneyOf(10))
	require.ErrorIs(t, err, domain.ErrConcurrentOperation)
	assert.False(t, f.locks.IsLocked(source))
	assert.Equal(t, []string{usecase.OutcomeConcurrentOperation}, f.observer.Outcomes(usecase.OperationSendMoney))

	release()

	_, err = f.uc.SendMoney(context.Background(), source, target, domain.MoneyOf(10))
	require.NoError(t, err)
}

func TestSendMoneyUseCase_InvalidRequestOnBusyAccount(t *testing.T) {
	f := newSendMoneyFixture()
	source, target := domain.NewAccountID(), domain.NewAccountID()
	f.repo.Seed(source, domain.MoneyOf(100))
	f.repo.Seed(target, domain.MoneyOf(100))

	release, err := f.locks.TryLock(source)
	require.NoError(t, err)
	defer release()

	_, err = f.uc.Deposit(context.Background(), source, domain.ZeroMoney())
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.uc.Withdraw(context.Background(), source, domain.MoneyOf(-1))
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.uc.SendMoney(context.Background(), source, source, domain.MoneyOf(10))
	require.ErrorIs(t, err, domain.ErrSameAccount)

	_, err = f.uc.SendMoney(context.Background(), source, target, domain.ZeroMoney())
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	assert.False(t, f.locks.IsLocked(target))
	assert.Equal(t, []string{usecase.OutcomeInvalid, usecase.OutcomeInvalid}, f.observer.Outcomes(usecase.OperationSendMoney))
}

func TestSendMoneyUseCase_ReleasesLocksOnStoreFailure(t *testing.T) {
	f := newSendMoneyFixture()
	id := domain.NewAccountID()
	f.repo.Seed(id, domain.MoneyOf(100))

	storeErr := errors.New("disk full")
	f.repo.StoreActivitiesFunc = func(context.Context, []domain.Activity) error { return storeErr }

	_, err := f.uc.Deposit(context.Background(), id, domain.MoneyOf(1))
	require.ErrorIs(t, err, storeErr)
	assert.False(t, f.locks.IsLocked(id))
	assert.Empty(t, f.cache.Invalidated)
	assert.Equal(t, []string{usecase.OutcomeError}, f.observer.Outcomes(usecase.OperationDeposit))
}

func TestSendMoneyUseCase_ReleasesLocksOnPanic(t *testing.T) {
	f := newSendMoneyFixture()
	id := domain.NewAccountID()
	f.repo.ByIDFunc = func(context.Context, domain.AccountID) (*domain.Account, error) {
		panic("lookup exploded")
	}

	assert.Panics(t, func() {
		_, _ = f.uc.Withdraw(context.Background(), id, domain.MoneyOf(1))
	})
	assert.False(t, f.locks.IsLocked(id))
}

func TestSendMoneyUseCase_CancelledContext(t *testing.T) {
	f := newSendMoneyFixture()
	id := domain.NewAccountID()
	f.repo.Seed(id, domain.MoneyOf(100))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Withdraw(ctx, id, domain.MoneyOf(1))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.repo.Activities())
}

func TestSendMoneyUseCase_DisjointAccountsRunConcurrently(t *testing.T) {
	f := newSendMoneyFixture()
	first, second := domain.NewAccountID(), domain.NewAccountID()

	// Both lookups block until the other has started, which can only happen
	// if neither operation waits on the other's lock.
	backing := mocks.NewFakeAccountRepository()
	backing.Seed(first, domain.ZeroMoney())
	backing.Seed(second, domain.ZeroMoney())

	var entered sync.WaitGroup
	entered.Add(2)
	f.repo.ByIDFunc = func(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
		entered.Done()
		entered.Wait()
		return backing.ByID(ctx, id)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []domain.AccountID{first, second} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.uc.Deposit(context.Background(), id, domain.MoneyOf(10))
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
}

func TestSendMoneyUseCase_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	f := newSendMoneyFixture()
	id := domain.NewAccountID()
	f.repo.Seed(id, domain.MoneyOf(100))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, err := f.uc.Withdraw(context.Background(), id, domain.MoneyOf(30))
				if errors.Is(err, domain.ErrConcurrentOperation) {
					continue
				}
				if err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
				return
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.True(t, f.balance(t, id).Equal(domain.MoneyOf(10)))
}

func TestSendMoneyUseCase_WithGomock(t *testing.T) {
	ctrl := gomock.NewController(t)

	id := domain.NewAccountID()
	lookup := mocks.NewMockAccountLookup(ctrl)
	store := mocks.NewMockActivityStore(ctrl)
	cache := mocks.NewMockBalanceCache(ctrl)
	observer := mocks.NewMockOperationObserver(ctrl)

	lookup.EXPECT().ByID(gomock.Any(), id).Return(domain.OpenAccount(id, domain.MoneyOf(40)), nil)
	store.EXPECT().StoreActivities(gomock.Any(), gomock.Len(1)).Return(nil)
	cache.EXPECT().InvalidateBalance(gomock.Any(), id).Return(errors.New("redis down"))
	observer.EXPECT().ObserveOperation(usecase.OperationWithdraw, usecase.OutcomeSuccess, gomock.Any())

	uc := usecase.NewSendMoneyUseCase(usecase.NewAccountLocks(), lookup, store,
		usecase.WithBalanceCache(cache),
		usecase.WithOperationObserver(observer),
	)

	result, err := uc.Withdraw(context.Background(), id, domain.MoneyOf(15))
	require.NoError(t, err, "cache failures must not fail the operation")
	assert.True(t, result.Balance.Equal(domain.MoneyOf(25)))
}
