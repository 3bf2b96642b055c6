package dto

import (
	"time"

	"github.com/iho/ledgerlock/internal/domain"
	"github.com/iho/ledgerlock/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID       string       `json:"id"`
	Balance  domain.Money `json:"balance"`
	Baseline domain.Money `json:"baseline"`
	LoadedAt time.Time    `json:"loaded_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:       a.ID().String(),
		Balance:  a.Balance(),
		Baseline: a.Baseline(),
		LoadedAt: a.Window().LoadedAt(),
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// BalanceResponse represents the derived balance of an account.
type BalanceResponse struct {
	AccountID string       `json:"account_id"`
	Balance   domain.Money `json:"balance"`
}

// ActivityResponse represents one ledger movement.
type ActivityResponse struct {
	Kind            domain.ActivityKind `json:"kind"`
	SourceAccountID string              `json:"source_account_id,omitempty"`
	TargetAccountID string              `json:"target_account_id,omitempty"`
	Amount          domain.Money        `json:"amount"`
	Timestamp       time.Time           `json:"timestamp"`
}

// ActivityFromDomain converts a domain activity to response.
func ActivityFromDomain(a domain.Activity) ActivityResponse {
	resp := ActivityResponse{
		Kind:      a.Kind(),
		Amount:    a.Amount(),
		Timestamp: a.Timestamp(),
	}
	if source, ok := a.Source(); ok {
		resp.SourceAccountID = source.String()
	}
	if target, ok := a.Target(); ok {
		resp.TargetAccountID = target.String()
	}
	return resp
}

// ActivitiesFromDomain converts domain activities to responses.
func ActivitiesFromDomain(activities []domain.Activity) []ActivityResponse {
	result := make([]ActivityResponse, len(activities))
	for i, a := range activities {
		result[i] = ActivityFromDomain(a)
	}
	return result
}

// ListActivitiesResponse represents the activities of one account.
type ListActivitiesResponse struct {
	AccountID  string             `json:"account_id"`
	Since      *time.Time         `json:"since,omitempty"`
	Activities []ActivityResponse `json:"activities"`
}

// MoneyMovementResponse is returned by deposit, withdraw and transfer.
// Balance is the balance of the account the operation was issued against.
type MoneyMovementResponse struct {
	Activity ActivityResponse `json:"activity"`
	Balance  domain.Money     `json:"balance"`
}

// MoneyMovementFromUseCase converts a use case result to response.
func MoneyMovementFromUseCase(m *usecase.MoneyMovement) *MoneyMovementResponse {
	return &MoneyMovementResponse{
		Activity: ActivityFromDomain(m.Activity),
		Balance:  m.Balance,
	}
}

// ConsistencyResponse represents the outcome of a ledger consistency check.
type ConsistencyResponse struct {
	Status           string       `json:"status"`
	Consistent       bool         `json:"consistent"`
	Accounts         int64        `json:"accounts"`
	ExpectedTotal    domain.Money `json:"expected_total"`
	DerivedTotal     domain.Money `json:"derived_total"`
	NegativeAccounts []string     `json:"negative_accounts,omitempty"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		Status:        "consistent",
		Consistent:    r.Consistent(),
		Accounts:      r.Accounts,
		ExpectedTotal: r.ExpectedTotal,
		DerivedTotal:  r.DerivedTotal,
	}
	if !resp.Consistent {
		resp.Status = "inconsistent"
	}
	for _, id := range r.NegativeAccounts {
		resp.NegativeAccounts = append(resp.NegativeAccounts, id.String())
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
