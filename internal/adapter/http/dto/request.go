package dto

import (
	"fmt"

	"github.com/iho/ledgerlock/internal/domain"
)

// CreateAccountRequest represents a request to open an account.
type CreateAccountRequest struct {
	StartingBalance string `json:"starting_balance"`
}

// ToMoney parses the starting balance. An empty value opens the account at zero.
func (r *CreateAccountRequest) ToMoney() (domain.Money, error) {
	if r.StartingBalance == "" {
		return domain.ZeroMoney(), nil
	}
	return domain.ParseMoney(r.StartingBalance)
}

// AmountRequest is the body of deposit and withdraw requests.
type AmountRequest struct {
	Amount string `json:"amount"`
}

// ToMoney parses the amount.
func (r *AmountRequest) ToMoney() (domain.Money, error) {
	return parseAmount(r.Amount)
}

// SendMoneyRequest represents a request to move money between two accounts.
type SendMoneyRequest struct {
	SourceAccountID string `json:"source_account_id"`
	TargetAccountID string `json:"target_account_id"`
	Amount          string `json:"amount"`
}

// SendMoneyInput is a parsed SendMoneyRequest.
type SendMoneyInput struct {
	Source domain.AccountID
	Target domain.AccountID
	Amount domain.Money
}

// ToInput parses ids and amount.
func (r *SendMoneyRequest) ToInput() (SendMoneyInput, error) {
	source, err := domain.ParseAccountID(r.SourceAccountID)
	if err != nil {
		return SendMoneyInput{}, fmt.Errorf("source_account_id: %w", err)
	}

	target, err := domain.ParseAccountID(r.TargetAccountID)
	if err != nil {
		return SendMoneyInput{}, fmt.Errorf("target_account_id: %w", err)
	}

	amount, err := parseAmount(r.Amount)
	if err != nil {
		return SendMoneyInput{}, err
	}

	return SendMoneyInput{Source: source, Target: target, Amount: amount}, nil
}

func parseAmount(s string) (domain.Money, error) {
	if s == "" {
		return domain.Money{}, fmt.Errorf("%w: amount is required", domain.ErrInvalidAmount)
	}
	return domain.ParseMoney(s)
}
