package domain

import (
	"errors"
	"testing"
	"time"
)

func TestActivity_Kind(t *testing.T) {
	a, b := NewAccountID(), NewAccountID()

	tests := []struct {
		name     string
		activity Activity
		kind     ActivityKind
		into     AccountID
		from     AccountID
	}{
		{name: "deposit", activity: NewDeposit(a, MoneyOf(1)), kind: ActivityKindDeposit, into: a},
		{name: "withdrawal", activity: NewWithdrawal(a, MoneyOf(1)), kind: ActivityKindWithdrawal, from: a},
		{name: "transfer", activity: NewTransfer(a, b, MoneyOf(1)), kind: ActivityKindTransfer, into: b, from: a},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.activity.Kind(); got != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, got)
			}
			if !tt.into.IsZero() && !tt.activity.IsDepositInto(tt.into) {
				t.Errorf("expected deposit into %s", tt.into)
			}
			if !tt.from.IsZero() && !tt.activity.IsWithdrawalFrom(tt.from) {
				t.Errorf("expected withdrawal from %s", tt.from)
			}
			if tt.activity.IsDepositInto(AccountID{}) || tt.activity.IsWithdrawalFrom(AccountID{}) {
				t.Error("zero ID must never match")
			}
		})
	}
}

func TestRestoreActivity(t *testing.T) {
	a := NewAccountID()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	restored, err := RestoreActivity(&a, nil, at, MoneyOf(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored.Kind() != ActivityKindWithdrawal || !restored.Timestamp().Equal(at) {
		t.Errorf("unexpected activity %+v", restored)
	}

	again, _ := RestoreActivity(&a, nil, at, MoneyOf(7))
	if !restored.Equal(again) {
		t.Error("expected structurally equal activities")
	}

	if _, err := RestoreActivity(nil, nil, at, MoneyOf(7)); !errors.Is(err, ErrInvalidActivity) {
		t.Fatalf("expected ErrInvalidActivity, got %v", err)
	}
}
