package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoney(decimal.RequireFromString("0.1"))
	b := NewMoney(decimal.RequireFromString("0.2"))

	if got := a.Plus(b); !got.Equal(NewMoney(decimal.RequireFromString("0.3"))) {
		t.Errorf("expected 0.3, got %s", got)
	}

	if got := a.Minus(b); !got.Equal(NewMoney(decimal.RequireFromString("-0.1"))) {
		t.Errorf("expected -0.1, got %s", got)
	}

	if !a.Equal(NewMoney(decimal.RequireFromString("0.1"))) {
		t.Error("operands must not be modified")
	}
}

func TestMoney_Sign(t *testing.T) {
	tests := []struct {
		name        string
		value       Money
		nonNegative bool
		positive    bool
	}{
		{name: "positive", value: MoneyOf(5), nonNegative: true, positive: true},
		{name: "zero", value: ZeroMoney(), nonNegative: true, positive: false},
		{name: "negative", value: MoneyOf(-5), nonNegative: false, positive: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.IsNonNegative(); got != tt.nonNegative {
				t.Errorf("IsNonNegative() = %v, want %v", got, tt.nonNegative)
			}
			if got := tt.value.IsPositive(); got != tt.positive {
				t.Errorf("IsPositive() = %v, want %v", got, tt.positive)
			}
		})
	}
}

func TestMoney_EqualIgnoresScale(t *testing.T) {
	one, err := ParseMoney("1.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	oneHundredths, err := ParseMoney("1.00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !one.Equal(oneHundredths) {
		t.Errorf("expected %s to equal %s", one, oneHundredths)
	}
}

func TestParseMoney_Invalid(t *testing.T) {
	if _, err := ParseMoney("ten"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestMoney_JSON(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`"12.50"`), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Equal(NewMoney(decimal.RequireFromString("12.5"))) {
		t.Errorf("expected 12.5, got %s", m)
	}

	if err := json.Unmarshal([]byte(`"abc"`), &m); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
