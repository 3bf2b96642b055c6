package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/ledgerlock/internal/adapter/http/dto"
	"github.com/iho/ledgerlock/internal/domain"
	"github.com/iho/ledgerlock/internal/usecase"
)

type moneyServiceStub struct {
	depositFn  func(ctx context.Context, id domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error)
	withdrawFn func(ctx context.Context, id domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error)
	sendFn     func(ctx context.Context, source, target domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error)
}

func (s *moneyServiceStub) Deposit(ctx context.Context, id domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error) {
	return s.depositFn(ctx, id, amount)
}

func (s *moneyServiceStub) Withdraw(ctx context.Context, id domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error) {
	return s.withdrawFn(ctx, id, amount)
}

func (s *moneyServiceStub) SendMoney(ctx context.Context, source, target domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error) {
	return s.sendFn(ctx, source, target, amount)
}

func TestTransferHandler_Create_Success(t *testing.T) {
	source := domain.NewAccountID()
	target := domain.NewAccountID()

	var captured dto.SendMoneyInput
	handler := NewTransferHandler(&moneyServiceStub{
		sendFn: func(ctx context.Context, s, tg domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error) {
			captured = dto.SendMoneyInput{Source: s, Target: tg, Amount: amount}
			return &usecase.MoneyMovement{
				Activity: domain.NewTransfer(s, tg, amount),
				Balance:  domain.MoneyOf(900),
			}, nil
		},
	})

	body, _ := json.Marshal(dto.SendMoneyRequest{
		SourceAccountID: source.String(),
		TargetAccountID: target.String(),
		Amount:          "100",
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Source != source || captured.Target != target || !captured.Amount.Equal(domain.MoneyOf(100)) {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.MoneyMovementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Activity.Kind != domain.ActivityKindTransfer || !resp.Balance.Equal(domain.MoneyOf(900)) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTransferHandler_Create_InvalidRequest(t *testing.T) {
	handler := NewTransferHandler(&moneyServiceStub{
		sendFn: func(ctx context.Context, s, tg domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error) {
			t.Fatal("SendMoney should not be called")
			return nil, nil
		},
	})

	body, _ := json.Marshal(dto.SendMoneyRequest{SourceAccountID: "x", TargetAccountID: "y", Amount: "1"})
	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Create_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"busy account", domain.ErrConcurrentOperation, http.StatusConflict},
		{"unknown account", domain.ErrAccountNotFound, http.StatusNotFound},
		{"same account", domain.ErrSameAccount, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransferHandler(&moneyServiceStub{
				sendFn: func(ctx context.Context, s, tg domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error) {
					return nil, tt.err
				},
			})

			body, _ := json.Marshal(dto.SendMoneyRequest{
				SourceAccountID: domain.NewAccountID().String(),
				TargetAccountID: domain.NewAccountID().String(),
				Amount:          "1",
			})
			req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestTransferHandler_DepositAndWithdraw(t *testing.T) {
	id := domain.NewAccountID()
	var deposited, withdrawn domain.Money

	handler := NewTransferHandler(&moneyServiceStub{
		depositFn: func(ctx context.Context, got domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error) {
			deposited = amount
			return &usecase.MoneyMovement{Activity: domain.NewDeposit(got, amount), Balance: amount}, nil
		},
		withdrawFn: func(ctx context.Context, got domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error) {
			withdrawn = amount
			return nil, domain.ErrInsufficientFunds
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"amount":"25"}`))
	req = setChiURLParam(req, "id", id.String())
	rec := httptest.NewRecorder()
	handler.Deposit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected deposit 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !deposited.Equal(domain.MoneyOf(25)) {
		t.Fatalf("expected deposit of 25, got %s", deposited)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"amount":"500"}`))
	req = setChiURLParam(req, "id", id.String())
	rec = httptest.NewRecorder()
	handler.Withdraw(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected withdraw 422, got %d", rec.Code)
	}
	if !withdrawn.Equal(domain.MoneyOf(500)) {
		t.Fatalf("expected withdrawal of 500, got %s", withdrawn)
	}
}

func TestTransferHandler_Deposit_MissingAmount(t *testing.T) {
	handler := NewTransferHandler(&moneyServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
	req = setChiURLParam(req, "id", domain.NewAccountID().String())
	rec := httptest.NewRecorder()
	handler.Deposit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
