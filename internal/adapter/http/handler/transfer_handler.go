package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/ledgerlock/internal/adapter/http/dto"
	"github.com/iho/ledgerlock/internal/domain"
	"github.com/iho/ledgerlock/internal/usecase"
)

// MoneyService defines the coordinated operations needed by TransferHandler.
type MoneyService interface {
	Deposit(ctx context.Context, id domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error)
	Withdraw(ctx context.Context, id domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error)
	SendMoney(ctx context.Context, source, target domain.AccountID, amount domain.Money) (*usecase.MoneyMovement, error)
}

// TransferHandler handles deposits, withdrawals and transfers.
type TransferHandler struct {
	moneyUC MoneyService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(moneyUC MoneyService) *TransferHandler {
	return &TransferHandler{moneyUC: moneyUC}
}

// Create moves money between two accounts.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.SendMoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transfer", err.Error())
		return
	}

	movement, err := h.moneyUC.SendMoney(r.Context(), input.Source, input.Target, input.Amount)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to send money", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.MoneyMovementFromUseCase(movement))
}

// Deposit credits the account in the URL.
func (h *TransferHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "failed to deposit", h.moneyUC.Deposit)
}

// Withdraw debits the account in the URL.
func (h *TransferHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, "failed to withdraw", h.moneyUC.Withdraw)
}

func (h *TransferHandler) move(
	w http.ResponseWriter,
	r *http.Request,
	failure string,
	op func(context.Context, domain.AccountID, domain.Money) (*usecase.MoneyMovement, error),
) {
	id, err := accountIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	var req dto.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	amount, err := req.ToMoney()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	movement, err := op(r.Context(), id, amount)
	if err != nil {
		writeError(w, mapDomainError(err), failure, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MoneyMovementFromUseCase(movement))
}
