package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/iho/ledgerlock/internal/adapter/http/dto"
	"github.com/iho/ledgerlock/internal/domain"
	"github.com/iho/ledgerlock/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, startingBalance domain.Money) (*domain.Account, error)
	GetAccount(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	QueryBalance(ctx context.Context, id domain.AccountID) (domain.Money, error)
	ListActivities(ctx context.Context, id domain.AccountID, since time.Time) ([]domain.Activity, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create opens a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	startingBalance, err := req.ToMoney()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid starting balance", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), startingBalance)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get account", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Balance returns the derived balance of an account.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	balance, err := h.accountUC.QueryBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to query balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: id.String(),
		Balance:   balance,
	})
}

// Activities lists the activities of an account, optionally since a point in time.
func (h *AccountHandler) Activities(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	since, err := parseTimeQuery(r, "since")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid since parameter", err.Error())
		return
	}

	activities, err := h.accountUC.ListActivities(r.Context(), id, since)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list activities", err.Error())
		return
	}

	resp := dto.ListActivitiesResponse{
		AccountID:  id.String(),
		Activities: dto.ActivitiesFromDomain(activities),
	}
	if !since.IsZero() {
		resp.Since = &since
	}

	writeJSON(w, http.StatusOK, resp)
}
