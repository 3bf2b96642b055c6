package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/ledgerlock/internal/adapter/http/dto"
	"github.com/iho/ledgerlock/internal/domain"
	"github.com/iho/ledgerlock/internal/usecase"
)

type consistencyCheckerStub struct {
	report *usecase.ConsistencyReport
	err    error
}

func (s consistencyCheckerStub) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return s.report, s.err
}

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	consistent := &usecase.ConsistencyReport{
		Accounts:      1,
		ExpectedTotal: domain.MoneyOf(10),
		DerivedTotal:  domain.MoneyOf(10),
	}
	inconsistent := &usecase.ConsistencyReport{
		Accounts:      1,
		ExpectedTotal: domain.MoneyOf(10),
		DerivedTotal:  domain.MoneyOf(9),
	}

	tests := []struct {
		name       string
		stub       consistencyCheckerStub
		wantStatus int
		wantBody   bool
	}{
		{"consistent", consistencyCheckerStub{report: consistent}, http.StatusOK, true},
		{
			"inconsistent",
			consistencyCheckerStub{report: inconsistent, err: fmt.Errorf("%w: totals differ", usecase.ErrInconsistentLedger)},
			http.StatusConflict,
			false,
		},
		{"storage failure", consistencyCheckerStub{err: errors.New("db down")}, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewLedgerHandler(tt.stub).CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}

			if tt.wantStatus == http.StatusInternalServerError {
				return
			}

			var resp dto.ConsistencyResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Consistent != tt.wantBody {
				t.Fatalf("expected consistent=%v, got %+v", tt.wantBody, resp)
			}
		})
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	healthy := HealthCheck{Name: "postgres", Ping: func(ctx context.Context) error { return nil }}
	broken := HealthCheck{Name: "redis", Ping: func(ctx context.Context) error { return errors.New("refused") }}

	rec := httptest.NewRecorder()
	NewHealthHandler(healthy).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(healthy, broken).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "redis unhealthy" {
		t.Fatalf("unexpected error: %+v", resp)
	}
}
