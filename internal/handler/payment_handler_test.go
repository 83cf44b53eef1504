package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Eursukkul/registration-engine/internal/dto"
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/reconcile"
	"github.com/Eursukkul/registration-engine/internal/service"
	"github.com/Eursukkul/registration-engine/internal/statement"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_Handler_Approve(t *testing.T) {
	reg := pendingRegistration()
	verify := &mockVerificationService{
		reviewFn: func(ctx context.Context, d service.Decision, force bool) (*service.ReviewResult, error) {
			assert.Equal(t, reg.ID, d.RegistrationID)
			assert.Equal(t, models.VerificationVerified, d.Outcome)
			assert.Equal(t, models.MethodManual, d.Method)
			assert.Equal(t, "host-1", d.VerifiedBy)
			assert.True(t, force)
			reg.Status = models.StatusCompleted
			reg.PaymentProof.VerificationStatus = models.VerificationVerified
			return &service.ReviewResult{Registration: reg, Warnings: []string{"approved despite amount mismatch"}}, nil
		},
	}

	rec := do(newServer(nil, nil, verify, nil), http.MethodPost, "/api/v1/registrations/"+reg.ID.String()+"/verification",
		`{"outcome":"verified","verified_by":"host-1","force":true}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ReviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Registration.State)
	assert.Equal(t, []string{"approved despite amount mismatch"}, resp.Warnings)
}

func TestVerify_Handler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{"unknown outcome", `{"outcome":"maybe"}`, nil, http.StatusBadRequest},
		{"amount mismatch", `{"outcome":"verified"}`, service.ErrAmountMismatch, http.StatusUnprocessableEntity},
		{"already decided", `{"outcome":"rejected","reason":"fake"}`, service.ErrInvalidState, http.StatusConflict},
		{"not found", `{"outcome":"verified"}`, service.ErrRegistrationNotFound, http.StatusNotFound},
		{"missing utr", `{"outcome":"verified"}`, &service.InputError{Field: "utr", Message: "No UTR has been submitted for this registration"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verify := &mockVerificationService{
				reviewFn: func(ctx context.Context, d service.Decision, force bool) (*service.ReviewResult, error) {
					return nil, tt.err
				},
			}

			rec := do(newServer(nil, nil, verify, nil), http.MethodPost, "/api/v1/registrations/"+uuid.NewString()+"/verification", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestListPending_Handler(t *testing.T) {
	a, b := pendingRegistration(), pendingRegistration()
	pays := &mockPaymentService{
		listFn: func(ctx context.Context, f service.PendingFilter) (*service.PendingPage, error) {
			require.NotNil(t, f.EventID)
			assert.Equal(t, uint(3), *f.EventID)
			assert.Equal(t, 2, f.Page)
			assert.Equal(t, 2, f.Limit)
			return &service.PendingPage{
				Payments: []service.PendingProof{
					{Registration: *a, IsDuplicateUTR: true},
					{Registration: *b},
				},
				Total: 6,
				Page:  2,
				Pages: 3,
			}, nil
		},
	}
	e := newServer(nil, pays, nil, nil)

	rec := do(e, http.MethodGet, "/api/v1/payments/pending?event_id=3&page=2&limit=2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.PendingPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Payments, 2)
	assert.Equal(t, a.ID, resp.Payments[0].Registration.ID)
	assert.True(t, resp.Payments[0].IsDuplicateUTR)
	assert.False(t, resp.Payments[1].IsDuplicateUTR)
	assert.Equal(t, int64(6), resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 3, resp.Pages)
}

func TestListPending_Handler_BadQuery(t *testing.T) {
	e := newServer(nil, &mockPaymentService{}, nil, nil)

	for _, target := range []string{
		"/api/v1/payments/pending?event_id=x",
		"/api/v1/payments/pending?page=0",
		"/api/v1/payments/pending?limit=abc",
	} {
		rec := do(e, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestReconcile_Handler_PreviewAndApply(t *testing.T) {
	var previewed, applied bool
	result := &service.ReconcileResult{
		Stats:  statement.Stats{TotalLines: 1, Extracted: 1},
		Report: reconcile.Report{Verified: 1, Details: []reconcile.Detail{{Outcome: reconcile.OutcomeVerified}}},
	}
	recon := &mockReconciliationService{
		previewFn: func(ctx context.Context, req service.ReconcileRequest) (*service.ReconcileResult, error) {
			previewed = true
			assert.Nil(t, req.EventID)
			return result, nil
		},
		applyFn: func(ctx context.Context, req service.ReconcileRequest) (*service.ReconcileResult, error) {
			applied = true
			require.NotNil(t, req.EventID)
			assert.Equal(t, uint(2), *req.EventID)
			assert.True(t, req.ConfirmDuplicates)
			return result, nil
		},
	}
	e := newServer(nil, nil, nil, recon)

	rec := do(e, http.MethodPost, "/api/v1/payments/reconcile", `{"statementText":"25-12-2025 UTR: ABCD1234EF50 Credit INR 1500.00"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, previewed)
	assert.False(t, applied)

	rec = do(e, http.MethodPost, "/api/v1/payments/reconcile", `{"statementText":"x y","eventId":2,"apply":true,"confirmDuplicates":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, applied)

	var resp service.ReconcileResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Report.Verified)
}

func TestReconcile_Handler_RequiresStatement(t *testing.T) {
	rec := do(newServer(nil, nil, nil, &mockReconciliationService{}), http.MethodPost, "/api/v1/payments/reconcile", `{"apply":true}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"field":"statementText","message":"Field is required"}`, rec.Body.String())
}
