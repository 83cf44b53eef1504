package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Eursukkul/registration-engine/internal/dto"
	"github.com/Eursukkul/registration-engine/internal/form"
	"github.com/Eursukkul/registration-engine/internal/middleware"
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newServer wires handlers into echo the way main does, so error bodies go
// through the real error handler.
func newServer(regs *mockRegistrationService, pays *mockPaymentService, verify *mockVerificationService, rec *mockReconciliationService) *echo.Echo {
	log := zerolog.Nop()
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(&log)
	api := e.Group("/api/v1")
	NewRegistrationHandler(regs, pays).RegisterRoutes(api)
	NewPaymentHandler(pays, verify, rec).RegisterRoutes(api)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func pendingRegistration() *models.Registration {
	return &models.Registration{
		ID:        uuid.New(),
		EventID:   1,
		Email:     "asha@example.com",
		Name:      "Asha Rao",
		PricePaid: decimal.NewFromInt(500),
		Status:    models.StatusPendingPayment,
		PaymentProof: models.PaymentProof{
			VerificationStatus: models.VerificationPending,
			VerificationMethod: models.MethodNone,
		},
		CreatedAt: time.Now(),
	}
}

func TestCheckIdentity_Handler_NewAttendee(t *testing.T) {
	svc := &mockRegistrationService{
		checkFn: func(ctx context.Context, eventID uint, email string) (service.FlowState, error) {
			assert.Equal(t, uint(7), eventID)
			assert.Equal(t, "asha@example.com", email)
			return service.CollectingAnswers{}, nil
		},
	}

	rec := do(newServer(svc, nil, nil, nil), http.MethodGet, "/api/v1/events/7/registrations/check?email=asha@example.com", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"alreadyRegistered":false,"state":"collecting_answers"}`, rec.Body.String())
}

func TestCheckIdentity_Handler_AlreadyRegistered(t *testing.T) {
	created := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	svc := &mockRegistrationService{
		checkFn: func(ctx context.Context, eventID uint, email string) (service.FlowState, error) {
			return service.DuplicateBlocked{Existing: models.Summary{Status: models.StatusCompleted, CreatedAt: created}}, nil
		},
	}

	rec := do(newServer(svc, nil, nil, nil), http.MethodGet, "/api/v1/events/7/registrations/check?email=asha@example.com", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.AlreadyRegistered)
	assert.Equal(t, "duplicate_blocked", resp.State)
	require.NotNil(t, resp.Registration)
	assert.Equal(t, models.StatusCompleted, resp.Registration.Status)
	assert.NotContains(t, rec.Body.String(), "asha@example.com")
}

func TestCheckIdentity_Handler_InvalidEventID(t *testing.T) {
	rec := do(newServer(&mockRegistrationService{}, nil, nil, nil), http.MethodGet, "/api/v1/events/abc/registrations/check", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"invalid event id"}`, rec.Body.String())
}

func TestValidatePage_Handler(t *testing.T) {
	svc := &mockRegistrationService{
		validateFn: func(ctx context.Context, eventID uint, page int, answers models.Answers) (*form.FieldError, error) {
			if page == 1 {
				return &form.FieldError{FieldID: "phone", Field: "Phone", Message: "This field is required"}, nil
			}
			return nil, nil
		},
	}
	e := newServer(svc, nil, nil, nil)

	rec := do(e, http.MethodPost, "/api/v1/events/1/registrations/pages/0/validate", `{"answers":{"full_name":"Asha"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/v1/events/1/registrations/pages/1/validate", `{"answers":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"field_id":"phone","field":"Phone","message":"This field is required"}`, rec.Body.String())
}

func TestSubmit_Handler_Created(t *testing.T) {
	reg := pendingRegistration()
	svc := &mockRegistrationService{
		submitFn: func(ctx context.Context, req service.SubmitRequest) (*service.SubmitResult, error) {
			assert.Equal(t, uint(1), req.EventID)
			assert.Equal(t, "Asha Rao", req.Answers["full_name"].Text)
			assert.Equal(t, []string{"Go", "Rust"}, req.Answers["topics"].List)
			return &service.SubmitResult{
				State:        service.AwaitingPayment{Registration: reg, Payment: models.PaymentConfig{Enabled: true, UpiID: "host@upi", UpiName: "Host"}},
				Registration: reg,
				Created:      true,
			}, nil
		},
	}

	body := `{"answers":{"full_name":"Asha Rao","email":"asha@example.com","topics":["Go","Rust"]}}`
	rec := do(newServer(svc, nil, nil, nil), http.MethodPost, "/api/v1/events/1/registrations", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.RegistrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, reg.ID, resp.ID)
	assert.Equal(t, "awaiting_payment", resp.State)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, "host@upi", resp.Payment.UpiID)
	assert.Equal(t, "500", resp.Payment.Amount.String())
}

func TestSubmit_Handler_AlreadyRegistered(t *testing.T) {
	svc := &mockRegistrationService{
		submitFn: func(ctx context.Context, req service.SubmitRequest) (*service.SubmitResult, error) {
			return &service.SubmitResult{State: service.DuplicateBlocked{Existing: models.Summary{Status: models.StatusPendingPayment}}}, nil
		},
	}

	rec := do(newServer(svc, nil, nil, nil), http.MethodPost, "/api/v1/events/1/registrations", `{"answers":{}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.AlreadyRegistered)
}

func TestSubmit_Handler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"limit reached", service.ErrCapacityExceeded, http.StatusConflict, `{"limitReached":true,"message":"registration limit reached"}`},
		{"event not found", service.ErrEventNotFound, http.StatusNotFound, `{"message":"event not found"}`},
		{"closed", service.ErrRegistrationClosed, http.StatusBadRequest, `{"message":"registration is closed for this event"}`},
		{"invalid answer", &form.FieldError{FieldID: "age", Field: "Age", Message: "Must be at least 18"}, http.StatusBadRequest, `{"field_id":"age","field":"Age","message":"Must be at least 18"}`},
		{"invalid email", &service.InputError{Field: "email", Message: "Enter a valid email address"}, http.StatusBadRequest, `{"field":"email","message":"Enter a valid email address"}`},
		{"store failure", errors.Join(service.ErrRegistrationFailed, errors.New("deadlock")), http.StatusServiceUnavailable, `{"message":"registration could not be saved"}`},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, `{"message":"Internal Server Error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRegistrationService{
				submitFn: func(ctx context.Context, req service.SubmitRequest) (*service.SubmitResult, error) {
					return nil, tt.err
				},
			}

			rec := do(newServer(svc, nil, nil, nil), http.MethodPost, "/api/v1/events/1/registrations", `{"answers":{}}`)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestSubmit_Handler_BadBody(t *testing.T) {
	rec := do(newServer(&mockRegistrationService{}, nil, nil, nil), http.MethodPost, "/api/v1/events/1/registrations", `{"answers":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"invalid request body"}`, rec.Body.String())
}

func TestGetRegistration_Handler(t *testing.T) {
	reg := pendingRegistration()
	reg.Status = models.StatusCompleted
	code := "TKT-ABCDEFGH"
	reg.TicketCode = &code
	svc := &mockRegistrationService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Registration, *models.Event, error) {
			if id != reg.ID {
				return nil, nil, service.ErrRegistrationNotFound
			}
			return reg, &models.Event{ID: 1}, nil
		},
	}
	e := newServer(svc, nil, nil, nil)

	rec := do(e, http.MethodGet, "/api/v1/registrations/"+reg.ID.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.RegistrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.State)
	require.NotNil(t, resp.TicketCode)
	assert.Equal(t, code, *resp.TicketCode)

	rec = do(e, http.MethodGet, "/api/v1/registrations/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/registrations/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttachPaymentProof_Handler(t *testing.T) {
	reg := pendingRegistration()
	pays := &mockPaymentService{
		attachFn: func(ctx context.Context, id uuid.UUID, in service.ProofInput) (*models.Registration, error) {
			assert.Equal(t, reg.ID, id)
			assert.Equal(t, "UTR123456", in.UTR)
			require.NotNil(t, in.Amount)
			assert.Equal(t, "499.5", in.Amount.String())
			reg.PaymentProof.UTR = in.UTR
			return reg, nil
		},
	}

	rec := do(newServer(nil, pays, nil, nil), http.MethodPost, "/api/v1/registrations/"+reg.ID.String()+"/payment-proof",
		`{"utr":"UTR123456","amount":"499.50","screenshot_ref":"proofs/1.png"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.RegistrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "UTR123456", resp.PaymentProof.UTR)
	assert.Equal(t, "awaiting_payment", resp.State)
}

func TestAttachPaymentProof_Handler_Errors(t *testing.T) {
	id := uuid.NewString()
	pays := &mockPaymentService{
		attachFn: func(ctx context.Context, _ uuid.UUID, in service.ProofInput) (*models.Registration, error) {
			return nil, service.ErrInvalidState
		},
	}
	e := newServer(nil, pays, nil, nil)

	rec := do(e, http.MethodPost, "/api/v1/registrations/"+id+"/payment-proof", `{"utr":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"field":"utr","message":"Field is required"}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/v1/registrations/"+id+"/payment-proof", `{"utr":"UTR-12/34"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"field":"utr","message":"Invalid format"}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/v1/registrations/"+id+"/payment-proof", `{"utr":"UTR123456"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAttachPaymentProof_Handler_PaymentsDisabled(t *testing.T) {
	pays := &mockPaymentService{
		attachFn: func(ctx context.Context, _ uuid.UUID, in service.ProofInput) (*models.Registration, error) {
			return nil, service.ErrPaymentsDisabled
		},
	}
	rec := do(newServer(nil, pays, nil, nil), http.MethodPost,
		"/api/v1/registrations/"+uuid.NewString()+"/payment-proof", `{"utr":"UTR123456"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), service.ErrPaymentsDisabled.Error())
}
