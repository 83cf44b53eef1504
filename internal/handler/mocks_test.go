package handler

import (
	"context"

	"github.com/Eursukkul/registration-engine/internal/form"
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/service"
	"github.com/google/uuid"
)

// --- Mock RegistrationService ---

type mockRegistrationService struct {
	checkFn    func(ctx context.Context, eventID uint, email string) (service.FlowState, error)
	validateFn func(ctx context.Context, eventID uint, page int, answers models.Answers) (*form.FieldError, error)
	submitFn   func(ctx context.Context, req service.SubmitRequest) (*service.SubmitResult, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*models.Registration, *models.Event, error)
}

func (m *mockRegistrationService) CheckIdentity(ctx context.Context, eventID uint, email string) (service.FlowState, error) {
	return m.checkFn(ctx, eventID, email)
}
func (m *mockRegistrationService) ValidatePage(ctx context.Context, eventID uint, page int, answers models.Answers) (*form.FieldError, error) {
	return m.validateFn(ctx, eventID, page, answers)
}
func (m *mockRegistrationService) Submit(ctx context.Context, req service.SubmitRequest) (*service.SubmitResult, error) {
	return m.submitFn(ctx, req)
}
func (m *mockRegistrationService) GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, *models.Event, error) {
	return m.getFn(ctx, id)
}

// --- Mock PaymentService ---

type mockPaymentService struct {
	attachFn func(ctx context.Context, id uuid.UUID, in service.ProofInput) (*models.Registration, error)
	listFn   func(ctx context.Context, f service.PendingFilter) (*service.PendingPage, error)
}

func (m *mockPaymentService) AttachProof(ctx context.Context, id uuid.UUID, in service.ProofInput) (*models.Registration, error) {
	return m.attachFn(ctx, id, in)
}
func (m *mockPaymentService) ListPending(ctx context.Context, f service.PendingFilter) (*service.PendingPage, error) {
	return m.listFn(ctx, f)
}

// --- Mock VerificationService ---

type mockVerificationService struct {
	reviewFn func(ctx context.Context, d service.Decision, force bool) (*service.ReviewResult, error)
}

func (m *mockVerificationService) Transition(ctx context.Context, d service.Decision) (*models.Registration, error) {
	return nil, nil
}
func (m *mockVerificationService) ManualReview(ctx context.Context, d service.Decision, force bool) (*service.ReviewResult, error) {
	return m.reviewFn(ctx, d, force)
}
func (m *mockVerificationService) ApplyBatch(ctx context.Context, decisions []service.Decision) service.BatchSummary {
	return service.BatchSummary{}
}

// --- Mock ReconciliationService ---

type mockReconciliationService struct {
	previewFn func(ctx context.Context, req service.ReconcileRequest) (*service.ReconcileResult, error)
	applyFn   func(ctx context.Context, req service.ReconcileRequest) (*service.ReconcileResult, error)
}

func (m *mockReconciliationService) Preview(ctx context.Context, req service.ReconcileRequest) (*service.ReconcileResult, error) {
	return m.previewFn(ctx, req)
}
func (m *mockReconciliationService) Apply(ctx context.Context, req service.ReconcileRequest) (*service.ReconcileResult, error) {
	return m.applyFn(ctx, req)
}
