package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (d *recordingDispatcher) Dispatch(_ context.Context, id uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, id)
	return nil
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ids)
}

type harness struct {
	store        *repository.MemoryStore
	dispatcher   *recordingDispatcher
	registration RegistrationService
	payment      PaymentService
	verification VerificationService
	reconcile    ReconciliationService
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.RetryBackoff = time.Millisecond
	return opts
}

func newHarness(t *testing.T, limits models.PlanLimits, events ...*models.Event) *harness {
	t.Helper()
	log := zerolog.Nop()
	store := repository.NewMemoryStore()
	for _, e := range events {
		require.NoError(t, store.Events().Upsert(context.Background(), e))
	}
	d := &recordingDispatcher{}
	opts := testOptions()
	verification := NewVerificationService(store.Registrations(), d, opts, &log)
	return &harness{
		store:        store,
		dispatcher:   d,
		registration: NewRegistrationService(store.Registrations(), store.Events(), StaticPlanLimits(limits), d, opts, &log),
		payment:      NewPaymentService(store.Registrations(), store.Events(), opts, &log),
		verification: verification,
		reconcile:    NewReconciliationService(store.Registrations(), store.Events(), verification, opts, &log),
	}
}

func freeEvent(id uint) *models.Event {
	return &models.Event{
		ID:     id,
		Name:   "Community Meetup",
		Status: models.EventActive,
		FormSchema: []models.FormField{
			{ID: "full_name", ItemType: models.ItemQuestion, Label: "Full name", Type: models.FieldText, Required: true},
			{ID: "email", ItemType: models.ItemQuestion, Label: "Email", Type: models.FieldEmail, Required: true},
		},
	}
}

func paidEvent(id uint, price string, capacity int) *models.Event {
	e := freeEvent(id)
	e.Name = "Go Workshop"
	e.Price = decimal.RequireFromString(price)
	e.MaxRegistrations = capacity
	e.PaymentConfig = models.PaymentConfig{Enabled: true, UpiID: "host@upi", UpiName: "Host", AutoVerifyEnabled: true}
	return e
}

func answersFor(name, email string) models.Answers {
	return models.Answers{
		"full_name": models.TextAnswer(name),
		"email":     models.TextAnswer(email),
	}
}

func submit(t *testing.T, h *harness, eventID uint, email string) *SubmitResult {
	t.Helper()
	res, err := h.registration.Submit(context.Background(), SubmitRequest{
		EventID: eventID,
		Answers: answersFor("Asha Rao", email),
	})
	require.NoError(t, err)
	return res
}

func attach(t *testing.T, h *harness, id uuid.UUID, utr, amount string) {
	t.Helper()
	amt := decimal.RequireFromString(amount)
	_, err := h.payment.AttachProof(context.Background(), id, ProofInput{UTR: utr, Amount: &amt, ScreenshotRef: "proofs/" + id.String()})
	require.NoError(t, err)
}
