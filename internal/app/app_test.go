package app

import (
	"context"
	"testing"
	"time"

	"github.com/Eursukkul/registration-engine/config"
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/service"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StoreDriver:        config.StoreDriverMemory,
		FulfillmentMode:    config.FulfillmentInline,
		TicketSecret:       "s3cret",
		AmountTolerance:    decimal.NewFromInt(1),
		ParserMinTokens:    2,
		ParserMinRefLength: 6,
		BatchConcurrency:   5,
		RetryBackoff:       time.Millisecond,
		StaleProofAge:      30 * 24 * time.Hour,
		ClaimTTL:           time.Minute,
	}
}

func TestServiceOptions(t *testing.T) {
	cfg := memoryConfig()
	cfg.ParserMinRefLength = 8

	opts := ServiceOptions(cfg)

	assert.Equal(t, 8, opts.Parser.MinReferenceLength)
	assert.Equal(t, 5, opts.BatchConcurrency)
	assert.True(t, opts.AmountTolerance.Equal(decimal.NewFromInt(1)))
}

// A paid registration travels from submission through statement
// reconciliation to an issued ticket.
func TestApp_PaidRegistrationEndToEnd(t *testing.T) {
	log := zerolog.Nop()
	a, err := New(memoryConfig(), &log)
	require.NoError(t, err)
	defer a.Close()
	ctx := context.Background()

	require.NoError(t, a.Events.Upsert(ctx, &models.Event{
		ID:            1,
		Name:          "Go Workshop",
		Status:        models.EventActive,
		Price:         decimal.NewFromInt(1500),
		PaymentConfig: models.PaymentConfig{Enabled: true, UpiID: "host@upi", AutoVerifyEnabled: true},
		FormSchema: []models.FormField{
			{ID: "name", ItemType: models.ItemQuestion, Label: "Your name", Type: models.FieldText, Required: true},
			{ID: "email", ItemType: models.ItemQuestion, Label: "Email", Type: models.FieldEmail, Required: true},
		},
	}))

	res, err := a.Registration.Submit(ctx, service.SubmitRequest{
		EventID: 1,
		Answers: models.Answers{
			"name":  models.TextAnswer("Asha Rao"),
			"email": models.TextAnswer("asha@example.com"),
		},
	})
	require.NoError(t, err)
	id := res.Registration.ID

	_, err = a.Payment.AttachProof(ctx, id, service.ProofInput{UTR: "ABCD1234EF50"})
	require.NoError(t, err)

	rec, err := a.Reconciliation.Apply(ctx, service.ReconcileRequest{
		StatementText: "25-12-2025 UTR: ABCD1234EF50 Credit INR 1500.00",
		Operator:      "host-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Applied.Applied)

	reg, _, err := a.Registration.GetRegistration(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, reg.Status)
	require.NotNil(t, reg.TicketCode)
	assert.Regexp(t, `^TKT-[A-Z2-7]{8}$`, *reg.TicketCode)
}
