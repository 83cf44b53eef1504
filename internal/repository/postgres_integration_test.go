//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "registration_test_db"),
	)

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	// Drop and recreate tables for clean state
	testDB.Exec("DROP TABLE IF EXISTS registrations")
	testDB.Exec("DROP TABLE IF EXISTS events")
	if err := database.Migrate(testDB); err != nil {
		log.Fatalf("failed to migrate test database: %v", err)
	}

	code := m.Run()

	testDB.Exec("DROP TABLE IF EXISTS registrations")
	testDB.Exec("DROP TABLE IF EXISTS events")

	os.Exit(code)
}

func cleanTables() {
	testDB.Exec("DELETE FROM registrations")
	testDB.Exec("DELETE FROM events")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func createTestEvent(t *testing.T, id uint, price string) {
	t.Helper()
	require.NoError(t, NewEventRepository(testDB).Upsert(t.Context(), &models.Event{
		ID:     id,
		Name:   "Golang Workshop Bangalore",
		Status: models.EventActive,
		Price:  decimal.RequireFromString(price),
	}))
}

func newPending(eventID uint, email string) *models.Registration {
	key := email
	return &models.Registration{
		EventID:     eventID,
		Email:       email,
		IdentityKey: &key,
		PricePaid:   decimal.NewFromInt(500),
		Status:      models.StatusPendingPayment,
		PaymentProof: models.PaymentProof{
			VerificationStatus: models.VerificationPending,
			VerificationMethod: models.MethodNone,
		},
	}
}

// 30 attendees race for 10 places; exactly 10 rows may exist afterwards.
func TestPostgres_ConcurrentCreateRespectsCapacity(t *testing.T) {
	cleanTables()
	createTestEvent(t, 1, "500")
	repo := NewRegistrationRepository(testDB)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, full := 0, 0
	for i := 0; i < 30; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(t.Context(), newPending(1, fmt.Sprintf("user%02d@example.com", i)), CreateGuard{Capacity: 10, UniqueIdentity: true})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrCapacityReached):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, created)
	assert.Equal(t, 20, full)
	count, err := repo.CountActiveByEvent(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)
}

func TestPostgres_RepeatedCreateOnFullEventIsNoOp(t *testing.T) {
	cleanTables()
	createTestEvent(t, 1, "500")
	repo := NewRegistrationRepository(testDB)
	guard := CreateGuard{Capacity: 1}

	reg := newPending(1, "asha@example.com")
	reg.IdentityKey = nil
	require.NoError(t, repo.Create(t.Context(), reg, guard))

	again := *reg
	require.NoError(t, repo.Create(t.Context(), &again, guard))
	assert.Equal(t, reg.ID, again.ID)

	count, err := repo.CountActiveByEvent(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPostgres_ConcurrentSameEmail(t *testing.T) {
	cleanTables()
	createTestEvent(t, 1, "500")
	repo := NewRegistrationRepository(testDB)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, dups := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(t.Context(), newPending(1, "same@example.com"), CreateGuard{UniqueIdentity: true})
			var dup *DuplicateError
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.As(err, &dup):
				dups++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 9, dups)
}

func TestPostgres_RejectedRegistrationFreesIdentity(t *testing.T) {
	cleanTables()
	createTestEvent(t, 1, "500")
	repo := NewRegistrationRepository(testDB)
	ctx := t.Context()

	first := newPending(1, "asha@example.com")
	require.NoError(t, repo.Create(ctx, first, CreateGuard{UniqueIdentity: true}))
	_, err := repo.CASVerificationStatus(ctx, first.ID, models.VerificationPending, VerificationUpdate{
		Status:             models.VerificationRejected,
		Method:             models.MethodManual,
		RegistrationStatus: models.StatusRejected,
		RejectionReason:    "wrong amount",
		At:                 time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.NoError(t, repo.Create(ctx, newPending(1, "asha@example.com"), CreateGuard{UniqueIdentity: true}))
}

func TestPostgres_VerificationCASHasOneWinner(t *testing.T) {
	cleanTables()
	createTestEvent(t, 1, "500")
	repo := NewRegistrationRepository(testDB)
	reg := newPending(1, "asha@example.com")
	require.NoError(t, repo.Create(t.Context(), reg, CreateGuard{}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners, conflicts := 0, 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CASVerificationStatus(t.Context(), reg.ID, models.VerificationPending, VerificationUpdate{
				Status:             models.VerificationVerified,
				Method:             models.MethodStatementMatch,
				RegistrationStatus: models.StatusCompleted,
				At:                 time.Now().UTC(),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
			} else if errors.Is(err, ErrStateConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, 7, conflicts)
}

func TestPostgres_ProofAndFulfillment(t *testing.T) {
	cleanTables()
	createTestEvent(t, 1, "500")
	repo := NewRegistrationRepository(testDB)
	ctx := t.Context()
	reg := newPending(1, "asha@example.com")
	require.NoError(t, repo.Create(ctx, reg, CreateGuard{}))

	updated, err := repo.AttachPaymentProof(ctx, reg.ID, ProofUpdate{
		UTR:           "utr998877",
		NormalizedUTR: "UTR998877",
		Amount:        decimal.NewFromInt(500),
		UploadedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, "UTR998877", updated.PaymentProof.NormalizedUTR)

	pending, err := repo.ListPendingPaymentsWithUTR(ctx, nil)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	byUTR, err := repo.ListByNormalizedUTR(ctx, []string{"UTR998877"})
	require.NoError(t, err)
	require.Len(t, byUTR, 1)

	_, err = repo.CASVerificationStatus(ctx, reg.ID, models.VerificationPending, VerificationUpdate{
		Status:             models.VerificationVerified,
		Method:             models.MethodManual,
		RegistrationStatus: models.StatusCompleted,
		At:                 time.Now().UTC(),
	})
	require.NoError(t, err)

	claimed, err := repo.ClaimFulfillment(ctx, reg.ID, time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
	claimed, err = repo.ClaimFulfillment(ctx, reg.ID, time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, repo.MarkTicketIssued(ctx, reg.ID, "TKT-ABCDEFGH", time.Now().UTC()))
	assert.ErrorIs(t, repo.MarkTicketIssued(ctx, reg.ID, "TKT-ABCDEFGH", time.Now().UTC()), ErrStateConflict)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
