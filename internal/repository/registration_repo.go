package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errIdentityTaken = errors.New("identity index conflict")

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

// Create inserts reg inside a transaction that holds the event row lock, so
// the capacity count and the duplicate lookup cannot interleave with another
// submission for the same event. A reg whose ID is already stored is loaded
// back instead, which makes a retried Create after a lost commit a no-op.
func (r *registrationRepository) Create(ctx context.Context, reg *models.Registration, guard CreateGuard) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockEvent(ctx, tx, reg.EventID); err != nil {
			return translate(err)
		}

		var stored models.Registration
		err := tx.WithContext(ctx).Where("id = ?", reg.ID).Take(&stored).Error
		if err == nil {
			*reg = stored
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if guard.UniqueIdentity {
			existing, err := findActive(ctx, tx, reg.EventID, reg.Email)
			if err == nil {
				return &DuplicateError{Existing: existing}
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if guard.Capacity > 0 {
			count, err := countActive(ctx, tx, reg.EventID)
			if err != nil {
				return err
			}
			if count >= int64(guard.Capacity) {
				return ErrCapacityReached
			}
		}

		if err := tx.WithContext(ctx).Create(reg).Error; err != nil {
			if isIdentityViolation(err) {
				return errIdentityTaken
			}
			return err
		}
		return nil
	})

	// The unique index catches a racer that committed between our lookup and
	// insert. The aborted transaction cannot read, so look it up afterwards.
	if errors.Is(err, errIdentityTaken) {
		existing, ferr := findActive(ctx, r.db, reg.EventID, reg.Email)
		if ferr != nil {
			return &DuplicateError{}
		}
		return &DuplicateError{Existing: existing}
	}
	return err
}

func (r *registrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	var reg models.Registration
	if err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &reg, nil
}

func (r *registrationRepository) FindActiveByEventAndEmail(ctx context.Context, eventID uint, email string) (*models.Registration, error) {
	reg, err := findActive(ctx, r.db, eventID, email)
	if err != nil {
		return nil, translate(err)
	}
	return reg, nil
}

func (r *registrationRepository) CountActiveByEvent(ctx context.Context, eventID uint) (int64, error) {
	return countActive(ctx, r.db, eventID)
}

func (r *registrationRepository) AttachPaymentProof(ctx context.Context, id uuid.UUID, proof ProofUpdate) (*models.Registration, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ? AND status = ? AND proof_verification_status = ?",
			id, models.StatusPendingPayment, models.VerificationPending).
		Updates(map[string]any{
			"proof_screenshot_ref": proof.ScreenshotRef,
			"proof_utr":            proof.UTR,
			"proof_normalized_utr": proof.NormalizedUTR,
			"proof_amount":         proof.Amount,
			"proof_uploaded_at":    proof.UploadedAt,
			"updated_at":           proof.UploadedAt,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.missOrConflict(ctx, id)
	}
	return r.FindByID(ctx, id)
}

// CASVerificationStatus applies upd only while the proof is still in the
// expected state. Exactly one of several concurrent callers wins; the others
// get ErrStateConflict.
func (r *registrationRepository) CASVerificationStatus(ctx context.Context, id uuid.UUID, expected models.VerificationStatus, upd VerificationUpdate) (*models.Registration, error) {
	fields := map[string]any{
		"proof_verification_status": upd.Status,
		"proof_verification_method": upd.Method,
		"status":                    upd.RegistrationStatus,
		"updated_at":                upd.At,
	}
	switch upd.Status {
	case models.VerificationVerified:
		fields["proof_verified_at"] = upd.At
		fields["proof_verified_by"] = upd.VerifiedBy
	case models.VerificationRejected:
		fields["proof_rejection_reason"] = upd.RejectionReason
		fields["proof_verified_by"] = upd.VerifiedBy
	}

	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ? AND proof_verification_status = ?", id, expected).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.missOrConflict(ctx, id)
	}
	return r.FindByID(ctx, id)
}

func (r *registrationRepository) ListPendingPaymentsWithUTR(ctx context.Context, eventID *uint) ([]models.Registration, error) {
	var regs []models.Registration
	if err := r.pendingQuery(ctx, eventID).Order("proof_uploaded_at ASC, created_at ASC").Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

// ListPendingPaymentsPage returns one page, most recent upload first, and
// the total number of matching proofs.
func (r *registrationRepository) ListPendingPaymentsPage(ctx context.Context, q PendingQuery) ([]models.Registration, int64, error) {
	var total int64
	if err := r.pendingQuery(ctx, q.EventID).Model(&models.Registration{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var regs []models.Registration
	err := r.pendingQuery(ctx, q.EventID).
		Order("proof_uploaded_at DESC, created_at DESC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&regs).Error
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *registrationRepository) pendingQuery(ctx context.Context, eventID *uint) *gorm.DB {
	q := r.db.WithContext(ctx).
		Where("status = ? AND proof_verification_status = ? AND proof_normalized_utr <> ''",
			models.StatusPendingPayment, models.VerificationPending)
	if eventID != nil {
		q = q.Where("event_id = ?", *eventID)
	}
	return q
}

// ListByNormalizedUTR returns every pending or verified proof, on any event,
// that uses one of the given references.
func (r *registrationRepository) ListByNormalizedUTR(ctx context.Context, utrs []string) ([]models.Registration, error) {
	if len(utrs) == 0 {
		return nil, nil
	}
	var regs []models.Registration
	err := r.db.WithContext(ctx).
		Where("proof_normalized_utr IN ? AND proof_verification_status IN ?",
			utrs, []models.VerificationStatus{models.VerificationPending, models.VerificationVerified}).
		Order("created_at ASC").
		Find(&regs).Error
	if err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *registrationRepository) ClaimFulfillment(ctx context.Context, id uuid.UUID, staleAfter time.Duration) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ? AND status = ? AND ticket_code IS NULL", id, models.StatusCompleted).
		Where("fulfillment_claimed_at IS NULL OR fulfillment_claimed_at < ?", now.Add(-staleAfter)).
		Update("fulfillment_claimed_at", now)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *registrationRepository) ReleaseFulfillment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ? AND ticket_code IS NULL", id).
		Update("fulfillment_claimed_at", nil).Error
}

func (r *registrationRepository) MarkTicketIssued(ctx context.Context, id uuid.UUID, code string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ? AND ticket_code IS NULL", id).
		Updates(map[string]any{
			"ticket_code":      code,
			"ticket_issued_at": at,
			"updated_at":       at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missOrConflict(ctx, id)
	}
	return nil
}

// ListUnfulfilled finds completed registrations still without a ticket whose
// last change is older than olderThan.
func (r *registrationRepository) ListUnfulfilled(ctx context.Context, olderThan time.Time, limit int) ([]models.Registration, error) {
	var regs []models.Registration
	q := r.db.WithContext(ctx).
		Where("status = ? AND ticket_code IS NULL AND updated_at < ?", models.StatusCompleted, olderThan).
		Where("fulfillment_claimed_at IS NULL OR fulfillment_claimed_at < ?", olderThan).
		Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *registrationRepository) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Registration{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStateConflict
}

// lockEvent takes a row lock on the event for the rest of tx.
func lockEvent(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func findActive(ctx context.Context, db *gorm.DB, eventID uint, email string) (*models.Registration, error) {
	var reg models.Registration
	err := db.WithContext(ctx).
		Where("event_id = ? AND email = ? AND status NOT IN ?", eventID, models.NormalizeEmail(email), inactiveStatuses).
		Order("created_at ASC").
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func countActive(ctx context.Context, db *gorm.DB, eventID uint) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Registration{}).
		Where("event_id = ? AND status NOT IN ?", eventID, inactiveStatuses).
		Count(&count).Error
	return count, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
