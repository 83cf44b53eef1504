package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/google/uuid"
)

// MemoryStore keeps events and registrations in process. It honours the
// same atomicity contract as the Postgres repositories and backs local runs
// and tests.
type MemoryStore struct {
	mu            sync.Mutex
	events        map[uint]models.Event
	registrations map[uuid.UUID]models.Registration
	now           func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:        make(map[uint]models.Event),
		registrations: make(map[uuid.UUID]models.Registration),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Events and Registrations expose the store through the repository interfaces.
func (s *MemoryStore) Events() EventRepository               { return memoryEvents{s} }
func (s *MemoryStore) Registrations() RegistrationRepository { return memoryRegistrations{s} }

type memoryEvents struct{ s *MemoryStore }

func (m memoryEvents) FindByID(_ context.Context, id uint) (*models.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	event, ok := m.s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &event, nil
}

func (m memoryEvents) Upsert(_ context.Context, event *models.Event) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	now := m.s.now()
	if prev, ok := m.s.events[event.ID]; ok {
		event.CreatedAt = prev.CreatedAt
	} else if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	m.s.events[event.ID] = *event
	return nil
}

type memoryRegistrations struct{ s *MemoryStore }

func (m memoryRegistrations) Create(_ context.Context, reg *models.Registration, guard CreateGuard) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[reg.EventID]; !ok {
		return ErrNotFound
	}
	if stored, ok := s.registrations[reg.ID]; ok && reg.ID != uuid.Nil {
		*reg = stored
		return nil
	}
	if guard.UniqueIdentity {
		if existing := s.findActiveLocked(reg.EventID, reg.Email); existing != nil {
			return &DuplicateError{Existing: existing}
		}
	}
	if guard.Capacity > 0 && s.countActiveLocked(reg.EventID) >= int64(guard.Capacity) {
		return ErrCapacityReached
	}

	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	now := s.now()
	reg.CreatedAt, reg.UpdatedAt = now, now
	s.registrations[reg.ID] = *reg
	return nil
}

func (m memoryRegistrations) FindByID(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	reg, ok := m.s.registrations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &reg, nil
}

func (m memoryRegistrations) FindActiveByEventAndEmail(_ context.Context, eventID uint, email string) (*models.Registration, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if reg := m.s.findActiveLocked(eventID, email); reg != nil {
		return reg, nil
	}
	return nil, ErrNotFound
}

func (m memoryRegistrations) CountActiveByEvent(_ context.Context, eventID uint) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.countActiveLocked(eventID), nil
}

func (m memoryRegistrations) AttachPaymentProof(_ context.Context, id uuid.UUID, proof ProofUpdate) (*models.Registration, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok {
		return nil, ErrNotFound
	}
	if reg.Status != models.StatusPendingPayment || reg.PaymentProof.VerificationStatus != models.VerificationPending {
		return nil, ErrStateConflict
	}
	uploaded := proof.UploadedAt
	reg.PaymentProof.ScreenshotRef = proof.ScreenshotRef
	reg.PaymentProof.UTR = proof.UTR
	reg.PaymentProof.NormalizedUTR = proof.NormalizedUTR
	reg.PaymentProof.Amount = proof.Amount
	reg.PaymentProof.UploadedAt = &uploaded
	reg.UpdatedAt = uploaded
	s.registrations[id] = reg
	return &reg, nil
}

func (m memoryRegistrations) CASVerificationStatus(_ context.Context, id uuid.UUID, expected models.VerificationStatus, upd VerificationUpdate) (*models.Registration, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok {
		return nil, ErrNotFound
	}
	if reg.PaymentProof.VerificationStatus != expected {
		return nil, ErrStateConflict
	}
	at := upd.At
	reg.PaymentProof.VerificationStatus = upd.Status
	reg.PaymentProof.VerificationMethod = upd.Method
	reg.Status = upd.RegistrationStatus
	switch upd.Status {
	case models.VerificationVerified:
		reg.PaymentProof.VerifiedAt = &at
		reg.PaymentProof.VerifiedBy = upd.VerifiedBy
	case models.VerificationRejected:
		reg.PaymentProof.RejectionReason = upd.RejectionReason
		reg.PaymentProof.VerifiedBy = upd.VerifiedBy
	}
	reg.UpdatedAt = at
	s.registrations[id] = reg
	return &reg, nil
}

func (m memoryRegistrations) ListPendingPaymentsWithUTR(_ context.Context, eventID *uint) ([]models.Registration, error) {
	return m.s.filter(func(r *models.Registration) bool {
		if eventID != nil && r.EventID != *eventID {
			return false
		}
		return r.Status == models.StatusPendingPayment &&
			r.PaymentProof.VerificationStatus == models.VerificationPending &&
			r.PaymentProof.NormalizedUTR != ""
	}), nil
}

func (m memoryRegistrations) ListPendingPaymentsPage(ctx context.Context, q PendingQuery) ([]models.Registration, int64, error) {
	pending, _ := m.ListPendingPaymentsWithUTR(ctx, q.EventID)
	slices.Reverse(pending)
	sort.SliceStable(pending, func(i, j int) bool {
		return uploadedAt(pending[i]).After(uploadedAt(pending[j]))
	})

	total := int64(len(pending))
	if q.Offset >= len(pending) {
		return []models.Registration{}, total, nil
	}
	page := pending[q.Offset:]
	if q.Limit > 0 && len(page) > q.Limit {
		page = page[:q.Limit]
	}
	return page, total, nil
}

func uploadedAt(r models.Registration) time.Time {
	if r.PaymentProof.UploadedAt == nil {
		return time.Time{}
	}
	return *r.PaymentProof.UploadedAt
}

func (m memoryRegistrations) ListByNormalizedUTR(_ context.Context, utrs []string) ([]models.Registration, error) {
	if len(utrs) == 0 {
		return nil, nil
	}
	return m.s.filter(func(r *models.Registration) bool {
		vs := r.PaymentProof.VerificationStatus
		return (vs == models.VerificationPending || vs == models.VerificationVerified) &&
			slices.Contains(utrs, r.PaymentProof.NormalizedUTR)
	}), nil
}

func (m memoryRegistrations) ClaimFulfillment(_ context.Context, id uuid.UUID, staleAfter time.Duration) (bool, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok || reg.Status != models.StatusCompleted || reg.TicketCode != nil {
		return false, nil
	}
	now := s.now()
	if reg.FulfillmentClaimedAt != nil && !reg.FulfillmentClaimedAt.Before(now.Add(-staleAfter)) {
		return false, nil
	}
	reg.FulfillmentClaimedAt = &now
	s.registrations[id] = reg
	return true, nil
}

func (m memoryRegistrations) ReleaseFulfillment(_ context.Context, id uuid.UUID) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if ok && reg.TicketCode == nil {
		reg.FulfillmentClaimedAt = nil
		s.registrations[id] = reg
	}
	return nil
}

func (m memoryRegistrations) MarkTicketIssued(_ context.Context, id uuid.UUID, code string, at time.Time) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok {
		return ErrNotFound
	}
	if reg.TicketCode != nil {
		return ErrStateConflict
	}
	reg.TicketCode = &code
	reg.TicketIssuedAt = &at
	reg.UpdatedAt = at
	s.registrations[id] = reg
	return nil
}

func (m memoryRegistrations) ListUnfulfilled(_ context.Context, olderThan time.Time, limit int) ([]models.Registration, error) {
	regs := m.s.filter(func(r *models.Registration) bool {
		if r.Status != models.StatusCompleted || r.TicketCode != nil || !r.UpdatedAt.Before(olderThan) {
			return false
		}
		return r.FulfillmentClaimedAt == nil || r.FulfillmentClaimedAt.Before(olderThan)
	})
	sort.SliceStable(regs, func(i, j int) bool { return regs[i].UpdatedAt.Before(regs[j].UpdatedAt) })
	if limit > 0 && len(regs) > limit {
		regs = regs[:limit]
	}
	return regs, nil
}

func (s *MemoryStore) findActiveLocked(eventID uint, email string) *models.Registration {
	email = models.NormalizeEmail(email)
	var found *models.Registration
	for _, reg := range s.registrations {
		if reg.EventID != eventID || reg.Email != email || !reg.Status.Active() {
			continue
		}
		if found == nil || reg.CreatedAt.Before(found.CreatedAt) {
			r := reg
			found = &r
		}
	}
	return found
}

func (s *MemoryStore) countActiveLocked(eventID uint) int64 {
	var n int64
	for _, reg := range s.registrations {
		if reg.EventID == eventID && reg.Status.Active() {
			n++
		}
	}
	return n
}

func (s *MemoryStore) filter(keep func(*models.Registration) bool) []models.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Registration
	for _, reg := range s.registrations {
		if keep(&reg) {
			out = append(out, reg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
