// Package reconcile matches parsed statement transactions against pending
// payment proofs. It never mutates registrations; the report it returns is
// a dry run until a caller applies it.
package reconcile

import (
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/statement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Outcome string

const (
	OutcomeVerified        Outcome = "verified"
	OutcomeAmbiguousAmount Outcome = "ambiguous_amount"
	OutcomeNoMatch         Outcome = "no_match"
)

type Options struct {
	// Tolerance is the largest accepted gap between two amounts.
	Tolerance decimal.Decimal
}

func DefaultOptions() Options {
	return Options{Tolerance: decimal.NewFromInt(1)}
}

// Detail is the outcome for one pending registration.
type Detail struct {
	RegistrationID  uuid.UUID        `json:"registration_id"`
	EventID         uint             `json:"event_id"`
	Email           string           `json:"email"`
	UTR             string           `json:"utr"`
	ClaimedAmount   decimal.Decimal  `json:"claimed_amount"`
	ExpectedAmount  decimal.Decimal  `json:"expected_amount"`
	StatementAmount *decimal.Decimal `json:"statement_amount,omitempty"`
	StatementLine   int              `json:"statement_line,omitempty"`
	Outcome         Outcome          `json:"outcome"`
	IsDuplicateUTR  bool             `json:"is_duplicate_utr"`
	Reason          string           `json:"reason,omitempty"`
}

type Report struct {
	Verified   int      `json:"verified"`
	Ambiguous  int      `json:"ambiguous"`
	Unmatched  int      `json:"unmatched"`
	Duplicates int      `json:"duplicates"`
	Details    []Detail `json:"details"`
}

// Match produces one Detail per pending registration that carries a UTR.
// dupScope is the platform-wide set used for duplicate UTR flags; it should
// contain every pending and verified registration, not just this batch.
func Match(txs []statement.Transaction, pending []models.Registration, dupScope []models.Registration, opts Options) Report {
	if opts.Tolerance.IsNegative() {
		opts.Tolerance = decimal.Zero
	}

	credits := make(map[string][]statement.Transaction)
	debits := make(map[string]bool)
	for _, tx := range txs {
		key := models.NormalizeUTR(tx.ReferenceCode)
		if key == "" {
			continue
		}
		if tx.Direction == statement.DirectionDebit {
			debits[key] = true
			continue
		}
		credits[key] = append(credits[key], tx)
	}

	dups := DuplicateUTRs(dupScope)

	report := Report{Details: []Detail{}}
	for i := range pending {
		reg := &pending[i]
		key := reg.PaymentProof.NormalizedUTR
		if key == "" {
			key = models.NormalizeUTR(reg.PaymentProof.UTR)
		}
		if key == "" || reg.Status != models.StatusPendingPayment ||
			reg.PaymentProof.VerificationStatus != models.VerificationPending {
			continue
		}

		d := Detail{
			RegistrationID: reg.ID,
			EventID:        reg.EventID,
			Email:          reg.Email,
			UTR:            reg.PaymentProof.UTR,
			ClaimedAmount:  reg.PaymentProof.Amount,
			ExpectedAmount: reg.PricePaid,
			IsDuplicateUTR: dups[reg.ID],
		}
		classify(&d, credits[key], debits[key], opts.Tolerance)

		switch d.Outcome {
		case OutcomeVerified:
			report.Verified++
		case OutcomeAmbiguousAmount:
			report.Ambiguous++
		default:
			report.Unmatched++
		}
		if d.IsDuplicateUTR {
			report.Duplicates++
		}
		report.Details = append(report.Details, d)
	}
	return report
}

func classify(d *Detail, matches []statement.Transaction, debitOnly bool, tol decimal.Decimal) {
	if len(matches) == 0 {
		d.Outcome = OutcomeNoMatch
		d.Reason = "UTR not found in statement"
		if debitOnly {
			d.Reason = "UTR only appears on a debit line"
		}
		return
	}

	tx := matches[0]
	for _, m := range matches {
		if amountCovers(m.Amount, d.ClaimedAmount, tol) {
			tx = m
			break
		}
	}
	d.StatementAmount = tx.Amount
	d.StatementLine = tx.Line

	if d.ExpectedAmount.IsPositive() && !within(d.ClaimedAmount, d.ExpectedAmount, tol) {
		d.Outcome = OutcomeAmbiguousAmount
		d.Reason = "claimed amount " + d.ClaimedAmount.StringFixed(2) + " differs from ticket price " + d.ExpectedAmount.StringFixed(2)
		return
	}
	if !amountCovers(tx.Amount, d.ClaimedAmount, tol) {
		d.Outcome = OutcomeAmbiguousAmount
		d.Reason = "statement shows " + tx.Amount.StringFixed(2) + ", expected " + d.ClaimedAmount.StringFixed(2)
		return
	}
	d.Outcome = OutcomeVerified
}

// amountCovers accepts a missing statement amount, since the reference is
// the only required signal.
func amountCovers(stmt *decimal.Decimal, claimed, tol decimal.Decimal) bool {
	if stmt == nil {
		return true
	}
	return stmt.GreaterThanOrEqual(claimed) || within(*stmt, claimed, tol)
}

func within(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}

// DuplicateUTRs flags every registration whose normalized UTR is shared with
// another pending or verified registration. The result does not depend on
// input order.
func DuplicateUTRs(regs []models.Registration) map[uuid.UUID]bool {
	groups := make(map[string][]uuid.UUID)
	for i := range regs {
		r := &regs[i]
		vs := r.PaymentProof.VerificationStatus
		if vs != models.VerificationPending && vs != models.VerificationVerified {
			continue
		}
		key := r.PaymentProof.NormalizedUTR
		if key == "" {
			key = models.NormalizeUTR(r.PaymentProof.UTR)
		}
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], r.ID)
	}

	flagged := make(map[uuid.UUID]bool)
	for _, ids := range groups {
		if len(distinct(ids)) < 2 {
			continue
		}
		for _, id := range ids {
			flagged[id] = true
		}
	}
	return flagged
}

func distinct(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
