package service

import "github.com/Eursukkul/registration-engine/internal/models"

// FlowState is the single active step of an attendee's registration flow.
// Only the types in this file implement it.
type FlowState interface {
	Name() string
	flowState()
}

type CollectingIdentity struct{}

type CollectingAnswers struct{}

// AwaitingPayment carries what the attendee needs to pay and upload a proof.
type AwaitingPayment struct {
	Registration *models.Registration
	Payment      models.PaymentConfig
}

// DuplicateBlocked is a user facing outcome, not a failure. Only the public
// summary of the existing registration is exposed.
type DuplicateBlocked struct {
	Existing models.Summary
}

type Completed struct {
	Registration *models.Registration
}

type Rejected struct {
	Registration *models.Registration
	Reason       string
}

func (CollectingIdentity) Name() string { return "collecting_identity" }
func (CollectingAnswers) Name() string  { return "collecting_answers" }
func (AwaitingPayment) Name() string    { return "awaiting_payment" }
func (DuplicateBlocked) Name() string   { return "duplicate_blocked" }
func (Completed) Name() string          { return "completed" }
func (Rejected) Name() string           { return "rejected" }

func (CollectingIdentity) flowState() {}
func (CollectingAnswers) flowState()  {}
func (AwaitingPayment) flowState()    {}
func (DuplicateBlocked) flowState()   {}
func (Completed) flowState()          {}
func (Rejected) flowState()           {}

// StateOf maps a stored registration onto the flow.
func StateOf(reg *models.Registration, event *models.Event) FlowState {
	switch reg.Status {
	case models.StatusCompleted, models.StatusVerified:
		return Completed{Registration: reg}
	case models.StatusRejected, models.StatusDuplicateRejected:
		return Rejected{Registration: reg, Reason: reg.PaymentProof.RejectionReason}
	default:
		var payment models.PaymentConfig
		if event != nil {
			payment = event.PaymentConfig
		}
		return AwaitingPayment{Registration: reg, Payment: payment}
	}
}
