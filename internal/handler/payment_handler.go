package handler

import (
	"net/http"
	"strconv"

	"github.com/Eursukkul/registration-engine/internal/dto"
	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/internal/service"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	payments      service.PaymentService
	verifications service.VerificationService
	reconciler    service.ReconciliationService
}

func NewPaymentHandler(payments service.PaymentService, verifications service.VerificationService, reconciler service.ReconciliationService) *PaymentHandler {
	return &PaymentHandler{payments: payments, verifications: verifications, reconciler: reconciler}
}

func (h *PaymentHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/registrations/:id/verification", h.Verify)
	g.GET("/payments/pending", h.ListPending)
	g.POST("/payments/reconcile", h.Reconcile)
}

// Verify is the manual review path. Bulk statement matches go through
// Reconcile instead.
func (h *PaymentHandler) Verify(c echo.Context) error {
	id, err := registrationIDParam(c)
	if err != nil {
		return err
	}

	var req dto.VerificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.verifications.ManualReview(c.Request().Context(), service.Decision{
		RegistrationID: id,
		Outcome:        models.VerificationStatus(req.Outcome),
		Method:         models.MethodManual,
		Reason:         req.Reason,
		VerifiedBy:     req.VerifiedBy,
	}, req.Force)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ReviewResponse{
		Registration: dto.ToRegistrationResponse(res.Registration, nil),
		Warnings:     res.Warnings,
	})
}

func (h *PaymentHandler) ListPending(c echo.Context) error {
	var filter service.PendingFilter
	if raw := c.QueryParam("event_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
		}
		v := uint(id)
		filter.EventID = &v
	}
	var err error
	if filter.Page, err = positiveQuery(c, "page"); err != nil {
		return err
	}
	if filter.Limit, err = positiveQuery(c, "limit"); err != nil {
		return err
	}

	page, err := h.payments.ListPending(c.Request().Context(), filter)
	if err != nil {
		return httpError(err)
	}

	resp := dto.PendingPageResponse{
		Payments: make([]dto.PendingProofResponse, len(page.Payments)),
		Total:    page.Total,
		Page:     page.Page,
		Pages:    page.Pages,
	}
	for i, p := range page.Payments {
		resp.Payments[i] = dto.PendingProofResponse{
			Registration:   dto.ToRegistrationResponse(&p.Registration, nil),
			IsDuplicateUTR: p.IsDuplicateUTR,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) Reconcile(c echo.Context) error {
	var req dto.ReconcileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := service.ReconcileRequest{
		StatementText:     req.StatementText,
		EventID:           req.EventID,
		ConfirmDuplicates: req.ConfirmDuplicates,
		Operator:          req.Operator,
	}
	run := h.reconciler.Preview
	if req.Apply {
		run = h.reconciler.Apply
	}
	res, err := run(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}
