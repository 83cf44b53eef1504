package handler

import (
	"net/http"
	"strconv"

	"github.com/Eursukkul/registration-engine/internal/dto"
	"github.com/Eursukkul/registration-engine/internal/service"
	"github.com/labstack/echo/v4"
)

type RegistrationHandler struct {
	registrations service.RegistrationService
	payments      service.PaymentService
}

func NewRegistrationHandler(registrations service.RegistrationService, payments service.PaymentService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, payments: payments}
}

func (h *RegistrationHandler) RegisterRoutes(g *echo.Group) {
	events := g.Group("/events/:id/registrations")
	events.GET("/check", h.CheckIdentity)
	events.POST("/pages/:page/validate", h.ValidatePage)
	events.POST("", h.Submit)

	g.GET("/registrations/:id", h.GetRegistration)
	g.POST("/registrations/:id/payment-proof", h.AttachPaymentProof)
}

func (h *RegistrationHandler) CheckIdentity(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}

	state, err := h.registrations.CheckIdentity(c.Request().Context(), eventID, c.QueryParam("email"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, checkResponse(state))
}

func (h *RegistrationHandler) ValidatePage(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid page")
	}

	var req dto.ValidatePageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ferr, err := h.registrations.ValidatePage(c.Request().Context(), eventID, page, req.Answers)
	if err != nil {
		return httpError(err)
	}
	if ferr != nil {
		return c.JSON(http.StatusBadRequest, ferr)
	}
	return c.JSON(http.StatusOK, dto.ValidPageResponse{Valid: true})
}

func (h *RegistrationHandler) Submit(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return err
	}

	var req dto.SubmitRegistrationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.registrations.Submit(c.Request().Context(), service.SubmitRequest{
		EventID: eventID,
		UserID:  req.UserID,
		Email:   req.Email,
		Name:    req.Name,
		Answers: req.Answers,
	})
	if err != nil {
		return httpError(err)
	}
	if !res.Created {
		return c.JSON(http.StatusOK, checkResponse(res.State))
	}
	return c.JSON(http.StatusCreated, dto.ToRegistrationResponse(res.Registration, res.State))
}

func (h *RegistrationHandler) GetRegistration(c echo.Context) error {
	id, err := registrationIDParam(c)
	if err != nil {
		return err
	}

	reg, event, err := h.registrations.GetRegistration(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg, service.StateOf(reg, event)))
}

func (h *RegistrationHandler) AttachPaymentProof(c echo.Context) error {
	id, err := registrationIDParam(c)
	if err != nil {
		return err
	}

	var req dto.PaymentProofRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reg, err := h.payments.AttachProof(c.Request().Context(), id, service.ProofInput{
		ScreenshotRef: req.ScreenshotRef,
		UTR:           req.UTR,
		Amount:        req.Amount,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg, nil))
}

func checkResponse(state service.FlowState) dto.CheckResponse {
	resp := dto.CheckResponse{State: state.Name()}
	if blocked, ok := state.(service.DuplicateBlocked); ok {
		summary := blocked.Existing
		resp.AlreadyRegistered = true
		resp.Registration = &summary
	}
	return resp
}
