package booking

import (
	"errors"
	"net/http"
	"strconv"

	"homeserve/internal/auth"
	"homeserve/internal/provider"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create godoc
// @Summary      Create a booking
// @Description  Creates a pending booking for the authenticated seeker. An admin assigns a provider later.
// @Tags         booking
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRequest  true  "Booking details"
// @Success      201      {object}  Booking
// @Failure      400      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	seekerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.Create(c.Request.Context(), seekerID, req)
	if err != nil {
		if errors.Is(err, ErrPastSchedule) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot book a time in the past"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		return
	}

	c.JSON(http.StatusCreated, b)
}

// ListMine godoc
// @Summary      List own bookings
// @Tags         booking
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Booking
// @Router       /bookings [get]
func (h *Handler) ListMine(c *gin.Context) {
	seekerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookings, err := h.service.ListBySeeker(c.Request.Context(), seekerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// Get godoc
// @Summary      Get a booking
// @Tags         booking
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) Get(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	userID, _ := auth.GetUserID(c)
	role, _ := auth.GetUserRole(c)
	if role != auth.RoleAdmin && b.SeekerID != userID {
		// Assigned providers see their bookings through /provider/bookings.
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return
	}

	c.JSON(http.StatusOK, b)
}

// Cancel godoc
// @Summary      Cancel a booking
// @Description  Only unstarted bookings can be cancelled by their seeker.
// @Tags         booking
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	seekerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), seekerID, bookingID); err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, ErrNotBookingSeeker):
			c.JSON(http.StatusForbidden, gin.H{"error": "can only cancel own bookings"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking can no longer be cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully"})
}

// ListForProvider godoc
// @Summary      List bookings assigned to the authenticated provider
// @Tags         provider
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Booking
// @Router       /provider/bookings [get]
func (h *Handler) ListForProvider(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookings, err := h.service.ListForProviderUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) providerTransition(c *gin.Context, do func(ctx *gin.Context, userID, bookingID int) error) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	if err := do(c, userID, bookingID); err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, ErrNotBookingProvider):
			c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking is not in a state allowing this transition"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "booking updated"})
}

// Accept godoc
// @Summary      Provider accepts an assigned booking
// @Tags         provider
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  api.MessageResponse
// @Router       /provider/bookings/{bookingID}/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	h.providerTransition(c, func(ctx *gin.Context, userID, bookingID int) error {
		return h.service.Accept(ctx.Request.Context(), userID, bookingID)
	})
}

// Start godoc
// @Summary      Provider starts a confirmed booking
// @Tags         provider
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  api.MessageResponse
// @Router       /provider/bookings/{bookingID}/start [post]
func (h *Handler) Start(c *gin.Context) {
	h.providerTransition(c, func(ctx *gin.Context, userID, bookingID int) error {
		return h.service.Start(ctx.Request.Context(), userID, bookingID)
	})
}

// Complete godoc
// @Summary      Provider completes a booking in progress
// @Tags         provider
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  api.MessageResponse
// @Router       /provider/bookings/{bookingID}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	h.providerTransition(c, func(ctx *gin.Context, userID, bookingID int) error {
		return h.service.Complete(ctx.Request.Context(), userID, bookingID)
	})
}

// ListByStatus godoc
// @Summary      Admin list of bookings by status
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        status  query    string  false  "Booking status"  default(pending)
// @Success      200     {array}  BookingWithSeeker
// @Router       /admin/bookings [get]
func (h *Handler) ListByStatus(c *gin.Context) {
	status := c.DefaultQuery("status", StatusPending)

	bookings, err := h.service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// Assign godoc
// @Summary      Assign a provider to a pending booking
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int            true  "Booking ID"
// @Param        request    body      AssignRequest  true  "Provider to assign"
// @Success      200        {object}  Booking
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /admin/bookings/{bookingID}/assign [post]
func (h *Handler) Assign(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.Assign(c.Request.Context(), bookingID, req.ProviderID)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, provider.ErrProviderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
		case errors.Is(err, ErrProviderUnavailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "provider is not approved or not available"})
		case errors.Is(err, ErrAlreadyAssigned):
			c.JSON(http.StatusConflict, gin.H{"error": "booking already assigned"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign booking"})
		}
		return
	}

	c.JSON(http.StatusOK, b)
}
