package review

import (
	"errors"
	"net/http"
	"strconv"

	"homeserve/internal/auth"
	"homeserve/internal/booking"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo        Repository
	bookingRepo booking.Repository
}

func NewHandler(repo Repository, bookingRepo booking.Repository) *Handler {
	return &Handler{repo: repo, bookingRepo: bookingRepo}
}

// Create godoc
// @Summary      Review a completed booking
// @Description  The booking seeker rates the assigned provider, once per booking.
// @Tags         review
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int            true  "Booking ID"
// @Param        request    body      CreateRequest  true  "Rating and comment"
// @Success      201        {object}  Review
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/review [post]
func (h *Handler) Create(c *gin.Context) {
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

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.bookingRepo.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if b.SeekerID != seekerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "can only review own bookings"})
		return
	}
	if b.Status != booking.StatusCompleted || b.ProviderID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only completed bookings can be reviewed"})
		return
	}

	rev, err := h.repo.Create(c.Request.Context(), bookingID, seekerID, *b.ProviderID, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			c.JSON(http.StatusConflict, gin.H{"error": "booking already reviewed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create review"})
		return
	}

	c.JSON(http.StatusCreated, rev)
}

// ListByProvider godoc
// @Summary      List reviews for a provider
// @Tags         review
// @Produce      json
// @Param        providerID  path     int  true   "Provider ID"
// @Param        limit       query    int  false  "Page size"    default(20)
// @Param        offset      query    int  false  "Page offset"  default(0)
// @Success      200         {array}  ReviewWithSeeker
// @Router       /providers/{providerID}/reviews [get]
func (h *Handler) ListByProvider(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reviews, err := h.repo.ListByProvider(c.Request.Context(), providerID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reviews"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// ProviderStats godoc
// @Summary      Aggregate rating statistics for a provider
// @Tags         review
// @Produce      json
// @Param        providerID  path      int  true  "Provider ID"
// @Success      200         {object}  ProviderStats
// @Router       /providers/{providerID}/stats [get]
func (h *Handler) ProviderStats(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	stats, err := h.repo.GetProviderStats(c.Request.Context(), providerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
