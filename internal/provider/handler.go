package provider

import (
	"errors"
	"net/http"
	"strconv"

	"homeserve/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Onboard godoc
// @Summary      Apply to become a provider
// @Description  Creates a pending provider profile for the authenticated user.
// @Tags         provider
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      OnboardRequest  true  "Provider profile"
// @Success      201      {object}  Provider
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /providers/onboard [post]
func (h *Handler) Onboard(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Onboard(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrAlreadyOnboarded) {
			c.JSON(http.StatusConflict, gin.H{"error": "provider profile already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create provider profile"})
		return
	}

	c.JSON(http.StatusCreated, p)
}

// GetMyProfile godoc
// @Summary      Get own provider profile
// @Tags         provider
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Provider
// @Failure      404  {object}  api.ErrorResponse
// @Router       /providers/me [get]
func (h *Handler) GetMyProfile(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	p, err := h.service.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "provider profile not found"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// ListProviders godoc
// @Summary      List approved providers
// @Tags         provider
// @Produce      json
// @Param        category  query     string  false  "Filter by service category"
// @Success      200       {array}   ProviderWithUser
// @Router       /providers [get]
func (h *Handler) ListProviders(c *gin.Context) {
	category := c.Query("category")

	providers, err := h.service.ListApproved(c.Request.Context(), category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list providers"})
		return
	}

	c.JSON(http.StatusOK, providers)
}

// SetAvailability godoc
// @Summary      Toggle availability
// @Tags         provider
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      AvailabilityRequest  true  "Availability flag"
// @Success      200      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Router       /providers/availability [patch]
func (h *Handler) SetAvailability(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "available is required"})
		return
	}

	if err := h.service.SetAvailability(c.Request.Context(), userID, *req.Available); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "approved provider profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "availability updated"})
}

// ListPending godoc
// @Summary      List providers awaiting approval
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  ProviderWithUser
// @Router       /admin/providers/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	providers, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pending providers"})
		return
	}

	c.JSON(http.StatusOK, providers)
}

// Approve godoc
// @Summary      Approve a provider application
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        providerID  path      int  true  "Provider ID"
// @Success      200         {object}  api.MessageResponse
// @Failure      400         {object}  api.ErrorResponse
// @Failure      404         {object}  api.ErrorResponse
// @Router       /admin/providers/{providerID}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	if err := h.service.Approve(c.Request.Context(), providerID); err != nil {
		switch {
		case errors.Is(err, ErrProviderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
		case errors.Is(err, ErrNotApprovable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "provider is not awaiting approval"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve provider"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "provider approved"})
}

// Reject godoc
// @Summary      Reject a provider application
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        providerID  path      int  true  "Provider ID"
// @Success      200         {object}  api.MessageResponse
// @Failure      400         {object}  api.ErrorResponse
// @Failure      404         {object}  api.ErrorResponse
// @Router       /admin/providers/{providerID}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	if err := h.service.Reject(c.Request.Context(), providerID); err != nil {
		switch {
		case errors.Is(err, ErrProviderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
		case errors.Is(err, ErrNotApprovable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "provider is not awaiting approval"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reject provider"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "provider rejected"})
}
