package wallet

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"homeserve/internal/api"
	"homeserve/internal/auth"
	"homeserve/internal/logger"
	"homeserve/internal/provider"
)

// Notifier is the slice of the notification service this package needs.
type Notifier interface {
	WithdrawalRequested(ctx context.Context, to, name, reference string, amount int64) error
}

type Handler struct {
	service   Service
	providers provider.Repository
	notifier  Notifier
}

func NewHandler(service Service, providers provider.Repository, notifier Notifier) *Handler {
	return &Handler{service: service, providers: providers, notifier: notifier}
}

// resolveProvider maps the authenticated user to their provider profile.
func (h *Handler) resolveProvider(c *gin.Context) (int, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return 0, false
	}
	p, err := h.providers.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, provider.ErrProviderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "provider profile not found"})
			return 0, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load provider profile"})
		return 0, false
	}
	return p.ID, true
}

// GetBalance godoc
// @Summary      Wallet balance
// @Description  Available, pending and lifetime figures for the authenticated provider.
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Wallet
// @Failure      404  {object}  api.ErrorResponse
// @Router       /wallet/balance [get]
func (h *Handler) GetBalance(c *gin.Context) {
	providerID, ok := h.resolveProvider(c)
	if !ok {
		return
	}

	w, err := h.service.Balance(c.Request.Context(), providerID)
	if err != nil {
		logger.Error("fetching wallet balance", "provider_id", providerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load balance"})
		return
	}
	c.JSON(http.StatusOK, w)
}

// GetEarnings godoc
// @Summary      Earnings summary
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  EarningsSummary
// @Router       /wallet/earnings [get]
func (h *Handler) GetEarnings(c *gin.Context) {
	providerID, ok := h.resolveProvider(c)
	if !ok {
		return
	}

	summary, err := h.service.EarningsSummary(c.Request.Context(), providerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load earnings"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListTransactions godoc
// @Summary      Ledger history
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        type   query     string  false  "Filter by type"  Enums(earning, commission, withdrawal)
// @Param        page   query     int     false  "Page"            default(1)
// @Param        limit  query     int     false  "Page size"       default(20)
// @Success      200    {object}  api.PaginatedResponse
// @Router       /wallet/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	providerID, ok := h.resolveProvider(c)
	if !ok {
		return
	}

	txType := c.Query("type")
	switch txType {
	case "", TypeEarning, TypeCommission, TypeWithdrawal:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown transaction type"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	transactions, total, err := h.service.Transactions(c.Request.Context(), providerID, txType, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, api.PaginatedResponse{
		Items: transactions,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// ListWithdrawals godoc
// @Summary      Withdrawal history
// @Tags         wallet
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page"       default(1)
// @Param        limit  query     int  false  "Page size"  default(20)
// @Success      200    {object}  api.PaginatedResponse
// @Router       /wallet/withdrawals [get]
func (h *Handler) ListWithdrawals(c *gin.Context) {
	providerID, ok := h.resolveProvider(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	withdrawals, total, err := h.service.Transactions(c.Request.Context(), providerID, TypeWithdrawal, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load withdrawals"})
		return
	}

	c.JSON(http.StatusOK, api.PaginatedResponse{
		Items: withdrawals,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// Withdraw godoc
// @Summary      Request a payout
// @Description  Debits the available balance and records a pending withdrawal.
// @Tags         wallet
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      WithdrawRequest  true  "Amount and payout method"
// @Success      201      {object}  Transaction
// @Failure      400      {object}  api.ErrorResponse
// @Failure      422      {object}  api.ErrorResponse
// @Router       /wallet/withdraw [post]
func (h *Handler) Withdraw(c *gin.Context) {
	providerID, ok := h.resolveProvider(c)
	if !ok {
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wd, err := h.service.Withdraw(c.Request.Context(), providerID, req)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient balance"})
			return
		}
		if errors.Is(err, ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		logger.Error("creating withdrawal", "provider_id", providerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request withdrawal"})
		return
	}

	if email, ok := auth.GetUserEmail(c); ok {
		if err := h.notifier.WithdrawalRequested(c.Request.Context(), email, "", wd.Reference, req.Amount); err != nil {
			logger.Error("queueing withdrawal notice", "reference", wd.Reference, "error", err)
		}
	}

	c.JSON(http.StatusCreated, wd)
}
