package handlers

import (
	"net/http"
	"time"

	"limpeja-api/res/store"
	"limpeja-api/sys/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type cleanerProfileResponse struct {
	ID                   string  `json:"id"`
	UserID               string  `json:"userId"`
	Bio                  string  `json:"bio,omitempty"`
	Phone                *string `json:"phone,omitempty"`
	PixKey               *string `json:"pixKey,omitempty"`
	RecipientName        string  `json:"recipientName,omitempty"`
	RecipientAddress     string  `json:"recipientAddress,omitempty"`
	TotalEarningsCents   int64   `json:"totalEarningsCents"`
	ConsecutiveFiveStars int     `json:"consecutiveFiveStars"`
	RewardsEarned        int     `json:"rewardsEarned"`
	AverageRating        float64 `json:"averageRating"`
	RatedBookings        int     `json:"ratedBookings"`
	CompletedBookings    int     `json:"completedBookings"`
	IsActive             bool    `json:"isActive"`
}

func toCleanerProfileResponse(p *store.CleanerProfile) cleanerProfileResponse {
	return cleanerProfileResponse{
		ID:                   p.ID,
		UserID:               p.UserID,
		Bio:                  p.Bio,
		Phone:                p.Phone,
		PixKey:               p.PixKey,
		RecipientName:        p.RecipientName,
		RecipientAddress:     p.RecipientAddress,
		TotalEarningsCents:   p.TotalEarningsCents,
		ConsecutiveFiveStars: p.ConsecutiveFiveStars,
		RewardsEarned:        p.RewardsEarned,
		AverageRating:        p.AverageRating,
		RatedBookings:        p.RatedBookings,
		CompletedBookings:    p.CompletedBookings,
		IsActive:             p.IsActive,
	}
}

// currentCleanerProfile resolves the authenticated user's cleaner profile,
// writing the error response itself on failure.
func (hb *HandlerBundle) currentCleanerProfile(c *gin.Context) *store.CleanerProfile {
	currentUser := middleware.GetCurrentUser(c)
	profile, err := hb.Store.CleanerProfiles().GetByUserID(c.Request.Context(), currentUser.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Perfil de profissional não encontrado"})
		return nil
	}
	return profile
}

// MyCleanerProfile returns the authenticated cleaner's profile and ledger.
func (hb *HandlerBundle) MyCleanerProfile(c *gin.Context) {
	profile := hb.currentCleanerProfile(c)
	if profile == nil {
		return
	}
	c.JSON(http.StatusOK, toCleanerProfileResponse(profile))
}

type updateCleanerProfileRequest struct {
	Bio              *string `json:"bio"`
	Phone            *string `json:"phone"`
	PixKey           *string `json:"pixKey"`
	RecipientName    *string `json:"recipientName"`
	RecipientAddress *string `json:"recipientAddress"`
}

// UpdateMyCleanerProfile edits bio, phone and payout details.
func (hb *HandlerBundle) UpdateMyCleanerProfile(c *gin.Context) {
	profile := hb.currentCleanerProfile(c)
	if profile == nil {
		return
	}

	var req updateCleanerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados de perfil inválidos"})
		return
	}

	updated, err := hb.Store.CleanerProfiles().UpdateDetails(c.Request.Context(), profile.ID, store.CleanerProfileUpdate{
		Bio:              req.Bio,
		Phone:            req.Phone,
		PixKey:           req.PixKey,
		RecipientName:    req.RecipientName,
		RecipientAddress: req.RecipientAddress,
	})
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCleanerProfileResponse(updated))
}

// MyBalance returns the cleaner's balance reconciliation snapshot.
func (hb *HandlerBundle) MyBalance(c *gin.Context) {
	profile := hb.currentCleanerProfile(c)
	if profile == nil {
		return
	}

	balance, err := hb.Store.Settlements().AvailableBalance(c.Request.Context(), profile.ID)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totalEarningsCents":   balance.TotalEarningsCents,
		"paidCents":            balance.PaidCents,
		"pendingApprovedCents": balance.PendingApprovedCents,
		"availableCents":       balance.AvailableCents,
	})
}

type rewardResponse struct {
	ID          string     `json:"id"`
	AmountCents int64      `json:"amountCents"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	BookingID   *string    `json:"bookingId,omitempty"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toRewardResponse(r *store.Reward) rewardResponse {
	return rewardResponse{
		ID:          r.ID,
		AmountCents: r.AmountCents,
		Reason:      r.Reason,
		Status:      string(r.Status),
		BookingID:   r.BookingID,
		PaidAt:      r.PaidAt,
		CreatedAt:   r.CreatedAt,
	}
}

// MyRewards lists the cleaner's streak rewards.
func (hb *HandlerBundle) MyRewards(c *gin.Context) {
	profile := hb.currentCleanerProfile(c)
	if profile == nil {
		return
	}

	var filters store.RewardFilters
	if status := c.Query("status"); status != "" {
		s := store.RewardStatus(status)
		filters.Status = &s
	}

	rewards, err := hb.Store.Rewards().GetByCleanerProfile(c.Request.Context(), profile.ID, filters)
	if err != nil {
		hb.renderError(c, err)
		return
	}

	responses := make([]rewardResponse, 0, len(rewards))
	for _, r := range rewards {
		responses = append(responses, toRewardResponse(r))
	}
	c.JSON(http.StatusOK, responses)
}

type withdrawalResponse struct {
	ID               string     `json:"id"`
	CleanerProfileID string     `json:"cleanerProfileId"`
	AmountCents      int64      `json:"amountCents"`
	Status           string     `json:"status"`
	PixKey           string     `json:"pixKey"`
	RecipientName    string     `json:"recipientName"`
	RecipientAddress string     `json:"recipientAddress"`
	ReceiptURL       *string    `json:"receiptUrl,omitempty"`
	RejectionNote    string     `json:"rejectionNote,omitempty"`
	ProcessedAt      *time.Time `json:"processedAt,omitempty"`
	RequestedAt      time.Time  `json:"requestedAt"`
}

func toWithdrawalResponse(w *store.WithdrawalRequest) withdrawalResponse {
	return withdrawalResponse{
		ID:               w.ID,
		CleanerProfileID: w.CleanerProfileID,
		AmountCents:      w.AmountCents,
		Status:           string(w.Status),
		PixKey:           w.PixKey,
		RecipientName:    w.RecipientName,
		RecipientAddress: w.RecipientAddress,
		ReceiptURL:       w.ReceiptURL,
		RejectionNote:    w.RejectionNote,
		ProcessedAt:      w.ProcessedAt,
		RequestedAt:      w.RequestedAt,
	}
}

func toWithdrawalResponses(withdrawals []*store.WithdrawalRequest) []withdrawalResponse {
	responses := make([]withdrawalResponse, 0, len(withdrawals))
	for _, w := range withdrawals {
		responses = append(responses, toWithdrawalResponse(w))
	}
	return responses
}

// MyWithdrawals lists the cleaner's withdrawal requests.
func (hb *HandlerBundle) MyWithdrawals(c *gin.Context) {
	profile := hb.currentCleanerProfile(c)
	if profile == nil {
		return
	}

	var filters store.WithdrawalFilters
	if status := c.Query("status"); status != "" {
		s := store.WithdrawalStatus(status)
		filters.Status = &s
	}

	withdrawals, err := hb.Store.Withdrawals().GetByCleanerProfile(c.Request.Context(), profile.ID, filters)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWithdrawalResponses(withdrawals))
}

type createWithdrawalRequest struct {
	AmountCents int64 `json:"amountCents" binding:"required"`
}

// CreateWithdrawal requests a payout. The amount and the daily window are
// validated transactionally against the cleaner's available balance.
func (hb *HandlerBundle) CreateWithdrawal(c *gin.Context) {
	currentUser := middleware.GetCurrentUser(c)
	profile := hb.currentCleanerProfile(c)
	if profile == nil {
		return
	}

	var req createWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valor de saque inválido"})
		return
	}

	ctx := c.Request.Context()
	withdrawal, err := hb.Store.Settlements().CreateWithdrawal(ctx, profile.ID, req.AmountCents, time.Now())
	if err != nil {
		hb.renderError(c, err)
		return
	}

	if hb.Notification != nil {
		if err := hb.Notification.NotifyWithdrawalRequested(ctx, withdrawal.ID, currentUser.DisplayName, withdrawal.AmountCents); err != nil {
			hb.Logger.Warn("failed to send withdrawal notification", zap.String("withdrawal_id", withdrawal.ID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, toWithdrawalResponse(withdrawal))
}

// ListCleaners lists active cleaner profiles for the booking flow.
func (hb *HandlerBundle) ListCleaners(c *gin.Context) {
	active := true
	profiles, err := hb.Store.CleanerProfiles().List(c.Request.Context(), store.CleanerProfileFilters{IsActive: &active})
	if err != nil {
		hb.renderError(c, err)
		return
	}

	responses := make([]cleanerProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		response := toCleanerProfileResponse(p)
		// Payout details are private to the cleaner and the back office.
		response.PixKey = nil
		response.RecipientName = ""
		response.RecipientAddress = ""
		responses = append(responses, response)
	}
	c.JSON(http.StatusOK, responses)
}
