package handlers

import (
	"net/http"
	"time"

	"limpeja-api/res/storage"
	"limpeja-api/res/store"
	"limpeja-api/sys/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListWithdrawals lists all withdrawal requests for the back office.
func (hb *HandlerBundle) ListWithdrawals(c *gin.Context) {
	var filters store.WithdrawalFilters
	if status := c.Query("status"); status != "" {
		s := store.WithdrawalStatus(status)
		filters.Status = &s
	}

	withdrawals, err := hb.Store.Withdrawals().ListAll(c.Request.Context(), filters)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWithdrawalResponses(withdrawals))
}

// ApproveWithdrawal moves a pending withdrawal to approved.
func (hb *HandlerBundle) ApproveWithdrawal(c *gin.Context) {
	currentUser := middleware.GetCurrentUser(c)
	withdrawalID := c.Param("id")

	withdrawal, err := hb.Store.Settlements().TransitionWithdrawal(
		c.Request.Context(), withdrawalID, store.WithdrawalStatusApproved, currentUser.ID, nil, "")
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWithdrawalResponse(withdrawal))
}

type rejectWithdrawalRequest struct {
	Note string `json:"note"`
}

// RejectWithdrawal rejects a pending withdrawal, returning its amount to the
// cleaner's available balance.
func (hb *HandlerBundle) RejectWithdrawal(c *gin.Context) {
	currentUser := middleware.GetCurrentUser(c)
	withdrawalID := c.Param("id")

	var req rejectWithdrawalRequest
	// Note is optional, ignore bind errors for an empty body.
	_ = c.ShouldBindJSON(&req)

	withdrawal, err := hb.Store.Settlements().TransitionWithdrawal(
		c.Request.Context(), withdrawalID, store.WithdrawalStatusRejected, currentUser.ID, nil, req.Note)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWithdrawalResponse(withdrawal))
}

// MarkWithdrawalPaid finalizes an approved withdrawal. The transfer receipt
// comes as a multipart upload and is stored before the transition commits.
func (hb *HandlerBundle) MarkWithdrawalPaid(c *gin.Context) {
	currentUser := middleware.GetCurrentUser(c)
	withdrawalID := c.Param("id")
	ctx := c.Request.Context()

	var receiptURL *string
	file, header, err := c.Request.FormFile("receipt")
	if err == nil {
		defer file.Close()
		if hb.Storage == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Upload de comprovante indisponível"})
			return
		}
		objectPath := storage.BuildReceiptPath(withdrawalID, header.Filename)
		url, err := hb.Storage.UploadReceipt(ctx, file, header, objectPath)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Falha ao enviar comprovante: " + err.Error()})
			return
		}
		receiptURL = &url
	}

	withdrawal, err := hb.Store.Settlements().TransitionWithdrawal(
		ctx, withdrawalID, store.WithdrawalStatusPaid, currentUser.ID, receiptURL, "")
	if err != nil {
		hb.renderError(c, err)
		return
	}

	hb.onWithdrawalPaid(c, withdrawal)

	c.JSON(http.StatusOK, toWithdrawalResponse(withdrawal))
}

// onWithdrawalPaid emails the cleaner their payout confirmation. Failures are
// logged, the payout itself already committed.
func (hb *HandlerBundle) onWithdrawalPaid(c *gin.Context, withdrawal *store.WithdrawalRequest) {
	if hb.Mail == nil {
		return
	}
	ctx := c.Request.Context()

	profile, err := hb.Store.CleanerProfiles().Get(ctx, withdrawal.CleanerProfileID)
	if err != nil {
		hb.Logger.Warn("failed to load cleaner profile for payout email", zap.String("withdrawal_id", withdrawal.ID), zap.Error(err))
		return
	}
	cleaner, err := hb.Store.Users().Get(ctx, profile.UserID)
	if err != nil || cleaner == nil {
		hb.Logger.Warn("failed to load cleaner user for payout email", zap.String("withdrawal_id", withdrawal.ID), zap.Error(err))
		return
	}

	receiptLink := ""
	if withdrawal.ReceiptURL != nil && hb.Storage != nil {
		if signed, err := hb.Storage.GenerateSignedURL(ctx, *withdrawal.ReceiptURL, 7*24*time.Hour); err == nil {
			receiptLink = signed
		}
	}

	if err := hb.Mail.SendWithdrawalPaid(ctx, cleaner.Email, cleaner.DisplayName, withdrawal.AmountCents, receiptLink); err != nil {
		hb.Logger.Warn("failed to send payout email", zap.String("withdrawal_id", withdrawal.ID), zap.Error(err))
	}
}

// ListRewards lists all streak rewards for the back office.
func (hb *HandlerBundle) ListRewards(c *gin.Context) {
	var filters store.RewardFilters
	if status := c.Query("status"); status != "" {
		s := store.RewardStatus(status)
		filters.Status = &s
	}

	rewards, err := hb.Store.Rewards().ListAll(c.Request.Context(), filters)
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

// MarkRewardPaid settles a pending streak reward.
func (hb *HandlerBundle) MarkRewardPaid(c *gin.Context) {
	rewardID := c.Param("id")

	if err := hb.Store.Rewards().MarkPaid(c.Request.Context(), rewardID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Bônus não está pendente"})
		return
	}

	reward, err := hb.Store.Rewards().Get(c.Request.Context(), rewardID)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRewardResponse(reward))
}

// ListAllCleaners lists every cleaner profile, payout details included.
func (hb *HandlerBundle) ListAllCleaners(c *gin.Context) {
	profiles, err := hb.Store.CleanerProfiles().List(c.Request.Context(), store.CleanerProfileFilters{})
	if err != nil {
		hb.renderError(c, err)
		return
	}

	responses := make([]cleanerProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		responses = append(responses, toCleanerProfileResponse(p))
	}
	c.JSON(http.StatusOK, responses)
}

type setCleanerActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// SetCleanerActive toggles whether a cleaner can receive new bookings.
func (hb *HandlerBundle) SetCleanerActive(c *gin.Context) {
	profileID := c.Param("id")

	var req setCleanerActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	if err := hb.Store.CleanerProfiles().SetActive(c.Request.Context(), profileID, *req.IsActive); err != nil {
		hb.renderError(c, err)
		return
	}

	profile, err := hb.Store.CleanerProfiles().Get(c.Request.Context(), profileID)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCleanerProfileResponse(profile))
}
