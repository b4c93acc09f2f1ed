package handlers

import (
	"net/http"

	"limpeja-api/res/store"
	"limpeja-api/sys/http/middleware"

	"github.com/gin-gonic/gin"
)

type settingsResponse struct {
	FirstHourPriceCents      int64   `json:"firstHourPriceCents"`
	AdditionalHourPriceCents int64   `json:"additionalHourPriceCents"`
	ProductsPriceCents       int64   `json:"productsPriceCents"`
	AgencyFeePercentage      float64 `json:"agencyFeePercentage"`
	RewardBonusCents         int64   `json:"rewardBonusCents"`
	RewardThreshold          int     `json:"rewardThreshold"`
}

func toSettingsResponse(s *store.PriceSettings) settingsResponse {
	return settingsResponse{
		FirstHourPriceCents:      s.FirstHourPriceCents,
		AdditionalHourPriceCents: s.AdditionalHourPriceCents,
		ProductsPriceCents:       s.ProductsPriceCents,
		AgencyFeePercentage:      s.AgencyFeePercentage,
		RewardBonusCents:         s.RewardBonusCents,
		RewardThreshold:          s.RewardThreshold,
	}
}

// GetSettings returns the current price table and reward policy.
func (hb *HandlerBundle) GetSettings(c *gin.Context) {
	settings, err := hb.Store.Settings().Get(c.Request.Context())
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettingsResponse(settings))
}

type updateSettingsRequest struct {
	FirstHourPriceCents      *int64   `json:"firstHourPriceCents"`
	AdditionalHourPriceCents *int64   `json:"additionalHourPriceCents"`
	ProductsPriceCents       *int64   `json:"productsPriceCents"`
	AgencyFeePercentage      *float64 `json:"agencyFeePercentage"`
	RewardBonusCents         *int64   `json:"rewardBonusCents"`
	RewardThreshold          *int     `json:"rewardThreshold"`
}

// UpdateSettings applies an admin edit to the settings singleton. Bookings
// already created keep their price snapshot.
func (hb *HandlerBundle) UpdateSettings(c *gin.Context) {
	currentUser := middleware.GetCurrentUser(c)

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados de configuração inválidos"})
		return
	}

	settings, err := hb.Store.Settings().Update(c.Request.Context(), store.PriceSettingsUpdate{
		FirstHourPriceCents:      req.FirstHourPriceCents,
		AdditionalHourPriceCents: req.AdditionalHourPriceCents,
		ProductsPriceCents:       req.ProductsPriceCents,
		AgencyFeePercentage:      req.AgencyFeePercentage,
		RewardBonusCents:         req.RewardBonusCents,
		RewardThreshold:          req.RewardThreshold,
	}, currentUser.ID)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettingsResponse(settings))
}
