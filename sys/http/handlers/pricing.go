package handlers

import (
	"errors"
	"net/http"

	"limpeja-api/res/pricing"

	"github.com/gin-gonic/gin"
)

type quoteRequest struct {
	Hours           int    `json:"hours" binding:"required"`
	ServiceType     string `json:"serviceType"`
	IncludeProducts bool   `json:"includeProducts"`
	CleanerCount    int    `json:"cleanerCount"`
}

type quoteResponse struct {
	Hours                int     `json:"hours"`
	ServiceType          string  `json:"serviceType"`
	IncludeProducts      bool    `json:"includeProducts"`
	CleanerCount         int     `json:"cleanerCount"`
	BasePriceCents       int64   `json:"basePriceCents"`
	AgencyFeeCents       int64   `json:"agencyFeeCents"`
	ProductsCents        int64   `json:"productsCents"`
	TotalCents           int64   `json:"totalCents"`
	CleanerEarningsCents int64   `json:"cleanerEarningsCents"`
	Multiplier           float64 `json:"multiplier"`
}

// Quote computes a price breakdown from the current settings without
// creating anything. Public: the booking form calls it on every change.
func (hb *HandlerBundle) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parâmetros de orçamento inválidos"})
		return
	}
	if req.CleanerCount == 0 {
		req.CleanerCount = 1
	}
	serviceType := pricing.ServiceType(req.ServiceType)
	if req.ServiceType == "" {
		serviceType = pricing.ServiceTypeStandard
	}

	settings, err := hb.Store.Settings().Get(c.Request.Context())
	if err != nil {
		hb.renderError(c, err)
		return
	}

	breakdown, err := pricing.Calculate(pricing.Quote{
		Hours:           req.Hours,
		ServiceType:     serviceType,
		IncludeProducts: req.IncludeProducts,
		CleanerCount:    req.CleanerCount,
	}, settings.Pricing())
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidHours) || errors.Is(err, pricing.ErrInvalidCleanerCount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		hb.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, quoteResponse{
		Hours:                req.Hours,
		ServiceType:          string(serviceType),
		IncludeProducts:      req.IncludeProducts,
		CleanerCount:         req.CleanerCount,
		BasePriceCents:       breakdown.BasePriceCents,
		AgencyFeeCents:       breakdown.AgencyFeeCents,
		ProductsCents:        breakdown.ProductsCents,
		TotalCents:           breakdown.TotalCents,
		CleanerEarningsCents: breakdown.CleanerEarningsCents,
		Multiplier:           pricing.Multiplier(serviceType),
	})
}
