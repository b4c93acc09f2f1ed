package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"limpeja-api/res/pricing"
	"limpeja-api/res/store"
	"limpeja-api/sys/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type createBookingRequest struct {
	CleanerProfileID string `json:"cleanerProfileId" binding:"required"`
	Hours            int    `json:"hours" binding:"required"`
	ServiceType      string `json:"serviceType"`
	IncludeProducts  bool   `json:"includeProducts"`
	CleanerCount     int    `json:"cleanerCount"`
	ScheduledDate    string `json:"scheduledDate" binding:"required"` // YYYY-MM-DD
	ScheduledTime    string `json:"scheduledTime" binding:"required"` // HH:MM
	Address          string `json:"address" binding:"required"`
	ClientNotes      string `json:"clientNotes"`
}

type bookingResponse struct {
	ID                   string     `json:"id"`
	ClientID             string     `json:"clientId"`
	CleanerProfileID     string     `json:"cleanerProfileId"`
	Hours                int        `json:"hours"`
	ServiceType          string     `json:"serviceType"`
	IncludeProducts      bool       `json:"includeProducts"`
	CleanerCount         int        `json:"cleanerCount"`
	ScheduledDate        string     `json:"scheduledDate"`
	ScheduledTime        string     `json:"scheduledTime"`
	Address              string     `json:"address"`
	ClientNotes          string     `json:"clientNotes,omitempty"`
	BasePriceCents       int64      `json:"basePriceCents"`
	AgencyFeeCents       int64      `json:"agencyFeeCents"`
	ProductsCents        int64      `json:"productsCents"`
	TotalPriceCents      int64      `json:"totalPriceCents"`
	CleanerEarningsCents int64      `json:"cleanerEarningsCents"`
	Status               string     `json:"status"`
	Rating               *int       `json:"rating,omitempty"`
	RatingComment        string     `json:"ratingComment,omitempty"`
	ConfirmedAt          *time.Time `json:"confirmedAt,omitempty"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
	CancelledAt          *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

func toBookingResponse(b *store.Booking) bookingResponse {
	return bookingResponse{
		ID:                   b.ID,
		ClientID:             b.ClientID,
		CleanerProfileID:     b.CleanerProfileID,
		Hours:                b.Hours,
		ServiceType:          string(b.ServiceType),
		IncludeProducts:      b.IncludeProducts,
		CleanerCount:         b.CleanerCount,
		ScheduledDate:        b.ScheduledDate.Format("2006-01-02"),
		ScheduledTime:        b.ScheduledTime,
		Address:              b.Address,
		ClientNotes:          b.ClientNotes,
		BasePriceCents:       b.BasePriceCents,
		AgencyFeeCents:       b.AgencyFeeCents,
		ProductsCents:        b.ProductsCents,
		TotalPriceCents:      b.TotalPriceCents,
		CleanerEarningsCents: b.CleanerEarningsCents,
		Status:               string(b.Status),
		Rating:               b.Rating,
		RatingComment:        b.RatingComment,
		ConfirmedAt:          b.ConfirmedAt,
		CompletedAt:          b.CompletedAt,
		CancelledAt:          b.CancelledAt,
		CreatedAt:            b.CreatedAt,
	}
}

func toBookingResponses(bookings []*store.Booking) []bookingResponse {
	responses := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, toBookingResponse(b))
	}
	return responses
}

// CreateBooking prices the request against the current settings and stores
// the booking with the full breakdown snapshotted.
func (hb *HandlerBundle) CreateBooking(c *gin.Context) {
	currentUser := middleware.GetCurrentUser(c)

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados de agendamento inválidos"})
		return
	}
	if req.CleanerCount == 0 {
		req.CleanerCount = 1
	}
	serviceType := pricing.ServiceType(req.ServiceType)
	if req.ServiceType == "" {
		serviceType = pricing.ServiceTypeStandard
	}

	scheduledDate, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Data inválida, use o formato AAAA-MM-DD"})
		return
	}
	if _, err := time.Parse("15:04", req.ScheduledTime); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Horário inválido, use o formato HH:MM"})
		return
	}

	ctx := c.Request.Context()

	profile, err := hb.Store.CleanerProfiles().Get(ctx, req.CleanerProfileID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profissional não encontrado"})
		return
	}
	if !profile.IsActive {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Profissional indisponível no momento"})
		return
	}

	settings, err := hb.Store.Settings().Get(ctx)
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

	booking := &store.Booking{
		ID:                   fmt.Sprintf("booking_%s", uuid.New().String()),
		ClientID:             currentUser.ID,
		CleanerProfileID:     profile.ID,
		Hours:                req.Hours,
		ServiceType:          serviceType,
		IncludeProducts:      req.IncludeProducts,
		CleanerCount:         req.CleanerCount,
		ScheduledDate:        scheduledDate,
		ScheduledTime:        req.ScheduledTime,
		Address:              req.Address,
		ClientNotes:          req.ClientNotes,
		BasePriceCents:       breakdown.BasePriceCents,
		AgencyFeeCents:       breakdown.AgencyFeeCents,
		ProductsCents:        breakdown.ProductsCents,
		TotalPriceCents:      breakdown.TotalCents,
		CleanerEarningsCents: breakdown.CleanerEarningsCents,
		Status:               store.BookingStatusPending,
	}
	if err := hb.Store.Bookings().Create(ctx, booking); err != nil {
		hb.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

// MyBookings lists the authenticated client's bookings.
func (hb *HandlerBundle) MyBookings(c *gin.Context) {
	currentUser := middleware.GetCurrentUser(c)

	filters := bookingFiltersFromQuery(c)
	bookings, err := hb.Store.Bookings().GetByClient(c.Request.Context(), currentUser.ID, filters)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

// AssignedBookings lists the bookings assigned to the authenticated cleaner.
func (hb *HandlerBundle) AssignedBookings(c *gin.Context) {
	currentUser := middleware.GetCurrentUser(c)

	profile, err := hb.Store.CleanerProfiles().GetByUserID(c.Request.Context(), currentUser.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Perfil de profissional não encontrado"})
		return
	}

	filters := bookingFiltersFromQuery(c)
	bookings, err := hb.Store.Bookings().GetByCleanerProfile(c.Request.Context(), profile.ID, filters)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

// ConfirmBooking lets the assigned cleaner accept a pending booking.
func (hb *HandlerBundle) ConfirmBooking(c *gin.Context) {
	bookingID := c.Param("id")

	booking, err := hb.loadBookingForCleaner(c, bookingID)
	if booking == nil {
		return
	}

	if err = hb.Store.Bookings().Confirm(c.Request.Context(), bookingID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Agendamento não está mais pendente"})
		return
	}

	updated, err := hb.Store.Bookings().Get(c.Request.Context(), bookingID)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

// CompleteBooking settles a booking: marks it done and credits the cleaner.
func (hb *HandlerBundle) CompleteBooking(c *gin.Context) {
	bookingID := c.Param("id")

	booking := hb.mustLoadBookingForCleanerOrAdmin(c, bookingID)
	if booking == nil {
		return
	}

	completed, err := hb.Store.Settlements().CompleteBooking(c.Request.Context(), bookingID)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(completed))
}

// CancelBooking cancels a booking that has not been completed. Allowed for
// the booking's client and for admins.
func (hb *HandlerBundle) CancelBooking(c *gin.Context) {
	currentUser := middleware.GetCurrentUser(c)
	bookingID := c.Param("id")

	booking, err := hb.Store.Bookings().Get(c.Request.Context(), bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agendamento não encontrado"})
		return
	}
	if booking.ClientID != currentUser.ID && !currentUser.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acesso negado"})
		return
	}

	if err := hb.Store.Bookings().Cancel(c.Request.Context(), bookingID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Agendamento não pode mais ser cancelado"})
		return
	}

	updated, err := hb.Store.Bookings().Get(c.Request.Context(), bookingID)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

type rateBookingRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// RateBooking records the client's rating and folds it into the cleaner's
// ledger, possibly emitting a streak reward.
func (hb *HandlerBundle) RateBooking(c *gin.Context) {
	currentUser := middleware.GetCurrentUser(c)
	bookingID := c.Param("id")

	var req rateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avaliação inválida"})
		return
	}

	ctx := c.Request.Context()
	booking, err := hb.Store.Bookings().Get(ctx, bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agendamento não encontrado"})
		return
	}
	if booking.ClientID != currentUser.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Apenas o cliente do agendamento pode avaliá-lo"})
		return
	}

	outcome, err := hb.Store.Settlements().RateBooking(ctx, bookingID, req.Rating, req.Comment)
	if err != nil {
		hb.renderError(c, err)
		return
	}

	if outcome.Reward != nil && hb.Notification != nil {
		cleanerName := ""
		if cleaner, err := hb.Store.Users().Get(ctx, outcome.Profile.UserID); err == nil && cleaner != nil {
			cleanerName = cleaner.DisplayName
		}
		settings, err := hb.Store.Settings().Get(ctx)
		streak := 0
		if err == nil {
			streak = settings.RewardThreshold
		}
		if err := hb.Notification.NotifyRewardEarned(ctx, cleanerName, outcome.Reward.AmountCents, streak); err != nil {
			hb.Logger.Warn("failed to send reward notification", zap.String("reward_id", outcome.Reward.ID), zap.Error(err))
		}
	}

	response := gin.H{
		"booking":              toBookingResponse(outcome.Booking),
		"averageRating":        outcome.Profile.AverageRating,
		"consecutiveFiveStars": outcome.Profile.ConsecutiveFiveStars,
	}
	if outcome.Reward != nil {
		response["reward"] = toRewardResponse(outcome.Reward)
	}
	c.JSON(http.StatusOK, response)
}

// ListBookings lists every booking (admin only).
func (hb *HandlerBundle) ListBookings(c *gin.Context) {
	filters := bookingFiltersFromQuery(c)
	bookings, err := hb.Store.Bookings().ListAll(c.Request.Context(), filters)
	if err != nil {
		hb.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

// loadBookingForCleaner fetches a booking and verifies the current user is
// its assigned cleaner. Writes the error response itself and returns nil on
// failure.
func (hb *HandlerBundle) loadBookingForCleaner(c *gin.Context, bookingID string) (*store.Booking, error) {
	currentUser := middleware.GetCurrentUser(c)

	booking, err := hb.Store.Bookings().Get(c.Request.Context(), bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agendamento não encontrado"})
		return nil, err
	}

	profile, err := hb.Store.CleanerProfiles().GetByUserID(c.Request.Context(), currentUser.ID)
	if err != nil || profile.ID != booking.CleanerProfileID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acesso negado"})
		return nil, err
	}
	return booking, nil
}

// mustLoadBookingForCleanerOrAdmin is loadBookingForCleaner with an admin
// bypass, used for settlement actions the back office can also trigger.
func (hb *HandlerBundle) mustLoadBookingForCleanerOrAdmin(c *gin.Context, bookingID string) *store.Booking {
	currentUser := middleware.GetCurrentUser(c)

	booking, err := hb.Store.Bookings().Get(c.Request.Context(), bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agendamento não encontrado"})
		return nil
	}
	if currentUser.IsAdmin() {
		return booking
	}

	profile, err := hb.Store.CleanerProfiles().GetByUserID(c.Request.Context(), currentUser.ID)
	if err != nil || profile.ID != booking.CleanerProfileID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acesso negado"})
		return nil
	}
	return booking
}

func bookingFiltersFromQuery(c *gin.Context) store.BookingFilters {
	var filters store.BookingFilters
	if status := c.Query("status"); status != "" {
		s := store.BookingStatus(status)
		filters.Status = &s
	}
	if serviceType := c.Query("serviceType"); serviceType != "" {
		st := pricing.ServiceType(serviceType)
		filters.ServiceType = &st
	}
	return filters
}
