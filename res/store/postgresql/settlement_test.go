package postgresql

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"limpeja-api/res/pricing"
	"limpeja-api/res/settlement"
	"limpeja-api/res/store"

	"github.com/rs/xid"
)

// These tests run against a real database and are skipped when
// DATABASE_POSTGRES_URL is not set.

func setupTestStore(t *testing.T) *storeImpl {
	t.Helper()
	databaseURL := os.Getenv("DATABASE_POSTGRES_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_POSTGRES_URL not set")
	}
	s, err := Connect(databaseURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

// createTestCleaner inserts a user + cleaner profile pair with payout details
// already filled in, so withdrawal tests only fail on the rule under test.
func createTestCleaner(t *testing.T, s *storeImpl) *store.CleanerProfile {
	t.Helper()
	ctx := context.Background()

	userID := xid.New().String()
	hash := "not-a-real-hash"
	user, err := s.Users().Create(ctx, userID, "Maria Teste", userID+"@example.com", store.UserRoleCleaner, &hash, nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	pixKey := "maria@example.com"
	profile := &store.CleanerProfile{
		ID:               xid.New().String(),
		UserID:           user.ID,
		PixKey:           &pixKey,
		RecipientName:    "Maria Teste",
		RecipientAddress: "Rua das Flores 100, São Paulo",
		IsActive:         true,
	}
	if err := s.CleanerProfiles().Create(ctx, profile); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

func createTestBooking(t *testing.T, s *storeImpl, profile *store.CleanerProfile, status store.BookingStatus) *store.Booking {
	t.Helper()
	ctx := context.Background()

	clientID := xid.New().String()
	hash := "not-a-real-hash"
	client, err := s.Users().Create(ctx, clientID, "João Cliente", clientID+"@example.com", store.UserRoleClient, &hash, nil)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	booking := &store.Booking{
		ID:                   xid.New().String(),
		ClientID:             client.ID,
		CleanerProfileID:     profile.ID,
		Hours:                3,
		ServiceType:          pricing.ServiceTypeStandard,
		CleanerCount:         1,
		ScheduledDate:        time.Now().AddDate(0, 0, 1),
		ScheduledTime:        "09:00",
		Address:              "Av. Paulista 1000, São Paulo",
		BasePriceCents:       8000,
		AgencyFeeCents:       3200,
		TotalPriceCents:      11200,
		CleanerEarningsCents: 8000,
		Status:               status,
	}
	if err := s.Bookings().Create(ctx, booking); err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return booking
}

func TestCompleteBookingCreditsOnce(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	profile := createTestCleaner(t, s)
	booking := createTestBooking(t, s, profile, store.BookingStatusConfirmed)

	completed, err := s.Settlements().CompleteBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != store.BookingStatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("expected completed booking, got status %s", completed.Status)
	}

	updated, err := s.CleanerProfiles().Get(ctx, profile.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if updated.TotalEarningsCents != 8000 || updated.CompletedBookings != 1 {
		t.Fatalf("expected earnings 8000 / 1 completion, got %d / %d", updated.TotalEarningsCents, updated.CompletedBookings)
	}

	var conflict *settlement.ConflictError
	if _, err := s.Settlements().CompleteBooking(ctx, booking.ID); !errors.As(err, &conflict) {
		t.Fatalf("second complete should conflict, got %v", err)
	}
	updated, _ = s.CleanerProfiles().Get(ctx, profile.ID)
	if updated.TotalEarningsCents != 8000 {
		t.Fatalf("earnings credited twice: %d", updated.TotalEarningsCents)
	}
}

func TestRateBookingRejectsSecondRating(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	profile := createTestCleaner(t, s)
	booking := createTestBooking(t, s, profile, store.BookingStatusConfirmed)
	if _, err := s.Settlements().CompleteBooking(ctx, booking.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	outcome, err := s.Settlements().RateBooking(ctx, booking.ID, 5, "Excelente!")
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if outcome.Profile.ConsecutiveFiveStars != 1 || outcome.Profile.AverageRating != 5.0 {
		t.Fatalf("ledger not updated: streak=%d avg=%v", outcome.Profile.ConsecutiveFiveStars, outcome.Profile.AverageRating)
	}

	var conflict *settlement.ConflictError
	if _, err := s.Settlements().RateBooking(ctx, booking.ID, 1, "mudei de ideia"); !errors.As(err, &conflict) {
		t.Fatalf("second rating should conflict, got %v", err)
	}
}

func TestConsecutiveFiveStarRatingsEmitReward(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	profile := createTestCleaner(t, s)
	settings, err := s.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}

	var reward *store.Reward
	for i := 0; i < settings.RewardThreshold; i++ {
		booking := createTestBooking(t, s, profile, store.BookingStatusConfirmed)
		if _, err := s.Settlements().CompleteBooking(ctx, booking.ID); err != nil {
			t.Fatalf("complete %d: %v", i, err)
		}
		outcome, err := s.Settlements().RateBooking(ctx, booking.ID, 5, "")
		if err != nil {
			t.Fatalf("rate %d: %v", i, err)
		}
		if outcome.Reward != nil {
			reward = outcome.Reward
		}
	}

	if reward == nil {
		t.Fatal("expected a reward after threshold consecutive five-star ratings")
	}
	if reward.AmountCents != settings.RewardBonusCents || reward.Status != store.RewardStatusPending {
		t.Fatalf("unexpected reward: %+v", reward)
	}

	updated, _ := s.CleanerProfiles().Get(ctx, profile.ID)
	if updated.ConsecutiveFiveStars != 0 || updated.RewardsEarned != 1 {
		t.Fatalf("streak should reset after grant: streak=%d rewards=%d", updated.ConsecutiveFiveStars, updated.RewardsEarned)
	}
}

func TestWithdrawalLifecycleKeepsBalanceConsistent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	profile := createTestCleaner(t, s)
	booking := createTestBooking(t, s, profile, store.BookingStatusConfirmed)
	if _, err := s.Settlements().CompleteBooking(ctx, booking.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	inWindow := time.Date(2026, 3, 10, 23, 15, 0, 0, time.Local)
	beforeWindow := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)

	var policyErr *settlement.PolicyViolationError
	if _, err := s.Settlements().CreateWithdrawal(ctx, profile.ID, 5000, beforeWindow); !errors.As(err, &policyErr) {
		t.Fatalf("expected window violation before 23h, got %v", err)
	}

	withdrawal, err := s.Settlements().CreateWithdrawal(ctx, profile.ID, 5000, inWindow)
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}
	if withdrawal.Status != store.WithdrawalStatusPending || withdrawal.PixKey == "" {
		t.Fatalf("unexpected withdrawal: %+v", withdrawal)
	}

	balance, err := s.Settlements().AvailableBalance(ctx, profile.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.AvailableCents != 3000 || balance.PendingApprovedCents != 5000 {
		t.Fatalf("expected 3000 available / 5000 tied up, got %+v", balance)
	}

	var insufficient *settlement.InsufficientBalanceError
	if _, err := s.Settlements().CreateWithdrawal(ctx, profile.ID, 4000, inWindow); !errors.As(err, &insufficient) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	adminID := xid.New().String()
	hash := "not-a-real-hash"
	admin, err := s.Users().Create(ctx, adminID, "Admin", adminID+"@example.com", store.UserRoleAdmin, &hash, nil)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	approved, err := s.Settlements().TransitionWithdrawal(ctx, withdrawal.ID, store.WithdrawalStatusApproved, admin.ID, nil, "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != store.WithdrawalStatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}

	// Approval keeps the funds tied up.
	balance, _ = s.Settlements().AvailableBalance(ctx, profile.ID)
	if balance.AvailableCents != 3000 {
		t.Fatalf("approval changed available balance: %+v", balance)
	}

	var conflict *settlement.ConflictError
	if _, err := s.Settlements().TransitionWithdrawal(ctx, withdrawal.ID, store.WithdrawalStatusRejected, admin.ID, nil, "tarde demais"); !errors.As(err, &conflict) {
		t.Fatalf("approved withdrawal must not be rejectable, got %v", err)
	}

	receipt := "https://storage.example.com/receipts/comprovante.pdf"
	paid, err := s.Settlements().TransitionWithdrawal(ctx, withdrawal.ID, store.WithdrawalStatusPaid, admin.ID, &receipt, "")
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.ReceiptURL == nil || *paid.ReceiptURL != receipt {
		t.Fatalf("receipt not stored: %+v", paid)
	}

	// Paid withdrawals stay deducted from the available balance.
	balance, _ = s.Settlements().AvailableBalance(ctx, profile.ID)
	if balance.AvailableCents != 3000 || balance.PaidCents != 5000 {
		t.Fatalf("expected 3000 available / 5000 paid, got %+v", balance)
	}
}

func TestRejectedWithdrawalReturnsFunds(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	profile := createTestCleaner(t, s)
	booking := createTestBooking(t, s, profile, store.BookingStatusConfirmed)
	if _, err := s.Settlements().CompleteBooking(ctx, booking.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	inWindow := time.Date(2026, 3, 10, 23, 30, 0, 0, time.Local)
	withdrawal, err := s.Settlements().CreateWithdrawal(ctx, profile.ID, 8000, inWindow)
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	balance, _ := s.Settlements().AvailableBalance(ctx, profile.ID)
	if balance.AvailableCents != 0 {
		t.Fatalf("expected zero available, got %+v", balance)
	}

	adminID := xid.New().String()
	hash := "not-a-real-hash"
	admin, err := s.Users().Create(ctx, adminID, "Admin", adminID+"@example.com", store.UserRoleAdmin, &hash, nil)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	rejected, err := s.Settlements().TransitionWithdrawal(ctx, withdrawal.ID, store.WithdrawalStatusRejected, admin.ID, nil, "chave PIX inválida")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.RejectionNote != "chave PIX inválida" {
		t.Fatalf("rejection note not stored: %+v", rejected)
	}

	balance, _ = s.Settlements().AvailableBalance(ctx, profile.ID)
	if balance.AvailableCents != 8000 || balance.PendingApprovedCents != 0 {
		t.Fatalf("rejection should return funds, got %+v", balance)
	}
}
