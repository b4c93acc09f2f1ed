package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"limpeja-api/res/notification"

	"go.uber.org/zap"
)

// notificationService implements the NotificationService interface
type notificationService struct {
	webhookURL string
	httpClient *http.Client
	logger     *zap.Logger
}

// slackMessage represents the structure of a Slack message
type slackMessage struct {
	Text string `json:"text"`
}

// New creates a new NotificationService instance
func New(webhookURL string, timeout time.Duration, logger *zap.Logger) notification.NotificationService {
	return &notificationService{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// NotifyNewUserSignup sends a notification to Slack when a new user signs up
func (s *notificationService) NotifyNewUserSignup(ctx context.Context, email, displayName, userID string) error {
	// If webhook URL is not configured, skip notification silently
	if s.webhookURL == "" {
		s.logger.Debug("slack webhook URL not configured, skipping signup notification")
		return nil
	}

	message := slackMessage{
		Text: fmt.Sprintf(":tada: New user signup: %s (%s) - User ID: %s", email, displayName, userID),
	}

	return s.sendToSlack(ctx, message)
}

// NotifyWithdrawalRequested alerts the operations channel about a pending payout
func (s *notificationService) NotifyWithdrawalRequested(ctx context.Context, withdrawalID, cleanerName string, amountCents int64) error {
	if s.webhookURL == "" {
		s.logger.Debug("slack webhook URL not configured, skipping withdrawal notification")
		return nil
	}

	message := slackMessage{
		Text: fmt.Sprintf(":moneybag: Withdrawal requested\n*Cleaner:* %s\n*Amount:* R$ %.2f\n*Request ID:* %s",
			cleanerName, float64(amountCents)/100, withdrawalID),
	}

	return s.sendToSlack(ctx, message)
}

// NotifyRewardEarned announces a five-star streak bonus
func (s *notificationService) NotifyRewardEarned(ctx context.Context, cleanerName string, amountCents int64, streak int) error {
	if s.webhookURL == "" {
		s.logger.Debug("slack webhook URL not configured, skipping reward notification")
		return nil
	}

	message := slackMessage{
		Text: fmt.Sprintf(":star: %s earned a R$ %.2f bonus after %d consecutive five-star ratings",
			cleanerName, float64(amountCents)/100, streak),
	}

	return s.sendToSlack(ctx, message)
}

// sendToSlack is a helper method to send messages to Slack
func (s *notificationService) sendToSlack(ctx context.Context, message slackMessage) error {
	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create slack request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack API returned non-OK status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
