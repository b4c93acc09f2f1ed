package sidemail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	netmail "net/mail"
	"net/url"
	"strings"
	"time"

	"limpeja-api/res/mail"

	"go.uber.org/zap"
)

// SidemailService implements the MailService interface using Sidemail API
type SidemailService struct {
	apiKey         string
	apiBaseURL     string
	signUpsGroupId string
	fromAddress    string
	logger         *zap.Logger
	httpClient     *http.Client
}

// New creates a new Sidemail service instance
func New(apiKey, apiURL, signUpsGroupId, fromAddress string, timeout time.Duration, logger *zap.Logger) mail.MailService {
	return &SidemailService{
		apiKey:         apiKey,
		apiBaseURL:     apiURL,
		signUpsGroupId: signUpsGroupId,
		fromAddress:    fromAddress,
		logger:         logger,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

// SidemailContactPayload represents the payload for creating/updating contacts via Sidemail API
type SidemailContactPayload struct {
	EmailAddress string                 `json:"emailAddress"`
	Identifier   string                 `json:"identifier"`
	IsSubscribed bool                   `json:"isSubscribed"`
	Groups       []string               `json:"groups,omitempty"`
	CustomProps  map[string]interface{} `json:"customProps,omitempty"`
}

// SidemailEmailPayload represents the payload for sending a transactional email
type SidemailEmailPayload struct {
	ToAddress     string                 `json:"toAddress"`
	FromAddress   string                 `json:"fromAddress"`
	FromName      string                 `json:"fromName,omitempty"`
	TemplateName  string                 `json:"templateName"`
	TemplateProps map[string]interface{} `json:"templateProps,omitempty"`
}

// validateEmail validates an email address format using Go's built-in mail parser.
func (s *SidemailService) validateEmail(email string) error {
	_, err := netmail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email address: %w", err)
	}
	return nil
}

// sanitizeInput removes control characters and null bytes so user-supplied
// values cannot break headers or logs.
func (s *SidemailService) sanitizeInput(input string) string {
	cleaned := strings.ReplaceAll(input, "\x00", "")
	cleaned = strings.ReplaceAll(cleaned, "\r", "")
	cleaned = strings.ReplaceAll(cleaned, "\n", "")
	return strings.TrimSpace(cleaned)
}

// RegisterUser registers a user with Sidemail using the contacts API.
// If no API key is configured, this method returns nil (graceful degradation).
func (s *SidemailService) RegisterUser(ctx context.Context, userID, email, displayName string) error {
	if s.apiKey == "" {
		s.logger.Debug("sidemail API key not configured, skipping user registration")
		return nil
	}

	if err := s.validateEmail(email); err != nil {
		return fmt.Errorf("user registration failed: %w", err)
	}

	userID = s.sanitizeInput(userID)
	email = s.sanitizeInput(email)
	displayName = s.sanitizeInput(displayName)

	payload := SidemailContactPayload{
		EmailAddress: email,
		Identifier:   userID,
		IsSubscribed: true,
		Groups:       []string{s.signUpsGroupId},
		CustomProps: map[string]interface{}{
			"name":   displayName,
			"userID": userID,
		},
	}

	return s.post(ctx, "/contacts", payload, fmt.Sprintf("user registration for %s", userID))
}

// RemoveUserByEmail removes a user from Sidemail using the contacts API.
// If no API key is configured, this method returns nil (graceful degradation).
func (s *SidemailService) RemoveUserByEmail(ctx context.Context, email string) error {
	if s.apiKey == "" {
		s.logger.Debug("sidemail API key not configured, skipping user removal")
		return nil
	}

	if err := s.validateEmail(email); err != nil {
		return fmt.Errorf("user removal failed: %w", err)
	}
	email = s.sanitizeInput(email)

	encodedEmail := url.QueryEscape(email)
	requestURL := fmt.Sprintf("%s/contacts/%s", s.apiBaseURL, encodedEmail)
	req, err := http.NewRequestWithContext(ctx, "DELETE", requestURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return s.handleResponse(resp, fmt.Sprintf("user removal for %s", email))
}

// SendWithdrawalPaid sends the payout confirmation email with the receipt link.
// If no API key is configured, this method returns nil (graceful degradation).
func (s *SidemailService) SendWithdrawalPaid(ctx context.Context, email, displayName string, amountCents int64, receiptURL string) error {
	if s.apiKey == "" {
		s.logger.Debug("sidemail API key not configured, skipping withdrawal paid email")
		return nil
	}

	if err := s.validateEmail(email); err != nil {
		return fmt.Errorf("withdrawal paid email failed: %w", err)
	}

	payload := SidemailEmailPayload{
		ToAddress:    s.sanitizeInput(email),
		FromAddress:  s.fromAddress,
		FromName:     "LimpeJá",
		TemplateName: "withdrawal-paid",
		TemplateProps: map[string]interface{}{
			"name":       s.sanitizeInput(displayName),
			"amount":     fmt.Sprintf("R$ %.2f", float64(amountCents)/100),
			"receiptUrl": receiptURL,
		},
	}

	return s.post(ctx, "/email/send", payload, fmt.Sprintf("withdrawal paid email to %s", email))
}

// post marshals the payload and sends it to the given Sidemail endpoint
func (s *SidemailService) post(ctx context.Context, path string, payload interface{}, operation string) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiBaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return s.handleResponse(resp, operation)
}

// handleResponse validates a Sidemail API response, truncating the body so a
// hostile response cannot flood the logs.
func (s *SidemailService) handleResponse(resp *http.Response, operation string) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		const maxLength = 200
		sanitized := s.sanitizeInput(string(body))
		if len(sanitized) > maxLength {
			sanitized = sanitized[:maxLength] + "..."
		}
		return fmt.Errorf("sidemail API returned status %d: %s", resp.StatusCode, sanitized)
	}

	s.logger.Debug("sidemail operation succeeded",
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode))
	return nil
}
