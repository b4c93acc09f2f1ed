package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSService handles transfer receipt uploads to Google Cloud Storage
type GCSService struct {
	client     *storage.Client
	bucketName string
	projectID  string
}

// NewGCSService creates a new Google Cloud Storage service
func NewGCSService(ctx context.Context, bucketName, projectID, credentialsPath string) (*GCSService, error) {
	var client *storage.Client
	var err error

	if credentialsPath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsPath))
	} else {
		// Use default credentials (for GCE, Cloud Run, etc.)
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSService{
		client:     client,
		bucketName: bucketName,
		projectID:  projectID,
	}, nil
}

// Close closes the GCS client
func (s *GCSService) Close() error {
	return s.client.Close()
}

// Receipts are bank transfer proofs: small documents or photos only.
const maxReceiptSize = 10 * 1024 * 1024 // 10MB

var allowedReceiptExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// UploadReceipt uploads a payout receipt to Google Cloud Storage and returns
// its gs:// URL.
func (s *GCSService) UploadReceipt(ctx context.Context, file multipart.File, header *multipart.FileHeader, objectPath string) (string, error) {
	if header.Size > maxReceiptSize {
		return "", fmt.Errorf("file size %d exceeds maximum allowed size of %d bytes", header.Size, maxReceiptSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedReceiptExtensions[ext] {
		return "", fmt.Errorf("file type %s not allowed. Allowed types: PDF, JPG, PNG", ext)
	}

	obj := s.client.Bucket(s.bucketName).Object(objectPath)
	writer := obj.NewWriter(ctx)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	writer.ContentType = contentType

	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucketName, objectPath), nil
}

// GenerateSignedURL generates a signed URL for accessing a private receipt
func (s *GCSService) GenerateSignedURL(ctx context.Context, objectPath string, expiration time.Duration) (string, error) {
	// Remove gs:// prefix if present
	objectPath = strings.TrimPrefix(objectPath, fmt.Sprintf("gs://%s/", s.bucketName))

	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expiration),
	}

	url, err := s.client.Bucket(s.bucketName).SignedURL(objectPath, opts)
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}

	return url, nil
}

// DeleteFile deletes a file from Google Cloud Storage
func (s *GCSService) DeleteFile(ctx context.Context, objectPath string) error {
	// Remove gs:// prefix if present
	objectPath = strings.TrimPrefix(objectPath, fmt.Sprintf("gs://%s/", s.bucketName))

	obj := s.client.Bucket(s.bucketName).Object(objectPath)
	if err := obj.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// BuildReceiptPath builds the object path for a withdrawal receipt
func BuildReceiptPath(withdrawalID, filename string) string {
	ext := filepath.Ext(filename)
	timestamp := time.Now().Unix()
	return fmt.Sprintf("withdrawals/%s/receipt-%d%s", withdrawalID, timestamp, ext)
}
