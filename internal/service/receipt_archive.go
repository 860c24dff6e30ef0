package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog/log"

	cfg "github.com/wweverma1/pocket-ninja-backend/internal/config"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ReceiptArchive stores uploaded receipt images in S3 with SigV4-signed PUTs.
type ReceiptArchive struct {
	httpClient *http.Client
	bucket     string
	region     string
	endpoint   string
	signer     *v4.Signer
	creds      aws.CredentialsProvider
	now        func() time.Time
}

// NewReceiptArchive creates a ReceiptArchive. Static keys in s3Cfg take
// precedence over the default AWS credential chain.
func NewReceiptArchive(ctx context.Context, s3Cfg *cfg.S3Config) (*ReceiptArchive, error) {
	if s3Cfg == nil || s3Cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is not configured")
	}

	var creds aws.CredentialsProvider
	if s3Cfg.AccessKeyID != "" && s3Cfg.SecretAccessKey != "" {
		static := aws.Credentials{
			AccessKeyID:     s3Cfg.AccessKeyID,
			SecretAccessKey: s3Cfg.SecretAccessKey,
			Source:          "S3Config",
		}
		creds = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return static, nil
		})
	} else {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(s3Cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		creds = awsCfg.Credentials
	}

	return &ReceiptArchive{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		bucket:     s3Cfg.Bucket,
		region:     s3Cfg.Region,
		endpoint:   strings.TrimSuffix(s3Cfg.Endpoint, "/"),
		signer:     v4.NewSigner(),
		creds:      creds,
		now:        time.Now,
	}, nil
}

// Store uploads a receipt image and returns its object URL.
func (a *ReceiptArchive) Store(ctx context.Context, userID, receiptID string, image []byte, mimeType string) (string, error) {
	key := fmt.Sprintf("receipts/%s/%s%s", userID, receiptID, imageExtensions[mimeType])
	return a.uploadFile(ctx, key, image, mimeType)
}

func (a *ReceiptArchive) uploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	url := a.ObjectURL(key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	payloadHash := sha256Hex(data)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)

	creds, err := a.creds.Retrieve(ctx)
	if err != nil {
		return "", fmt.Errorf("retrieve credentials: %w", err)
	}
	if err := a.signer.SignHTTP(ctx, creds, req, payloadHash, "s3", a.region, a.now()); err != nil {
		return "", fmt.Errorf("sign request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		log.Error().
			Str("key", key).
			Int("status", resp.StatusCode).
			Str("response", string(body)).
			Msg("S3 upload failed")
		return "", fmt.Errorf("S3 upload failed with status %d", resp.StatusCode)
	}

	log.Debug().Str("key", key).Msg("Receipt image archived")
	return url, nil
}

// ObjectURL returns the URL of an object. A custom endpoint uses path-style addressing.
func (a *ReceiptArchive) ObjectURL(key string) string {
	if a.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", a.endpoint, a.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, key)
}

func sha256Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
