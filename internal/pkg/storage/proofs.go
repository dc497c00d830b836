package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProofConfig holds R2 connection configuration for proof blobs
type ProofConfig struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	PublicURL       string // CDN URL prefix
}

// ProofStore keeps reaction-task proofs (screenshots) in Cloudflare R2.
// The ledger core never reads proof contents; it only hands out upload
// URLs and verifies that a submitted key actually exists.
type ProofStore struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	publicURL string
}

// NewProofStore creates the store.
// Returns nil if config is incomplete (proof verification disabled;
// submitted keys are then stored as opaque references).
func NewProofStore(cfg ProofConfig) *ProofStore {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" || cfg.BucketName == "" {
		log.Warn().Msg("R2 config incomplete, proof storage disabled")
		return nil
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: endpoint,
		}, nil
	})

	r2Config, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.AccessKeySecret,
			"",
		)),
		config.WithRegion("auto"),
		config.WithEndpointResolverWithOptions(r2Resolver),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create R2 client config")
		return nil
	}

	client := s3.NewFromConfig(r2Config)

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://pub-%s.r2.dev", cfg.AccountID)
	}

	log.Info().Str("bucket", cfg.BucketName).Msg("Proof storage initialized")

	return &ProofStore{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.BucketName,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// PresignResult contains presigned upload data. PublicURL is where the
// object will be readable once the client finishes the upload.
type PresignResult struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AllowedProofTypes for upload validation
var AllowedProofTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// MaxProofSize in bytes (10MB)
const MaxProofSize = 10 * 1024 * 1024

// PresignExpiry for upload URLs
const PresignExpiry = 15 * time.Minute

// PresignPut creates a presigned PUT URL for direct proof upload
func (s *ProofStore) PresignPut(ctx context.Context, userID int64, filename, contentType string, size int64) (*PresignResult, error) {
	if s == nil {
		return nil, fmt.Errorf("proof storage not configured")
	}

	if !AllowedProofTypes[contentType] {
		return nil, fmt.Errorf("invalid proof type: %s (allowed: jpeg, png, webp)", contentType)
	}
	if size <= 0 || size > MaxProofSize {
		return nil, fmt.Errorf("invalid proof size: %d bytes (max %d MB)", size, MaxProofSize/1024/1024)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("proofs/%s/%d/%s%s",
		time.Now().Format("2006/01"),
		userID,
		uuid.New().String(),
		ext,
	)

	presignedReq, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = PresignExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignResult{
		UploadURL: presignedReq.URL,
		Key:       key,
		PublicURL: s.PublicURL(key),
		ExpiresAt: time.Now().Add(PresignExpiry),
	}, nil
}

// Exists reports whether the proof object was actually uploaded
func (s *ProofStore) Exists(ctx context.Context, key string) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("proof storage not configured")
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, nil
	}
	return true, nil
}

// PublicURL returns the CDN URL for a stored proof
func (s *ProofStore) PublicURL(key string) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}
