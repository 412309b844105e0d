package avatars

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/projecthub-dev/projecthub-backend/config"
)

var (
	ErrUnsupportedType = errors.New("content type must be image/jpeg, image/png or image/webp")
	ErrNotConfigured   = errors.New("avatar storage is not configured")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Upload describes a presigned PUT the client performs directly against
// the bucket.
type Upload struct {
	Method    string    `json:"method"`
	UploadURL string    `json:"upload_url"`
	ObjectURL string    `json:"object_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Presigner struct {
	client     *s3.PresignClient
	bucket     string
	region     string
	endpoint   string
	publicBase string
	expires    time.Duration
	now        func() time.Time
}

// NewPresigner loads AWS credentials from the default chain. A custom
// endpoint (MinIO, LocalStack) switches to path-style addressing.
func NewPresigner(ctx context.Context, cfg config.StorageConfig) (*Presigner, error) {
	if cfg.AvatarBucket == "" {
		return nil, ErrNotConfigured
	}
	awsConfig, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return FromAWSConfig(awsConfig, cfg), nil
}

func FromAWSConfig(awsConfig aws.Config, cfg config.StorageConfig) *Presigner {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	expires := cfg.PresignExpires
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	return &Presigner{
		client:     s3.NewPresignClient(client),
		bucket:     cfg.AvatarBucket,
		region:     cfg.Region,
		endpoint:   endpoint,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
		expires:    expires,
		now:        time.Now,
	}
}

// PresignAvatar returns a PUT URL for a new avatar object owned by userID.
func (p *Presigner) PresignAvatar(ctx context.Context, userID, contentType string) (*Upload, error) {
	ext, ok := extensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, ErrUnsupportedType
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), ext)
	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.expires))
	if err != nil {
		return nil, fmt.Errorf("presign avatar: %w", err)
	}

	return &Upload{
		Method:    req.Method,
		UploadURL: req.URL,
		ObjectURL: p.objectURL(key),
		Key:       key,
		ExpiresAt: p.now().Add(p.expires).UTC(),
	}, nil
}

func (p *Presigner) objectURL(key string) string {
	switch {
	case p.publicBase != "":
		return p.publicBase + "/" + key
	case p.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", p.endpoint, p.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key)
	}
}
