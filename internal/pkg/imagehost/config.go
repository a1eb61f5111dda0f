package imagehost

import (
	"errors"
	"fmt"
	"strings"

	"rendsocial/internal/pkg/env"
)

// Config holds S3 image storage configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	PublicBaseURL   string // Optional CDN or public bucket URL
	Enabled         bool
}

// LoadConfig loads S3 configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		PublicBaseURL:   env.GetEnv("S3_PUBLIC_BASE_URL", ""),
		Enabled:         env.GetEnv("S3_ENABLED", "false") == "true",
	}

	// Validate required fields if S3 storage is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when S3 storage is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when S3 storage is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when S3 storage is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if S3 storage is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// PostObjectKey generates a standardized S3 object key for a post image
// Format: posts/YYYY/MM/UUID.ext
func (c *Config) PostObjectKey(postUUID, fileExtension string, year, month int) string {
	return fmt.Sprintf("posts/%04d/%02d/%s%s", year, month, postUUID, fileExtension)
}

// AvatarObjectKey generates a standardized S3 object key for a profile image
func (c *Config) AvatarObjectKey(username, fileExtension string) string {
	return fmt.Sprintf("avatars/%s%s", username, fileExtension)
}

// ObjectURL returns the public URL for an object key
func (c *Config) ObjectURL(objectKey string) string {
	if c.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(c.PublicBaseURL, "/"), objectKey)
	}
	if c.EndpointURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.EndpointURL, "/"), c.BucketName, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.BucketName, c.Region, objectKey)
}

// GetAppEnv returns the current application environment
func GetAppEnv() string {
	return env.GetEnv("APP_ENV", "dev")
}
