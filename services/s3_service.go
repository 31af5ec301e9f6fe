package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	s3PresignOnce   sync.Once
	s3PresignClient *s3.PresignClient
	s3PresignErr    error
)

func presignClient() (*s3.PresignClient, error) {
	s3PresignOnce.Do(func() {
		cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(os.Getenv("AWS_REGION")))
		if err != nil {
			s3PresignErr = fmt.Errorf("failed to load AWS config for S3: %w", err)
			return
		}
		s3PresignClient = s3.NewPresignClient(s3.NewFromConfig(cfg))
	})
	return s3PresignClient, s3PresignErr
}

// GenerateReadURL generates a presigned URL for reading a profile photo.
// Uploads are handled by the media service; this core only ever reads.
func GenerateReadURL(ctx context.Context, key string) (string, error) {
	presigner, err := presignClient()
	if err != nil {
		return "", err
	}
	params := &s3.GetObjectInput{
		Bucket: aws.String(os.Getenv("S3_BUCKET_NAME")),
		Key:    aws.String(key),
	}
	presignedURL, err := presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", err
	}
	return presignedURL.URL, nil
}
