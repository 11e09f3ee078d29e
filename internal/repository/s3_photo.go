package repository

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
)

// S3Config holds the object storage settings for capture photos
type S3Config struct {
	APIKey   string
	Secret   string
	Endpoint string
	Region   string
	Bucket   string
}

// S3PhotoStore uploads attendance photos to an S3 compatible bucket
type S3PhotoStore struct {
	client s3iface.S3API
	bucket string
	now    func() time.Time
}

// NewS3PhotoStore builds an S3 client from static credentials
func NewS3PhotoStore(cfg S3Config) (*S3PhotoStore, error) {
	awsConfig := &aws.Config{
		Credentials: credentials.NewStaticCredentials(cfg.APIKey, cfg.Secret, ""),
		Region:      aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 session: %w", err)
	}
	return NewS3PhotoStoreWithClient(s3.New(sess), cfg.Bucket), nil
}

func NewS3PhotoStoreWithClient(client s3iface.S3API, bucket string) *S3PhotoStore {
	return &S3PhotoStore{client: client, bucket: bucket, now: time.Now}
}

// Put stores the photo under attendance/{user}/{yyyy}/{mm}/{uuid}.jpg and
// returns an s3:// reference to it
func (s *S3PhotoStore) Put(ctx context.Context, userID string, photo []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	now := s.now()
	key := fmt.Sprintf("attendance/%s/%04d/%02d/%s.jpg", userID, now.Year(), int(now.Month()), uuid.NewString())

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(photo),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String("inline"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	log.Printf("📸 Uploaded capture photo %s (%d bytes)", key, len(photo))
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// Delete removes an object previously stored by Put
func (s *S3PhotoStore) Delete(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, "s3://"+s.bucket+"/")
	if !ok {
		return fmt.Errorf("not a photo in bucket %s: %s", s.bucket, ref)
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

var _ PhotoStore = (*S3PhotoStore)(nil)
