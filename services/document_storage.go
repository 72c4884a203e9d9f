package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "github.com/openmechanic/garage-manager/config"
)

// DocumentStorage stores generated invoice documents and hands out
// short-lived download URLs
type DocumentStorage interface {
	Upload(key string, content []byte, contentType string) error
	GetPresignedURL(key string) (string, error)
	Delete(key string) error
}

// S3DocumentStorage stores documents in an S3 bucket
type S3DocumentStorage struct {
	client *s3.Client
	bucket string
}

var documentStorageInstance DocumentStorage

// InitDocumentStorage initializes the document storage. With an S3 bucket
// configured it talks to S3; otherwise it falls back to the in-memory mock,
// which is what development and tests run on.
func InitDocumentStorage() (DocumentStorage, error) {
	cfg := appConfig.GetConfig()

	if cfg == nil || cfg.AWSS3Bucket == "" {
		documentStorageInstance = NewMockDocumentStorage()
		return documentStorageInstance, nil
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	documentStorageInstance = &S3DocumentStorage{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.AWSS3Bucket,
	}
	return documentStorageInstance, nil
}

// GetDocumentStorage returns the initialized document storage instance
func GetDocumentStorage() DocumentStorage {
	return documentStorageInstance
}

// SetDocumentStorage sets the document storage instance (primarily for testing)
func SetDocumentStorage(storage DocumentStorage) {
	documentStorageInstance = storage
}

// Upload writes the document content under the given key
func (s *S3DocumentStorage) Upload(key string, content []byte, contentType string) error {
	_, err := s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// GetPresignedURL generates a presigned URL for downloading a stored document
func (s *S3DocumentStorage) GetPresignedURL(key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presigner := s3.NewPresignClient(s.client)
	request, err := presigner.PresignGetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = 15 * time.Minute
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return request.URL, nil
}

// Delete removes a stored document
func (s *S3DocumentStorage) Delete(key string) error {
	_, err := s.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
