package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"filedepot/internal/config"
	"filedepot/internal/logger"
)

// S3Driver stores objects in any S3-compatible bucket (AWS, R2, MinIO).
type S3Driver struct {
	client *s3.Client
	bucket string
}

// NewS3Driver builds a client from static credentials and a custom endpoint.
func NewS3Driver(cfg config.S3Config) *S3Driver {
	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3Driver{client: client, bucket: cfg.Bucket}
}

func (d *S3Driver) Upload(ctx context.Context, content io.Reader, name, mimeType, userScope string) (string, error) {
	key := fmt.Sprintf("%s/%s_%s", userScope, uuid.New().String(), name)
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %v", ErrRejected, key, err)
	}
	return key, nil
}

func (d *S3Driver) Download(ctx context.Context, key string) (io.ReadCloser, string, int64, error) {
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, "", 0, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, "", 0, fmt.Errorf("%w: get %s: %v", ErrUnavailable, key, err)
	}
	return out.Body, aws.ToString(out.ContentType), aws.ToInt64(out.ContentLength), nil
}

func (d *S3Driver) Remove(ctx context.Context, keys []string) {
	for _, key := range keys {
		_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(d.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			logger.Warn("s3: failed to remove object %s: %v", key, err)
		}
	}
}

func (d *S3Driver) Move(ctx context.Context, oldKey, newKey string) (string, error) {
	_, err := d.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(d.bucket),
		CopySource: aws.String(d.bucket + "/" + oldKey),
		Key:        aws.String(newKey),
	})
	if err != nil {
		return "", fmt.Errorf("%w: copy %s -> %s: %v", ErrUnavailable, oldKey, newKey, err)
	}
	// The copy is authoritative; a leftover source is hygiene only.
	_, err = d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(oldKey),
	})
	if err != nil {
		logger.Warn("s3: failed to remove source %s after copy: %v", oldKey, err)
	}
	return newKey, nil
}

func (d *S3Driver) List(ctx context.Context, prefix string) ([]Object, error) {
	out, err := d.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(d.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrUnavailable, prefix, err)
	}
	objects := make([]Object, 0, len(out.Contents))
	for _, item := range out.Contents {
		objects = append(objects, Object{
			Key:       aws.ToString(item.Key),
			Size:      aws.ToInt64(item.Size),
			UpdatedAt: aws.ToTime(item.LastModified),
		})
	}
	return objects, nil
}
