package s3

import (
	"context"
	"fmt"
	"io"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/ports/files"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// putObjectAPI es lo único que usamos del cliente S3.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store sube los blobs a un bucket S3-compatible (AWS o MinIO). La ref devuelta es la object key.
type Store struct {
	client putObjectAPI
	bucket string
}

type Config struct {
	Region    string
	Bucket    string
	Endpoint  string // opcional, p. ej. MinIO
	PathStyle bool
}

// New arma el cliente con la cadena de credenciales por defecto de AWS.
func New(ctx context.Context, cfg Config, optFns ...func(*config.LoadOptions) error) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := append([]func(*config.LoadOptions) error{config.WithRegion(region)}, optFns...)
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

func newWithClient(client putObjectAPI, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

func (s *Store) Put(ctx context.Context, kind files.Kind, filename string, r io.Reader, contentType string) (string, error) {
	key := files.ObjectKey(kind, filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("%w: s3 put %s: %v", apperr.ErrDependency, key, err)
	}
	return key, nil
}
