package s3

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/agencyops/agencyops/internal/config"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/samber/lo"
)

// presignExpiry bounds how long an emailed download link stays valid
const presignExpiry = 7 * 24 * time.Hour

type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "invoice"
	DocumentTypeReceipt DocumentType = "receipt"
)

var validDocumentTypes = []DocumentType{DocumentTypeInvoice, DocumentTypeReceipt}

// Document is a rendered PDF keyed by its number, e.g. "AGH-001 (1)"
type Document struct {
	ID   string
	Type DocumentType
	Data []byte
}

func NewPdfDocument(id string, data []byte, docType DocumentType) *Document {
	return &Document{
		ID:   id,
		Type: docType,
		Data: data,
	}
}

// Service mirrors rendered documents to a bucket. The local file remains the
// source of truth.
type Service interface {
	UploadDocument(ctx context.Context, document *Document) error
	DeleteDocument(ctx context.Context, id string, docType DocumentType) error
	// GetPresignedUrl returns a time limited download link for a mirrored
	// document
	GetPresignedUrl(ctx context.Context, id string, docType DocumentType) (string, error)
}

type s3ServiceImpl struct {
	client    *s3.Client
	presigner *s3.PresignClient
	config    *config.S3Config
}

// NewService returns nil when mirroring is disabled
func NewService(cfg *config.Configuration) (Service, error) {
	if !cfg.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := config.LoadAwsConfig(context.Background(), cfg.S3.Region)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to load aws config").
			Mark(ierr.ErrHTTPClient)
	}

	client, err := config.NewS3Client(context.Background(), awsCfg)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to create s3 client").
			Mark(ierr.ErrHTTPClient)
	}

	return &s3ServiceImpl{
		client:    client,
		presigner: s3.NewPresignClient(client),
		config:    &cfg.S3,
	}, nil
}

// objectKey lays documents out as [prefix/]invoices/<id>.pdf
func (s *s3ServiceImpl) objectKey(id string, docType DocumentType) (string, error) {
	if !lo.Contains(validDocumentTypes, docType) {
		return "", ierr.NewErrorf("invalid document type: %s", docType).
			WithHintf("Document type must be one of %v", validDocumentTypes).
			Mark(ierr.ErrSystem)
	}
	key := fmt.Sprintf("%ss/%s.pdf", docType, id)
	if s.config.KeyPrefix != "" {
		key = s.config.KeyPrefix + "/" + key
	}
	return key, nil
}

func (s *s3ServiceImpl) clientError(err error, action, key string) error {
	return ierr.WithError(err).
		WithHintf("Failed to %s document", action).
		WithMessagef("bucket:%s, key:%s", s.config.Bucket, key).
		Mark(ierr.ErrHTTPClient)
}

func (s *s3ServiceImpl) UploadDocument(ctx context.Context, document *Document) error {
	key, err := s.objectKey(document.ID, document.Type)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.config.Bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(document.Data),
		ContentType:        aws.String("application/pdf"),
		ContentDisposition: aws.String(fmt.Sprintf("inline; filename=%q", document.ID+".pdf")),
	})
	if err != nil {
		return s.clientError(err, "upload", key)
	}
	return nil
}

func (s *s3ServiceImpl) DeleteDocument(ctx context.Context, id string, docType DocumentType) error {
	key, err := s.objectKey(id, docType)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s.clientError(err, "delete", key)
	}
	return nil
}

func (s *s3ServiceImpl) GetPresignedUrl(ctx context.Context, id string, docType DocumentType) (string, error) {
	key, err := s.objectKey(id, docType)
	if err != nil {
		return "", err
	}

	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", s.clientError(err, "presign", key)
	}
	return result.URL, nil
}
