package s3

import (
	"testing"

	"github.com/agencyops/agencyops/internal/config"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetObjectKey(t *testing.T) {
	s := &s3ServiceImpl{config: &config.S3Config{Bucket: "docs", KeyPrefix: "prod"}}

	key, err := s.objectKey("AGH-001 (2)", DocumentTypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "prod/invoices/AGH-001 (2).pdf", key)

	key, err = s.objectKey("RUD-004", DocumentTypeReceipt)
	require.NoError(t, err)
	assert.Equal(t, "prod/receipts/RUD-004.pdf", key)

	s.config.KeyPrefix = ""
	key, err = s.objectKey("RUD-004", DocumentTypeReceipt)
	require.NoError(t, err)
	assert.Equal(t, "receipts/RUD-004.pdf", key)

	_, err = s.objectKey("x", DocumentType("statement"))
	assert.True(t, ierr.HTTPStatusFromErr(err) == 500)
}

func TestNewService_Disabled(t *testing.T) {
	svc, err := NewService(config.GetDefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, svc)
}
