package testutil

import (
	"context"

	"github.com/agencyops/agencyops/internal/email"
	"github.com/agencyops/agencyops/internal/s3"
	"github.com/stretchr/testify/mock"
)

var (
	_ email.Mailer = (*MockMailer)(nil)
	_ s3.Service   = (*MockS3)(nil)
)

type MockMailer struct {
	mock.Mock
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) SendInvoice(ctx context.Context, mail email.InvoiceMail) (*email.SendEmailResponse, error) {
	args := m.Called(ctx, mail)
	resp, _ := args.Get(0).(*email.SendEmailResponse)
	return resp, args.Error(1)
}

// MockS3 records mirrored documents
type MockS3 struct {
	mock.Mock
}

func NewMockS3() *MockS3 {
	return &MockS3{}
}

func (m *MockS3) UploadDocument(ctx context.Context, document *s3.Document) error {
	return m.Called(ctx, document).Error(0)
}

func (m *MockS3) DeleteDocument(ctx context.Context, id string, docType s3.DocumentType) error {
	return m.Called(ctx, id, docType).Error(0)
}

func (m *MockS3) GetPresignedUrl(ctx context.Context, id string, docType s3.DocumentType) (string, error) {
	args := m.Called(ctx, id, docType)
	return args.String(0), args.Error(1)
}

// StubDelivery makes every invoice mail succeed
func (m *MockMailer) StubDelivery() *MockMailer {
	m.On("SendInvoice", mock.Anything, mock.Anything).
		Return(&email.SendEmailResponse{MessageID: "msg_test", Success: true}, nil).
		Maybe()
	return m
}
