package testutil

import (
	"context"

	domain "github.com/agencyops/agencyops/internal/domain/pdf"
	"github.com/agencyops/agencyops/internal/pdf"
	"github.com/stretchr/testify/mock"
)

var _ pdf.Generator = (*MockPDFGenerator)(nil)

// SamplePDF is a minimal document body returned by stubbed renderers
var SamplePDF = []byte("%PDF-1.4\n%test\n")

type MockPDFGenerator struct {
	mock.Mock
}

// RenderInvoicePdf implements pdf.Generator.
func (m *MockPDFGenerator) RenderInvoicePdf(ctx context.Context, data *domain.InvoiceData) ([]byte, error) {
	args := m.Called(ctx, data)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

// RenderReceiptPdf implements pdf.Generator.
func (m *MockPDFGenerator) RenderReceiptPdf(ctx context.Context, data *domain.ReceiptData) ([]byte, error) {
	args := m.Called(ctx, data)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func NewMockPDFGenerator() *MockPDFGenerator {
	return &MockPDFGenerator{}
}

// StubRendering makes both documents render to SamplePDF
func (m *MockPDFGenerator) StubRendering() *MockPDFGenerator {
	m.On("RenderInvoicePdf", mock.Anything, mock.Anything).Return(SamplePDF, nil).Maybe()
	m.On("RenderReceiptPdf", mock.Anything, mock.Anything).Return(SamplePDF, nil).Maybe()
	return m
}
