package mongo

import (
	"testing"
	"time"

	"github.com/agencyops/agencyops/internal/domain/invoice"
	"github.com/agencyops/agencyops/internal/domain/receipt"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestInvoiceModel_KeepsMoneyPrecision(t *testing.T) {
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	inv := &invoice.Invoice{
		ID:          "inv_1",
		InvoiceNo:   "AGH-001 (2)",
		InvoiceBase: "AGH-001",
		LineItems: []invoice.LineItem{
			invoice.NormalizeLineItem("", "Shoot day\nfull crew", decimal.RequireFromString("1.5"), decimal.RequireFromString("333.33")),
		},
		Subtotal:    decimal.RequireFromString("500.00"),
		TaxRate:     decimal.RequireFromString("18"),
		TaxAmount:   decimal.RequireFromString("90.00"),
		TotalAmount: decimal.RequireFromString("590.00"),
		DueDate:     &due,
		Status:      types.InvoiceStatusPending,
	}

	raw, err := bson.Marshal(toInvoiceModel(inv))
	require.NoError(t, err)

	var decoded invoiceModel
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	got := decoded.toDomain()

	assert.Equal(t, "AGH-001 (2)", got.InvoiceNo)
	assert.Equal(t, "Shoot day", got.LineItems[0].Title)
	assert.True(t, got.LineItems[0].Amount.Equal(decimal.RequireFromString("500.00")))
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("590")))
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
}

func TestSubEntityModel_ExplicitZeroTaxRate(t *testing.T) {
	se := &subentity.SubEntity{ID: "subent_1", Name: "Zero", Prefix: "ZR", TaxRate: decimal.Zero}

	got := toSubEntityModel(se).toDomain()
	assert.True(t, got.TaxRate.IsZero())
}

func TestReceiptModel_RoundTrip(t *testing.T) {
	r := &receipt.Receipt{
		ID:          "rcpt_1",
		Seq:         12,
		ReceiptNo:   "RUD-012",
		Amount:      decimal.RequireFromString("1234.50"),
		PaymentType: types.PaymentTypeCheque,
	}

	got := toReceiptModel(r).toDomain()
	assert.Equal(t, int64(12), got.Seq)
	assert.True(t, got.Amount.Equal(r.Amount))
	assert.Equal(t, types.PaymentTypeCheque, got.PaymentType)
}

func TestInvoiceFilter(t *testing.T) {
	assert.Empty(t, invoiceFilter(nil))

	f := types.NewInvoiceFilter()
	f.SubEntityID = "subent_1"
	f.Status = types.InvoiceStatusCancelled
	assert.Equal(t, bson.M{"sub_entity_id": "subent_1", "status": "Cancelled"}, invoiceFilter(f))
}

func TestReceiptFilter(t *testing.T) {
	f := types.NewReceiptFilter()
	f.ClientID = "client_1"
	f.Limit = lo.ToPtr(5)
	assert.Equal(t, bson.M{"client_id": "client_1"}, receiptFilter(f))
}

func TestParseDecimal_Invalid(t *testing.T) {
	assert.True(t, parseDecimal("not-a-number").IsZero())
}
