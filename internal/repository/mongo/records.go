package mongo

import (
	"context"
	"regexp"

	"github.com/agencyops/agencyops/internal/domain/client"
	"github.com/agencyops/agencyops/internal/domain/invoice"
	"github.com/agencyops/agencyops/internal/domain/receipt"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/mongodb"
	"github.com/agencyops/agencyops/internal/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ==================== Sub-entities ====================

type SubEntityStore struct{ *Store }

func NewSubEntityRepository(s *Store) subentity.Repository {
	return &SubEntityStore{s}
}

func (s *SubEntityStore) Create(ctx context.Context, se *subentity.SubEntity) error {
	if _, err := s.col(mongodb.ColSubEntities).InsertOne(ctx, toSubEntityModel(se)); err != nil {
		return wrapWriteErr(err, "A sub-entity with this name already exists", map[string]any{"name": se.Name})
	}
	return nil
}

func (s *SubEntityStore) Get(ctx context.Context, id string) (*subentity.SubEntity, error) {
	m, err := findOne[subEntityModel](ctx, s.col(mongodb.ColSubEntities), bson.M{"_id": id}, func() error {
		return ierr.NewError("sub-entity not found").
			WithHintf("Sub-entity %s not found", id).
			WithReportableDetails(map[string]any{"sub_entity_id": id}).
			Mark(ierr.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (s *SubEntityStore) List(ctx context.Context) ([]*subentity.SubEntity, error) {
	models, err := findMany[subEntityModel](ctx, s.col(mongodb.ColSubEntities), bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]*subentity.SubEntity, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

// ==================== Clients ====================

type ClientStore struct{ *Store }

func NewClientRepository(s *Store) client.Repository {
	return &ClientStore{s}
}

func clientNotFound(key, value string) func() error {
	return func() error {
		return ierr.NewError("client not found").
			WithHint("Client not found").
			WithReportableDetails(map[string]any{key: value}).
			Mark(ierr.ErrNotFound)
	}
}

func (s *ClientStore) Create(ctx context.Context, c *client.Client) error {
	if _, err := s.col(mongodb.ColClients).InsertOne(ctx, toClientModel(c)); err != nil {
		return wrapWriteErr(err, "A client with this code already exists", map[string]any{"client_code": c.ClientCode})
	}
	return nil
}

func (s *ClientStore) Get(ctx context.Context, id string) (*client.Client, error) {
	m, err := findOne[clientModel](ctx, s.col(mongodb.ColClients), bson.M{"_id": id}, clientNotFound("client_id", id))
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

// GetByReference matches the client code first, then the email
func (s *ClientStore) GetByReference(ctx context.Context, ref string) (*client.Client, error) {
	m, err := findOne[clientModel](ctx, s.col(mongodb.ColClients), bson.M{"client_code": ref}, clientNotFound("reference", ref))
	if ierr.IsNotFound(err) {
		m, err = findOne[clientModel](ctx, s.col(mongodb.ColClients),
			bson.M{"email": bson.M{"$regex": "^" + regexp.QuoteMeta(ref) + "$", "$options": "i"}},
			clientNotFound("reference", ref))
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

// ==================== Invoices ====================

type InvoiceStore struct{ *Store }

func NewInvoiceRepository(s *Store) invoice.Repository {
	return &InvoiceStore{s}
}

func (s *InvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if _, err := s.col(mongodb.ColInvoices).InsertOne(ctx, toInvoiceModel(inv)); err != nil {
		return wrapWriteErr(err, "An invoice with this number already exists", map[string]any{"invoice_no": inv.InvoiceNo})
	}
	return nil
}

func (s *InvoiceStore) get(ctx context.Context, key string, value string, field string) (*invoice.Invoice, error) {
	m, err := findOne[invoiceModel](ctx, s.col(mongodb.ColInvoices), bson.M{field: value}, func() error {
		return invoice.NewNotFoundError(key, value)
	})
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (s *InvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	return s.get(ctx, "invoice_id", id, "_id")
}

func (s *InvoiceStore) GetByNumber(ctx context.Context, invoiceNo string) (*invoice.Invoice, error) {
	return s.get(ctx, "invoice_no", invoiceNo, "invoice_no")
}

func (s *InvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	res, err := s.col(mongodb.ColInvoices).UpdateOne(ctx,
		bson.M{"_id": inv.ID},
		bson.M{"$set": bson.M{
			"status":     string(inv.Status),
			"pdf_url":    inv.PDFURL,
			"pdf_path":   inv.PDFPath,
			"notes":      inv.Notes,
			"updated_at": inv.UpdatedAt,
			"updated_by": inv.UpdatedBy,
		}},
	)
	if err != nil {
		return wrapWriteErr(err, "Invoice update conflicts with an existing record", map[string]any{"invoice_id": inv.ID})
	}
	if res.MatchedCount == 0 {
		return invoice.NewNotFoundError("invoice_id", inv.ID)
	}
	return nil
}

func (s *InvoiceStore) Delete(ctx context.Context, id string) error {
	res, err := s.col(mongodb.ColInvoices).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapWriteErr(err, "Failed to delete invoice", map[string]any{"invoice_id": id})
	}
	if res.DeletedCount == 0 {
		return invoice.NewNotFoundError("invoice_id", id)
	}
	return nil
}

var invoiceListSort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func invoiceFilter(f *types.InvoiceFilter) bson.M {
	filter := bson.M{}
	if f == nil {
		return filter
	}
	if f.ClientID != "" {
		filter["client_id"] = f.ClientID
	}
	if f.SubEntityID != "" {
		filter["sub_entity_id"] = f.SubEntityID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	return filter
}

func (s *InvoiceStore) List(ctx context.Context, f *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	var q *types.QueryFilter
	if f != nil {
		q = f.QueryFilter
	}
	models, err := findMany[invoiceModel](ctx, s.col(mongodb.ColInvoices), invoiceFilter(f),
		pageOptions(q, invoiceListSort))
	if err != nil {
		return nil, err
	}
	out := make([]*invoice.Invoice, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

func (s *InvoiceStore) Count(ctx context.Context, f *types.InvoiceFilter) (int, error) {
	return count(ctx, s.col(mongodb.ColInvoices), invoiceFilter(f))
}

func (s *InvoiceStore) ListNumbersForPair(ctx context.Context, clientID, subEntityID string) ([]invoice.NumberEntry, error) {
	models, err := findMany[invoiceModel](ctx, s.col(mongodb.ColInvoices),
		pairFilter(clientID, subEntityID), pairNumbersOptions())
	if err != nil {
		return nil, err
	}
	out := make([]invoice.NumberEntry, 0, len(models))
	for _, m := range models {
		out = append(out, invoice.NumberEntry{InvoiceNo: m.InvoiceNo, CreatedAt: m.CreatedAt})
	}
	return out, nil
}

func pairFilter(clientID, subEntityID string) bson.M {
	return bson.M{"client_id": clientID, "sub_entity_id": subEntityID}
}

// pairNumbersOptions reads only the number and creation time, oldest first
func pairNumbersOptions() *options.FindOptionsBuilder {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "invoice_no", Value: 1}}).
		SetProjection(bson.M{"invoice_no": 1, "created_at": 1})
}

// ==================== Receipts ====================

type ReceiptStore struct{ *Store }

func NewReceiptRepository(s *Store) receipt.Repository {
	return &ReceiptStore{s}
}

func (s *ReceiptStore) Create(ctx context.Context, r *receipt.Receipt) error {
	if _, err := s.col(mongodb.ColReceipts).InsertOne(ctx, toReceiptModel(r)); err != nil {
		return wrapWriteErr(err, "A receipt with this number already exists", map[string]any{
			"receipt_no": r.ReceiptNo,
			"seq":        r.Seq,
		})
	}
	return nil
}

func (s *ReceiptStore) Get(ctx context.Context, id string) (*receipt.Receipt, error) {
	m, err := findOne[receiptModel](ctx, s.col(mongodb.ColReceipts), bson.M{"_id": id}, func() error {
		return ierr.NewError("receipt not found").
			WithHint("Receipt not found").
			WithReportableDetails(map[string]any{"receipt_id": id}).
			Mark(ierr.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (s *ReceiptStore) Delete(ctx context.Context, id string) error {
	res, err := s.col(mongodb.ColReceipts).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapWriteErr(err, "Failed to delete receipt", map[string]any{"receipt_id": id})
	}
	if res.DeletedCount == 0 {
		return ierr.NewError("receipt not found").
			WithHint("Receipt not found").
			WithReportableDetails(map[string]any{"receipt_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

var receiptListSort = bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}

func receiptFilter(f *types.ReceiptFilter) bson.M {
	filter := bson.M{}
	if f == nil {
		return filter
	}
	if f.ClientID != "" {
		filter["client_id"] = f.ClientID
	}
	if f.InvoiceID != "" {
		filter["invoice_id"] = f.InvoiceID
	}
	return filter
}

func (s *ReceiptStore) List(ctx context.Context, f *types.ReceiptFilter) ([]*receipt.Receipt, error) {
	var q *types.QueryFilter
	if f != nil {
		q = f.QueryFilter
	}
	models, err := findMany[receiptModel](ctx, s.col(mongodb.ColReceipts), receiptFilter(f),
		pageOptions(q, receiptListSort))
	if err != nil {
		return nil, err
	}
	out := make([]*receipt.Receipt, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

func (s *ReceiptStore) Count(ctx context.Context, f *types.ReceiptFilter) (int, error) {
	return count(ctx, s.col(mongodb.ColReceipts), receiptFilter(f))
}
