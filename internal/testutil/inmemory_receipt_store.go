package testutil

import (
	"context"

	"github.com/agencyops/agencyops/internal/domain/receipt"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/types"
)

var _ receipt.Repository = (*InMemoryReceiptStore)(nil)

// InMemoryReceiptStore implements receipt.Repository with unique seq and
// receipt_no
type InMemoryReceiptStore struct {
	*InMemoryStore[*receipt.Receipt]
}

func NewInMemoryReceiptStore() *InMemoryReceiptStore {
	return &InMemoryReceiptStore{
		InMemoryStore: NewInMemoryStore[*receipt.Receipt](),
	}
}

func copyReceipt(r *receipt.Receipt) *receipt.Receipt {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func receiptNotFound(id string) error {
	return ierr.NewError("receipt not found").
		WithHint("Receipt not found").
		WithReportableDetails(map[string]any{"receipt_id": id}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryReceiptStore) Create(ctx context.Context, r *receipt.Receipt) error {
	return s.InMemoryStore.CreateUnique(ctx, r.ID, copyReceipt(r), func(existing, candidate *receipt.Receipt) bool {
		return existing.Seq == candidate.Seq || existing.ReceiptNo == candidate.ReceiptNo
	})
}

func (s *InMemoryReceiptStore) Get(ctx context.Context, id string) (*receipt.Receipt, error) {
	r, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, receiptNotFound(id)
	}
	return copyReceipt(r), nil
}

func (s *InMemoryReceiptStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return receiptNotFound(id)
	}
	return nil
}

func (s *InMemoryReceiptStore) List(ctx context.Context, filter *types.ReceiptFilter) ([]*receipt.Receipt, error) {
	if filter == nil {
		filter = types.NewReceiptFilter()
	}
	items := s.InMemoryStore.List(ctx, filter.QueryFilter, receiptFilterFn(filter), func(i, j *receipt.Receipt) bool {
		if i.CreatedAt.Equal(j.CreatedAt) {
			return i.Seq > j.Seq
		}
		return i.CreatedAt.After(j.CreatedAt)
	})
	out := make([]*receipt.Receipt, 0, len(items))
	for _, r := range items {
		out = append(out, copyReceipt(r))
	}
	return out, nil
}

func (s *InMemoryReceiptStore) Count(ctx context.Context, filter *types.ReceiptFilter) (int, error) {
	if filter == nil {
		filter = types.NewReceiptFilter()
	}
	return s.InMemoryStore.Count(ctx, receiptFilterFn(filter)), nil
}

func receiptFilterFn(f *types.ReceiptFilter) FilterFunc[*receipt.Receipt] {
	return func(_ context.Context, r *receipt.Receipt) bool {
		if f.ClientID != "" && r.ClientID != f.ClientID {
			return false
		}
		if f.InvoiceID != "" && r.InvoiceID != f.InvoiceID {
			return false
		}
		return true
	}
}
