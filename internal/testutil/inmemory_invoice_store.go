package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/agencyops/agencyops/internal/domain/invoice"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/types"
)

var _ invoice.Repository = (*InMemoryInvoiceStore)(nil)

// InMemoryInvoiceStore implements invoice.Repository with a unique invoice_no
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]

	hookMu       sync.Mutex
	beforeCreate func(ctx context.Context, inv *invoice.Invoice) error
}

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

// Helper to copy invoice
func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	c.LineItems = append([]invoice.LineItem(nil), inv.LineItems...)
	if inv.DueDate != nil {
		due := *inv.DueDate
		c.DueDate = &due
	}
	return &c
}

func sameInvoiceNo(existing, candidate *invoice.Invoice) bool {
	return existing.InvoiceNo == candidate.InvoiceNo
}

// BeforeCreate registers a hook run ahead of every Create. Tests use it to
// slip a competing record in between allocation and insert, or to fail the
// insert outright. A non-nil error from the hook is returned by Create.
func (s *InMemoryInvoiceStore) BeforeCreate(fn func(ctx context.Context, inv *invoice.Invoice) error) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.beforeCreate = fn
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.hookMu.Lock()
	hook := s.beforeCreate
	s.hookMu.Unlock()
	if hook != nil {
		if err := hook(ctx, inv); err != nil {
			return err
		}
	}

	return s.Seed(ctx, inv)
}

// Seed inserts without running the BeforeCreate hook
func (s *InMemoryInvoiceStore) Seed(ctx context.Context, inv *invoice.Invoice) error {
	if err := s.InMemoryStore.CreateUnique(ctx, inv.ID, copyInvoice(inv), sameInvoiceNo); err != nil {
		if ierr.IsAlreadyExists(err) {
			return invoice.NewDuplicateNumberError(err, inv.InvoiceNo)
		}
		return err
	}
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, invoice.NewNotFoundError("invoice_id", id)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) GetByNumber(ctx context.Context, invoiceNo string) (*invoice.Invoice, error) {
	inv, ok := s.InMemoryStore.Find(ctx, func(_ context.Context, i *invoice.Invoice) bool {
		return i.InvoiceNo == invoiceNo
	})
	if !ok {
		return nil, invoice.NewNotFoundError("invoice_no", invoiceNo)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if err := s.InMemoryStore.Update(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return invoice.NewNotFoundError("invoice_id", inv.ID)
	}
	return nil
}

func (s *InMemoryInvoiceStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return invoice.NewNotFoundError("invoice_id", id)
	}
	return nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	items := s.InMemoryStore.List(ctx, filter.QueryFilter, invoiceFilterFn(filter), invoiceSortFn)
	out := make([]*invoice.Invoice, 0, len(items))
	for _, inv := range items {
		out = append(out, copyInvoice(inv))
	}
	return out, nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	return s.InMemoryStore.Count(ctx, invoiceFilterFn(filter)), nil
}

func (s *InMemoryInvoiceStore) ListNumbersForPair(ctx context.Context, clientID, subEntityID string) ([]invoice.NumberEntry, error) {
	items := s.InMemoryStore.List(ctx, nil, func(_ context.Context, inv *invoice.Invoice) bool {
		return inv.ClientID == clientID && inv.SubEntityID == subEntityID
	}, nil)

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].InvoiceNo < items[j].InvoiceNo
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	out := make([]invoice.NumberEntry, 0, len(items))
	for _, inv := range items {
		out = append(out, invoice.NumberEntry{InvoiceNo: inv.InvoiceNo, CreatedAt: inv.CreatedAt})
	}
	return out, nil
}

func invoiceFilterFn(f *types.InvoiceFilter) FilterFunc[*invoice.Invoice] {
	return func(_ context.Context, inv *invoice.Invoice) bool {
		if f.ClientID != "" && inv.ClientID != f.ClientID {
			return false
		}
		if f.SubEntityID != "" && inv.SubEntityID != f.SubEntityID {
			return false
		}
		if f.Status != "" && inv.Status != f.Status {
			return false
		}
		return true
	}
}

// newest first, id breaks ties
func invoiceSortFn(i, j *invoice.Invoice) bool {
	if i.CreatedAt.Equal(j.CreatedAt) {
		return i.ID > j.ID
	}
	return i.CreatedAt.After(j.CreatedAt)
}
