package service

import (
	"context"

	"github.com/agencyops/agencyops/internal/domain/client"
	"github.com/agencyops/agencyops/internal/domain/invoice"
	"github.com/agencyops/agencyops/internal/domain/sequence"
	"github.com/agencyops/agencyops/internal/domain/subentity"
	"github.com/samber/lo"
)

// NumberResolver decides the next invoice number for a client and
// sub-entity pair.
//
// The first invoice of a pair mints a fresh base from the sub-entity counter.
// Every later invoice reuses the base of the pair's oldest invoice with the
// next free "(N)" suffix. Two concurrent callers can get the same suffix; the
// unique index on invoice_no settles it and the loser retries.
type NumberResolver interface {
	AllocateInvoiceNumber(ctx context.Context, c *client.Client, se *subentity.SubEntity) (*invoice.InvoiceNumber, error)
}

type numberResolver struct {
	ServiceParams
}

func NewNumberResolver(params ServiceParams) NumberResolver {
	return &numberResolver{ServiceParams: params}
}

func (r *numberResolver) AllocateInvoiceNumber(ctx context.Context, c *client.Client, se *subentity.SubEntity) (*invoice.InvoiceNumber, error) {
	history, err := r.InvoiceRepo.ListNumbersForPair(ctx, c.ID, se.ID)
	if err != nil {
		return nil, err
	}

	if len(history) == 0 {
		count, err := r.SequenceRepo.Next(ctx, sequence.InvoiceKey(se.ID))
		if err != nil {
			return nil, err
		}
		base := invoice.FormatBase(r.prefixFor(c, se), count)

		r.Logger.Debugw("minted invoice base",
			"client_id", c.ID,
			"sub_entity_id", se.ID,
			"invoice_base", base,
		)
		return &invoice.InvoiceNumber{
			InvoiceNo:     base,
			InvoiceBase:   base,
			BumpedCounter: true,
		}, nil
	}

	base := invoice.ExtractBase(history[0].InvoiceNo)
	numbers := lo.Map(history, func(e invoice.NumberEntry, _ int) string {
		return e.InvoiceNo
	})
	invoiceNo := invoice.FormatSuffixed(base, invoice.NextSuffix(base, numbers))

	r.Logger.Debugw("derived invoice number from history",
		"client_id", c.ID,
		"sub_entity_id", se.ID,
		"invoice_no", invoiceNo,
		"history", len(history),
	)
	return &invoice.InvoiceNumber{
		InvoiceNo:   invoiceNo,
		InvoiceBase: base,
	}, nil
}

// prefixFor picks the sub-entity prefix, then the client's first associated
// code, then the configured default
func (r *numberResolver) prefixFor(c *client.Client, se *subentity.SubEntity) string {
	if p := subentity.NormalizePrefix(se.Prefix); p != "" {
		return p
	}
	if p := subentity.NormalizePrefix(c.FirstSubEntityCode()); p != "" {
		return p
	}
	return subentity.NormalizePrefix(r.Config.Invoice.DefaultPrefix)
}
