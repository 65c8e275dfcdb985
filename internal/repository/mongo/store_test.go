package mongo

import (
	"testing"
	"time"

	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func duplicateKeyErr() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error collection: agencyops.invoices index: invoice_no_1"}},
	}
}

func applyFind(t *testing.T, b *options.FindOptionsBuilder) *options.FindOptions {
	t.Helper()
	var fo options.FindOptions
	for _, set := range b.List() {
		require.NoError(t, set(&fo))
	}
	return &fo
}

func TestWrapWriteErr(t *testing.T) {
	t.Run("duplicate key is a conflict", func(t *testing.T) {
		err := wrapWriteErr(duplicateKeyErr(), "An invoice with this number already exists", map[string]any{"invoice_no": "AGH-001"})

		assert.True(t, ierr.IsAlreadyExists(err))
		assert.False(t, ierr.IsDatabase(err))
		assert.Equal(t, "An invoice with this number already exists", ierr.DisplayMessage(err, ""))
		assert.Equal(t, "AGH-001", ierr.ReportableDetails(err)["invoice_no"])
	})

	t.Run("duplicate key from a command", func(t *testing.T) {
		err := wrapWriteErr(mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, "Conflict", nil)
		assert.True(t, ierr.IsAlreadyExists(err))
	})

	t.Run("other write failures are database errors", func(t *testing.T) {
		err := wrapWriteErr(mongo.WriteException{
			WriteErrors: mongo.WriteErrors{{Code: 121, Message: "Document failed validation"}},
		}, "Conflict", map[string]any{"receipt_no": "RUD-001"})

		assert.True(t, ierr.IsDatabase(err))
		assert.False(t, ierr.IsAlreadyExists(err))
	})
}

func TestIncrementCounter(t *testing.T) {
	t.Run("first attempt succeeds", func(t *testing.T) {
		calls := 0
		m, err := incrementCounter(func() (counterModel, error) {
			calls++
			return counterModel{Name: "receiptSeq", Value: 5}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), m.Value)
		assert.Equal(t, 1, calls)
	})

	t.Run("lost upsert race is retried once", func(t *testing.T) {
		calls := 0
		m, err := incrementCounter(func() (counterModel, error) {
			calls++
			if calls == 1 {
				return counterModel{}, duplicateKeyErr()
			}
			return counterModel{Name: "receiptSeq", Value: 2}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), m.Value)
		assert.Equal(t, 2, calls)
	})

	t.Run("repeated duplicates give up", func(t *testing.T) {
		calls := 0
		_, err := incrementCounter(func() (counterModel, error) {
			calls++
			return counterModel{}, duplicateKeyErr()
		})
		assert.True(t, mongo.IsDuplicateKeyError(err))
		assert.Equal(t, 2, calls)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		calls := 0
		boom := errors.New("connection reset")
		_, err := incrementCounter(func() (counterModel, error) {
			calls++
			return counterModel{}, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}

func TestCounterUpdate(t *testing.T) {
	now := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, bson.M{
		"$inc":         bson.M{"value": 1},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}, counterUpdate(now))
}

func TestPairNumbersQuery(t *testing.T) {
	assert.Equal(t, bson.M{"client_id": "client_1", "sub_entity_id": "subent_1"}, pairFilter("client_1", "subent_1"))

	fo := applyFind(t, pairNumbersOptions())
	assert.Equal(t, bson.D{{Key: "created_at", Value: 1}, {Key: "invoice_no", Value: 1}}, fo.Sort)
	assert.Equal(t, bson.M{"invoice_no": 1, "created_at": 1}, fo.Projection)
	assert.Nil(t, fo.Limit)
}

func TestPageOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		fo := applyFind(t, pageOptions(nil, invoiceListSort))
		assert.Equal(t, invoiceListSort, fo.Sort)
		assert.Equal(t, int64(types.FILTER_DEFAULT_LIMIT), lo.FromPtr(fo.Limit))
		assert.Equal(t, int64(0), lo.FromPtr(fo.Skip))
	})

	t.Run("newest receipts first with paging", func(t *testing.T) {
		f := types.NewReceiptFilter()
		f.Limit = lo.ToPtr(5)
		f.Offset = lo.ToPtr(10)

		fo := applyFind(t, pageOptions(f.QueryFilter, receiptListSort))
		assert.Equal(t, bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}, fo.Sort)
		assert.Equal(t, int64(5), lo.FromPtr(fo.Limit))
		assert.Equal(t, int64(10), lo.FromPtr(fo.Skip))
	})
}
