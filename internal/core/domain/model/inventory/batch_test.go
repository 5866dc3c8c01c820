package inventory_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBatch(t *testing.T, quantity int) *inventory.Batch {
	t.Helper()
	batch, err := inventory.NewBatch(
		kernel.NewUUID(),
		kernel.NewUUID(),
		kernel.NewUUID(),
		"LOT-2025-001",
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		quantity,
		"A-01-03",
	)
	require.NoError(t, err)
	return batch
}

func TestNewBatch(t *testing.T) {
	t.Run("should create batch with no reservations", func(t *testing.T) {
		id := kernel.NewUUID()
		skuID := kernel.NewUUID()
		warehouseID := kernel.NewUUID()
		expiry := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

		batch, err := inventory.NewBatch(id, skuID, warehouseID, "LOT-2025-001", expiry, 10, "A-01-03")

		require.NoError(t, err)
		assert.True(t, batch.ID().IsEqual(id))
		assert.True(t, batch.SKU().IsEqual(skuID))
		assert.True(t, batch.Warehouse().IsEqual(warehouseID))
		assert.Equal(t, "LOT-2025-001", batch.BatchNumber())
		assert.Equal(t, expiry, batch.ExpiryDate())
		assert.Equal(t, "A-01-03", batch.Location())
		assert.Equal(t, 10, batch.CurrentQuantity())
		assert.Equal(t, 0, batch.Reserved())
		assert.Equal(t, 10, batch.Available())
	})

	t.Run("should reject zero or negative quantity", func(t *testing.T) {
		for _, quantity := range []int{0, -5} {
			_, err := inventory.NewBatch(
				kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
				"LOT-2025-001", time.Now(), quantity, "A-01-03",
			)

			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		}
	})

	t.Run("should reject empty batch number", func(t *testing.T) {
		_, err := inventory.NewBatch(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"", time.Now(), 10, "A-01-03",
		)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject zero expiry date", func(t *testing.T) {
		_, err := inventory.NewBatch(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"LOT-2025-001", time.Time{}, 10, "A-01-03",
		)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject empty location", func(t *testing.T) {
		_, err := inventory.NewBatch(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"LOT-2025-001", time.Now(), 10, "",
		)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject invalid reference IDs", func(t *testing.T) {
		_, err := inventory.NewBatch(
			kernel.UUID{}, kernel.NewUUID(), kernel.NewUUID(),
			"LOT-2025-001", time.Now(), 10, "A-01-03",
		)

		require.Error(t, err)
	})
}

func TestBatch_Validate(t *testing.T) {
	t.Run("should reject zero value batch", func(t *testing.T) {
		var batch inventory.Batch

		assert.ErrorIs(t, batch.Validate(), inventory.ErrBatchIsNotConstructed)
	})

	t.Run("should reject nil batch", func(t *testing.T) {
		var batch *inventory.Batch

		assert.ErrorIs(t, batch.Validate(), inventory.ErrBatchIsNotConstructed)
	})
}

func TestBatch_Reserve(t *testing.T) {
	t.Run("should reserve available quantity", func(t *testing.T) {
		batch := createTestBatch(t, 10)

		err := batch.Reserve(4)

		require.NoError(t, err)
		assert.Equal(t, 10, batch.CurrentQuantity())
		assert.Equal(t, 4, batch.Reserved())
		assert.Equal(t, 6, batch.Available())
	})

	t.Run("should reserve exactly the available quantity", func(t *testing.T) {
		batch := createTestBatch(t, 10)

		require.NoError(t, batch.Reserve(10))

		assert.Equal(t, 0, batch.Available())
	})

	t.Run("should fail when request exceeds available not physical stock", func(t *testing.T) {
		batch := createTestBatch(t, 10)
		require.NoError(t, batch.Reserve(8))

		err := batch.Reserve(5)

		require.Error(t, err)
		assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

		var stockErr *inventory.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.True(t, stockErr.BatchID.IsEqual(batch.ID()))
		assert.Equal(t, "LOT-2025-001", stockErr.BatchNumber)
		assert.Equal(t, 5, stockErr.Requested)
		assert.Equal(t, 2, stockErr.Available)

		assert.Equal(t, 8, batch.Reserved())
	})

	t.Run("should reject zero or negative quantity", func(t *testing.T) {
		batch := createTestBatch(t, 10)

		for _, qty := range []int{0, -1} {
			err := batch.Reserve(qty)

			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		}
	})
}

func TestBatch_Release(t *testing.T) {
	t.Run("should return reserved units to the available pool", func(t *testing.T) {
		batch := createTestBatch(t, 10)
		require.NoError(t, batch.Reserve(6))

		err := batch.Release(4)

		require.NoError(t, err)
		assert.Equal(t, 10, batch.CurrentQuantity())
		assert.Equal(t, 2, batch.Reserved())
		assert.Equal(t, 8, batch.Available())
	})

	t.Run("should reject releasing more than is reserved", func(t *testing.T) {
		batch := createTestBatch(t, 10)
		require.NoError(t, batch.Reserve(3))

		err := batch.Release(4)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, 3, batch.Reserved())
	})

	t.Run("should reject zero or negative quantity", func(t *testing.T) {
		batch := createTestBatch(t, 10)
		require.NoError(t, batch.Reserve(3))

		for _, qty := range []int{0, -1} {
			err := batch.Release(qty)

			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		}
	})
}

func TestBatch_Decrement(t *testing.T) {
	t.Run("should convert reservation into permanent stock removal", func(t *testing.T) {
		batch := createTestBatch(t, 10)
		require.NoError(t, batch.Reserve(6))

		err := batch.Decrement(6)

		require.NoError(t, err)
		assert.Equal(t, 4, batch.CurrentQuantity())
		assert.Equal(t, 0, batch.Reserved())
		assert.Equal(t, 4, batch.Available())
	})

	t.Run("should leave available stock unchanged", func(t *testing.T) {
		batch := createTestBatch(t, 10)
		require.NoError(t, batch.Reserve(6))
		availableBefore := batch.Available()

		require.NoError(t, batch.Decrement(6))

		assert.Equal(t, availableBefore, batch.Available())
	})

	t.Run("should reject decrementing more than is reserved", func(t *testing.T) {
		batch := createTestBatch(t, 10)
		require.NoError(t, batch.Reserve(3))

		err := batch.Decrement(4)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, 10, batch.CurrentQuantity())
		assert.Equal(t, 3, batch.Reserved())
	})

	t.Run("should reject unreserved decrement", func(t *testing.T) {
		batch := createTestBatch(t, 10)

		err := batch.Decrement(1)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject zero or negative quantity", func(t *testing.T) {
		batch := createTestBatch(t, 10)
		require.NoError(t, batch.Reserve(3))

		for _, qty := range []int{0, -1} {
			err := batch.Decrement(qty)

			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		}
	})
}

func TestRestoreBatch(t *testing.T) {
	t.Run("should restore batch with outstanding reservations", func(t *testing.T) {
		batch, err := inventory.RestoreBatch(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"LOT-2025-001", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			10, 8, "A-01-03",
		)

		require.NoError(t, err)
		assert.Equal(t, 10, batch.CurrentQuantity())
		assert.Equal(t, 8, batch.Reserved())
		assert.Equal(t, 2, batch.Available())
	})

	t.Run("should restore fully reserved batch", func(t *testing.T) {
		batch, err := inventory.RestoreBatch(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"LOT-2025-001", time.Now(), 10, 10, "A-01-03",
		)

		require.NoError(t, err)
		assert.Equal(t, 0, batch.Available())
	})

	t.Run("should restore empty batch", func(t *testing.T) {
		batch, err := inventory.RestoreBatch(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"LOT-2025-001", time.Now(), 0, 0, "A-01-03",
		)

		require.NoError(t, err)
		assert.Equal(t, 0, batch.CurrentQuantity())
	})

	t.Run("should reject negative current quantity", func(t *testing.T) {
		_, err := inventory.RestoreBatch(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"LOT-2025-001", time.Now(), -1, 0, "A-01-03",
		)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject reserved exceeding current quantity", func(t *testing.T) {
		_, err := inventory.RestoreBatch(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"LOT-2025-001", time.Now(), 5, 6, "A-01-03",
		)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject negative reserved quantity", func(t *testing.T) {
		_, err := inventory.RestoreBatch(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"LOT-2025-001", time.Now(), 5, -1, "A-01-03",
		)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
