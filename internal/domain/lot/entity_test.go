//go:build unit

package lot_test

import (
	"strings"
	"testing"
	"time"

	"foodbridge/internal/domain/lot"
	"foodbridge/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lotCase struct {
	name   string
	mutate func(*builder.LotBuilder)
	errIs  error
}

func TestLot(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewLotBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, "Day-old bread", actual.Product())
		assert.Equal(t, 40, actual.Quantity())
		assert.Equal(t, "loaves", actual.Unit())
		assert.Equal(t, actual.CreatedAt(), actual.UpdatedAt())
	})

	t.Run("validation", func(t *testing.T) {
		runLotCases(t, []lotCase{
			{
				name:   "empty product",
				mutate: func(b *builder.LotBuilder) { b.Product = "" },
				errIs:  lot.ErrEmptyProduct,
			},
			{
				name:   "whitespace only product",
				mutate: func(b *builder.LotBuilder) { b.Product = "   " },
				errIs:  lot.ErrEmptyProduct,
			},
			{
				name:   "product at maximum length",
				mutate: func(b *builder.LotBuilder) { b.Product = strings.Repeat("a", lot.MaxProductLength) },
			},
			{
				name:   "product exceeds maximum length",
				mutate: func(b *builder.LotBuilder) { b.Product = strings.Repeat("a", lot.MaxProductLength+1) },
				errIs:  lot.ErrProductTooLong,
			},
			{
				name:   "zero quantity",
				mutate: func(b *builder.LotBuilder) { b.Quantity = 0 },
				errIs:  lot.ErrNonPositiveQty,
			},
			{
				name:   "negative quantity",
				mutate: func(b *builder.LotBuilder) { b.Quantity = -5 },
				errIs:  lot.ErrNonPositiveQty,
			},
			{
				name:   "empty unit",
				mutate: func(b *builder.LotBuilder) { b.Unit = " " },
				errIs:  lot.ErrEmptyUnit,
			},
			{
				name:   "zero expiry date",
				mutate: func(b *builder.LotBuilder) { b.ExpiryDate = time.Time{} },
				errIs:  lot.ErrMissingExpiry,
			},
			{
				name:   "negative shelf buffer",
				mutate: func(b *builder.LotBuilder) { b.ShelfBufferDays = -1 },
				errIs:  lot.ErrNegativeBufferDays,
			},
			{
				name:   "zero shelf buffer is allowed",
				mutate: func(b *builder.LotBuilder) { b.ShelfBufferDays = 0 },
			},
			{
				name:   "missing owner organization",
				mutate: func(b *builder.LotBuilder) { b.OwnerOrgID = uuid.Nil },
				errIs:  lot.ErrMissingOwner,
			},
		})
	})

	t.Run("product trimming", func(t *testing.T) {
		actual, err := builder.NewLotBuilder().
			With(func(b *builder.LotBuilder) { b.Product = "  Surplus apples  " }).
			BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, "Surplus apples", actual.Product())
	})
}

func TestLotReschedule(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	entity, err := builder.NewLotBuilder().BuildDomain()
	require.NoError(t, err)

	t.Run("valid reschedule moves the window", func(t *testing.T) {
		newExpiry := now.AddDate(0, 0, 3)
		require.NoError(t, entity.Reschedule(newExpiry, 1, now))
		assert.Equal(t, newExpiry, entity.ExpiryDate())
		assert.Equal(t, 1, entity.ShelfBufferDays())
		assert.Equal(t, now, entity.UpdatedAt())
	})

	t.Run("zero expiry rejected", func(t *testing.T) {
		assert.ErrorIs(t, entity.Reschedule(time.Time{}, 1, now), lot.ErrMissingExpiry)
	})

	t.Run("negative buffer rejected", func(t *testing.T) {
		assert.ErrorIs(t, entity.Reschedule(now.AddDate(0, 0, 3), -1, now), lot.ErrNegativeBufferDays)
	})
}

func TestLotRestock(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	entity, err := builder.NewLotBuilder().BuildDomain()
	require.NoError(t, err)

	require.NoError(t, entity.Restock(12, "crates", now))
	assert.Equal(t, 12, entity.Quantity())
	assert.Equal(t, "crates", entity.Unit())

	assert.ErrorIs(t, entity.Restock(0, "crates", now), lot.ErrNonPositiveQty)
	assert.ErrorIs(t, entity.Restock(3, "  ", now), lot.ErrEmptyUnit)
}

func TestLotTierAt(t *testing.T) {
	expiry := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	entity, err := builder.NewLotBuilder().
		With(func(b *builder.LotBuilder) {
			b.ExpiryDate = expiry
			b.ShelfBufferDays = 2
		}).
		BuildDomain()
	require.NoError(t, err)

	assert.Equal(t, lot.TierFresh, entity.TierAt(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, lot.TierAging, entity.TierAt(time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, lot.TierExpired, entity.TierAt(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)))
}

func runLotCases(t *testing.T, cases []lotCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewLotBuilder().With(c.mutate).BuildDomain()
			if c.errIs != nil {
				assert.ErrorIs(t, err, c.errIs)
				assert.Nil(t, actual)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, actual)
		})
	}
}
