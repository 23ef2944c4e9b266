//go:build unit || e2e

package builder

import (
	"time"

	domlot "foodbridge/internal/domain/lot"
	reqdto "foodbridge/internal/handler/dto/request"

	"github.com/google/uuid"
)

type LotBuilder struct {
	Product         string
	Quantity        int
	Unit            string
	ExpiryDate      time.Time
	ShelfBufferDays int
	OwnerOrgID      uuid.UUID
	CreatedAt       time.Time
}

func NewLotBuilder() *LotBuilder {
	now := time.Now().UTC()
	return &LotBuilder{
		Product:         "Day-old bread",
		Quantity:        40,
		Unit:            "loaves",
		ExpiryDate:      now.AddDate(0, 0, 7),
		ShelfBufferDays: 2,
		OwnerOrgID:      uuid.New(),
		CreatedAt:       now,
	}
}

func (b *LotBuilder) With(mutate func(*LotBuilder)) *LotBuilder {
	mutate(b)
	return b
}

func (b *LotBuilder) BuildDomain() (*domlot.Lot, error) {
	return domlot.NewLot(b.Product, b.Quantity, b.Unit, b.ExpiryDate, b.ShelfBufferDays, b.OwnerOrgID, b.CreatedAt)
}

func (b *LotBuilder) BuildCreateRequestDTO() reqdto.CreateLotRequest {
	return reqdto.CreateLotRequest{
		Product:         b.Product,
		Quantity:        b.Quantity,
		Unit:            b.Unit,
		ExpiryDate:      b.ExpiryDate,
		ShelfBufferDays: b.ShelfBufferDays,
	}
}
