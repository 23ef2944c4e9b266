//go:build unit || e2e

package builder

import (
	"time"

	domres "foodbridge/internal/domain/reservation"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
	LotID               uuid.UUID
	ClaimantOrgID       uuid.UUID
	RequestedPickupDate *time.Time
	CreatedAt           time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	now := time.Now().UTC()
	pickup := now.AddDate(0, 0, 1)
	return &ReservationBuilder{
		LotID:               uuid.New(),
		ClaimantOrgID:       uuid.New(),
		RequestedPickupDate: &pickup,
		CreatedAt:           now,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) BuildDomain() (*domres.Reservation, error) {
	return domres.NewReservation(b.LotID, b.ClaimantOrgID, b.RequestedPickupDate, b.CreatedAt)
}
