package lot

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyProduct       = errors.New("product name cannot be empty")
	ErrProductTooLong     = errors.New("product name is too long")
	ErrNonPositiveQty     = errors.New("quantity must be positive")
	ErrEmptyUnit          = errors.New("unit cannot be empty")
	ErrMissingExpiry      = errors.New("expiry date is required")
	ErrNegativeBufferDays = errors.New("shelf buffer days cannot be negative")
	ErrMissingOwner       = errors.New("owner organization is required")
)

const MaxProductLength = 200

// Lot is a unit of donated perishable inventory. The freshness tier is a
// function of (expiry, shelfBufferDays, now); claimed status is never stored
// here, it is derived from the existence of an active reservation.
type Lot struct {
	id              uuid.UUID
	product         string
	quantity        int
	unit            string
	expiryDate      time.Time
	shelfBufferDays int
	ownerOrgID      uuid.UUID
	createdAt       time.Time
	updatedAt       time.Time
}

func NewLot(
	product string,
	quantity int,
	unit string,
	expiryDate time.Time,
	shelfBufferDays int,
	ownerOrgID uuid.UUID,
	now time.Time,
) (*Lot, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, ErrEmptyProduct
	}
	if len(product) > MaxProductLength {
		return nil, ErrProductTooLong
	}
	if quantity <= 0 {
		return nil, ErrNonPositiveQty
	}
	if strings.TrimSpace(unit) == "" {
		return nil, ErrEmptyUnit
	}
	if expiryDate.IsZero() {
		return nil, ErrMissingExpiry
	}
	if shelfBufferDays < 0 {
		return nil, ErrNegativeBufferDays
	}
	if ownerOrgID == uuid.Nil {
		return nil, ErrMissingOwner
	}

	return &Lot{
		id:              uuid.New(),
		product:         product,
		quantity:        quantity,
		unit:            strings.TrimSpace(unit),
		expiryDate:      expiryDate,
		shelfBufferDays: shelfBufferDays,
		ownerOrgID:      ownerOrgID,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func ReconstructLot(
	id uuid.UUID,
	product string,
	quantity int,
	unit string,
	expiryDate time.Time,
	shelfBufferDays int,
	ownerOrgID uuid.UUID,
	createdAt, updatedAt time.Time,
) *Lot {
	return &Lot{
		id:              id,
		product:         product,
		quantity:        quantity,
		unit:            unit,
		expiryDate:      expiryDate,
		shelfBufferDays: shelfBufferDays,
		ownerOrgID:      ownerOrgID,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// TierAt derives the freshness tier at the given instant.
func (l *Lot) TierAt(asOf time.Time) Tier {
	return ComputeTier(l.expiryDate, l.shelfBufferDays, asOf)
}

// Reschedule updates the expiry window. The caller must persist the
// recomputed tier afterwards.
func (l *Lot) Reschedule(expiryDate time.Time, shelfBufferDays int, now time.Time) error {
	if expiryDate.IsZero() {
		return ErrMissingExpiry
	}
	if shelfBufferDays < 0 {
		return ErrNegativeBufferDays
	}
	l.expiryDate = expiryDate
	l.shelfBufferDays = shelfBufferDays
	l.updatedAt = now
	return nil
}

func (l *Lot) Restock(quantity int, unit string, now time.Time) error {
	if quantity <= 0 {
		return ErrNonPositiveQty
	}
	if strings.TrimSpace(unit) == "" {
		return ErrEmptyUnit
	}
	l.quantity = quantity
	l.unit = strings.TrimSpace(unit)
	l.updatedAt = now
	return nil
}

func (l *Lot) IsOwnedBy(orgID uuid.UUID) bool {
	return l.ownerOrgID == orgID
}

func (l *Lot) ID() uuid.UUID         { return l.id }
func (l *Lot) Product() string       { return l.product }
func (l *Lot) Quantity() int         { return l.quantity }
func (l *Lot) Unit() string          { return l.unit }
func (l *Lot) ExpiryDate() time.Time { return l.expiryDate }
func (l *Lot) ShelfBufferDays() int  { return l.shelfBufferDays }
func (l *Lot) OwnerOrgID() uuid.UUID { return l.ownerOrgID }
func (l *Lot) CreatedAt() time.Time  { return l.createdAt }
func (l *Lot) UpdatedAt() time.Time  { return l.updatedAt }
