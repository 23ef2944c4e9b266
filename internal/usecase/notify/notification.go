package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Notification is one durable message for one recipient. The stored row is
// the source of truth; live pushes are best-effort duplicates of it.
type Notification struct {
	ID            uuid.UUID
	RecipientID   uuid.UUID
	EventType     string
	LotID         uuid.UUID
	ReservationID uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// Recipient is a resolved stakeholder account.
type Recipient struct {
	ID    uuid.UUID
	OrgID uuid.UUID
}

// NotificationSink is the injected delivery boundary. RecordDurable must
// persist the row; TryLivePush may fail freely, the dispatcher only logs it.
type NotificationSink interface {
	RecordDurable(ctx context.Context, n Notification) error
	TryLivePush(ctx context.Context, n Notification) error
}

// RecipientResolver reads stakeholder accounts from the identity
// collaborator's tables.
type RecipientResolver interface {
	OrgMembers(ctx context.Context, orgID uuid.UUID) ([]Recipient, error)
	Operators(ctx context.Context) ([]Recipient, error)
}
