package readstore

import (
	"context"

	"foodbridge/internal/domain/actor"
	"foodbridge/internal/infra"
	"foodbridge/internal/infra/db"
	"foodbridge/internal/usecase/notify"

	"github.com/google/uuid"
)

// RecipientReadStore resolves stakeholder accounts from the identity
// collaborator's users table. The core never writes to it.
type RecipientReadStore struct {
	db db.DBTX
}

func NewRecipientReadStore(dbtx db.DBTX) *RecipientReadStore {
	return &RecipientReadStore{db: dbtx}
}

func (s *RecipientReadStore) OrgMembers(ctx context.Context, orgID uuid.UUID) ([]notify.Recipient, error) {
	return s.query(ctx,
		"SELECT id, org_id FROM users WHERE org_id = $1 AND is_active",
		orgID)
}

func (s *RecipientReadStore) Operators(ctx context.Context) ([]notify.Recipient, error) {
	return s.query(ctx,
		"SELECT id, org_id FROM users WHERE role = ANY($1) AND is_active",
		[]string{actor.RoleOperator.String(), actor.RoleAdmin.String()})
}

func (s *RecipientReadStore) query(ctx context.Context, sql string, args ...any) ([]notify.Recipient, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to resolve recipients", err)
	}
	defer rows.Close()

	var out []notify.Recipient
	for rows.Next() {
		var r notify.Recipient
		if err := rows.Scan(&r.ID, &r.OrgID); err != nil {
			return nil, infra.WrapRepoErr("failed to scan recipient row", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate recipient rows", err)
	}
	return out, nil
}
