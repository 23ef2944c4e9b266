//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"foodbridge/internal/domain/lot"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func CreateTestOrg(t *testing.T, db DBLike, name, affiliation string) uuid.UUID {
	t.Helper()

	orgID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO organizations (id, name, affiliation) VALUES ($1, $2, $3) ON CONFLICT (name) DO NOTHING", orgID, name, affiliation)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM organizations WHERE name = $1", name).Scan(&orgID)
	}

	return orgID
}

func CreateTestUser(t *testing.T, db DBLike, orgID uuid.UUID, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO users (id, org_id, email, role, is_active) VALUES ($1, $2, $3, $4, true) ON CONFLICT (email) DO NOTHING",
		userID, orgID, email, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1 AND is_active = true", email).Scan(&userID)
	}

	return userID
}

func CreateTestLot(t *testing.T, db DBLike, ownerOrgID uuid.UUID, product string, quantity int, unit string, expiryDate time.Time, shelfBufferDays int) uuid.UUID {
	t.Helper()

	lotID := uuid.New()
	ctx := context.Background()

	tier := lot.ComputeTier(expiryDate, shelfBufferDays, time.Now().UTC())
	_, err := db.Exec(ctx, `
		INSERT INTO lots (id, product, quantity, unit, expiry_date, shelf_buffer_days, cached_tier, legacy_claimed, owner_org_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, now(), now())`,
		lotID, product, quantity, unit, expiryDate, shelfBufferDays, tier.String(), ownerOrgID)
	require.NoError(t, err)

	return lotID
}

func CreateTestReservation(t *testing.T, db DBLike, lotID, claimantOrgID uuid.UUID, state string) uuid.UUID {
	t.Helper()

	reservationID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO reservations (id, lot_id, claimant_org_id, state, transition_log, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '[]'::jsonb, now(), now())`,
		reservationID, lotID, claimantOrgID, state)
	require.NoError(t, err)

	return reservationID
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO organizations (id, name, affiliation) VALUES
		    (gen_random_uuid(), 'Default Pantry', 'private'),
		    (gen_random_uuid(), 'Community Kitchen', 'social')
		ON CONFLICT (name) DO NOTHING;
	`)
	if err != nil {
		return err
	}

	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
