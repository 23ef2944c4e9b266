//go:build e2e

package notification_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"foodbridge/internal/domain/actor"
	"foodbridge/internal/handler/dto/request"
	"foodbridge/internal/handler/dto/response"
	"foodbridge/tests/common/authtest"
	"foodbridge/tests/common/dbtest"
	"foodbridge/tests/common/httptest"
	"foodbridge/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	notificationsURL = "/api/notifications"
	claimsURL        = "/api/lots/%s/claims"
	transitionsURL   = "/api/reservations/%s/transitions"
)

type NotificationSuite struct {
	e2e.SharedSuite
}

func (s *NotificationSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestNotificationSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(NotificationSuite))
}

// issues a token whose subject is an existing user row, so the dispatcher
// resolves the caller as a recipient
func (s *NotificationSuite) userToken(t *testing.T, userID, orgID uuid.UUID, affiliation actor.TierAffiliation) string {
	t.Helper()
	a := actor.New(userID, orgID, actor.RoleMember, affiliation)
	return authtest.NewJWTHelper(s.Config.JWT).GenerateToken(t, a)
}

func (s *NotificationSuite) listNotifications(t *testing.T, token string) *response.NotificationListResponse {
	t.Helper()
	w := httptest.PerformRequest(t, s.Router, http.MethodGet, notificationsURL, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var list response.NotificationListResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &list))
	return &list
}

// =============================================================================
// TestClaimNotifications - durable notification delivery tests
// =============================================================================

func (s *NotificationSuite) TestClaimNotifications() {
	s.Run("Normal case: Lot owner is notified of a new claim, actor is not", func() {
		t := s.T()

		ownerOrgID := dbtest.CreateTestOrg(t, s.DB, "Bakery Collective", "private")
		claimantOrgID := dbtest.CreateTestOrg(t, s.DB, "Soup Kitchen", "social")

		ownerUserID := dbtest.CreateTestUser(t, s.DB, ownerOrgID, "owner@example.com", "member")
		claimantUserID := dbtest.CreateTestUser(t, s.DB, claimantOrgID, "claimant@example.com", "member")

		lotID := dbtest.CreateTestLot(t, s.DB, ownerOrgID, "Day-old bread", 40, "loaves",
			time.Now().UTC().AddDate(0, 0, 1), 2)

		ownerToken := s.userToken(t, ownerUserID, ownerOrgID, actor.AffiliationPrivate)
		claimantToken := s.userToken(t, claimantUserID, claimantOrgID, actor.AffiliationSocial)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(claimsURL, lotID), nil, claimantToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		// Delivery is asynchronous; wait for the durable record to land
		require.Eventually(t, func() bool {
			return len(s.listNotifications(t, ownerToken).Items) == 1
		}, 5*time.Second, 50*time.Millisecond, "owner should receive a claim notification")

		got := s.listNotifications(t, ownerToken).Items[0]
		require.Equal(t, "reservation_requested", got.EventType)
		require.NotNil(t, got.LotID)
		require.Equal(t, lotID, *got.LotID)
		require.NotNil(t, got.ReservationID)

		// The acting claimant never hears about their own claim
		require.Empty(t, s.listNotifications(t, claimantToken).Items)
	})

	s.Run("Normal case: Claimant is notified when the owner confirms", func() {
		t := s.T()

		ownerOrgID := dbtest.CreateTestOrg(t, s.DB, "Bakery Collective", "private")
		claimantOrgID := dbtest.CreateTestOrg(t, s.DB, "Soup Kitchen", "social")

		ownerUserID := dbtest.CreateTestUser(t, s.DB, ownerOrgID, "owner@example.com", "member")
		claimantUserID := dbtest.CreateTestUser(t, s.DB, claimantOrgID, "claimant@example.com", "member")

		lotID := dbtest.CreateTestLot(t, s.DB, ownerOrgID, "Day-old bread", 40, "loaves",
			time.Now().UTC().AddDate(0, 0, 1), 2)

		ownerToken := s.userToken(t, ownerUserID, ownerOrgID, actor.AffiliationPrivate)
		claimantToken := s.userToken(t, claimantUserID, claimantOrgID, actor.AffiliationSocial)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(claimsURL, lotID), nil, claimantToken)
		require.Equal(t, http.StatusCreated, w.Code)

		var created response.ReservationResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &created))

		tw := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(transitionsURL, created.ID),
			request.TransitionRequest{TargetState: "confirmed"}, ownerToken)
		require.Equal(t, http.StatusOK, tw.Code)

		require.Eventually(t, func() bool {
			items := s.listNotifications(t, claimantToken).Items
			return len(items) == 1 && items[0].EventType == "reservation_state_changed"
		}, 5*time.Second, 50*time.Millisecond, "claimant should hear about the confirmation")
	})

	s.Run("Auth test - Unauthorized when not logged in", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, notificationsURL, nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, "Should reject unauthorized access")
	})
}
