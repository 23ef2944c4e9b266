package api

import (
	"errors"
	"net/http"
	"strings"

	"foodbridge/internal/domain/reservation"
	reqdto "foodbridge/internal/handler/dto/request"
	resdto "foodbridge/internal/handler/dto/response"
	"foodbridge/internal/handler/middleware"
	"foodbridge/internal/infra"
	"foodbridge/internal/pkg/errs"
	"foodbridge/internal/usecase/commands"
	"foodbridge/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservationHandler struct {
	reservationCommands commands.ReservationCommands
	reservationQueries  queries.ReservationQueries
}

func NewReservationHandler(
	reservationCommands commands.ReservationCommands,
	reservationQueries queries.ReservationQueries,
) *ReservationHandler {
	return &ReservationHandler{
		reservationCommands: reservationCommands,
		reservationQueries:  reservationQueries,
	}
}

// @Summary Claim a lot
// @Description Place a reservation on a lot; at most one active claim per lot
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lot ID"
// @Param request body reqdto.ClaimRequest true "Claim details"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 410 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /lots/{id}/claims [post]
func (h *ReservationHandler) ClaimLot(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	lotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid lot ID",
		})
		return
	}

	// The claim body is optional; an absent body means no preferred pickup date.
	var req reqdto.ClaimRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request format",
			})
			return
		}
	}

	view, err := h.reservationCommands.Claim(c.Request.Context(), caller, lotID, commands.ClaimParams{
		RequestedPickupDate: req.RequestedPickupDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrLotNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Lot not found",
			})
		case errors.Is(err, errs.ErrLotNotAvailable):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Lot is not claimable for the caller's affiliation",
			})
		case errors.Is(err, errs.ErrLotRetired):
			c.JSON(http.StatusGone, gin.H{
				"error": "Lot has already been delivered",
			})
		case errors.Is(err, errs.ErrAlreadyReserved):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Lot already has an active reservation",
			})
		case errors.Is(err, errs.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Reservation validation failed",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromReservationView(view))
}

// @Summary Transition a reservation
// @Description Move a reservation to the next workflow state
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.TransitionRequest true "Target state and note"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reservations/{id}/transitions [post]
func (h *ReservationHandler) TransitionReservation(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID",
		})
		return
	}

	var req reqdto.TransitionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	target, err := reservation.NewState(req.TargetState)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown target state",
		})
		return
	}

	view, err := h.reservationCommands.Transition(c.Request.Context(), caller, reservationID, target, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		case errors.Is(err, errs.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Caller may not perform this transition",
			})
		case errors.Is(err, errs.ErrInvalidStateTransition):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Transition is not a declared edge from the current state",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Get a reservation
// @Description Fetch one reservation with its full transition log
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID",
		})
		return
	}

	view, err := h.reservationQueries.GetByID(c.Request.Context(), caller, reservationID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Reservation belongs to another organization",
			})
		case infra.IsKind(err, infra.KindNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary List reservations
// @Description List reservations placed by or against the caller's organization
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param lot_id query string false "Filter by lot"
// @Param state query string false "Filter by state"
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.ReservationListResponse
// @Failure 400 {object} map[string]string
// @Router /reservations [get]
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	filters, err := parseReservationFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	after, limit := parsePagination(c)

	items, next, err := h.reservationQueries.ListForCaller(c.Request.Context(), caller, filters, after, limit)
	if err != nil {
		if strings.Contains(err.Error(), "cursor") {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid cursor",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationList(items, nextCursorString(next)))
}

func parseReservationFilters(c *gin.Context) (queries.ReservationFilters, error) {
	var filters queries.ReservationFilters
	if raw := c.Query("lot_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, errors.New("invalid lot_id")
		}
		filters.LotID = &id
	}
	if raw := c.Query("state"); raw != "" {
		if _, err := reservation.NewState(raw); err != nil {
			return filters, errors.New("invalid state")
		}
		filters.State = &raw
	}
	return filters, nil
}
