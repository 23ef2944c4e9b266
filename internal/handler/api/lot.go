package api

import (
	"errors"
	"net/http"
	"strings"

	reqdto "foodbridge/internal/handler/dto/request"
	"foodbridge/internal/infra"
	resdto "foodbridge/internal/handler/dto/response"
	"foodbridge/internal/handler/middleware"
	"foodbridge/internal/pkg/errs"
	"foodbridge/internal/usecase/commands"
	"foodbridge/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LotHandler struct {
	lotCommands commands.LotCommands
	lotQueries  queries.LotQueries
}

func NewLotHandler(lotCommands commands.LotCommands, lotQueries queries.LotQueries) *LotHandler {
	return &LotHandler{
		lotCommands: lotCommands,
		lotQueries:  lotQueries,
	}
}

// @Summary Register a lot
// @Description Register a perishable lot owned by the caller's organization
// @Tags lots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateLotRequest true "Lot attributes"
// @Success 201 {object} resdto.LotResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /lots [post]
func (h *LotHandler) CreateLot(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateLotRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	params := commands.CreateLotParams{
		Product:         req.Product,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		ExpiryDate:      req.ExpiryDate,
		ShelfBufferDays: req.ShelfBufferDays,
	}

	view, err := h.lotCommands.Create(c.Request.Context(), caller, params)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Lot validation failed",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromLotView(view))
}

// @Summary Update a lot
// @Description Patch quantity, unit, expiry date or shelf buffer of an owned lot
// @Tags lots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lot ID"
// @Param request body reqdto.UpdateLotRequest true "Fields to patch"
// @Success 200 {object} resdto.LotResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /lots/{id} [patch]
func (h *LotHandler) UpdateLot(c *gin.Context) {
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

	var req reqdto.UpdateLotRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	params := commands.UpdateLotParams{
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		ExpiryDate:      req.ExpiryDate,
		ShelfBufferDays: req.ShelfBufferDays,
	}

	view, err := h.lotCommands.Update(c.Request.Context(), caller, lotID, params)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrLotNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Lot not found",
			})
		case errors.Is(err, errs.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only the owning organization may update a lot",
			})
		case errors.Is(err, errs.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Lot validation failed",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromLotView(view))
}

// @Summary List visible lots
// @Description List lots whose freshness tier matches the caller's affiliation
// @Tags lots
// @Produce json
// @Security BearerAuth
// @Param owner_org_id query string false "Filter by owning organization"
// @Param product query string false "Filter by product substring"
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.LotListResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /lots [get]
func (h *LotHandler) ListLots(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	filters, err := parseLotFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	after, limit := parsePagination(c)

	views, next, err := h.lotQueries.ListVisible(c.Request.Context(), caller, filters, after, limit)
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

	c.JSON(http.StatusOK, resdto.FromLotViews(views, nextCursorString(next)))
}

// @Summary Get a lot
// @Description Fetch one lot by ID with its current freshness tier
// @Tags lots
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lot ID"
// @Success 200 {object} resdto.LotResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /lots/{id} [get]
func (h *LotHandler) GetLot(c *gin.Context) {
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

	view, err := h.lotQueries.GetByID(c.Request.Context(), caller, lotID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Lot not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromLotView(view))
}

func parseLotFilters(c *gin.Context) (queries.LotFilters, error) {
	var filters queries.LotFilters
	if raw := c.Query("owner_org_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, errors.New("invalid owner_org_id")
		}
		filters.OwnerOrgID = &id
	}
	if product := c.Query("product"); product != "" {
		filters.Product = &product
	}
	return filters, nil
}
