package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/catalog/internal/audit"
	"github.com/mrlokans/catalog/internal/entities"
)

const (
	defaultAuditLimit = 25
	maxAuditLimit     = 100
)

var auditEntityTypes = map[string]bool{
	audit.EntityGenre:        true,
	audit.EntityAuthor:       true,
	audit.EntityBook:         true,
	audit.EntityBookInstance: true,
	audit.EntityCatalog:      true,
}

type AuditEventsResponse struct {
	Events []entities.AuditEvent `json:"events"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

type AuditController struct {
	auditService *audit.Service
}

func NewAuditController(auditService *audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// GetAuditEvents returns the change log as JSON, most recent first.
// GET /api/audit?limit=25&offset=0
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAuditLimit)))
	if err != nil || limit < 1 {
		respondBadRequest(c, "invalid limit")
		return
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		respondBadRequest(c, "invalid offset")
		return
	}

	events, total, err := ac.auditService.GetEvents(c.Request.Context(), limit, offset)
	if err != nil {
		respondInternalError(c, err, "get audit events")
		return
	}

	c.JSON(http.StatusOK, AuditEventsResponse{
		Events: events,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetEntityHistory returns every recorded change of one catalog record.
// GET /api/audit/:type/:id
func (ac *AuditController) GetEntityHistory(c *gin.Context) {
	entityType := c.Param("type")
	if !auditEntityTypes[entityType] {
		respondNotFound(c, "entity type")
		return
	}

	events, err := ac.auditService.GetEventsForEntity(c.Request.Context(), entityType, c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "get entity history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
