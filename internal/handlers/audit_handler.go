package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "worklog/internal/errors"
	"worklog/internal/pagination"
	"worklog/internal/services"
)

// AuditHandler serves the audit trail.
type AuditHandler struct {
	auditService services.AuditServicer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService services.AuditServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListAuditLogsQuery holds the filters accepted by GET /audit-logs.
type ListAuditLogsQuery struct {
	pagination.PageRequest
	EntityType string `form:"entity_type" binding:"omitempty,oneof=daily_log report"`
	EntityID   string `form:"entity_id" binding:"omitempty,uuid"`
	ActorID    string `form:"actor_id" binding:"omitempty,uuid"`
	From       string `form:"from"`
	To         string `form:"to"`
}

func optionalTime(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, field+" must be an RFC 3339 timestamp")
	}
	return &t, nil
}

// ListAuditLogs handles GET /audit-logs.
// @Summary     List audit entries
// @Description Audit trail of daily log and report mutations, newest first. HR admins only.
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       entity_type query string false "daily_log or report"
// @Param       entity_id   query string false "Entity ID"
// @Param       actor_id    query string false "Actor ID"
// @Param       from        query string false "From timestamp (RFC 3339)"
// @Param       to          query string false "To timestamp (RFC 3339)"
// @Param       page        query int    false "Page number (default 1)"
// @Param       limit       query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} map[string]interface{} "audit_logs, total, page, limit"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ListAuditLogsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	from, err := optionalTime(q.From, "from")
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := optionalTime(q.To, "to")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.auditService.List(c.Request.Context(), actor, services.AuditFilter{
		EntityType: optionalString(q.EntityType),
		EntityID:   optionalString(q.EntityID),
		ActorID:    optionalString(q.ActorID),
		From:       from,
		To:         to,
	}, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Envelope("audit_logs"))
}
