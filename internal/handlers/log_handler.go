package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "worklog/internal/errors"
	"worklog/internal/models"
	"worklog/internal/pagination"
	"worklog/internal/services"
)

// LogHandler handles daily log requests.
type LogHandler struct {
	logService         services.DailyLogServicer
	aggregationService services.AggregationServicer
}

// NewLogHandler creates a new LogHandler.
func NewLogHandler(logService services.DailyLogServicer, aggregationService services.AggregationServicer) *LogHandler {
	return &LogHandler{logService: logService, aggregationService: aggregationService}
}

// UpsertLogRequest represents the request payload for writing a daily log.
type UpsertLogRequest struct {
	EmpID     string       `json:"emp_id" binding:"omitempty,uuid"`
	ProjectID string       `json:"project_id" binding:"required,uuid"`
	LogDate   string       `json:"log_date" binding:"required,date_only"`
	Hours     models.Hours `json:"hours" binding:"required" swaggertype:"number"`
	Notes     string       `json:"notes" binding:"max=2000"`
}

// UpdateLogRequest represents the request payload for editing a daily log by id.
type UpdateLogRequest struct {
	Hours models.Hours `json:"hours" binding:"required" swaggertype:"number"`
	Notes string       `json:"notes" binding:"max=2000"`
}

// ListLogsQuery holds the filters accepted by GET /logs.
type ListLogsQuery struct {
	pagination.PageRequest
	EmpID     string `form:"emp_id" binding:"omitempty,uuid"`
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
	StartDate string `form:"start_date" binding:"omitempty,date_only"`
	EndDate   string `form:"end_date" binding:"omitempty,date_only"`
	Locked    *bool  `form:"locked"`
}

// UpsertLog handles POST /logs.
// @Summary     Create or update a daily log
// @Description Writes the entry for (employee, project, date). Any past or current date is accepted.
// @Tags        logs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpsertLogRequest true "Daily log"
// @Success     201 {object} models.DailyLog "Log created"
// @Success     200 {object} models.DailyLog "Log updated"
// @Failure     400 {object} ErrorResponse "Invalid input or locked entry"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Project not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logs [post]
func (h *LogHandler) UpsertLog(c *gin.Context) {
	h.upsert(c, h.logService.Upsert)
}

// UpsertDailyLog handles POST /logs/daily.
// @Summary     Log hours for the current week
// @Description Same as POST /logs, but log_date must fall on Monday..Friday of the current week.
// @Tags        logs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpsertLogRequest true "Daily log"
// @Success     201 {object} models.DailyLog "Log created"
// @Success     200 {object} models.DailyLog "Log updated"
// @Failure     400 {object} ErrorResponse "Invalid input or locked entry"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logs/daily [post]
func (h *LogHandler) UpsertDailyLog(c *gin.Context) {
	h.upsert(c, h.logService.UpsertCurrentWeek)
}

type upsertFunc func(ctx context.Context, actor services.Actor, in services.UpsertLogInput) (*services.UpsertLogResult, error)

func (h *LogHandler) upsert(c *gin.Context, write upsertFunc) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	logDate, err := optionalDate(req.LogDate, "log_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	res, err := write(c.Request.Context(), actor, services.UpsertLogInput{
		EmpID:     req.EmpID,
		ProjectID: req.ProjectID,
		LogDate:   *logDate,
		Hours:     req.Hours,
		Notes:     req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"log": res.Log})
}

// UpdateLog handles PUT /logs/:id.
// @Summary     Edit a daily log
// @Description Replaces hours and notes of an unlocked entry.
// @Tags        logs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Log ID"
// @Param       request body UpdateLogRequest true "New values"
// @Success     200 {object} models.DailyLog "Log updated"
// @Failure     400 {object} ErrorResponse "Invalid input or locked entry"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Log not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logs/{id} [put]
func (h *LogHandler) UpdateLog(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	log, err := h.logService.Update(c.Request.Context(), actor, id, req.Hours, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": log})
}

// ListLogs handles GET /logs.
// @Summary     List daily logs
// @Description Lists the entries visible to the caller, newest first.
// @Tags        logs
// @Produce     json
// @Security    BearerAuth
// @Param       emp_id     query string false "Employee ID"
// @Param       project_id query string false "Project ID"
// @Param       start_date query string false "From date (YYYY-MM-DD)"
// @Param       end_date   query string false "To date (YYYY-MM-DD)"
// @Param       locked     query bool   false "Filter by locked state"
// @Param       page       query int    false "Page number (default 1)"
// @Param       limit      query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} map[string]interface{} "logs, total, page, limit"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logs [get]
func (h *LogHandler) ListLogs(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ListLogsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	start, err := optionalDate(q.StartDate, "start_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	end, err := optionalDate(q.EndDate, "end_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.logService.List(c.Request.Context(), actor, services.LogFilter{
		EmpID:     optionalString(q.EmpID),
		ProjectID: optionalString(q.ProjectID),
		StartDate: start,
		EndDate:   end,
		Locked:    q.Locked,
	}, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Envelope("logs"))
}

// CurrentWeekLogs handles GET /logs/daily.
// @Summary     Current week logs
// @Description Entries from Monday of the current week up to today.
// @Tags        logs
// @Produce     json
// @Security    BearerAuth
// @Param       emp_id query string false "Employee ID (defaults to the caller)"
// @Success     200 {object} map[string]interface{} "logs"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logs/daily [get]
func (h *LogHandler) CurrentWeekLogs(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	logs, err := h.logService.CurrentWeek(c.Request.Context(), actor, c.Query("emp_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// AggregateLogs handles GET /logs/aggregate.
// @Summary     Aggregate hours
// @Description Per-project totals of unlocked entries for one employee and date range.
// @Tags        logs
// @Produce     json
// @Security    BearerAuth
// @Param       emp_id     query string false "Employee ID (defaults to the caller)"
// @Param       start_date query string true  "From date (YYYY-MM-DD)"
// @Param       end_date   query string true  "To date (YYYY-MM-DD)"
// @Success     200 {object} services.AggregateResult "Aggregated hours"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /logs/aggregate [get]
func (h *LogHandler) AggregateLogs(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	start, err := optionalDate(c.Query("start_date"), "start_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	end, err := optionalDate(c.Query("end_date"), "end_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if start == nil || end == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date and end_date are required"))
		return
	}

	result, err := h.aggregationService.Aggregate(c.Request.Context(), actor, c.Query("emp_id"), *start, *end)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
