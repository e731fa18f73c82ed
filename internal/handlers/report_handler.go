package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "worklog/internal/errors"
	"worklog/internal/models"
	"worklog/internal/pagination"
	"worklog/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles report lifecycle requests.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// CreateReportRequest represents the request payload for creating a draft report.
type CreateReportRequest struct {
	EmpID         string            `json:"emp_id" binding:"omitempty,uuid"`
	ReportType    models.ReportType `json:"report_type" binding:"required,report_type"`
	WeekStartDate string            `json:"week_start_date" binding:"omitempty,date_only"`
	WeekEndDate   string            `json:"week_end_date" binding:"omitempty,date_only"`
	Content       string            `json:"content" binding:"max=10000"`
}

// UpdateReportRequest edits a report. Sending report_date on a draft submits it.
type UpdateReportRequest struct {
	ID         string  `json:"id" binding:"required,uuid"`
	Content    *string `json:"content" binding:"omitempty,max=10000"`
	ReportDate *string `json:"report_date" binding:"omitempty,date_only"`
}

// SubmitWeeklyRequest represents the request payload for the weekly submission.
type SubmitWeeklyRequest struct {
	Content string `json:"content" binding:"max=10000"`
}

// ReportFilterQuery holds the filters shared by list and export.
type ReportFilterQuery struct {
	EmpID         string `form:"emp_id" binding:"omitempty,uuid"`
	ReportType    string `form:"report_type" binding:"omitempty,report_type"`
	WeekStartDate string `form:"week_start_date" binding:"omitempty,date_only"`
	WeekEndDate   string `form:"week_end_date" binding:"omitempty,date_only"`
	Status        string `form:"status" binding:"omitempty,report_status"`
}

// ListReportsQuery holds the filters accepted by GET /reports.
type ListReportsQuery struct {
	pagination.PageRequest
	ReportFilterQuery
}

func (q ReportFilterQuery) filter() (services.ReportFilter, error) {
	start, err := optionalDate(q.WeekStartDate, "week_start_date")
	if err != nil {
		return services.ReportFilter{}, err
	}
	end, err := optionalDate(q.WeekEndDate, "week_end_date")
	if err != nil {
		return services.ReportFilter{}, err
	}

	f := services.ReportFilter{
		EmpID:         optionalString(q.EmpID),
		WeekStartDate: start,
		WeekEndDate:   end,
	}
	if q.ReportType != "" {
		t := models.ReportType(q.ReportType)
		f.ReportType = &t
	}
	if q.Status != "" {
		s := models.ReportStatus(q.Status)
		f.Status = &s
	}
	return f, nil
}

// CreateReport handles POST /reports.
// @Summary     Create a draft report
// @Description Stores a DRAFT with a preview aggregation of unlocked hours. Nothing is locked.
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateReportRequest true "Report details"
// @Success     201 {object} services.ReportDetail "Draft created"
// @Failure     400 {object} ErrorResponse "Invalid input, duplicate report or wrong report type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports [post]
func (h *ReportHandler) CreateReport(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	start, err := optionalDate(req.WeekStartDate, "week_start_date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	end, err := optionalDate(req.WeekEndDate, "week_end_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.CreateDraft(c.Request.Context(), actor, services.CreateReportInput{
		EmpID:         req.EmpID,
		ReportType:    req.ReportType,
		WeekStartDate: start,
		WeekEndDate:   end,
		Content:       req.Content,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// UpdateReport handles PUT /reports.
// @Summary     Update or submit a report
// @Description Edits report content. report_date on a draft submits it; submitted reports are editable by HR admins only.
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateReportRequest true "Report changes"
// @Success     200 {object} services.ReportDetail "Report updated"
// @Failure     400 {object} ErrorResponse "Invalid input, duplicate report or window closed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Report not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports [put]
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	report, err := h.reportService.Update(c.Request.Context(), actor, services.UpdateReportInput{
		ID:      req.ID,
		Content: req.Content,
		Submit:  req.ReportDate != nil,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// SubmitWeekly handles POST /reports/submit-weekly.
// @Summary     Submit this week's report
// @Description Aggregates Monday..Friday of the current week, stores the WEEKLY report and locks the entries.
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SubmitWeeklyRequest false "Report content"
// @Success     201 {object} services.ReportDetail "Report submitted"
// @Failure     400 {object} ErrorResponse "Window closed, duplicate report or wrong report type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/submit-weekly [post]
func (h *ReportHandler) SubmitWeekly(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SubmitWeeklyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(c, bindError(err))
		return
	}

	report, err := h.reportService.SubmitWeekly(c.Request.Context(), actor, req.Content)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// GetReport handles GET /reports/:id.
// @Summary     Get a report
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Report ID"
// @Success     200 {object} services.ReportDetail "Report"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     404 {object} ErrorResponse "Report not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/{id} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
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

	report, err := h.reportService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// ListReports handles GET /reports.
// @Summary     List reports
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       emp_id          query string false "Employee ID"
// @Param       report_type     query string false "WEEKLY or DAILY"
// @Param       week_start_date query string false "Period starts on or after (YYYY-MM-DD)"
// @Param       week_end_date   query string false "Period ends on or before (YYYY-MM-DD)"
// @Param       status          query string false "DRAFT or SUBMITTED"
// @Param       page            query int    false "Page number (default 1)"
// @Param       limit           query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} map[string]interface{} "reports, total, page, limit"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ListReportsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	filter, err := q.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reportService.List(c.Request.Context(), actor, filter, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result.Envelope("reports"))
}

// ExportReports handles GET /reports/export.
// @Summary     Export reports
// @Description Downloads the reports in scope as an xlsx workbook, one column per project code.
// @Tags        reports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       emp_id          query string false "Employee ID"
// @Param       report_type     query string false "WEEKLY or DAILY"
// @Param       week_start_date query string false "Period starts on or after (YYYY-MM-DD)"
// @Param       week_end_date   query string false "Period ends on or before (YYYY-MM-DD)"
// @Param       status          query string false "DRAFT or SUBMITTED"
// @Success     200 {file} file "Workbook"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Forbidden"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/export [get]
func (h *ReportHandler) ExportReports(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ReportFilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	filter, err := q.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	buf, filename, err := h.reportService.Export(c.Request.Context(), actor, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if buf == nil {
		respondWithError(c, apperrors.ErrInternalServer)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
