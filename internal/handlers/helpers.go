package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "worklog/internal/errors"
	"worklog/internal/logger"
	"worklog/internal/metrics"
	"worklog/internal/middleware"
	"worklog/internal/models"
	"worklog/internal/services"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// getActor builds the service actor from the authenticated context.
// Returns ErrUnauthorized if the auth middleware did not run.
func getActor(c *gin.Context) (services.Actor, error) {
	id := c.GetString(middleware.EmployeeIDKey)
	role, _ := c.Get(middleware.RoleKey)
	r, ok := role.(models.Role)
	if id == "" || !ok {
		return services.Actor{}, apperrors.ErrUnauthorized
	}
	return services.Actor{ID: id, Role: r, IP: c.ClientIP()}, nil
}

// parsePathID validates a UUID path parameter.
func parsePathID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// optionalDate parses an optional YYYY-MM-DD value.
func optionalDate(value, field string) (*models.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, field+" must be in YYYY-MM-DD format")
	}
	return &d, nil
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func bindError(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"code", appErr.Code,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
		)
	}

	metrics.APIErrors.WithLabelValues(appErr.Code).Inc()
	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
