// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"worklog/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the custom tags to v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("report_type", validateReportType)
	_ = v.RegisterValidation("report_status", validateReportStatus)
	_ = v.RegisterValidation("date_only", validateDateOnly)
}

func validateReportType(fl validator.FieldLevel) bool {
	return models.ReportType(fl.Field().String()).Valid()
}

func validateReportStatus(fl validator.FieldLevel) bool {
	return models.ReportStatus(fl.Field().String()).Valid()
}

// validateDateOnly accepts YYYY-MM-DD strings.
func validateDateOnly(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}
