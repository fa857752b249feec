package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("cronspec", validateCronSpec)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCronSpec accepts empty strings; pair it with required_if where needed.
func validateCronSpec(fl validator.FieldLevel) bool {
	spec := fl.Field().String()
	if spec == "" {
		return true
	}
	_, err := cronParser.Parse(spec)
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Backtest.StartDate != "" && cfg.Backtest.EndDate != "" {
		startDate, err := time.Parse("2006-01-02", cfg.Backtest.StartDate)
		if err != nil {
			return fmt.Errorf("invalid backtest start_date format: %w", err)
		}
		endDate, err := time.Parse("2006-01-02", cfg.Backtest.EndDate)
		if err != nil {
			return fmt.Errorf("invalid backtest end_date format: %w", err)
		}
		if !startDate.Before(endDate) {
			return fmt.Errorf("backtest start_date must be before end_date")
		}
	}

	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections && cfg.Database.MaxConnections > 0 {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	if cfg.Analysis.ConfidenceFloor*(cfg.Analysis.TargetOdds) <= 1 {
		return fmt.Errorf("confidence_floor %.2f at odds %.2f can never produce positive expected value",
			cfg.Analysis.ConfidenceFloor, cfg.Analysis.TargetOdds)
	}

	if cfg.Scheduler.Enabled && len(cfg.FootballAPI.Championships) == 0 {
		return fmt.Errorf("scheduler requires at least one championship in football_api.championships")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			b.WriteString(fmt.Sprintf("- Field '%s' is required\n", field))
		case "url":
			b.WriteString(fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value))
		case "min", "max":
			b.WriteString(fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag))
		case "gt", "gte", "lt", "lte":
			b.WriteString(fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag))
		case "environment":
			b.WriteString(fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field))
		case "loglevel":
			b.WriteString(fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field))
		case "cronspec":
			b.WriteString(fmt.Sprintf("- Field '%s' must be a valid cron expression, got '%v'\n", field, value))
		case "oneof":
			b.WriteString(fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value))
		default:
			b.WriteString(fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag))
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() {
		if cfg.Database.Driver == DriverPostgres && (cfg.Database.SSLMode == "" || cfg.Database.SSLMode == "disable") {
			return fmt.Errorf("production environment requires database SSL mode to be 'require' or 'verify-full'")
		}
		if cfg.Database.Driver == DriverSQLite {
			return fmt.Errorf("production environment requires the postgres driver")
		}
		if isTestCredential(cfg.FootballAPI.APIKey) {
			return fmt.Errorf("production environment should not use a test football API key")
		}
	}
	return nil
}

var testCredentialPattern = regexp.MustCompile(`(?i)test|demo|example|placeholder|YOUR_`)

// isTestCredential checks if a credential looks like a test credential
func isTestCredential(credential string) bool {
	return testCredentialPattern.MatchString(credential)
}
