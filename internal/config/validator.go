package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"

	"github.com/oblo-platform/oblo/pkg/types"
)

// ValidationError represents a settings validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Validator validates settings
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new settings validator
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// Validate validates the entire settings
func (v *Validator) Validate(s *types.Settings) error {
	v.errors = v.errors[:0] // Reset errors

	v.validateRequired(s)
	v.validateServer(s)
	v.validateAdmin(s)
	v.validateEmail(s)
	v.validateCORS(s)

	if len(v.errors) > 0 {
		return v.errors
	}

	return nil
}

// validateRequired reports every required field left empty, with its
// description
func (v *Validator) validateRequired(s *types.Settings) {
	for _, f := range settingFields {
		if !f.Required {
			continue
		}
		if fieldValue(s, f).IsZero() {
			msg := "field required"
			if f.Description != "" {
				msg = fmt.Sprintf("field required (%s)", f.Description)
			}
			v.addError(f.Key, "", msg)
		}
	}
}

func (v *Validator) validateServer(s *types.Settings) {
	if !slices.Contains(types.Environments, s.Env) {
		v.addError("ENV", s.Env, fmt.Sprintf("must be one of: %s", strings.Join(types.Environments, ", ")))
	}

	if !v.isValidHTTPURL(s.Host) {
		v.addError("HOST", s.Host, "invalid URL format")
	}

	if s.Port < 1 || s.Port > 65535 {
		v.addError("PORT", fmt.Sprint(s.Port), "port must be between 1 and 65535")
	}

	if !strings.HasPrefix(s.BaseRouterPrefix, "/") {
		v.addError("BASE_ROUTER_PREFIX", s.BaseRouterPrefix, "prefix must start with /")
	}

	if s.LogConfigPath == "" {
		v.addError("LOG_CONFIG_PATH", "", "logging configuration path is required")
	}
}

func (v *Validator) validateAdmin(s *types.Settings) {
	if s.FirstAdminEmail != "" && !v.isValidEmail(s.FirstAdminEmail) {
		v.addError("FIRST_ADMIN_EMAIL", s.FirstAdminEmail, "invalid email address")
	}
}

func (v *Validator) validateEmail(s *types.Settings) {
	if !s.EmailEnabled {
		return
	}

	if !v.isValidEmail(s.EmailSender) {
		v.addError("EMAIL_SENDER", s.EmailSender, "valid sender address required when emails are enabled")
	}
	if !v.isValidEmail(s.EmailAccount) {
		v.addError("EMAIL_ACCOUNT", s.EmailAccount, "valid account address required when emails are enabled")
	}
	if s.EmailSSLServer == "" {
		v.addError("EMAIL_SSL_SERVER", "", "server required when emails are enabled")
	}
}

func (v *Validator) validateCORS(s *types.Settings) {
	for _, origin := range strings.Fields(s.CORSOtherOrigins) {
		if !v.isValidHTTPURL(origin) {
			v.addError("CORS_OTHER_ORIGINS", origin, "invalid origin URL")
		}
	}
}

// Helper methods

func (v *Validator) addError(field, value, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

func (v *Validator) isValidHTTPURL(str string) bool {
	u, err := url.Parse(str)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (v *Validator) isValidEmail(str string) bool {
	addr, err := mail.ParseAddress(str)
	return err == nil && addr.Address == str
}
