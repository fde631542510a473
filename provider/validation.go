package provider

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValidateConfigFields validates configuration against provided field definitions
func ValidateConfigFields(providerName string, config map[string]string, requiredFields []ConfigField) error {
	for _, field := range requiredFields {
		value, exists := config[field.Key]
		if !field.Required && (!exists || value == "") {
			continue
		}

		if !exists {
			return fmt.Errorf("%s: required field '%s' is missing", providerName, field.Key)
		}

		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s: required field '%s' cannot be empty", providerName, field.Key)
		}

		// Type-specific validation
		if err := validateFieldType(providerName, field, value); err != nil {
			return err
		}

		// Pattern validation
		if err := validateFieldPattern(providerName, field, value); err != nil {
			return err
		}

		// Length validation
		if err := validateFieldLength(providerName, field, value); err != nil {
			return err
		}
	}

	return nil
}

// validateFieldType validates field based on its type
func validateFieldType(providerName string, field ConfigField, value string) error {
	switch field.Type {
	case "number":
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("%s: field '%s' must be a number", providerName, field.Key)
		}
		return nil
	case "url":
		if _, err := ParseProxyURL(value); err != nil {
			return fmt.Errorf("%s: field '%s' must be a valid url", providerName, field.Key)
		}
		return nil
	case "boolean":
		if value != "true" && value != "false" {
			return fmt.Errorf("%s: field '%s' must be 'true' or 'false'", providerName, field.Key)
		}
		return nil
	default:
		return nil
	}
}

// validateFieldPattern validates field against regex pattern
func validateFieldPattern(providerName string, field ConfigField, value string) error {
	if field.Pattern == "" {
		return nil
	}

	// Special case for environment field
	if field.Key == "environment" {
		validEnvs := []string{"sandbox", "test", "production"}
		for _, env := range validEnvs {
			if value == env {
				return nil
			}
		}
		return fmt.Errorf("%s: environment must be one of: %s", providerName, strings.Join(validEnvs, ", "))
	}

	matched, err := regexp.MatchString(field.Pattern, value)
	if err != nil {
		return fmt.Errorf("%s: invalid pattern for field '%s': %v", providerName, field.Key, err)
	}

	if !matched {
		return fmt.Errorf("%s: field '%s' does not match required pattern", providerName, field.Key)
	}

	return nil
}

// validateFieldLength validates field length constraints, counted in characters
func validateFieldLength(providerName string, field ConfigField, value string) error {
	length := utf8.RuneCountInString(value)

	if field.MinLength > 0 && field.MinLength == field.MaxLength && length != field.MinLength {
		return fmt.Errorf("%s: field '%s' must be exactly %d characters", providerName, field.Key, field.MinLength)
	}

	if field.MinLength > 0 && length < field.MinLength {
		return fmt.Errorf("%s: field '%s' must be at least %d characters", providerName, field.Key, field.MinLength)
	}

	if field.MaxLength > 0 && length > field.MaxLength {
		return fmt.Errorf("%s: field '%s' must not exceed %d characters", providerName, field.Key, field.MaxLength)
	}

	return nil
}
