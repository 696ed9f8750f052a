// Package validate provides configuration validation utilities for Gridgate components.
//
// This file implements common validation patterns used across multiple config
// packages to ensure consistency and reduce duplication. All functions leverage
// the go-playground/validator library for standardized validation behavior.
//
// VALIDATION UTILITIES:
//   - Port validation: Standard port range checking (1-65535)
//   - String validation: Required field and non-empty string checking
//   - Timeout validation: Positive duration validation for timeouts
//   - Limit validation: Positive numeric ceiling validation for policy limits
//
// These utilities replace manual validation code scattered across config packages
// with centralized, consistent validation using the validator library's built-in
// tags and error handling.
package validate

import (
	"fmt"
	"time"
)

// ValidatePortRange validates that a port number is within the valid range (1-65535).
// Uses the validator library for consistent error handling and messaging.
//
// Essential for ensuring the API server binds to a valid port reachable by CLI
// tools. Rejects port 0 (OS-assigned) since operators need predictable addresses
// for the management endpoint.
func ValidatePortRange(port int) error {
	return ValidateField(port, "required,min=1,max=65535")
}

// ValidateRequiredString validates that a string field is not empty.
// Uses the validator library for consistent error handling across config validation.
//
// Critical for ensuring required configuration fields like document IDs, endpoint
// URLs, and policy file paths are properly specified before service initialization.
// Prevents runtime failures from missing essential configuration parameters.
func ValidateRequiredString(value, fieldName string) error {
	if err := ValidateField(value, "required"); err != nil {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidatePositiveTimeout validates that a timeout duration is positive (> 0).
// Essential for ensuring timeout configurations don't cause infinite waits or
// immediate failures in remote API operations.
//
// Used across HTTP client timeouts, throttle windows, and cache TTLs to ensure
// proper timing behavior in pipeline operations.
func ValidatePositiveTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

// ValidatePositiveLimit validates that a numeric ceiling is positive (> 0).
// Policy limits of zero would reject every mutation, which is never what an
// operator intends; explicit disabling uses dedicated boolean switches instead.
//
// Used across policy configuration (cell ceilings, batch sizes, dimension
// limits) and rate limiter configuration (rates, burst capacities).
func ValidatePositiveLimit(limit int64, name string) error {
	if limit <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}
