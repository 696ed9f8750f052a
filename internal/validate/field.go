// Package validate provides input validation utilities for Gridgate pipeline
// operations, ensuring data integrity across configuration and API boundaries.
//
// Implements validation rules for network addresses, URLs, and individual
// fields using the go-playground/validator library. Prevents malformed data
// from causing pipeline failures or operational issues.
//
// VALIDATION COVERAGE:
//   - Network Addresses: IP and port validation for the API server bind address
//   - Endpoint URLs: Remote spreadsheet API endpoint validation
//   - Fields: Single-value validation against arbitrary validator tags
//
// Used throughout CLI tools, APIs, configuration processing, and pipeline
// operations to ensure consistent input validation across all entry points.
package validate

import (
	"fmt"
	"net"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var (
	// Global validator instance using built-in validations
	validate *validator.Validate
)

func init() {
	validate = validator.New()
	// Using built-in validators: ip, url, min, max - no custom registration needed
}

// NetworkAddress represents a validated network address with host and port
// components for the management API endpoint. Provides a standardized structure
// for network addresses with built-in validation tags.
//
// The structure ensures addresses meet binding requirements before being used
// for API binding or client connections. Uses struct tags for automatic
// validation via the go-playground/validator library.
type NetworkAddress struct {
	Host string `validate:"required,ip"`              // Built-in IP validator
	Port int    `validate:"required,min=0,max=65535"` // Built-in range validator
}

// String returns the network address in standard "host:port" format suitable for
// network connections, configuration display, and logging.
func (na NetworkAddress) String() string {
	return fmt.Sprintf("%s:%d", na.Host, na.Port)
}

// ParseBindAddress parses and validates a "host:port" address string for API
// binding. Provides comprehensive validation including format checking, IP
// address validation, and port range verification.
//
// Essential for processing user-provided network addresses from configuration
// files and CLI arguments. Ensures endpoints are properly formatted and valid
// before attempting network operations, preventing runtime failures and
// providing clear error messages for troubleshooting.
func ParseBindAddress(addr string) (*NetworkAddress, error) {
	if addr == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address format '%s': %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port '%s': %w", portStr, err)
	}

	netAddr := &NetworkAddress{
		Host: host,
		Port: port,
	}

	// Validate using struct tags
	if err := validate.Struct(netAddr); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return netAddr, nil
}

// ValidateEndpointURL validates a remote API endpoint URL using the validator
// library's built-in url tag. Ensures the configured spreadsheet API base URL
// is well formed before the client attempts any requests against it.
func ValidateEndpointURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("endpoint URL cannot be empty")
	}
	if err := validate.Var(rawURL, "url"); err != nil {
		return fmt.Errorf("invalid endpoint URL '%s'", rawURL)
	}
	return nil
}

// ValidateField validates individual values against specified validation rules using
// the go-playground/validator library. Provides flexible validation for single fields
// without requiring struct definitions, useful for dynamic validation scenarios.
//
// Supports all built-in validation tags including IP addresses, numeric ranges,
// string patterns, and required field validation.
//
// Example: ValidateField("192.168.1.1", "required,ip")
func ValidateField(value interface{}, tag string) error {
	return validate.Var(value, tag)
}

// ValidateStruct validates a struct's fields against their `validate` tags.
// Used by configuration types (policy, rate limiter, diff) that declare
// constraints declaratively rather than in hand-written Validate methods.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
