package utils

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// EnvExpander handles environment variable expansion in configuration values.
// Both ${VAR} and ${VAR:-default} are understood.
type EnvExpander struct {
	allowedVars []string
	pattern     *regexp.Regexp
	lookup      func(string) (string, bool)
	resolve     func(string) interface{}
}

// NewEnvExpander creates a new environment variable expander
func NewEnvExpander(allowedVars []string) *EnvExpander {
	// Pattern to match ${VAR_NAME} and ${VAR_NAME:-default}
	pattern := regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

	return &EnvExpander{
		allowedVars: allowedVars,
		pattern:     pattern,
		lookup:      os.LookupEnv,
	}
}

// WithLookup replaces os.LookupEnv as the variable source
func (e *EnvExpander) WithLookup(lookup func(string) (string, bool)) *EnvExpander {
	e.lookup = lookup
	return e
}

// WithScalarResolver sets a function that converts string values changed by
// expansion into typed values, so "${PORT}" can become an integer
func (e *EnvExpander) WithScalarResolver(resolve func(string) interface{}) *EnvExpander {
	e.resolve = resolve
	return e
}

// ExpandString expands environment variables in a string
func (e *EnvExpander) ExpandString(s string) (string, error) {
	return e.pattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := e.pattern.FindStringSubmatch(match)
		varName := groups[1]
		hasDefault := strings.Contains(match, ":-")

		// Check if variable is allowed
		if !e.isVarAllowed(varName) {
			// Return original string if not allowed (security)
			return match
		}

		value, ok := e.lookup(varName)
		if !ok || value == "" {
			if hasDefault {
				return groups[2]
			}
			// Return original string if environment variable is not set
			return match
		}

		return value
	}), nil
}

// ExpandMap expands environment variables in all string values of a map
func (e *EnvExpander) ExpandMap(m map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{})

	for key, value := range m {
		expandedValue, err := e.expandValue(value)
		if err != nil {
			return nil, fmt.Errorf("failed to expand value for key %s: %w", key, err)
		}
		result[key] = expandedValue
	}

	return result, nil
}

// expandValue recursively expands environment variables in various value types
func (e *EnvExpander) expandValue(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		expanded, err := e.ExpandString(v)
		if err != nil {
			return nil, err
		}
		if e.resolve != nil && expanded != v {
			return e.resolve(expanded), nil
		}
		return expanded, nil
	case map[string]interface{}:
		return e.ExpandMap(v)
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			expandedItem, err := e.expandValue(item)
			if err != nil {
				return nil, err
			}
			result[i] = expandedItem
		}
		return result, nil
	default:
		// Return unchanged for non-string types
		return value, nil
	}
}

// isVarAllowed checks if an environment variable is allowed for expansion
func (e *EnvExpander) isVarAllowed(varName string) bool {
	for _, allowed := range e.allowedVars {
		if MatchPattern(allowed, varName) {
			return true
		}
	}
	return false
}

// MatchPattern checks if a variable name matches an allowed pattern.
// Supports wildcards like "LOG_*" and "*_SECRET"
func MatchPattern(pattern, varName string) bool {
	if pattern == "*" || pattern == varName {
		return true
	}

	// Handle wildcard patterns
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(varName, prefix)
	}

	if strings.HasPrefix(pattern, "*") {
		suffix := strings.TrimPrefix(pattern, "*")
		return strings.HasSuffix(varName, suffix)
	}

	return false
}

// GetEnvWithDefault returns environment variable value or default if not set
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
