package utils

import (
	"testing"
)

func TestEnvExpander_ExpandString(t *testing.T) {
	t.Setenv("LOG_DIR", "/var/log/oblo")
	t.Setenv("ENV", "prod")
	t.Setenv("POSTGRES_PASSWORD", "hunter2")

	expander := NewEnvExpander([]string{"ENV", "LOG_*"})

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple variable expansion",
			input:    "${LOG_DIR}",
			expected: "/var/log/oblo",
		},
		{
			name:     "Variable in string",
			input:    "${LOG_DIR}/warnings.log",
			expected: "/var/log/oblo/warnings.log",
		},
		{
			name:     "Multiple variables",
			input:    "${LOG_DIR}/${ENV}.log",
			expected: "/var/log/oblo/prod.log",
		},
		{
			name:     "Non-existent variable",
			input:    "${LOG_MISSING}",
			expected: "${LOG_MISSING}", // Should remain unchanged
		},
		{
			name:     "Default for unset variable",
			input:    "${LOG_MISSING:-logs}/days.log",
			expected: "logs/days.log",
		},
		{
			name:     "Default ignored when set",
			input:    "${LOG_DIR:-logs}",
			expected: "/var/log/oblo",
		},
		{
			name:     "Disallowed variable is kept",
			input:    "${POSTGRES_PASSWORD}",
			expected: "${POSTGRES_PASSWORD}",
		},
		{
			name:     "No variables",
			input:    "plain text",
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := expander.ExpandString(tt.input)
			if err != nil {
				t.Errorf("ExpandString() error = %v", err)
				return
			}
			if result != tt.expected {
				t.Errorf("ExpandString() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestEnvExpander_WithLookup(t *testing.T) {
	values := map[string]string{"LOG_LEVEL": "WARNING"}
	expander := NewEnvExpander([]string{"LOG_*"}).WithLookup(func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	})

	result, err := expander.ExpandMap(map[string]interface{}{
		"root": map[string]interface{}{
			"level":    "${LOG_LEVEL}",
			"handlers": []interface{}{"console", "${LOG_EXTRA:-file}"},
		},
		"version": 1,
	})
	if err != nil {
		t.Fatalf("ExpandMap() error = %v", err)
	}

	root := result["root"].(map[string]interface{})
	if root["level"] != "WARNING" {
		t.Errorf("level = %v, want WARNING", root["level"])
	}
	handlers := root["handlers"].([]interface{})
	if handlers[1] != "file" {
		t.Errorf("handlers[1] = %v, want file", handlers[1])
	}
	if result["version"] != 1 {
		t.Errorf("version = %v, want 1", result["version"])
	}
}

func TestEnvExpander_WithScalarResolver(t *testing.T) {
	values := map[string]string{"LOG_MAX_BYTES": "20000"}
	expander := NewEnvExpander([]string{"LOG_*"}).
		WithLookup(func(key string) (string, bool) {
			v, ok := values[key]
			return v, ok
		}).
		WithScalarResolver(func(s string) interface{} {
			return "resolved:" + s
		})

	result, err := expander.ExpandMap(map[string]interface{}{
		"max_bytes": "${LOG_MAX_BYTES}",
		"filename":  "logs/warnings.log",
		"level":     "${OTHER_VAR}",
	})
	if err != nil {
		t.Fatalf("ExpandMap() error = %v", err)
	}

	if result["max_bytes"] != "resolved:20000" {
		t.Errorf("max_bytes = %v, want resolved:20000", result["max_bytes"])
	}
	// untouched values are not resolved
	if result["filename"] != "logs/warnings.log" {
		t.Errorf("filename = %v, want logs/warnings.log", result["filename"])
	}
	if result["level"] != "${OTHER_VAR}" {
		t.Errorf("level = %v, want ${OTHER_VAR}", result["level"])
	}
}

func TestMatchPattern(t *testing.T) {
	allowedVars := []string{"ENV", "LOG_*", "*_SECRET"}
	expander := NewEnvExpander(allowedVars)

	tests := []struct {
		name     string
		varName  string
		expected bool
	}{
		{
			name:     "Exact match",
			varName:  "ENV",
			expected: true,
		},
		{
			name:     "Wildcard suffix match",
			varName:  "SESSION_SECRET",
			expected: true,
		},
		{
			name:     "Wildcard prefix match",
			varName:  "LOG_DIR",
			expected: true,
		},
		{
			name:     "Not allowed",
			varName:  "POSTGRES_PASSWORD",
			expected: false,
		},
		{
			name:     "Case sensitive",
			varName:  "log_dir",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expander.isVarAllowed(tt.varName)
			if result != tt.expected {
				t.Errorf("isVarAllowed() = %v, want %v", result, tt.expected)
			}
		})
	}

	if !MatchPattern("*", "ANYTHING") {
		t.Errorf("MatchPattern(*) should match everything")
	}
}

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("OBLO_TEST_VAR", "test_value")

	tests := []struct {
		name         string
		key          string
		defaultValue string
		expected     string
	}{
		{
			name:         "Existing variable",
			key:          "OBLO_TEST_VAR",
			defaultValue: "default",
			expected:     "test_value",
		},
		{
			name:         "Non-existing variable",
			key:          "OBLO_TEST_NONEXISTENT",
			defaultValue: "default",
			expected:     "default",
		},
		{
			name:         "Empty default",
			key:          "OBLO_TEST_NONEXISTENT",
			defaultValue: "",
			expected:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetEnvWithDefault(tt.key, tt.defaultValue)
			if result != tt.expected {
				t.Errorf("GetEnvWithDefault() = %v, want %v", result, tt.expected)
			}
		})
	}
}
