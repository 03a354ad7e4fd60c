package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/oblo-platform/oblo/pkg/utils"
)

// FileFormat is a configuration file format
type FileFormat string

const (
	FileYAML FileFormat = "yaml"
	FileTOML FileFormat = "toml"
	FileJSON FileFormat = "json"
)

// DefaultAllowedEnvVars are the variables a logging configuration may reference
var DefaultAllowedEnvVars = []string{"ENV", "LOG_*"}

// handlerKeyAliases maps dictConfig handler keys onto ours
var handlerKeyAliases = map[string]string{
	"maxBytes":    "max_bytes",
	"backupCount": "backup_count",
	"exactLevel":  "exact_level",
}

// Loader reads logging configuration files
type Loader struct {
	envExpander *utils.EnvExpander
}

// NewLoader creates a loader expanding only allowedEnvVars; nil means
// DefaultAllowedEnvVars
func NewLoader(allowedEnvVars []string) *Loader {
	if allowedEnvVars == nil {
		allowedEnvVars = DefaultAllowedEnvVars
	}
	expander := utils.NewEnvExpander(allowedEnvVars).WithScalarResolver(resolveScalar)
	return &Loader{envExpander: expander}
}

// resolveScalar re-reads an expanded value as a YAML scalar so numbers and
// booleans keep their type. Anything else stays a string.
func resolveScalar(s string) interface{} {
	var v interface{}
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	switch v.(type) {
	case int, int64, uint64, float64, bool:
		return v
	}
	return s
}

// LoadConfigFile loads a logging configuration with the default loader
func LoadConfigFile(path string) (Config, error) {
	return NewLoader(nil).LoadFromFile(path)
}

// LoadFromFile loads a configuration file; the format follows the extension
func (l *Loader) LoadFromFile(filePath string) (Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("logging configuration file not found: %s", filePath)
	}

	format, err := DetectFormat(filePath)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open logging configuration: %w", err)
	}
	defer file.Close()

	return l.LoadFromReader(file, format)
}

// LoadFromReader loads configuration from an io.Reader
func (l *Loader) LoadFromReader(reader io.Reader, format FileFormat) (Config, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read logging configuration: %w", err)
	}
	return l.LoadFromBytes(content, format)
}

// LoadFromBytes parses content into a raw map, expands allowed environment
// variables and decodes the result into a Config. The result is not
// validated; NewManager does that.
func (l *Loader) LoadFromBytes(content []byte, format FileFormat) (Config, error) {
	raw, err := parse(content, format)
	if err != nil {
		return Config{}, err
	}
	if raw == nil {
		return Config{}, fmt.Errorf("logging configuration is empty")
	}

	expanded, err := l.envExpander.ExpandMap(raw)
	if err != nil {
		return Config{}, fmt.Errorf("failed to expand environment variables: %w", err)
	}
	normalizeHandlerKeys(expanded)

	// Marshal back to YAML and unmarshal into typed structure
	expandedBytes, err := yaml.Marshal(expanded)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal expanded configuration: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(expandedBytes, &config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal logging configuration: %w", err)
	}
	return config, nil
}

// DetectFormat derives the format from a file extension
func DetectFormat(path string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FileYAML, nil
	case ".toml":
		return FileTOML, nil
	case ".json":
		return FileJSON, nil
	}
	return "", fmt.Errorf("cannot detect format from file extension: %s", path)
}

func parse(data []byte, format FileFormat) (map[string]interface{}, error) {
	var result map[string]interface{}
	switch format {
	case FileYAML:
		if err := yaml.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FileJSON:
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FileTOML:
		if err := toml.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return result, nil
}

func normalizeHandlerKeys(raw map[string]interface{}) {
	handlers, ok := raw["handlers"].(map[string]interface{})
	if !ok {
		return
	}
	for _, h := range handlers {
		hm, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		for from, to := range handlerKeyAliases {
			if v, exists := hm[from]; exists {
				if _, taken := hm[to]; !taken {
					hm[to] = v
				}
				delete(hm, from)
			}
		}
	}
}
