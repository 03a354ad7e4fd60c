package config

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"sync"

	"github.com/oblo-platform/oblo/pkg/logger"
	"github.com/oblo-platform/oblo/pkg/types"
)

// Manager loads and holds the deployment settings
type Manager struct {
	settings    *types.Settings
	environment Environment
	loader      *Loader
	validator   *Validator
	logger      *logger.Logger
	mu          sync.RWMutex
}

// NewManager creates a new settings manager reading env files from configDir
func NewManager(configDir string, log *logger.Logger) *Manager {
	return &Manager{
		loader:    NewLoader(configDir),
		validator: NewValidator(),
		logger:    log,
	}
}

// Load reads and validates the settings. Missing required fields are logged
// one by one with their description before the error is returned.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings, env, err := m.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if env.Fallback {
		m.logger.WithComponent("config").
			WithField("env", env.Name).
			Warn("ENV parameter not set")
	}
	m.logger.WithComponent("config").
		WithField("env_file", env.File).
		Infof("Using env: %s", env.Name)

	if err := m.validator.Validate(settings); err != nil {
		if verrs, ok := err.(ValidationErrors); ok {
			for _, e := range verrs {
				m.logger.WithComponent("config").
					WithField("field", e.Field).
					Error(e.Message)
			}
		}
		return fmt.Errorf("settings validation failed: %w", err)
	}

	m.settings = settings
	m.environment = env
	return nil
}

// Get returns a copy of the current settings (thread-safe)
func (m *Manager) Get() *types.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return nil
	}

	settingsCopy := *m.settings
	return &settingsCopy
}

// Environment returns the resolved environment
func (m *Manager) Environment() Environment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.environment
}

// CheckUnset returns the settings that were given neither in the process
// environment nor in the env file, with the value they fell back to.
func (m *Manager) CheckUnset() (map[string]interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return nil, fmt.Errorf("settings not loaded")
	}

	fileKeys, err := m.loader.FileKeys(m.environment)
	if err != nil {
		return nil, err
	}
	inFile := make(map[string]bool, len(fileKeys))
	for _, k := range fileKeys {
		inFile[k] = true
	}

	unset := make(map[string]interface{})
	for _, f := range settingFields {
		if f.Key == "ENV" || inFile[f.Key] {
			continue
		}
		if _, ok := os.LookupEnv(f.Key); ok {
			continue
		}
		unset[f.Key] = displayValue(fieldValue(m.settings, f))
	}
	return unset, nil
}

// CheckRedundant returns env file variables that are not settings, logging
// a warning for each
func (m *Manager) CheckRedundant() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return nil, fmt.Errorf("settings not loaded")
	}

	fileKeys, err := m.loader.FileKeys(m.environment)
	if err != nil {
		return nil, err
	}

	var redundant []string
	for _, k := range fileKeys {
		if _, ok := lookupField(k); !ok {
			redundant = append(redundant, k)
			m.logger.WithComponent("config").Warnf("Redundant env variable: %s", k)
		}
	}
	sort.Strings(redundant)
	return redundant, nil
}

func displayValue(v reflect.Value) interface{} {
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return v.Interface()
}
