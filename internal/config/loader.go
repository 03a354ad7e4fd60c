package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/oblo-platform/oblo/pkg/types"
)

// DefaultConfigDir holds the .{env}.env files
const DefaultConfigDir = "configs"

// Environment is the resolved deployment environment
type Environment struct {
	Name string
	File string
	// Fallback is set when ENV was not given and the name was guessed
	Fallback bool
}

// Loader reads settings from the process environment and the env file of
// the selected environment. Process variables take precedence.
type Loader struct {
	configDir string
}

// NewLoader creates a settings loader reading env files from configDir
func NewLoader(configDir string) *Loader {
	if configDir == "" {
		configDir = DefaultConfigDir
	}
	return &Loader{configDir: configDir}
}

// EnvFile returns the env file path of env
func (l *Loader) EnvFile(env string) string {
	return filepath.Join(l.configDir, fmt.Sprintf(".%s.env", env))
}

// ResolveEnvironment picks the environment. Without ENV, prod is used when
// its env file exists, dev otherwise.
func (l *Loader) ResolveEnvironment() (Environment, error) {
	env := Environment{Name: os.Getenv("ENV")}
	if env.Name == "" {
		env.Fallback = true
		env.Name = types.EnvProd
		if _, err := os.Stat(l.EnvFile(types.EnvProd)); err != nil {
			env.Name = types.EnvDev
		}
	}

	if !slices.Contains(types.Environments, env.Name) {
		return Environment{}, fmt.Errorf("unknown env: %s. Should be one of: %s",
			env.Name, strings.Join(types.Environments, ", "))
	}

	env.File = l.EnvFile(env.Name)
	if _, err := os.Stat(env.File); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Environment{}, fmt.Errorf("env file not found: %s. Create that file and run again", env.File)
		}
		return Environment{}, fmt.Errorf("failed to access env file: %w", err)
	}
	return env, nil
}

// Load resolves the environment and reads the settings. ENV is exported to
// the process so configuration files may reference it.
func (l *Loader) Load() (*types.Settings, Environment, error) {
	env, err := l.ResolveEnvironment()
	if err != nil {
		return nil, Environment{}, err
	}

	v, err := l.newViper(env)
	if err != nil {
		return nil, env, err
	}

	var settings types.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, env, fmt.Errorf("failed to decode settings: %w", err)
	}
	settings.AdditionalMapStyles = dedupe(settings.AdditionalMapStyles)

	if os.Getenv("ENV") != env.Name {
		if err := os.Setenv("ENV", env.Name); err != nil {
			return nil, env, fmt.Errorf("failed to export ENV: %w", err)
		}
	}
	return &settings, env, nil
}

func (l *Loader) newViper(env Environment) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(env.File)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", env.File, err)
	}

	for _, f := range settingFields {
		if f.HasDefault {
			v.SetDefault(f.Key, f.Default)
		}
		if err := v.BindEnv(f.Key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", f.Key, err)
		}
	}
	v.Set("ENV", env.Name)
	return v, nil
}

// FileKeys returns the variable names defined in the env file, upper-cased
func (l *Loader) FileKeys(env Environment) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(env.File)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", env.File, err)
	}

	keys := v.AllKeys()
	for i, k := range keys {
		keys[i] = strings.ToUpper(k)
	}
	slices.Sort(keys)
	return keys, nil
}

// dedupe drops empty and repeated entries, keeping order
func dedupe(values []string) []string {
	var out []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
