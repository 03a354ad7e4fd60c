package types

import (
	"encoding/json"
	"strings"
)

// Environments a deployment can run in
const (
	EnvDev  = "dev"
	EnvProd = "prod"
	EnvTest = "test"
)

// DefaultLogConfigPath is the logging configuration used when
// LOG_CONFIG_PATH is not set
const DefaultLogConfigPath = "configs/logger_config.yml"

// Environments lists the accepted ENV values
var Environments = []string{EnvDev, EnvProd, EnvTest}

// Secret is a string that never prints its value
type Secret string

const secretMask = "**********"

// String masks the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return secretMask
}

// GoString masks the secret for %#v
func (s Secret) GoString() string {
	return s.String()
}

// Value returns the secret in clear text
func (s Secret) Value() string {
	return string(s)
}

// MarshalJSON masks the secret
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// MarshalYAML masks the secret
func (s Secret) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Settings is the environment configuration of a backend deployment. Field
// names match the environment variables they are read from.
type Settings struct {
	Env  string `mapstructure:"ENV" json:"ENV"`
	Host string `mapstructure:"HOST" json:"HOST" default:"http://0.0.0.0" description:"Host address (including port) of the frontend app"`
	Port int    `mapstructure:"PORT" json:"PORT" default:"8000" description:"Port the backend listens on"`

	PostgresHost     string `mapstructure:"POSTGRES_HOST" json:"POSTGRES_HOST" required:"true" description:"hostname of the postgres (e.g. localhost)"`
	PostgresUser     string `mapstructure:"POSTGRES_USER" json:"POSTGRES_USER" required:"true" description:"username for postgres"`
	PostgresPassword Secret `mapstructure:"POSTGRES_PASSWORD" json:"POSTGRES_PASSWORD" required:"true" description:"password to the postgres database"`
	PostgresDB       string `mapstructure:"POSTGRES_DB" json:"POSTGRES_DB" required:"true" description:"name of the database"`

	FirstAdminEmail    string `mapstructure:"FIRST_ADMIN_EMAIL" json:"FIRST_ADMIN_EMAIL" required:"true" description:"email address of the first admin user"`
	FirstAdminPassword Secret `mapstructure:"FIRST_ADMIN_PASSWORD" json:"FIRST_ADMIN_PASSWORD" required:"true" description:"password for the first admin user"`

	EmailEnabled   bool   `mapstructure:"EMAIL_ENABLED" json:"EMAIL_ENABLED" default:"false" description:"Set if emails should be sent"`
	EmailSender    string `mapstructure:"EMAIL_SENDER" json:"EMAIL_SENDER"`
	EmailAccount   string `mapstructure:"EMAIL_ACCOUNT" json:"EMAIL_ACCOUNT"`
	EmailPassword  Secret `mapstructure:"EMAIL_PWD" json:"EMAIL_PWD"`
	EmailSSLServer string `mapstructure:"EMAIL_SSL_SERVER" json:"EMAIL_SSL_SERVER"`

	SessionSecret Secret `mapstructure:"SESSION_SECRET" json:"SESSION_SECRET" required:"true" description:"secret used to sign session cookies"`

	MapDefaultMapStyle  string   `mapstructure:"MAP_DEFAULT_MAP_STYLE" json:"MAP_DEFAULT_MAP_STYLE" required:"true" description:"default map style url"`
	MapAccessToken      Secret   `mapstructure:"MAP_ACCESS_TOKEN" json:"MAP_ACCESS_TOKEN" required:"true" description:"access token of the map tile provider"`
	AdditionalMapStyles []string `mapstructure:"ADDITIONAL_MAP_STYLES" json:"ADDITIONAL_MAP_STYLES" description:"Additional map styles"`

	PlatformTitle    string `mapstructure:"PLATFORM_TITLE" json:"PLATFORM_TITLE" default:"Oblo" description:"The title of the platform"`
	BaseRouterPrefix string `mapstructure:"BASE_ROUTER_PREFIX" json:"BASE_ROUTER_PREFIX" default:"/api" description:"Api endpoint base router prefix"`

	LoginRequired             bool `mapstructure:"LOGIN_REQUIRED" json:"LOGIN_REQUIRED" default:"false"`
	EmailVerificationRequired bool `mapstructure:"EMAIL_VERIFICATION_REQUIRED" json:"EMAIL_VERIFICATION_REQUIRED" default:"true"`
	TimingMiddlewareActive    bool `mapstructure:"TIMING_MIDDLEWARE_ACTIVE" json:"TIMING_MIDDLEWARE_ACTIVE" default:"false"`

	CORSOtherOrigins string `mapstructure:"CORS_OTHER_ORIGINS" json:"CORS_OTHER_ORIGINS" description:"space separated extra CORS origins"`

	LogConfigPath string `mapstructure:"LOG_CONFIG_PATH" json:"LOG_CONFIG_PATH" default:"configs/logger_config.yml" description:"path of the logging configuration"`
}

// IsDev reports whether the deployment runs with development behaviour.
// The test environment behaves like dev.
func (s *Settings) IsDev() bool {
	return s.Env == EnvDev || s.Env == EnvTest
}

// CORSOrigins returns HOST followed by the extra origins
func (s *Settings) CORSOrigins() []string {
	origins := []string{strings.TrimRight(s.Host, "/")}
	for _, o := range strings.Fields(s.CORSOtherOrigins) {
		origins = append(origins, strings.TrimRight(o, "/"))
	}
	return origins
}
