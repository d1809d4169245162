// Package settings loads the relay's runtime configuration from the process
// environment. The resulting Settings value is built once at startup and shared
// read-only by every component.
package settings

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvAppID          = "MicrosoftAppId"
	EnvAppType        = "MicrosoftAppType"
	EnvAppTenantID    = "MicrosoftAppTenantId"
	EnvAppPassword    = "MicrosoftAppPassword"
	EnvToken          = "DATABRICKS_TOKEN"
	EnvBaseURL        = "DATABRICKS_BASE_URL"
	EnvModelName      = "DATABRICKS_MODEL_NAME"
	EnvSystemPrompt   = "SYSTEM_PROMPT"
	EnvMaxTokens      = "OPENAI_MAX_TOKENS"
	EnvTemperature    = "OPENAI_TEMPERATURE"
	EnvBypassAuth     = "BYPASS_AUTHENTICATION"
	EnvTimeoutSeconds = "DATABRICKS_TIMEOUT_SECONDS"
)

const (
	DefaultModelName    = "databricks-gpt-oss-120b"
	DefaultSystemPrompt = "You are an AI assistant that uses Databricks models to help Microsoft 365 users."
	DefaultMaxTokens    = 1024
	DefaultTemperature  = 0.2
	DefaultTimeout      = 30 * time.Second
)

// MissingConfigurationError reports a required variable that is absent or a
// numeric variable that cannot be parsed. The process must not start with it.
type MissingConfigurationError struct {
	Key    string
	Reason string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("Environment variable '%s' %s.", e.Key, e.Reason)
}

// Settings is the immutable runtime configuration.
type Settings struct {
	MicrosoftAppID       string
	MicrosoftAppType     string
	MicrosoftAppTenantID string
	MicrosoftAppPassword string
	DatabricksToken      string
	DatabricksBaseURL    string
	DatabricksModelName  string
	SystemPrompt         string
	MaxTokens            int
	Temperature          float64
	BypassAuthentication bool
	RequestTimeout       time.Duration
}

// Load reads Settings from the process environment.
func Load() (*Settings, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads Settings through lookup, which has the shape of os.LookupEnv.
func LoadFrom(lookup func(string) (string, bool)) (*Settings, error) {
	r := reader{lookup: lookup}

	s := &Settings{
		MicrosoftAppID:       r.require(EnvAppID),
		MicrosoftAppType:     r.require(EnvAppType),
		MicrosoftAppTenantID: r.require(EnvAppTenantID),
		MicrosoftAppPassword: r.get(EnvAppPassword),
		DatabricksToken:      r.require(EnvToken),
		DatabricksBaseURL:    r.require(EnvBaseURL),
		DatabricksModelName:  r.getOr(EnvModelName, DefaultModelName),
		SystemPrompt:         systemPrompt(r.get(EnvSystemPrompt)),
		MaxTokens:            r.optionalInt(EnvMaxTokens, DefaultMaxTokens),
		Temperature:          r.optionalNonNegative(EnvTemperature, DefaultTemperature),
		BypassAuthentication: truthy(r.get(EnvBypassAuth)),
		RequestTimeout:       r.optionalSeconds(EnvTimeoutSeconds, DefaultTimeout),
	}
	if r.err != nil {
		return nil, r.err
	}
	return s, nil
}

// BotAuthConfig returns the credentials map consumed by channel authentication.
func (s *Settings) BotAuthConfig() map[string]string {
	return map[string]string{
		EnvAppID:       s.MicrosoftAppID,
		EnvAppType:     s.MicrosoftAppType,
		EnvAppTenantID: s.MicrosoftAppTenantID,
		EnvAppPassword: s.MicrosoftAppPassword,
	}
}

// reader keeps the first error so Load reports variables in declaration order.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) fail(key, reason string) {
	if r.err == nil {
		r.err = &MissingConfigurationError{Key: key, Reason: reason}
	}
}

func (r *reader) get(key string) string {
	v, _ := r.lookup(key)
	return v
}

func (r *reader) getOr(key, def string) string {
	if v := r.get(key); v != "" {
		return v
	}
	return def
}

func (r *reader) require(key string) string {
	v := r.get(key)
	if v == "" {
		r.fail(key, "is required")
	}
	return v
}

func (r *reader) optionalInt(key string, def int) int {
	raw := r.get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		r.fail(key, "must be an integer")
		return def
	}
	if v <= 0 {
		r.fail(key, "must be a positive integer")
		return def
	}
	return v
}

func (r *reader) optionalFloat(key string, def float64) float64 {
	raw := r.get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		r.fail(key, "must be a number")
		return def
	}
	return v
}

func (r *reader) optionalNonNegative(key string, def float64) float64 {
	v := r.optionalFloat(key, def)
	if v < 0 {
		r.fail(key, "must be a non-negative number")
		return def
	}
	return v
}

func (r *reader) optionalSeconds(key string, def time.Duration) time.Duration {
	secs := r.optionalFloat(key, def.Seconds())
	if secs <= 0 {
		return def
	}
	return time.Duration(secs * float64(time.Second))
}

func systemPrompt(raw string) string {
	if p := strings.TrimSpace(raw); p != "" {
		return p
	}
	return DefaultSystemPrompt
}

func truthy(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	}
	return false
}
