package config

import (
	"fmt"
	"strings"
	"unicode"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// ValidationResult separates validation problems the engine cannot
// safely start with (Fatals) from ones it can recover from by clamping
// a value to a safe default (Warnings).
type ValidationResult struct {
	Fatals   []error
	Warnings []error
}

func (r ValidationResult) HasFatals() bool {
	return len(r.Fatals) > 0
}

// AllErrors returns fatals followed by warnings, for callers that just
// want a flat report.
func (r ValidationResult) AllErrors() []error {
	all := make([]error, 0, len(r.Fatals)+len(r.Warnings))
	all = append(all, r.Fatals...)
	all = append(all, r.Warnings...)
	return all
}

// ValidateTiered checks the config for invalid values. Values that
// would make the engine misbehave in a hard-to-diagnose way (a DSN
// that isn't a URL, a socket name containing a path separator) are
// fatal. Everything else is clamped to a safe default and reported as
// a warning.
func (c *Config) ValidateTiered() ValidationResult {
	var result ValidationResult

	if c.SentryDSN != "" && !strings.HasPrefix(c.SentryDSN, "https://") && !strings.HasPrefix(c.SentryDSN, "http://") {
		result.Fatals = append(result.Fatals, fmt.Errorf("sentry_dsn %q is not a valid URL", c.SentryDSN))
	}

	if c.SocketName != "" {
		for _, r := range c.SocketName {
			if r == '/' || r == '\\' || unicode.IsControl(r) {
				result.Fatals = append(result.Fatals, fmt.Errorf("socket_name %q must not contain path separators or control characters", c.SocketName))
				break
			}
		}
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error), defaulting to info", c.LogLevel))
		c.LogLevel = "info"
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_format %q is not valid (use text or json), defaulting to text", c.LogFormat))
		c.LogFormat = "text"
	}

	if c.LogMaxSizeMB < 1 {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_max_size_mb %d is below minimum 1, clamping", c.LogMaxSizeMB))
		c.LogMaxSizeMB = 1
	}

	if c.LogMaxBackups < 0 {
		result.Warnings = append(result.Warnings, fmt.Errorf("log_max_backups %d is negative, clamping to 0", c.LogMaxBackups))
		c.LogMaxBackups = 0
	}

	return result
}
