package config

import (
	"fmt"
	"strings"
	"testing"
)

func TestValidateTieredBadSentryDSNIsFatal(t *testing.T) {
	cfg := Default()
	cfg.SentryDSN = "not-a-url"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("non-URL sentry DSN should be fatal")
	}
}

func TestValidateTieredSocketNameWithSeparatorIsFatal(t *testing.T) {
	cfg := Default()
	cfg.SocketName = "sub/dir"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("socket name containing a path separator should be fatal")
	}
}

func TestValidateTieredUnknownLogLevelIsWarningAndDefaults(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("unknown log level should not be fatal")
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected warning for unknown log level")
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want default info", cfg.LogLevel)
	}
}

func TestValidateTieredInvalidLogFormatIsWarningAndDefaults(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatal("invalid log format should not be fatal")
	}
	if cfg.LogFormat != "text" {
		t.Fatalf("LogFormat = %q, want default text", cfg.LogFormat)
	}
}

func TestValidateTieredLogMaxSizeClamping(t *testing.T) {
	cfg := Default()
	cfg.LogMaxSizeMB = 0
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("clamped log_max_size_mb should be warning: %v", result.Fatals)
	}
	if cfg.LogMaxSizeMB != 1 {
		t.Fatalf("LogMaxSizeMB = %d, want 1", cfg.LogMaxSizeMB)
	}
}

func TestValidateTieredLogMaxBackupsClamping(t *testing.T) {
	cfg := Default()
	cfg.LogMaxBackups = -5
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("clamped log_max_backups should be warning: %v", result.Fatals)
	}
	if cfg.LogMaxBackups != 0 {
		t.Fatalf("LogMaxBackups = %d, want 0", cfg.LogMaxBackups)
	}
}

func TestHasFatals(t *testing.T) {
	r := ValidationResult{}
	if r.HasFatals() {
		t.Fatal("HasFatals() on empty result should be false")
	}
	r.Fatals = append(r.Fatals, fmt.Errorf("test error"))
	if !r.HasFatals() {
		t.Fatal("HasFatals() should be true with a fatal error")
	}
}

func TestAllErrorsReturnsBoth(t *testing.T) {
	cfg := Default()
	cfg.SentryDSN = "not-a-url" // fatal
	cfg.LogFormat = "xml"       // warning
	result := cfg.ValidateTiered()

	all := result.AllErrors()
	if len(all) < 2 {
		t.Fatalf("AllErrors() returned %d errors, expected at least 2 (fatals + warnings)", len(all))
	}
}

func TestValidConfigHasNoErrors(t *testing.T) {
	cfg := Default()
	cfg.SentryDSN = "https://key@sentry.example.com/1"
	cfg.SocketName = "core-socket"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("valid config has fatals: %v", result.Fatals)
	}
	if len(result.Warnings) > 0 {
		t.Fatalf("valid config has warnings: %v", result.Warnings)
	}
}

func TestSentryDSNAcceptsHTTPScheme(t *testing.T) {
	cfg := Default()
	cfg.SentryDSN = "http://key@localhost:9000/1"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("http DSN should be accepted: %v", result.Fatals)
	}
}

func TestAllErrorsEmptyWhenNoIssues(t *testing.T) {
	cfg := Default()
	result := cfg.ValidateTiered()
	if len(result.AllErrors()) != 0 {
		t.Fatalf("expected no errors, got %v", result.AllErrors())
	}
	if !strings.Contains(fmt.Sprintf("%v", cfg.SocketName), "core-socket") {
		t.Fatalf("expected default socket name")
	}
}
